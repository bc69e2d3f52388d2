package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on. Safe to run
// repeatedly; existing indexes are left untouched.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	subscriptionIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "channel", Value: 1}, {Key: "subscriber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "subscriber", Value: 1}},
		},
	}
	if _, err := db.Collection(subscriptionsCollection).Indexes().CreateMany(ctx, subscriptionIndexes); err != nil {
		return fmt.Errorf("create subscription indexes: %w", err)
	}

	videoIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}
	if _, err := db.Collection(videosCollection).Indexes().CreateMany(ctx, videoIndexes); err != nil {
		return fmt.Errorf("create video indexes: %w", err)
	}

	return nil
}
