package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
)

const (
	usersCollection         = "users"
	videosCollection        = "videos"
	subscriptionsCollection = "subscriptions"
)

// MongoUserRepository provides MongoDB-backed persistence for users.
type MongoUserRepository struct {
	users *mongo.Collection
}

// NewMongoUserRepository constructs a user repository over the given database.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{users: db.Collection(usersCollection)}
}

// Create persists a new user document and returns it with its assigned id.
func (r *MongoUserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	res, err := r.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrConflict
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		user.ID = oid
	}
	return user, nil
}

// FindByID fetches a user by their hex-encoded object id.
func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, ErrNotFound
	}

	var user models.User
	if err := r.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by id: %w", err)
	}

	return user, nil
}

// FindByUsernameOrEmail fetches a user matching either identifier.
func (r *MongoUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error) {
	filter := bson.M{"$or": []bson.M{
		{"username": username},
		{"email": email},
	}}

	var user models.User
	if err := r.users.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by username or email: %w", err)
	}

	return user, nil
}

// SetRefreshToken stores the user's current refresh token. An empty token
// unsets the field, leaving no active session.
func (r *MongoUserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	update := bson.M{"$set": bson.M{"refreshToken": token, "updatedAt": time.Now().UTC()}}
	if token == "" {
		update = bson.M{
			"$unset": bson.M{"refreshToken": ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		}
	}

	res, err := r.users.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPassword replaces the user's stored password hash.
func (r *MongoUserRepository) SetPassword(ctx context.Context, id, passwordHash string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"password": passwordHash, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDetails updates the user's full name and email and returns the
// updated document.
func (r *MongoUserRepository) UpdateDetails(ctx context.Context, id, fullName, email string) (models.User, error) {
	return r.findOneAndSet(ctx, id, bson.M{"fullName": fullName, "email": email})
}

// SetAvatar stores a new avatar URL and returns the updated document.
func (r *MongoUserRepository) SetAvatar(ctx context.Context, id, url string) (models.User, error) {
	return r.findOneAndSet(ctx, id, bson.M{"avatar": url})
}

// SetCoverImage stores a new cover image URL and returns the updated document.
func (r *MongoUserRepository) SetCoverImage(ctx context.Context, id, url string) (models.User, error) {
	return r.findOneAndSet(ctx, id, bson.M{"coverImage": url})
}

func (r *MongoUserRepository) findOneAndSet(ctx context.Context, id string, fields bson.M) (models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, ErrNotFound
	}

	fields["updatedAt"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	if err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": fields}, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrConflict
		}
		return models.User{}, fmt.Errorf("update user fields: %w", err)
	}

	return user, nil
}

// ChannelProfile aggregates a user's public channel view: subscriber counts
// from a two-way self-join on the subscriptions collection, plus whether the
// viewer subscribes to the channel. Returns ErrNotFound before touching any
// result when the username matches nothing.
func (r *MongoUserRepository) ChannelProfile(ctx context.Context, username string, viewer bson.ObjectID) (models.ChannelProfile, error) {
	ctx, span := logging.StartSpan(ctx, "channel_profile_aggregation")
	defer span.End()

	pipeline := []bson.M{
		{"$match": bson.M{"username": username}},
		{"$lookup": bson.M{
			"from":         subscriptionsCollection,
			"localField":   "_id",
			"foreignField": "channel",
			"as":           "subscribers",
		}},
		{"$lookup": bson.M{
			"from":         subscriptionsCollection,
			"localField":   "_id",
			"foreignField": "subscriber",
			"as":           "subscribedTo",
		}},
		{"$addFields": bson.M{
			"subscriberCount":   bson.M{"$size": "$subscribers"},
			"subscribedToCount": bson.M{"$size": "$subscribedTo"},
			"isSubscribed":      bson.M{"$in": bson.A{viewer, "$subscribers.subscriber"}},
		}},
		{"$project": bson.M{
			"username":          1,
			"email":             1,
			"fullName":          1,
			"avatar":            1,
			"coverImage":        1,
			"subscriberCount":   1,
			"subscribedToCount": 1,
			"isSubscribed":      1,
		}},
	}

	cursor, err := r.users.Aggregate(ctx, pipeline)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("aggregate channel profile: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []models.ChannelProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return models.ChannelProfile{}, fmt.Errorf("decode channel profile: %w", err)
	}

	if len(profiles) == 0 {
		return models.ChannelProfile{}, ErrNotFound
	}

	return profiles[0], nil
}

// WatchHistory joins the user's watch-history id list against the videos
// collection and each video's owner against users, projected to public fields.
func (r *MongoUserRepository) WatchHistory(ctx context.Context, id string) ([]models.WatchHistoryEntry, error) {
	ctx, span := logging.StartSpan(ctx, "watch_history_aggregation")
	defer span.End()

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	pipeline := []bson.M{
		{"$match": bson.M{"_id": oid}},
		{"$lookup": bson.M{
			"from":         videosCollection,
			"localField":   "watchHistory",
			"foreignField": "_id",
			"as":           "watchHistory",
			"pipeline": []bson.M{
				{"$lookup": bson.M{
					"from":         usersCollection,
					"localField":   "owner",
					"foreignField": "_id",
					"as":           "owner",
					"pipeline": []bson.M{
						{"$project": bson.M{"fullName": 1, "username": 1, "avatar": 1}},
					},
				}},
				{"$addFields": bson.M{"owner": bson.M{"$first": "$owner"}}},
			},
		}},
		{"$project": bson.M{"watchHistory": 1}},
	}

	cursor, err := r.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate watch history: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		WatchHistory []models.WatchHistoryEntry `bson:"watchHistory"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode watch history: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrNotFound
	}

	return results[0].WatchHistory, nil
}

// MongoSubscriptionRepository provides MongoDB-backed persistence for
// subscription edges.
type MongoSubscriptionRepository struct {
	subscriptions *mongo.Collection
}

// NewMongoSubscriptionRepository constructs a subscription repository over the
// given database.
func NewMongoSubscriptionRepository(db *mongo.Database) *MongoSubscriptionRepository {
	return &MongoSubscriptionRepository{subscriptions: db.Collection(subscriptionsCollection)}
}

// Subscribe records a directed edge from subscriber to channel. The unique
// (channel, subscriber) index rejects duplicate edges.
func (r *MongoSubscriptionRepository) Subscribe(ctx context.Context, channel, subscriber bson.ObjectID) error {
	_, err := r.subscriptions.InsertOne(ctx, models.Subscription{
		Channel:    channel,
		Subscriber: subscriber,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

// Unsubscribe removes the edge from subscriber to channel.
func (r *MongoSubscriptionRepository) Unsubscribe(ctx context.Context, channel, subscriber bson.ObjectID) error {
	res, err := r.subscriptions.DeleteOne(ctx, bson.M{"channel": channel, "subscriber": subscriber})
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var _ UserRepository = (*MongoUserRepository)(nil)
var _ SubscriptionRepository = (*MongoSubscriptionRepository)(nil)
