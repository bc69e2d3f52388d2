package app

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/config"
	"github.com/cliptube/backend/internal/google"
	"github.com/cliptube/backend/internal/handlers"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/repositories"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(client *mongo.Client, media handlers.MediaStore, cfg config.Config) handlers.Dependencies {
	database := client.Database(cfg.MongoDatabase)
	users := repositories.NewMongoUserRepository(database)

	issuer := auth.TokenIssuer{
		AccessSecret:  []byte(cfg.AccessTokenSecret),
		RefreshSecret: []byte(cfg.RefreshTokenSecret),
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	}

	limit := cfg.AuthRateLimit

	return handlers.Dependencies{
		Users:         users,
		Subscriptions: repositories.NewMongoSubscriptionRepository(database),
		Tokens:        auth.NewManager(issuer, users),
		Media:         media,
		Google:        google.Verifier{ClientID: cfg.GoogleClientID},
		DB:            mongoPinger{client: client},
		AuthLimiter:   middleware.NewIPRateLimiter(limit.Requests, limit.Window, limit.Burst, limit.TTL),
		TempDir:       cfg.TempDir,
	}
}

// mongoPinger adapts the mongo client to the handlers' health probe.
type mongoPinger struct {
	client *mongo.Client
}

func (p mongoPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}
