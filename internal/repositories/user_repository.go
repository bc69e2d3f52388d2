package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/cliptube/backend/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error)
	SetRefreshToken(ctx context.Context, id, token string) error
	SetPassword(ctx context.Context, id, passwordHash string) error
	UpdateDetails(ctx context.Context, id, fullName, email string) (models.User, error)
	SetAvatar(ctx context.Context, id, url string) (models.User, error)
	SetCoverImage(ctx context.Context, id, url string) (models.User, error)
	ChannelProfile(ctx context.Context, username string, viewer bson.ObjectID) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, id string) ([]models.WatchHistoryEntry, error)
}

// SubscriptionRepository defines the data access contract for channel subscriptions.
type SubscriptionRepository interface {
	Subscribe(ctx context.Context, channel, subscriber bson.ObjectID) error
	Unsubscribe(ctx context.Context, channel, subscriber bson.ObjectID) error
}
