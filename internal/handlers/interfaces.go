package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/google"
	"github.com/cliptube/backend/internal/models"
)

// UserStore captures the persistence operations required by the account handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error)
	SetPassword(ctx context.Context, id, passwordHash string) error
	UpdateDetails(ctx context.Context, id, fullName, email string) (models.User, error)
	SetAvatar(ctx context.Context, id, url string) (models.User, error)
	SetCoverImage(ctx context.Context, id, url string) (models.User, error)
	ChannelProfile(ctx context.Context, username string, viewer bson.ObjectID) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, id string) ([]models.WatchHistoryEntry, error)
}

// SubscriptionStore captures persistence for channel subscription edges.
type SubscriptionStore interface {
	Subscribe(ctx context.Context, channel, subscriber bson.ObjectID) error
	Unsubscribe(ctx context.Context, channel, subscriber bson.ObjectID) error
}

// TokenManager issues, refreshes, verifies, and revokes authentication tokens.
type TokenManager interface {
	Issue(ctx context.Context, userID string) (models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)
	Verify(token string) (*auth.AccessClaims, error)
	Revoke(ctx context.Context, userID string) error
}

// MediaStore uploads a locally buffered file and returns its hosted URL.
type MediaStore interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// GoogleTokenVerifier validates Google ID tokens for federated login.
type GoogleTokenVerifier interface {
	Verify(ctx context.Context, token string) (google.Profile, error)
}

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
