package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/cliptube/backend/internal/models"
)

var (
	// ErrInvalidToken indicates the token failed signature or expiry checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenReused indicates a refresh token that was already rotated out.
	ErrTokenReused = errors.New("refresh token is expired or used")
	// ErrUserNotFound indicates the token's subject no longer resolves to a user.
	ErrUserNotFound = errors.New("user not found")
)

// CredentialStore is the slice of user persistence the token manager needs.
type CredentialStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	SetRefreshToken(ctx context.Context, id, token string) error
}

// Manager manages the lifecycle of issued token pairs. A user holds at most
// one valid refresh token at a time; issuing a new pair invalidates the
// previous refresh token by overwriting it on the user document.
type Manager struct {
	issuer TokenIssuer
	users  CredentialStore
}

// NewManager constructs a Manager around the given issuer and credential store.
func NewManager(issuer TokenIssuer, users CredentialStore) *Manager {
	if users == nil {
		panic("auth: credential store must not be nil")
	}
	return &Manager{issuer: issuer, users: users}
}

// Issue creates a new access/refresh pair for the user and persists the
// refresh token on their document.
func (m *Manager) Issue(ctx context.Context, userID string) (models.TokenPair, error) {
	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("load user %s: %w", userID, err)
	}

	accessToken, err := m.issuer.IssueAccessToken(user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := m.issuer.IssueRefreshToken(user.ID.Hex())
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := m.users.SetRefreshToken(ctx, user.ID.Hex(), refreshToken); err != nil {
		return models.TokenPair{}, fmt.Errorf("persist refresh token: %w", err)
	}

	return models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh exchanges a refresh token for a new pair. A token that does not
// match the one stored on the user document is treated as reused and
// rejected; there is no rotation history.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	userID, err := m.issuer.ParseRefreshToken(refreshToken)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		return models.TokenPair{}, ErrInvalidToken
	}

	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return models.TokenPair{}, ErrTokenReused
	}

	return m.Issue(ctx, userID)
}

// Verify checks an access token and returns the claims it carries.
func (m *Manager) Verify(token string) (*AccessClaims, error) {
	return m.issuer.ParseAccessToken(token)
}

// Revoke clears the user's stored refresh token, ending their session.
func (m *Manager) Revoke(ctx context.Context, userID string) error {
	return m.users.SetRefreshToken(ctx, userID, "")
}
