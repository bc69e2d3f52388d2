package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/cliptube/backend/internal/models"
)

type inMemoryCredentialStore struct {
	users map[string]models.User
}

func newInMemoryCredentialStore() *inMemoryCredentialStore {
	return &inMemoryCredentialStore{users: make(map[string]models.User)}
}

func (s *inMemoryCredentialStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *inMemoryCredentialStore) SetRefreshToken(_ context.Context, id, token string) error {
	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.RefreshToken = token
	s.users[id] = user
	return nil
}

func (s *inMemoryCredentialStore) add(user models.User) string {
	id := user.ID.Hex()
	s.users[id] = user
	return id
}

func TestManagerIssuePersistsRefreshToken(t *testing.T) {
	store := newInMemoryCredentialStore()
	id := store.add(models.User{ID: bson.NewObjectID(), Username: "om"})
	manager := NewManager(testIssuer(time.Minute, time.Hour), store)

	pair, err := manager.Issue(context.Background(), id)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected non-empty tokens: %+v", pair)
	}
	if store.users[id].RefreshToken != pair.RefreshToken {
		t.Fatal("expected refresh token to be persisted on the user")
	}
}

func TestManagerIssueUnknownUser(t *testing.T) {
	manager := NewManager(testIssuer(time.Minute, time.Hour), newInMemoryCredentialStore())
	if _, err := manager.Issue(context.Background(), bson.NewObjectID().Hex()); err == nil {
		t.Fatal("expected error for unknown user id")
	}
}

func TestManagerRefreshRotates(t *testing.T) {
	store := newInMemoryCredentialStore()
	id := store.add(models.User{ID: bson.NewObjectID(), Username: "om"})
	manager := NewManager(testIssuer(time.Minute, time.Hour), store)

	pair, err := manager.Issue(context.Background(), id)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	refreshed, err := manager.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == pair.RefreshToken {
		t.Fatal("expected a new refresh token")
	}
	if store.users[id].RefreshToken != refreshed.RefreshToken {
		t.Fatal("expected the stored token to be the rotated one")
	}

	// The pre-rotation token no longer matches what is stored.
	if _, err := manager.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, ErrTokenReused) {
		t.Fatalf("expected ErrTokenReused got %v", err)
	}
}

func TestManagerRefreshRejectsExpired(t *testing.T) {
	store := newInMemoryCredentialStore()
	id := store.add(models.User{ID: bson.NewObjectID()})
	manager := NewManager(testIssuer(time.Minute, -time.Minute), store)

	pair, err := manager.Issue(context.Background(), id)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := manager.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken got %v", err)
	}
}

func TestManagerRevoke(t *testing.T) {
	store := newInMemoryCredentialStore()
	id := store.add(models.User{ID: bson.NewObjectID()})
	manager := NewManager(testIssuer(time.Minute, time.Hour), store)

	pair, err := manager.Issue(context.Background(), id)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := manager.Revoke(context.Background(), id); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if store.users[id].RefreshToken != "" {
		t.Fatal("expected stored refresh token to be cleared")
	}
	if _, err := manager.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, ErrTokenReused) {
		t.Fatalf("expected ErrTokenReused after revoke got %v", err)
	}
}
