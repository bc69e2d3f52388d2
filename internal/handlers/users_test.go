package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
)

func authedRequest(method, target string, body *bytes.Reader, user models.User) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
	}
	ctx := middleware.WithUser(req.Context(), user.Public())
	return req.WithContext(ctx)
}

func TestUserHandlerChangePassword(t *testing.T) {
	store := newFakeUserStore()
	user := seedUser(t, store, "om", "om@x.com", "old-password")
	handler := UserHandler{Users: store}

	payload, err := json.Marshal(changePasswordRequest{
		OldPassword:     "old-password",
		NewPassword:     "new-password",
		ConfirmPassword: "new-password",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := authedRequest(http.MethodPost, "/api/v1/users/change-password", bytes.NewReader(payload), user)
	rec := httptest.NewRecorder()

	handler.ChangePassword(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	updated, err := store.FindByID(context.Background(), user.ID.Hex())
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !auth.CheckPassword("new-password", updated.Password) {
		t.Fatal("new password was not persisted")
	}
	if auth.CheckPassword("old-password", updated.Password) {
		t.Fatal("old password still verifies")
	}
}

func TestUserHandlerChangePasswordValidation(t *testing.T) {
	store := newFakeUserStore()
	user := seedUser(t, store, "om", "om@x.com", "old-password")
	handler := UserHandler{Users: store}

	cases := []struct {
		name   string
		req    changePasswordRequest
		status int
	}{
		{
			name:   "missing fields",
			req:    changePasswordRequest{OldPassword: "old-password"},
			status: http.StatusBadRequest,
		},
		{
			name:   "confirmation mismatch",
			req:    changePasswordRequest{OldPassword: "old-password", NewPassword: "new-password", ConfirmPassword: "other"},
			status: http.StatusBadRequest,
		},
		{
			name:   "new equals old",
			req:    changePasswordRequest{OldPassword: "old-password", NewPassword: "old-password", ConfirmPassword: "old-password"},
			status: http.StatusBadRequest,
		},
		{
			name:   "wrong old password",
			req:    changePasswordRequest{OldPassword: "not-the-password", NewPassword: "new-password", ConfirmPassword: "new-password"},
			status: http.StatusUnauthorized,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload, err := json.Marshal(tc.req)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			req := authedRequest(http.MethodPost, "/api/v1/users/change-password", bytes.NewReader(payload), user)
			rec := httptest.NewRecorder()

			handler.ChangePassword(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected status %d got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestUserHandlerCurrentUser(t *testing.T) {
	store := newFakeUserStore()
	user := seedUser(t, store, "om", "om@x.com", "secret123")
	handler := UserHandler{Users: store}

	req := authedRequest(http.MethodGet, "/api/v1/users/current-user", nil, user)
	rec := httptest.NewRecorder()

	handler.CurrentUser(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp models.PublicUser
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != user.ID || resp.Username != "om" {
		t.Fatalf("unexpected current user %+v", resp)
	}
}

func TestUserHandlerCurrentUserUnauthenticated(t *testing.T) {
	handler := UserHandler{Users: newFakeUserStore()}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	rec := httptest.NewRecorder()

	handler.CurrentUser(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestUserHandlerUpdateAccount(t *testing.T) {
	store := newFakeUserStore()
	user := seedUser(t, store, "om", "om@x.com", "secret123")
	handler := UserHandler{Users: store}

	payload := []byte(`{"fullName": "Om Kadam", "email": "New@X.com"}`)
	req := authedRequest(http.MethodPatch, "/api/v1/users/update-account", bytes.NewReader(payload), user)
	rec := httptest.NewRecorder()

	handler.UpdateAccount(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp models.PublicUser
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.FullName != "Om Kadam" {
		t.Fatalf("expected updated full name got %q", resp.FullName)
	}
	if resp.Email != "new@x.com" {
		t.Fatalf("expected lowercased email got %q", resp.Email)
	}
}

func TestUserHandlerUpdateAccountMissingFields(t *testing.T) {
	store := newFakeUserStore()
	user := seedUser(t, store, "om", "om@x.com", "secret123")
	handler := UserHandler{Users: store}

	payload := []byte(`{"fullName": "", "email": "om@x.com"}`)
	req := authedRequest(http.MethodPatch, "/api/v1/users/update-account", bytes.NewReader(payload), user)
	rec := httptest.NewRecorder()

	handler.UpdateAccount(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestUserHandlerUpdateAvatar(t *testing.T) {
	store := newFakeUserStore()
	user := seedUser(t, store, "om", "om@x.com", "secret123")
	media := &fakeMediaStore{}
	handler := UserHandler{Users: store, Media: media, TempDir: t.TempDir()}

	body, contentType := multipartRegisterBody(t, nil, map[string]string{"avatar": "new-avatar.png"})
	req := authedRequest(http.MethodPatch, "/api/v1/users/avatar", bytes.NewReader(body.Bytes()), user)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.UpdateAvatar(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp models.PublicUser
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Avatar != "https://media.example.com/new-avatar.png" {
		t.Fatalf("expected hosted avatar URL got %q", resp.Avatar)
	}
	if len(media.uploads) != 1 {
		t.Fatalf("expected one media upload got %d", len(media.uploads))
	}
}

func TestUserHandlerUpdateAvatarMissingFile(t *testing.T) {
	store := newFakeUserStore()
	user := seedUser(t, store, "om", "om@x.com", "secret123")
	handler := UserHandler{Users: store, Media: &fakeMediaStore{}, TempDir: t.TempDir()}

	body, contentType := multipartRegisterBody(t, map[string]string{"unused": "field"}, nil)
	req := authedRequest(http.MethodPatch, "/api/v1/users/avatar", bytes.NewReader(body.Bytes()), user)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.UpdateAvatar(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestUserHandlerUpdateCoverImage(t *testing.T) {
	store := newFakeUserStore()
	user := seedUser(t, store, "om", "om@x.com", "secret123")
	handler := UserHandler{Users: store, Media: &fakeMediaStore{}, TempDir: t.TempDir()}

	body, contentType := multipartRegisterBody(t, nil, map[string]string{"coverImage": "cover.jpg"})
	req := authedRequest(http.MethodPatch, "/api/v1/users/cover-image", bytes.NewReader(body.Bytes()), user)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.UpdateCoverImage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp models.PublicUser
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.CoverImage != "https://media.example.com/cover.jpg" {
		t.Fatalf("expected hosted cover image URL got %q", resp.CoverImage)
	}
}

func TestUserHandlerChannelProfile(t *testing.T) {
	store := newFakeUserStore()
	user := seedUser(t, store, "om", "om@x.com", "secret123")
	store.profiles["channel"] = models.ChannelProfile{
		ID:              bson.NewObjectID(),
		Username:        "channel",
		FullName:        "Channel Owner",
		SubscriberCount: 42,
		IsSubscribed:    true,
	}
	handler := UserHandler{Users: store}

	req := authedRequest(http.MethodGet, "/api/v1/users/c/Channel", nil, user)
	rec := httptest.NewRecorder()

	handler.ChannelProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp models.ChannelProfile
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Username != "channel" || resp.SubscriberCount != 42 || !resp.IsSubscribed {
		t.Fatalf("unexpected channel profile %+v", resp)
	}
}

func TestUserHandlerChannelProfileNotFound(t *testing.T) {
	store := newFakeUserStore()
	user := seedUser(t, store, "om", "om@x.com", "secret123")
	handler := UserHandler{Users: store}

	req := authedRequest(http.MethodGet, "/api/v1/users/c/ghost", nil, user)
	rec := httptest.NewRecorder()

	handler.ChannelProfile(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestUserHandlerChannelProfileMissingUsername(t *testing.T) {
	store := newFakeUserStore()
	user := seedUser(t, store, "om", "om@x.com", "secret123")
	handler := UserHandler{Users: store}

	req := authedRequest(http.MethodGet, "/api/v1/users/c/", nil, user)
	rec := httptest.NewRecorder()

	handler.ChannelProfile(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestUserHandlerWatchHistory(t *testing.T) {
	store := newFakeUserStore()
	user := seedUser(t, store, "om", "om@x.com", "secret123")
	store.history[user.ID.Hex()] = []models.WatchHistoryEntry{
		{
			ID:    bson.NewObjectID(),
			Title: "First upload",
			Owner: models.VideoOwner{Username: "channel"},
		},
	}
	handler := UserHandler{Users: store}

	req := authedRequest(http.MethodGet, "/api/v1/users/history", nil, user)
	rec := httptest.NewRecorder()

	handler.WatchHistory(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp []models.WatchHistoryEntry
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].Title != "First upload" || resp[0].Owner.Username != "channel" {
		t.Fatalf("unexpected watch history %+v", resp)
	}
}
