package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

// UserHandler implements the authenticated account and profile endpoints.
type UserHandler struct {
	Users   UserStore
	Media   MediaStore
	TempDir string
}

// ChangePassword handles POST /api/v1/users/change-password requests.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	current, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid change password payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.OldPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		respondError(ctx, w, http.StatusBadRequest, "All fields are required")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		respondError(ctx, w, http.StatusBadRequest, "New password and confirm password do not match")
		return
	}
	if req.NewPassword == req.OldPassword {
		respondError(ctx, w, http.StatusBadRequest, "New password must be different from the old password")
		return
	}

	user, err := h.Users.FindByID(ctx, current.ID.Hex())
	if err != nil {
		logger.Error("change password user lookup failed", "error", err, "userId", current.ID.Hex())
		respondError(ctx, w, http.StatusInternalServerError, "unable to verify credentials")
		return
	}

	if !auth.CheckPassword(req.OldPassword, user.Password) {
		respondError(ctx, w, http.StatusUnauthorized, "Invalid old password")
		return
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		logger.Error("change password failed to hash", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	if err := h.Users.SetPassword(ctx, user.ID.Hex(), hashed); err != nil {
		logger.Error("change password update failed", "error", err, "userId", user.ID.Hex())
		respondError(ctx, w, http.StatusInternalServerError, "failed to update password")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

// CurrentUser handles GET /api/v1/users/current-user requests.
func (h UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	respondJSON(ctx, w, http.StatusOK, user)
}

// UpdateAccount handles PATCH /api/v1/users/update-account requests.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	current, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid update account payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.FullName == "" || req.Email == "" {
		respondError(ctx, w, http.StatusBadRequest, "All fields are required")
		return
	}

	user, err := h.Users.UpdateDetails(ctx, current.ID.Hex(), req.FullName, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "User with email already exists")
			return
		}
		logger.Error("update account failed", "error", err, "userId", current.ID.Hex())
		respondError(ctx, w, http.StatusInternalServerError, "failed to update account details")
		return
	}

	respondJSON(ctx, w, http.StatusOK, user.Public())
}

// UpdateAvatar handles PATCH /api/v1/users/avatar requests.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.Users.SetAvatar)
}

// UpdateCoverImage handles PATCH /api/v1/users/cover-image requests.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.Users.SetCoverImage)
}

func (h UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field string, store imageSetter) {
	if r.Method != http.MethodPatch {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	current, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		logger.Warn("invalid image payload", "field", field, "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	path, err := saveMultipartFile(r, field, h.TempDir)
	if err != nil {
		if errors.Is(err, errMissingFile) {
			respondError(ctx, w, http.StatusUnauthorized, "File is missing")
			return
		}
		logger.Error("buffer image upload", "field", field, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store file")
		return
	}

	url, err := h.Media.Upload(ctx, path)
	if err != nil {
		logger.Error("image upload failed", "field", field, "error", err)
		respondError(ctx, w, http.StatusUnauthorized, "Error while uploading file")
		return
	}

	user, err := store(ctx, current.ID.Hex(), url)
	if err != nil {
		logger.Error("store image url failed", "field", field, "error", err, "userId", current.ID.Hex())
		respondError(ctx, w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	respondJSON(ctx, w, http.StatusOK, user.Public())
}

// ChannelProfile handles GET /api/v1/users/c/{username} requests.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	current, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	username := strings.ToLower(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/users/c/"), "/"))
	if username == "" {
		respondError(ctx, w, http.StatusBadRequest, "Username is missing")
		return
	}

	profile, err := h.Users.ChannelProfile(ctx, username, current.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "Channel does not exist")
			return
		}
		logger.Error("channel profile aggregation failed", "error", err, "username", username)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load channel profile")
		return
	}

	respondJSON(ctx, w, http.StatusOK, profile)
}

// WatchHistory handles GET /api/v1/users/history requests.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	current, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	history, err := h.Users.WatchHistory(ctx, current.ID.Hex())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "User does not exist")
			return
		}
		logger.Error("watch history aggregation failed", "error", err, "userId", current.ID.Hex())
		respondError(ctx, w, http.StatusInternalServerError, "failed to load watch history")
		return
	}

	respondJSON(ctx, w, http.StatusOK, history)
}

type changePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type imageSetter func(ctx context.Context, id, url string) (models.User, error)
