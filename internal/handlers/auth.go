package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

// AuthHandler implements registration, login, logout, token refresh, and
// federated Google login.
type AuthHandler struct {
	Users   UserStore
	Tokens  TokenManager
	Media   MediaStore
	Google  GoogleTokenVerifier
	Limiter RateLimiter
	TempDir string
	NowFunc func() time.Time
}

// Register handles POST /api/v1/users/register requests. The body is a
// multipart form carrying the profile fields plus an avatar file and an
// optional cover image.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "register") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many registration attempts")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		logger.Warn("invalid register payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	fullName := strings.TrimSpace(r.FormValue("fullName"))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	username := strings.TrimSpace(strings.ToLower(r.FormValue("username")))
	password := r.FormValue("password")

	if fullName == "" || email == "" || username == "" || password == "" {
		logger.Warn("register missing fields", "username", username, "email", email)
		respondError(ctx, w, http.StatusBadRequest, "All fields are required")
		return
	}

	if _, err := h.Users.FindByUsernameOrEmail(ctx, username, email); err == nil {
		logger.Warn("register existing account", "username", username, "email", email)
		respondError(ctx, w, http.StatusConflict, "User with email or username already exists")
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		logger.Error("register user lookup failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to verify existing accounts")
		return
	}

	avatarPath, err := saveMultipartFile(r, "avatar", h.TempDir)
	if err != nil {
		if errors.Is(err, errMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, "Avatar file is required")
			return
		}
		logger.Error("register buffer avatar", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store avatar")
		return
	}

	avatarURL, err := h.Media.Upload(ctx, avatarPath)
	if err != nil {
		logger.Error("register avatar upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to upload avatar")
		return
	}

	coverImageURL := ""
	coverPath, err := saveMultipartFile(r, "coverImage", h.TempDir)
	switch {
	case err == nil:
		coverImageURL, err = h.Media.Upload(ctx, coverPath)
		if err != nil {
			logger.Error("register cover image upload failed", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "failed to upload cover image")
			return
		}
	case errors.Is(err, errMissingFile):
		// cover image is optional
	default:
		logger.Error("register buffer cover image", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store cover image")
		return
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		logger.Error("register failed to hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	now := h.now()
	user, err := h.Users.Create(ctx, models.User{
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Password:   hashed,
		Avatar:     avatarURL,
		CoverImage: coverImageURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "User with email or username already exists")
			return
		}
		logger.Error("register failed to create user", "error", err, "username", username)
		respondError(ctx, w, http.StatusInternalServerError, "Something went wrong while registering the user")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, user.Public())
}

// Login handles POST /api/v1/users/login requests.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "login") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Username == "" && req.Email == "" {
		respondError(ctx, w, http.StatusBadRequest, "username or email is required")
		return
	}

	user, err := h.Users.FindByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "User does not exist")
			return
		}
		logger.Error("login user lookup failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to verify credentials")
		return
	}

	if !auth.CheckPassword(req.Password, user.Password) {
		logger.Warn("login password mismatch", "userId", user.ID.Hex())
		respondError(ctx, w, http.StatusUnauthorized, "Invalid user credentials")
		return
	}

	pair, err := h.Tokens.Issue(ctx, user.ID.Hex())
	if err != nil {
		logger.Error("failed to issue tokens", "error", err, "userId", user.ID.Hex())
		respondError(ctx, w, http.StatusInternalServerError, "failed to create session")
		return
	}

	setAuthCookies(w, pair)
	respondJSON(ctx, w, http.StatusOK, loginResponse{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout handles POST /api/v1/users/logout requests (auth required).
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	if err := h.Tokens.Revoke(ctx, user.ID.Hex()); err != nil {
		logger.Error("logout failed to revoke refresh token", "error", err, "userId", user.ID.Hex())
		respondError(ctx, w, http.StatusInternalServerError, "Error while logout user")
		return
	}

	clearAuthCookies(w)
	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "User logged out successfully"})
}

// Refresh handles POST /api/v1/users/refresh requests, exchanging a refresh
// token taken from the refreshToken cookie or the JSON body for a new pair.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	token := ""
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = strings.TrimSpace(req.RefreshToken)
		}
	}

	if token == "" {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	pair, err := h.Tokens.Refresh(ctx, token)
	if err != nil {
		logger.Warn("refresh rejected", "error", err)
		if errors.Is(err, auth.ErrTokenReused) {
			respondError(ctx, w, http.StatusUnauthorized, "Refresh token is expired or used")
			return
		}
		respondError(ctx, w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	setAuthCookies(w, pair)
	respondJSON(ctx, w, http.StatusOK, pair)
}

// GoogleLogin handles POST /api/v1/users/auth/google requests. Accounts are
// never provisioned from a Google identity; the token's email must belong to
// an existing user.
func (h AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req googleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid google login payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.IDToken = strings.TrimSpace(req.IDToken)
	if req.IDToken == "" {
		respondError(ctx, w, http.StatusBadRequest, "id_token is required")
		return
	}

	profile, err := h.Google.Verify(ctx, req.IDToken)
	if err != nil {
		logger.Warn("google token rejected", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "Invalid Google ID token")
		return
	}

	user, err := h.Users.FindByUsernameOrEmail(ctx, "", strings.ToLower(profile.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "User does not exist")
			return
		}
		logger.Error("google login user lookup failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to verify credentials")
		return
	}

	pair, err := h.Tokens.Issue(ctx, user.ID.Hex())
	if err != nil {
		logger.Error("failed to issue tokens", "error", err, "userId", user.ID.Hex())
		respondError(ctx, w, http.StatusInternalServerError, "failed to create session")
		return
	}

	setAuthCookies(w, pair)
	respondJSON(ctx, w, http.StatusOK, loginResponse{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         models.PublicUser `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type googleLoginRequest struct {
	IDToken string `json:"id_token"`
}

func (h AuthHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
