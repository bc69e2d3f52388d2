package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

type userCtxKey struct{}

// AccessTokenCookie is the cookie checked before the Authorization header.
const AccessTokenCookie = "accessToken"

// TokenVerifier validates access tokens and exposes their claims.
type TokenVerifier interface {
	Verify(token string) (*auth.AccessClaims, error)
}

// UserLoader resolves the user referenced by verified token claims.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// UserFromContext returns the authenticated user attached by RequireAuth.
func UserFromContext(ctx context.Context) (models.PublicUser, bool) {
	user, ok := ctx.Value(userCtxKey{}).(models.PublicUser)
	return user, ok
}

// WithUser attaches an authenticated user to the context. Exposed for handler tests.
func WithUser(ctx context.Context, user models.PublicUser) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

// RequireAuth gates protected routes. It resolves the access token from the
// accessToken cookie or the Authorization bearer header, verifies it, loads
// the referenced user, and attaches the non-sensitive projection to the
// request context. Any failure short-circuits with 401.
func RequireAuth(verifier TokenVerifier, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := logging.FromContext(ctx)

			token := tokenFromRequest(r)
			if token == "" {
				logger.Warn("missing access token")
				unauthorized(w, "Unauthorized request")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				logger.Warn("access token rejected", "error", err)
				unauthorized(w, fmt.Sprintf("Invalid access token: %v", err))
				return
			}

			user, err := users.FindByID(ctx, claims.UserID)
			if err != nil {
				if !errors.Is(err, repositories.ErrNotFound) {
					logger.Error("load token user", "userId", claims.UserID, "error", err)
				}
				unauthorized(w, "Invalid access token")
				return
			}

			ctx = WithUser(ctx, user.Public())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return header
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": detail})
}
