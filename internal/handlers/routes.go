package handlers

import (
	"net/http"

	"github.com/cliptube/backend/internal/middleware"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{DB: deps.DB}
	auth := AuthHandler{
		Users:   deps.Users,
		Tokens:  deps.Tokens,
		Media:   deps.Media,
		Google:  deps.Google,
		Limiter: deps.AuthLimiter,
		TempDir: deps.TempDir,
	}
	users := UserHandler{Users: deps.Users, Media: deps.Media, TempDir: deps.TempDir}
	subscriptions := SubscriptionHandler{Users: deps.Users, Subscriptions: deps.Subscriptions}
	videos := VideoHandler{}

	protected := middleware.RequireAuth(deps.Tokens, deps.Users)

	mux.HandleFunc("/healthz", health.Handle)

	mux.HandleFunc("/api/v1/users/register", auth.Register)
	mux.HandleFunc("/api/v1/users/login", auth.Login)
	mux.HandleFunc("/api/v1/users/refresh", auth.Refresh)
	mux.HandleFunc("/api/v1/users/auth/google", auth.GoogleLogin)
	mux.Handle("/api/v1/users/logout", protected(http.HandlerFunc(auth.Logout)))

	mux.Handle("/api/v1/users/change-password", protected(http.HandlerFunc(users.ChangePassword)))
	mux.Handle("/api/v1/users/current-user", protected(http.HandlerFunc(users.CurrentUser)))
	mux.Handle("/api/v1/users/update-account", protected(http.HandlerFunc(users.UpdateAccount)))
	mux.Handle("/api/v1/users/avatar", protected(http.HandlerFunc(users.UpdateAvatar)))
	mux.Handle("/api/v1/users/cover-image", protected(http.HandlerFunc(users.UpdateCoverImage)))
	mux.Handle("/api/v1/users/c/", protected(http.HandlerFunc(users.ChannelProfile)))
	mux.Handle("/api/v1/users/history", protected(http.HandlerFunc(users.WatchHistory)))

	mux.Handle("/api/v1/subscriptions/c/", protected(http.HandlerFunc(subscriptions.Handle)))

	mux.HandleFunc("/api/v1/videos", videos.Publish)
	mux.HandleFunc("/api/v1/videos/feed", videos.List)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Subscriptions SubscriptionStore
	Tokens        TokenManager
	Media         MediaStore
	Google        GoogleTokenVerifier
	DB            Pinger
	AuthLimiter   RateLimiter
	TempDir       string
}
