package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/repositories"
)

// SubscriptionHandler manages the directed subscriber-to-channel edges.
type SubscriptionHandler struct {
	Users         UserStore
	Subscriptions SubscriptionStore
}

// Handle serves /api/v1/subscriptions/c/{username}: POST subscribes the
// requesting user to the channel, DELETE removes the subscription.
func (h SubscriptionHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost, http.MethodDelete:
	default:
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

	username := strings.ToLower(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/subscriptions/c/"), "/"))
	if username == "" {
		respondError(ctx, w, http.StatusBadRequest, "Username is missing")
		return
	}

	channel, err := h.Users.FindByUsernameOrEmail(ctx, username, "")
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "Channel does not exist")
			return
		}
		logger.Error("subscription channel lookup failed", "error", err, "username", username)
		respondError(ctx, w, http.StatusInternalServerError, "failed to resolve channel")
		return
	}

	if channel.ID == current.ID {
		respondError(ctx, w, http.StatusBadRequest, "Cannot subscribe to your own channel")
		return
	}

	if r.Method == http.MethodPost {
		if err := h.Subscriptions.Subscribe(ctx, channel.ID, current.ID); err != nil {
			if errors.Is(err, repositories.ErrConflict) {
				respondError(ctx, w, http.StatusConflict, "Already subscribed")
				return
			}
			logger.Error("subscribe failed", "error", err, "channel", channel.ID.Hex())
			respondError(ctx, w, http.StatusInternalServerError, "failed to subscribe")
			return
		}
		respondJSON(ctx, w, http.StatusCreated, map[string]string{"message": "Subscribed successfully"})
		return
	}

	if err := h.Subscriptions.Unsubscribe(ctx, channel.ID, current.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "Subscription does not exist")
			return
		}
		logger.Error("unsubscribe failed", "error", err, "channel", channel.ID.Hex())
		respondError(ctx, w, http.StatusInternalServerError, "failed to unsubscribe")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "Unsubscribed successfully"})
}
