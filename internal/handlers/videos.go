package handlers

import "net/http"

// VideoHandler declares the video metadata endpoints. The routes are part of
// the public surface but their implementations are still pending.
type VideoHandler struct{}

// Publish handles POST /api/v1/videos.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	respondJSON(r.Context(), w, http.StatusNotImplemented, map[string]string{
		"message": "video publishing not yet implemented",
	})
}

// List handles GET /api/v1/videos/feed requests.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	respondJSON(r.Context(), w, http.StatusNotImplemented, map[string]string{
		"message": "video listing not yet implemented",
	})
}
