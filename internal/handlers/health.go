package handlers

import (
	"encoding/json"
	"net/http"
)

// HealthHandler responds with service health information, including
// database reachability.
type HealthHandler struct {
	DB Pinger
}

// Handle implements GET /healthz.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	status := http.StatusOK
	payload := map[string]string{"status": "ok"}

	if h.DB != nil {
		if err := h.DB.Ping(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			payload = map[string]string{"status": "degraded", "database": err.Error()}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
