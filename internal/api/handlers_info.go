package api

import (
	"context"
	"net/http"
	"time"

	"github.com/videotube-app/videotube/internal/util"
)

func (h *handlers) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, db := http.StatusOK, "ok"
	if err := h.DB.Ping(ctx); err != nil {
		h.Log.WithError(err).Warn("health: database unreachable")
		status, db = http.StatusServiceUnavailable, "unreachable"
	}
	util.WriteJSON(w, status, map[string]any{
		"service":      "videotube",
		"database":     db,
		"service_time": time.Now().UTC().Format(time.RFC3339),
	})
}
