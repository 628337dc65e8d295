package api

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/erazemk/najdeno/internal/items"
)

// HealthHandler reports whether the storage backend is reachable.
type HealthHandler struct {
	Items *items.Repository
	Log   logrus.FieldLogger
}

// Check handles GET /api/health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.Items.Ping(ctx); err != nil {
		requestLog(r, h.Log).WithError(err).Error("storage health check failed")
		jsonResponse(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unavailable",
			"storage": h.Items.Backend(),
		})
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"storage": h.Items.Backend(),
	})
}
