package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// HealthHandler reports process liveness and dataset readiness.
type HealthHandler struct {
	service DatasetServiceInterface
	logger  *slog.Logger
	version string
	started time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(service DatasetServiceInterface, logger *slog.Logger, version string) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("component", "health_handler")),
		version: version,
		started: time.Now(),
	}
}

// Routes returns the health routes.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetHealth)
	return r
}

// GetHealth handles GET /api/health.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":         "healthy",
		"version":        h.version,
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"dataset_loaded": h.service.Loaded(),
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}
