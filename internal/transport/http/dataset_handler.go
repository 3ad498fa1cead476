package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "sleepcli/internal/errors"
	"sleepcli/pkg/contracts/domain"
)

// DatasetHandler serves the derived views of the loaded sleep dataset.
type DatasetHandler struct {
	service  DatasetServiceInterface
	logger   *slog.Logger
	validate *validator.Validate
	defaults domain.FilterConfig
}

// NewDatasetHandler creates a dataset handler. defaults seeds the filter
// parameters that a request does not override.
func NewDatasetHandler(service DatasetServiceInterface, logger *slog.Logger, defaults domain.FilterConfig) *DatasetHandler {
	return &DatasetHandler{
		service:  service,
		logger:   logger.With(slog.String("component", "dataset_handler")),
		validate: validator.New(),
		defaults: defaults,
	}
}

// Routes returns the dataset routes.
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(h.DatasetCtx)

	r.Get("/nights", h.GetNights)
	r.Get("/monthly", h.GetMonthly)
	r.Get("/event-deltas", h.GetEventDeltas)

	return r
}

// DatasetCtx rejects view requests until a dataset has been loaded.
func (h *DatasetHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.service.Loaded() {
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrDatasetNotLoaded))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// nightsRequest carries the filter overrides parsed from query parameters.
type nightsRequest struct {
	MinHours float64 `validate:"min=0,max=24"`
	MaxHours float64 `validate:"min=0,max=24,gtefield=MinHours"`
	Window   int     `validate:"min=1,max=365"`
}

// GetNights handles GET /api/dataset/nights.
//
// Query parameters: min_hours, max_hours, from, to (2006-01-02), window.
func (h *DatasetHandler) GetNights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := h.defaults
	q := r.URL.Query()

	var err error
	if cfg.MinHours, err = floatParam(q.Get("min_hours"), cfg.MinHours); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrValidation("min_hours", err.Error())))
		return
	}
	if cfg.MaxHours, err = floatParam(q.Get("max_hours"), cfg.MaxHours); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrValidation("max_hours", err.Error())))
		return
	}
	if cfg.RollingWindow, err = intParam(q.Get("window"), cfg.RollingWindow); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrValidation("window", err.Error())))
		return
	}
	if cfg.DateFrom, err = dateParam(q.Get("from"), cfg.DateFrom); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrValidation("from", err.Error())))
		return
	}
	if cfg.DateTo, err = dateParam(q.Get("to"), cfg.DateTo); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrValidation("to", err.Error())))
		return
	}

	req := nightsRequest{MinHours: cfg.MinHours, MaxHours: cfg.MaxHours, Window: cfg.RollingWindow}
	if err := h.validate.Struct(req); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}

	nights, err := h.service.Nights(ctx, cfg)
	if err != nil {
		h.logger.ErrorContext(ctx, "nights view failed", slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.FromAppError(err)))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"count":  len(nights),
		"nights": nights,
	})
}

// GetMonthly handles GET /api/dataset/monthly.
//
// Query parameters: sort (month, rem_pct, deep_pct, total_sleep, awake,
// nights) and dir (asc, desc).
func (h *DatasetHandler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	directive := domain.DefaultSortDirective()
	if col := q.Get("sort"); col != "" {
		directive.Column = domain.SortColumn(col)
	}
	if dir := q.Get("dir"); dir != "" {
		directive.Direction = domain.SortDirection(dir)
	}

	if err := h.validate.Struct(directive); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}

	summaries, err := h.service.Monthly(ctx, directive)
	if err != nil {
		h.logger.ErrorContext(ctx, "monthly view failed", slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.FromAppError(err)))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"count":   len(summaries),
		"sort":    directive,
		"monthly": summaries,
	})
}

// GetEventDeltas handles GET /api/dataset/event-deltas.
func (h *DatasetHandler) GetEventDeltas(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deltas, err := h.service.EventDeltas(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "event deltas view failed", slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.FromAppError(err)))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"count":  len(deltas),
		"deltas": deltas,
	})
}

func floatParam(raw string, fallback float64) (float64, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("must be a number, got %q", raw)
	}
	return v, nil
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("must be an integer, got %q", raw)
	}
	return v, nil
}

func dateParam(raw string, fallback *time.Time) (*time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("must be a date in 2006-01-02 form, got %q", raw)
	}
	return &v, nil
}
