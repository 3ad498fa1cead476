package http

import (
	"context"

	"sleepcli/pkg/contracts/domain"
)

// DatasetServiceInterface is the surface the handlers need from the dataset
// service. Defined here so tests can substitute a stub.
type DatasetServiceInterface interface {
	Loaded() bool
	Nights(ctx context.Context, cfg domain.FilterConfig) ([]domain.DerivedNight, error)
	Monthly(ctx context.Context, directive domain.SortDirective) ([]domain.MonthlySummary, error)
	EventDeltas(ctx context.Context) ([]domain.EventDelta, error)
}
