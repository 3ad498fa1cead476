package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"sleepcli/internal/dataprocessing"
	apperrors "sleepcli/internal/errors"
	"sleepcli/internal/infrastructure"
	"sleepcli/pkg/contracts/domain"
)

// DatasetService owns the loaded sleep dataset and serves derived views.
// The canonical night records and the event log are parsed once at load time;
// every view is recomputed from them on demand so a parameter change can never
// observe a stale aggregate.
type DatasetService struct {
	logger     *slog.Logger
	normalizer *dataprocessing.Normalizer
	events     *dataprocessing.EventParser
	metrics    *infrastructure.PipelineMetrics

	mu      sync.RWMutex
	records []domain.NightRecord
	log     []domain.EventRecord
	loaded  bool
}

// NewDatasetService creates a dataset service.
func NewDatasetService(logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "dataset_service"))
	return &DatasetService{
		logger:     logger,
		normalizer: dataprocessing.NewNormalizer(logger),
		events:     dataprocessing.NewEventParser(logger),
	}
}

// SetMetrics attaches pipeline instruments; nil disables recording.
func (s *DatasetService) SetMetrics(metrics *infrastructure.PipelineMetrics) {
	s.metrics = metrics
}

// LoadSleepFile reads and normalizes a sleep export in any supported format.
func (s *DatasetService) LoadSleepFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.NewStorageError("failed to read sleep export", err)
	}

	start := time.Now()
	records, err := s.normalizer.Normalize(ctx, filepath.Base(path), data)
	infrastructure.RecordPipelineRun(ctx, s.metrics, "normalize", time.Since(start), err)
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordsNormalized.Add(ctx, int64(len(records)))
	}

	s.mu.Lock()
	s.records = records
	s.loaded = true
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "sleep dataset loaded",
		slog.String("path", path),
		slog.Int("records", len(records)))
	return nil
}

// LoadEventsFile reads and parses an event log. Files named *.csv or *.xlsx
// are treated as tabular medication logs; anything else as the line format.
func (s *DatasetService) LoadEventsFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.NewStorageError("failed to read event log", err)
	}

	name := filepath.Base(path)
	var events []domain.EventRecord
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		events, err = s.events.ParseTable(ctx, name, data)
		if err != nil {
			return err
		}
	default:
		events = s.events.ParseLines(ctx, string(data))
	}

	s.mu.Lock()
	s.log = events
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "event log loaded",
		slog.String("path", path),
		slog.Int("events", len(events)))
	return nil
}

// Loaded reports whether a sleep dataset has been loaded.
func (s *DatasetService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Nights returns the filtered night series with derived metrics attached.
func (s *DatasetService) Nights(ctx context.Context, cfg domain.FilterConfig) ([]domain.DerivedNight, error) {
	records, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	nights := dataprocessing.FilterAndDerive(ctx, records, cfg)
	infrastructure.RecordPipelineRun(ctx, s.metrics, "filter_derive", time.Since(start), nil)
	return nights, nil
}

// Monthly returns per-month summaries over the full dataset, unaffected by
// any night-level filter, sorted by the directive.
func (s *DatasetService) Monthly(ctx context.Context, directive domain.SortDirective) ([]domain.MonthlySummary, error) {
	records, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	summaries := dataprocessing.MonthlySummaries(ctx, records, directive)
	infrastructure.RecordPipelineRun(ctx, s.metrics, "monthly", time.Since(start), nil)
	return summaries, nil
}

// EventDeltas returns the before/after comparison for every loaded event.
func (s *DatasetService) EventDeltas(ctx context.Context) ([]domain.EventDelta, error) {
	s.mu.RLock()
	records, events, loaded := s.records, s.log, s.loaded
	s.mu.RUnlock()

	if !loaded {
		return nil, apperrors.NewNotFoundError("dataset")
	}
	start := time.Now()
	deltas := dataprocessing.EventDeltas(ctx, records, events)
	infrastructure.RecordPipelineRun(ctx, s.metrics, "event_deltas", time.Since(start), nil)
	return deltas, nil
}

// Records returns the canonical normalized night records.
func (s *DatasetService) Records() []domain.NightRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Events returns the parsed event log.
func (s *DatasetService) Events() []domain.EventRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log
}

func (s *DatasetService) snapshot() ([]domain.NightRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, apperrors.NewNotFoundError("dataset")
	}
	return s.records, nil
}
