package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"sleepcli/pkg/contracts/domain"
)

// FilterAndDerive applies the configured filters to the night sequence, then
// computes stage percentages and attaches the rolling-average series for the
// surviving records. The stage is pure and total: it never errors, and an
// empty input yields an empty output.
//
// Filters compose by conjunction, applied as date lower bound, date upper
// bound, then the total-sleep range. Both date bounds are inclusive of the
// named day.
func FilterAndDerive(ctx context.Context, records []domain.NightRecord, cfg domain.FilterConfig) []domain.DerivedNight {
	// Bounds compare at day granularity regardless of any time-of-day the
	// source timestamps carry.
	var from, toNext time.Time
	if cfg.DateFrom != nil {
		from = DateOnly(*cfg.DateFrom)
	}
	if cfg.DateTo != nil {
		// Exclusive of the day after DateTo, so a record dated exactly DateTo
		// survives.
		toNext = DateOnly(*cfg.DateTo).AddDate(0, 0, 1)
	}

	filtered := make([]domain.NightRecord, 0, len(records))
	for _, rec := range records {
		day := DateOnly(rec.Date)
		if cfg.DateFrom != nil && day.Before(from) {
			continue
		}
		if cfg.DateTo != nil && !day.Before(toNext) {
			continue
		}
		if rec.TotalSleep < cfg.MinHours || rec.TotalSleep > cfg.MaxHours {
			continue
		}
		filtered = append(filtered, rec)
	}

	derived := make([]domain.DerivedNight, len(filtered))
	for i, rec := range filtered {
		derived[i] = domain.DerivedNight{
			NightRecord: rec,
			REMPct:      rec.REMPct(),
			DeepPct:     rec.DeepPct(),
			CorePct:     rec.CorePct(),
		}
	}

	window := cfg.RollingWindow
	if window < 1 {
		window = 1
	}

	rollingREM := RollingMean(derived, window, func(d domain.DerivedNight) float64 { return d.REMPct })
	rollingDeep := RollingMean(derived, window, func(d domain.DerivedNight) float64 { return d.DeepPct })
	rollingTotal := RollingMean(derived, window, func(d domain.DerivedNight) float64 { return d.TotalSleep })
	rollingAwake := RollingMean(derived, window, func(d domain.DerivedNight) float64 { return d.Awake })

	for i := range derived {
		derived[i].RollingREMPct = domain.NullableFloat(rollingREM[i])
		derived[i].RollingDeepPct = domain.NullableFloat(rollingDeep[i])
		derived[i].RollingTotalSleep = domain.NullableFloat(rollingTotal[i])
		derived[i].RollingAwake = domain.NullableFloat(rollingAwake[i])
	}

	slog.Default().DebugContext(ctx, "filter and derive complete",
		slog.Int("input_records", len(records)),
		slog.Int("output_records", len(derived)),
		slog.Int("rolling_window", window))

	return derived
}

// DateOnly truncates a timestamp to its calendar day in UTC. Filter bounds
// and event windows compare at day granularity.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
