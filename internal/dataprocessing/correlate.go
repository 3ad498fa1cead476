package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"sleepcli/pkg/contracts/domain"
)

// DeltaWindowDays is the fixed width of the before and after windows flanking
// an event date.
const DeltaWindowDays = 30

// windowStats accumulates metric sums over one side of an event window.
type windowStats struct {
	totalSum float64
	awakeSum float64
	count    int

	remPctSum  float64
	deepPctSum float64
	pctCount   int
}

func (w *windowStats) add(rec domain.NightRecord) {
	w.totalSum += rec.TotalSleep
	w.awakeSum += rec.Awake
	w.count++

	// Percentages are recomputed per record before averaging rather than
	// averaging pre-stored percentages, and only over nights that slept.
	if rec.TotalSleep > 0 {
		w.remPctSum += rec.REMPct()
		w.deepPctSum += rec.DeepPct()
		w.pctCount++
	}
}

// means reduces the accumulated sums to per-metric means. An empty subset
// yields NaN, never an error; the presentation layer renders it as "no data".
func (w *windowStats) means() domain.DeltaMetrics {
	m := domain.DeltaMetrics{
		REMPct:     domain.NullFloat(),
		DeepPct:    domain.NullFloat(),
		TotalSleep: domain.NullFloat(),
		Awake:      domain.NullFloat(),
	}
	if w.count > 0 {
		m.TotalSleep = domain.NullableFloat(w.totalSum / float64(w.count))
		m.Awake = domain.NullableFloat(w.awakeSum / float64(w.count))
	}
	if w.pctCount > 0 {
		m.REMPct = domain.NullableFloat(w.remPctSum / float64(w.pctCount))
		m.DeepPct = domain.NullableFloat(w.deepPctSum / float64(w.pctCount))
	}
	return m
}

// EventDeltas computes, for each event, the mean sleep metrics in the 30-day
// windows before and after the event date and the signed difference between
// them. The event day itself belongs to neither window. Output is ordered by
// event date descending, most recent first.
func EventDeltas(ctx context.Context, records []domain.NightRecord, events []domain.EventRecord) []domain.EventDelta {
	deltas := make([]domain.EventDelta, 0, len(events))

	for _, event := range events {
		eventDay := DateOnly(event.Date)

		var pre, post windowStats
		for _, rec := range records {
			offset := daysBetween(eventDay, DateOnly(rec.Date))
			switch {
			case offset >= -DeltaWindowDays && offset <= -1:
				pre.add(rec)
			case offset >= 1 && offset <= DeltaWindowDays:
				post.add(rec)
			}
		}

		before := pre.means()
		after := post.means()

		deltas = append(deltas, domain.EventDelta{
			Event:      event,
			Before:     before,
			After:      after,
			Delta:      after.Sub(before),
			PreNights:  pre.count,
			PostNights: post.count,
		})
	}

	sort.SliceStable(deltas, func(i, j int) bool {
		return deltas[i].Event.Date.After(deltas[j].Event.Date)
	})

	slog.Default().DebugContext(ctx, "event correlation complete",
		slog.Int("events", len(deltas)),
		slog.Int("records", len(records)))

	return deltas
}

// daysBetween returns the whole-day offset from a to b; both are expected at
// day granularity already.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
