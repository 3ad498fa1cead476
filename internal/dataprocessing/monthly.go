package dataprocessing

import (
	"context"
	"log/slog"
	"sort"

	"sleepcli/pkg/contracts/domain"
)

// monthKeyLayout formats a date as its canonical "YYYY-MM" grouping key, so
// lexicographic order equals chronological order.
const monthKeyLayout = "2006-01"

// monthAccumulator collects running sums for one calendar month.
type monthAccumulator struct {
	totalSum float64
	awakeSum float64
	count    int

	// Percentage sums run only over nights with total sleep > 0, so a night
	// with a zero denominator never manufactures a percentage.
	remPctSum  float64
	deepPctSum float64
	pctCount   int
}

// MonthlySummaries groups the night sequence by calendar month and computes
// per-month means, sorted by the given directive. Callers feed the unfiltered
// full dataset here; summary rows do not move while chart filters are tuned.
func MonthlySummaries(ctx context.Context, records []domain.NightRecord, directive domain.SortDirective) []domain.MonthlySummary {
	groups := make(map[string]*monthAccumulator)

	for _, rec := range records {
		key := rec.Date.Format(monthKeyLayout)
		acc, ok := groups[key]
		if !ok {
			acc = &monthAccumulator{}
			groups[key] = acc
		}

		acc.totalSum += rec.TotalSleep
		acc.awakeSum += rec.Awake
		acc.count++

		if rec.TotalSleep > 0 {
			acc.remPctSum += rec.REMPct()
			acc.deepPctSum += rec.DeepPct()
			acc.pctCount++
		}
	}

	summaries := make([]domain.MonthlySummary, 0, len(groups))
	for key, acc := range groups {
		s := domain.MonthlySummary{
			MonthKey:       key,
			TotalSleepMean: acc.totalSum / float64(acc.count),
			AwakeMean:      acc.awakeSum / float64(acc.count),
			NightCount:     acc.count,
		}
		if acc.pctCount > 0 {
			s.REMPctMean = acc.remPctSum / float64(acc.pctCount)
			s.DeepPctMean = acc.deepPctSum / float64(acc.pctCount)
		}
		summaries = append(summaries, s)
	}

	// Month-ascending base order first, then a stable sort on the requested
	// column. Stability makes the month key the implicit tie-breaker, which
	// keeps output deterministic.
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].MonthKey < summaries[j].MonthKey
	})
	sortSummaries(summaries, directive)

	slog.Default().DebugContext(ctx, "monthly aggregation complete",
		slog.Int("months", len(summaries)),
		slog.String("sort_column", string(directive.Column)),
		slog.String("sort_direction", string(directive.Direction)))

	return summaries
}

func sortSummaries(summaries []domain.MonthlySummary, directive domain.SortDirective) {
	column := directive.Column
	if column == "" {
		column = domain.SortByMonth
	}

	key := func(s domain.MonthlySummary) float64 {
		switch column {
		case domain.SortByREMPct:
			return s.REMPctMean
		case domain.SortByDeepPct:
			return s.DeepPctMean
		case domain.SortByTotalSleep:
			return s.TotalSleepMean
		case domain.SortByAwake:
			return s.AwakeMean
		case domain.SortByNights:
			return float64(s.NightCount)
		default:
			return 0
		}
	}

	descending := directive.Direction != domain.SortAsc

	sort.SliceStable(summaries, func(i, j int) bool {
		var less bool
		if column == domain.SortByMonth {
			less = summaries[i].MonthKey < summaries[j].MonthKey
		} else {
			less = key(summaries[i]) < key(summaries[j])
		}
		if descending {
			return !less && !equalKeys(summaries[i], summaries[j], column)
		}
		return less
	})
}

func equalKeys(a, b domain.MonthlySummary, column domain.SortColumn) bool {
	switch column {
	case domain.SortByMonth:
		return a.MonthKey == b.MonthKey
	case domain.SortByREMPct:
		return a.REMPctMean == b.REMPctMean
	case domain.SortByDeepPct:
		return a.DeepPctMean == b.DeepPctMean
	case domain.SortByTotalSleep:
		return a.TotalSleepMean == b.TotalSleepMean
	case domain.SortByAwake:
		return a.AwakeMean == b.AwakeMean
	case domain.SortByNights:
		return a.NightCount == b.NightCount
	default:
		return true
	}
}
