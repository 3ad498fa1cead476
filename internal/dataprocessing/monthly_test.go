package dataprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sleepcli/pkg/contracts/domain"
)

func TestMonthlySummariesSingleRecordMonth(t *testing.T) {
	records := []domain.NightRecord{
		night("2024-01-15", 8, 4.2, 1.2, 1.6, 1.0),
	}

	out := MonthlySummaries(context.Background(), records, domain.DefaultSortDirective())
	require.Len(t, out, 1)

	s := out[0]
	assert.Equal(t, "2024-01", s.MonthKey)
	assert.Equal(t, 1, s.NightCount)
	assert.InDelta(t, 8.0, s.TotalSleepMean, 1e-9)
	assert.InDelta(t, 1.0, s.AwakeMean, 1e-9)
	assert.InDelta(t, 20.0, s.REMPctMean, 1e-9)
	assert.InDelta(t, 15.0, s.DeepPctMean, 1e-9)
}

func TestMonthlySummariesPercentagesSkipZeroTotalNights(t *testing.T) {
	records := []domain.NightRecord{
		night("2024-01-01", 8, 0, 1.2, 1.6, 0.5),
		night("2024-01-02", 0, 0, 0, 0, 2.0), // no sleep recorded
	}

	out := MonthlySummaries(context.Background(), records, domain.DefaultSortDirective())
	require.Len(t, out, 1)

	s := out[0]
	// Hour means cover all nights; percentage means only nights that slept.
	assert.Equal(t, 2, s.NightCount)
	assert.InDelta(t, 4.0, s.TotalSleepMean, 1e-9)
	assert.InDelta(t, 1.25, s.AwakeMean, 1e-9)
	assert.InDelta(t, 20.0, s.REMPctMean, 1e-9)
	assert.InDelta(t, 15.0, s.DeepPctMean, 1e-9)
}

func TestMonthlySummariesAllZeroTotalMonth(t *testing.T) {
	records := []domain.NightRecord{
		night("2024-01-01", 0, 0, 0, 0, 1.0),
	}

	out := MonthlySummaries(context.Background(), records, domain.DefaultSortDirective())
	require.Len(t, out, 1)
	assert.Equal(t, 0.0, out[0].REMPctMean)
	assert.Equal(t, 0.0, out[0].DeepPctMean)
}

func TestMonthlySummariesDefaultSortMostRecentFirst(t *testing.T) {
	records := []domain.NightRecord{
		night("2024-01-01", 7, 0, 0, 0, 0),
		night("2024-03-01", 8, 0, 0, 0, 0),
		night("2024-02-01", 6, 0, 0, 0, 0),
	}

	out := MonthlySummaries(context.Background(), records, domain.DefaultSortDirective())
	require.Len(t, out, 3)
	assert.Equal(t, "2024-03", out[0].MonthKey)
	assert.Equal(t, "2024-02", out[1].MonthKey)
	assert.Equal(t, "2024-01", out[2].MonthKey)
}

func TestMonthlySummariesSortByColumn(t *testing.T) {
	records := []domain.NightRecord{
		night("2024-01-01", 6, 0, 0, 0, 0),
		night("2024-02-01", 8, 0, 0, 0, 0),
		night("2024-03-01", 7, 0, 0, 0, 0),
	}

	asc := MonthlySummaries(context.Background(), records, domain.SortDirective{
		Column:    domain.SortByTotalSleep,
		Direction: domain.SortAsc,
	})
	require.Len(t, asc, 3)
	assert.Equal(t, "2024-01", asc[0].MonthKey)
	assert.Equal(t, "2024-03", asc[1].MonthKey)
	assert.Equal(t, "2024-02", asc[2].MonthKey)

	desc := MonthlySummaries(context.Background(), records, domain.SortDirective{
		Column:    domain.SortByTotalSleep,
		Direction: domain.SortDesc,
	})
	assert.Equal(t, "2024-02", desc[0].MonthKey)
	assert.Equal(t, "2024-01", desc[2].MonthKey)
}

func TestMonthlySummariesSortTiesKeepMonthOrder(t *testing.T) {
	// Equal night counts: the stable sort keeps month-ascending base order.
	records := []domain.NightRecord{
		night("2024-01-01", 7, 0, 0, 0, 0),
		night("2024-02-01", 8, 0, 0, 0, 0),
		night("2024-03-01", 6, 0, 0, 0, 0),
	}

	out := MonthlySummaries(context.Background(), records, domain.SortDirective{
		Column:    domain.SortByNights,
		Direction: domain.SortDesc,
	})
	require.Len(t, out, 3)
	assert.Equal(t, "2024-01", out[0].MonthKey)
	assert.Equal(t, "2024-02", out[1].MonthKey)
	assert.Equal(t, "2024-03", out[2].MonthKey)
}
