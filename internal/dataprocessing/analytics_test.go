package dataprocessing

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sleepcli/pkg/contracts/domain"
)

func night(day string, total, core, deep, rem, awake float64) domain.NightRecord {
	date, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return domain.NightRecord{
		Date:       date,
		TotalSleep: total,
		Core:       core,
		Deep:       deep,
		REM:        rem,
		Awake:      awake,
	}
}

func datePtr(day string) *time.Time {
	date, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return &date
}

func TestFilterAndDeriveScenario(t *testing.T) {
	records := []domain.NightRecord{
		night("2024-01-01", 8, 4.2, 1.2, 1.6, 1.0),
		night("2024-01-02", 7, 4.0, 1.0, 1.0, 1.0),
	}

	cfg := domain.DefaultFilterConfig()
	cfg.RollingWindow = 2

	out := FilterAndDerive(context.Background(), records, cfg)
	require.Len(t, out, 2)

	assert.InDelta(t, 20.0, out[0].REMPct, 1e-9)
	assert.InDelta(t, 100.0/7.0, out[1].REMPct, 1e-6)

	// Rolling remPct is defined only at index 1: mean(20.0, 14.29) ~= 17.14.
	assert.False(t, out[0].RollingREMPct.Valid())
	assert.InDelta(t, (20.0+100.0/7.0)/2, float64(out[1].RollingREMPct), 1e-6)

	assert.False(t, out[0].RollingTotalSleep.Valid())
	assert.InDelta(t, 7.5, float64(out[1].RollingTotalSleep), 1e-9)
}

func TestFilterDateBoundsInclusive(t *testing.T) {
	records := []domain.NightRecord{
		night("2024-01-01", 7, 0, 0, 0, 0),
		night("2024-01-15", 7, 0, 0, 0, 0),
		night("2024-01-31", 7, 0, 0, 0, 0),
		night("2024-02-01", 7, 0, 0, 0, 0),
	}

	cfg := domain.DefaultFilterConfig()
	cfg.DateFrom = datePtr("2024-01-01")
	cfg.DateTo = datePtr("2024-01-31")

	out := FilterAndDerive(context.Background(), records, cfg)
	require.Len(t, out, 3)

	// A record dated exactly DateTo is retained; DateTo + 1 day is excluded.
	assert.Equal(t, 31, out[2].Date.Day())
}

func TestFilterHoursRangeInclusive(t *testing.T) {
	records := []domain.NightRecord{
		night("2024-01-01", 3.9, 0, 0, 0, 0),
		night("2024-01-02", 4.0, 0, 0, 0, 0),
		night("2024-01-03", 10.0, 0, 0, 0, 0),
		night("2024-01-04", 10.1, 0, 0, 0, 0),
	}

	cfg := domain.DefaultFilterConfig()
	cfg.MinHours = 4
	cfg.MaxHours = 10

	out := FilterAndDerive(context.Background(), records, cfg)
	require.Len(t, out, 2)
	assert.Equal(t, 2, out[0].Date.Day())
	assert.Equal(t, 3, out[1].Date.Day())
}

func TestFilterAndDeriveZeroTotalSleep(t *testing.T) {
	records := []domain.NightRecord{
		night("2024-01-01", 0, 0, 0, 1.0, 0.5),
	}

	out := FilterAndDerive(context.Background(), records, domain.DefaultFilterConfig())
	require.Len(t, out, 1)

	// Percentages are 0 for a zero-total night, never NaN.
	assert.Equal(t, 0.0, out[0].REMPct)
	assert.Equal(t, 0.0, out[0].DeepPct)
	assert.Equal(t, 0.0, out[0].CorePct)
	assert.False(t, math.IsNaN(out[0].REMPct))
}

func TestFilterAndDeriveEmptyInput(t *testing.T) {
	out := FilterAndDerive(context.Background(), nil, domain.DefaultFilterConfig())
	assert.Empty(t, out)
}

func TestFilterAndDeriveRollingRestartsAfterFilter(t *testing.T) {
	// Rolling averages run over the filtered sequence, so the window is
	// built from surviving records only.
	records := []domain.NightRecord{
		night("2024-01-01", 8, 0, 0, 0, 0),
		night("2024-01-02", 2, 0, 0, 0, 0), // filtered out by MinHours
		night("2024-01-03", 6, 0, 0, 0, 0),
	}

	cfg := domain.DefaultFilterConfig()
	cfg.MinHours = 4
	cfg.RollingWindow = 2

	out := FilterAndDerive(context.Background(), records, cfg)
	require.Len(t, out, 2)
	assert.False(t, out[0].RollingTotalSleep.Valid())
	assert.InDelta(t, 7.0, float64(out[1].RollingTotalSleep), 1e-9)
}
