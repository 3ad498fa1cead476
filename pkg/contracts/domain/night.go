package domain

import (
	"time"
)

// NightRecord represents one calendar night of sleep-stage measurements.
// Records are constructed only by the format normalizer; all stage values
// are hours and never negative. A numeric field that was missing or
// unparseable in the source export is 0, not NaN.
type NightRecord struct {
	Date       time.Time `json:"date"`
	TotalSleep float64   `json:"total_sleep_hours" validate:"min=0"`
	Core       float64   `json:"core_hours" validate:"min=0"`
	Deep       float64   `json:"deep_hours" validate:"min=0"`
	REM        float64   `json:"rem_hours" validate:"min=0"`
	Awake      float64   `json:"awake_hours" validate:"min=0"`
}

// REMPct returns the REM stage share of total sleep as a percentage.
// A night with zero total sleep yields 0, not a division error.
func (n NightRecord) REMPct() float64 {
	return stagePct(n.REM, n.TotalSleep)
}

// DeepPct returns the deep stage share of total sleep as a percentage.
func (n NightRecord) DeepPct() float64 {
	return stagePct(n.Deep, n.TotalSleep)
}

// CorePct returns the core stage share of total sleep as a percentage.
func (n NightRecord) CorePct() float64 {
	return stagePct(n.Core, n.TotalSleep)
}

func stagePct(stage, total float64) float64 {
	if total == 0 {
		return 0
	}
	return stage / total * 100
}

// DerivedNight is a NightRecord with the computed stage percentages and the
// rolling-average series attached at the matching index. Rolling values are
// NaN until a full window of records has been consumed; the JSON encoding
// renders those as null.
type DerivedNight struct {
	NightRecord

	REMPct  float64 `json:"rem_pct"`
	DeepPct float64 `json:"deep_pct"`
	CorePct float64 `json:"core_pct"`

	RollingREMPct     NullableFloat `json:"rolling_rem_pct"`
	RollingDeepPct    NullableFloat `json:"rolling_deep_pct"`
	RollingTotalSleep NullableFloat `json:"rolling_total_sleep"`
	RollingAwake      NullableFloat `json:"rolling_awake"`
}
