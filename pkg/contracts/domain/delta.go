package domain

// DeltaMetrics holds the four tracked metrics for one side of an event window,
// or the signed difference between the two sides. A metric computed over an
// empty window is NaN, which propagates through the difference and is rendered
// as null downstream.
type DeltaMetrics struct {
	REMPct     NullableFloat `json:"rem_pct"`
	DeepPct    NullableFloat `json:"deep_pct"`
	TotalSleep NullableFloat `json:"total_sleep"`
	Awake      NullableFloat `json:"awake"`
}

// Sub returns m - other per metric, propagating NaN.
func (m DeltaMetrics) Sub(other DeltaMetrics) DeltaMetrics {
	return DeltaMetrics{
		REMPct:     m.REMPct - other.REMPct,
		DeepPct:    m.DeepPct - other.DeepPct,
		TotalSleep: m.TotalSleep - other.TotalSleep,
		Awake:      m.Awake - other.Awake,
	}
}

// EventDelta compares mean sleep metrics in fixed windows flanking an event
// date. The event day itself belongs to neither window.
type EventDelta struct {
	Event EventRecord `json:"event"`

	Before DeltaMetrics `json:"before"`
	After  DeltaMetrics `json:"after"`
	Delta  DeltaMetrics `json:"delta"`

	// Nights actually found inside each window.
	PreNights  int `json:"pre_nights"`
	PostNights int `json:"post_nights"`
}
