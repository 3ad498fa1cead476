package domain

// MonthlySummary aggregates one calendar month of night records.
// MonthKey is the canonical "YYYY-MM" form, so lexicographic order equals
// chronological order. Summaries are recomputed fresh from the full record
// set whenever the grouping input or sort key changes; they are never
// mutated in place.
type MonthlySummary struct {
	MonthKey       string  `json:"month" csv:"Month"`
	REMPctMean     float64 `json:"rem_pct_mean" csv:"REMPctMean"`
	DeepPctMean    float64 `json:"deep_pct_mean" csv:"DeepPctMean"`
	TotalSleepMean float64 `json:"total_sleep_mean" csv:"TotalSleepMean"`
	AwakeMean      float64 `json:"awake_mean" csv:"AwakeMean"`
	NightCount     int     `json:"night_count" csv:"Nights"`
}

// SortColumn identifies a sortable monthly-summary column.
type SortColumn string

const (
	SortByMonth      SortColumn = "month"
	SortByREMPct     SortColumn = "rem_pct"
	SortByDeepPct    SortColumn = "deep_pct"
	SortByTotalSleep SortColumn = "total_sleep"
	SortByAwake      SortColumn = "awake"
	SortByNights     SortColumn = "nights"
)

// SortDirection orders a sorted column ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortDirective selects the column and direction for the monthly summary table.
type SortDirective struct {
	Column    SortColumn    `json:"column" validate:"omitempty,oneof=month rem_pct deep_pct total_sleep awake nights"`
	Direction SortDirection `json:"direction" validate:"omitempty,oneof=asc desc"`
}

// DefaultSortDirective orders summaries by month, most recent first.
func DefaultSortDirective() SortDirective {
	return SortDirective{Column: SortByMonth, Direction: SortDesc}
}

// NextSort returns the directive that results from selecting column on a table
// currently sorted by cur: re-selecting the active column toggles direction,
// selecting a new column starts it descending.
func NextSort(cur SortDirective, column SortColumn) SortDirective {
	if cur.Column == column {
		dir := SortDesc
		if cur.Direction == SortDesc {
			dir = SortAsc
		}
		return SortDirective{Column: column, Direction: dir}
	}
	return SortDirective{Column: column, Direction: SortDesc}
}
