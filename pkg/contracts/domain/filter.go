package domain

import (
	"time"
)

// FilterConfig is the full parameter set for the filter-and-derive stage.
// Date bounds are inclusive on both ends; nil bounds are open. RollingWindow
// is the fixed width of the attached moving averages.
type FilterConfig struct {
	MinHours      float64    `json:"min_hours" validate:"min=0"`
	MaxHours      float64    `json:"max_hours" validate:"min=0"`
	DateFrom      *time.Time `json:"date_from,omitempty"`
	DateTo        *time.Time `json:"date_to,omitempty"`
	RollingWindow int        `json:"rolling_window" validate:"min=1"`
}

// DefaultFilterConfig covers the full plausible sleep range with a one-week
// rolling window.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinHours:      0,
		MaxHours:      24,
		RollingWindow: 7,
	}
}
