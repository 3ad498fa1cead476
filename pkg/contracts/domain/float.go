package domain

import (
	"math"
	"strconv"
)

// NullableFloat is a float64 whose NaN values encode to JSON null instead of
// failing to marshal. The pipeline uses NaN for "no data" statistics (empty
// window means, rolling averages before the first full window) and the
// presentation layer renders null as a placeholder.
type NullableFloat float64

// Valid reports whether the value carries data.
func (f NullableFloat) Valid() bool {
	return !math.IsNaN(float64(f))
}

// MarshalJSON encodes NaN as null and everything else as a plain number.
func (f NullableFloat) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(f), 'f', -1, 64)), nil
}

// UnmarshalJSON decodes null back to NaN.
func (f *NullableFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = NullableFloat(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = NullableFloat(v)
	return nil
}

// NullFloat returns the "no data" value.
func NullFloat() NullableFloat {
	return NullableFloat(math.NaN())
}
