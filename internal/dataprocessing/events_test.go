package dataprocessing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sleepcli/internal/errors"
)

func TestParseLines(t *testing.T) {
	data := `2024-03-10 - Sertraline 50mg - START
not a date - ignored
2024-01-05 - Magnesium 200mg

2024-02-20 - Stopped caffeine after noon
`
	p := NewEventParser(nil)
	events := p.ParseLines(context.Background(), data)
	require.Len(t, events, 3)

	// Ascending by date.
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), events[0].Date)
	assert.Equal(t, "Magnesium 200mg", events[0].Label)
	assert.Equal(t, "Stopped caffeine after noon", events[1].Label)
	assert.Equal(t, "Sertraline 50mg - START", events[2].Label)
}

func TestParseLinesSplitsAtFirstSeparator(t *testing.T) {
	p := NewEventParser(nil)
	events := p.ParseLines(context.Background(), "2024-03-10 - Sertraline 50mg - START\n")
	require.Len(t, events, 1)

	// The label keeps everything after the first separator, including any
	// further separator occurrences.
	assert.Equal(t, "Sertraline 50mg - START", events[0].Label)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), events[0].Date)
}

func TestParseTable(t *testing.T) {
	data := `date,medication,dose_mg,action
2024-03-10,Sertraline,50,start
2024-05-01,Melatonin,,
2024-04-02,Sertraline,50,STOP
`
	p := NewEventParser(nil)
	events, err := p.ParseTable(context.Background(), "meds.csv", []byte(data))
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Case-insensitive action, synthesized label matching the line format.
	assert.Equal(t, "Sertraline 50mg - START", events[0].Label)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), events[0].Date)

	assert.Equal(t, "Sertraline 50mg - STOP", events[1].Label)

	// Absent dose omits the dose segment entirely.
	assert.Equal(t, "Melatonin", events[2].Label)
}

func TestParseTableLabelSynthesis(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"dose and action", "2024-01-01,Trazodone,100,START", "Trazodone 100mg - START"},
		{"zero dose omitted", "2024-01-01,Trazodone,0,START", "Trazodone - START"},
		{"negative dose omitted", "2024-01-01,Trazodone,-50,STOP", "Trazodone - STOP"},
		{"unknown action omitted", "2024-01-01,Trazodone,100,paused", "Trazodone 100mg"},
		{"fractional dose", "2024-01-01,Melatonin,0.5,", "Melatonin 0.5mg"},
	}

	p := NewEventParser(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "date,medication,dose_mg,action\n" + tt.row + "\n"
			events, err := p.ParseTable(context.Background(), "meds.csv", []byte(data))
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, tt.want, events[0].Label)
		})
	}
}

func TestParseTableDropsBadDates(t *testing.T) {
	data := `date,medication,dose_mg,action
,Sertraline,50,start
garbage,Sertraline,50,start
2024-03-10,Sertraline,50,start
`
	p := NewEventParser(nil)
	events, err := p.ParseTable(context.Background(), "meds.csv", []byte(data))
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestParseTableUnrecognizedHeader(t *testing.T) {
	p := NewEventParser(nil)
	_, err := p.ParseTable(context.Background(), "meds.csv", []byte("when,what\n2024-01-01,thing\n"))
	assert.ErrorIs(t, err, errors.ErrUnrecognizedInput)
}

func TestParseTableStableTieOrder(t *testing.T) {
	data := `date,medication,dose_mg,action
2024-03-10,First,10,
2024-03-10,Second,20,
`
	p := NewEventParser(nil)
	events, err := p.ParseTable(context.Background(), "meds.csv", []byte(data))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "First 10mg", events[0].Label)
	assert.Equal(t, "Second 20mg", events[1].Label)
}
