package domain

import (
	"strings"
	"time"
)

// EventRecord is a discrete point-in-time annotation, typically a medication
// start or stop. Dates are strictly parseable; a log line or row whose date
// cannot be parsed never becomes an EventRecord.
type EventRecord struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
}

// EventAction is the recognized action column value in tabular medication logs.
type EventAction string

const (
	EventActionStart EventAction = "START"
	EventActionStop  EventAction = "STOP"
)

// NormalizeEventAction maps a raw action cell to a recognized action.
// Matching is case-insensitive; anything unrecognized normalizes to empty.
func NormalizeEventAction(raw string) EventAction {
	switch EventAction(strings.ToUpper(strings.TrimSpace(raw))) {
	case EventActionStart:
		return EventActionStart
	case EventActionStop:
		return EventActionStop
	default:
		return ""
	}
}
