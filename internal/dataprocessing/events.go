package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"sleepcli/internal/errors"
	"sleepcli/pkg/contracts/domain"
)

// eventLineSeparator splits a line-format event entry into its date prefix
// and free-text label.
const eventLineSeparator = " - "

// eventColumn identifies a semantic field of the tabular medication log.
type eventColumn int

const (
	evtDate eventColumn = iota
	evtMedication
	evtDose
	evtAction
)

var eventHeaderAliases = map[eventColumn][]string{
	evtDate:       {"date", "day"},
	evtMedication: {"medication", "drug", "med"},
	evtDose:       {"dose_mg", "dose", "dosage_mg"},
	evtAction:     {"action", "change"},
}

// EventParser turns medication-event logs into the canonical event sequence.
// Two textual shapes are accepted: a delimited line format and a tabular
// format. The caller selects the shape, typically from the file name.
type EventParser struct {
	logger *slog.Logger
}

// NewEventParser creates an event parser. A nil logger falls back to
// slog.Default.
func NewEventParser(logger *slog.Logger) *EventParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventParser{logger: logger}
}

// ParseLines parses the line format: each non-blank line splits at the first
// " - " into a date prefix and a label suffix. Lines whose prefix is not a
// parseable date are dropped. Output is sorted ascending by date, stable on
// ties.
func (p *EventParser) ParseLines(ctx context.Context, data string) []domain.EventRecord {
	var (
		events  []domain.EventRecord
		skipped int
	)

	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		prefix, label, found := strings.Cut(line, eventLineSeparator)
		if !found {
			skipped++
			continue
		}

		date, ok := parseDateCell(prefix)
		if !ok {
			skipped++
			continue
		}

		events = append(events, domain.EventRecord{
			Date:  date,
			Label: strings.TrimSpace(label),
		})
	}

	if skipped > 0 {
		p.logger.DebugContext(ctx, "dropped unparseable event lines",
			slog.Int("skipped", skipped))
	}

	return sortEvents(events)
}

// ParseTable parses the tabular format with date, medication, optional
// dose_mg, and optional action columns. The label is synthesized as
// "{medication} {dose}mg", the dose segment omitted when absent or
// non-positive, with " - {ACTION}" appended for a recognized START/STOP
// action. Rows without a parseable date are dropped.
func (p *EventParser) ParseTable(ctx context.Context, name string, data []byte) ([]domain.EventRecord, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewUnrecognizedInputError(
			fmt.Sprintf("%s is not a readable medication table: %v", name, err))
	}
	if len(rows) == 0 {
		return nil, errors.NewUnrecognizedInputError(
			fmt.Sprintf("%s: empty medication table", name))
	}

	cols, ok := resolveEventColumns(rows[0])
	if !ok {
		return nil, errors.NewUnrecognizedInputError(
			fmt.Sprintf("%s: no header row with date and medication columns", name))
	}

	var (
		events  []domain.EventRecord
		skipped int
	)

	for _, row := range rows[1:] {
		date, ok := parseDateCell(eventCellAt(row, cols, evtDate))
		if !ok {
			skipped++
			continue
		}

		events = append(events, domain.EventRecord{
			Date: date,
			Label: synthesizeLabel(
				eventCellAt(row, cols, evtMedication),
				eventCellAt(row, cols, evtDose),
				eventCellAt(row, cols, evtAction),
			),
		})
	}

	if skipped > 0 {
		p.logger.DebugContext(ctx, "dropped medication rows without a parseable date",
			slog.String("source", name),
			slog.Int("skipped", skipped))
	}

	return sortEvents(events), nil
}

// synthesizeLabel builds the canonical event label from the tabular fields.
func synthesizeLabel(medication, dose, action string) string {
	label := strings.TrimSpace(medication)

	if d, err := strconv.ParseFloat(strings.TrimSpace(dose), 64); err == nil && d > 0 {
		label = fmt.Sprintf("%s %gmg", label, d)
	}

	if act := domain.NormalizeEventAction(action); act != "" {
		label = fmt.Sprintf("%s - %s", label, act)
	}

	return label
}

func resolveEventColumns(header []string) (map[eventColumn]int, bool) {
	normalized := make([]string, len(header))
	for i, cell := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(cell))
	}

	cols := make(map[eventColumn]int)
	for field, aliases := range eventHeaderAliases {
		for _, alias := range aliases {
			for i, cell := range normalized {
				if cell == alias {
					cols[field] = i
					break
				}
			}
			if _, ok := cols[field]; ok {
				break
			}
		}
	}

	_, hasDate := cols[evtDate]
	_, hasMedication := cols[evtMedication]
	return cols, hasDate && hasMedication
}

func eventCellAt(row []string, cols map[eventColumn]int, field eventColumn) string {
	idx, ok := cols[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func sortEvents(events []domain.EventRecord) []domain.EventRecord {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events
}
