package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"sleepcli/internal/errors"
	"sleepcli/pkg/contracts/domain"
)

// Report bundles the three derived views with generation metadata for the
// JSON output format.
type Report struct {
	GeneratedAt string                  `json:"generated_at"`
	Format      string                  `json:"format"`
	Summary     ReportSummary           `json:"summary"`
	Nights      []domain.DerivedNight   `json:"nights"`
	Monthly     []domain.MonthlySummary `json:"monthly"`
	EventDeltas []domain.EventDelta     `json:"event_deltas"`
}

// ReportSummary carries overall statistics for the exported night series.
// Means over an empty series are null.
type ReportSummary struct {
	NightCount     int                  `json:"night_count"`
	DateFrom       string               `json:"date_from,omitempty"`
	DateTo         string               `json:"date_to,omitempty"`
	TotalSleepMean domain.NullableFloat `json:"total_sleep_mean"`
	REMPctMean     domain.NullableFloat `json:"rem_pct_mean"`
	DeepPctMean    domain.NullableFloat `json:"deep_pct_mean"`
	AwakeMean      domain.NullableFloat `json:"awake_mean"`
}

func summarize(nights []domain.DerivedNight) ReportSummary {
	summary := ReportSummary{
		NightCount:     len(nights),
		TotalSleepMean: domain.NullFloat(),
		REMPctMean:     domain.NullFloat(),
		DeepPctMean:    domain.NullFloat(),
		AwakeMean:      domain.NullFloat(),
	}
	if len(nights) == 0 {
		return summary
	}

	summary.DateFrom = nights[0].Date.Format("2006-01-02")
	summary.DateTo = nights[len(nights)-1].Date.Format("2006-01-02")

	var total, rem, deep, awake float64
	for _, n := range nights {
		total += n.TotalSleep
		rem += n.REMPct
		deep += n.DeepPct
		awake += n.Awake
	}
	count := float64(len(nights))
	summary.TotalSleepMean = domain.NullableFloat(total / count)
	summary.REMPctMean = domain.NullableFloat(rem / count)
	summary.DeepPctMean = domain.NullableFloat(deep / count)
	summary.AwakeMean = domain.NullableFloat(awake / count)
	return summary
}

// Writer writes the derived views to a reports directory as CSV and JSON.
type Writer struct {
	logger *slog.Logger
	csv    *CSVWriter
	outDir string
}

// NewWriter creates a report writer rooted at outDir.
func NewWriter(logger *slog.Logger, outDir string) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		logger: logger,
		csv:    NewCSVWriter(logger),
		outDir: outDir,
	}
}

// WriteNightsCSV writes the filtered+derived night sequence.
func (w *Writer) WriteNightsCSV(nights []domain.DerivedNight) error {
	headers := []string{
		"Date", "TotalSleep", "Core", "Deep", "REM", "Awake",
		"REMPct", "DeepPct", "CorePct",
		"RollingREMPct", "RollingDeepPct", "RollingTotalSleep", "RollingAwake",
	}

	records := make([][]string, 0, len(nights))
	for _, n := range nights {
		records = append(records, []string{
			n.Date.Format("2006-01-02"),
			formatHours(n.TotalSleep),
			formatHours(n.Core),
			formatHours(n.Deep),
			formatHours(n.REM),
			formatHours(n.Awake),
			formatPct(n.REMPct),
			formatPct(n.DeepPct),
			formatPct(n.CorePct),
			formatNullable(n.RollingREMPct),
			formatNullable(n.RollingDeepPct),
			formatNullable(n.RollingTotalSleep),
			formatNullable(n.RollingAwake),
		})
	}

	path := filepath.Join(w.outDir, "nights.csv")
	if err := w.csv.WriteSimpleCSV(path, headers, records); err != nil {
		return errors.NewStorageError("failed to write nights CSV", err)
	}
	return nil
}

// WriteMonthlyCSV writes the monthly summary table.
func (w *Writer) WriteMonthlyCSV(summaries []domain.MonthlySummary) error {
	headers := []string{"Month", "REMPctMean", "DeepPctMean", "TotalSleepMean", "AwakeMean", "Nights"}

	records := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		records = append(records, []string{
			s.MonthKey,
			formatPct(s.REMPctMean),
			formatPct(s.DeepPctMean),
			formatHours(s.TotalSleepMean),
			formatHours(s.AwakeMean),
			strconv.Itoa(s.NightCount),
		})
	}

	path := filepath.Join(w.outDir, "monthly.csv")
	if err := w.csv.WriteSimpleCSV(path, headers, records); err != nil {
		return errors.NewStorageError("failed to write monthly CSV", err)
	}
	return nil
}

// WriteEventDeltasCSV writes the before/after comparison per event.
func (w *Writer) WriteEventDeltasCSV(deltas []domain.EventDelta) error {
	headers := []string{
		"Date", "Label", "PreNights", "PostNights",
		"REMPctBefore", "REMPctAfter", "REMPctDelta",
		"DeepPctBefore", "DeepPctAfter", "DeepPctDelta",
		"TotalSleepBefore", "TotalSleepAfter", "TotalSleepDelta",
		"AwakeBefore", "AwakeAfter", "AwakeDelta",
	}

	records := make([][]string, 0, len(deltas))
	for _, d := range deltas {
		records = append(records, []string{
			d.Event.Date.Format("2006-01-02"),
			d.Event.Label,
			strconv.Itoa(d.PreNights),
			strconv.Itoa(d.PostNights),
			formatNullable(d.Before.REMPct),
			formatNullable(d.After.REMPct),
			formatNullable(d.Delta.REMPct),
			formatNullable(d.Before.DeepPct),
			formatNullable(d.After.DeepPct),
			formatNullable(d.Delta.DeepPct),
			formatNullable(d.Before.TotalSleep),
			formatNullable(d.After.TotalSleep),
			formatNullable(d.Delta.TotalSleep),
			formatNullable(d.Before.Awake),
			formatNullable(d.After.Awake),
			formatNullable(d.Delta.Awake),
		})
	}

	path := filepath.Join(w.outDir, "event_deltas.csv")
	if err := w.csv.WriteSimpleCSV(path, headers, records); err != nil {
		return errors.NewStorageError("failed to write event deltas CSV", err)
	}
	return nil
}

// WriteJSON writes the combined report with metadata.
func (w *Writer) WriteJSON(report Report) error {
	report.GeneratedAt = time.Now().Format(time.RFC3339)
	report.Format = "sleep_report_v1"
	report.Summary = summarize(report.Nights)

	path := filepath.Join(w.outDir, "report.json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory for JSON output", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create JSON report file", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return errors.NewStorageError("failed to encode JSON report", err)
	}

	w.logger.Info("wrote JSON report",
		slog.String("path", path),
		slog.Int("nights", report.Summary.NightCount))

	return nil
}

func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatNullable renders a no-data value as an empty cell, not "NaN".
func formatNullable(v domain.NullableFloat) string {
	if !v.Valid() {
		return ""
	}
	return fmt.Sprintf("%.2f", float64(v))
}
