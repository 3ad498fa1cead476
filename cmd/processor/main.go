package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"sleepcli/internal/config"
	"sleepcli/internal/exporter"
	"sleepcli/internal/infrastructure"
	"sleepcli/internal/services"
	"sleepcli/pkg/contracts/domain"
)

func main() {
	in := flag.String("in", "", "sleep export file (.csv, .xlsx or .zip)")
	events := flag.String("events", "", "event log file (optional)")
	out := flag.String("out", "", "output directory for reports (defaults to configured reports dir)")
	minHours := flag.Float64("min-hours", 0, "minimum total sleep hours to keep a night")
	maxHours := flag.Float64("max-hours", 24, "maximum total sleep hours to keep a night")
	from := flag.String("from", "", "keep nights on or after this date (2006-01-02)")
	to := flag.String("to", "", "keep nights on or before this date (2006-01-02)")
	window := flag.Int("window", 7, "rolling average window in nights")
	sortCol := flag.String("sort", "month", "monthly sort column (month, rem_pct, deep_pct, total_sleep, awake, nights)")
	sortDir := flag.String("dir", "desc", "monthly sort direction (asc, desc)")
	flag.Parse()

	if err := run(*in, *events, *out, *minHours, *maxHours, *from, *to, *window, *sortCol, *sortDir); err != nil {
		slog.Error("processing failed", "error", err)
		os.Exit(1)
	}
}

func run(in, events, out string, minHours, maxHours float64, from, to string, window int, sortCol, sortDir string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	if in == "" {
		in = cfg.Pipeline.SleepFile
	}
	if in == "" {
		return fmt.Errorf("no sleep export given, pass -in or set the sleep_file config")
	}
	if events == "" {
		events = cfg.Pipeline.EventsFile
	}
	if out == "" {
		out = cfg.Paths.ReportsDir
	}

	filter := domain.FilterConfig{
		MinHours:      minHours,
		MaxHours:      maxHours,
		RollingWindow: window,
	}
	if filter.DateFrom, err = parseDateFlag(from); err != nil {
		return fmt.Errorf("invalid -from: %w", err)
	}
	if filter.DateTo, err = parseDateFlag(to); err != nil {
		return fmt.Errorf("invalid -to: %w", err)
	}
	directive := domain.SortDirective{
		Column:    domain.SortColumn(sortCol),
		Direction: domain.SortDirection(sortDir),
	}

	ctx := context.Background()
	start := time.Now()

	dataset := services.NewDatasetService(logger)
	if err := dataset.LoadSleepFile(ctx, in); err != nil {
		return err
	}
	if events != "" {
		if err := dataset.LoadEventsFile(ctx, events); err != nil {
			return err
		}
	}

	nights, err := dataset.Nights(ctx, filter)
	if err != nil {
		return err
	}
	monthly, err := dataset.Monthly(ctx, directive)
	if err != nil {
		return err
	}
	deltas, err := dataset.EventDeltas(ctx)
	if err != nil {
		return err
	}

	writer := exporter.NewWriter(logger, out)
	if err := writer.WriteNightsCSV(nights); err != nil {
		return err
	}
	if err := writer.WriteMonthlyCSV(monthly); err != nil {
		return err
	}
	if err := writer.WriteEventDeltasCSV(deltas); err != nil {
		return err
	}
	if err := writer.WriteJSON(exporter.Report{
		Nights:      nights,
		Monthly:     monthly,
		EventDeltas: deltas,
	}); err != nil {
		return err
	}

	logger.InfoContext(ctx, "reports written",
		slog.String("out", out),
		slog.Int("nights", len(nights)),
		slog.Int("months", len(monthly)),
		slog.Int("events", len(deltas)),
		slog.Duration("elapsed", time.Since(start)))

	return nil
}

func parseDateFlag(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
