package dataprocessing

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"sleepcli/internal/errors"
	"sleepcli/pkg/contracts/domain"
)

// column identifies a semantic field of the sleep table.
type column int

const (
	colDate column = iota
	colTotal
	colCore
	colDeep
	colREM
	colAwake
)

// headerAliases lists the accepted header names for each semantic field in
// priority order; the first alias present in the header row wins. Matching is
// case-insensitive after trimming. Tracker vendors rename these columns
// between export versions, hence the breadth.
var headerAliases = map[column][]string{
	colDate:  {"date", "day", "night", "sleep date", "start date"},
	colTotal: {"total sleep (hr)", "asleep (hr)", "totalsleep", "total sleep", "total_sleep_hours", "asleep"},
	colCore:  {"core (hr)", "light (hr)", "core", "core_hours", "light"},
	colDeep:  {"deep (hr)", "deep sleep (hr)", "deep", "deep_hours"},
	colREM:   {"rem (hr)", "rem sleep (hr)", "rem", "rem_hours"},
	colAwake: {"awake (hr)", "time awake (hr)", "awake", "awake_hours"},
}

// dateLayouts are tried in order when parsing a date cell.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"02 Jan 2006",
}

// Normalizer turns raw tabular sleep exports into the canonical night
// sequence. It accepts a single delimited table, an XLSX workbook, or a ZIP
// archive bundling same-format tables.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a normalizer. A nil logger falls back to slog.Default.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize detects the container format of the raw export and produces the
// night sequence sorted ascending by date, ties kept in encounter order.
// Malformed rows are dropped silently; only structurally unusable input
// fails, with errors.ErrUnrecognizedInput in the chain.
func (n *Normalizer) Normalize(ctx context.Context, name string, data []byte) ([]domain.NightRecord, error) {
	var (
		records []domain.NightRecord
		err     error
	)

	switch {
	case isZipData(data) && isWorkbookName(name):
		records, err = n.parseWorkbook(ctx, name, data)
	case isZipData(data):
		records, err = n.parseArchive(ctx, name, data)
	default:
		records, err = n.parseCSV(ctx, name, data)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})

	n.logger.InfoContext(ctx, "normalized sleep export",
		slog.String("source", name),
		slog.Int("records", len(records)))

	return records, nil
}

// parseCSV parses a single delimited table with a header row.
func (n *Normalizer) parseCSV(ctx context.Context, name string, data []byte) ([]domain.NightRecord, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewUnrecognizedInputError(
			fmt.Sprintf("%s is not a readable delimited table: %v", name, err))
	}

	return n.parseRows(ctx, name, rows)
}

// parseWorkbook parses an XLSX workbook, trying sheets until one yields a
// resolvable header row.
func (n *Normalizer) parseWorkbook(ctx context.Context, name string, data []byte) ([]domain.NightRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewUnrecognizedInputError(
			fmt.Sprintf("%s is not a readable workbook: %v", name, err))
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		records, err := n.parseRows(ctx, fmt.Sprintf("%s#%s", name, sheet), rows)
		if err == nil {
			return records, nil
		}
	}

	return nil, errors.NewUnrecognizedInputError(
		fmt.Sprintf("%s: no sheet with a recognizable sleep table header", name))
}

// parseArchive parses every .csv member of a ZIP archive independently and
// concatenates the results in member order. Non-matching members are ignored;
// a matching member that fails to parse is skipped with a warning, the way a
// stray file in a vendor bundle should be.
func (n *Normalizer) parseArchive(ctx context.Context, name string, data []byte) ([]domain.NightRecord, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.NewUnrecognizedInputError(
			fmt.Sprintf("%s is not a readable archive: %v", name, err))
	}

	var members []*zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}
		if strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			members = append(members, f)
		}
	}

	if len(members) == 0 {
		return nil, errors.NewUnrecognizedInputError(
			fmt.Sprintf("%s: archive contains no .csv tables", name))
	}

	// Members parse independently; indexed results keep member order, so the
	// final stable sort still breaks date ties by encounter order.
	results := make([][]domain.NightRecord, len(members))
	g, gctx := errgroup.WithContext(ctx)

	for i, member := range members {
		g.Go(func() error {
			rc, err := member.Open()
			if err != nil {
				n.logger.WarnContext(gctx, "skipping unreadable archive member",
					slog.String("member", member.Name),
					slog.String("error", err.Error()))
				return nil
			}
			defer rc.Close()

			raw, err := io.ReadAll(rc)
			if err != nil {
				n.logger.WarnContext(gctx, "skipping unreadable archive member",
					slog.String("member", member.Name),
					slog.String("error", err.Error()))
				return nil
			}

			records, err := n.parseCSV(gctx, member.Name, raw)
			if err != nil {
				n.logger.WarnContext(gctx, "skipping unparseable archive member",
					slog.String("member", member.Name),
					slog.String("error", err.Error()))
				return nil
			}
			results[i] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []domain.NightRecord
	for _, records := range results {
		all = append(all, records...)
	}
	return all, nil
}

// parseRows resolves the header row and converts each data row into a
// NightRecord. Rows with no parseable date are dropped, not errors; tracker
// exports routinely contain blank trailer rows.
func (n *Normalizer) parseRows(ctx context.Context, source string, rows [][]string) ([]domain.NightRecord, error) {
	headerRow := -1
	var cols map[column]int

	// The header is not always row 0: workbook exports sometimes carry a
	// title banner above it.
	for i := 0; i < len(rows) && i < 10; i++ {
		if resolved, ok := resolveColumns(rows[i]); ok {
			headerRow = i
			cols = resolved
			break
		}
	}

	if headerRow == -1 {
		return nil, errors.NewUnrecognizedInputError(
			fmt.Sprintf("%s: no header row with a recognizable date column", source))
	}

	var (
		records []domain.NightRecord
		skipped int
	)

	for _, row := range rows[headerRow+1:] {
		date, ok := parseDateCell(cellAt(row, cols, colDate))
		if !ok {
			skipped++
			continue
		}

		records = append(records, domain.NightRecord{
			Date:       date,
			TotalSleep: parseHoursCell(cellAt(row, cols, colTotal)),
			Core:       parseHoursCell(cellAt(row, cols, colCore)),
			Deep:       parseHoursCell(cellAt(row, cols, colDeep)),
			REM:        parseHoursCell(cellAt(row, cols, colREM)),
			Awake:      parseHoursCell(cellAt(row, cols, colAwake)),
		})
	}

	if skipped > 0 {
		n.logger.DebugContext(ctx, "dropped rows without a parseable date",
			slog.String("source", source),
			slog.Int("skipped", skipped))
	}

	return records, nil
}

// resolveColumns maps semantic fields to column indexes using the alias
// table. It reports ok only when a date column and at least one stage column
// resolve, which is what distinguishes a header row from data or banners.
func resolveColumns(header []string) (map[column]int, bool) {
	normalized := make([]string, len(header))
	for i, cell := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(cell))
	}

	cols := make(map[column]int)
	for field, aliases := range headerAliases {
		for _, alias := range aliases {
			idx := -1
			for i, cell := range normalized {
				if cell == alias {
					idx = i
					break
				}
			}
			if idx >= 0 {
				cols[field] = idx
				break
			}
		}
	}

	if _, ok := cols[colDate]; !ok {
		return nil, false
	}
	if len(cols) < 2 {
		return nil, false
	}
	return cols, true
}

// cellAt returns the raw cell for a resolved column, or "" when the column is
// absent or the row is short.
func cellAt(row []string, cols map[column]int, field column) string {
	idx, ok := cols[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// parseDateCell parses a date cell against the accepted layouts.
func parseDateCell(cell string) (time.Time, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseHoursCell coerces a numeric cell to non-negative hours. A locale
// decimal comma is normalized to a decimal point first; anything that still
// fails to parse coerces to 0 rather than aborting the row.
func parseHoursCell(cell string) float64 {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// isZipData reports whether data starts with the ZIP local-file magic.
func isZipData(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], []byte{'P', 'K', 0x03, 0x04})
}

// isWorkbookName reports whether the source name marks an XLSX workbook,
// which is itself a ZIP container and must not be treated as a table bundle.
func isWorkbookName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".xlsx")
}
