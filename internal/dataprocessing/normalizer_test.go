package dataprocessing

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sleepcli/internal/errors"
)

func TestNormalizeCSV(t *testing.T) {
	csvData := `Date,Total Sleep (hr),Core (hr),Deep (hr),REM (hr),Awake (hr)
2024-01-02,7,4.0,1.0,1.0,1.0
2024-01-01,8,4.2,1.2,1.6,1.0
`
	n := NewNormalizer(nil)
	records, err := n.Normalize(context.Background(), "sleep.csv", []byte(csvData))
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Output is sorted ascending by date regardless of source order.
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), records[0].Date)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), records[1].Date)
	assert.InDelta(t, 8.0, records[0].TotalSleep, 1e-9)
	assert.InDelta(t, 1.6, records[0].REM, 1e-9)
	assert.InDelta(t, 1.0, records[1].Deep, 1e-9)
}

func TestNormalizeHeaderAliasPriority(t *testing.T) {
	// "Asleep (hr)" is a lower-priority alias for total sleep; when both it
	// and "Total Sleep (hr)" appear, the higher-priority alias wins.
	csvData := `Date,Asleep (hr),Total Sleep (hr)
2024-02-01,6.0,7.5
`
	n := NewNormalizer(nil)
	records, err := n.Normalize(context.Background(), "sleep.csv", []byte(csvData))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, 7.5, records[0].TotalSleep, 1e-9)
}

func TestNormalizeAlternateAliases(t *testing.T) {
	csvData := `Day,Asleep (hr),Light (hr),Deep Sleep (hr),REM,Time Awake (hr)
03/15/2024,7.5,4.0,1.3,1.4,0.8
`
	n := NewNormalizer(nil)
	records, err := n.Normalize(context.Background(), "export.csv", []byte(csvData))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), records[0].Date)
	assert.InDelta(t, 7.5, records[0].TotalSleep, 1e-9)
	assert.InDelta(t, 4.0, records[0].Core, 1e-9)
	assert.InDelta(t, 1.3, records[0].Deep, 1e-9)
	assert.InDelta(t, 1.4, records[0].REM, 1e-9)
	assert.InDelta(t, 0.8, records[0].Awake, 1e-9)
}

func TestNormalizeDropsRowsWithoutDate(t *testing.T) {
	csvData := `Date,Total Sleep (hr)
2024-01-01,8
,7
not-a-date,6
2024-01-03,6.5

`
	n := NewNormalizer(nil)
	records, err := n.Normalize(context.Background(), "sleep.csv", []byte(csvData))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Date.Day())
	assert.Equal(t, 3, records[1].Date.Day())
}

func TestNormalizeNumericCoercion(t *testing.T) {
	csvData := `Date,Total Sleep (hr),Deep (hr),REM (hr)
2024-01-01,"7,5",oops,-2
`
	n := NewNormalizer(nil)
	records, err := n.Normalize(context.Background(), "sleep.csv", []byte(csvData))
	require.NoError(t, err)
	require.Len(t, records, 1)

	// Locale decimal comma is normalized; garbage and negatives coerce to 0.
	assert.InDelta(t, 7.5, records[0].TotalSleep, 1e-9)
	assert.Equal(t, 0.0, records[0].Deep)
	assert.Equal(t, 0.0, records[0].REM)
}

func TestNormalizeUnrecognizedInput(t *testing.T) {
	n := NewNormalizer(nil)

	_, err := n.Normalize(context.Background(), "notes.txt", []byte("this is not a table\njust prose\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnrecognizedInput)
}

func TestNormalizeArchive(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	jan, err := zw.Create("january.csv")
	require.NoError(t, err)
	_, err = jan.Write([]byte("Date,Total Sleep (hr),REM (hr)\n2024-01-05,8,1.6\n2024-01-04,7,1.2\n"))
	require.NoError(t, err)

	feb, err := zw.Create("february.csv")
	require.NoError(t, err)
	_, err = feb.Write([]byte("Date,Total Sleep (hr),REM (hr)\n2024-02-01,6.5,1.1\n"))
	require.NoError(t, err)

	// Non-matching members are ignored without error.
	readme, err := zw.Create("README.md")
	require.NoError(t, err)
	_, err = readme.Write([]byte("# export bundle\n"))
	require.NoError(t, err)

	require.NoError(t, zw.Close())

	n := NewNormalizer(nil)
	records, err := n.Normalize(context.Background(), "bundle.zip", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Concatenated across members, then sorted ascending by date.
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), records[0].Date)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), records[1].Date)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), records[2].Date)
}

func TestNormalizeArchiveWithoutTables(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	member, err := zw.Create("readme.txt")
	require.NoError(t, err)
	_, err = member.Write([]byte("nothing tabular here"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	n := NewNormalizer(nil)
	_, err = n.Normalize(context.Background(), "bundle.zip", buf.Bytes())
	assert.ErrorIs(t, err, errors.ErrUnrecognizedInput)
}

func TestNormalizeWorkbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	// A banner row above the header, as spreadsheet exports often have.
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Sleep Export"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Date", "Total Sleep (hr)", "Deep (hr)", "REM (hr)", "Awake (hr)"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"2024-04-02", "7.2", "1.1", "1.5", "0.9"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{"2024-04-01", "8.0", "1.3", "1.7", "0.5"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	n := NewNormalizer(nil)
	records, err := n.Normalize(context.Background(), "sleep.xlsx", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), records[0].Date)
	assert.InDelta(t, 8.0, records[0].TotalSleep, 1e-9)
	assert.InDelta(t, 1.5, records[1].REM, 1e-9)
}

func TestNormalizeStableTieOrder(t *testing.T) {
	// Two rows on the same date keep their encounter order.
	csvData := `Date,Total Sleep (hr)
2024-01-01,8
2024-01-01,7
`
	n := NewNormalizer(nil)
	records, err := n.Normalize(context.Background(), "sleep.csv", []byte(csvData))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.InDelta(t, 8.0, records[0].TotalSleep, 1e-9)
	assert.InDelta(t, 7.0, records[1].TotalSleep, 1e-9)
}
