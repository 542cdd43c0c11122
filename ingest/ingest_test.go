package ingest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/presence-audit/clock"
	"github.com/warp/presence-audit/recon"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "in.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadSecurityWorkbook_HeaderAndRows(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Occurrence Date", "Occurrence Time", "Mode"},
		{"2023-05-01", "08:00:00", "disarm"},
		{"2023-05-01", "18:00:00", "setting"},
	})

	table, err := ReadSecurityWorkbook(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Occurrence Date", "Occurrence Time", "Mode"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "disarm", table.Rows[0].Cell(2).Text())
}

func TestReadOvertimeWorkbook_KeepsMetadataRows(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Overtime Report"},
		{"Generated 2023-06-01"},
		{"ops", "staff", "e-1", "Kim"},
	})

	table, err := ReadOvertimeWorkbook(path)
	require.NoError(t, err)
	assert.Empty(t, table.Header)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "Overtime Report", table.Rows[0].Cell(0).Text())
}

func TestWriteReport_RoundTrip(t *testing.T) {
	result := &recon.Result{
		Verdicts: []recon.Verdict{{
			BusinessDate:   clock.NewDate(2023, time.May, 1),
			Employee:       "Kim",
			OvertimePeriod: "18:30-21:30",
			SecurityStatus: recon.StatusArmed,
			Reason:         "security armed during 3.0 hours of claimed overtime (18:30-21:30)",
		}},
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteReport(path, result))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t,
		[]string{SheetSuspicious, SheetMissingTime, SheetErrors, SheetUnclearDays},
		f.GetSheetList())

	rows, err := f.GetRows(SheetSuspicious)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Kim", rows[1][1])
	assert.Contains(t, rows[1][5], "3.0 hours")
}
