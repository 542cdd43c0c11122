/*
report.go - Findings workbook

PURPOSE:
  Writes one audit result to an xlsx workbook: a sheet of suspicious
  claims plus one sheet per diagnostic list. Sheets are always present
  even when empty so reviewers see that the category was checked.

SEE ALSO:
  - ingest.go: Reading the source workbooks
  - recon/types.go: The Result being rendered
*/
package ingest

import (
	"fmt"
	"strings"

	"github.com/warp/presence-audit/recon"
	"github.com/xuri/excelize/v2"
)

// Sheet names in the findings workbook.
const (
	SheetSuspicious  = "Suspicious Claims"
	SheetMissingTime = "Missing Times"
	SheetErrors      = "Errors"
	SheetUnclearDays = "Unclear Security Days"
)

// WriteReport renders the result to an xlsx file at path.
func WriteReport(path string, result *recon.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSuspicious(f, result); err != nil {
		return err
	}
	if err := writeMissingTime(f, result); err != nil {
		return err
	}
	if err := writeErrors(f, result); err != nil {
		return err
	}
	if err := writeUnclearDays(f, result); err != nil {
		return err
	}

	// The default sheet is replaced by the first real one.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report %s: %w", path, err)
	}
	return nil
}

func writeSuspicious(f *excelize.File, result *recon.Result) error {
	rows := [][]any{{
		"Business Date", "Employee", "Department", "Overtime Period",
		"Security Status", "Reason", "Description", "Holiday",
	}}
	for _, v := range result.Verdicts {
		holiday := ""
		if v.Holiday {
			holiday = "yes"
		}
		rows = append(rows, []any{
			v.BusinessDate.String(), v.Employee, v.Department, v.OvertimePeriod,
			v.SecurityStatus, v.Reason, v.Description, holiday,
		})
	}
	return writeSheet(f, SheetSuspicious, rows)
}

func writeMissingTime(f *excelize.File, result *recon.Result) error {
	rows := [][]any{{"Date", "Employee", "Department", "Missing Fields"}}
	for _, m := range result.MissingTime {
		rows = append(rows, []any{
			m.Date.String(), m.Employee, m.Department, strings.Join(m.MissingFields, ", "),
		})
	}
	return writeSheet(f, SheetMissingTime, rows)
}

func writeErrors(f *excelize.File, result *recon.Result) error {
	rows := [][]any{{"Date", "Employee", "Reason"}}
	for _, e := range result.ErrorRows {
		date := ""
		if !e.Date.IsZero() {
			date = e.Date.String()
		}
		rows = append(rows, []any{date, e.Employee, e.Reason})
	}
	return writeSheet(f, SheetErrors, rows)
}

func writeUnclearDays(f *excelize.File, result *recon.Result) error {
	rows := [][]any{{"Date", "Records", "Ambiguous", "Description"}}
	for _, u := range result.UnclearDays {
		rows = append(rows, []any{u.Date.String(), u.Records, u.Ambiguous, u.Description})
	}
	return writeSheet(f, SheetUnclearDays, rows)
}

func writeSheet(f *excelize.File, name string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("write row %d of %s: %w", i+1, name, err)
		}
	}
	return nil
}
