/*
ingest.go - Spreadsheet loading

PURPOSE:
  Reads the two source workbooks into raw tables. The security export
  carries a header row; the overtime export is a raw grid whose layout
  is fixed by position. No interpretation happens here; parsing and
  validation belong to the domain packages.

SEE ALSO:
  - report.go: Writing the findings workbook
  - tabular/tabular.go: The table model produced here
*/
package ingest

import (
	"fmt"

	"github.com/warp/presence-audit/tabular"
	"github.com/xuri/excelize/v2"
)

// ReadSecurityWorkbook loads the first sheet of the security log export.
// The first row is treated as the header.
func ReadSecurityWorkbook(path string) (tabular.Table, error) {
	rows, err := readFirstSheet(path)
	if err != nil {
		return tabular.Table{}, err
	}
	if len(rows) == 0 {
		return tabular.Table{}, nil
	}

	table := tabular.Table{Header: rows[0]}
	for _, row := range rows[1:] {
		table.Rows = append(table.Rows, toRow(row))
	}
	return table, nil
}

// ReadOvertimeWorkbook loads the first sheet of the overtime report as a
// raw grid. Leading metadata rows are kept; the extractor discards them.
func ReadOvertimeWorkbook(path string) (tabular.Table, error) {
	rows, err := readFirstSheet(path)
	if err != nil {
		return tabular.Table{}, err
	}

	var table tabular.Table
	for _, row := range rows {
		table.Rows = append(table.Rows, toRow(row))
	}
	return table, nil
}

func readFirstSheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s of %s: %w", sheets[0], path, err)
	}
	return rows, nil
}

func toRow(cells []string) tabular.Row {
	row := make(tabular.Row, len(cells))
	for i, c := range cells {
		row[i] = tabular.Text(c)
	}
	return row
}
