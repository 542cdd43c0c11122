/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Requests carry raw
  spreadsheet grids; responses carry verdicts and diagnostics. All
  conversion to and from the domain types lives here so handlers stay
  thin.

CELL ENCODING:
  A spreadsheet cell arrives as a JSON string, a JSON number (plain
  numeric or an Excel day fraction), or null. CellDTO folds all three
  into one type; anything else is a decode error on that cell.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - tabular/tabular.go: The domain cell model
*/
package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/warp/presence-audit/clock"
	"github.com/warp/presence-audit/overtime"
	"github.com/warp/presence-audit/recon"
	"github.com/warp/presence-audit/security"
	"github.com/warp/presence-audit/store"
	"github.com/warp/presence-audit/tabular"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CellDTO is one spreadsheet cell: string, number, or null.
type CellDTO struct {
	text   string
	number float64
	kind   cellKind
}

type cellKind int

const (
	cellNull cellKind = iota
	cellText
	cellNumber
)

func (c *CellDTO) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		c.kind = cellNull
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.kind = cellText
		c.text = s
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		c.kind = cellNumber
		c.number = n
		return nil
	}
	return fmt.Errorf("cell must be a string, number, or null, got %s", data)
}

func (c CellDTO) toCell() tabular.Cell {
	switch c.kind {
	case cellText:
		return tabular.Text(c.text)
	case cellNumber:
		return tabular.Number(c.number)
	default:
		return tabular.Empty
	}
}

// TableDTO is one raw sheet: an optional header row plus data rows.
type TableDTO struct {
	Header []string    `json:"header,omitempty"`
	Rows   [][]CellDTO `json:"rows"`
}

func (t TableDTO) toTable() tabular.Table {
	table := tabular.Table{Header: t.Header}
	for _, row := range t.Rows {
		cells := make(tabular.Row, len(row))
		for i, c := range row {
			cells[i] = c.toCell()
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

// AnalyzeRequest is the body of POST /api/analyses.
type AnalyzeRequest struct {
	Security TableDTO `json:"security"`
	Overtime TableDTO `json:"overtime"`
	From     string   `json:"from,omitempty"` // YYYY-MM-DD, inclusive
	To       string   `json:"to,omitempty"`   // YYYY-MM-DD, inclusive
}

// Range parses the optional date bounds. Empty bounds stay unbounded.
func (r AnalyzeRequest) Range() (clock.Range, error) {
	var filter clock.Range
	if r.From != "" {
		d, err := clock.ParseDate(r.From)
		if err != nil {
			return clock.Range{}, fmt.Errorf("invalid from date %q: %w", r.From, err)
		}
		filter.From = d
	}
	if r.To != "" {
		d, err := clock.ParseDate(r.To)
		if err != nil {
			return clock.Range{}, fmt.Errorf("invalid to date %q: %w", r.To, err)
		}
		filter.To = d
	}
	return filter, nil
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type VerdictDTO struct {
	BusinessDate   string `json:"business_date"`
	Employee       string `json:"employee"`
	Department     string `json:"department,omitempty"`
	OvertimePeriod string `json:"overtime_period"`
	SecurityStatus string `json:"security_status"`
	Reason         string `json:"reason"`
	Description    string `json:"description,omitempty"`
	Holiday        bool   `json:"holiday,omitempty"`
}

type MissingTimeDTO struct {
	Date          string            `json:"date"`
	Employee      string            `json:"employee"`
	Department    string            `json:"department,omitempty"`
	MissingFields []string          `json:"missing_fields"`
	Raw           map[string]string `json:"raw,omitempty"`
}

type ErrorRowDTO struct {
	Date     string            `json:"date,omitempty"`
	Employee string            `json:"employee,omitempty"`
	Reason   string            `json:"reason"`
	Raw      map[string]string `json:"raw,omitempty"`
}

type UnclearDayDTO struct {
	Date        string `json:"date"`
	Records     int    `json:"records"`
	Ambiguous   int    `json:"ambiguous"`
	Description string `json:"description"`
}

// RunDTO is one complete audit run.
type RunDTO struct {
	ID          string           `json:"id"`
	SubmittedAt string           `json:"submitted_at"`
	From        string           `json:"from,omitempty"`
	To          string           `json:"to,omitempty"`
	Verdicts    []VerdictDTO     `json:"verdicts"`
	MissingTime []MissingTimeDTO `json:"missing_time_rows"`
	ErrorRows   []ErrorRowDTO    `json:"error_rows"`
	UnclearDays []UnclearDayDTO  `json:"unclear_days"`
}

// RunSummaryDTO is the list-view projection of a run.
type RunSummaryDTO struct {
	ID          string `json:"id"`
	SubmittedAt string `json:"submitted_at"`
	Verdicts    int    `json:"verdicts"`
	MissingTime int    `json:"missing_time_rows"`
	ErrorRows   int    `json:"error_rows"`
	UnclearDays int    `json:"unclear_days"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toRunDTO(run store.Run) RunDTO {
	dto := RunDTO{
		ID:          run.ID,
		SubmittedAt: run.SubmittedAt.Format(time.RFC3339),
		Verdicts:    []VerdictDTO{},
		MissingTime: []MissingTimeDTO{},
		ErrorRows:   []ErrorRowDTO{},
		UnclearDays: []UnclearDayDTO{},
	}
	if !run.Filter.From.IsZero() {
		dto.From = run.Filter.From.String()
	}
	if !run.Filter.To.IsZero() {
		dto.To = run.Filter.To.String()
	}
	for _, v := range run.Result.Verdicts {
		dto.Verdicts = append(dto.Verdicts, toVerdictDTO(v))
	}
	for _, m := range run.Result.MissingTime {
		dto.MissingTime = append(dto.MissingTime, toMissingTimeDTO(m))
	}
	for _, e := range run.Result.ErrorRows {
		dto.ErrorRows = append(dto.ErrorRows, toErrorRowDTO(e))
	}
	for _, u := range run.Result.UnclearDays {
		dto.UnclearDays = append(dto.UnclearDays, toUnclearDayDTO(u))
	}
	return dto
}

func toRunSummaryDTO(run store.Run) RunSummaryDTO {
	return RunSummaryDTO{
		ID:          run.ID,
		SubmittedAt: run.SubmittedAt.Format(time.RFC3339),
		Verdicts:    len(run.Result.Verdicts),
		MissingTime: len(run.Result.MissingTime),
		ErrorRows:   len(run.Result.ErrorRows),
		UnclearDays: len(run.Result.UnclearDays),
	}
}

func toVerdictDTO(v recon.Verdict) VerdictDTO {
	return VerdictDTO{
		BusinessDate:   v.BusinessDate.String(),
		Employee:       v.Employee,
		Department:     v.Department,
		OvertimePeriod: v.OvertimePeriod,
		SecurityStatus: v.SecurityStatus,
		Reason:         v.Reason,
		Description:    v.Description,
		Holiday:        v.Holiday,
	}
}

func toMissingTimeDTO(m overtime.MissingTimeRow) MissingTimeDTO {
	return MissingTimeDTO{
		Date:          m.Date.String(),
		Employee:      m.Employee,
		Department:    m.Department,
		MissingFields: m.MissingFields,
		Raw:           m.Raw,
	}
}

func toErrorRowDTO(e overtime.ErrorRow) ErrorRowDTO {
	dto := ErrorRowDTO{Employee: e.Employee, Reason: e.Reason, Raw: e.Raw}
	if !e.Date.IsZero() {
		dto.Date = e.Date.String()
	}
	return dto
}

func toUnclearDayDTO(u security.UnclearDay) UnclearDayDTO {
	return UnclearDayDTO{
		Date:        u.Date.String(),
		Records:     u.Records,
		Ambiguous:   u.Ambiguous,
		Description: u.Description,
	}
}
