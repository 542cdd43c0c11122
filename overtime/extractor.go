/*
extractor.go - Fixed-layout overtime claims extraction

PURPOSE:
  Parses the rigid, position-addressed work-hours export into normalized
  overtime claims, tolerating missing and malformed fields without ever
  losing the rest of the batch.

SOURCE LAYOUT (zero-based column offsets, fixed):
   0 department   1 rank         2 employee-id   3 name
   4 active       5 holiday-flag 6 claim-date    7 start-time
   8 end-time     9 start-IP    10 end-IP       11 recorded-hours
  12 allowance   13 description
  The first two rows are header/metadata and always discarded. Columns
  beyond 13 are ignored.

SEGMENTS:
  Regular hours are fixed at 09:00-18:00. Holiday rows claim their whole
  interval; weekday rows claim only the portions before 09:00 and/or after
  18:00. An interval fully inside regular hours yields no claim.

SEE ALSO:
  - types.go: Claim, MissingTimeRow, ErrorRow
  - recon/engine.go: consumes the claims
*/
package overtime

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/presence-audit/clock"
	"github.com/warp/presence-audit/tabular"
)

// Column offsets of the claims export.
const (
	colDepartment = 0
	colRank       = 1
	colEmployeeID = 2
	colName       = 3
	colActive     = 4
	colHoliday    = 5
	colDate       = 6
	colStartTime  = 7
	colEndTime    = 8
	colStartIP    = 9
	colEndIP      = 10
	colRecorded   = 11
	colAllowance  = 12
	colWorkDesc   = 13
)

// headerRows is the number of leading metadata rows in the export.
const headerRows = 2

// Regular working hours. Fixed for the organization, not configuration.
var (
	RegularStart = clock.NewClock(9, 0, 0)
	RegularEnd   = clock.NewClock(18, 0, 0)
)

// holidayKeywords mark a row as holiday work when any of them appears in
// the lower-cased holiday-flag text. A missing flag means a weekday: the
// conservative default produces fewer false flags.
var holidayKeywords = []string{"y", "holiday", "public holiday", "saturday", "sunday"}

// =============================================================================
// EXTRACTOR
// =============================================================================

type Extractor struct {
	log zerolog.Logger
}

func NewExtractor(log zerolog.Logger) *Extractor {
	return &Extractor{log: log.With().Str("component", "overtime").Logger()}
}

// Process extracts claims from the raw export. Rows failing the validity
// filter are excluded from extraction; rows with absent time fields are
// additionally reported in the missing-time list, and rows that fail
// unexpectedly land in the error list. Neither aborts the batch.
func (e *Extractor) Process(t tabular.Table, filter clock.Range) ([]Claim, []MissingTimeRow, []ErrorRow) {
	var (
		claims      []Claim
		missingTime []MissingTimeRow
		errorRows   []ErrorRow
	)

	rows := t.Rows
	if len(rows) >= headerRows {
		rows = rows[headerRows:]
	}

	for i, row := range rows {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.log.Error().Int("row", i+headerRows).Interface("panic", r).
						Msg("row processing failed")
					errorRows = append(errorRows, errorRowFor(row, fmt.Sprintf("%v", r)))
				}
			}()

			claim, miss, ok := e.processRow(row, filter)
			if miss != nil {
				missingTime = append(missingTime, *miss)
			}
			if ok {
				claims = append(claims, claim...)
			}
		}()
	}

	if len(missingTime) > 0 {
		e.log.Warn().Int("rows", len(missingTime)).Msg("rows with missing time fields")
	}
	return claims, missingTime, errorRows
}

// processRow handles one data row. The returned claims are only valid when
// ok is true; miss is non-nil when a time field was absent.
func (e *Extractor) processRow(row tabular.Row, filter clock.Range) (claims []Claim, miss *MissingTimeRow, ok bool) {
	name := strings.TrimSpace(row.Cell(colName).Text())
	dateCell := row.Cell(colDate)
	startCell := row.Cell(colStartTime)
	endCell := row.Cell(colEndTime)

	date, dateOK := dateCell.Date()
	if dateOK && !filter.Contains(date) {
		return nil, nil, false
	}

	// The missing-time diagnostics only make sense for rows that are
	// otherwise addressable (a date to report against).
	var missingFields []string
	if startCell.IsEmpty() {
		missingFields = append(missingFields, "start-time")
	}
	if endCell.IsEmpty() {
		missingFields = append(missingFields, "end-time")
	}
	if len(missingFields) > 0 && dateOK {
		miss = &MissingTimeRow{
			Date:          date,
			Employee:      employeeName(name),
			Department:    strings.TrimSpace(row.Cell(colDepartment).Text()),
			MissingFields: missingFields,
			Raw:           rawFields(row),
		}
	}

	// Validity filter: name, date, and both times must be usable.
	if name == "" || !dateOK || len(missingFields) > 0 {
		return nil, miss, false
	}
	start, startOK := startCell.Clock(RegularStart)
	end, endOK := endCell.Clock(RegularEnd)
	if !startOK || !endOK {
		// Present but unparseable gets the same treatment as absent:
		// the row is excluded and surfaced for review, with no silently
		// substituted default entering the verdict computation.
		var fields []string
		if !startOK {
			fields = append(fields, "start-time")
		}
		if !endOK {
			fields = append(fields, "end-time")
		}
		return nil, &MissingTimeRow{
			Date:          date,
			Employee:      employeeName(name),
			Department:    strings.TrimSpace(row.Cell(colDepartment).Text()),
			MissingFields: fields,
			Raw:           rawFields(row),
		}, false
	}

	businessDate := date
	if end.Hour < clock.BusinessDayCutoverHour {
		businessDate = date.AddDays(-1)
	}

	base := Claim{
		BusinessDate:  businessDate,
		Date:          date,
		Employee:      employeeName(name),
		Department:    strings.TrimSpace(row.Cell(colDepartment).Text()),
		RecordedHours: parseRecordedHours(row.Cell(colRecorded)),
		Description:   strings.TrimSpace(row.Cell(colWorkDesc).Text()),
		Holiday:       isHoliday(row.Cell(colHoliday)),
	}
	return segment(base, start, end), miss, true
}

// segment derives the overtime claims for an interval relative to the
// regular-hours window.
func segment(base Claim, start, end clock.Clock) []Claim {
	if base.Holiday {
		// The whole shift counts as overtime on a holiday.
		c := base
		c.Start, c.End, c.Kind = start, end, HolidayWork
		return []Claim{c}
	}

	// Entirely outside regular hours, including overnight intervals.
	if !start.Before(RegularEnd) || !end.After(RegularStart) {
		c := base
		c.Start, c.End = start, end
		if start.Before(RegularStart) {
			c.Kind = EarlyArrival
		} else {
			c.Kind = LateDeparture
		}
		return []Claim{c}
	}

	// Straddles the window: up to two claims for the outside portions.
	var claims []Claim
	if start.Before(RegularStart) {
		c := base
		c.Start, c.End, c.Kind = start, RegularStart, EarlyArrival
		claims = append(claims, c)
	}
	if end.After(RegularEnd) {
		c := base
		c.Start, c.End, c.Kind = RegularEnd, end, LateDeparture
		claims = append(claims, c)
	}
	return claims
}

// isHoliday checks the holiday-flag text for any holiday keyword.
func isHoliday(flag tabular.Cell) bool {
	if flag.IsEmpty() {
		return false
	}
	lowered := strings.ToLower(strings.TrimSpace(flag.Text()))
	for _, kw := range holidayKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// parseRecordedHours reads the author-supplied overtime figure: either a
// "H:MM" duration or a plain number of hours. Unparseable values are nil.
func parseRecordedHours(cell tabular.Cell) *decimal.Decimal {
	if cell.IsEmpty() {
		return nil
	}
	text := strings.ReplaceAll(cell.Text(), " ", "")
	if strings.Contains(text, ":") {
		if c, ok := clock.ParseClockString(text); ok {
			hours := decimal.NewFromInt(int64(c.Hour)).
				Add(decimal.NewFromInt(int64(c.Minute)).Div(decimal.NewFromInt(60)))
			return &hours
		}
		return nil
	}
	if f, ok := cell.Float(); ok {
		hours := decimal.NewFromFloat(f)
		return &hours
	}
	return nil
}

func employeeName(name string) string {
	if name == "" {
		return "Unknown"
	}
	return name
}

// rawFields captures the original values a reviewer needs to chase a
// problematic row back to the source file.
func rawFields(row tabular.Row) map[string]string {
	return map[string]string{
		"department":  row.Cell(colDepartment).Text(),
		"name":        row.Cell(colName).Text(),
		"date":        row.Cell(colDate).Text(),
		"start-time":  row.Cell(colStartTime).Text(),
		"end-time":    row.Cell(colEndTime).Text(),
		"description": row.Cell(colWorkDesc).Text(),
	}
}

func errorRowFor(row tabular.Row, reason string) ErrorRow {
	date, _ := row.Cell(colDate).Date()
	return ErrorRow{
		Date:     date,
		Employee: employeeName(strings.TrimSpace(row.Cell(colName).Text())),
		Reason:   reason,
		Raw:      rawFields(row),
	}
}
