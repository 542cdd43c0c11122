/*
Package tabular models the loosely-typed row data the audit engine consumes.

PURPOSE:
  Spreadsheet exports are heterogeneous: the same column can hold a string
  in one row and a native time or number in the next. Cell is a small sum
  type (Text | Temporal | Numeric | Empty) and all coercion to dates and
  times-of-day is centralized here, so business logic never type-switches
  on raw values.

KEY CONCEPTS:
  - Cell:  one value with its source type preserved
  - Row:   a slice of cells; out-of-range access yields Empty, because
           trailing blank cells are routinely absent from exports
  - Table: an optional header plus data rows

SEE ALSO:
  - clock: the parsers Cell coercion delegates to
  - security: keyword-based column resolution over Table headers
*/
package tabular

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/warp/presence-audit/clock"
)

// =============================================================================
// CELL - Sum type over spreadsheet value kinds
// =============================================================================

type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindTemporal
	KindNumeric
)

type Cell struct {
	kind Kind
	text string
	when time.Time
	num  float64
}

// Empty is the zero Cell.
var Empty = Cell{}

func Text(s string) Cell        { return Cell{kind: KindText, text: s} }
func Temporal(t time.Time) Cell { return Cell{kind: KindTemporal, when: t} }
func Number(f float64) Cell     { return Cell{kind: KindNumeric, num: f} }

func (c Cell) Kind() Kind { return c.kind }

// IsEmpty reports whether the cell carries no usable value. Whitespace-only
// text counts as empty, matching how blank spreadsheet cells arrive.
func (c Cell) IsEmpty() bool {
	if c.kind == KindEmpty {
		return true
	}
	if c.kind == KindText && strings.TrimSpace(c.text) == "" {
		return true
	}
	return false
}

// Text renders the cell for diagnostics and display.
func (c Cell) Text() string {
	switch c.kind {
	case KindText:
		return c.text
	case KindTemporal:
		return c.when.Format("2006-01-02 15:04:05")
	case KindNumeric:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Clock coerces the cell to a time of day. Strings are parsed as "H:MM" or
// "H:MM:SS", temporals yield their time component, and numerics are read as
// Excel day fractions. Unparseable values return def and false.
func (c Cell) Clock(def clock.Clock) (clock.Clock, bool) {
	switch c.kind {
	case KindText:
		if parsed, ok := clock.ParseClockString(c.text); ok {
			return parsed, true
		}
	case KindTemporal:
		return clock.ClockOf(c.when), true
	case KindNumeric:
		if parsed, ok := clock.ClockOfDayFraction(c.num); ok {
			return parsed, true
		}
	}
	return def, false
}

// Date coerces the cell to a calendar date.
func (c Cell) Date() (clock.Date, bool) {
	switch c.kind {
	case KindText:
		if d, err := clock.ParseDate(c.text); err == nil {
			return d, true
		}
	case KindTemporal:
		return clock.DateOf(c.when), true
	}
	return clock.Date{}, false
}

// Float coerces the cell to a number. Numeric text is accepted.
func (c Cell) Float() (float64, bool) {
	switch c.kind {
	case KindNumeric:
		return c.num, true
	case KindText:
		if f, err := strconv.ParseFloat(strings.TrimSpace(c.text), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// =============================================================================
// ROW / TABLE
// =============================================================================

type Row []Cell

// Cell returns the cell at index i, or Empty when the row is too short.
func (r Row) Cell(i int) Cell {
	if i < 0 || i >= len(r) {
		return Empty
	}
	return r[i]
}

// Table is a header plus data rows. Header may be nil for fixed-layout
// sources addressed purely by column offset.
type Table struct {
	Header []string
	Rows   []Row
}

// =============================================================================
// COLUMN RESOLUTION - Keyword search with fixed-offset fallback
// =============================================================================

// MissingColumnError is a structural failure: a required column could not be
// resolved by keyword or by fallback offset. It fails the whole batch since
// no downstream inference is possible without the column.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q could not be resolved", e.Column)
}

// FindColumn returns the index of the first header whose lower-cased text
// contains any of the keywords, or -1.
func (t Table) FindColumn(keywords ...string) int {
	for i, h := range t.Header {
		lowered := strings.ToLower(h)
		for _, kw := range keywords {
			if strings.Contains(lowered, kw) {
				return i
			}
		}
	}
	return -1
}
