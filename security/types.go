// Package security classifies raw access-control events into a trustworthy
// per-business-day armed/disarmed timeline.
package security

import (
	"time"

	"github.com/warp/presence-audit/clock"
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// RecordType is the classification of one raw access-control row.
type RecordType int

const (
	// RecordOther is anything that carries no arm/disarm evidence.
	RecordOther RecordType = iota
	// RecordDisarm is an explicit disarm (someone opened the building).
	RecordDisarm
	// RecordArm is an explicit arm (the building was closed up).
	RecordArm
	// RecordAmbiguousEntry is a generic door event whose meaning depends on
	// its position within the day. Resolved later, never emitted as-is.
	RecordAmbiguousEntry
)

func (rt RecordType) String() string {
	switch rt {
	case RecordDisarm:
		return "disarm"
	case RecordArm:
		return "arm"
	case RecordAmbiguousEntry:
		return "ambiguous-entry"
	default:
		return "other"
	}
}

// Status is the security system state between two state changes.
type Status string

const (
	StatusArmed    Status = "armed"
	StatusDisarmed Status = "disarmed"
)

// =============================================================================
// EVENTS AND TIMELINE
// =============================================================================

// Event is one raw access-control record after parsing. Immutable.
type Event struct {
	Date         clock.Date
	Time         clock.Clock
	Mode         string
	BusinessDate clock.Date
	Type         RecordType
}

// At is the absolute timestamp of the event on its calendar date.
func (e Event) At() time.Time { return e.Date.At(e.Time) }

// StateChange is a resolved armed/disarmed transition.
type StateChange struct {
	At     time.Time
	Status Status
}

// Timeline maps each business date to its chronological state changes.
type Timeline map[clock.Date][]StateChange

// UnclearDay is a diagnostic for a business day whose security evidence is
// not trustworthy. Informational output for operator review, never blocking.
type UnclearDay struct {
	Date        clock.Date
	Records     int
	Ambiguous   int
	Description string
}

// Descriptions for unclear-day diagnostics.
const (
	DescNoClearRecord = "no clear arm/disarm record"
	DescMissingClose  = "day ended without arming the system"
)
