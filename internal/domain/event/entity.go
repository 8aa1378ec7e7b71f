package event

import (
	"time"
)

// Type is the event direction.
type Type string

const (
	TypeIn  Type = "IN"
	TypeOut Type = "OUT"
)

// Source distinguishes organic device events from admin manual entries and
// monitor-synthesized closes.
type Source string

const (
	SourceDevice Source = "DEVICE"
	SourceManual Source = "MANUAL"
	SourceSystem Source = "SYSTEM"
)

// LocationStatus classifies the reported position at event time.
type LocationStatus string

const (
	LocationVerifiedHome LocationStatus = "VERIFIED_HOME"
	LocationUnverified   LocationStatus = "UNVERIFIED_LOCATION"
	LocationNone         LocationStatus = "NO_LOCATION"
)

// Event is a single check-in or check-out. Immutable once created except by
// explicit admin edit or soft delete.
type Event struct {
	ID         string
	EmployeeID string
	DeviceID   *string
	Type       Type
	Timestamp  time.Time // UTC

	Latitude       *float64
	Longitude      *float64
	AccuracyMeters *float64
	LocationStatus LocationStatus

	Flags   Flags
	Source  Source
	ByAdmin bool
	Note    *string

	DeletedAt      *time.Time
	DeletedByAdmin bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Deleted reports whether the event has been soft-deleted.
func (e Event) Deleted() bool {
	return e.DeletedAt != nil
}
