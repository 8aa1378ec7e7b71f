package event

import (
	"context"
	"time"
)

// EventRepository defines data access for attendance events. Soft-deleted
// rows are excluded from every query.
type EventRepository interface {
	Create(ctx context.Context, ev Event) (Event, error)

	GetByID(ctx context.Context, id string) (Event, error)

	// Update rewrites an event after an admin edit.
	Update(ctx context.Context, ev Event) error

	// SoftDelete stamps deleted_at and the admin flag without removing the row.
	SoftDelete(ctx context.Context, id string, at time.Time) error

	// LatestAtOrBefore returns the most recent non-deleted event at or
	// before the instant, or nil. Open-shift state is derived from it.
	LatestAtOrBefore(ctx context.Context, employeeID string, at time.Time) (*Event, error)

	// ListBetween returns non-deleted events with timestamp in
	// [start, end), ascending.
	ListBetween(ctx context.Context, employeeID string, start, end time.Time) ([]Event, error)

	// LatestQRScanAt returns the timestamp of the employee's most recent
	// QR-scan event, or nil. Backs the scan cool-down.
	LatestQRScanAt(ctx context.Context, employeeID string) (*time.Time, error)
}
