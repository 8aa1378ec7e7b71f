package event

import "context"

// Engine validates and persists attendance events: sequencing, duplicate and
// daily-cycle rules, shift binding, QR resolution and the admin manual path.
type Engine interface {
	// CheckIn processes an employee check-in with full validation.
	CheckIn(ctx context.Context, req CheckInRequest) (Event, error)

	// CheckOut processes an employee check-out against the open check-in.
	CheckOut(ctx context.Context, req CheckOutRequest) (Event, error)

	// QRScan resolves a QR code and dispatches to CheckIn or CheckOut.
	QRScan(ctx context.Context, req QRScanRequest) (Event, error)

	// Status reports the derived open/closed state and today's cycle count.
	Status(ctx context.Context, employeeID string) (Status, error)

	// Admin manual path: bypasses location gating, keeps sequence checks.
	CreateManual(ctx context.Context, req ManualCreateRequest) (Event, error)
	UpdateManual(ctx context.Context, req ManualUpdateRequest) (Event, error)
	DeleteManual(ctx context.Context, eventID, adminID string) error

	// ApproveExtraCheckin marks a pending extra-checkin approval APPROVED.
	ApproveExtraCheckin(ctx context.Context, token, adminID string) error
}
