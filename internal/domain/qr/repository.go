package qr

import "context"

// QRRepository defines data access for QR codes and anchor points.
type QRRepository interface {
	// GetActiveByValue resolves an active code by its scanned value.
	// Returns nil when no active code matches.
	GetActiveByValue(ctx context.Context, value string) (*Code, error)

	// ListActivePoints returns the code's active anchor points.
	ListActivePoints(ctx context.Context, codeID string) ([]Point, error)
}
