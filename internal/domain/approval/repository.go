package approval

import (
	"context"
	"time"
)

// ApprovalRepository defines data access for extra-checkin approvals.
type ApprovalRepository interface {
	Create(ctx context.Context, a ExtraCheckinApproval) (ExtraCheckinApproval, error)

	// GetOpenByEmployeeAndDay returns the PENDING or APPROVED approval for
	// the employee and local day, or nil.
	GetOpenByEmployeeAndDay(ctx context.Context, employeeID string, day time.Time) (*ExtraCheckinApproval, error)

	GetByToken(ctx context.Context, token string) (*ExtraCheckinApproval, error)

	Update(ctx context.Context, a ExtraCheckinApproval) error

	// MarkConsumed transitions an approval to CONSUMED and stamps the
	// gated event id. It must only succeed once per approval.
	MarkConsumed(ctx context.Context, id, eventID string, at time.Time) error

	// ExpireOverdue transitions past-TTL PENDING/APPROVED approvals to
	// EXPIRED and returns how many rows changed.
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
}
