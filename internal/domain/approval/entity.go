package approval

import "time"

// Status is the extra-checkin approval lifecycle state.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusConsumed Status = "CONSUMED"
	StatusExpired  Status = "EXPIRED"
)

// ExtraCheckinApproval gates a check-in beyond the daily cycle cap behind an
// out-of-band admin action. At most one approved-and-unconsumed approval is
// usable per employee and local day.
type ExtraCheckinApproval struct {
	ID         string
	EmployeeID string
	DeviceID   string
	Day        time.Time // local date, midnight
	Token      string
	Status     Status

	RequestedAt time.Time
	ApprovedAt  *time.Time
	ConsumedAt  *time.Time
	ExpiresAt   time.Time

	// ConsumedEventID is stamped with the gated check-in the moment it
	// succeeds.
	ConsumedEventID *string

	// Push delivery bookkeeping for admin re-notification throttling.
	NotifyCount       int
	LastNotifiedAt    *time.Time
	LastNotifyTargets int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Usable reports whether the approval can gate a check-in at the instant:
// approved, unconsumed and unexpired.
func (a ExtraCheckinApproval) Usable(at time.Time) bool {
	return a.Status == StatusApproved && a.ConsumedAt == nil && at.Before(a.ExpiresAt)
}

// ExpiredAt reports whether the approval's TTL has elapsed without
// consumption.
func (a ExtraCheckinApproval) ExpiredAt(at time.Time) bool {
	return a.Status != StatusConsumed && !at.Before(a.ExpiresAt)
}
