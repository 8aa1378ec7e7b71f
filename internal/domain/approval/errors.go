package approval

import "github.com/tandang-dev/attendance-backend-go/internal/domain/fault"

var (
	ErrApprovalNotFound        = fault.New("APPROVAL_NOT_FOUND", "extra-checkin approval not found")
	ErrApprovalExpired         = fault.New("APPROVAL_EXPIRED", "extra-checkin approval has expired")
	ErrApprovalAlreadyConsumed = fault.New("APPROVAL_ALREADY_CONSUMED", "extra-checkin approval was already consumed")
)
