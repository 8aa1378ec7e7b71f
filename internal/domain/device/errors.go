package device

import "github.com/tandang-dev/attendance-backend-go/internal/domain/fault"

var (
	ErrDeviceNotFound       = fault.New("DEVICE_NOT_FOUND", "device not found")
	ErrDeviceAlreadyClaimed = fault.New("DEVICE_ALREADY_CLAIMED", "device is already claimed")
	ErrInvalidClaimSecret   = fault.New("INVALID_CLAIM_SECRET", "claim secret does not match")
)
