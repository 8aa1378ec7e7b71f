package event

import "github.com/tandang-dev/attendance-backend-go/internal/domain/fault"

// Attendance sequencing faults
var (
	ErrAlreadyCheckedIn  = fault.New("ALREADY_CHECKED_IN", "an open check-in already exists")
	ErrCheckinRequired   = fault.New("CHECKIN_REQUIRED", "no open check-in to check out from")
	ErrAlreadyCheckedOut = fault.New("ALREADY_CHECKED_OUT", "already checked out with no open check-in")

	ErrSecondCheckinApprovalRequired = fault.New("SECOND_CHECKIN_APPROVAL_REQUIRED", "daily check-in limit reached, admin approval pending")

	ErrDeviceNotClaimed = fault.New("DEVICE_NOT_CLAIMED", "device is not claimed by an employee")

	// Admin edits only; organic duplicates are flagged, never rejected.
	ErrInvalidEventSequence = fault.New("INVALID_EVENT_SEQUENCE", "event conflicts with the existing sequence")

	ErrEventNotFound = fault.New("EVENT_NOT_FOUND", "attendance event not found")
)
