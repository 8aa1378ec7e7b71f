package shift

import "github.com/tandang-dev/attendance-backend-go/internal/domain/fault"

// Shift resolution faults
var (
	ErrShiftNotFound           = fault.New("SHIFT_NOT_FOUND", "shift not found")
	ErrShiftDepartmentMismatch = fault.New("SHIFT_DEPARTMENT_MISMATCH", "shift belongs to another department")
	ErrShiftInactive           = fault.New("SHIFT_INACTIVE", "shift is not active")
	ErrShiftLockedByPlan       = fault.New("SHIFT_LOCKED_BY_PLAN", "schedule plan locks the shift for this day")
)
