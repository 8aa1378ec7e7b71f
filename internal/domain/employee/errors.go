package employee

import "github.com/tandang-dev/attendance-backend-go/internal/domain/fault"

// Employee domain faults
var (
	ErrEmployeeNotFound       = fault.New("EMPLOYEE_NOT_FOUND", "employee not found")
	ErrEmployeeInactive       = fault.New("EMPLOYEE_INACTIVE", "employee is not active")
	ErrHomeLocationAlreadySet = fault.New("HOME_LOCATION_ALREADY_SET", "home location has already been set")
)
