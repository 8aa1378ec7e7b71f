package shift

import (
	"context"
	"time"
)

// ShiftRepository defines data access for department shifts.
type ShiftRepository interface {
	GetByID(ctx context.Context, id string) (DepartmentShift, error)
	ListActiveByDepartment(ctx context.Context, departmentID string) ([]DepartmentShift, error)
}

// SchedulePlanRepository resolves override plans.
type SchedulePlanRepository interface {
	// ListActiveForDay returns active plans for the department whose date
	// range covers the local day. Target filtering happens in the resolver.
	ListActiveForDay(ctx context.Context, departmentID string, day time.Time) ([]SchedulePlan, error)
}

// WeekdayAssignmentRepository resolves per-weekday department shift bindings.
type WeekdayAssignmentRepository interface {
	ListByDepartmentAndWeekday(ctx context.Context, departmentID string, weekday time.Weekday) ([]WeekdayAssignment, error)
}

// WorkRuleRepository resolves department default minutes.
type WorkRuleRepository interface {
	// GetByDepartment returns nil when the department has no work rule.
	GetByDepartment(ctx context.Context, departmentID string) (*WorkRule, error)
}

// ManualOverrideRepository resolves per employee+day manual corrections.
type ManualOverrideRepository interface {
	// GetByEmployeeAndDay returns nil when no override exists for the day.
	GetByEmployeeAndDay(ctx context.Context, employeeID string, day time.Time) (*ManualDayOverride, error)
}
