package shift

import (
	"fmt"
	"time"
)

// Effective rule defaults applied when neither a schedule plan nor a
// department work rule provides minutes.
const (
	DefaultPlannedMinutes = 540
	DefaultBreakMinutes   = 60
	DefaultGraceMinutes   = 5
)

// TimeOfDay is a local wall-clock time expressed as minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses "15:04" into minutes since midnight.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) Minutes() int { return int(t) }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// DepartmentShift is a named work shift with local start/end times.
// End at or before start means the shift crosses midnight.
type DepartmentShift struct {
	ID           string
	DepartmentID string
	Name         string
	StartTime    TimeOfDay
	EndTime      TimeOfDay
	BreakMinutes int
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CrossesMidnight reports whether the shift's window wraps past local
// midnight into the next calendar day.
func (s DepartmentShift) CrossesMidnight() bool {
	return s.EndTime <= s.StartTime
}

// DurationMinutes is the shift window length, accounting for wrap-around.
func (s DepartmentShift) DurationMinutes() int {
	if s.CrossesMidnight() {
		return 24*60 - int(s.StartTime) + int(s.EndTime)
	}
	return int(s.EndTime) - int(s.StartTime)
}

// ContainsMinute reports whether a local time-of-day falls inside the shift
// window, using the wrap-around test for midnight-crossing shifts.
func (s DepartmentShift) ContainsMinute(m int) bool {
	if s.CrossesMidnight() {
		return m >= int(s.StartTime) || m <= int(s.EndTime)
	}
	return m >= int(s.StartTime) && m <= int(s.EndTime)
}

// PlanTargetType scopes a schedule plan.
type PlanTargetType string

const (
	TargetDepartment               PlanTargetType = "DEPARTMENT"
	TargetDepartmentExceptEmployee PlanTargetType = "DEPARTMENT_EXCEPT_EMPLOYEE"
	TargetOnlyEmployee             PlanTargetType = "ONLY_EMPLOYEE"
)

// SchedulePlan is a date-ranged override of shift and/or minutes for a
// department, a department minus listed employees, or an explicit employee
// set. A locked plan forbids overriding its bound shift at check-in.
type SchedulePlan struct {
	ID             string
	DepartmentID   string
	TargetType     PlanTargetType
	EmployeeIDs    []string
	ShiftID        *string
	PlannedMinutes *int
	BreakMinutes   *int
	GraceMinutes   *int
	StartDate      time.Time // local date, midnight
	EndDate        time.Time // inclusive local date, midnight
	Locked         bool
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Covers reports whether the plan's date range contains the local day key
// (dates compared at day granularity).
func (p SchedulePlan) Covers(day time.Time) bool {
	d := day.Truncate(24 * time.Hour)
	return !d.Before(p.StartDate.Truncate(24*time.Hour)) && !d.After(p.EndDate.Truncate(24*time.Hour))
}

// Targets reports whether the plan applies to the employee, and how
// specifically (higher wins when several plans cover the same day).
func (p SchedulePlan) Targets(employeeID, departmentID string) (bool, int) {
	if p.DepartmentID != departmentID {
		return false, 0
	}
	switch p.TargetType {
	case TargetOnlyEmployee:
		for _, id := range p.EmployeeIDs {
			if id == employeeID {
				return true, 3
			}
		}
		return false, 0
	case TargetDepartmentExceptEmployee:
		for _, id := range p.EmployeeIDs {
			if id == employeeID {
				return false, 0
			}
		}
		return true, 2
	case TargetDepartment:
		return true, 1
	}
	return false, 0
}

// WeekdayAssignment binds a department shift to a weekday.
type WeekdayAssignment struct {
	ID           string
	DepartmentID string
	Weekday      time.Weekday
	ShiftID      string
	CreatedAt    time.Time
}

// WorkRule holds department-level default minutes used when no plan
// overrides them.
type WorkRule struct {
	ID             string
	DepartmentID   string
	PlannedMinutes int
	BreakMinutes   int
	GraceMinutes   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ManualDayOverride is a per employee+day admin correction. It takes
// precedence over inferred event data for that day.
type ManualDayOverride struct {
	ID         string
	EmployeeID string
	Day        time.Time // local date, midnight
	InAt       *time.Time
	OutAt      *time.Time
	Absent     bool
	ShiftID    *string
	RuleSource *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
