package shift

import (
	"context"
	"time"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/employee"
)

// BindingSource records which rule bound a shift to an event.
type BindingSource string

const (
	SourceSchedulePlan    BindingSource = "SCHEDULE_PLAN"
	SourceAutoCheckinTime BindingSource = "AUTO_CHECKIN_TIME"
	SourceEmployeeDefault BindingSource = "EMPLOYEE_DEFAULT"
	SourceRequest         BindingSource = "REQUEST"
)

// When a check-in time is further than this from every shift start, the
// inferred binding is flagged for review.
const InferenceReviewThresholdMinutes = 120

// ResolveParams carries the inputs the resolver needs beyond employee+day.
type ResolveParams struct {
	// RequestedShiftID is the caller-supplied shift. It wins over an
	// active unlocked plan (the plan is noted as overridden); a locked
	// plan with a different bound shift is a hard rejection.
	RequestedShiftID *string

	// CheckinAt enables clock-time inference (priority 4) and is only set
	// for check-ins.
	CheckinAt *time.Time
}

// Resolution is the outcome of the shift/plan resolution chain for one
// employee-day.
type Resolution struct {
	// Shift may be nil when nothing in the chain produced a match and no
	// check-in time was available for inference.
	Shift  *DepartmentShift
	Source BindingSource

	// NeedsReview marks an inference whose circular start-time distance
	// exceeded the review threshold.
	NeedsReview bool

	// Plan is the matching schedule plan, when one covers the day,
	// regardless of whether its shift was used.
	Plan *SchedulePlan
	// PlanOverridden marks that a caller-requested shift displaced the
	// plan's bound shift.
	PlanOverridden bool

	PlannedMinutes int
	BreakMinutes   int
	GraceMinutes   int
}

// PlanActive reports whether an override plan is in force for the day.
func (r Resolution) PlanActive() bool {
	return r.Plan != nil
}

// Resolver determines which shift and effective minutes apply to an
// employee on a local day.
type Resolver interface {
	Resolve(ctx context.Context, emp employee.Employee, day time.Time, params ResolveParams) (Resolution, error)
}
