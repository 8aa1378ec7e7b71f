package shiftplan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/employee"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/shift"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/localtime"
)

type ResolverImpl struct {
	shiftRepo      shift.ShiftRepository
	planRepo       shift.SchedulePlanRepository
	assignmentRepo shift.WeekdayAssignmentRepository
	workRuleRepo   shift.WorkRuleRepository
	local          *localtime.Resolver
}

func NewResolver(
	shiftRepo shift.ShiftRepository,
	planRepo shift.SchedulePlanRepository,
	assignmentRepo shift.WeekdayAssignmentRepository,
	workRuleRepo shift.WorkRuleRepository,
	local *localtime.Resolver,
) shift.Resolver {
	return &ResolverImpl{
		shiftRepo:      shiftRepo,
		planRepo:       planRepo,
		assignmentRepo: assignmentRepo,
		workRuleRepo:   workRuleRepo,
		local:          local,
	}
}

// Resolve implements shift.Resolver. Priority: matching schedule plan,
// weekday assignment, employee default, and for check-ins clock-time
// inference. A caller-requested shift wins over an unlocked plan; a locked
// plan with a different bound shift is a hard rejection.
func (r *ResolverImpl) Resolve(ctx context.Context, emp employee.Employee, day time.Time, params shift.ResolveParams) (shift.Resolution, error) {
	res := shift.Resolution{}

	plan, err := r.matchPlan(ctx, emp, day)
	if err != nil {
		return res, err
	}
	res.Plan = plan

	if params.RequestedShiftID != nil {
		if plan != nil && plan.Locked && plan.ShiftID != nil && *plan.ShiftID != *params.RequestedShiftID {
			return res, shift.ErrShiftLockedByPlan
		}

		s, err := r.loadShift(ctx, *params.RequestedShiftID)
		if err != nil {
			return res, err
		}
		if s.DepartmentID != emp.DepartmentID {
			return res, shift.ErrShiftDepartmentMismatch
		}
		if !s.Active {
			return res, shift.ErrShiftInactive
		}

		res.Shift = s
		res.Source = shift.SourceRequest
		// Request wins over an unlocked plan; the displacement is noted,
		// not rejected.
		res.PlanOverridden = plan != nil && plan.ShiftID != nil && *plan.ShiftID != s.ID
		return r.withMinutes(ctx, emp, res)
	}

	if plan != nil && plan.ShiftID != nil {
		s, err := r.loadShift(ctx, *plan.ShiftID)
		if err != nil {
			return res, err
		}
		res.Shift = s
		res.Source = shift.SourceSchedulePlan
		return r.withMinutes(ctx, emp, res)
	}

	s, err := r.matchWeekday(ctx, emp, day)
	if err != nil {
		return res, err
	}
	if s != nil {
		res.Shift = s
		res.Source = shift.SourceEmployeeDefault
		return r.withMinutes(ctx, emp, res)
	}

	if emp.DefaultShiftID != nil {
		s, err := r.loadShift(ctx, *emp.DefaultShiftID)
		if err == nil && s.Active {
			res.Shift = s
			res.Source = shift.SourceEmployeeDefault
			return r.withMinutes(ctx, emp, res)
		}
		if err != nil && !errors.Is(err, shift.ErrShiftNotFound) {
			return res, err
		}
	}

	if params.CheckinAt != nil {
		s, needsReview, err := r.inferFromClock(ctx, emp.DepartmentID, *params.CheckinAt)
		if err != nil {
			return res, err
		}
		if s != nil {
			res.Shift = s
			res.Source = shift.SourceAutoCheckinTime
			res.NeedsReview = needsReview
		}
	}

	return r.withMinutes(ctx, emp, res)
}

// matchPlan picks the most specific active plan covering the day.
func (r *ResolverImpl) matchPlan(ctx context.Context, emp employee.Employee, day time.Time) (*shift.SchedulePlan, error) {
	plans, err := r.planRepo.ListActiveForDay(ctx, emp.DepartmentID, day)
	if err != nil {
		return nil, fmt.Errorf("list schedule plans: %w", err)
	}

	var best *shift.SchedulePlan
	bestSpecificity := 0
	for i := range plans {
		p := plans[i]
		if !p.Covers(day) {
			continue
		}
		ok, specificity := p.Targets(emp.ID, emp.DepartmentID)
		if ok && specificity > bestSpecificity {
			best = &plans[i]
			bestSpecificity = specificity
		}
	}
	return best, nil
}

// matchWeekday resolves the department's weekday-bound shift. With several
// candidates the one matching the employee's default shift wins; otherwise
// the weekday is treated as undetermined and resolution falls through.
func (r *ResolverImpl) matchWeekday(ctx context.Context, emp employee.Employee, day time.Time) (*shift.DepartmentShift, error) {
	// day is a canonical local-day date, so its own weekday is the local one.
	assignments, err := r.assignmentRepo.ListByDepartmentAndWeekday(ctx, emp.DepartmentID, day.Weekday())
	if err != nil {
		return nil, fmt.Errorf("list weekday assignments: %w", err)
	}
	if len(assignments) == 0 {
		return nil, nil
	}

	chosenID := ""
	if len(assignments) == 1 {
		chosenID = assignments[0].ShiftID
	} else if emp.DefaultShiftID != nil {
		for _, a := range assignments {
			if a.ShiftID == *emp.DefaultShiftID {
				chosenID = a.ShiftID
				break
			}
		}
	}
	if chosenID == "" {
		return nil, nil
	}
	return r.loadShift(ctx, chosenID)
}

// inferFromClock picks the active department shift whose start time has the
// smallest circular minute distance to the check-in's local time-of-day.
func (r *ResolverImpl) inferFromClock(ctx context.Context, departmentID string, checkinAt time.Time) (*shift.DepartmentShift, bool, error) {
	candidates, err := r.shiftRepo.ListActiveByDepartment(ctx, departmentID)
	if err != nil {
		return nil, false, fmt.Errorf("list department shifts: %w", err)
	}
	if len(candidates) == 0 {
		return nil, false, nil
	}

	minute := r.local.MinuteOfDay(checkinAt)
	var best *shift.DepartmentShift
	bestDistance := 0
	for i := range candidates {
		d := circularMinuteDistance(minute, candidates[i].StartTime.Minutes())
		if best == nil || d < bestDistance {
			best = &candidates[i]
			bestDistance = d
		}
	}

	return best, bestDistance > shift.InferenceReviewThresholdMinutes, nil
}

func (r *ResolverImpl) loadShift(ctx context.Context, id string) (*shift.DepartmentShift, error) {
	s, err := r.shiftRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, shift.ErrShiftNotFound) {
			return nil, shift.ErrShiftNotFound
		}
		return nil, fmt.Errorf("get shift %s: %w", id, err)
	}
	return &s, nil
}

// withMinutes fills effective planned/break/grace minutes: plan override,
// else department work rule, else fixed defaults.
func (r *ResolverImpl) withMinutes(ctx context.Context, emp employee.Employee, res shift.Resolution) (shift.Resolution, error) {
	res.PlannedMinutes = shift.DefaultPlannedMinutes
	res.BreakMinutes = shift.DefaultBreakMinutes
	res.GraceMinutes = shift.DefaultGraceMinutes

	rule, err := r.workRuleRepo.GetByDepartment(ctx, emp.DepartmentID)
	if err != nil {
		return res, fmt.Errorf("get work rule: %w", err)
	}
	if rule != nil {
		res.PlannedMinutes = rule.PlannedMinutes
		res.BreakMinutes = rule.BreakMinutes
		res.GraceMinutes = rule.GraceMinutes
	}

	if res.Plan != nil {
		if res.Plan.PlannedMinutes != nil {
			res.PlannedMinutes = *res.Plan.PlannedMinutes
		}
		if res.Plan.BreakMinutes != nil {
			res.BreakMinutes = *res.Plan.BreakMinutes
		}
		if res.Plan.GraceMinutes != nil {
			res.GraceMinutes = *res.Plan.GraceMinutes
		}
	}
	return res, nil
}

// circularMinuteDistance is the wrap-at-24h distance between two minutes of
// day.
func circularMinuteDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	d %= 24 * 60
	if d > 12*60 {
		d = 24*60 - d
	}
	return d
}
