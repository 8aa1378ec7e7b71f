package shiftplan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/employee"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/shift"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/localtime"
)

type fakeShiftRepo struct {
	shifts map[string]shift.DepartmentShift
}

func (f *fakeShiftRepo) GetByID(_ context.Context, id string) (shift.DepartmentShift, error) {
	s, ok := f.shifts[id]
	if !ok {
		return shift.DepartmentShift{}, shift.ErrShiftNotFound
	}
	return s, nil
}

func (f *fakeShiftRepo) ListActiveByDepartment(_ context.Context, departmentID string) ([]shift.DepartmentShift, error) {
	var out []shift.DepartmentShift
	for _, s := range f.shifts {
		if s.DepartmentID == departmentID && s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakePlanRepo struct {
	plans []shift.SchedulePlan
}

func (f *fakePlanRepo) ListActiveForDay(_ context.Context, departmentID string, day time.Time) ([]shift.SchedulePlan, error) {
	var out []shift.SchedulePlan
	for _, p := range f.plans {
		if p.DepartmentID == departmentID && p.Active && p.Covers(day) {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeAssignmentRepo struct {
	assignments []shift.WeekdayAssignment
}

func (f *fakeAssignmentRepo) ListByDepartmentAndWeekday(_ context.Context, departmentID string, weekday time.Weekday) ([]shift.WeekdayAssignment, error) {
	var out []shift.WeekdayAssignment
	for _, a := range f.assignments {
		if a.DepartmentID == departmentID && a.Weekday == weekday {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeWorkRuleRepo struct {
	rule *shift.WorkRule
}

func (f *fakeWorkRuleRepo) GetByDepartment(_ context.Context, _ string) (*shift.WorkRule, error) {
	return f.rule, nil
}

func mustTime(t *testing.T, s string) shift.TimeOfDay {
	t.Helper()
	tod, err := shift.ParseTimeOfDay(s)
	require.NoError(t, err)
	return tod
}

func strPtr(s string) *string { return &s }

func newTestResolver(shifts *fakeShiftRepo, plans *fakePlanRepo, assignments *fakeAssignmentRepo, rules *fakeWorkRuleRepo) shift.Resolver {
	return NewResolver(shifts, plans, assignments, rules, localtime.MustResolver("Asia/Jakarta"))
}

func testEmployee(defaultShiftID *string) employee.Employee {
	return employee.Employee{ID: "emp-1", DepartmentID: "dept-1", DefaultShiftID: defaultShiftID, Active: true}
}

func TestResolvePlanWins(t *testing.T) {
	day := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	shifts := &fakeShiftRepo{shifts: map[string]shift.DepartmentShift{
		"morning": {ID: "morning", DepartmentID: "dept-1", Name: "Morning", StartTime: mustTime(t, "09:00"), EndTime: mustTime(t, "18:00"), Active: true},
		"night":   {ID: "night", DepartmentID: "dept-1", Name: "Night", StartTime: mustTime(t, "22:00"), EndTime: mustTime(t, "06:00"), Active: true},
	}}
	plans := &fakePlanRepo{plans: []shift.SchedulePlan{{
		ID: "plan-1", DepartmentID: "dept-1", TargetType: shift.TargetOnlyEmployee,
		EmployeeIDs: []string{"emp-1"}, ShiftID: strPtr("night"),
		StartDate: day, EndDate: day, Active: true,
	}}}
	r := newTestResolver(shifts, plans, &fakeAssignmentRepo{}, &fakeWorkRuleRepo{})

	res, err := r.Resolve(context.Background(), testEmployee(strPtr("morning")), day, shift.ResolveParams{})
	require.NoError(t, err)
	require.NotNil(t, res.Shift)
	assert.Equal(t, "night", res.Shift.ID)
	assert.Equal(t, shift.SourceSchedulePlan, res.Source)
	assert.True(t, res.PlanActive())
}

func TestResolveMostSpecificPlanWins(t *testing.T) {
	day := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	shifts := &fakeShiftRepo{shifts: map[string]shift.DepartmentShift{
		"a": {ID: "a", DepartmentID: "dept-1", StartTime: mustTime(t, "08:00"), EndTime: mustTime(t, "17:00"), Active: true},
		"b": {ID: "b", DepartmentID: "dept-1", StartTime: mustTime(t, "10:00"), EndTime: mustTime(t, "19:00"), Active: true},
	}}
	plans := &fakePlanRepo{plans: []shift.SchedulePlan{
		{ID: "dept-wide", DepartmentID: "dept-1", TargetType: shift.TargetDepartment, ShiftID: strPtr("a"), StartDate: day, EndDate: day, Active: true},
		{ID: "personal", DepartmentID: "dept-1", TargetType: shift.TargetOnlyEmployee, EmployeeIDs: []string{"emp-1"}, ShiftID: strPtr("b"), StartDate: day, EndDate: day, Active: true},
	}}
	r := newTestResolver(shifts, plans, &fakeAssignmentRepo{}, &fakeWorkRuleRepo{})

	res, err := r.Resolve(context.Background(), testEmployee(nil), day, shift.ResolveParams{})
	require.NoError(t, err)
	assert.Equal(t, "b", res.Shift.ID)
	assert.Equal(t, "personal", res.Plan.ID)
}

func TestResolveLockedPlanRejectsConflictingRequest(t *testing.T) {
	day := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	shifts := &fakeShiftRepo{shifts: map[string]shift.DepartmentShift{
		"bound": {ID: "bound", DepartmentID: "dept-1", StartTime: mustTime(t, "09:00"), EndTime: mustTime(t, "18:00"), Active: true},
		"other": {ID: "other", DepartmentID: "dept-1", StartTime: mustTime(t, "12:00"), EndTime: mustTime(t, "21:00"), Active: true},
	}}
	plans := &fakePlanRepo{plans: []shift.SchedulePlan{{
		ID: "plan-1", DepartmentID: "dept-1", TargetType: shift.TargetDepartment,
		ShiftID: strPtr("bound"), StartDate: day, EndDate: day, Locked: true, Active: true,
	}}}
	r := newTestResolver(shifts, plans, &fakeAssignmentRepo{}, &fakeWorkRuleRepo{})

	_, err := r.Resolve(context.Background(), testEmployee(nil), day, shift.ResolveParams{RequestedShiftID: strPtr("other")})
	assert.ErrorIs(t, err, shift.ErrShiftLockedByPlan)
}

func TestResolveRequestWinsOverUnlockedPlan(t *testing.T) {
	day := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	shifts := &fakeShiftRepo{shifts: map[string]shift.DepartmentShift{
		"bound": {ID: "bound", DepartmentID: "dept-1", StartTime: mustTime(t, "09:00"), EndTime: mustTime(t, "18:00"), Active: true},
		"other": {ID: "other", DepartmentID: "dept-1", StartTime: mustTime(t, "12:00"), EndTime: mustTime(t, "21:00"), Active: true},
	}}
	plans := &fakePlanRepo{plans: []shift.SchedulePlan{{
		ID: "plan-1", DepartmentID: "dept-1", TargetType: shift.TargetDepartment,
		ShiftID: strPtr("bound"), StartDate: day, EndDate: day, Active: true,
	}}}
	r := newTestResolver(shifts, plans, &fakeAssignmentRepo{}, &fakeWorkRuleRepo{})

	res, err := r.Resolve(context.Background(), testEmployee(nil), day, shift.ResolveParams{RequestedShiftID: strPtr("other")})
	require.NoError(t, err)
	assert.Equal(t, "other", res.Shift.ID)
	assert.Equal(t, shift.SourceRequest, res.Source)
	assert.True(t, res.PlanOverridden)
}

func TestResolveRequestValidation(t *testing.T) {
	day := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	shifts := &fakeShiftRepo{shifts: map[string]shift.DepartmentShift{
		"foreign":  {ID: "foreign", DepartmentID: "dept-2", StartTime: mustTime(t, "09:00"), EndTime: mustTime(t, "18:00"), Active: true},
		"inactive": {ID: "inactive", DepartmentID: "dept-1", StartTime: mustTime(t, "09:00"), EndTime: mustTime(t, "18:00"), Active: false},
	}}
	r := newTestResolver(shifts, &fakePlanRepo{}, &fakeAssignmentRepo{}, &fakeWorkRuleRepo{})

	_, err := r.Resolve(context.Background(), testEmployee(nil), day, shift.ResolveParams{RequestedShiftID: strPtr("missing")})
	assert.ErrorIs(t, err, shift.ErrShiftNotFound)

	_, err = r.Resolve(context.Background(), testEmployee(nil), day, shift.ResolveParams{RequestedShiftID: strPtr("foreign")})
	assert.ErrorIs(t, err, shift.ErrShiftDepartmentMismatch)

	_, err = r.Resolve(context.Background(), testEmployee(nil), day, shift.ResolveParams{RequestedShiftID: strPtr("inactive")})
	assert.ErrorIs(t, err, shift.ErrShiftInactive)
}

func TestResolveWeekdayAssignmentPrefersDefault(t *testing.T) {
	day := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC) // a Tuesday in Jakarta
	shifts := &fakeShiftRepo{shifts: map[string]shift.DepartmentShift{
		"a": {ID: "a", DepartmentID: "dept-1", StartTime: mustTime(t, "08:00"), EndTime: mustTime(t, "17:00"), Active: true},
		"b": {ID: "b", DepartmentID: "dept-1", StartTime: mustTime(t, "14:00"), EndTime: mustTime(t, "23:00"), Active: true},
	}}
	assignments := &fakeAssignmentRepo{assignments: []shift.WeekdayAssignment{
		{DepartmentID: "dept-1", Weekday: time.Tuesday, ShiftID: "a"},
		{DepartmentID: "dept-1", Weekday: time.Tuesday, ShiftID: "b"},
	}}
	r := newTestResolver(shifts, &fakePlanRepo{}, assignments, &fakeWorkRuleRepo{})

	res, err := r.Resolve(context.Background(), testEmployee(strPtr("b")), day, shift.ResolveParams{})
	require.NoError(t, err)
	assert.Equal(t, "b", res.Shift.ID)
	assert.Equal(t, shift.SourceEmployeeDefault, res.Source)
}

func TestResolveInferenceFromClockTime(t *testing.T) {
	shifts := &fakeShiftRepo{shifts: map[string]shift.DepartmentShift{
		"morning": {ID: "morning", DepartmentID: "dept-1", StartTime: mustTime(t, "09:00"), EndTime: mustTime(t, "18:00"), Active: true},
		"night":   {ID: "night", DepartmentID: "dept-1", StartTime: mustTime(t, "22:00"), EndTime: mustTime(t, "06:00"), Active: true},
	}}
	r := newTestResolver(shifts, &fakePlanRepo{}, &fakeAssignmentRepo{}, &fakeWorkRuleRepo{})

	// 09:15 local: closest to the morning start, inside the threshold.
	checkin := time.Date(2025, 3, 11, 2, 15, 0, 0, time.UTC)
	day := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	res, err := r.Resolve(context.Background(), testEmployee(nil), day, shift.ResolveParams{CheckinAt: &checkin})
	require.NoError(t, err)
	assert.Equal(t, "morning", res.Shift.ID)
	assert.Equal(t, shift.SourceAutoCheckinTime, res.Source)
	assert.False(t, res.NeedsReview)

	// 23:30 local the previous evening: wraps to the night shift.
	checkin = time.Date(2025, 3, 11, 16, 30, 0, 0, time.UTC)
	res, err = r.Resolve(context.Background(), testEmployee(nil), day, shift.ResolveParams{CheckinAt: &checkin})
	require.NoError(t, err)
	assert.Equal(t, "night", res.Shift.ID)

	// 14:00 local: 5h from either start, flagged for review.
	checkin = time.Date(2025, 3, 11, 7, 0, 0, 0, time.UTC)
	res, err = r.Resolve(context.Background(), testEmployee(nil), day, shift.ResolveParams{CheckinAt: &checkin})
	require.NoError(t, err)
	assert.True(t, res.NeedsReview)
}

func TestResolveMinutesPrecedence(t *testing.T) {
	day := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	shifts := &fakeShiftRepo{shifts: map[string]shift.DepartmentShift{}}

	// Defaults when nothing is configured.
	r := newTestResolver(shifts, &fakePlanRepo{}, &fakeAssignmentRepo{}, &fakeWorkRuleRepo{})
	res, err := r.Resolve(context.Background(), testEmployee(nil), day, shift.ResolveParams{})
	require.NoError(t, err)
	assert.Equal(t, shift.DefaultPlannedMinutes, res.PlannedMinutes)
	assert.Equal(t, shift.DefaultGraceMinutes, res.GraceMinutes)

	// Work rule overrides defaults.
	rules := &fakeWorkRuleRepo{rule: &shift.WorkRule{PlannedMinutes: 480, BreakMinutes: 30, GraceMinutes: 10}}
	r = newTestResolver(shifts, &fakePlanRepo{}, &fakeAssignmentRepo{}, rules)
	res, err = r.Resolve(context.Background(), testEmployee(nil), day, shift.ResolveParams{})
	require.NoError(t, err)
	assert.Equal(t, 480, res.PlannedMinutes)
	assert.Equal(t, 10, res.GraceMinutes)

	// Plan minutes override the work rule.
	planned := 300
	plans := &fakePlanRepo{plans: []shift.SchedulePlan{{
		ID: "plan-1", DepartmentID: "dept-1", TargetType: shift.TargetDepartment,
		PlannedMinutes: &planned, StartDate: day, EndDate: day, Active: true,
	}}}
	r = newTestResolver(shifts, plans, &fakeAssignmentRepo{}, rules)
	res, err = r.Resolve(context.Background(), testEmployee(nil), day, shift.ResolveParams{})
	require.NoError(t, err)
	assert.Equal(t, 300, res.PlannedMinutes)
	assert.Equal(t, 10, res.GraceMinutes)
}

func TestCircularMinuteDistance(t *testing.T) {
	assert.Equal(t, 0, circularMinuteDistance(540, 540))
	assert.Equal(t, 30, circularMinuteDistance(570, 540))
	// 23:30 vs 00:30 wraps to 60 minutes.
	assert.Equal(t, 60, circularMinuteDistance(23*60+30, 30))
}
