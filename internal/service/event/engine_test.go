package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/approval"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/device"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/employee"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/event"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/qr"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/shift"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/localtime"
)

type testEnv struct {
	engine    event.Engine
	events    *fakeEventRepo
	employees *fakeEmployeeRepo
	devices   *fakeDeviceRepo
	approvals *fakeApprovalRepo
	qrs       *fakeQRRepo
	shifts    *fakeShiftRepo
	resolver  *stubResolver
	pusher    *countingPusher
	local     *localtime.Resolver
	now       time.Time
}

const (
	testEmployeeID = "emp-1"
	testDeviceID   = "dev-1"
	testShiftID    = "shift-morning"
)

// localAt builds a UTC instant from Jakarta wall-clock parts.
func localAt(local *localtime.Resolver, y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, local.Location()).UTC()
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	local := localtime.MustResolver("Asia/Jakarta")

	empID := testEmployeeID
	homeLat, homeLon, homeRadius := -6.2, 106.8, 100

	env := &testEnv{
		events: &fakeEventRepo{},
		employees: &fakeEmployeeRepo{employees: map[string]employee.Employee{
			testEmployeeID: {
				ID: testEmployeeID, DepartmentID: "dept-1", FullName: "Andi Wijaya", Active: true,
				HomeLatitude: &homeLat, HomeLongitude: &homeLon, HomeRadiusMeters: &homeRadius,
			},
		}},
		devices: &fakeDeviceRepo{devices: map[string]device.Device{
			testDeviceID: {ID: testDeviceID, EmployeeID: &empID, Fingerprint: "fp-1", Active: true},
		}},
		approvals: &fakeApprovalRepo{approvals: map[string]approval.ExtraCheckinApproval{}},
		qrs:       &fakeQRRepo{codes: map[string]qr.Code{}, points: map[string][]qr.Point{}},
		shifts: &fakeShiftRepo{shifts: map[string]shift.DepartmentShift{
			testShiftID: {
				ID: testShiftID, DepartmentID: "dept-1", Name: "Morning", Active: true,
				StartTime: mustTimeOfDay(t, "09:00"), EndTime: mustTimeOfDay(t, "17:00"),
			},
		}},
		pusher: &countingPusher{targets: 2},
		local:  local,
		now:    localAt(local, 2026, time.March, 10, 9, 0),
	}
	morning := env.shifts.shifts[testShiftID]
	env.resolver = &stubResolver{res: shift.Resolution{
		Shift: &morning, Source: shift.SourceEmployeeDefault,
		PlannedMinutes: 480, BreakMinutes: 60, GraceMinutes: 5,
	}}

	env.engine = NewEngine(nil, env.events, env.employees, env.devices, env.approvals,
		env.qrs, env.shifts, env.resolver, local, env.pusher, nopAudit{}, Config{
			Now: func() time.Time { return env.now },
		})
	return env
}

func mustTimeOfDay(t *testing.T, s string) shift.TimeOfDay {
	t.Helper()
	tod, err := shift.ParseTimeOfDay(s)
	require.NoError(t, err)
	return tod
}

func (env *testEnv) checkInReq() event.CheckInRequest {
	lat, lon := -6.2, 106.8
	return event.CheckInRequest{
		EmployeeID: testEmployeeID, DeviceID: testDeviceID,
		Latitude: &lat, Longitude: &lon,
	}
}

func (env *testEnv) checkOutReq() event.CheckOutRequest {
	lat, lon := -6.2, 106.8
	return event.CheckOutRequest{
		EmployeeID: testEmployeeID, DeviceID: testDeviceID,
		Latitude: &lat, Longitude: &lon,
	}
}

func TestCheckInBindsShiftAndVerifiesHome(t *testing.T) {
	env := newTestEnv(t)

	ev, err := env.engine.CheckIn(context.Background(), env.checkInReq())
	require.NoError(t, err)

	assert.Equal(t, event.TypeIn, ev.Type)
	assert.Equal(t, event.LocationVerifiedHome, ev.LocationStatus)
	assert.Equal(t, event.SourceDevice, ev.Source)
	require.NotNil(t, ev.Flags.Shift)
	assert.Equal(t, testShiftID, ev.Flags.Shift.ShiftID)
	assert.Equal(t, shift.SourceEmployeeDefault, ev.Flags.Shift.Source)
	assert.Nil(t, ev.Flags.Duplicate)
}

func TestCheckInWithoutCoordinatesIsNoLocation(t *testing.T) {
	env := newTestEnv(t)

	req := env.checkInReq()
	req.Latitude, req.Longitude = nil, nil
	ev, err := env.engine.CheckIn(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, event.LocationNone, ev.LocationStatus)
	require.NotNil(t, ev.Flags.Location)
	assert.Equal(t, "missing_coordinates", ev.Flags.Location.Reason)
}

func TestCheckInRejectedWhileOpen(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.CheckIn(context.Background(), env.checkInReq())
	require.NoError(t, err)

	env.now = env.now.Add(10 * time.Minute)
	_, err = env.engine.CheckIn(context.Background(), env.checkInReq())
	assert.ErrorIs(t, err, event.ErrAlreadyCheckedIn)
}

func TestCheckInUnclaimedDeviceRejected(t *testing.T) {
	env := newTestEnv(t)
	d := env.devices.devices[testDeviceID]
	d.EmployeeID = nil
	env.devices.devices[testDeviceID] = d

	_, err := env.engine.CheckIn(context.Background(), env.checkInReq())
	assert.ErrorIs(t, err, event.ErrDeviceNotClaimed)
}

func TestCheckInInactiveEmployeeRejected(t *testing.T) {
	env := newTestEnv(t)
	emp := env.employees.employees[testEmployeeID]
	emp.Active = false
	env.employees.employees[testEmployeeID] = emp

	_, err := env.engine.CheckIn(context.Background(), env.checkInReq())
	assert.ErrorIs(t, err, employee.ErrEmployeeInactive)
}

func TestCheckOutDistinguishesMissingFromClosed(t *testing.T) {
	env := newTestEnv(t)

	// Nothing today at all.
	_, err := env.engine.CheckOut(context.Background(), env.checkOutReq())
	assert.ErrorIs(t, err, event.ErrCheckinRequired)

	// Complete a cycle, then try again: the day had an IN, so the state is
	// "already closed", not "never checked in".
	_, err = env.engine.CheckIn(context.Background(), env.checkInReq())
	require.NoError(t, err)
	env.now = env.now.Add(8 * time.Hour)
	_, err = env.engine.CheckOut(context.Background(), env.checkOutReq())
	require.NoError(t, err)

	env.now = env.now.Add(5 * time.Minute)
	_, err = env.engine.CheckOut(context.Background(), env.checkOutReq())
	assert.ErrorIs(t, err, event.ErrAlreadyCheckedOut)
}

func TestCheckOutInheritsOpenShiftBinding(t *testing.T) {
	env := newTestEnv(t)

	in, err := env.engine.CheckIn(context.Background(), env.checkInReq())
	require.NoError(t, err)

	// Resolver output changes between the two calls; the checkout must keep
	// the binding the check-in captured, not re-resolve.
	env.resolver.res = shift.Resolution{}

	env.now = env.now.Add(8 * time.Hour)
	out, err := env.engine.CheckOut(context.Background(), env.checkOutReq())
	require.NoError(t, err)

	require.NotNil(t, out.Flags.Shift)
	assert.Equal(t, in.Flags.Shift.ShiftID, out.Flags.Shift.ShiftID)
	assert.Equal(t, in.Flags.Shift.Source, out.Flags.Shift.Source)
}

func TestNightShiftBridgesMidnight(t *testing.T) {
	env := newTestEnv(t)
	night := shift.DepartmentShift{
		ID: "shift-night", DepartmentID: "dept-1", Name: "Night", Active: true,
		StartTime: mustTimeOfDay(t, "21:00"), EndTime: mustTimeOfDay(t, "06:00"),
	}
	env.shifts.shifts[night.ID] = night
	env.resolver.res = shift.Resolution{Shift: &night, Source: shift.SourceEmployeeDefault}

	env.now = localAt(env.local, 2026, time.March, 10, 21, 30)
	_, err := env.engine.CheckIn(context.Background(), env.checkInReq())
	require.NoError(t, err)

	// 05:30 next local day: the open IN bridges because the shift crosses
	// midnight.
	env.now = localAt(env.local, 2026, time.March, 11, 5, 30)
	st, err := env.engine.Status(context.Background(), testEmployeeID)
	require.NoError(t, err)
	assert.True(t, st.Open)

	out, err := env.engine.CheckOut(context.Background(), env.checkOutReq())
	require.NoError(t, err)
	assert.Equal(t, event.TypeOut, out.Type)
	require.NotNil(t, out.Flags.Shift)
	assert.Equal(t, night.ID, out.Flags.Shift.ShiftID)
}

func TestDayShiftDoesNotBridgeMidnight(t *testing.T) {
	env := newTestEnv(t)

	// Forgotten checkout on a day shift: next morning the state is closed.
	env.now = localAt(env.local, 2026, time.March, 10, 9, 0)
	_, err := env.engine.CheckIn(context.Background(), env.checkInReq())
	require.NoError(t, err)

	env.now = localAt(env.local, 2026, time.March, 11, 8, 0)
	st, err := env.engine.Status(context.Background(), testEmployeeID)
	require.NoError(t, err)
	assert.False(t, st.Open)

	_, err = env.engine.CheckOut(context.Background(), env.checkOutReq())
	assert.ErrorIs(t, err, event.ErrCheckinRequired)
}

func TestCycleCapRequiresApproval(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.engine.CheckIn(ctx, env.checkInReq())
	require.NoError(t, err)
	env.now = env.now.Add(4 * time.Hour)
	_, err = env.engine.CheckOut(ctx, env.checkOutReq())
	require.NoError(t, err)

	// Second cycle of the day hits the cap.
	env.now = env.now.Add(time.Hour)
	_, err = env.engine.CheckIn(ctx, env.checkInReq())
	assert.ErrorIs(t, err, event.ErrSecondCheckinApprovalRequired)
	assert.Equal(t, 1, env.pusher.sends)

	var pending approval.ExtraCheckinApproval
	for _, a := range env.approvals.approvals {
		pending = a
	}
	assert.Equal(t, approval.StatusPending, pending.Status)
	assert.Equal(t, env.now.Add(30*time.Minute), pending.ExpiresAt)

	// Retry within the throttle window: still rejected, no second push.
	env.now = env.now.Add(30 * time.Second)
	_, err = env.engine.CheckIn(ctx, env.checkInReq())
	assert.ErrorIs(t, err, event.ErrSecondCheckinApprovalRequired)
	assert.Equal(t, 1, env.pusher.sends)

	// Beyond the throttle window the admins are pushed again.
	env.now = env.now.Add(45 * time.Second)
	_, err = env.engine.CheckIn(ctx, env.checkInReq())
	assert.ErrorIs(t, err, event.ErrSecondCheckinApprovalRequired)
	assert.Equal(t, 2, env.pusher.sends)

	// Grant and retry: the check-in succeeds and consumes the approval.
	require.NoError(t, env.engine.ApproveExtraCheckin(ctx, pending.Token, "admin-1"))
	env.now = env.now.Add(time.Minute)
	ev, err := env.engine.CheckIn(ctx, env.checkInReq())
	require.NoError(t, err)

	stored := env.approvals.approvals[pending.ID]
	assert.Equal(t, approval.StatusConsumed, stored.Status)
	require.NotNil(t, stored.ConsumedEventID)
	assert.Equal(t, ev.ID, *stored.ConsumedEventID)
}

func TestZeroTargetPushRetriesSooner(t *testing.T) {
	env := newTestEnv(t)
	env.pusher.targets = 0
	ctx := context.Background()

	_, err := env.engine.CheckIn(ctx, env.checkInReq())
	require.NoError(t, err)
	env.now = env.now.Add(4 * time.Hour)
	_, err = env.engine.CheckOut(ctx, env.checkOutReq())
	require.NoError(t, err)

	env.now = env.now.Add(time.Hour)
	_, err = env.engine.CheckIn(ctx, env.checkInReq())
	assert.ErrorIs(t, err, event.ErrSecondCheckinApprovalRequired)
	assert.Equal(t, 1, env.pusher.sends)

	// Zero targets last time: the shorter interval applies.
	env.now = env.now.Add(15 * time.Second)
	_, err = env.engine.CheckIn(ctx, env.checkInReq())
	assert.ErrorIs(t, err, event.ErrSecondCheckinApprovalRequired)
	assert.Equal(t, 2, env.pusher.sends)
}

func TestExpiredApprovalDoesNotGate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.engine.CheckIn(ctx, env.checkInReq())
	require.NoError(t, err)
	env.now = env.now.Add(4 * time.Hour)
	_, err = env.engine.CheckOut(ctx, env.checkOutReq())
	require.NoError(t, err)

	env.now = env.now.Add(time.Hour)
	_, err = env.engine.CheckIn(ctx, env.checkInReq())
	assert.ErrorIs(t, err, event.ErrSecondCheckinApprovalRequired)

	var pending approval.ExtraCheckinApproval
	for _, a := range env.approvals.approvals {
		pending = a
	}
	require.NoError(t, env.engine.ApproveExtraCheckin(ctx, pending.Token, "admin-1"))

	// TTL elapses before the employee retries: the grant is gone and a new
	// pending approval is raised.
	env.now = env.now.Add(31 * time.Minute)
	_, err = env.engine.CheckIn(ctx, env.checkInReq())
	assert.ErrorIs(t, err, event.ErrSecondCheckinApprovalRequired)
	assert.Equal(t, approval.StatusExpired, env.approvals.approvals[pending.ID].Status)
}

func TestStatusCountsCompletedCycles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	st, err := env.engine.Status(ctx, testEmployeeID)
	require.NoError(t, err)
	assert.False(t, st.Open)
	assert.Equal(t, 0, st.CyclesToday)
	assert.Equal(t, "2026-03-10", st.LocalDay)

	_, err = env.engine.CheckIn(ctx, env.checkInReq())
	require.NoError(t, err)
	st, err = env.engine.Status(ctx, testEmployeeID)
	require.NoError(t, err)
	assert.True(t, st.Open)
	assert.Equal(t, 0, st.CyclesToday)
	require.NotNil(t, st.LastEventAt)

	env.now = env.now.Add(8 * time.Hour)
	_, err = env.engine.CheckOut(ctx, env.checkOutReq())
	require.NoError(t, err)
	st, err = env.engine.Status(ctx, testEmployeeID)
	require.NoError(t, err)
	assert.False(t, st.Open)
	assert.Equal(t, 1, st.CyclesToday)
}

func TestStatusPropagatesStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	// The open-state lookup succeeds; the last-event lookup fails.
	env.events.latestErr = errors.New("connection reset")
	env.events.latestErrAfter = 1

	_, err := env.engine.Status(context.Background(), testEmployeeID)
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection reset")
}
