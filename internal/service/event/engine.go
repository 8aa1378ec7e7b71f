package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/approval"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/device"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/employee"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/event"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/qr"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/shift"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/audit"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/database"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/geo"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/localtime"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/push"
)

// Config tunes the engine's gating rules.
type Config struct {
	// DailyCycleCap is how many completed IN→OUT cycles an employee may
	// make per local day before extra check-ins need admin approval.
	DailyCycleCap int
	// ApprovalTTL bounds how long a granted extra-checkin approval stays
	// usable. Default 30 minutes.
	ApprovalTTL time.Duration
	// QRScanCooldown blocks a second QR scan regardless of direction.
	// Default 5 minutes.
	QRScanCooldown time.Duration
	// RenotifyInterval throttles repeat admin pushes for the same pending
	// approval; RenotifyIntervalNoTargets applies when the previous
	// dispatch reached zero admin targets.
	RenotifyInterval          time.Duration
	RenotifyIntervalNoTargets time.Duration
	// Now is the clock; defaults to time.Now. Tests pin it.
	Now func() time.Time
}

func (c *Config) applyDefaults() {
	if c.DailyCycleCap == 0 {
		c.DailyCycleCap = 1
	}
	if c.ApprovalTTL == 0 {
		c.ApprovalTTL = 30 * time.Minute
	}
	if c.QRScanCooldown == 0 {
		c.QRScanCooldown = 5 * time.Minute
	}
	if c.RenotifyInterval == 0 {
		c.RenotifyInterval = 60 * time.Second
	}
	if c.RenotifyIntervalNoTargets == 0 {
		c.RenotifyIntervalNoTargets = 10 * time.Second
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

type EngineImpl struct {
	db           *database.DB
	eventRepo    event.EventRepository
	employeeRepo employee.EmployeeRepository
	deviceRepo   device.DeviceRepository
	approvalRepo approval.ApprovalRepository
	qrRepo       qr.QRRepository
	shiftRepo    shift.ShiftRepository
	resolver     shift.Resolver
	local        *localtime.Resolver
	pusher       push.Sender
	auditor      audit.Sink
	cfg          Config
}

func NewEngine(
	db *database.DB,
	eventRepo event.EventRepository,
	employeeRepo employee.EmployeeRepository,
	deviceRepo device.DeviceRepository,
	approvalRepo approval.ApprovalRepository,
	qrRepo qr.QRRepository,
	shiftRepo shift.ShiftRepository,
	resolver shift.Resolver,
	local *localtime.Resolver,
	pusher push.Sender,
	auditor audit.Sink,
	cfg Config,
) event.Engine {
	cfg.applyDefaults()
	return &EngineImpl{
		db:           db,
		eventRepo:    eventRepo,
		employeeRepo: employeeRepo,
		deviceRepo:   deviceRepo,
		approvalRepo: approvalRepo,
		qrRepo:       qrRepo,
		shiftRepo:    shiftRepo,
		resolver:     resolver,
		local:        local,
		pusher:       pusher,
		auditor:      auditor,
		cfg:          cfg,
	}
}

// checkInOpts carries pre-verified context for QR-originated check-ins.
type checkInOpts struct {
	verification *geo.Verification
	qrMatch      *event.QRMatch
}

// CheckIn implements event.Engine.
func (e *EngineImpl) CheckIn(ctx context.Context, req event.CheckInRequest) (event.Event, error) {
	return e.performCheckIn(ctx, req, checkInOpts{})
}

func (e *EngineImpl) performCheckIn(ctx context.Context, req event.CheckInRequest, opts checkInOpts) (event.Event, error) {
	now := e.cfg.Now().UTC()

	emp, err := e.activeEmployee(ctx, req.EmployeeID)
	if err != nil {
		return event.Event{}, err
	}
	if err := e.requireClaimedDevice(ctx, req.DeviceID, emp.ID); err != nil {
		return event.Event{}, err
	}

	open, err := e.openEvent(ctx, emp.ID, now)
	if err != nil {
		return event.Event{}, err
	}
	if open != nil {
		return event.Event{}, event.ErrAlreadyCheckedIn
	}

	day := e.local.DayDate(now)
	dayStart, dayEnd := e.local.DayBounds(now)
	dayEvents, err := e.eventRepo.ListBetween(ctx, emp.ID, dayStart, dayEnd)
	if err != nil {
		return event.Event{}, fmt.Errorf("list day events: %w", err)
	}

	var usable *approval.ExtraCheckinApproval
	if completedCycles(dayEvents) >= e.cfg.DailyCycleCap {
		usable, err = e.gateExtraCheckin(ctx, emp, req.DeviceID, day, now)
		if err != nil {
			return event.Event{}, err
		}
	}

	verification := opts.verification
	if verification == nil {
		v := geo.Verify(emp.HomePoint(), req.Latitude, req.Longitude)
		verification = &v
	}

	res, err := e.resolver.Resolve(ctx, emp, day, shift.ResolveParams{
		RequestedShiftID: req.RequestedShiftID,
		CheckinAt:        &now,
	})
	if err != nil {
		return event.Event{}, err
	}

	ev := event.Event{
		ID:             uuid.New().String(),
		EmployeeID:     emp.ID,
		DeviceID:       &req.DeviceID,
		Type:           event.TypeIn,
		Timestamp:      now,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		AccuracyMeters: req.AccuracyMeters,
		LocationStatus: event.LocationStatus(verification.Status),
		Source:         event.SourceDevice,
		Note:           req.Note,
		Flags:          e.buildFlags(res, verification, opts.qrMatch),
	}
	flagDuplicate(&ev, dayEvents)

	created, err := e.persistWithApproval(ctx, ev, usable, now)
	if err != nil {
		return event.Event{}, err
	}

	e.auditor.Record(ctx, audit.Entry{
		Actor: emp.ID, Action: "attendance.check_in", Entity: "attendance_event",
		EntityID: created.ID, Success: true,
		Details: map[string]any{"day": e.local.DayKey(now), "location_status": created.LocationStatus},
	})
	return created, nil
}

// CheckOut implements event.Engine.
func (e *EngineImpl) CheckOut(ctx context.Context, req event.CheckOutRequest) (event.Event, error) {
	return e.performCheckOut(ctx, req, checkInOpts{})
}

func (e *EngineImpl) performCheckOut(ctx context.Context, req event.CheckOutRequest, opts checkInOpts) (event.Event, error) {
	now := e.cfg.Now().UTC()

	emp, err := e.activeEmployee(ctx, req.EmployeeID)
	if err != nil {
		return event.Event{}, err
	}
	if err := e.requireClaimedDevice(ctx, req.DeviceID, emp.ID); err != nil {
		return event.Event{}, err
	}

	open, err := e.openEvent(ctx, emp.ID, now)
	if err != nil {
		return event.Event{}, err
	}

	dayStart, dayEnd := e.local.DayBounds(now)
	dayEvents, err := e.eventRepo.ListBetween(ctx, emp.ID, dayStart, dayEnd)
	if err != nil {
		return event.Event{}, fmt.Errorf("list day events: %w", err)
	}

	if open == nil {
		// Distinguish "never checked in today" from "already closed".
		for _, ev := range dayEvents {
			if ev.Type == event.TypeIn {
				return event.Event{}, event.ErrAlreadyCheckedOut
			}
		}
		return event.Event{}, event.ErrCheckinRequired
	}

	verification := opts.verification
	if verification == nil {
		v := geo.Verify(emp.HomePoint(), req.Latitude, req.Longitude)
		verification = &v
	}

	flags := event.Flags{Version: event.FlagsVersion}
	if open.Flags.Shift != nil {
		// Checkout inherits the shift the open check-in was bound to.
		binding := *open.Flags.Shift
		flags.Shift = &binding
	} else {
		res, err := e.resolver.Resolve(ctx, emp, e.local.DayDate(open.Timestamp), shift.ResolveParams{})
		if err != nil {
			return event.Event{}, err
		}
		if res.Shift != nil {
			flags.Shift = shiftBinding(res)
		}
	}
	flags.QR = opts.qrMatch
	flags.Location = locationDetail(verification)

	ev := event.Event{
		ID:             uuid.New().String(),
		EmployeeID:     emp.ID,
		DeviceID:       &req.DeviceID,
		Type:           event.TypeOut,
		Timestamp:      now,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		AccuracyMeters: req.AccuracyMeters,
		LocationStatus: event.LocationStatus(verification.Status),
		Source:         event.SourceDevice,
		Note:           req.Note,
		Flags:          flags,
	}
	flagDuplicate(&ev, dayEvents)

	created, err := e.eventRepo.Create(ctx, ev)
	if err != nil {
		return event.Event{}, fmt.Errorf("create checkout event: %w", err)
	}

	e.auditor.Record(ctx, audit.Entry{
		Actor: emp.ID, Action: "attendance.check_out", Entity: "attendance_event",
		EntityID: created.ID, Success: true,
		Details: map[string]any{"day": e.local.DayKey(now), "open_event_id": open.ID},
	})
	return created, nil
}

// Status implements event.Engine.
func (e *EngineImpl) Status(ctx context.Context, employeeID string) (event.Status, error) {
	now := e.cfg.Now().UTC()

	emp, err := e.activeEmployee(ctx, employeeID)
	if err != nil {
		return event.Status{}, err
	}

	open, err := e.openEvent(ctx, emp.ID, now)
	if err != nil {
		return event.Status{}, err
	}

	dayStart, dayEnd := e.local.DayBounds(now)
	dayEvents, err := e.eventRepo.ListBetween(ctx, emp.ID, dayStart, dayEnd)
	if err != nil {
		return event.Status{}, fmt.Errorf("list day events: %w", err)
	}

	st := event.Status{
		Open:        open != nil,
		CyclesToday: completedCycles(dayEvents),
		LocalDay:    e.local.DayKey(now),
	}
	if open != nil {
		st.OpenEventID = &open.ID
	}
	latest, err := e.eventRepo.LatestAtOrBefore(ctx, emp.ID, now)
	if err != nil {
		return event.Status{}, fmt.Errorf("latest event: %w", err)
	}
	if latest != nil {
		ts := latest.Timestamp
		st.LastEventAt = &ts
	}
	return st, nil
}

// openEvent derives the open-shift state at the instant: the most recent
// non-deleted event is an IN from the same local day, or an IN from the
// previous local day whose bound shift crosses midnight and therefore
// bridges into the current day.
func (e *EngineImpl) openEvent(ctx context.Context, employeeID string, at time.Time) (*event.Event, error) {
	latest, err := e.eventRepo.LatestAtOrBefore(ctx, employeeID, at)
	if err != nil {
		return nil, fmt.Errorf("latest event: %w", err)
	}
	if latest == nil || latest.Type != event.TypeIn {
		return nil, nil
	}
	if e.local.SameLocalDay(latest.Timestamp, at) {
		return latest, nil
	}

	dayStart := e.local.DayStart(at)
	if !e.local.SameLocalDay(latest.Timestamp, dayStart.Add(-time.Second)) {
		// Older than yesterday: stale regardless of shift shape.
		return nil, nil
	}
	if latest.Flags.Shift == nil {
		return nil, nil
	}
	s, err := e.shiftRepo.GetByID(ctx, latest.Flags.Shift.ShiftID)
	if err != nil {
		if errors.Is(err, shift.ErrShiftNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bound shift: %w", err)
	}
	if s.CrossesMidnight() {
		return latest, nil
	}
	return nil, nil
}

// gateExtraCheckin enforces the daily cycle cap. A usable approval is
// returned for consumption; otherwise a PENDING approval is created or
// refreshed, admins are pushed (throttled) and the check-in is rejected.
func (e *EngineImpl) gateExtraCheckin(ctx context.Context, emp employee.Employee, deviceID string, day time.Time, now time.Time) (*approval.ExtraCheckinApproval, error) {
	existing, err := e.approvalRepo.GetOpenByEmployeeAndDay(ctx, emp.ID, day)
	if err != nil {
		return nil, fmt.Errorf("lookup approval: %w", err)
	}

	if existing != nil && existing.ExpiredAt(now) {
		existing.Status = approval.StatusExpired
		if err := e.approvalRepo.Update(ctx, *existing); err != nil {
			return nil, fmt.Errorf("expire approval: %w", err)
		}
		existing = nil
	}

	if existing != nil && existing.Usable(now) {
		return existing, nil
	}

	if existing == nil {
		a := approval.ExtraCheckinApproval{
			ID:          uuid.New().String(),
			EmployeeID:  emp.ID,
			DeviceID:    deviceID,
			Day:         day,
			Token:       uuid.New().String(),
			Status:      approval.StatusPending,
			RequestedAt: now,
			ExpiresAt:   now.Add(e.cfg.ApprovalTTL),
		}
		created, err := e.approvalRepo.Create(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("create approval: %w", err)
		}
		existing = &created
	}

	e.notifyAdmins(ctx, emp, existing, now)
	return nil, event.ErrSecondCheckinApprovalRequired
}

// notifyAdmins pushes a pending-approval notice, throttled per approval.
// Push failures never block the attendance path.
func (e *EngineImpl) notifyAdmins(ctx context.Context, emp employee.Employee, a *approval.ExtraCheckinApproval, now time.Time) {
	if a.LastNotifiedAt != nil {
		interval := e.cfg.RenotifyInterval
		if a.LastNotifyTargets == 0 {
			interval = e.cfg.RenotifyIntervalNoTargets
		}
		if now.Sub(*a.LastNotifiedAt) < interval {
			return
		}
	}

	delivery, err := e.pusher.Send(ctx,
		"Extra check-in approval needed",
		fmt.Sprintf("%s reached the daily check-in limit and requests approval.", emp.FullName),
		map[string]string{
			"approval_token": a.Token,
			"employee_id":    emp.ID,
			"day":            a.Day.Format("2006-01-02"),
		},
	)
	if err != nil {
		slog.Warn("approval push failed", "approval_id", a.ID, "error", err)
	}

	a.NotifyCount++
	a.LastNotifiedAt = &now
	a.LastNotifyTargets = delivery.TotalTargets
	if err := e.approvalRepo.Update(ctx, *a); err != nil {
		slog.Warn("approval counters update failed", "approval_id", a.ID, "error", err)
	}
}

// persistWithApproval writes the event and, when an approval gated it,
// consumes the approval in the same transaction.
func (e *EngineImpl) persistWithApproval(ctx context.Context, ev event.Event, usable *approval.ExtraCheckinApproval, now time.Time) (event.Event, error) {
	var created event.Event
	err := e.inTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = e.eventRepo.Create(ctx, ev)
		if err != nil {
			return fmt.Errorf("create checkin event: %w", err)
		}
		if usable != nil {
			if err := e.approvalRepo.MarkConsumed(ctx, usable.ID, created.ID, now); err != nil {
				return fmt.Errorf("consume approval: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return event.Event{}, err
	}
	return created, nil
}

func (e *EngineImpl) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if e.db == nil {
		return fn(ctx)
	}
	return e.db.WithinTx(ctx, fn)
}

func (e *EngineImpl) activeEmployee(ctx context.Context, id string) (employee.Employee, error) {
	emp, err := e.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.Employee{}, err
	}
	if !emp.Active || emp.DeletedAt != nil {
		return employee.Employee{}, employee.ErrEmployeeInactive
	}
	return emp, nil
}

func (e *EngineImpl) requireClaimedDevice(ctx context.Context, deviceID, employeeID string) error {
	d, err := e.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}
	if !d.Claimed() || *d.EmployeeID != employeeID {
		return event.ErrDeviceNotClaimed
	}
	return nil
}

func (e *EngineImpl) buildFlags(res shift.Resolution, v *geo.Verification, qrMatch *event.QRMatch) event.Flags {
	flags := event.Flags{Version: event.FlagsVersion}
	if res.Shift != nil {
		flags.Shift = shiftBinding(res)
	}
	flags.QR = qrMatch
	flags.Location = locationDetail(v)
	return flags
}

func shiftBinding(res shift.Resolution) *event.ShiftBinding {
	b := &event.ShiftBinding{
		ShiftID:        res.Shift.ID,
		ShiftName:      res.Shift.Name,
		Source:         res.Source,
		NeedsReview:    res.NeedsReview,
		PlanOverridden: res.PlanOverridden,
	}
	if res.Plan != nil {
		id := res.Plan.ID
		b.PlanID = &id
	}
	return b
}

func locationDetail(v *geo.Verification) *event.LocationDetail {
	if v == nil {
		return nil
	}
	return &event.LocationDetail{
		DistanceMeters: v.DistanceMeters,
		RadiusMeters:   v.RadiusMeters,
		Reason:         v.Reason,
	}
}

// completedCycles counts finished IN→OUT pairs in an ascending day slice.
func completedCycles(events []event.Event) int {
	cycles := 0
	open := false
	for _, ev := range events {
		switch ev.Type {
		case event.TypeIn:
			open = true
		case event.TypeOut:
			if open {
				cycles++
				open = false
			}
		}
	}
	return cycles
}

// flagDuplicate marks ev when the day event adjacent to it in time order has
// the same type. Duplicates are soft signals for review, never rejections,
// on the organic path.
func flagDuplicate(ev *event.Event, dayEvents []event.Event) {
	var prev *event.Event
	for i := range dayEvents {
		if dayEvents[i].Timestamp.After(ev.Timestamp) {
			break
		}
		prev = &dayEvents[i]
	}
	if prev != nil && prev.Type == ev.Type {
		ev.Flags.Duplicate = &event.DuplicateMarker{AdjacentEventID: prev.ID}
	}
}
