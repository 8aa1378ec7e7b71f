package event

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/approval"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/device"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/employee"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/event"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/qr"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/shift"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/audit"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/push"
)

type fakeEventRepo struct {
	mu     sync.Mutex
	events []event.Event

	// latestErr makes LatestAtOrBefore fail, simulating a store outage.
	// latestErrAfter counts calls that still succeed before it fires.
	latestErr      error
	latestErrAfter int
}

func (f *fakeEventRepo) Create(_ context.Context, ev event.Event) (event.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev.CreatedAt = time.Now().UTC()
	f.events = append(f.events, ev)
	return ev, nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id string) (event.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ev := range f.events {
		if ev.ID == id && !ev.Deleted() {
			return ev, nil
		}
	}
	return event.Event{}, event.ErrEventNotFound
}

func (f *fakeEventRepo) Update(_ context.Context, ev event.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.events {
		if f.events[i].ID == ev.ID {
			f.events[i] = ev
			return nil
		}
	}
	return event.ErrEventNotFound
}

func (f *fakeEventRepo) SoftDelete(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.events {
		if f.events[i].ID == id {
			t := at
			f.events[i].DeletedAt = &t
			f.events[i].DeletedByAdmin = true
			return nil
		}
	}
	return event.ErrEventNotFound
}

func (f *fakeEventRepo) LatestAtOrBefore(_ context.Context, employeeID string, at time.Time) (*event.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latestErr != nil {
		if f.latestErrAfter == 0 {
			return nil, f.latestErr
		}
		f.latestErrAfter--
	}
	var latest *event.Event
	for i := range f.events {
		ev := f.events[i]
		if ev.EmployeeID != employeeID || ev.Deleted() || ev.Timestamp.After(at) {
			continue
		}
		if latest == nil || ev.Timestamp.After(latest.Timestamp) {
			cp := ev
			latest = &cp
		}
	}
	return latest, nil
}

func (f *fakeEventRepo) ListBetween(_ context.Context, employeeID string, start, end time.Time) ([]event.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []event.Event
	for _, ev := range f.events {
		if ev.EmployeeID != employeeID || ev.Deleted() {
			continue
		}
		if ev.Timestamp.Before(start) || !ev.Timestamp.Before(end) {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (f *fakeEventRepo) LatestQRScanAt(_ context.Context, employeeID string) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *time.Time
	for _, ev := range f.events {
		if ev.EmployeeID != employeeID || ev.Deleted() || ev.Flags.QR == nil {
			continue
		}
		if latest == nil || ev.Timestamp.After(*latest) {
			t := ev.Timestamp
			latest = &t
		}
	}
	return latest, nil
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (f *fakeEmployeeRepo) ListActive(_ context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, emp := range f.employees {
		if emp.Active && emp.DeletedAt == nil {
			out = append(out, emp)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) SetHomeLocation(_ context.Context, id string, lat, lon float64, radiusMeters int) error {
	emp := f.employees[id]
	emp.HomeLatitude = &lat
	emp.HomeLongitude = &lon
	emp.HomeRadiusMeters = &radiusMeters
	f.employees[id] = emp
	return nil
}

type fakeDeviceRepo struct {
	devices map[string]device.Device
}

func (f *fakeDeviceRepo) GetByID(_ context.Context, id string) (device.Device, error) {
	d, ok := f.devices[id]
	if !ok {
		return device.Device{}, event.ErrDeviceNotClaimed
	}
	return d, nil
}

func (f *fakeDeviceRepo) GetByFingerprint(_ context.Context, fingerprint string) (*device.Device, error) {
	for _, d := range f.devices {
		if d.Fingerprint == fingerprint {
			cp := d
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeDeviceRepo) Create(_ context.Context, d device.Device) (device.Device, error) {
	f.devices[d.ID] = d
	return d, nil
}

func (f *fakeDeviceRepo) Claim(_ context.Context, id, employeeID string) error {
	d := f.devices[id]
	d.EmployeeID = &employeeID
	f.devices[id] = d
	return nil
}

type fakeApprovalRepo struct {
	approvals map[string]approval.ExtraCheckinApproval
}

func (f *fakeApprovalRepo) Create(_ context.Context, a approval.ExtraCheckinApproval) (approval.ExtraCheckinApproval, error) {
	f.approvals[a.ID] = a
	return a, nil
}

func (f *fakeApprovalRepo) GetOpenByEmployeeAndDay(_ context.Context, employeeID string, day time.Time) (*approval.ExtraCheckinApproval, error) {
	for _, a := range f.approvals {
		if a.EmployeeID == employeeID && a.Day.Equal(day) &&
			(a.Status == approval.StatusPending || a.Status == approval.StatusApproved) {
			cp := a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeApprovalRepo) GetByToken(_ context.Context, token string) (*approval.ExtraCheckinApproval, error) {
	for _, a := range f.approvals {
		if a.Token == token {
			cp := a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeApprovalRepo) Update(_ context.Context, a approval.ExtraCheckinApproval) error {
	f.approvals[a.ID] = a
	return nil
}

func (f *fakeApprovalRepo) MarkConsumed(_ context.Context, id, eventID string, at time.Time) error {
	a, ok := f.approvals[id]
	if !ok || a.Status == approval.StatusConsumed {
		return approval.ErrApprovalAlreadyConsumed
	}
	a.Status = approval.StatusConsumed
	ts := at
	a.ConsumedAt = &ts
	a.ConsumedEventID = &eventID
	f.approvals[id] = a
	return nil
}

func (f *fakeApprovalRepo) ExpireOverdue(_ context.Context, now time.Time) (int, error) {
	n := 0
	for id, a := range f.approvals {
		if a.Status != approval.StatusConsumed && a.Status != approval.StatusExpired && a.ExpiredAt(now) {
			a.Status = approval.StatusExpired
			f.approvals[id] = a
			n++
		}
	}
	return n, nil
}

type fakeQRRepo struct {
	codes  map[string]qr.Code // keyed by value
	points map[string][]qr.Point
}

func (f *fakeQRRepo) GetActiveByValue(_ context.Context, value string) (*qr.Code, error) {
	c, ok := f.codes[value]
	if !ok || !c.Active {
		return nil, nil
	}
	cp := c
	return &cp, nil
}

func (f *fakeQRRepo) ListActivePoints(_ context.Context, codeID string) ([]qr.Point, error) {
	var out []qr.Point
	for _, p := range f.points[codeID] {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

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

// stubResolver returns a fixed resolution; the resolution chain itself is
// covered by the shiftplan package tests.
type stubResolver struct {
	res shift.Resolution
	err error
}

func (s *stubResolver) Resolve(context.Context, employee.Employee, time.Time, shift.ResolveParams) (shift.Resolution, error) {
	return s.res, s.err
}

// countingPusher records dispatches and reports a fixed target count.
type countingPusher struct {
	targets int
	sends   int
}

func (p *countingPusher) Send(context.Context, string, string, map[string]string) (push.Delivery, error) {
	p.sends++
	return push.Delivery{TotalTargets: p.targets, Sent: p.targets}, nil
}

type nopAudit struct{}

func (nopAudit) Record(context.Context, audit.Entry) {}
