package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/approval"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/event"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/shift"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/audit"
)

// CreateManual implements event.Engine. Manual events bypass location
// gating but keep sequence conflict detection: a conflict is a hard
// rejection unless the admin passes the override flag.
func (e *EngineImpl) CreateManual(ctx context.Context, req event.ManualCreateRequest) (event.Event, error) {
	emp, err := e.activeEmployee(ctx, req.EmployeeID)
	if err != nil {
		return event.Event{}, err
	}

	ts := req.Timestamp.UTC()
	dayStart, dayEnd := e.local.DayBounds(ts)
	dayEvents, err := e.eventRepo.ListBetween(ctx, emp.ID, dayStart, dayEnd)
	if err != nil {
		return event.Event{}, fmt.Errorf("list day events: %w", err)
	}

	conflict := sequenceConflict(dayEvents, ts, req.Type, "")
	if conflict != nil && !req.Override {
		return event.Event{}, event.ErrInvalidEventSequence
	}

	params := shift.ResolveParams{}
	if req.Type == event.TypeIn {
		params.CheckinAt = &ts
	}
	res, err := e.resolver.Resolve(ctx, emp, e.local.DayDate(ts), params)
	if err != nil {
		return event.Event{}, err
	}

	flags := event.Flags{
		Version: event.FlagsVersion,
		Manual:  &event.ManualMarker{AdminID: req.AdminID, SequenceOverridden: conflict != nil},
	}
	if res.Shift != nil {
		flags.Shift = shiftBinding(res)
	}
	if conflict != nil {
		flags.Duplicate = &event.DuplicateMarker{AdjacentEventID: conflict.ID}
	}

	ev := event.Event{
		ID:             uuid.New().String(),
		EmployeeID:     emp.ID,
		Type:           req.Type,
		Timestamp:      ts,
		LocationStatus: event.LocationNone,
		Source:         event.SourceManual,
		ByAdmin:        true,
		Note:           req.Note,
		Flags:          flags,
	}

	created, err := e.eventRepo.Create(ctx, ev)
	if err != nil {
		return event.Event{}, fmt.Errorf("create manual event: %w", err)
	}

	e.auditor.Record(ctx, audit.Entry{
		Actor: req.AdminID, Action: "attendance.manual_create", Entity: "attendance_event",
		EntityID: created.ID, Success: true,
		Details: map[string]any{"employee_id": emp.ID, "type": created.Type, "override": req.Override},
	})
	return created, nil
}

// UpdateManual implements event.Engine.
func (e *EngineImpl) UpdateManual(ctx context.Context, req event.ManualUpdateRequest) (event.Event, error) {
	ev, err := e.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		return event.Event{}, err
	}

	if req.Timestamp != nil {
		ev.Timestamp = req.Timestamp.UTC()
	}
	if req.Type != nil {
		ev.Type = *req.Type
	}
	if req.Note != nil {
		ev.Note = req.Note
	}

	dayStart, dayEnd := e.local.DayBounds(ev.Timestamp)
	dayEvents, err := e.eventRepo.ListBetween(ctx, ev.EmployeeID, dayStart, dayEnd)
	if err != nil {
		return event.Event{}, fmt.Errorf("list day events: %w", err)
	}

	conflict := sequenceConflict(dayEvents, ev.Timestamp, ev.Type, ev.ID)
	if conflict != nil && !req.Override {
		return event.Event{}, event.ErrInvalidEventSequence
	}

	now := e.cfg.Now().UTC()
	ev.Source = event.SourceManual
	ev.ByAdmin = true
	if ev.Flags.Manual == nil {
		ev.Flags.Manual = &event.ManualMarker{AdminID: req.AdminID}
	}
	ev.Flags.Manual.EditedAt = &now
	ev.Flags.Manual.SequenceOverridden = conflict != nil
	if conflict != nil {
		ev.Flags.Duplicate = &event.DuplicateMarker{AdjacentEventID: conflict.ID}
	}

	if err := e.eventRepo.Update(ctx, ev); err != nil {
		return event.Event{}, fmt.Errorf("update event: %w", err)
	}

	e.auditor.Record(ctx, audit.Entry{
		Actor: req.AdminID, Action: "attendance.manual_update", Entity: "attendance_event",
		EntityID: ev.ID, Success: true,
		Details: map[string]any{"employee_id": ev.EmployeeID, "override": req.Override},
	})
	return ev, nil
}

// DeleteManual implements event.Engine. Soft delete only; the record stays
// but every subsequent query excludes it.
func (e *EngineImpl) DeleteManual(ctx context.Context, eventID, adminID string) error {
	ev, err := e.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}

	now := e.cfg.Now().UTC()
	if err := e.eventRepo.SoftDelete(ctx, ev.ID, now); err != nil {
		return fmt.Errorf("soft delete event: %w", err)
	}

	e.auditor.Record(ctx, audit.Entry{
		Actor: adminID, Action: "attendance.manual_delete", Entity: "attendance_event",
		EntityID: ev.ID, Success: true,
		Details: map[string]any{"employee_id": ev.EmployeeID},
	})
	return nil
}

// ApproveExtraCheckin implements event.Engine.
func (e *EngineImpl) ApproveExtraCheckin(ctx context.Context, token, adminID string) error {
	a, err := e.approvalRepo.GetByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("lookup approval: %w", err)
	}
	if a == nil {
		return approval.ErrApprovalNotFound
	}

	now := e.cfg.Now().UTC()
	switch {
	case a.Status == approval.StatusConsumed:
		return approval.ErrApprovalAlreadyConsumed
	case a.ExpiredAt(now):
		if a.Status != approval.StatusExpired {
			a.Status = approval.StatusExpired
			_ = e.approvalRepo.Update(ctx, *a)
		}
		return approval.ErrApprovalExpired
	case a.Status == approval.StatusApproved:
		// Repeat grant is a no-op.
		return nil
	}

	a.Status = approval.StatusApproved
	a.ApprovedAt = &now
	if err := e.approvalRepo.Update(ctx, *a); err != nil {
		return fmt.Errorf("approve approval: %w", err)
	}

	e.auditor.Record(ctx, audit.Entry{
		Actor: adminID, Action: "attendance.approve_extra_checkin", Entity: "extra_checkin_approval",
		EntityID: a.ID, Success: true,
		Details: map[string]any{"employee_id": a.EmployeeID, "day": a.Day.Format("2006-01-02")},
	})
	return nil
}

// sequenceConflict finds the event adjacent to a manual timestamp with the
// same type, ignoring the event being edited.
func sequenceConflict(dayEvents []event.Event, ts time.Time, typ event.Type, excludeID string) *event.Event {
	var prev *event.Event
	for i := range dayEvents {
		if dayEvents[i].ID == excludeID {
			continue
		}
		if dayEvents[i].Timestamp.After(ts) {
			if prev == nil && dayEvents[i].Type == typ {
				// First event of the day after the insertion point.
				return &dayEvents[i]
			}
			break
		}
		prev = &dayEvents[i]
	}
	if prev != nil && prev.Type == typ {
		return prev
	}
	return nil
}
