package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/employee"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/event"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/shift"
)

// checkout search extends past the day boundary so midnight-crossing
// shifts find their OUT on the next calendar day.
const searchWindow = 36 * time.Hour

// dayAssessment is everything the rules need about one employee-day.
type dayAssessment struct {
	emp employee.Employee
	day time.Time

	firstIn  *time.Time
	checkout *time.Time
	// openEvent is the currently open IN attributed to this day, nil when
	// the day is closed.
	openEvent *event.Event

	res        shift.Resolution
	shiftStart time.Time
	shiftEnd   time.Time

	// hasActivity covers any non-deleted event on the day, including ones
	// that never formed a cycle.
	hasActivity bool

	// skip marks an absent-override day; no rules run.
	skip bool
}

func (a dayAssessment) planActive() bool { return a.res.PlanActive() }

func (m *MonitorImpl) assessDay(ctx context.Context, emp employee.Employee, day time.Time, now time.Time) (dayAssessment, error) {
	a := dayAssessment{emp: emp, day: day}

	override, err := m.overrideRepo.GetByEmployeeAndDay(ctx, emp.ID, day)
	if err != nil {
		return a, fmt.Errorf("lookup manual override: %w", err)
	}
	if override != nil && override.Absent {
		a.skip = true
		return a, nil
	}

	dayStart := m.local.DayAt(day, 0)
	dayEnd := dayStart.Add(24 * time.Hour)
	// The extra second makes the window end inclusive: an auto-close
	// synthesized at exactly shift end + 6h for a 06:00-ending night shift
	// lands right on the 36h mark.
	events, err := m.eventRepo.ListBetween(ctx, emp.ID, dayStart, dayStart.Add(searchWindow).Add(time.Second))
	if err != nil {
		return a, fmt.Errorf("list events: %w", err)
	}

	bridged := make([]bool, len(events))
	for i := range events {
		bridged[i], err = m.bridgedArrival(ctx, events[i])
		if err != nil {
			return a, err
		}
	}

	for i := range events {
		ev := events[i]
		if ev.Timestamp.Before(dayEnd) {
			a.hasActivity = true
		}
		if a.firstIn == nil && ev.Type == event.TypeIn && ev.Timestamp.Before(dayEnd) && !bridged[i] {
			ts := ev.Timestamp
			a.firstIn = &ts
			continue
		}
		if a.firstIn != nil && a.checkout == nil && ev.Type == event.TypeOut && ev.Timestamp.After(*a.firstIn) {
			ts := ev.Timestamp
			a.checkout = &ts
		}
	}

	// Manual override timestamps take precedence over recorded events.
	if override != nil {
		if override.InAt != nil {
			ts := override.InAt.UTC()
			a.firstIn = &ts
			a.hasActivity = true
		}
		if override.OutAt != nil {
			ts := override.OutAt.UTC()
			a.checkout = &ts
		}
	}

	open, err := m.openEventForDay(ctx, emp.ID, day, now)
	if err != nil {
		return a, err
	}
	a.openEvent = open

	params := shift.ResolveParams{CheckinAt: a.firstIn}
	a.res, err = m.resolver.Resolve(ctx, emp, day, params)
	if err != nil {
		return a, fmt.Errorf("resolve shift: %w", err)
	}

	a.shiftStart, a.shiftEnd = m.shiftInstants(a, now)

	// A midnight-crossing shift takes its arrival from the early hours of
	// the next calendar day. Adopt the bridged check-in unless an override
	// already pinned one.
	if a.firstIn == nil && a.res.Shift != nil && a.res.Shift.CrossesMidnight() {
		a.adoptBridgedArrival(events, bridged, dayEnd)
		if override != nil && override.OutAt != nil {
			ts := override.OutAt.UTC()
			a.checkout = &ts
		}
	}
	return a, nil
}

// bridgedArrival reports whether a check-in recorded after midnight belongs
// to the previous day's shift: its bound shift crosses midnight and the
// arrival lands inside the early-morning tail of that shift. Events without
// a shift binding keep their calendar day.
func (m *MonitorImpl) bridgedArrival(ctx context.Context, ev event.Event) (bool, error) {
	if ev.Type != event.TypeIn || ev.Flags.Shift == nil {
		return false, nil
	}
	s, err := m.shiftRepo.GetByID(ctx, ev.Flags.Shift.ShiftID)
	if err != nil {
		if errors.Is(err, shift.ErrShiftNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get bound shift: %w", err)
	}
	return s.CrossesMidnight() && m.local.MinuteOfDay(ev.Timestamp) < s.EndTime.Minutes(), nil
}

// adoptBridgedArrival claims the earliest bridged check-in inside the
// shift's stretch past the day boundary, plus the first checkout after it.
func (a *dayAssessment) adoptBridgedArrival(events []event.Event, bridged []bool, dayEnd time.Time) {
	for i := range events {
		ev := events[i]
		if a.firstIn == nil {
			if ev.Type != event.TypeIn || !bridged[i] {
				continue
			}
			if ev.Timestamp.Before(dayEnd) || ev.Timestamp.After(a.shiftEnd) {
				continue
			}
			ts := ev.Timestamp
			a.firstIn = &ts
			continue
		}
		if a.checkout == nil && ev.Type == event.TypeOut && ev.Timestamp.After(*a.firstIn) {
			ts := ev.Timestamp
			a.checkout = &ts
			return
		}
	}
}

// shiftInstants pins the resolved shift's start and end onto the day. A
// midnight-crossing shift ends on the next calendar day. Without a resolved
// shift the window falls back to first-in (or now) plus planned minutes.
func (m *MonitorImpl) shiftInstants(a dayAssessment, now time.Time) (time.Time, time.Time) {
	if a.res.Shift == nil {
		start := now
		if a.firstIn != nil {
			start = *a.firstIn
		}
		planned := a.res.PlannedMinutes
		if planned == 0 {
			planned = shift.DefaultPlannedMinutes
		}
		return start, start.Add(time.Duration(planned) * time.Minute)
	}

	start := m.local.DayAt(a.day, a.res.Shift.StartTime.Minutes())
	end := m.local.DayAt(a.day, a.res.Shift.EndTime.Minutes())
	if a.res.Shift.CrossesMidnight() {
		end = end.Add(24 * time.Hour)
	}
	return start, end
}

// openEventForDay returns the employee's currently open IN when it belongs
// to the assessed day. A post-midnight arrival for a midnight-crossing
// shift counts toward the previous day. Another day's open event is someone
// else's problem.
func (m *MonitorImpl) openEventForDay(ctx context.Context, employeeID string, day time.Time, now time.Time) (*event.Event, error) {
	latest, err := m.eventRepo.LatestAtOrBefore(ctx, employeeID, now)
	if err != nil {
		return nil, fmt.Errorf("latest event: %w", err)
	}
	if latest == nil || latest.Type != event.TypeIn {
		return nil, nil
	}
	evDay := m.local.DayDate(latest.Timestamp)
	crossed, err := m.bridgedArrival(ctx, *latest)
	if err != nil {
		return nil, err
	}
	if crossed {
		evDay = evDay.AddDate(0, 0, -1)
	}
	if !evDay.Equal(day) {
		return nil, nil
	}
	return latest, nil
}
