package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/event"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/notification"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/shift"
)

const (
	overtimeWarningAfter   = 3 * time.Hour
	overtimeAutoCloseAfter = 6 * time.Hour
)

// evaluate runs every rule over one assessment. Jobs come back as
// candidates; hash dedup happens at commit time. Synthesized auto-close
// events are queued on the pass, not written here.
func (m *MonitorImpl) evaluate(ctx context.Context, a dayAssessment, now time.Time, out *passBuffer) error {
	m.ruleLateCheckin(a, now, out)
	m.ruleOffShift(a, out)
	m.ruleEarlyCheckout(a, out)
	if err := m.ruleOverrideInfo(ctx, a, out); err != nil {
		return err
	}
	m.ruleAbsence(a, now, out)
	m.ruleOvertimeStarted(a, now, out)
	m.ruleOvertimeWarning(a, now, out)
	m.ruleOvertimeAutoClose(a, now, out)
	return nil
}

func (m *MonitorImpl) ruleLateCheckin(a dayAssessment, now time.Time, out *passBuffer) {
	if a.firstIn == nil || a.res.Shift == nil {
		return
	}
	deadline := a.shiftStart.Add(time.Duration(a.res.GraceMinutes) * time.Minute)
	if !a.firstIn.After(deadline) {
		return
	}
	diff := int(a.firstIn.Sub(deadline).Minutes())
	payload := map[string]any{"diff_minutes": diff, "shift_id": a.res.Shift.ID}
	title := "Terlambat check-in"
	desc := fmt.Sprintf("%s terlambat %d menit dari jam masuk shift %s.", a.emp.FullName, diff, a.res.Shift.Name)

	out.add(m.job(a, notification.RuleLateCheckin, notification.AudienceEmployee, notification.RiskInfo, *a.firstIn, title, desc, payload))
	out.add(m.job(a, notification.RuleLateCheckin, notification.AudienceAdmin, notification.RiskWarning, *a.firstIn, title, desc, payload))
}

func (m *MonitorImpl) ruleOffShift(a dayAssessment, out *passBuffer) {
	if a.firstIn == nil || a.res.Shift == nil {
		return
	}
	minute := m.local.MinuteOfDay(*a.firstIn)
	if a.res.Shift.ContainsMinute(minute) {
		return
	}
	payload := map[string]any{"checkin_minute": minute, "shift_id": a.res.Shift.ID}
	title := "Aktivitas di luar shift"
	desc := fmt.Sprintf("%s check-in di luar jendela shift %s.", a.emp.FullName, a.res.Shift.Name)

	out.add(m.job(a, notification.RuleOffShiftActivity, notification.AudienceEmployee, notification.RiskWarning, *a.firstIn, title, desc, payload))
	out.add(m.job(a, notification.RuleOffShiftActivity, notification.AudienceAdmin, notification.RiskWarning, *a.firstIn, title, desc, payload))
}

func (m *MonitorImpl) ruleEarlyCheckout(a dayAssessment, out *passBuffer) {
	// Suppressed entirely while an override plan is in force.
	if a.checkout == nil || a.res.Shift == nil || a.planActive() {
		return
	}
	if !a.checkout.Before(a.shiftEnd) {
		return
	}
	diff := int(a.shiftEnd.Sub(*a.checkout).Minutes())
	payload := map[string]any{"diff_minutes": diff, "shift_id": a.res.Shift.ID}
	title := "Checkout lebih awal"
	desc := fmt.Sprintf("%s checkout %d menit sebelum jam pulang.", a.emp.FullName, diff)

	out.add(m.job(a, notification.RuleEarlyCheckout, notification.AudienceEmployee, notification.RiskWarning, *a.checkout, title, desc, payload))
	out.add(m.job(a, notification.RuleEarlyCheckout, notification.AudienceAdmin, notification.RiskWarning, *a.checkout, title, desc, payload))
}

// ruleOverrideInfo distinguishes a sanctioned short day under an override
// plan from a genuine early checkout: the checkout sits between the
// override's effective end and the default shift's end. Admin-only.
func (m *MonitorImpl) ruleOverrideInfo(ctx context.Context, a dayAssessment, out *passBuffer) error {
	if a.checkout == nil || !a.planActive() || a.emp.DefaultShiftID == nil {
		return nil
	}
	def, err := m.shiftRepo.GetByID(ctx, *a.emp.DefaultShiftID)
	if err != nil {
		if errors.Is(err, shift.ErrShiftNotFound) {
			return nil
		}
		return fmt.Errorf("get default shift: %w", err)
	}
	defaultEnd := m.local.DayAt(a.day, def.EndTime.Minutes())
	if def.CrossesMidnight() {
		defaultEnd = defaultEnd.Add(24 * time.Hour)
	}
	if a.checkout.Before(a.shiftEnd) || !a.checkout.Before(defaultEnd) {
		return nil
	}

	payload := map[string]any{"plan_id": a.res.Plan.ID, "default_shift_id": def.ID}
	title := "Checkout sesuai plan override"
	desc := fmt.Sprintf("%s pulang lebih awal sesuai schedule plan, bukan pelanggaran.", a.emp.FullName)
	out.add(m.job(a, notification.RuleOverrideInfo, notification.AudienceAdmin, notification.RiskInfo, *a.checkout, title, desc, payload))
	return nil
}

func (m *MonitorImpl) ruleAbsence(a dayAssessment, now time.Time, out *passBuffer) {
	if a.firstIn != nil || a.hasActivity {
		return
	}
	deadline := a.shiftEnd.Add(time.Duration(a.res.GraceMinutes) * time.Minute)
	if now.Before(deadline) {
		return
	}
	payload := map[string]any{"day": m.local.DayKey(a.shiftStart)}
	title := "Tidak hadir"
	desc := fmt.Sprintf("%s tidak tercatat hadir sama sekali.", a.emp.FullName)

	out.add(m.job(a, notification.RuleAbsence, notification.AudienceEmployee, notification.RiskCritical, deadline, title, desc, payload))
	out.add(m.job(a, notification.RuleAbsence, notification.AudienceAdmin, notification.RiskCritical, deadline, title, desc, payload))
}

func (m *MonitorImpl) ruleOvertimeStarted(a dayAssessment, now time.Time, out *passBuffer) {
	if a.firstIn == nil || a.checkout != nil || now.Before(a.shiftEnd) {
		return
	}
	payload := map[string]any{"shift_end": a.shiftEnd}
	title := "Lembur dimulai"
	desc := fmt.Sprintf("%s masih aktif setelah jam pulang.", a.emp.FullName)

	out.add(m.job(a, notification.RuleOvertimeStarted, notification.AudienceEmployee, notification.RiskInfo, a.shiftEnd, title, desc, payload))
	out.add(m.job(a, notification.RuleOvertimeStarted, notification.AudienceAdmin, notification.RiskInfo, a.shiftEnd, title, desc, payload))
}

func (m *MonitorImpl) ruleOvertimeWarning(a dayAssessment, now time.Time, out *passBuffer) {
	if a.firstIn == nil || a.checkout != nil || now.Before(a.shiftEnd.Add(overtimeWarningAfter)) {
		return
	}
	payload := map[string]any{"shift_end": a.shiftEnd}
	title := "Lembur sudah 3 jam"
	desc := fmt.Sprintf("%s belum checkout 3 jam setelah jam pulang.", a.emp.FullName)

	out.add(m.job(a, notification.RuleOvertimeWarning, notification.AudienceEmployee, notification.RiskWarning, a.shiftEnd.Add(overtimeWarningAfter), title, desc, payload))
	out.add(m.job(a, notification.RuleOvertimeWarning, notification.AudienceAdmin, notification.RiskInfo, a.shiftEnd.Add(overtimeWarningAfter), title, desc, payload))
}

// ruleOvertimeAutoClose synthesizes a system OUT at exactly shift-end + 6h
// for a still-open day. The open-event check makes re-runs no-ops: once the
// OUT exists the day is closed and the rule never matches again.
func (m *MonitorImpl) ruleOvertimeAutoClose(a dayAssessment, now time.Time, out *passBuffer) {
	closeAt := a.shiftEnd.Add(overtimeAutoCloseAfter)
	if a.checkout != nil || a.openEvent == nil || now.Before(closeAt) {
		return
	}

	flags := event.Flags{
		Version: event.FlagsVersion,
		AutoClose: &event.AutoCloseMarker{
			Reason:      event.AutoCloseReasonOvertime,
			OpenEventID: a.openEvent.ID,
			ShiftEnd:    a.shiftEnd,
		},
	}
	if a.openEvent.Flags.Shift != nil {
		binding := *a.openEvent.Flags.Shift
		flags.Shift = &binding
	}

	closing := event.Event{
		ID:             uuid.New().String(),
		EmployeeID:     a.emp.ID,
		Type:           event.TypeOut,
		Timestamp:      closeAt,
		LocationStatus: event.LocationNone,
		Source:         event.SourceSystem,
		ByAdmin:        false,
		Flags:          flags,
	}
	out.addAutoClose(closing)

	payload := map[string]any{"event_id": closing.ID, "closed_at": closeAt, "shift_end": a.shiftEnd}
	title := "Shift ditutup otomatis"
	desc := fmt.Sprintf("Shift %s ditutup sistem 6 jam setelah jam pulang tanpa checkout.", a.emp.FullName)

	out.add(m.job(a, notification.RuleOvertimeAutoClose, notification.AudienceEmployee, notification.RiskCritical, closeAt, title, desc, payload))
	out.add(m.job(a, notification.RuleOvertimeAutoClose, notification.AudienceAdmin, notification.RiskCritical, closeAt, title, desc, payload))
}

func (m *MonitorImpl) job(a dayAssessment, rule notification.RuleType, audience notification.Audience, risk notification.RiskLevel, eventAt time.Time, title, desc string, payload map[string]any) notification.Job {
	return notification.Job{
		ID:          uuid.New().String(),
		EmployeeID:  a.emp.ID,
		Rule:        rule,
		Audience:    audience,
		Risk:        risk,
		Day:         a.day,
		EventAt:     eventAt,
		Title:       title,
		Description: desc,
		Summary:     fmt.Sprintf("%s: %s", rule, a.emp.FullName),
		Payload:     payload,
		ScheduledAt: m.cfg.Now().UTC(),
		Status:      notification.DeliveryPending,
		EventHash:   notification.EventHash(a.emp.ID, a.day, rule, audience),
	}
}
