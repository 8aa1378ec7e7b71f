package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/employee"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/event"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/notification"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/shift"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/database"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/localtime"
)

// Config tunes a monitor pass.
type Config struct {
	// Now is the clock; defaults to time.Now. Tests pin it.
	Now func() time.Time
}

type MonitorImpl struct {
	db           *database.DB
	employeeRepo employee.EmployeeRepository
	eventRepo    event.EventRepository
	overrideRepo shift.ManualOverrideRepository
	shiftRepo    shift.ShiftRepository
	resolver     shift.Resolver
	jobRepo      notification.JobRepository
	local        *localtime.Resolver
	cfg          Config
}

func NewMonitor(
	db *database.DB,
	employeeRepo employee.EmployeeRepository,
	eventRepo event.EventRepository,
	overrideRepo shift.ManualOverrideRepository,
	shiftRepo shift.ShiftRepository,
	resolver shift.Resolver,
	jobRepo notification.JobRepository,
	local *localtime.Resolver,
	cfg Config,
) notification.Monitor {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &MonitorImpl{
		db:           db,
		employeeRepo: employeeRepo,
		eventRepo:    eventRepo,
		overrideRepo: overrideRepo,
		shiftRepo:    shiftRepo,
		resolver:     resolver,
		jobRepo:      jobRepo,
		local:        local,
		cfg:          cfg,
	}
}

// passBuffer collects candidate writes across every employee-day so the
// whole pass commits in one transaction.
type passBuffer struct {
	jobs       []notification.Job
	autoCloses []event.Event
}

func (b *passBuffer) add(j notification.Job)      { b.jobs = append(b.jobs, j) }
func (b *passBuffer) addAutoClose(ev event.Event) { b.autoCloses = append(b.autoCloses, ev) }

// Run implements notification.Monitor. It assesses each active employee for
// yesterday and today in local time. One failing employee-day is logged and
// skipped; the rest of the pass still commits.
func (m *MonitorImpl) Run(ctx context.Context) (notification.PassResult, error) {
	now := m.cfg.Now().UTC()
	result := notification.PassResult{}

	employees, err := m.employeeRepo.ListActive(ctx)
	if err != nil {
		return result, fmt.Errorf("list active employees: %w", err)
	}

	today := m.local.DayDate(now)
	yesterday := today.AddDate(0, 0, -1)

	buffer := &passBuffer{}
	for _, emp := range employees {
		for _, day := range []time.Time{yesterday, today} {
			a, err := m.assessDay(ctx, emp, day, now)
			if err != nil {
				slog.Warn("monitor assessment failed",
					"employee_id", emp.ID, "day", day.Format("2006-01-02"), "error", err)
				result.Failures++
				continue
			}
			if a.skip {
				continue
			}
			result.DaysAssessed++
			if err := m.evaluate(ctx, a, now, buffer); err != nil {
				slog.Warn("monitor rule evaluation failed",
					"employee_id", emp.ID, "day", day.Format("2006-01-02"), "error", err)
				result.Failures++
			}
		}
	}

	inserted, closed, err := m.commit(ctx, buffer)
	if err != nil {
		return result, err
	}
	result.JobsCreated = inserted
	result.AutoClosed = closed

	slog.Info("monitor pass done",
		"days_assessed", result.DaysAssessed,
		"jobs_created", result.JobsCreated,
		"auto_closed", result.AutoClosed,
		"failures", result.Failures)
	return result, nil
}

// commit writes every buffered job and synthesized close inside one
// transaction. Jobs whose event hash already exists are skipped by the
// store, which is what makes repeat passes no-ops.
func (m *MonitorImpl) commit(ctx context.Context, buffer *passBuffer) (int, int, error) {
	inserted, closed := 0, 0
	err := m.inTx(ctx, func(ctx context.Context) error {
		for _, ev := range buffer.autoCloses {
			if _, err := m.eventRepo.Create(ctx, ev); err != nil {
				return fmt.Errorf("create auto-close event: %w", err)
			}
			closed++
		}
		if len(buffer.jobs) > 0 {
			// Known hashes are dropped up front; the store's conflict
			// clause still catches concurrent passes.
			hashes := make([]string, len(buffer.jobs))
			for i, j := range buffer.jobs {
				hashes[i] = j.EventHash
			}
			existing, err := m.jobRepo.ExistingHashes(ctx, hashes)
			if err != nil {
				return fmt.Errorf("check existing hashes: %w", err)
			}
			fresh := make([]notification.Job, 0, len(buffer.jobs))
			for _, j := range buffer.jobs {
				if existing[j.EventHash] {
					continue
				}
				fresh = append(fresh, j)
			}
			if len(fresh) > 0 {
				n, err := m.jobRepo.CreateBatch(ctx, fresh)
				if err != nil {
					return fmt.Errorf("create notification jobs: %w", err)
				}
				inserted = n
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return inserted, closed, nil
}

func (m *MonitorImpl) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.db == nil {
		return fn(ctx)
	}
	return m.db.WithinTx(ctx, fn)
}
