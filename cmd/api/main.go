package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/tandang-dev/attendance-backend-go/internal/config"
	appHTTP "github.com/tandang-dev/attendance-backend-go/internal/handler/http"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/audit"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/cron"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/database"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/jwt"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/localtime"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/push"
	"github.com/tandang-dev/attendance-backend-go/internal/repository/postgresql"
	deviceService "github.com/tandang-dev/attendance-backend-go/internal/service/device"
	employeeService "github.com/tandang-dev/attendance-backend-go/internal/service/employee"
	eventService "github.com/tandang-dev/attendance-backend-go/internal/service/event"
	monitorService "github.com/tandang-dev/attendance-backend-go/internal/service/monitor"
	"github.com/tandang-dev/attendance-backend-go/internal/service/shiftplan"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	local, err := localtime.NewResolver(cfg.Attendance.Timezone)
	if err != nil {
		fmt.Println("Error loading timezone:", err)
		return
	}

	eventRepo := postgresql.NewEventRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	deviceRepo := postgresql.NewDeviceRepository(db)
	approvalRepo := postgresql.NewApprovalRepository(db)
	qrRepo := postgresql.NewQRRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	planRepo := postgresql.NewSchedulePlanRepository(db)
	assignmentRepo := postgresql.NewWeekdayAssignmentRepository(db)
	workRuleRepo := postgresql.NewWorkRuleRepository(db)
	overrideRepo := postgresql.NewManualOverrideRepository(db)
	jobRepo := postgresql.NewNotificationJobRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	auditor := audit.NewLogSink(slog.Default())

	var pusher push.Sender = push.NopSender{}
	if cfg.Push.GatewayURL != "" {
		pusher = push.NewHTTPSender(cfg.Push.GatewayURL, cfg.Push.APIKey)
	}

	resolver := shiftplan.NewResolver(shiftRepo, planRepo, assignmentRepo, workRuleRepo, local)
	engine := eventService.NewEngine(
		db,
		eventRepo,
		employeeRepo,
		deviceRepo,
		approvalRepo,
		qrRepo,
		shiftRepo,
		resolver,
		local,
		pusher,
		auditor,
		eventService.Config{
			DailyCycleCap:  cfg.Attendance.DailyCycleCap,
			ApprovalTTL:    cfg.Attendance.ApprovalTTL,
			QRScanCooldown: cfg.Attendance.QRScanCooldown,
		},
	)
	monitor := monitorService.NewMonitor(
		db,
		employeeRepo,
		eventRepo,
		overrideRepo,
		shiftRepo,
		resolver,
		jobRepo,
		local,
		monitorService.Config{},
	)
	empService := employeeService.NewService(employeeRepo, auditor)
	devService := deviceService.NewService(deviceRepo, employeeRepo, auditor)

	attendanceHandler := appHTTP.NewAttendanceHandler(engine)
	deviceHandler := appHTTP.NewDeviceHandler(JWTService, devService)
	employeeHandler := appHTTP.NewEmployeeHandler(empService)
	adminHandler := appHTTP.NewAdminHandler(engine, monitor, jobRepo)

	scheduler := cron.NewScheduler()
	scheduler.AddJob("approval-expiry", cfg.Attendance.MonitorInterval, func(ctx context.Context) error {
		n, err := approvalRepo.ExpireOverdue(ctx, time.Now().UTC())
		if err != nil {
			return err
		}
		if n > 0 {
			slog.Info("expired overdue approvals", "count", n)
		}
		return nil
	})
	scheduler.AddJob("notification-monitor", cfg.Attendance.MonitorInterval, func(ctx context.Context) error {
		result, err := monitor.Run(ctx)
		if err != nil {
			return err
		}
		slog.Info("monitor pass finished",
			"days_assessed", result.DaysAssessed,
			"jobs_created", result.JobsCreated,
			"auto_closed", result.AutoClosed,
			"failures", result.Failures,
		)
		return nil
	})
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		JWTService,
		attendanceHandler,
		deviceHandler,
		employeeHandler,
		adminHandler,
		cfg.App.Env,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
		os.Exit(1)
	}
}
