package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/tandang-dev/attendance-backend-go/internal/handler/http/middleware"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/jwt"
)

func NewRouter(
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	deviceHandler DeviceHandler,
	employeeHandler EmployeeHandler,
	adminHandler AdminHandler,
	appEnv string,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", appEnv),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Device enrollment and claim happen before a token exists; the
		// claim secret is the credential.
		r.Post("/devices/register", deviceHandler.Register)
		r.Post("/devices/claim", deviceHandler.Claim)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", attendanceHandler.CheckIn)
				r.Post("/check-out", attendanceHandler.CheckOut)
				r.Post("/qr-scan", attendanceHandler.QRScan)
				r.Get("/status", attendanceHandler.Status)
			})

			r.Route("/employees/me", func(r chi.Router) {
				r.Get("/", employeeHandler.Me)
				r.Put("/home-location", employeeHandler.SetHomeLocation)
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/admin", func(r chi.Router) {
					r.Post("/events", adminHandler.CreateManualEvent)
					r.Put("/events/{eventID}", adminHandler.UpdateManualEvent)
					r.Delete("/events/{eventID}", adminHandler.DeleteManualEvent)
					r.Post("/approvals/{token}/approve", adminHandler.ApproveExtraCheckin)
					r.Post("/monitor/run", adminHandler.RunMonitorPass)
					r.Get("/employees/{employeeID}/notifications", adminHandler.ListNotificationJobs)
				})
			})
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	return r
}
