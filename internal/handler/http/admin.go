package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/event"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/notification"
	"github.com/tandang-dev/attendance-backend-go/internal/handler/http/middleware"
	"github.com/tandang-dev/attendance-backend-go/internal/handler/http/response"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/validator"
)

type AdminHandler interface {
	CreateManualEvent(w http.ResponseWriter, r *http.Request)
	UpdateManualEvent(w http.ResponseWriter, r *http.Request)
	DeleteManualEvent(w http.ResponseWriter, r *http.Request)
	ApproveExtraCheckin(w http.ResponseWriter, r *http.Request)
	RunMonitorPass(w http.ResponseWriter, r *http.Request)
	ListNotificationJobs(w http.ResponseWriter, r *http.Request)
}

type adminHandlerImpl struct {
	engine  event.Engine
	monitor notification.Monitor
	jobRepo notification.JobRepository
}

func NewAdminHandler(engine event.Engine, monitor notification.Monitor, jobRepo notification.JobRepository) AdminHandler {
	return &adminHandlerImpl{engine: engine, monitor: monitor, jobRepo: jobRepo}
}

type manualEventBody struct {
	EmployeeID string  `json:"employee_id"`
	Type       string  `json:"type"`
	Timestamp  string  `json:"timestamp"`
	Note       *string `json:"note"`
	Override   bool    `json:"override"`
}

func parseEventType(s string) (event.Type, bool) {
	switch event.Type(s) {
	case event.TypeIn, event.TypeOut:
		return event.Type(s), true
	}
	return "", false
}

// CreateManualEvent implements AdminHandler.
func (h *adminHandlerImpl) CreateManualEvent(w http.ResponseWriter, r *http.Request) {
	var body manualEventBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	var errs validator.ValidationErrors
	if validator.IsEmpty(body.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	typ, ok := parseEventType(body.Type)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "must be IN or OUT"})
	}
	ts, err := time.Parse(time.RFC3339, body.Timestamp)
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "timestamp", Message: "must be RFC3339"})
	}
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	result, err := h.engine.CreateManual(r.Context(), event.ManualCreateRequest{
		AdminID:    middleware.SubjectID(r),
		EmployeeID: body.EmployeeID,
		Type:       typ,
		Timestamp:  ts,
		Note:       body.Note,
		Override:   body.Override,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Event created", event.NewEventResponse(result))
}

type manualEventUpdateBody struct {
	Type      *string `json:"type"`
	Timestamp *string `json:"timestamp"`
	Note      *string `json:"note"`
	Override  bool    `json:"override"`
}

// UpdateManualEvent implements AdminHandler.
func (h *adminHandlerImpl) UpdateManualEvent(w http.ResponseWriter, r *http.Request) {
	var body manualEventUpdateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req := event.ManualUpdateRequest{
		AdminID:  middleware.SubjectID(r),
		EventID:  chi.URLParam(r, "eventID"),
		Note:     body.Note,
		Override: body.Override,
	}
	if body.Type != nil {
		typ, ok := parseEventType(*body.Type)
		if !ok {
			response.BadRequest(w, "type must be IN or OUT", nil)
			return
		}
		req.Type = &typ
	}
	if body.Timestamp != nil {
		ts, err := time.Parse(time.RFC3339, *body.Timestamp)
		if err != nil {
			response.BadRequest(w, "timestamp must be RFC3339", nil)
			return
		}
		req.Timestamp = &ts
	}

	result, err := h.engine.UpdateManual(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Event updated", event.NewEventResponse(result))
}

// DeleteManualEvent implements AdminHandler.
func (h *adminHandlerImpl) DeleteManualEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	if err := h.engine.DeleteManual(r.Context(), eventID, middleware.SubjectID(r)); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Event deleted", nil)
}

// ApproveExtraCheckin implements AdminHandler.
func (h *adminHandlerImpl) ApproveExtraCheckin(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := h.engine.ApproveExtraCheckin(r.Context(), token, middleware.SubjectID(r)); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Extra check-in approved", nil)
}

// RunMonitorPass implements AdminHandler.
func (h *adminHandlerImpl) RunMonitorPass(w http.ResponseWriter, r *http.Request) {
	result, err := h.monitor.Run(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Monitor pass completed", result)
}

// ListNotificationJobs implements AdminHandler.
func (h *adminHandlerImpl) ListNotificationJobs(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			response.BadRequest(w, "limit must be between 1 and 500", nil)
			return
		}
		limit = parsed
	}

	jobs, err := h.jobRepo.ListByEmployee(r.Context(), employeeID, limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	results := make([]notification.JobResponse, 0, len(jobs))
	for _, j := range jobs {
		results = append(results, notification.NewJobResponse(j))
	}
	response.Success(w, results)
}
