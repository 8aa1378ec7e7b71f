package http

import (
	"encoding/json"
	"net/http"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/employee"
	"github.com/tandang-dev/attendance-backend-go/internal/handler/http/middleware"
	"github.com/tandang-dev/attendance-backend-go/internal/handler/http/response"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/validator"
)

type EmployeeHandler interface {
	Me(w http.ResponseWriter, r *http.Request)
	SetHomeLocation(w http.ResponseWriter, r *http.Request)
}

type employeeHandlerImpl struct {
	employeeService employee.Service
}

func NewEmployeeHandler(employeeService employee.Service) EmployeeHandler {
	return &employeeHandlerImpl{employeeService: employeeService}
}

// Me implements EmployeeHandler.
func (h *employeeHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	result, err := h.employeeService.Get(r.Context(), middleware.SubjectID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, employee.NewEmployeeResponse(result))
}

type homeLocationBody struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters int     `json:"radius_meters"`
}

// SetHomeLocation implements EmployeeHandler.
func (h *employeeHandlerImpl) SetHomeLocation(w http.ResponseWriter, r *http.Request) {
	var body homeLocationBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	var errs validator.ValidationErrors
	if !validator.IsValidLatitude(body.Latitude) {
		errs = append(errs, validator.ValidationError{Field: "latitude", Message: "must be between -90 and 90"})
	}
	if !validator.IsValidLongitude(body.Longitude) {
		errs = append(errs, validator.ValidationError{Field: "longitude", Message: "must be between -180 and 180"})
	}
	if !validator.IsValidRadius(body.RadiusMeters) {
		errs = append(errs, validator.ValidationError{Field: "radius_meters", Message: "must be between 1 and 10000"})
	}
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	employeeID := middleware.SubjectID(r)
	if err := h.employeeService.SetHomeLocation(r.Context(), employeeID, body.Latitude, body.Longitude, body.RadiusMeters); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Home location saved", nil)
}
