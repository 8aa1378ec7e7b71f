package http

import (
	"encoding/json"
	"net/http"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/event"
	"github.com/tandang-dev/attendance-backend-go/internal/handler/http/middleware"
	"github.com/tandang-dev/attendance-backend-go/internal/handler/http/response"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/validator"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	QRScan(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	engine event.Engine
}

func NewAttendanceHandler(engine event.Engine) AttendanceHandler {
	return &attendanceHandlerImpl{engine: engine}
}

type checkInBody struct {
	DeviceID         string   `json:"device_id"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	AccuracyMeters   *float64 `json:"accuracy_meters"`
	RequestedShiftID *string  `json:"requested_shift_id"`
	Note             *string  `json:"note"`
}

func validateCoordinates(lat, lon *float64) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if lat != nil && !validator.IsValidLatitude(*lat) {
		errs = append(errs, validator.ValidationError{Field: "latitude", Message: "must be between -90 and 90"})
	}
	if lon != nil && !validator.IsValidLongitude(*lon) {
		errs = append(errs, validator.ValidationError{Field: "longitude", Message: "must be between -180 and 180"})
	}
	if (lat == nil) != (lon == nil) {
		errs = append(errs, validator.ValidationError{Field: "coordinates", Message: "latitude and longitude must be sent together"})
	}
	return errs
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	var body checkInBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if validator.IsEmpty(body.DeviceID) {
		response.BadRequest(w, "device_id is required", nil)
		return
	}
	if errs := validateCoordinates(body.Latitude, body.Longitude); len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	result, err := h.engine.CheckIn(r.Context(), event.CheckInRequest{
		EmployeeID:       middleware.SubjectID(r),
		DeviceID:         body.DeviceID,
		Latitude:         body.Latitude,
		Longitude:        body.Longitude,
		AccuracyMeters:   body.AccuracyMeters,
		RequestedShiftID: body.RequestedShiftID,
		Note:             body.Note,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Checked in", event.NewEventResponse(result))
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	var body checkInBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if validator.IsEmpty(body.DeviceID) {
		response.BadRequest(w, "device_id is required", nil)
		return
	}
	if errs := validateCoordinates(body.Latitude, body.Longitude); len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	result, err := h.engine.CheckOut(r.Context(), event.CheckOutRequest{
		EmployeeID:     middleware.SubjectID(r),
		DeviceID:       body.DeviceID,
		Latitude:       body.Latitude,
		Longitude:      body.Longitude,
		AccuracyMeters: body.AccuracyMeters,
		Note:           body.Note,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Checked out", event.NewEventResponse(result))
}

type qrScanBody struct {
	DeviceID  string   `json:"device_id"`
	CodeValue string   `json:"code_value"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// QRScan implements AttendanceHandler.
func (h *attendanceHandlerImpl) QRScan(w http.ResponseWriter, r *http.Request) {
	var body qrScanBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if validator.IsEmpty(body.DeviceID) || validator.IsEmpty(body.CodeValue) {
		response.BadRequest(w, "device_id and code_value are required", nil)
		return
	}
	if errs := validateCoordinates(body.Latitude, body.Longitude); len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	result, err := h.engine.QRScan(r.Context(), event.QRScanRequest{
		EmployeeID: middleware.SubjectID(r),
		DeviceID:   body.DeviceID,
		CodeValue:  body.CodeValue,
		Latitude:   body.Latitude,
		Longitude:  body.Longitude,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Scan accepted", event.NewEventResponse(result))
}

// Status implements AttendanceHandler.
func (h *attendanceHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.Status(r.Context(), middleware.SubjectID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
