package http

import (
	"encoding/json"
	"net/http"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/device"
	"github.com/tandang-dev/attendance-backend-go/internal/handler/http/response"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/jwt"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/validator"
)

type DeviceHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Claim(w http.ResponseWriter, r *http.Request)
}

type deviceHandlerImpl struct {
	JWTService    jwt.Service
	deviceService device.Service
}

func NewDeviceHandler(JWTService jwt.Service, deviceService device.Service) DeviceHandler {
	return &deviceHandlerImpl{JWTService: JWTService, deviceService: deviceService}
}

type registerDeviceBody struct {
	Fingerprint string `json:"fingerprint"`
	Name        string `json:"name"`
	ClaimSecret string `json:"claim_secret"`
}

// Register implements DeviceHandler.
func (h *deviceHandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	var body registerDeviceBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	var errs validator.ValidationErrors
	if validator.IsEmpty(body.Fingerprint) {
		errs = append(errs, validator.ValidationError{Field: "fingerprint", Message: "is required"})
	}
	if validator.IsEmpty(body.ClaimSecret) {
		errs = append(errs, validator.ValidationError{Field: "claim_secret", Message: "is required"})
	}
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	result, err := h.deviceService.Register(r.Context(), device.RegisterRequest{
		Fingerprint: body.Fingerprint,
		Name:        body.Name,
		ClaimSecret: body.ClaimSecret,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Device registered", device.NewDeviceResponse(result))
}

type claimDeviceBody struct {
	DeviceID    string `json:"device_id"`
	EmployeeID  string `json:"employee_id"`
	ClaimSecret string `json:"claim_secret"`
}

type claimDeviceResponse struct {
	Device      device.DeviceResponse `json:"device"`
	AccessToken string                `json:"access_token"`
	ExpiresAt   int64                 `json:"expires_at"`
}

// Claim implements DeviceHandler. The claim secret is the bootstrap
// credential: a successful claim also issues the employee access token.
func (h *deviceHandlerImpl) Claim(w http.ResponseWriter, r *http.Request) {
	var body claimDeviceBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if validator.IsEmpty(body.DeviceID) || validator.IsEmpty(body.EmployeeID) || validator.IsEmpty(body.ClaimSecret) {
		response.BadRequest(w, "device_id, employee_id and claim_secret are required", nil)
		return
	}

	result, err := h.deviceService.Claim(r.Context(), device.ClaimRequest{
		DeviceID:    body.DeviceID,
		EmployeeID:  body.EmployeeID,
		ClaimSecret: body.ClaimSecret,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresAt, err := h.JWTService.GenerateAccessToken(body.EmployeeID, jwt.RoleEmployee)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Device claimed", claimDeviceResponse{
		Device:      device.NewDeviceResponse(result),
		AccessToken: token,
		ExpiresAt:   expiresAt,
	})
}
