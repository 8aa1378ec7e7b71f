package response

import (
	"errors"
	"net/http"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/fault"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/validator"
)

// faultStatus maps the stable fault codes to HTTP statuses. Codes missing
// here fall back to 409: attendance rule violations are conflicts with the
// recorded state.
var faultStatus = map[string]int{
	"EMPLOYEE_NOT_FOUND": http.StatusNotFound,
	"EVENT_NOT_FOUND":    http.StatusNotFound,
	"SHIFT_NOT_FOUND":    http.StatusNotFound,
	"QR_CODE_NOT_FOUND":  http.StatusNotFound,
	"APPROVAL_NOT_FOUND": http.StatusNotFound,
	"DEVICE_NOT_FOUND":   http.StatusNotFound,

	"EMPLOYEE_INACTIVE":    http.StatusForbidden,
	"DEVICE_NOT_CLAIMED":   http.StatusForbidden,
	"INVALID_CLAIM_SECRET": http.StatusForbidden,

	"SHIFT_DEPARTMENT_MISMATCH":    http.StatusUnprocessableEntity,
	"SHIFT_INACTIVE":               http.StatusUnprocessableEntity,
	"QR_POINT_OUT_OF_RANGE":        http.StatusUnprocessableEntity,
	"QR_CODE_HAS_NO_ACTIVE_POINTS": http.StatusUnprocessableEntity,

	"QR_DOUBLE_SCAN_BLOCKED": http.StatusTooManyRequests,
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make(map[string]any)
		for field, msg := range validationErrs.ToMap() {
			details[field] = msg
		}
		ValidationError(w, details)
		return
	}

	var f *fault.Fault
	if errors.As(err, &f) {
		status, ok := faultStatus[f.Code]
		if !ok {
			status = http.StatusConflict
		}
		DomainFault(w, status, f.Code, f.Message, f.Details)
		return
	}

	InternalServerError(w, "An unexpected error occurred")
}
