package device

import "time"

// DeviceResponse is the API shape of a device. The claim secret hash never
// leaves the server.
type DeviceResponse struct {
	ID          string     `json:"id"`
	EmployeeID  *string    `json:"employee_id,omitempty"`
	Fingerprint string     `json:"fingerprint"`
	Name        string     `json:"name,omitempty"`
	Active      bool       `json:"active"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func NewDeviceResponse(d Device) DeviceResponse {
	return DeviceResponse{
		ID:          d.ID,
		EmployeeID:  d.EmployeeID,
		Fingerprint: d.Fingerprint,
		Name:        d.Name,
		Active:      d.Active,
		ClaimedAt:   d.ClaimedAt,
		CreatedAt:   d.CreatedAt,
	}
}
