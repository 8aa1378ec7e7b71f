package device

import "time"

// Device is an employee-claimed attendance device. Unclaimed devices cannot
// produce events.
type Device struct {
	ID          string
	EmployeeID  *string
	Fingerprint string
	Name        string

	// ClaimSecretHash stores the bcrypt hash of the one-time claim secret.
	ClaimSecretHash string

	Active    bool
	ClaimedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Claimed reports whether the device is bound to an employee.
func (d Device) Claimed() bool {
	return d.EmployeeID != nil
}
