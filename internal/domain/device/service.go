package device

import "context"

// RegisterRequest enrolls a new device with a one-time claim secret.
type RegisterRequest struct {
	Fingerprint string
	Name        string
	ClaimSecret string
}

// ClaimRequest binds a registered device to an employee. The secret must
// match the hash stored at registration.
type ClaimRequest struct {
	DeviceID    string
	EmployeeID  string
	ClaimSecret string
}

// Service manages device enrollment and claiming. Events are only accepted
// from claimed devices.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (Device, error)
	Claim(ctx context.Context, req ClaimRequest) (Device, error)
	Get(ctx context.Context, id string) (Device, error)
}
