package device

import "context"

// DeviceRepository defines data access for attendance devices. The device
// fingerprint carries a store-level uniqueness constraint.
type DeviceRepository interface {
	GetByID(ctx context.Context, id string) (Device, error)
	GetByFingerprint(ctx context.Context, fingerprint string) (*Device, error)
	Create(ctx context.Context, d Device) (Device, error)
	Claim(ctx context.Context, id, employeeID string) error
}
