package employee

import "context"

// Service exposes the employee-facing operations outside the attendance
// engine itself.
type Service interface {
	Get(ctx context.Context, id string) (Employee, error)

	// SetHomeLocation stores the home reference point. One-shot: a second
	// call fails with HOME_LOCATION_ALREADY_SET.
	SetHomeLocation(ctx context.Context, id string, lat, lon float64, radiusMeters int) error
}
