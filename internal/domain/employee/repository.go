package employee

import "context"

// EmployeeRepository defines data access for employees.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)

	// ListActive returns every active, non-deleted employee. The monitor
	// iterates this set each pass.
	ListActive(ctx context.Context) ([]Employee, error)

	// SetHomeLocation stores the one-shot home point.
	SetHomeLocation(ctx context.Context, id string, lat, lon float64, radiusMeters int) error
}
