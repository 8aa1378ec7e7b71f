package employee

import (
	"time"

	"github.com/tandang-dev/attendance-backend-go/internal/pkg/geo"
)

type Employee struct {
	ID             string
	DepartmentID   string
	FullName       string
	DefaultShiftID *string
	Active         bool
	WeeklyMinutes  *int

	// Home point used by the location verifier. Set once via the
	// home-location endpoint.
	HomeLatitude      *float64
	HomeLongitude     *float64
	HomeRadiusMeters  *int
	HomeLocationSetAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// HomePoint returns the configured home reference point, or nil when the
// employee has not set one yet.
func (e Employee) HomePoint() *geo.Point {
	if e.HomeLatitude == nil || e.HomeLongitude == nil || e.HomeRadiusMeters == nil {
		return nil
	}
	return &geo.Point{
		Latitude:     *e.HomeLatitude,
		Longitude:    *e.HomeLongitude,
		RadiusMeters: *e.HomeRadiusMeters,
	}
}
