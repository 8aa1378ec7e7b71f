package employee

import "time"

// EmployeeResponse is the API shape of an employee profile.
type EmployeeResponse struct {
	ID                string     `json:"id"`
	DepartmentID      string     `json:"department_id"`
	FullName          string     `json:"full_name"`
	DefaultShiftID    *string    `json:"default_shift_id,omitempty"`
	Active            bool       `json:"active"`
	WeeklyMinutes     *int       `json:"weekly_minutes,omitempty"`
	HomeLatitude      *float64   `json:"home_latitude,omitempty"`
	HomeLongitude     *float64   `json:"home_longitude,omitempty"`
	HomeRadiusMeters  *int       `json:"home_radius_meters,omitempty"`
	HomeLocationSetAt *time.Time `json:"home_location_set_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:                e.ID,
		DepartmentID:      e.DepartmentID,
		FullName:          e.FullName,
		DefaultShiftID:    e.DefaultShiftID,
		Active:            e.Active,
		WeeklyMinutes:     e.WeeklyMinutes,
		HomeLatitude:      e.HomeLatitude,
		HomeLongitude:     e.HomeLongitude,
		HomeRadiusMeters:  e.HomeRadiusMeters,
		HomeLocationSetAt: e.HomeLocationSetAt,
		CreatedAt:         e.CreatedAt,
	}
}
