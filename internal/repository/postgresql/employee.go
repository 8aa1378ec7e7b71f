package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/employee"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/database"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `
	id, department_id, full_name, default_shift_id, active, weekly_minutes,
	home_latitude, home_longitude, home_radius_meters, home_location_set_at,
	created_at, updated_at, deleted_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.DepartmentID, &emp.FullName, &emp.DefaultShiftID, &emp.Active, &emp.WeeklyMinutes,
		&emp.HomeLatitude, &emp.HomeLongitude, &emp.HomeRadiusMeters, &emp.HomeLocationSetAt,
		&emp.CreatedAt, &emp.UpdatedAt, &emp.DeletedAt,
	)
	return emp, err
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + employeeColumns + `
		FROM employees
		WHERE id = $1 AND deleted_at IS NULL`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

// ListActive implements employee.EmployeeRepository.
func (r *employeeRepository) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + employeeColumns + `
		FROM employees
		WHERE active = TRUE AND deleted_at IS NULL
		ORDER BY full_name ASC`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// SetHomeLocation implements employee.EmployeeRepository. The WHERE clause
// keeps the write one-shot even under concurrent attempts.
func (r *employeeRepository) SetHomeLocation(ctx context.Context, id string, lat, lon float64, radiusMeters int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees
		SET home_latitude = $2, home_longitude = $3, home_radius_meters = $4,
			home_location_set_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND home_latitude IS NULL AND deleted_at IS NULL
	`
	tag, err := q.Exec(ctx, query, id, lat, lon, radiusMeters)
	if err != nil {
		return fmt.Errorf("failed to set home location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrHomeLocationAlreadySet
	}
	return nil
}
