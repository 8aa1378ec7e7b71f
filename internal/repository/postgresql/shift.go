package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/shift"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/database"
)

type shiftRepository struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) shift.ShiftRepository {
	return &shiftRepository{db: db}
}

// GetByID implements shift.ShiftRepository.
func (r *shiftRepository) GetByID(ctx context.Context, id string) (shift.DepartmentShift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, department_id, name, start_minute, end_minute, break_minutes, active, created_at, updated_at
		FROM department_shifts
		WHERE id = $1
	`
	var s shift.DepartmentShift
	err := q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.DepartmentID, &s.Name, &s.StartTime, &s.EndTime, &s.BreakMinutes, &s.Active, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.DepartmentShift{}, shift.ErrShiftNotFound
		}
		return shift.DepartmentShift{}, fmt.Errorf("failed to get shift: %w", err)
	}
	return s, nil
}

// ListActiveByDepartment implements shift.ShiftRepository.
func (r *shiftRepository) ListActiveByDepartment(ctx context.Context, departmentID string) ([]shift.DepartmentShift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, department_id, name, start_minute, end_minute, break_minutes, active, created_at, updated_at
		FROM department_shifts
		WHERE department_id = $1 AND active = TRUE
		ORDER BY start_minute ASC
	`
	rows, err := q.Query(ctx, query, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	defer rows.Close()

	var shifts []shift.DepartmentShift
	for rows.Next() {
		var s shift.DepartmentShift
		if err := rows.Scan(&s.ID, &s.DepartmentID, &s.Name, &s.StartTime, &s.EndTime, &s.BreakMinutes, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, s)
	}
	return shifts, rows.Err()
}
