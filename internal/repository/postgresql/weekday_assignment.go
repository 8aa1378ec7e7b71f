package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/shift"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/database"
)

type weekdayAssignmentRepository struct {
	db *database.DB
}

func NewWeekdayAssignmentRepository(db *database.DB) shift.WeekdayAssignmentRepository {
	return &weekdayAssignmentRepository{db: db}
}

// ListByDepartmentAndWeekday implements shift.WeekdayAssignmentRepository.
func (r *weekdayAssignmentRepository) ListByDepartmentAndWeekday(ctx context.Context, departmentID string, weekday time.Weekday) ([]shift.WeekdayAssignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, department_id, weekday, shift_id, created_at
		FROM weekday_assignments
		WHERE department_id = $1 AND weekday = $2
	`
	rows, err := q.Query(ctx, query, departmentID, int(weekday))
	if err != nil {
		return nil, fmt.Errorf("failed to list weekday assignments: %w", err)
	}
	defer rows.Close()

	var assignments []shift.WeekdayAssignment
	for rows.Next() {
		var a shift.WeekdayAssignment
		if err := rows.Scan(&a.ID, &a.DepartmentID, &a.Weekday, &a.ShiftID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan weekday assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
