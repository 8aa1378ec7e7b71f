package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/shift"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/database"
)

type schedulePlanRepository struct {
	db *database.DB
}

func NewSchedulePlanRepository(db *database.DB) shift.SchedulePlanRepository {
	return &schedulePlanRepository{db: db}
}

// ListActiveForDay implements shift.SchedulePlanRepository. Target filtering
// against the employee happens in the resolver, not here.
func (r *schedulePlanRepository) ListActiveForDay(ctx context.Context, departmentID string, day time.Time) ([]shift.SchedulePlan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, department_id, target_type, employee_ids, shift_id,
			   planned_minutes, break_minutes, grace_minutes,
			   start_date, end_date, locked, active, created_at, updated_at
		FROM schedule_plans
		WHERE department_id = $1 AND active = TRUE
		  AND start_date <= $2 AND end_date >= $2
		ORDER BY created_at ASC
	`
	rows, err := q.Query(ctx, query, departmentID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule plans: %w", err)
	}
	defer rows.Close()

	var plans []shift.SchedulePlan
	for rows.Next() {
		var p shift.SchedulePlan
		if err := rows.Scan(
			&p.ID, &p.DepartmentID, &p.TargetType, &p.EmployeeIDs, &p.ShiftID,
			&p.PlannedMinutes, &p.BreakMinutes, &p.GraceMinutes,
			&p.StartDate, &p.EndDate, &p.Locked, &p.Active, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan schedule plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}
