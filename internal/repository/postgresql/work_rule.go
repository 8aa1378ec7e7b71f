package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/shift"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/database"
)

type workRuleRepository struct {
	db *database.DB
}

func NewWorkRuleRepository(db *database.DB) shift.WorkRuleRepository {
	return &workRuleRepository{db: db}
}

// GetByDepartment implements shift.WorkRuleRepository.
func (r *workRuleRepository) GetByDepartment(ctx context.Context, departmentID string) (*shift.WorkRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, department_id, planned_minutes, break_minutes, grace_minutes, created_at, updated_at
		FROM work_rules
		WHERE department_id = $1
	`
	var rule shift.WorkRule
	err := q.QueryRow(ctx, query, departmentID).Scan(
		&rule.ID, &rule.DepartmentID, &rule.PlannedMinutes, &rule.BreakMinutes, &rule.GraceMinutes,
		&rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get work rule: %w", err)
	}
	return &rule, nil
}
