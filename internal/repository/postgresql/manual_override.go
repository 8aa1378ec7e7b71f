package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/shift"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/database"
)

type manualOverrideRepository struct {
	db *database.DB
}

func NewManualOverrideRepository(db *database.DB) shift.ManualOverrideRepository {
	return &manualOverrideRepository{db: db}
}

// GetByEmployeeAndDay implements shift.ManualOverrideRepository.
func (r *manualOverrideRepository) GetByEmployeeAndDay(ctx context.Context, employeeID string, day time.Time) (*shift.ManualDayOverride, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, day, in_at, out_at, absent, shift_id, rule_source, created_at, updated_at
		FROM manual_day_overrides
		WHERE employee_id = $1 AND day = $2
	`
	var o shift.ManualDayOverride
	err := q.QueryRow(ctx, query, employeeID, day).Scan(
		&o.ID, &o.EmployeeID, &o.Day, &o.InAt, &o.OutAt, &o.Absent, &o.ShiftID, &o.RuleSource,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get manual day override: %w", err)
	}
	return &o, nil
}
