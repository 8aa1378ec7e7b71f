package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/approval"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/database"
)

type approvalRepository struct {
	db *database.DB
}

func NewApprovalRepository(db *database.DB) approval.ApprovalRepository {
	return &approvalRepository{db: db}
}

const approvalColumns = `
	id, employee_id, device_id, day, token, status,
	requested_at, approved_at, consumed_at, expires_at, consumed_event_id,
	notify_count, last_notified_at, last_notify_targets, created_at, updated_at`

func scanApproval(row pgx.Row) (approval.ExtraCheckinApproval, error) {
	var a approval.ExtraCheckinApproval
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.DeviceID, &a.Day, &a.Token, &a.Status,
		&a.RequestedAt, &a.ApprovedAt, &a.ConsumedAt, &a.ExpiresAt, &a.ConsumedEventID,
		&a.NotifyCount, &a.LastNotifiedAt, &a.LastNotifyTargets, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

// Create implements approval.ApprovalRepository.
func (r *approvalRepository) Create(ctx context.Context, a approval.ExtraCheckinApproval) (approval.ExtraCheckinApproval, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO extra_checkin_approvals (
			id, employee_id, device_id, day, token, status,
			requested_at, expires_at, notify_count, last_notify_targets
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		a.ID, a.EmployeeID, a.DeviceID, a.Day, a.Token, a.Status,
		a.RequestedAt, a.ExpiresAt, a.NotifyCount, a.LastNotifyTargets,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return approval.ExtraCheckinApproval{}, fmt.Errorf("failed to create approval: %w", err)
	}
	return a, nil
}

// GetOpenByEmployeeAndDay implements approval.ApprovalRepository.
func (r *approvalRepository) GetOpenByEmployeeAndDay(ctx context.Context, employeeID string, day time.Time) (*approval.ExtraCheckinApproval, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + approvalColumns + `
		FROM extra_checkin_approvals
		WHERE employee_id = $1 AND day = $2 AND status IN ('PENDING', 'APPROVED')
		ORDER BY requested_at DESC
		LIMIT 1`

	a, err := scanApproval(q.QueryRow(ctx, query, employeeID, day))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open approval: %w", err)
	}
	return &a, nil
}

// GetByToken implements approval.ApprovalRepository.
func (r *approvalRepository) GetByToken(ctx context.Context, token string) (*approval.ExtraCheckinApproval, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + approvalColumns + `
		FROM extra_checkin_approvals
		WHERE token = $1`

	a, err := scanApproval(q.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get approval by token: %w", err)
	}
	return &a, nil
}

// Update implements approval.ApprovalRepository.
func (r *approvalRepository) Update(ctx context.Context, a approval.ExtraCheckinApproval) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE extra_checkin_approvals
		SET status = $2, approved_at = $3, notify_count = $4,
			last_notified_at = $5, last_notify_targets = $6, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query, a.ID, a.Status, a.ApprovedAt, a.NotifyCount, a.LastNotifiedAt, a.LastNotifyTargets)
	if err != nil {
		return fmt.Errorf("failed to update approval: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return approval.ErrApprovalNotFound
	}
	return nil
}

// MarkConsumed implements approval.ApprovalRepository. The status guard makes
// consumption single-shot even when two check-ins race.
func (r *approvalRepository) MarkConsumed(ctx context.Context, id, eventID string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE extra_checkin_approvals
		SET status = 'CONSUMED', consumed_at = $2, consumed_event_id = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'APPROVED'
	`
	tag, err := q.Exec(ctx, query, id, at, eventID)
	if err != nil {
		return fmt.Errorf("failed to consume approval: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return approval.ErrApprovalAlreadyConsumed
	}
	return nil
}

// ExpireOverdue implements approval.ApprovalRepository.
func (r *approvalRepository) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE extra_checkin_approvals
		SET status = 'EXPIRED', updated_at = NOW()
		WHERE status IN ('PENDING', 'APPROVED') AND expires_at <= $1
	`
	tag, err := q.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire approvals: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
