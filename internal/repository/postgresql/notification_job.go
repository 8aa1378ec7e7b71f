package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/notification"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/database"
)

type notificationJobRepository struct {
	db *database.DB
}

func NewNotificationJobRepository(db *database.DB) notification.JobRepository {
	return &notificationJobRepository{db: db}
}

// CreateBatch implements notification.JobRepository. The unique constraint
// on event_hash plus ON CONFLICT DO NOTHING is what makes monitor passes
// idempotent.
func (r *notificationJobRepository) CreateBatch(ctx context.Context, jobs []notification.Job) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO notification_jobs (
			id, employee_id, rule, audience, risk, day, event_at,
			title, description, summary, payload, scheduled_at, status, event_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (event_hash) DO NOTHING
	`

	inserted := 0
	for _, j := range jobs {
		payloadJSON, err := json.Marshal(j.Payload)
		if err != nil {
			return inserted, fmt.Errorf("failed to marshal job payload: %w", err)
		}
		tag, err := q.Exec(ctx, query,
			j.ID, j.EmployeeID, j.Rule, j.Audience, j.Risk, j.Day, j.EventAt,
			j.Title, j.Description, j.Summary, payloadJSON, j.ScheduledAt, j.Status, j.EventHash,
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to create notification job: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// ExistingHashes implements notification.JobRepository.
func (r *notificationJobRepository) ExistingHashes(ctx context.Context, hashes []string) (map[string]bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT event_hash FROM notification_jobs WHERE event_hash = ANY($1)`
	rows, err := q.Query(ctx, query, hashes)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing hashes: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool, len(hashes))
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("failed to scan event hash: %w", err)
		}
		existing[h] = true
	}
	return existing, rows.Err()
}

// ListByEmployee implements notification.JobRepository.
func (r *notificationJobRepository) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]notification.Job, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, rule, audience, risk, day, event_at,
			   title, description, summary, payload, scheduled_at, status, event_hash, created_at
		FROM notification_jobs
		WHERE employee_id = $1
		ORDER BY event_at DESC
		LIMIT $2
	`
	rows, err := q.Query(ctx, query, employeeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notification jobs: %w", err)
	}
	defer rows.Close()

	var jobs []notification.Job
	for rows.Next() {
		var j notification.Job
		var payloadJSON []byte
		if err := rows.Scan(
			&j.ID, &j.EmployeeID, &j.Rule, &j.Audience, &j.Risk, &j.Day, &j.EventAt,
			&j.Title, &j.Description, &j.Summary, &payloadJSON, &j.ScheduledAt, &j.Status, &j.EventHash, &j.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification job: %w", err)
		}
		if len(payloadJSON) > 0 {
			if err := json.Unmarshal(payloadJSON, &j.Payload); err != nil {
				return nil, fmt.Errorf("failed to unmarshal job payload: %w", err)
			}
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
