package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/event"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/database"
)

type eventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) event.EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `
	id, employee_id, device_id, type, timestamp,
	latitude, longitude, accuracy_meters, location_status,
	flags, source, by_admin, note,
	deleted_at, deleted_by_admin, created_at, updated_at`

func scanEvent(row pgx.Row) (event.Event, error) {
	var ev event.Event
	var flagsJSON []byte
	err := row.Scan(
		&ev.ID, &ev.EmployeeID, &ev.DeviceID, &ev.Type, &ev.Timestamp,
		&ev.Latitude, &ev.Longitude, &ev.AccuracyMeters, &ev.LocationStatus,
		&flagsJSON, &ev.Source, &ev.ByAdmin, &ev.Note,
		&ev.DeletedAt, &ev.DeletedByAdmin, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return event.Event{}, err
	}
	if len(flagsJSON) > 0 {
		if err := json.Unmarshal(flagsJSON, &ev.Flags); err != nil {
			return event.Event{}, fmt.Errorf("unmarshal event flags: %w", err)
		}
	}
	return ev, nil
}

// Create implements event.EventRepository.
func (r *eventRepository) Create(ctx context.Context, ev event.Event) (event.Event, error) {
	q := GetQuerier(ctx, r.db)

	flagsJSON, err := json.Marshal(ev.Flags)
	if err != nil {
		return event.Event{}, fmt.Errorf("marshal event flags: %w", err)
	}

	query := `
		INSERT INTO attendance_events (
			id, employee_id, device_id, type, timestamp,
			latitude, longitude, accuracy_meters, location_status,
			flags, source, by_admin, note
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`
	err = q.QueryRow(ctx, query,
		ev.ID, ev.EmployeeID, ev.DeviceID, ev.Type, ev.Timestamp,
		ev.Latitude, ev.Longitude, ev.AccuracyMeters, ev.LocationStatus,
		flagsJSON, ev.Source, ev.ByAdmin, ev.Note,
	).Scan(&ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return event.Event{}, fmt.Errorf("failed to create attendance event: %w", err)
	}
	return ev, nil
}

// GetByID implements event.EventRepository.
func (r *eventRepository) GetByID(ctx context.Context, id string) (event.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + eventColumns + `
		FROM attendance_events
		WHERE id = $1 AND deleted_at IS NULL`

	ev, err := scanEvent(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Event{}, event.ErrEventNotFound
		}
		return event.Event{}, fmt.Errorf("failed to get attendance event: %w", err)
	}
	return ev, nil
}

// Update implements event.EventRepository.
func (r *eventRepository) Update(ctx context.Context, ev event.Event) error {
	q := GetQuerier(ctx, r.db)

	flagsJSON, err := json.Marshal(ev.Flags)
	if err != nil {
		return fmt.Errorf("marshal event flags: %w", err)
	}

	query := `
		UPDATE attendance_events
		SET type = $2, timestamp = $3, flags = $4, source = $5,
			by_admin = $6, note = $7, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := q.Exec(ctx, query, ev.ID, ev.Type, ev.Timestamp, flagsJSON, ev.Source, ev.ByAdmin, ev.Note)
	if err != nil {
		return fmt.Errorf("failed to update attendance event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

// SoftDelete implements event.EventRepository.
func (r *eventRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_events
		SET deleted_at = $2, deleted_by_admin = TRUE, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := q.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to soft delete attendance event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

// LatestAtOrBefore implements event.EventRepository.
func (r *eventRepository) LatestAtOrBefore(ctx context.Context, employeeID string, at time.Time) (*event.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + eventColumns + `
		FROM attendance_events
		WHERE employee_id = $1 AND timestamp <= $2 AND deleted_at IS NULL
		ORDER BY timestamp DESC
		LIMIT 1`

	ev, err := scanEvent(q.QueryRow(ctx, query, employeeID, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest attendance event: %w", err)
	}
	return &ev, nil
}

// ListBetween implements event.EventRepository.
func (r *eventRepository) ListBetween(ctx context.Context, employeeID string, start, end time.Time) ([]event.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + eventColumns + `
		FROM attendance_events
		WHERE employee_id = $1 AND timestamp >= $2 AND timestamp < $3 AND deleted_at IS NULL
		ORDER BY timestamp ASC`

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// LatestQRScanAt implements event.EventRepository. QR-originated events are
// the ones whose flags carry a qr sub-record.
func (r *eventRepository) LatestQRScanAt(ctx context.Context, employeeID string) (*time.Time, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT timestamp
		FROM attendance_events
		WHERE employee_id = $1 AND flags ? 'qr' AND deleted_at IS NULL
		ORDER BY timestamp DESC
		LIMIT 1
	`
	var ts time.Time
	if err := q.QueryRow(ctx, query, employeeID).Scan(&ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest qr scan: %w", err)
	}
	return &ts, nil
}
