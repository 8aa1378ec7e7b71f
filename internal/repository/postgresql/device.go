package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/device"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/database"
)

type deviceRepository struct {
	db *database.DB
}

func NewDeviceRepository(db *database.DB) device.DeviceRepository {
	return &deviceRepository{db: db}
}

const deviceColumns = `
	id, employee_id, fingerprint, name, claim_secret_hash, active, claimed_at, created_at, updated_at`

func scanDevice(row pgx.Row) (device.Device, error) {
	var d device.Device
	err := row.Scan(
		&d.ID, &d.EmployeeID, &d.Fingerprint, &d.Name, &d.ClaimSecretHash,
		&d.Active, &d.ClaimedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

// GetByID implements device.DeviceRepository.
func (r *deviceRepository) GetByID(ctx context.Context, id string) (device.Device, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + deviceColumns + `
		FROM devices
		WHERE id = $1`

	d, err := scanDevice(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return device.Device{}, device.ErrDeviceNotFound
		}
		return device.Device{}, fmt.Errorf("failed to get device: %w", err)
	}
	return d, nil
}

// GetByFingerprint implements device.DeviceRepository.
func (r *deviceRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*device.Device, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + deviceColumns + `
		FROM devices
		WHERE fingerprint = $1`

	d, err := scanDevice(q.QueryRow(ctx, query, fingerprint))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get device by fingerprint: %w", err)
	}
	return &d, nil
}

// Create implements device.DeviceRepository.
func (r *deviceRepository) Create(ctx context.Context, d device.Device) (device.Device, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO devices (id, fingerprint, name, claim_secret_hash, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := q.QueryRow(ctx, query, d.ID, d.Fingerprint, d.Name, d.ClaimSecretHash, d.Active).
		Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return device.Device{}, fmt.Errorf("failed to create device: %w", err)
	}
	return d, nil
}

// Claim implements device.DeviceRepository. The employee_id guard keeps the
// claim single-shot under races.
func (r *deviceRepository) Claim(ctx context.Context, id, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE devices
		SET employee_id = $2, claimed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND employee_id IS NULL
	`
	tag, err := q.Exec(ctx, query, id, employeeID)
	if err != nil {
		return fmt.Errorf("failed to claim device: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return device.ErrDeviceAlreadyClaimed
	}
	return nil
}
