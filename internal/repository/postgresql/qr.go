package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/qr"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/database"
)

type qrRepository struct {
	db *database.DB
}

func NewQRRepository(db *database.DB) qr.QRRepository {
	return &qrRepository{db: db}
}

// GetActiveByValue implements qr.QRRepository.
func (r *qrRepository) GetActiveByValue(ctx context.Context, value string) (*qr.Code, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, value, type, active, created_at, updated_at
		FROM qr_codes
		WHERE value = $1 AND active = TRUE
	`
	var code qr.Code
	err := q.QueryRow(ctx, query, value).Scan(
		&code.ID, &code.Value, &code.Type, &code.Active, &code.CreatedAt, &code.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get qr code: %w", err)
	}
	return &code, nil
}

// ListActivePoints implements qr.QRRepository.
func (r *qrRepository) ListActivePoints(ctx context.Context, codeID string) ([]qr.Point, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, code_id, name, latitude, longitude, radius_meters, active, created_at
		FROM qr_points
		WHERE code_id = $1 AND active = TRUE
	`
	rows, err := q.Query(ctx, query, codeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list qr points: %w", err)
	}
	defer rows.Close()

	var points []qr.Point
	for rows.Next() {
		var p qr.Point
		if err := rows.Scan(&p.ID, &p.CodeID, &p.Name, &p.Latitude, &p.Longitude, &p.RadiusMeters, &p.Active, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan qr point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
