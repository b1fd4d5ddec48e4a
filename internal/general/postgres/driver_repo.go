package postgres

import (
	"context"
	"fmt"

	"fleetdesk/internal/domain/fleet"
	"fleetdesk/internal/ports"
)

// DriverRepo persists drivers using pgx and plain SQL.
type DriverRepo struct{}

// NewDriverRepo constructs a new DriverRepo.
func NewDriverRepo() ports.DriverRepository {
	return &DriverRepo{}
}

// GetByID fetches a driver by primary key.
func (repo *DriverRepo) GetByID(ctx context.Context, id string) (*fleet.Driver, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var (
		out              fleet.Driver
		availabilityText string
	)
	err = tx.QueryRow(ctx, `
		SELECT id, name, phone, availability, vehicle_id, created_at
		FROM drivers
		WHERE id = $1
	`, id).Scan(
		&out.ID, &out.Name, &out.Phone, &availabilityText, &out.VehicleID, &out.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("select driver: %w", err)
	}

	out.Availability = fleet.DriverAvailability(availabilityText)
	return &out, nil
}

// UpdateAvailability rewrites the availability flag of a driver.
func (repo *DriverRepo) UpdateAvailability(ctx context.Context, id string, availability fleet.DriverAvailability) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE drivers
		SET availability = $2
		WHERE id = $1
	`, id, string(availability))
	if err != nil {
		return fmt.Errorf("update driver availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update driver %s: row missing", id)
	}
	return nil
}
