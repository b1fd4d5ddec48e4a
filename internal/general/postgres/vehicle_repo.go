package postgres

import (
	"context"
	"fmt"

	"fleetdesk/internal/domain/fleet"
	"fleetdesk/internal/ports"
)

// VehicleRepo persists owned vehicles using pgx and plain SQL.
type VehicleRepo struct{}

// NewVehicleRepo constructs a new VehicleRepo.
func NewVehicleRepo() ports.VehicleRepository {
	return &VehicleRepo{}
}

// GetByID fetches a vehicle by primary key.
func (repo *VehicleRepo) GetByID(ctx context.Context, id string) (*fleet.Vehicle, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var (
		out              fleet.Vehicle
		availabilityText string
	)
	err = tx.QueryRow(ctx, `
		SELECT id, plate_number, model, capacity, availability, driver_id, created_at
		FROM vehicles
		WHERE id = $1
	`, id).Scan(
		&out.ID, &out.PlateNumber, &out.Model, &out.Capacity,
		&availabilityText, &out.DriverID, &out.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("select vehicle: %w", err)
	}

	out.Availability = fleet.VehicleAvailability(availabilityText)
	return &out, nil
}

// ListActive returns every vehicle that is not out of service.
func (repo *VehicleRepo) ListActive(ctx context.Context) ([]fleet.Vehicle, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, plate_number, model, capacity, availability, driver_id, created_at
		FROM vehicles
		WHERE availability != $1
		ORDER BY id
	`, string(fleet.VehicleOutOfService))
	if err != nil {
		return nil, fmt.Errorf("query active vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []fleet.Vehicle
	for rows.Next() {
		var (
			v                fleet.Vehicle
			availabilityText string
		)
		if err := rows.Scan(
			&v.ID, &v.PlateNumber, &v.Model, &v.Capacity,
			&availabilityText, &v.DriverID, &v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		v.Availability = fleet.VehicleAvailability(availabilityText)
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return vehicles, nil
}
