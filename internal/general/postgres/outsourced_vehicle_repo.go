package postgres

import (
	"context"
	"fmt"

	"fleetdesk/internal/domain/fleet"
	"fleetdesk/internal/ports"
)

// OutsourcedVehicleRepo persists rented vehicle/driver pairs.
type OutsourcedVehicleRepo struct{}

// NewOutsourcedVehicleRepo constructs a new OutsourcedVehicleRepo.
func NewOutsourcedVehicleRepo() ports.OutsourcedVehicleRepository {
	return &OutsourcedVehicleRepo{}
}

// Create inserts an outsourced vehicle row.
func (repo *OutsourcedVehicleRepo) Create(ctx context.Context, v *fleet.OutsourcedVehicle) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO outsourced_vehicles (
			id, driver_name, driver_phone, plate_number, model, capacity, cost, vendor_name, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		v.ID,
		v.DriverName,
		v.DriverPhone,
		v.PlateNumber,
		v.Model,
		v.Capacity,
		v.Cost,
		v.VendorName,
		v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outsourced vehicle: %w", err)
	}
	return nil
}

// GetByID fetches an outsourced vehicle by primary key.
func (repo *OutsourcedVehicleRepo) GetByID(ctx context.Context, id string) (*fleet.OutsourcedVehicle, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var out fleet.OutsourcedVehicle
	err = tx.QueryRow(ctx, `
		SELECT id, driver_name, driver_phone, plate_number, model, capacity, cost, vendor_name, created_at
		FROM outsourced_vehicles
		WHERE id = $1
	`, id).Scan(
		&out.ID, &out.DriverName, &out.DriverPhone, &out.PlateNumber, &out.Model,
		&out.Capacity, &out.Cost, &out.VendorName, &out.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("select outsourced vehicle: %w", err)
	}
	return &out, nil
}
