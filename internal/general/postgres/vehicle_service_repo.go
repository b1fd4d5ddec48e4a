package postgres

import (
	"context"
	"fmt"

	"fleetdesk/internal/domain/fleet"
	"fleetdesk/internal/ports"
)

// VehicleServiceRepo persists vehicle maintenance windows.
type VehicleServiceRepo struct{}

// NewVehicleServiceRepo constructs a new VehicleServiceRepo.
func NewVehicleServiceRepo() ports.VehicleServiceRepository {
	return &VehicleServiceRepo{}
}

// Create inserts a vehicle service row.
func (repo *VehicleServiceRepo) Create(ctx context.Context, vs *fleet.VehicleService) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO vehicle_services (
			id, vehicle_id, status, start_time, end_time, description, schedule_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		vs.ID,
		vs.VehicleID,
		string(vs.Status),
		vs.StartTime,
		vs.EndTime,
		vs.Description,
		vs.ScheduleID,
		vs.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert vehicle service: %w", err)
	}
	return nil
}

// GetByID fetches a vehicle service window by primary key.
func (repo *VehicleServiceRepo) GetByID(ctx context.Context, id string) (*fleet.VehicleService, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var (
		out        fleet.VehicleService
		statusText string
	)
	err = tx.QueryRow(ctx, `
		SELECT id, vehicle_id, status, start_time, end_time, description, schedule_id, created_at
		FROM vehicle_services
		WHERE id = $1
	`, id).Scan(
		&out.ID, &out.VehicleID, &statusText, &out.StartTime, &out.EndTime,
		&out.Description, &out.ScheduleID, &out.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("select vehicle service: %w", err)
	}

	out.Status = fleet.AbsenceStatus(statusText)
	return &out, nil
}

// Update rewrites the mutable columns of a vehicle service window.
func (repo *VehicleServiceRepo) Update(ctx context.Context, vs *fleet.VehicleService) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE vehicle_services
		SET status = $2, schedule_id = $3
		WHERE id = $1
	`, vs.ID, string(vs.Status), vs.ScheduleID)
	if err != nil {
		return fmt.Errorf("update vehicle service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update vehicle service %s: row missing", vs.ID)
	}
	return nil
}
