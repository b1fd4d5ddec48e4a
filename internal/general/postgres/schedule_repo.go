package postgres

import (
	"context"
	"fmt"
	"time"

	"fleetdesk/internal/domain/calendar"
	"fleetdesk/internal/ports"

	"github.com/jackc/pgx/v5"
)

// ScheduleRepo persists calendar schedules using pgx and plain SQL.
type ScheduleRepo struct{}

// NewScheduleRepo constructs a new ScheduleRepo.
func NewScheduleRepo() ports.ScheduleRepository {
	return &ScheduleRepo{}
}

const scheduleColumns = `
	id, title, description, start_time, end_time,
	driver_id, vehicle_id, trip_id, leave_request_id, vehicle_service_id,
	created_at`

// Create inserts a schedule row.
func (repo *ScheduleRepo) Create(ctx context.Context, s *calendar.Schedule) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO schedules (
			id, title, description, start_time, end_time,
			driver_id, vehicle_id, trip_id, leave_request_id, vehicle_service_id,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		s.ID,
		s.Title,
		s.Description,
		s.StartTime,
		s.EndTime,
		s.DriverID,
		s.VehicleID,
		s.TripID,
		s.LeaveRequestID,
		s.VehicleServiceID,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

// GetByID fetches a schedule by primary key.
func (repo *ScheduleRepo) GetByID(ctx context.Context, id string) (*calendar.Schedule, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var out calendar.Schedule
	err = tx.QueryRow(ctx, `SELECT`+scheduleColumns+` FROM schedules WHERE id = $1`, id).Scan(
		&out.ID, &out.Title, &out.Description, &out.StartTime, &out.EndTime,
		&out.DriverID, &out.VehicleID, &out.TripID, &out.LeaveRequestID, &out.VehicleServiceID,
		&out.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("select schedule: %w", err)
	}
	return &out, nil
}

// Delete removes a schedule row.
func (repo *ScheduleRepo) Delete(ctx context.Context, id string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}

func listSchedules(rows pgx.Rows) ([]calendar.Schedule, error) {
	defer rows.Close()

	var schedules []calendar.Schedule
	for rows.Next() {
		var s calendar.Schedule
		if err := rows.Scan(
			&s.ID, &s.Title, &s.Description, &s.StartTime, &s.EndTime,
			&s.DriverID, &s.VehicleID, &s.TripID, &s.LeaveRequestID, &s.VehicleServiceID,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return schedules, nil
}

// ListForDriverFrom returns the driver's schedules starting at or after from.
func (repo *ScheduleRepo) ListForDriverFrom(ctx context.Context, driverID string, from time.Time) ([]calendar.Schedule, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT`+scheduleColumns+`
		FROM schedules
		WHERE driver_id = $1 AND start_time >= $2
		ORDER BY start_time
	`, driverID, from)
	if err != nil {
		return nil, fmt.Errorf("query schedules for driver: %w", err)
	}
	return listSchedules(rows)
}

// ListForVehicleFrom returns the vehicle's schedules starting at or after from.
func (repo *ScheduleRepo) ListForVehicleFrom(ctx context.Context, vehicleID string, from time.Time) ([]calendar.Schedule, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT`+scheduleColumns+`
		FROM schedules
		WHERE vehicle_id = $1 AND start_time >= $2
		ORDER BY start_time
	`, vehicleID, from)
	if err != nil {
		return nil, fmt.Errorf("query schedules for vehicle: %w", err)
	}
	return listSchedules(rows)
}

// DeleteByTrip removes the schedule rows tied to a trip.
func (repo *ScheduleRepo) DeleteByTrip(ctx context.Context, tripID string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM schedules WHERE trip_id = $1`, tripID); err != nil {
		return fmt.Errorf("delete schedules by trip: %w", err)
	}
	return nil
}

// DeleteByLeaveRequest removes the schedule rows tied to a leave request.
func (repo *ScheduleRepo) DeleteByLeaveRequest(ctx context.Context, leaveRequestID string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM schedules WHERE leave_request_id = $1`, leaveRequestID); err != nil {
		return fmt.Errorf("delete schedules by leave request: %w", err)
	}
	return nil
}

// DeleteByVehicleService removes the schedule rows tied to a service window.
func (repo *ScheduleRepo) DeleteByVehicleService(ctx context.Context, vehicleServiceID string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM schedules WHERE vehicle_service_id = $1`, vehicleServiceID); err != nil {
		return fmt.Errorf("delete schedules by vehicle service: %w", err)
	}
	return nil
}
