package postgres

import (
	"context"
	"fmt"

	"fleetdesk/internal/domain/trip"
	"fleetdesk/internal/ports"

	"github.com/jackc/pgx/v5"
)

// TripRepo persists trips using pgx and plain SQL.
type TripRepo struct{}

// NewTripRepo constructs a new TripRepo.
func NewTripRepo() ports.TripRepository {
	return &TripRepo{}
}

const tripColumns = `
	id, status, departure_time, arrival_time,
	actual_departure_time, actual_arrival_time,
	driver_id, vehicle_id, outsourced_vehicle_id,
	source_booking_request_id, combined_into_id, total_cost, cancellation_reason,
	created_at, updated_at`

func scanTrip(row pgx.Row) (*trip.Trip, error) {
	var (
		out        trip.Trip
		statusText string
	)
	err := row.Scan(
		&out.ID, &statusText, &out.DepartureTime, &out.ArrivalTime,
		&out.ActualDepartureTime, &out.ActualArrivalTime,
		&out.DriverID, &out.VehicleID, &out.OutsourcedVehicleID,
		&out.SourceBookingRequestID, &out.CombinedIntoID, &out.TotalCost, &out.CancellationReason,
		&out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	status, err := trip.ParseStatus(statusText)
	if err != nil {
		return nil, err
	}
	out.Status = status
	return &out, nil
}

// Create inserts a new trip row.
func (repo *TripRepo) Create(ctx context.Context, t *trip.Trip) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO trips (
			id, status, departure_time, arrival_time,
			actual_departure_time, actual_arrival_time,
			driver_id, vehicle_id, outsourced_vehicle_id,
			source_booking_request_id, combined_into_id, total_cost, cancellation_reason,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		t.ID,
		t.Status.String(),
		t.DepartureTime,
		t.ArrivalTime,
		t.ActualDepartureTime,
		t.ActualArrivalTime,
		t.DriverID,
		t.VehicleID,
		t.OutsourcedVehicleID,
		t.SourceBookingRequestID,
		t.CombinedIntoID,
		t.TotalCost,
		t.CancellationReason,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trip: %w", err)
	}
	return nil
}

// GetByID fetches a trip by primary key.
func (repo *TripRepo) GetByID(ctx context.Context, id string) (*trip.Trip, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	t, err := scanTrip(tx.QueryRow(ctx, `SELECT`+tripColumns+` FROM trips WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("select trip: %w", err)
	}
	return t, nil
}

// Update rewrites the mutable columns of a trip.
func (repo *TripRepo) Update(ctx context.Context, t *trip.Trip) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE trips
		SET status = $2,
			departure_time = $3,
			arrival_time = $4,
			actual_departure_time = $5,
			actual_arrival_time = $6,
			driver_id = $7,
			vehicle_id = $8,
			outsourced_vehicle_id = $9,
			source_booking_request_id = $10,
			combined_into_id = $11,
			total_cost = $12,
			cancellation_reason = $13,
			updated_at = $14
		WHERE id = $1
	`,
		t.ID,
		t.Status.String(),
		t.DepartureTime,
		t.ArrivalTime,
		t.ActualDepartureTime,
		t.ActualArrivalTime,
		t.DriverID,
		t.VehicleID,
		t.OutsourcedVehicleID,
		t.SourceBookingRequestID,
		t.CombinedIntoID,
		t.TotalCost,
		t.CancellationReason,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update trip %s: row missing", t.ID)
	}
	return nil
}

// Delete removes a trip row. Stops, tickets and access codes must be
// cleaned up by the caller first.
func (repo *TripRepo) Delete(ctx context.Context, id string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	return nil
}

// ListByBookingRequest returns every trip that holds tickets of the given
// booking request, newest first.
func (repo *TripRepo) ListByBookingRequest(ctx context.Context, bookingRequestID string) ([]*trip.Trip, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT`+tripColumns+`
		FROM trips
		WHERE id IN (
			SELECT DISTINCT trip_id
			FROM trip_tickets
			WHERE booking_request_id = $1
		)
		ORDER BY created_at DESC
	`, bookingRequestID)
	if err != nil {
		return nil, fmt.Errorf("query trips by booking request: %w", err)
	}
	defer rows.Close()

	var trips []*trip.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return trips, nil
}

// ListCombinedInto returns the trips superseded by the given combined trip.
func (repo *TripRepo) ListCombinedInto(ctx context.Context, combinedTripID string) ([]*trip.Trip, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT`+tripColumns+`
		FROM trips
		WHERE combined_into_id = $1
		ORDER BY id
	`, combinedTripID)
	if err != nil {
		return nil, fmt.Errorf("query combined trips: %w", err)
	}
	defer rows.Close()

	var trips []*trip.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return trips, nil
}
