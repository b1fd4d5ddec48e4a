package postgres

import (
	"context"
	"fmt"

	"fleetdesk/internal/domain/trip"
	"fleetdesk/internal/ports"
)

// TripStopRepo persists trip stops using pgx and plain SQL.
type TripStopRepo struct{}

// NewTripStopRepo constructs a new TripStopRepo.
func NewTripStopRepo() ports.TripStopRepository {
	return &TripStopRepo{}
}

// CreateAll inserts the given stops.
func (repo *TripStopRepo) CreateAll(ctx context.Context, stops []trip.Stop) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	for _, stop := range stops {
		if _, err := tx.Exec(ctx, `
			INSERT INTO trip_stops (id, trip_id, booking_request_id, stop_type, stop_order, location_id, planned_time)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			stop.ID,
			stop.TripID,
			stop.BookingRequestID,
			string(stop.Type),
			stop.Order,
			stop.LocationID,
			stop.PlannedTime,
		); err != nil {
			return fmt.Errorf("insert trip stop: %w", err)
		}
	}
	return nil
}

// ListByTrip returns the stops of a trip ordered by stop_order.
func (repo *TripStopRepo) ListByTrip(ctx context.Context, tripID string) ([]trip.Stop, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, trip_id, booking_request_id, stop_type, stop_order, location_id, planned_time
		FROM trip_stops
		WHERE trip_id = $1
		ORDER BY stop_order
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("query trip stops: %w", err)
	}
	defer rows.Close()

	var stops []trip.Stop
	for rows.Next() {
		var (
			stop     trip.Stop
			typeText string
		)
		if err := rows.Scan(&stop.ID, &stop.TripID, &stop.BookingRequestID, &typeText, &stop.Order, &stop.LocationID, &stop.PlannedTime); err != nil {
			return nil, fmt.Errorf("scan trip stop: %w", err)
		}
		stop.Type = trip.StopType(typeText)
		stops = append(stops, stop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return stops, nil
}

// ReplaceForTrip swaps the full stop list of a trip in one shot.
func (repo *TripStopRepo) ReplaceForTrip(ctx context.Context, tripID string, stops []trip.Stop) error {
	if err := repo.DeleteByTrip(ctx, tripID); err != nil {
		return err
	}
	return repo.CreateAll(ctx, stops)
}

// DeleteByTrip removes every stop of a trip.
func (repo *TripStopRepo) DeleteByTrip(ctx context.Context, tripID string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM trip_stops WHERE trip_id = $1`, tripID); err != nil {
		return fmt.Errorf("delete trip stops: %w", err)
	}
	return nil
}
