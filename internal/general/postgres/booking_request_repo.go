package postgres

import (
	"context"
	"fmt"

	"fleetdesk/internal/domain/booking"
	"fleetdesk/internal/ports"
)

// BookingRequestRepo persists booking requests using pgx and plain SQL.
// Passenger ids live in the booking_request_passengers side table.
type BookingRequestRepo struct{}

// NewBookingRequestRepo constructs a new BookingRequestRepo.
func NewBookingRequestRepo() ports.BookingRequestRepository {
	return &BookingRequestRepo{}
}

// Create inserts the request row plus one passenger row per passenger.
func (repo *BookingRequestRepo) Create(ctx context.Context, req *booking.Request) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO booking_requests (
			id, status, priority, trip_type,
			requester_id, number_of_passengers, contact_name, contact_phone,
			departure_time, arrival_time, departure_location_id, arrival_location_id,
			linked_request_id, status_reason, trip_purpose, note,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`,
		req.ID,
		req.Status.String(),
		req.Priority.String(),
		string(req.Type),
		req.RequesterID,
		req.NumberOfPassengers,
		req.ContactName,
		req.ContactPhone,
		req.DepartureTime,
		req.ArrivalTime,
		req.DepartureLocationID,
		req.ArrivalLocationID,
		req.LinkedRequestID,
		req.StatusReason,
		req.TripPurpose,
		req.Note,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking request: %w", err)
	}

	for _, passengerID := range req.PassengerIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO booking_request_passengers (booking_request_id, passenger_id)
			VALUES ($1, $2)
		`, req.ID, passengerID); err != nil {
			return fmt.Errorf("insert booking request passenger: %w", err)
		}
	}

	return nil
}

// GetByID fetches a request with its passenger list.
func (repo *BookingRequestRepo) GetByID(ctx context.Context, id string) (*booking.Request, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var (
		out          booking.Request
		statusText   string
		priorityText string
		typeText     string
	)
	err = tx.QueryRow(ctx, `
		SELECT
			id, status, priority, trip_type,
			requester_id, number_of_passengers, contact_name, contact_phone,
			departure_time, arrival_time, departure_location_id, arrival_location_id,
			linked_request_id, status_reason, trip_purpose, note,
			created_at, updated_at
		FROM booking_requests
		WHERE id = $1
	`, id).Scan(
		&out.ID, &statusText, &priorityText, &typeText,
		&out.RequesterID, &out.NumberOfPassengers, &out.ContactName, &out.ContactPhone,
		&out.DepartureTime, &out.ArrivalTime, &out.DepartureLocationID, &out.ArrivalLocationID,
		&out.LinkedRequestID, &out.StatusReason, &out.TripPurpose, &out.Note,
		&out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("select booking request: %w", err)
	}

	status, err := booking.ParseStatus(statusText)
	if err != nil {
		return nil, fmt.Errorf("booking request %s: %w", id, err)
	}
	out.Status = status
	out.Priority = booking.Priority(priorityText)
	out.Type = booking.TripType(typeText)

	rows, err := tx.Query(ctx, `
		SELECT passenger_id
		FROM booking_request_passengers
		WHERE booking_request_id = $1
		ORDER BY passenger_id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("select booking request passengers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var passengerID string
		if err := rows.Scan(&passengerID); err != nil {
			return nil, fmt.Errorf("scan passenger id: %w", err)
		}
		out.PassengerIDs = append(out.PassengerIDs, passengerID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return &out, nil
}

// Update rewrites the mutable columns of a request. The passenger list is
// immutable after creation.
func (repo *BookingRequestRepo) Update(ctx context.Context, req *booking.Request) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE booking_requests
		SET status = $2,
			priority = $3,
			trip_type = $4,
			linked_request_id = $5,
			status_reason = $6,
			updated_at = $7
		WHERE id = $1
	`,
		req.ID,
		req.Status.String(),
		req.Priority.String(),
		string(req.Type),
		req.LinkedRequestID,
		req.StatusReason,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update booking request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update booking request %s: row missing", req.ID)
	}
	return nil
}
