package postgres

import (
	"context"
	"fmt"

	"fleetdesk/internal/domain/trip"
	"fleetdesk/internal/ports"

	"github.com/jackc/pgx/v5"
)

// TripTicketRepo persists trip tickets using pgx and plain SQL.
type TripTicketRepo struct{}

// NewTripTicketRepo constructs a new TripTicketRepo.
func NewTripTicketRepo() ports.TripTicketRepository {
	return &TripTicketRepo{}
}

// CreateAll inserts the given tickets.
func (repo *TripTicketRepo) CreateAll(ctx context.Context, tickets []*trip.Ticket) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	for _, ticket := range tickets {
		if _, err := tx.Exec(ctx, `
			INSERT INTO trip_tickets (
				id, trip_id, booking_request_id, passenger_id,
				status, no_show_reason, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			ticket.ID,
			ticket.TripID,
			ticket.BookingRequestID,
			ticket.PassengerID,
			ticket.Status.String(),
			ticket.NoShowReason,
			ticket.CreatedAt,
			ticket.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert trip ticket: %w", err)
		}
	}
	return nil
}

func scanTickets(rows pgx.Rows) ([]*trip.Ticket, error) {
	defer rows.Close()

	var tickets []*trip.Ticket
	for rows.Next() {
		var (
			ticket     trip.Ticket
			statusText string
		)
		if err := rows.Scan(
			&ticket.ID, &ticket.TripID, &ticket.BookingRequestID, &ticket.PassengerID,
			&statusText, &ticket.NoShowReason, &ticket.CreatedAt, &ticket.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan trip ticket: %w", err)
		}
		ticket.Status = trip.TicketStatus(statusText)
		tickets = append(tickets, &ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return tickets, nil
}

// ListByTrip returns all tickets of a trip.
func (repo *TripTicketRepo) ListByTrip(ctx context.Context, tripID string) ([]*trip.Ticket, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, trip_id, booking_request_id, passenger_id,
		       status, no_show_reason, created_at, updated_at
		FROM trip_tickets
		WHERE trip_id = $1
		ORDER BY id
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("query trip tickets: %w", err)
	}
	return scanTickets(rows)
}

// ListByTripAndRequest returns the ticket group of one booking request on a
// trip.
func (repo *TripTicketRepo) ListByTripAndRequest(ctx context.Context, tripID, bookingRequestID string) ([]*trip.Ticket, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, trip_id, booking_request_id, passenger_id,
		       status, no_show_reason, created_at, updated_at
		FROM trip_tickets
		WHERE trip_id = $1 AND booking_request_id = $2
		ORDER BY id
	`, tripID, bookingRequestID)
	if err != nil {
		return nil, fmt.Errorf("query trip tickets for request: %w", err)
	}
	return scanTickets(rows)
}

// UpdateAll rewrites the mutable columns of the given tickets.
func (repo *TripTicketRepo) UpdateAll(ctx context.Context, tickets []*trip.Ticket) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	for _, ticket := range tickets {
		tag, err := tx.Exec(ctx, `
			UPDATE trip_tickets
			SET trip_id = $2,
				status = $3,
				no_show_reason = $4,
				updated_at = $5
			WHERE id = $1
		`,
			ticket.ID,
			ticket.TripID,
			ticket.Status.String(),
			ticket.NoShowReason,
			ticket.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update trip ticket: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("update trip ticket %s: row missing", ticket.ID)
		}
	}
	return nil
}

// MoveToTrip reattaches the tickets of one booking request to another trip.
func (repo *TripTicketRepo) MoveToTrip(ctx context.Context, bookingRequestID, fromTripID, toTripID string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE trip_tickets
		SET trip_id = $3, updated_at = now()
		WHERE booking_request_id = $1 AND trip_id = $2
	`, bookingRequestID, fromTripID, toTripID); err != nil {
		return fmt.Errorf("move trip tickets: %w", err)
	}
	return nil
}
