package postgres

import (
	"context"
	"errors"
	"fmt"

	"fleetdesk/internal/domain/access"
	"fleetdesk/internal/ports"

	"github.com/jackc/pgx/v5"
)

// PublicAccessRepo persists public trip access codes.
type PublicAccessRepo struct{}

// NewPublicAccessRepo constructs a new PublicAccessRepo.
func NewPublicAccessRepo() ports.PublicAccessRepository {
	return &PublicAccessRepo{}
}

// Replace removes any previous code for the trip and inserts the new one,
// keeping at most one active code per trip.
func (repo *PublicAccessRepo) Replace(ctx context.Context, a *access.Access) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM trip_access_codes WHERE trip_id = $1`, a.TripID); err != nil {
		return fmt.Errorf("delete previous access code: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO trip_access_codes (code, trip_id, created_at)
		VALUES ($1, $2, $3)
	`, a.Code, a.TripID, a.CreatedAt); err != nil {
		return fmt.Errorf("insert access code: %w", err)
	}
	return nil
}

// GetByCode fetches an access code row, or (nil, nil) when unknown.
func (repo *PublicAccessRepo) GetByCode(ctx context.Context, code string) (*access.Access, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var out access.Access
	err = tx.QueryRow(ctx, `
		SELECT code, trip_id, created_at
		FROM trip_access_codes
		WHERE code = $1
	`, code).Scan(&out.Code, &out.TripID, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select access code: %w", err)
	}
	return &out, nil
}

// GetByTrip fetches the active code of a trip, or (nil, nil) when none.
func (repo *PublicAccessRepo) GetByTrip(ctx context.Context, tripID string) (*access.Access, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var out access.Access
	err = tx.QueryRow(ctx, `
		SELECT code, trip_id, created_at
		FROM trip_access_codes
		WHERE trip_id = $1
	`, tripID).Scan(&out.Code, &out.TripID, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select access code by trip: %w", err)
	}
	return &out, nil
}

// DeleteByTrip removes the active code of a trip.
func (repo *PublicAccessRepo) DeleteByTrip(ctx context.Context, tripID string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM trip_access_codes WHERE trip_id = $1`, tripID); err != nil {
		return fmt.Errorf("delete access code by trip: %w", err)
	}
	return nil
}
