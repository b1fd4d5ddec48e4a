package postgres

import (
	"context"
	"errors"
	"fmt"

	"fleetdesk/internal/domain/location"
	"fleetdesk/internal/ports"

	"github.com/jackc/pgx/v5"
)

// LocationRepo persists locations using pgx and plain SQL.
type LocationRepo struct{}

// NewLocationRepo constructs a new LocationRepo.
func NewLocationRepo() ports.LocationRepository {
	return &LocationRepo{}
}

// Create inserts a new location row.
func (repo *LocationRepo) Create(ctx context.Context, loc *location.Location) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO locations (id, kind, name, address, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		loc.ID,
		string(loc.Kind),
		loc.Name,
		loc.Address,
		loc.Latitude,
		loc.Longitude,
		loc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

// GetByID returns one location by id, or (nil, nil) when absent.
func (repo *LocationRepo) GetByID(ctx context.Context, id string) (*location.Location, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var (
		out      location.Location
		kindText string
	)
	err = tx.QueryRow(ctx, `
		SELECT id, kind, name, address, latitude, longitude, created_at
		FROM locations
		WHERE id = $1
	`, id).Scan(
		&out.ID, &kindText, &out.Name, &out.Address,
		&out.Latitude, &out.Longitude, &out.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select location: %w", err)
	}

	out.Kind = location.Kind(kindText)
	return &out, nil
}

// FindCustomByCoordinates looks for a CUSTOM location with exactly matching
// coordinates. Returns (nil, nil) when none exists.
func (repo *LocationRepo) FindCustomByCoordinates(ctx context.Context, lat, lng float64) (*location.Location, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var (
		out      location.Location
		kindText string
	)
	err = tx.QueryRow(ctx, `
		SELECT id, kind, name, address, latitude, longitude, created_at
		FROM locations
		WHERE kind = $1 AND latitude = $2 AND longitude = $3
		ORDER BY created_at
		LIMIT 1
	`, string(location.KindCustom), lat, lng).Scan(
		&out.ID, &kindText, &out.Name, &out.Address,
		&out.Latitude, &out.Longitude, &out.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select custom location by coordinates: %w", err)
	}

	out.Kind = location.Kind(kindText)
	return &out, nil
}
