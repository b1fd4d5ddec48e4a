package postgres

import (
	"context"
	"fmt"

	"fleetdesk/internal/domain/ident"
	"fleetdesk/internal/ports"
)

// SequenceRepo persists per-kind identifier counters using pgx and plain SQL.
type SequenceRepo struct{}

// NewSequenceRepo constructs a new SequenceRepo.
func NewSequenceRepo() ports.SequenceRepository {
	return &SequenceRepo{}
}

// EnsureCounter creates the counter row for kind if it does not exist yet.
// Safe to call on every allocation.
func (repo *SequenceRepo) EnsureCounter(ctx context.Context, kind ident.Kind, prefix string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO id_counters (kind, prefix, current_value)
		VALUES ($1, $2, 0)
		ON CONFLICT (kind) DO NOTHING
	`, string(kind), prefix)
	if err != nil {
		return fmt.Errorf("ensure id counter: %w", err)
	}
	return nil
}

// LockCurrent reads the counter value under an exclusive row lock. The lock
// is held until the surrounding transaction commits or rolls back, so
// concurrent allocators for the same kind serialize here.
func (repo *SequenceRepo) LockCurrent(ctx context.Context, kind ident.Kind) (int64, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var current int64
	err = tx.QueryRow(ctx, `
		SELECT current_value
		FROM id_counters
		WHERE kind = $1
		FOR UPDATE
	`, string(kind)).Scan(&current)
	if err != nil {
		return 0, fmt.Errorf("lock id counter %q: %w", kind, err)
	}
	return current, nil
}

// SetCurrent writes the advanced counter value while the row lock is held.
func (repo *SequenceRepo) SetCurrent(ctx context.Context, kind ident.Kind, value int64) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE id_counters
		SET current_value = $2
		WHERE kind = $1
	`, string(kind), value)
	if err != nil {
		return fmt.Errorf("advance id counter %q: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("advance id counter %q: counter row missing", kind)
	}
	return nil
}
