package postgres

import (
	"context"
	"fmt"

	"fleetdesk/internal/ports"
)

// ActivityLogRepo persists audit entries.
type ActivityLogRepo struct{}

// NewActivityLogRepo constructs a new ActivityLogRepo.
func NewActivityLogRepo() ports.ActivityLogRepository {
	return &ActivityLogRepo{}
}

// Create inserts one audit row.
func (repo *ActivityLogRepo) Create(ctx context.Context, e *ports.ActivityEntry) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO activity_logs (
			id, actor_id, actor_role, entity_kind, entity_id, action, message, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		e.ID,
		e.ActorID,
		e.ActorRole,
		e.EntityKind,
		e.EntityID,
		e.Action,
		e.Message,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}

// ListByEntity returns the newest audit rows of one entity.
func (repo *ActivityLogRepo) ListByEntity(ctx context.Context, entityKind, entityID string, limit int) ([]ports.ActivityEntry, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, actor_id, actor_role, entity_kind, entity_id, action, message, created_at
		FROM activity_logs
		WHERE entity_kind = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, entityKind, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query activity logs: %w", err)
	}
	defer rows.Close()

	var entries []ports.ActivityEntry
	for rows.Next() {
		var e ports.ActivityEntry
		if err := rows.Scan(
			&e.ID, &e.ActorID, &e.ActorRole, &e.EntityKind, &e.EntityID,
			&e.Action, &e.Message, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan activity log: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return entries, nil
}
