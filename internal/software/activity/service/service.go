package service

import (
	"context"
	"time"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/ident"
	"fleetdesk/internal/general/logger"
	"fleetdesk/internal/ports"
)

// activityService writes one audit row per mutating operation. Callers
// record inside their own transaction, so a failed operation leaves no
// audit trace.
type activityService struct {
	logger *logger.Logger
	repo   ports.ActivityLogRepository
	ids    ports.SequenceAllocator
}

// NewActivityService creates the audit log service.
func NewActivityService(logger *logger.Logger, repo ports.ActivityLogRepository, ids ports.SequenceAllocator) ports.ActivityLogService {
	return &activityService{logger: logger, repo: repo, ids: ids}
}

// Record persists one audit entry.
func (service *activityService) Record(ctx context.Context, actor ports.Actor, entityKind, entityID, action, message string) error {
	id, err := service.ids.AllocateOne(ctx, ident.KindActivityLog)
	if err != nil {
		return err
	}

	entry := &ports.ActivityEntry{
		ID:         id,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		EntityKind: entityKind,
		EntityID:   entityID,
		Action:     action,
		Message:    message,
		CreatedAt:  time.Now().UTC(),
	}
	if err := service.repo.Create(ctx, entry); err != nil {
		return apperrors.Wrap(err, "create activity entry")
	}
	return nil
}
