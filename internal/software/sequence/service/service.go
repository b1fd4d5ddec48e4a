package service

import (
	"context"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/ident"
	"fleetdesk/internal/general/logger"
	"fleetdesk/internal/ports"
)

// allocatorService hands out gap-free sequential identifiers per entity kind.
// Concurrency safety comes from the row lock the repository takes on the
// counter: two allocators for the same kind serialize on that lock, so a
// batch of n yields n distinct consecutive ids.
type allocatorService struct {
	logger *logger.Logger
	uow    ports.UnitOfWork
	repo   ports.SequenceRepository
}

// NewAllocator creates a sequence allocator backed by the given repository.
func NewAllocator(logger *logger.Logger, uow ports.UnitOfWork, repo ports.SequenceRepository) ports.SequenceAllocator {
	return &allocatorService{logger: logger, uow: uow, repo: repo}
}

// Allocate returns count consecutive identifiers for kind. When called
// inside an outer transaction the counter lock extends to that
// transaction's end, so ids are never leaked by an aborted caller.
func (service *allocatorService) Allocate(ctx context.Context, kind ident.Kind, count int) ([]string, error) {
	if count < 1 {
		return nil, apperrors.Validation("allocation count must be at least 1")
	}

	prefix, ok := ident.Prefix(kind)
	if !ok {
		return nil, apperrors.Validation("no identifier prefix configured for kind %q", kind)
	}

	var ids []string
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		if err := service.repo.EnsureCounter(txCtx, kind, prefix); err != nil {
			return err
		}

		current, err := service.repo.LockCurrent(txCtx, kind)
		if err != nil {
			return err
		}

		ids = make([]string, 0, count)
		for i := 1; i <= count; i++ {
			ids = append(ids, ident.Format(prefix, current+int64(i)))
		}

		return service.repo.SetCurrent(txCtx, kind, current+int64(count))
	})
	if err != nil {
		service.logger.Error(ctx, "id_allocation_failed", "Failed to allocate identifiers", err, map[string]any{
			"kind":  string(kind),
			"count": count,
		})
		return nil, err
	}

	return ids, nil
}

// AllocateOne returns a single identifier for kind.
func (service *allocatorService) AllocateOne(ctx context.Context, kind ident.Kind) (string, error) {
	ids, err := service.Allocate(ctx, kind, 1)
	if err != nil {
		return "", err
	}
	return ids[0], nil
}
