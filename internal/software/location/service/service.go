package service

import (
	"context"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/ident"
	"fleetdesk/internal/domain/location"
	"fleetdesk/internal/general/logger"
	"fleetdesk/internal/ports"
)

// resolverService turns location references into persisted locations.
// Custom locations deduplicate on exact coordinates: resolving the same
// raw pair twice yields the same row.
type resolverService struct {
	logger *logger.Logger
	uow    ports.UnitOfWork
	repo   ports.LocationRepository
	ids    ports.SequenceAllocator
}

// NewResolver creates a location resolver.
func NewResolver(logger *logger.Logger, uow ports.UnitOfWork, repo ports.LocationRepository, ids ports.SequenceAllocator) ports.LocationResolver {
	return &resolverService{logger: logger, uow: uow, repo: repo, ids: ids}
}

// Resolve fetches the referenced location by id, or finds/creates a custom
// location for a raw coordinate pair.
func (service *resolverService) Resolve(ctx context.Context, ref ports.LocationRef) (*location.Location, error) {
	var resolved *location.Location

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		if ref.ByID() {
			loc, err := service.repo.GetByID(txCtx, ref.ID)
			if err != nil {
				return apperrors.Wrap(err, "fetch location")
			}
			if loc == nil {
				return apperrors.NotFound("location %s not found", ref.ID)
			}
			resolved = loc
			return nil
		}

		if err := location.ValidateCoordinates(ref.Latitude, ref.Longitude); err != nil {
			return apperrors.Validation("%v", err)
		}

		existing, err := service.repo.FindCustomByCoordinates(txCtx, ref.Latitude, ref.Longitude)
		if err != nil {
			return apperrors.Wrap(err, "find custom location")
		}
		if existing != nil {
			resolved = existing
			return nil
		}

		id, err := service.ids.AllocateOne(txCtx, ident.KindLocation)
		if err != nil {
			return err
		}

		loc, err := location.New(id, location.KindCustom, ref.Name, ref.Address, ref.Latitude, ref.Longitude)
		if err != nil {
			return apperrors.Validation("%v", err)
		}
		if err := service.repo.Create(txCtx, loc); err != nil {
			return apperrors.Wrap(err, "create custom location")
		}

		service.logger.Info(txCtx, "location_created", "Created custom location", map[string]any{
			"location_id": loc.ID,
			"latitude":    loc.Latitude,
			"longitude":   loc.Longitude,
		})
		resolved = loc
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resolved, nil
}
