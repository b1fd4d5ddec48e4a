package service

import (
	"context"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/booking"
	"fleetdesk/internal/ports"
)

// AssignVehicle assigns an owned vehicle to the request's scheduling trip
// and approves the trip, which moves the request to APPROVED.
func (service *bookingService) AssignVehicle(ctx context.Context, actor ports.Actor, bookingRequestID, vehicleID string) (*booking.Request, error) {
	return service.assign(ctx, actor, bookingRequestID, func(txCtx context.Context, tripID string) error {
		if _, err := service.trips.AssignVehicle(txCtx, actor, tripID, vehicleID); err != nil {
			return err
		}
		_, err := service.trips.Approve(txCtx, actor, tripID)
		return err
	})
}

// AssignOutsourcedVehicle attaches a rented vehicle/driver pair to the
// request's scheduling trip and approves the trip.
func (service *bookingService) AssignOutsourcedVehicle(ctx context.Context, actor ports.Actor, bookingRequestID string, in ports.AssignOutsourcedInput) (*booking.Request, error) {
	return service.assign(ctx, actor, bookingRequestID, func(txCtx context.Context, tripID string) error {
		if _, err := service.trips.AssignOutsourcedVehicle(txCtx, actor, tripID, in); err != nil {
			return err
		}
		_, err := service.trips.Approve(txCtx, actor, tripID)
		return err
	})
}

func (service *bookingService) assign(
	ctx context.Context,
	actor ports.Actor,
	bookingRequestID string,
	attach func(ctx context.Context, tripID string) error,
) (*booking.Request, error) {
	var assigned *booking.Request

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		req, err := service.bookingRepo.GetByID(txCtx, bookingRequestID)
		if err != nil {
			return apperrors.NotFound("booking request %s not found", bookingRequestID)
		}
		if req.Status != booking.StatusPending {
			return apperrors.InvalidState("booking request %s is %s, expected PENDING", req.ID, req.Status)
		}

		t, err := service.activeTrip(txCtx, bookingRequestID)
		if err != nil {
			return err
		}
		if t == nil {
			return apperrors.InvalidState("booking request %s has no scheduling trip", bookingRequestID)
		}

		if err := attach(txCtx, t.ID); err != nil {
			return err
		}

		// trip approval already moved the request forward; reload it
		assigned, err = service.bookingRepo.GetByID(txCtx, bookingRequestID)
		if err != nil {
			return apperrors.Wrap(err, "reload booking request")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return assigned, nil
}

// ListAvailableVehicles returns every active vehicle with enough seats for
// the request, annotated with its driver's calendar conflicts over the full
// trip window. Conflicted vehicles are listed, not hidden: the schedule
// re-check at approval has the final say.
func (service *bookingService) ListAvailableVehicles(ctx context.Context, bookingRequestID string) ([]ports.AvailableVehicle, error) {
	var result []ports.AvailableVehicle

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		req, err := service.bookingRepo.GetByID(txCtx, bookingRequestID)
		if err != nil {
			return apperrors.NotFound("booking request %s not found", bookingRequestID)
		}

		vehicles, err := service.vehicleRepo.ListActive(txCtx)
		if err != nil {
			return apperrors.Wrap(err, "list active vehicles")
		}

		for _, v := range vehicles {
			if !v.Assignable(req.NumberOfPassengers) {
				continue
			}

			conflicts, err := service.calendar.FindConflictsForDriver(txCtx, *v.DriverID, req.DepartureTime, req.ArrivalTime, "")
			if err != nil {
				return err
			}
			vehicleConflicts, err := service.calendar.FindConflictsForVehicle(txCtx, v.ID, req.DepartureTime, req.ArrivalTime, "")
			if err != nil {
				return err
			}
			conflicts = append(conflicts, vehicleConflicts...)

			result = append(result, ports.AvailableVehicle{Vehicle: v, ConflictIDs: conflicts})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
