package service

import (
	"context"
	"time"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/booking"
	"fleetdesk/internal/domain/fleet"
	"fleetdesk/internal/domain/ident"
	"fleetdesk/internal/domain/trip"
	"fleetdesk/internal/ports"
)

// DriverConfirmStart lets the assigned driver mark departure. The driver
// goes ON_TRIP; per-passenger pickups are confirmed separately through the
// ticket operations.
func (service *tripService) DriverConfirmStart(ctx context.Context, actor ports.Actor, tripID string) (*trip.Trip, error) {
	var started *trip.Trip

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		t, err := service.ownedTripFor(txCtx, actor, tripID)
		if err != nil {
			return err
		}

		if err := t.Start(time.Now().UTC()); err != nil {
			return apperrors.InvalidState("trip %s is %s", t.ID, t.Status)
		}
		if err := service.tripRepo.Update(txCtx, t); err != nil {
			return apperrors.Wrap(err, "update trip")
		}
		if err := service.driverRepo.UpdateAvailability(txCtx, *t.DriverID, fleet.DriverOnTrip); err != nil {
			return apperrors.Wrap(err, "update driver availability")
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindTrip), t.ID, "started", "Driver confirmed departure"); err != nil {
			return err
		}
		started = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info(ctx, "trip_started", "Trip departed", map[string]any{"trip_id": tripID})
	return started, nil
}

// DriverConfirmEnd lets the assigned driver mark arrival. The driver frees
// up again and every approved booking request on the trip completes.
func (service *tripService) DriverConfirmEnd(ctx context.Context, actor ports.Actor, tripID string) (*trip.Trip, error) {
	var ended *trip.Trip

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		t, err := service.ownedTripFor(txCtx, actor, tripID)
		if err != nil {
			return err
		}

		if err := t.End(time.Now().UTC()); err != nil {
			return apperrors.InvalidState("trip %s is %s", t.ID, t.Status)
		}
		if err := service.tripRepo.Update(txCtx, t); err != nil {
			return apperrors.Wrap(err, "update trip")
		}
		if err := service.driverRepo.UpdateAvailability(txCtx, *t.DriverID, fleet.DriverAvailable); err != nil {
			return apperrors.Wrap(err, "update driver availability")
		}

		if err := service.completeRequests(txCtx, t); err != nil {
			return err
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindTrip), t.ID, "completed", "Driver confirmed arrival"); err != nil {
			return err
		}
		ended = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info(ctx, "trip_completed", "Trip arrived", map[string]any{"trip_id": tripID})
	return ended, nil
}

// ownedTripFor loads a trip and checks that the acting driver is the one
// assigned to it.
func (service *tripService) ownedTripFor(ctx context.Context, actor ports.Actor, tripID string) (*trip.Trip, error) {
	t, err := service.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, apperrors.NotFound("trip %s not found", tripID)
	}
	if t.DriverID == nil || *t.DriverID != actor.ID {
		return nil, apperrors.Forbidden("trip %s is not assigned to driver %s", tripID, actor.ID)
	}
	return t, nil
}

// OutsourcedConfirmStart marks departure of an outsourced trip through its
// public access code. The outsourced driver has no per-stop view, so every
// ticket moves to PICKED_UP with the trip.
func (service *tripService) OutsourcedConfirmStart(ctx context.Context, accessCode string) (*trip.Trip, error) {
	var started *trip.Trip

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		t, err := service.accessibleTrip(txCtx, accessCode)
		if err != nil {
			return err
		}

		if err := t.Start(time.Now().UTC()); err != nil {
			return apperrors.InvalidState("trip %s is %s", t.ID, t.Status)
		}
		if err := service.tripRepo.Update(txCtx, t); err != nil {
			return apperrors.Wrap(err, "update trip")
		}

		if err := service.moveAllTickets(txCtx, t.ID, trip.TicketPickedUp); err != nil {
			return err
		}

		if err := service.activity.Record(txCtx, ports.Actor{ID: t.ID, Role: "outsourced_driver"}, string(ident.KindTrip), t.ID, "started", "Outsourced driver confirmed departure"); err != nil {
			return err
		}
		started = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return started, nil
}

// OutsourcedConfirmEnd marks arrival of an outsourced trip: all tickets
// drop off and the booking requests behind them complete.
func (service *tripService) OutsourcedConfirmEnd(ctx context.Context, accessCode string) (*trip.Trip, error) {
	var ended *trip.Trip

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		t, err := service.accessibleTrip(txCtx, accessCode)
		if err != nil {
			return err
		}

		if err := t.End(time.Now().UTC()); err != nil {
			return apperrors.InvalidState("trip %s is %s", t.ID, t.Status)
		}
		if err := service.tripRepo.Update(txCtx, t); err != nil {
			return apperrors.Wrap(err, "update trip")
		}

		if err := service.moveAllTickets(txCtx, t.ID, trip.TicketDroppedOff); err != nil {
			return err
		}
		if err := service.completeRequests(txCtx, t); err != nil {
			return err
		}

		if err := service.activity.Record(txCtx, ports.Actor{ID: t.ID, Role: "outsourced_driver"}, string(ident.KindTrip), t.ID, "completed", "Outsourced driver confirmed arrival"); err != nil {
			return err
		}
		ended = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ended, nil
}

// moveAllTickets transitions every ticket of a trip as one group.
func (service *tripService) moveAllTickets(ctx context.Context, tripID string, next trip.TicketStatus) error {
	tickets, err := service.ticketRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return apperrors.Wrap(err, "list trip tickets")
	}
	if err := trip.GroupTransition(tickets, next, ""); err != nil {
		return apperrors.InvalidState("%v", err)
	}
	if err := service.ticketRepo.UpdateAll(ctx, tickets); err != nil {
		return apperrors.Wrap(err, "update trip tickets")
	}
	return nil
}

// completeRequests moves every approved booking request on the trip to
// COMPLETED and notifies its requester.
func (service *tripService) completeRequests(ctx context.Context, t *trip.Trip) error {
	tickets, err := service.ticketRepo.ListByTrip(ctx, t.ID)
	if err != nil {
		return apperrors.Wrap(err, "list trip tickets")
	}

	for _, requestID := range requestIDsOf(tickets) {
		req, err := service.bookingRepo.GetByID(ctx, requestID)
		if err != nil {
			return apperrors.Wrap(err, "load booking request")
		}
		if req.Status != booking.StatusApproved {
			continue
		}
		if err := req.Complete(); err != nil {
			return apperrors.InvalidState("booking request %s is %s", req.ID, req.Status)
		}
		if err := service.bookingRepo.Update(ctx, req); err != nil {
			return apperrors.Wrap(err, "update booking request")
		}

		service.notifier.Notify(ctx, ports.NotificationBody{
			RecipientID: req.RequesterID,
			Audience:    "user",
			Title:       "Trip completed",
			Message:     "Your booking request " + req.ID + " has been completed.",
			EntityKind:  string(ident.KindBookingRequest),
			EntityID:    req.ID,
		})
	}
	return nil
}
