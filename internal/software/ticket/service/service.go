package service

import (
	"context"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/ident"
	"fleetdesk/internal/domain/trip"
	"fleetdesk/internal/general/logger"
	"fleetdesk/internal/ports"
)

// ticketService exposes per-request passenger confirmations on a running
// trip. All tickets of a (trip, booking request) pair move as one group.
type ticketService struct {
	logger     *logger.Logger
	uow        ports.UnitOfWork
	tripRepo   ports.TripRepository
	ticketRepo ports.TripTicketRepository
	activity   ports.ActivityLogService
}

// NewTicketService creates the ticket service with the provided dependencies.
func NewTicketService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	tripRepo ports.TripRepository,
	ticketRepo ports.TripTicketRepository,
	activity ports.ActivityLogService,
) ports.TicketService {
	return &ticketService{
		logger:     logger,
		uow:        uow,
		tripRepo:   tripRepo,
		ticketRepo: ticketRepo,
		activity:   activity,
	}
}

// ConfirmPickUp marks every passenger of the booking request as on board.
func (service *ticketService) ConfirmPickUp(ctx context.Context, actor ports.Actor, tripID, bookingRequestID string) ([]*trip.Ticket, error) {
	return service.transition(ctx, actor, tripID, bookingRequestID, trip.TicketPickedUp, "", "picked_up")
}

// ConfirmDroppedOff marks every passenger of the booking request as
// delivered.
func (service *ticketService) ConfirmDroppedOff(ctx context.Context, actor ports.Actor, tripID, bookingRequestID string) ([]*trip.Ticket, error) {
	return service.transition(ctx, actor, tripID, bookingRequestID, trip.TicketDroppedOff, "", "dropped_off")
}

// ConfirmPassengersNoShow marks the whole booking request as a no-show,
// with a mandatory reason.
func (service *ticketService) ConfirmPassengersNoShow(ctx context.Context, actor ports.Actor, tripID, bookingRequestID, reason string) ([]*trip.Ticket, error) {
	return service.transition(ctx, actor, tripID, bookingRequestID, trip.TicketNoShow, reason, "no_show")
}

func (service *ticketService) transition(
	ctx context.Context,
	actor ports.Actor,
	tripID, bookingRequestID string,
	next trip.TicketStatus,
	noShowReason, action string,
) ([]*trip.Ticket, error) {
	var moved []*trip.Ticket

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		t, err := service.tripRepo.GetByID(txCtx, tripID)
		if err != nil {
			return apperrors.NotFound("trip %s not found", tripID)
		}
		if t.Status != trip.StatusInProgress {
			return apperrors.InvalidState("trip %s is %s, passengers can only be confirmed on a running trip", t.ID, t.Status)
		}
		if t.DriverID == nil || *t.DriverID != actor.ID {
			return apperrors.Forbidden("trip %s is not assigned to driver %s", tripID, actor.ID)
		}

		tickets, err := service.ticketRepo.ListByTripAndRequest(txCtx, tripID, bookingRequestID)
		if err != nil {
			return apperrors.Wrap(err, "list trip tickets")
		}
		if len(tickets) == 0 {
			return apperrors.NotFound("booking request %s has no tickets on trip %s", bookingRequestID, tripID)
		}

		if err := trip.GroupTransition(tickets, next, noShowReason); err != nil {
			if err == trip.ErrNoShowReasonRequired {
				return apperrors.Validation("%v", err)
			}
			return apperrors.InvalidState("%v", err)
		}
		if err := service.ticketRepo.UpdateAll(txCtx, tickets); err != nil {
			return apperrors.Wrap(err, "update trip tickets")
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindTrip), tripID, action, "Confirmed "+action+" for booking request "+bookingRequestID); err != nil {
			return err
		}
		moved = tickets
		return nil
	})
	if err != nil {
		return nil, err
	}

	return moved, nil
}
