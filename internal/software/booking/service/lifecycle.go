package service

import (
	"context"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/booking"
	"fleetdesk/internal/domain/ident"
	"fleetdesk/internal/domain/trip"
	"fleetdesk/internal/ports"
)

// GetByID returns one booking request with its current scheduling trip.
func (service *bookingService) GetByID(ctx context.Context, bookingRequestID string) (*ports.BookingProjection, error) {
	var projection ports.BookingProjection

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		req, err := service.bookingRepo.GetByID(txCtx, bookingRequestID)
		if err != nil {
			return apperrors.NotFound("booking request %s not found", bookingRequestID)
		}
		projection.Request = req

		if t, err := service.activeTrip(txCtx, bookingRequestID); err == nil && t != nil {
			projection.TripID = t.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &projection, nil
}

// Reject declines a pending request with a mandatory reason and tears down
// its scheduling trip.
func (service *bookingService) Reject(ctx context.Context, actor ports.Actor, bookingRequestID, reason string) (*booking.Request, error) {
	return service.decline(ctx, actor, bookingRequestID, reason, "rejected", func(req *booking.Request) error {
		return req.Reject(reason)
	})
}

// Cancel withdraws a pending or approved request with a mandatory reason
// and tears down its scheduling trip.
func (service *bookingService) Cancel(ctx context.Context, actor ports.Actor, bookingRequestID, reason string) (*booking.Request, error) {
	return service.decline(ctx, actor, bookingRequestID, reason, "cancelled", func(req *booking.Request) error {
		return req.Cancel(reason)
	})
}

func (service *bookingService) decline(
	ctx context.Context,
	actor ports.Actor,
	bookingRequestID, reason, action string,
	transition func(*booking.Request) error,
) (*booking.Request, error) {
	var declined *booking.Request

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		req, err := service.bookingRepo.GetByID(txCtx, bookingRequestID)
		if err != nil {
			return apperrors.NotFound("booking request %s not found", bookingRequestID)
		}

		if err := transition(req); err != nil {
			if err == booking.ErrReasonRequired {
				return apperrors.Validation("%v", err)
			}
			return apperrors.InvalidState("booking request %s is %s", req.ID, req.Status)
		}
		if err := service.bookingRepo.Update(txCtx, req); err != nil {
			return apperrors.Wrap(err, "update booking request")
		}

		if err := service.releaseTrips(txCtx, actor, bookingRequestID, reason); err != nil {
			return err
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindBookingRequest), req.ID, action, reason); err != nil {
			return err
		}
		service.notifier.Notify(txCtx, ports.NotificationBody{
			RecipientID: req.RequesterID,
			Audience:    "user",
			Title:       "Booking request " + action,
			Message:     reason,
			EntityKind:  string(ident.KindBookingRequest),
			EntityID:    req.ID,
		})
		declined = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	return declined, nil
}

// releaseTrips frees the calendar and trip resources a declined request was
// holding. A trip shared with other requests (combined) only loses this
// request's stops and tickets; removal hands the tickets back to the
// request's own scheduling trip, so a second pass cancels the dedicated
// trips still in scheduling. A trip that already reached SCHEDULED or
// IN_PROGRESS outlives the request and stays untouched.
func (service *bookingService) releaseTrips(ctx context.Context, actor ports.Actor, bookingRequestID, reason string) error {
	trips, err := service.tripRepo.ListByBookingRequest(ctx, bookingRequestID)
	if err != nil {
		return apperrors.Wrap(err, "list trips for booking request")
	}

	for _, t := range trips {
		if t.Status != trip.StatusScheduling && t.Status != trip.StatusScheduled {
			continue
		}

		tickets, err := service.ticketRepo.ListByTrip(ctx, t.ID)
		if err != nil {
			return apperrors.Wrap(err, "list trip tickets")
		}
		shared := false
		for _, ticket := range tickets {
			if ticket.BookingRequestID != bookingRequestID {
				shared = true
				break
			}
		}
		if shared {
			if _, err := service.trips.RemoveBookingRequest(ctx, actor, t.ID, bookingRequestID); err != nil {
				return err
			}
		}
	}

	trips, err = service.tripRepo.ListByBookingRequest(ctx, bookingRequestID)
	if err != nil {
		return apperrors.Wrap(err, "list trips for booking request")
	}
	for _, t := range trips {
		if t.Status != trip.StatusScheduling {
			continue
		}
		if _, err := service.trips.Cancel(ctx, actor, t.ID, reason); err != nil {
			return err
		}
	}
	return nil
}

// activeTrip returns the request's current non-terminal trip, if any.
func (service *bookingService) activeTrip(ctx context.Context, bookingRequestID string) (*trip.Trip, error) {
	trips, err := service.tripRepo.ListByBookingRequest(ctx, bookingRequestID)
	if err != nil {
		return nil, apperrors.Wrap(err, "list trips for booking request")
	}
	for _, t := range trips {
		if !t.Status.Terminal() {
			return t, nil
		}
	}
	return nil, nil
}
