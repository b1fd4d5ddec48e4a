package service

import (
	"context"
	"errors"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/booking"
	"fleetdesk/internal/domain/ident"
	"fleetdesk/internal/domain/trip"
	"fleetdesk/internal/ports"
)

// Approve moves a trip from SCHEDULING to SCHEDULED. For owned vehicles the
// driver and vehicle calendar commitment is written in the same transaction
// under the authoritative conflict re-check; an overlap aborts the approval
// with a Conflict error. Outsourced resources are not calendar-tracked.
func (service *tripService) Approve(ctx context.Context, actor ports.Actor, tripID string) (*trip.Trip, error) {
	var approved *trip.Trip

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		t, err := service.tripRepo.GetByID(txCtx, tripID)
		if err != nil {
			return apperrors.NotFound("trip %s not found", tripID)
		}

		if t.VehicleID != nil {
			_, err := service.calendar.CommitSchedule(txCtx, ports.CommitScheduleInput{
				Title:     "Trip " + t.ID,
				StartTime: t.DepartureTime,
				EndTime:   t.ArrivalTime,
				DriverID:  t.DriverID,
				VehicleID: t.VehicleID,
				TripID:    &t.ID,
			})
			if err != nil {
				return err
			}
		}

		if err := t.Approve(); err != nil {
			if errors.Is(err, trip.ErrNoResourceAssigned) {
				return apperrors.InvalidState("trip %s has no vehicle assigned", t.ID)
			}
			return apperrors.InvalidState("trip %s is %s: %v", t.ID, t.Status, err)
		}
		if err := service.tripRepo.Update(txCtx, t); err != nil {
			return apperrors.Wrap(err, "update trip")
		}

		if err := service.approveLinkedRequests(txCtx, t); err != nil {
			return err
		}

		if t.DriverID != nil {
			service.notifier.Notify(txCtx, ports.NotificationBody{
				RecipientID: *t.DriverID,
				Audience:    "user",
				Title:       "Trip scheduled",
				Message:     "You have been scheduled for trip " + t.ID + ".",
				EntityKind:  string(ident.KindTrip),
				EntityID:    t.ID,
			})
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindTrip), t.ID, "approved", "Trip scheduled"); err != nil {
			return err
		}
		approved = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info(ctx, "trip_approved", "Approved trip", map[string]any{"trip_id": tripID})
	return approved, nil
}

// approveLinkedRequests moves every pending booking request riding the trip
// to APPROVED and tells its requester.
func (service *tripService) approveLinkedRequests(ctx context.Context, t *trip.Trip) error {
	tickets, err := service.ticketRepo.ListByTrip(ctx, t.ID)
	if err != nil {
		return apperrors.Wrap(err, "list trip tickets")
	}

	for _, requestID := range requestIDsOf(tickets) {
		req, err := service.bookingRepo.GetByID(ctx, requestID)
		if err != nil {
			return apperrors.Wrap(err, "load booking request")
		}
		if req.Status != booking.StatusPending {
			continue
		}
		if err := req.Approve(); err != nil {
			return apperrors.InvalidState("booking request %s is %s", req.ID, req.Status)
		}
		if err := service.bookingRepo.Update(ctx, req); err != nil {
			return apperrors.Wrap(err, "update booking request")
		}

		service.notifier.Notify(ctx, ports.NotificationBody{
			RecipientID: req.RequesterID,
			Audience:    "user",
			Title:       "Booking request approved",
			Message:     "Your booking request " + req.ID + " has been scheduled.",
			EntityKind:  string(ident.KindBookingRequest),
			EntityID:    req.ID,
		})
	}
	return nil
}

// Cancel terminates a trip that has not started and frees everything it was
// holding: its calendar rows and any public access code. Booking requests
// riding the trip are left to their own lifecycle.
func (service *tripService) Cancel(ctx context.Context, actor ports.Actor, tripID, reason string) (*trip.Trip, error) {
	var cancelled *trip.Trip

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		t, err := service.tripRepo.GetByID(txCtx, tripID)
		if err != nil {
			return apperrors.NotFound("trip %s not found", tripID)
		}

		if err := t.Cancel(reason); err != nil {
			if errors.Is(err, trip.ErrReasonRequired) {
				return apperrors.Validation("%v", err)
			}
			return apperrors.InvalidState("trip %s is %s", t.ID, t.Status)
		}
		if err := service.tripRepo.Update(txCtx, t); err != nil {
			return apperrors.Wrap(err, "update trip")
		}

		if err := service.scheduleRepo.DeleteByTrip(txCtx, t.ID); err != nil {
			return apperrors.Wrap(err, "delete trip schedules")
		}
		if err := service.accessRepo.DeleteByTrip(txCtx, t.ID); err != nil {
			return apperrors.Wrap(err, "delete trip access codes")
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindTrip), t.ID, "cancelled", reason); err != nil {
			return err
		}
		cancelled = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}
