package service

import (
	"context"
	"time"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/booking"
	"fleetdesk/internal/domain/ident"
	"fleetdesk/internal/domain/trip"
	"fleetdesk/internal/ports"
)

// Create builds one booking request per leg. Every leg gets a scheduling
// trip with a pickup and a drop-off stop plus one ticket per passenger, all
// in one transaction: either the whole graph exists afterwards or none of
// it does.
func (service *bookingService) Create(ctx context.Context, actor ports.Actor, in ports.CreateBookingInput) ([]ports.BookingProjection, error) {
	if !in.TripType.Valid() {
		return nil, apperrors.Validation("invalid trip type %q", in.TripType)
	}
	if err := booking.ValidateWindow(in.DepartureTime, in.ArrivalTime); err != nil {
		return nil, apperrors.Validation("%v", err)
	}
	roundTrip := in.TripType == booking.TypeRoundTrip
	if roundTrip {
		if err := booking.ValidateWindow(in.ReturnDepartureTime, in.ReturnArrivalTime); err != nil {
			return nil, apperrors.Validation("return leg: %v", err)
		}
		if in.ReturnDepartureTime.Before(in.ArrivalTime) {
			return nil, apperrors.Validation("return leg cannot depart before the outbound leg arrives")
		}
	}

	// requests departing soon jump the queue
	priority := in.Priority
	if priority == "" {
		priority = booking.PriorityNormal
	}
	priority = priority.Escalate(in.DepartureTime, time.Now().UTC())

	var (
		projections []ports.BookingProjection
		estimate    *ports.RouteEstimate
	)

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		departure, err := service.resolver.Resolve(txCtx, in.DepartureLocation)
		if err != nil {
			return err
		}
		arrival, err := service.resolver.Resolve(txCtx, in.ArrivalLocation)
		if err != nil {
			return err
		}

		// informational only, never gates the request
		if service.routes != nil {
			if est, err := service.routes.Estimate(txCtx, departure.Latitude, departure.Longitude, arrival.Latitude, arrival.Longitude); err == nil {
				estimate = &est
			}
		}

		legs := 1
		if roundTrip {
			legs = 2
		}
		requestIDs, err := service.ids.Allocate(txCtx, ident.KindBookingRequest, legs)
		if err != nil {
			return err
		}

		outbound, err := booking.NewRequest(
			requestIDs[0], priority,
			in.RequesterID, in.PassengerIDs, in.ContactName, in.ContactPhone,
			in.DepartureTime, in.ArrivalTime, departure.ID, arrival.ID,
			in.TripPurpose, in.Note,
		)
		if err != nil {
			return apperrors.Validation("%v", err)
		}

		requests := []*booking.Request{outbound}
		if roundTrip {
			ret, err := booking.NewRequest(
				requestIDs[1], priority,
				in.RequesterID, in.PassengerIDs, in.ContactName, in.ContactPhone,
				in.ReturnDepartureTime, in.ReturnArrivalTime, arrival.ID, departure.ID,
				in.TripPurpose, in.Note,
			)
			if err != nil {
				return apperrors.Validation("return leg: %v", err)
			}
			outbound.LinkReturn(ret)
			requests = append(requests, ret)
		}

		for _, req := range requests {
			if err := service.bookingRepo.Create(txCtx, req); err != nil {
				return apperrors.Wrap(err, "create booking request")
			}

			tripID, err := service.createSchedulingTrip(txCtx, req)
			if err != nil {
				return err
			}

			projections = append(projections, ports.BookingProjection{Request: req, TripID: tripID})
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindBookingRequest), outbound.ID, "created", "Booking request created"); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "booking_create_failed", "Failed to create booking request", err, map[string]any{
			"requester_id": in.RequesterID,
			"trip_type":    string(in.TripType),
		})
		return nil, err
	}

	data := map[string]any{"priority": priority.String()}
	if estimate != nil {
		data["distance_km"] = estimate.DistanceKM
		data["duration_min"] = estimate.DurationMinutes
	}
	service.notifier.Notify(ctx, ports.NotificationBody{
		Audience:   "coordinator",
		Title:      "New booking request",
		Message:    "A booking request is waiting for scheduling.",
		EntityKind: string(ident.KindBookingRequest),
		EntityID:   projections[0].Request.ID,
		Data:       data,
	})

	service.logger.Info(ctx, "booking_created", "Created booking request", map[string]any{
		"booking_request_id": projections[0].Request.ID,
		"legs":               len(projections),
		"priority":           priority.String(),
	})
	return projections, nil
}

// createSchedulingTrip materializes the scheduling trip of one leg: the
// trip row, its two stops and one ticket per passenger.
func (service *bookingService) createSchedulingTrip(ctx context.Context, req *booking.Request) (string, error) {
	tripID, err := service.ids.AllocateOne(ctx, ident.KindTrip)
	if err != nil {
		return "", err
	}

	t, err := trip.New(tripID, req.DepartureTime, req.ArrivalTime)
	if err != nil {
		return "", apperrors.Validation("%v", err)
	}
	t.SourceBookingRequestID = &req.ID
	if err := service.tripRepo.Create(ctx, t); err != nil {
		return "", apperrors.Wrap(err, "create trip")
	}

	stopIDs, err := service.ids.Allocate(ctx, ident.KindTripStop, 2)
	if err != nil {
		return "", err
	}
	stops := []trip.Stop{
		{ID: stopIDs[0], TripID: tripID, BookingRequestID: req.ID, Type: trip.StopPickup, Order: 1, LocationID: req.DepartureLocationID, PlannedTime: req.DepartureTime},
		{ID: stopIDs[1], TripID: tripID, BookingRequestID: req.ID, Type: trip.StopDropOff, Order: 2, LocationID: req.ArrivalLocationID, PlannedTime: req.ArrivalTime},
	}
	if err := service.stopRepo.CreateAll(ctx, stops); err != nil {
		return "", apperrors.Wrap(err, "create trip stops")
	}

	ticketIDs, err := service.ids.Allocate(ctx, ident.KindTripTicket, len(req.PassengerIDs))
	if err != nil {
		return "", err
	}
	tickets := make([]*trip.Ticket, 0, len(req.PassengerIDs))
	for i, passengerID := range req.PassengerIDs {
		tickets = append(tickets, trip.NewTicket(ticketIDs[i], tripID, req.ID, passengerID))
	}
	if err := service.ticketRepo.CreateAll(ctx, tickets); err != nil {
		return "", apperrors.Wrap(err, "create trip tickets")
	}

	return tripID, nil
}
