package service

import (
	"context"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/booking"
	"fleetdesk/internal/domain/ident"
	"fleetdesk/internal/domain/trip"
	"fleetdesk/internal/ports"
)

// Combine merges several pending booking requests into one trip on a shared
// owned vehicle. Each request's tickets move to the new trip and its own
// scheduling trip is superseded; Uncombine reverses the whole operation.
func (service *tripService) Combine(ctx context.Context, actor ports.Actor, in ports.CombineInput) (*ports.TripDetail, error) {
	var detail *ports.TripDetail

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		if len(in.RequestIDs) < 2 {
			return apperrors.Validation("combining requires at least two booking requests")
		}

		vehicle, err := service.vehicleRepo.GetByID(txCtx, in.VehicleID)
		if err != nil {
			return apperrors.NotFound("vehicle %s not found", in.VehicleID)
		}

		requests := make([]*booking.Request, 0, len(in.RequestIDs))
		sources := make([]*trip.Trip, 0, len(in.RequestIDs))
		passengers := 0
		for _, requestID := range in.RequestIDs {
			req, err := service.bookingRepo.GetByID(txCtx, requestID)
			if err != nil {
				return apperrors.NotFound("booking request %s not found", requestID)
			}
			if req.Status != booking.StatusPending {
				return apperrors.InvalidState("booking request %s is %s, expected PENDING", req.ID, req.Status)
			}

			source, err := service.schedulingTripOf(txCtx, requestID)
			if err != nil {
				return err
			}
			if source == nil {
				return apperrors.InvalidState("booking request %s has no scheduling trip to combine", requestID)
			}

			requests = append(requests, req)
			sources = append(sources, source)
			passengers += req.NumberOfPassengers
		}

		if !vehicle.Assignable(passengers) {
			return apperrors.Validation("vehicle %s cannot serve %d passengers", vehicle.ID, passengers)
		}

		tripID, err := service.ids.AllocateOne(txCtx, ident.KindTrip)
		if err != nil {
			return err
		}
		t, err := trip.New(tripID, in.DepartureTime, in.ArrivalTime)
		if err != nil {
			return apperrors.Validation("%v", err)
		}
		if err := t.AssignVehicle(vehicle.ID, *vehicle.DriverID); err != nil {
			return apperrors.Internal("assign vehicle to combined trip", err)
		}
		if err := service.tripRepo.Create(txCtx, t); err != nil {
			return apperrors.Wrap(err, "create combined trip")
		}

		stops, err := service.combinedStops(txCtx, t.ID, requests, in.StopOrders)
		if err != nil {
			return err
		}
		if err := service.stopRepo.CreateAll(txCtx, stops); err != nil {
			return apperrors.Wrap(err, "create combined trip stops")
		}

		for i, req := range requests {
			source := sources[i]
			if err := service.ticketRepo.MoveToTrip(txCtx, req.ID, source.ID, t.ID); err != nil {
				return apperrors.Wrap(err, "move trip tickets")
			}
			if err := source.MarkCombinedInto(t.ID, "Combined into trip "+t.ID); err != nil {
				return apperrors.InvalidState("trip %s is %s", source.ID, source.Status)
			}
			if err := service.tripRepo.Update(txCtx, source); err != nil {
				return apperrors.Wrap(err, "update superseded trip")
			}
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindTrip), t.ID, "combined", "Combined booking requests onto one trip"); err != nil {
			return err
		}

		detail, err = service.loadDetail(txCtx, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info(ctx, "trip_combined", "Combined booking requests into one trip", map[string]any{
		"trip_id":  detail.Trip.ID,
		"requests": len(in.RequestIDs),
	})
	return detail, nil
}

// combinedStops builds the dense stop sequence of a combined trip: one
// pickup and one drop-off per request, at the coordinator-chosen orders.
func (service *tripService) combinedStops(ctx context.Context, tripID string, requests []*booking.Request, stopOrders map[string][2]int) ([]trip.Stop, error) {
	stopIDs, err := service.ids.Allocate(ctx, ident.KindTripStop, 2*len(requests))
	if err != nil {
		return nil, err
	}

	stops := make([]trip.Stop, 0, 2*len(requests))
	for i, req := range requests {
		orders, ok := stopOrders[req.ID]
		if !ok {
			return nil, apperrors.Validation("no stop orders given for booking request %s", req.ID)
		}
		if orders[0] >= orders[1] {
			return nil, apperrors.Validation("pickup of booking request %s must precede its drop-off", req.ID)
		}
		stops = append(stops,
			trip.Stop{ID: stopIDs[2*i], TripID: tripID, BookingRequestID: req.ID, Type: trip.StopPickup, Order: orders[0], LocationID: req.DepartureLocationID, PlannedTime: req.DepartureTime},
			trip.Stop{ID: stopIDs[2*i+1], TripID: tripID, BookingRequestID: req.ID, Type: trip.StopDropOff, Order: orders[1], LocationID: req.ArrivalLocationID, PlannedTime: req.ArrivalTime},
		)
	}
	if err := trip.ValidateDenseOrder(stops); err != nil {
		return nil, apperrors.Validation("%v", err)
	}
	return trip.SortByOrder(stops), nil
}

// Uncombine dissolves a combined trip that has not been approved yet: every
// superseded scheduling trip takes its tickets back and returns to
// SCHEDULING, and the combined trip is removed.
func (service *tripService) Uncombine(ctx context.Context, actor ports.Actor, tripID string) ([]*trip.Trip, error) {
	var restored []*trip.Trip

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		t, err := service.tripRepo.GetByID(txCtx, tripID)
		if err != nil {
			return apperrors.NotFound("trip %s not found", tripID)
		}
		if t.Status != trip.StatusScheduling {
			return apperrors.InvalidState("trip %s is %s, only a trip still in scheduling can be uncombined", t.ID, t.Status)
		}

		sources, err := service.tripRepo.ListCombinedInto(txCtx, t.ID)
		if err != nil {
			return apperrors.Wrap(err, "list superseded trips")
		}
		if len(sources) == 0 {
			return apperrors.InvalidState("trip %s is not a combined trip", t.ID)
		}

		for _, source := range sources {
			if source.SourceBookingRequestID == nil {
				return apperrors.Internal("superseded trip has no booking request", nil)
			}
			if err := service.ticketRepo.MoveToTrip(txCtx, *source.SourceBookingRequestID, t.ID, source.ID); err != nil {
				return apperrors.Wrap(err, "move trip tickets")
			}
			source.RestoreFromCombine()
			if err := service.tripRepo.Update(txCtx, source); err != nil {
				return apperrors.Wrap(err, "restore superseded trip")
			}
			restored = append(restored, source)
		}

		if err := service.stopRepo.DeleteByTrip(txCtx, t.ID); err != nil {
			return apperrors.Wrap(err, "delete combined trip stops")
		}
		if err := service.scheduleRepo.DeleteByTrip(txCtx, t.ID); err != nil {
			return apperrors.Wrap(err, "delete combined trip schedules")
		}
		if err := service.accessRepo.DeleteByTrip(txCtx, t.ID); err != nil {
			return apperrors.Wrap(err, "delete combined trip access codes")
		}
		if err := service.tripRepo.Delete(txCtx, t.ID); err != nil {
			return apperrors.Wrap(err, "delete combined trip")
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindTrip), t.ID, "uncombined", "Dissolved combined trip"); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return restored, nil
}

// AddBookingRequest folds one more pending request into a combined trip that
// is still in scheduling. The stop orders name the positions of the new
// pickup and drop-off in the resulting sequence.
func (service *tripService) AddBookingRequest(ctx context.Context, actor ports.Actor, tripID, bookingRequestID string, stopOrders [2]int) (*ports.TripDetail, error) {
	var detail *ports.TripDetail

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		t, err := service.tripRepo.GetByID(txCtx, tripID)
		if err != nil {
			return apperrors.NotFound("trip %s not found", tripID)
		}
		if t.Status != trip.StatusScheduling {
			return apperrors.InvalidState("trip %s is %s, requests can only be added while scheduling", t.ID, t.Status)
		}
		if t.VehicleID == nil {
			return apperrors.InvalidState("trip %s has no owned vehicle to share", t.ID)
		}

		req, err := service.bookingRepo.GetByID(txCtx, bookingRequestID)
		if err != nil {
			return apperrors.NotFound("booking request %s not found", bookingRequestID)
		}
		if req.Status != booking.StatusPending {
			return apperrors.InvalidState("booking request %s is %s, expected PENDING", req.ID, req.Status)
		}

		source, err := service.schedulingTripOf(txCtx, bookingRequestID)
		if err != nil {
			return err
		}
		if source == nil {
			return apperrors.InvalidState("booking request %s has no scheduling trip to combine", bookingRequestID)
		}
		if source.ID == t.ID {
			return apperrors.InvalidState("booking request %s already rides trip %s", bookingRequestID, t.ID)
		}

		vehicle, err := service.vehicleRepo.GetByID(txCtx, *t.VehicleID)
		if err != nil {
			return apperrors.Wrap(err, "load trip vehicle")
		}
		tickets, err := service.ticketRepo.ListByTrip(txCtx, t.ID)
		if err != nil {
			return apperrors.Wrap(err, "list trip tickets")
		}
		if vehicle.Capacity < len(tickets)+req.NumberOfPassengers {
			return apperrors.Validation("vehicle %s cannot serve %d passengers", vehicle.ID, len(tickets)+req.NumberOfPassengers)
		}

		if err := service.insertRequestStops(txCtx, t.ID, req, stopOrders); err != nil {
			return err
		}

		if err := service.ticketRepo.MoveToTrip(txCtx, req.ID, source.ID, t.ID); err != nil {
			return apperrors.Wrap(err, "move trip tickets")
		}
		if err := source.MarkCombinedInto(t.ID, "Combined into trip "+t.ID); err != nil {
			return apperrors.InvalidState("trip %s is %s", source.ID, source.Status)
		}
		if err := service.tripRepo.Update(txCtx, source); err != nil {
			return apperrors.Wrap(err, "update superseded trip")
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindTrip), t.ID, "request_added", "Added booking request "+req.ID); err != nil {
			return err
		}

		detail, err = service.loadDetail(txCtx, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return detail, nil
}

// insertRequestStops splices a request's pickup and drop-off into the trip's
// stop sequence at the given final positions and renumbers the rest.
func (service *tripService) insertRequestStops(ctx context.Context, tripID string, req *booking.Request, stopOrders [2]int) error {
	existing, err := service.stopRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return apperrors.Wrap(err, "list trip stops")
	}
	existing = trip.SortByOrder(existing)

	total := len(existing) + 2
	if stopOrders[0] < 1 || stopOrders[1] > total || stopOrders[0] >= stopOrders[1] {
		return apperrors.Validation("stop orders %d and %d do not fit a sequence of %d stops", stopOrders[0], stopOrders[1], total)
	}

	stopIDs, err := service.ids.Allocate(ctx, ident.KindTripStop, 2)
	if err != nil {
		return err
	}
	pickup := trip.Stop{ID: stopIDs[0], TripID: tripID, BookingRequestID: req.ID, Type: trip.StopPickup, LocationID: req.DepartureLocationID, PlannedTime: req.DepartureTime}
	dropoff := trip.Stop{ID: stopIDs[1], TripID: tripID, BookingRequestID: req.ID, Type: trip.StopDropOff, LocationID: req.ArrivalLocationID, PlannedTime: req.ArrivalTime}

	merged := make([]trip.Stop, 0, total)
	next := 0
	for position := 1; position <= total; position++ {
		switch position {
		case stopOrders[0]:
			merged = append(merged, pickup)
		case stopOrders[1]:
			merged = append(merged, dropoff)
		default:
			merged = append(merged, existing[next])
			next++
		}
		merged[len(merged)-1].Order = position
	}

	if err := service.stopRepo.ReplaceForTrip(ctx, tripID, merged); err != nil {
		return apperrors.Wrap(err, "replace trip stops")
	}
	return nil
}

// RemoveBookingRequest takes one request off a shared trip before departure:
// its stops leave the sequence, its tickets return to its own scheduling
// trip, and that trip goes back to SCHEDULING.
func (service *tripService) RemoveBookingRequest(ctx context.Context, actor ports.Actor, tripID, bookingRequestID string) (*ports.TripDetail, error) {
	var detail *ports.TripDetail

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		t, err := service.tripRepo.GetByID(txCtx, tripID)
		if err != nil {
			return apperrors.NotFound("trip %s not found", tripID)
		}
		if t.Status != trip.StatusScheduling && t.Status != trip.StatusScheduled {
			return apperrors.InvalidState("trip %s is %s, requests can only be removed before departure", t.ID, t.Status)
		}

		tickets, err := service.ticketRepo.ListByTrip(txCtx, t.ID)
		if err != nil {
			return apperrors.Wrap(err, "list trip tickets")
		}
		riders := requestIDsOf(tickets)
		holds := false
		for _, id := range riders {
			if id == bookingRequestID {
				holds = true
			}
		}
		if !holds {
			return apperrors.NotFound("booking request %s has no tickets on trip %s", bookingRequestID, tripID)
		}
		if len(riders) < 2 {
			return apperrors.InvalidState("trip %s only serves booking request %s, cancel the trip instead", t.ID, bookingRequestID)
		}

		stops, err := service.stopRepo.ListByTrip(txCtx, t.ID)
		if err != nil {
			return apperrors.Wrap(err, "list trip stops")
		}
		kept := stops[:0]
		for _, s := range stops {
			if s.BookingRequestID != bookingRequestID {
				kept = append(kept, s)
			}
		}
		if err := service.stopRepo.ReplaceForTrip(txCtx, t.ID, trip.Renumber(kept)); err != nil {
			return apperrors.Wrap(err, "replace trip stops")
		}

		if err := service.restoreSourceTrip(txCtx, t.ID, bookingRequestID); err != nil {
			return err
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindTrip), t.ID, "request_removed", "Removed booking request "+bookingRequestID); err != nil {
			return err
		}

		detail, err = service.loadDetail(txCtx, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return detail, nil
}

// restoreSourceTrip hands a request's tickets back to its own scheduling
// trip, creating one when the request never had a superseded trip behind
// the combine.
func (service *tripService) restoreSourceTrip(ctx context.Context, combinedTripID, bookingRequestID string) error {
	sources, err := service.tripRepo.ListCombinedInto(ctx, combinedTripID)
	if err != nil {
		return apperrors.Wrap(err, "list superseded trips")
	}
	for _, source := range sources {
		if source.SourceBookingRequestID == nil || *source.SourceBookingRequestID != bookingRequestID {
			continue
		}
		if err := service.ticketRepo.MoveToTrip(ctx, bookingRequestID, combinedTripID, source.ID); err != nil {
			return apperrors.Wrap(err, "move trip tickets")
		}
		source.RestoreFromCombine()
		if err := service.tripRepo.Update(ctx, source); err != nil {
			return apperrors.Wrap(err, "restore superseded trip")
		}
		return nil
	}

	req, err := service.bookingRepo.GetByID(ctx, bookingRequestID)
	if err != nil {
		return apperrors.Wrap(err, "load booking request")
	}

	tripID, err := service.ids.AllocateOne(ctx, ident.KindTrip)
	if err != nil {
		return err
	}
	restored, err := trip.New(tripID, req.DepartureTime, req.ArrivalTime)
	if err != nil {
		return apperrors.Internal("rebuild scheduling trip", err)
	}
	restored.SourceBookingRequestID = &req.ID
	if err := service.tripRepo.Create(ctx, restored); err != nil {
		return apperrors.Wrap(err, "create scheduling trip")
	}

	stopIDs, err := service.ids.Allocate(ctx, ident.KindTripStop, 2)
	if err != nil {
		return err
	}
	stops := []trip.Stop{
		{ID: stopIDs[0], TripID: tripID, BookingRequestID: req.ID, Type: trip.StopPickup, Order: 1, LocationID: req.DepartureLocationID, PlannedTime: req.DepartureTime},
		{ID: stopIDs[1], TripID: tripID, BookingRequestID: req.ID, Type: trip.StopDropOff, Order: 2, LocationID: req.ArrivalLocationID, PlannedTime: req.ArrivalTime},
	}
	if err := service.stopRepo.CreateAll(ctx, stops); err != nil {
		return apperrors.Wrap(err, "create scheduling trip stops")
	}

	if err := service.ticketRepo.MoveToTrip(ctx, bookingRequestID, combinedTripID, tripID); err != nil {
		return apperrors.Wrap(err, "move trip tickets")
	}
	return nil
}

// schedulingTripOf returns the request's own non-superseded scheduling
// trip, nil when it has none. A combined trip holding the request's tickets
// does not count: it belongs to several requests, not this one.
func (service *tripService) schedulingTripOf(ctx context.Context, bookingRequestID string) (*trip.Trip, error) {
	trips, err := service.tripRepo.ListByBookingRequest(ctx, bookingRequestID)
	if err != nil {
		return nil, apperrors.Wrap(err, "list trips for booking request")
	}
	for _, t := range trips {
		if t.Status != trip.StatusScheduling || t.CombinedIntoID != nil {
			continue
		}
		if t.SourceBookingRequestID != nil && *t.SourceBookingRequestID == bookingRequestID {
			return t, nil
		}
	}
	return nil, nil
}
