package service

import (
	"context"
	"testing"
	"time"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/booking"
	"fleetdesk/internal/domain/fleet"
	"fleetdesk/internal/domain/trip"
	"fleetdesk/internal/general/logger"
	"fleetdesk/internal/ports"
	calendarservice "fleetdesk/internal/software/calendar/service"
	locationservice "fleetdesk/internal/software/location/service"
	"fleetdesk/internal/software/memstore"
	routeservice "fleetdesk/internal/software/route/service"
	tripservice "fleetdesk/internal/software/trip/service"
)

func newTestService(store *memstore.Store) (ports.BookingService, *memstore.Notifier) {
	log := logger.New("test")
	ids := memstore.NewAllocator()
	notifier := &memstore.Notifier{}
	activity := &memstore.ActivityLog{}

	resolver := locationservice.NewResolver(log, memstore.UOW{}, memstore.LocationRepo{S: store}, ids)
	calendar := calendarservice.NewCalendarService(
		log,
		memstore.UOW{},
		memstore.ScheduleRepo{S: store},
		memstore.LeaveRequestRepo{S: store},
		memstore.VehicleServiceRepo{S: store},
		memstore.DriverRepo{S: store},
		memstore.VehicleRepo{S: store},
		ids,
		notifier,
		activity,
	)
	trips := tripservice.NewTripService(
		log,
		memstore.UOW{},
		memstore.TripRepo{S: store},
		memstore.StopRepo{S: store},
		memstore.TicketRepo{S: store},
		memstore.BookingRepo{S: store},
		memstore.ScheduleRepo{S: store},
		memstore.DriverRepo{S: store},
		memstore.VehicleRepo{S: store},
		memstore.OutsourcedVehicleRepo{S: store},
		memstore.AccessRepo{S: store},
		calendar,
		ids,
		notifier,
		activity,
	)
	svc := NewBookingService(
		log,
		memstore.UOW{},
		memstore.BookingRepo{S: store},
		memstore.TripRepo{S: store},
		memstore.StopRepo{S: store},
		memstore.TicketRepo{S: store},
		memstore.VehicleRepo{S: store},
		resolver,
		routeservice.NewHaversineEstimator(),
		calendar,
		trips,
		ids,
		notifier,
		activity,
	)
	return svc, notifier
}

func seedFleet(store *memstore.Store) {
	driverID := "DRV-1"
	store.Drivers[driverID] = &fleet.Driver{ID: driverID, Name: "Dana", Availability: fleet.DriverAvailable}
	store.Vehicles["VEH-1"] = &fleet.Vehicle{
		ID: "VEH-1", PlateNumber: "AA-101", Model: "Sprinter", Capacity: 5,
		Availability: fleet.VehicleAvailable, DriverID: &driverID,
	}
}

func baseInput(tripType booking.TripType) ports.CreateBookingInput {
	departure := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Minute)
	in := ports.CreateBookingInput{
		RequesterID:       "USR-9",
		PassengerIDs:      []string{"USR-9", "USR-10"},
		ContactName:       "Rae",
		ContactPhone:      "555-0101",
		TripType:          tripType,
		DepartureTime:     departure,
		ArrivalTime:       departure.Add(2 * time.Hour),
		DepartureLocation: ports.LocationRef{Name: "Plant gate", Address: "1 Works Rd", Latitude: 52.1, Longitude: 5.3},
		ArrivalLocation:   ports.LocationRef{Name: "Airport", Address: "2 Apron Way", Latitude: 52.4, Longitude: 4.8},
		TripPurpose:       "site visit",
	}
	if tripType == booking.TypeRoundTrip {
		in.ReturnDepartureTime = in.ArrivalTime.Add(6 * time.Hour)
		in.ReturnArrivalTime = in.ReturnDepartureTime.Add(2 * time.Hour)
	}
	return in
}

func TestCreateOneWayBuildsFullGraph(t *testing.T) {
	store := memstore.New()
	svc, notifier := newTestService(store)

	projections, err := svc.Create(context.Background(), ports.Actor{ID: "USR-9"}, baseInput(booking.TypeOneWay))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(projections) != 1 {
		t.Fatalf("got %d legs, want 1", len(projections))
	}

	leg := projections[0]
	if leg.Request.Status != booking.StatusPending {
		t.Fatalf("request is %s, want PENDING", leg.Request.Status)
	}
	if leg.TripID == "" {
		t.Fatalf("leg has no scheduling trip")
	}

	tr := store.Trips[leg.TripID]
	if tr == nil || tr.Status != trip.StatusScheduling {
		t.Fatalf("scheduling trip missing or in wrong state: %+v", tr)
	}
	if tr.SourceBookingRequestID == nil || *tr.SourceBookingRequestID != leg.Request.ID {
		t.Fatalf("trip not linked to its request")
	}
	if stops := store.Stops[leg.TripID]; len(stops) != 2 {
		t.Fatalf("trip has %d stops, want 2", len(stops))
	}
	tickets := 0
	for _, ticket := range store.Tickets {
		if ticket.TripID == leg.TripID {
			tickets++
		}
	}
	if tickets != 2 {
		t.Fatalf("trip has %d tickets, want one per passenger", tickets)
	}
	if len(store.Locations) != 2 {
		t.Fatalf("store holds %d locations, want 2", len(store.Locations))
	}
	if len(notifier.Sent) != 1 || notifier.Sent[0].Audience != "coordinator" {
		t.Fatalf("coordinator notification missing: %+v", notifier.Sent)
	}
	if _, ok := notifier.Sent[0].Data["distance_km"]; !ok {
		t.Fatalf("notification carries no route estimate: %+v", notifier.Sent[0].Data)
	}
}

func TestCreateRoundTripLinksLegs(t *testing.T) {
	store := memstore.New()
	svc, _ := newTestService(store)

	projections, err := svc.Create(context.Background(), ports.Actor{ID: "USR-9"}, baseInput(booking.TypeRoundTrip))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(projections) != 2 {
		t.Fatalf("got %d legs, want 2", len(projections))
	}

	outbound, ret := projections[0].Request, projections[1].Request
	if outbound.LinkedRequestID == nil || *outbound.LinkedRequestID != ret.ID {
		t.Fatalf("outbound not linked to return")
	}
	if ret.LinkedRequestID == nil || *ret.LinkedRequestID != outbound.ID {
		t.Fatalf("return not linked to outbound")
	}
	if outbound.Type != booking.TypeRoundTrip || ret.Type != booking.TypeRoundTrip {
		t.Fatalf("legs not marked ROUND_TRIP")
	}
	// the return leg runs the same endpoints in reverse
	if ret.DepartureLocationID != outbound.ArrivalLocationID || ret.ArrivalLocationID != outbound.DepartureLocationID {
		t.Fatalf("return leg endpoints not mirrored")
	}
	if len(store.Trips) != 2 {
		t.Fatalf("store holds %d trips, want one per leg", len(store.Trips))
	}
}

func TestCreateRejectsBadWindows(t *testing.T) {
	store := memstore.New()
	svc, _ := newTestService(store)

	in := baseInput(booking.TypeOneWay)
	in.ArrivalTime = in.DepartureTime.Add(-time.Hour)
	if _, err := svc.Create(context.Background(), ports.Actor{ID: "USR-9"}, in); !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("inverted window: got %v, want validation error", err)
	}

	in = baseInput(booking.TypeRoundTrip)
	in.ReturnDepartureTime = in.DepartureTime.Add(-time.Hour)
	in.ReturnArrivalTime = in.ReturnDepartureTime.Add(time.Hour)
	if _, err := svc.Create(context.Background(), ports.Actor{ID: "USR-9"}, in); !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("return before outbound: got %v, want validation error", err)
	}
}

func TestRejectRequiresReasonAndCancelsTrip(t *testing.T) {
	store := memstore.New()
	svc, _ := newTestService(store)

	projections, err := svc.Create(context.Background(), ports.Actor{ID: "USR-9"}, baseInput(booking.TypeOneWay))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	leg := projections[0]
	coordinator := ports.Actor{ID: "USR-1", Role: "coordinator"}

	if _, err := svc.Reject(context.Background(), coordinator, leg.Request.ID, "  "); !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("blank reason: got %v, want validation error", err)
	}

	rejected, err := svc.Reject(context.Background(), coordinator, leg.Request.ID, "no capacity this week")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != booking.StatusRejected || rejected.StatusReason == nil {
		t.Fatalf("request after reject: status=%s reason=%v", rejected.Status, rejected.StatusReason)
	}
	if tr := store.Trips[leg.TripID]; tr.Status != trip.StatusCancelled {
		t.Fatalf("scheduling trip is %s, want CANCELLED", tr.Status)
	}

	// terminal requests cannot be rejected again
	if _, err := svc.Reject(context.Background(), coordinator, leg.Request.ID, "again"); !apperrors.IsKind(err, apperrors.KindInvalidState) {
		t.Fatalf("double reject: got %v, want invalid state", err)
	}
}

func TestAssignVehicleApprovesRequest(t *testing.T) {
	store := memstore.New()
	svc, _ := newTestService(store)
	seedFleet(store)

	projections, err := svc.Create(context.Background(), ports.Actor{ID: "USR-9"}, baseInput(booking.TypeOneWay))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	leg := projections[0]

	approved, err := svc.AssignVehicle(context.Background(), ports.Actor{ID: "USR-1"}, leg.Request.ID, "VEH-1")
	if err != nil {
		t.Fatalf("assign vehicle: %v", err)
	}
	if approved.Status != booking.StatusApproved {
		t.Fatalf("request is %s, want APPROVED", approved.Status)
	}

	tr := store.Trips[leg.TripID]
	if tr.Status != trip.StatusScheduled || tr.VehicleID == nil || *tr.VehicleID != "VEH-1" {
		t.Fatalf("trip after assignment: status=%s vehicle=%v", tr.Status, tr.VehicleID)
	}
	if len(store.Schedules) != 1 {
		t.Fatalf("store holds %d schedules, want 1", len(store.Schedules))
	}

	// an approved request cannot be assigned again
	if _, err := svc.AssignVehicle(context.Background(), ports.Actor{ID: "USR-1"}, leg.Request.ID, "VEH-1"); !apperrors.IsKind(err, apperrors.KindInvalidState) {
		t.Fatalf("double assign: got %v, want invalid state", err)
	}
}

func TestCancelLeavesRunningTripAlone(t *testing.T) {
	store := memstore.New()
	svc, _ := newTestService(store)
	seedFleet(store)

	projections, err := svc.Create(context.Background(), ports.Actor{ID: "USR-9"}, baseInput(booking.TypeOneWay))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	leg := projections[0]
	if _, err := svc.AssignVehicle(context.Background(), ports.Actor{ID: "USR-1"}, leg.Request.ID, "VEH-1"); err != nil {
		t.Fatalf("assign vehicle: %v", err)
	}
	store.Trips[leg.TripID].Status = trip.StatusInProgress

	cancelled, err := svc.Cancel(context.Background(), ports.Actor{ID: "USR-9"}, leg.Request.ID, "plans changed")
	if err != nil {
		t.Fatalf("cancel with running trip: %v", err)
	}
	if cancelled.Status != booking.StatusCancelled {
		t.Fatalf("request is %s, want CANCELLED", cancelled.Status)
	}
	if tr := store.Trips[leg.TripID]; tr.Status != trip.StatusInProgress {
		t.Fatalf("running trip is %s, want IN_PROGRESS", tr.Status)
	}
	if len(store.Schedules) != 1 {
		t.Fatalf("store holds %d schedules, want the running trip's 1", len(store.Schedules))
	}
}

func TestAssignOutsourcedVehicleApprovesWithoutCalendar(t *testing.T) {
	store := memstore.New()
	svc, _ := newTestService(store)

	projections, err := svc.Create(context.Background(), ports.Actor{ID: "USR-9"}, baseInput(booking.TypeOneWay))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	leg := projections[0]

	approved, err := svc.AssignOutsourcedVehicle(context.Background(), ports.Actor{ID: "USR-1"}, leg.Request.ID, ports.AssignOutsourcedInput{
		DriverName: "Sam", DriverPhone: "555-0199", PlateNumber: "RR-400", Capacity: 4, Cost: 150, VendorName: "Roadrunner",
	})
	if err != nil {
		t.Fatalf("assign outsourced: %v", err)
	}
	if approved.Status != booking.StatusApproved {
		t.Fatalf("request is %s, want APPROVED", approved.Status)
	}

	tr := store.Trips[leg.TripID]
	if tr.OutsourcedVehicleID == nil {
		t.Fatalf("trip has no outsourced vehicle")
	}
	if len(store.OutsourcedVehicles) != 1 {
		t.Fatalf("store holds %d outsourced vehicles, want 1", len(store.OutsourcedVehicles))
	}
	if len(store.Schedules) != 0 {
		t.Fatalf("outsourced trip wrote %d schedules", len(store.Schedules))
	}
}

func TestListAvailableVehiclesAnnotatesConflicts(t *testing.T) {
	store := memstore.New()
	svc, _ := newTestService(store)
	seedFleet(store)
	driver2 := "DRV-2"
	store.Drivers[driver2] = &fleet.Driver{ID: driver2, Name: "Max", Availability: fleet.DriverAvailable}
	store.Vehicles["VEH-2"] = &fleet.Vehicle{
		ID: "VEH-2", PlateNumber: "AA-102", Model: "Transit", Capacity: 1,
		Availability: fleet.VehicleAvailable, DriverID: &driver2,
	}

	projections, err := svc.Create(context.Background(), ports.Actor{ID: "USR-9"}, baseInput(booking.TypeOneWay))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	first := projections[0]

	// occupy VEH-1's driver over the same window
	if _, err := svc.AssignVehicle(context.Background(), ports.Actor{ID: "USR-1"}, first.Request.ID, "VEH-1"); err != nil {
		t.Fatalf("assign vehicle: %v", err)
	}

	projections, err = svc.Create(context.Background(), ports.Actor{ID: "USR-9"}, baseInput(booking.TypeOneWay))
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	second := projections[0]

	available, err := svc.ListAvailableVehicles(context.Background(), second.Request.ID)
	if err != nil {
		t.Fatalf("list vehicles: %v", err)
	}

	// VEH-2 seats one of the two passengers and is filtered out; VEH-1 is
	// listed with its conflicts, not hidden
	if len(available) != 1 {
		t.Fatalf("got %d vehicles, want 1", len(available))
	}
	if available[0].Vehicle.ID != "VEH-1" {
		t.Fatalf("listed vehicle %s, want VEH-1", available[0].Vehicle.ID)
	}
	if len(available[0].ConflictIDs) == 0 {
		t.Fatalf("busy vehicle listed without conflicts")
	}
}
