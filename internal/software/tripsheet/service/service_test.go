package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/booking"
	"fleetdesk/internal/domain/fleet"
	"fleetdesk/internal/domain/location"
	"fleetdesk/internal/domain/trip"
	"fleetdesk/internal/general/logger"
	"fleetdesk/internal/ports"
	"fleetdesk/internal/software/memstore"
)

func newTestService(store *memstore.Store) ports.TripSheetService {
	return NewTripSheetService(
		logger.New("test"),
		memstore.UOW{},
		memstore.TripRepo{S: store},
		memstore.StopRepo{S: store},
		memstore.TicketRepo{S: store},
		memstore.BookingRepo{S: store},
		memstore.LocationRepo{S: store},
		memstore.DriverRepo{S: store},
		memstore.VehicleRepo{S: store},
		memstore.OutsourcedVehicleRepo{S: store},
	)
}

func TestGenerateProducesPDF(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store)

	departure := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Minute)
	tr, err := trip.New("TR-1", departure, departure.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("seed trip: %v", err)
	}
	driverID := "DRV-1"
	if err := tr.AssignVehicle("VEH-1", driverID); err != nil {
		t.Fatalf("assign vehicle: %v", err)
	}
	store.Trips["TR-1"] = tr
	store.Drivers[driverID] = &fleet.Driver{ID: driverID, Name: "Dana", Phone: "555-0100"}
	store.Vehicles["VEH-1"] = &fleet.Vehicle{ID: "VEH-1", PlateNumber: "AA-101", Model: "Sprinter", Capacity: 5, DriverID: &driverID}
	store.Locations["LOC-1"] = &location.Location{ID: "LOC-1", Name: "Plant gate", Address: "1 Works Rd"}
	store.Locations["LOC-2"] = &location.Location{ID: "LOC-2", Name: "Airport", Address: "2 Apron Way"}
	store.Stops["TR-1"] = []trip.Stop{
		{ID: "TS-1", TripID: "TR-1", BookingRequestID: "BR-1", Type: trip.StopPickup, Order: 1, LocationID: "LOC-1", PlannedTime: departure},
		{ID: "TS-2", TripID: "TR-1", BookingRequestID: "BR-1", Type: trip.StopDropOff, Order: 2, LocationID: "LOC-2", PlannedTime: departure.Add(2 * time.Hour)},
	}
	req, err := booking.NewRequest("BR-1", booking.PriorityNormal, "USR-9", []string{"USR-9"}, "Rae", "555-0101", departure, departure.Add(2*time.Hour), "LOC-1", "LOC-2", "site visit", "")
	if err != nil {
		t.Fatalf("seed request: %v", err)
	}
	store.Bookings["BR-1"] = req
	store.Tickets["TT-1"] = trip.NewTicket("TT-1", "TR-1", "BR-1", "USR-9")

	out, filename, err := svc.Generate(context.Background(), "TR-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if filename != "trip-sheet-tr-1.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF")
	}
}

func TestGenerateUnknownTrip(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store)

	if _, _, err := svc.Generate(context.Background(), "TR-404"); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("unknown trip: got %v, want not found", err)
	}
}
