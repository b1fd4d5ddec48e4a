package service

import (
	"context"
	"testing"
	"time"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/trip"
	"fleetdesk/internal/general/logger"
	"fleetdesk/internal/ports"
	"fleetdesk/internal/software/memstore"
)

func newTestService(store *memstore.Store) ports.TicketService {
	return NewTicketService(
		logger.New("test"),
		memstore.UOW{},
		memstore.TripRepo{S: store},
		memstore.TicketRepo{S: store},
		&memstore.ActivityLog{},
	)
}

// seedRunningTrip puts an in-progress trip with two tickets of one booking
// request in the store and returns its driver id.
func seedRunningTrip(t *testing.T, store *memstore.Store) string {
	t.Helper()

	departure := time.Now().UTC().Add(-time.Hour)
	tr, err := trip.New("TR-1", departure, departure.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("seed trip: %v", err)
	}
	if err := tr.AssignVehicle("VEH-1", "DRV-1"); err != nil {
		t.Fatalf("assign vehicle: %v", err)
	}
	if err := tr.Approve(); err != nil {
		t.Fatalf("approve trip: %v", err)
	}
	if err := tr.Start(departure); err != nil {
		t.Fatalf("start trip: %v", err)
	}
	store.Trips["TR-1"] = tr

	store.Tickets["TT-1"] = trip.NewTicket("TT-1", "TR-1", "BR-1", "USR-2")
	store.Tickets["TT-2"] = trip.NewTicket("TT-2", "TR-1", "BR-1", "USR-3")
	return "DRV-1"
}

func TestConfirmPickUpMovesWholeGroup(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store)
	driverID := seedRunningTrip(t, store)

	tickets, err := svc.ConfirmPickUp(context.Background(), ports.Actor{ID: driverID, Role: "driver"}, "TR-1", "BR-1")
	if err != nil {
		t.Fatalf("confirm pickup: %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("moved %d tickets, want 2", len(tickets))
	}
	for _, ticket := range store.Tickets {
		if ticket.Status != trip.TicketPickedUp {
			t.Fatalf("ticket %s is %s, want PICKED_UP", ticket.ID, ticket.Status)
		}
	}

	if _, err := svc.ConfirmDroppedOff(context.Background(), ports.Actor{ID: driverID}, "TR-1", "BR-1"); err != nil {
		t.Fatalf("confirm dropoff: %v", err)
	}
	for _, ticket := range store.Tickets {
		if ticket.Status != trip.TicketDroppedOff {
			t.Fatalf("ticket %s is %s, want DROPPED_OFF", ticket.ID, ticket.Status)
		}
	}
}

func TestConfirmRejectsForeignDriver(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store)
	seedRunningTrip(t, store)

	_, err := svc.ConfirmPickUp(context.Background(), ports.Actor{ID: "DRV-9", Role: "driver"}, "TR-1", "BR-1")
	if !apperrors.IsKind(err, apperrors.KindForbidden) {
		t.Fatalf("foreign driver: got %v, want forbidden", err)
	}
	for _, ticket := range store.Tickets {
		if ticket.Status != trip.TicketScheduled {
			t.Fatalf("ticket %s moved to %s", ticket.ID, ticket.Status)
		}
	}
}

func TestNoShowRequiresReasonAndIsTerminal(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store)
	driverID := seedRunningTrip(t, store)
	driver := ports.Actor{ID: driverID, Role: "driver"}

	if _, err := svc.ConfirmPassengersNoShow(context.Background(), driver, "TR-1", "BR-1", "  "); !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("blank reason: got %v, want validation error", err)
	}

	if _, err := svc.ConfirmPassengersNoShow(context.Background(), driver, "TR-1", "BR-1", "nobody at the pickup point"); err != nil {
		t.Fatalf("confirm no-show: %v", err)
	}
	for _, ticket := range store.Tickets {
		if ticket.Status != trip.TicketNoShow || ticket.NoShowReason == nil {
			t.Fatalf("ticket %s: status=%s reason=%v", ticket.ID, ticket.Status, ticket.NoShowReason)
		}
	}

	// NO_SHOW is terminal, the group cannot be picked up afterwards
	if _, err := svc.ConfirmPickUp(context.Background(), driver, "TR-1", "BR-1"); !apperrors.IsKind(err, apperrors.KindInvalidState) {
		t.Fatalf("pickup after no-show: got %v, want invalid state", err)
	}
}

func TestConfirmRequiresRunningTrip(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store)

	departure := time.Now().UTC().Add(time.Hour)
	tr, err := trip.New("TR-1", departure, departure.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("seed trip: %v", err)
	}
	store.Trips["TR-1"] = tr
	store.Tickets["TT-1"] = trip.NewTicket("TT-1", "TR-1", "BR-1", "USR-2")

	_, err = svc.ConfirmPickUp(context.Background(), ports.Actor{ID: "DRV-1"}, "TR-1", "BR-1")
	if !apperrors.IsKind(err, apperrors.KindInvalidState) {
		t.Fatalf("pickup before departure: got %v, want invalid state", err)
	}
}
