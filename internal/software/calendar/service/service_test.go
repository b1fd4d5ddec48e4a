package service

import (
	"context"
	"testing"
	"time"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/fleet"
	"fleetdesk/internal/general/logger"
	"fleetdesk/internal/ports"
	"fleetdesk/internal/software/memstore"
)

func newTestService(store *memstore.Store) (ports.CalendarService, *memstore.Notifier) {
	notifier := &memstore.Notifier{}
	svc := NewCalendarService(
		logger.New("test"),
		memstore.UOW{},
		memstore.ScheduleRepo{S: store},
		memstore.LeaveRequestRepo{S: store},
		memstore.VehicleServiceRepo{S: store},
		memstore.DriverRepo{S: store},
		memstore.VehicleRepo{S: store},
		memstore.NewAllocator(),
		notifier,
		&memstore.ActivityLog{},
	)
	return svc, notifier
}

func seedDriver(store *memstore.Store, id string) {
	store.Drivers[id] = &fleet.Driver{ID: id, Name: "Dana", Availability: fleet.DriverAvailable}
}

func seedVehicle(store *memstore.Store, id string) {
	driverID := "DRV-1"
	store.Vehicles[id] = &fleet.Vehicle{
		ID: id, PlateNumber: "AA-101", Model: "Sprinter", Capacity: 5,
		Availability: fleet.VehicleAvailable, DriverID: &driverID,
	}
}

func TestCommitScheduleDetectsDriverConflict(t *testing.T) {
	store := memstore.New()
	svc, _ := newTestService(store)
	seedDriver(store, "DRV-1")
	driverID := "DRV-1"

	base := time.Now().UTC().Add(48 * time.Hour)

	first, err := svc.CommitSchedule(context.Background(), ports.CommitScheduleInput{
		Title: "Trip", StartTime: base, EndTime: base.Add(2 * time.Hour), DriverID: &driverID,
	})
	if err != nil {
		t.Fatalf("first commit: %v", err)
	}

	// overlapping window must be rejected at commit time
	_, err = svc.CommitSchedule(context.Background(), ports.CommitScheduleInput{
		Title: "Trip", StartTime: base.Add(time.Hour), EndTime: base.Add(3 * time.Hour), DriverID: &driverID,
	})
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("overlapping commit: got %v, want conflict", err)
	}

	// touching interval [end, end+2h) is free under half-open semantics
	if _, err := svc.CommitSchedule(context.Background(), ports.CommitScheduleInput{
		Title: "Trip", StartTime: base.Add(2 * time.Hour), EndTime: base.Add(4 * time.Hour), DriverID: &driverID,
	}); err != nil {
		t.Fatalf("touching commit: %v", err)
	}

	if len(store.Schedules) != 2 {
		t.Fatalf("store holds %d schedules, want 2", len(store.Schedules))
	}
	if _, ok := store.Schedules[first]; !ok {
		t.Fatalf("first schedule %s missing from store", first)
	}
}

func TestFindConflictsIsAdvisory(t *testing.T) {
	store := memstore.New()
	svc, _ := newTestService(store)
	seedDriver(store, "DRV-1")
	driverID := "DRV-1"

	base := time.Now().UTC().Add(24 * time.Hour)
	id, err := svc.CommitSchedule(context.Background(), ports.CommitScheduleInput{
		Title: "Trip", StartTime: base, EndTime: base.Add(2 * time.Hour), DriverID: &driverID,
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	conflicts, err := svc.FindConflictsForDriver(context.Background(), driverID, base.Add(time.Hour), base.Add(3*time.Hour), "")
	if err != nil {
		t.Fatalf("FindConflictsForDriver: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0] != id {
		t.Fatalf("conflicts = %v, want [%s]", conflicts, id)
	}

	// excluding the conflicting schedule clears the report
	conflicts, err = svc.FindConflictsForDriver(context.Background(), driverID, base.Add(time.Hour), base.Add(3*time.Hour), id)
	if err != nil {
		t.Fatalf("FindConflictsForDriver with exclude: %v", err)
	}
	if len(conflicts) != 0 {
		t.Fatalf("conflicts with exclusion = %v, want none", conflicts)
	}
}

func TestLeaveRequestScheduleLifecycle(t *testing.T) {
	store := memstore.New()
	svc, notifier := newTestService(store)
	seedDriver(store, "DRV-1")
	actor := ports.Actor{ID: "USR-9", Role: "coordinator"}

	start := time.Now().UTC().Add(72 * time.Hour)
	lr, err := svc.CreateLeaveRequest(context.Background(), actor, "DRV-1", "family visit", start, start.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("CreateLeaveRequest: %v", err)
	}
	if len(store.Schedules) != 0 {
		t.Fatalf("pending leave occupies the calendar: %d schedules", len(store.Schedules))
	}

	approved, err := svc.ApproveLeaveRequest(context.Background(), actor, lr.ID)
	if err != nil {
		t.Fatalf("ApproveLeaveRequest: %v", err)
	}
	if approved.Status != fleet.AbsenceApproved || approved.ScheduleID == nil {
		t.Fatalf("approved = %+v, want APPROVED with schedule id", approved)
	}
	if len(store.Schedules) != 1 {
		t.Fatalf("approval created %d schedules, want exactly 1", len(store.Schedules))
	}
	if len(notifier.Sent) == 0 {
		t.Fatal("driver was not notified of approval")
	}

	cancelled, err := svc.CancelLeaveRequest(context.Background(), actor, lr.ID)
	if err != nil {
		t.Fatalf("CancelLeaveRequest: %v", err)
	}
	if cancelled.Status != fleet.AbsenceCancelled || cancelled.ScheduleID != nil {
		t.Fatalf("cancelled = %+v, want CANCELLED without schedule id", cancelled)
	}
	if len(store.Schedules) != 0 {
		t.Fatalf("cancel left %d schedules behind, want 0", len(store.Schedules))
	}
}

func TestRejectApprovedLeaveRequestFreesCalendar(t *testing.T) {
	store := memstore.New()
	svc, _ := newTestService(store)
	seedDriver(store, "DRV-1")
	actor := ports.Actor{ID: "USR-9", Role: "coordinator"}

	start := time.Now().UTC().Add(24 * time.Hour)
	lr, err := svc.CreateLeaveRequest(context.Background(), actor, "DRV-1", "errand", start, start.Add(8*time.Hour))
	if err != nil {
		t.Fatalf("CreateLeaveRequest: %v", err)
	}
	if _, err := svc.ApproveLeaveRequest(context.Background(), actor, lr.ID); err != nil {
		t.Fatalf("ApproveLeaveRequest: %v", err)
	}
	if len(store.Schedules) != 1 {
		t.Fatalf("approval created %d schedules, want 1", len(store.Schedules))
	}

	rejected, err := svc.RejectLeaveRequest(context.Background(), actor, lr.ID)
	if err != nil {
		t.Fatalf("RejectLeaveRequest after approval: %v", err)
	}
	if rejected.Status != fleet.AbsenceRejected || rejected.ScheduleID != nil {
		t.Fatalf("rejected = %+v, want REJECTED without schedule id", rejected)
	}
	if len(store.Schedules) != 0 {
		t.Fatalf("reject left %d schedules behind, want 0", len(store.Schedules))
	}

	if _, err := svc.RejectLeaveRequest(context.Background(), actor, lr.ID); !apperrors.IsKind(err, apperrors.KindInvalidState) {
		t.Fatalf("second reject: got %v, want invalid-state", err)
	}
}

func TestVehicleServiceOccupiesVehicleCalendar(t *testing.T) {
	store := memstore.New()
	svc, _ := newTestService(store)
	seedVehicle(store, "VEH-1")
	actor := ports.Actor{ID: "USR-9", Role: "coordinator"}

	start := time.Now().UTC().Add(24 * time.Hour)
	vs, err := svc.CreateVehicleService(context.Background(), actor, "VEH-1", "brake pads", start, start.Add(6*time.Hour))
	if err != nil {
		t.Fatalf("CreateVehicleService: %v", err)
	}
	if _, err := svc.ApproveVehicleService(context.Background(), actor, vs.ID); err != nil {
		t.Fatalf("ApproveVehicleService: %v", err)
	}

	// the maintenance window now blocks the vehicle
	vehicleID := "VEH-1"
	_, err = svc.CommitSchedule(context.Background(), ports.CommitScheduleInput{
		Title: "Trip", StartTime: start.Add(time.Hour), EndTime: start.Add(3 * time.Hour), VehicleID: &vehicleID,
	})
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("commit over maintenance window: got %v, want conflict", err)
	}

	if _, err := svc.CancelVehicleService(context.Background(), actor, vs.ID); err != nil {
		t.Fatalf("CancelVehicleService: %v", err)
	}
	if len(store.Schedules) != 0 {
		t.Fatalf("cancel left %d schedules, want 0", len(store.Schedules))
	}
}
