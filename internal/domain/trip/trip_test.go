package trip

import (
	"testing"
	"time"
)

var (
	dep = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	arr = time.Date(2026, 4, 1, 11, 0, 0, 0, time.UTC)
)

func TestApproveRequiresResource(t *testing.T) {
	tr, err := New("TR-1", dep, arr)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := tr.Approve(); err != ErrNoResourceAssigned {
		t.Fatalf("expected ErrNoResourceAssigned, got %v", err)
	}
	if err := tr.AssignVehicle("VEH-1", "DRV-1"); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if err := tr.Approve(); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if tr.Status != StatusScheduled {
		t.Fatalf("unexpected status %v", tr.Status)
	}
}

func TestAssignmentIsExclusive(t *testing.T) {
	tr, _ := New("TR-1", dep, arr)
	tr.AssignVehicle("VEH-1", "DRV-1")
	if err := tr.AssignOutsourcedVehicle("OSV-1", 120); err != nil {
		t.Fatalf("outsourced assign failed: %v", err)
	}
	if tr.VehicleID != nil || tr.DriverID != nil {
		t.Fatalf("owned assignment should be cleared")
	}
	if !tr.Outsourced() {
		t.Fatalf("trip should be outsourced")
	}
}

func TestStartAndEndStampActualTimes(t *testing.T) {
	tr, _ := New("TR-1", dep, arr)
	tr.AssignVehicle("VEH-1", "DRV-1")
	if err := tr.Start(dep); err != ErrInvalidStatusTransition {
		t.Fatalf("scheduling trip must not start, got %v", err)
	}
	tr.Approve()
	started := dep.Add(5 * time.Minute)
	if err := tr.Start(started); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if tr.ActualDepartureTime == nil || !tr.ActualDepartureTime.Equal(started) {
		t.Fatalf("actual departure not stamped")
	}
	if err := tr.Cancel("too late"); err != ErrInvalidStatusTransition {
		t.Fatalf("in-progress trip must not cancel, got %v", err)
	}
	ended := arr.Add(-10 * time.Minute)
	if err := tr.End(ended); err != nil {
		t.Fatalf("end failed: %v", err)
	}
	if tr.ActualArrivalTime == nil || !tr.ActualArrivalTime.Equal(ended) {
		t.Fatalf("actual arrival not stamped")
	}
}

func TestCombineMarkAndRestore(t *testing.T) {
	tr, _ := New("TR-1", dep, arr)
	tr.AssignVehicle("VEH-1", "DRV-1")
	if err := tr.MarkCombinedInto("TR-9", "combined into TR-9"); err != nil {
		t.Fatalf("mark combined failed: %v", err)
	}
	if tr.Status != StatusCancelled || tr.CombinedIntoID == nil {
		t.Fatalf("superseded trip not marked: %v %v", tr.Status, tr.CombinedIntoID)
	}
	tr.RestoreFromCombine()
	if tr.Status != StatusScheduling || tr.CombinedIntoID != nil || tr.HasResource() {
		t.Fatalf("restore did not reset the trip: %+v", tr)
	}
}

func TestValidateDenseOrder(t *testing.T) {
	ok := []Stop{{Order: 2}, {Order: 1}, {Order: 3}}
	if err := ValidateDenseOrder(ok); err != nil {
		t.Fatalf("dense order rejected: %v", err)
	}
	gap := []Stop{{Order: 1}, {Order: 3}}
	if err := ValidateDenseOrder(gap); err != ErrSparseStopOrder {
		t.Fatalf("gap not detected: %v", err)
	}
	dup := []Stop{{Order: 1}, {Order: 1}}
	if err := ValidateDenseOrder(dup); err != ErrSparseStopOrder {
		t.Fatalf("duplicate not detected: %v", err)
	}
}

func TestRenumberPreservesRelativeOrder(t *testing.T) {
	stops := Renumber([]Stop{{ID: "TS-3", Order: 5}, {ID: "TS-1", Order: 2}})
	if stops[0].ID != "TS-1" || stops[0].Order != 1 {
		t.Fatalf("unexpected first stop: %+v", stops[0])
	}
	if stops[1].ID != "TS-3" || stops[1].Order != 2 {
		t.Fatalf("unexpected second stop: %+v", stops[1])
	}
}

func TestGroupTransitionIsAllOrNothing(t *testing.T) {
	group := []*Ticket{
		NewTicket("TT-1", "TR-1", "BR-1", "USR-1"),
		NewTicket("TT-2", "TR-1", "BR-1", "USR-2"),
	}
	group[1].Status = TicketPickedUp
	if err := GroupTransition(group, TicketPickedUp, ""); err != ErrInvalidTicketTransition {
		t.Fatalf("mixed group should be rejected, got %v", err)
	}
	if group[0].Status != TicketScheduled {
		t.Fatalf("failed transition must not move any ticket")
	}

	group[1].Status = TicketScheduled
	if err := GroupTransition(group, TicketPickedUp, ""); err != nil {
		t.Fatalf("group pickup failed: %v", err)
	}
	for _, ticket := range group {
		if ticket.Status != TicketPickedUp {
			t.Fatalf("ticket %s not picked up", ticket.ID)
		}
	}
}

func TestNoShowRequiresReason(t *testing.T) {
	group := []*Ticket{NewTicket("TT-1", "TR-1", "BR-1", "USR-1")}
	if err := GroupTransition(group, TicketNoShow, " "); err != ErrNoShowReasonRequired {
		t.Fatalf("expected ErrNoShowReasonRequired, got %v", err)
	}
	if err := GroupTransition(group, TicketNoShow, "did not appear"); err != nil {
		t.Fatalf("no-show failed: %v", err)
	}
	if group[0].NoShowReason == nil || *group[0].NoShowReason != "did not appear" {
		t.Fatalf("reason not stored")
	}
	if err := GroupTransition(group, TicketPickedUp, ""); err != ErrInvalidTicketTransition {
		t.Fatalf("no-show must be terminal, got %v", err)
	}
}
