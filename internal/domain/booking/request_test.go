package booking

import (
	"testing"
	"time"
)

var (
	dep = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	arr = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
)

func newPendingRequest(t *testing.T) *Request {
	t.Helper()
	r, err := NewRequest("BR-1", PriorityNormal, "USR-1", []string{"USR-2", "USR-3"},
		"Dana", "+4912345", dep, arr, "LOC-1", "LOC-2", "site visit", "")
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	return r
}

func TestNewRequestValidation(t *testing.T) {
	if _, err := NewRequest("BR-1", PriorityNormal, "USR-1", nil,
		"Dana", "+49", dep, arr, "LOC-1", "LOC-2", "", ""); err != ErrPassengersRequired {
		t.Fatalf("expected ErrPassengersRequired, got %v", err)
	}
	if _, err := NewRequest("BR-1", PriorityNormal, "USR-1", []string{"USR-2"},
		"Dana", "+49", arr, dep, "LOC-1", "LOC-2", "", ""); err != ErrArrivalBeforeDeparture {
		t.Fatalf("expected ErrArrivalBeforeDeparture, got %v", err)
	}
	// touching times are also invalid
	if err := ValidateWindow(dep, dep); err != ErrArrivalBeforeDeparture {
		t.Fatalf("equal departure/arrival should be rejected, got %v", err)
	}
}

func TestPassengerCountDerivedFromList(t *testing.T) {
	r := newPendingRequest(t)
	if r.NumberOfPassengers != 2 {
		t.Fatalf("passenger count not derived: %d", r.NumberOfPassengers)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	r := newPendingRequest(t)
	if err := r.Reject("  "); err != ErrReasonRequired {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}
	if err := r.Reject("no vehicle available"); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if r.Status != StatusRejected || r.StatusReason == nil {
		t.Fatalf("reject not recorded: %v %v", r.Status, r.StatusReason)
	}
	// rejected is terminal
	if err := r.Cancel("late"); err != ErrInvalidTransition {
		t.Fatalf("expected terminal state, got %v", err)
	}
}

func TestApproveThenCompleteLifecycle(t *testing.T) {
	r := newPendingRequest(t)
	if err := r.Complete(); err != ErrInvalidTransition {
		t.Fatalf("pending request must not complete directly, got %v", err)
	}
	if err := r.Approve(); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if err := r.Approve(); err != ErrInvalidTransition {
		t.Fatalf("double approve should fail, got %v", err)
	}
	if err := r.Complete(); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if !r.Status.Terminal() {
		t.Fatalf("completed should be terminal")
	}
}

func TestLinkReturnPairsBothLegs(t *testing.T) {
	out := newPendingRequest(t)
	ret := newPendingRequest(t)
	ret.ID = "BR-2"
	out.LinkReturn(ret)
	if out.Type != TypeRoundTrip || ret.Type != TypeRoundTrip {
		t.Fatalf("legs not marked round trip")
	}
	if out.LinkedRequestID == nil || *out.LinkedRequestID != "BR-2" {
		t.Fatalf("outbound leg not linked")
	}
	if ret.LinkedRequestID == nil || *ret.LinkedRequestID != "BR-1" {
		t.Fatalf("return leg not linked")
	}
}

func TestPriorityEscalation(t *testing.T) {
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	if got := PriorityNormal.Escalate(dep, now); got != PriorityUrgent {
		t.Fatalf("departure within 24h should escalate, got %v", got)
	}
	if got := PriorityNormal.Escalate(dep.Add(48*time.Hour), now); got != PriorityNormal {
		t.Fatalf("far departure should stay normal, got %v", got)
	}
	if got := PriorityHigh.Escalate(dep, now); got != PriorityHigh {
		t.Fatalf("high priority should not be rewritten, got %v", got)
	}
}
