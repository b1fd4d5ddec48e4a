package calendar

import (
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 5, 4, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"touching endpoints do not conflict", at(10, 0), at(11, 0), at(11, 0), at(12, 0), false},
		{"nested interval conflicts", at(10, 0), at(12, 0), at(11, 0), at(11, 30), true},
		{"disjoint earlier interval", at(10, 0), at(11, 0), at(9, 0), at(10, 0), false},
		{"partial overlap near the end", at(10, 0), at(12, 0), at(11, 59), at(12, 30), true},
		{"identical intervals conflict", at(10, 0), at(11, 0), at(10, 0), at(11, 0), true},
	}
	for _, tc := range cases {
		if got := Overlaps(tc.s1, tc.e1, tc.s2, tc.e2); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
		// overlap is symmetric
		if got := Overlaps(tc.s2, tc.e2, tc.s1, tc.e1); got != tc.want {
			t.Fatalf("%s (swapped): got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestConflictIDsRespectsExclusion(t *testing.T) {
	schedules := []Schedule{
		{ID: "SCH-1", StartTime: at(9, 0), EndTime: at(10, 0)},
		{ID: "SCH-2", StartTime: at(10, 30), EndTime: at(11, 30)},
		{ID: "SCH-3", StartTime: at(12, 0), EndTime: at(13, 0)},
	}
	ids := ConflictIDs(schedules, at(10, 0), at(12, 0), "")
	if len(ids) != 1 || ids[0] != "SCH-2" {
		t.Fatalf("unexpected conflicts: %v", ids)
	}
	ids = ConflictIDs(schedules, at(10, 0), at(12, 0), "SCH-2")
	if len(ids) != 0 {
		t.Fatalf("excluded schedule still reported: %v", ids)
	}
}

func TestNewScheduleValidation(t *testing.T) {
	driver := "DRV-1"
	if _, err := New("SCH-1", " ", "", at(9, 0), at(10, 0), &driver, nil); err != ErrTitleRequired {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
	if _, err := New("SCH-1", "Trip #TR-1", "", at(10, 0), at(10, 0), &driver, nil); err != ErrEndBeforeStart {
		t.Fatalf("expected ErrEndBeforeStart, got %v", err)
	}
	if _, err := New("SCH-1", "Trip #TR-1", "", at(9, 0), at(10, 0), nil, nil); err != ErrNoCalendarOwner {
		t.Fatalf("expected ErrNoCalendarOwner, got %v", err)
	}
}

func TestScheduleLinksAreExclusive(t *testing.T) {
	driver := "DRV-1"
	s, err := New("SCH-1", "Trip #TR-1", "", at(9, 0), at(10, 0), &driver, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.LinkTrip("TR-1"); err != nil {
		t.Fatalf("link trip failed: %v", err)
	}
	if err := s.LinkLeaveRequest("LV-1"); err != ErrMultipleLinks {
		t.Fatalf("expected ErrMultipleLinks, got %v", err)
	}
	if err := s.LinkVehicleService("VSR-1"); err != ErrMultipleLinks {
		t.Fatalf("expected ErrMultipleLinks, got %v", err)
	}
}
