package access

import (
	"testing"
	"time"
)

func TestGenerateCodeShape(t *testing.T) {
	code := GenerateCode()
	if len(code) != CodeLength {
		t.Fatalf("code length %d, want %d", len(code), CodeLength)
	}
	for i := 0; i < len(code); i++ {
		found := false
		for j := 0; j < len(b32); j++ {
			if code[i] == b32[j] {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("code %q contains byte %q outside the alphabet", code, code[i])
		}
	}
}

func TestGenerateCodeIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		code := GenerateCode()
		if seen[code] {
			t.Fatalf("duplicate code %q", code)
		}
		seen[code] = true
	}
}

func TestWindowContains(t *testing.T) {
	departure := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	arrival := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)

	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC)
	}

	if !WindowContains(departure, arrival, day(8)) {
		t.Fatalf("two days before departure should be valid")
	}
	if !WindowContains(departure, arrival, day(11)) {
		t.Fatalf("one day after arrival should be valid")
	}
	if WindowContains(departure, arrival, day(7)) {
		t.Fatalf("three days before departure should be invalid")
	}
	if WindowContains(departure, arrival, day(12)) {
		t.Fatalf("two days after arrival should be invalid")
	}
}

func TestWindowUsesCalendarDays(t *testing.T) {
	departure := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)
	arrival := time.Date(2024, 3, 11, 0, 30, 0, 0, time.UTC)

	// late on the first valid day
	now := time.Date(2024, 3, 8, 0, 0, 1, 0, time.UTC)
	if !WindowContains(departure, arrival, now) {
		t.Fatalf("start of the first valid day should be inside the window")
	}
	// end of the last valid day
	now = time.Date(2024, 3, 12, 23, 59, 59, 0, time.UTC)
	if !WindowContains(departure, arrival, now) {
		t.Fatalf("end of the last valid day should be inside the window")
	}
}
