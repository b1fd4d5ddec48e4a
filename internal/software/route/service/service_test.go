package service

import (
	"context"
	"math"
	"testing"

	"fleetdesk/internal/apperrors"
)

func TestEstimateGreatCircleDistance(t *testing.T) {
	est := NewHaversineEstimator()

	// one degree of latitude along a meridian is ~111.19 km
	out, err := est.Estimate(context.Background(), 0, 0, 1, 0)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if math.Abs(out.DistanceKM-111.19) > 0.5 {
		t.Fatalf("distance = %.2f km, want ~111.19", out.DistanceKM)
	}
	if out.DurationMinutes <= 0 {
		t.Fatalf("duration = %d, want positive", out.DurationMinutes)
	}
}

func TestEstimateZeroDistanceStillTakesAMinute(t *testing.T) {
	est := NewHaversineEstimator()

	out, err := est.Estimate(context.Background(), 52.52, 13.405, 52.52, 13.405)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if out.DistanceKM != 0 {
		t.Fatalf("distance = %f, want 0", out.DistanceKM)
	}
	if out.DurationMinutes != 1 {
		t.Fatalf("duration = %d, want 1", out.DurationMinutes)
	}
}

func TestEstimateRejectsBadCoordinates(t *testing.T) {
	est := NewHaversineEstimator()

	if _, err := est.Estimate(context.Background(), 91, 0, 1, 0); !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("latitude 91: got %v, want validation error", err)
	}
	if _, err := est.Estimate(context.Background(), 0, 0, 0, 181); !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("longitude 181: got %v, want validation error", err)
	}
}
