package service

import (
	"context"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/location"
	"fleetdesk/internal/ports"
)

// haversineEstimator is the in-process route estimator. It measures the
// great-circle distance between the two endpoints and derives a travel time
// from an average ground speed. A road-network provider can replace it
// behind the same interface.
type haversineEstimator struct{}

// NewHaversineEstimator creates the default route estimator.
func NewHaversineEstimator() ports.RouteEstimator {
	return haversineEstimator{}
}

func (haversineEstimator) Estimate(_ context.Context, fromLat, fromLng, toLat, toLng float64) (ports.RouteEstimate, error) {
	if err := location.ValidateCoordinates(fromLat, fromLng); err != nil {
		return ports.RouteEstimate{}, apperrors.Validation("origin: %v", err)
	}
	if err := location.ValidateCoordinates(toLat, toLng); err != nil {
		return ports.RouteEstimate{}, apperrors.Validation("destination: %v", err)
	}

	km := location.HaversineKM(fromLat, fromLng, toLat, toLng)
	return ports.RouteEstimate{
		DistanceKM:      km,
		DurationMinutes: location.EstimateDurationMinutes(km),
	}, nil
}
