package ports

import (
	"context"
	"time"

	"fleetdesk/internal/domain/access"
	"fleetdesk/internal/domain/booking"
	"fleetdesk/internal/domain/calendar"
	"fleetdesk/internal/domain/fleet"
	"fleetdesk/internal/domain/ident"
	"fleetdesk/internal/domain/location"
	"fleetdesk/internal/domain/trip"
)

// UnitOfWork interface is used to manage transactions across multiple repository operations.
// Nested calls join the surrounding transaction.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SequenceRepository backs the sequence allocator. LockCurrent must hold an
// exclusive row-level lock on the counter until the surrounding transaction ends.
type SequenceRepository interface {
	EnsureCounter(ctx context.Context, kind ident.Kind, prefix string) error
	LockCurrent(ctx context.Context, kind ident.Kind) (int64, error)
	SetCurrent(ctx context.Context, kind ident.Kind, value int64) error
}

// LocationRepository defines the methods for managing location data.
// Find methods return (nil, nil) when no row matches.
type LocationRepository interface {
	Create(ctx context.Context, loc *location.Location) error
	GetByID(ctx context.Context, id string) (*location.Location, error)
	FindCustomByCoordinates(ctx context.Context, lat, lng float64) (*location.Location, error)
}

// BookingRequestRepository defines the methods for managing booking requests
// and their passenger lists.
type BookingRequestRepository interface {
	Create(ctx context.Context, req *booking.Request) error
	GetByID(ctx context.Context, id string) (*booking.Request, error)
	Update(ctx context.Context, req *booking.Request) error
}

// TripRepository defines the methods for managing trip data.
type TripRepository interface {
	Create(ctx context.Context, t *trip.Trip) error
	GetByID(ctx context.Context, id string) (*trip.Trip, error)
	Update(ctx context.Context, t *trip.Trip) error
	Delete(ctx context.Context, id string) error
	// ListByBookingRequest returns all trips holding tickets of the given
	// booking request, newest first.
	ListByBookingRequest(ctx context.Context, bookingRequestID string) ([]*trip.Trip, error)
	// ListCombinedInto returns the superseded trips of a combined trip.
	ListCombinedInto(ctx context.Context, combinedTripID string) ([]*trip.Trip, error)
}

// TripStopRepository manages the ordered stop list of a trip.
type TripStopRepository interface {
	CreateAll(ctx context.Context, stops []trip.Stop) error
	ListByTrip(ctx context.Context, tripID string) ([]trip.Stop, error)
	ReplaceForTrip(ctx context.Context, tripID string, stops []trip.Stop) error
	DeleteByTrip(ctx context.Context, tripID string) error
}

// TripTicketRepository manages per-passenger tickets.
type TripTicketRepository interface {
	CreateAll(ctx context.Context, tickets []*trip.Ticket) error
	ListByTrip(ctx context.Context, tripID string) ([]*trip.Ticket, error)
	ListByTripAndRequest(ctx context.Context, tripID, bookingRequestID string) ([]*trip.Ticket, error)
	UpdateAll(ctx context.Context, tickets []*trip.Ticket) error
	// MoveToTrip reattaches the tickets of a booking request to another trip.
	MoveToTrip(ctx context.Context, bookingRequestID, fromTripID, toTripID string) error
}

// ScheduleRepository manages calendar commitments.
type ScheduleRepository interface {
	Create(ctx context.Context, s *calendar.Schedule) error
	GetByID(ctx context.Context, id string) (*calendar.Schedule, error)
	Delete(ctx context.Context, id string) error
	// ListForDriverFrom returns all schedules of the driver whose start time
	// is at or after from.
	ListForDriverFrom(ctx context.Context, driverID string, from time.Time) ([]calendar.Schedule, error)
	ListForVehicleFrom(ctx context.Context, vehicleID string, from time.Time) ([]calendar.Schedule, error)
	DeleteByTrip(ctx context.Context, tripID string) error
	DeleteByLeaveRequest(ctx context.Context, leaveRequestID string) error
	DeleteByVehicleService(ctx context.Context, vehicleServiceID string) error
}

// DriverRepository defines the methods for managing driver data.
type DriverRepository interface {
	GetByID(ctx context.Context, id string) (*fleet.Driver, error)
	UpdateAvailability(ctx context.Context, id string, availability fleet.DriverAvailability) error
}

// VehicleRepository defines the methods for managing owned vehicles.
type VehicleRepository interface {
	GetByID(ctx context.Context, id string) (*fleet.Vehicle, error)
	// ListActive returns all vehicles that are not out of service, with
	// their assigned drivers resolved.
	ListActive(ctx context.Context) ([]fleet.Vehicle, error)
}

// OutsourcedVehicleRepository manages rented vehicle/driver pairs.
type OutsourcedVehicleRepository interface {
	Create(ctx context.Context, v *fleet.OutsourcedVehicle) error
	GetByID(ctx context.Context, id string) (*fleet.OutsourcedVehicle, error)
}

// LeaveRequestRepository manages driver leave requests.
type LeaveRequestRepository interface {
	Create(ctx context.Context, lr *fleet.LeaveRequest) error
	GetByID(ctx context.Context, id string) (*fleet.LeaveRequest, error)
	Update(ctx context.Context, lr *fleet.LeaveRequest) error
}

// VehicleServiceRepository manages vehicle maintenance windows.
type VehicleServiceRepository interface {
	Create(ctx context.Context, vs *fleet.VehicleService) error
	GetByID(ctx context.Context, id string) (*fleet.VehicleService, error)
	Update(ctx context.Context, vs *fleet.VehicleService) error
}

// PublicAccessRepository manages public trip access codes. Replace keeps at
// most one active code per trip.
type PublicAccessRepository interface {
	Replace(ctx context.Context, a *access.Access) error
	GetByCode(ctx context.Context, code string) (*access.Access, error)
	GetByTrip(ctx context.Context, tripID string) (*access.Access, error)
	DeleteByTrip(ctx context.Context, tripID string) error
}
