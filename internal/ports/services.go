package ports

import (
	"context"
	"time"

	"fleetdesk/internal/domain/booking"
	"fleetdesk/internal/domain/fleet"
	"fleetdesk/internal/domain/ident"
	"fleetdesk/internal/domain/location"
	"fleetdesk/internal/domain/trip"
)

// Actor identifies who is performing an operation.
type Actor struct {
	ID   string
	Role string
}

// ----- Sequence Allocator -----

// SequenceAllocator hands out gap-free sequential identifiers per entity kind.
type SequenceAllocator interface {
	// Allocate returns count consecutive identifiers for kind.
	Allocate(ctx context.Context, kind ident.Kind, count int) ([]string, error)
	AllocateOne(ctx context.Context, kind ident.Kind) (string, error)
}

// ----- Location Resolver -----

// LocationRef references an endpoint either by id or by raw coordinates.
// Exactly one of ID or the raw fields must be set.
type LocationRef struct {
	ID        string
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
}

// ByID reports whether the reference points at an existing location.
func (r LocationRef) ByID() bool { return r.ID != "" }

// LocationResolver turns a location reference into a persisted location,
// deduplicating custom locations by exact coordinates.
type LocationResolver interface {
	Resolve(ctx context.Context, ref LocationRef) (*location.Location, error)
}

// ----- Calendar Service -----

// CommitScheduleInput carries a calendar commitment to be written under an
// authoritative conflict re-check.
type CommitScheduleInput struct {
	Title            string
	Description      string
	StartTime        time.Time
	EndTime          time.Time
	DriverID         *string
	VehicleID        *string
	TripID           *string
	LeaveRequestID   *string
	VehicleServiceID *string
}

// CalendarService owns conflict detection and every path that writes or
// removes schedule rows.
type CalendarService interface {
	// FindConflictsForDriver is advisory: it returns the ids of future
	// schedules overlapping [start, end) and never errors on overlap.
	FindConflictsForDriver(ctx context.Context, driverID string, start, end time.Time, excludeScheduleID string) ([]string, error)
	FindConflictsForVehicle(ctx context.Context, vehicleID string, start, end time.Time, excludeScheduleID string) ([]string, error)
	// CommitSchedule re-checks conflicts authoritatively inside the
	// transaction and inserts the row; overlap yields a Conflict error.
	CommitSchedule(ctx context.Context, in CommitScheduleInput) (string, error)

	CreateLeaveRequest(ctx context.Context, actor Actor, driverID, reason string, start, end time.Time) (*fleet.LeaveRequest, error)
	ApproveLeaveRequest(ctx context.Context, actor Actor, leaveRequestID string) (*fleet.LeaveRequest, error)
	RejectLeaveRequest(ctx context.Context, actor Actor, leaveRequestID string) (*fleet.LeaveRequest, error)
	CancelLeaveRequest(ctx context.Context, actor Actor, leaveRequestID string) (*fleet.LeaveRequest, error)

	CreateVehicleService(ctx context.Context, actor Actor, vehicleID, description string, start, end time.Time) (*fleet.VehicleService, error)
	ApproveVehicleService(ctx context.Context, actor Actor, vehicleServiceID string) (*fleet.VehicleService, error)
	CancelVehicleService(ctx context.Context, actor Actor, vehicleServiceID string) (*fleet.VehicleService, error)
}

// ----- Booking Service -----

// CreateBookingInput is the validated input required to create a booking
// request. Return fields apply only when TripType is ROUND_TRIP.
type CreateBookingInput struct {
	RequesterID         string
	PassengerIDs        []string
	ContactName         string
	ContactPhone        string
	TripType            booking.TripType
	Priority            booking.Priority
	DepartureTime       time.Time
	ArrivalTime         time.Time
	DepartureLocation   LocationRef
	ArrivalLocation     LocationRef
	ReturnDepartureTime time.Time
	ReturnArrivalTime   time.Time
	TripPurpose         string
	Note                string
}

// BookingProjection is the read shape returned for a booking request leg.
type BookingProjection struct {
	Request *booking.Request
	TripID  string
}

// AssignOutsourcedInput describes a rented vehicle/driver pair to attach.
type AssignOutsourcedInput struct {
	DriverName   string
	DriverPhone  string
	PlateNumber  string
	Capacity     int
	Cost         float64
	VendorName   string
	VehicleModel string
}

// AvailableVehicle is one row of the assignable-vehicle listing.
type AvailableVehicle struct {
	Vehicle     fleet.Vehicle
	ConflictIDs []string
}

// BookingService exposes the booking request lifecycle.
type BookingService interface {
	// Create builds one request per leg, each with a scheduling trip, two
	// stops and per-passenger tickets. Round trips yield two linked legs.
	Create(ctx context.Context, actor Actor, in CreateBookingInput) ([]BookingProjection, error)
	GetByID(ctx context.Context, bookingRequestID string) (*BookingProjection, error)
	Reject(ctx context.Context, actor Actor, bookingRequestID, reason string) (*booking.Request, error)
	Cancel(ctx context.Context, actor Actor, bookingRequestID, reason string) (*booking.Request, error)
	// AssignVehicle approves the request by assigning and approving its
	// scheduling trip.
	AssignVehicle(ctx context.Context, actor Actor, bookingRequestID, vehicleID string) (*booking.Request, error)
	AssignOutsourcedVehicle(ctx context.Context, actor Actor, bookingRequestID string, in AssignOutsourcedInput) (*booking.Request, error)
	// ListAvailableVehicles returns active vehicles with enough capacity,
	// annotated with any driver calendar conflicts over the trip window.
	ListAvailableVehicles(ctx context.Context, bookingRequestID string) ([]AvailableVehicle, error)
}

// ----- Trip Service -----

// CombineInput describes the merge of several pending booking requests into
// one trip on a shared vehicle.
type CombineInput struct {
	VehicleID     string
	DepartureTime time.Time
	ArrivalTime   time.Time
	RequestIDs    []string
	// StopOrders maps bookingRequestID -> [pickupOrder, dropoffOrder].
	// Orders across all requests must be dense 1..2N.
	StopOrders map[string][2]int
}

// TripDetail is the read shape for a trip with its stops and tickets.
type TripDetail struct {
	Trip    *trip.Trip
	Stops   []trip.Stop
	Tickets []*trip.Ticket
}

// TripService exposes the trip lifecycle, resource assignment and the public
// access surface for outsourced trips.
type TripService interface {
	GetByID(ctx context.Context, tripID string) (*TripDetail, error)
	AssignVehicle(ctx context.Context, actor Actor, tripID, vehicleID string) (*trip.Trip, error)
	AssignOutsourcedVehicle(ctx context.Context, actor Actor, tripID string, in AssignOutsourcedInput) (*trip.Trip, error)
	// Approve commits the trip's calendar schedule under an authoritative
	// conflict re-check, then moves trip and linked requests forward.
	Approve(ctx context.Context, actor Actor, tripID string) (*trip.Trip, error)
	Cancel(ctx context.Context, actor Actor, tripID, reason string) (*trip.Trip, error)

	Combine(ctx context.Context, actor Actor, in CombineInput) (*TripDetail, error)
	Uncombine(ctx context.Context, actor Actor, tripID string) ([]*trip.Trip, error)
	AddBookingRequest(ctx context.Context, actor Actor, tripID, bookingRequestID string, stopOrders [2]int) (*TripDetail, error)
	RemoveBookingRequest(ctx context.Context, actor Actor, tripID, bookingRequestID string) (*TripDetail, error)

	DriverConfirmStart(ctx context.Context, actor Actor, tripID string) (*trip.Trip, error)
	DriverConfirmEnd(ctx context.Context, actor Actor, tripID string) (*trip.Trip, error)
	OutsourcedConfirmStart(ctx context.Context, accessCode string) (*trip.Trip, error)
	OutsourcedConfirmEnd(ctx context.Context, accessCode string) (*trip.Trip, error)

	// IssuePublicAccess replaces any previous code for the trip; only
	// outsourced trips can be shared.
	IssuePublicAccess(ctx context.Context, actor Actor, tripID string) (string, error)
	ValidatePublicAccess(ctx context.Context, accessCode string) (*TripDetail, error)
}

// ----- Trip Sheet Service -----

// TripSheetService renders the printable dispatch sheet of a trip: its
// resource, ordered stops and passenger manifest.
type TripSheetService interface {
	// Generate returns the PDF bytes and a suggested filename.
	Generate(ctx context.Context, tripID string) ([]byte, string, error)
}

// ----- Ticket Service -----

// TicketService exposes group-atomic passenger confirmations. All tickets of
// (trip, booking request) transition together or not at all.
type TicketService interface {
	ConfirmPickUp(ctx context.Context, actor Actor, tripID, bookingRequestID string) ([]*trip.Ticket, error)
	ConfirmDroppedOff(ctx context.Context, actor Actor, tripID, bookingRequestID string) ([]*trip.Ticket, error)
	ConfirmPassengersNoShow(ctx context.Context, actor Actor, tripID, bookingRequestID, reason string) ([]*trip.Ticket, error)
}
