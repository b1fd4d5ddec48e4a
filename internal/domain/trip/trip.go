package trip

import (
	"errors"
	"strings"
	"time"
)

// Trip is the domain entity for the `trips` table. A trip fulfills one or
// more booking requests and, once scheduled, is backed by exactly one
// resource: an owned vehicle with its driver, or an outsourced vehicle.
type Trip struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	Status Status

	DepartureTime       time.Time
	ArrivalTime         time.Time
	ActualDepartureTime *time.Time
	ActualArrivalTime   *time.Time

	DriverID            *string
	VehicleID           *string
	OutsourcedVehicleID *string

	// SourceBookingRequestID links a per-request scheduling trip to the
	// request it was created for; nil for combined trips.
	SourceBookingRequestID *string

	// CombinedIntoID marks a trip superseded by a combined multi-stop
	// trip; cleared again on uncombine.
	CombinedIntoID *string

	TotalCost float64

	CancellationReason *string
}

var (
	ErrBothVehicleKinds        = errors.New("trip cannot hold both an owned and an outsourced vehicle")
	ErrNoResourceAssigned      = errors.New("trip has no vehicle assigned")
	ErrInvalidStatusTransition = errors.New("invalid trip status transition")
	ErrReasonRequired          = errors.New("a cancellation reason is required")
)

// New creates a trip in SCHEDULING state with no resource attached.
func New(id string, departureTime, arrivalTime time.Time) (*Trip, error) {
	if !arrivalTime.After(departureTime) {
		return nil, errors.New("trip arrival time must be after departure time")
	}
	now := time.Now().UTC()
	return &Trip{
		ID:            id,
		CreatedAt:     now,
		UpdatedAt:     now,
		Status:        StatusScheduling,
		DepartureTime: departureTime,
		ArrivalTime:   arrivalTime,
	}, nil
}

// AssignVehicle attaches an owned vehicle and its driver, replacing any
// outsourced assignment. The trip stays in SCHEDULING until approved.
func (t *Trip) AssignVehicle(vehicleID, driverID string) error {
	if t.Status != StatusScheduling {
		return ErrInvalidStatusTransition
	}
	t.VehicleID = &vehicleID
	t.DriverID = &driverID
	t.OutsourcedVehicleID = nil
	t.touch()
	return nil
}

// AssignOutsourcedVehicle attaches an outsourced vehicle in place of an
// owned one. Outsourced drivers are not calendar-tracked.
func (t *Trip) AssignOutsourcedVehicle(outsourcedID string, cost float64) error {
	if t.Status != StatusScheduling {
		return ErrInvalidStatusTransition
	}
	t.OutsourcedVehicleID = &outsourcedID
	t.VehicleID = nil
	t.DriverID = nil
	t.TotalCost = cost
	t.touch()
	return nil
}

// HasResource reports whether a vehicle (owned or outsourced) is attached.
func (t *Trip) HasResource() bool {
	return t.VehicleID != nil || t.OutsourcedVehicleID != nil
}

// Outsourced reports whether the trip runs on an outsourced vehicle.
func (t *Trip) Outsourced() bool {
	return t.OutsourcedVehicleID != nil
}

// Approve transitions SCHEDULING -> SCHEDULED. A resource must already be
// attached; the caller commits the calendar entry in the same transaction.
func (t *Trip) Approve() error {
	if !t.HasResource() {
		return ErrNoResourceAssigned
	}
	if t.VehicleID != nil && t.OutsourcedVehicleID != nil {
		return ErrBothVehicleKinds
	}
	if !t.Status.CanTransitionTo(StatusScheduled) {
		return ErrInvalidStatusTransition
	}
	t.setStatus(StatusScheduled)
	return nil
}

// Start transitions SCHEDULED -> IN_PROGRESS and stamps the actual
// departure time.
func (t *Trip) Start(at time.Time) error {
	if !t.Status.CanTransitionTo(StatusInProgress) {
		return ErrInvalidStatusTransition
	}
	at = at.UTC()
	t.ActualDepartureTime = &at
	t.setStatus(StatusInProgress)
	return nil
}

// End transitions IN_PROGRESS -> COMPLETED and stamps the actual arrival
// time.
func (t *Trip) End(at time.Time) error {
	if !t.Status.CanTransitionTo(StatusCompleted) {
		return ErrInvalidStatusTransition
	}
	at = at.UTC()
	t.ActualArrivalTime = &at
	t.setStatus(StatusCompleted)
	return nil
}

// Cancel transitions SCHEDULING|SCHEDULED -> CANCELLED. The caller removes
// any calendar entry so a cancelled trip never occupies calendar space.
func (t *Trip) Cancel(reason string) error {
	if reason = strings.TrimSpace(reason); reason == "" {
		return ErrReasonRequired
	}
	if !t.Status.CanTransitionTo(StatusCancelled) {
		return ErrInvalidStatusTransition
	}
	t.CancellationReason = &reason
	t.setStatus(StatusCancelled)
	return nil
}

// MarkCombinedInto supersedes this trip in favor of a combined trip.
func (t *Trip) MarkCombinedInto(combinedID, reason string) error {
	if err := t.Cancel(reason); err != nil {
		return err
	}
	t.CombinedIntoID = &combinedID
	return nil
}

// RestoreFromCombine reverses MarkCombinedInto, handing the trip back to
// scheduling with no resource attached.
func (t *Trip) RestoreFromCombine() {
	t.CombinedIntoID = nil
	t.CancellationReason = nil
	t.VehicleID = nil
	t.DriverID = nil
	t.OutsourcedVehicleID = nil
	t.setStatus(StatusScheduling)
}

func (t *Trip) setStatus(status Status) {
	t.Status = status
	t.touch()
}

func (t *Trip) touch() {
	t.UpdatedAt = time.Now().UTC()
}
