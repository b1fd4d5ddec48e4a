package booking

import (
	"errors"
	"strings"
	"time"
)

// TripType distinguishes single-leg requests from round trips. A round
// trip is stored as two linked one-way requests, one per leg.
type TripType string

const (
	TypeOneWay    TripType = "ONE_WAY"
	TypeRoundTrip TripType = "ROUND_TRIP"
)

func (t TripType) Valid() bool {
	return t == TypeOneWay || t == TypeRoundTrip
}

// Request is the domain entity for the `booking_requests` table. A request
// describes one leg; LinkedRequestID pairs the outbound and return legs of
// a round trip.
type Request struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	Status   Status
	Priority Priority
	Type     TripType

	RequesterID        string
	NumberOfPassengers int
	PassengerIDs       []string
	ContactName        string
	ContactPhone       string

	DepartureTime       time.Time
	ArrivalTime         time.Time
	DepartureLocationID string
	ArrivalLocationID   string

	// LinkedRequestID references the paired leg of a round trip, nil for
	// one-way requests.
	LinkedRequestID *string

	// StatusReason stores the mandatory reason of a rejection or
	// cancellation.
	StatusReason *string

	TripPurpose string
	Note        string
}

var (
	ErrRequesterRequired      = errors.New("requester id is required")
	ErrPassengersRequired     = errors.New("at least one passenger is required")
	ErrPassengerCountMismatch = errors.New("passenger count does not match passenger list")
	ErrContactRequired        = errors.New("contact name and phone are required")
	ErrArrivalBeforeDeparture = errors.New("arrival time must be after departure time")
	ErrReasonRequired         = errors.New("a reason is required")
	ErrInvalidTransition      = errors.New("invalid booking request status transition")
)

// NewRequest creates one leg of a booking request in PENDING state.
func NewRequest(
	id string,
	priority Priority,
	requesterID string,
	passengerIDs []string,
	contactName, contactPhone string,
	departureTime, arrivalTime time.Time,
	departureLocationID, arrivalLocationID string,
	tripPurpose, note string,
) (*Request, error) {
	if requesterID = strings.TrimSpace(requesterID); requesterID == "" {
		return nil, ErrRequesterRequired
	}
	if len(passengerIDs) == 0 {
		return nil, ErrPassengersRequired
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}
	if strings.TrimSpace(contactName) == "" || strings.TrimSpace(contactPhone) == "" {
		return nil, ErrContactRequired
	}
	if err := ValidateWindow(departureTime, arrivalTime); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Request{
		ID:                  id,
		CreatedAt:           now,
		UpdatedAt:           now,
		Status:              StatusPending,
		Priority:            priority,
		Type:                TypeOneWay,
		RequesterID:         requesterID,
		NumberOfPassengers:  len(passengerIDs),
		PassengerIDs:        passengerIDs,
		ContactName:         strings.TrimSpace(contactName),
		ContactPhone:        strings.TrimSpace(contactPhone),
		DepartureTime:       departureTime,
		ArrivalTime:         arrivalTime,
		DepartureLocationID: departureLocationID,
		ArrivalLocationID:   arrivalLocationID,
		TripPurpose:         strings.TrimSpace(tripPurpose),
		Note:                strings.TrimSpace(note),
	}, nil
}

// ValidateWindow checks the planned leg window ordering.
func ValidateWindow(departure, arrival time.Time) error {
	if !arrival.After(departure) {
		return ErrArrivalBeforeDeparture
	}
	return nil
}

// LinkReturn pairs this leg with its return leg and marks both ROUND_TRIP.
func (r *Request) LinkReturn(ret *Request) {
	r.Type = TypeRoundTrip
	ret.Type = TypeRoundTrip
	r.LinkedRequestID = &ret.ID
	ret.LinkedRequestID = &r.ID
}

// Approve transitions PENDING -> APPROVED.
func (r *Request) Approve() error {
	if !r.Status.CanTransitionTo(StatusApproved) {
		return ErrInvalidTransition
	}
	r.setStatus(StatusApproved)
	return nil
}

// Reject transitions PENDING -> REJECTED and records the mandatory reason.
func (r *Request) Reject(reason string) error {
	if reason = strings.TrimSpace(reason); reason == "" {
		return ErrReasonRequired
	}
	if !r.Status.CanTransitionTo(StatusRejected) {
		return ErrInvalidTransition
	}
	r.StatusReason = &reason
	r.setStatus(StatusRejected)
	return nil
}

// Cancel transitions PENDING|APPROVED -> CANCELLED with a mandatory reason.
func (r *Request) Cancel(reason string) error {
	if reason = strings.TrimSpace(reason); reason == "" {
		return ErrReasonRequired
	}
	if !r.Status.CanTransitionTo(StatusCancelled) {
		return ErrInvalidTransition
	}
	r.StatusReason = &reason
	r.setStatus(StatusCancelled)
	return nil
}

// Complete transitions APPROVED -> COMPLETED when the linked trip ends.
func (r *Request) Complete() error {
	if !r.Status.CanTransitionTo(StatusCompleted) {
		return ErrInvalidTransition
	}
	r.setStatus(StatusCompleted)
	return nil
}

func (r *Request) setStatus(status Status) {
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
}
