package trip

import (
	"errors"
	"strings"
	"time"
)

// TicketStatus tracks one passenger through a trip.
type TicketStatus string

const (
	TicketScheduled  TicketStatus = "SCHEDULED"
	TicketPickedUp   TicketStatus = "PICKED_UP"
	TicketDroppedOff TicketStatus = "DROPPED_OFF"
	TicketNoShow     TicketStatus = "NO_SHOW"
)

func (status TicketStatus) Valid() bool {
	switch status {
	case TicketScheduled, TicketPickedUp, TicketDroppedOff, TicketNoShow:
		return true
	default:
		return false
	}
}

func (status TicketStatus) String() string {
	return string(status)
}

// CanTransitionTo specifies the per-ticket lifecycle. NO_SHOW is terminal
// and only reachable from SCHEDULED.
func (status TicketStatus) CanTransitionTo(next TicketStatus) bool {
	switch status {
	case TicketScheduled:
		return next == TicketPickedUp || next == TicketNoShow
	case TicketPickedUp:
		return next == TicketDroppedOff
	default:
		return false
	}
}

// Ticket is one passenger's record on a trip. All tickets sharing a
// (trip, booking request) pair transition together.
type Ticket struct {
	ID               string
	TripID           string
	BookingRequestID string
	PassengerID      string
	Status           TicketStatus
	NoShowReason     *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

var (
	ErrInvalidTicketTransition = errors.New("invalid trip ticket status transition")
	ErrNoShowReasonRequired    = errors.New("a no-show reason is required")
)

// NewTicket creates a SCHEDULED ticket for a passenger on a trip.
func NewTicket(id, tripID, bookingRequestID, passengerID string) *Ticket {
	now := time.Now().UTC()
	return &Ticket{
		ID:               id,
		TripID:           tripID,
		BookingRequestID: bookingRequestID,
		PassengerID:      passengerID,
		Status:           TicketScheduled,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// GroupTransition validates that every ticket of a (trip, booking request)
// group can make the requested move; the group either moves as a whole or
// not at all.
func GroupTransition(tickets []*Ticket, next TicketStatus, noShowReason string) error {
	if next == TicketNoShow && strings.TrimSpace(noShowReason) == "" {
		return ErrNoShowReasonRequired
	}
	for _, ticket := range tickets {
		if !ticket.Status.CanTransitionTo(next) {
			return ErrInvalidTicketTransition
		}
	}
	now := time.Now().UTC()
	for _, ticket := range tickets {
		ticket.Status = next
		ticket.UpdatedAt = now
		if next == TicketNoShow {
			reason := strings.TrimSpace(noShowReason)
			ticket.NoShowReason = &reason
		}
	}
	return nil
}
