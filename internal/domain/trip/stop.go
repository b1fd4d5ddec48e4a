package trip

import (
	"errors"
	"sort"
	"time"
)

// StopType marks a stop as a pickup or a drop-off point.
type StopType string

const (
	StopPickup  StopType = "PICKUP"
	StopDropOff StopType = "DROP_OFF"
)

func (t StopType) Valid() bool {
	return t == StopPickup || t == StopDropOff
}

// Stop is one ordered point of a trip. Orders start at 1 and are dense
// within a trip. BookingRequestID names the request a stop serves so a
// combined trip can shed one request's stops without touching the rest.
type Stop struct {
	ID               string
	TripID           string
	BookingRequestID string
	Type             StopType
	Order            int
	LocationID       string
	PlannedTime      time.Time
}

var (
	ErrInvalidStopType = errors.New("invalid trip stop type")
	ErrSparseStopOrder = errors.New("stop orders must form a dense 1..N sequence")
)

// ValidateDenseOrder checks that the stops carry each order 1..N exactly
// once.
func ValidateDenseOrder(stops []Stop) error {
	seen := make(map[int]bool, len(stops))
	for _, s := range stops {
		if s.Order < 1 || s.Order > len(stops) || seen[s.Order] {
			return ErrSparseStopOrder
		}
		seen[s.Order] = true
	}
	return nil
}

// SortByOrder returns the stops sorted ascending by order.
func SortByOrder(stops []Stop) []Stop {
	out := make([]Stop, len(stops))
	copy(out, stops)
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Renumber rewrites stop orders densely, preserving the current relative
// order. Used after removing a booking request from a combined trip.
func Renumber(stops []Stop) []Stop {
	out := SortByOrder(stops)
	for i := range out {
		out[i].Order = i + 1
	}
	return out
}
