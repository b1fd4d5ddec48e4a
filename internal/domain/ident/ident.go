package ident

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind names an entity table that owns its own identifier sequence.
type Kind string

const (
	KindBookingRequest    Kind = "booking_request"
	KindTrip              Kind = "trip"
	KindTripStop          Kind = "trip_stop"
	KindTripTicket        Kind = "trip_ticket"
	KindLocation          Kind = "location"
	KindSchedule          Kind = "schedule"
	KindDriver            Kind = "driver"
	KindVehicle           Kind = "vehicle"
	KindOutsourcedVehicle Kind = "outsourced_vehicle"
	KindLeaveRequest      Kind = "leave_request"
	KindVehicleService    Kind = "vehicle_service"
	KindVendor            Kind = "vendor"
	KindActivityLog       Kind = "activity_log"
)

// prefixes maps each entity kind to its fixed identifier prefix. Prefixes
// are 2-4 uppercase letters and must stay unique across kinds; identifiers
// already issued never change meaning.
var prefixes = map[Kind]string{
	KindBookingRequest:    "BR",
	KindTrip:              "TR",
	KindTripStop:          "TS",
	KindTripTicket:        "TT",
	KindLocation:          "LOC",
	KindSchedule:          "SCH",
	KindDriver:            "DRV",
	KindVehicle:           "VEH",
	KindOutsourcedVehicle: "OSV",
	KindLeaveRequest:      "LV",
	KindVehicleService:    "VSR",
	KindVendor:            "VND",
	KindActivityLog:       "ACT",
}

var pattern = regexp.MustCompile(`^[A-Z]{2,4}-[1-9][0-9]*$`)

var ErrMalformed = errors.New("malformed identifier")

// Prefix returns the registered prefix for a kind.
func Prefix(kind Kind) (string, bool) {
	p, ok := prefixes[kind]
	return p, ok
}

// Format renders the n-th identifier of a kind's sequence.
func Format(prefix string, n int64) string {
	return fmt.Sprintf("%s-%d", prefix, n)
}

// Valid reports whether id matches the wire format.
func Valid(id string) bool {
	return pattern.MatchString(id)
}

// Parse splits an identifier into its prefix and sequence number.
func Parse(id string) (prefix string, n int64, err error) {
	if !Valid(id) {
		return "", 0, ErrMalformed
	}
	i := strings.IndexByte(id, '-')
	n, err = strconv.ParseInt(id[i+1:], 10, 64)
	if err != nil {
		return "", 0, ErrMalformed
	}
	return id[:i], n, nil
}
