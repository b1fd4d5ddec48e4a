package booking

import (
	"errors"
	"strings"
	"time"
)

// Priority orders booking requests for coordinator attention. Requests
// departing within 24 hours are escalated to URGENT at creation.
type Priority string

const (
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// urgentLeadTime is the departure horizon below which a normal request is
// escalated.
const urgentLeadTime = 24 * time.Hour

var ErrInvalidPriority = errors.New("invalid booking request priority")

func ParsePriority(in string) (Priority, error) {
	priority := Priority(strings.ToUpper(strings.TrimSpace(in)))
	if priority.Valid() {
		return priority, nil
	}
	return "", ErrInvalidPriority
}

func (priority Priority) Valid() bool {
	switch priority {
	case PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

func (priority Priority) String() string {
	return string(priority)
}

// Escalate returns the effective priority for a request departing at the
// given time, seen from now.
func (priority Priority) Escalate(departure, now time.Time) Priority {
	if priority == PriorityHigh {
		return priority
	}
	if departure.Sub(now) <= urgentLeadTime {
		return PriorityUrgent
	}
	return priority
}
