package calendar

import (
	"errors"
	"strings"
	"time"
)

// Schedule is a committed time interval occupying a driver's and/or
// vehicle's calendar. It may be linked to at most one of: a trip, a leave
// request, or a vehicle service window; with no link it is an ad-hoc entry.
type Schedule struct {
	ID          string
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	CreatedAt   time.Time

	DriverID  *string
	VehicleID *string

	TripID           *string
	LeaveRequestID   *string
	VehicleServiceID *string
}

var (
	ErrTitleRequired     = errors.New("schedule title is required")
	ErrEndBeforeStart    = errors.New("schedule end time must be after start time")
	ErrMultipleLinks     = errors.New("schedule may link to at most one of trip, leave request, vehicle service")
	ErrNoCalendarOwner   = errors.New("schedule needs a driver or a vehicle")
	ErrScheduleConflicts = errors.New("schedule overlaps an existing calendar entry")
)

// New validates and builds a schedule row.
func New(id, title, description string, start, end time.Time, driverID, vehicleID *string) (*Schedule, error) {
	if title = strings.TrimSpace(title); title == "" {
		return nil, ErrTitleRequired
	}
	if !end.After(start) {
		return nil, ErrEndBeforeStart
	}
	if driverID == nil && vehicleID == nil {
		return nil, ErrNoCalendarOwner
	}
	return &Schedule{
		ID:          id,
		Title:       title,
		Description: strings.TrimSpace(description),
		StartTime:   start,
		EndTime:     end,
		CreatedAt:   time.Now().UTC(),
		DriverID:    driverID,
		VehicleID:   vehicleID,
	}, nil
}

// LinkTrip attaches the schedule to a trip.
func (s *Schedule) LinkTrip(tripID string) error {
	if s.LeaveRequestID != nil || s.VehicleServiceID != nil {
		return ErrMultipleLinks
	}
	s.TripID = &tripID
	return nil
}

// LinkLeaveRequest attaches the schedule to a leave request.
func (s *Schedule) LinkLeaveRequest(leaveRequestID string) error {
	if s.TripID != nil || s.VehicleServiceID != nil {
		return ErrMultipleLinks
	}
	s.LeaveRequestID = &leaveRequestID
	return nil
}

// LinkVehicleService attaches the schedule to a maintenance window.
func (s *Schedule) LinkVehicleService(vehicleServiceID string) error {
	if s.TripID != nil || s.LeaveRequestID != nil {
		return ErrMultipleLinks
	}
	s.VehicleServiceID = &vehicleServiceID
	return nil
}
