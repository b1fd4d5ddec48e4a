package fleet

import (
	"errors"
	"strings"
	"time"
)

// AbsenceStatus is shared by leave requests and vehicle service windows.
type AbsenceStatus string

const (
	AbsencePending   AbsenceStatus = "PENDING"
	AbsenceApproved  AbsenceStatus = "APPROVED"
	AbsenceRejected  AbsenceStatus = "REJECTED"
	AbsenceCancelled AbsenceStatus = "CANCELLED"
)

func (status AbsenceStatus) Terminal() bool {
	return status == AbsenceRejected || status == AbsenceCancelled
}

// LeaveRequest blocks a driver's calendar once approved.
type LeaveRequest struct {
	ID         string
	DriverID   string
	Status     AbsenceStatus
	StartTime  time.Time
	EndTime    time.Time
	Reason     string
	Notes      string
	ScheduleID *string
	CreatedAt  time.Time
}

var (
	ErrAbsenceEndBeforeStart = errors.New("end time must be after start time")
	ErrAbsenceReasonRequired = errors.New("a reason is required")
	ErrInvalidAbsenceState   = errors.New("operation not valid for the current status")
)

// NewLeaveRequest creates a pending leave request.
func NewLeaveRequest(id, driverID string, start, end time.Time, reason, notes string) (*LeaveRequest, error) {
	if reason = strings.TrimSpace(reason); reason == "" {
		return nil, ErrAbsenceReasonRequired
	}
	if !end.After(start) {
		return nil, ErrAbsenceEndBeforeStart
	}
	return &LeaveRequest{
		ID:        id,
		DriverID:  driverID,
		Status:    AbsencePending,
		StartTime: start,
		EndTime:   end,
		Reason:    reason,
		Notes:     strings.TrimSpace(notes),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Approve moves PENDING -> APPROVED; the caller commits the schedule row.
func (lr *LeaveRequest) Approve(scheduleID string) error {
	if lr.Status != AbsencePending {
		return ErrInvalidAbsenceState
	}
	lr.Status = AbsenceApproved
	lr.ScheduleID = &scheduleID
	return nil
}

// Reject is allowed from PENDING or APPROVED; rejecting an approved leave
// releases its schedule row.
func (lr *LeaveRequest) Reject() error {
	if lr.Status.Terminal() {
		return ErrInvalidAbsenceState
	}
	lr.Status = AbsenceRejected
	lr.ScheduleID = nil
	return nil
}

// Cancel is allowed from PENDING or APPROVED; an approved leave releases
// its schedule row.
func (lr *LeaveRequest) Cancel() error {
	if lr.Status.Terminal() {
		return ErrInvalidAbsenceState
	}
	lr.Status = AbsenceCancelled
	lr.ScheduleID = nil
	return nil
}

// VehicleService blocks a vehicle's calendar for maintenance.
type VehicleService struct {
	ID          string
	VehicleID   string
	Status      AbsenceStatus
	StartTime   time.Time
	EndTime     time.Time
	Description string
	ScheduleID  *string
	CreatedAt   time.Time
}

// NewVehicleService creates a pending maintenance window.
func NewVehicleService(id, vehicleID string, start, end time.Time, description string) (*VehicleService, error) {
	if !end.After(start) {
		return nil, ErrAbsenceEndBeforeStart
	}
	return &VehicleService{
		ID:          id,
		VehicleID:   vehicleID,
		Status:      AbsencePending,
		StartTime:   start,
		EndTime:     end,
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Approve moves PENDING -> APPROVED; the caller commits the schedule row.
func (vs *VehicleService) Approve(scheduleID string) error {
	if vs.Status != AbsencePending {
		return ErrInvalidAbsenceState
	}
	vs.Status = AbsenceApproved
	vs.ScheduleID = &scheduleID
	return nil
}

// Cancel releases the maintenance window and its schedule row.
func (vs *VehicleService) Cancel() error {
	if vs.Status.Terminal() {
		return ErrInvalidAbsenceState
	}
	vs.Status = AbsenceCancelled
	vs.ScheduleID = nil
	return nil
}
