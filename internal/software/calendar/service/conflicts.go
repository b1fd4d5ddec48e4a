package service

import (
	"context"
	"strings"
	"time"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/calendar"
	"fleetdesk/internal/domain/ident"
	"fleetdesk/internal/ports"
)

// FindConflictsForDriver returns the ids of the driver's future schedules
// overlapping [start, end). Advisory: an overlap is reported, never an
// error, so callers can warn without blocking.
func (service *calendarService) FindConflictsForDriver(ctx context.Context, driverID string, start, end time.Time, excludeScheduleID string) ([]string, error) {
	var conflicts []string
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		schedules, err := service.scheduleRepo.ListForDriverFrom(txCtx, driverID, time.Now().UTC())
		if err != nil {
			return apperrors.Wrap(err, "list driver schedules")
		}
		conflicts = calendar.ConflictIDs(schedules, start, end, excludeScheduleID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conflicts, nil
}

// FindConflictsForVehicle is the vehicle-keyed variant of
// FindConflictsForDriver.
func (service *calendarService) FindConflictsForVehicle(ctx context.Context, vehicleID string, start, end time.Time, excludeScheduleID string) ([]string, error) {
	var conflicts []string
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		schedules, err := service.scheduleRepo.ListForVehicleFrom(txCtx, vehicleID, time.Now().UTC())
		if err != nil {
			return apperrors.Wrap(err, "list vehicle schedules")
		}
		conflicts = calendar.ConflictIDs(schedules, start, end, excludeScheduleID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conflicts, nil
}

// CommitSchedule re-checks conflicts inside the transaction and inserts the
// schedule row. This is the authoritative check: whatever an advisory
// pre-check said earlier, an overlap found here aborts the commit.
func (service *calendarService) CommitSchedule(ctx context.Context, in ports.CommitScheduleInput) (string, error) {
	var scheduleID string

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		if in.DriverID != nil {
			schedules, err := service.scheduleRepo.ListForDriverFrom(txCtx, *in.DriverID, time.Now().UTC())
			if err != nil {
				return apperrors.Wrap(err, "list driver schedules")
			}
			if ids := calendar.ConflictIDs(schedules, in.StartTime, in.EndTime, ""); len(ids) > 0 {
				return apperrors.Conflict("driver %s has conflicting schedules: %s", *in.DriverID, strings.Join(ids, ", "))
			}
		}
		if in.VehicleID != nil {
			schedules, err := service.scheduleRepo.ListForVehicleFrom(txCtx, *in.VehicleID, time.Now().UTC())
			if err != nil {
				return apperrors.Wrap(err, "list vehicle schedules")
			}
			if ids := calendar.ConflictIDs(schedules, in.StartTime, in.EndTime, ""); len(ids) > 0 {
				return apperrors.Conflict("vehicle %s has conflicting schedules: %s", *in.VehicleID, strings.Join(ids, ", "))
			}
		}

		id, err := service.ids.AllocateOne(txCtx, ident.KindSchedule)
		if err != nil {
			return err
		}

		s, err := calendar.New(id, in.Title, in.Description, in.StartTime, in.EndTime, in.DriverID, in.VehicleID)
		if err != nil {
			return apperrors.Validation("%v", err)
		}

		switch {
		case in.TripID != nil:
			err = s.LinkTrip(*in.TripID)
		case in.LeaveRequestID != nil:
			err = s.LinkLeaveRequest(*in.LeaveRequestID)
		case in.VehicleServiceID != nil:
			err = s.LinkVehicleService(*in.VehicleServiceID)
		}
		if err != nil {
			return apperrors.Validation("%v", err)
		}

		if err := service.scheduleRepo.Create(txCtx, s); err != nil {
			return apperrors.Wrap(err, "create schedule")
		}
		scheduleID = s.ID
		return nil
	})
	if err != nil {
		return "", err
	}

	service.logger.Info(ctx, "schedule_committed", "Committed calendar schedule", map[string]any{
		"schedule_id": scheduleID,
		"start_time":  in.StartTime,
		"end_time":    in.EndTime,
	})
	return scheduleID, nil
}
