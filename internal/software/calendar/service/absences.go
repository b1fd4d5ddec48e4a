package service

import (
	"context"
	"time"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/fleet"
	"fleetdesk/internal/domain/ident"
	"fleetdesk/internal/ports"
)

// CreateLeaveRequest records a pending leave request for a driver. No
// calendar time is occupied until approval.
func (service *calendarService) CreateLeaveRequest(ctx context.Context, actor ports.Actor, driverID, reason string, start, end time.Time) (*fleet.LeaveRequest, error) {
	var created *fleet.LeaveRequest

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		if _, err := service.driverRepo.GetByID(txCtx, driverID); err != nil {
			return apperrors.NotFound("driver %s not found", driverID)
		}

		id, err := service.ids.AllocateOne(txCtx, ident.KindLeaveRequest)
		if err != nil {
			return err
		}

		lr, err := fleet.NewLeaveRequest(id, driverID, start, end, reason, "")
		if err != nil {
			return apperrors.Validation("%v", err)
		}
		if err := service.leaveRepo.Create(txCtx, lr); err != nil {
			return apperrors.Wrap(err, "create leave request")
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindLeaveRequest), lr.ID, "created", "Leave request created"); err != nil {
			return err
		}
		created = lr
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// ApproveLeaveRequest approves a pending request and commits exactly one
// schedule row occupying the driver's calendar for the leave window.
func (service *calendarService) ApproveLeaveRequest(ctx context.Context, actor ports.Actor, leaveRequestID string) (*fleet.LeaveRequest, error) {
	var approved *fleet.LeaveRequest

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		lr, err := service.leaveRepo.GetByID(txCtx, leaveRequestID)
		if err != nil {
			return apperrors.NotFound("leave request %s not found", leaveRequestID)
		}

		scheduleID, err := service.CommitSchedule(txCtx, ports.CommitScheduleInput{
			Title:          "Driver leave",
			Description:    lr.Reason,
			StartTime:      lr.StartTime,
			EndTime:        lr.EndTime,
			DriverID:       &lr.DriverID,
			LeaveRequestID: &lr.ID,
		})
		if err != nil {
			return err
		}

		if err := lr.Approve(scheduleID); err != nil {
			return apperrors.InvalidState("%v", err)
		}
		if err := service.leaveRepo.Update(txCtx, lr); err != nil {
			return apperrors.Wrap(err, "update leave request")
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindLeaveRequest), lr.ID, "approved", "Leave request approved"); err != nil {
			return err
		}
		service.notifier.Notify(txCtx, ports.NotificationBody{
			RecipientID: lr.DriverID,
			Audience:    "user",
			Title:       "Leave approved",
			Message:     "Your leave request was approved.",
			EntityKind:  string(ident.KindLeaveRequest),
			EntityID:    lr.ID,
		})
		approved = lr
		return nil
	})
	if err != nil {
		return nil, err
	}

	return approved, nil
}

// RejectLeaveRequest rejects a pending or approved request. Rejecting an
// approved leave gives its calendar time back.
func (service *calendarService) RejectLeaveRequest(ctx context.Context, actor ports.Actor, leaveRequestID string) (*fleet.LeaveRequest, error) {
	var rejected *fleet.LeaveRequest

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		lr, err := service.leaveRepo.GetByID(txCtx, leaveRequestID)
		if err != nil {
			return apperrors.NotFound("leave request %s not found", leaveRequestID)
		}

		wasApproved := lr.Status == fleet.AbsenceApproved
		if err := lr.Reject(); err != nil {
			return apperrors.InvalidState("%v", err)
		}
		if wasApproved {
			if err := service.scheduleRepo.DeleteByLeaveRequest(txCtx, lr.ID); err != nil {
				return apperrors.Wrap(err, "delete leave schedule")
			}
		}
		if err := service.leaveRepo.Update(txCtx, lr); err != nil {
			return apperrors.Wrap(err, "update leave request")
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindLeaveRequest), lr.ID, "rejected", "Leave request rejected"); err != nil {
			return err
		}
		service.notifier.Notify(txCtx, ports.NotificationBody{
			RecipientID: lr.DriverID,
			Audience:    "user",
			Title:       "Leave rejected",
			Message:     "Your leave request was rejected.",
			EntityKind:  string(ident.KindLeaveRequest),
			EntityID:    lr.ID,
		})
		rejected = lr
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rejected, nil
}

// CancelLeaveRequest cancels a pending or approved request. An approved
// request gives its calendar time back.
func (service *calendarService) CancelLeaveRequest(ctx context.Context, actor ports.Actor, leaveRequestID string) (*fleet.LeaveRequest, error) {
	var cancelled *fleet.LeaveRequest

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		lr, err := service.leaveRepo.GetByID(txCtx, leaveRequestID)
		if err != nil {
			return apperrors.NotFound("leave request %s not found", leaveRequestID)
		}

		wasApproved := lr.Status == fleet.AbsenceApproved
		if err := lr.Cancel(); err != nil {
			return apperrors.InvalidState("%v", err)
		}
		if wasApproved {
			if err := service.scheduleRepo.DeleteByLeaveRequest(txCtx, lr.ID); err != nil {
				return apperrors.Wrap(err, "delete leave schedule")
			}
		}
		if err := service.leaveRepo.Update(txCtx, lr); err != nil {
			return apperrors.Wrap(err, "update leave request")
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindLeaveRequest), lr.ID, "cancelled", "Leave request cancelled"); err != nil {
			return err
		}
		cancelled = lr
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

// CreateVehicleService records a pending maintenance window for a vehicle.
func (service *calendarService) CreateVehicleService(ctx context.Context, actor ports.Actor, vehicleID, description string, start, end time.Time) (*fleet.VehicleService, error) {
	var created *fleet.VehicleService

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		if _, err := service.vehicleRepo.GetByID(txCtx, vehicleID); err != nil {
			return apperrors.NotFound("vehicle %s not found", vehicleID)
		}

		id, err := service.ids.AllocateOne(txCtx, ident.KindVehicleService)
		if err != nil {
			return err
		}

		vs, err := fleet.NewVehicleService(id, vehicleID, start, end, description)
		if err != nil {
			return apperrors.Validation("%v", err)
		}
		if err := service.vehicleServiceRepo.Create(txCtx, vs); err != nil {
			return apperrors.Wrap(err, "create vehicle service")
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindVehicleService), vs.ID, "created", "Vehicle service window created"); err != nil {
			return err
		}
		created = vs
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// ApproveVehicleService approves a pending window and occupies the
// vehicle's calendar for it.
func (service *calendarService) ApproveVehicleService(ctx context.Context, actor ports.Actor, vehicleServiceID string) (*fleet.VehicleService, error) {
	var approved *fleet.VehicleService

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		vs, err := service.vehicleServiceRepo.GetByID(txCtx, vehicleServiceID)
		if err != nil {
			return apperrors.NotFound("vehicle service %s not found", vehicleServiceID)
		}

		scheduleID, err := service.CommitSchedule(txCtx, ports.CommitScheduleInput{
			Title:            "Vehicle maintenance",
			Description:      vs.Description,
			StartTime:        vs.StartTime,
			EndTime:          vs.EndTime,
			VehicleID:        &vs.VehicleID,
			VehicleServiceID: &vs.ID,
		})
		if err != nil {
			return err
		}

		if err := vs.Approve(scheduleID); err != nil {
			return apperrors.InvalidState("%v", err)
		}
		if err := service.vehicleServiceRepo.Update(txCtx, vs); err != nil {
			return apperrors.Wrap(err, "update vehicle service")
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindVehicleService), vs.ID, "approved", "Vehicle service window approved"); err != nil {
			return err
		}
		approved = vs
		return nil
	})
	if err != nil {
		return nil, err
	}

	return approved, nil
}

// CancelVehicleService cancels a window and frees any committed calendar
// time.
func (service *calendarService) CancelVehicleService(ctx context.Context, actor ports.Actor, vehicleServiceID string) (*fleet.VehicleService, error) {
	var cancelled *fleet.VehicleService

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		vs, err := service.vehicleServiceRepo.GetByID(txCtx, vehicleServiceID)
		if err != nil {
			return apperrors.NotFound("vehicle service %s not found", vehicleServiceID)
		}

		wasApproved := vs.Status == fleet.AbsenceApproved
		if err := vs.Cancel(); err != nil {
			return apperrors.InvalidState("%v", err)
		}
		if wasApproved {
			if err := service.scheduleRepo.DeleteByVehicleService(txCtx, vs.ID); err != nil {
				return apperrors.Wrap(err, "delete service schedule")
			}
		}
		if err := service.vehicleServiceRepo.Update(txCtx, vs); err != nil {
			return apperrors.Wrap(err, "update vehicle service")
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindVehicleService), vs.ID, "cancelled", "Vehicle service window cancelled"); err != nil {
			return err
		}
		cancelled = vs
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}
