package service

import (
	"fleetdesk/internal/general/logger"
	"fleetdesk/internal/ports"
)

// calendarService owns conflict detection and every path that writes or
// removes schedule rows: trip approval, leave requests and vehicle
// maintenance windows all commit their calendar time through here.
type calendarService struct {
	logger             *logger.Logger
	uow                ports.UnitOfWork
	scheduleRepo       ports.ScheduleRepository
	leaveRepo          ports.LeaveRequestRepository
	vehicleServiceRepo ports.VehicleServiceRepository
	driverRepo         ports.DriverRepository
	vehicleRepo        ports.VehicleRepository
	ids                ports.SequenceAllocator
	notifier           ports.NotificationService
	activity           ports.ActivityLogService
}

// NewCalendarService creates the calendar service with the provided dependencies.
func NewCalendarService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	scheduleRepo ports.ScheduleRepository,
	leaveRepo ports.LeaveRequestRepository,
	vehicleServiceRepo ports.VehicleServiceRepository,
	driverRepo ports.DriverRepository,
	vehicleRepo ports.VehicleRepository,
	ids ports.SequenceAllocator,
	notifier ports.NotificationService,
	activity ports.ActivityLogService,
) ports.CalendarService {
	return &calendarService{
		logger:             logger,
		uow:                uow,
		scheduleRepo:       scheduleRepo,
		leaveRepo:          leaveRepo,
		vehicleServiceRepo: vehicleServiceRepo,
		driverRepo:         driverRepo,
		vehicleRepo:        vehicleRepo,
		ids:                ids,
		notifier:           notifier,
		activity:           activity,
	}
}
