package service

import (
	"fleetdesk/internal/general/logger"
	"fleetdesk/internal/ports"
)

// bookingService owns the booking request lifecycle. Each leg of a request
// gets its own scheduling trip at creation; resource assignment and
// approval are delegated to the trip service on that linked trip.
type bookingService struct {
	logger      *logger.Logger
	uow         ports.UnitOfWork
	bookingRepo ports.BookingRequestRepository
	tripRepo    ports.TripRepository
	stopRepo    ports.TripStopRepository
	ticketRepo  ports.TripTicketRepository
	vehicleRepo ports.VehicleRepository
	resolver    ports.LocationResolver
	routes      ports.RouteEstimator
	calendar    ports.CalendarService
	trips       ports.TripService
	ids         ports.SequenceAllocator
	notifier    ports.NotificationService
	activity    ports.ActivityLogService
}

// NewBookingService creates the booking service with the provided dependencies.
func NewBookingService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	bookingRepo ports.BookingRequestRepository,
	tripRepo ports.TripRepository,
	stopRepo ports.TripStopRepository,
	ticketRepo ports.TripTicketRepository,
	vehicleRepo ports.VehicleRepository,
	resolver ports.LocationResolver,
	routes ports.RouteEstimator,
	calendar ports.CalendarService,
	trips ports.TripService,
	ids ports.SequenceAllocator,
	notifier ports.NotificationService,
	activity ports.ActivityLogService,
) ports.BookingService {
	return &bookingService{
		logger:      logger,
		uow:         uow,
		bookingRepo: bookingRepo,
		tripRepo:    tripRepo,
		stopRepo:    stopRepo,
		ticketRepo:  ticketRepo,
		vehicleRepo: vehicleRepo,
		resolver:    resolver,
		routes:      routes,
		calendar:    calendar,
		trips:       trips,
		ids:         ids,
		notifier:    notifier,
		activity:    activity,
	}
}
