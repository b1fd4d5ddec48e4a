package service

import (
	"context"
	"sort"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/trip"
	"fleetdesk/internal/general/logger"
	"fleetdesk/internal/ports"
)

// tripService owns the trip lifecycle: resource assignment, approval with
// its calendar commit, combining requests onto shared vehicles, progress
// confirmations and the public access surface for outsourced drivers.
type tripService struct {
	logger         *logger.Logger
	uow            ports.UnitOfWork
	tripRepo       ports.TripRepository
	stopRepo       ports.TripStopRepository
	ticketRepo     ports.TripTicketRepository
	bookingRepo    ports.BookingRequestRepository
	scheduleRepo   ports.ScheduleRepository
	driverRepo     ports.DriverRepository
	vehicleRepo    ports.VehicleRepository
	outsourcedRepo ports.OutsourcedVehicleRepository
	accessRepo     ports.PublicAccessRepository
	calendar       ports.CalendarService
	ids            ports.SequenceAllocator
	notifier       ports.NotificationService
	activity       ports.ActivityLogService
}

// NewTripService creates the trip service with the provided dependencies.
func NewTripService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	tripRepo ports.TripRepository,
	stopRepo ports.TripStopRepository,
	ticketRepo ports.TripTicketRepository,
	bookingRepo ports.BookingRequestRepository,
	scheduleRepo ports.ScheduleRepository,
	driverRepo ports.DriverRepository,
	vehicleRepo ports.VehicleRepository,
	outsourcedRepo ports.OutsourcedVehicleRepository,
	accessRepo ports.PublicAccessRepository,
	calendar ports.CalendarService,
	ids ports.SequenceAllocator,
	notifier ports.NotificationService,
	activity ports.ActivityLogService,
) ports.TripService {
	return &tripService{
		logger:         logger,
		uow:            uow,
		tripRepo:       tripRepo,
		stopRepo:       stopRepo,
		ticketRepo:     ticketRepo,
		bookingRepo:    bookingRepo,
		scheduleRepo:   scheduleRepo,
		driverRepo:     driverRepo,
		vehicleRepo:    vehicleRepo,
		outsourcedRepo: outsourcedRepo,
		accessRepo:     accessRepo,
		calendar:       calendar,
		ids:            ids,
		notifier:       notifier,
		activity:       activity,
	}
}

// GetByID returns a trip with its ordered stops and tickets.
func (service *tripService) GetByID(ctx context.Context, tripID string) (*ports.TripDetail, error) {
	var detail *ports.TripDetail

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		detail, err = service.loadDetail(txCtx, tripID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return detail, nil
}

// loadDetail assembles the trip read shape inside an open transaction.
func (service *tripService) loadDetail(ctx context.Context, tripID string) (*ports.TripDetail, error) {
	t, err := service.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, apperrors.NotFound("trip %s not found", tripID)
	}

	stops, err := service.stopRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, apperrors.Wrap(err, "list trip stops")
	}

	tickets, err := service.ticketRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, apperrors.Wrap(err, "list trip tickets")
	}

	return &ports.TripDetail{Trip: t, Stops: trip.SortByOrder(stops), Tickets: tickets}, nil
}

// requestIDsOf returns the distinct booking request ids behind a ticket
// list, sorted for deterministic iteration.
func requestIDsOf(tickets []*trip.Ticket) []string {
	seen := make(map[string]bool, len(tickets))
	var ids []string
	for _, ticket := range tickets {
		if !seen[ticket.BookingRequestID] {
			seen[ticket.BookingRequestID] = true
			ids = append(ids, ticket.BookingRequestID)
		}
	}
	sort.Strings(ids)
	return ids
}
