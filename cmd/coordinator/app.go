package main

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"fleetdesk/internal/cli"
	"fleetdesk/internal/general/config"
	"fleetdesk/internal/general/logger"
	"fleetdesk/internal/general/postgres"
	"fleetdesk/internal/general/rabbitmq"
	"fleetdesk/internal/ports"
	activityservice "fleetdesk/internal/software/activity/service"
	bookingservice "fleetdesk/internal/software/booking/service"
	calendarservice "fleetdesk/internal/software/calendar/service"
	locationservice "fleetdesk/internal/software/location/service"
	routeservice "fleetdesk/internal/software/route/service"
	sequenceservice "fleetdesk/internal/software/sequence/service"
	ticketservice "fleetdesk/internal/software/ticket/service"
	tripservice "fleetdesk/internal/software/trip/service"
	tripsheetservice "fleetdesk/internal/software/tripsheet/service"
)

// App is the wired service graph. Transport adapters (HTTP, consumers)
// attach to it and stay outside this package.
type App struct {
	Bookings  ports.BookingService
	Trips     ports.TripService
	Tickets   ports.TicketService
	Calendar  ports.CalendarService
	TripSheet ports.TripSheetService
}

// run wires the coordinator service and blocks until ctx is cancelled.
func run(ctx context.Context, opts cli.Options) error {
	// static request ID for startup logs
	log := logger.New("coordinator")
	ctx = log.WithRequestID(ctx, "startup-001")

	cfg, err := config.LoadFromFile(opts.ConfigPath)
	if err != nil {
		log.Error(ctx, "config_load_failed", "Failed to load configuration", err, nil)
		return err
	}
	if opts.Port != 0 {
		cfg.Service.Port = opts.Port
	}

	pool, err := postgres.NewPool(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "db_connection_failed", "Failed to initialize Postgres pool", err, nil)
		return err
	}
	defer pool.Close()

	rmq, err := rabbitmq.Connect(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err, nil)
		return err
	}
	defer rmq.Close()
	pub := rabbitmq.NewPublisher(rmq)
	notifier := rabbitmq.NewNotifier(pub, log)

	// repositories share one transaction through the unit of work
	uow := postgres.NewUnitOfWork(pool)
	sequenceRepo := postgres.NewSequenceRepo()
	locationRepo := postgres.NewLocationRepo()
	bookingRepo := postgres.NewBookingRequestRepo()
	tripRepo := postgres.NewTripRepo()
	stopRepo := postgres.NewTripStopRepo()
	ticketRepo := postgres.NewTripTicketRepo()
	scheduleRepo := postgres.NewScheduleRepo()
	driverRepo := postgres.NewDriverRepo()
	vehicleRepo := postgres.NewVehicleRepo()
	outsourcedRepo := postgres.NewOutsourcedVehicleRepo()
	leaveRepo := postgres.NewLeaveRequestRepo()
	vehicleServiceRepo := postgres.NewVehicleServiceRepo()
	accessRepo := postgres.NewPublicAccessRepo()
	activityRepo := postgres.NewActivityLogRepo()

	ids := sequenceservice.NewAllocator(log, uow, sequenceRepo)
	activity := activityservice.NewActivityService(log, activityRepo, ids)
	resolver := locationservice.NewResolver(log, uow, locationRepo, ids)
	routes := routeservice.NewHaversineEstimator()
	calendar := calendarservice.NewCalendarService(log, uow, scheduleRepo, leaveRepo, vehicleServiceRepo, driverRepo, vehicleRepo, ids, notifier, activity)
	trips := tripservice.NewTripService(log, uow, tripRepo, stopRepo, ticketRepo, bookingRepo, scheduleRepo, driverRepo, vehicleRepo, outsourcedRepo, accessRepo, calendar, ids, notifier, activity)

	app := &App{
		Bookings:  bookingservice.NewBookingService(log, uow, bookingRepo, tripRepo, stopRepo, ticketRepo, vehicleRepo, resolver, routes, calendar, trips, ids, notifier, activity),
		Trips:     trips,
		Tickets:   ticketservice.NewTicketService(log, uow, tripRepo, ticketRepo, activity),
		Calendar:  calendar,
		TripSheet: tripsheetservice.NewTripSheetService(log, uow, tripRepo, stopRepo, ticketRepo, bookingRepo, locationRepo, driverRepo, vehicleRepo, outsourcedRepo),
	}
	// surface coordinator notifications in the service log until a push
	// transport is attached
	go consumeCoordinatorFeed(ctx, log, rmq)

	log.Info(ctx, "service_started", "Coordinator service started", map[string]any{
		"service": cfg.Service.Name,
		"port":    cfg.Service.Port,
	})

	serve(ctx, app)

	log.Info(ctx, "shutdown_complete", "Coordinator service stopped", nil)
	return nil
}

// serve is the attachment point for transport adapters. The scheduling core
// runs headless and blocks here until the process is stopped.
func serve(ctx context.Context, _ *App) {
	<-ctx.Done()
}

// consumeCoordinatorFeed drains the coordinator notification queue and logs
// every event. Consume returns when the channel drops; retry until ctx ends.
func consumeCoordinatorFeed(ctx context.Context, log *logger.Logger, rmq *rabbitmq.Client) {
	for ctx.Err() == nil {
		err := rmq.Consume(ctx, rabbitmq.QueueCoordinatorNotifications, "coordinator-feed", 8, func(msgCtx context.Context, d amqp.Delivery) error {
			var body ports.NotificationBody
			if err := json.Unmarshal(d.Body, &body); err != nil {
				return err
			}
			log.Info(msgCtx, "coordinator_notification", body.Title, map[string]any{
				"entity_kind": body.EntityKind,
				"entity_id":   body.EntityID,
				"message":     body.Message,
			})
			return nil
		})
		if err != nil {
			log.Error(ctx, "coordinator_feed_failed", "Coordinator notification consumer stopped", err, nil)
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
			}
		}
	}
}
