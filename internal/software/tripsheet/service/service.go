package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/trip"
	"fleetdesk/internal/general/logger"
	"fleetdesk/internal/ports"
)

// sheetService renders the printable dispatch sheet handed to a driver
// before departure: trip header, assigned resource, the ordered stop list
// and the passenger manifest grouped by booking request.
type sheetService struct {
	logger         *logger.Logger
	uow            ports.UnitOfWork
	tripRepo       ports.TripRepository
	stopRepo       ports.TripStopRepository
	ticketRepo     ports.TripTicketRepository
	bookingRepo    ports.BookingRequestRepository
	locationRepo   ports.LocationRepository
	driverRepo     ports.DriverRepository
	vehicleRepo    ports.VehicleRepository
	outsourcedRepo ports.OutsourcedVehicleRepository
}

// NewTripSheetService creates the dispatch sheet renderer.
func NewTripSheetService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	tripRepo ports.TripRepository,
	stopRepo ports.TripStopRepository,
	ticketRepo ports.TripTicketRepository,
	bookingRepo ports.BookingRequestRepository,
	locationRepo ports.LocationRepository,
	driverRepo ports.DriverRepository,
	vehicleRepo ports.VehicleRepository,
	outsourcedRepo ports.OutsourcedVehicleRepository,
) ports.TripSheetService {
	return &sheetService{
		logger:         logger,
		uow:            uow,
		tripRepo:       tripRepo,
		stopRepo:       stopRepo,
		ticketRepo:     ticketRepo,
		bookingRepo:    bookingRepo,
		locationRepo:   locationRepo,
		driverRepo:     driverRepo,
		vehicleRepo:    vehicleRepo,
		outsourcedRepo: outsourcedRepo,
	}
}

// sheetData is everything the PDF needs, loaded in one transaction.
type sheetData struct {
	trip     *trip.Trip
	resource []string
	stops    []stopLine
	manifest []manifestLine
}

type stopLine struct {
	order    int
	kind     string
	name     string
	address  string
	planned  string
	requests string
}

type manifestLine struct {
	requestID  string
	contact    string
	phone      string
	passengers int
	purpose    string
}

const timeLayout = "2006-01-02 15:04"

// Generate renders the dispatch sheet of a trip.
func (service *sheetService) Generate(ctx context.Context, tripID string) ([]byte, string, error) {
	var data sheetData

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		data, err = service.load(txCtx, tripID)
		return err
	})
	if err != nil {
		return nil, "", err
	}

	out, err := render(data)
	if err != nil {
		return nil, "", apperrors.Internal("render trip sheet", err)
	}

	service.logger.Info(ctx, "trip_sheet_generated", "Generated trip dispatch sheet", map[string]any{"trip_id": tripID})
	return out, "trip-sheet-" + strings.ToLower(tripID) + ".pdf", nil
}

func (service *sheetService) load(ctx context.Context, tripID string) (sheetData, error) {
	var data sheetData

	t, err := service.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return data, apperrors.NotFound("trip %s not found", tripID)
	}
	data.trip = t

	data.resource, err = service.resourceLines(ctx, t)
	if err != nil {
		return data, err
	}

	stops, err := service.stopRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return data, apperrors.Wrap(err, "list trip stops")
	}
	for _, s := range trip.SortByOrder(stops) {
		line := stopLine{
			order:    s.Order,
			kind:     string(s.Type),
			planned:  s.PlannedTime.UTC().Format(timeLayout),
			requests: s.BookingRequestID,
		}
		if loc, err := service.locationRepo.GetByID(ctx, s.LocationID); err == nil && loc != nil {
			line.name = loc.Name
			line.address = loc.Address
		}
		data.stops = append(data.stops, line)
	}

	tickets, err := service.ticketRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return data, apperrors.Wrap(err, "list trip tickets")
	}
	counts := make(map[string]int)
	var order []string
	for _, ticket := range tickets {
		if counts[ticket.BookingRequestID] == 0 {
			order = append(order, ticket.BookingRequestID)
		}
		counts[ticket.BookingRequestID]++
	}
	for _, requestID := range order {
		line := manifestLine{requestID: requestID, passengers: counts[requestID]}
		if req, err := service.bookingRepo.GetByID(ctx, requestID); err == nil {
			line.contact = req.ContactName
			line.phone = req.ContactPhone
			line.purpose = req.TripPurpose
		}
		data.manifest = append(data.manifest, line)
	}

	return data, nil
}

func (service *sheetService) resourceLines(ctx context.Context, t *trip.Trip) ([]string, error) {
	switch {
	case t.OutsourcedVehicleID != nil:
		osv, err := service.outsourcedRepo.GetByID(ctx, *t.OutsourcedVehicleID)
		if err != nil {
			return nil, apperrors.Wrap(err, "load outsourced vehicle")
		}
		return []string{
			"Outsourced vehicle: " + osv.PlateNumber + " " + osv.Model,
			"Driver: " + osv.DriverName + " " + osv.DriverPhone,
			"Vendor: " + safe(osv.VendorName),
			fmt.Sprintf("Capacity: %d", osv.Capacity),
		}, nil
	case t.VehicleID != nil:
		v, err := service.vehicleRepo.GetByID(ctx, *t.VehicleID)
		if err != nil {
			return nil, apperrors.Wrap(err, "load vehicle")
		}
		lines := []string{
			"Vehicle: " + v.PlateNumber + " " + v.Model,
			fmt.Sprintf("Capacity: %d", v.Capacity),
		}
		if t.DriverID != nil {
			if d, err := service.driverRepo.GetByID(ctx, *t.DriverID); err == nil {
				lines = append(lines, "Driver: "+d.Name+" "+d.Phone)
			}
		}
		return lines, nil
	default:
		return []string{"No vehicle assigned yet"}, nil
	}
}

func render(data sheetData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Trip Sheet "+data.trip.ID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "TRIP SHEET "+data.trip.ID)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	header := []string{
		"Status: " + string(data.trip.Status),
		"Departure: " + data.trip.DepartureTime.UTC().Format(timeLayout),
		"Arrival: " + data.trip.ArrivalTime.UTC().Format(timeLayout),
	}
	for _, line := range append(header, data.resource...) {
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Stops")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, s := range data.stops {
		pdf.Cell(0, 6, fmt.Sprintf("%2d. %-8s %s  %s (%s)  [%s]", s.order, s.kind, s.planned, safe(s.name), safe(s.address), s.requests))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Passengers")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, m := range data.manifest {
		pdf.Cell(0, 6, fmt.Sprintf("%s  %d pax  %s %s  %s", m.requestID, m.passengers, safe(m.contact), safe(m.phone), safe(m.purpose)))
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func safe(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
