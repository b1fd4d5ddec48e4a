// Package memstore provides in-memory implementations of the repository
// and infrastructure ports. Service tests run against these instead of
// PostgreSQL and RabbitMQ.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"fleetdesk/internal/domain/access"
	"fleetdesk/internal/domain/booking"
	"fleetdesk/internal/domain/calendar"
	"fleetdesk/internal/domain/fleet"
	"fleetdesk/internal/domain/ident"
	"fleetdesk/internal/domain/location"
	"fleetdesk/internal/domain/trip"
	"fleetdesk/internal/ports"

	"errors"
)

// ErrNotFound is returned by Get methods when no row matches, standing in
// for the driver-level no-rows error of the real repositories.
var ErrNotFound = errors.New("memstore: not found")

// UOW is a pass-through unit of work; the store itself is always
// consistent, so there is nothing to commit or roll back.
type UOW struct{}

func (UOW) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Allocator is an in-memory sequence allocator with per-kind counters.
type Allocator struct {
	mu       sync.Mutex
	counters map[ident.Kind]int64
}

func NewAllocator() *Allocator {
	return &Allocator{counters: make(map[ident.Kind]int64)}
}

func (a *Allocator) Allocate(_ context.Context, kind ident.Kind, count int) ([]string, error) {
	prefix, ok := ident.Prefix(kind)
	if !ok {
		return nil, errors.New("memstore: no prefix for kind " + string(kind))
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	// issued ids start above the range tests use for seeded fixtures, so
	// an allocated "TR-1001" can never alias a hand-written "TR-1"
	if a.counters[kind] == 0 {
		a.counters[kind] = 1000
	}
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		a.counters[kind]++
		ids = append(ids, ident.Format(prefix, a.counters[kind]))
	}
	return ids, nil
}

func (a *Allocator) AllocateOne(ctx context.Context, kind ident.Kind) (string, error) {
	ids, err := a.Allocate(ctx, kind, 1)
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// Notifier records notifications instead of publishing them.
type Notifier struct {
	mu   sync.Mutex
	Sent []ports.NotificationBody
}

func (n *Notifier) Notify(_ context.Context, body ports.NotificationBody) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, body)
}

// ActivityLog records audit entries in memory.
type ActivityLog struct {
	mu      sync.Mutex
	Entries []ports.ActivityEntry
}

func (l *ActivityLog) Record(_ context.Context, actor ports.Actor, entityKind, entityID, action, message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, ports.ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		EntityKind: entityKind,
		EntityID:   entityID,
		Action:     action,
		Message:    message,
		CreatedAt:  time.Now().UTC(),
	})
	return nil
}

// Store bundles every repository over shared in-memory maps.
type Store struct {
	mu sync.Mutex

	Locations          map[string]*location.Location
	Bookings           map[string]*booking.Request
	Trips              map[string]*trip.Trip
	Stops              map[string][]trip.Stop // keyed by trip id
	Tickets            map[string]*trip.Ticket
	Schedules          map[string]*calendar.Schedule
	Drivers            map[string]*fleet.Driver
	Vehicles           map[string]*fleet.Vehicle
	OutsourcedVehicles map[string]*fleet.OutsourcedVehicle
	LeaveRequests      map[string]*fleet.LeaveRequest
	VehicleServices    map[string]*fleet.VehicleService
	AccessCodes        map[string]*access.Access // keyed by code
}

func New() *Store {
	return &Store{
		Locations:          make(map[string]*location.Location),
		Bookings:           make(map[string]*booking.Request),
		Trips:              make(map[string]*trip.Trip),
		Stops:              make(map[string][]trip.Stop),
		Tickets:            make(map[string]*trip.Ticket),
		Schedules:          make(map[string]*calendar.Schedule),
		Drivers:            make(map[string]*fleet.Driver),
		Vehicles:           make(map[string]*fleet.Vehicle),
		OutsourcedVehicles: make(map[string]*fleet.OutsourcedVehicle),
		LeaveRequests:      make(map[string]*fleet.LeaveRequest),
		VehicleServices:    make(map[string]*fleet.VehicleService),
		AccessCodes:        make(map[string]*access.Access),
	}
}

// ----- LocationRepository -----

type LocationRepo struct{ S *Store }

func (r LocationRepo) Create(_ context.Context, loc *location.Location) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	cp := *loc
	r.S.Locations[loc.ID] = &cp
	return nil
}

func (r LocationRepo) GetByID(_ context.Context, id string) (*location.Location, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	loc, ok := r.S.Locations[id]
	if !ok {
		return nil, nil
	}
	cp := *loc
	return &cp, nil
}

func (r LocationRepo) FindCustomByCoordinates(_ context.Context, lat, lng float64) (*location.Location, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	for _, loc := range r.S.Locations {
		if loc.Kind == location.KindCustom && loc.Latitude == lat && loc.Longitude == lng {
			cp := *loc
			return &cp, nil
		}
	}
	return nil, nil
}

// ----- BookingRequestRepository -----

type BookingRepo struct{ S *Store }

func (r BookingRepo) Create(_ context.Context, req *booking.Request) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	cp := *req
	r.S.Bookings[req.ID] = &cp
	return nil
}

func (r BookingRepo) GetByID(_ context.Context, id string) (*booking.Request, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	req, ok := r.S.Bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (r BookingRepo) Update(_ context.Context, req *booking.Request) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if _, ok := r.S.Bookings[req.ID]; !ok {
		return ErrNotFound
	}
	cp := *req
	r.S.Bookings[req.ID] = &cp
	return nil
}

// ----- TripRepository -----

type TripRepo struct{ S *Store }

func (r TripRepo) Create(_ context.Context, t *trip.Trip) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if _, exists := r.S.Trips[t.ID]; exists {
		return errors.New("memstore: trip " + t.ID + " already exists")
	}
	cp := *t
	r.S.Trips[t.ID] = &cp
	return nil
}

func (r TripRepo) GetByID(_ context.Context, id string) (*trip.Trip, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	t, ok := r.S.Trips[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r TripRepo) Update(_ context.Context, t *trip.Trip) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if _, ok := r.S.Trips[t.ID]; !ok {
		return ErrNotFound
	}
	cp := *t
	r.S.Trips[t.ID] = &cp
	return nil
}

func (r TripRepo) Delete(_ context.Context, id string) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	delete(r.S.Trips, id)
	return nil
}

func (r TripRepo) ListByBookingRequest(_ context.Context, bookingRequestID string) ([]*trip.Trip, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	seen := make(map[string]bool)
	var out []*trip.Trip
	for _, ticket := range r.S.Tickets {
		if ticket.BookingRequestID != bookingRequestID || seen[ticket.TripID] {
			continue
		}
		seen[ticket.TripID] = true
		if t, ok := r.S.Trips[ticket.TripID]; ok {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r TripRepo) ListCombinedInto(_ context.Context, combinedTripID string) ([]*trip.Trip, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	var out []*trip.Trip
	for _, t := range r.S.Trips {
		if t.CombinedIntoID != nil && *t.CombinedIntoID == combinedTripID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ----- TripStopRepository -----

type StopRepo struct{ S *Store }

func (r StopRepo) CreateAll(_ context.Context, stops []trip.Stop) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	for _, s := range stops {
		r.S.Stops[s.TripID] = append(r.S.Stops[s.TripID], s)
	}
	return nil
}

func (r StopRepo) ListByTrip(_ context.Context, tripID string) ([]trip.Stop, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	return trip.SortByOrder(r.S.Stops[tripID]), nil
}

func (r StopRepo) ReplaceForTrip(_ context.Context, tripID string, stops []trip.Stop) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	r.S.Stops[tripID] = append([]trip.Stop(nil), stops...)
	return nil
}

func (r StopRepo) DeleteByTrip(_ context.Context, tripID string) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	delete(r.S.Stops, tripID)
	return nil
}

// ----- TripTicketRepository -----

type TicketRepo struct{ S *Store }

func (r TicketRepo) CreateAll(_ context.Context, tickets []*trip.Ticket) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	for _, t := range tickets {
		cp := *t
		r.S.Tickets[t.ID] = &cp
	}
	return nil
}

func (r TicketRepo) list(filter func(*trip.Ticket) bool) []*trip.Ticket {
	var out []*trip.Ticket
	for _, t := range r.S.Tickets {
		if filter(t) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r TicketRepo) ListByTrip(_ context.Context, tripID string) ([]*trip.Ticket, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	return r.list(func(t *trip.Ticket) bool { return t.TripID == tripID }), nil
}

func (r TicketRepo) ListByTripAndRequest(_ context.Context, tripID, bookingRequestID string) ([]*trip.Ticket, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	return r.list(func(t *trip.Ticket) bool {
		return t.TripID == tripID && t.BookingRequestID == bookingRequestID
	}), nil
}

func (r TicketRepo) UpdateAll(_ context.Context, tickets []*trip.Ticket) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	for _, t := range tickets {
		if _, ok := r.S.Tickets[t.ID]; !ok {
			return ErrNotFound
		}
		cp := *t
		r.S.Tickets[t.ID] = &cp
	}
	return nil
}

func (r TicketRepo) MoveToTrip(_ context.Context, bookingRequestID, fromTripID, toTripID string) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	for _, t := range r.S.Tickets {
		if t.BookingRequestID == bookingRequestID && t.TripID == fromTripID {
			t.TripID = toTripID
			t.UpdatedAt = time.Now().UTC()
		}
	}
	return nil
}

// ----- ScheduleRepository -----

type ScheduleRepo struct{ S *Store }

func (r ScheduleRepo) Create(_ context.Context, s *calendar.Schedule) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	cp := *s
	r.S.Schedules[s.ID] = &cp
	return nil
}

func (r ScheduleRepo) GetByID(_ context.Context, id string) (*calendar.Schedule, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	s, ok := r.S.Schedules[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r ScheduleRepo) Delete(_ context.Context, id string) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	delete(r.S.Schedules, id)
	return nil
}

func (r ScheduleRepo) listFrom(match func(*calendar.Schedule) bool, from time.Time) []calendar.Schedule {
	var out []calendar.Schedule
	for _, s := range r.S.Schedules {
		if match(s) && !s.StartTime.Before(from) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (r ScheduleRepo) ListForDriverFrom(_ context.Context, driverID string, from time.Time) ([]calendar.Schedule, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	return r.listFrom(func(s *calendar.Schedule) bool {
		return s.DriverID != nil && *s.DriverID == driverID
	}, from), nil
}

func (r ScheduleRepo) ListForVehicleFrom(_ context.Context, vehicleID string, from time.Time) ([]calendar.Schedule, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	return r.listFrom(func(s *calendar.Schedule) bool {
		return s.VehicleID != nil && *s.VehicleID == vehicleID
	}, from), nil
}

func (r ScheduleRepo) deleteWhere(match func(*calendar.Schedule) bool) {
	for id, s := range r.S.Schedules {
		if match(s) {
			delete(r.S.Schedules, id)
		}
	}
}

func (r ScheduleRepo) DeleteByTrip(_ context.Context, tripID string) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	r.deleteWhere(func(s *calendar.Schedule) bool { return s.TripID != nil && *s.TripID == tripID })
	return nil
}

func (r ScheduleRepo) DeleteByLeaveRequest(_ context.Context, leaveRequestID string) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	r.deleteWhere(func(s *calendar.Schedule) bool {
		return s.LeaveRequestID != nil && *s.LeaveRequestID == leaveRequestID
	})
	return nil
}

func (r ScheduleRepo) DeleteByVehicleService(_ context.Context, vehicleServiceID string) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	r.deleteWhere(func(s *calendar.Schedule) bool {
		return s.VehicleServiceID != nil && *s.VehicleServiceID == vehicleServiceID
	})
	return nil
}

// ----- DriverRepository -----

type DriverRepo struct{ S *Store }

func (r DriverRepo) GetByID(_ context.Context, id string) (*fleet.Driver, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	d, ok := r.S.Drivers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r DriverRepo) UpdateAvailability(_ context.Context, id string, availability fleet.DriverAvailability) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	d, ok := r.S.Drivers[id]
	if !ok {
		return ErrNotFound
	}
	d.Availability = availability
	return nil
}

// ----- VehicleRepository -----

type VehicleRepo struct{ S *Store }

func (r VehicleRepo) GetByID(_ context.Context, id string) (*fleet.Vehicle, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	v, ok := r.S.Vehicles[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r VehicleRepo) ListActive(_ context.Context) ([]fleet.Vehicle, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	var out []fleet.Vehicle
	for _, v := range r.S.Vehicles {
		if v.Availability != fleet.VehicleOutOfService {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ----- OutsourcedVehicleRepository -----

type OutsourcedVehicleRepo struct{ S *Store }

func (r OutsourcedVehicleRepo) Create(_ context.Context, v *fleet.OutsourcedVehicle) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	cp := *v
	r.S.OutsourcedVehicles[v.ID] = &cp
	return nil
}

func (r OutsourcedVehicleRepo) GetByID(_ context.Context, id string) (*fleet.OutsourcedVehicle, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	v, ok := r.S.OutsourcedVehicles[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v
	return &cp, nil
}

// ----- LeaveRequestRepository -----

type LeaveRequestRepo struct{ S *Store }

func (r LeaveRequestRepo) Create(_ context.Context, lr *fleet.LeaveRequest) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	cp := *lr
	r.S.LeaveRequests[lr.ID] = &cp
	return nil
}

func (r LeaveRequestRepo) GetByID(_ context.Context, id string) (*fleet.LeaveRequest, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	lr, ok := r.S.LeaveRequests[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *lr
	return &cp, nil
}

func (r LeaveRequestRepo) Update(_ context.Context, lr *fleet.LeaveRequest) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if _, ok := r.S.LeaveRequests[lr.ID]; !ok {
		return ErrNotFound
	}
	cp := *lr
	r.S.LeaveRequests[lr.ID] = &cp
	return nil
}

// ----- VehicleServiceRepository -----

type VehicleServiceRepo struct{ S *Store }

func (r VehicleServiceRepo) Create(_ context.Context, vs *fleet.VehicleService) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	cp := *vs
	r.S.VehicleServices[vs.ID] = &cp
	return nil
}

func (r VehicleServiceRepo) GetByID(_ context.Context, id string) (*fleet.VehicleService, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	vs, ok := r.S.VehicleServices[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *vs
	return &cp, nil
}

func (r VehicleServiceRepo) Update(_ context.Context, vs *fleet.VehicleService) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if _, ok := r.S.VehicleServices[vs.ID]; !ok {
		return ErrNotFound
	}
	cp := *vs
	r.S.VehicleServices[vs.ID] = &cp
	return nil
}

// ----- PublicAccessRepository -----

type AccessRepo struct{ S *Store }

func (r AccessRepo) Replace(_ context.Context, a *access.Access) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	for code, existing := range r.S.AccessCodes {
		if existing.TripID == a.TripID {
			delete(r.S.AccessCodes, code)
		}
	}
	cp := *a
	r.S.AccessCodes[a.Code] = &cp
	return nil
}

func (r AccessRepo) GetByCode(_ context.Context, code string) (*access.Access, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	a, ok := r.S.AccessCodes[code]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r AccessRepo) GetByTrip(_ context.Context, tripID string) (*access.Access, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	for _, a := range r.S.AccessCodes {
		if a.TripID == tripID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r AccessRepo) DeleteByTrip(_ context.Context, tripID string) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	for code, a := range r.S.AccessCodes {
		if a.TripID == tripID {
			delete(r.S.AccessCodes, code)
		}
	}
	return nil
}
