package service

import (
	"context"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/fleet"
	"fleetdesk/internal/domain/ident"
	"fleetdesk/internal/domain/trip"
	"fleetdesk/internal/ports"
)

// AssignVehicle attaches an owned vehicle and its driver to a scheduling
// trip. Calendar conflicts are only advisory here: they are logged, and the
// authoritative re-check happens when the trip is approved.
func (service *tripService) AssignVehicle(ctx context.Context, actor ports.Actor, tripID, vehicleID string) (*trip.Trip, error) {
	var assigned *trip.Trip

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		t, err := service.tripRepo.GetByID(txCtx, tripID)
		if err != nil {
			return apperrors.NotFound("trip %s not found", tripID)
		}

		v, err := service.vehicleRepo.GetByID(txCtx, vehicleID)
		if err != nil {
			return apperrors.NotFound("vehicle %s not found", vehicleID)
		}

		tickets, err := service.ticketRepo.ListByTrip(txCtx, tripID)
		if err != nil {
			return apperrors.Wrap(err, "list trip tickets")
		}
		if !v.Assignable(len(tickets)) {
			return apperrors.Validation("vehicle %s cannot serve %d passengers", v.ID, len(tickets))
		}

		conflicts, err := service.calendar.FindConflictsForDriver(txCtx, *v.DriverID, t.DepartureTime, t.ArrivalTime, "")
		if err != nil {
			return err
		}
		vehicleConflicts, err := service.calendar.FindConflictsForVehicle(txCtx, v.ID, t.DepartureTime, t.ArrivalTime, "")
		if err != nil {
			return err
		}
		if conflicts = append(conflicts, vehicleConflicts...); len(conflicts) > 0 {
			service.logger.Info(txCtx, "trip_assign_conflicts", "Assigning vehicle despite calendar conflicts", map[string]any{
				"trip_id":      tripID,
				"vehicle_id":   vehicleID,
				"conflict_ids": conflicts,
			})
		}

		if err := t.AssignVehicle(v.ID, *v.DriverID); err != nil {
			return apperrors.InvalidState("trip %s is %s: %v", t.ID, t.Status, err)
		}
		if err := service.tripRepo.Update(txCtx, t); err != nil {
			return apperrors.Wrap(err, "update trip")
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindTrip), t.ID, "vehicle_assigned", "Assigned vehicle "+v.ID); err != nil {
			return err
		}
		assigned = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return assigned, nil
}

// AssignOutsourcedVehicle creates a rented vehicle/driver record and
// attaches it to the trip, replacing any owned assignment.
func (service *tripService) AssignOutsourcedVehicle(ctx context.Context, actor ports.Actor, tripID string, in ports.AssignOutsourcedInput) (*trip.Trip, error) {
	var assigned *trip.Trip

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		t, err := service.tripRepo.GetByID(txCtx, tripID)
		if err != nil {
			return apperrors.NotFound("trip %s not found", tripID)
		}

		tickets, err := service.ticketRepo.ListByTrip(txCtx, tripID)
		if err != nil {
			return apperrors.Wrap(err, "list trip tickets")
		}
		if in.Capacity < len(tickets) {
			return apperrors.Validation("outsourced vehicle capacity %d is below %d passengers", in.Capacity, len(tickets))
		}

		id, err := service.ids.AllocateOne(txCtx, ident.KindOutsourcedVehicle)
		if err != nil {
			return err
		}
		osv, err := fleet.NewOutsourcedVehicle(id, in.DriverName, in.DriverPhone, in.PlateNumber, in.VehicleModel, in.Capacity, in.Cost, in.VendorName)
		if err != nil {
			return apperrors.Validation("%v", err)
		}
		if err := service.outsourcedRepo.Create(txCtx, osv); err != nil {
			return apperrors.Wrap(err, "create outsourced vehicle")
		}

		if err := t.AssignOutsourcedVehicle(osv.ID, in.Cost); err != nil {
			return apperrors.InvalidState("trip %s is %s: %v", t.ID, t.Status, err)
		}
		if err := service.tripRepo.Update(txCtx, t); err != nil {
			return apperrors.Wrap(err, "update trip")
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindTrip), t.ID, "outsourced_assigned", "Assigned outsourced vehicle "+osv.ID); err != nil {
			return err
		}
		assigned = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return assigned, nil
}
