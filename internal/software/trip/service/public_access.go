package service

import (
	"context"
	"time"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/access"
	"fleetdesk/internal/domain/ident"
	"fleetdesk/internal/domain/trip"
	"fleetdesk/internal/ports"
)

// IssuePublicAccess mints a fresh access code for an outsourced trip,
// replacing any code issued before. Only outsourced trips can be shared:
// employed drivers confirm through their own session.
func (service *tripService) IssuePublicAccess(ctx context.Context, actor ports.Actor, tripID string) (string, error) {
	var code string

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		t, err := service.tripRepo.GetByID(txCtx, tripID)
		if err != nil {
			return apperrors.NotFound("trip %s not found", tripID)
		}
		if !t.Outsourced() {
			return apperrors.InvalidState("trip %s runs on an owned vehicle and cannot be shared publicly", t.ID)
		}
		if t.Status.Terminal() {
			return apperrors.InvalidState("trip %s is %s", t.ID, t.Status)
		}

		code = access.GenerateCode()
		if err := service.accessRepo.Replace(txCtx, &access.Access{Code: code, TripID: t.ID, CreatedAt: time.Now().UTC()}); err != nil {
			return apperrors.Wrap(err, "replace trip access code")
		}

		if err := service.activity.Record(txCtx, actor, string(ident.KindTrip), t.ID, "access_issued", "Issued public access code"); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	service.logger.Info(ctx, "trip_access_issued", "Issued public trip access code", map[string]any{"trip_id": tripID})
	return code, nil
}

// ValidatePublicAccess resolves an access code to its trip detail. Codes
// outside their validity window are rejected without revealing the trip.
func (service *tripService) ValidatePublicAccess(ctx context.Context, accessCode string) (*ports.TripDetail, error) {
	var detail *ports.TripDetail

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		t, err := service.accessibleTrip(txCtx, accessCode)
		if err != nil {
			return err
		}
		detail, err = service.loadDetail(txCtx, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return detail, nil
}

// accessibleTrip resolves an access code to its trip, enforcing the
// validity window around the trip's planned times.
func (service *tripService) accessibleTrip(ctx context.Context, accessCode string) (*trip.Trip, error) {
	a, err := service.accessRepo.GetByCode(ctx, accessCode)
	if err != nil {
		return nil, apperrors.Wrap(err, "load access code")
	}
	if a == nil {
		return nil, apperrors.NotFound("access code not recognized")
	}

	t, err := service.tripRepo.GetByID(ctx, a.TripID)
	if err != nil {
		return nil, apperrors.NotFound("trip %s not found", a.TripID)
	}
	if !access.WindowContains(t.DepartureTime, t.ArrivalTime, time.Now().UTC()) {
		return nil, apperrors.Forbidden("access code is outside its validity window")
	}
	return t, nil
}
