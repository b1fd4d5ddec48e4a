package service

import (
	"context"
	"fmt"
	"testing"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/ident"
	"fleetdesk/internal/domain/location"
	"fleetdesk/internal/general/logger"
	"fleetdesk/internal/ports"
)

type passthroughUOW struct{}

func (passthroughUOW) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memLocationRepo struct {
	byID map[string]*location.Location
}

func newMemLocationRepo() *memLocationRepo {
	return &memLocationRepo{byID: make(map[string]*location.Location)}
}

func (r *memLocationRepo) Create(_ context.Context, loc *location.Location) error {
	r.byID[loc.ID] = loc
	return nil
}

func (r *memLocationRepo) GetByID(_ context.Context, id string) (*location.Location, error) {
	return r.byID[id], nil
}

func (r *memLocationRepo) FindCustomByCoordinates(_ context.Context, lat, lng float64) (*location.Location, error) {
	for _, loc := range r.byID {
		if loc.Kind == location.KindCustom && loc.Latitude == lat && loc.Longitude == lng {
			return loc, nil
		}
	}
	return nil, nil
}

type stubAllocator struct{ n int }

func (a *stubAllocator) Allocate(_ context.Context, kind ident.Kind, count int) ([]string, error) {
	prefix, ok := ident.Prefix(kind)
	if !ok {
		return nil, apperrors.Validation("no identifier prefix configured for kind %q", kind)
	}
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		a.n++
		ids = append(ids, fmt.Sprintf("%s-%d", prefix, a.n))
	}
	return ids, nil
}

func (a *stubAllocator) AllocateOne(ctx context.Context, kind ident.Kind) (string, error) {
	ids, err := a.Allocate(ctx, kind, 1)
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

func newResolver(repo ports.LocationRepository) ports.LocationResolver {
	return NewResolver(logger.New("test"), passthroughUOW{}, repo, &stubAllocator{})
}

func TestResolveByIDNotFound(t *testing.T) {
	resolver := newResolver(newMemLocationRepo())

	_, err := resolver.Resolve(context.Background(), ports.LocationRef{ID: "LOC-404"})
	if !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("got %v, want not-found error", err)
	}
}

func TestResolveCreatesCustomOnce(t *testing.T) {
	repo := newMemLocationRepo()
	resolver := newResolver(repo)

	ref := ports.LocationRef{Name: "Warehouse 4", Address: "12 Dock Rd", Latitude: 51.5001, Longitude: -0.12}

	first, err := resolver.Resolve(context.Background(), ref)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if first.Kind != location.KindCustom {
		t.Fatalf("kind = %s, want CUSTOM", first.Kind)
	}

	// same coordinates, different name: must dedup to the same row
	ref.Name = "Warehouse four"
	second, err := resolver.Resolve(context.Background(), ref)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("second resolve created %s, want reuse of %s", second.ID, first.ID)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("repo holds %d locations, want 1", len(repo.byID))
	}
}

func TestResolveRejectsOutOfRangeCoordinates(t *testing.T) {
	resolver := newResolver(newMemLocationRepo())

	bad := []ports.LocationRef{
		{Name: "a", Latitude: 91, Longitude: 0},
		{Name: "b", Latitude: 0, Longitude: -181},
	}
	for _, ref := range bad {
		if _, err := resolver.Resolve(context.Background(), ref); !apperrors.IsKind(err, apperrors.KindValidation) {
			t.Fatalf("ref %+v: got %v, want validation error", ref, err)
		}
	}
}
