package service

import (
	"context"
	"sync"
	"testing"

	"fleetdesk/internal/apperrors"
	"fleetdesk/internal/domain/ident"
	"fleetdesk/internal/general/logger"
)

// passthroughUOW runs fn directly; repositories under test manage their own
// locking.
type passthroughUOW struct{}

func (passthroughUOW) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// lockingCounterRepo mimics the row-lock behavior of the real counter
// table: LockCurrent blocks until the previous holder wrote back.
type lockingCounterRepo struct {
	mu       sync.Mutex
	ensured  map[ident.Kind]bool
	counters map[ident.Kind]int64
}

func newLockingCounterRepo() *lockingCounterRepo {
	return &lockingCounterRepo{
		ensured:  make(map[ident.Kind]bool),
		counters: make(map[ident.Kind]int64),
	}
}

func (r *lockingCounterRepo) EnsureCounter(_ context.Context, kind ident.Kind, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensured[kind] = true
	return nil
}

func (r *lockingCounterRepo) LockCurrent(_ context.Context, kind ident.Kind) (int64, error) {
	r.mu.Lock() // held until SetCurrent, like FOR UPDATE
	return r.counters[kind], nil
}

func (r *lockingCounterRepo) SetCurrent(_ context.Context, kind ident.Kind, value int64) error {
	r.counters[kind] = value
	r.mu.Unlock()
	return nil
}

func TestAllocateSequential(t *testing.T) {
	repo := newLockingCounterRepo()
	alloc := NewAllocator(logger.New("test"), passthroughUOW{}, repo)

	ids, err := alloc.Allocate(context.Background(), ident.KindTrip, 3)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	want := []string{"TR-1", "TR-2", "TR-3"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}

	next, err := alloc.AllocateOne(context.Background(), ident.KindTrip)
	if err != nil {
		t.Fatalf("AllocateOne: %v", err)
	}
	if next != "TR-4" {
		t.Fatalf("next id = %q, want TR-4", next)
	}
}

func TestAllocateValidatesInput(t *testing.T) {
	alloc := NewAllocator(logger.New("test"), passthroughUOW{}, newLockingCounterRepo())

	if _, err := alloc.Allocate(context.Background(), ident.KindTrip, 0); !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("count 0: got %v, want validation error", err)
	}
	if _, err := alloc.AllocateOne(context.Background(), ident.Kind("mystery")); !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("unknown kind: got %v, want validation error", err)
	}
}

func TestAllocateConcurrentUnique(t *testing.T) {
	repo := newLockingCounterRepo()
	alloc := NewAllocator(logger.New("test"), passthroughUOW{}, repo)

	const workers = 100
	results := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := alloc.AllocateOne(context.Background(), ident.KindBookingRequest)
			if err != nil {
				t.Errorf("AllocateOne: %v", err)
				return
			}
			results <- id
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool, workers)
	for id := range results {
		if seen[id] {
			t.Fatalf("duplicate id allocated: %s", id)
		}
		seen[id] = true
	}
	if len(seen) != workers {
		t.Fatalf("allocated %d unique ids, want %d", len(seen), workers)
	}
}
