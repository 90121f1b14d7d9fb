package availability

import (
	"context"
	"slices"
	"sync"
	"time"

	"voltride-backend/internal/domain"
)

// ReservationSource yields the reservations that constrain a unit: those in
// CONFIRMED or CHECKED_IN. Cancelled and completed rows must not be returned.
type ReservationSource interface {
	ListActiveByUnit(ctx context.Context, unitID int32) ([]domain.Reservation, error)
}

// Index answers "is unit U free for [start, end)?" and serializes every
// check-then-commit against a per-unit lock. All confirm/move traffic must
// go through Reserve; callers that check IsFree and then write on their own
// re-open the double-booking race this type exists to close.
type Index struct {
	source ReservationSource

	mu    sync.Mutex
	locks map[int32]*sync.Mutex
}

func NewIndex(source ReservationSource) *Index {
	return &Index{
		source: source,
		locks:  make(map[int32]*sync.Mutex),
	}
}

// Overlaps is the interval conflict test. Bounds are treated as closed on
// both ends, so a booking starting exactly when another ends still
// conflicts. Deliberate: the gap is the handover buffer.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// Conflicts returns the constraining reservations that collide with the
// given interval on a unit, skipping excludeRef (the caller's own
// reservation when moving or resizing).
func (ix *Index) Conflicts(ctx context.Context, unitID int32, start, end time.Time, excludeRef string) ([]domain.Reservation, error) {
	active, err := ix.source.ListActiveByUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	var out []domain.Reservation
	for _, r := range active {
		if excludeRef != "" && r.Reference == excludeRef {
			continue
		}
		if !r.ConstrainsAvailability() {
			continue
		}
		if Overlaps(start, end, r.Start, r.End) {
			out = append(out, r)
		}
	}
	return out, nil
}

// IsFree reports whether the unit has no constraining reservation over the
// interval. Read-only; a true answer is only trustworthy inside Reserve.
func (ix *Index) IsFree(ctx context.Context, unitID int32, start, end time.Time, excludeRef string) (bool, error) {
	conflicts, err := ix.Conflicts(ctx, unitID, start, end, excludeRef)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

// Reserve checks every unit for the interval and, only if all are free,
// runs commit — all under the units' locks, so no second caller can
// interleave its own check between our check and our write. On conflict it
// returns a ConflictError naming the colliding reservation and commit never
// runs. Locks are taken in unit-ID order; duplicate IDs are collapsed so a
// unit's lock is never taken twice.
func (ix *Index) Reserve(ctx context.Context, unitIDs []int32, start, end time.Time, excludeRef string, commit func(ctx context.Context) error) error {
	ids := make([]int32, len(unitIDs))
	copy(ids, unitIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	for _, id := range ids {
		l := ix.lockFor(id)
		l.Lock()
		defer l.Unlock()
	}

	for _, id := range ids {
		conflicts, err := ix.Conflicts(ctx, id, start, end, excludeRef)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &domain.ConflictError{UnitID: id, ConflictingRef: conflicts[0].Reference}
		}
	}

	return commit(ctx)
}

func (ix *Index) lockFor(unitID int32) *sync.Mutex {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	l, ok := ix.locks[unitID]
	if !ok {
		l = &sync.Mutex{}
		ix.locks[unitID] = l
	}
	return l
}
