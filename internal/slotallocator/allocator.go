// Package slotallocator stitches fixed-size availability slots into the contiguous
// run a meeting of a requested length needs.
//
// All functions are pure: they work on a snapshot and never mutate it. The snapshot
// may be stale by the time a booking is committed, so the store re-validates the
// chosen run under lock before reserving it.
package slotallocator

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
)

// Allocation is the contiguous run of slots reserved for one booking
type Allocation struct {
	Start        domain.Slot
	Slots        []domain.Slot // Start first, ascending start time
	TotalMinutes int
	EndAt        time.Time
}

// SlotIDs returns the ids of the covered slots in order
func (a *Allocation) SlotIDs() []uuid.UUID {
	return slotIDs(a.Slots)
}

// CanStart reports whether a booking of requestedMinutes can start at slot.
//
// A single slot suffices when requestedMinutes <= slot.DurationMinutes. Otherwise the
// bookable slots of allSlots are walked in start order from slot; the walk stops at the
// first gap or at the first slot that is not bookable.
func CanStart(slot domain.Slot, requestedMinutes int, allSlots []domain.Slot) bool {
	_, ok := chainFrom(slot, requestedMinutes, bookablePool(allSlots))
	return ok
}

// ResolveCoveredSlots returns the minimal contiguous run starting at startSlot whose
// summed duration reaches requestedMinutes, startSlot first.
// It fails with ErrInvalidStartSlot instead of returning a run that undershoots.
func ResolveCoveredSlots(startSlot domain.Slot, requestedMinutes int, allSlots []domain.Slot) ([]uuid.UUID, error) {
	alloc, err := Plan(startSlot, requestedMinutes, allSlots)
	if err != nil {
		return nil, err
	}
	return alloc.SlotIDs(), nil
}

// Plan is ResolveCoveredSlots returning the full allocation
func Plan(startSlot domain.Slot, requestedMinutes int, allSlots []domain.Slot) (*Allocation, error) {
	if requestedMinutes <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDuration, requestedMinutes)
	}

	chain, ok := chainFrom(startSlot, requestedMinutes, bookablePool(allSlots))
	if !ok {
		return nil, fmt.Errorf("%w: slot=%s, requested=%dmin", ErrInvalidStartSlot, startSlot.ID, requestedMinutes)
	}

	return newAllocation(chain), nil
}

// FeasibleStarts returns every bookable slot that can start a booking of
// requestedMinutes, in start order. An empty result means no slot fits the duration.
func FeasibleStarts(requestedMinutes int, allSlots []domain.Slot) []domain.Slot {
	plans := PlanAll(requestedMinutes, allSlots)
	starts := make([]domain.Slot, len(plans))
	for i := range plans {
		starts[i] = plans[i].Start
	}
	return starts
}

// PlanAll returns the allocation for every feasible start, in start order
func PlanAll(requestedMinutes int, allSlots []domain.Slot) []Allocation {
	result := make([]Allocation, 0)
	if requestedMinutes <= 0 {
		return result
	}

	pool := bookablePool(allSlots)
	for i := range pool {
		if chain, ok := walk(pool, i, requestedMinutes); ok {
			result = append(result, *newAllocation(chain))
		}
	}
	return result
}

// VerifyChain checks that coveredIDs is, against allSlots, a minimal contiguous run of
// bookable slots in ascending start order whose durations reach requestedMinutes.
func VerifyChain(coveredIDs []uuid.UUID, requestedMinutes int, allSlots []domain.Slot) error {
	if requestedMinutes <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, requestedMinutes)
	}
	if len(coveredIDs) == 0 {
		return fmt.Errorf("%w: empty", ErrBrokenChain)
	}

	byID := make(map[uuid.UUID]domain.Slot, len(allSlots))
	for _, s := range allSlots {
		byID[s.ID] = s
	}

	accumulated := 0
	var expected time.Time
	for i, id := range coveredIDs {
		slot, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: slot %s is missing", ErrBrokenChain, id)
		}
		if !slot.IsBookable() {
			return fmt.Errorf("%w: slot %s is not bookable", ErrBrokenChain, id)
		}
		if i > 0 && !slot.StartAt.Equal(expected) {
			return fmt.Errorf("%w: slot %s does not start at %s", ErrBrokenChain, id, expected.Format(time.RFC3339))
		}
		if accumulated >= requestedMinutes {
			return fmt.Errorf("%w: slot %s is not needed", ErrBrokenChain, id)
		}
		accumulated += slot.DurationMinutes
		expected = slot.EndAt()
	}

	if accumulated < requestedMinutes {
		return fmt.Errorf("%w: %d of %d minutes covered", ErrBrokenChain, accumulated, requestedMinutes)
	}
	return nil
}

// chainFrom walks pool from start and reports whether the target was reached
func chainFrom(start domain.Slot, requestedMinutes int, pool []domain.Slot) ([]domain.Slot, bool) {
	if requestedMinutes <= 0 || !start.IsBookable() {
		return nil, false
	}
	if requestedMinutes <= start.DurationMinutes {
		return []domain.Slot{start}, true
	}

	for i := range pool {
		if pool[i].ID == start.ID {
			// Берем стартовый слот из аргумента, а не из пула: вызывающий мог передать
			// более свежую копию, чем снимок
			pool[i] = start
			return walk(pool, i, requestedMinutes)
		}
	}

	// Стартового слота нет среди свободных: продлить его нечем
	return nil, false
}

// walk accumulates pool[from:] while start times abut exactly
func walk(pool []domain.Slot, from int, requestedMinutes int) ([]domain.Slot, bool) {
	chain := []domain.Slot{pool[from]}
	accumulated := pool[from].DurationMinutes
	expected := pool[from].EndAt()

	for i := from + 1; accumulated < requestedMinutes && i < len(pool); i++ {
		next := pool[i]
		if !next.StartAt.Equal(expected) {
			break
		}
		chain = append(chain, next)
		accumulated += next.DurationMinutes
		expected = next.EndAt()
	}

	return chain, accumulated >= requestedMinutes
}

// bookablePool returns a sorted copy of the bookable slots; ties on start break by id
func bookablePool(allSlots []domain.Slot) []domain.Slot {
	pool := make([]domain.Slot, 0, len(allSlots))
	for _, s := range allSlots {
		if s.IsBookable() {
			pool = append(pool, s)
		}
	}

	sort.Slice(pool, func(i, j int) bool {
		if !pool[i].StartAt.Equal(pool[j].StartAt) {
			return pool[i].StartAt.Before(pool[j].StartAt)
		}
		return pool[i].ID.String() < pool[j].ID.String()
	})

	return pool
}

func newAllocation(chain []domain.Slot) *Allocation {
	total := 0
	for _, s := range chain {
		total += s.DurationMinutes
	}
	return &Allocation{
		Start:        chain[0],
		Slots:        chain,
		TotalMinutes: total,
		EndAt:        chain[len(chain)-1].EndAt(),
	}
}

func slotIDs(slots []domain.Slot) []uuid.UUID {
	ids := make([]uuid.UUID, len(slots))
	for i, s := range slots {
		ids[i] = s.ID
	}
	return ids
}
