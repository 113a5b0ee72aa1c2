package routing

import (
	"sync"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

// Slot is one entry of the rotation cycle: Backend is primary for Weight
// consecutive successful calls.
type Slot struct {
	Backend domain.BackendID
	Weight  int
}

// DefaultSlots is the cycle used when no rotation is configured.
var DefaultSlots = []Slot{
	{Backend: domain.BackendGroq, Weight: 10},
	{Backend: domain.BackendGemini, Weight: 10},
	{Backend: domain.BackendOpenRouter, Weight: 2},
}

// Scheduler holds the shared rotation state. The primary only moves when
// Advance is called, so failed requests do not consume rotation budget.
type Scheduler struct {
	mu      sync.Mutex
	slots   []Slot
	index   int
	counter int
}

// NewScheduler creates a scheduler over slots. Slots with a non-positive
// weight are never primary.
func NewScheduler(slots []Slot) *Scheduler {
	s := &Scheduler{}
	for _, slot := range slots {
		if slot.Weight > 0 {
			s.slots = append(s.slots, slot)
		}
	}
	return s
}

// Primary returns the backend that should be tried first for the next
// request. It does not change the rotation state.
func (s *Scheduler) Primary() (domain.BackendID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.slots) == 0 {
		return "", false
	}
	return s.slots[s.index].Backend, true
}

// Advance counts one successful call by primary. Calls for a backend that
// is no longer current are ignored; another request already moved the
// rotation on.
func (s *Scheduler) Advance(primary domain.BackendID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.slots) == 0 || s.slots[s.index].Backend != primary {
		return
	}

	s.counter++
	if s.counter >= s.slots[s.index].Weight {
		s.counter = 0
		s.index = (s.index + 1) % len(s.slots)
	}
}

// Position reports the current backend and how many successful calls it
// has served in this turn.
func (s *Scheduler) Position() (domain.BackendID, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.slots) == 0 {
		return "", 0
	}
	return s.slots[s.index].Backend, s.counter
}

// Slots returns a copy of the active cycle.
func (s *Scheduler) Slots() []Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Slot(nil), s.slots...)
}
