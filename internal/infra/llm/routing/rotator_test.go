package routing

import (
	"sync"
	"testing"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

func TestScheduler_CycleRepeats(t *testing.T) {
	s := NewScheduler(DefaultSlots)

	var sequence []domain.BackendID
	for i := 0; i < 44; i++ {
		p, ok := s.Primary()
		if !ok {
			t.Fatal("expected a primary")
		}
		sequence = append(sequence, p)
		s.Advance(p)
	}

	for i := 0; i < 10; i++ {
		if sequence[i] != domain.BackendGroq {
			t.Fatalf("call %d: expected groq, got %s", i+1, sequence[i])
		}
	}
	for i := 10; i < 20; i++ {
		if sequence[i] != domain.BackendGemini {
			t.Fatalf("call %d: expected gemini, got %s", i+1, sequence[i])
		}
	}
	for i := 20; i < 22; i++ {
		if sequence[i] != domain.BackendOpenRouter {
			t.Fatalf("call %d: expected openrouter, got %s", i+1, sequence[i])
		}
	}

	// The cycle has length 22, so call 23 matches call 1.
	if sequence[22] != sequence[0] {
		t.Errorf("call 23 on %s, call 1 on %s", sequence[22], sequence[0])
	}
	for i := 0; i < 22; i++ {
		if sequence[i] != sequence[i+22] {
			t.Errorf("cycle mismatch at %d: %s vs %s", i+1, sequence[i], sequence[i+22])
		}
	}
}

func TestScheduler_PrimaryDoesNotAdvance(t *testing.T) {
	s := NewScheduler(DefaultSlots)
	for i := 0; i < 50; i++ {
		if p, _ := s.Primary(); p != domain.BackendGroq {
			t.Fatalf("primary moved without Advance: %s", p)
		}
	}
}

func TestScheduler_AdvanceIgnoresStaleBackend(t *testing.T) {
	s := NewScheduler([]Slot{
		{Backend: domain.BackendGroq, Weight: 1},
		{Backend: domain.BackendGemini, Weight: 3},
	})

	s.Advance(domain.BackendGroq)
	s.Advance(domain.BackendGroq) // stale, gemini is current

	b, n := s.Position()
	if b != domain.BackendGemini || n != 0 {
		t.Errorf("expected gemini at 0, got %s at %d", b, n)
	}
}

func TestScheduler_SkipsZeroWeight(t *testing.T) {
	s := NewScheduler([]Slot{
		{Backend: domain.BackendGroq, Weight: 1},
		{Backend: domain.BackendGemini, Weight: 0},
		{Backend: domain.BackendOpenRouter, Weight: 1},
	})

	for _, want := range []domain.BackendID{domain.BackendGroq, domain.BackendOpenRouter, domain.BackendGroq} {
		p, _ := s.Primary()
		if p != want {
			t.Fatalf("expected %s, got %s", want, p)
		}
		s.Advance(p)
	}
}

func TestScheduler_Empty(t *testing.T) {
	s := NewScheduler(nil)
	if _, ok := s.Primary(); ok {
		t.Error("expected no primary")
	}
	s.Advance(domain.BackendGroq)
}

func TestScheduler_CounterNeverExceedsWeight(t *testing.T) {
	s := NewScheduler(DefaultSlots)
	weights := map[domain.BackendID]int{}
	for _, slot := range DefaultSlots {
		weights[slot.Backend] = slot.Weight
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				p, _ := s.Primary()
				s.Advance(p)
				b, n := s.Position()
				if n >= weights[b] {
					t.Errorf("counter %d reached weight of %s", n, b)
					return
				}
			}
		}()
	}
	wg.Wait()
}
