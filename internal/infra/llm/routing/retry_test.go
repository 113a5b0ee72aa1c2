package routing

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

func TestAttemptOrder(t *testing.T) {
	order := []domain.BackendID{domain.BackendGroq, domain.BackendGemini, domain.BackendOpenRouter}

	tests := []struct {
		name    string
		primary domain.BackendID
		want    []domain.BackendID
	}{
		{"primary first in order", domain.BackendGroq, order},
		{"primary in middle", domain.BackendGemini, []domain.BackendID{domain.BackendGemini, domain.BackendGroq, domain.BackendOpenRouter}},
		{"primary last", domain.BackendOpenRouter, []domain.BackendID{domain.BackendOpenRouter, domain.BackendGroq, domain.BackendGemini}},
		{"no primary", "", order},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AttemptOrder(tt.primary, order)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AttemptOrder(%s) = %v, want %v", tt.primary, got, tt.want)
			}
		})
	}
}

func TestFirstSuccess_ShortCircuits(t *testing.T) {
	var ran []int
	attempt := func(i int, err error) Attempt[string] {
		return func(context.Context) (string, error) {
			ran = append(ran, i)
			if err != nil {
				return "", err
			}
			return "ok", nil
		}
	}

	v, idx, err := FirstSuccess(context.Background(), []Attempt[string]{
		attempt(0, errors.New("boom")),
		attempt(1, nil),
		attempt(2, nil),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "ok" || idx != 1 {
		t.Errorf("got %q at %d", v, idx)
	}
	if !reflect.DeepEqual(ran, []int{0, 1}) {
		t.Errorf("unexpected attempts run: %v", ran)
	}
}

func TestFirstSuccess_AllFail(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")

	_, idx, err := FirstSuccess(context.Background(), []Attempt[int]{
		func(context.Context) (int, error) { return 0, errA },
		func(context.Context) (int, error) { return 0, errB },
	})
	if idx != -1 {
		t.Errorf("expected index -1, got %d", idx)
	}
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("expected joined errors, got %v", err)
	}
}

func TestFirstSuccess_Empty(t *testing.T) {
	if _, _, err := FirstSuccess[int](context.Background(), nil); !errors.Is(err, ErrNoAttempts) {
		t.Errorf("expected ErrNoAttempts, got %v", err)
	}
}

func TestFirstSuccess_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, _, err := FirstSuccess(ctx, []Attempt[int]{
		func(context.Context) (int, error) {
			calls++
			cancel()
			return 0, errors.New("failed")
		},
		func(context.Context) (int, error) {
			calls++
			return 1, nil
		},
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
