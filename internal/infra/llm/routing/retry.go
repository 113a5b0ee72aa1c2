package routing

import (
	"context"
	"errors"
	"fmt"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

// ErrNoAttempts is returned by FirstSuccess when there is nothing to try.
var ErrNoAttempts = errors.New("no attempts")

// AttemptOrder returns primary followed by the rest of order, without
// duplicates. A primary that is not in order is still tried first.
func AttemptOrder(primary domain.BackendID, order []domain.BackendID) []domain.BackendID {
	seen := make(map[domain.BackendID]bool, len(order)+1)
	out := make([]domain.BackendID, 0, len(order)+1)

	if primary != "" {
		out = append(out, primary)
		seen[primary] = true
	}
	for _, id := range order {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Attempt is a single try at producing a value.
type Attempt[T any] func(ctx context.Context) (T, error)

// FirstSuccess runs attempts in order and returns the first value produced
// without error, along with its index. Remaining attempts are not run. If the
// context is done before an attempt starts, the context error is returned.
// When every attempt fails the errors are joined.
func FirstSuccess[T any](ctx context.Context, attempts []Attempt[T]) (T, int, error) {
	var zero T
	if len(attempts) == 0 {
		return zero, -1, ErrNoAttempts
	}

	var errs []error
	for i, attempt := range attempts {
		if err := ctx.Err(); err != nil {
			return zero, -1, errors.Join(append(errs, err)...)
		}

		v, err := attempt(ctx)
		if err == nil {
			return v, i, nil
		}
		errs = append(errs, fmt.Errorf("attempt %d: %w", i, err))
	}
	return zero, -1, errors.Join(errs...)
}
