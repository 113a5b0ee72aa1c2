// Package ratelimit enforces a minimum delay between calls to each backend.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

// DelayForRPM converts a requests-per-minute limit into the minimum delay
// between two calls, rounded up to whole seconds (30 rpm -> 2s, 20 -> 3s, 3 -> 20s).
func DelayForRPM(rpm int) time.Duration {
	if rpm <= 0 {
		return 0
	}
	secs := math.Ceil(60.0 / float64(rpm))
	return time.Duration(secs) * time.Second
}

// Limiter holds one single-token bucket per backend. A bucket refills once
// per configured delay, so Wait suspends the caller until the delay since the
// previous call to the same backend has elapsed.
type Limiter struct {
	mu       sync.RWMutex
	limiters map[domain.BackendID]*rate.Limiter
	delays   map[domain.BackendID]time.Duration
}

// New creates a limiter with the given per-backend delays.
// A zero delay disables limiting for that backend.
func New(delays map[domain.BackendID]time.Duration) *Limiter {
	l := &Limiter{
		limiters: make(map[domain.BackendID]*rate.Limiter, len(delays)),
		delays:   make(map[domain.BackendID]time.Duration, len(delays)),
	}
	for id, d := range delays {
		l.set(id, d)
	}
	return l
}

func (l *Limiter) set(id domain.BackendID, delay time.Duration) {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	l.limiters[id] = rate.NewLimiter(limit, 1)
	l.delays[id] = delay
}

// Wait blocks until backend may be called again and records the call.
// If ctx is done first it returns ctx.Err() and gives the slot back; a
// deadline that ends before the slot opens also ends in ctx.Err().
func (l *Limiter) Wait(ctx context.Context, backend domain.BackendID) error {
	l.mu.RLock()
	lim, ok := l.limiters[backend]
	l.mu.RUnlock()

	if !ok {
		return fmt.Errorf("no rate limit configured for backend %s", backend)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r := lim.Reserve()
	delay := r.Delay()
	if delay == 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// Delay returns the configured minimum delay for backend.
func (l *Limiter) Delay(backend domain.BackendID) time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.delays[backend]
}
