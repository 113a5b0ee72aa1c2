// Package provider implements the classification backends.
//
// This package contains:
//   - Backend interface: one remote text-classification service
//   - BaseBackend: the shared model/credential/rate-limit attempt loop
//   - GroqBackend, GeminiBackend, OpenRouterBackend: wire formats per service
//   - ProviderMonitor: latency and throttle tracking per backend
//   - ClassifyError: maps call failures to evict / next-model / abort
package provider

import (
	"context"
	"time"

	"github.com/vietddude/ecoscout/internal/core/domain"
	"github.com/vietddude/ecoscout/internal/infra/llm/credential"
)

// Backend is one classification service with its own models, credential
// pool and rate limit.
type Backend interface {
	// ID returns the backend identifier (e.g., "groq", "gemini")
	ID() domain.BackendID

	// Classify tries each configured model in order and returns the first
	// validated classification. It returns ErrExhausted when every model failed.
	Classify(ctx context.Context, req domain.ClassificationRequest) (domain.Classification, error)

	// Status returns pool and monitor state for dashboards
	Status() Status
}

// Waiter blocks until a backend may be called again.
type Waiter interface {
	Wait(ctx context.Context, backend domain.BackendID) error
}

// Options configures a backend.
type Options struct {
	Models  []string
	BaseURL string
	Timeout time.Duration
	Pool    *credential.Pool
	Limiter Waiter
}

// Status is a point-in-time view of a backend.
type Status struct {
	Backend     domain.BackendID
	Models      []string
	Credentials int
	Monitor     MonitorStats
}
