package health

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/ecoscout/internal/core/domain"
	"github.com/vietddude/ecoscout/internal/infra/llm/provider"
)

// BackendSource lists the configured backends.
type BackendSource interface {
	Backends() []provider.Backend
}

// RotationSource reports the rotation position.
type RotationSource interface {
	Position() (domain.BackendID, int)
}

// Pinger checks a dependency such as the database.
type Pinger interface {
	Health(ctx context.Context) error
}

// Monitor aggregates health status from the backends and storage.
type Monitor struct {
	backends   BackendSource
	rotation   RotationSource
	db         Pinger // optional
	cacheTTL   time.Duration
	lastCheck  time.Time
	lastReport HealthReport
	mu         sync.Mutex
}

// NewMonitor creates a new health monitor. db may be nil.
func NewMonitor(backends BackendSource, rotation RotationSource, db Pinger) *Monitor {
	return &Monitor{
		backends: backends,
		rotation: rotation,
		db:       db,
		cacheTTL: 5 * time.Second,
	}
}

// CheckHealth builds a report. Results are reused for a few seconds.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.lastCheck.IsZero() && time.Since(m.lastCheck) < m.cacheTTL {
		return m.lastReport
	}

	report := HealthReport{
		SystemStatus: StatusHealthy,
		Backends:     make(map[string]BackendHealth),
		Database:     StatusHealthy,
	}

	usable := 0
	for _, b := range m.backends.Backends() {
		st := b.Status()
		h := BackendHealth{
			Backend:         string(st.Backend),
			Status:          backendStatus(st.Monitor.Status),
			ProviderStatus:  st.Monitor.Status.String(),
			Credentials:     st.Credentials,
			Models:          st.Models,
			SuccessCount:    st.Monitor.SuccessCount,
			FailureCount:    st.Monitor.FailureCount,
			EvictionCount:   st.Monitor.EvictionCount,
			AverageLatency:  st.Monitor.AverageLatency.String(),
			RequestsLastMin: st.Monitor.RequestsLastMin,
		}
		report.Backends[h.Backend] = h

		if h.Status != StatusCritical {
			usable++
		}
		if h.Status != StatusHealthy {
			report.SystemStatus = StatusDegraded
		}
	}
	// Every result would be degraded
	if usable == 0 {
		report.SystemStatus = StatusCritical
	}

	if m.db != nil {
		if err := m.db.Health(ctx); err != nil {
			report.Database = StatusCritical
			report.SystemStatus = StatusCritical
		}
	}

	if m.rotation != nil {
		primary, served := m.rotation.Position()
		report.Rotation = RotationState{Primary: string(primary), Served: served}
	}

	m.lastCheck = time.Now()
	m.lastReport = report
	return report
}

func backendStatus(s provider.ProviderStatus) SystemStatus {
	switch s {
	case provider.StatusHealthy:
		return StatusHealthy
	case provider.StatusExhausted:
		return StatusCritical
	default:
		return StatusDegraded
	}
}
