package provider

import (
	"sync"
	"time"
)

// ProviderStatus represents the health state of a backend.
type ProviderStatus int

const (
	StatusHealthy   ProviderStatus = iota // Backend is working normally
	StatusDegraded                        // Backend is slow or failing often
	StatusThrottled                       // Backend is rate limiting
	StatusExhausted                       // Backend has no usable credentials
)

func (s ProviderStatus) String() string {
	switch s {
	case StatusDegraded:
		return "degraded"
	case StatusThrottled:
		return "throttled"
	case StatusExhausted:
		return "exhausted"
	default:
		return "healthy"
	}
}

// MonitorStats holds monitoring statistics for a backend.
type MonitorStats struct {
	Status          ProviderStatus
	AverageLatency  time.Duration
	SuccessCount    int
	FailureCount    int
	QuotaCount      int
	EvictionCount   int
	LastSuccessAt   time.Time
	LastThrottleAt  time.Time
	RequestsLastMin int
}

// ProviderMonitor tracks backend health and throttling.
type ProviderMonitor struct {
	mu sync.RWMutex

	recentLatencies  []time.Duration
	maxLatencyWindow int

	successCount   int
	failureCount   int
	quotaCount     int
	evictionCount  int
	lastSuccessAt  time.Time
	lastThrottleAt time.Time

	requestTimestamps []time.Time

	slowResponseThreshold time.Duration
	degradedThreshold     float64
	throttleWindow        time.Duration
}

// NewProviderMonitor creates a new monitor with default settings.
func NewProviderMonitor() *ProviderMonitor {
	return &ProviderMonitor{
		recentLatencies:       make([]time.Duration, 0, 50),
		maxLatencyWindow:      50,
		slowResponseThreshold: 15 * time.Second,
		degradedThreshold:     0.5,
		throttleWindow:        time.Minute,
	}
}

// RecordSuccess records a call that produced a usable response.
func (pm *ProviderMonitor) RecordSuccess(latency time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.successCount++
	pm.lastSuccessAt = time.Now()
	pm.trackLatency(latency)
	pm.trackRequest()
}

// RecordFailure records a transport, server or parse failure.
func (pm *ProviderMonitor) RecordFailure(latency time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.failureCount++
	pm.trackLatency(latency)
	pm.trackRequest()
}

// RecordThrottle records a quota or auth rejection and the resulting eviction.
func (pm *ProviderMonitor) RecordThrottle(evicted bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.quotaCount++
	pm.lastThrottleAt = time.Now()
	if evicted {
		pm.evictionCount++
	}
	pm.trackRequest()
}

func (pm *ProviderMonitor) trackLatency(latency time.Duration) {
	pm.recentLatencies = append(pm.recentLatencies, latency)
	if len(pm.recentLatencies) > pm.maxLatencyWindow {
		pm.recentLatencies = pm.recentLatencies[1:]
	}
}

func (pm *ProviderMonitor) trackRequest() {
	now := time.Now()
	pm.requestTimestamps = append(pm.requestTimestamps, now)

	cutoff := now.Add(-time.Minute)
	filtered := pm.requestTimestamps[:0]
	for _, t := range pm.requestTimestamps {
		if t.After(cutoff) {
			filtered = append(filtered, t)
		}
	}
	pm.requestTimestamps = filtered
}

// CheckStatus returns the current status given the number of usable credentials.
func (pm *ProviderMonitor) CheckStatus(credentials int) ProviderStatus {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.statusLocked(credentials)
}

func (pm *ProviderMonitor) statusLocked(credentials int) ProviderStatus {
	if credentials == 0 {
		return StatusExhausted
	}

	if !pm.lastThrottleAt.IsZero() && time.Since(pm.lastThrottleAt) < pm.throttleWindow {
		return StatusThrottled
	}

	total := pm.successCount + pm.failureCount
	if total >= 5 && float64(pm.failureCount)/float64(total) > pm.degradedThreshold {
		return StatusDegraded
	}

	if avg := pm.averageLatencyLocked(); avg > pm.slowResponseThreshold {
		return StatusDegraded
	}

	return StatusHealthy
}

func (pm *ProviderMonitor) averageLatencyLocked() time.Duration {
	if len(pm.recentLatencies) == 0 {
		return 0
	}

	var total time.Duration
	for _, lat := range pm.recentLatencies {
		total += lat
	}
	return total / time.Duration(len(pm.recentLatencies))
}

// GetStats returns current monitoring statistics.
func (pm *ProviderMonitor) GetStats(credentials int) MonitorStats {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	cutoff := time.Now().Add(-time.Minute)
	recent := 0
	for _, t := range pm.requestTimestamps {
		if t.After(cutoff) {
			recent++
		}
	}

	return MonitorStats{
		Status:          pm.statusLocked(credentials),
		AverageLatency:  pm.averageLatencyLocked(),
		SuccessCount:    pm.successCount,
		FailureCount:    pm.failureCount,
		QuotaCount:      pm.quotaCount,
		EvictionCount:   pm.evictionCount,
		LastSuccessAt:   pm.lastSuccessAt,
		LastThrottleAt:  pm.lastThrottleAt,
		RequestsLastMin: recent,
	}
}
