// Package health provides system health monitoring and status reporting.
package health

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// BackendHealth contains health metrics for one classification backend.
type BackendHealth struct {
	Backend         string       `json:"backend"`
	Status          SystemStatus `json:"status"`
	ProviderStatus  string       `json:"provider_status"`
	Credentials     int          `json:"credentials"`
	Models          []string     `json:"models"`
	SuccessCount    int          `json:"success_count"`
	FailureCount    int          `json:"failure_count"`
	EvictionCount   int          `json:"eviction_count"`
	AverageLatency  string       `json:"average_latency"`
	RequestsLastMin int          `json:"requests_last_min"`
}

// HealthReport contains the full system health report.
type HealthReport struct {
	SystemStatus SystemStatus             `json:"system_status"`
	Backends     map[string]BackendHealth `json:"backends"`
	Database     SystemStatus             `json:"database"`
	Rotation     RotationState            `json:"rotation"`
}

// RotationState is the current position of the primary rotation.
type RotationState struct {
	Primary string `json:"primary"`
	Served  int    `json:"served"`
}
