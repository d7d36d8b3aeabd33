package model

import "time"

type (
	HealthStatus string

	DependencyStatus string

	DependencyCheck struct {
		Status    DependencyStatus `json:"status"`
		LatencyMs uint64           `json:"latency_ms"`
		Error     string           `json:"error,omitempty"`
	}

	HealthReport struct {
		Status    HealthStatus               `json:"status"`
		Timestamp time.Time                  `json:"timestamp"`
		Version   string                     `json:"version"`
		Nodes     []string                   `json:"nodes"`
		Checks    map[string]DependencyCheck `json:"checks"`
	}
)

const (
	HealthStatusOK       HealthStatus = "ok"
	HealthStatusDegraded HealthStatus = "degraded"

	DependencyStatusUp   DependencyStatus = "up"
	DependencyStatusDown DependencyStatus = "down"
)
