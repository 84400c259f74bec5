package types

// HealthStatus is the coarse state of a probed dependency.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "UP"
	HealthStatusDown     HealthStatus = "DOWN"
	HealthStatusDegraded HealthStatus = "DEGRADED"
)

type HealthComponent struct {
	Status  HealthStatus `json:"status" yaml:"status"`
	Details string       `json:"details,omitempty" yaml:"details,omitempty"`
}

// HealthCheck is the result of probing the feedback API. Status is the worst
// status among Components.
type HealthCheck struct {
	Status     HealthStatus               `json:"status" yaml:"status"`
	Components map[string]HealthComponent `json:"components" yaml:"components"`
	Version    string                     `json:"version" yaml:"version"`
	Timestamp  string                     `json:"timestamp" yaml:"timestamp"`
	Uptime     string                     `json:"uptime" yaml:"uptime"`
}
