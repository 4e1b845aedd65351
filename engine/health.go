package engine

import "time"

// Performance carries optional throughput figures inside a health snapshot.
type Performance struct {
	AverageGenerationTime time.Duration
	SuccessRate           float64 // 0..1 fraction of successful generations
	MemoryBytes           int64
}

// HealthStatus is a per-engine snapshot produced exclusively by
// Engine.HealthCheck. The Manager caches the latest snapshot per engine name
// and never computes health itself.
type HealthStatus struct {
	Healthy     bool
	Errors      []string // ordered diagnostic messages
	Performance *Performance
	LastCheck   time.Time
}

// Clone returns a deep copy so callers never hold live registry references.
func (h *HealthStatus) Clone() HealthStatus {
	out := HealthStatus{
		Healthy:   h.Healthy,
		LastCheck: h.LastCheck,
	}
	if len(h.Errors) > 0 {
		out.Errors = append([]string(nil), h.Errors...)
	}
	if h.Performance != nil {
		p := *h.Performance
		out.Performance = &p
	}
	return out
}

// unhealthy builds a snapshot for a failed or panicked health check.
func unhealthy(msg string) *HealthStatus {
	return &HealthStatus{
		Healthy:   false,
		Errors:    []string{msg},
		LastCheck: time.Now(),
	}
}
