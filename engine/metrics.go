package engine

import "time"

// FailureRecord captures the most recent failed attempt for an engine.
type FailureRecord struct {
	Time  time.Time
	Error string
}

// Metrics holds cumulative per-engine counters. The Manager updates its own
// copy after every generation attempt; engines may additionally expose their
// internal view through the MetricsProvider slot.
type Metrics struct {
	TotalTasks            int64
	SuccessfulTasks       int64
	FailedTasks           int64
	AverageGenerationTime time.Duration
	PeakMemoryBytes       int64
	Uptime                time.Duration
	LastFailure           *FailureRecord
}

// record folds one attempt into the counters, keeping a running average.
func (m *Metrics) record(success bool, duration time.Duration, memory int64) {
	m.TotalTasks++
	if success {
		m.SuccessfulTasks++
	} else {
		m.FailedTasks++
	}

	// Running average over all attempts
	prev := m.AverageGenerationTime
	m.AverageGenerationTime = prev + (duration-prev)/time.Duration(m.TotalTasks)

	if memory > m.PeakMemoryBytes {
		m.PeakMemoryBytes = memory
	}
}

// Clone returns a copy safe to hand to callers.
func (m *Metrics) Clone() Metrics {
	out := *m
	if m.LastFailure != nil {
		f := *m.LastFailure
		out.LastFailure = &f
	}
	return out
}
