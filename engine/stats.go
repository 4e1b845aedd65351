package engine

import (
	"sync"
	"time"
)

// engineStats tracks generation outcomes inside an engine adapter, feeding
// both health snapshots and the optional metrics slot.
type engineStats struct {
	mu          sync.Mutex
	started     time.Time
	total       int64
	success     int64
	failed      int64
	totalDur    time.Duration
	peakMem     int64
	active      int
	lastFailure *FailureRecord
}

func newEngineStats() *engineStats {
	return &engineStats{started: time.Now()}
}

// begin marks a generation in flight.
func (s *engineStats) begin() {
	s.mu.Lock()
	s.active++
	s.mu.Unlock()
}

// end folds one finished generation into the counters.
func (s *engineStats) end(success bool, duration time.Duration, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active--
	s.total++
	s.totalDur += duration
	if success {
		s.success++
	} else {
		s.failed++
		s.lastFailure = &FailureRecord{Time: time.Now(), Error: errMsg}
	}
}

func (s *engineStats) observeMemory(bytes int64) {
	s.mu.Lock()
	if bytes > s.peakMem {
		s.peakMem = bytes
	}
	s.mu.Unlock()
}

// performance builds the optional health snapshot section. Nil until at
// least one generation completed.
func (s *engineStats) performance(memory int64) *Performance {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.total == 0 {
		return nil
	}
	return &Performance{
		AverageGenerationTime: s.totalDur / time.Duration(s.total),
		SuccessRate:           float64(s.success) / float64(s.total),
		MemoryBytes:           memory,
	}
}

func (s *engineStats) usage(memory int64) ResourceUsage {
	s.mu.Lock()
	defer s.mu.Unlock()

	avg := time.Duration(0)
	if s.total > 0 {
		avg = s.totalDur / time.Duration(s.total)
	}
	return ResourceUsage{
		MemoryBytes:     memory,
		ActiveTasks:     s.active,
		AverageTaskTime: avg,
		ErrorCount:      s.failed,
	}
}

func (s *engineStats) metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	avg := time.Duration(0)
	if s.total > 0 {
		avg = s.totalDur / time.Duration(s.total)
	}
	m := Metrics{
		TotalTasks:            s.total,
		SuccessfulTasks:       s.success,
		FailedTasks:           s.failed,
		AverageGenerationTime: avg,
		PeakMemoryBytes:       s.peakMem,
		Uptime:                time.Since(s.started),
	}
	if s.lastFailure != nil {
		f := *s.lastFailure
		m.LastFailure = &f
	}
	return m
}
