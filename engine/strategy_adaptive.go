package engine

import (
	"context"
	"math"
	"sync"
	"time"
)

// Adaptive history tuning.
const (
	adaptiveHistoryCap = 100 // retained outcome scores per engine
	adaptiveRecentN    = 10  // window weighted toward recent behavior
	adaptiveNeutral    = 50  // prior for engines with no history
	adaptiveFastCutoff = 5 * time.Second
)

// Adaptive biases selection toward engines that have historically been
// reliable and fast. Outcomes are fed in through RecordPerformance — they are
// not derived from health snapshots — and each engine keeps a bounded rolling
// log of outcome scores.
type Adaptive struct {
	mu      sync.Mutex
	history map[string][]float64
}

// NewAdaptive creates an adaptive strategy with empty history.
func NewAdaptive() *Adaptive {
	return &Adaptive{history: make(map[string][]float64)}
}

// RecordPerformance appends one outcome score to the engine's history.
// A success scores 50, plus a speed bonus when it finished under the fast
// cutoff; failures score 0. History is capped at the most recent entries.
func (s *Adaptive) RecordPerformance(engineName string, success bool, duration time.Duration) {
	score := 0.0
	if success {
		score = 50
		if duration < adaptiveFastCutoff {
			score += math.Max(0, 50-float64(duration.Milliseconds())/100)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h := append(s.history[engineName], score)
	if len(h) > adaptiveHistoryCap {
		h = h[len(h)-adaptiveHistoryCap:]
	}
	s.history[engineName] = h
}

// Select picks the engine with the best blended history score. Engines with
// no history score the neutral prior, so the first candidate wins until real
// outcomes arrive.
func (s *Adaptive) Select(ctx context.Context, req *Request, engines []Engine, health map[string]*HealthStatus) Engine {
	cands := eligible(ctx, req, engines, health)
	if len(cands) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	best := cands[0]
	bestScore := s.blendedScore(best.Name())
	for _, c := range cands[1:] {
		if score := s.blendedScore(c.Name()); score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

// blendedScore weights the full history 30% and the last few outcomes 70%,
// so recent behavior dominates without erasing the long-term record.
func (s *Adaptive) blendedScore(name string) float64 {
	h := s.history[name]
	if len(h) == 0 {
		return adaptiveNeutral
	}

	recent := h
	if len(h) > adaptiveRecentN {
		recent = h[len(h)-adaptiveRecentN:]
	}
	return 0.3*mean(h) + 0.7*mean(recent)
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
