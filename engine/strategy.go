package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
)

// Strategy is a pure decision policy: given a request, the available engines,
// and their latest health snapshots, pick one engine or none. Strategies
// never fail for "no good engine" — that is always expressed by returning
// nil, which the Manager turns into a structured selection failure.
type Strategy interface {
	Select(ctx context.Context, req *Request, engines []Engine, health map[string]*HealthStatus) Engine
}

// StrategyByName maps a configuration name onto a selection strategy.
// primary is the engine the "primary-first" strategy favors. An empty name
// selects health-first.
func StrategyByName(name, primary string) (Strategy, error) {
	switch name {
	case "", "health-first":
		return NewHealthFirst(), nil
	case "primary-first":
		return NewPrimaryFirst(primary), nil
	case "load-balanced":
		return NewLoadBalanced(), nil
	case "capability-based":
		return NewCapabilityBased(), nil
	case "adaptive":
		return NewAdaptive(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// eligible filters engines to those whose latest snapshot is healthy and
// whose CanHandle probe passes. Probes may await backend I/O, so they run
// concurrently; input order is preserved in the result.
func eligible(ctx context.Context, req *Request, engines []Engine, health map[string]*HealthStatus) []Engine {
	if len(engines) == 0 {
		return nil
	}

	keep := make([]bool, len(engines))
	var wg sync.WaitGroup
	for i, eng := range engines {
		hs := health[eng.Name()]
		if hs == nil || !hs.Healthy {
			continue
		}
		wg.Add(1)
		go func(i int, eng Engine) {
			defer wg.Done()
			keep[i] = eng.CanHandle(ctx, req)
		}(i, eng)
	}
	wg.Wait()

	var out []Engine
	for i, ok := range keep {
		if ok {
			out = append(out, engines[i])
		}
	}
	return out
}

// healthScore rates an eligible engine from its health snapshot: a healthy
// baseline of 100, plus success rate and speed bonuses, minus memory
// pressure and accumulated diagnostics.
func healthScore(eng Engine, health map[string]*HealthStatus) float64 {
	hs := health[eng.Name()]
	if hs == nil {
		return 0
	}

	score := 100.0
	if p := hs.Performance; p != nil {
		score += p.SuccessRate * 50
		score += math.Max(0, 50-p.AverageGenerationTime.Seconds())
		score += math.Max(0, 25-float64(p.MemoryBytes)/1e9)
	}
	score -= 10 * float64(len(hs.Errors))
	return score
}

// bestByHealth picks the highest healthScore candidate; ties go to the
// first-encountered engine.
func bestByHealth(cands []Engine, health map[string]*HealthStatus) Engine {
	if len(cands) == 0 {
		return nil
	}
	best := cands[0]
	bestScore := healthScore(best, health)
	for _, c := range cands[1:] {
		if s := healthScore(c, health); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best
}

// HealthFirst selects the engine with the best current health score.
type HealthFirst struct{}

// NewHealthFirst creates the health-first strategy.
func NewHealthFirst() *HealthFirst {
	return &HealthFirst{}
}

// Select returns the healthiest capable engine, or nil when none qualifies.
func (s *HealthFirst) Select(ctx context.Context, req *Request, engines []Engine, health map[string]*HealthStatus) Engine {
	return bestByHealth(eligible(ctx, req, engines, health), health)
}
