package engine

import "context"

// Capability match weights.
const (
	tocWeight         = 20
	wideTextWeight    = 20
	customCSSWeight   = 15
	concurrencyWeight = 2
)

// CapabilityBased scores engines by how well their declared capabilities
// match what the request asks for, with declared concurrency as a
// throughput tie-breaker.
type CapabilityBased struct{}

// NewCapabilityBased creates the capability-matching strategy.
func NewCapabilityBased() *CapabilityBased {
	return &CapabilityBased{}
}

// Select picks the best capability match; ties go to the first-encountered
// engine.
func (s *CapabilityBased) Select(ctx context.Context, req *Request, engines []Engine, health map[string]*HealthStatus) Engine {
	cands := eligible(ctx, req, engines, health)
	if len(cands) == 0 {
		return nil
	}

	best := cands[0]
	bestScore := capabilityScore(best, req)
	for _, c := range cands[1:] {
		if s := capabilityScore(c, req); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best
}

func capabilityScore(eng Engine, req *Request) float64 {
	caps := eng.Capabilities()

	score := 0.0
	if req.WantsTOC() && caps.TOC {
		score += tocWeight
	}
	if req != nil && req.WideText && caps.WideText {
		score += wideTextWeight
	}
	if req != nil && req.CSS != "" && caps.CustomCSS {
		score += customCSSWeight
	}
	score += concurrencyWeight * float64(caps.MaxConcurrent)
	return score
}
