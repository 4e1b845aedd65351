package engine

import (
	"context"
	"sync"
)

// LoadBalanced rotates over the currently healthy and capable set. The set
// composition may change between calls, so rotation is best-effort fair
// within a stable set, not globally fair across composition changes.
type LoadBalanced struct {
	mu   sync.Mutex
	next int
}

// NewLoadBalanced creates a round-robin strategy with the cursor at zero.
func NewLoadBalanced() *LoadBalanced {
	return &LoadBalanced{}
}

// Select returns the next engine in rotation and advances the cursor modulo
// the current candidate set size.
func (s *LoadBalanced) Select(ctx context.Context, req *Request, engines []Engine, health map[string]*HealthStatus) Engine {
	cands := eligible(ctx, req, engines, health)
	if len(cands) == 0 {
		return nil
	}

	s.mu.Lock()
	idx := s.next % len(cands)
	s.next = idx + 1
	s.mu.Unlock()

	return cands[idx]
}
