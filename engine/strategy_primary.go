package engine

import "context"

// PrimaryFirst returns the named primary engine unconditionally whenever it
// is present, healthy, and capable; otherwise it falls back to health-first
// scoring over the remaining engines.
type PrimaryFirst struct {
	primary string
}

// NewPrimaryFirst creates a primary-first strategy preferring name.
func NewPrimaryFirst(name string) *PrimaryFirst {
	return &PrimaryFirst{primary: name}
}

// Select prefers the configured primary, delegating to health scoring over
// the rest when the primary is absent or unfit.
func (s *PrimaryFirst) Select(ctx context.Context, req *Request, engines []Engine, health map[string]*HealthStatus) Engine {
	cands := eligible(ctx, req, engines, health)
	if len(cands) == 0 {
		return nil
	}

	rest := cands[:0:0]
	for _, c := range cands {
		if c.Name() == s.primary {
			return c
		}
		rest = append(rest, c)
	}
	return bestByHealth(rest, health)
}
