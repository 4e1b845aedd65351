package engine

import (
	"context"
	"testing"
	"time"
)

func TestEligible_EmptyInput(t *testing.T) {
	if got := eligible(context.Background(), testRequest(), nil, nil); got != nil {
		t.Errorf("eligible(nil engines) = %v, want nil", got)
	}
}

func TestEligible_FiltersUnhealthyAndIncapable(t *testing.T) {
	healthy := newMockEngine("healthy")
	sick := newMockEngine("sick")
	unwilling := newMockEngine("unwilling")
	unwilling.refuse = true

	health := healthyMap("healthy", "unwilling")
	health["sick"] = &HealthStatus{Healthy: false}

	got := eligible(context.Background(), testRequest(), []Engine{healthy, sick, unwilling}, health)
	if len(got) != 1 || got[0].Name() != "healthy" {
		t.Errorf("eligible = %v, want only the healthy capable engine", names(got))
	}
}

func TestEligible_SkipsEnginesWithoutSnapshot(t *testing.T) {
	known := newMockEngine("known")
	unknown := newMockEngine("unknown")

	got := eligible(context.Background(), testRequest(), []Engine{known, unknown}, healthyMap("known"))
	if len(got) != 1 || got[0].Name() != "known" {
		t.Errorf("eligible = %v, want only engines with a snapshot", names(got))
	}
}

func TestHealthFirst_PrefersBetterPerformance(t *testing.T) {
	fast := newMockEngine("fast")
	slow := newMockEngine("slow")

	health := map[string]*HealthStatus{
		"fast": {
			Healthy:     true,
			Performance: &Performance{SuccessRate: 0.95, AverageGenerationTime: 2 * time.Second},
		},
		"slow": {
			Healthy:     true,
			Performance: &Performance{SuccessRate: 0.5, AverageGenerationTime: 40 * time.Second},
		},
	}

	s := NewHealthFirst()
	got := s.Select(context.Background(), testRequest(), []Engine{slow, fast}, health)
	if got == nil || got.Name() != "fast" {
		t.Errorf("Select = %v, want fast", name(got))
	}
}

func TestHealthFirst_ErrorCountPenalty(t *testing.T) {
	clean := newMockEngine("clean")
	noisy := newMockEngine("noisy")

	health := healthyMap("clean", "noisy")
	health["noisy"].Errors = []string{"tab crash", "oom", "tab crash"}

	s := NewHealthFirst()
	got := s.Select(context.Background(), testRequest(), []Engine{noisy, clean}, health)
	if got == nil || got.Name() != "clean" {
		t.Errorf("Select = %v, want clean", name(got))
	}
}

func TestHealthFirst_TieGoesToFirst(t *testing.T) {
	a := newMockEngine("a")
	b := newMockEngine("b")

	s := NewHealthFirst()
	got := s.Select(context.Background(), testRequest(), []Engine{a, b}, healthyMap("a", "b"))
	if got == nil || got.Name() != "a" {
		t.Errorf("Select = %v, want first-encountered engine", name(got))
	}
}

// Given identical inputs, selection is deterministic.
func TestHealthFirst_Deterministic(t *testing.T) {
	engines := []Engine{newMockEngine("x"), newMockEngine("y"), newMockEngine("z")}
	health := healthyMap("x", "y", "z")
	health["y"].Performance = &Performance{SuccessRate: 1.0}

	s := NewHealthFirst()
	first := s.Select(context.Background(), testRequest(), engines, health)
	for i := 0; i < 10; i++ {
		if got := s.Select(context.Background(), testRequest(), engines, health); got != first {
			t.Fatalf("selection changed between identical calls: %v vs %v", name(got), name(first))
		}
	}
}

func TestPrimaryFirst_PrefersPrimary(t *testing.T) {
	primary := newMockEngine("primary")
	shiny := newMockEngine("shiny")

	health := healthyMap("primary", "shiny")
	health["shiny"].Performance = &Performance{SuccessRate: 1.0}

	s := NewPrimaryFirst("primary")
	got := s.Select(context.Background(), testRequest(), []Engine{shiny, primary}, health)
	if got == nil || got.Name() != "primary" {
		t.Errorf("Select = %v, want primary regardless of scores", name(got))
	}
}

func TestPrimaryFirst_DelegatesWhenPrimaryUnfit(t *testing.T) {
	primary := newMockEngine("primary")
	primary.refuse = true
	other := newMockEngine("other")

	s := NewPrimaryFirst("primary")
	got := s.Select(context.Background(), testRequest(), []Engine{primary, other}, healthyMap("primary", "other"))
	if got == nil || got.Name() != "other" {
		t.Errorf("Select = %v, want delegation to remaining engines", name(got))
	}
}

func TestPrimaryFirst_NoneQualifies(t *testing.T) {
	primary := newMockEngine("primary")
	health := map[string]*HealthStatus{"primary": {Healthy: false}}

	s := NewPrimaryFirst("primary")
	if got := s.Select(context.Background(), testRequest(), []Engine{primary}, health); got != nil {
		t.Errorf("Select = %v, want nil", name(got))
	}
}

// N calls over a stable set of k engines select each floor(N/k) or
// ceil(N/k) times.
func TestLoadBalanced_Fairness(t *testing.T) {
	engines := []Engine{newMockEngine("a"), newMockEngine("b"), newMockEngine("c")}
	health := healthyMap("a", "b", "c")

	s := NewLoadBalanced()
	counts := make(map[string]int)
	const n = 10
	for i := 0; i < n; i++ {
		got := s.Select(context.Background(), testRequest(), engines, health)
		if got == nil {
			t.Fatal("Select returned nil with healthy engines")
		}
		counts[got.Name()]++
	}

	for _, eng := range engines {
		c := counts[eng.Name()]
		if c < n/3 || c > n/3+1 {
			t.Errorf("engine %s selected %d times, want %d or %d", eng.Name(), c, n/3, n/3+1)
		}
	}
}

func TestLoadBalanced_EmptySet(t *testing.T) {
	s := NewLoadBalanced()
	if got := s.Select(context.Background(), testRequest(), nil, nil); got != nil {
		t.Errorf("Select = %v, want nil", name(got))
	}
}

// The rotation survives set shrinkage without running off the end.
func TestLoadBalanced_SetChange(t *testing.T) {
	a, b, c := newMockEngine("a"), newMockEngine("b"), newMockEngine("c")
	s := NewLoadBalanced()

	full := []Engine{a, b, c}
	for i := 0; i < 5; i++ {
		s.Select(context.Background(), testRequest(), full, healthyMap("a", "b", "c"))
	}

	small := []Engine{a}
	got := s.Select(context.Background(), testRequest(), small, healthyMap("a"))
	if got == nil || got.Name() != "a" {
		t.Errorf("Select after shrink = %v, want a", name(got))
	}
}

func TestCapabilityBased_TOCRequested(t *testing.T) {
	plain := newMockEngine("plain")
	plain.caps.TOC = false
	tocful := newMockEngine("tocful")

	req := testRequest()
	req.TOC = &TOCOptions{Enabled: true}

	s := NewCapabilityBased()
	got := s.Select(context.Background(), req, []Engine{plain, tocful}, healthyMap("plain", "tocful"))
	if got == nil || got.Name() != "tocful" {
		t.Errorf("Select = %v, want the TOC-capable engine", name(got))
	}
}

func TestCapabilityBased_ConcurrencyTieBreaker(t *testing.T) {
	small := newMockEngine("small")
	small.caps.MaxConcurrent = 1
	big := newMockEngine("big")
	big.caps.MaxConcurrent = 8

	s := NewCapabilityBased()
	got := s.Select(context.Background(), testRequest(), []Engine{small, big}, healthyMap("small", "big"))
	if got == nil || got.Name() != "big" {
		t.Errorf("Select = %v, want the higher-concurrency engine", name(got))
	}
}

func TestCapabilityBased_WideTextAndCSS(t *testing.T) {
	ascii := newMockEngine("ascii")
	ascii.caps.WideText = false
	ascii.caps.CustomCSS = false
	ascii.caps.MaxConcurrent = 8
	cjk := newMockEngine("cjk")
	cjk.caps.MaxConcurrent = 1

	req := testRequest()
	req.WideText = true
	req.CSS = "body { font-family: serif; }"

	s := NewCapabilityBased()
	got := s.Select(context.Background(), req, []Engine{ascii, cjk}, healthyMap("ascii", "cjk"))
	if got == nil || got.Name() != "cjk" {
		t.Errorf("Select = %v, want capability match to beat concurrency", name(got))
	}
}

func names(engines []Engine) []string {
	out := make([]string, len(engines))
	for i, e := range engines {
		out[i] = e.Name()
	}
	return out
}

func name(eng Engine) string {
	if eng == nil {
		return "<nil>"
	}
	return eng.Name()
}
