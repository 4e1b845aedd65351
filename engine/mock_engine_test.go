package engine

import (
	"context"
	"sync"
	"time"
)

// mockEngine is a scriptable Engine for orchestration tests. All counters
// are guarded so concurrent CanHandle probes stay race-free.
type mockEngine struct {
	name    string
	version string
	caps    Capabilities

	mu             sync.Mutex
	initCalls      int
	generateCalls  int
	healthCalls    int
	canHandleCalls int
	cleanupCalls   int

	initErr    error
	cleanupErr error

	healthErr    error
	healthPanic  string // HealthCheck panics with this message when set
	healthy      bool
	healthErrors []string
	performance  *Performance

	refuse        bool // CanHandle returns false
	generateErr   error
	generateFail  bool // structured failure result
	generateDelay time.Duration
}

func newMockEngine(name string) *mockEngine {
	return &mockEngine{
		name:    name,
		version: "1.0",
		healthy: true,
		caps: Capabilities{
			PageFormats:   []string{FormatLetter, FormatA4},
			MaxConcurrent: 2,
			CustomCSS:     true,
			WideText:      true,
			TOC:           true,
			HeaderFooter:  true,
		},
	}
}

func (m *mockEngine) Name() string               { return m.name }
func (m *mockEngine) Version() string            { return m.version }
func (m *mockEngine) Capabilities() Capabilities { return m.caps }

func (m *mockEngine) Initialize(ctx context.Context) error {
	m.mu.Lock()
	m.initCalls++
	m.mu.Unlock()
	return m.initErr
}

func (m *mockEngine) Generate(ctx context.Context, req *Request, opts *RenderOptions) (*Result, error) {
	m.mu.Lock()
	m.generateCalls++
	delay := m.generateDelay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	if m.generateFail {
		return &Result{Success: false, Error: m.name + " render failed"}, nil
	}
	return &Result{
		Success:    true,
		OutputPath: req.OutputPath,
		Metadata: &Metadata{
			Pages:      1,
			FileSize:   1024,
			EngineUsed: m.name,
		},
	}, nil
}

func (m *mockEngine) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	m.mu.Lock()
	m.healthCalls++
	m.mu.Unlock()

	if m.healthPanic != "" {
		panic(m.healthPanic)
	}
	if m.healthErr != nil {
		return nil, m.healthErr
	}
	return &HealthStatus{
		Healthy:     m.healthy,
		Errors:      m.healthErrors,
		Performance: m.performance,
		LastCheck:   time.Now(),
	}, nil
}

func (m *mockEngine) ResourceUsage() ResourceUsage {
	return ResourceUsage{MemoryBytes: 1 << 20}
}

func (m *mockEngine) CanHandle(ctx context.Context, req *Request) bool {
	m.mu.Lock()
	m.canHandleCalls++
	refuse := m.refuse
	m.mu.Unlock()
	return !refuse
}

func (m *mockEngine) Cleanup(ctx context.Context) error {
	m.mu.Lock()
	m.cleanupCalls++
	m.mu.Unlock()
	return m.cleanupErr
}

func (m *mockEngine) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateCalls
}

// mockMetricsEngine additionally exposes the optional metrics slot.
type mockMetricsEngine struct {
	*mockEngine
	reported Metrics
}

func (m *mockMetricsEngine) Metrics() Metrics { return m.reported }

// healthyMap builds health snapshots for strategy tests.
func healthyMap(names ...string) map[string]*HealthStatus {
	out := make(map[string]*HealthStatus, len(names))
	for _, name := range names {
		out[name] = &HealthStatus{Healthy: true, LastCheck: time.Now()}
	}
	return out
}

// factoryFor wires mock engines into a registry, keyed by their names.
func factoryFor(engines ...Engine) *Factory {
	f := NewFactory()
	for _, eng := range engines {
		eng := eng
		f.Register(eng.Name(), func() (Engine, error) { return eng, nil })
	}
	return f
}

func testRequest() *Request {
	return &Request{
		HTML:       "<html><body>hello</body></html>",
		OutputPath: "/tmp/out.pdf",
	}
}
