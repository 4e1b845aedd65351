package engine

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

// ResourceLimits bounds what the Manager allows per generation attempt.
// MaxMemoryBytes and MaxConcurrentTasks are advisory metadata surfaced to
// engines; TaskTimeout is enforced as a hard per-attempt deadline.
type ResourceLimits struct {
	MaxMemoryBytes     int64         `yaml:"maxMemoryBytes"`
	MaxConcurrentTasks int           `yaml:"maxConcurrentTasks"`
	TaskTimeout        time.Duration `yaml:"taskTimeout"`
}

// ManagerConfig is the static configuration a Manager is constructed with.
type ManagerConfig struct {
	PrimaryEngine       string         `yaml:"primaryEngine"`
	FallbackEngines     []string       `yaml:"fallbackEngines"`
	HealthCheckInterval time.Duration  `yaml:"healthCheckInterval"`
	MaxRetries          int            `yaml:"maxRetries"`
	RetryDelay          time.Duration  `yaml:"retryDelay"`
	EnableMetrics       bool           `yaml:"enableMetrics"`
	ResourceLimits      ResourceLimits `yaml:"resourceLimits"`
}

// DefaultManagerConfig returns the baseline configuration: rod as primary
// with chromedp and weasyprint as fallbacks, health checks every minute,
// three attempts per job with a one second pause between iterations.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		PrimaryEngine:       RodEngineName,
		FallbackEngines:     []string{ChromedpEngineName, WeasyPrintEngineName},
		HealthCheckInterval: time.Minute,
		MaxRetries:          3,
		RetryDelay:          time.Second,
		EnableMetrics:       true,
		ResourceLimits: ResourceLimits{
			MaxMemoryBytes:     2 << 30, // 2GB
			MaxConcurrentTasks: 4,
			TaskTimeout:        30 * time.Second,
		},
	}
}

// ConfigPatch carries partial configuration updates; nil fields are left
// unchanged by UpdateConfig.
type ConfigPatch struct {
	PrimaryEngine       *string
	FallbackEngines     *[]string
	HealthCheckInterval *time.Duration
	MaxRetries          *int
	RetryDelay          *time.Duration
	EnableMetrics       *bool
	ResourceLimits      *ResourceLimits
}

// PerformanceRecorder is the optional learning slot on a Strategy. When the
// configured strategy implements it, the Manager feeds it the outcome of
// every generation attempt.
type PerformanceRecorder interface {
	RecordPerformance(engineName string, success bool, duration time.Duration)
}

// Manager orchestrates a primary engine plus configured fallbacks: it runs
// periodic health checks, delegates selection to a Strategy, and retries
// across engines when generation fails or times out.
//
// The registry maps are the sole mutable state between Initialize and
// Cleanup. Generate itself is never serialized; concurrent callers each run
// an independent selection and retry sequence.
type Manager struct {
	factory  *Factory
	strategy Strategy
	log      logrus.FieldLogger

	mu      sync.RWMutex
	cfg     ManagerConfig
	order   []string // registration order: primary first, then fallbacks
	engines map[string]Engine
	health  map[string]*HealthStatus
	metrics map[string]*Metrics

	startedAt  time.Time
	stopHealth chan struct{}
	healthDone chan struct{}
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the structured logger used for orchestration events.
func WithLogger(log logrus.FieldLogger) ManagerOption {
	return func(m *Manager) {
		m.log = log
	}
}

// NewManager creates a Manager with the given configuration, engine factory,
// and selection strategy. Call Initialize before Generate.
func NewManager(cfg ManagerConfig, factory *Factory, strategy Strategy, opts ...ManagerOption) *Manager {
	if strategy == nil {
		strategy = NewPrimaryFirst(cfg.PrimaryEngine)
	}

	silent := logrus.New()
	silent.SetOutput(io.Discard)

	m := &Manager{
		factory:  factory,
		strategy: strategy,
		log:      silent,
		cfg:      cfg,
		engines:  make(map[string]Engine),
		health:   make(map[string]*HealthStatus),
		metrics:  make(map[string]*Metrics),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize populates the registry. A primary engine failure aborts startup
// and is propagated; a fallback failure is logged and that engine is omitted.
// After population one health pass runs synchronously, then periodic passes
// start when HealthCheckInterval is positive.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	cfg := m.cfg
	m.startedAt = time.Now()
	m.mu.Unlock()

	if cfg.PrimaryEngine == "" {
		return fmt.Errorf("%w: no primary engine configured", ErrUnknownEngine)
	}

	primary, err := m.createAndInit(ctx, cfg.PrimaryEngine)
	if err != nil {
		return fmt.Errorf("initializing primary engine %q: %w", cfg.PrimaryEngine, err)
	}
	m.register(cfg.PrimaryEngine, primary)

	for _, name := range cfg.FallbackEngines {
		if name == cfg.PrimaryEngine {
			continue
		}
		eng, err := m.createAndInit(ctx, name)
		if err != nil {
			m.log.WithError(err).WithField("engine", name).Warn("skipping fallback engine")
			continue
		}
		m.register(name, eng)
	}

	m.runHealthPass(ctx)

	if cfg.HealthCheckInterval > 0 {
		m.startHealthLoop(cfg.HealthCheckInterval)
	}
	return nil
}

func (m *Manager) createAndInit(ctx context.Context, name string) (Engine, error) {
	eng, err := m.factory.Create(name)
	if err != nil {
		return nil, err
	}
	if err := eng.Initialize(ctx); err != nil {
		return nil, err
	}
	return eng, nil
}

func (m *Manager) register(name string, eng Engine) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.engines[name]; !exists {
		m.order = append(m.order, name)
	}
	m.engines[name] = eng
}

// Generate converts one request to PDF, retrying across engines on failure.
//
// The Strategy picks the initial engine; when it returns none the call fails
// immediately with the no-healthy-engines result and no retry loop is
// entered. Otherwise up to MaxRetries iterations run: one attempt on the
// selected engine under the task timeout, then on failure exactly one
// attempt on the first other registered engine that is healthy and can
// handle the request. A primary-plus-fallback pair consumes a single
// iteration, so with every engine failing the worst case is 2*MaxRetries
// engine calls; with one registered engine exactly MaxRetries calls occur.
// MaxRetries below one is treated as a single attempt.
func (m *Manager) Generate(ctx context.Context, req *Request, opts *RenderOptions) *Result {
	engines, health := m.snapshot()
	m.mu.RLock()
	cfg := m.cfg
	m.mu.RUnlock()

	selected := m.strategy.Select(ctx, req, engines, health)
	if selected == nil {
		return &Result{Success: false, Error: ErrNoHealthyEngine.Error()}
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	var pause backoff.BackOff
	if cfg.RetryDelay > 0 {
		pause = backoff.WithContext(backoff.NewConstantBackOff(cfg.RetryDelay), ctx)
	}

	// CanHandle probes repeat during fallback scans; cache them per call.
	probes := make(map[string]bool)

	lastErr := "unknown error"
	for attempt := 1; attempt <= maxRetries; attempt++ {
		res := m.attempt(ctx, selected, req, opts, cfg)
		if res.Success {
			return res
		}
		lastErr = res.Error
		m.log.WithFields(logrus.Fields{
			"engine":  selected.Name(),
			"attempt": attempt,
		}).WithField("error", res.Error).Warn("generation attempt failed")

		if fb := m.pickFallback(ctx, selected.Name(), req, probes); fb != nil {
			res = m.attempt(ctx, fb, req, opts, cfg)
			if res.Success {
				return res
			}
			lastErr = res.Error
			m.log.WithFields(logrus.Fields{
				"engine":  fb.Name(),
				"attempt": attempt,
			}).WithField("error", res.Error).Warn("fallback attempt failed")
		}

		if attempt < maxRetries && pause != nil {
			d := pause.NextBackOff()
			if d == backoff.Stop {
				break
			}
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return m.exhausted(attempt, lastErr)
			}
		}
	}

	return m.exhausted(maxRetries, lastErr)
}

func (m *Manager) exhausted(attempts int, lastErr string) *Result {
	return &Result{
		Success: false,
		Error:   fmt.Sprintf("PDF generation failed after %d attempts: %s", attempts, lastErr),
	}
}

// attempt runs one engine generation bounded by the task timeout. On timeout
// the Manager stops waiting and proceeds; the underlying engine operation is
// not guaranteed to abort beyond context cancellation.
func (m *Manager) attempt(ctx context.Context, eng Engine, req *Request, opts *RenderOptions, cfg ManagerConfig) *Result {
	start := time.Now()

	actx := ctx
	timeout := cfg.ResourceLimits.TaskTimeout
	if timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan *Result, 1)
	go func() {
		res, err := eng.Generate(actx, req, opts)
		switch {
		case err != nil:
			res = &Result{Success: false, Error: err.Error()}
		case res == nil:
			res = &Result{Success: false, Error: "engine returned no result"}
		}
		done <- res
	}()

	var res *Result
	select {
	case res = <-done:
	case <-actx.Done():
		res = &Result{
			Success: false,
			Error:   fmt.Sprintf("engine %s timed out after %s", eng.Name(), timeout),
		}
	}

	elapsed := time.Since(start)
	if res.Success {
		if res.Metadata == nil {
			res.Metadata = &Metadata{}
		}
		if res.Metadata.EngineUsed == "" {
			res.Metadata.EngineUsed = eng.Name()
		}
		if res.Metadata.GenerationTime == 0 {
			res.Metadata.GenerationTime = elapsed
		}
	}

	if cfg.EnableMetrics {
		m.recordAttempt(eng, res, elapsed)
	}
	if rec, ok := m.strategy.(PerformanceRecorder); ok {
		rec.RecordPerformance(eng.Name(), res.Success, elapsed)
	}
	return res
}

func (m *Manager) recordAttempt(eng Engine, res *Result, elapsed time.Duration) {
	usage := eng.ResourceUsage()

	m.mu.Lock()
	defer m.mu.Unlock()

	mt := m.metrics[eng.Name()]
	if mt == nil {
		mt = &Metrics{}
		m.metrics[eng.Name()] = mt
	}
	mt.record(res.Success, elapsed, usage.MemoryBytes)
	if !res.Success {
		mt.LastFailure = &FailureRecord{Time: time.Now(), Error: res.Error}
	}
}

// pickFallback returns the first other registered engine, in registration
// order, that is currently healthy and can handle the request.
func (m *Manager) pickFallback(ctx context.Context, exclude string, req *Request, probes map[string]bool) Engine {
	m.mu.RLock()
	order := append([]string(nil), m.order...)
	engines := make(map[string]Engine, len(m.engines))
	for name, eng := range m.engines {
		engines[name] = eng
	}
	health := make(map[string]*HealthStatus, len(m.health))
	for name, hs := range m.health {
		health[name] = hs
	}
	m.mu.RUnlock()

	for _, name := range order {
		if name == exclude {
			continue
		}
		hs := health[name]
		if hs == nil || !hs.Healthy {
			continue
		}
		eng := engines[name]
		can, probed := probes[name]
		if !probed {
			can = eng.CanHandle(ctx, req)
			probes[name] = can
		}
		if can {
			return eng
		}
	}
	return nil
}

// snapshot copies the registry for a selection pass: engines in registration
// order plus the latest health snapshots.
func (m *Manager) snapshot() ([]Engine, map[string]*HealthStatus) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	engines := make([]Engine, 0, len(m.order))
	for _, name := range m.order {
		if eng, ok := m.engines[name]; ok {
			engines = append(engines, eng)
		}
	}
	health := make(map[string]*HealthStatus, len(m.health))
	for name, hs := range m.health {
		health[name] = hs
	}
	return engines, health
}

// ForceHealthCheck re-checks the named engines, or every registered engine
// when no names are given. Failures are isolated per engine: a failing or
// panicking check records an unhealthy status and never aborts the others.
func (m *Manager) ForceHealthCheck(ctx context.Context, names ...string) {
	if len(names) == 0 {
		m.runHealthPass(ctx)
		return
	}
	for _, name := range names {
		m.mu.RLock()
		eng, ok := m.engines[name]
		m.mu.RUnlock()
		if ok {
			m.checkEngine(ctx, name, eng)
		}
	}
}

func (m *Manager) runHealthPass(ctx context.Context) {
	m.mu.RLock()
	targets := make(map[string]Engine, len(m.engines))
	for name, eng := range m.engines {
		targets[name] = eng
	}
	m.mu.RUnlock()

	for name, eng := range targets {
		m.checkEngine(ctx, name, eng)
	}
}

func (m *Manager) checkEngine(ctx context.Context, name string, eng Engine) {
	status, err := func() (hs *HealthStatus, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("health check panic: %v", r)
			}
		}()
		return eng.HealthCheck(ctx)
	}()

	switch {
	case err != nil:
		status = unhealthy(err.Error())
	case status == nil:
		status = unhealthy("health check returned no status")
	default:
		if status.LastCheck.IsZero() {
			status.LastCheck = time.Now()
		}
	}

	m.mu.Lock()
	prev := m.health[name]
	m.health[name] = status
	m.mu.Unlock()

	if prev != nil && prev.Healthy != status.Healthy {
		m.log.WithFields(logrus.Fields{
			"engine":  name,
			"healthy": status.Healthy,
		}).Info("engine health changed")
	}
}

// startHealthLoop runs periodic passes on a background goroutine. The loop
// is a best-effort refresh; it holds no resources that would keep the
// process alive and is stopped by Cleanup or UpdateConfig.
func (m *Manager) startHealthLoop(interval time.Duration) {
	m.mu.Lock()
	if m.stopHealth != nil {
		m.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	m.stopHealth = stop
	m.healthDone = done
	m.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.runHealthPass(context.Background())
			case <-stop:
				return
			}
		}
	}()
}

func (m *Manager) stopHealthLoop() {
	m.mu.Lock()
	stop := m.stopHealth
	done := m.healthDone
	m.stopHealth = nil
	m.healthDone = nil
	m.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// EngineStatus returns copies of the latest health snapshots keyed by engine
// name.
func (m *Manager) EngineStatus() map[string]HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]HealthStatus, len(m.health))
	for name, hs := range m.health {
		out[name] = hs.Clone()
	}
	return out
}

// EngineMetrics returns per-engine metrics copies. Manager-tracked attempt
// counters take precedence; engines that expose the MetricsProvider slot
// contribute their own snapshot when the Manager has not recorded attempts
// for them yet. Engines with neither are omitted.
func (m *Manager) EngineMetrics() map[string]Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	uptime := time.Since(m.startedAt)
	out := make(map[string]Metrics, len(m.engines))
	for name, eng := range m.engines {
		if mt, ok := m.metrics[name]; ok {
			c := mt.Clone()
			c.Uptime = uptime
			out[name] = c
			continue
		}
		if mp, ok := eng.(MetricsProvider); ok {
			c := mp.Metrics()
			c.Uptime = uptime
			out[name] = c
		}
	}
	return out
}

// AvailableEngines returns registered engine names in registration order.
func (m *Manager) AvailableEngines() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

// HealthyEngines returns the names of engines whose latest snapshot is
// healthy, in registration order.
func (m *Manager) HealthyEngines() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for _, name := range m.order {
		if hs := m.health[name]; hs != nil && hs.Healthy {
			out = append(out, name)
		}
	}
	return out
}

// UpdateConfig merges non-nil patch fields into the live configuration. When
// the health-check interval changes, the periodic timer is torn down and
// restarted only if the new interval is positive.
func (m *Manager) UpdateConfig(patch ConfigPatch) {
	m.mu.Lock()
	if patch.PrimaryEngine != nil {
		m.cfg.PrimaryEngine = *patch.PrimaryEngine
	}
	if patch.FallbackEngines != nil {
		m.cfg.FallbackEngines = append([]string(nil), (*patch.FallbackEngines)...)
	}
	if patch.MaxRetries != nil {
		m.cfg.MaxRetries = *patch.MaxRetries
	}
	if patch.RetryDelay != nil {
		m.cfg.RetryDelay = *patch.RetryDelay
	}
	if patch.EnableMetrics != nil {
		m.cfg.EnableMetrics = *patch.EnableMetrics
	}
	if patch.ResourceLimits != nil {
		m.cfg.ResourceLimits = *patch.ResourceLimits
	}
	var newInterval *time.Duration
	if patch.HealthCheckInterval != nil {
		m.cfg.HealthCheckInterval = *patch.HealthCheckInterval
		newInterval = patch.HealthCheckInterval
	}
	m.mu.Unlock()

	if newInterval != nil {
		m.stopHealthLoop()
		if *newInterval > 0 {
			m.startHealthLoop(*newInterval)
		}
	}
}

// Config returns a copy of the live configuration.
func (m *Manager) Config() ManagerConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := m.cfg
	cfg.FallbackEngines = append([]string(nil), m.cfg.FallbackEngines...)
	return cfg
}

// Cleanup cancels the periodic health loop, cleans up every registered
// engine with per-engine isolation, and clears the registry. It never
// propagates individual engine cleanup failures.
func (m *Manager) Cleanup(ctx context.Context) {
	m.stopHealthLoop()

	m.mu.Lock()
	engines := m.engines
	m.engines = make(map[string]Engine)
	m.health = make(map[string]*HealthStatus)
	m.metrics = make(map[string]*Metrics)
	m.order = nil
	m.mu.Unlock()

	for name, eng := range engines {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.log.WithField("engine", name).Errorf("engine cleanup panic: %v", r)
				}
			}()
			if err := eng.Cleanup(ctx); err != nil {
				m.log.WithError(err).WithField("engine", name).Error("engine cleanup failed")
			}
		}()
	}
}
