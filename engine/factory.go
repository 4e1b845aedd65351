package engine

import (
	"fmt"
	"sync"
	"time"
)

// Constructor builds a fresh, uninitialized engine instance.
type Constructor func() (Engine, error)

// Factory is a named registry mapping engine identifiers to constructors.
// It holds no engine instances: every Create call yields a fresh instance,
// because engines hold native resources (a browser process) that must not be
// silently shared across unrelated jobs.
type Factory struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewFactory creates an empty registry.
func NewFactory() *Factory {
	return &Factory{constructors: make(map[string]Constructor)}
}

// DefaultFactory returns a registry with the built-in adapters registered:
// rod, chromedp, and weasyprint.
func DefaultFactory(timeout time.Duration) *Factory {
	f := NewFactory()
	f.Register(RodEngineName, func() (Engine, error) {
		return NewRodEngine(timeout), nil
	})
	f.Register(ChromedpEngineName, func() (Engine, error) {
		return NewChromedpEngine(timeout), nil
	})
	f.Register(WeasyPrintEngineName, func() (Engine, error) {
		return NewWeasyPrintEngine(), nil
	})
	return f
}

// Register adds or overwrites a name-to-constructor mapping. The last
// registration for a name wins.
func (f *Factory) Register(name string, ctor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructors[name] = ctor
}

// Unregister removes a mapping and reports whether it existed.
func (f *Factory) Unregister(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.constructors[name]
	delete(f.constructors, name)
	return ok
}

// Has reports whether a constructor is registered for name.
func (f *Factory) Has(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.constructors[name]
	return ok
}

// Available returns all registered names in unspecified order.
func (f *Factory) Available() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.constructors))
	for name := range f.constructors {
		names = append(names, name)
	}
	return names
}

// Create constructs and returns a fresh engine instance for a registered
// name. Fails with ErrUnknownEngine for unregistered names; constructor
// failures are wrapped with ErrEngineConstruct.
func (f *Factory) Create(name string) (Engine, error) {
	f.mu.RLock()
	ctor, ok := f.constructors[name]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}

	eng, err := ctor()
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrEngineConstruct, name, err)
	}
	if eng == nil {
		return nil, fmt.Errorf("%w: %q: constructor returned nil", ErrEngineConstruct, name)
	}
	return eng, nil
}
