package engine

import (
	"context"
	"time"
)

// Page format constants shared by all engines.
const (
	FormatLetter = "letter"
	FormatA4     = "a4"
	FormatLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Capabilities describes the fixed traits of an engine, used for filtering
// and scoring during selection. Declared once at construction; never changes
// over the engine's lifetime.
type Capabilities struct {
	PageFormats   []string // supported page formats ("letter", "a4", "legal")
	MaxConcurrent int      // advisory concurrent job limit, not enforced by the Manager
	CustomCSS     bool     // user-supplied stylesheets
	WideText      bool     // CJK / wide-character text
	TOC           bool     // table of contents rendering
	HeaderFooter  bool     // native header/footer templates
	Bookmarks     bool     // PDF bookmarks
	Outline       bool     // document outline generation
}

// SupportsFormat reports whether the engine declares support for format.
func (c Capabilities) SupportsFormat(format string) bool {
	for _, f := range c.PageFormats {
		if f == format {
			return true
		}
	}
	return false
}

// TOCOptions configures table-of-contents rendering for one request.
type TOCOptions struct {
	Enabled  bool
	Title    string
	MinDepth int
	MaxDepth int
}

// Protection configures password protection for the output document.
// Engines that cannot encrypt must report false from CanHandle.
type Protection struct {
	UserPassword  string
	OwnerPassword string
}

// Request describes one conversion job. It is immutable after creation and
// passed by pointer to every engine attempt in a retry sequence; engines must
// never mutate it.
type Request struct {
	HTML       string
	OutputPath string
	Title      string
	CSS        string // custom stylesheet, empty when none
	WideText   bool   // content contains CJK / wide characters
	Bookmarks  bool
	TOC        *TOCOptions
	Protection *Protection
}

// WantsTOC reports whether the request asks for a table of contents.
func (r *Request) WantsTOC() bool {
	return r != nil && r.TOC != nil && r.TOC.Enabled
}

// RenderOptions holds page-layout parameters, orthogonal to the Request.
type RenderOptions struct {
	Format          string  // "letter", "a4", "legal"
	Orientation     string  // "portrait", "landscape"
	MarginTop       float64 // inches
	MarginBottom    float64
	MarginLeft      float64
	MarginRight     float64
	HeaderTemplate  string
	FooterTemplate  string
	Scale           float64
	PrintBackground bool
}

// DefaultRenderOptions returns letter-format portrait options with half-inch
// margins, matching Chrome's print defaults.
func DefaultRenderOptions() *RenderOptions {
	return &RenderOptions{
		Format:          FormatLetter,
		Orientation:     OrientationPortrait,
		MarginTop:       0.5,
		MarginBottom:    0.5,
		MarginLeft:      0.5,
		MarginRight:     0.5,
		Scale:           1.0,
		PrintBackground: true,
	}
}

// Metadata describes a successful generation.
type Metadata struct {
	Pages          int
	FileSize       int64
	GenerationTime time.Duration
	EngineUsed     string
}

// Result is the outcome of one generation attempt. Failures are expressed
// structurally (Success false plus Error text), never as panics.
type Result struct {
	Success    bool
	OutputPath string
	Error      string
	Metadata   *Metadata
}

// ResourceUsage is a point-in-time snapshot of an engine's resource footprint.
type ResourceUsage struct {
	MemoryBytes     int64
	ActiveTasks     int
	AverageTaskTime time.Duration
	ErrorCount      int64 // failed generations since the engine was constructed
}

// Engine is a pluggable PDF rendering backend. An engine owns its internal
// resources (for example a long-lived browser process); the Manager never
// reaches into them directly.
//
// Lifecycle: constructed, Initialize, zero or more Generate calls, Cleanup.
// Initialize and Cleanup are idempotent. Cleanup must not fail when the
// backend is already torn down.
type Engine interface {
	Name() string
	Version() string
	Capabilities() Capabilities

	Initialize(ctx context.Context) error
	Generate(ctx context.Context, req *Request, opts *RenderOptions) (*Result, error)
	Cleanup(ctx context.Context) error

	// HealthCheck probes the backend. A non-nil error is recorded by the
	// Manager as an unhealthy status; it never aborts checks of other engines.
	HealthCheck(ctx context.Context) (*HealthStatus, error)

	ResourceUsage() ResourceUsage

	// CanHandle reports whether the engine can serve the request. Used purely
	// as a filter; implementations must not fail.
	CanHandle(ctx context.Context, req *Request) bool
}

// MetricsProvider is the optional metrics slot on an Engine. Engines that do
// not implement it are simply omitted from the engine-reported metrics pass.
type MetricsProvider interface {
	Metrics() Metrics
}
