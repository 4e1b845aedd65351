package mdforge

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mdforge/mdforge/engine"
)

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// TOC depth bounds (heading levels).
const (
	MinTOCDepth     = 1
	MaxTOCDepth     = 6
	DefaultMinDepth = 2 // skip the document title (H1)
	DefaultMaxDepth = 3
)

// Orphan/widow bounds for page break control.
const (
	MinOrphansWidows = 1
	MaxOrphansWidows = 10
	DefaultOrphans   = 3
	DefaultWidows    = 3
)

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
// Does not mutate - uses case-insensitive comparison.
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if !isValidPageSize(p.Size) {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	if !isValidOrientation(p.Orientation) {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

// isValidPageSize checks if size is a known page size (case-insensitive).
func isValidPageSize(size string) bool {
	switch strings.ToLower(size) {
	case PageSizeLetter, PageSizeA4, PageSizeLegal:
		return true
	}
	return false
}

// isValidOrientation checks if orientation is valid (case-insensitive).
func isValidOrientation(orientation string) bool {
	switch strings.ToLower(orientation) {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// Input contains conversion parameters.
type Input struct {
	Markdown   string        // Markdown content (required)
	Title      string        // Document title (optional)
	SourceDir  string        // Directory for resolving relative image paths (optional)
	CSS        string        // Custom CSS (optional)
	WideText   bool          // Content contains CJK / wide characters
	Footer     *Footer       // Footer config (optional)
	Page       *PageSettings // Page settings (optional, nil = defaults)
	TOC        *TOC          // Table of contents (optional)
	Watermark  *Watermark    // Background watermark (optional)
	PageBreaks *PageBreaks   // Page break control (optional)
	Protection *Protection   // Password protection (optional)
}

// Footer configures the PDF footer.
type Footer struct {
	Position       string // "left", "center", "right" (default: "right")
	ShowPageNumber bool
	Date           string // literal, or "auto" / "auto:FORMAT"
	Status         string
	Text           string
}

// Validate checks that footer settings are valid.
// Returns nil if f is nil (nil means no footer).
func (f *Footer) Validate() error {
	if f == nil {
		return nil
	}
	switch strings.ToLower(f.Position) {
	case "", "left", "center", "right":
		return nil
	default:
		return fmt.Errorf("%w: %q (must be left, center, or right)", ErrInvalidFooterPosition, f.Position)
	}
}

// TOC configures table of contents generation.
type TOC struct {
	Title    string // heading above the TOC (default: none)
	MinDepth int    // minimum heading level, 0 = default
	MaxDepth int    // maximum heading level, 0 = default
}

// Validate checks that TOC depths are valid heading levels.
// Returns nil if t is nil (nil means no TOC).
func (t *TOC) Validate() error {
	if t == nil {
		return nil
	}
	minDepth, maxDepth := t.depths()
	if minDepth < MinTOCDepth || minDepth > MaxTOCDepth {
		return fmt.Errorf("%w: min depth %d (must be between %d and %d)", ErrInvalidTOCDepth, minDepth, MinTOCDepth, MaxTOCDepth)
	}
	if maxDepth < MinTOCDepth || maxDepth > MaxTOCDepth {
		return fmt.Errorf("%w: max depth %d (must be between %d and %d)", ErrInvalidTOCDepth, maxDepth, MinTOCDepth, MaxTOCDepth)
	}
	if minDepth > maxDepth {
		return fmt.Errorf("%w: min depth %d exceeds max depth %d", ErrInvalidTOCDepth, minDepth, maxDepth)
	}
	return nil
}

// depths resolves zero values to defaults.
func (t *TOC) depths() (minDepth, maxDepth int) {
	minDepth, maxDepth = t.MinDepth, t.MaxDepth
	if minDepth == 0 {
		minDepth = DefaultMinDepth
	}
	if maxDepth == 0 {
		maxDepth = DefaultMaxDepth
	}
	return minDepth, maxDepth
}

// Watermark configures a diagonal background watermark.
type Watermark struct {
	Text    string
	Color   string  // hex color, e.g. "#cccccc" (default: "#cccccc")
	Opacity float64 // 0..1, 0 = default
	Angle   float64 // degrees, negative = counter-clockwise
}

// DefaultWatermarkColor is used when no color is specified.
const DefaultWatermarkColor = "#cccccc"

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks that watermark settings are valid.
// Returns nil if w is nil (nil means no watermark).
func (w *Watermark) Validate() error {
	if w == nil {
		return nil
	}
	if w.Color != "" && !hexColorPattern.MatchString(w.Color) {
		return fmt.Errorf("%w: %q (must be #rgb or #rrggbb)", ErrInvalidWatermarkColor, w.Color)
	}
	return nil
}

// PageBreaks configures page break behavior.
type PageBreaks struct {
	BeforeH1 bool
	BeforeH2 bool
	BeforeH3 bool
	Orphans  int // 0 = default
	Widows   int // 0 = default
}

// Validate checks that orphan/widow values are in range.
// Returns nil if pb is nil (nil means defaults).
func (pb *PageBreaks) Validate() error {
	if pb == nil {
		return nil
	}
	if pb.Orphans != 0 && (pb.Orphans < MinOrphansWidows || pb.Orphans > MaxOrphansWidows) {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidOrphans, pb.Orphans, MinOrphansWidows, MaxOrphansWidows)
	}
	if pb.Widows != 0 && (pb.Widows < MinOrphansWidows || pb.Widows > MaxOrphansWidows) {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidWidows, pb.Widows, MinOrphansWidows, MaxOrphansWidows)
	}
	return nil
}

// Protection configures password protection for the output document.
// No bundled engine can encrypt output, so the service rejects protected
// jobs with ErrProtectionUnsupported; the field stays on Input for engines
// added behind the orchestration layer.
type Protection struct {
	UserPassword  string
	OwnerPassword string
}

// Option configures a Service.
type Option func(*serviceConfig)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout  time.Duration
	manager  engine.ManagerConfig
	strategy engine.Strategy
	logger   logrus.FieldLogger
	style    string
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the per-conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("mdforge: WithTimeout duration must be positive")
	}
	return func(cfg *serviceConfig) {
		cfg.timeout = d
		cfg.manager.ResourceLimits.TaskTimeout = d
	}
}

// WithEngineConfig replaces the engine manager configuration.
func WithEngineConfig(mc engine.ManagerConfig) Option {
	return func(cfg *serviceConfig) {
		cfg.manager = mc
	}
}

// WithStrategy sets the engine selection strategy.
// The default prefers the configured primary engine.
func WithStrategy(s engine.Strategy) Option {
	return func(cfg *serviceConfig) {
		cfg.strategy = s
	}
}

// WithLogger sets the logger used by the engine manager.
// Without it, orchestration logs are discarded.
func WithLogger(l logrus.FieldLogger) Option {
	return func(cfg *serviceConfig) {
		cfg.logger = l
	}
}

// WithStyle selects a built-in stylesheet by name (see internal/assets).
// An empty name disables the default stylesheet.
func WithStyle(name string) Option {
	return func(cfg *serviceConfig) {
		cfg.style = name
	}
}
