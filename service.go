package mdforge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mdforge/mdforge/engine"
	"github.com/mdforge/mdforge/internal/assets"
	"github.com/mdforge/mdforge/internal/pipeline"
)

// pdfGenerator is the slice of the engine manager the Service depends on.
type pdfGenerator interface {
	Generate(ctx context.Context, req *engine.Request, opts *engine.RenderOptions) *engine.Result
	Cleanup(ctx context.Context)
}

// Service orchestrates the markdown-to-PDF pipeline: preprocessing, HTML
// conversion, stylesheet and TOC injection, then generation through the
// engine manager.
type Service struct {
	cfg          serviceConfig
	preprocessor pipeline.MarkdownPreprocessor
	converter    pipeline.HTMLConverter
	cssInjector  pipeline.CSSInjector
	tocInjector  pipeline.TOCInjector
	generator    pdfGenerator
	manager      *engine.Manager // nil when a fake generator is injected

	now func() time.Time // injectable clock for footer dates
}

// New creates a Service and initializes its engine manager. The primary
// engine must come up; fallback engines that fail to start are logged and
// skipped. Use options to customize behavior (e.g., WithTimeout,
// WithStrategy).
func New(ctx context.Context, opts ...Option) (*Service, error) {
	cfg := serviceConfig{
		timeout: defaultTimeout,
		manager: engine.DefaultManagerConfig(),
		style:   assets.DefaultStyleName,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := newServiceWithConfig(cfg)

	var mgrOpts []engine.ManagerOption
	if cfg.logger != nil {
		mgrOpts = append(mgrOpts, engine.WithLogger(cfg.logger))
	}
	mgr := engine.NewManager(
		cfg.manager,
		engine.DefaultFactory(cfg.timeout),
		cfg.strategy,
		mgrOpts...,
	)
	if err := mgr.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initializing engines: %w", err)
	}

	s.generator = mgr
	s.manager = mgr
	return s, nil
}

// EngineStatus reports per-engine health snapshots.
func (s *Service) EngineStatus() map[string]engine.HealthStatus {
	if s.manager == nil {
		return nil
	}
	return s.manager.EngineStatus()
}

// EngineMetrics reports per-engine generation counters.
func (s *Service) EngineMetrics() map[string]engine.Metrics {
	if s.manager == nil {
		return nil
	}
	return s.manager.EngineMetrics()
}

// AvailableEngines lists registered engine names in registration order.
func (s *Service) AvailableEngines() []string {
	if s.manager == nil {
		return nil
	}
	return s.manager.AvailableEngines()
}

// HealthyEngines lists engines whose latest health snapshot is healthy.
func (s *Service) HealthyEngines() []string {
	if s.manager == nil {
		return nil
	}
	return s.manager.HealthyEngines()
}

// newServiceWithConfig wires the pipeline stages without an engine manager.
// Tests inject a fake generator afterwards.
func newServiceWithConfig(cfg serviceConfig) *Service {
	return &Service{
		cfg:          cfg,
		preprocessor: &pipeline.CommonMarkPreprocessor{},
		converter:    pipeline.NewGoldmarkConverter(),
		cssInjector:  &pipeline.CSSInjection{},
		tocInjector:  pipeline.NewTOCInjection(),
		now:          time.Now,
	}
}

// Convert runs the full pipeline and writes the PDF to outputPath. The
// returned result reports which engine produced the document; generation
// failures after all retries are reported structurally in the result, not
// as an error. Errors are reserved for invalid input and pipeline failures
// before any engine runs.
func (s *Service) Convert(ctx context.Context, input Input, outputPath string) (*engine.Result, error) {
	if err := s.validateInput(input, outputPath); err != nil {
		return nil, err
	}

	// Preprocess markdown
	mdContent := s.preprocessor.PreprocessMarkdown(ctx, input.Markdown)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Convert to HTML
	htmlContent, err := s.converter.ToHTML(ctx, mdContent, input.Title)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}
	htmlContent = pipeline.ConvertMarkPlaceholders(htmlContent)

	// Resolve relative image/link paths against the source directory
	if input.SourceDir != "" {
		htmlContent, err = pipeline.RewriteRelativePaths(htmlContent, input.SourceDir)
		if err != nil {
			return nil, fmt.Errorf("rewriting asset paths: %w", err)
		}
	}

	// Inject combined CSS (base style + page breaks + watermark + user CSS)
	htmlContent = s.cssInjector.InjectCSS(ctx, htmlContent, s.combinedCSS(input))
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Inject numbered TOC (if requested)
	if input.TOC != nil {
		minDepth, maxDepth := input.TOC.depths()
		htmlContent, err = s.tocInjector.InjectTOC(ctx, htmlContent, &pipeline.TOCData{
			Title:    input.TOC.Title,
			MinDepth: minDepth,
			MaxDepth: maxDepth,
		})
		if err != nil {
			return nil, fmt.Errorf("injecting TOC: %w", err)
		}
	}

	req, opts := s.buildGeneration(input, htmlContent, outputPath)
	return s.generator.Generate(ctx, req, opts), nil
}

// combinedCSS assembles the stylesheet stack in override order: built-in
// style first, then page break rules, watermark, and finally user CSS.
func (s *Service) combinedCSS(input Input) string {
	var parts []string

	if s.cfg.style != "" {
		if css, err := assets.Style(s.cfg.style); err == nil {
			parts = append(parts, css)
		}
	}
	parts = append(parts, buildPageBreaksCSS(input.PageBreaks))
	if wm := buildWatermarkCSS(input.Watermark); wm != "" {
		parts = append(parts, wm)
	}
	if input.CSS != "" {
		parts = append(parts, input.CSS)
	}

	return strings.Join(parts, "\n")
}

// buildGeneration maps the public input onto the engine request and render
// options.
func (s *Service) buildGeneration(input Input, htmlContent, outputPath string) (*engine.Request, *engine.RenderOptions) {
	req := &engine.Request{
		HTML:       htmlContent,
		OutputPath: outputPath,
		Title:      input.Title,
		CSS:        input.CSS,
		WideText:   input.WideText,
	}
	if input.TOC != nil {
		minDepth, maxDepth := input.TOC.depths()
		req.TOC = &engine.TOCOptions{
			Enabled:  true,
			Title:    input.TOC.Title,
			MinDepth: minDepth,
			MaxDepth: maxDepth,
		}
	}
	opts := engine.DefaultRenderOptions()
	if input.Page != nil {
		opts.Format = strings.ToLower(input.Page.Size)
		opts.Orientation = strings.ToLower(input.Page.Orientation)
		opts.MarginTop = input.Page.Margin
		opts.MarginBottom = input.Page.Margin
		opts.MarginLeft = input.Page.Margin
		opts.MarginRight = input.Page.Margin
	}
	if footer := buildFooterTemplate(input.Footer, s.now()); footer != "" {
		opts.FooterTemplate = footer
		// Leave room under the content for the footer band.
		if opts.MarginBottom < 0.75 {
			opts.MarginBottom = 0.75
		}
	}
	return req, opts
}

// Close releases engine resources (headless browsers, child processes).
func (s *Service) Close() error {
	if s.generator != nil {
		s.generator.Cleanup(context.Background())
	}
	return nil
}

// validateInput checks that required fields are present and valid.
func (s *Service) validateInput(input Input, outputPath string) error {
	if input.Markdown == "" {
		return ErrEmptyMarkdown
	}
	if outputPath == "" {
		return ErrNoOutputPath
	}
	// None of the bundled engines can encrypt output; failing here beats a
	// confusing no-healthy-engines result after the whole pipeline ran.
	if input.Protection != nil {
		return ErrProtectionUnsupported
	}
	if err := input.Page.Validate(); err != nil {
		return err
	}
	if err := input.Footer.Validate(); err != nil {
		return err
	}
	if err := input.TOC.Validate(); err != nil {
		return err
	}
	if err := input.Watermark.Validate(); err != nil {
		return err
	}
	if err := input.PageBreaks.Validate(); err != nil {
		return err
	}
	return nil
}
