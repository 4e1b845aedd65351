package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/mdforge/mdforge"
	"github.com/mdforge/mdforge/engine"
	"github.com/mdforge/mdforge/internal/dateutil"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrReadCSS            = errors.New("failed to read CSS file")
	ErrReadMarkdown       = errors.New("failed to read markdown file")
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrGenerationFailed   = errors.New("PDF generation failed")
)

// File permission constants.
const dirPermissions = 0o750 // rwxr-x---: owner full, group read+execute

// Converter is the slice of the conversion service the CLI depends on.
type Converter interface {
	Convert(ctx context.Context, input mdforge.Input, outputPath string) (*engine.Result, error)
}

// Compile-time interface implementation check.
var _ Converter = (*mdforge.Service)(nil)

// Pool abstracts service pool operations for testability.
type Pool interface {
	Acquire(ctx context.Context) (Converter, error)
	Release(Converter)
	Size() int
	Close() error
}

// servicePool adapts mdforge.ServicePool to the Pool interface.
type servicePool struct {
	inner *mdforge.ServicePool
}

func newServicePool(n int, opts ...mdforge.Option) Pool {
	return &servicePool{inner: mdforge.NewServicePool(n, opts...)}
}

func (p *servicePool) Acquire(ctx context.Context) (Converter, error) {
	return p.inner.Acquire(ctx)
}

func (p *servicePool) Release(c Converter) {
	if svc, ok := c.(*mdforge.Service); ok {
		p.inner.Release(svc)
	}
}

func (p *servicePool) Size() int    { return p.inner.Size() }
func (p *servicePool) Close() error { return p.inner.Close() }

// FileToConvert represents a single file to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	EngineUsed string
	Err        error
	Duration   time.Duration
}

// conversionParams groups parameters shared across the batch.
type conversionParams struct {
	title      string
	css        string
	footer     *mdforge.Footer
	page       *mdforge.PageSettings
	watermark  *mdforge.Watermark
	toc        *mdforge.TOC
	pageBreaks *mdforge.PageBreaks
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, newPool func(int, ...mdforge.Option) Pool, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg, err := loadConfigForFlags(flags.common.config)
	if err != nil {
		return err
	}

	// Merge CLI flags into config (CLI wins)
	if err := mergeFlags(flags, cfg); err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positionalArgs)
	if err != nil {
		return err
	}
	outputDir := resolveOutputDir(flags.output, cfg)

	files, err := discoverFiles(inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no markdown files found in %s", inputPath)
	}

	params, err := buildConversionParams(flags, cfg, env.Now)
	if err != nil {
		return err
	}

	opts, err := cfg.ServiceOptions()
	if err != nil {
		return err
	}
	workers := cfg.Workers
	if flags.workers > 0 {
		workers = flags.workers
	}
	pool := newPool(mdforge.ResolvePoolSize(workers), opts...)
	defer func() { _ = pool.Close() }()

	results := convertBatch(ctx, pool, files, params)

	failedCount := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failedCount > 0 {
		return fmt.Errorf("%d conversion(s) failed", failedCount)
	}
	return nil
}

// loadConfigForFlags loads the named config, or defaults when unset.
func loadConfigForFlags(nameOrPath string) (*mdforge.Config, error) {
	if nameOrPath == "" {
		return mdforge.DefaultConfig(), nil
	}
	cfg, err := mdforge.LoadConfig(nameOrPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *mdforge.Config) error {
	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}

	mergeStyleFlags(&flags.style, cfg)
	mergeEngineFlags(&flags.engine, cfg)

	// Page flags
	if flags.page.size != "" {
		cfg.Page.Size = flags.page.size
	}
	if flags.page.orientation != "" {
		cfg.Page.Orientation = flags.page.orientation
	}
	if flags.page.margin > 0 {
		cfg.Page.Margin = flags.page.margin
	}

	// Footer flags
	if flags.footer.position != "" {
		cfg.Footer.Position = flags.footer.position
		cfg.Footer.Enabled = true
	}
	if flags.footer.text != "" {
		cfg.Footer.Text = flags.footer.text
		cfg.Footer.Enabled = true
	}
	if flags.footer.pageNumber {
		cfg.Footer.ShowPageNumber = true
		cfg.Footer.Enabled = true
	}
	if flags.footer.date != "" {
		cfg.Footer.Date = flags.footer.date
		cfg.Footer.Enabled = true
	}
	if flags.footer.status != "" {
		cfg.Footer.Status = flags.footer.status
		cfg.Footer.Enabled = true
	}
	if flags.footer.disabled {
		cfg.Footer.Enabled = false
	}

	return nil
}

// mergeStyleFlags applies stylesheet flags to config.
func mergeStyleFlags(flags *styleFlags, cfg *mdforge.Config) {
	if flags.style != "" {
		cfg.Style = flags.style
	}
	if flags.noStyle {
		cfg.Style = ""
	}
}

// mergeEngineFlags applies engine selection flags to config.
func mergeEngineFlags(flags *engineFlags, cfg *mdforge.Config) {
	if flags.primary != "" {
		cfg.Engine.PrimaryEngine = flags.primary
	}
	if len(flags.fallbacks) > 0 {
		cfg.Engine.FallbackEngines = flags.fallbacks
	}
	if flags.strategy != "" {
		cfg.Strategy = flags.strategy
	}
	if flags.retries > 0 {
		cfg.Engine.MaxRetries = flags.retries
	}
}

// resolveInputPath determines the input path from positional args.
func resolveInputPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return "", ErrNoInput
}

// resolveOutputDir determines the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *mdforge.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	return nil
}

// buildConversionParams assembles the per-batch parameters from flags and
// config. The "auto" footer date is resolved once for the whole batch.
func buildConversionParams(flags *convertFlags, cfg *mdforge.Config, now func() time.Time) (*conversionParams, error) {
	css, err := readUserCSS(flags.style.cssFile)
	if err != nil {
		return nil, err
	}

	footer := cfg.Footer.ToFooter()
	if footer != nil && footer.Date != "" {
		resolved, err := dateutil.ResolveDate(footer.Date, now())
		if err != nil {
			return nil, fmt.Errorf("invalid date format: %w", err)
		}
		footer.Date = resolved
	}

	page := cfg.Page.ToPageSettings()
	if page != nil {
		if err := page.Validate(); err != nil {
			return nil, err
		}
	}

	watermark, err := buildWatermarkData(&flags.watermark)
	if err != nil {
		return nil, err
	}

	return &conversionParams{
		title:      flags.title,
		css:        css,
		footer:     footer,
		page:       page,
		watermark:  watermark,
		toc:        buildTOCData(&flags.toc),
		pageBreaks: buildPageBreaksData(&flags.pageBreaks),
	}, nil
}

// readUserCSS reads an external stylesheet when one is given.
func readUserCSS(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	content, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadCSS, err)
	}
	return string(content), nil
}

// buildWatermarkData creates mdforge.Watermark from flags.
func buildWatermarkData(flags *watermarkFlags) (*mdforge.Watermark, error) {
	if flags.text == "" {
		return nil, nil
	}

	w := &mdforge.Watermark{
		Text:    flags.text,
		Color:   flags.color,
		Opacity: flags.opacity,
	}
	if flags.angle != watermarkAngleSentinel {
		w.Angle = flags.angle
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// buildTOCData creates mdforge.TOC from flags.
func buildTOCData(flags *tocFlags) *mdforge.TOC {
	if !flags.enabled && flags.title == "" {
		return nil
	}
	return &mdforge.TOC{
		Title:    flags.title,
		MinDepth: flags.minDepth,
		MaxDepth: flags.maxDepth,
	}
}

// parseBreakBefore parses "--break-before=h1,h2,h3" into individual bools.
func parseBreakBefore(value string) (h1, h2, h3 bool) {
	if value == "" {
		return false, false, false
	}
	for _, p := range strings.Split(strings.ToLower(value), ",") {
		switch strings.TrimSpace(p) {
		case "h1":
			h1 = true
		case "h2":
			h2 = true
		case "h3":
			h3 = true
		}
	}
	return h1, h2, h3
}

// buildPageBreaksData creates mdforge.PageBreaks from flags.
func buildPageBreaksData(flags *pageBreakFlags) *mdforge.PageBreaks {
	if flags.disabled {
		return nil
	}
	if flags.breakBefore == "" && flags.orphans == 0 && flags.widows == 0 {
		return nil
	}

	pb := &mdforge.PageBreaks{
		Orphans: flags.orphans,
		Widows:  flags.widows,
	}
	pb.BeforeH1, pb.BeforeH2, pb.BeforeH3 = parseBreakBefore(flags.breakBefore)
	return pb
}

// firstHeadingPattern matches the first # heading in markdown content.
var firstHeadingPattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// extractFirstHeading extracts the first # heading from markdown content.
func extractFirstHeading(markdown string) string {
	matches := firstHeadingPattern.FindStringSubmatch(markdown)
	if len(matches) >= 2 {
		return strings.TrimSpace(matches[1])
	}
	return ""
}
