package engine

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/mdforge/mdforge/internal/fileutil"
)

// ChromedpEngineName identifies the chromedp adapter.
const ChromedpEngineName = "chromedp"

const chromedpEngineVersion = "0.14"

// ChromedpEngine renders PDFs through headless Chrome driven by chromedp.
// One long-lived browser context is shared; each generation runs in its own
// tab so concurrent jobs do not interfere.
type ChromedpEngine struct {
	timeout time.Duration
	stats   *engineStats

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChromedpEngine creates an uninitialized chromedp engine with the given
// per-render timeout.
func NewChromedpEngine(timeout time.Duration) *ChromedpEngine {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChromedpEngine{timeout: timeout, stats: newEngineStats()}
}

// Name implements Engine.
func (e *ChromedpEngine) Name() string { return ChromedpEngineName }

// Version implements Engine.
func (e *ChromedpEngine) Version() string { return chromedpEngineVersion }

// Capabilities implements Engine.
func (e *ChromedpEngine) Capabilities() Capabilities {
	return Capabilities{
		PageFormats:   []string{FormatLetter, FormatA4, FormatLegal},
		MaxConcurrent: 4,
		CustomCSS:     true,
		WideText:      true,
		TOC:           true,
		HeaderFooter:  true,
		Bookmarks:     true,
		Outline:       true,
	}
}

// Initialize starts the browser eagerly so launch errors surface here rather
// than on the first generation. Idempotent.
func (e *ChromedpEngine) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browserCtx != nil {
		return nil
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("no-first-run", true),
	)
	if bin := os.Getenv("CHROMEDP_BROWSER_BIN"); bin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(bin))
	}
	if os.Getenv("CI") == "true" {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	e.allocCancel = allocCancel
	e.browserCtx = browserCtx
	e.browserCancel = browserCancel
	return nil
}

// Generate implements Engine.
func (e *ChromedpEngine) Generate(ctx context.Context, req *Request, opts *RenderOptions) (*Result, error) {
	start := time.Now()
	e.stats.begin()

	pdf, err := e.render(ctx, req, opts)
	if err != nil {
		e.stats.end(false, time.Since(start), err.Error())
		return nil, err
	}

	// #nosec G306 -- PDF output files are intended to be readable
	if err := os.WriteFile(req.OutputPath, pdf, 0o644); err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrWritePDF, err)
		e.stats.end(false, time.Since(start), wrapped.Error())
		return nil, wrapped
	}

	elapsed := time.Since(start)
	e.stats.end(true, elapsed, "")
	e.stats.observeMemory(currentMemory())

	return &Result{
		Success:    true,
		OutputPath: req.OutputPath,
		Metadata: &Metadata{
			Pages:          countPDFPages(pdf),
			FileSize:       int64(len(pdf)),
			GenerationTime: elapsed,
			EngineUsed:     ChromedpEngineName,
		},
	}, nil
}

func (e *ChromedpEngine) render(ctx context.Context, req *Request, opts *RenderOptions) ([]byte, error) {
	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}

	e.mu.Lock()
	browserCtx := e.browserCtx
	e.mu.Unlock()
	if browserCtx == nil {
		return nil, ErrBrowserConnect
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(req.HTML, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	timeout := e.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	defer tabCancel()
	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, timeout)
	defer timeoutCancel()

	var pdf []byte
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("file://"+tmpPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = buildChromedpPrintParams(req, opts).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	return pdf, nil
}

// buildChromedpPrintParams maps RenderOptions onto the CDP PrintToPDF call.
func buildChromedpPrintParams(req *Request, opts *RenderOptions) *page.PrintToPDFParams {
	width, height := paperDimensions(opts)
	top, bottom, left, right := margins(opts)

	params := page.PrintToPDF().
		WithPaperWidth(width).
		WithPaperHeight(height).
		WithMarginTop(top).
		WithMarginBottom(bottom).
		WithMarginLeft(left).
		WithMarginRight(right).
		WithScale(scaleOf(opts)).
		WithPrintBackground(opts == nil || opts.PrintBackground)

	if req != nil && (req.Bookmarks || req.WantsTOC()) {
		params = params.WithGenerateDocumentOutline(true)
	}
	if opts != nil && (opts.HeaderTemplate != "" || opts.FooterTemplate != "") {
		params = params.WithDisplayHeaderFooter(true).
			WithHeaderTemplate(orEmptySpan(opts.HeaderTemplate)).
			WithFooterTemplate(orEmptySpan(opts.FooterTemplate))
	}
	return params
}

// HealthCheck implements Engine: a trivial script round-trip through the
// browser proves the DevTools connection is alive.
func (e *ChromedpEngine) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}

	e.mu.Lock()
	browserCtx := e.browserCtx
	e.mu.Unlock()

	probeCtx, cancel := context.WithTimeout(browserCtx, 5*time.Second)
	defer cancel()

	var one int
	if err := chromedp.Run(probeCtx, chromedp.Evaluate("1", &one)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	return &HealthStatus{
		Healthy:     true,
		Performance: e.stats.performance(currentMemory()),
		LastCheck:   time.Now(),
	}, nil
}

// ResourceUsage implements Engine.
func (e *ChromedpEngine) ResourceUsage() ResourceUsage {
	return e.stats.usage(currentMemory())
}

// CanHandle implements Engine. The chromedp engine cannot encrypt output.
func (e *ChromedpEngine) CanHandle(ctx context.Context, req *Request) bool {
	if req == nil || ctx.Err() != nil {
		return false
	}
	return req.Protection == nil
}

// Cleanup implements Engine: tear down the browser context and allocator.
// Idempotent and never fails.
func (e *ChromedpEngine) Cleanup(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browserCancel != nil {
		e.browserCancel()
		e.browserCancel = nil
	}
	if e.allocCancel != nil {
		e.allocCancel()
		e.allocCancel = nil
	}
	e.browserCtx = nil
	return nil
}

// Metrics implements the optional MetricsProvider slot.
func (e *ChromedpEngine) Metrics() Metrics {
	return e.stats.metrics()
}

// Compile-time interface checks
var (
	_ Engine          = (*ChromedpEngine)(nil)
	_ MetricsProvider = (*ChromedpEngine)(nil)
)
