package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/mdforge/mdforge/internal/fileutil"
	"github.com/mdforge/mdforge/internal/process"
)

// RodEngineName identifies the go-rod headless Chrome adapter.
const RodEngineName = "rod"

const rodEngineVersion = "0.116"

// RodEngine renders PDFs through headless Chrome via go-rod. The browser is
// launched lazily on first use and reused across generations; the engine
// serializes nothing itself — Chrome multiplexes pages internally.
type RodEngine struct {
	timeout time.Duration
	stats   *engineStats

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewRodEngine creates an uninitialized rod engine with the given per-render
// timeout.
func NewRodEngine(timeout time.Duration) *RodEngine {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RodEngine{timeout: timeout, stats: newEngineStats()}
}

// Name implements Engine.
func (e *RodEngine) Name() string { return RodEngineName }

// Version implements Engine.
func (e *RodEngine) Version() string { return rodEngineVersion }

// Capabilities implements Engine.
func (e *RodEngine) Capabilities() Capabilities {
	return Capabilities{
		PageFormats:   []string{FormatLetter, FormatA4, FormatLegal},
		MaxConcurrent: 4,
		CustomCSS:     true,
		WideText:      true,
		TOC:           true,
		HeaderFooter:  true,
		Bookmarks:     false,
		Outline:       false,
	}
}

// Initialize launches the browser. Idempotent; a sandboxed launch failure is
// retried once without the sandbox, covering root and container environments
// that were not announced through the CI/ROD_BROWSER_BIN variables.
func (e *RodEngine) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.ensureBrowser()
}

func (e *RodEngine) ensureBrowser() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser != nil {
		return nil
	}

	l, browser, err := launchBrowser(false)
	if err != nil {
		// Fallback launch configuration
		l, browser, err = launchBrowser(true)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	e.launcher = l
	e.browser = browser
	return nil
}

func launchBrowser(forceNoSandbox bool) (*launcher.Launcher, *rod.Browser, error) {
	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if forceNoSandbox || os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, nil, err
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, nil, err
	}
	return l, browser, nil
}

// Generate implements Engine: render the request's HTML in a fresh page and
// write the PDF to the output path.
func (e *RodEngine) Generate(ctx context.Context, req *Request, opts *RenderOptions) (*Result, error) {
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
			EngineUsed:     RodEngineName,
		},
	}, nil
}

func (e *RodEngine) render(ctx context.Context, req *Request, opts *RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.ensureBrowser(); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(req.HTML, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	page, err := e.browser.Page(proto.TargetCreateTarget{URL: "file://" + tmpPath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := e.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(buildRodPrintOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdf, nil
}

// buildRodPrintOptions maps RenderOptions onto Chrome's PrintToPDF call.
func buildRodPrintOptions(opts *RenderOptions) *proto.PagePrintToPDF {
	width, height := paperDimensions(opts)
	top, bottom, left, right := margins(opts)

	printOpts := &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(width),
		PaperHeight:     floatPtr(height),
		MarginTop:       floatPtr(top),
		MarginBottom:    floatPtr(bottom),
		MarginLeft:      floatPtr(left),
		MarginRight:     floatPtr(right),
		Scale:           floatPtr(scaleOf(opts)),
		PrintBackground: opts == nil || opts.PrintBackground,
	}

	if opts != nil && (opts.HeaderTemplate != "" || opts.FooterTemplate != "") {
		printOpts.DisplayHeaderFooter = true
		printOpts.HeaderTemplate = orEmptySpan(opts.HeaderTemplate)
		printOpts.FooterTemplate = orEmptySpan(opts.FooterTemplate)
	}
	return printOpts
}

func orEmptySpan(tmpl string) string {
	if tmpl == "" {
		return "<span></span>"
	}
	return tmpl
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// HealthCheck implements Engine: probe the browser over DevTools.
func (e *RodEngine) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.ensureBrowser(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	browser := e.browser
	e.mu.Unlock()

	if _, err := browser.Version(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	return &HealthStatus{
		Healthy:     true,
		Performance: e.stats.performance(currentMemory()),
		LastCheck:   time.Now(),
	}, nil
}

// ResourceUsage implements Engine.
func (e *RodEngine) ResourceUsage() ResourceUsage {
	return e.stats.usage(currentMemory())
}

// CanHandle implements Engine. The rod engine cannot encrypt output.
func (e *RodEngine) CanHandle(ctx context.Context, req *Request) bool {
	if req == nil || ctx.Err() != nil {
		return false
	}
	return req.Protection == nil
}

// Cleanup implements Engine: close the browser and reap its process tree.
// Idempotent and never fails.
func (e *RodEngine) Cleanup(ctx context.Context) error {
	e.mu.Lock()
	browser := e.browser
	l := e.launcher
	e.browser = nil
	e.launcher = nil
	e.mu.Unlock()

	if browser != nil {
		_ = browser.Close()
	}
	if l != nil {
		pid := l.PID()
		l.Kill()
		if pid > 0 {
			process.KillProcessGroup(pid)
		}
	}
	return nil
}

// Metrics implements the optional MetricsProvider slot.
func (e *RodEngine) Metrics() Metrics {
	return e.stats.metrics()
}

// Compile-time interface checks
var (
	_ Engine          = (*RodEngine)(nil)
	_ MetricsProvider = (*RodEngine)(nil)
)
