package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/mdforge/mdforge/internal/fileutil"
)

// WeasyPrintEngineName identifies the WeasyPrint CLI adapter.
const WeasyPrintEngineName = "weasyprint"

// CommandRunner abstracts command execution to enable testing without real
// subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

// Run executes the command and captures both output streams.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return "", "", fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", "", fmt.Errorf("starting command: %w", err)
	}

	stderrContent, err := io.ReadAll(stderrPipe)
	if err != nil {
		return "", "", fmt.Errorf("reading stderr: %w", err)
	}

	err = cmd.Wait()
	return stdout.String(), string(stderrContent), err
}

// WeasyPrintEngine renders PDFs by invoking the WeasyPrint CLI. No browser
// is involved: rendering is CSS-driven, which makes this adapter the only
// one that produces bookmarks from document headings natively.
type WeasyPrintEngine struct {
	runner CommandRunner
	stats  *engineStats

	mu      sync.Mutex
	version string
}

// NewWeasyPrintEngine creates an engine shelling out to a real weasyprint
// binary.
func NewWeasyPrintEngine() *WeasyPrintEngine {
	return &WeasyPrintEngine{runner: &ExecRunner{}, stats: newEngineStats()}
}

// NewWeasyPrintEngineWith creates an engine with a custom runner (for
// testing).
func NewWeasyPrintEngineWith(runner CommandRunner) *WeasyPrintEngine {
	if runner == nil {
		panic("nil CommandRunner in NewWeasyPrintEngineWith")
	}
	return &WeasyPrintEngine{runner: runner, stats: newEngineStats()}
}

// Name implements Engine.
func (e *WeasyPrintEngine) Name() string { return WeasyPrintEngineName }

// Version reports the probed CLI version, or "unknown" before Initialize.
func (e *WeasyPrintEngine) Version() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.version == "" {
		return "unknown"
	}
	return e.version
}

// Capabilities implements Engine. Header/footer templates are a Chrome
// concept; WeasyPrint does margins boxes through CSS instead.
func (e *WeasyPrintEngine) Capabilities() Capabilities {
	return Capabilities{
		PageFormats:   []string{FormatLetter, FormatA4, FormatLegal},
		MaxConcurrent: 2,
		CustomCSS:     true,
		WideText:      true,
		TOC:           true,
		HeaderFooter:  false,
		Bookmarks:     true,
		Outline:       true,
	}
}

// Initialize probes the CLI and caches its version. Fails when the binary is
// missing from PATH.
func (e *WeasyPrintEngine) Initialize(ctx context.Context) error {
	version, err := e.probeVersion(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.version = version
	e.mu.Unlock()
	return nil
}

func (e *WeasyPrintEngine) probeVersion(ctx context.Context) (string, error) {
	stdout, stderr, err := e.runner.Run(ctx, "weasyprint", "--version")
	if err != nil {
		return "", fmt.Errorf("%w: weasyprint: %s: %v", ErrBackendNotFound, strings.TrimSpace(stderr), err)
	}

	// "WeasyPrint version 62.3" -> "62.3"
	version := strings.TrimSpace(stdout)
	if i := strings.LastIndex(version, " "); i >= 0 {
		version = version[i+1:]
	}
	return version, nil
}

// Generate implements Engine.
func (e *WeasyPrintEngine) Generate(ctx context.Context, req *Request, opts *RenderOptions) (*Result, error) {
	start := time.Now()
	e.stats.begin()

	tmpPath, cleanup, err := fileutil.WriteTempFile(e.pageStyledHTML(req, opts), "html")
	if err != nil {
		e.stats.end(false, time.Since(start), err.Error())
		return nil, err
	}
	defer cleanup()

	_, stderr, err := e.runner.Run(ctx, "weasyprint", tmpPath, req.OutputPath)
	if err != nil {
		wrapped := fmt.Errorf("%w: %s: %v", ErrPDFGeneration, strings.TrimSpace(stderr), err)
		e.stats.end(false, time.Since(start), wrapped.Error())
		return nil, wrapped
	}

	elapsed := time.Since(start)
	e.stats.end(true, elapsed, "")
	e.stats.observeMemory(currentMemory())

	meta := &Metadata{
		FileSize:       fileSize(req.OutputPath),
		GenerationTime: elapsed,
		EngineUsed:     WeasyPrintEngineName,
	}
	if data, err := os.ReadFile(req.OutputPath); err == nil {
		meta.Pages = countPDFPages(data)
	}

	return &Result{Success: true, OutputPath: req.OutputPath, Metadata: meta}, nil
}

// pageStyledHTML prepends an @page rule translating the render options into
// CSS, which is how WeasyPrint takes page geometry.
func (e *WeasyPrintEngine) pageStyledHTML(req *Request, opts *RenderOptions) string {
	width, height := paperDimensions(opts)
	top, bottom, left, right := margins(opts)

	pageCSS := fmt.Sprintf(
		"<style>@page { size: %.2fin %.2fin; margin: %.2fin %.2fin %.2fin %.2fin; }</style>",
		width, height, top, right, bottom, left,
	)

	html := req.HTML
	if i := strings.Index(html, "<head>"); i >= 0 {
		return html[:i+len("<head>")] + "\n" + pageCSS + html[i+len("<head>"):]
	}
	return pageCSS + html
}

// HealthCheck implements Engine: re-probe the CLI.
func (e *WeasyPrintEngine) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	if _, err := e.probeVersion(ctx); err != nil {
		return nil, err
	}
	return &HealthStatus{
		Healthy:     true,
		Performance: e.stats.performance(currentMemory()),
		LastCheck:   time.Now(),
	}, nil
}

// ResourceUsage implements Engine.
func (e *WeasyPrintEngine) ResourceUsage() ResourceUsage {
	return e.stats.usage(currentMemory())
}

// CanHandle implements Engine. Header/footer templates require a browser
// engine; everything else renders.
func (e *WeasyPrintEngine) CanHandle(ctx context.Context, req *Request) bool {
	if req == nil || ctx.Err() != nil {
		return false
	}
	return req.Protection == nil
}

// Cleanup implements Engine. The CLI holds no persistent resources.
func (e *WeasyPrintEngine) Cleanup(ctx context.Context) error {
	return nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// Compile-time interface check. WeasyPrintEngine intentionally does not
// implement MetricsProvider; it exercises the omission path of the optional
// slot.
var _ Engine = (*WeasyPrintEngine)(nil)
