// Package mdforge converts Markdown documents to PDF through a pool of
// interchangeable rendering engines.
//
// # Quick Start
//
// Create a service, convert markdown, and close when done:
//
//	svc, err := mdforge.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//
//	result, err := svc.Convert(ctx, mdforge.Input{
//	    Markdown: "# Hello\n\nWorld",
//	}, "output.pdf")
//
// The result reports the engine that produced the document, the page count,
// and the generation time.
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Markdown preprocessing (line normalization, ==highlight== syntax)
//  2. Markdown to HTML conversion via Goldmark (GFM, syntax highlighting)
//  3. HTML injection (stylesheet, watermark, table of contents)
//  4. PDF rendering through the engine manager, which picks a healthy
//     backend, retries on failure, and falls back to another engine
//
// # Engines
//
// Three backends are registered by default: headless Chrome via go-rod,
// headless Chrome via chromedp, and the WeasyPrint CLI. The manager monitors
// their health in the background and routes each job according to the
// configured selection strategy. See the engine package for the contract and
// the available strategies.
//
// # Configuration
//
// Use functional options to customize the service:
//
//	svc, err := mdforge.New(ctx,
//	    mdforge.WithTimeout(2*time.Minute),
//	    mdforge.WithStrategy(engine.NewHealthFirst()),
//	)
//
// Per-conversion options are passed via Input:
//
//	result, err := svc.Convert(ctx, mdforge.Input{
//	    Markdown:  content,
//	    CSS:       "body { font-size: 14px; }",
//	    Page:      &mdforge.PageSettings{Size: "a4"},
//	    Footer:    &mdforge.Footer{ShowPageNumber: true},
//	    TOC:       &mdforge.TOC{Title: "Contents"},
//	    Watermark: &mdforge.Watermark{Text: "DRAFT"},
//	}, "report.pdf")
//
// # Parallel Processing
//
// For batch conversion, use ServicePool to manage multiple browser instances:
//
//	pool := mdforge.NewServicePool(4)
//	defer pool.Close()
//
//	svc, err := pool.Acquire(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Release(svc)
//	result, err := svc.Convert(ctx, input, outPath)
//
// # Browser Requirements
//
// The Chrome-based engines require Chrome/Chromium. go-rod downloads a
// managed Chromium on first run (~/.cache/rod/browser/). For containers and
// CI environments, set CI=true to disable the Chrome sandbox, and
// ROD_BROWSER_BIN to point at a pre-installed binary. The WeasyPrint engine
// requires a weasyprint executable on PATH; when a backend is missing its
// engine is simply reported unhealthy and skipped.
package mdforge
