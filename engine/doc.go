// Package engine manages interchangeable PDF rendering backends.
//
// An Engine turns a generation Request into a PDF file or fails explicitly.
// The Factory maps engine names to constructors, the Manager owns engine
// lifecycles, runs periodic health checks, and retries across engines when
// generation fails or times out, and a Strategy decides which engine handles
// a given request.
//
// Three adapters ship with the package: a go-rod headless Chrome engine, a
// chromedp engine, and a WeasyPrint CLI engine. All three are registered by
// DefaultFactory.
package engine
