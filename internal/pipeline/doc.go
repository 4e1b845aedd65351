// Package pipeline implements the Markdown-to-HTML conversion pipeline.
//
// This package handles preprocessing, HTML conversion, and HTML injection stages:
//   - Markdown preprocessing (line normalization, highlight syntax)
//   - Markdown to HTML conversion via Goldmark
//   - CSS injection into HTML documents
//   - Table of contents generation and injection
//   - Relative asset path rewriting
//
// PDF generation is handled separately by the engine package, which routes
// each document to a rendering backend. This separation keeps the pipeline
// focused on document structure and content, while the engines handle page
// layout, margins, and rendering concerns.
package pipeline
