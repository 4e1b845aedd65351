package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Highlight spans are tunneled through goldmark as Private Use Area runes so
// the converter never needs unsafe raw HTML. ConvertMarkPlaceholders turns
// them into <mark> tags once the HTML exists.
const (
	MarkStartPlaceholder = ""
	MarkEndPlaceholder   = ""
)

var (
	crlfOrCR       = regexp.MustCompile(`\r\n?`)
	excessBlankRun = regexp.MustCompile(`\n{3,}`)
	highlightSpan  = regexp.MustCompile(`==(.*?)==`)
)

// MarkdownPreprocessor normalizes markdown before HTML conversion.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// CommonMarkPreprocessor applies the transform chain expected by the
// goldmark converter: normalized line endings, highlight placeholders,
// and at most one blank line between blocks.
type CommonMarkPreprocessor struct{}

var transforms = []func(string) string{
	func(s string) string { return crlfOrCR.ReplaceAllString(s, "\n") },
	func(s string) string {
		return highlightSpan.ReplaceAllString(s, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
	},
	func(s string) string { return excessBlankRun.ReplaceAllString(s, "\n\n") },
}

func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}
	for _, apply := range transforms {
		content = apply(content)
	}
	return content
}

// ConvertMarkPlaceholders rewrites highlight placeholders into <mark> tags.
// Runs on the generated HTML, after goldmark.
func ConvertMarkPlaceholders(content string) string {
	content = strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>")
	return strings.ReplaceAll(content, MarkEndPlaceholder, "</mark>")
}
