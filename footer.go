package mdforge

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/mdforge/mdforge/internal/dateutil"
)

// buildFooterTemplate generates an HTML template for Chrome's native footer.
// Supports pageNumber and totalPages placeholders via CSS classes. The date
// value resolves "auto" / "auto:FORMAT" through dateutil; an invalid format
// falls back to the literal value.
func buildFooterTemplate(f *Footer, now time.Time) string {
	if f == nil {
		return ""
	}

	var parts []string

	if f.ShowPageNumber {
		parts = append(parts, `<span class="pageNumber"></span>/<span class="totalPages"></span>`)
	}
	if f.Date != "" {
		date, err := dateutil.ResolveDate(f.Date, now)
		if err != nil {
			date = f.Date
		}
		parts = append(parts, html.EscapeString(date))
	}
	if f.Status != "" {
		parts = append(parts, html.EscapeString(f.Status))
	}
	if f.Text != "" {
		parts = append(parts, html.EscapeString(f.Text))
	}

	if len(parts) == 0 {
		return ""
	}

	content := strings.Join(parts, " - ")

	// Position: left, center, or right (default)
	textAlign := "right"
	switch strings.ToLower(f.Position) {
	case "left":
		textAlign = "left"
	case "center":
		textAlign = "center"
	}

	return fmt.Sprintf(`<div style="font-size: 10px; font-family: %s; color: #aaa; width: 100%%; text-align: %s; padding: 0 0.5in;">%s</div>`, defaultFontFamily, textAlign, content)
}
