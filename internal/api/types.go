package api

import "github.com/mdforge/mdforge"

// ConvertRequest is the POST /convert payload.
type ConvertRequest struct {
	Markdown  string     `json:"markdown"`
	Title     string     `json:"title,omitempty"`
	CSS       string     `json:"css,omitempty"`
	WideText  bool       `json:"wideText,omitempty"`
	Page      *Page      `json:"page,omitempty"`
	Footer    *Footer    `json:"footer,omitempty"`
	TOC       *TOC       `json:"toc,omitempty"`
	Watermark *Watermark `json:"watermark,omitempty"`
}

// Page mirrors mdforge.PageSettings.
type Page struct {
	Size        string  `json:"size,omitempty"`
	Orientation string  `json:"orientation,omitempty"`
	Margin      float64 `json:"margin,omitempty"`
}

// Footer mirrors mdforge.Footer.
type Footer struct {
	Position       string `json:"position,omitempty"`
	ShowPageNumber bool   `json:"showPageNumber,omitempty"`
	Date           string `json:"date,omitempty"`
	Status         string `json:"status,omitempty"`
	Text           string `json:"text,omitempty"`
}

// TOC mirrors mdforge.TOC.
type TOC struct {
	Title    string `json:"title,omitempty"`
	MinDepth int    `json:"minDepth,omitempty"`
	MaxDepth int    `json:"maxDepth,omitempty"`
}

// Watermark mirrors mdforge.Watermark.
type Watermark struct {
	Text    string  `json:"text"`
	Color   string  `json:"color,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
	Angle   float64 `json:"angle,omitempty"`
}

// toInput maps the wire request onto the library input type.
func (r *ConvertRequest) toInput() mdforge.Input {
	input := mdforge.Input{
		Markdown: r.Markdown,
		Title:    r.Title,
		CSS:      r.CSS,
		WideText: r.WideText,
	}
	if r.Page != nil {
		page := mdforge.DefaultPageSettings()
		if r.Page.Size != "" {
			page.Size = r.Page.Size
		}
		if r.Page.Orientation != "" {
			page.Orientation = r.Page.Orientation
		}
		if r.Page.Margin != 0 {
			page.Margin = r.Page.Margin
		}
		input.Page = page
	}
	if r.Footer != nil {
		input.Footer = &mdforge.Footer{
			Position:       r.Footer.Position,
			ShowPageNumber: r.Footer.ShowPageNumber,
			Date:           r.Footer.Date,
			Status:         r.Footer.Status,
			Text:           r.Footer.Text,
		}
	}
	if r.TOC != nil {
		input.TOC = &mdforge.TOC{
			Title:    r.TOC.Title,
			MinDepth: r.TOC.MinDepth,
			MaxDepth: r.TOC.MaxDepth,
		}
	}
	if r.Watermark != nil {
		input.Watermark = &mdforge.Watermark{
			Text:    r.Watermark.Text,
			Color:   r.Watermark.Color,
			Opacity: r.Watermark.Opacity,
			Angle:   r.Watermark.Angle,
		}
	}
	return input
}

// APIError is the JSON error body for failed requests.
type APIError struct {
	Error string `json:"error"`
}

// EngineList is the GET /engines response.
type EngineList struct {
	Available []string `json:"available"`
	Healthy   []string `json:"healthy"`
}
