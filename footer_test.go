package mdforge

import (
	"strings"
	"testing"
	"time"
)

var fixedNow = time.Date(2026, time.January, 5, 9, 30, 0, 0, time.UTC)

func TestBuildFooterTemplate_Empty(t *testing.T) {
	if got := buildFooterTemplate(nil, fixedNow); got != "" {
		t.Errorf("nil footer = %q, want empty", got)
	}
	if got := buildFooterTemplate(&Footer{}, fixedNow); got != "" {
		t.Errorf("empty footer = %q, want empty", got)
	}
}

func TestBuildFooterTemplate_PageNumbers(t *testing.T) {
	tpl := buildFooterTemplate(&Footer{ShowPageNumber: true}, fixedNow)
	if !strings.Contains(tpl, `<span class="pageNumber"></span>`) {
		t.Errorf("pageNumber span missing: %s", tpl)
	}
	if !strings.Contains(tpl, `<span class="totalPages"></span>`) {
		t.Errorf("totalPages span missing: %s", tpl)
	}
}

func TestBuildFooterTemplate_AutoDate(t *testing.T) {
	tpl := buildFooterTemplate(&Footer{Date: "auto"}, fixedNow)
	if !strings.Contains(tpl, "2026-01-05") {
		t.Errorf("auto date not resolved: %s", tpl)
	}

	tpl = buildFooterTemplate(&Footer{Date: "auto:DD/MM/YYYY"}, fixedNow)
	if !strings.Contains(tpl, "05/01/2026") {
		t.Errorf("custom format not applied: %s", tpl)
	}
}

func TestBuildFooterTemplate_InvalidAutoFormatFallsBack(t *testing.T) {
	tpl := buildFooterTemplate(&Footer{Date: "auto:"}, fixedNow)
	if !strings.Contains(tpl, "auto:") {
		t.Errorf("invalid format should fall back to literal: %s", tpl)
	}
}

func TestBuildFooterTemplate_LiteralDatePassthrough(t *testing.T) {
	tpl := buildFooterTemplate(&Footer{Date: "January 2026"}, fixedNow)
	if !strings.Contains(tpl, "January 2026") {
		t.Errorf("literal date lost: %s", tpl)
	}
}

func TestBuildFooterTemplate_Position(t *testing.T) {
	tests := []struct {
		position string
		want     string
	}{
		{"", "text-align: right"},
		{"right", "text-align: right"},
		{"left", "text-align: left"},
		{"Center", "text-align: center"},
	}

	for _, tt := range tests {
		tpl := buildFooterTemplate(&Footer{Text: "x", Position: tt.position}, fixedNow)
		if !strings.Contains(tpl, tt.want) {
			t.Errorf("position %q: missing %q in %s", tt.position, tt.want, tpl)
		}
	}
}

func TestBuildFooterTemplate_JoinsPartsInOrder(t *testing.T) {
	tpl := buildFooterTemplate(&Footer{
		ShowPageNumber: true,
		Date:           "2026-01-05",
		Status:         "DRAFT",
		Text:           "internal",
	}, fixedNow)

	content := tpl[strings.Index(tpl, ">")+1:]
	pageIdx := strings.Index(content, "pageNumber")
	dateIdx := strings.Index(content, "2026-01-05")
	statusIdx := strings.Index(content, "DRAFT")
	textIdx := strings.Index(content, "internal")

	if !(pageIdx < dateIdx && dateIdx < statusIdx && statusIdx < textIdx) {
		t.Errorf("parts out of order: %s", tpl)
	}
	if strings.Count(tpl, " - ") != 3 {
		t.Errorf("separator count wrong: %s", tpl)
	}
}

func TestBuildFooterTemplate_EscapesHTML(t *testing.T) {
	tpl := buildFooterTemplate(&Footer{Text: "<script>alert(1)</script>"}, fixedNow)
	if strings.Contains(tpl, "<script>") {
		t.Errorf("HTML not escaped: %s", tpl)
	}
	if !strings.Contains(tpl, "&lt;script&gt;") {
		t.Errorf("escaped form missing: %s", tpl)
	}
}
