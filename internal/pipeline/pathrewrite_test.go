package pipeline

import (
	"strings"
	"testing"
)

func TestRewriteRelativePaths(t *testing.T) {
	t.Parallel()

	const dir = "/docs/report"

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"relative image with dot slash",
			`<img src="./chart.png">`,
			`<img src="file:///docs/report/chart.png"/>`,
		},
		{
			"relative image bare",
			`<img src="chart.png">`,
			`<img src="file:///docs/report/chart.png"/>`,
		},
		{
			"relative link",
			`<a href="notes/a.md">notes</a>`,
			`<a href="file:///docs/report/notes/a.md">notes</a>`,
		},
		{
			"absolute path untouched",
			`<img src="/usr/share/pic.png">`,
			`<img src="/usr/share/pic.png"/>`,
		},
		{
			"http URL untouched",
			`<img src="https://example.com/a.png">`,
			`<img src="https://example.com/a.png"/>`,
		},
		{
			"data URI untouched",
			`<img src="data:image/png;base64,AAAA">`,
			`<img src="data:image/png;base64,AAAA"/>`,
		},
		{
			"protocol relative untouched",
			`<img src="//cdn.example.com/a.png">`,
			`<img src="//cdn.example.com/a.png"/>`,
		},
		{
			"anchor untouched",
			`<a href="#section">jump</a>`,
			`<a href="#section">jump</a>`,
		},
		{
			"script src untouched",
			`<script src="evil.js"></script>`,
			`<script src="evil.js"></script>`,
		},
		{
			"empty src untouched",
			`<img src="">`,
			`<img src=""/>`,
		},
		{
			"traversal above source dir blocked",
			`<img src="../../etc/passwd">`,
			`<img src="../../etc/passwd"/>`,
		},
		{
			"dotdot resolving inside source dir allowed",
			`<img src="sub/../chart.png">`,
			`<img src="file:///docs/report/chart.png"/>`,
		},
		{
			"nested elements",
			`<div><p><img src="a.png"></p><a href="b.md">b</a></div>`,
			`<div><p><img src="file:///docs/report/a.png"/></p><a href="file:///docs/report/b.md">b</a></div>`,
		},
		{
			"spaces percent encoded",
			`<img src="my chart.png">`,
			`<img src="file:///docs/report/my%20chart.png"/>`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RewriteRelativePaths(tt.in, dir)
			if err != nil {
				t.Fatalf("RewriteRelativePaths() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestRewriteRelativePaths_EmptySourceDir(t *testing.T) {
	t.Parallel()

	in := `<img src="./chart.png">`
	got, err := RewriteRelativePaths(in, "")
	if err != nil {
		t.Fatal(err)
	}
	if got != in {
		t.Errorf("got %q, want input unchanged", got)
	}
}

func TestRewriteRelativePaths_FullDocument(t *testing.T) {
	t.Parallel()

	in := `<!DOCTYPE html><html><head><title>t</title></head><body><img src="a.png"></body></html>`
	got, err := RewriteRelativePaths(in, "/docs")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `src="file:///docs/a.png"`) {
		t.Errorf("image not rewritten: %s", got)
	}
	if !strings.HasPrefix(got, "<!DOCTYPE html>") || !strings.Contains(got, "<title>t</title>") {
		t.Errorf("document structure lost: %s", got)
	}
}

func TestRewriteRelativePaths_FragmentStaysFragment(t *testing.T) {
	t.Parallel()

	got, err := RewriteRelativePaths(`<p>hello</p>`, "/docs")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "<html") || strings.Contains(got, "<body") {
		t.Errorf("fragment gained a document wrapper: %s", got)
	}
}

func TestRewriteRelativePaths_PreservesOtherAttributes(t *testing.T) {
	t.Parallel()

	got, err := RewriteRelativePaths(`<img src="a.png" alt="chart" width="100">`, "/docs")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`alt="chart"`, `width="100"`, `src="file:///docs/a.png"`} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %s in %s", want, got)
		}
	}
}

func TestNeedsRewrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		val  string
		want bool
	}{
		{"", false},
		{"chart.png", true},
		{"./chart.png", true},
		{"sub/chart.png", true},
		{"/abs/chart.png", false},
		{"http://x/a.png", false},
		{"https://x/a.png", false},
		{"file:///a.png", false},
		{"data:image/png;base64,AA", false},
		{"//cdn/a.png", false},
		{"#anchor", false},
	}
	for _, tt := range tests {
		tt := tt
		if got := needsRewrite(tt.val); got != tt.want {
			t.Errorf("needsRewrite(%q) = %v, want %v", tt.val, got, tt.want)
		}
	}
}

func TestWithin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		dir  string
		want bool
	}{
		{"/docs/a.png", "/docs", true},
		{"/docs/sub/a.png", "/docs", true},
		{"/docs", "/docs", true},
		{"/etc/passwd", "/docs", false},
		{"/docs-other/a.png", "/docs", false},
		{"/a.png", "/docs", false},
	}
	for _, tt := range tests {
		tt := tt
		if got := within(tt.path, tt.dir); got != tt.want {
			t.Errorf("within(%q, %q) = %v, want %v", tt.path, tt.dir, got, tt.want)
		}
	}
}
