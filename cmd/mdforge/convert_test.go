package main

import (
	"errors"
	"testing"
	"time"

	"github.com/mdforge/mdforge"
)

func TestResolveOutputPath(t *testing.T) {
	tests := []struct {
		name         string
		inputPath    string
		outputDir    string
		baseInputDir string
		want         string
	}{
		{
			name:      "no output dir uses input dir",
			inputPath: "docs/readme.md",
			want:      "docs/readme.pdf",
		},
		{
			name:      "explicit pdf path wins",
			inputPath: "docs/readme.md",
			outputDir: "out/final.pdf",
			want:      "out/final.pdf",
		},
		{
			name:      "output dir flattens single file",
			inputPath: "docs/readme.md",
			outputDir: "out",
			want:      "out/readme.pdf",
		},
		{
			name:         "directory structure preserved",
			inputPath:    "docs/guides/setup.md",
			outputDir:    "out",
			baseInputDir: "docs",
			want:         "out/guides/setup.pdf",
		},
		{
			name:      "markdown extension variant",
			inputPath: "notes.markdown",
			outputDir: "out",
			want:      "out/notes.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveOutputPath(tt.inputPath, tt.outputDir, tt.baseInputDir)
			if got != tt.want {
				t.Errorf("resolveOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateMarkdownExtension(t *testing.T) {
	if err := validateMarkdownExtension("doc.md"); err != nil {
		t.Errorf("doc.md rejected: %v", err)
	}
	if err := validateMarkdownExtension("doc.markdown"); err != nil {
		t.Errorf("doc.markdown rejected: %v", err)
	}
	if err := validateMarkdownExtension("doc.txt"); !errors.Is(err, ErrInvalidExtension) {
		t.Errorf("doc.txt: err = %v, want ErrInvalidExtension", err)
	}
}

func TestExtractFirstHeading(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     string
	}{
		{"simple heading", "# Report\n\nbody", "Report"},
		{"heading after prose", "intro text\n\n# Actual Title\n", "Actual Title"},
		{"trims whitespace", "#   Padded Title  \n", "Padded Title"},
		{"no heading", "just text", ""},
		{"h2 only is skipped", "## Section", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractFirstHeading(tt.markdown); got != tt.want {
				t.Errorf("extractFirstHeading() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateWorkers(t *testing.T) {
	if err := validateWorkers(0); err != nil {
		t.Errorf("workers 0: %v", err)
	}
	if err := validateWorkers(4); err != nil {
		t.Errorf("workers 4: %v", err)
	}
	if err := validateWorkers(-1); !errors.Is(err, ErrInvalidWorkerCount) {
		t.Errorf("workers -1: err = %v, want ErrInvalidWorkerCount", err)
	}
}

func TestMergeFlags_CLIOverridesConfig(t *testing.T) {
	cfg := mdforge.DefaultConfig()
	cfg.Page.Size = "letter"
	cfg.Footer.Enabled = true
	cfg.Footer.Position = "left"

	flags := &convertFlags{
		timeout: "45s",
		page:    pageFlags{size: "a4", margin: 1.0},
		footer:  footerFlags{position: "center"},
		engine:  engineFlags{primary: "chromedp", strategy: "adaptive", retries: 5},
		style:   styleFlags{style: "compact"},
	}

	if err := mergeFlags(flags, cfg); err != nil {
		t.Fatalf("mergeFlags() error: %v", err)
	}

	if cfg.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", cfg.Timeout)
	}
	if cfg.Page.Size != "a4" || cfg.Page.Margin != 1.0 {
		t.Errorf("Page = %+v", cfg.Page)
	}
	if cfg.Footer.Position != "center" {
		t.Errorf("Footer.Position = %q, want center", cfg.Footer.Position)
	}
	if cfg.Engine.PrimaryEngine != "chromedp" {
		t.Errorf("PrimaryEngine = %q, want chromedp", cfg.Engine.PrimaryEngine)
	}
	if cfg.Strategy != "adaptive" {
		t.Errorf("Strategy = %q, want adaptive", cfg.Strategy)
	}
	if cfg.Engine.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.Engine.MaxRetries)
	}
	if cfg.Style != "compact" {
		t.Errorf("Style = %q, want compact", cfg.Style)
	}
}

func TestMergeFlags_InvalidTimeout(t *testing.T) {
	cfg := mdforge.DefaultConfig()
	flags := &convertFlags{timeout: "banana"}

	if err := mergeFlags(flags, cfg); err == nil {
		t.Error("mergeFlags() accepted invalid timeout")
	}
}

func TestMergeFlags_NoFooterDisables(t *testing.T) {
	cfg := mdforge.DefaultConfig()
	cfg.Footer.Enabled = true

	flags := &convertFlags{footer: footerFlags{disabled: true}}
	if err := mergeFlags(flags, cfg); err != nil {
		t.Fatalf("mergeFlags() error: %v", err)
	}
	if cfg.Footer.Enabled {
		t.Error("Footer still enabled after --no-footer")
	}
}

func TestMergeStyleFlags_NoStyleClearsName(t *testing.T) {
	cfg := mdforge.DefaultConfig()
	mergeStyleFlags(&styleFlags{noStyle: true}, cfg)
	if cfg.Style != "" {
		t.Errorf("Style = %q, want empty", cfg.Style)
	}
}

func TestBuildWatermarkData(t *testing.T) {
	t.Run("no text means no watermark", func(t *testing.T) {
		w, err := buildWatermarkData(&watermarkFlags{angle: watermarkAngleSentinel})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w != nil {
			t.Errorf("watermark = %+v, want nil", w)
		}
	})

	t.Run("angle sentinel leaves angle at zero", func(t *testing.T) {
		w, err := buildWatermarkData(&watermarkFlags{text: "DRAFT", angle: watermarkAngleSentinel})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w.Angle != 0 {
			t.Errorf("Angle = %v, want 0", w.Angle)
		}
	})

	t.Run("explicit zero angle survives", func(t *testing.T) {
		w, err := buildWatermarkData(&watermarkFlags{text: "DRAFT", angle: 0})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w.Angle != 0 {
			t.Errorf("Angle = %v, want 0", w.Angle)
		}
	})

	t.Run("invalid color rejected", func(t *testing.T) {
		_, err := buildWatermarkData(&watermarkFlags{text: "DRAFT", color: "red", angle: watermarkAngleSentinel})
		if !errors.Is(err, mdforge.ErrInvalidWatermarkColor) {
			t.Errorf("err = %v, want ErrInvalidWatermarkColor", err)
		}
	})
}

func TestBuildTOCData(t *testing.T) {
	if toc := buildTOCData(&tocFlags{}); toc != nil {
		t.Errorf("TOC = %+v, want nil when not requested", toc)
	}

	toc := buildTOCData(&tocFlags{enabled: true, maxDepth: 4})
	if toc == nil || toc.MaxDepth != 4 {
		t.Errorf("TOC = %+v, want MaxDepth 4", toc)
	}

	// A title alone implies the TOC is wanted.
	if toc := buildTOCData(&tocFlags{title: "Contents"}); toc == nil {
		t.Error("TOC title without --toc should still enable the TOC")
	}
}

func TestParseBreakBefore(t *testing.T) {
	h1, h2, h3 := parseBreakBefore("h1, H3")
	if !h1 || h2 || !h3 {
		t.Errorf("parseBreakBefore(\"h1, H3\") = %v %v %v", h1, h2, h3)
	}

	h1, h2, h3 = parseBreakBefore("")
	if h1 || h2 || h3 {
		t.Error("empty value should enable nothing")
	}
}

func TestBuildPageBreaksData(t *testing.T) {
	if pb := buildPageBreaksData(&pageBreakFlags{}); pb != nil {
		t.Errorf("PageBreaks = %+v, want nil with no flags", pb)
	}
	if pb := buildPageBreaksData(&pageBreakFlags{breakBefore: "h1", disabled: true}); pb != nil {
		t.Error("--no-page-breaks should win over other flags")
	}

	pb := buildPageBreaksData(&pageBreakFlags{breakBefore: "h2", orphans: 4})
	if pb == nil || !pb.BeforeH2 || pb.Orphans != 4 {
		t.Errorf("PageBreaks = %+v", pb)
	}
}

func TestBuildConversionParams_ResolvesFooterDate(t *testing.T) {
	fixed := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

	cfg := mdforge.DefaultConfig()
	cfg.Footer.Enabled = true
	cfg.Footer.Date = "auto"

	flags := &convertFlags{watermark: watermarkFlags{angle: watermarkAngleSentinel}}
	params, err := buildConversionParams(flags, cfg, func() time.Time { return fixed })
	if err != nil {
		t.Fatalf("buildConversionParams() error: %v", err)
	}

	if params.footer == nil {
		t.Fatal("footer is nil")
	}
	if params.footer.Date != "2026-03-14" {
		t.Errorf("footer date = %q, want 2026-03-14", params.footer.Date)
	}
}

func TestBuildConversionParams_InvalidPageConfig(t *testing.T) {
	cfg := mdforge.DefaultConfig()
	cfg.Page.Size = "tabloid"

	flags := &convertFlags{watermark: watermarkFlags{angle: watermarkAngleSentinel}}
	_, err := buildConversionParams(flags, cfg, time.Now)
	if !errors.Is(err, mdforge.ErrInvalidPageSize) {
		t.Errorf("err = %v, want ErrInvalidPageSize", err)
	}
}

func TestResolveInputPath(t *testing.T) {
	if _, err := resolveInputPath(nil); !errors.Is(err, ErrNoInput) {
		t.Errorf("err = %v, want ErrNoInput", err)
	}
	got, err := resolveInputPath([]string{"doc.md"})
	if err != nil || got != "doc.md" {
		t.Errorf("resolveInputPath() = %q, %v", got, err)
	}
}
