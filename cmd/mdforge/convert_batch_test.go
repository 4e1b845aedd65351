package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mdforge/mdforge"
	"github.com/mdforge/mdforge/engine"
)

// fakeService records conversions and writes a canned PDF.
type fakeService struct {
	mu     sync.Mutex
	inputs []mdforge.Input
	fail   bool
	broken bool // structural failure instead of hard error
}

func (f *fakeService) Convert(ctx context.Context, input mdforge.Input, outputPath string) (*engine.Result, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, input)
	f.mu.Unlock()

	if f.fail {
		return nil, errors.New("conversion exploded")
	}
	if f.broken {
		return &engine.Result{Success: false, Error: "all engines refused"}, nil
	}

	if err := os.WriteFile(outputPath, []byte("%PDF-1.7"), 0o644); err != nil {
		return nil, err
	}
	return &engine.Result{
		Success:    true,
		OutputPath: outputPath,
		Metadata:   &engine.Metadata{EngineUsed: "rod", Pages: 1},
	}, nil
}

// fakePool hands out a single shared fake service.
type fakePool struct {
	svc  *fakeService
	size int
}

func (p *fakePool) Acquire(ctx context.Context) (Converter, error) { return p.svc, nil }
func (p *fakePool) Release(Converter)                              {}
func (p *fakePool) Size() int                                      { return p.size }
func (p *fakePool) Close() error                                   { return nil }

func writeMarkdownTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestDiscoverFiles_SingleFile(t *testing.T) {
	dir := writeMarkdownTree(t, map[string]string{"doc.md": "# Hi"})

	files, err := discoverFiles(filepath.Join(dir, "doc.md"), "")
	if err != nil {
		t.Fatalf("discoverFiles() error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1", len(files))
	}
	if files[0].OutputPath != filepath.Join(dir, "doc.pdf") {
		t.Errorf("OutputPath = %q", files[0].OutputPath)
	}
}

func TestDiscoverFiles_Directory(t *testing.T) {
	dir := writeMarkdownTree(t, map[string]string{
		"a.md":           "# A",
		"sub/b.markdown": "# B",
		"notes.txt":      "skip me",
	})

	files, err := discoverFiles(dir, "out")
	if err != nil {
		t.Fatalf("discoverFiles() error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	for _, f := range files {
		if !strings.HasPrefix(f.OutputPath, "out") {
			t.Errorf("OutputPath %q not under out/", f.OutputPath)
		}
	}
}

func TestDiscoverFiles_WrongExtension(t *testing.T) {
	dir := writeMarkdownTree(t, map[string]string{"doc.txt": "nope"})

	_, err := discoverFiles(filepath.Join(dir, "doc.txt"), "")
	if !errors.Is(err, ErrInvalidExtension) {
		t.Errorf("err = %v, want ErrInvalidExtension", err)
	}
}

func TestConvertBatch_Success(t *testing.T) {
	dir := writeMarkdownTree(t, map[string]string{
		"a.md": "# Alpha\n\ncontent",
		"b.md": "no heading here",
	})

	files, err := discoverFiles(dir, "")
	if err != nil {
		t.Fatal(err)
	}

	svc := &fakeService{}
	results := convertBatch(context.Background(), &fakePool{svc: svc, size: 2}, files, &conversionParams{})

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("%s failed: %v", r.InputPath, r.Err)
		}
		if r.EngineUsed != "rod" {
			t.Errorf("EngineUsed = %q", r.EngineUsed)
		}
		if _, err := os.Stat(r.OutputPath); err != nil {
			t.Errorf("output missing: %v", err)
		}
	}

	// Titles: H1 when present, filename otherwise.
	titles := map[string]bool{}
	for _, in := range svc.inputs {
		titles[in.Title] = true
	}
	if !titles["Alpha"] || !titles["b"] {
		t.Errorf("titles = %v, want Alpha and b", titles)
	}
}

func TestConvertBatch_TitleFlagWins(t *testing.T) {
	dir := writeMarkdownTree(t, map[string]string{"a.md": "# Alpha"})
	files, _ := discoverFiles(dir, "")

	svc := &fakeService{}
	convertBatch(context.Background(), &fakePool{svc: svc, size: 1}, files, &conversionParams{title: "Fixed"})

	if len(svc.inputs) != 1 || svc.inputs[0].Title != "Fixed" {
		t.Errorf("inputs = %+v", svc.inputs)
	}
}

func TestConvertBatch_SourceDirSet(t *testing.T) {
	dir := writeMarkdownTree(t, map[string]string{"sub/a.md": "# A"})
	files, _ := discoverFiles(dir, "")

	svc := &fakeService{}
	convertBatch(context.Background(), &fakePool{svc: svc, size: 1}, files, &conversionParams{})

	if len(svc.inputs) != 1 || svc.inputs[0].SourceDir != filepath.Join(dir, "sub") {
		t.Errorf("SourceDir = %q, want %q", svc.inputs[0].SourceDir, filepath.Join(dir, "sub"))
	}
}

func TestConvertBatch_StructuralFailure(t *testing.T) {
	dir := writeMarkdownTree(t, map[string]string{"a.md": "# A"})
	files, _ := discoverFiles(dir, "")

	svc := &fakeService{broken: true}
	results := convertBatch(context.Background(), &fakePool{svc: svc, size: 1}, files, &conversionParams{})

	if len(results) != 1 {
		t.Fatal("expected one result")
	}
	if !errors.Is(results[0].Err, ErrGenerationFailed) {
		t.Errorf("err = %v, want ErrGenerationFailed", results[0].Err)
	}
	if !strings.Contains(results[0].Err.Error(), "all engines refused") {
		t.Errorf("err = %v, missing engine detail", results[0].Err)
	}
}

func TestConvertBatch_CancelledContext(t *testing.T) {
	dir := writeMarkdownTree(t, map[string]string{"a.md": "# A", "b.md": "# B"})
	files, _ := discoverFiles(dir, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := convertBatch(ctx, &fakePool{svc: &fakeService{}, size: 1}, files, &conversionParams{})
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("%s: err = %v, want context.Canceled", r.InputPath, r.Err)
		}
	}
}

func TestPrintResults(t *testing.T) {
	results := []ConversionResult{
		{InputPath: "a.md", OutputPath: "a.pdf", EngineUsed: "rod", Duration: 120 * time.Millisecond},
		{InputPath: "b.md", Err: errors.New("boom")},
	}

	var stdout, stderr bytes.Buffer
	env := &Environment{Now: time.Now, Stdout: &stdout, Stderr: &stderr}

	failed := printResults(results, false, false, env)
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	if !strings.Contains(stdout.String(), "Created a.pdf") {
		t.Errorf("stdout = %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "1 succeeded, 1 failed") {
		t.Errorf("missing summary: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "FAILED b.md: boom") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestPrintResults_QuietSuppressesSuccess(t *testing.T) {
	results := []ConversionResult{{InputPath: "a.md", OutputPath: "a.pdf"}}

	var stdout, stderr bytes.Buffer
	env := &Environment{Now: time.Now, Stdout: &stdout, Stderr: &stderr}

	printResults(results, true, false, env)
	if stdout.Len() != 0 {
		t.Errorf("quiet mode wrote to stdout: %q", stdout.String())
	}
}

func TestPrintResults_VerboseShowsEngine(t *testing.T) {
	results := []ConversionResult{
		{InputPath: "a.md", OutputPath: "a.pdf", EngineUsed: "weasyprint", Duration: time.Second},
	}

	var stdout bytes.Buffer
	env := &Environment{Now: time.Now, Stdout: &stdout, Stderr: &bytes.Buffer{}}

	printResults(results, false, true, env)
	if !strings.Contains(stdout.String(), "[weasyprint]") {
		t.Errorf("stdout = %q", stdout.String())
	}
}
