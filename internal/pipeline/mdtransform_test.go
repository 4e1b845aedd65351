package pipeline

import (
	"context"
	"testing"
)

func TestPreprocessMarkdown(t *testing.T) {
	t.Parallel()

	p := &CommonMarkPreprocessor{}
	ctx := context.Background()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normalizes CRLF",
			input:    "a\r\nb",
			expected: "a\nb",
		},
		{
			name:     "normalizes bare CR",
			input:    "a\rb",
			expected: "a\nb",
		},
		{
			name:     "compresses blank lines to two",
			input:    "a\n\n\n\n\nb",
			expected: "a\n\nb",
		},
		{
			name:     "converts highlight syntax to placeholders",
			input:    "some ==important== text",
			expected: "some " + MarkStartPlaceholder + "important" + MarkEndPlaceholder + " text",
		},
		{
			name:     "unpaired markers left alone",
			input:    "a == b",
			expected: "a == b",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := p.PreprocessMarkdown(ctx, tt.input); got != tt.expected {
				t.Errorf("PreprocessMarkdown(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPreprocessMarkdown_CancelledContextPassesThrough(t *testing.T) {
	t.Parallel()

	p := &CommonMarkPreprocessor{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := "a\r\nb"
	if got := p.PreprocessMarkdown(ctx, input); got != input {
		t.Errorf("cancelled context should pass content through, got %q", got)
	}
}

func TestConvertMarkPlaceholders(t *testing.T) {
	t.Parallel()

	input := "<p>" + MarkStartPlaceholder + "hot" + MarkEndPlaceholder + "</p>"
	want := "<p><mark>hot</mark></p>"
	if got := ConvertMarkPlaceholders(input); got != want {
		t.Errorf("ConvertMarkPlaceholders = %q, want %q", got, want)
	}
}
