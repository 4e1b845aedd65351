// Package dateutil resolves "auto" date values into formatted dates.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates a format string that cannot be compiled.
var ErrInvalidDateFormat = errors.New("invalid date format")

// maxFormatLength bounds user-supplied format strings.
const maxFormatLength = 50

// defaultFormat renders ISO dates when "auto" carries no explicit format.
const defaultFormat = "YYYY-MM-DD"

// tokens lists format tokens longest-first so the compiler matches greedily
// (MMMM before MMM before MM before M).
var tokens = []struct {
	text   string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// presets are named shortcuts accepted after "auto:".
var presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// ResolveDate expands auto-date syntax against the given time:
//
//	"auto"          -> t in YYYY-MM-DD
//	"auto:FORMAT"   -> t in a token format (e.g. "auto:DD/MM/YYYY")
//	"auto:preset"   -> t via a named preset (iso, european, us, long)
//	anything else   -> returned unchanged
//
// Callers inject t so a batch resolves to one consistent date.
func ResolveDate(value string, t time.Time) (string, error) {
	lower := strings.ToLower(value)
	if !strings.HasPrefix(lower, "auto") {
		return value, nil
	}

	format := defaultFormat
	switch {
	case lower == "auto":
	case strings.HasPrefix(lower, "auto:"):
		// Keep the original casing: tokens are case-sensitive.
		format = value[len("auto:"):]
		if format == "" {
			return "", fmt.Errorf("%w: missing format after \"auto:\"", ErrInvalidDateFormat)
		}
		if preset, ok := presets[strings.ToLower(format)]; ok {
			format = preset
		}
	default:
		return "", fmt.Errorf("%w: %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidDateFormat, value)
	}

	layout, err := compileFormat(format)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

// compileFormat translates a token format string into a Go time layout.
// Square brackets escape literal text ("[Date] DD" keeps "Date" as-is);
// characters that match no token pass through unchanged.
func compileFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > maxFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, maxFormatLength)
	}

	var layout strings.Builder
	layout.Grow(len(format) + 8)

	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i+1:], ']')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			layout.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}
		if goLayout, n, ok := matchToken(format[i:]); ok {
			layout.WriteString(goLayout)
			i += n
			continue
		}
		layout.WriteByte(format[i])
		i++
	}

	return layout.String(), nil
}

func matchToken(s string) (layout string, n int, ok bool) {
	for _, t := range tokens {
		if strings.HasPrefix(s, t.text) {
			return t.layout, len(t.text), true
		}
	}
	return "", 0, false
}
