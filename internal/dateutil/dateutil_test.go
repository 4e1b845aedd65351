package dateutil

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testDate = time.Date(2026, time.March, 7, 15, 4, 5, 0, time.UTC)

func TestResolveDate_Auto(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"bare auto", "auto", "2026-03-07"},
		{"uppercase auto", "AUTO", "2026-03-07"},
		{"explicit tokens", "auto:DD/MM/YYYY", "07/03/2026"},
		{"two digit year", "auto:MM-DD-YY", "03-07-26"},
		{"month names", "auto:MMMM D, YYYY", "March 7, 2026"},
		{"abbreviated month", "auto:MMM D", "Mar 7"},
		{"single digit tokens", "auto:M/D/YYYY", "3/7/2026"},
		{"preset iso", "auto:iso", "2026-03-07"},
		{"preset european", "auto:european", "07/03/2026"},
		{"preset us", "auto:us", "03/07/2026"},
		{"preset long", "auto:long", "March 7, 2026"},
		{"preset case insensitive", "auto:ISO", "2026-03-07"},
		{"bracket literal", "auto:[Updated] YYYY-MM-DD", "Updated 2026-03-07"},
		{"literal separators kept", "auto:YYYY.MM.DD", "2026.03.07"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveDate(tt.value, testDate)
			if err != nil {
				t.Fatalf("ResolveDate(%q) error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("ResolveDate(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestResolveDate_Passthrough(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"", "2024-01-01", "March 1st", "draft date"} {
		got, err := ResolveDate(value, testDate)
		if err != nil {
			t.Fatalf("ResolveDate(%q) error: %v", value, err)
		}
		if got != value {
			t.Errorf("ResolveDate(%q) = %q, want passthrough", value, got)
		}
	}
}

func TestResolveDate_Errors(t *testing.T) {
	t.Parallel()

	// "automatic" starts with "auto" but carries no colon, so it is neither
	// a literal nor valid auto syntax.
	for _, value := range []string{"auto:", "auto:[unclosed YYYY", "automatic"} {
		_, err := ResolveDate(value, testDate)
		if !errors.Is(err, ErrInvalidDateFormat) {
			t.Errorf("ResolveDate(%q) err = %v, want ErrInvalidDateFormat", value, err)
		}
	}
}

func TestCompileFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   string
	}{
		{"YYYY-MM-DD", "2006-01-02"},
		{"DD/MM/YY", "02/01/06"},
		{"MMMM D", "January 2"},
		{"[DD] DD", "DD 02"},
		{"YYYY년 MM월", "2006년 01월"},
	}
	for _, tt := range tests {
		tt := tt
		got, err := compileFormat(tt.format)
		if err != nil {
			t.Fatalf("compileFormat(%q) error: %v", tt.format, err)
		}
		if got != tt.want {
			t.Errorf("compileFormat(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestCompileFormat_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format string
	}{
		{"empty", ""},
		{"too long", strings.Repeat("Y", maxFormatLength+1)},
		{"unclosed bracket", "[stuck YYYY"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := compileFormat(tt.format); !errors.Is(err, ErrInvalidDateFormat) {
				t.Errorf("compileFormat(%q) err = %v, want ErrInvalidDateFormat", tt.format, err)
			}
		})
	}
}
