package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestStyle_Default(t *testing.T) {
	css, err := Style("default")
	if err != nil {
		t.Fatalf("Style(default): %v", err)
	}
	if !strings.Contains(css, "body") {
		t.Error("default stylesheet has no body rule")
	}
}

func TestStyle_NotFound(t *testing.T) {
	_, err := Style("nonexistent")
	if !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("err = %v, want ErrStyleNotFound", err)
	}
}

func TestStyle_RejectsTraversal(t *testing.T) {
	for _, name := range []string{"", "../secrets", "a/b", `a\b`, "style.css"} {
		if _, err := Style(name); !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("Style(%q) err = %v, want ErrInvalidAssetName", name, err)
		}
	}
}

func TestDefaultStyle_NeverEmpty(t *testing.T) {
	if DefaultStyle() == "" {
		t.Fatal("DefaultStyle returned empty CSS")
	}
}

func TestAvailableStyles(t *testing.T) {
	got := AvailableStyles()
	if len(got) < 2 {
		t.Fatalf("AvailableStyles = %v, want at least default and compact", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1] > got[i] {
			t.Errorf("styles not sorted: %v", got)
		}
	}
	found := false
	for _, name := range got {
		if name == DefaultStyleName {
			found = true
		}
	}
	if !found {
		t.Errorf("default style missing from %v", got)
	}
}
