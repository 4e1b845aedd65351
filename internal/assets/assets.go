// Package assets provides the built-in print stylesheets embedded in the
// binary. Styles are addressed by bare name ("default", "github"); names are
// validated to prevent path traversal into the embedded filesystem.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"
)

//go:embed styles/*.css
var styles embed.FS

// Sentinel errors for asset lookup.
var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrInvalidAssetName = errors.New("invalid asset name")
)

// DefaultStyleName is the stylesheet applied when none is requested.
const DefaultStyleName = "default"

// Style returns the CSS content of a built-in stylesheet by name.
// The name must not include the .css extension.
func Style(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	return string(content), nil
}

// DefaultStyle returns the default stylesheet. The file is embedded, so a
// read failure is a build defect; it panics rather than returning an error.
func DefaultStyle() string {
	content, err := Style(DefaultStyleName)
	if err != nil {
		panic("assets: missing embedded default stylesheet: " + err.Error())
	}
	return content
}

// AvailableStyles lists the built-in style names, sorted.
func AvailableStyles() []string {
	entries, err := styles.ReadDir("styles")
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".css"))
	}
	sort.Strings(names)
	return names
}

// ValidateAssetName checks that an asset name is safe for use as a filename.
// Returns ErrInvalidAssetName if the name is empty or contains path
// separators, dots (which could allow extension manipulation), or traversal
// characters.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
