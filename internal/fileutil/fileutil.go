// Package fileutil holds small file and path helpers shared by the config
// loader and the rendering engines.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
)

// WriteTempFile writes content to a fresh temp file named mdforge-*.<ext>
// and returns its path plus a cleanup func that removes it. The extension
// is validated so callers cannot smuggle path components into the name.
func WriteTempFile(content, extension string) (path string, cleanup func(), err error) {
	if err := validateExtension(extension); err != nil {
		return "", nil, err
	}

	f, err := os.CreateTemp("", "mdforge-*."+extension)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	path = f.Name()
	cleanup = func() { _ = os.Remove(path) }

	_, werr := f.WriteString(content)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		cleanup()
		if werr != nil {
			return "", nil, fmt.Errorf("writing temp file: %w", werr)
		}
		return "", nil, fmt.Errorf("closing temp file: %w", cerr)
	}

	return path, cleanup, nil
}

func validateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IsFilePath distinguishes file paths from bare names: anything containing
// a path separator is a path ("./custom.yaml"), anything without is a name
// to resolve against known locations ("professional").
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
