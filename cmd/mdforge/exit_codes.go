package main

import (
	"errors"
	"os"

	"github.com/mdforge/mdforge"
	"github.com/mdforge/mdforge/engine"
	"github.com/mdforge/mdforge/internal/assets"
)

// Exit codes for the mdforge CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitEngine  = 4 // PDF engine/browser errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Engine errors (exit 4)
	if errors.Is(err, engine.ErrBrowserConnect) ||
		errors.Is(err, engine.ErrPageCreate) ||
		errors.Is(err, engine.ErrPageLoad) ||
		errors.Is(err, engine.ErrPDFGeneration) ||
		errors.Is(err, engine.ErrBackendNotFound) ||
		errors.Is(err, engine.ErrNoHealthyEngine) ||
		errors.Is(err, ErrGenerationFailed) {
		return ExitEngine
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, engine.ErrWritePDF) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrReadCSS) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, mdforge.ErrConfigNotFound) ||
		errors.Is(err, mdforge.ErrConfigParse) ||
		errors.Is(err, mdforge.ErrEmptyMarkdown) ||
		errors.Is(err, mdforge.ErrInvalidPageSize) ||
		errors.Is(err, mdforge.ErrInvalidOrientation) ||
		errors.Is(err, mdforge.ErrInvalidMargin) ||
		errors.Is(err, mdforge.ErrInvalidFooterPosition) ||
		errors.Is(err, mdforge.ErrInvalidWatermarkColor) ||
		errors.Is(err, mdforge.ErrInvalidTOCDepth) ||
		errors.Is(err, mdforge.ErrInvalidOrphans) ||
		errors.Is(err, mdforge.ErrInvalidWidows) ||
		errors.Is(err, engine.ErrUnknownEngine) ||
		errors.Is(err, engine.ErrUnknownStrategy) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) {
		return ExitUsage
	}

	return ExitGeneral
}
