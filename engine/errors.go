package engine

import "errors"

// Sentinel errors for the engine registry and orchestration layer.
var (
	ErrUnknownEngine   = errors.New("unknown engine")
	ErrUnknownStrategy = errors.New("unknown selection strategy")
	ErrEngineConstruct = errors.New("engine construction failed")
	ErrNoHealthyEngine = errors.New("No healthy PDF engines available")

	// Rendering backend errors shared by the browser-based adapters.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrWritePDF       = errors.New("failed to write PDF file")

	// CLI backend errors.
	ErrBackendNotFound = errors.New("rendering backend not found")
)
