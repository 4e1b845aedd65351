package mdforge

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown         = errors.New("markdown content cannot be empty")
	ErrNoOutputPath          = errors.New("output path cannot be empty")
	ErrProtectionUnsupported = errors.New("password protection is not supported by any available engine")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")

	// Footer validation errors.
	ErrInvalidFooterPosition = errors.New("invalid footer position")

	// Watermark validation errors.
	ErrInvalidWatermarkColor = errors.New("invalid watermark color")

	// TOC validation errors.
	ErrInvalidTOCDepth = errors.New("invalid TOC depth")

	// Page breaks validation errors.
	ErrInvalidOrphans = errors.New("invalid orphans value")
	ErrInvalidWidows  = errors.New("invalid widows value")
)
