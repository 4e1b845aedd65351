package engine

// Paper dimensions in inches.
const (
	letterWidthInches  = 8.5
	letterHeightInches = 11.0
	a4WidthInches      = 8.27
	a4HeightInches     = 11.69
	legalWidthInches   = 8.5
	legalHeightInches  = 14.0
)

// paperDimensions returns width and height in inches for the requested
// format and orientation. Unknown formats fall back to US Letter.
func paperDimensions(opts *RenderOptions) (width, height float64) {
	format := FormatLetter
	orientation := OrientationPortrait
	if opts != nil {
		if opts.Format != "" {
			format = opts.Format
		}
		if opts.Orientation != "" {
			orientation = opts.Orientation
		}
	}

	switch format {
	case FormatA4:
		width, height = a4WidthInches, a4HeightInches
	case FormatLegal:
		width, height = legalWidthInches, legalHeightInches
	default:
		width, height = letterWidthInches, letterHeightInches
	}

	if orientation == OrientationLandscape {
		width, height = height, width
	}
	return width, height
}

// margins returns the four margins in inches, defaulting to half an inch.
func margins(opts *RenderOptions) (top, bottom, left, right float64) {
	top, bottom, left, right = 0.5, 0.5, 0.5, 0.5
	if opts == nil {
		return
	}
	if opts.MarginTop > 0 {
		top = opts.MarginTop
	}
	if opts.MarginBottom > 0 {
		bottom = opts.MarginBottom
	}
	if opts.MarginLeft > 0 {
		left = opts.MarginLeft
	}
	if opts.MarginRight > 0 {
		right = opts.MarginRight
	}
	return
}

// scaleOf returns the render scale, defaulting to 1.0.
func scaleOf(opts *RenderOptions) float64 {
	if opts == nil || opts.Scale <= 0 {
		return 1.0
	}
	return opts.Scale
}
