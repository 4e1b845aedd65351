package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// watermarkAngleSentinel detects if --wm-angle was explicitly set.
// Since 0 is a valid angle (horizontal), we use an out-of-range sentinel.
// Valid range is -90 to 90; -999 is safely outside this range.
const watermarkAngleSentinel = -999.0

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// footerFlags holds footer-related flags.
type footerFlags struct {
	position   string
	text       string
	pageNumber bool
	date       string
	status     string
	disabled   bool
}

// tocFlags holds table of contents flags.
type tocFlags struct {
	title    string
	minDepth int
	maxDepth int
	enabled  bool
}

// watermarkFlags holds watermark-related flags.
type watermarkFlags struct {
	text    string
	color   string
	opacity float64
	angle   float64
}

// pageBreakFlags holds page break flags.
type pageBreakFlags struct {
	breakBefore string
	orphans     int
	widows      int
	disabled    bool
}

// engineFlags holds PDF engine selection flags.
type engineFlags struct {
	primary   string
	fallbacks []string
	strategy  string
	retries   int
}

// styleFlags holds stylesheet flags.
type styleFlags struct {
	style   string // built-in stylesheet name
	cssFile string // external CSS file path
	noStyle bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common     commonFlags
	output     string
	workers    int
	timeout    string
	title      string
	page       pageFlags
	footer     footerFlags
	toc        tocFlags
	watermark  watermarkFlags
	pageBreaks pageBreakFlags
	engine     engineFlags
	style      styleFlags
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common commonFlags
	listen string
	engine engineFlags
	style  styleFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0.25-3.0)")
}

// addFooterFlags adds footer flags to a FlagSet.
func addFooterFlags(fs *flag.FlagSet, f *footerFlags) {
	fs.StringVar(&f.position, "footer-position", "", "footer position: left, center, right")
	fs.StringVar(&f.text, "footer-text", "", "custom footer text")
	fs.BoolVar(&f.pageNumber, "footer-page-number", false, "show page numbers in footer")
	fs.StringVar(&f.date, "footer-date", "", "footer date (\"auto\", \"auto:FORMAT\", or literal)")
	fs.StringVar(&f.status, "footer-status", "", "footer status text (e.g. DRAFT)")
	fs.BoolVar(&f.disabled, "no-footer", false, "disable footer")
}

// addTOCFlags adds TOC flags to a FlagSet.
func addTOCFlags(fs *flag.FlagSet, f *tocFlags) {
	fs.BoolVar(&f.enabled, "toc", false, "insert a table of contents")
	fs.StringVar(&f.title, "toc-title", "", "table of contents heading")
	fs.IntVar(&f.minDepth, "toc-min-depth", 0, "min heading depth for TOC (1-6, default: 2)")
	fs.IntVar(&f.maxDepth, "toc-max-depth", 0, "max heading depth for TOC (1-6, default: 3)")
}

// addWatermarkFlags adds watermark flags to a FlagSet.
func addWatermarkFlags(fs *flag.FlagSet, f *watermarkFlags) {
	fs.StringVar(&f.text, "wm-text", "", "watermark text")
	fs.StringVar(&f.color, "wm-color", "", "watermark color (hex)")
	fs.Float64Var(&f.opacity, "wm-opacity", 0, "watermark opacity (0.0-1.0)")
	fs.Float64Var(&f.angle, "wm-angle", watermarkAngleSentinel, "watermark angle in degrees")
}

// addPageBreakFlags adds page break flags to a FlagSet.
func addPageBreakFlags(fs *flag.FlagSet, f *pageBreakFlags) {
	fs.StringVar(&f.breakBefore, "break-before", "", "page breaks before headings: h1,h2,h3")
	fs.IntVar(&f.orphans, "orphans", 0, "min lines at page bottom (1-10)")
	fs.IntVar(&f.widows, "widows", 0, "min lines at page top (1-10)")
	fs.BoolVar(&f.disabled, "no-page-breaks", false, "disable page break features")
}

// addEngineFlags adds PDF engine selection flags to a FlagSet.
func addEngineFlags(fs *flag.FlagSet, f *engineFlags) {
	fs.StringVar(&f.primary, "engine", "", "primary PDF engine: rod, chromedp, weasyprint")
	fs.StringSliceVar(&f.fallbacks, "fallback", nil, "fallback engines in order")
	fs.StringVar(&f.strategy, "strategy", "", "engine selection strategy: health-first, primary-first, load-balanced, capability-based, adaptive")
	fs.IntVar(&f.retries, "retries", 0, "generation attempts before giving up")
}

// addStyleFlags adds stylesheet flags to a FlagSet.
func addStyleFlags(fs *flag.FlagSet, f *styleFlags) {
	fs.StringVar(&f.style, "style", "", "built-in stylesheet name")
	fs.StringVar(&f.cssFile, "css", "", "external CSS file")
	fs.BoolVar(&f.noStyle, "no-style", false, "disable CSS styling")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f := &convertFlags{}

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF generation timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.title, "title", "", "document title (\"\" = auto from H1)")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)
	addFooterFlags(fs, &f.footer)
	addTOCFlags(fs, &f.toc)
	addWatermarkFlags(fs, &f.watermark)
	addPageBreakFlags(fs, &f.pageBreaks)
	addEngineFlags(fs, &f.engine)
	addStyleFlags(fs, &f.style)

	fs.Usage = func() { printConvertUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string) (*serveFlags, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	f := &serveFlags{}

	fs.StringVarP(&f.listen, "listen", "l", "", "HTTP bind address (default :8080)")

	addCommonFlags(fs, &f.common)
	addEngineFlags(fs, &f.engine)
	addStyleFlags(fs, &f.style)

	fs.Usage = func() { printServeUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return f, nil
}
