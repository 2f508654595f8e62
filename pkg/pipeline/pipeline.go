// Package pipeline runs the resolve → layout → compose pipeline that turns
// a book source into a wallpaper image.
//
// The CLI, the watch loop and the preview server all go through [Runner],
// so defaults, validation, caching and logging behave the same everywhere.
//
// # Stages
//
//  1. Resolve: list books from a source and download their covers
//  2. Layout: choose the masonry grid and place every cover
//  3. Compose: paste the covers onto the canvas and encode the image
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger, pipeline.WithCovers(mgr))
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source: "local",
//	    Path:   "~/Pictures/covers",
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("wallpaper.png", result.Data, 0o644)
//
// Each stage can also be run on its own with [Runner.Resolve],
// [Runner.Layout] and [Runner.Compose].
package pipeline

import (
	"image/color"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/shawnoster/bookcover-wallpaper/pkg/cache"
	"github.com/shawnoster/bookcover-wallpaper/pkg/compose"
	"github.com/shawnoster/bookcover-wallpaper/pkg/errors"
	"github.com/shawnoster/bookcover-wallpaper/pkg/masonry"
	"github.com/shawnoster/bookcover-wallpaper/pkg/source"
	"github.com/shawnoster/bookcover-wallpaper/pkg/source/goodreads"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	DefaultWidth      = 1920
	DefaultHeight     = 1080
	DefaultGap        = 4
	DefaultLimit      = source.DefaultLimit
	DefaultBackground = "#1e1e1e"
	DefaultFormat     = compose.FormatPNG

	// TTLWallpaper bounds how long a rendered wallpaper is reused for the
	// same covers and options.
	TTLWallpaper = 24 * time.Hour
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for the preview server.
type Options struct {
	// Source options
	Source    string `json:"source"`
	Path      string `json:"path,omitempty"`      // Cover directory (local)
	Goodreads string `json:"goodreads,omitempty"` // CSV path, user ID or RSS URL
	Shelf     string `json:"shelf,omitempty"`
	Query     string `json:"query,omitempty"`
	Genre     string `json:"genre,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Shuffle   bool   `json:"shuffle,omitempty"`
	Seed      uint64 `json:"seed,omitempty"` // 0 picks a random seed when shuffling
	Refresh   bool   `json:"refresh,omitempty"`

	// Layout options
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	Gap      *int    `json:"gap,omitempty"` // nil means DefaultGap; 0 is a valid gap
	Aspect   string  `json:"aspect,omitempty"`
	Overfill float64 `json:"overfill,omitempty"`
	Columns  int     `json:"columns,omitempty"`

	// Compose options
	Background string         `json:"background,omitempty"`
	Format     compose.Format `json:"format,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	aspect     masonry.AspectRatio
	background color.NRGBA
	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in log lines.
	RunID string

	// Books are the books whose covers were placed, in placement order.
	Books []source.Book

	// Layout is the computed masonry layout.
	Layout masonry.Layout

	// Data is the encoded wallpaper.
	Data   []byte
	Format compose.Format

	// Seed is the shuffle seed actually used (0 when not shuffled).
	Seed uint64

	// Skipped lists covers the compositor could not draw.
	Skipped []compose.Skip

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Books       int // Books returned by the source
	Covers      int // Covers available after download
	Downloaded  int
	Failed      int
	ResolveTime time.Duration
	LayoutTime  time.Duration
	ComposeTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	WallpaperHit bool // Whether the encoded image came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// GapOf returns a pointer to n, for setting [Options.Gap].
func GapOf(n int) *int { return &n }

// ValidateAndSetDefaults checks every field and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForSource(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForCompose(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForSource checks the fields the resolve stage needs.
func (o *Options) ValidateForSource() error {
	o.setLogger()
	if o.Source == "" {
		o.Source = string(source.KindLocal)
	}
	kind, err := source.ParseKind(o.Source)
	if err != nil {
		return err
	}
	o.Source = string(kind)

	switch kind {
	case source.KindLocal:
		if o.Path == "" {
			return errors.New(errors.ErrCodeInvalidSource, "local source requires a cover directory")
		}
	case source.KindGoodreads:
		if o.Goodreads == "" {
			return errors.New(errors.ErrCodeInvalidSource, "goodreads source requires a CSV export, user ID or RSS URL")
		}
		if o.Shelf == "" {
			o.Shelf = goodreads.DefaultShelf
		}
	case source.KindSearch:
		if o.Query == "" && o.Genre == "" {
			return errors.New(errors.ErrCodeInvalidSource, "search source requires a query or a genre")
		}
	}

	if o.Limit < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "limit must be non-negative, got %d", o.Limit)
	}
	if o.Limit == 0 {
		o.Limit = DefaultLimit
	}
	return nil
}

// ValidateForLayout checks canvas and grid fields and applies defaults.
func (o *Options) ValidateForLayout() error {
	o.setLogger()
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Gap == nil {
		o.Gap = GapOf(DefaultGap)
	}
	if o.Aspect == "" {
		o.Aspect = masonry.DefaultAspect.String()
	}
	if o.Overfill == 0 {
		o.Overfill = masonry.DefaultOverfill
	}
	if o.Columns < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "columns must be non-negative, got %d", o.Columns)
	}

	aspect, err := masonry.ParseAspectRatio(o.Aspect)
	if err != nil {
		return err
	}
	o.aspect = aspect
	return o.Canvas().Validate()
}

// ValidateForCompose checks the background and output format.
func (o *Options) ValidateForCompose() error {
	o.setLogger()
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	bg, err := errors.ParseColor(o.Background)
	if err != nil {
		return err
	}
	o.background = bg

	if o.Format == "" {
		o.Format = DefaultFormat
	}
	format, err := compose.ParseFormat(string(o.Format))
	if err != nil {
		return err
	}
	o.Format = format
	return nil
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Canvas returns the target surface.
func (o *Options) Canvas() masonry.Canvas {
	gap := DefaultGap
	if o.Gap != nil {
		gap = *o.Gap
	}
	return masonry.Canvas{Width: o.Width, Height: o.Height, Gap: gap}
}

// AspectRatio returns the parsed cover proportion. Valid after
// ValidateForLayout.
func (o *Options) AspectRatio() masonry.AspectRatio { return o.aspect }

// BackgroundColor returns the parsed background. Valid after
// ValidateForCompose.
func (o *Options) BackgroundColor() color.NRGBA { return o.background }

// LayoutOptions returns the masonry options for this run.
func (o *Options) LayoutOptions() []masonry.Option {
	return []masonry.Option{
		masonry.WithOverfill(o.Overfill),
		masonry.WithColumns(o.Columns),
	}
}

// WallpaperKeyOpts returns cache key options for a rendered wallpaper.
// covers identifies the cover files, including their size and mtime.
func (o *Options) WallpaperKeyOpts(covers []string) cache.WallpaperKeyOpts {
	return cache.WallpaperKeyOpts{
		Covers:     covers,
		Width:      o.Width,
		Height:     o.Height,
		Gap:        o.Canvas().Gap,
		Aspect:     o.Aspect,
		Overfill:   o.Overfill,
		Columns:    o.Columns,
		Background: o.Background,
		Format:     string(o.Format),
	}
}
