package cli

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/shawnoster/bookcover-wallpaper/pkg/config"
	"github.com/shawnoster/bookcover-wallpaper/pkg/pipeline"
)

// canvasFlags are the layout inputs shared by generate, layout and serve.
type canvasFlags struct {
	width    int
	height   int
	gap      int
	aspect   string
	overfill float64
	columns  int
}

func (f *canvasFlags) register(fs *pflag.FlagSet) {
	def := config.Default()
	fs.IntVar(&f.width, "width", def.Width, "wallpaper width in pixels")
	fs.IntVar(&f.height, "height", def.Height, "wallpaper height in pixels")
	fs.IntVar(&f.gap, "gap", def.Gap, "gap between covers and around the edges")
	fs.StringVar(&f.aspect, "aspect", def.Aspect, "cover aspect ratio as W:H")
	fs.Float64Var(&f.overfill, "overfill", def.Overfill, "ratio of cover area to canvas area")
	fs.IntVar(&f.columns, "columns", 0, "force a column count (0 = automatic)")
}

// applyConfig copies config values into every flag the user did not set.
func (f *canvasFlags) applyConfig(fs *pflag.FlagSet, cfg config.Config) {
	unset := func(name string) bool { return !fs.Changed(name) }
	if unset("width") {
		f.width = cfg.Width
	}
	if unset("height") {
		f.height = cfg.Height
	}
	if unset("gap") {
		f.gap = cfg.Gap
	}
	if unset("aspect") {
		f.aspect = cfg.Aspect
	}
	if unset("overfill") {
		f.overfill = cfg.Overfill
	}
	if unset("columns") {
		f.columns = cfg.Columns
	}
}

func (f *canvasFlags) options(opts *pipeline.Options) {
	opts.Width = f.width
	opts.Height = f.height
	opts.Gap = pipeline.GapOf(f.gap)
	opts.Aspect = f.aspect
	opts.Overfill = f.overfill
	opts.Columns = f.columns
}

// wallpaperFlags are the full set of pipeline inputs.
type wallpaperFlags struct {
	canvasFlags

	source     string
	path       string
	goodreads  string
	shelf      string
	query      string
	genre      string
	limit      int
	shuffle    bool
	seed       uint64
	background string

	noCache     bool
	refresh     bool
	concurrency int
	timeout     time.Duration
}

func (f *wallpaperFlags) register(fs *pflag.FlagSet) {
	def := config.Default()
	f.canvasFlags.register(fs)

	fs.StringVar(&f.source, "source", def.Source.Kind, "book source: local, goodreads or search")
	fs.StringVar(&f.path, "path", "", "cover image directory (local source)")
	fs.StringVar(&f.goodreads, "goodreads", "", "Goodreads CSV export, user ID or RSS URL")
	fs.StringVar(&f.shelf, "shelf", def.Source.Shelf, "Goodreads shelf")
	fs.StringVar(&f.query, "query", "", "search query (search source)")
	fs.StringVar(&f.genre, "genre", "", "genre or subject (search source)")
	fs.IntVar(&f.limit, "limit", def.Limit, "maximum number of books")
	fs.BoolVar(&f.shuffle, "shuffle", false, "shuffle covers before layout")
	fs.Uint64Var(&f.seed, "seed", 0, "shuffle seed (implies --shuffle)")
	fs.StringVar(&f.background, "background", def.Background, "background color (#rrggbb or r,g,b)")

	fs.BoolVar(&f.noCache, "no-cache", false, "disable the API response cache")
	fs.BoolVar(&f.refresh, "refresh", false, "ignore cached responses, covers and wallpapers")
	fs.IntVar(&f.concurrency, "concurrency", def.Concurrency, "parallel cover downloads")
	fs.DurationVar(&f.timeout, "timeout", def.Timeout.Duration, "per-cover download timeout")
}

func (f *wallpaperFlags) applyConfig(fs *pflag.FlagSet, cfg config.Config) {
	f.canvasFlags.applyConfig(fs, cfg)

	unset := func(name string) bool { return !fs.Changed(name) }
	if unset("source") {
		f.source = cfg.Source.Kind
	}
	if unset("path") {
		f.path = cfg.Source.Path
	}
	if unset("goodreads") {
		f.goodreads = cfg.Source.Goodreads
	}
	if unset("shelf") {
		f.shelf = cfg.Source.Shelf
	}
	if unset("query") {
		f.query = cfg.Source.Query
	}
	if unset("genre") {
		f.genre = cfg.Source.Genre
	}
	if unset("limit") {
		f.limit = cfg.Limit
	}
	if unset("shuffle") {
		f.shuffle = cfg.Shuffle
	}
	if unset("background") {
		f.background = cfg.Background
	}
	if unset("concurrency") {
		f.concurrency = cfg.Concurrency
	}
	if unset("timeout") {
		f.timeout = cfg.Timeout.Duration
	}
	if fs.Changed("seed") {
		f.shuffle = true
	}
}

// options converts the flags into pipeline options.
func (f *wallpaperFlags) options() pipeline.Options {
	opts := pipeline.Options{
		Source:     f.source,
		Path:       f.path,
		Goodreads:  f.goodreads,
		Shelf:      f.shelf,
		Query:      f.query,
		Genre:      f.genre,
		Limit:      f.limit,
		Shuffle:    f.shuffle,
		Seed:       f.seed,
		Refresh:    f.refresh,
		Background: f.background,
	}
	f.canvasFlags.options(&opts)
	return opts
}

func (f *wallpaperFlags) runnerOpts() runnerOpts {
	return runnerOpts{
		noCache:     f.noCache,
		refresh:     f.refresh,
		concurrency: f.concurrency,
		timeout:     f.timeout,
	}
}
