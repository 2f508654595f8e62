package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math/rand/v2"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/shawnoster/bookcover-wallpaper/pkg/cache"
	"github.com/shawnoster/bookcover-wallpaper/pkg/compose"
	"github.com/shawnoster/bookcover-wallpaper/pkg/covers"
	"github.com/shawnoster/bookcover-wallpaper/pkg/errors"
	gr "github.com/shawnoster/bookcover-wallpaper/pkg/integrations/goodreads"
	"github.com/shawnoster/bookcover-wallpaper/pkg/integrations/googlebooks"
	"github.com/shawnoster/bookcover-wallpaper/pkg/integrations/openlibrary"
	"github.com/shawnoster/bookcover-wallpaper/pkg/masonry"
	"github.com/shawnoster/bookcover-wallpaper/pkg/observability"
	"github.com/shawnoster/bookcover-wallpaper/pkg/source"
)

// DefaultHTTPTTL is how long API responses are cached.
const DefaultHTTPTTL = 7 * 24 * time.Hour

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for its collaborators; it does not store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Covers downloads remote covers. When nil, only books that already
	// have a local file are used.
	Covers *covers.Manager

	// NewSource builds the source for a run. Defaults to [Runner.BuildSource].
	NewSource func(opts Options) (source.Source, error)

	google    *googlebooks.Client
	openlib   *openlibrary.Client
	goodreads *gr.Client
	httpTTL   time.Duration
}

// RunnerOption configures a [Runner].
type RunnerOption func(*Runner)

// WithCovers sets the cover download manager.
func WithCovers(m *covers.Manager) RunnerOption {
	return func(r *Runner) { r.Covers = m }
}

// WithHTTPTTL sets how long API responses stay cached.
func WithHTTPTTL(ttl time.Duration) RunnerOption {
	return func(r *Runner) { r.httpTTL = ttl }
}

// WithSourceFactory replaces how sources are built.
func WithSourceFactory(f func(opts Options) (source.Source, error)) RunnerOption {
	return func(r *Runner) { r.NewSource = f }
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger, opts ...RunnerOption) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		httpTTL: DefaultHTTPTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.google = googlebooks.NewClient(c, r.httpTTL)
	r.openlib = openlibrary.NewClient(c, r.httpTTL)
	r.goodreads = gr.NewClient(c, r.httpTTL)
	if r.NewSource == nil {
		r.NewSource = r.BuildSource
	}
	return r
}

// Execute runs the complete resolve → layout → compose pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	runID := uuid.NewString()
	opts.Logger = opts.Logger.With("run", runID[:8])
	result := &Result{RunID: runID, Format: opts.Format}

	// Stage 1: Resolve
	resolveStart := time.Now()
	books, stats, seed, err := r.resolve(ctx, opts)
	result.Stats = stats
	result.Stats.ResolveTime = time.Since(resolveStart)
	if err != nil {
		return nil, err
	}
	result.Books = books
	result.Seed = seed

	opts.Logger.Info("resolved covers",
		"books", stats.Books,
		"covers", len(books),
		"failed", stats.Failed,
		"duration", result.Stats.ResolveTime)

	// Stage 2: Layout
	refs := make([]string, len(books))
	for i, b := range books {
		refs[i] = b.CoverPath
	}
	layoutStart := time.Now()
	l, err := r.Layout(ctx, refs, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)

	opts.Logger.Info("computed layout",
		"columns", l.Plan.Columns,
		"cell", fmt.Sprintf("%dx%d", l.Plan.CoverWidth, l.Plan.CoverHeight),
		"overflow", l.Overflow())

	// Stage 3: Compose, unless the same covers were rendered before.
	key := r.Keyer.WallpaperKey(opts.WallpaperKeyOpts(fingerprints(refs)))
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			result.Data = data
			result.CacheInfo.WallpaperHit = true
			opts.Logger.Debug("wallpaper cache hit")
			return result, nil
		}
	}

	if err := r.render(ctx, l, opts, result); err != nil {
		return nil, err
	}
	if len(result.Skipped) == 0 {
		_ = r.Cache.Set(ctx, key, result.Data, TTLWallpaper)
	}
	return result, nil
}

// ExecuteLayout renders a previously computed layout instead of building
// one. Resolved covers fill the placements in order; placements left
// without a cover are dropped. The canvas comes from l, not opts.
// Rendered images are not cached.
func (r *Runner) ExecuteLayout(ctx context.Context, l masonry.Layout, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if len(l.Placements) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout has no placements")
	}

	runID := uuid.NewString()
	opts.Logger = opts.Logger.With("run", runID[:8])
	result := &Result{RunID: runID, Format: opts.Format}

	resolveStart := time.Now()
	books, stats, seed, err := r.resolve(ctx, opts)
	result.Stats = stats
	result.Stats.ResolveTime = time.Since(resolveStart)
	if err != nil {
		return nil, err
	}
	result.Seed = seed

	n := min(len(books), len(l.Placements))
	if n < len(l.Placements) {
		opts.Logger.Warn("layout has more cells than covers",
			"cells", len(l.Placements),
			"covers", len(books))
	}
	bound := l
	bound.Placements = make([]masonry.Placement, n)
	for i := range n {
		p := l.Placements[i]
		p.Ref = books[i].CoverPath
		bound.Placements[i] = p
	}
	result.Books = books[:n]
	result.Layout = bound

	if err := r.render(ctx, bound, opts, result); err != nil {
		return nil, err
	}
	return result, nil
}

// render composes l and encodes it into result.
func (r *Runner) render(ctx context.Context, l masonry.Layout, opts Options, result *Result) error {
	composeStart := time.Now()
	img, report, err := r.Compose(ctx, l, opts)
	if err != nil {
		return fmt.Errorf("compose: %w", err)
	}
	result.Skipped = report.Skipped

	var buf bytes.Buffer
	if err := compose.Encode(&buf, img, opts.Format); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	result.Data = buf.Bytes()
	result.Stats.ComposeTime = time.Since(composeStart)

	opts.Logger.Info("composed wallpaper",
		"drawn", report.Drawn,
		"skipped", len(report.Skipped),
		"bytes", len(result.Data),
		"duration", result.Stats.ComposeTime)
	return nil
}

// Resolve lists books from the configured source and makes sure each has a
// local cover file. It fails with NO_COVERS when none is left.
func (r *Runner) Resolve(ctx context.Context, opts Options) ([]source.Book, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForSource(); err != nil {
		return nil, err
	}
	books, _, _, err := r.resolve(ctx, opts)
	return books, err
}

func (r *Runner) resolve(ctx context.Context, opts Options) (books []source.Book, stats Stats, seed uint64, err error) {
	hooks := observability.Pipeline()
	hooks.OnResolveStart(ctx, opts.Source, opts.Limit)
	start := time.Now()
	defer func() {
		hooks.OnResolveComplete(ctx, opts.Source, len(books), time.Since(start), err)
	}()

	src, err := r.NewSource(opts)
	if err != nil {
		return nil, stats, 0, err
	}
	listed, err := src.Books(ctx, opts.Limit)
	if err != nil {
		return nil, stats, 0, fmt.Errorf("%s source: %w", src.Name(), err)
	}
	stats.Books = len(listed)

	if opts.Shuffle {
		seed = opts.Seed
		if seed == 0 {
			seed = rand.Uint64()
		}
		Shuffle(listed, seed)
		opts.Logger.Debug("shuffled books", "seed", seed)
	}

	books = r.downloadCovers(ctx, listed, opts, &stats)
	if err := ctx.Err(); err != nil {
		return nil, stats, seed, err
	}
	stats.Covers = len(books)
	if len(books) == 0 {
		return nil, stats, seed, errors.New(errors.ErrCodeNoCovers, "no covers available")
	}
	return books, stats, seed, nil
}

func (r *Runner) downloadCovers(ctx context.Context, books []source.Book, opts Options, stats *Stats) []source.Book {
	if r.Covers != nil {
		resolved, cs := r.Covers.Resolve(ctx, books)
		stats.Downloaded = cs.Downloaded
		stats.Failed = cs.Failed
		return resolved
	}

	local := make([]source.Book, 0, len(books))
	for _, b := range books {
		if b.CoverPath != "" {
			local = append(local, b)
			continue
		}
		opts.Logger.Warn("no cover cache configured, skipping", "book", b.String())
		stats.Failed++
	}
	return local
}

// Layout computes the masonry layout for refs.
func (r *Runner) Layout(ctx context.Context, refs []string, opts Options) (l masonry.Layout, err error) {
	if err := opts.ValidateForLayout(); err != nil {
		return masonry.Layout{}, err
	}
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(refs))
	start := time.Now()
	defer func() {
		hooks.OnLayoutComplete(ctx, l.Plan.Columns, time.Since(start), err)
	}()

	return masonry.Build(opts.Canvas(), opts.AspectRatio(), refs, opts.LayoutOptions()...)
}

// Compose renders l onto a canvas.
func (r *Runner) Compose(ctx context.Context, l masonry.Layout, opts Options) (img *image.NRGBA, report compose.Report, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForCompose(); err != nil {
		return nil, report, err
	}
	hooks := observability.Pipeline()
	hooks.OnComposeStart(ctx, len(l.Placements))
	start := time.Now()
	defer func() {
		hooks.OnComposeComplete(ctx, len(report.Skipped), time.Since(start), err)
	}()

	return compose.Compose(ctx, l.Placements,
		compose.WithSize(l.Canvas.Width, l.Canvas.Height),
		compose.WithBackground(opts.BackgroundColor()),
		compose.WithAspect(l.Aspect),
		compose.WithLogger(opts.Logger),
	)
}

// Shuffle permutes books deterministically for a given seed.
func Shuffle(books []source.Book, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(books), func(i, j int) {
		books[i], books[j] = books[j], books[i]
	})
}

// fingerprints identifies cover files by path, size and modification time
// so that a replaced file invalidates cached wallpapers.
func fingerprints(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			out[i] = p
			continue
		}
		out[i] = fmt.Sprintf("%s|%d|%d", p, info.Size(), info.ModTime().UnixNano())
	}
	return out
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
