package compose

import (
	"context"
	"image"
	"image/color"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/shawnoster/bookcover-wallpaper/pkg/errors"
	"github.com/shawnoster/bookcover-wallpaper/pkg/masonry"
)

const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
)

// DefaultBackground is the canvas fill, a dark gray.
var DefaultBackground = color.NRGBA{R: 30, G: 30, B: 30, A: 255}

// Option configures [Compose].
type Option func(*composer)

type composer struct {
	width, height int
	background    color.NRGBA
	aspect        masonry.AspectRatio
	concurrency   int
	logger        *log.Logger
}

// WithSize sets the canvas size (default 1920x1080).
func WithSize(width, height int) Option {
	return func(c *composer) { c.width, c.height = width, height }
}

// WithBackground sets the canvas fill. Transparent covers are flattened
// onto the same color. Alpha is forced to opaque.
func WithBackground(bg color.NRGBA) Option {
	return func(c *composer) {
		bg.A = 255
		c.background = bg
	}
}

// WithAspect sets the ratio covers are cropped to before they are scaled
// into a cell. Without it the cell's own rounded width:height is used.
func WithAspect(aspect masonry.AspectRatio) Option {
	return func(c *composer) { c.aspect = aspect }
}

// WithConcurrency bounds how many tiles are decoded at once
// (default GOMAXPROCS).
func WithConcurrency(n int) Option {
	return func(c *composer) { c.concurrency = n }
}

// WithLogger sets the logger for skipped tiles.
func WithLogger(l *log.Logger) Option {
	return func(c *composer) { c.logger = l }
}

// Skip records a tile that could not be drawn.
type Skip struct {
	Ref string
	Err error
}

// Report summarizes a composition.
type Report struct {
	Drawn   int    // Tiles pasted onto the canvas
	Clipped int    // Placements entirely below or right of the canvas
	Skipped []Skip // Tiles that failed to load
}

// Compose renders placements onto a new canvas. Tiles are prepared in
// parallel and pasted in placement order. The only error is the context's.
func Compose(ctx context.Context, placements []masonry.Placement, opts ...Option) (*image.NRGBA, Report, error) {
	c := composer{
		width:       DefaultWidth,
		height:      DefaultHeight,
		background:  DefaultBackground,
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}

	var report Report
	if err := errors.ValidateDimensions(c.width, c.height); err != nil {
		return nil, report, err
	}

	canvas := imaging.New(c.width, c.height, c.background)
	bounds := canvas.Bounds()

	tiles := make([]*image.NRGBA, len(placements))
	errs := make([]error, len(placements))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, c.concurrency))
	for i, p := range placements {
		if !p.Rect().Overlaps(bounds) {
			report.Clipped++
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tiles[i], errs[i] = c.tile(p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, report, err
	}
	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	for i, p := range placements {
		if errs[i] != nil {
			c.logger.Warn("skipping cover", "ref", p.Ref, "err", errs[i])
			report.Skipped = append(report.Skipped, Skip{Ref: p.Ref, Err: errs[i]})
			continue
		}
		if tiles[i] == nil {
			continue
		}
		draw.Draw(canvas, p.Rect(), tiles[i], image.Point{}, draw.Src)
		report.Drawn++
	}
	return canvas, report, nil
}

// tile loads the cover for p and fits it to the cell.
func (c *composer) tile(p masonry.Placement) (*image.NRGBA, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cell %dx%d has no area", p.Width, p.Height)
	}
	src, err := imaging.Open(p.Ref, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "open %s", p.Ref)
	}
	if c.aspect.W > 0 && c.aspect.H > 0 {
		return FitAspect(src, p.Width, p.Height, c.aspect, c.background), nil
	}
	return Fit(src, p.Width, p.Height, c.background), nil
}

// Fit flattens src onto bg, crops it to the aspect ratio of width:height
// and resizes it to exactly width x height.
func Fit(src image.Image, width, height int, bg color.NRGBA) *image.NRGBA {
	return FitAspect(src, width, height, masonry.AspectRatio{W: width, H: height}, bg)
}

// FitAspect is [Fit] with the crop taken at aspect instead of the cell's
// proportion. Cells are whole pixels, so the final resize may stretch the
// crop by under a pixel.
func FitAspect(src image.Image, width, height int, aspect masonry.AspectRatio, bg color.NRGBA) *image.NRGBA {
	b := src.Bounds()
	flat := imaging.New(b.Dx(), b.Dy(), bg)
	flat = imaging.Overlay(flat, src, image.Point{}, 1.0)
	cropped := CropToAspect(flat, aspect.W, aspect.H)
	return imaging.Resize(cropped, width, height, imaging.Lanczos)
}

// CropToAspect center-crops the longer dimension of img so that its
// proportion matches width:height. The other dimension is kept.
func CropToAspect(img image.Image, width, height int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 || width <= 0 || height <= 0 {
		return imaging.Clone(img)
	}

	target := float64(width) / float64(height)
	cw, ch := w, h
	if float64(w)/float64(h) > target {
		cw = max(1, int(float64(h)*target+0.5))
	} else {
		ch = max(1, int(float64(w)/target+0.5))
	}
	if cw == w && ch == h {
		return imaging.Clone(img)
	}
	return imaging.CropCenter(img, cw, ch)
}
