package masonry

import (
	"math"

	"github.com/shawnoster/bookcover-wallpaper/pkg/errors"
)

// DefaultOverfill is the ratio of total cover area to canvas area. Values
// above 1 trade bottom clipping for a canvas with no uncovered strip.
const DefaultOverfill = 1.4

// Option configures layout computation.
type Option func(*config)

type config struct {
	overfill float64
	columns  int
}

// WithOverfill sets the overfill factor (default [DefaultOverfill]).
func WithOverfill(f float64) Option {
	return func(c *config) { c.overfill = f }
}

// WithColumns forces a column count instead of deriving one from the cover
// count. Values ≤ 0 keep automatic sizing. Only [Build] honours it.
func WithColumns(n int) Option {
	return func(c *config) { c.columns = n }
}

func newConfig(opts []Option) config {
	c := config{overfill: DefaultOverfill}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ChooseLayout picks a column count and uniform cell size for count covers
// on canvas.
//
// The cell width solves count·w²·(H/W) = area·overfill, is turned into a
// column count, and is then snapped so that the columns plus (columns+1)
// gaps fill the canvas width. A count of 0 yields the single-column plan.
func ChooseLayout(canvas Canvas, aspect AspectRatio, count int, opts ...Option) (Plan, error) {
	cfg := newConfig(opts)
	if err := validate(canvas, aspect, count, cfg); err != nil {
		return Plan{}, err
	}
	if count == 0 {
		return PlanForColumns(canvas, aspect, 1), nil
	}

	area := float64(canvas.Width) * float64(canvas.Height)
	width := math.Sqrt(area * cfg.overfill * float64(aspect.W) / (float64(count) * float64(aspect.H)))

	gap := float64(canvas.Gap)
	columns := math.Floor((float64(canvas.Width) + gap) / (width + gap))
	columns = math.Min(columns, float64(MaxColumns(canvas)))
	return PlanForColumns(canvas, aspect, max(1, int(columns))), nil
}

// MaxColumns returns the largest column count that still leaves every cell
// at least one pixel wide, or 1 when even a single cell does not fit.
func MaxColumns(canvas Canvas) int {
	return max(1, (canvas.Width-canvas.Gap)/(1+canvas.Gap))
}

// PlanForColumns snaps the cell width so that columns cells and
// columns+1 gaps fill the canvas width, and derives the cell height from
// aspect. columns is capped at [MaxColumns]. When the gap leaves no room
// for even one cell, the plan is clamped to a single column of width
// max(1, Width-2·Gap).
//
// Inputs are assumed valid; see [ChooseLayout] for validation.
func PlanForColumns(canvas Canvas, aspect AspectRatio, columns int) Plan {
	columns = min(max(1, columns), MaxColumns(canvas))
	width := (canvas.Width - (columns+1)*canvas.Gap) / columns
	if width <= 0 {
		columns = 1
		width = max(1, canvas.Width-2*canvas.Gap)
	}
	return Plan{
		Columns:     columns,
		CoverWidth:  width,
		CoverHeight: heightFor(width, aspect),
	}
}

func heightFor(width int, aspect AspectRatio) int {
	h := int(math.Round(float64(width) * float64(aspect.H) / float64(aspect.W)))
	return max(1, h)
}

// PlaceCovers assigns every ref to the currently shortest column (lowest
// index wins ties) and returns one placement per ref in input order.
//
// Column heights start at gap so the first row sits one gap below the top
// edge. Placements may extend past the canvas height.
func PlaceCovers(refs []string, plan Plan, gap int) []Placement {
	placements := make([]Placement, 0, len(refs))
	if len(refs) == 0 {
		return placements
	}

	heights := make([]int, max(1, plan.Columns))
	for i := range heights {
		heights[i] = gap
	}

	for _, ref := range refs {
		c := shortest(heights)
		placements = append(placements, Placement{
			Ref:    ref,
			X:      gap + c*(plan.CoverWidth+gap),
			Y:      heights[c],
			Width:  plan.CoverWidth,
			Height: plan.CoverHeight,
		})
		heights[c] += plan.CoverHeight + gap
	}
	return placements
}

// shortest returns the index of the minimum height, preferring the lowest
// index on ties.
func shortest(heights []int) int {
	best := 0
	for i := 1; i < len(heights); i++ {
		if heights[i] < heights[best] {
			best = i
		}
	}
	return best
}

// Build chooses a plan for len(refs) covers and places them.
// [WithColumns] bypasses area-driven column selection.
func Build(canvas Canvas, aspect AspectRatio, refs []string, opts ...Option) (Layout, error) {
	cfg := newConfig(opts)
	if err := validate(canvas, aspect, len(refs), cfg); err != nil {
		return Layout{}, err
	}

	var plan Plan
	if cfg.columns > 0 {
		plan = PlanForColumns(canvas, aspect, cfg.columns)
	} else {
		var err error
		if plan, err = ChooseLayout(canvas, aspect, len(refs), opts...); err != nil {
			return Layout{}, err
		}
	}

	return Layout{
		Canvas:     canvas,
		Aspect:     aspect,
		Overfill:   cfg.overfill,
		Plan:       plan,
		Placements: PlaceCovers(refs, plan, canvas.Gap),
	}, nil
}

func validate(canvas Canvas, aspect AspectRatio, count int, cfg config) error {
	if err := canvas.Validate(); err != nil {
		return err
	}
	if err := aspect.Validate(); err != nil {
		return err
	}
	if count < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cover count must be non-negative, got %d", count)
	}
	if !(cfg.overfill > 0) || math.IsInf(cfg.overfill, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "overfill must be a positive finite number, got %v", cfg.overfill)
	}
	return nil
}
