package masonry

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/shawnoster/bookcover-wallpaper/pkg/errors"
)

// DefaultAspect is the canonical portrait book cover proportion.
var DefaultAspect = AspectRatio{W: 2, H: 3}

// AspectRatio is a width:height proportion with positive components.
type AspectRatio struct {
	W int `json:"w"`
	H int `json:"h"`
}

// ParseAspectRatio parses "W:H" (also accepts "WxH" and "W/H").
func ParseAspectRatio(s string) (AspectRatio, error) {
	s = strings.TrimSpace(s)
	sep := strings.IndexAny(s, ":x/")
	if sep <= 0 || sep == len(s)-1 {
		return AspectRatio{}, errors.New(errors.ErrCodeInvalidInput, "invalid aspect ratio %q (want W:H)", s)
	}
	w, err := strconv.Atoi(s[:sep])
	if err != nil {
		return AspectRatio{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid aspect ratio %q", s)
	}
	h, err := strconv.Atoi(s[sep+1:])
	if err != nil {
		return AspectRatio{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid aspect ratio %q", s)
	}
	a := AspectRatio{W: w, H: h}
	if err := a.Validate(); err != nil {
		return AspectRatio{}, err
	}
	return a, nil
}

// Validate reports an error unless both components are positive.
func (a AspectRatio) Validate() error {
	if a.W <= 0 || a.H <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "aspect ratio components must be positive, got %d:%d", a.W, a.H)
	}
	return nil
}

// Float returns W/H.
func (a AspectRatio) Float() float64 { return float64(a.W) / float64(a.H) }

func (a AspectRatio) String() string { return fmt.Sprintf("%d:%d", a.W, a.H) }

// Canvas is the target surface. Gap is applied between cells and as the
// outer margin on every side.
type Canvas struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Gap    int `json:"gap"`
}

// Validate reports an error unless width and height are positive and gap is
// non-negative.
func (c Canvas) Validate() error {
	if err := errors.ValidateDimensions(c.Width, c.Height); err != nil {
		return err
	}
	if c.Gap < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "gap must be non-negative, got %d", c.Gap)
	}
	return nil
}

// Plan is the chosen column count and uniform cell size.
type Plan struct {
	Columns     int `json:"columns"`
	CoverWidth  int `json:"cover_width"`
	CoverHeight int `json:"cover_height"`
}

// RowWidth returns the horizontal extent of the plan including outer margins.
func (p Plan) RowWidth(gap int) int {
	return p.Columns*p.CoverWidth + (p.Columns+1)*gap
}

// Placement positions one cover. X and Y are the top-left corner.
type Placement struct {
	Ref    string `json:"ref"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Right returns the x coordinate one past the placement's right edge.
func (p Placement) Right() int { return p.X + p.Width }

// Rect returns the placement as an image rectangle.
func (p Placement) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.Right(), p.Bottom())
}

// Bottom returns the y coordinate one past the placement's bottom edge.
func (p Placement) Bottom() int { return p.Y + p.Height }

// Layout bundles the inputs and outputs of one layout computation.
type Layout struct {
	Canvas     Canvas      `json:"canvas"`
	Aspect     AspectRatio `json:"aspect_ratio"`
	Overfill   float64     `json:"overfill"`
	Plan       Plan        `json:"plan"`
	Placements []Placement `json:"placements"`
}

// Bounds returns the lowest bottom edge over all placements, or 0 when empty.
func (l Layout) Bounds() int {
	bottom := 0
	for _, p := range l.Placements {
		bottom = max(bottom, p.Bottom())
	}
	return bottom
}

// Overflow returns how many pixels the tallest column extends past the
// canvas height. Zero means nothing is clipped.
func (l Layout) Overflow() int {
	return max(0, l.Bounds()-l.Canvas.Height)
}
