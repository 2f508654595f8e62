package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/shawnoster/bookcover-wallpaper/pkg/errors"
	"github.com/shawnoster/bookcover-wallpaper/pkg/masonry"
)

// ReadJSON decodes a layout from r and validates it. ReadJSON does not
// close r.
func ReadJSON(r io.Reader) (masonry.Layout, error) {
	var l masonry.Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return masonry.Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}
	if err := validate(l); err != nil {
		return masonry.Layout{}, err
	}
	return l, nil
}

// ImportJSON reads a layout file at path.
func ImportJSON(path string) (masonry.Layout, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return masonry.Layout{}, errors.Wrap(errors.ErrCodeNotFound, err, "layout file %s", path)
	}
	if err != nil {
		return masonry.Layout{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}

func validate(l masonry.Layout) error {
	if err := l.Canvas.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "canvas")
	}
	if err := l.Aspect.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "aspect ratio")
	}
	for i, p := range l.Placements {
		if p.Width <= 0 || p.Height <= 0 {
			return errors.New(errors.ErrCodeInvalidFormat, "placement %d (%s): size %dx%d", i, p.Ref, p.Width, p.Height)
		}
		if p.X < 0 || p.Y < 0 {
			return errors.New(errors.ErrCodeInvalidFormat, "placement %d (%s): origin (%d,%d)", i, p.Ref, p.X, p.Y)
		}
	}
	return nil
}
