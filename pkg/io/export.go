package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shawnoster/bookcover-wallpaper/pkg/masonry"
)

// WriteJSON encodes l as indented JSON and writes it to w.
func WriteJSON(l masonry.Layout, w io.Writer) error {
	if l.Placements == nil {
		l.Placements = []masonry.Placement{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes l to a JSON file at path.
func ExportJSON(l masonry.Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(l, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
