// Package local lists cover images stored in a directory.
package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/shawnoster/bookcover-wallpaper/pkg/errors"
	"github.com/shawnoster/bookcover-wallpaper/pkg/source"
)

// Extensions are the image file extensions picked up, compared
// case-insensitively.
var Extensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

// Source reads cover images from a single directory. Subdirectories and
// hidden files are ignored. Files are returned in name order.
type Source struct {
	Dir string
}

// New creates a source for dir.
func New(dir string) *Source {
	return &Source{Dir: dir}
}

// Name returns "local".
func (s *Source) Name() string { return string(source.KindLocal) }

// Books returns up to limit books, one per image file.
func (s *Source) Books(ctx context.Context, limit int) ([]source.Book, error) {
	if err := errors.ValidateDirectory(s.Dir); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", s.Dir)
	}

	var books []source.Book
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if limit > 0 && len(books) >= limit {
			break
		}
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !IsImage(name) {
			continue
		}
		books = append(books, source.Book{
			Title:     TitleFromFilename(name),
			CoverPath: filepath.Join(s.Dir, name),
		})
	}
	return books, nil
}

// IsImage reports whether name has one of [Extensions].
func IsImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// TitleFromFilename turns "the_hobbit-1.jpg" into "The Hobbit 1".
func TitleFromFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	if len(words) == 0 {
		return base
	}
	return strings.Join(words, " ")
}
