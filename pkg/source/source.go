package source

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/shawnoster/bookcover-wallpaper/pkg/errors"
)

// DefaultLimit is the number of books requested when none is given.
const DefaultLimit = 18

// Book is a book with enough metadata to find and label its cover.
// CoverPath is set once an image exists on local disk.
type Book struct {
	Title     string `json:"title"`
	Author    string `json:"author,omitempty"`
	ISBN      string `json:"isbn,omitempty"`
	CoverURL  string `json:"cover_url,omitempty"`
	CoverPath string `json:"cover_path,omitempty"`
}

// HasCover reports whether a cover can be obtained for b.
func (b Book) HasCover() bool {
	return b.CoverPath != "" || b.CoverURL != ""
}

// String returns "Title by Author", or just the title.
func (b Book) String() string {
	if b.Author == "" {
		return b.Title
	}
	return b.Title + " by " + b.Author
}

// Source lists books. Implementations return at most limit books; fewer is
// not an error.
type Source interface {
	Name() string
	Books(ctx context.Context, limit int) ([]Book, error)
}

// Kind selects a [Source] implementation.
type Kind string

const (
	KindLocal     Kind = "local"
	KindGoodreads Kind = "goodreads"
	KindSearch    Kind = "search"
)

// Kinds lists every supported source kind.
func Kinds() []Kind {
	return []Kind{KindLocal, KindGoodreads, KindSearch}
}

// ParseKind parses a source name case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidSource, "unknown source %q (want local, goodreads or search)", s)
}

// Truncate returns at most limit books. A limit ≤ 0 keeps all.
func Truncate(books []Book, limit int) []Book {
	if limit > 0 && len(books) > limit {
		return books[:limit]
	}
	return books
}

// DiscardLogger returns a logger that writes nothing.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard)
}
