// Package search finds books by querying Google Books and Open Library.
package search

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/shawnoster/bookcover-wallpaper/pkg/errors"
	"github.com/shawnoster/bookcover-wallpaper/pkg/integrations/googlebooks"
	"github.com/shawnoster/bookcover-wallpaper/pkg/integrations/openlibrary"
	"github.com/shawnoster/bookcover-wallpaper/pkg/source"
)

// overfetch is added to the limit when querying each API so duplicates can
// be dropped without falling short.
const overfetch = 10

// GoogleBooks searches Google Books.
type GoogleBooks interface {
	Search(ctx context.Context, query, genre string, limit int, refresh bool) ([]googlebooks.Volume, error)
}

// OpenLibrary searches Open Library.
type OpenLibrary interface {
	Search(ctx context.Context, query, genre string, limit int, refresh bool) ([]openlibrary.Doc, error)
}

// Source runs one query against both APIs.
type Source struct {
	Query   string
	Genre   string
	Refresh bool

	google  GoogleBooks
	openlib OpenLibrary
	logger  *log.Logger
}

// New creates a search source. Either client may be nil to skip that API.
func New(query, genre string, google GoogleBooks, openlib OpenLibrary, logger *log.Logger) *Source {
	if logger == nil {
		logger = source.DiscardLogger()
	}
	return &Source{
		Query:   strings.TrimSpace(query),
		Genre:   strings.TrimSpace(genre),
		google:  google,
		openlib: openlib,
		logger:  logger,
	}
}

// Name returns "search".
func (s *Source) Name() string { return string(source.KindSearch) }

// Books queries both APIs concurrently and merges the results, Google
// Books first. A failing API is logged and skipped; the call fails only
// when every configured API fails.
func (s *Source) Books(ctx context.Context, limit int) ([]source.Book, error) {
	if s.Query == "" && s.Genre == "" {
		return nil, errors.New(errors.ErrCodeInvalidSource, "search needs a query or genre")
	}
	if s.google == nil && s.openlib == nil {
		return nil, errors.New(errors.ErrCodeInternal, "search source has no API clients")
	}
	if limit <= 0 {
		limit = source.DefaultLimit
	}
	n := limit + overfetch

	var googleBooks, openBooks []source.Book
	var googleErr, openErr error

	g, gctx := errgroup.WithContext(ctx)
	if s.google != nil {
		g.Go(func() error {
			vols, err := s.google.Search(gctx, s.Query, s.Genre, n, s.Refresh)
			if err != nil {
				googleErr = err
				return nil
			}
			for _, v := range vols {
				googleBooks = append(googleBooks, source.Book{Title: v.Title, Author: v.Author, ISBN: v.ISBN, CoverURL: v.CoverURL})
			}
			return nil
		})
	}
	if s.openlib != nil {
		g.Go(func() error {
			docs, err := s.openlib.Search(gctx, s.Query, s.Genre, n, s.Refresh)
			if err != nil {
				openErr = err
				return nil
			}
			for _, d := range docs {
				openBooks = append(openBooks, source.Book{Title: d.Title, Author: d.Author, ISBN: d.ISBN, CoverURL: d.CoverURL})
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if googleErr != nil {
		s.logger.Warn("google books search failed", "err", googleErr)
	}
	if openErr != nil {
		s.logger.Warn("open library search failed", "err", openErr)
	}
	if failed(s.google, googleErr) && failed(s.openlib, openErr) {
		cause := googleErr
		if cause == nil {
			cause = openErr
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, cause, "book search failed")
	}

	return Dedupe(append(googleBooks, openBooks...), limit), nil
}

func failed(client any, err error) bool {
	return client == nil || err != nil
}

type titleKey struct{ title, author string }

// Dedupe drops repeated books and truncates to limit. A book repeats an
// earlier one when it has the same ISBN, or the same title and author
// compared case-insensitively.
func Dedupe(books []source.Book, limit int) []source.Book {
	seenISBN := make(map[string]bool)
	seenTitle := make(map[titleKey]bool)
	out := make([]source.Book, 0, min(len(books), max(limit, 0)))

	for _, b := range books {
		if limit > 0 && len(out) >= limit {
			break
		}
		if b.ISBN != "" {
			if seenISBN[b.ISBN] {
				continue
			}
			seenISBN[b.ISBN] = true
		}
		key := titleKey{
			title:  strings.ToLower(strings.TrimSpace(b.Title)),
			author: strings.ToLower(strings.TrimSpace(b.Author)),
		}
		if seenTitle[key] {
			continue
		}
		seenTitle[key] = true
		out = append(out, b)
	}
	return out
}
