// Package goodreads lists books from a Goodreads CSV export or shelf feed.
package goodreads

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/shawnoster/bookcover-wallpaper/pkg/errors"
	gr "github.com/shawnoster/bookcover-wallpaper/pkg/integrations/goodreads"
	"github.com/shawnoster/bookcover-wallpaper/pkg/source"
)

// DefaultShelf is the shelf read from feeds and exports.
const DefaultShelf = "read"

// lookupConcurrency bounds parallel ISBN cover lookups for CSV rows.
const lookupConcurrency = 4

// Mode is how an input string is interpreted.
type Mode int

const (
	ModeRSS Mode = iota // user ID or feed URL
	ModeCSV             // path to an export file
)

func (m Mode) String() string {
	if m == ModeCSV {
		return "csv"
	}
	return "rss"
}

// Detect classifies input. http(s) URLs are feeds; anything containing a
// path separator or ending in .csv is an export file; everything else is
// taken as a user ID.
func Detect(input string) Mode {
	switch {
	case isURL(input):
		return ModeRSS
	case strings.ContainsAny(input, `/\`), strings.HasSuffix(strings.ToLower(input), ".csv"):
		return ModeCSV
	default:
		return ModeRSS
	}
}

// FeedFetcher fetches shelf feeds. Implemented by the goodreads API client.
type FeedFetcher interface {
	Shelf(ctx context.Context, userID, shelf string, refresh bool) ([]gr.Item, error)
	Feed(ctx context.Context, feedURL string, refresh bool) ([]gr.Item, error)
}

// CoverLookup finds a cover URL for an ISBN. Implemented by the Google
// Books and Open Library clients.
type CoverLookup interface {
	CoverByISBN(ctx context.Context, isbn string, refresh bool) (string, error)
}

// Source reads books from Goodreads.
type Source struct {
	input   string
	shelf   string
	feeds   FeedFetcher
	lookups []CoverLookup
	refresh bool
	logger  *log.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithShelf selects the shelf (default [DefaultShelf]).
func WithShelf(shelf string) Option {
	return func(s *Source) {
		if shelf != "" {
			s.shelf = shelf
		}
	}
}

// WithFeedFetcher sets the client used for RSS input.
func WithFeedFetcher(f FeedFetcher) Option {
	return func(s *Source) { s.feeds = f }
}

// WithCoverLookups sets the ISBN lookups tried in order for CSV rows that
// carry no cover URL.
func WithCoverLookups(l ...CoverLookup) Option {
	return func(s *Source) { s.lookups = l }
}

// WithRefresh bypasses API response caches.
func WithRefresh(refresh bool) Option {
	return func(s *Source) { s.refresh = refresh }
}

// WithLogger sets the logger used for lookup warnings.
func WithLogger(l *log.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a source for input: a CSV path, a user ID or a feed URL.
func New(input string, opts ...Option) *Source {
	s := &Source{
		input:  strings.TrimSpace(input),
		shelf:  DefaultShelf,
		logger: source.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns "goodreads".
func (s *Source) Name() string { return string(source.KindGoodreads) }

// Mode reports how the input is interpreted.
func (s *Source) Mode() Mode { return Detect(s.input) }

// Books returns up to limit books.
func (s *Source) Books(ctx context.Context, limit int) ([]source.Book, error) {
	if s.input == "" {
		return nil, errors.New(errors.ErrCodeInvalidSource, "goodreads source needs a CSV path, user ID or feed URL")
	}
	if s.Mode() == ModeCSV {
		return s.fromCSV(ctx, limit)
	}
	return s.fromFeed(ctx, limit)
}

func (s *Source) fromFeed(ctx context.Context, limit int) ([]source.Book, error) {
	if s.feeds == nil {
		return nil, errors.New(errors.ErrCodeInternal, "goodreads source has no feed client")
	}

	var items []gr.Item
	var err error
	if isURL(s.input) {
		items, err = s.feeds.Feed(ctx, s.input, s.refresh)
	} else {
		items, err = s.feeds.Shelf(ctx, s.input, s.shelf, s.refresh)
	}
	if err != nil {
		return nil, err
	}

	books := make([]source.Book, 0, len(items))
	for _, it := range items {
		books = append(books, source.Book{
			Title:    it.Title,
			Author:   it.Author,
			ISBN:     it.ISBN,
			CoverURL: it.CoverURL,
		})
	}
	return source.Truncate(books, limit), nil
}

func (s *Source) fromCSV(ctx context.Context, limit int) ([]source.Book, error) {
	f, err := os.Open(s.input)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeInvalidPath, "goodreads export not found: %s", s.input)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", s.input)
	}
	defer f.Close()

	books, err := ParseCSV(f, s.shelf)
	if err != nil {
		return nil, err
	}
	books = source.Truncate(books, limit)
	s.lookupCovers(ctx, books)
	return books, nil
}

// lookupCovers fills CoverURL for books that have an ISBN but no cover.
// Lookup failures are logged and leave the book without a cover.
func (s *Source) lookupCovers(ctx context.Context, books []source.Book) {
	if len(s.lookups) == 0 {
		return
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for i := range books {
		if books[i].CoverURL != "" || books[i].ISBN == "" {
			continue
		}
		g.Go(func() error {
			books[i].CoverURL = s.lookup(ctx, books[i].ISBN)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Source) lookup(ctx context.Context, isbn string) string {
	for _, l := range s.lookups {
		cover, err := l.CoverByISBN(ctx, isbn, s.refresh)
		if err == nil && cover != "" {
			return cover
		}
		if err != nil {
			s.logger.Debug("cover lookup failed", "isbn", isbn, "err", err)
		}
	}
	s.logger.Warn("no cover found", "isbn", isbn)
	return ""
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
