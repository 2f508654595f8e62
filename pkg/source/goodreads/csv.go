package goodreads

import (
	"encoding/csv"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/shawnoster/bookcover-wallpaper/pkg/errors"
	"github.com/shawnoster/bookcover-wallpaper/pkg/integrations"
	"github.com/shawnoster/bookcover-wallpaper/pkg/source"
)

// Column names of the Goodreads library export.
const (
	colTitle     = "Title"
	colAuthor    = "Author"
	colISBN      = "ISBN"
	colISBN13    = "ISBN13"
	colShelf     = "Exclusive Shelf"
	colDateRead  = "Date Read"
	colBookCover = "Book Cover"
	colCover     = "Cover"
)

var dateLayouts = []string{"2006/01/02", "2006-01-02"}

type row struct {
	book source.Book
	read time.Time
}

// ParseCSV reads a Goodreads library export and returns the books on shelf,
// most recently read first. Rows without a parsable Date Read sort last and
// keep their file order. Cover URLs come from a "Book Cover" or "Cover"
// column when the export has one.
func ParseCSV(r io.Reader, shelf string) ([]source.Book, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read goodreads export header")
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := cols[colTitle]; !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "goodreads export has no %q column", colTitle)
	}

	field := func(rec []string, name string) string {
		if i, ok := cols[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	shelf = strings.ToLower(shelf)
	var rows []row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read goodreads export")
		}
		if strings.ToLower(field(rec, colShelf)) != shelf {
			continue
		}

		isbn := integrations.CleanISBN(field(rec, colISBN13))
		if isbn == "" {
			isbn = integrations.CleanISBN(field(rec, colISBN))
		}
		cover := field(rec, colBookCover)
		if cover == "" {
			cover = field(rec, colCover)
		}

		rows = append(rows, row{
			book: source.Book{
				Title:    field(rec, colTitle),
				Author:   field(rec, colAuthor),
				ISBN:     isbn,
				CoverURL: cover,
			},
			read: parseDate(field(rec, colDateRead)),
		})
	}

	slices.SortStableFunc(rows, func(a, b row) int {
		return b.read.Compare(a.read)
	})

	books := make([]source.Book, len(rows))
	for i, r := range rows {
		books[i] = r.book
	}
	return books, nil
}

func parseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
