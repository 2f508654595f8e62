package openlibrary

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shawnoster/bookcover-wallpaper/pkg/cache"
	"github.com/shawnoster/bookcover-wallpaper/pkg/integrations"
)

const (
	defaultBaseURL   = "https://openlibrary.org"
	defaultCoversURL = "https://covers.openlibrary.org"

	// MaxResults bounds the search page size requested from Open Library.
	MaxResults = 100

	searchFields = "title,author_name,isbn,cover_i,subject"
)

// Doc is the subset of an Open Library search document used for wallpapers.
type Doc struct {
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	ISBN     string `json:"isbn,omitempty"`
	CoverURL string `json:"cover_url"`
}

// Client queries the Open Library search and books APIs.
type Client struct {
	*integrations.Client
	baseURL   string
	coversURL string
}

// NewClient creates an Open Library client caching responses in c for ttl.
func NewClient(c cache.Cache, ttl time.Duration) *Client {
	return &Client{
		Client:    integrations.NewClient(c, "openlibrary", ttl, integrations.DefaultHeaders()),
		baseURL:   defaultBaseURL,
		coversURL: defaultCoversURL,
	}
}

// Search returns up to limit documents with a cover matching query. When
// genre is set it is appended to the query and documents whose subjects do
// not mention it (case-insensitively) are dropped. Documents without
// subjects are kept.
func (c *Client) Search(ctx context.Context, query, genre string, limit int, refresh bool) ([]Doc, error) {
	q := strings.TrimSpace(query)
	if genre != "" {
		q += " " + genre
	}
	params := url.Values{
		"q":      {q},
		"limit":  {strconv.Itoa(min(MaxResults, limit*2))},
		"fields": {searchFields},
	}

	var docs []Doc
	err := c.Cached(ctx, "search:"+params.Encode(), refresh, &docs, func() error {
		var resp searchResponse
		if err := c.Get(ctx, c.baseURL+"/search.json?"+params.Encode(), &resp); err != nil {
			return err
		}
		docs = c.collect(resp.Docs, genre, limit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// CoverByISBN returns the largest cover URL the books API knows for isbn,
// or [integrations.ErrNotFound].
func (c *Client) CoverByISBN(ctx context.Context, isbn string, refresh bool) (string, error) {
	bibkey := "ISBN:" + isbn
	params := url.Values{
		"bibkeys": {bibkey},
		"format":  {"json"},
		"jscmd":   {"data"},
	}

	var cover string
	err := c.Cached(ctx, "isbn:"+isbn, refresh, &cover, func() error {
		var resp map[string]bookData
		if err := c.Get(ctx, c.baseURL+"/api/books?"+params.Encode(), &resp); err != nil {
			return err
		}
		cover = resp[bibkey].Cover.best()
		return nil
	})
	if err != nil {
		return "", err
	}
	if cover == "" {
		return "", integrations.ErrNotFound
	}
	return cover, nil
}

// CoverURL returns the large cover image URL for an Open Library cover ID.
func (c *Client) CoverURL(coverID int64) string {
	return fmt.Sprintf("%s/b/id/%d-L.jpg", c.coversURL, coverID)
}

func (c *Client) collect(raw []searchDoc, genre string, limit int) []Doc {
	genre = strings.ToLower(genre)
	docs := make([]Doc, 0, min(len(raw), limit))
	for _, d := range raw {
		if len(docs) >= limit {
			break
		}
		if d.CoverID == 0 {
			continue
		}
		if genre != "" && len(d.Subject) > 0 && !mentions(d.Subject, genre) {
			continue
		}
		doc := Doc{Title: d.Title, CoverURL: c.CoverURL(d.CoverID)}
		if len(d.AuthorName) > 0 {
			doc.Author = d.AuthorName[0]
		}
		if len(d.ISBN) > 0 {
			doc.ISBN = d.ISBN[0]
		}
		docs = append(docs, doc)
	}
	return docs
}

func mentions(subjects []string, genre string) bool {
	for _, s := range subjects {
		if strings.Contains(strings.ToLower(s), genre) {
			return true
		}
	}
	return false
}

type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Title      string   `json:"title"`
	AuthorName []string `json:"author_name"`
	ISBN       []string `json:"isbn"`
	CoverID    int64    `json:"cover_i"`
	Subject    []string `json:"subject"`
}

type bookData struct {
	Title string     `json:"title"`
	Cover coverLinks `json:"cover"`
}

type coverLinks struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

func (l coverLinks) best() string {
	for _, u := range []string{l.Large, l.Medium, l.Small} {
		if u != "" {
			return integrations.UpgradeHTTPS(u)
		}
	}
	return ""
}
