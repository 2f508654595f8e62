package googlebooks

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shawnoster/bookcover-wallpaper/pkg/cache"
	"github.com/shawnoster/bookcover-wallpaper/pkg/integrations"
)

const (
	defaultBaseURL = "https://www.googleapis.com/books/v1"

	// MaxResults is the largest page the volumes endpoint returns.
	MaxResults = 40
)

// Volume is the subset of a Google Books volume used for wallpapers.
type Volume struct {
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	ISBN     string `json:"isbn,omitempty"`
	CoverURL string `json:"cover_url,omitempty"`
}

// Client queries the Google Books volumes API.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Google Books client caching responses in c for ttl.
func NewClient(c cache.Cache, ttl time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(c, "googlebooks", ttl, integrations.DefaultHeaders()),
		baseURL: defaultBaseURL,
	}
}

// Search returns up to limit volumes with a cover image matching query.
// A non-empty genre is added as a "subject:" term. Twice limit results are
// requested (capped at [MaxResults]) because volumes without covers are
// dropped.
func (c *Client) Search(ctx context.Context, query, genre string, limit int, refresh bool) ([]Volume, error) {
	q := strings.TrimSpace(query)
	if genre != "" {
		q += " subject:" + genre
	}
	params := url.Values{
		"q":          {q},
		"maxResults": {strconv.Itoa(min(MaxResults, limit*2))},
		"orderBy":    {"relevance"},
		"printType":  {"books"},
	}

	var vols []Volume
	err := c.Cached(ctx, "search:"+params.Encode(), refresh, &vols, func() error {
		var resp volumesResponse
		if err := c.Get(ctx, c.baseURL+"/volumes?"+params.Encode(), &resp); err != nil {
			return err
		}
		vols = collect(resp.Items, limit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vols, nil
}

// CoverByISBN returns the best cover URL for isbn, or
// [integrations.ErrNotFound] when Google Books has no image for it.
func (c *Client) CoverByISBN(ctx context.Context, isbn string, refresh bool) (string, error) {
	params := url.Values{"q": {"isbn:" + isbn}}

	var cover string
	err := c.Cached(ctx, "isbn:"+isbn, refresh, &cover, func() error {
		var resp volumesResponse
		if err := c.Get(ctx, c.baseURL+"/volumes?"+params.Encode(), &resp); err != nil {
			return err
		}
		if len(resp.Items) > 0 {
			cover = resp.Items[0].VolumeInfo.ImageLinks.best()
		}
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

func collect(items []volumeItem, limit int) []Volume {
	vols := make([]Volume, 0, min(len(items), limit))
	for _, item := range items {
		if len(vols) >= limit {
			break
		}
		info := item.VolumeInfo
		cover := info.ImageLinks.best()
		if cover == "" {
			continue
		}
		v := Volume{Title: info.Title, ISBN: info.isbn(), CoverURL: cover}
		if len(info.Authors) > 0 {
			v.Author = info.Authors[0]
		}
		vols = append(vols, v)
	}
	return vols
}

type volumesResponse struct {
	TotalItems int          `json:"totalItems"`
	Items      []volumeItem `json:"items"`
}

type volumeItem struct {
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string       `json:"title"`
	Authors             []string     `json:"authors"`
	IndustryIdentifiers []identifier `json:"industryIdentifiers"`
	ImageLinks          imageLinks   `json:"imageLinks"`
}

type identifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type imageLinks struct {
	Large     string `json:"large"`
	Medium    string `json:"medium"`
	Thumbnail string `json:"thumbnail"`
}

// best returns the largest available image, upgraded to https.
func (l imageLinks) best() string {
	for _, u := range []string{l.Large, l.Medium, l.Thumbnail} {
		if u != "" {
			return integrations.UpgradeHTTPS(u)
		}
	}
	return ""
}

// isbn returns the first ISBN-13 or ISBN-10 identifier in listed order.
func (v volumeInfo) isbn() string {
	for _, id := range v.IndustryIdentifiers {
		if id.Type == "ISBN_13" || id.Type == "ISBN_10" {
			return id.Identifier
		}
	}
	return ""
}
