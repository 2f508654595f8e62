package goodreads

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shawnoster/bookcover-wallpaper/pkg/cache"
	"github.com/shawnoster/bookcover-wallpaper/pkg/errors"
	"github.com/shawnoster/bookcover-wallpaper/pkg/integrations"
)

const (
	defaultBaseURL = "https://www.goodreads.com"

	// coverByIDURL is the image CDN path used when a feed item carries no
	// image URL of its own.
	coverByIDURL = "https://images-na.ssl-images-amazon.com/images/S/compressed.photo.goodreads.com/books/%s.jpg"
)

// Item is one book from a shelf feed.
type Item struct {
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	ISBN     string `json:"isbn,omitempty"`
	BookID   string `json:"book_id,omitempty"`
	CoverURL string `json:"cover_url,omitempty"`
}

// Client fetches Goodreads shelf RSS feeds.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Goodreads client caching parsed feeds in c for ttl.
func NewClient(c cache.Cache, ttl time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(c, "goodreads", ttl, integrations.DefaultHeaders()),
		baseURL: defaultBaseURL,
	}
}

// FeedURL returns the RSS URL of a user's shelf.
func (c *Client) FeedURL(userID, shelf string) string {
	return fmt.Sprintf("%s/review/list_rss/%s?shelf=%s", c.baseURL, url.PathEscape(userID), url.QueryEscape(shelf))
}

// Shelf fetches the shelf feed of a user. The user ID is validated before
// it is placed in the URL.
func (c *Client) Shelf(ctx context.Context, userID, shelf string, refresh bool) ([]Item, error) {
	if err := errors.ValidateGoodreadsUserID(userID); err != nil {
		return nil, err
	}
	return c.Feed(ctx, c.FeedURL(userID, shelf), refresh)
}

// Feed fetches and parses the RSS feed at feedURL.
func (c *Client) Feed(ctx context.Context, feedURL string, refresh bool) ([]Item, error) {
	if err := errors.ValidateURL(feedURL); err != nil {
		return nil, err
	}

	var items []Item
	err := c.Cached(ctx, "feed:"+feedURL, refresh, &items, func() error {
		data, err := c.GetBytes(ctx, feedURL)
		if err != nil {
			return err
		}
		items, err = ParseFeed(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ParseFeed decodes a Goodreads shelf RSS document. Each item's cover is
// book_large_image_url, then book_image_url, then a CDN URL derived from
// book_id.
func ParseFeed(data []byte) ([]Item, error) {
	var doc rssDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse goodreads feed")
	}

	items := make([]Item, 0, len(doc.Channel.Items))
	for _, raw := range doc.Channel.Items {
		item := Item{
			Title:  strings.TrimSpace(raw.Title),
			Author: strings.TrimSpace(raw.AuthorName),
			ISBN:   integrations.CleanISBN(raw.ISBN),
			BookID: strings.TrimSpace(raw.BookID),
		}
		item.CoverURL = firstNonEmpty(raw.LargeImageURL, raw.ImageURL)
		if item.CoverURL == "" && item.BookID != "" {
			item.CoverURL = fmt.Sprintf(coverByIDURL, item.BookID)
		}
		items = append(items, item)
	}
	return items, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title         string `xml:"title"`
	AuthorName    string `xml:"author_name"`
	ISBN          string `xml:"isbn"`
	BookID        string `xml:"book_id"`
	ImageURL      string `xml:"book_image_url"`
	LargeImageURL string `xml:"book_large_image_url"`
}
