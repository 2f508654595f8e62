package googlebooks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shawnoster/bookcover-wallpaper/pkg/cache"
	"github.com/shawnoster/bookcover-wallpaper/pkg/integrations"
)

const volumesJSON = `{
  "totalItems": 4,
  "items": [
    {"volumeInfo": {
      "title": "Dune",
      "authors": ["Frank Herbert", "Someone Else"],
      "industryIdentifiers": [{"type": "OTHER", "identifier": "X"}, {"type": "ISBN_13", "identifier": "9780441172719"}],
      "imageLinks": {"thumbnail": "http://books.google.com/thumb", "medium": "http://books.google.com/medium"}
    }},
    {"volumeInfo": {"title": "No Cover", "authors": ["Anon"]}},
    {"volumeInfo": {
      "title": "Children of Dune",
      "industryIdentifiers": [{"type": "ISBN_10", "identifier": "0441104029"}],
      "imageLinks": {"large": "https://books.google.com/large"}
    }},
    {"volumeInfo": {
      "title": "Dune Messiah",
      "authors": ["Frank Herbert"],
      "imageLinks": {"thumbnail": "http://books.google.com/t3"}
    }}
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient(cache.NewNullCache(), time.Hour)
	c.SetHTTPClient(server.Client())
	c.baseURL = server.URL
	return c
}

func TestSearch(t *testing.T) {
	var gotQuery, gotMax, gotOrder, gotType string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/volumes" {
			t.Errorf("path = %s, want /volumes", r.URL.Path)
		}
		q := r.URL.Query()
		gotQuery, gotMax = q.Get("q"), q.Get("maxResults")
		gotOrder, gotType = q.Get("orderBy"), q.Get("printType")
		w.Write([]byte(volumesJSON))
	})

	vols, err := c.Search(context.Background(), "dune", "science fiction", 28, false)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	if gotQuery != "dune subject:science fiction" {
		t.Errorf("q = %q", gotQuery)
	}
	if gotMax != "40" {
		t.Errorf("maxResults = %q, want 40", gotMax)
	}
	if gotOrder != "relevance" || gotType != "books" {
		t.Errorf("orderBy = %q, printType = %q", gotOrder, gotType)
	}

	want := []Volume{
		{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441172719", CoverURL: "https://books.google.com/medium"},
		{Title: "Children of Dune", ISBN: "0441104029", CoverURL: "https://books.google.com/large"},
		{Title: "Dune Messiah", Author: "Frank Herbert", CoverURL: "https://books.google.com/t3"},
	}
	if len(vols) != len(want) {
		t.Fatalf("Search() returned %d volumes, want %d: %+v", len(vols), len(want), vols)
	}
	for i := range want {
		if vols[i] != want[i] {
			t.Errorf("volume %d = %+v, want %+v", i, vols[i], want[i])
		}
	}
}

func TestSearchLimit(t *testing.T) {
	var gotMax string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMax = r.URL.Query().Get("maxResults")
		w.Write([]byte(volumesJSON))
	})

	vols, err := c.Search(context.Background(), "dune", "", 2, false)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if gotMax != "4" {
		t.Errorf("maxResults = %q, want 4", gotMax)
	}
	if len(vols) != 2 {
		t.Errorf("Search() returned %d volumes, want 2", len(vols))
	}
}

func TestSearchCached(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(volumesJSON))
	}))
	defer server.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := NewClient(fc, time.Hour)
	c.SetHTTPClient(server.Client())
	c.baseURL = server.URL

	for range 2 {
		if _, err := c.Search(context.Background(), "dune", "", 10, false); err != nil {
			t.Fatalf("Search() error: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("server hit %d times, want 1", calls)
	}

	if _, err := c.Search(context.Background(), "dune", "", 10, true); err != nil {
		t.Fatalf("Search(refresh) error: %v", err)
	}
	if calls != 2 {
		t.Errorf("refresh should bypass cache, server hit %d times", calls)
	}
}

func TestCoverByISBN(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
	}{
		{
			name: "found",
			body: `{"items":[{"volumeInfo":{"imageLinks":{"thumbnail":"http://books.google.com/t"}}}]}`,
			want: "https://books.google.com/t",
		},
		{name: "no items", body: `{"totalItems":0}`, wantErr: integrations.ErrNotFound},
		{name: "no image", body: `{"items":[{"volumeInfo":{"title":"x"}}]}`, wantErr: integrations.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.Query().Get("q")
				w.Write([]byte(tt.body))
			})

			got, err := c.CoverByISBN(context.Background(), "9780261103344", false)
			if gotQuery != "isbn:9780261103344" {
				t.Errorf("q = %q", gotQuery)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CoverByISBN() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CoverByISBN() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CoverByISBN() = %q, want %q", got, tt.want)
			}
		})
	}
}
