package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	apperrors "github.com/shawnoster/bookcover-wallpaper/pkg/errors"
	"github.com/shawnoster/bookcover-wallpaper/pkg/integrations"
	"github.com/shawnoster/bookcover-wallpaper/pkg/masonry"
	"github.com/shawnoster/bookcover-wallpaper/pkg/pipeline"
)

func testServer(t *testing.T, covers int) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < covers; i++ {
		img := image.NewNRGBA(image.Rect(0, 0, 20, 30))
		img.Set(0, 0, color.NRGBA{R: 255, A: 255})
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("%02d.png", i)), buf.Bytes(), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	logger := log.New(&bytes.Buffer{})
	runner := pipeline.NewRunner(nil, nil, logger)
	srv := New(runner, pipeline.Options{Source: "local", Path: dir}, logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestHealth(t *testing.T) {
	ts := testServer(t, 0)
	resp := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["version"] == "" {
		t.Errorf("body = %v", body)
	}
	if resp.Header.Get("Cache-Control") == "" {
		t.Error("missing Cache-Control header")
	}
}

func TestRequestID(t *testing.T) {
	ts := testServer(t, 0)

	resp := get(t, ts.URL+"/healthz")
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("generated request ID %q is not a UUID", resp.Header.Get(RequestIDHeader))
	}

	want := uuid.NewString()
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, want)
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if got := resp2.Header.Get(RequestIDHeader); got != want {
		t.Errorf("request ID = %q, want client ID %q", got, want)
	}

	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp3, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp3.Body.Close()
	if got := resp3.Header.Get(RequestIDHeader); got == "not-a-uuid" {
		t.Error("malformed client request ID was echoed")
	}
}

func TestLayout(t *testing.T) {
	ts := testServer(t, 0)
	resp := get(t, ts.URL+"/api/layout?count=12")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var l masonry.Layout
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		t.Fatal(err)
	}
	want := masonry.Plan{Columns: 4, CoverWidth: 475, CoverHeight: 713}
	if l.Plan != want {
		t.Errorf("Plan = %+v, want %+v", l.Plan, want)
	}
	if len(l.Placements) != 12 || l.Placements[0].Ref != "cover-1" {
		t.Errorf("placements = %d, first %+v", len(l.Placements), l.Placements[0])
	}
	if p := l.Placements[0]; p.X != 4 || p.Y != 4 {
		t.Errorf("first placement at (%d,%d), want (4,4)", p.X, p.Y)
	}
}

func TestLayoutOverrides(t *testing.T) {
	ts := testServer(t, 0)
	resp := get(t, ts.URL+"/api/layout?count=6&width=1920&height=1080&gap=4&columns=3")
	var l masonry.Layout
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		t.Fatal(err)
	}
	if l.Plan.Columns != 3 || l.Plan.CoverWidth != 634 {
		t.Errorf("Plan = %+v, want 3 columns of width 634", l.Plan)
	}
}

func TestLayoutBadQuery(t *testing.T) {
	ts := testServer(t, 0)
	for _, q := range []string{"width=wide", "count=-1", "gap=x", "aspect=2:0", "seed=-4", "overfill=lots"} {
		t.Run(q, func(t *testing.T) {
			resp := get(t, ts.URL+"/api/layout?"+q)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if body := decodeError(t, resp); body.Code != string(apperrors.ErrCodeInvalidInput) || body.RequestID == "" {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestWallpaperPNG(t *testing.T) {
	ts := testServer(t, 5)
	resp := get(t, ts.URL+"/wallpaper.png?width=200&height=150&seed=3")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%v)", resp.StatusCode, decodeError(t, resp))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if got := resp.Header.Get("X-Covers"); got != "5" {
		t.Errorf("X-Covers = %q, want 5", got)
	}
	if got := resp.Header.Get("X-Seed"); got != strconv.Itoa(3) {
		t.Errorf("X-Seed = %q, want 3", got)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 150 {
		t.Errorf("image = %dx%d, want 200x150", b.Dx(), b.Dy())
	}
}

func TestWallpaperJPEG(t *testing.T) {
	ts := testServer(t, 3)
	resp := get(t, ts.URL+"/wallpaper.jpg?width=120&height=90")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q, want image/jpeg", ct)
	}
	if _, err := jpeg.Decode(resp.Body); err != nil {
		t.Errorf("decode: %v", err)
	}
}

func TestWallpaperNoCovers(t *testing.T) {
	ts := testServer(t, 0)
	resp := get(t, ts.URL+"/wallpaper.png?width=200&height=150")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	body := decodeError(t, resp)
	if body.Code != string(apperrors.ErrCodeNoCovers) || body.Error != "no covers available" {
		t.Errorf("body = %+v", body)
	}
}

func TestNotFoundRoute(t *testing.T) {
	ts := testServer(t, 0)
	if resp := get(t, ts.URL+"/wallpaper.gif"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.New(apperrors.ErrCodeInvalidSource, "x"), http.StatusBadRequest},
		{apperrors.New(apperrors.ErrCodeInvalidColor, "x"), http.StatusBadRequest},
		{apperrors.New(apperrors.ErrCodeNoCovers, "x"), http.StatusUnprocessableEntity},
		{apperrors.New(apperrors.ErrCodeNotFound, "x"), http.StatusNotFound},
		{&apperrors.RateLimitedError{RetryAfter: 5}, http.StatusTooManyRequests},
		{fmt.Errorf("feed: %w", apperrors.New(apperrors.ErrCodeNetwork, "x")), http.StatusBadGateway},
		{apperrors.New(apperrors.ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{integrations.ErrNetwork, http.StatusInternalServerError},
		{context.Canceled, 499},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	runner := pipeline.NewRunner(nil, nil, log.New(&bytes.Buffer{}))
	srv := New(runner, pipeline.Options{Path: t.TempDir()}, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ctx, ln) }()

	resp := get(t, "http://"+ln.Addr().String()+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Serve() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
