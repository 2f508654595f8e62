// Package covers downloads cover images into a local file cache.
//
// Each cover URL maps to <dir>/<blake3(url)><ext>, so a cover is fetched
// at most once across runs and every source shares the same files.
// Downloads run concurrently with a bound, and a failed download never
// cancels its siblings: the book is logged and left out.
package covers

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/zeebo/blake3"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/shawnoster/bookcover-wallpaper/pkg/errors"
	"github.com/shawnoster/bookcover-wallpaper/pkg/httputil"
	"github.com/shawnoster/bookcover-wallpaper/pkg/integrations"
	"github.com/shawnoster/bookcover-wallpaper/pkg/source"
)

const (
	DefaultConcurrency = 8
	DefaultTimeout     = 30 * time.Second

	// maxCoverBytes rejects responses that cannot be a book cover.
	maxCoverBytes = 20 << 20
)

// Options configures a [Manager].
type Options struct {
	Dir         string        // Cache directory (required)
	Concurrency int           // Parallel downloads (default 8)
	Timeout     time.Duration // Per-download timeout (default 30s)
	Refresh     bool          // Re-download covers already on disk
	Logger      *log.Logger   // Warnings for failed downloads (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Logger == nil {
		o.Logger = source.DiscardLogger()
	}
	return o
}

// Stats counts the outcome of a [Manager.Resolve] call.
type Stats struct {
	Local      int // Books that already had a file on disk
	Cached     int // Covers found in the cache directory
	Downloaded int // Covers fetched over the network
	Failed     int // Books left out
}

// Manager resolves books to local cover files.
type Manager struct {
	opts   Options
	client *integrations.Client
}

// NewManager creates the cache directory and returns a Manager.
func NewManager(opts Options) (*Manager, error) {
	opts = opts.WithDefaults()
	if opts.Dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidPath, "cover cache directory is not set")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create cover cache %s", opts.Dir)
	}

	client := integrations.NewClient(nil, "covers", 0, integrations.DefaultHeaders())
	// Per-download deadlines come from the context.
	client.SetHTTPClient(&http.Client{})
	return &Manager{opts: opts, client: client}, nil
}

// SetHTTPClient replaces the HTTP client used for downloads.
func (m *Manager) SetHTTPClient(h *http.Client) { m.client.SetHTTPClient(h) }

// Dir returns the cache directory.
func (m *Manager) Dir() string { return m.opts.Dir }

// Path returns the cache file for a cover URL.
func (m *Manager) Path(coverURL string) string {
	sum := blake3.Sum256([]byte(coverURL))
	return filepath.Join(m.opts.Dir, fmt.Sprintf("%x%s", sum, Ext(coverURL)))
}

// Ext picks a file extension from the URL path: .png, .webp or .gif when
// the path says so, .jpg otherwise.
func Ext(coverURL string) string {
	p := coverURL
	if u, err := url.Parse(coverURL); err == nil {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".png":
		return ".png"
	case ".webp":
		return ".webp"
	case ".gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

// Resolve returns the books that end up with a CoverPath, in input order.
// Books that already have a readable CoverPath pass through unchanged.
func (m *Manager) Resolve(ctx context.Context, books []source.Book) ([]source.Book, Stats) {
	out := make([]source.Book, len(books))
	ok := make([]bool, len(books))
	var local, cached, downloaded, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Concurrency)

	for i, b := range books {
		if b.CoverPath != "" {
			if _, err := os.Stat(b.CoverPath); err == nil {
				out[i], ok[i] = b, true
				local.Add(1)
				continue
			}
		}
		if b.CoverURL == "" {
			m.opts.Logger.Warn("no cover available", "book", b.String())
			failed.Add(1)
			continue
		}

		g.Go(func() error {
			p, hit, err := m.Fetch(gctx, b.CoverURL)
			if err != nil {
				if gctx.Err() == nil {
					m.opts.Logger.Warn("cover download failed", "book", b.String(), "url", b.CoverURL, "err", err)
				}
				failed.Add(1)
				return nil
			}
			if hit {
				cached.Add(1)
			} else {
				downloaded.Add(1)
			}
			b.CoverPath = p
			out[i], ok[i] = b, true
			return nil
		})
	}
	_ = g.Wait()

	resolved := make([]source.Book, 0, len(books))
	for i := range out {
		if ok[i] {
			resolved = append(resolved, out[i])
		}
	}
	return resolved, Stats{
		Local:      int(local.Load()),
		Cached:     int(cached.Load()),
		Downloaded: int(downloaded.Load()),
		Failed:     int(failed.Load()),
	}
}

// Fetch returns the cache file for coverURL, downloading it first unless
// it is already on disk. hit reports whether the file was already cached.
func (m *Manager) Fetch(ctx context.Context, coverURL string) (p string, hit bool, err error) {
	if err := errors.ValidateURL(coverURL); err != nil {
		return "", false, err
	}
	p = m.Path(coverURL)
	if !m.opts.Refresh {
		if info, err := os.Stat(p); err == nil && info.Size() > 0 {
			return p, true, nil
		}
	}

	var data []byte
	err = httputil.RetryWithBackoff(ctx, func() error {
		dctx, cancel := context.WithTimeout(ctx, m.opts.Timeout)
		defer cancel()
		data, err = m.download(dctx, coverURL)
		return err
	})
	if err != nil {
		return "", false, err
	}
	if err := writeFile(p, data); err != nil {
		return "", false, err
	}
	return p, false, nil
}

func (m *Manager) download(ctx context.Context, coverURL string) ([]byte, error) {
	body, err := m.client.Open(ctx, coverURL)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "download %s", coverURL)
		}
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxCoverBytes+1))
	if err != nil {
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", integrations.ErrNetwork, err)}
	}
	if len(data) > maxCoverBytes {
		return nil, errors.New(errors.ErrCodeDecode, "cover larger than %d bytes", maxCoverBytes)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "response is not an image")
	}
	return data, nil
}

// writeFile writes through a temporary file so a concurrent reader never
// sees a partial image.
func writeFile(p string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(p), ".cover-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p)
}

// Clear deletes every cached cover and returns how many files were removed.
func (m *Manager) Clear() (int, error) {
	entries, err := os.ReadDir(m.opts.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(m.opts.Dir, e.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
