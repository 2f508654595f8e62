// Package cache stores API responses and rendered wallpapers behind a small
// byte-oriented interface.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: JSON entry files under the user cache directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for the preview server or
//     several machines pointing at the same book feeds
//   - [NullCache]: never stores anything (--no-cache)
//
// Keys are built by a [Keyer] so that every caller hashes the same inputs
// the same way. Downloaded cover images are not stored here; package covers
// keeps them as plain files so the compositor can open them directly.
package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/zeebo/blake3"
)

// Cache is a TTL-aware byte store.
//
// Get reports (data, true, nil) on a hit and (nil, false, nil) on a miss or
// an expired entry. A ttl of 0 passed to Set means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Keyer derives cache keys.
type Keyer interface {
	// HTTPKey identifies a cached API response. Namespace is the API
	// ("googlebooks", "openlibrary", "goodreads"), key the request identity.
	HTTPKey(namespace, key string) string

	// WallpaperKey identifies a rendered wallpaper.
	WallpaperKey(opts WallpaperKeyOpts) string
}

// WallpaperKeyOpts captures every input that changes a rendered wallpaper.
type WallpaperKeyOpts struct {
	Covers     []string `json:"covers"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Gap        int      `json:"gap"`
	Aspect     string   `json:"aspect"`
	Overfill   float64  `json:"overfill"`
	Columns    int      `json:"columns"`
	Background string   `json:"background"`
	Format     string   `json:"format"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// WallpaperKey returns "wallpaper:<digest>" over the JSON form of opts, so
// long cover lists still produce fixed-size keys.
func (DefaultKeyer) WallpaperKey(opts WallpaperKeyOpts) string {
	data, _ := json.Marshal(opts)
	return "wallpaper:" + digest(data)
}

// digest is the hex BLAKE3-256 sum of data. Wallpaper keys and
// [FileCache] entry names both use it.
func digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NullCache stores nothing and every Get misses. It backs --no-cache.
type NullCache struct{}

// NewNullCache returns a [NullCache].
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
