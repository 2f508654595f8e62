package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set: %v", err)
	}
	if data, hit, err := c.Get(ctx, "key"); err != nil || hit || data != nil {
		t.Errorf("Get after Set = %q, %v, %v; want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v; want miss", hit, err)
	}

	if err := c.Set(ctx, "http:googlebooks:isbn:9780261103344", []byte(`{"items":[]}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "http:googlebooks:isbn:9780261103344")
	if err != nil || !hit {
		t.Fatalf("Get = hit %v, err %v; want hit", hit, err)
	}
	if string(data) != `{"items":[]}` {
		t.Errorf("Get data = %q", data)
	}

	if err := c.Delete(ctx, "http:googlebooks:isbn:9780261103344"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "http:googlebooks:isbn:9780261103344"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete(never-set) = %v, want nil", err)
	}
}

func TestFileCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "key", []byte("value"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); !hit {
		t.Fatal("fresh entry should hit")
	}

	time.Sleep(20 * time.Millisecond)

	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("expired entry = hit %v, err %v; want miss", hit, err)
	}
	if _, err := os.Stat(c.path("key")); !os.IsNotExist(err) {
		t.Error("expired entry file should be removed")
	}
}

func TestFileCacheNoTTL(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); !hit {
		t.Error("entry without TTL should hit")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("key")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("corrupt entry = hit %v, err %v; want miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), time.Hour); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}
	keep := filepath.Join(dir, "README")
	if err := os.WriteFile(keep, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Error("Clear removed a non-entry file")
	}
}

func TestFileCachePathSharding(t *testing.T) {
	c, _ := NewFileCache(t.TempDir())
	p := c.path("key")
	d := digest([]byte("key"))

	if filepath.Base(filepath.Dir(p)) != d[:2] {
		t.Errorf("path %s not sharded by %s", p, d[:2])
	}
	if filepath.Base(p) != d[2:]+".json" {
		t.Errorf("path %s has unexpected filename", p)
	}
}

func TestDigest(t *testing.T) {
	tests := []struct {
		a, b string
		same bool
	}{
		{"hello", "hello", true},
		{"hello", "world", false},
		{"", "", true},
		{"wallpaper", "wallpaper ", false},
	}
	for _, tt := range tests {
		da, db := digest([]byte(tt.a)), digest([]byte(tt.b))
		if len(da) != 64 {
			t.Errorf("digest(%q) length = %d, want 64", tt.a, len(da))
		}
		if (da == db) != tt.same {
			t.Errorf("digest(%q) == digest(%q) is %v, want %v", tt.a, tt.b, da == db, tt.same)
		}
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.HTTPKey("openlibrary", "isbn:9780261103344"); got != "http:openlibrary:isbn:9780261103344" {
		t.Errorf("HTTPKey unexpected: %s", got)
	}

	base := WallpaperKeyOpts{Covers: []string{"a.jpg", "b.jpg"}, Width: 1920, Height: 1080, Gap: 4, Aspect: "2:3"}
	if got := k.WallpaperKey(base); !strings.HasPrefix(got, "wallpaper:") || len(got) != len("wallpaper:")+64 {
		t.Errorf("WallpaperKey = %q, want wallpaper:<64 hex>", got)
	}
	same := base
	same.Covers = []string{"a.jpg", "b.jpg"}
	if k.WallpaperKey(base) != k.WallpaperKey(same) {
		t.Error("equal options should produce equal keys")
	}

	variants := []func(o *WallpaperKeyOpts){
		func(o *WallpaperKeyOpts) { o.Covers = []string{"b.jpg", "a.jpg"} },
		func(o *WallpaperKeyOpts) { o.Width = 2560 },
		func(o *WallpaperKeyOpts) { o.Gap = 0 },
		func(o *WallpaperKeyOpts) { o.Columns = 5 },
		func(o *WallpaperKeyOpts) { o.Background = "#000000" },
		func(o *WallpaperKeyOpts) { o.Format = "jpeg" },
	}
	for i, mutate := range variants {
		o := base
		o.Covers = append([]string(nil), base.Covers...)
		mutate(&o)
		if k.WallpaperKey(o) == k.WallpaperKey(base) {
			t.Errorf("variant %d should change the wallpaper key", i)
		}
	}
}

func TestRedisCacheKeyPrefix(t *testing.T) {
	c := newRedisCache(nil, "")
	if got := c.key("http:goodreads:rss"); got != DefaultRedisPrefix+"http:goodreads:rss" {
		t.Errorf("key() = %q", got)
	}
	c = newRedisCache(nil, "test:")
	if got := c.key("k"); got != "test:k" {
		t.Errorf("key() = %q", got)
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("BOOKCOVER_TEST_REDIS_URL")
	if url == "" {
		t.Skip("BOOKCOVER_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url, "bookcover-wallpaper-test:")
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()
	defer c.Clear(ctx)

	if err := c.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || string(data) != "value" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("Get after Delete should miss")
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not a url", ""); err == nil {
		t.Error("NewRedisCache with bad URL should fail")
	}
}
