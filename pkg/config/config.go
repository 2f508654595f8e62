// Package config loads bookcover-wallpaper settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/bookcover-wallpaper/config.toml
// (~/.config when XDG_CONFIG_HOME is unset). Every key is optional; missing
// keys keep the values from [Default]. Command-line flags override the file.
//
//	width = 2560
//	height = 1440
//	background = "#101010"
//
//	[source]
//	kind = "goodreads"
//	goodreads = "12345678"
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/shawnoster/bookcover-wallpaper/pkg/errors"
	"github.com/shawnoster/bookcover-wallpaper/pkg/masonry"
)

// AppName names the config and cache directories.
const AppName = "bookcover-wallpaper"

// Config holds every setting that can live in the config file.
type Config struct {
	Width      int      `toml:"width"`
	Height     int      `toml:"height"`
	Gap        int      `toml:"gap"`
	Aspect     string   `toml:"aspect"`
	Overfill   float64  `toml:"overfill"`
	Columns    int      `toml:"columns"`
	Background string   `toml:"background"`
	Output     string   `toml:"output"`
	Limit      int      `toml:"limit"`
	Shuffle    bool     `toml:"shuffle"`
	CacheDir   string   `toml:"cache_dir"`
	RedisURL   string   `toml:"redis_url"`
	CacheTTL   Duration `toml:"cache_ttl"`

	Concurrency int      `toml:"concurrency"`
	Timeout     Duration `toml:"timeout"`

	Source SourceConfig `toml:"source"`
	Server ServerConfig `toml:"server"`
}

// SourceConfig selects where books come from.
type SourceConfig struct {
	Kind      string `toml:"kind"`
	Path      string `toml:"path"`
	Goodreads string `toml:"goodreads"`
	Shelf     string `toml:"shelf"`
	Query     string `toml:"query"`
	Genre     string `toml:"genre"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Width:       1920,
		Height:      1080,
		Gap:         4,
		Aspect:      masonry.DefaultAspect.String(),
		Overfill:    masonry.DefaultOverfill,
		Background:  "#1e1e1e",
		Output:      "wallpaper.png",
		Limit:       18,
		CacheDir:    DefaultCacheDir(),
		CacheTTL:    Duration{7 * 24 * time.Hour},
		Concurrency: 8,
		Timeout:     Duration{30 * time.Second},
		Source: SourceConfig{
			Kind:  "local",
			Shelf: "read",
		},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
	}
}

// DefaultPath returns the config file location.
func DefaultPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), AppName, "config.toml")
}

// DefaultCacheDir returns the cache root.
func DefaultCacheDir() string {
	return filepath.Join(xdgDir("XDG_CACHE_HOME", ".cache"), AppName)
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), fallback)
	}
	return filepath.Join(home, fallback)
}

// Load reads path on top of [Default]. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg, err := LoadFile(path)
	if errors.Is(err, errors.ErrCodeNotFound) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFile reads path on top of [Default]. Unknown keys are rejected so
// that typos do not pass silently.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", path)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidFormat, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.CacheDir = ExpandHome(cfg.CacheDir)
	cfg.Source.Path = ExpandHome(cfg.Source.Path)
	cfg.Output = ExpandHome(cfg.Output)
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(errors.GetCode(err), err, "%s", path)
	}
	return cfg, nil
}

// Validate checks values that cannot be fixed up later.
func (c Config) Validate() error {
	if err := errors.ValidateDimensions(c.Width, c.Height); err != nil {
		return err
	}
	if c.Gap < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "gap must be non-negative, got %d", c.Gap)
	}
	if _, err := masonry.ParseAspectRatio(c.Aspect); err != nil {
		return err
	}
	if c.Overfill <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "overfill must be positive, got %v", c.Overfill)
	}
	if _, err := errors.ParseColor(c.Background); err != nil {
		return err
	}
	if c.Limit < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "limit must be non-negative, got %d", c.Limit)
	}
	return nil
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
