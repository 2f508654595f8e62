package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/shawnoster/bookcover-wallpaper/pkg/cache"
	"github.com/shawnoster/bookcover-wallpaper/pkg/config"
	"github.com/shawnoster/bookcover-wallpaper/pkg/covers"
	"github.com/shawnoster/bookcover-wallpaper/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// redisConnectTimeout bounds the initial Redis ping.
	redisConnectTimeout = 5 * time.Second
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the config file location (--config).
	ConfigPath string

	cfg config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads --config, or the default location when it exists.
func (c *CLI) loadConfig() error {
	var (
		cfg config.Config
		err error
	)
	if c.ConfigPath != "" {
		cfg, err = config.LoadFile(c.ConfigPath)
	} else {
		cfg, err = config.Load(config.DefaultPath())
	}
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "cache_dir", cfg.CacheDir, "source", cfg.Source.Kind)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// runnerOpts controls how newRunner wires the pipeline.
type runnerOpts struct {
	noCache     bool
	refresh     bool
	concurrency int
	timeout     time.Duration
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, ro runnerOpts) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, ro.noCache)
	if err != nil {
		return nil, err
	}
	mgr, err := covers.NewManager(covers.Options{
		Dir:         coversDir(c.cfg.CacheDir),
		Concurrency: ro.concurrency,
		Timeout:     ro.timeout,
		Refresh:     ro.refresh,
		Logger:      c.Logger,
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger,
		pipeline.WithCovers(mgr),
		pipeline.WithHTTPTTL(c.cfg.CacheTTL.Duration),
	), nil
}

// newCache opens Redis when redis_url is configured and the file cache
// otherwise.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if c.cfg.RedisURL != "" {
		rctx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
		defer cancel()
		rc, err := cache.NewRedisCache(rctx, c.cfg.RedisURL, cache.DefaultRedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return rc, nil
	}
	fc, err := cache.NewFileCache(httpCacheDir(c.cfg.CacheDir))
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// httpCacheDir holds API responses and rendered wallpapers.
func httpCacheDir(root string) string { return filepath.Join(root, "http") }

// coversDir holds downloaded cover images.
func coversDir(root string) string { return filepath.Join(root, "covers") }
