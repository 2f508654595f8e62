// Package pkg provides the core libraries for bookcover-wallpaper.
//
// # Overview
//
// bookcover-wallpaper turns a list of books into a desktop wallpaper: covers
// are laid out in a masonry grid of uniform cells and painted onto a canvas.
// The pkg directory is organized into four main areas:
//
//  1. Domain logic: [masonry] (grid layout) and [compose] (drawing)
//  2. Book sources: [source] and its local, goodreads and search subpackages
//  3. Infrastructure: [cache], [covers], [config], [watcher], [io]
//  4. Orchestration: [pipeline] (resolve → layout → compose) and [server]
//
// # Architecture
//
// The typical data flow:
//
//	Local directory / Goodreads export or shelf / book search
//	         ↓
//	    [source] package (list books with cover paths or URLs)
//	         ↓
//	    [covers] package (download and cache cover images)
//	         ↓
//	    [masonry] package (choose columns and cell size, place covers)
//	         ↓
//	    [compose] package (crop, resize, paste, encode)
//	         ↓
//	    PNG/JPEG wallpaper
//
// # Quick Start
//
// Lay out and draw a directory of covers:
//
//	import (
//	    "github.com/shawnoster/bookcover-wallpaper/pkg/compose"
//	    "github.com/shawnoster/bookcover-wallpaper/pkg/masonry"
//	)
//
//	canvas := masonry.Canvas{Width: 1920, Height: 1080, Gap: 4}
//	l, _ := masonry.Build(canvas, masonry.DefaultAspect, paths)
//	img, report, _ := compose.Compose(ctx, l.Placements, compose.WithSize(1920, 1080))
//	_ = compose.Save("wallpaper.png", img)
//
// Or run the whole pipeline, including sources and downloads:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger, pipeline.WithCovers(mgr))
//	result, err := runner.Execute(ctx, pipeline.Options{Path: "~/Pictures/covers"})
//
// # Main Packages
//
// ## Core Domain Logic
//
// [masonry] - The layout engine. [masonry.ChooseLayout] derives a column
// count and cell size from the canvas area and cover count;
// [masonry.PlaceCovers] drops each cover into the shortest column.
// Pure and deterministic.
//
// [compose] - The compositor. Crops each cover to the cell aspect ratio,
// resizes it with Lanczos, pastes it clipped to the canvas and encodes PNG
// or JPEG. Unreadable covers are skipped, not fatal.
//
// ## Sources & Integrations
//
// [source] - The [source.Source] interface and the book model. Subpackages
// read a local directory, a Goodreads CSV export or RSS shelf, or search
// Google Books and Open Library.
//
// [integrations] - HTTP clients for Google Books, Open Library and Goodreads
// sharing retry, caching and observability hooks.
//
// ## Infrastructure
//
// [cache] - TTL byte cache with file, Redis and null backends.
//
// [covers] - Bounded-concurrency cover downloader with an on-disk cache
// keyed by a BLAKE3 hash of the cover URL.
//
// [config] - TOML config file with XDG paths.
//
// [watcher] - Debounced fsnotify watcher for regenerating on changes.
//
// [io] - Layout JSON import and export.
//
// [errors] - Coded errors and input validation.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// ## Orchestration
//
// [pipeline] - The resolve → layout → compose pipeline used by the CLI and
// the preview server.
//
// [server] - HTTP preview server.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/masonry/...            # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [masonry]: https://pkg.go.dev/github.com/shawnoster/bookcover-wallpaper/pkg/masonry
// [compose]: https://pkg.go.dev/github.com/shawnoster/bookcover-wallpaper/pkg/compose
// [source]: https://pkg.go.dev/github.com/shawnoster/bookcover-wallpaper/pkg/source
// [integrations]: https://pkg.go.dev/github.com/shawnoster/bookcover-wallpaper/pkg/integrations
// [cache]: https://pkg.go.dev/github.com/shawnoster/bookcover-wallpaper/pkg/cache
// [covers]: https://pkg.go.dev/github.com/shawnoster/bookcover-wallpaper/pkg/covers
// [config]: https://pkg.go.dev/github.com/shawnoster/bookcover-wallpaper/pkg/config
// [watcher]: https://pkg.go.dev/github.com/shawnoster/bookcover-wallpaper/pkg/watcher
// [io]: https://pkg.go.dev/github.com/shawnoster/bookcover-wallpaper/pkg/io
// [errors]: https://pkg.go.dev/github.com/shawnoster/bookcover-wallpaper/pkg/errors
// [observability]: https://pkg.go.dev/github.com/shawnoster/bookcover-wallpaper/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/shawnoster/bookcover-wallpaper/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/shawnoster/bookcover-wallpaper/pkg/server
package pkg
