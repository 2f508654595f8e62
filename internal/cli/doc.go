// Package cli implements the bookcover-wallpaper command-line interface.
//
// The CLI is built on cobra and wires the pipeline together: it loads the
// TOML config, opens the response cache (file or Redis), creates the cover
// download manager and hands a [pipeline.Runner] to each command.
//
// # Commands
//
//   - generate: resolve books, download covers and write the wallpaper
//   - layout: print the masonry grid for a cover count without drawing
//   - serve: HTTP preview server
//   - cache: clear or locate cached responses and covers
//   - config: print the effective config or its path
//   - completion: shell completion scripts
//
// # Configuration
//
// Flags override the config file, which overrides built-in defaults. Only
// flags the user actually set take precedence over the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// registers log hooks for pipeline stages, cache lookups and HTTP requests.
package cli
