// Package integrations provides HTTP clients for the book metadata APIs.
//
// # Overview
//
// Each API has its own subpackage:
//
//   - [googlebooks]: Google Books volumes search and ISBN lookup
//   - [openlibrary]: Open Library search and books API
//   - [goodreads]: Goodreads shelf RSS feeds
//
// # Client Pattern
//
// All API clients embed the shared [Client]:
//
//	c, _ := cache.NewFileCache(dir)
//	gb := googlebooks.NewClient(c, 24*time.Hour)
//	vols, err := gb.Search(ctx, "dune", "science fiction", 28, false)  // false = use cache
//
// Clients handle:
//   - HTTP requests with retry on 5xx, network errors and 429 responses
//   - Response caching through any [cache.Cache] backend with a TTL
//   - API-specific parsing and normalization
//
// Responses are cached as JSON after decoding, so a cache hit never touches
// the network. Cover images are downloaded by package covers, which uses
// [Client.Open] for streaming.
//
// [googlebooks]: github.com/shawnoster/bookcover-wallpaper/pkg/integrations/googlebooks
// [openlibrary]: github.com/shawnoster/bookcover-wallpaper/pkg/integrations/openlibrary
// [goodreads]: github.com/shawnoster/bookcover-wallpaper/pkg/integrations/goodreads
// [cache.Cache]: github.com/shawnoster/bookcover-wallpaper/pkg/cache.Cache
package integrations
