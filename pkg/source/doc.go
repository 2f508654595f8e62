// Package source defines where book covers come from.
//
// A [Source] returns [Book] values; the pipeline picks one implementation
// per run:
//
//   - [local]: image files in a directory
//   - [goodreads]: a Goodreads CSV export, a user ID or a shelf RSS URL
//   - [search]: Google Books and Open Library queried concurrently
//
// Sources only list books. Downloading covers into the cache is the job of
// package covers, so a source may return books that only carry a CoverURL.
//
// [local]: github.com/shawnoster/bookcover-wallpaper/pkg/source/local
// [goodreads]: github.com/shawnoster/bookcover-wallpaper/pkg/source/goodreads
// [search]: github.com/shawnoster/bookcover-wallpaper/pkg/source/search
package source
