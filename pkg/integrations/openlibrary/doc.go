// Package openlibrary provides an HTTP client for the Open Library APIs.
//
// Search uses https://openlibrary.org/search.json and builds cover URLs
// from the cover_i field (https://covers.openlibrary.org/b/id/<id>-L.jpg).
// ISBN lookups use the books API with jscmd=data and prefer the large
// cover, then medium, then small.
package openlibrary
