// Package googlebooks provides an HTTP client for the Google Books API.
//
// # Overview
//
// This package searches the volumes endpoint
// (https://www.googleapis.com/books/v1/volumes) for books with cover
// images, and looks up a single cover by ISBN.
//
// # Usage
//
//	client := googlebooks.NewClient(c, 24*time.Hour)
//
//	vols, err := client.Search(ctx, "dune", "science fiction", 28, false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cover, err := client.CoverByISBN(ctx, "9780441172719", false)
//
// Image links are taken in order large, medium, thumbnail and rewritten to
// https. Volumes without any image are skipped.
package googlebooks
