// Package goodreads fetches public Goodreads shelf feeds.
//
// Goodreads closed its JSON API, but every public shelf is still exported
// as RSS at https://www.goodreads.com/review/list_rss/<user>?shelf=<shelf>.
// [Client.Shelf] builds that URL from a user ID; [Client.Feed] accepts any
// feed URL. Parsed items are cached, not the raw XML.
package goodreads
