package pipeline

import (
	"github.com/shawnoster/bookcover-wallpaper/pkg/config"
	"github.com/shawnoster/bookcover-wallpaper/pkg/source"
	"github.com/shawnoster/bookcover-wallpaper/pkg/source/goodreads"
	"github.com/shawnoster/bookcover-wallpaper/pkg/source/local"
	"github.com/shawnoster/bookcover-wallpaper/pkg/source/search"
)

// BuildSource returns the source selected by opts.Source, wired to the
// runner's API clients.
func (r *Runner) BuildSource(opts Options) (source.Source, error) {
	if err := opts.ValidateForSource(); err != nil {
		return nil, err
	}
	switch source.Kind(opts.Source) {
	case source.KindGoodreads:
		return goodreads.New(config.ExpandHome(opts.Goodreads),
			goodreads.WithShelf(opts.Shelf),
			goodreads.WithFeedFetcher(r.goodreads),
			goodreads.WithCoverLookups(r.google, r.openlib),
			goodreads.WithRefresh(opts.Refresh),
			goodreads.WithLogger(opts.Logger),
		), nil
	case source.KindSearch:
		s := search.New(opts.Query, opts.Genre, r.google, r.openlib, opts.Logger)
		s.Refresh = opts.Refresh
		return s, nil
	default:
		return local.New(config.ExpandHome(opts.Path)), nil
	}
}
