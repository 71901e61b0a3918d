package series

import (
	"context"
	"errors"

	"github.com/carbocation/geocounts/geo"
	"github.com/carbocation/geocounts/pairspec"
	"golang.org/x/sync/errgroup"
)

// RunAll processes every series of specs, up to concurrency at a time. Each
// series owns its state and diagnostics, so nothing is shared between the
// goroutines. Results are returned in the order of specs. The first fatal
// error cancels the series that have not finished.
func RunAll(ctx context.Context, specs pairspec.SeriesSpecs, cfg Config, fetcher geo.Fetcher, concurrency int) ([]*Series, error) {
	if cfg.CountFile != "" && len(specs) > 1 {
		return nil, errors.New("a count file override can only be used with a single series")
	}

	// Build every series up front so that invalid accessions fail before
	// anything is downloaded.
	out := make([]*Series, len(specs))
	for i, spec := range specs {
		s, err := New(spec.Accession, spec.Pairs, cfg, fetcher)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}

	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, s := range out {
		s := s
		g.Go(func() error {
			return s.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return out, err
	}

	return out, nil
}

// Matched collects the matched-sample records of every series, in order.
func Matched(all []*Series) []pairspec.SeriesSamples {
	out := make([]pairspec.SeriesSamples, 0, len(all))
	for _, s := range all {
		if s == nil {
			continue
		}
		out = append(out, s.Matched())
	}

	return out
}
