package classify

import (
	"context"
	"runtime"

	"github.com/hyperjump/konomi/internal/interest"
	"golang.org/x/sync/errgroup"
)

// BatchStats summarizes one classification pass over a URL batch.
type BatchStats struct {
	Classified int
	Skipped    int
}

// ClassifyBatch classifies a batch of URLs across parallelism goroutines and
// returns the aggregated vector. Each worker tallies a contiguous shard in
// uint64, so the result is identical for any parallelism. Malformed and
// unknown URLs are skipped, never fatal. Cancelling ctx stops the batch
// between URLs and returns the context error with a zero vector.
func (c *Classifier) ClassifyBatch(ctx context.Context, urls []string, parallelism int) (interest.Vector, BatchStats, error) {
	if len(urls) == 0 {
		return interest.Vector{}, BatchStats{}, nil
	}
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	if parallelism > len(urls) {
		parallelism = len(urls)
	}

	tallies := make([]interest.Tally, parallelism)
	stats := make([]BatchStats, parallelism)

	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(urls) + parallelism - 1) / parallelism
	for shard := 0; shard < parallelism; shard++ {
		lo := shard * chunk
		hi := lo + chunk
		if lo >= len(urls) {
			break
		}
		if hi > len(urls) {
			hi = len(urls)
		}
		shard := shard
		part := urls[lo:hi]
		g.Go(func() error {
			for _, raw := range part {
				if err := ctx.Err(); err != nil {
					return err
				}
				if cat, ok := c.Classify(raw); ok {
					tallies[shard].Add(cat)
					stats[shard].Classified++
				} else {
					stats[shard].Skipped++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return interest.Vector{}, BatchStats{}, err
	}

	var total interest.Tally
	var agg BatchStats
	for i := range tallies {
		total.Merge(tallies[i])
		agg.Classified += stats[i].Classified
		agg.Skipped += stats[i].Skipped
	}
	return total.Vector(), agg, nil
}
