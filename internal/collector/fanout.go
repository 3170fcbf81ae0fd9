package collector

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/OldStager01/parksense/pkg/models"
)

// Result is the outcome of collecting every spot.
type Result struct {
	Histories map[string][]models.Observation
	Errors    map[string]error
}

// Failed reports whether any spot failed.
func (r Result) Failed() bool {
	return len(r.Errors) > 0
}

// CollectAll collects the given spots with at most concurrency requests in
// flight. Spots that fail are reported in Errors and left out of Histories;
// one failure never cancels the others.
func CollectAll(ctx context.Context, c Collector, spotIDs []string, concurrency int) Result {
	if concurrency <= 0 {
		concurrency = 1
	}

	result := Result{
		Histories: make(map[string][]models.Observation, len(spotIDs)),
		Errors:    make(map[string]error),
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(concurrency)

	for _, id := range spotIDs {
		spotID := id
		g.Go(func() error {
			observations, err := c.Collect(ctx, spotID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors[spotID] = err
				return nil
			}
			result.Histories[spotID] = observations
			return nil
		})
	}

	_ = g.Wait()
	return result
}
