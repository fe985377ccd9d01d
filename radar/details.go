package radar

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// fetchDetailsBatch fans the per-flight detail fetch out over ids with at
// most workers in flight. One flight's failure never aborts its siblings:
// failures are collected per flight and returned beside the partial result
// set, sorted by flight id.
func fetchDetailsBatch(ctx context.Context, store *AircraftStore, host string, ids []string, force bool, workers int) (map[string]map[string]interface{}, []FlightError) {
	if workers < 1 {
		workers = 1
	}

	var mu sync.Mutex
	results := make(map[string]map[string]interface{}, len(ids))
	var failures []FlightError

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			payload, err := store.Details(ctx, host, id, force)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, FlightError{FlightID: id, Err: err})
				return nil
			}
			results[id] = payload
			return nil
		})
	}
	g.Wait()

	sort.Slice(failures, func(i, j int) bool { return failures[i].FlightID < failures[j].FlightID })
	return results, failures
}
