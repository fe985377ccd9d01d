package radar

import (
	"context"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// probeHosts measures TCP connect latency to every host, with at most limit
// dials in flight. Hosts that refuse or time out are simply absent from the
// result; an unreachable host is data here, not an error.
func probeHosts(ctx context.Context, hosts []string, timeout time.Duration, limit int) map[int]time.Duration {
	if limit < 1 {
		limit = 1
	}

	var mu sync.Mutex
	latencies := make(map[int]time.Duration)

	g := new(errgroup.Group)
	g.SetLimit(limit)
	for i, host := range hosts {
		i, host := i, host
		g.Go(func() error {
			d := net.Dialer{Timeout: timeout}
			start := time.Now()
			conn, err := d.DialContext(ctx, "tcp", probeAddr(host))
			if err != nil {
				return nil
			}
			elapsed := time.Since(start)
			conn.Close()

			mu.Lock()
			latencies[i] = elapsed
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return latencies
}

// probeAddr appends the probe port unless the host already carries one.
func probeAddr(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, "80")
}

// fastestIndex picks the probed host with the lowest latency. Ties go to the
// lowest index so the choice is deterministic.
func fastestIndex(latencies map[int]time.Duration) (int, bool) {
	best, found := 0, false
	for i, d := range latencies {
		switch {
		case !found:
			best, found = i, true
		case d < latencies[best]:
			best = i
		case d == latencies[best] && i < best:
			best = i
		}
	}
	return best, found
}
