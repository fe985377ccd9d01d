package collector

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/skysnoop/radarfeed/radar"
	"github.com/skysnoop/radarfeed/types"
)

// Collector drives periodic feed refreshes over one session and keeps
// running statistics about them.
type Collector struct {
	session *radar.Session

	mu    sync.RWMutex
	stats types.FeedStats
}

func NewCollector(session *radar.Session) *Collector {
	return &Collector{
		session: session,
		stats: types.FeedStats{
			StartTime: time.Now(),
		},
	}
}

func (c *Collector) GetStats() types.FeedStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Refresh forces one feed fetch and folds the outcome into the stats. A
// failed fetch leaves both the session's cache and the stats as they were.
func (c *Collector) Refresh(ctx context.Context) error {
	records, err := c.session.Aircraft(ctx, true)
	if err != nil {
		return fmt.Errorf("error refreshing feed: %v", err)
	}

	meta, skipped := c.session.FeedMeta()
	host, _ := c.session.Hosts().Selected()
	zone, _ := c.session.Zones().Selected()

	c.mu.Lock()
	c.stats.LastUpdate = time.Now()
	c.stats.TotalSnapshots++
	c.stats.ActiveFlights = len(records)
	c.stats.SkippedRecords = skipped
	c.stats.Host = host.Name
	c.stats.Zone = zone
	c.stats.FeedVersion = meta.Version
	c.stats.FullCount = meta.FullCount
	snapshots := c.stats.TotalSnapshots
	c.mu.Unlock()

	log.Printf("Feed update: %d flights (zone %s, host %s), %d malformed rows skipped, total snapshots: %d",
		len(records), zone, host.Name, skipped, snapshots)
	return nil
}
