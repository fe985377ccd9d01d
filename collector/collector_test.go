package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/skysnoop/radarfeed/radar"
)

type stubFetcher struct {
	payloads map[string]string
	failFeed bool
}

func (f *stubFetcher) FetchJSON(ctx context.Context, url string) (interface{}, error) {
	if f.failFeed && strings.Contains(url, "/zones/fcgi/") {
		return nil, errors.New("connection reset")
	}
	payload, ok := f.payloads[url]
	if !ok {
		return nil, fmt.Errorf("no payload registered for %s", url)
	}
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func newTestCollector(t *testing.T) (*Collector, *stubFetcher) {
	t.Helper()

	row := `["123","51.5","-0.1","90","35000","450","1200","5","B738","G-ABCD","1690000000","LHR","JFK","BA123","0","100","BAW123","0"]`
	f := &stubFetcher{payloads: map[string]string{
		"https://base.test/balance.json": `{"h1.example.com": 1}`,
		"http://h1.example.com/zones/fcgi/full_all.json": `{
			"version": 4,
			"full_count": 2,
			"10a1": ` + row + `,
			"10a2": ` + row + `,
			"bad": ["too", "short"]
		}`,
	}}

	session := radar.NewSession(f, radar.Options{BaseURL: "https://base.test"})
	if _, err := session.Hosts().Select(context.Background(), "h1.example.com"); err != nil {
		t.Fatalf("select host: %v", err)
	}
	if err := session.Zones().Select(context.Background(), "all"); err != nil {
		t.Fatalf("select zone: %v", err)
	}
	return NewCollector(session), f
}

func TestRefreshUpdatesStats(t *testing.T) {
	c, _ := newTestCollector(t)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	stats := c.GetStats()
	if stats.TotalSnapshots != 1 {
		t.Errorf("TotalSnapshots = %d, want 1", stats.TotalSnapshots)
	}
	if stats.ActiveFlights != 2 {
		t.Errorf("ActiveFlights = %d, want 2", stats.ActiveFlights)
	}
	if stats.SkippedRecords != 1 {
		t.Errorf("SkippedRecords = %d, want 1", stats.SkippedRecords)
	}
	if stats.Host != "h1.example.com" || stats.Zone != "all" {
		t.Errorf("host/zone = %q/%q", stats.Host, stats.Zone)
	}
	if stats.FeedVersion != "4" || stats.FullCount != 2 {
		t.Errorf("feed meta = %q/%d", stats.FeedVersion, stats.FullCount)
	}
	if stats.LastUpdate.IsZero() {
		t.Error("LastUpdate not set")
	}
}

func TestRefreshFailureKeepsStats(t *testing.T) {
	c, f := newTestCollector(t)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	before := c.GetStats()

	f.failFeed = true
	if err := c.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh succeeded against a failing feed")
	}

	after := c.GetStats()
	if after.TotalSnapshots != before.TotalSnapshots || !after.LastUpdate.Equal(before.LastUpdate) {
		t.Errorf("failed refresh changed the stats: %+v -> %+v", before, after)
	}
}

func TestRefreshPreconditions(t *testing.T) {
	f := &stubFetcher{payloads: map[string]string{}}
	c := NewCollector(radar.NewSession(f, radar.Options{BaseURL: "https://base.test"}))

	if err := c.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh succeeded with nothing selected")
	}
}
