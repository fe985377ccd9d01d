package radar

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/skysnoop/radarfeed/types"
)

// FeedMeta carries the scalar metadata keys of an aircraft payload. They sit
// alongside the flight rows in the raw object but are not records.
type FeedMeta struct {
	Version   string `json:"version"`
	FullCount int64  `json:"full_count"`
}

// AircraftStore holds the decoded flight table for the most recent fetch.
// There is one table per store; fetching a different zone replaces it. The
// per-flight detail cache lives beside it and survives table refreshes.
type AircraftStore struct {
	fetcher Fetcher

	mu      sync.RWMutex
	records map[string]types.AircraftRecord
	order   []string
	meta    FeedMeta
	skipped int

	detailMu sync.Mutex
	details  map[string]map[string]interface{}
}

func newAircraftStore(fetcher Fetcher) *AircraftStore {
	return &AircraftStore{
		fetcher: fetcher,
		details: make(map[string]map[string]interface{}),
	}
}

// feedURL builds the aircraft endpoint for a zone. The "all" pseudo-zone
// maps to the global feed path, every other zone to its own path.
func feedURL(host, zone string) string {
	if zone == ZoneAll {
		return fmt.Sprintf("http://%s/zones/fcgi/full_all.json", host)
	}
	return fmt.Sprintf("http://%s/zones/fcgi/%s_all.json", host, zone)
}

func detailURL(host, id string) string {
	return fmt.Sprintf("http://%s/_external/planedata_json.1.3.php?f=%s", host, id)
}

// Fetch returns the flight table for the zone, refreshing it from the host
// when the cache is empty or force is set. The returned map is a snapshot
// the caller may keep.
func (s *AircraftStore) Fetch(ctx context.Context, host, zone string, force bool) (map[string]types.AircraftRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 || force {
		if err := s.refreshLocked(ctx, host, zone); err != nil {
			return nil, err
		}
	}
	return s.snapshotLocked(), nil
}

func (s *AircraftStore) refreshLocked(ctx context.Context, host, zone string) error {
	url := feedURL(host, zone)
	v, err := s.fetcher.FetchJSON(ctx, url)
	if err != nil {
		return &APIError{URL: url, Zone: zone, Err: err}
	}
	payload, ok := v.(map[string]interface{})
	if !ok {
		return &APIError{URL: url, Zone: zone, Err: fmt.Errorf("expected an object, got %T", v)}
	}

	records := make(map[string]types.AircraftRecord, len(payload))
	var meta FeedMeta
	skipped := 0
	for id, raw := range payload {
		switch id {
		case "version":
			meta.Version = stringValue(raw)
			continue
		case "full_count":
			if n, ok := raw.(json.Number); ok {
				meta.FullCount, _ = n.Int64()
			}
			continue
		}
		row, ok := raw.([]interface{})
		if !ok || len(row) != types.AircraftFieldCount {
			// Live feeds are not schema-clean. A row of the wrong shape is
			// dropped rather than zipped against the wrong field names.
			skipped++
			continue
		}
		values := make([]string, len(row))
		for i, cell := range row {
			values[i] = stringValue(cell)
		}
		if rec, ok := types.NewAircraftRecord(id, values); ok {
			records[id] = rec
		}
	}

	order := make([]string, 0, len(records))
	for id := range records {
		order = append(order, id)
	}
	sort.Strings(order)

	// Whole-table replace. Nothing above touched s.records, so a failed
	// fetch leaves the previous table usable.
	s.records = records
	s.order = order
	s.meta = meta
	s.skipped = skipped
	return nil
}

// stringValue normalizes one positional cell. The feed mixes strings,
// numbers, and booleans across hosts and feed versions.
func stringValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Records returns a snapshot of the cached table without fetching.
func (s *AircraftStore) Records() map[string]types.AircraftRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// FlightIDs returns the cached flight ids in table order.
func (s *AircraftStore) FlightIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Record returns one cached flight.
func (s *AircraftStore) Record(id string) (types.AircraftRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

// Meta returns the metadata of the last decoded payload and the number of
// malformed rows it contained.
func (s *AircraftStore) Meta() (FeedMeta, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta, s.skipped
}

func (s *AircraftStore) snapshotLocked() map[string]types.AircraftRecord {
	out := make(map[string]types.AircraftRecord, len(s.records))
	for id, rec := range s.records {
		out[id] = rec
	}
	return out
}

// Details fetches the enrichment payload for one flight, cached by flight
// id. force refreshes exactly that flight's entry, never the whole cache.
// When the flight is present in the record table the payload is also
// attached to its Details field.
func (s *AircraftStore) Details(ctx context.Context, host, id string, force bool) (map[string]interface{}, error) {
	s.detailMu.Lock()
	cached, ok := s.details[id]
	s.detailMu.Unlock()
	if ok && !force {
		s.attachDetails(id, cached)
		return cached, nil
	}

	url := detailURL(host, id)
	v, err := s.fetcher.FetchJSON(ctx, url)
	if err != nil {
		return nil, &APIError{URL: url, Err: err}
	}
	payload, ok := v.(map[string]interface{})
	if !ok {
		return nil, &APIError{URL: url, Err: fmt.Errorf("expected an object, got %T", v)}
	}

	s.detailMu.Lock()
	s.details[id] = payload
	s.detailMu.Unlock()

	s.attachDetails(id, payload)
	return payload, nil
}

// attachDetails sets the detail payload on the cached record. The record is
// replaced, not mutated, so snapshots handed out earlier are unaffected.
func (s *AircraftStore) attachDetails(id string, payload map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return
	}
	rec.Details = payload
	s.records[id] = rec
}
