// Package radar models one client session against the aggregator's live
// flight feed: resolving an edge host, selecting a zone, and decoding the
// positional aircraft payloads into typed records.
package radar

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/skysnoop/radarfeed/types"
)

// Fetcher fetches a URL and decodes its JSON body into a generic value.
// jsonfetcher.Client satisfies it.
type Fetcher interface {
	FetchJSON(ctx context.Context, url string) (interface{}, error)
}

// DefaultBaseURL is the aggregator's site root, serving the balancer, zone,
// and airport endpoints. Aircraft endpoints go to the selected edge host
// instead.
const DefaultBaseURL = "https://www.flightradar24.com"

const (
	defaultProbeTimeout     = 3 * time.Second
	defaultProbeConcurrency = 8
	defaultDetailWorkers    = 4
)

// Options tunes a Session. Zero values fall back to defaults.
type Options struct {
	BaseURL          string
	ProbeTimeout     time.Duration
	ProbeConcurrency int
	DetailWorkers    int
}

// Session composes the host directory, zone index, and aircraft store, and
// enforces that a host and zone are selected before any feed query. A
// session owns all of its caches; none outlive it.
type Session struct {
	fetcher       Fetcher
	baseURL       string
	hosts         *HostDirectory
	zones         *ZoneIndex
	aircraft      *AircraftStore
	detailWorkers int

	airportMu sync.Mutex
	airports  []types.Airport
}

func NewSession(fetcher Fetcher, opts Options) *Session {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = defaultProbeTimeout
	}
	if opts.ProbeConcurrency <= 0 {
		opts.ProbeConcurrency = defaultProbeConcurrency
	}
	if opts.DetailWorkers <= 0 {
		opts.DetailWorkers = defaultDetailWorkers
	}
	return &Session{
		fetcher:       fetcher,
		baseURL:       opts.BaseURL,
		hosts:         newHostDirectory(fetcher, opts.BaseURL, opts.ProbeTimeout, opts.ProbeConcurrency),
		zones:         newZoneIndex(fetcher, opts.BaseURL),
		aircraft:      newAircraftStore(fetcher),
		detailWorkers: opts.DetailWorkers,
	}
}

func (s *Session) Hosts() *HostDirectory { return s.hosts }

func (s *Session) Zones() *ZoneIndex { return s.zones }

// preconditions returns the selected host and zone or a PreconditionError
// naming the first missing one. Re-evaluated on every feed call because the
// selection can change between calls.
func (s *Session) preconditions() (Host, string, error) {
	host, ok := s.hosts.Selected()
	if !ok {
		return Host{}, "", &PreconditionError{Missing: "host"}
	}
	zone, ok := s.zones.Selected()
	if !ok {
		return Host{}, "", &PreconditionError{Missing: "zone"}
	}
	return host, zone, nil
}

// Aircraft returns the flight table for the selected host and zone, fetching
// when the cache is empty or force is set.
func (s *Session) Aircraft(ctx context.Context, force bool) (map[string]types.AircraftRecord, error) {
	host, zone, err := s.preconditions()
	if err != nil {
		return nil, err
	}
	return s.aircraft.Fetch(ctx, host.Name, zone, force)
}

// FlightIDs returns the cached flight ids in table order.
func (s *Session) FlightIDs() []string {
	return s.aircraft.FlightIDs()
}

// Record returns one cached flight without fetching.
func (s *Session) Record(id string) (types.AircraftRecord, bool) {
	return s.aircraft.Record(id)
}

// FeedMeta returns the metadata of the last decoded payload and the number
// of malformed rows skipped while decoding it.
func (s *Session) FeedMeta() (FeedMeta, int) {
	return s.aircraft.Meta()
}

// Details fetches the enrichment payload for one flight.
func (s *Session) Details(ctx context.Context, id string, force bool) (map[string]interface{}, error) {
	host, _, err := s.preconditions()
	if err != nil {
		return nil, err
	}
	return s.aircraft.Details(ctx, host.Name, id, force)
}

// FindByField matches pattern, an unanchored regular expression, against the
// named field of every cached flight and returns the matching ids in table
// order. The cache is populated first when empty or force is set.
func (s *Session) FindByField(ctx context.Context, field, pattern string, force bool) ([]string, error) {
	ids, _, err := s.findByField(ctx, field, pattern, force)
	return ids, err
}

// RecordsByField materializes the records matched by FindByField.
func (s *Session) RecordsByField(ctx context.Context, field, pattern string, force bool) ([]types.AircraftRecord, error) {
	ids, records, err := s.findByField(ctx, field, pattern, force)
	if err != nil {
		return nil, err
	}
	out := make([]types.AircraftRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, records[id])
	}
	return out, nil
}

// DetailsByField fetches detail payloads for every flight matched by
// FindByField, a bounded number at a time. Flights that fail come back as
// FlightError values beside the partial result set; only precondition and
// search failures abort the whole call.
func (s *Session) DetailsByField(ctx context.Context, field, pattern string, force bool) (map[string]map[string]interface{}, []FlightError, error) {
	ids, _, err := s.findByField(ctx, field, pattern, force)
	if err != nil {
		return nil, nil, err
	}
	host, _, err := s.preconditions()
	if err != nil {
		return nil, nil, err
	}
	results, failures := fetchDetailsBatch(ctx, s.aircraft, host.Name, ids, force, s.detailWorkers)
	return results, failures, nil
}

func (s *Session) findByField(ctx context.Context, field, pattern string, force bool) ([]string, map[string]types.AircraftRecord, error) {
	if _, ok := (&types.AircraftRecord{}).Field(field); !ok {
		return nil, nil, fmt.Errorf("%w %q", ErrUnknownField, field)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("%w %q: %v", ErrBadPattern, pattern, err)
	}

	records, err := s.Aircraft(ctx, force)
	if err != nil {
		return nil, nil, err
	}

	var matches []string
	for _, id := range s.aircraft.FlightIDs() {
		rec, ok := records[id]
		if !ok {
			continue
		}
		value, _ := rec.Field(field)
		if re.MatchString(value) {
			matches = append(matches, id)
		}
	}
	return matches, records, nil
}

// Airports returns the aggregator's airport directory, decoded from the
// rows field of the airports endpoint and cached.
func (s *Session) Airports(ctx context.Context, force bool) ([]types.Airport, error) {
	s.airportMu.Lock()
	defer s.airportMu.Unlock()
	if len(s.airports) > 0 && !force {
		out := make([]types.Airport, len(s.airports))
		copy(out, s.airports)
		return out, nil
	}

	url := s.baseURL + "/_json/airports.php"
	v, err := s.fetcher.FetchJSON(ctx, url)
	if err != nil {
		return nil, &APIError{URL: url, Err: err}
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, &APIError{URL: url, Err: fmt.Errorf("expected an object, got %T", v)}
	}
	rows, ok := m["rows"].([]interface{})
	if !ok {
		return nil, &APIError{URL: url, Err: fmt.Errorf("missing rows field")}
	}

	airports := make([]types.Airport, 0, len(rows))
	for _, raw := range rows {
		row, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		airports = append(airports, types.Airport{
			Name:    stringField(row, "name"),
			IATA:    stringField(row, "iata"),
			ICAO:    stringField(row, "icao"),
			Country: stringField(row, "country"),
			Lat:     floatField(row, "lat"),
			Lon:     floatField(row, "lon"),
			Alt:     floatField(row, "alt"),
		})
	}
	s.airports = airports

	out := make([]types.Airport, len(airports))
	copy(out, airports)
	return out, nil
}

func stringField(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func floatField(m map[string]interface{}, key string) float64 {
	if n, ok := m[key].(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return 0
}
