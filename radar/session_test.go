package radar

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// newTestSession wires a session over canned payloads: three hosts, the test
// zone tree, and a five-flight london feed.
func newTestSession(t *testing.T) (*Session, *stubFetcher) {
	t.Helper()

	f := newStubFetcher()
	f.set(balanceURL, `{"h1.example.com": 1, "h2.example.com": 2, "h3.example.com": 3}`)
	f.set(zonesURL, zonesPayload)
	f.set(londonFeedURL, `{
		"version": 4,
		"full_count": 5,
		"10a1": `+feedRow("BA123", "BAW123")+`,
		"10a2": `+feedRow("BA456", "BAW456")+`,
		"10a3": `+feedRow("AF100", "AFR100")+`,
		"10a4": `+feedRow("BA789", "BAW789")+`,
		"10a5": `+feedRow("DL200", "DAL200")+`
	}`)
	return NewSession(f, Options{BaseURL: testBaseURL, DetailWorkers: 2}), f
}

func selectLondon(t *testing.T, s *Session) {
	t.Helper()
	mustSelectHost(t, s, "h1.example.com")
	mustSelectZone(t, s, "london")
}

func TestAircraftPreconditions(t *testing.T) {
	s, f := newTestSession(t)

	_, err := s.Aircraft(context.Background(), false)
	var preErr *PreconditionError
	if !errors.As(err, &preErr) || preErr.Missing != "host" {
		t.Fatalf("error = %v, want PreconditionError for the host", err)
	}
	if got := f.fetchCount(); got != 0 {
		t.Errorf("precondition failure still fetched %d times", got)
	}

	mustSelectHost(t, s, "h1.example.com")
	_, err = s.Aircraft(context.Background(), false)
	if !errors.As(err, &preErr) || preErr.Missing != "zone" {
		t.Fatalf("error = %v, want PreconditionError for the zone", err)
	}
	if got := f.callsMatching("/zones/fcgi/"); got != 0 {
		t.Errorf("precondition failure still fetched the feed %d times", got)
	}

	mustSelectZone(t, s, "london")
	records, err := s.Aircraft(context.Background(), false)
	if err != nil {
		t.Fatalf("Aircraft: %v", err)
	}
	if len(records) != 5 {
		t.Errorf("decoded %d records, want 5", len(records))
	}
}

func TestDetailsPreconditions(t *testing.T) {
	s, f := newTestSession(t)

	_, err := s.Details(context.Background(), "10a1", false)
	var preErr *PreconditionError
	if !errors.As(err, &preErr) {
		t.Fatalf("error = %v, want *PreconditionError", err)
	}
	if got := f.callsMatching("planedata"); got != 0 {
		t.Errorf("precondition failure still fetched details %d times", got)
	}
}

func TestFindByField(t *testing.T) {
	s, _ := newTestSession(t)
	selectLondon(t, s)

	ids, err := s.FindByField(context.Background(), "flight", "^BA", false)
	if err != nil {
		t.Fatalf("FindByField: %v", err)
	}
	want := []string{"10a1", "10a2", "10a4"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("matched ids mismatch (-want +got):\n%s", diff)
	}

	// Unanchored search semantics
	ids, err = s.FindByField(context.Background(), "callsign", "R", false)
	if err != nil {
		t.Fatalf("FindByField: %v", err)
	}
	if diff := cmp.Diff([]string{"10a3"}, ids); diff != "" {
		t.Errorf("matched ids mismatch (-want +got):\n%s", diff)
	}
}

func TestFindByFieldBadInput(t *testing.T) {
	s, f := newTestSession(t)
	selectLondon(t, s)

	_, err := s.FindByField(context.Background(), "no_such_field", ".", false)
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("error = %v, want ErrUnknownField", err)
	}

	_, err = s.FindByField(context.Background(), "flight", "(", false)
	if !errors.Is(err, ErrBadPattern) {
		t.Errorf("error = %v, want ErrBadPattern", err)
	}

	// Input validation happens before any fetching.
	if got := f.callsMatching("/zones/fcgi/"); got != 0 {
		t.Errorf("bad input still fetched the feed %d times", got)
	}
}

func TestRecordsByField(t *testing.T) {
	s, _ := newTestSession(t)
	selectLondon(t, s)

	records, err := s.RecordsByField(context.Background(), "flight", "^AF", false)
	if err != nil {
		t.Fatalf("RecordsByField: %v", err)
	}
	if len(records) != 1 || records[0].FlightID != "10a3" || records[0].Callsign != "AFR100" {
		t.Errorf("records = %+v, want the single AF flight", records)
	}
}

func TestDetailsByFieldPartialFailure(t *testing.T) {
	s, f := newTestSession(t)
	selectLondon(t, s)

	for _, id := range []string{"10a1", "10a2", "10a4", "10a5"} {
		f.set(detailURL(testHost, id), fmt.Sprintf(`{"id": %q}`, id))
	}
	f.fail(detailURL(testHost, "10a3"), errors.New("connection reset"))

	results, failures, err := s.DetailsByField(context.Background(), "flight", ".", false)
	if err != nil {
		t.Fatalf("DetailsByField: %v", err)
	}
	if len(results) != 4 {
		t.Errorf("got %d detail payloads, want 4", len(results))
	}
	if len(failures) != 1 || failures[0].FlightID != "10a3" {
		t.Fatalf("failures = %v, want exactly flight 10a3", failures)
	}
	var apiErr *APIError
	if !errors.As(failures[0].Err, &apiErr) {
		t.Errorf("failure error = %v, want *APIError", failures[0].Err)
	}
}

func TestDetailsByFieldBoundedFanOut(t *testing.T) {
	s, f := newTestSession(t)
	selectLondon(t, s)

	for _, id := range []string{"10a1", "10a2", "10a3", "10a4", "10a5"} {
		f.set(detailURL(testHost, id), `{"ok": true}`)
	}
	// Ensure the feed is cached before timing-sensitive fetches.
	if _, err := s.Aircraft(context.Background(), false); err != nil {
		t.Fatalf("Aircraft: %v", err)
	}
	f.delay = 20 * time.Millisecond

	_, failures, err := s.DetailsByField(context.Background(), "flight", ".", false)
	if err != nil {
		t.Fatalf("DetailsByField: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("failures = %v, want none", failures)
	}
	if peak := f.peakConcurrency(); peak > 2 {
		t.Errorf("peak concurrent fetches = %d, want at most the 2 configured workers", peak)
	}
}

func TestAirports(t *testing.T) {
	s, f := newTestSession(t)
	f.set(testBaseURL+"/_json/airports.php", `{
		"version": 1,
		"rows": [
			{"name": "London Heathrow Airport", "iata": "LHR", "icao": "EGLL", "country": "United Kingdom", "lat": 51.471626, "lon": -0.467081, "alt": 83},
			{"name": "John F Kennedy International Airport", "iata": "JFK", "icao": "KJFK", "country": "United States", "lat": 40.642334, "lon": -73.78817, "alt": 13}
		]
	}`)

	airports, err := s.Airports(context.Background(), false)
	if err != nil {
		t.Fatalf("Airports: %v", err)
	}
	if len(airports) != 2 {
		t.Fatalf("decoded %d airports, want 2", len(airports))
	}
	if airports[0].ICAO != "EGLL" || airports[0].Lat != 51.471626 {
		t.Errorf("airport = %+v", airports[0])
	}

	if _, err := s.Airports(context.Background(), false); err != nil {
		t.Fatalf("Airports: %v", err)
	}
	if got := f.callsMatching("airports.php"); got != 1 {
		t.Errorf("airport fetches = %d, want 1 (cached)", got)
	}
	if _, err := s.Airports(context.Background(), true); err != nil {
		t.Fatalf("Airports force: %v", err)
	}
	if got := f.callsMatching("airports.php"); got != 2 {
		t.Errorf("airport fetches after force = %d, want 2", got)
	}
}
