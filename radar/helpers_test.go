package radar

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// stubFetcher serves canned JSON payloads by URL and records every fetch.
// Payloads are decoded the same way the real fetcher decodes them, numbers
// as json.Number, so stores see wire-shaped values.
type stubFetcher struct {
	mu       sync.Mutex
	payloads map[string]string
	errs     map[string]error
	calls    []string

	delay       time.Duration
	inFlight    int
	maxInFlight int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		payloads: make(map[string]string),
		errs:     make(map[string]error),
	}
}

func (f *stubFetcher) set(url, payload string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads[url] = payload
}

func (f *stubFetcher) fail(url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[url] = err
}

func (f *stubFetcher) FetchJSON(ctx context.Context, url string) (interface{}, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	err, failed := f.errs[url]
	payload, ok := f.payloads[url]
	delay := f.delay
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if delay > 0 {
		time.Sleep(delay)
	}

	if failed {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no payload registered for %s", url)
	}

	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	var v interface{}
	if decodeErr := dec.Decode(&v); decodeErr != nil {
		return nil, fmt.Errorf("bad test payload for %s: %v", url, decodeErr)
	}
	return v, nil
}

func (f *stubFetcher) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *stubFetcher) callsMatching(substr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, url := range f.calls {
		if strings.Contains(url, substr) {
			n++
		}
	}
	return n
}

func (f *stubFetcher) peakConcurrency() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

const testBaseURL = "https://base.test"

// feedRow renders an 18-element positional row with the given callsign and
// flight number, quoted like live payloads mix them.
func feedRow(flight, callsign string) string {
	return fmt.Sprintf(`["123",51.5,-0.1,90,35000,450,"1200","5","B738","G-ABCD",1690000000,"LHR","JFK",%q,0,100,%q,0]`, flight, callsign)
}

func mustSelectHost(t *testing.T, s *Session, selector string) Host {
	t.Helper()
	host, err := s.Hosts().Select(context.Background(), selector)
	if err != nil {
		t.Fatalf("Select(%q): %v", selector, err)
	}
	return host
}

func mustSelectZone(t *testing.T, s *Session, name string) {
	t.Helper()
	if err := s.Zones().Select(context.Background(), name); err != nil {
		t.Fatalf("Select zone %q: %v", name, err)
	}
	if _, ok := s.Zones().Selected(); !ok {
		t.Fatalf("zone %q did not select", name)
	}
}
