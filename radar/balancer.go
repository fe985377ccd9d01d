package radar

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Host is one edge server in the balancer directory.
type Host struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// HostDirectory caches the balancer's host list and holds the session's
// selected host. Indices are positions in the cached list and are only
// stable until the next refresh.
type HostDirectory struct {
	fetcher Fetcher
	baseURL string

	probeTimeout     time.Duration
	probeConcurrency int

	mu          sync.Mutex
	hosts       []string
	selected    Host
	hasSelected bool
}

func newHostDirectory(fetcher Fetcher, baseURL string, probeTimeout time.Duration, probeConcurrency int) *HostDirectory {
	return &HostDirectory{
		fetcher:          fetcher,
		baseURL:          baseURL,
		probeTimeout:     probeTimeout,
		probeConcurrency: probeConcurrency,
	}
}

// List returns the candidate hostnames, fetching them when the cache is
// empty or force is set.
func (d *HostDirectory) List(ctx context.Context, force bool) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ensureLocked(ctx, force); err != nil {
		return nil, err
	}
	out := make([]string, len(d.hosts))
	copy(out, d.hosts)
	return out, nil
}

func (d *HostDirectory) ensureLocked(ctx context.Context, force bool) error {
	if len(d.hosts) > 0 && !force {
		return nil
	}
	url := d.baseURL + "/balance.json"
	v, err := d.fetcher.FetchJSON(ctx, url)
	if err != nil {
		return &APIError{URL: url, Err: err}
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return &APIError{URL: url, Err: fmt.Errorf("expected an object, got %T", v)}
	}
	hosts := make([]string, 0, len(m))
	for name := range m {
		hosts = append(hosts, name)
	}
	// The generic decode loses the document's key order, so sort to keep
	// indices deterministic within a fetch generation.
	sort.Strings(hosts)
	d.hosts = hosts
	return nil
}

// Select resolves selector to one concrete host. The previous selection is
// cleared first and set again only on success. Selector forms, tried in
// order: a hostname present in the directory, a numeric index into it, the
// strategy "latency" (lowest TCP connect time wins, ties to the lowest
// index), or the strategy "random". A hostname match wins over the numeric
// reading when a hostname happens to look like a number.
func (d *HostDirectory) Select(ctx context.Context, selector string) (Host, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.hasSelected = false
	d.selected = Host{}
	if err := d.ensureLocked(ctx, false); err != nil {
		return Host{}, err
	}
	if len(d.hosts) == 0 {
		return Host{}, &SelectorError{Selector: selector, Reason: "host directory is empty"}
	}

	for i, name := range d.hosts {
		if name == selector {
			return d.selectLocked(i), nil
		}
	}

	if idx, err := strconv.Atoi(selector); err == nil {
		if idx < 0 || idx >= len(d.hosts) {
			return Host{}, &SelectorError{Selector: selector, Reason: fmt.Sprintf("index out of range [0,%d)", len(d.hosts))}
		}
		return d.selectLocked(idx), nil
	}

	switch selector {
	case "latency":
		latencies := probeHosts(ctx, d.hosts, d.probeTimeout, d.probeConcurrency)
		idx, ok := fastestIndex(latencies)
		if !ok {
			return Host{}, &SelectorError{Selector: selector, Reason: "no host reachable"}
		}
		return d.selectLocked(idx), nil
	case "random":
		return d.selectLocked(rand.Intn(len(d.hosts))), nil
	}

	return Host{}, &SelectorError{Selector: selector, Reason: "matches no hostname, index, or strategy"}
}

func (d *HostDirectory) selectLocked(idx int) Host {
	d.selected = Host{Index: idx, Name: d.hosts[idx]}
	d.hasSelected = true
	return d.selected
}

// Selected reports the current host selection, if any.
func (d *HostDirectory) Selected() (Host, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selected, d.hasSelected
}
