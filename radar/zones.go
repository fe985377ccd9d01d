package radar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/skysnoop/radarfeed/types"
)

// ZoneAll is the pseudo-zone naming the unfiltered global feed. It is always
// selectable and never appears in the fetched tree.
const ZoneAll = "all"

// maxZoneDepth bounds tree recursion; the upstream payload is untrusted.
const maxZoneDepth = 32

// structuralZoneKeys are node attributes, not zone names.
var structuralZoneKeys = map[string]bool{
	"tl_x":     true,
	"tl_y":     true,
	"br_x":     true,
	"br_y":     true,
	"subzones": true,
}

// ZoneIndex caches the aggregator's zone tree and holds the session's
// selected zone.
type ZoneIndex struct {
	fetcher Fetcher
	baseURL string

	mu       sync.Mutex
	tree     *types.ZoneNode
	names    []string
	selected string
}

func newZoneIndex(fetcher Fetcher, baseURL string) *ZoneIndex {
	return &ZoneIndex{fetcher: fetcher, baseURL: baseURL}
}

// Tree returns the zone tree, fetching it when not cached or force is set.
// The root is an unnamed container whose subzones are the top-level zones.
func (z *ZoneIndex) Tree(ctx context.Context, force bool) (types.ZoneNode, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	if err := z.ensureLocked(ctx, force); err != nil {
		return types.ZoneNode{}, err
	}
	return *z.tree, nil
}

// Names returns every zone name in the tree, parents before their subzones.
func (z *ZoneIndex) Names(ctx context.Context, force bool) ([]string, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	if err := z.ensureLocked(ctx, force); err != nil {
		return nil, err
	}
	out := make([]string, len(z.names))
	copy(out, z.names)
	return out, nil
}

func (z *ZoneIndex) ensureLocked(ctx context.Context, force bool) error {
	if z.tree != nil && !force {
		return nil
	}
	url := z.baseURL + "/js/zones.js.php"
	v, err := z.fetcher.FetchJSON(ctx, url)
	if err != nil {
		return &APIError{URL: url, Err: err}
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return &APIError{URL: url, Err: fmt.Errorf("expected an object, got %T", v)}
	}
	root := parseZoneNode("", m, 0)
	z.tree = &root
	z.names = flattenZoneNames(root)
	return nil
}

// parseZoneNode builds one node from its raw object. Child zones appear both
// as direct object-valued keys (the top level) and under "subzones" (nested
// levels); scalar keys, like the top-level version stamp, are not zones and
// are dropped.
func parseZoneNode(name string, m map[string]interface{}, depth int) types.ZoneNode {
	node := types.ZoneNode{
		Name: name,
		TLX:  floatField(m, "tl_x"),
		TLY:  floatField(m, "tl_y"),
		BRX:  floatField(m, "br_x"),
		BRY:  floatField(m, "br_y"),
	}
	if depth >= maxZoneDepth {
		return node
	}

	children := make(map[string]map[string]interface{})
	for key, val := range m {
		if key == "subzones" {
			sub, ok := val.(map[string]interface{})
			if !ok {
				continue
			}
			for subName, subVal := range sub {
				if child, ok := subVal.(map[string]interface{}); ok {
					children[subName] = child
				}
			}
			continue
		}
		if structuralZoneKeys[key] {
			continue
		}
		if child, ok := val.(map[string]interface{}); ok {
			children[key] = child
		}
	}

	siblings := make([]string, 0, len(children))
	for key := range children {
		siblings = append(siblings, key)
	}
	// Sibling order is not recoverable from the generic decode; sort it so
	// flattening is deterministic.
	sort.Strings(siblings)
	for _, key := range siblings {
		node.Subzones = append(node.Subzones, parseZoneNode(key, children[key], depth+1))
	}
	return node
}

// flattenZoneNames walks the tree depth-first, listing each zone before its
// subzones. The unnamed root contributes no name.
func flattenZoneNames(root types.ZoneNode) []string {
	var names []string
	var walk func(n types.ZoneNode)
	walk = func(n types.ZoneNode) {
		if n.Name != "" {
			names = append(names, n.Name)
		}
		for _, sub := range n.Subzones {
			walk(sub)
		}
	}
	walk(root)
	return names
}

// Select validates name against the zone list, case-insensitively, and
// records the canonical spelling. An unknown name clears the selection and
// returns nil rather than failing, so callers can probe zones cheaply and
// check Selected afterward. Only a failed fetch returns an error.
func (z *ZoneIndex) Select(ctx context.Context, name string) error {
	z.mu.Lock()
	defer z.mu.Unlock()

	z.selected = ""
	if strings.EqualFold(name, ZoneAll) {
		z.selected = ZoneAll
		return nil
	}
	if err := z.ensureLocked(ctx, false); err != nil {
		return err
	}
	for _, candidate := range z.names {
		if strings.EqualFold(candidate, name) {
			z.selected = candidate
			return nil
		}
	}
	return nil
}

// Selected reports the current zone selection, if any.
func (z *ZoneIndex) Selected() (string, bool) {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.selected, z.selected != ""
}
