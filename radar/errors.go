package radar

import (
	"errors"
	"fmt"
)

// Search input problems, distinguishable from upstream failures.
var (
	ErrUnknownField = errors.New("unknown field")
	ErrBadPattern   = errors.New("bad pattern")
)

// SelectorError reports a host selector that resolved to nothing.
type SelectorError struct {
	Selector string
	Reason   string
}

func (e *SelectorError) Error() string {
	return fmt.Sprintf("host selector %q: %s", e.Selector, e.Reason)
}

// PreconditionError reports a feed query made before the session had a host
// and zone selected.
type PreconditionError struct {
	Missing string // "host" or "zone"
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("no %s selected", e.Missing)
}

// APIError wraps a failed endpoint fetch with its URL and, for aircraft
// queries, the zone being queried.
type APIError struct {
	URL  string
	Zone string
	Err  error
}

func (e *APIError) Error() string {
	if e.Zone != "" {
		return fmt.Sprintf("feed %s (zone %q): %v", e.URL, e.Zone, e.Err)
	}
	return fmt.Sprintf("feed %s: %v", e.URL, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// FlightError records one flight's failure inside a batch detail fetch.
type FlightError struct {
	FlightID string
	Err      error
}

func (e FlightError) Error() string {
	return fmt.Sprintf("flight %s: %v", e.FlightID, e.Err)
}

func (e FlightError) Unwrap() error { return e.Err }
