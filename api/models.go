package api

import (
	"github.com/skysnoop/radarfeed/radar"
	"github.com/skysnoop/radarfeed/types"
)

// Host Directory Types
type HostListResponse struct {
	Hosts    []string    `json:"hosts"`
	Selected *radar.Host `json:"selected,omitempty"`
	Total    int         `json:"total"`
}

// Zone Types
type ZoneListResponse struct {
	Zones    []string `json:"zones"`
	Selected string   `json:"selected,omitempty"`
	Total    int      `json:"total"`
}

// Airport Types
type AirportListResponse struct {
	Airports []types.Airport `json:"airports"`
	Total    int             `json:"total"`
}

// Aircraft Feed Types
type AircraftListResponse struct {
	Flights   []types.AircraftRecord `json:"flights"`
	Total     int                    `json:"total"`
	Version   string                 `json:"version,omitempty"`
	FullCount int64                  `json:"full_count,omitempty"`
}

type AircraftDetailResponse struct {
	FlightID string                 `json:"flight_id"`
	Details  map[string]interface{} `json:"details"`
}

// Flight Search Types
type FlightSearchResponse struct {
	Flights []types.AircraftRecord `json:"flights"`
	Total   int                    `json:"total"`
	Errors  []FlightFetchError     `json:"errors,omitempty"`
}

type FlightFetchError struct {
	FlightID string `json:"flight_id"`
	Error    string `json:"error"`
}
