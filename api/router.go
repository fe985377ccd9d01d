package api

import (
	"github.com/gorilla/mux"

	"github.com/skysnoop/radarfeed/radar"
	"github.com/skysnoop/radarfeed/types"
)

// StatsProvider is the slice of the collector the API needs.
type StatsProvider interface {
	GetStats() types.FeedStats
}

// NewRouter creates and configures a new router with all API endpoints
func NewRouter(session *radar.Session, stats StatsProvider, apiKeys []string) *mux.Router {
	r := mux.NewRouter()

	// Request ids and rate limiting on everything under /api
	api := r.PathPrefix("/api").Subrouter()
	api.Use(RequestID)
	api.Use(NewRateLimiter(apiKeys).Middleware)

	// Feed state endpoints
	api.HandleFunc("/status", GetFeedStats(stats)).Methods("GET")
	api.HandleFunc("/hosts", GetHosts(session)).Methods("GET")
	api.HandleFunc("/zones", GetZones(session)).Methods("GET")
	api.HandleFunc("/airports", GetAirports(session)).Methods("GET")

	// Aircraft endpoints
	api.HandleFunc("/aircraft", GetAircraft(session)).Methods("GET")
	api.HandleFunc("/aircraft/{id}", GetAircraftByID(session)).Methods("GET")
	api.HandleFunc("/aircraft/{id}/details", GetAircraftDetails(session)).Methods("GET")

	// Flight search endpoint
	api.HandleFunc("/flights/search", SearchFlights(session)).Methods("GET")

	return r
}
