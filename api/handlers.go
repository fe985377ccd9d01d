package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/skysnoop/radarfeed/radar"
	"github.com/skysnoop/radarfeed/types"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeError maps feed errors onto HTTP statuses: a missing selection is a
// conflict with the session state, selector and search input problems are
// the caller's fault, and upstream fetch failures are a bad gateway.
func writeError(w http.ResponseWriter, err error) {
	var (
		preErr *radar.PreconditionError
		selErr *radar.SelectorError
		apiErr *radar.APIError
	)
	switch {
	case errors.As(err, &preErr):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &selErr),
		errors.Is(err, radar.ErrUnknownField),
		errors.Is(err, radar.ErrBadPattern):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &apiErr):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func wantRefresh(r *http.Request) bool {
	return r.URL.Query().Get("refresh") == "1"
}

// GetFeedStats reports the collector's running statistics.
func GetFeedStats(stats StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, stats.GetStats())
	}
}

func GetHosts(session *radar.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hosts, err := session.Hosts().List(r.Context(), wantRefresh(r))
		if err != nil {
			writeError(w, err)
			return
		}
		resp := HostListResponse{Hosts: hosts, Total: len(hosts)}
		if host, ok := session.Hosts().Selected(); ok {
			resp.Selected = &host
		}
		writeJSON(w, resp)
	}
}

func GetZones(session *radar.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		zones, err := session.Zones().Names(r.Context(), wantRefresh(r))
		if err != nil {
			writeError(w, err)
			return
		}
		resp := ZoneListResponse{Zones: zones, Total: len(zones)}
		if zone, ok := session.Zones().Selected(); ok {
			resp.Selected = zone
		}
		writeJSON(w, resp)
	}
}

func GetAirports(session *radar.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		airports, err := session.Airports(r.Context(), wantRefresh(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, AirportListResponse{Airports: airports, Total: len(airports)})
	}
}

func GetAircraft(session *radar.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := session.Aircraft(r.Context(), wantRefresh(r))
		if err != nil {
			writeError(w, err)
			return
		}

		meta, _ := session.FeedMeta()
		resp := AircraftListResponse{
			Flights:   make([]types.AircraftRecord, 0, len(records)),
			Version:   meta.Version,
			FullCount: meta.FullCount,
		}
		for _, id := range session.FlightIDs() {
			if rec, ok := records[id]; ok {
				resp.Flights = append(resp.Flights, rec)
			}
		}
		resp.Total = len(resp.Flights)
		writeJSON(w, resp)
	}
}

func GetAircraftByID(session *radar.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		rec, ok := session.Record(id)
		if !ok {
			http.Error(w, "Flight not found", http.StatusNotFound)
			return
		}
		writeJSON(w, rec)
	}
}

func GetAircraftDetails(session *radar.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		details, err := session.Details(r.Context(), id, wantRefresh(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, AircraftDetailResponse{FlightID: id, Details: details})
	}
}

// SearchFlights matches a regular expression against one record field across
// the cached feed. details=1 additionally fans out per-flight detail
// fetches; flights whose fetch failed are reported in the errors list rather
// than failing the search.
func SearchFlights(session *radar.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		field := query.Get("field")
		pattern := query.Get("pattern")
		if field == "" || pattern == "" {
			http.Error(w, "field and pattern query parameters are required", http.StatusBadRequest)
			return
		}
		force := wantRefresh(r)

		var (
			records    []types.AircraftRecord
			flightErrs []radar.FlightError
			err        error
		)
		if query.Get("details") == "1" {
			_, flightErrs, err = session.DetailsByField(r.Context(), field, pattern, force)
			if err == nil {
				records, err = session.RecordsByField(r.Context(), field, pattern, false)
			}
		} else {
			records, err = session.RecordsByField(r.Context(), field, pattern, force)
		}
		if err != nil {
			writeError(w, err)
			return
		}

		resp := FlightSearchResponse{Flights: records, Total: len(records)}
		for _, fe := range flightErrs {
			resp.Errors = append(resp.Errors, FlightFetchError{FlightID: fe.FlightID, Error: fe.Err.Error()})
		}
		writeJSON(w, resp)
	}
}
