package types

// AircraftFieldCount is the number of positional values in one feed row.
const AircraftFieldCount = 18

// AircraftFieldNames lists the feed's positional fields in wire order.
// The spelling "swquawk" is the feed's own and is part of the wire schema.
var AircraftFieldNames = []string{
	"aircraft_id",
	"latitude",
	"longitude",
	"track",
	"altitude",
	"speed",
	"swquawk",
	"radar_id",
	"type",
	"registration",
	"last_update",
	"origin",
	"destination",
	"flight",
	"onground",
	"vspeed",
	"callsign",
	"reserved",
}

type AircraftRecord struct {
	FlightID     string `json:"flight_id"`
	AircraftID   string `json:"aircraft_id"`
	Latitude     string `json:"latitude"`
	Longitude    string `json:"longitude"`
	Track        string `json:"track"`
	Altitude     string `json:"altitude"`
	Speed        string `json:"speed"`
	Squawk       string `json:"swquawk"`
	RadarID      string `json:"radar_id"`
	Type         string `json:"type"`
	Registration string `json:"registration"`
	LastUpdate   string `json:"last_update"`
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	Flight       string `json:"flight"`
	OnGround     string `json:"onground"`
	VSpeed       string `json:"vspeed"`
	Callsign     string `json:"callsign"`
	Reserved     string `json:"reserved"`

	// Details holds the per-flight enrichment payload, when fetched.
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewAircraftRecord builds a record from one positional feed row. The row
// must contain exactly AircraftFieldCount values, matched against
// AircraftFieldNames by index.
func NewAircraftRecord(flightID string, row []string) (AircraftRecord, bool) {
	if len(row) != AircraftFieldCount {
		return AircraftRecord{}, false
	}
	return AircraftRecord{
		FlightID:     flightID,
		AircraftID:   row[0],
		Latitude:     row[1],
		Longitude:    row[2],
		Track:        row[3],
		Altitude:     row[4],
		Speed:        row[5],
		Squawk:       row[6],
		RadarID:      row[7],
		Type:         row[8],
		Registration: row[9],
		LastUpdate:   row[10],
		Origin:       row[11],
		Destination:  row[12],
		Flight:       row[13],
		OnGround:     row[14],
		VSpeed:       row[15],
		Callsign:     row[16],
		Reserved:     row[17],
	}, true
}

// Field returns the value of the positional field with the given wire name.
func (r *AircraftRecord) Field(name string) (string, bool) {
	switch name {
	case "aircraft_id":
		return r.AircraftID, true
	case "latitude":
		return r.Latitude, true
	case "longitude":
		return r.Longitude, true
	case "track":
		return r.Track, true
	case "altitude":
		return r.Altitude, true
	case "speed":
		return r.Speed, true
	case "swquawk":
		return r.Squawk, true
	case "radar_id":
		return r.RadarID, true
	case "type":
		return r.Type, true
	case "registration":
		return r.Registration, true
	case "last_update":
		return r.LastUpdate, true
	case "origin":
		return r.Origin, true
	case "destination":
		return r.Destination, true
	case "flight":
		return r.Flight, true
	case "onground":
		return r.OnGround, true
	case "vspeed":
		return r.VSpeed, true
	case "callsign":
		return r.Callsign, true
	case "reserved":
		return r.Reserved, true
	}
	return "", false
}
