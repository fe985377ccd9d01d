package types

type ZoneNode struct {
	Name     string     `json:"name"`
	TLX      float64    `json:"tl_x"`
	TLY      float64    `json:"tl_y"`
	BRX      float64    `json:"br_x"`
	BRY      float64    `json:"br_y"`
	Subzones []ZoneNode `json:"subzones,omitempty"`
}

type Airport struct {
	Name    string  `json:"name"`
	IATA    string  `json:"iata"`
	ICAO    string  `json:"icao"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Alt     float64 `json:"alt"`
}
