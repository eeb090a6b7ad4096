package models

// Coordinates is a WGS84 position in decimal degrees
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Airport is a row of airport reference data
type Airport struct {
	Code string  `json:"code"` // ICAO ident, e.g. KTEB
	Name string  `json:"name,omitempty"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Coordinates returns the airport position
func (a Airport) Coordinates() Coordinates {
	return Coordinates{Lat: a.Lat, Lon: a.Lon}
}

// RankedAirport is a candidate airport with its distance from a reference point
type RankedAirport struct {
	Code       string  `json:"code"`
	DistanceKm float64 `json:"distance_km"`
}
