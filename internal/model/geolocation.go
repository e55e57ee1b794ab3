package model

// Geolocation is the result of an IP lookup. Country is an ISO code
// ("US" style); unknown addresses resolve to "XX" at (0, 0).
type Geolocation struct {
	Country   string
	Latitude  float64
	Longitude float64
}
