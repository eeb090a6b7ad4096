package geo

import (
	"math"
	"sort"

	"ramp_capacity/internal/models"
)

const (
	// EarthRadiusKm is the mean Earth radius used by Haversine
	EarthRadiusKm = 6371.0

	// KmPerDegreeLat is the approximate length of one degree of latitude
	KmPerDegreeLat = 111.0

	// DefaultMaxRadiusKm bounds the search for alternate airports
	DefaultMaxRadiusKm = 50.0
)

// Box is a latitude/longitude rectangle
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether c lies inside the box, edges included
func (b Box) Contains(c models.Coordinates) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat && c.Lon >= b.MinLon && c.Lon <= b.MaxLon
}

// BoundingBox returns the rectangle that encloses a circle of radiusKm around ref.
// Longitude span widens with latitude; near the poles it covers every longitude.
func BoundingBox(ref models.Coordinates, radiusKm float64) Box {
	dLat := radiusKm / KmPerDegreeLat

	dLon := 180.0
	if cos := math.Cos(toRad(ref.Lat)); cos > 1e-9 {
		dLon = math.Min(radiusKm/(KmPerDegreeLat*cos), 180)
	}

	return Box{
		MinLat: ref.Lat - dLat,
		MaxLat: ref.Lat + dLat,
		MinLon: ref.Lon - dLon,
		MaxLon: ref.Lon + dLon,
	}
}

// Haversine returns the great-circle distance in km
func Haversine(a, b models.Coordinates) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Rank orders candidate airports by distance from ref, nearest first.
// The reference airport itself is dropped and ties are broken by airport code.
func Rank(ref models.Coordinates, refCode string, candidates []models.Airport) []models.RankedAirport {
	ranked := make([]models.RankedAirport, 0, len(candidates))
	for _, a := range candidates {
		if a.Code == refCode {
			continue
		}
		ranked = append(ranked, models.RankedAirport{
			Code:       a.Code,
			DistanceKm: Haversine(ref, a.Coordinates()),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].DistanceKm != ranked[j].DistanceKm {
			return ranked[i].DistanceKm < ranked[j].DistanceKm
		}
		return ranked[i].Code < ranked[j].Code
	})
	return ranked
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
