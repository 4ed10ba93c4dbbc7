package booking

import (
	"math"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
)

const earthRadiusKm = 6371.0

// DistanceKm is the great-circle distance between two positions (haversine).
func DistanceKm(a, b models.Position) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// annotateDistances sets the distance from the vehicle on every point.
func annotateDistances(points []models.GeocodedPoint, from models.Position) {
	for i := range points {
		d := math.Round(DistanceKm(from, points[i].Position())*1000) / 1000
		points[i].DistanceKm = &d
	}
}
