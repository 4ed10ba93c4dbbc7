package booking

import "github.com/Temutjin2k/ride-tracker/internal/domain/models"

// DefaultPadding is added to both spans, in degrees.
const DefaultPadding = 0.1

// FitViewport returns the smallest region holding every point, widened by padding
// on each axis. It returns nil for an empty set.
func FitViewport(points []models.Position, padding float64) *models.MapViewport {
	if len(points) == 0 {
		return nil
	}

	minLat, maxLat := points[0].Latitude, points[0].Latitude
	minLon, maxLon := points[0].Longitude, points[0].Longitude
	for _, p := range points[1:] {
		minLat = min(minLat, p.Latitude)
		maxLat = max(maxLat, p.Latitude)
		minLon = min(minLon, p.Longitude)
		maxLon = max(maxLon, p.Longitude)
	}

	return &models.MapViewport{
		CenterLatitude:  (minLat + maxLat) / 2,
		CenterLongitude: (minLon + maxLon) / 2,
		LatitudeSpan:    maxLat - minLat + padding,
		LongitudeSpan:   maxLon - minLon + padding,
	}
}
