package models

import (
	"time"

	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
)

type Booking struct {
	ID          int64               `json:"id"`
	Status      types.BookingStatus `json:"status"`
	FromAddress string              `json:"from_address"`
	ToAddress   string              `json:"to_address"`
	CreatedAt   time.Time           `json:"created_at"`
}

// GeocodedPoint is a resolved pickup or dropoff of a booking.
type GeocodedPoint struct {
	ID        string              `json:"id"` // from_<booking id> or to_<booking id>
	BookingID int64               `json:"booking_id"`
	Role      types.PointRole     `json:"role"`
	Latitude  float64             `json:"latitude"`
	Longitude float64             `json:"longitude"`
	Address   string              `json:"address"`
	Status    types.BookingStatus `json:"status"`
	// DistanceKm from the last received vehicle location, when one is known.
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

func (p GeocodedPoint) Position() Position {
	return Position{Latitude: p.Latitude, Longitude: p.Longitude}
}

// MapViewport is a bounding region: the area [center - span/2, center + span/2] on both axes.
type MapViewport struct {
	CenterLatitude  float64 `json:"center_latitude"`
	CenterLongitude float64 `json:"center_longitude"`
	LatitudeSpan    float64 `json:"latitude_span"`
	LongitudeSpan   float64 `json:"longitude_span"`
}

// Contains reports whether p lies inside the viewport.
func (v MapViewport) Contains(p Position) bool {
	return p.Latitude >= v.CenterLatitude-v.LatitudeSpan/2 &&
		p.Latitude <= v.CenterLatitude+v.LatitudeSpan/2 &&
		p.Longitude >= v.CenterLongitude-v.LongitudeSpan/2 &&
		p.Longitude <= v.CenterLongitude+v.LongitudeSpan/2
}

// BookingSnapshot is the result of one fetch, resolve and fit cycle.
type BookingSnapshot struct {
	Bookings    []Booking       `json:"bookings"`
	Points      []GeocodedPoint `json:"points"`
	Viewport    *MapViewport    `json:"viewport"`
	RefreshedAt time.Time       `json:"refreshed_at"`
}
