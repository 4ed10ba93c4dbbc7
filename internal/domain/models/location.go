package models

import "time"

// Position is a bare coordinate pair.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationSample is one observed location of the vehicle.
type LocationSample struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Address   string    `json:"address"`
	Timestamp time.Time `json:"timestamp"`
}

func (s LocationSample) Position() Position {
	return Position{Latitude: s.Latitude, Longitude: s.Longitude}
}
