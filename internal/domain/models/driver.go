package models

import "github.com/Temutjin2k/ride-tracker/internal/domain/types"

type DriverProfile struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Phone       string                `json:"phone,omitempty"`
	VehicleType types.VehicleCategory `json:"vehicle_type"`
	VehicleID   string                `json:"vehicle_id"`

	// Vehicle is nil when no vehicle is assigned. That is a valid state, not an error.
	Vehicle *Vehicle `json:"vehicle"`
}

// HasAssignment reports whether there is a vehicle to track.
func (d *DriverProfile) HasAssignment() bool {
	return d != nil && d.Vehicle != nil
}

type Vehicle struct {
	ID       string                `json:"id"`
	Category types.VehicleCategory `json:"vehicle_type"`
	Model    string                `json:"model,omitempty"`
	Number   string                `json:"vehicle_number,omitempty"`
}
