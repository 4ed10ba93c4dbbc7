package backend

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
)

type bookingDTO struct {
	ID          int64  `json:"id"`
	Status      string `json:"status"`
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	CreatedAt   string `json:"created_at"`
}

func (b bookingDTO) toModel() models.Booking {
	created, _ := time.Parse(time.RFC3339Nano, b.CreatedAt)
	return models.Booking{
		ID:          b.ID,
		Status:      types.BookingStatus(strings.ToLower(b.Status)),
		FromAddress: b.FromAddress,
		ToAddress:   b.ToAddress,
		CreatedAt:   created,
	}
}

type statusRequest struct {
	Status      string `json:"status"`
	VehicleType string `json:"vehicle_type"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func (e errorResponse) message() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Detail
}

type driverDetailsResponse struct {
	Driver struct {
		ID          flexString `json:"id"`
		Name        string     `json:"name"`
		Phone       string     `json:"phone"`
		VehicleType string     `json:"vehicle_type"`
		VehicleID   flexString `json:"vehicle_id"`
	} `json:"driver"`
}

func (r driverDetailsResponse) toModel() *models.DriverProfile {
	d := r.Driver
	return &models.DriverProfile{
		ID:          string(d.ID),
		Name:        d.Name,
		Phone:       d.Phone,
		VehicleType: types.VehicleCategory(strings.ToLower(d.VehicleType)),
		VehicleID:   string(d.VehicleID),
	}
}

type vehicleDTO struct {
	ID            flexString `json:"id"`
	VehicleType   string     `json:"vehicle_type"`
	Model         string     `json:"model"`
	VehicleNumber string     `json:"vehicle_number"`
}

func (v vehicleDTO) toModel() *models.Vehicle {
	return &models.Vehicle{
		ID:       string(v.ID),
		Category: types.VehicleCategory(v.VehicleType),
		Model:    v.Model,
		Number:   v.VehicleNumber,
	}
}

// flexString decodes ids that may arrive as numbers, strings or null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
