package models

import "github.com/Temutjin2k/ride-tracker/internal/domain/types"

// InboundMessage is a decoded inbound frame. The set of implementations is closed.
type InboundMessage interface {
	Kind() types.MessageKind
	inbound()
}

type ConnectionEstablished struct {
	Message string
}

type LocationUpdate struct {
	Sample LocationSample
}

type ServerError struct {
	Message string
}

// Unrecognized carries the raw "type" of a frame this client does not understand.
type Unrecognized struct {
	Type string
}

func (ConnectionEstablished) Kind() types.MessageKind { return types.KindConnectionEstablished }
func (LocationUpdate) Kind() types.MessageKind        { return types.KindLocationUpdate }
func (ServerError) Kind() types.MessageKind           { return types.KindError }
func (Unrecognized) Kind() types.MessageKind          { return types.KindUnrecognized }

func (ConnectionEstablished) inbound() {}
func (LocationUpdate) inbound()        {}
func (ServerError) inbound()           {}
func (Unrecognized) inbound()          {}

// SubscribeFrame is sent once right after the channel opens.
type SubscribeFrame struct {
	Action      string `json:"action"`
	DriverID    string `json:"driver_id"`
	VehicleType string `json:"vehicle_type"`
}

func NewSubscribeFrame(driverID, vehicleType string) SubscribeFrame {
	return SubscribeFrame{Action: "subscribe", DriverID: driverID, VehicleType: vehicleType}
}

// LocationReport is the periodic outbound position frame.
type LocationReport struct {
	ID          string  `json:"id"`
	VehicleType string  `json:"vehicle_type"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Address     string  `json:"address"`
}

// Identity names the tracked vehicle for one session.
type Identity struct {
	DriverID    string
	VehicleType string
}

func (i Identity) Valid() bool {
	return i.DriverID != "" && i.VehicleType != ""
}
