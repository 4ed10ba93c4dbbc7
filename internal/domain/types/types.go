package types

// ConnectionState is the lifecycle state of the location channel.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateError        ConnectionState = "error"
)

func (s ConnectionState) String() string {
	return string(s)
}

// Gauge value used by the channel state metric.
func (s ConnectionState) Gauge() float64 {
	switch s {
	case StateConnecting:
		return 1
	case StateConnected:
		return 2
	case StateError:
		return 3
	default:
		return 0
	}
}

// VehicleCategory is the driver's vehicle category. It selects the channel and the vehicle endpoint.
type VehicleCategory string

const (
	VehicleBus  VehicleCategory = "bus"
	VehicleCar  VehicleCategory = "car"
	VehicleBike VehicleCategory = "bike"
)

func (c VehicleCategory) Valid() bool {
	switch c {
	case VehicleBus, VehicleCar, VehicleBike:
		return true
	default:
		return false
	}
}

// Enum для статуса бронирования
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Requestable reports whether a driver may request this status.
func (s BookingStatus) Requestable() bool {
	return s == BookingAccepted || s == BookingRejected
}

// PointRole tells whether a geocoded point is the pickup or the dropoff of a booking.
type PointRole string

const (
	RolePickup  PointRole = "pickup"
	RoleDropoff PointRole = "dropoff"
)

// MessageKind is the "type" discriminator of inbound frames.
type MessageKind string

const (
	KindConnectionEstablished MessageKind = "connection_established"
	KindLocationUpdate        MessageKind = "location_update"
	KindError                 MessageKind = "error"
	KindUnrecognized          MessageKind = "unrecognized"
)

// AlertKind classifies failures surfaced to the operator.
type AlertKind string

const (
	AlertAuthentication AlertKind = "authentication"
	AlertNetwork        AlertKind = "network"
	AlertServer         AlertKind = "server_error"
	AlertStatusUpdate   AlertKind = "status_update"
)
