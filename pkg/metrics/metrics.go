package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Service = "ride-tracker"

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
		[]string{"service"},
	)

	// Channel metrics
	ChannelStateGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "channel_state",
			Help: "Location channel state: 0 disconnected, 1 connecting, 2 connected, 3 error",
		},
		[]string{"vehicle_type"},
	)

	ChannelConnectAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channel_connect_attempts_total",
			Help: "Total number of channel dial attempts",
		},
		[]string{"vehicle_type", "reason"},
	)

	ChannelFramesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channel_frames_sent_total",
			Help: "Total number of outbound frames",
		},
		[]string{"kind", "status"},
	)

	ChannelFramesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channel_frames_received_total",
			Help: "Total number of inbound frames by kind",
		},
		[]string{"kind"},
	)

	LocationHistorySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "location_history_size",
			Help: "Current number of buffered location samples",
		},
	)

	// Geocoding and bookings
	GeocodeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocode_requests_total",
			Help: "Total number of geocoding lookups",
		},
		[]string{"direction", "status"},
	)

	GeocodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geocode_duration_seconds",
			Help:    "Geocoding lookup duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"direction"},
	)

	BookingRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_refresh_total",
			Help: "Total number of booking list refresh cycles",
		},
		[]string{"status"},
	)

	BookingStatusUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_status_updates_total",
			Help: "Total number of booking status update requests",
		},
		[]string{"status", "result"},
	)

	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_total",
			Help: "Total number of surfaced alerts",
		},
		[]string{"kind"},
	)

	RabbitMQMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_messages_published_total",
			Help: "Total number of messages published to RabbitMQ",
		},
		[]string{"service", "exchange", "status"},
	)
)

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(service, method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	HttpRequestsTotal.WithLabelValues(service, method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(service, method, path, status).Observe(duration.Seconds())
}

// RecordChannelState sets the state gauge for the vehicle channel
func RecordChannelState(vehicleType string, state float64) {
	ChannelStateGauge.WithLabelValues(vehicleType).Set(state)
}

// RecordConnectAttempt counts a dial; reason is "initial" or "reconnect"
func RecordConnectAttempt(vehicleType, reason string) {
	ChannelConnectAttempts.WithLabelValues(vehicleType, reason).Inc()
}

// RecordFrameSent records an outbound frame write
func RecordFrameSent(kind string, err error) {
	ChannelFramesSent.WithLabelValues(kind, statusLabel(err)).Inc()
}

// RecordFrameReceived records an inbound frame by decoded kind
func RecordFrameReceived(kind string) {
	ChannelFramesReceived.WithLabelValues(kind).Inc()
}

// RecordGeocode records a geocoding lookup; direction is "forward" or "reverse"
func RecordGeocode(direction string, err error, duration time.Duration) {
	GeocodeRequestsTotal.WithLabelValues(direction, statusLabel(err)).Inc()
	GeocodeDuration.WithLabelValues(direction).Observe(duration.Seconds())
}

// RecordBookingRefresh records a refresh cycle
func RecordBookingRefresh(err error) {
	BookingRefreshTotal.WithLabelValues(statusLabel(err)).Inc()
}

// RecordStatusUpdate records a booking status change request
func RecordStatusUpdate(status string, err error) {
	BookingStatusUpdates.WithLabelValues(status, statusLabel(err)).Inc()
}

// RecordAlert counts a surfaced alert
func RecordAlert(kind string) {
	AlertsTotal.WithLabelValues(kind).Inc()
}

// RecordRabbitMQPublish records RabbitMQ publish metrics
func RecordRabbitMQPublish(service, exchange string, err error) {
	RabbitMQMessagesPublished.WithLabelValues(service, exchange, statusLabel(err)).Inc()
}
