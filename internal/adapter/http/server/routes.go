package server

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Temutjin2k/ride-tracker/docs"
)

// setupRoutes - setups http routes
func (a *API) setupRoutes() {
	// System Health
	a.mux.HandleFunc("GET /health", a.routes.health.HealthCheck)

	a.setupSwaggerRoutes()
	a.setupMetricsRoute()

	a.setupTrackingRoutes()
	a.setupBookingRoutes()
	a.mux.HandleFunc("GET /alerts", a.routes.alerts.GetAlerts) // Recent surfaced failures
}

func (a *API) setupTrackingRoutes() {
	a.mux.HandleFunc("GET /tracking", a.routes.tracking.GetStatus)              // Session status
	a.mux.HandleFunc("GET /tracking/locations", a.routes.tracking.GetLocations) // Buffered location updates
	a.mux.HandleFunc("POST /tracking/connect", a.routes.tracking.Connect)       // Open the channel
	a.mux.HandleFunc("POST /tracking/disconnect", a.routes.tracking.Disconnect) // Close the channel
}

func (a *API) setupBookingRoutes() {
	a.mux.HandleFunc("GET /bookings", a.routes.bookings.GetBookings)                       // Last known bookings and viewport
	a.mux.HandleFunc("POST /bookings/refresh", a.routes.bookings.Refresh)                  // Refetch and re-geocode
	a.mux.HandleFunc("POST /bookings/{booking_id}/status", a.routes.bookings.UpdateStatus) // Accept or reject
}

// setupSwaggerRoutes serves the Swagger UI for the registered tracker API document
func (a *API) setupSwaggerRoutes() {
	swaggerURL := httpSwagger.InstanceName(docs.InstanceName)
	a.mux.HandleFunc("/swagger/", httpSwagger.Handler(swaggerURL))
}

// setupMetricsRoute configures the Prometheus metrics endpoint
func (a *API) setupMetricsRoute() {
	a.mux.Handle("/metrics", promhttp.Handler())
}
