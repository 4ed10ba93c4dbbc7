package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Temutjin2k/ride-tracker/internal/adapter/http/handler"
	"github.com/Temutjin2k/ride-tracker/internal/adapter/http/middleware"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/ride-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-tracker/pkg/metrics"
)

const serverIPAddress = "%s:%s"

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *handlers
	m      *middleware.Middleware

	addr string
	log  logger.Logger
}

type handlers struct {
	health   *handler.Health
	tracking *handler.Tracking
	bookings *handler.Bookings
	alerts   *handler.Alerts
}

// Services are the dependencies of the status API. Tracking and History are nil
// when the driver has no vehicle assigned.
type Services struct {
	DriverID string
	Tracking handler.TrackingService
	History  handler.LocationHistory
	Bookings handler.BookingService
	Alerts   handler.AlertService
}

func New(port string, svc Services, log logger.Logger) (*API, error) {
	if svc.Bookings == nil || svc.Alerts == nil {
		return nil, errors.New("bookings and alerts services are required")
	}

	api := &API{
		mux: http.NewServeMux(),
		routes: &handlers{
			health:   handler.NewHealth(metrics.Service, svc.DriverID, log),
			tracking: handler.NewTracking(svc.Tracking, svc.History, log),
			bookings: handler.NewBookings(svc.Bookings, log),
			alerts:   handler.NewAlerts(svc.Alerts, log),
		},
		m:    middleware.NewMiddleware(log),
		addr: fmt.Sprintf(serverIPAddress, "0.0.0.0", port),
		log:  log,
	}

	api.setupRoutes()

	api.server = &http.Server{
		Addr:              api.addr,
		Handler:           api.withMiddleware(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return api, nil
}

// Handler returns the routed handler with all middlewares applied.
func (a *API) Handler() http.Handler {
	return a.server.Handler
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// withMiddleware applies middlewares to the mux. Metrics wraps the mux directly
// so it sees the matched route pattern.
func (a *API) withMiddleware() http.Handler {
	return a.m.Recover(a.m.RequestID(a.m.Logging(a.m.Metrics(metrics.Service)(a.mux))))
}
