package booking

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/ride-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-tracker/pkg/metrics"
)

type Config struct {
	DriverID    string
	VehicleType string
	Padding     float64
	// RefreshInterval of zero disables periodic refresh.
	RefreshInterval time.Duration
}

// Coordinator keeps the current booking snapshot and applies status changes.
type Coordinator struct {
	api      BookingsAPI
	resolver *Resolver
	live     LiveLocation
	alerts   AlertSink
	cfg      Config
	log      logger.Logger

	refreshMu sync.Mutex // one refresh cycle at a time

	mu       sync.RWMutex
	snapshot models.BookingSnapshot
}

// NewCoordinator creates a coordinator. live may be nil when no vehicle is tracked.
func NewCoordinator(api BookingsAPI, resolver *Resolver, live LiveLocation, alerts AlertSink, cfg Config, log logger.Logger) *Coordinator {
	if cfg.Padding <= 0 {
		cfg.Padding = DefaultPadding
	}
	return &Coordinator{
		api:      api,
		resolver: resolver,
		live:     live,
		alerts:   alerts,
		cfg:      cfg,
		log:      log,
	}
}

// Snapshot returns the last successfully built snapshot.
func (c *Coordinator) Snapshot() models.BookingSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Refresh fetches the booking list, resolves its addresses and recomputes the viewport.
// On failure the previous snapshot is kept.
func (c *Coordinator) Refresh(ctx context.Context) (models.BookingSnapshot, error) {
	const op = "Coordinator.Refresh"
	ctx = wrap.WithAction(wrap.WithDriverID(ctx, c.cfg.DriverID), types.ActionRefreshBookings)

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	bookings, err := c.api.ListBookings(ctx, c.cfg.DriverID)
	if err != nil {
		metrics.RecordBookingRefresh(err)
		return c.Snapshot(), wrap.Error(ctx, fmt.Errorf("%s: failed to fetch bookings: %w", op, err))
	}

	points, err := c.resolver.Resolve(ctx, bookings)
	if err != nil {
		metrics.RecordBookingRefresh(err)
		return c.Snapshot(), wrap.Error(ctx, fmt.Errorf("%s: resolve interrupted: %w", op, err))
	}

	region := make([]models.Position, 0, len(points)+1)
	for _, p := range points {
		region = append(region, p.Position())
	}
	if c.live != nil {
		if s, ok := c.live.Latest(); ok {
			region = append(region, s.Position())
			annotateDistances(points, s.Position())
		}
	}

	c.mu.Lock()
	viewport := FitViewport(region, c.cfg.Padding)
	if viewport == nil {
		viewport = c.snapshot.Viewport
	}
	c.snapshot = models.BookingSnapshot{
		Bookings:    bookings,
		Points:      points,
		Viewport:    viewport,
		RefreshedAt: time.Now(),
	}
	snap := c.snapshot
	c.mu.Unlock()

	metrics.RecordBookingRefresh(nil)
	c.log.Info(ctx, "bookings refreshed", "bookings", len(bookings), "points", len(points))

	return snap, nil
}

// UpdateStatus requests a status change. A successful change triggers a full refresh;
// a failed one is surfaced and leaves the current snapshot untouched.
func (c *Coordinator) UpdateStatus(ctx context.Context, bookingID int64, status types.BookingStatus) (string, error) {
	const op = "Coordinator.UpdateStatus"
	ctx = wrap.WithBookingID(wrap.WithAction(ctx, types.ActionUpdateStatus), strconv.FormatInt(bookingID, 10))

	if !status.Requestable() {
		return "", wrap.Error(ctx, fmt.Errorf("%s: %w: got %q", op, types.ErrInvalidStatus, status))
	}

	msg, err := c.api.UpdateBookingStatus(ctx, bookingID, status, c.cfg.VehicleType)
	metrics.RecordStatusUpdate(string(status), err)
	if err != nil {
		err = wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrStatusUpdate, err))
		c.alerts.Report(ctx, types.AlertStatusUpdate, err)
		return "", err
	}

	c.log.Info(ctx, "booking status updated", "status", status, "message", msg)

	if _, err := c.Refresh(ctx); err != nil {
		c.log.Error(wrap.ErrorCtx(ctx, err), "refresh after status update failed", err)
	}

	return msg, nil
}

// Run refreshes once and then on every interval until ctx is done.
func (c *Coordinator) Run(ctx context.Context) {
	if _, err := c.Refresh(ctx); err != nil && ctx.Err() == nil {
		c.log.Error(wrap.ErrorCtx(ctx, err), "initial booking refresh failed", err)
	}

	if c.cfg.RefreshInterval <= 0 {
		return
	}

	ticker := time.NewTicker(c.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.Refresh(ctx); err != nil && ctx.Err() == nil {
				c.log.Error(wrap.ErrorCtx(ctx, err), "periodic booking refresh failed", err)
			}
		}
	}
}
