package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/ride-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-tracker/pkg/metrics"
)

const DefaultPublishInterval = 5 * time.Second

type PublisherConfig struct {
	Interval time.Duration
	// UnknownAddress is used when the lookup succeeds with nothing to show.
	UnknownAddress string
	// FailedAddress is used when the lookup fails.
	FailedAddress string
}

// Publisher periodically reports the device position over an open channel.
type Publisher struct {
	identity  models.Identity
	positions PositionSource
	geocoder  ReverseGeocoder
	mirror    Mirror
	cfg       PublisherConfig
	log       logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPublisher creates a publisher. mirror may be nil.
func NewPublisher(identity models.Identity, positions PositionSource, geocoder ReverseGeocoder, mirror Mirror, cfg PublisherConfig, log logger.Logger) *Publisher {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPublishInterval
	}
	if cfg.UnknownAddress == "" {
		cfg.UnknownAddress = "Unknown location"
	}
	if cfg.FailedAddress == "" {
		cfg.FailedAddress = "Could not get address"
	}
	return &Publisher{
		identity:  identity,
		positions: positions,
		geocoder:  geocoder,
		mirror:    mirror,
		cfg:       cfg,
		log:       log,
	}
}

// Start begins ticking on conn. A running ticker is stopped first.
func (p *Publisher) Start(ctx context.Context, conn Sender) {
	p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := p.publishOnce(ctx, conn); err != nil && ctx.Err() == nil {
					p.log.Error(wrap.ErrorCtx(ctx, err), "location tick aborted", err)
				}
			}
		}
	}()
}

// Stop cancels the ticker and waits for an in-flight tick to return. Safe to call repeatedly.
func (p *Publisher) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

// Running reports whether the ticker is active.
func (p *Publisher) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Publisher) publishOnce(ctx context.Context, conn Sender) error {
	const op = "Publisher.publishOnce"
	ctx = wrap.WithAction(ctx, types.ActionPublishLocation)

	if !conn.IsOpen() {
		p.log.Debug(ctx, "channel not open, skipping tick")
		return nil
	}

	pos, err := p.positions.Position(ctx)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: failed to get position: %w", op, err))
	}

	report := models.LocationReport{
		ID:          p.identity.DriverID,
		VehicleType: p.identity.VehicleType,
		Latitude:    pos.Latitude,
		Longitude:   pos.Longitude,
		Address:     p.address(ctx, pos),
	}

	err = conn.WriteJSON(report)
	metrics.RecordFrameSent("location", err)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: failed to send report: %w", op, err))
	}

	p.log.Debug(ctx, "location sent", "latitude", report.Latitude, "longitude", report.Longitude)

	if p.mirror != nil {
		if err := p.mirror.PublishLocation(ctx, report); err != nil {
			p.log.Warn(ctx, "failed to mirror location report", "error", err.Error())
		}
	}

	return nil
}

func (p *Publisher) address(ctx context.Context, pos models.Position) string {
	addr, err := p.geocoder.GetAddress(ctx, pos)
	if err != nil {
		p.log.Warn(ctx, "reverse geocoding failed", "error", err.Error())
		return p.cfg.FailedAddress
	}
	if addr == "" {
		return p.cfg.UnknownAddress
	}
	return addr
}
