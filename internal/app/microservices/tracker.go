package microservices

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Temutjin2k/ride-tracker/config"
	"github.com/Temutjin2k/ride-tracker/internal/adapter/backend"
	"github.com/Temutjin2k/ride-tracker/internal/adapter/channel"
	"github.com/Temutjin2k/ride-tracker/internal/adapter/gps"
	"github.com/Temutjin2k/ride-tracker/internal/adapter/http/server"
	locationiq "github.com/Temutjin2k/ride-tracker/internal/adapter/locationIQ"
	broker "github.com/Temutjin2k/ride-tracker/internal/adapter/rabbit"
	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	"github.com/Temutjin2k/ride-tracker/internal/service/alert"
	"github.com/Temutjin2k/ride-tracker/internal/service/booking"
	"github.com/Temutjin2k/ride-tracker/internal/service/credentials"
	"github.com/Temutjin2k/ride-tracker/internal/service/profile"
	"github.com/Temutjin2k/ride-tracker/internal/service/tracking"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/ride-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-tracker/pkg/rabbit"
)

// TrackerService runs one driver's tracking session, booking coordinator and status API.
type TrackerService struct {
	profile *models.DriverProfile

	manager     *tracking.Manager // nil without a vehicle assignment
	coordinator *booking.Coordinator
	alerts      *alert.Center
	httpServer  *server.API

	serial *gps.SerialSource
	rabbit *rabbit.RabbitMQ

	cfg config.Config
	log logger.Logger
}

func NewTracker(ctx context.Context, cfg config.Config, log logger.Logger) (_ *TrackerService, err error) {
	s := &TrackerService{
		alerts: alert.New(cfg.Tracking.AlertCapacity, log),
		cfg:    cfg,
		log:    log,
	}
	defer func() {
		if err != nil {
			s.close(ctx)
		}
	}()

	creds, err := credentials.NewChecker(log).Check(ctx, cfg.Driver.AccessToken, cfg.Driver.ID)
	if err != nil {
		s.alerts.Report(ctx, types.AlertAuthentication, err)
		return nil, err
	}
	ctx = wrap.WithDriverID(ctx, creds.DriverID)

	api := backend.New(backend.Config{
		BaseURL:      cfg.Backend.BaseURL,
		Timeout:      cfg.Backend.Timeout,
		BookingsPath: cfg.Backend.BookingsPath,
		StatusPath:   cfg.Backend.StatusPath,
		DriverPath:   cfg.Backend.DriverPath,
		VehiclePath:  cfg.Backend.VehiclePath,
	}, creds.AccessToken, log)

	s.profile, err = profile.NewLoader(api, log).Load(ctx, creds.DriverID, creds.AccessToken)
	if err != nil {
		kind := types.AlertServer
		if errors.Is(err, types.ErrAuthentication) {
			kind = types.AlertAuthentication
		}
		s.alerts.Report(ctx, kind, err)
		return nil, err
	}

	geocoder := locationiq.New(cfg.ExternalAPIConfig.LocationIQapiKey, cfg.ExternalAPIConfig.LocationIQBaseURL, cfg.ExternalAPIConfig.LocationIQTimeout)

	vehicleType := cfg.Driver.VehicleType
	if vehicleType == "" && s.profile.HasAssignment() {
		vehicleType = string(s.profile.Vehicle.Category)
	}

	var history *tracking.History
	if s.profile.HasAssignment() {
		history, err = s.initSession(ctx, models.Identity{DriverID: creds.DriverID, VehicleType: vehicleType}, creds.AccessToken, geocoder)
		if err != nil {
			return nil, err
		}
	} else {
		log.Info(ctx, "no vehicle assigned: nothing to track")
	}

	var live booking.LiveLocation
	if history != nil {
		live = history
	}
	s.coordinator = booking.NewCoordinator(api, booking.NewResolver(geocoder, log), live, s.alerts, booking.Config{
		DriverID:        creds.DriverID,
		VehicleType:     vehicleType,
		Padding:         cfg.Bookings.ViewportPadding,
		RefreshInterval: cfg.Bookings.RefreshInterval,
	}, log)

	svc := server.Services{
		DriverID: creds.DriverID,
		Bookings: s.coordinator,
		Alerts:   s.alerts,
	}
	if s.manager != nil {
		svc.Tracking = s.manager
		svc.History = history
	}

	s.httpServer, err = server.New(cfg.HTTP.Port, svc, log)
	if err != nil {
		log.Error(ctx, "Failed to setup http server", err)
		return nil, err
	}

	return s, nil
}

// initSession builds the position source, the optional broker mirror and the channel manager.
func (s *TrackerService) initSession(ctx context.Context, identity models.Identity, token string, geocoder *locationiq.LocationIQClient) (*tracking.History, error) {
	var positions tracking.PositionSource = gps.NewStatic(s.cfg.GPS.Latitude, s.cfg.GPS.Longitude)
	if s.cfg.GPS.Device != "" {
		src, err := gps.OpenSerial(gps.SerialConfig{
			Device:      s.cfg.GPS.Device,
			Baud:        s.cfg.GPS.Baud,
			ReadTimeout: s.cfg.GPS.ReadTimeout,
			MaxAge:      s.cfg.GPS.MaxFixAge,
		}, s.log)
		if err != nil {
			s.log.Warn(ctx, "gps receiver unavailable, using static position", "device", s.cfg.GPS.Device, "error", err.Error())
		} else {
			s.serial = src
			positions = src
		}
	}

	var mirror tracking.Mirror
	if s.cfg.RabbitMQ.Enabled {
		client, err := rabbit.New(ctx, s.cfg.RabbitMQ.GetDSN(), s.log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		s.rabbit = client

		m, err := broker.NewLocationMirror(ctx, client, s.cfg.RabbitMQ.Exchange, s.log)
		if err != nil {
			return nil, err
		}
		mirror = m
	}

	history := tracking.NewHistory(s.cfg.Tracking.HistoryCapacity)

	publisher := tracking.NewPublisher(identity, positions, geocoder, mirror, tracking.PublisherConfig{
		Interval:       s.cfg.Tracking.PublishInterval,
		UnknownAddress: s.cfg.Tracking.UnknownAddress,
		FailedAddress:  s.cfg.Tracking.FailedAddress,
	}, s.log)

	dialer := channel.NewDialer(channel.Config{
		URLTemplate:      s.cfg.Channel.URLTemplate,
		FixedCategory:    s.cfg.Channel.FixedCategory,
		HandshakeTimeout: s.cfg.Channel.HandshakeTimeout,
		WriteTimeout:     s.cfg.Channel.WriteTimeout,
		PingInterval:     s.cfg.Channel.PingInterval,
	}, token)

	s.manager = tracking.NewManager(identity, dialer, publisher, tracking.NewRouter(history, s.alerts, s.log), s.alerts, tracking.ManagerConfig{
		MaxReconnectAttempts: s.cfg.Tracking.MaxReconnectAttempts,
		ReconnectDelay:       s.cfg.Tracking.ReconnectDelay,
	}, s.log)

	return history, nil
}

func (s *TrackerService) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	runCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup

	s.httpServer.Run(ctx, errCh)
	defer func() {
		// the manager tears the session down when its loop exits
		cancel()
		wg.Wait()
		s.close(ctx)
		s.log.Info(ctx, "tracker service closed")
	}()

	if s.manager != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.manager.Run(runCtx); err != nil {
				errCh <- err
			}
		}()

		if err := s.manager.Connect(runCtx); err != nil {
			s.log.Error(ctx, "failed to start tracking", err)
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.coordinator.Run(runCtx)
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	s.log.Info(ctx, "tracker service started", "assigned", s.profile.HasAssignment())

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shuting down application", "signal", sig.String())
		return nil
	}
}

func (s *TrackerService) close(ctx context.Context) {
	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			s.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
		}
	}

	if s.serial != nil {
		if err := s.serial.Close(); err != nil {
			s.log.Warn(ctx, "Failed to close gps receiver", "error", err.Error())
		}
	}

	if s.rabbit != nil {
		if err := s.rabbit.Close(ctx); err != nil {
			s.log.Warn(ctx, "Failed to close rabbitmq", "error", err.Error())
		}
	}
}
