package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Temutjin2k/ride-tracker/config"
	"github.com/Temutjin2k/ride-tracker/internal/app/microservices"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
)

var ErrServiceNotInitialized = errors.New("service not initialized")

type Service interface {
	Start(ctx context.Context) error
}

type App struct {
	service Service

	cfg config.Config
	log logger.Logger
}

// NewApplication
func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	app := &App{
		cfg: cfg,
		log: log,
	}

	if err := app.initService(ctx); err != nil {
		return nil, err
	}

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	if a.service == nil {
		return ErrServiceNotInitialized
	}

	if err := a.service.Start(ctx); err != nil {
		return err
	}

	return nil
}

func (a *App) initService(ctx context.Context) error {
	service, err := microservices.NewTracker(ctx, a.cfg, a.log)
	if err != nil {
		return fmt.Errorf("failed to init service: %w", err)
	}

	a.service = service

	return nil
}
