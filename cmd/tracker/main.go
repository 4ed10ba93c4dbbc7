package main

import (
	"context"
	"flag"
	"os"

	"github.com/Temutjin2k/ride-tracker/config"
	"github.com/Temutjin2k/ride-tracker/internal/app"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
	"github.com/Temutjin2k/ride-tracker/pkg/metrics"
)

var (
	helpFlag   = flag.Bool("help", false, "Show help message")
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
)

func main() {
	flag.Parse()
	if *helpFlag {
		config.PrintHelp()
		return
	}

	ctx := context.Background()
	log := logger.InitLogger(metrics.Service, logger.LevelDebug)

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Error(ctx, "failed to configure application", err)
		config.PrintHelp()
		os.Exit(1)
	}

	// Printing configuration
	config.PrintConfig(cfg)

	if cfg.Log.Level != "" {
		log = logger.InitLogger(metrics.Service, cfg.Log.Level)
	}

	// Creating application
	application, err := app.NewApplication(ctx, *cfg, log)
	if err != nil {
		log.Error(ctx, "failed to init application", err)
		os.Exit(1)
	}

	// Running the apllication
	if err = application.Run(ctx); err != nil {
		log.Error(ctx, "failed to run application", err)
		os.Exit(1)
	}
}
