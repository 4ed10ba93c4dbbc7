package config

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// PrintConfig writes the loaded configuration to stdout with secrets masked.
func PrintConfig(cfg *Config) {
	FprintConfig(os.Stdout, cfg)
}

func FprintConfig(w io.Writer, cfg *Config) {
	var b strings.Builder

	section := func(name string) { fmt.Fprintf(&b, "%s:\n", name) }
	field := func(name string, v any) { fmt.Fprintf(&b, "  %-22s %v\n", name, v) }

	b.WriteString("========== configuration ==========\n")

	section("driver")
	field("id", orDash(cfg.Driver.ID))
	field("access_token", mask(cfg.Driver.AccessToken))
	field("vehicle_type", orDash(cfg.Driver.VehicleType))

	section("backend")
	field("base_url", cfg.Backend.BaseURL)
	field("timeout", cfg.Backend.Timeout)

	section("channel")
	field("url_template", cfg.Channel.URLTemplate)
	field("fixed_category", orDash(cfg.Channel.FixedCategory))

	section("tracking")
	field("publish_interval", cfg.Tracking.PublishInterval)
	field("reconnect_delay", cfg.Tracking.ReconnectDelay)
	field("max_reconnects", cfg.Tracking.MaxReconnectAttempts)
	field("history_capacity", cfg.Tracking.HistoryCapacity)

	section("bookings")
	field("refresh_interval", cfg.Bookings.RefreshInterval)
	field("viewport_padding", cfg.Bookings.ViewportPadding)

	section("locationiq")
	field("api_key", mask(cfg.ExternalAPIConfig.LocationIQapiKey))
	field("base_url", cfg.ExternalAPIConfig.LocationIQBaseURL)

	section("gps")
	if cfg.GPS.Device != "" {
		field("device", cfg.GPS.Device)
		field("baud", cfg.GPS.Baud)
	} else {
		field("static", fmt.Sprintf("%.6f,%.6f", cfg.GPS.Latitude, cfg.GPS.Longitude))
	}

	section("rabbitmq")
	field("enabled", cfg.RabbitMQ.Enabled)
	if cfg.RabbitMQ.Enabled {
		field("host", cfg.RabbitMQ.Host+":"+cfg.RabbitMQ.Port)
		field("user", cfg.RabbitMQ.User)
		field("password", mask(cfg.RabbitMQ.Password))
		field("exchange", cfg.RabbitMQ.Exchange)
	}

	section("http")
	field("port", cfg.HTTP.Port)

	section("log")
	field("level", cfg.Log.Level)

	b.WriteString("===================================\n")
	fmt.Fprint(w, b.String())
}

func mask(secret string) string {
	switch {
	case secret == "":
		return "-"
	case len(secret) <= 8:
		return "****"
	default:
		return secret[:4] + "****"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
