package config

import (
	"fmt"
	"time"

	"github.com/Temutjin2k/ride-tracker/pkg/configparser"
)

// Config contains all configuration variables of the application
type (
	Config struct {
		Driver            DriverConfig
		Backend           BackendConfig
		Channel           ChannelConfig
		Tracking          TrackingConfig
		Bookings          BookingsConfig
		ExternalAPIConfig ExternalAPIConfig
		GPS               GPSConfig
		RabbitMQ          RabbitMQConfig
		HTTP              HTTPConfig
		Log               LogConfig
	}

	DriverConfig struct {
		// ID may be left empty when the access token carries it.
		ID          string `env:"DRIVER_ID"`
		AccessToken string `env:"DRIVER_ACCESS_TOKEN"`
		// VehicleType overrides the category reported by the backend.
		VehicleType string `env:"DRIVER_VEHICLE_TYPE"`
	}

	BackendConfig struct {
		BaseURL      string        `env:"BACKEND_BASE_URL" default:"http://localhost:8000"`
		Timeout      time.Duration `env:"BACKEND_TIMEOUT" default:"10s"`
		BookingsPath string        `env:"BACKEND_BOOKINGS_PATH" default:"/api/bookings/driver/"`
		StatusPath   string        `env:"BACKEND_STATUS_PATH" default:"/api/bookings/{booking_id}/update-status/"`
		DriverPath   string        `env:"BACKEND_DRIVER_PATH" default:"/api/drivers/{driver_id}/"`
		VehiclePath  string        `env:"BACKEND_VEHICLE_PATH" default:"/api/vehicles/{vehicle_type}/driver/{driver_id}/"`
	}

	ChannelConfig struct {
		URLTemplate      string        `env:"CHANNEL_URL_TEMPLATE" default:"ws://localhost:8000/ws/location/{vehicle_type}/"`
		FixedCategory    string        `env:"CHANNEL_FIXED_CATEGORY"`
		HandshakeTimeout time.Duration `env:"CHANNEL_HANDSHAKE_TIMEOUT" default:"10s"`
		WriteTimeout     time.Duration `env:"CHANNEL_WRITE_TIMEOUT" default:"5s"`
		PingInterval     time.Duration `env:"CHANNEL_PING_INTERVAL" default:"30s"`
	}

	TrackingConfig struct {
		PublishInterval      time.Duration `env:"TRACKING_PUBLISH_INTERVAL" default:"5s"`
		ReconnectDelay       time.Duration `env:"TRACKING_RECONNECT_DELAY" default:"3s"`
		MaxReconnectAttempts int           `env:"TRACKING_MAX_RECONNECT_ATTEMPTS" default:"5"`
		HistoryCapacity      int           `env:"TRACKING_HISTORY_CAPACITY" default:"50"`
		UnknownAddress       string        `env:"TRACKING_UNKNOWN_ADDRESS" default:"Unknown location"`
		FailedAddress        string        `env:"TRACKING_FAILED_ADDRESS" default:"Could not get address"`
		AlertCapacity        int           `env:"TRACKING_ALERT_CAPACITY" default:"20"`
	}

	BookingsConfig struct {
		// RefreshInterval of 0 disables periodic refresh.
		RefreshInterval time.Duration `env:"BOOKINGS_REFRESH_INTERVAL" default:"30s"`
		ViewportPadding float64       `env:"BOOKINGS_VIEWPORT_PADDING" default:"0.1"`
	}

	ExternalAPIConfig struct {
		LocationIQapiKey  string        `env:"LOCATIONIQ_API_KEY"`
		LocationIQBaseURL string        `env:"LOCATIONIQ_BASE_URL" default:"https://us1.locationiq.com"`
		LocationIQTimeout time.Duration `env:"LOCATIONIQ_TIMEOUT" default:"10s"`
	}

	GPSConfig struct {
		// Device is the serial port of an NMEA receiver; empty uses the static position.
		Device      string        `env:"GPS_DEVICE"`
		Baud        int           `env:"GPS_BAUD" default:"9600"`
		ReadTimeout time.Duration `env:"GPS_READ_TIMEOUT" default:"1s"`
		MaxFixAge   time.Duration `env:"GPS_MAX_FIX_AGE" default:"30s"`
		Latitude    float64       `env:"GPS_LATITUDE" default:"43.238949"`
		Longitude   float64       `env:"GPS_LONGITUDE" default:"76.889709"`
	}

	RabbitMQConfig struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED" default:"false"`
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
		Exchange string `env:"RABBITMQ_EXCHANGE" default:"location_fanout"`
	}

	HTTPConfig struct {
		Port string `env:"HTTP_PORT" default:"3010"`
	}

	LogConfig struct {
		Level string `env:"LOG_LEVEL" default:"INFO"`
	}
)

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	return cfg, nil
}
