package channel

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	"github.com/Temutjin2k/ride-tracker/internal/service/tracking"
)

const categoryPlaceholder = "{vehicle_type}"

type Config struct {
	// URLTemplate is the channel endpoint; {vehicle_type} is replaced by the category.
	URLTemplate string
	// FixedCategory, when set, is used instead of the vehicle's own category.
	FixedCategory    string
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	PingInterval     time.Duration
}

// Dialer opens location channels over websocket.
type Dialer struct {
	cfg    Config
	dialer *websocket.Dialer
	header http.Header
}

// NewDialer creates a dialer. token, when set, is sent as a bearer Authorization header.
func NewDialer(cfg Config, token string) *Dialer {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	return &Dialer{
		cfg: cfg,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		header: header,
	}
}

// URL returns the endpoint for the category.
func (d *Dialer) URL(vehicleType string) string {
	category := vehicleType
	if d.cfg.FixedCategory != "" {
		category = d.cfg.FixedCategory
	}
	return strings.ReplaceAll(d.cfg.URLTemplate, categoryPlaceholder, strings.ToLower(category))
}

func (d *Dialer) Dial(ctx context.Context, vehicleType string) (tracking.Conn, error) {
	const op = "Dialer.Dial"

	url := d.URL(vehicleType)
	ws, resp, err := d.dialer.DialContext(ctx, url, d.header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%s: %w: handshake rejected with %d", op, types.ErrAuthentication, resp.StatusCode)
		}
		return nil, fmt.Errorf("%s: %w: dial %s: %v", op, types.ErrNetwork, url, err)
	}

	return NewConn(ws, d.cfg.WriteTimeout, d.cfg.PingInterval), nil
}
