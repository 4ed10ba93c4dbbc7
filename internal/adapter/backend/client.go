package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/ride-tracker/pkg/logger/wrapper"
)

type Config struct {
	BaseURL      string
	Timeout      time.Duration
	BookingsPath string // driver_id is passed as a query parameter
	StatusPath   string // {booking_id}
	DriverPath   string // {driver_id}
	VehiclePath  string // {vehicle_type}, {driver_id}
}

// Client talks to the booking backend over REST.
type Client struct {
	cfg    Config
	token  string
	client *http.Client
	log    logger.Logger
}

// New creates a client. token is attached to booking calls when not empty.
func New(cfg Config, token string, log logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:    cfg,
		token:  token,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

// ListBookings returns the bookings assigned to the driver.
func (c *Client) ListBookings(ctx context.Context, driverID string) ([]models.Booking, error) {
	const op = "Client.ListBookings"

	path := c.cfg.BookingsPath + "?" + url.Values{"driver_id": {driverID}}.Encode()

	var payload []bookingDTO
	if err := c.do(ctx, http.MethodGet, path, c.token, nil, &payload); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	bookings := make([]models.Booking, 0, len(payload))
	for _, b := range payload {
		bookings = append(bookings, b.toModel())
	}
	return bookings, nil
}

// UpdateBookingStatus posts the new status and returns the server message.
func (c *Client) UpdateBookingStatus(ctx context.Context, bookingID int64, status types.BookingStatus, vehicleType string) (string, error) {
	const op = "Client.UpdateBookingStatus"

	path := expand(c.cfg.StatusPath, "{booking_id}", strconv.FormatInt(bookingID, 10))
	body := statusRequest{Status: string(status), VehicleType: vehicleType}

	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, path, c.token, body, &resp); err != nil {
		return "", wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return resp.Message, nil
}

// DriverDetails fetches the driver record. Vehicle is never set here.
func (c *Client) DriverDetails(ctx context.Context, driverID, token string) (*models.DriverProfile, error) {
	const op = "Client.DriverDetails"

	path := expand(c.cfg.DriverPath, "{driver_id}", url.PathEscape(driverID))

	var resp driverDetailsResponse
	if err := c.do(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return resp.toModel(), nil
}

// VehicleByDriver fetches the vehicle of the given category assigned to the driver.
// types.ErrNotFound is returned when there is none.
func (c *Client) VehicleByDriver(ctx context.Context, category types.VehicleCategory, driverID, token string) (*models.Vehicle, error) {
	const op = "Client.VehicleByDriver"

	path := expand(c.cfg.VehiclePath, "{vehicle_type}", url.PathEscape(string(category)))
	path = expand(path, "{driver_id}", url.PathEscape(driverID))

	var resp vehicleDTO
	if err := c.do(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return resp.toModel(), nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, dst any) error {
	var reader io.Reader
	if body != nil {
		js, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(js)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	requestID := wrap.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s %s: %v", types.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug(wrap.WithRequestID(ctx, requestID), "backend call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp)
	}

	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: failed to decode body: %v", types.ErrUnexpectedResponse, err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var e errorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &e); err != nil || e.message() == "" {
		e.Error = strings.TrimSpace(string(raw))
	}

	msg := e.message()
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", types.ErrAuthentication, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", types.ErrNotFound, msg)
	default:
		return &ResponseError{StatusCode: resp.StatusCode, Message: msg}
	}
}

// ResponseError is a non-success answer from the backend.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Message)
}

func (e *ResponseError) Unwrap() error {
	return types.ErrUnexpectedResponse
}

func expand(path, placeholder, value string) string {
	return strings.ReplaceAll(path, placeholder, value)
}
