package locationIQ

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	wrap "github.com/Temutjin2k/ride-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-tracker/pkg/metrics"
)

const DefaultBaseURL = "https://us1.locationiq.com"

type LocationIQClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func New(apiKey, baseURL string, timeout time.Duration) *LocationIQClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &LocationIQClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type reversePayload struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		HouseNumber string `json:"house_number"`
		Road        string `json:"road"`
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		State       string `json:"state"`
		Postcode    string `json:"postcode"`
		Country     string `json:"country"`
	} `json:"address"`
}

// format joins street, city, region, postcode and country, skipping empty parts.
func (p reversePayload) format() string {
	a := p.Address

	street := strings.TrimSpace(strings.Join([]string{a.HouseNumber, a.Road}, " "))
	city := firstNonEmpty(a.City, a.Town, a.Village)

	var parts []string
	for _, s := range []string{street, city, a.State, a.Postcode, a.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return p.DisplayName
	}
	return strings.Join(parts, ", ")
}

// GetAddress reverse-geocodes a position. An empty string with a nil error means nothing was found.
func (c *LocationIQClient) GetAddress(ctx context.Context, pos models.Position) (addr string, err error) {
	const op = "LocationIQClient.GetAddress"
	ctx = wrap.WithAction(ctx, types.ActionGeocodeReverse)

	start := time.Now()
	defer func() { metrics.RecordGeocode("reverse", err, time.Since(start)) }()

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("lat", strconv.FormatFloat(pos.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(pos.Longitude, 'f', -1, 64))
	q.Set("format", "json")
	q.Set("addressdetails", "1")

	resp, err := c.get(ctx, "/v1/reverse", q)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return "", wrap.Error(ctx, fmt.Errorf("%s: failed to make request to LocationIQ: %w", op, err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", nil
	default:
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return "", wrap.Error(ctx, fmt.Errorf("%s: %w: unexpected response status %d", op, types.ErrGeocoding, resp.StatusCode))
	}

	var payload reversePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		ctx = wrap.WithAction(ctx, "decode_address_payload")
		return "", wrap.Error(ctx, fmt.Errorf("%s: failed to decode data from LocationIQ response: %w", op, err))
	}

	return payload.format(), nil
}

// GetLocation forward-geocodes a free-text address and returns the best match.
func (c *LocationIQClient) GetLocation(ctx context.Context, address string) (pos models.Position, err error) {
	const op = "LocationIQClient.GetLocation"
	ctx = wrap.WithAction(ctx, types.ActionGeocodeForward)

	start := time.Now()
	defer func() { metrics.RecordGeocode("forward", err, time.Since(start)) }()

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	resp, err := c.get(ctx, "/v1/search", q)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return pos, wrap.Error(ctx, fmt.Errorf("%s: failed to make request to LocationIQ: %w", op, err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return pos, wrap.Error(ctx, fmt.Errorf("%s: %w: %q", op, types.ErrLocationNotFound, address))
	default:
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return pos, wrap.Error(ctx, fmt.Errorf("%s: unexpected response status %d", op, resp.StatusCode))
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return pos, wrap.Error(ctx, fmt.Errorf("%s: failed to decode data from LocationIQ response: %w", op, err))
	}

	if len(results) == 0 {
		return pos, wrap.Error(ctx, fmt.Errorf("%s: %w: %q", op, types.ErrLocationNotFound, address))
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return pos, wrap.Error(ctx, fmt.Errorf("%s: failed to parse latitude: %w", op, err))
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return pos, wrap.Error(ctx, fmt.Errorf("%s: failed to parse longitude: %w", op, err))
	}

	return models.Position{Latitude: lat, Longitude: lon}, nil
}

func (c *LocationIQClient) get(ctx context.Context, path string, q url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return c.client.Do(req)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
