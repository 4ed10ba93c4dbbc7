package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/ride-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-tracker/pkg/metrics"
)

// Router decodes inbound frames and dispatches them by kind.
type Router struct {
	history *History
	alerts  AlertSink
	log     logger.Logger
	now     func() time.Time
}

func NewRouter(history *History, alerts AlertSink, log logger.Logger) *Router {
	return &Router{
		history: history,
		alerts:  alerts,
		log:     log,
		now:     time.Now,
	}
}

// Route handles one raw frame. Malformed frames are logged and dropped.
func (r *Router) Route(ctx context.Context, data []byte) models.InboundMessage {
	ctx = wrap.WithAction(ctx, types.ActionFrameReceived)

	msg, err := Decode(data, r.now())
	if err != nil {
		metrics.RecordFrameReceived("malformed")
		r.log.Warn(ctx, "dropping malformed frame", "error", err.Error(), "size", len(data))
		return nil
	}
	metrics.RecordFrameReceived(string(msg.Kind()))

	switch m := msg.(type) {
	case models.ConnectionEstablished:
		r.log.Info(ctx, "channel acknowledged subscription", "message", m.Message)
	case models.LocationUpdate:
		r.history.Append(m.Sample)
		r.log.Debug(ctx, "location update received",
			"latitude", m.Sample.Latitude,
			"longitude", m.Sample.Longitude,
			"buffered", r.history.Len(),
		)
	case models.ServerError:
		r.alerts.Report(ctx, types.AlertServer, errors.New(m.Message))
	case models.Unrecognized:
		r.log.Debug(ctx, "ignoring frame of unknown type", "type", m.Type)
	}

	return msg
}

type inboundFrame struct {
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type locationData struct {
	Latitude  *coordinate     `json:"latitude"`
	Longitude *coordinate     `json:"longitude"`
	Address   string          `json:"address"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// Decode turns a raw frame into one of the inbound message variants.
// receivedAt stamps location updates that carry no usable timestamp.
func Decode(data []byte, receivedAt time.Time) (models.InboundMessage, error) {
	var f inboundFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrProtocol, err)
	}
	if f.Type == "" {
		return nil, fmt.Errorf("%w: missing type", types.ErrProtocol)
	}

	switch types.MessageKind(f.Type) {
	case types.KindConnectionEstablished:
		return models.ConnectionEstablished{Message: f.Message}, nil
	case types.KindError:
		msg := f.Message
		if msg == "" {
			msg = "server reported an error"
		}
		return models.ServerError{Message: msg}, nil
	case types.KindLocationUpdate:
		sample, err := decodeLocation(f.Data, receivedAt)
		if err != nil {
			return nil, err
		}
		return models.LocationUpdate{Sample: sample}, nil
	default:
		return models.Unrecognized{Type: f.Type}, nil
	}
}

func decodeLocation(raw json.RawMessage, receivedAt time.Time) (models.LocationSample, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.LocationSample{}, fmt.Errorf("%w: location_update without data", types.ErrProtocol)
	}

	var d locationData
	if err := json.Unmarshal(raw, &d); err != nil {
		return models.LocationSample{}, fmt.Errorf("%w: location data: %v", types.ErrProtocol, err)
	}
	if d.Latitude == nil || d.Longitude == nil {
		return models.LocationSample{}, fmt.Errorf("%w: location data without coordinates", types.ErrProtocol)
	}

	lat, lon := float64(*d.Latitude), float64(*d.Longitude)
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return models.LocationSample{}, fmt.Errorf("%w: coordinates out of range (%f, %f)", types.ErrProtocol, lat, lon)
	}

	return models.LocationSample{
		Latitude:  lat,
		Longitude: lon,
		Address:   d.Address,
		Timestamp: parseTimestamp(d.Timestamp, receivedAt),
	}, nil
}

// coordinate accepts both JSON numbers and numeric strings.
type coordinate float64

func (c *coordinate) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid coordinate %s", b)
	}
	*c = coordinate(f)
	return nil
}

// parseTimestamp accepts RFC 3339 strings and unix seconds or milliseconds.
func parseTimestamp(raw json.RawMessage, fallback time.Time) time.Time {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return fallback
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
		return fallback
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
		if n > 1e12 {
			return time.UnixMilli(int64(n))
		}
		sec := int64(n)
		return time.Unix(sec, int64((n-float64(sec))*1e9))
	}
	return fallback
}
