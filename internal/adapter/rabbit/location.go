package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/ride-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-tracker/pkg/metrics"
	"github.com/Temutjin2k/ride-tracker/pkg/rabbit"
)

const (
	ExchangeLocationFanout = "location_fanout"

	actionMirrorLocation = "mirror_location"
	publishAttempts      = 3
	publishBackoff       = 200 * time.Millisecond
)

// locationMessage is the broker copy of one outbound location report.
type locationMessage struct {
	DriverID    string    `json:"driver_id"`
	VehicleType string    `json:"vehicle_type"`
	Location    location  `json:"location"`
	Address     string    `json:"address"`
	Timestamp   time.Time `json:"timestamp"`
}

type location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func newLocationMessage(r models.LocationReport, at time.Time) locationMessage {
	return locationMessage{
		DriverID:    r.ID,
		VehicleType: r.VehicleType,
		Location:    location{Lat: r.Latitude, Lng: r.Longitude},
		Address:     r.Address,
		Timestamp:   at.UTC(),
	}
}

// LocationMirror fans every outbound location report out to the broker.
type LocationMirror struct {
	client   *rabbit.RabbitMQ
	exchange string
	l        logger.Logger
}

// NewLocationMirror declares the fanout exchange. An empty exchange falls back to location_fanout.
func NewLocationMirror(ctx context.Context, client *rabbit.RabbitMQ, exchange string, l logger.Logger) (*LocationMirror, error) {
	const op = "LocationMirror.New"

	if exchange == "" {
		exchange = ExchangeLocationFanout
	}

	ch, err := client.Channel(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("%s: declare exchange %q: %w", op, exchange, err)
	}

	return &LocationMirror{client: client, exchange: exchange, l: l}, nil
}

func (m *LocationMirror) PublishLocation(ctx context.Context, report models.LocationReport) error {
	const op = "LocationMirror.PublishLocation"
	ctx = wrap.WithAction(ctx, actionMirrorLocation)

	body, err := json.Marshal(newLocationMessage(report, time.Now()))
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: failed to marshal message: %w", op, err))
	}

	pub := amqp.Publishing{
		ContentType:   "application/json",
		Body:          body,
		Timestamp:     time.Now(),
		CorrelationId: wrap.GetRequestID(ctx),
	}

	err = retry(ctx, publishAttempts, publishBackoff, func() error {
		ch, err := m.client.Channel(ctx)
		if err != nil {
			return err
		}
		return ch.PublishWithContext(ctx, m.exchange, "", false, false, pub)
	})
	metrics.RecordRabbitMQPublish(metrics.Service, m.exchange, err)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: failed to publish: %w", op, err))
	}

	m.l.Debug(ctx, "location mirrored", "exchange", m.exchange)
	return nil
}
