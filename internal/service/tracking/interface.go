package tracking

import (
	"context"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
)

type (
	// Conn is one open channel. Read blocks until a frame arrives or the channel is closed;
	// a normal close is reported as types.ErrChannelClosed.
	Conn interface {
		Read() ([]byte, error)
		WriteJSON(v any) error
		IsOpen() bool
		Close() error
	}

	Dialer interface {
		Dial(ctx context.Context, vehicleType string) (Conn, error)
	}

	// Sender is the write side of a channel used by the publisher.
	Sender interface {
		WriteJSON(v any) error
		IsOpen() bool
	}

	PositionSource interface {
		Position(ctx context.Context) (models.Position, error)
	}

	ReverseGeocoder interface {
		GetAddress(ctx context.Context, pos models.Position) (string, error)
	}

	// Mirror receives a copy of every outbound location report.
	Mirror interface {
		PublishLocation(ctx context.Context, report models.LocationReport) error
	}

	AlertSink interface {
		Report(ctx context.Context, kind types.AlertKind, err error)
	}
)
