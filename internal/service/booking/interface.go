package booking

import (
	"context"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
)

type (
	ForwardGeocoder interface {
		GetLocation(ctx context.Context, address string) (models.Position, error)
	}

	BookingsAPI interface {
		ListBookings(ctx context.Context, driverID string) ([]models.Booking, error)
		UpdateBookingStatus(ctx context.Context, bookingID int64, status types.BookingStatus, vehicleType string) (string, error)
	}

	// LiveLocation provides the most recent known vehicle location.
	LiveLocation interface {
		Latest() (models.LocationSample, bool)
	}

	AlertSink interface {
		Report(ctx context.Context, kind types.AlertKind, err error)
	}
)
