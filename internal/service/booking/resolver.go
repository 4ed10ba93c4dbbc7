package booking

import (
	"context"
	"fmt"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/ride-tracker/pkg/logger/wrapper"
)

// Resolver geocodes booking addresses one at a time.
type Resolver struct {
	geocoder ForwardGeocoder
	log      logger.Logger
}

func NewResolver(geocoder ForwardGeocoder, log logger.Logger) *Resolver {
	return &Resolver{
		geocoder: geocoder,
		log:      log,
	}
}

// Resolve returns the pickup and dropoff points of the bookings in input order.
// Addresses that fail to resolve are logged and left out. Only cancellation aborts the batch.
func (r *Resolver) Resolve(ctx context.Context, bookings []models.Booking) ([]models.GeocodedPoint, error) {
	ctx = wrap.WithAction(ctx, types.ActionGeocodeForward)
	points := make([]models.GeocodedPoint, 0, len(bookings)*2)

	for _, b := range bookings {
		for _, leg := range []struct {
			role    types.PointRole
			prefix  string
			address string
		}{
			{types.RolePickup, "from", b.FromAddress},
			{types.RoleDropoff, "to", b.ToAddress},
		} {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			pos, err := r.resolve(ctx, leg.address)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				r.log.Warn(wrap.WithBookingID(ctx, fmt.Sprint(b.ID)), "skipping unresolvable address",
					"role", leg.role,
					"address", leg.address,
					"error", err.Error(),
				)
				continue
			}

			points = append(points, models.GeocodedPoint{
				ID:        fmt.Sprintf("%s_%d", leg.prefix, b.ID),
				BookingID: b.ID,
				Role:      leg.role,
				Latitude:  pos.Latitude,
				Longitude: pos.Longitude,
				Address:   leg.address,
				Status:    b.Status,
			})
		}
	}

	return points, nil
}

func (r *Resolver) resolve(ctx context.Context, address string) (models.Position, error) {
	if address == "" {
		return models.Position{}, fmt.Errorf("%w: empty address", types.ErrGeocoding)
	}
	pos, err := r.geocoder.GetLocation(ctx, address)
	if err != nil {
		return models.Position{}, fmt.Errorf("%w: %w", types.ErrGeocoding, err)
	}
	return pos, nil
}
