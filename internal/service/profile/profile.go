package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/ride-tracker/pkg/logger/wrapper"
)

type DriverAPI interface {
	DriverDetails(ctx context.Context, driverID, token string) (*models.DriverProfile, error)
	VehicleByDriver(ctx context.Context, category types.VehicleCategory, driverID, token string) (*models.Vehicle, error)
}

type Loader struct {
	api DriverAPI
	log logger.Logger
}

func NewLoader(api DriverAPI, log logger.Logger) *Loader {
	return &Loader{
		api: api,
		log: log,
	}
}

// Load fetches the driver and the assigned vehicle. A driver without an assignment, or whose
// vehicle no longer exists, is returned with a nil Vehicle and no error.
func (l *Loader) Load(ctx context.Context, driverID, token string) (*models.DriverProfile, error) {
	const op = "Loader.Load"
	ctx = wrap.WithDriverID(wrap.WithAction(ctx, types.ActionLoadProfile), driverID)

	driver, err := l.api.DriverDetails(ctx, driverID, token)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: failed to fetch driver: %w", op, err))
	}
	if driver.ID == "" {
		driver.ID = driverID
	}

	if driver.VehicleType == "" || driver.VehicleID == "" {
		l.log.Info(ctx, "no vehicle assigned to driver")
		return driver, nil
	}

	if !driver.VehicleType.Valid() {
		l.log.Warn(ctx, "driver has unknown vehicle category", "vehicle_type", driver.VehicleType)
		return driver, nil
	}

	vehicle, err := l.api.VehicleByDriver(ctx, driver.VehicleType, driverID, token)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			l.log.Info(ctx, "assigned vehicle not found, treating as unassigned", "vehicle_id", driver.VehicleID)
			return driver, nil
		}
		return nil, wrap.Error(ctx, fmt.Errorf("%s: failed to fetch vehicle: %w", op, err))
	}

	// the channel is keyed by the driver's category, not the vehicle sub-type
	vehicle.Category = driver.VehicleType
	if vehicle.ID == "" {
		vehicle.ID = driver.VehicleID
	}
	driver.Vehicle = vehicle

	return driver, nil
}
