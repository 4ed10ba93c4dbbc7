package profile

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
)

type fakeAPI struct {
	driver     *models.DriverProfile
	driverErr  error
	vehicle    *models.Vehicle
	vehicleErr error
	vehicleHit int
}

func (f *fakeAPI) DriverDetails(ctx context.Context, driverID, token string) (*models.DriverProfile, error) {
	if f.driverErr != nil {
		return nil, f.driverErr
	}
	d := *f.driver
	return &d, nil
}

func (f *fakeAPI) VehicleByDriver(ctx context.Context, category types.VehicleCategory, driverID, token string) (*models.Vehicle, error) {
	f.vehicleHit++
	if f.vehicleErr != nil {
		return nil, f.vehicleErr
	}
	v := *f.vehicle
	return &v, nil
}

func load(api *fakeAPI) (*models.DriverProfile, error) {
	return NewLoader(api, logger.New(io.Discard, "test", logger.LevelError)).Load(context.Background(), "17", "token")
}

func TestLoad_Assigned(t *testing.T) {
	api := &fakeAPI{
		driver:  &models.DriverProfile{Name: "Aidos", VehicleType: types.VehicleCar, VehicleID: "3"},
		vehicle: &models.Vehicle{Category: "SUV", Model: "Camry"},
	}

	p, err := load(api)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !p.HasAssignment() || p.Vehicle.Category != types.VehicleCar || p.Vehicle.ID != "3" || p.ID != "17" {
		t.Fatalf("unexpected profile %+v vehicle %+v", p, p.Vehicle)
	}
}

func TestLoad_NoAssignment(t *testing.T) {
	tests := []struct {
		name string
		api  *fakeAPI
		hits int
	}{
		{"no vehicle fields", &fakeAPI{driver: &models.DriverProfile{Name: "Aidos"}}, 0},
		{"vehicle gone", &fakeAPI{
			driver:     &models.DriverProfile{VehicleType: types.VehicleBus, VehicleID: "9"},
			vehicleErr: types.ErrNotFound,
		}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := load(tt.api)
			if err != nil {
				t.Fatalf("no assignment is not an error: %v", err)
			}
			if p.HasAssignment() {
				t.Fatalf("expected no assignment")
			}
			if tt.api.vehicleHit != tt.hits {
				t.Fatalf("vehicle endpoint hits: got %d want %d", tt.api.vehicleHit, tt.hits)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := load(&fakeAPI{driverErr: types.ErrAuthentication}); !errors.Is(err, types.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}

	api := &fakeAPI{
		driver:     &models.DriverProfile{VehicleType: types.VehicleBike, VehicleID: "1"},
		vehicleErr: types.ErrNetwork,
	}
	if _, err := load(api); !errors.Is(err, types.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}
