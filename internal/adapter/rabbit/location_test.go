package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
)

func TestRetry(t *testing.T) {
	calls := 0
	err := retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return errors.New("boom")
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("expected success on second call, got err=%v calls=%d", err, calls)
	}

	calls = 0
	boom := errors.New("boom")
	err = retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 3 {
		t.Fatalf("expected last error after 3 calls, got err=%v calls=%d", err, calls)
	}
}

func TestRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := retry(ctx, 5, time.Hour, func() error {
		calls++
		return errors.New("boom")
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Fatalf("expected cancellation after first call, got err=%v calls=%d", err, calls)
	}
}

func TestLocationMessage(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	msg := newLocationMessage(models.LocationReport{
		ID: "17", VehicleType: "bus", Latitude: 43.2, Longitude: 76.9, Address: "Abay Ave",
	}, at)

	body, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"driver_id":"17","vehicle_type":"bus","location":{"lat":43.2,"lng":76.9},"address":"Abay Ave","timestamp":"2025-01-02T03:04:05Z"}`
	if string(body) != want {
		t.Fatalf("got %s\nwant %s", body, want)
	}
}
