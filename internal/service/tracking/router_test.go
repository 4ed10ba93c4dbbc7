package tracking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
)

func TestDecode(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name    string
		frame   string
		kind    types.MessageKind
		wantErr bool
	}{
		{"established", `{"type":"connection_established","message":"hi"}`, types.KindConnectionEstablished, false},
		{"location", `{"type":"location_update","data":{"latitude":43.2,"longitude":76.9,"address":"x"}}`, types.KindLocationUpdate, false},
		{"string coordinates", `{"type":"location_update","data":{"latitude":"43.2","longitude":"76.9"}}`, types.KindLocationUpdate, false},
		{"server error", `{"type":"error","message":"bad vehicle"}`, types.KindError, false},
		{"unknown type", `{"type":"driver_status"}`, types.KindUnrecognized, false},
		{"not json", `{{{`, "", true},
		{"missing type", `{"message":"x"}`, "", true},
		{"location without data", `{"type":"location_update"}`, "", true},
		{"location without coordinates", `{"type":"location_update","data":{"address":"x"}}`, "", true},
		{"location out of range", `{"type":"location_update","data":{"latitude":120,"longitude":0}}`, "", true},
		{"location bad coordinate", `{"type":"location_update","data":{"latitude":"north","longitude":0}}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.frame), now)
			if tt.wantErr {
				if !errors.Is(err, types.ErrProtocol) {
					t.Fatalf("expected protocol error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if msg.Kind() != tt.kind {
				t.Fatalf("got kind %s want %s", msg.Kind(), tt.kind)
			}
		})
	}
}

func TestDecode_Timestamps(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name string
		ts   string
		want time.Time
	}{
		{"missing", ``, now},
		{"rfc3339", `,"timestamp":"2025-06-01T10:00:00Z"`, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
		{"unix seconds", `,"timestamp":1700000000`, time.Unix(1700000000, 0)},
		{"unix millis", `,"timestamp":1700000000123`, time.UnixMilli(1700000000123)},
		{"garbage", `,"timestamp":"yesterday"`, now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := `{"type":"location_update","data":{"latitude":1,"longitude":2` + tt.ts + `}}`
			msg, err := Decode([]byte(frame), now)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			got := msg.(models.LocationUpdate).Sample.Timestamp
			if !got.Equal(tt.want) {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
}

func TestRouter_MalformedLeavesHistoryUntouched(t *testing.T) {
	h := NewHistory(DefaultHistoryCapacity)
	h.Append(models.LocationSample{Latitude: 1, Longitude: 1})
	alerts := &fakeAlerts{}
	r := NewRouter(h, alerts, testLogger())

	for _, frame := range []string{``, `null`, `[]`, `{"type":`, `{"type":"location_update","data":"oops"}`} {
		if msg := r.Route(context.Background(), []byte(frame)); msg != nil {
			t.Fatalf("frame %q: expected nil message, got %#v", frame, msg)
		}
	}

	if h.Len() != 1 {
		t.Fatalf("history changed: len %d", h.Len())
	}
	if len(alerts.all()) != 0 {
		t.Fatalf("malformed frames must not raise alerts")
	}
}

func TestRouter_Dispatch(t *testing.T) {
	h := NewHistory(DefaultHistoryCapacity)
	alerts := &fakeAlerts{}
	r := NewRouter(h, alerts, testLogger())
	ctx := context.Background()

	r.Route(ctx, []byte(`{"type":"connection_established","message":"ok"}`))
	r.Route(ctx, []byte(`{"type":"something_new"}`))
	if h.Len() != 0 || len(alerts.all()) != 0 {
		t.Fatalf("informational frames must not change state")
	}

	r.Route(ctx, []byte(`{"type":"location_update","data":{"latitude":10,"longitude":20,"address":"Main St"}}`))
	latest, ok := h.Latest()
	if !ok || latest.Latitude != 10 || latest.Longitude != 20 || latest.Address != "Main St" {
		t.Fatalf("unexpected latest sample %+v", latest)
	}

	r.Route(ctx, []byte(`{"type":"error","message":"vehicle not registered"}`))
	got := alerts.all()
	if len(got) != 1 || got[0].kind != types.AlertServer || got[0].err.Error() != "vehicle not registered" {
		t.Fatalf("unexpected alerts %+v", got)
	}
}
