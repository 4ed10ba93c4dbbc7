package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	wrap "github.com/Temutjin2k/ride-tracker/pkg/logger/wrapper"
)

func TestLogger_InjectsContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "tracker", LevelDebug)

	ctx := wrap.WithAction(context.Background(), "channel_open")
	ctx = wrap.WithDriverID(ctx, "7")
	ctx = wrap.WithVehicleType(ctx, "car")

	l.Error(ctx, "dial failed", errors.New("refused"), "attempt", 2)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}

	for key, want := range map[string]string{
		"message":      "dial failed",
		"service":      "tracker",
		"action":       "channel_open",
		"driver_id":    "7",
		"vehicle_type": "car",
	} {
		if rec[key] != want {
			t.Fatalf("%s: got %v want %s", key, rec[key], want)
		}
	}
	if _, ok := rec["timestamp"]; !ok {
		t.Fatalf("timestamp attribute missing")
	}
	errGroup, ok := rec["error"].(map[string]any)
	if !ok || errGroup["msg"] != "refused" {
		t.Fatalf("unexpected error group: %v", rec["error"])
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "tracker", LevelWarn)

	l.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("info must be filtered at WARN level")
	}
	l.Warn(context.Background(), "shown")
	if buf.Len() == 0 {
		t.Fatalf("warn must pass at WARN level")
	}
}

func TestValidateLogLevel(t *testing.T) {
	if !ValidateLogLevel(LevelInfo) || ValidateLogLevel("TRACE") {
		t.Fatalf("unexpected level validation result")
	}
}
