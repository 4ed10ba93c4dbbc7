package alert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
)

func TestCenter_KeepsMostRecent(t *testing.T) {
	c := New(3, logger.New(io.Discard, "test", logger.LevelError))

	for i := range 5 {
		c.Report(context.Background(), types.AlertServer, fmt.Errorf("failure %d", i))
	}
	c.Report(context.Background(), types.AlertServer, nil)

	got := c.Recent()
	if len(got) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(got))
	}
	if got[0].Message != "failure 2" || got[2].Message != "failure 4" {
		t.Fatalf("unexpected alerts %+v", got)
	}
}

func TestCenter_RecentIsCopy(t *testing.T) {
	c := New(0, logger.New(io.Discard, "test", logger.LevelError))
	c.Report(context.Background(), types.AlertNetwork, errors.New("down"))

	got := c.Recent()
	got[0].Message = "changed"
	if c.Recent()[0].Message != "down" {
		t.Fatalf("Recent must return a copy")
	}
}
