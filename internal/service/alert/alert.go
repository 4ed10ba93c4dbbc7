package alert

import (
	"context"
	"sync"
	"time"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/ride-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-tracker/pkg/metrics"
)

const defaultCapacity = 20

// Center is where session level failures are surfaced. It keeps the most recent alerts.
type Center struct {
	mu       sync.RWMutex
	items    []models.Alert
	capacity int
	log      logger.Logger
}

func New(capacity int, log logger.Logger) *Center {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Center{
		capacity: capacity,
		log:      log,
	}
}

func (c *Center) Report(ctx context.Context, kind types.AlertKind, err error) {
	if err == nil {
		return
	}

	a := models.Alert{Kind: kind, Message: err.Error(), At: time.Now()}

	c.mu.Lock()
	c.items = append(c.items, a)
	if len(c.items) > c.capacity {
		c.items = c.items[len(c.items)-c.capacity:]
	}
	c.mu.Unlock()

	metrics.RecordAlert(string(kind))
	c.log.Error(wrap.ErrorCtx(wrap.WithAction(ctx, types.ActionAlert), err), "alert raised", err, "kind", kind)
}

// Recent returns alerts oldest first.
func (c *Center) Recent() []models.Alert {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Alert(nil), c.items...)
}
