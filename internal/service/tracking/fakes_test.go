package tracking

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
)

func testLogger() logger.Logger {
	return logger.New(io.Discard, "tracker-test", logger.LevelError)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

type fakeConn struct {
	mu      sync.Mutex
	written []any

	inbound   chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	open      atomic.Bool
}

func newFakeConn() *fakeConn {
	c := &fakeConn{
		inbound: make(chan []byte, 16),
		closed:  make(chan struct{}),
	}
	c.open.Store(true)
	return c
}

func (c *fakeConn) Read() ([]byte, error) {
	select {
	case d := <-c.inbound:
		return d, nil
	case <-c.closed:
		return nil, types.ErrChannelClosed
	}
}

func (c *fakeConn) WriteJSON(v any) error {
	if !c.IsOpen() {
		return types.ErrChannelClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, v)
	return nil
}

func (c *fakeConn) IsOpen() bool { return c.open.Load() }

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() {
		c.open.Store(false)
		close(c.closed)
	})
	return nil
}

func (c *fakeConn) frames() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.written...)
}

type fakeDialer struct {
	mu    sync.Mutex
	dials int
	fail  bool
	conns chan *fakeConn
}

func newFakeDialer(fail bool) *fakeDialer {
	return &fakeDialer{fail: fail, conns: make(chan *fakeConn, 16)}
}

func (d *fakeDialer) Dial(ctx context.Context, vehicleType string) (Conn, error) {
	d.mu.Lock()
	d.dials++
	fail := d.fail
	d.mu.Unlock()

	if fail {
		return nil, errors.New("connection refused")
	}
	c := newFakeConn()
	d.conns <- c
	return c, nil
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *fakeDialer) next(t *testing.T) *fakeConn {
	t.Helper()
	select {
	case c := <-d.conns:
		return c
	case <-time.After(3 * time.Second):
		t.Fatalf("no connection was dialed")
		return nil
	}
}

type reported struct {
	kind types.AlertKind
	err  error
}

type fakeAlerts struct {
	mu    sync.Mutex
	items []reported
}

func (a *fakeAlerts) Report(ctx context.Context, kind types.AlertKind, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items = append(a.items, reported{kind: kind, err: err})
}

func (a *fakeAlerts) all() []reported {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]reported(nil), a.items...)
}

type fakePositions struct {
	pos   models.Position
	err   error
	calls atomic.Int32
}

func (p *fakePositions) Position(ctx context.Context) (models.Position, error) {
	p.calls.Add(1)
	return p.pos, p.err
}

type fakeGeocoder struct {
	addr string
	err  error
}

func (g *fakeGeocoder) GetAddress(ctx context.Context, pos models.Position) (string, error) {
	return g.addr, g.err
}

type fakeMirror struct {
	mu      sync.Mutex
	reports []models.LocationReport
}

func (m *fakeMirror) PublishLocation(ctx context.Context, r models.LocationReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, r)
	return nil
}
