package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/ride-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-tracker/pkg/metrics"
)

const (
	DefaultMaxReconnectAttempts = 5
	DefaultReconnectDelay       = 3 * time.Second
)

var (
	ErrManagerStopped = errors.New("connection manager is not running")
	ErrAlreadyRunning = errors.New("connection manager already running")
)

type ManagerConfig struct {
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
}

// Status is a point-in-time view of the session.
type Status struct {
	State       types.ConnectionState `json:"state"`
	IsTracking  bool                  `json:"is_tracking"`
	Attempts    int                   `json:"reconnect_attempts"`
	DriverID    string                `json:"driver_id"`
	VehicleType string                `json:"vehicle_type"`
	ChangedAt   time.Time             `json:"changed_at"`
}

type eventKind int

const (
	evConnect eventKind = iota
	evDisconnect
	evReconnect
	evOpen
	evMessage
	evError
	evClose
)

type event struct {
	kind eventKind
	gen  uint64
	conn Conn
	data []byte
	err  error
	done chan struct{}
}

// Manager owns the channel of one tracked vehicle. All channel events, timer fires and
// caller requests are handled one at a time by the loop started with Run.
type Manager struct {
	identity  models.Identity
	dialer    Dialer
	publisher *Publisher
	router    *Router
	alerts    AlertSink
	cfg       ManagerConfig
	log       logger.Logger

	events  chan event
	done    chan struct{}
	running atomic.Bool

	// loop-owned
	gen        uint64
	conn       Conn
	dialCancel context.CancelFunc
	timer      *time.Timer
	attempts   int
	state      types.ConnectionState
	tracking   bool

	mu     sync.RWMutex
	status Status
}

func NewManager(identity models.Identity, dialer Dialer, publisher *Publisher, router *Router, alerts AlertSink, cfg ManagerConfig, log logger.Logger) *Manager {
	if cfg.MaxReconnectAttempts <= 0 {
		cfg.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}

	m := &Manager{
		identity:  identity,
		dialer:    dialer,
		publisher: publisher,
		router:    router,
		alerts:    alerts,
		cfg:       cfg,
		log:       log,
		events:    make(chan event, 64),
		done:      make(chan struct{}),
		state:     types.StateDisconnected,
	}
	m.status = Status{
		State:       types.StateDisconnected,
		DriverID:    identity.DriverID,
		VehicleType: identity.VehicleType,
		ChangedAt:   time.Now(),
	}
	return m
}

// Run processes events until ctx is cancelled, then tears the session down.
func (m *Manager) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(m.done)

	ctx = wrap.WithDriverID(ctx, m.identity.DriverID)
	ctx = wrap.WithVehicleType(ctx, m.identity.VehicleType)

	for {
		select {
		case <-ctx.Done():
			m.teardown(context.WithoutCancel(ctx))
			return nil
		case ev := <-m.events:
			m.handle(ctx, ev)
			if ev.done != nil {
				close(ev.done)
			}
		}
	}
}

// Connect starts a session. The reconnect counter is reset. Without a driver id and
// vehicle type nothing happens and ErrMissingIdentity is returned.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.identity.Valid() {
		return types.ErrMissingIdentity
	}
	return m.request(ctx, evConnect)
}

// Disconnect cancels a pending reconnect, stops publishing and closes the channel. Idempotent.
func (m *Manager) Disconnect(ctx context.Context) error {
	return m.request(ctx, evDisconnect)
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) State() types.ConnectionState {
	return m.Status().State
}

func (m *Manager) IsTracking() bool {
	return m.Status().IsTracking
}

func (m *Manager) request(ctx context.Context, kind eventKind) error {
	ev := event{kind: kind, done: make(chan struct{})}

	select {
	case m.events <- ev:
	case <-m.done:
		return ErrManagerStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-ev.done:
		return nil
	case <-m.done:
		return ErrManagerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post delivers an event from a background goroutine. It reports false once the loop has exited.
func (m *Manager) post(ev event) bool {
	select {
	case m.events <- ev:
		return true
	case <-m.done:
		return false
	}
}

func (m *Manager) handle(ctx context.Context, ev event) {
	switch ev.kind {
	case evConnect:
		m.onConnect(ctx)
	case evDisconnect:
		m.teardown(ctx)
	case evReconnect:
		if ev.gen != m.gen || m.state != types.StateDisconnected || m.timer == nil {
			return
		}
		m.timer = nil
		m.dial(ctx, "reconnect")
	case evOpen:
		if ev.gen != m.gen {
			_ = ev.conn.Close()
			return
		}
		m.onOpen(ctx, ev.conn)
	case evMessage:
		if ev.gen != m.gen {
			return
		}
		m.router.Route(ctx, ev.data)
	case evError:
		if ev.gen != m.gen {
			return
		}
		m.onError(ctx, ev.err)
	case evClose:
		if ev.gen != m.gen {
			return
		}
		m.onClose(ctx, ev.err)
	}
}

func (m *Manager) onConnect(ctx context.Context) {
	ctx = wrap.WithAction(ctx, types.ActionChannelConnect)

	if m.state == types.StateConnecting || m.state == types.StateConnected {
		m.log.Debug(ctx, "channel already active", "state", m.state)
		return
	}

	m.stopTimer()
	m.publisher.Stop()
	m.closeConn()
	m.attempts = 0
	m.dial(ctx, "initial")
}

// dial starts a new connection generation. Events of older generations are ignored.
func (m *Manager) dial(ctx context.Context, reason string) {
	m.gen++
	gen := m.gen

	if m.dialCancel != nil {
		m.dialCancel()
	}
	dialCtx, cancel := context.WithCancel(ctx)
	m.dialCancel = cancel

	m.setState(ctx, types.StateConnecting)
	metrics.RecordConnectAttempt(m.identity.VehicleType, reason)
	m.log.Info(wrap.WithAction(ctx, types.ActionChannelConnect), "opening channel", "reason", reason, "attempt", m.attempts+1)

	go m.runConn(dialCtx, gen)
}

func (m *Manager) runConn(ctx context.Context, gen uint64) {
	conn, err := m.dialer.Dial(ctx, m.identity.VehicleType)
	if err != nil {
		m.post(event{kind: evError, gen: gen, err: err})
		m.post(event{kind: evClose, gen: gen, err: err})
		return
	}

	if !m.post(event{kind: evOpen, gen: gen, conn: conn}) {
		_ = conn.Close()
		return
	}

	for {
		data, err := conn.Read()
		if err != nil {
			if !errors.Is(err, types.ErrChannelClosed) {
				m.post(event{kind: evError, gen: gen, err: err})
			}
			m.post(event{kind: evClose, gen: gen, err: err})
			return
		}
		if !m.post(event{kind: evMessage, gen: gen, data: data}) {
			return
		}
	}
}

func (m *Manager) onOpen(ctx context.Context, conn Conn) {
	ctx = wrap.WithAction(ctx, types.ActionChannelOpen)

	m.conn = conn
	m.attempts = 0
	m.tracking = true
	m.setState(ctx, types.StateConnected)
	m.log.Info(ctx, "channel open")

	sub := models.NewSubscribeFrame(m.identity.DriverID, m.identity.VehicleType)
	err := conn.WriteJSON(sub)
	metrics.RecordFrameSent("subscribe", err)
	if err != nil {
		m.log.Error(ctx, "failed to send subscribe frame", err)
	}

	m.publisher.Start(ctx, conn)
}

func (m *Manager) onError(ctx context.Context, err error) {
	ctx = wrap.WithAction(ctx, types.ActionChannelError)

	m.setState(ctx, types.StateError)
	m.log.Error(ctx, "channel transport error", fmt.Errorf("%w: %v", types.ErrNetwork, err))
}

func (m *Manager) onClose(ctx context.Context, cause error) {
	ctx = wrap.WithAction(ctx, types.ActionChannelClose)

	m.publisher.Stop()
	m.closeConn()
	m.attempts++
	m.setState(ctx, types.StateDisconnected)

	if m.attempts < m.cfg.MaxReconnectAttempts {
		gen := m.gen
		m.timer = time.AfterFunc(m.cfg.ReconnectDelay, func() {
			m.post(event{kind: evReconnect, gen: gen})
		})
		m.log.Info(wrap.WithAction(ctx, types.ActionChannelReconnect), "channel closed, reconnect scheduled",
			"attempt", m.attempts,
			"max_attempts", m.cfg.MaxReconnectAttempts,
			"delay", m.cfg.ReconnectDelay.String(),
		)
		return
	}

	m.tracking = false
	m.publish()

	err := fmt.Errorf("%w: %d consecutive closes", types.ErrReconnectExhausted, m.attempts)
	if cause != nil {
		err = fmt.Errorf("%w: last error: %v", err, cause)
	}
	m.alerts.Report(ctx, types.AlertNetwork, err)
}

// teardown cancels the reconnect timer, stops the publisher, closes the channel and
// discards an in-flight dial, in that order.
func (m *Manager) teardown(ctx context.Context) {
	ctx = wrap.WithAction(ctx, types.ActionChannelDisconnect)

	m.gen++
	m.stopTimer()
	m.publisher.Stop()
	m.closeConn()
	if m.dialCancel != nil {
		m.dialCancel()
		m.dialCancel = nil
	}

	wasActive := m.tracking || m.state != types.StateDisconnected
	m.tracking = false
	m.setState(ctx, types.StateDisconnected)
	if wasActive {
		m.log.Info(ctx, "tracking stopped")
	}
}

func (m *Manager) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) closeConn() {
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
}

func (m *Manager) setState(ctx context.Context, s types.ConnectionState) {
	if m.state != s {
		m.log.Debug(ctx, "channel state changed", "from", m.state, "to", s)
	}
	m.state = s
	metrics.RecordChannelState(m.identity.VehicleType, s.Gauge())
	m.publish()
}

func (m *Manager) publish() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status.State != m.state {
		m.status.ChangedAt = time.Now()
	}
	m.status.State = m.state
	m.status.IsTracking = m.tracking
	m.status.Attempts = m.attempts
}
