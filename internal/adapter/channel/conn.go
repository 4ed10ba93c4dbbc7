package channel

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
)

// Conn is one open websocket channel. Writes are serialized; Read must be called
// from a single goroutine.
type Conn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	mu        sync.Mutex
	open      atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

// NewConn wraps ws. A positive pingInterval starts a keepalive that closes the
// connection when a ping cannot be written.
func NewConn(ws *websocket.Conn, writeTimeout, pingInterval time.Duration) *Conn {
	c := &Conn{
		conn:         ws,
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
	}
	c.open.Store(true)

	if pingInterval > 0 {
		go c.keepalive(pingInterval)
	}
	return c
}

func (c *Conn) IsOpen() bool {
	return c.open.Load()
}

func (c *Conn) Read() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		wasOpen := c.open.Swap(false)
		if !wasOpen || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, fmt.Errorf("%w: %v", types.ErrChannelClosed, err)
		}
		return nil, fmt.Errorf("%w: read failed: %v", types.ErrNetwork, err)
	}
	return data, nil
}

func (c *Conn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.IsOpen() {
		return types.ErrChannelClosed
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return fmt.Errorf("%w: set write deadline: %v", types.ErrNetwork, err)
	}
	if err := c.conn.WriteJSON(v); err != nil {
		return fmt.Errorf("%w: write failed: %v", types.ErrNetwork, err)
	}
	return nil
}

// ping sends a websocket ping control frame.
func (c *Conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.IsOpen() {
		return types.ErrChannelClosed
	}
	if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(c.writeTimeout)); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

func (c *Conn) keepalive(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				// unblocks Read, which reports the failure
				c.conn.Close()
				return
			}
		}
	}
}

// Close sends a close frame and closes the socket. Safe to call repeatedly.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		c.open.Store(false)
		close(c.done)

		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(c.writeTimeout),
		)
		err = c.conn.Close()
	})
	return err
}
