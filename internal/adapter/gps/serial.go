package gps

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/ride-tracker/pkg/logger/wrapper"
)

const (
	actionReadGPS = "read_gps"
	idleBackoff   = 200 * time.Millisecond
)

type SerialConfig struct {
	Device      string
	Baud        int
	ReadTimeout time.Duration
	// MaxAge bounds how old the last fix may be; 0 accepts any age.
	MaxAge time.Duration
}

// SerialSource keeps the latest fix read from an NMEA receiver.
type SerialSource struct {
	port   io.ReadCloser
	maxAge time.Duration
	log    logger.Logger

	mu      sync.RWMutex
	last    models.Position
	lastAt  time.Time
	hasFix  bool
	done    chan struct{}
	closeOnce sync.Once
}

// OpenSerial opens the receiver and starts reading sentences in the background.
func OpenSerial(cfg SerialConfig, log logger.Logger) (*SerialSource, error) {
	const op = "gps.OpenSerial"

	port, err := serial.Open(cfg.Device, &serial.Mode{BaudRate: cfg.Baud})
	if err != nil {
		return nil, fmt.Errorf("%s: open %s: %w", op, cfg.Device, err)
	}
	if cfg.ReadTimeout > 0 {
		if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
			port.Close()
			return nil, fmt.Errorf("%s: set read timeout: %w", op, err)
		}
	}
	return newSource(port, cfg.MaxAge, log), nil
}

func newSource(port io.ReadCloser, maxAge time.Duration, log logger.Logger) *SerialSource {
	s := &SerialSource{
		port:   port,
		maxAge: maxAge,
		log:    log,
		done:   make(chan struct{}),
	}
	go s.read()
	return s
}

func (s *SerialSource) read() {
	ctx := wrap.WithAction(context.Background(), actionReadGPS)
	r := bufio.NewReader(s.port)

	for {
		select {
		case <-s.done:
			return
		default:
		}

		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			// an idle port with a read timeout reports EOF
			if !errors.Is(err, io.EOF) {
				s.log.Debug(ctx, "gps read failed", "error", err.Error())
			}
			select {
			case <-s.done:
				return
			case <-time.After(idleBackoff):
			}
			continue
		}

		pos, err := ParseSentence(line)
		if err != nil {
			continue
		}

		s.mu.Lock()
		s.last = pos
		s.lastAt = time.Now()
		s.hasFix = true
		s.mu.Unlock()
	}
}

// Position returns the latest fix or types.ErrNoPositionFix.
func (s *SerialSource) Position(ctx context.Context) (models.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasFix {
		return models.Position{}, types.ErrNoPositionFix
	}
	if s.maxAge > 0 && time.Since(s.lastAt) > s.maxAge {
		return models.Position{}, fmt.Errorf("%w: last fix is %s old", types.ErrNoPositionFix, time.Since(s.lastAt).Round(time.Second))
	}
	return s.last, nil
}

func (s *SerialSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.port.Close()
	})
	return err
}

// StaticSource always reports the same position.
type StaticSource struct {
	pos models.Position
}

func NewStatic(latitude, longitude float64) *StaticSource {
	return &StaticSource{pos: models.Position{Latitude: latitude, Longitude: longitude}}
}

func (s *StaticSource) Position(ctx context.Context) (models.Position, error) {
	return s.pos, nil
}
