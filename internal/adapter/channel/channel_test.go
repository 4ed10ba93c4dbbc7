package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	"github.com/Temutjin2k/ride-tracker/internal/service/tracking"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
)

var upgrader = websocket.Upgrader{}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestDialer_URL(t *testing.T) {
	d := NewDialer(Config{URLTemplate: "ws://host/ws/location/{vehicle_type}/"}, "")
	if got := d.URL("Car"); got != "ws://host/ws/location/car/" {
		t.Fatalf("got %s", got)
	}

	fixed := NewDialer(Config{URLTemplate: "ws://host/ws/location/{vehicle_type}/", FixedCategory: "bike"}, "")
	if got := fixed.URL("bus"); got != "ws://host/ws/location/bike/" {
		t.Fatalf("fixed category must win, got %s", got)
	}
}

func TestDialer_HandshakeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewDialer(Config{URLTemplate: wsURL(srv, "/ws/{vehicle_type}/")}, "bad").Dial(context.Background(), "car")
	if !errors.Is(err, types.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestDialer_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(srv, "/ws/{vehicle_type}/")
	srv.Close()

	_, err := NewDialer(Config{URLTemplate: url, HandshakeTimeout: time.Second}, "").Dial(context.Background(), "car")
	if !errors.Is(err, types.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestConn_CloseIsReportedAsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	}))
	defer srv.Close()

	conn, err := NewDialer(Config{URLTemplate: wsURL(srv, "/")}, "").Dial(context.Background(), "car")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Read(); !errors.Is(err, types.ErrChannelClosed) {
		t.Fatalf("expected ErrChannelClosed, got %v", err)
	}
	if conn.IsOpen() {
		t.Fatalf("conn must report closed")
	}
	if err := conn.WriteJSON(map[string]string{"a": "b"}); !errors.Is(err, types.ErrChannelClosed) {
		t.Fatalf("write on closed conn: got %v", err)
	}
}

// fake position source and geocoder for the end-to-end session
type staticPosition struct{}

func (staticPosition) Position(ctx context.Context) (models.Position, error) {
	return models.Position{Latitude: 43.2, Longitude: 76.9}, nil
}

type staticAddress struct{}

func (staticAddress) GetAddress(ctx context.Context, pos models.Position) (string, error) {
	return "Abay Ave", nil
}

type discardAlerts struct{}

func (discardAlerts) Report(ctx context.Context, kind types.AlertKind, err error) {}

func TestSession_EndToEnd(t *testing.T) {
	subscribed := make(chan models.SubscribeFrame, 1)
	reports := make(chan models.LocationReport, 8)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/location/car/" {
			http.NotFound(w, r)
			return
		}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()

		var sub models.SubscribeFrame
		if err := ws.ReadJSON(&sub); err != nil {
			return
		}
		subscribed <- sub

		ws.WriteJSON(map[string]any{"type": "connection_established", "message": "subscribed"})
		for i := 1; i <= 3; i++ {
			ws.WriteMessage(websocket.TextMessage, []byte(fmt.Sprintf(
				`{"type":"location_update","data":{"latitude":%d,"longitude":%d,"address":"stop %d","timestamp":"2025-01-01T00:00:0%dZ"}}`, i, i, i, i)))
		}

		for {
			var rep models.LocationReport
			if err := ws.ReadJSON(&rep); err != nil {
				return
			}
			select {
			case reports <- rep:
			default:
			}
		}
	}))
	defer srv.Close()

	log := logger.New(io.Discard, "test", logger.LevelError)
	identity := models.Identity{DriverID: "17", VehicleType: "car"}
	history := tracking.NewHistory(tracking.DefaultHistoryCapacity)

	pub := tracking.NewPublisher(identity, staticPosition{}, staticAddress{}, nil, tracking.PublisherConfig{Interval: 10 * time.Millisecond}, log)
	router := tracking.NewRouter(history, discardAlerts{}, log)
	dialer := NewDialer(Config{URLTemplate: wsURL(srv, "/ws/location/{vehicle_type}/")}, "")
	m := tracking.NewManager(identity, dialer, pub, router, discardAlerts{}, tracking.ManagerConfig{ReconnectDelay: 10 * time.Millisecond}, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	if err := m.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}

	select {
	case sub := <-subscribed:
		if sub != models.NewSubscribeFrame("17", "car") {
			t.Fatalf("unexpected subscribe frame %+v", sub)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("subscribe frame not received")
	}

	select {
	case rep := <-reports:
		want := models.LocationReport{ID: "17", VehicleType: "car", Latitude: 43.2, Longitude: 76.9, Address: "Abay Ave"}
		if rep != want {
			t.Fatalf("got report %+v want %+v", rep, want)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no location report received")
	}

	deadline := time.Now().Add(3 * time.Second)
	for history.Len() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if history.Len() != 3 {
		t.Fatalf("expected 3 buffered samples, got %d", history.Len())
	}
	latest, _ := history.Latest()
	if latest.Latitude != 3 || latest.Address != "stop 3" {
		t.Fatalf("latest must equal the third update, got %+v", latest)
	}
	if m.State() != types.StateConnected || !m.IsTracking() {
		t.Fatalf("unexpected status %+v", m.Status())
	}
}
