package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/Temutjin2k/ride-tracker/internal/adapter/http/middleware"
	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	"github.com/Temutjin2k/ride-tracker/internal/service/tracking"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
)

type fakeTracking struct {
	status      tracking.Status
	connects    int
	disconnects int
	err         error
}

func (f *fakeTracking) Status() tracking.Status { return f.status }

func (f *fakeTracking) Connect(ctx context.Context) error {
	f.connects++
	if f.err == nil {
		f.status.State = types.StateConnecting
	}
	return f.err
}

func (f *fakeTracking) Disconnect(ctx context.Context) error {
	f.disconnects++
	f.status.State = types.StateDisconnected
	return f.err
}

type fakeHistory struct {
	samples []models.LocationSample
}

func (h *fakeHistory) All() iter.Seq[models.LocationSample] { return slices.Values(h.samples) }
func (h *fakeHistory) Cap() int                             { return 50 }

func (h *fakeHistory) Latest() (models.LocationSample, bool) {
	if len(h.samples) == 0 {
		return models.LocationSample{}, false
	}
	return h.samples[len(h.samples)-1], true
}

type statusCall struct {
	id     int64
	status types.BookingStatus
}

type fakeBookings struct {
	snap       models.BookingSnapshot
	refreshErr error
	updateErr  error
	calls      []statusCall
}

func (f *fakeBookings) Snapshot() models.BookingSnapshot { return f.snap }

func (f *fakeBookings) Refresh(ctx context.Context) (models.BookingSnapshot, error) {
	return f.snap, f.refreshErr
}

func (f *fakeBookings) UpdateStatus(ctx context.Context, id int64, status types.BookingStatus) (string, error) {
	f.calls = append(f.calls, statusCall{id, status})
	if f.updateErr != nil {
		return "", f.updateErr
	}
	return "Status updated", nil
}

type fakeAlerts struct{ items []models.Alert }

func (f *fakeAlerts) Recent() []models.Alert { return f.items }

type fixture struct {
	api      *API
	tracking *fakeTracking
	history  *fakeHistory
	bookings *fakeBookings
	alerts   *fakeAlerts
}

func newFixture(t *testing.T, assigned bool) *fixture {
	t.Helper()

	f := &fixture{
		tracking: &fakeTracking{status: tracking.Status{State: types.StateDisconnected, DriverID: "17", VehicleType: "car"}},
		history:  &fakeHistory{},
		bookings: &fakeBookings{},
		alerts:   &fakeAlerts{},
	}

	svc := Services{DriverID: "17", Bookings: f.bookings, Alerts: f.alerts}
	if assigned {
		svc.Tracking = f.tracking
		svc.History = f.history
	}

	api, err := New("0", svc, logger.New(io.Discard, "test", logger.LevelError))
	if err != nil {
		t.Fatalf("new api: %v", err)
	}
	f.api = api
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	f.api.Handler().ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s %s: %v\n%s", method, path, err, rec.Body.String())
		}
	}
	return rec, out
}

func TestNew_RequiresServices(t *testing.T) {
	if _, err := New("0", Services{}, logger.New(io.Discard, "test", logger.LevelError)); err == nil {
		t.Fatalf("expected error without services")
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t, true)

	rec, body := f.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || body["status"] != "available" {
		t.Fatalf("got %d %v", rec.Code, body)
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Fatalf("expected a generated request id header")
	}
}

func TestRequestID_Propagated(t *testing.T) {
	f := newFixture(t, true)

	const id = "0b6f8a2e-1f9e-4c55-9d0c-3e7a4d2a9b11"
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, id)
	rec := httptest.NewRecorder()
	f.api.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get(middleware.RequestIDHeader); got != id {
		t.Fatalf("expected request id %s to be echoed, got %q", id, got)
	}
}

func TestTracking_Status(t *testing.T) {
	f := newFixture(t, true)
	f.history.samples = []models.LocationSample{
		{Latitude: 1, Longitude: 1, Address: "a", Timestamp: time.Unix(1, 0).UTC()},
		{Latitude: 2, Longitude: 2, Address: "b", Timestamp: time.Unix(2, 0).UTC()},
	}

	rec, body := f.do(t, http.MethodGet, "/tracking", "")
	if rec.Code != http.StatusOK || body["assigned"] != true {
		t.Fatalf("got %d %v", rec.Code, body)
	}
	latest, _ := body["latest_location"].(map[string]any)
	if latest["address"] != "b" {
		t.Fatalf("expected latest location b, got %v", body["latest_location"])
	}

	rec, body = f.do(t, http.MethodGet, "/tracking/locations", "")
	if rec.Code != http.StatusOK || body["count"] != float64(2) {
		t.Fatalf("got %d %v", rec.Code, body)
	}
}

func TestTracking_NoAssignment(t *testing.T) {
	f := newFixture(t, false)

	rec, body := f.do(t, http.MethodGet, "/tracking", "")
	if rec.Code != http.StatusOK || body["assigned"] != false {
		t.Fatalf("no assignment is not an error: got %d %v", rec.Code, body)
	}

	for _, path := range []string{"/tracking/connect", "/tracking/disconnect"} {
		rec, _ := f.do(t, http.MethodPost, path, "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("%s: expected 409, got %d", path, rec.Code)
		}
	}
	if rec, _ := f.do(t, http.MethodGet, "/tracking/locations", ""); rec.Code != http.StatusConflict {
		t.Fatalf("locations: expected 409, got %d", rec.Code)
	}
}

func TestTracking_ConnectDisconnect(t *testing.T) {
	f := newFixture(t, true)

	rec, _ := f.do(t, http.MethodPost, "/tracking/connect", "")
	if rec.Code != http.StatusAccepted || f.tracking.connects != 1 {
		t.Fatalf("connect: got %d, calls %d", rec.Code, f.tracking.connects)
	}

	rec, _ = f.do(t, http.MethodPost, "/tracking/disconnect", "")
	if rec.Code != http.StatusAccepted || f.tracking.disconnects != 1 {
		t.Fatalf("disconnect: got %d, calls %d", rec.Code, f.tracking.disconnects)
	}

	f.tracking.err = tracking.ErrManagerStopped
	if rec, _ := f.do(t, http.MethodPost, "/tracking/connect", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("stopped manager: expected 503, got %d", rec.Code)
	}
}

func TestBookings_Get(t *testing.T) {
	f := newFixture(t, true)
	f.bookings.snap = models.BookingSnapshot{
		Bookings: []models.Booking{{ID: 5, Status: types.BookingPending, FromAddress: "A", ToAddress: "B"}},
		Points: []models.GeocodedPoint{
			{ID: "from_5", BookingID: 5, Role: types.RolePickup, Latitude: 1, Longitude: 1},
		},
		Viewport: &models.MapViewport{CenterLatitude: 1, CenterLongitude: 1, LatitudeSpan: 0.1, LongitudeSpan: 0.1},
	}

	rec, body := f.do(t, http.MethodGet, "/bookings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}
	if bookings, _ := body["bookings"].([]any); len(bookings) != 1 {
		t.Fatalf("expected one booking, got %v", body["bookings"])
	}
	if body["viewport"] == nil {
		t.Fatalf("expected viewport")
	}
}

func TestBookings_EmptyListIsArray(t *testing.T) {
	f := newFixture(t, true)

	rec, _ := f.do(t, http.MethodGet, "/bookings", "")
	if !strings.Contains(rec.Body.String(), `"bookings": []`) {
		t.Fatalf("expected empty array, got %s", rec.Body.String())
	}
}

func TestBookings_RefreshFailure(t *testing.T) {
	f := newFixture(t, true)
	f.bookings.refreshErr = fmt.Errorf("refresh: %w", types.ErrNetwork)

	if rec, _ := f.do(t, http.MethodPost, "/bookings/refresh", ""); rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestBookings_UpdateStatus(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		body      string
		updateErr error
		wantCode  int
		wantCalls int
	}{
		{name: "accepted", path: "/bookings/5/status", body: `{"status":"accepted"}`, wantCode: http.StatusOK, wantCalls: 1},
		{name: "rejected", path: "/bookings/5/status", body: `{"status":"rejected"}`, wantCode: http.StatusOK, wantCalls: 1},
		{name: "not requestable", path: "/bookings/5/status", body: `{"status":"completed"}`, wantCode: http.StatusUnprocessableEntity},
		{name: "missing status", path: "/bookings/5/status", body: `{}`, wantCode: http.StatusUnprocessableEntity},
		{name: "unknown field", path: "/bookings/5/status", body: `{"status":"accepted","x":1}`, wantCode: http.StatusBadRequest},
		{name: "bad id", path: "/bookings/abc/status", body: `{"status":"accepted"}`, wantCode: http.StatusBadRequest},
		{name: "negative id", path: "/bookings/-3/status", body: `{"status":"accepted"}`, wantCode: http.StatusBadRequest},
		{
			name: "server rejects", path: "/bookings/5/status", body: `{"status":"accepted"}`,
			updateErr: fmt.Errorf("%w: %w", types.ErrStatusUpdate, errors.New("booking already taken")),
			wantCode:  http.StatusBadGateway, wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			f.bookings.updateErr = tt.updateErr

			rec, body := f.do(t, http.MethodPost, tt.path, tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %v", tt.wantCode, rec.Code, body)
			}
			if len(f.bookings.calls) != tt.wantCalls {
				t.Fatalf("expected %d service calls, got %d", tt.wantCalls, len(f.bookings.calls))
			}
			if tt.wantCalls > 0 && f.bookings.calls[0].id != 5 {
				t.Fatalf("unexpected booking id %d", f.bookings.calls[0].id)
			}
		})
	}
}

func TestAlerts(t *testing.T) {
	f := newFixture(t, true)
	f.alerts.items = []models.Alert{{Kind: types.AlertNetwork, Message: "reconnect attempts exhausted", At: time.Now()}}

	rec, body := f.do(t, http.MethodGet, "/alerts", "")
	alerts, _ := body["alerts"].([]any)
	if rec.Code != http.StatusOK || len(alerts) != 1 {
		t.Fatalf("got %d %v", rec.Code, body)
	}
}

func TestRecover(t *testing.T) {
	m := middleware.NewMiddleware(logger.New(io.Discard, "test", logger.LevelError))
	h := m.Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
