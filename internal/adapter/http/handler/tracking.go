package handler

import (
	"context"
	"iter"
	"net/http"
	"slices"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	"github.com/Temutjin2k/ride-tracker/internal/service/tracking"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/ride-tracker/pkg/logger/wrapper"
)

type (
	TrackingService interface {
		Status() tracking.Status
		Connect(ctx context.Context) error
		Disconnect(ctx context.Context) error
	}

	LocationHistory interface {
		All() iter.Seq[models.LocationSample]
		Latest() (models.LocationSample, bool)
		Cap() int
	}
)

// Tracking exposes the live session. A nil service means the driver has no vehicle assigned.
type Tracking struct {
	service TrackingService
	history LocationHistory
	l       logger.Logger
}

func NewTracking(service TrackingService, history LocationHistory, l logger.Logger) *Tracking {
	return &Tracking{
		service: service,
		history: history,
		l:       l,
	}
}

func (h *Tracking) assigned() bool {
	return h.service != nil && h.history != nil
}

// GetStatus godoc
// @Summary      Session status
// @Description  Connection state, tracking flag and the latest received location. Without a vehicle assignment the response reports that there is nothing to track.
// @Tags         Tracking
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /tracking [get]
func (h *Tracking) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_tracking_status")

	var response envelope
	if !h.assigned() {
		response = envelope{
			"assigned": false,
			"message":  types.ErrNoAssignment.Error(),
		}
	} else {
		response = envelope{
			"assigned": true,
			"session":  h.service.Status(),
		}
		if latest, ok := h.history.Latest(); ok {
			response["latest_location"] = latest
		}
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// GetLocations godoc
// @Summary      Received locations
// @Description  Buffered location updates received over the channel, oldest first.
// @Tags         Tracking
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      409  {object}  map[string]string
// @Router       /tracking/locations [get]
func (h *Tracking) GetLocations(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_tracking_locations")

	if !h.assigned() {
		errorResponse(w, GetCode(types.ErrNoAssignment), types.ErrNoAssignment.Error())
		return
	}

	locations := slices.Collect(h.history.All())
	if locations == nil {
		locations = []models.LocationSample{}
	}

	response := envelope{
		"locations": locations,
		"count":     len(locations),
		"capacity":  h.history.Cap(),
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Connect godoc
// @Summary      Start tracking
// @Description  Opens the location channel. Resets the reconnect counter when called after the session gave up.
// @Tags         Tracking
// @Produce      json
// @Success      202  {object}  map[string]any
// @Failure      409  {object}  map[string]string
// @Router       /tracking/connect [post]
func (h *Tracking) Connect(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, types.ActionChannelConnect, h.connect)
}

// Disconnect godoc
// @Summary      Stop tracking
// @Description  Closes the location channel and cancels any pending reconnect.
// @Tags         Tracking
// @Produce      json
// @Success      202  {object}  map[string]any
// @Failure      409  {object}  map[string]string
// @Router       /tracking/disconnect [post]
func (h *Tracking) Disconnect(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, types.ActionChannelDisconnect, h.disconnect)
}

func (h *Tracking) connect(ctx context.Context) error    { return h.service.Connect(ctx) }
func (h *Tracking) disconnect(ctx context.Context) error { return h.service.Disconnect(ctx) }

func (h *Tracking) control(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context) error) {
	ctx := wrap.WithAction(r.Context(), action)

	if !h.assigned() {
		h.l.Warn(ctx, "no vehicle assigned")
		errorResponse(w, GetCode(types.ErrNoAssignment), types.ErrNoAssignment.Error())
		return
	}

	if err := fn(ctx); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "tracking request failed", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusAccepted, envelope{"session": h.service.Status()}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
