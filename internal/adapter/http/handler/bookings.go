package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/ride-tracker/pkg/logger/wrapper"
)

type BookingService interface {
	Snapshot() models.BookingSnapshot
	Refresh(ctx context.Context) (models.BookingSnapshot, error)
	UpdateStatus(ctx context.Context, bookingID int64, status types.BookingStatus) (string, error)
}

type Bookings struct {
	service BookingService
	l       logger.Logger
}

func NewBookings(service BookingService, l logger.Logger) *Bookings {
	return &Bookings{
		service: service,
		l:       l,
	}
}

// UpdateStatusRequest is the body of a booking status change.
type UpdateStatusRequest struct {
	Status string `json:"status" example:"accepted"`
}

func (r UpdateStatusRequest) validate() map[string]string {
	errs := make(map[string]string)
	switch {
	case r.Status == "":
		errs["status"] = "must be provided"
	case !types.BookingStatus(r.Status).Requestable():
		errs["status"] = types.ErrInvalidStatus.Error()
	}
	return errs
}

// GetBookings godoc
// @Summary      Assigned bookings
// @Description  Last known booking list with geocoded pickup/dropoff points and the fitted map viewport.
// @Tags         Bookings
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /bookings [get]
func (h *Bookings) GetBookings(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_bookings")

	if err := writeJSON(w, http.StatusOK, snapshotEnvelope(h.service.Snapshot()), nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Refresh godoc
// @Summary      Refresh bookings
// @Description  Refetches bookings, geocodes their addresses and recomputes the viewport.
// @Tags         Bookings
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      502  {object}  map[string]string
// @Router       /bookings/refresh [post]
func (h *Bookings) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionRefreshBookings)

	snap, err := h.service.Refresh(ctx)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to refresh bookings", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, snapshotEnvelope(snap), nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// UpdateStatus godoc
// @Summary      Accept or reject a booking
// @Description  Requests a status change; only "accepted" and "rejected" are allowed. The booking list is refreshed on success.
// @Tags         Bookings
// @Accept       json
// @Produce      json
// @Param        booking_id  path  int                  true  "Booking ID"
// @Param        request     body  UpdateStatusRequest  true  "New status"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]string
// @Failure      422  {object}  map[string]any
// @Failure      502  {object}  map[string]string
// @Router       /bookings/{booking_id}/status [post]
func (h *Bookings) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionUpdateStatus)

	bookingID, err := strconv.ParseInt(r.PathValue("booking_id"), 10, 64)
	if err != nil || bookingID <= 0 {
		h.l.Warn(ctx, "invalid booking id", "booking_id", r.PathValue("booking_id"))
		badRequestResponse(w, types.ErrInvalidBookingID.Error())
		return
	}
	ctx = wrap.WithBookingID(ctx, strconv.FormatInt(bookingID, 10))

	var req UpdateStatusRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Warn(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	if errs := req.validate(); len(errs) > 0 {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, errs)
		return
	}

	msg, err := h.service.UpdateStatus(ctx, bookingID, types.BookingStatus(req.Status))
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to update booking status", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"booking_id": bookingID,
		"status":     req.Status,
		"message":    msg,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

func snapshotEnvelope(snap models.BookingSnapshot) envelope {
	bookings := snap.Bookings
	if bookings == nil {
		bookings = []models.Booking{}
	}
	points := snap.Points
	if points == nil {
		points = []models.GeocodedPoint{}
	}

	env := envelope{
		"bookings": bookings,
		"points":   points,
		"viewport": snap.Viewport,
	}
	if !snap.RefreshedAt.IsZero() {
		env["refreshed_at"] = snap.RefreshedAt
	}
	return env
}
