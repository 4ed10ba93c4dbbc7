package handler

import (
	"net/http"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/ride-tracker/pkg/logger/wrapper"
)

type AlertService interface {
	Recent() []models.Alert
}

type Alerts struct {
	service AlertService
	l       logger.Logger
}

func NewAlerts(service AlertService, l logger.Logger) *Alerts {
	return &Alerts{service: service, l: l}
}

// GetAlerts godoc
// @Summary      Recent alerts
// @Description  Failures surfaced to the operator, oldest first.
// @Tags         Alerts
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /alerts [get]
func (h *Alerts) GetAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_alerts")

	alerts := h.service.Recent()
	if alerts == nil {
		alerts = []models.Alert{}
	}

	if err := writeJSON(w, http.StatusOK, envelope{"alerts": alerts}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
