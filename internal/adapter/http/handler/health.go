package handler

import (
	"net/http"

	"github.com/Temutjin2k/ride-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/ride-tracker/pkg/logger/wrapper"
)

type Health struct {
	serviceName string
	driverID    string
	log         logger.Logger
}

func NewHealth(serviceName, driverID string, log logger.Logger) *Health {
	return &Health{
		serviceName: serviceName,
		driverID:    driverID,
		log:         log,
	}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Returns the health status of the tracker
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /health [get]
func (a *Health) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "health_check")

	response := envelope{
		"status": "available",
		"system_info": map[string]string{
			"service-name": a.serviceName,
			"driver-id":    a.driverID,
		},
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		a.log.Error(ctx, "healthcheck", err)
		return
	}
}
