package models

import (
	"time"

	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
)

// Alert is a failure surfaced to the operator.
type Alert struct {
	Kind    types.AlertKind `json:"kind"`
	Message string          `json:"message"`
	At      time.Time       `json:"at"`
}
