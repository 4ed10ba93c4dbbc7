package wrap

import (
	"context"
)

type (
	// LogCtx holds contextual information for logging
	LogCtx struct {
		Action      string
		DriverID    string
		VehicleType string
		BookingID   string
		RequestID   string
	}

	// logCtxKeyStruct is an unexported type for context keys defined in this package.
	logCtxKeyStruct struct{}
)

// LogCtxKey is the key for log context values
var LogCtxKey = &logCtxKeyStruct{}

func fromCtx(ctx context.Context) LogCtx {
	if lc, ok := ctx.Value(LogCtxKey).(LogCtx); ok {
		return lc
	}
	return LogCtx{}
}

// WithLogCtx returns a new context with the provided LogCtx merged over the existing one.
func WithLogCtx(ctx context.Context, newLc LogCtx) context.Context {
	lc := fromCtx(ctx)
	if newLc.Action == "" {
		newLc.Action = lc.Action
	}
	if newLc.DriverID == "" {
		newLc.DriverID = lc.DriverID
	}
	if newLc.VehicleType == "" {
		newLc.VehicleType = lc.VehicleType
	}
	if newLc.BookingID == "" {
		newLc.BookingID = lc.BookingID
	}
	if newLc.RequestID == "" {
		newLc.RequestID = lc.RequestID
	}
	return context.WithValue(ctx, LogCtxKey, newLc)
}

// WithDriverID adds or updates the DriverID in the LogCtx within the context
func WithDriverID(ctx context.Context, driverID string) context.Context {
	lc := fromCtx(ctx)
	lc.DriverID = driverID
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithVehicleType adds or updates the VehicleType in the LogCtx within the context
func WithVehicleType(ctx context.Context, vehicleType string) context.Context {
	lc := fromCtx(ctx)
	lc.VehicleType = vehicleType
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithBookingID adds or updates the BookingID in the LogCtx within the context
func WithBookingID(ctx context.Context, bookingID string) context.Context {
	lc := fromCtx(ctx)
	lc.BookingID = bookingID
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithRequestID adds or updates the RequestID in the LogCtx within the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	lc := fromCtx(ctx)
	lc.RequestID = requestID
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithAction adds or updates the Action in the LogCtx within the context
func WithAction(ctx context.Context, action string) context.Context {
	lc := fromCtx(ctx)
	lc.Action = action
	return context.WithValue(ctx, LogCtxKey, lc)
}

// GetRequestID returns request id stored in the context, or empty string.
func GetRequestID(ctx context.Context) string {
	return fromCtx(ctx).RequestID
}
