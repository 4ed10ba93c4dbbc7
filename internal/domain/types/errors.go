package types

import "errors"

var (
	// ErrAuthentication means credentials are missing, expired or rejected. Fatal, never retried.
	ErrAuthentication = errors.New("authentication failed")
	// ErrNetwork is a transport level failure: dial, read, write or an unreachable backend.
	ErrNetwork = errors.New("network failure")
	// ErrGeocoding is a failed forward or reverse lookup for a single address or position.
	ErrGeocoding = errors.New("geocoding failed")
	// ErrProtocol is an inbound frame that could not be decoded.
	ErrProtocol = errors.New("malformed frame")
	// ErrStatusUpdate is a rejected or failed booking status change.
	ErrStatusUpdate = errors.New("booking status update failed")
	// ErrReconnectExhausted is surfaced once when the channel gave up reconnecting.
	ErrReconnectExhausted = errors.New("reconnect attempts exhausted")

	ErrNotFound           = errors.New("requested item not found")
	ErrLocationNotFound   = errors.New("location not found")
	ErrNoPositionFix      = errors.New("no position fix available")
	ErrInvalidStatus      = errors.New("status must be accepted or rejected")
	ErrInvalidBookingID   = errors.New("invalid booking id")
	ErrMissingIdentity    = errors.New("driver id and vehicle type are required")
	ErrNoAssignment       = errors.New("no vehicle assigned: nothing to track")
	ErrUnexpectedResponse = errors.New("unexpected backend response")
	ErrChannelClosed      = errors.New("channel is not open")
)
