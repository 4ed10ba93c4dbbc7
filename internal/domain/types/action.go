package types

const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitReconnected       = "rabbitmq_reconnection_success"

	ActionExternalServiceFailed = "external_service_failed"

	ActionChannelConnect    = "channel_connect"
	ActionChannelOpen       = "channel_open"
	ActionChannelError      = "channel_error"
	ActionChannelClose      = "channel_close"
	ActionChannelReconnect  = "channel_reconnect"
	ActionChannelDisconnect = "channel_disconnect"
	ActionFrameReceived     = "frame_received"
	ActionPublishLocation   = "publish_location"

	ActionGeocodeForward = "geocode_forward"
	ActionGeocodeReverse = "geocode_reverse"

	ActionRefreshBookings = "refresh_bookings"
	ActionUpdateStatus    = "update_booking_status"
	ActionLoadProfile     = "load_driver_profile"
	ActionCheckCredential = "check_credentials"
	ActionAlert           = "alert"
)
