package docs

// @title           Ride Tracker API
// @version         1.0
// @description     Local status API of the driver-side tracker: live location session, buffered location updates, assigned bookings with their map viewport, and surfaced alerts.

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3010
// @BasePath  /
