package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `
Ride tracker: streams the driver's live location and manages assigned bookings.

Usage:
  tracker [--config-path <file>]
  tracker --help

Options:
  --help                 Show this screen.
  --config-path <file>   Path to the YAML config file (default: config.yaml).

Every key can be overridden by an environment variable, e.g.
  DRIVER_ID, DRIVER_ACCESS_TOKEN, BACKEND_BASE_URL, CHANNEL_URL_TEMPLATE,
  LOCATIONIQ_API_KEY, GPS_DEVICE, RABBITMQ_ENABLED, HTTP_PORT, LOG_LEVEL.
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}
