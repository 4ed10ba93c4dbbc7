// Package docs registers the OpenAPI description of the tracker status API.
package docs

import "github.com/swaggo/swag"

// InstanceName is the swag registry key served under /swagger/.
const InstanceName = "tracker"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "url": "http://www.swagger.io/support",
            "email": "support@swagger.io"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Returns the health status of the tracker",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}}
            }
        },
        "/tracking": {
            "get": {
                "description": "Connection state, tracking flag and the latest received location. Without a vehicle assignment the response reports that there is nothing to track.",
                "produces": ["application/json"],
                "tags": ["Tracking"],
                "summary": "Session status",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}}
            }
        },
        "/tracking/locations": {
            "get": {
                "description": "Buffered location updates received over the channel, oldest first.",
                "produces": ["application/json"],
                "tags": ["Tracking"],
                "summary": "Received locations",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/tracking/connect": {
            "post": {
                "description": "Opens the location channel. Resets the reconnect counter when called after the session gave up.",
                "produces": ["application/json"],
                "tags": ["Tracking"],
                "summary": "Start tracking",
                "responses": {
                    "202": {"description": "Accepted", "schema": {"type": "object", "additionalProperties": true}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/tracking/disconnect": {
            "post": {
                "description": "Closes the location channel and cancels any pending reconnect.",
                "produces": ["application/json"],
                "tags": ["Tracking"],
                "summary": "Stop tracking",
                "responses": {
                    "202": {"description": "Accepted", "schema": {"type": "object", "additionalProperties": true}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/bookings": {
            "get": {
                "description": "Last known booking list with geocoded pickup/dropoff points and the fitted map viewport.",
                "produces": ["application/json"],
                "tags": ["Bookings"],
                "summary": "Assigned bookings",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}}
            }
        },
        "/bookings/refresh": {
            "post": {
                "description": "Refetches bookings, geocodes their addresses and recomputes the viewport.",
                "produces": ["application/json"],
                "tags": ["Bookings"],
                "summary": "Refresh bookings",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/bookings/{booking_id}/status": {
            "post": {
                "description": "Requests a status change; only \"accepted\" and \"rejected\" are allowed. The booking list is refreshed on success.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Bookings"],
                "summary": "Accept or reject a booking",
                "parameters": [
                    {"type": "integer", "description": "Booking ID", "name": "booking_id", "in": "path", "required": true},
                    {"description": "New status", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "422": {"description": "Unprocessable Entity", "schema": {"type": "object", "additionalProperties": true}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/alerts": {
            "get": {
                "description": "Failures surfaced to the operator, oldest first.",
                "produces": ["application/json"],
                "tags": ["Alerts"],
                "summary": "Recent alerts",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}}
            }
        }
    },
    "definitions": {
        "handler.UpdateStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "accepted"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3010",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Ride Tracker API",
	Description:      "Local status API of the driver-side tracker: live location session, buffered location updates, assigned bookings with their map viewport, and surfaced alerts.",
	InfoInstanceName: InstanceName,
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
