// Package docs holds the OpenAPI document served at /api/docs/doc.json
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.0.3",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "servers": [
        {"url": "{{.BasePath}}"}
    ],
    "paths": {
        "/visitors/check": {
            "post": {
                "tags": ["visitors"],
                "summary": "Check the lifetime usage limit for a visitor",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/visitors/use": {
            "post": {
                "tags": ["visitors"],
                "summary": "Record a tool use against a visitor ledger",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/visitors/convert": {
            "post": {
                "tags": ["visitors"],
                "summary": "Attribute a signup back to a visitor ledger",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/visitors/summary": {
            "post": {
                "tags": ["visitors"],
                "summary": "Usage summary for a visitor key",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/events/track": {
            "post": {
                "tags": ["events"],
                "summary": "Append an operation event",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/events/screen-time": {
            "post": {
                "tags": ["events"],
                "summary": "Patch screen time onto the latest session event",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/events/session-count": {
            "post": {
                "tags": ["events"],
                "summary": "Count today's events for a session",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/analytics/funnel": {
            "post": {
                "tags": ["analytics"],
                "summary": "Conversion funnel for a day window",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/analytics/tools": {
            "post": {
                "tags": ["analytics"],
                "summary": "Popular tools for a day window",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/analytics/devices": {
            "post": {
                "tags": ["analytics"],
                "summary": "Device distribution for a day window",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/analytics/active": {
            "post": {
                "tags": ["analytics"],
                "summary": "Most active visitors for a day window",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/analytics/daily": {
            "post": {
                "tags": ["analytics"],
                "summary": "Daily funnel trend for a day window",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/analytics/usage": {
            "post": {
                "tags": ["analytics"],
                "summary": "Per-day per-tool usage stats",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/analytics/cleanup": {
            "post": {
                "tags": ["analytics"],
                "summary": "Delete unconverted ledgers past retention",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Toolgate API",
	Description:      "Anonymous visitor usage limits, conversion attribution, and analytics",
	InfoInstanceName: "api",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
