// Package docs holds the swagger specification served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/games/{game_code}/start": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["games"],
                "summary": "Start a wager",
                "parameters": [
                    {"type": "string", "name": "game_code", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Pending game admitted"},
                    "400": {"description": "Invalid parameters"},
                    "409": {"description": "A game is already pending"}
                }
            }
        },
        "/games/{game_code}/refund": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["games"],
                "summary": "Reclaim a stale wager",
                "parameters": [
                    {"type": "string", "name": "game_code", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Stake refunded"},
                    "404": {"description": "No pending game"},
                    "409": {"description": "Refund window not elapsed"}
                }
            }
        },
        "/games/{game_code}/state": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["games"],
                "summary": "Read pending state",
                "parameters": [
                    {"type": "string", "name": "game_code", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "Pending game, if any"}}
            }
        },
        "/games/{game_code}/paytable": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["games"],
                "summary": "Read the game's payout table",
                "parameters": [
                    {"type": "string", "name": "game_code", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Outcome multipliers"},
                    "404": {"description": "Unknown game"}
                }
            }
        },
        "/oracle/fulfill": {
            "post": {
                "tags": ["oracle"],
                "summary": "Deliver randomness",
                "parameters": [
                    {"type": "string", "name": "X-Callback-Token", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "Settlement complete"},
                    "403": {"description": "Invalid callback token"},
                    "404": {"description": "Unknown request handle"},
                    "503": {"description": "Callback authentication not configured"}
                }
            }
        },
        "/rewards/balance": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["rewards"],
                "summary": "Read accrued rewards",
                "responses": {"200": {"description": "Accrued balance"}}
            }
        },
        "/rewards/claim": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["rewards"],
                "summary": "Claim accrued rewards",
                "responses": {"200": {"description": "Claim record"}}
            }
        },
        "/rewards/referrer": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["rewards"],
                "summary": "Assign a referrer once",
                "responses": {
                    "204": {"description": "Referrer assigned"},
                    "400": {"description": "Already assigned"}
                }
            }
        },
        "/rewards/leaderboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["rewards"],
                "summary": "List reward totals (unordered)",
                "responses": {"200": {"description": "Leaderboard entries"}}
            }
        },
        "/feed/updates": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["feed"],
                "summary": "Stream settled outcomes (SSE)",
                "responses": {"200": {"description": "Event stream"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Wager Engine API",
	Description:      "Wager lifecycle and settlement service for the installed games.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
