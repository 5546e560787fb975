// Package docs registers the OpenAPI document of the navigation API with swag.
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
        "/navigate": {
            "post": {
                "description": "Resolves the start (or the session anchor) and the destination and returns the photo steps of the shortest route",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["navigation"],
                "summary": "Compute a route",
                "parameters": [
                    {
                        "description": "Route request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.NavigateRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.RouteResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.HTTPErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.HTTPErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errors.HTTPErrorResponse"}}
                }
            }
        },
        "/destinations": {
            "get": {
                "description": "Lists every room number and named place with its floor",
                "produces": ["application/json"],
                "tags": ["navigation"],
                "summary": "List destinations",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/recover": {
            "post": {
                "description": "Re-anchors the session at a landmark the user says they can see",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["recovery"],
                "summary": "Recover from a landmark",
                "parameters": [
                    {
                        "description": "Recovery request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.RecoverRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.RecoveryResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.HTTPErrorResponse"}}
                }
            }
        },
        "/recover/photo": {
            "post": {
                "description": "Re-anchors the session at the landmark shown in an uploaded photo",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["recovery"],
                "summary": "Recover from a photo",
                "parameters": [
                    {"type": "file", "description": "Photo of the surroundings", "name": "photo", "in": "formData", "required": true},
                    {"type": "string", "description": "Session id", "name": "session_id", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.RecoveryResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.HTTPErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errors.HTTPErrorResponse"}}
                }
            }
        },
        "/search": {
            "post": {
                "description": "Resolves free-form text to a node without routing",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["navigation"],
                "summary": "Resolve a location",
                "parameters": [
                    {
                        "description": "Search request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.SearchRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.HTTPErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Reports the loaded building and which AI features are available",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/sessions": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Start a session",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/sessions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Inspect a session",
                "parameters": [{"type": "string", "description": "Session id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.HTTPErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["sessions"],
                "summary": "End a session",
                "parameters": [{"type": "string", "description": "Session id", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        }
    },
    "definitions": {
        "dto.NavigateRequest": {
            "type": "object",
            "required": ["destination"],
            "properties": {
                "session_id": {"type": "string"},
                "start_location": {"type": "string", "maxLength": 200},
                "destination": {"type": "string", "maxLength": 200},
                "use_ai": {"type": "boolean"}
            }
        },
        "dto.RecoverRequest": {
            "type": "object",
            "required": ["landmark"],
            "properties": {
                "session_id": {"type": "string"},
                "landmark": {"type": "string", "maxLength": 200},
                "use_ai": {"type": "boolean"}
            }
        },
        "dto.SearchRequest": {
            "type": "object",
            "required": ["query"],
            "properties": {
                "query": {"type": "string", "maxLength": 200},
                "use_ai": {"type": "boolean"}
            }
        },
        "dto.PlaceResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "type": {"type": "string"},
                "floor": {"type": "integer"},
                "photo": {"type": "string"}
            }
        },
        "dto.RouteResponse": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "start": {"$ref": "#/definitions/dto.PlaceResponse"},
                "destination": {"$ref": "#/definitions/dto.PlaceResponse"},
                "start_matched_via": {"type": "string"},
                "destination_matched_via": {"type": "string"},
                "path": {"type": "array", "items": {"type": "string"}},
                "photos": {"type": "array", "items": {"type": "string"}},
                "ai_instructions": {"type": "string"},
                "arrived": {"type": "boolean"},
                "dfs_path": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dto.RecoveryResponse": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "new_start": {"$ref": "#/definitions/dto.PlaceResponse"},
                "matched_via": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "errors.HTTPErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {
                    "type": "object",
                    "properties": {
                        "type": {"type": "string"},
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {"type": "string"},
                        "resource": {"type": "string"},
                        "retryable": {"type": "boolean"}
                    }
                },
                "request_id": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Wayfinder Navigation API",
	Description:      "Photo-guided indoor navigation: routes between named places in a building, returned as a sequence of photos.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
