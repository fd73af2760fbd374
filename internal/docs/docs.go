// Package docs registers the OpenAPI document of verifier-server with swag.
//
// The document is served at /docs/swagger.json. Regenerate it from the handler
// annotations with: swag init -g cmd/verifier-server/main.go -o internal/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "Apache 2.0"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/ui/presentations": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Verifier"],
                "summary": "Initiate a presentation transaction",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/oid4vp.InitTransactionTO"}}
                ],
                "responses": {
                    "200": {"description": "Authorization request for the wallet", "schema": {"$ref": "#/definitions/oid4vp.JwtSecuredAuthorizationRequestTO"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Verifier misconfiguration", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/ui/presentations/{transactionId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Verifier"],
                "summary": "Get the wallet response of a submitted presentation",
                "parameters": [
                    {"in": "path", "name": "transactionId", "type": "string", "required": true},
                    {"in": "query", "name": "response_code", "type": "string", "required": false}
                ],
                "responses": {
                    "200": {"description": "Wallet response", "schema": {"$ref": "#/definitions/oid4vp.WalletResponseTO"}},
                    "400": {"description": "Presentation not in a state that allows this", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Unknown transaction", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/wallet/request.jwt/{requestId}": {
            "get": {
                "produces": ["application/oauth-authz-req+jwt"],
                "tags": ["Wallet"],
                "summary": "Get the signed request object",
                "parameters": [{"in": "path", "name": "requestId", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Signed request object", "schema": {"type": "string"}},
                    "400": {"description": "Request object already retrieved", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Unknown request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/wallet/pd/{requestId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Wallet"],
                "summary": "Get the presentation definition of a request",
                "parameters": [{"in": "path", "name": "requestId", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Presentation definition", "schema": {"type": "object"}},
                    "400": {"description": "Invalid state", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Unknown request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/wallet/jarm/{requestId}/jwks.json": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Wallet"],
                "summary": "Get the JARM encryption key of a request",
                "parameters": [{"in": "path", "name": "requestId", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "JWK set", "schema": {"$ref": "#/definitions/handlers.JWKSResponse"}},
                    "400": {"description": "Invalid state", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Unknown request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/wallet/direct_post": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["Wallet"],
                "summary": "Post the wallet's authorization response",
                "parameters": [
                    {"in": "formData", "name": "state", "type": "string", "required": true},
                    {"in": "formData", "name": "id_token", "type": "string"},
                    {"in": "formData", "name": "vp_token", "type": "string"},
                    {"in": "formData", "name": "presentation_submission", "type": "string"},
                    {"in": "formData", "name": "error", "type": "string"},
                    {"in": "formData", "name": "error_description", "type": "string"},
                    {"in": "formData", "name": "response", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Response accepted", "schema": {"$ref": "#/definitions/oid4vp.WalletResponseAcceptedTO"}},
                    "400": {"description": "Response rejected", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Unknown request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/.well-known/jwks.json": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Common"],
                "summary": "Get the request object signing key",
                "responses": {"200": {"description": "JWK set", "schema": {"$ref": "#/definitions/handlers.JWKSResponse"}}}
            }
        },
        "/health/live": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["Common"],
                "summary": "Health (liveness) Check",
                "responses": {"200": {"description": "OK", "schema": {"type": "string"}}}
            }
        },
        "/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Common"],
                "summary": "Readiness Check",
                "responses": {
                    "200": {"description": "status ready", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "status not ready", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/version": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Common"],
                "summary": "Get version information",
                "responses": {"200": {"description": "Version information", "schema": {"$ref": "#/definitions/handlers.VersionResponse"}}}
            }
        }
    },
    "definitions": {
        "oid4vp.InitTransactionTO": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "example": "vp_token"},
                "id_token_type": {"type": "string", "example": "subject_signed_id_token"},
                "presentation_definition": {"type": "object"},
                "nonce": {"type": "string", "example": "n-0S6_WzA2Mj"},
                "response_mode": {"type": "string", "example": "direct_post.jwt"},
                "jar_mode": {"type": "string", "example": "by_reference"},
                "presentation_definition_mode": {"type": "string", "example": "by_value"},
                "wallet_response_redirect_uri_template": {"type": "string", "example": "https://verifier-ui.example.com/done#response_code={RESPONSE_CODE}"}
            }
        },
        "oid4vp.JwtSecuredAuthorizationRequestTO": {
            "type": "object",
            "properties": {
                "transaction_id": {"type": "string"},
                "client_id": {"type": "string"},
                "request": {"type": "string"},
                "request_uri": {"type": "string"}
            }
        },
        "oid4vp.WalletResponseTO": {
            "type": "object",
            "properties": {
                "id_token": {"type": "string"},
                "vp_token": {"type": "string"},
                "presentation_submission": {"type": "object"},
                "error": {"type": "string"},
                "error_description": {"type": "string"}
            }
        },
        "oid4vp.WalletResponseAcceptedTO": {
            "type": "object",
            "properties": {"redirect_uri": {"type": "string"}}
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "error_description": {"type": "string"},
                "statusCode": {"type": "integer"},
                "requestUri": {"type": "string"},
                "httpMethod": {"type": "string"},
                "providerCorrelationReference": {"type": "string"},
                "errorDateTime": {"type": "string"}
            }
        },
        "handlers.JWKSResponse": {
            "type": "object",
            "properties": {"keys": {"type": "array", "items": {"type": "object"}}}
        },
        "handlers.VersionResponse": {
            "type": "object",
            "properties": {
                "version": {"type": "string"},
                "build_time": {"type": "string"},
                "service": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "verifier-server",
	Description:      "OpenID for Verifiable Presentations verifier endpoint",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
