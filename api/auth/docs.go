// Package auth registers the OpenAPI document for the authentication
// service, served by the swagger UI mounted under /swagger/.
package auth

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "JWT access token. Format: \"Bearer {token}\"."
        }
    },
    "paths": {
        "/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in with username and password",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "username", "in": "formData", "type": "string", "required": true},
                    {"name": "password", "in": "formData", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "access_token, refresh_token, token_type, expires_in"},
                    "400": {"description": "bad_credentials or invalid_request"},
                    "429": {"description": "rate_limit_exceeded"}
                }
            }
        },
        "/v1/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange a refresh token for a new access token",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "access_token, token_type, expires_in"},
                    "401": {"description": "invalid_token"}
                }
            }
        },
        "/v1/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke the current access and refresh tokens",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "tokens revoked"},
                    "401": {"description": "invalid_token"}
                }
            }
        },
        "/v1/auth/logout-others": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke every session except the current one",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "other sessions revoked"},
                    "401": {"description": "invalid_token"}
                }
            }
        },
        "/v1/auth/logout-all": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke every session, the current one included",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "all sessions revoked"},
                    "401": {"description": "invalid_token"}
                }
            }
        },
        "/v1/auth/change-password": {
            "post": {
                "tags": ["Auth"],
                "summary": "Change the password and revoke every session",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/x-www-form-urlencoded"],
                "parameters": [
                    {"name": "current_password", "in": "formData", "type": "string", "required": true},
                    {"name": "new_password", "in": "formData", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "password changed, all sessions revoked"},
                    "400": {"description": "bad_credentials or invalid_request"},
                    "401": {"description": "invalid_token"}
                }
            }
        },
        "/v1/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Return the authenticated user",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "id, username, permissions"},
                    "401": {"description": "invalid_token"}
                }
            }
        },
        "/livez": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness probe",
                "produces": ["application/json"],
                "responses": {"200": {"description": "status, uptime, version"}}
            }
        },
        "/readyz": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness probe",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "status, uptime, version, checks"},
                    "503": {"description": "a dependency is down"}
                }
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Storefront Authentication Service API",
	Description:      "Token lifecycle and revocation service: JWT access/refresh token pairs, refresh rotation, per-token and per-subject revocation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
