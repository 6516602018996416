// Package docs registers the OpenAPI document served at /swagger.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "User Login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/controllers.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}}
                }
            }
        },
        "/dues/bills": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Dues"],
                "summary": "账单列表",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "账期 YYYY-MM", "name": "period", "in": "query"},
                    {"type": "string", "description": "unpaid 或 paid", "name": "status", "in": "query"},
                    {"type": "integer", "description": "户号ID", "name": "household_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}}
                }
            }
        },
        "/dues/bills/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Dues"],
                "summary": "账期账单汇总",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "账期 YYYY-MM", "name": "period", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}}
                }
            }
        },
        "/dues/runs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Dues"],
                "summary": "账单生成记录",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "账期 YYYY-MM", "name": "period", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}}
                }
            }
        },
        "/dues/bills:generate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Dues"],
                "summary": "生成月费账单",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/controllers.GenerateBillsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}}
                }
            }
        },
        "/ping": {
            "get": {
                "tags": ["Health"],
                "summary": "Ping",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}}
                }
            }
        }
    },
    "definitions": {
        "controllers.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 106000},
                "message": {"type": "string"},
                "error": {"type": "string"},
                "data": {}
            }
        },
        "controllers.GenerateBillsRequest": {
            "type": "object",
            "required": ["period"],
            "properties": {
                "period": {"type": "string", "example": "2024-03"}
            }
        },
        "controllers.LoginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string", "example": "rahasia123"},
                "username": {"type": "string", "example": "ketua_rw"}
            }
        },
        "controllers.SuccessResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 100000},
                "message": {"type": "string", "example": "成功"},
                "data": {}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Enter the token with the ` + "`" + `Bearer ` + "`" + ` prefix",
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
	Title:            "RW Portal HTTP Service API",
	Description:      "RW/RT neighborhood administration: households, residents, monthly dues (IPL) billing and cash ledger",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
