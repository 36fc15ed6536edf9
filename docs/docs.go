// Package docs holds the OpenAPI document for the job board API.
// Regenerate with: go generate ./cmd/server
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.1.0",
    "info": {
        "title": "{{.Title}}",
        "description": "Point purchases through VNPay and MoMo, payment history, promotions and notifications.",
        "version": "{{.Version}}"
    },
    "servers": [{"url": "/api/v1"}],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in",
                "requestBody": {
                    "required": true,
                    "content": {"application/json": {"schema": {"$ref": "#/components/schemas/identity.LoginInput"}}}
                },
                "responses": {
                    "200": {"description": "OK", "content": {"application/json": {"schema": {"allOf": [
                        {"$ref": "#/components/schemas/dto.Response"},
                        {"type": "object", "properties": {"data": {"$ref": "#/components/schemas/identity.LoginResult"}}}
                    ]}}}},
                    "400": {"$ref": "#/components/responses/Error"},
                    "401": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Log out",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/dto.Response"}}}},
                    "401": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/accounts/me": {
            "get": {
                "tags": ["auth"],
                "summary": "Current account",
                "description": "The caller's account with its point balance",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "content": {"application/json": {"schema": {"allOf": [
                        {"$ref": "#/components/schemas/dto.Response"},
                        {"type": "object", "properties": {"data": {"$ref": "#/components/schemas/identity.AccountResponse"}}}
                    ]}}}},
                    "401": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/payments": {
            "post": {
                "tags": ["payments"],
                "summary": "Buy points",
                "description": "Creates a pending payment and returns the gateway checkout URL. With promotion_id the promotion's price and points apply and amount is ignored.",
                "security": [{"BearerAuth": []}],
                "requestBody": {
                    "required": true,
                    "content": {"application/json": {"schema": {"$ref": "#/components/schemas/payment.CreatePaymentRequest"}}}
                },
                "responses": {
                    "201": {"description": "Created", "content": {"application/json": {"schema": {"allOf": [
                        {"$ref": "#/components/schemas/dto.Response"},
                        {"type": "object", "properties": {"data": {"$ref": "#/components/schemas/payment.CheckoutResponse"}}}
                    ]}}}},
                    "400": {"$ref": "#/components/responses/Error"},
                    "401": {"$ref": "#/components/responses/Error"},
                    "502": {"$ref": "#/components/responses/Error"}
                }
            },
            "get": {
                "tags": ["payments"],
                "summary": "List payments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/components/parameters/page"},
                    {"$ref": "#/components/parameters/page_size"},
                    {"name": "sort_by", "in": "query", "description": "created_at, updated_at, amount, points, status or paid_at", "schema": {"type": "string"}},
                    {"$ref": "#/components/parameters/sort_order"}
                ],
                "responses": {
                    "200": {"description": "OK", "content": {"application/json": {"schema": {"allOf": [
                        {"$ref": "#/components/schemas/dto.Response"},
                        {"type": "object", "properties": {
                            "data": {"type": "array", "items": {"$ref": "#/components/schemas/payment.PaymentResponse"}},
                            "meta": {"$ref": "#/components/schemas/dto.Meta"}
                        }}
                    ]}}}},
                    "400": {"$ref": "#/components/responses/Error"},
                    "401": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/payments/{order_code}": {
            "get": {
                "tags": ["payments"],
                "summary": "Get a payment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "order_code", "in": "path", "required": true, "description": "Order code", "schema": {"type": "string"}}
                ],
                "responses": {
                    "200": {"description": "OK", "content": {"application/json": {"schema": {"allOf": [
                        {"$ref": "#/components/schemas/dto.Response"},
                        {"type": "object", "properties": {"data": {"$ref": "#/components/schemas/payment.PaymentResponse"}}}
                    ]}}}},
                    "401": {"$ref": "#/components/responses/Error"},
                    "404": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/promotions": {
            "get": {
                "tags": ["payments"],
                "summary": "List active promotions",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "content": {"application/json": {"schema": {"allOf": [
                        {"$ref": "#/components/schemas/dto.Response"},
                        {"type": "object", "properties": {"data": {"type": "array", "items": {"$ref": "#/components/schemas/payment.PromotionResponse"}}}}
                    ]}}}},
                    "401": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["notifications"],
                "summary": "List notifications",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/components/parameters/page"},
                    {"$ref": "#/components/parameters/page_size"},
                    {"name": "sort_by", "in": "query", "description": "created_at or read_at", "schema": {"type": "string"}},
                    {"$ref": "#/components/parameters/sort_order"}
                ],
                "responses": {
                    "200": {"description": "OK", "content": {"application/json": {"schema": {"allOf": [
                        {"$ref": "#/components/schemas/dto.Response"},
                        {"type": "object", "properties": {
                            "data": {"type": "array", "items": {"$ref": "#/components/schemas/notification.NotificationResponse"}},
                            "meta": {"$ref": "#/components/schemas/dto.Meta"}
                        }}
                    ]}}}},
                    "401": {"$ref": "#/components/responses/Error"}
                }
            }
        }
    },
    "components": {
        "securitySchemes": {
            "BearerAuth": {
                "type": "apiKey",
                "in": "header",
                "name": "Authorization",
                "description": "Bearer token authentication. Format: \"Bearer {token}\""
            }
        },
        "parameters": {
            "page": {"name": "page", "in": "query", "description": "Page number", "schema": {"type": "integer", "minimum": 1}},
            "page_size": {"name": "page_size", "in": "query", "description": "Page size", "schema": {"type": "integer", "minimum": 1, "maximum": 100}},
            "sort_order": {"name": "sort_order", "in": "query", "description": "asc or desc", "schema": {"type": "string", "enum": ["asc", "desc"]}}
        },
        "responses": {
            "Error": {
                "description": "Error",
                "content": {"application/json": {"schema": {"allOf": [
                    {"$ref": "#/components/schemas/dto.Response"},
                    {"type": "object", "properties": {"error": {"$ref": "#/components/schemas/dto.ErrorInfo"}}}
                ]}}}
            }
        },
        "schemas": {
            "dto.Response": {
                "type": "object",
                "properties": {
                    "success": {"type": "boolean"},
                    "data": {},
                    "error": {"$ref": "#/components/schemas/dto.ErrorInfo"},
                    "meta": {"$ref": "#/components/schemas/dto.Meta"}
                }
            },
            "dto.ErrorInfo": {
                "type": "object",
                "properties": {
                    "code": {"type": "string"},
                    "message": {"type": "string"},
                    "request_id": {"type": "string"},
                    "details": {"type": "array", "items": {"$ref": "#/components/schemas/dto.ValidationDetail"}}
                }
            },
            "dto.ValidationDetail": {
                "type": "object",
                "properties": {"field": {"type": "string"}, "message": {"type": "string"}}
            },
            "dto.Meta": {
                "type": "object",
                "properties": {
                    "total": {"type": "integer"},
                    "page": {"type": "integer"},
                    "page_size": {"type": "integer"},
                    "total_pages": {"type": "integer"}
                }
            },
            "identity.LoginInput": {
                "type": "object",
                "required": ["email", "password"],
                "properties": {
                    "email": {"type": "string", "format": "email"},
                    "password": {"type": "string", "minLength": 6}
                }
            },
            "identity.LoginResult": {
                "type": "object",
                "properties": {
                    "access_token": {"type": "string"},
                    "token_type": {"type": "string"},
                    "expires_at": {"type": "string", "format": "date-time"},
                    "account": {"$ref": "#/components/schemas/identity.AccountResponse"}
                }
            },
            "identity.AccountResponse": {
                "type": "object",
                "properties": {
                    "id": {"type": "string", "format": "uuid"},
                    "email": {"type": "string"},
                    "name": {"type": "string"},
                    "role": {"type": "string", "enum": ["admin", "employer"]},
                    "points": {"type": "integer"},
                    "created_at": {"type": "string", "format": "date-time"}
                }
            },
            "payment.CreatePaymentRequest": {
                "type": "object",
                "required": ["method"],
                "properties": {
                    "amount": {"type": "integer", "description": "VND, ignored when promotion_id is set"},
                    "method": {"type": "string", "enum": ["vnpay", "momo"]},
                    "promotion_id": {"type": "string", "format": "uuid"}
                }
            },
            "payment.CheckoutResponse": {
                "type": "object",
                "properties": {
                    "order_code": {"type": "string"},
                    "method": {"type": "string"},
                    "amount": {"type": "integer"},
                    "points": {"type": "integer"},
                    "status": {"type": "string"},
                    "redirect_url": {"type": "string"},
                    "deeplink": {"type": "string"}
                }
            },
            "payment.PaymentResponse": {
                "type": "object",
                "properties": {
                    "id": {"type": "string", "format": "uuid"},
                    "order_code": {"type": "string"},
                    "method": {"type": "string"},
                    "amount": {"type": "integer"},
                    "points": {"type": "integer"},
                    "status": {"type": "string", "enum": ["pending", "success", "failed"]},
                    "gateway_tran_id": {"type": "string"},
                    "promotion_id": {"type": "string", "format": "uuid"},
                    "paid_at": {"type": "string", "format": "date-time"},
                    "created_at": {"type": "string", "format": "date-time"},
                    "updated_at": {"type": "string", "format": "date-time"}
                }
            },
            "payment.PromotionResponse": {
                "type": "object",
                "properties": {
                    "id": {"type": "string", "format": "uuid"},
                    "name": {"type": "string"},
                    "price": {"type": "integer"},
                    "points": {"type": "integer"}
                }
            },
            "notification.NotificationResponse": {
                "type": "object",
                "properties": {
                    "id": {"type": "string", "format": "uuid"},
                    "kind": {"type": "string"},
                    "title": {"type": "string"},
                    "body": {"type": "string"},
                    "reference": {"type": "string"},
                    "read": {"type": "boolean"},
                    "read_at": {"type": "string", "format": "date-time"},
                    "created_at": {"type": "string", "format": "date-time"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Title:            "Job Board Payments API",
	Description:      "Point purchases through VNPay and MoMo, payment history, promotions and notifications.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
