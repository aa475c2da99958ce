// Package swagger registers the OpenAPI document served under /swagger.
package swagger

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
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "in": "header", "name": "X-API-Key"}
    },
    "security": [{"ApiKeyAuth": []}],
    "paths": {
        "/catalog": {
            "get": {
                "tags": ["catalog"],
                "summary": "Get Catalog",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Products", "schema": {"type": "array", "items": {"$ref": "#/definitions/entitlement.ProductDescriptor"}}},
                    "404": {"description": "Catalog not published", "schema": {"$ref": "#/definitions/Error"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/catalog/history": {
            "get": {
                "tags": ["catalog"],
                "summary": "Get Catalog History",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Revisions", "schema": {"type": "array", "items": {"$ref": "#/definitions/catalog.Revision"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/entitlements": {
            "get": {
                "tags": ["entitlements"],
                "summary": "Get Entitlements",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Entitlement state", "schema": {"$ref": "#/definitions/entitlements.State"}}
                }
            }
        },
        "/entitlements/owned/{id}": {
            "get": {
                "tags": ["entitlements"],
                "summary": "Get Ownership",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Product identifier", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Ownership", "schema": {"$ref": "#/definitions/entitlements.Ownership"}}
                }
            }
        },
        "/entitlements/transactions": {
            "get": {
                "tags": ["entitlements"],
                "summary": "Get Transactions",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Transactions", "schema": {"type": "array", "items": {"$ref": "#/definitions/entitlement.PurchaseRecord"}}}
                }
            }
        },
        "/entitlements/products": {
            "get": {
                "tags": ["entitlements"],
                "summary": "Get Products",
                "produces": ["application/json"],
                "parameters": [{"type": "boolean", "description": "Reload the catalog first", "name": "reload", "in": "query"}],
                "responses": {
                    "200": {"description": "Products", "schema": {"$ref": "#/definitions/entitlements.Listings"}}
                }
            }
        },
        "/entitlements/purchases": {
            "post": {
                "tags": ["entitlements"],
                "summary": "Submit Purchase",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"description": "Purchase result", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/entitlements.PurchaseRequest"}}],
                "responses": {
                    "200": {"description": "Entitlement state", "schema": {"$ref": "#/definitions/entitlements.State"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/entitlements/restore": {
            "post": {
                "tags": ["entitlements"],
                "summary": "Restore Purchases",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Entitlement state", "schema": {"$ref": "#/definitions/entitlements.State"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/Error"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/notifications/transactions": {
            "post": {
                "tags": ["notifications"],
                "summary": "Ingest Transaction",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"description": "Signed transaction", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/entitlement.SignedTransaction"}}],
                "responses": {
                    "202": {"description": "Accepted"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/notifications/statuses": {
            "post": {
                "tags": ["notifications"],
                "summary": "Ingest Subscription Status",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"description": "Signed status", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/entitlement.SignedStatus"}}],
                "responses": {
                    "202": {"description": "Accepted"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/integrity": {
            "get": {
                "tags": ["integrity"],
                "summary": "Run All Integrity Checks",
                "description": "Performs every integrity check (structure, catalog, schema, balance).",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Combined Report", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/integrity/structure": {
            "get": {
                "tags": ["integrity"],
                "summary": "Check Structure",
                "description": "Checks that the catalog folders exist in the storage bucket. Optionally fixes missing folders.",
                "produces": ["application/json"],
                "parameters": [{"type": "boolean", "description": "Fix missing folders", "name": "fix", "in": "query"}],
                "responses": {
                    "200": {"description": "Structure Report", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/integrity/catalog": {
            "get": {
                "tags": ["integrity"],
                "summary": "Check Catalog",
                "description": "Verifies that the published catalog lists every configured product.",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Catalog Report", "schema": {"$ref": "#/definitions/checks.CatalogReport"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/integrity/schema": {
            "get": {
                "tags": ["integrity"],
                "summary": "Check Schema",
                "description": "Checks that the journal and balance tables expose every expected column.",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Schema Report", "schema": {"$ref": "#/definitions/checks.SchemaReport"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/integrity/balance": {
            "get": {
                "tags": ["integrity"],
                "summary": "Check Balance",
                "description": "Replays the transaction history and reports the drift of the persisted balance.",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Balance Report", "schema": {"$ref": "#/definitions/reconcile.PlanSummary"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        }
    },
    "definitions": {
        "checks.CatalogReport": {
            "type": "object",
            "properties": {
                "published": {"type": "boolean"},
                "products": {"type": "integer"},
                "missing": {"type": "array", "items": {"type": "string"}}
            }
        },
        "checks.TableReport": {
            "type": "object",
            "properties": {
                "missing_columns": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string"}
            }
        },
        "checks.SchemaReport": {
            "type": "object",
            "properties": {
                "matched": {"type": "boolean"},
                "tables": {"type": "object", "additionalProperties": {"$ref": "#/definitions/checks.TableReport"}},
                "errors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "reconcile.PlanSummary": {
            "type": "object",
            "properties": {
                "transactions": {"type": "integer"},
                "consumables": {"type": "integer"},
                "unverified": {"type": "integer"},
                "unparseable": {"type": "integer"},
                "revoked": {"type": "integer"},
                "expected": {"type": "integer"},
                "persisted": {"type": "integer"},
                "drift": {"type": "integer"},
                "sync_actions": {"type": "integer"}
            }
        },
        "Error": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "catalog.Revision": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "size": {"type": "integer"},
                "last_modified": {"type": "string"}
            }
        },
        "entitlement.SubscriptionInfo": {
            "type": "object",
            "properties": {
                "group_id": {"type": "string"},
                "tier_level": {"type": "integer"}
            }
        },
        "entitlement.ProductDescriptor": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "kind": {"type": "string", "enum": ["consumable", "nonConsumable", "autoRenewable", "nonRenewable"]},
                "display_name": {"type": "string"},
                "description": {"type": "string"},
                "display_price": {"type": "string"},
                "subscription": {"$ref": "#/definitions/entitlement.SubscriptionInfo"}
            }
        },
        "entitlement.PurchaseRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "product_id": {"type": "string"},
                "product_kind": {"type": "string"},
                "purchase_date": {"type": "string", "format": "date-time"},
                "quantity": {"type": "integer"},
                "revocation_date": {"type": "string", "format": "date-time"},
                "revocation_reason": {"type": "string"},
                "subscription_group_id": {"type": "string"},
                "ownership_type": {"type": "string", "enum": ["purchased", "familyShared"]}
            }
        },
        "entitlement.SignedTransaction": {
            "type": "object",
            "properties": {"signed_transaction": {"type": "string"}}
        },
        "entitlement.SignedStatus": {
            "type": "object",
            "properties": {
                "transaction": {"$ref": "#/definitions/entitlement.SignedTransaction"},
                "state": {"type": "string", "enum": ["subscribed", "expired", "inBillingRetry", "inGracePeriod", "revoked"]}
            }
        },
        "entitlements.State": {
            "type": "object",
            "properties": {
                "balance": {"type": "integer"},
                "plan": {"type": "string", "enum": ["free", "plus", "premium"]},
                "owned": {"type": "array", "items": {"type": "string"}},
                "last_error": {"type": "string"}
            }
        },
        "entitlements.Ownership": {
            "type": "object",
            "properties": {
                "product_id": {"type": "string"},
                "owned": {"type": "boolean"}
            }
        },
        "entitlements.Listings": {
            "type": "object",
            "properties": {
                "consumables": {"type": "array", "items": {"$ref": "#/definitions/entitlement.ProductDescriptor"}},
                "non_consumables": {"type": "array", "items": {"$ref": "#/definitions/entitlement.ProductDescriptor"}},
                "subscriptions": {"type": "array", "items": {"$ref": "#/definitions/entitlement.ProductDescriptor"}}
            }
        },
        "entitlements.PurchaseRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["success", "pending", "cancelled", "failed"]},
                "signed_transaction": {"type": "string"},
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Purchase Manager API",
	Description:      "Entitlement reconciliation for in-app purchases.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
