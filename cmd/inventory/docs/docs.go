// Package docs holds the swagger document served at /swagger/doc.json.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/vegatran/GaraManager-sub003"
        },
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/inventory-checks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Inventory Checks"],
                "summary": "List count sessions",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "integer", "name": "warehouse_id", "in": "query"},
                    {"type": "integer", "name": "zone_id", "in": "query"},
                    {"type": "integer", "name": "bin_id", "in": "query"},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Inventory Checks"],
                "summary": "Create a count session",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/inventory-checks/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Inventory Checks"],
                "summary": "Get a count session with its items",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["Inventory Checks"],
                "summary": "Edit the header of an open count session",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory Checks"],
                "summary": "Delete a count session",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/v1/inventory-checks/{id}/start": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory Checks"],
                "summary": "Start counting",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/v1/inventory-checks/{id}/complete": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory Checks"],
                "summary": "Complete counting",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/v1/inventory-checks/{id}/cancel": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory Checks"],
                "summary": "Cancel a count session",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/v1/inventory-checks/{id}/items": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["Inventory Checks"],
                "summary": "Add a counted item",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/v1/inventory-checks/{id}/items/bulk-add": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["Inventory Checks"],
                "summary": "Count several parts, each in isolation",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/v1/inventory-checks/{id}/items/bulk-update": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["Inventory Checks"],
                "summary": "Apply one count or note to several items",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/v1/inventory-checks/{id}/history": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory Checks"],
                "summary": "Audit history of a count session",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "action", "in": "query"},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/inventory-checks/{id}/comments": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory Checks"],
                "summary": "List count session comments",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["Inventory Checks"],
                "summary": "Comment on a count session",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/inventory-checks/{id}/comments/{commentId}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory Checks"],
                "summary": "Delete a count session comment",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "commentId", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/inventory-checks/{id}/items/{itemId}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["Inventory Checks"],
                "summary": "Update a counted item",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "itemId", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory Checks"],
                "summary": "Delete a counted item",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "itemId", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/v1/inventory-adjustments": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Inventory Adjustments"],
                "summary": "List adjustment tickets",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "integer", "name": "warehouse_id", "in": "query"},
                    {"type": "integer", "name": "inventory_check_id", "in": "query"},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["Inventory Adjustments"],
                "summary": "Create a manual adjustment ticket",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/inventory-checks/{id}/adjustments": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory Adjustments"],
                "summary": "Build a ticket from a completed count session",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/v1/inventory-adjustments/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory Adjustments"],
                "summary": "Get an adjustment ticket",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory Adjustments"],
                "summary": "Delete a pending ticket",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/v1/inventory-adjustments/{id}/approve": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory Adjustments"],
                "summary": "Approve a ticket and post it to the ledger",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/v1/inventory-adjustments/{id}/reject": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory Adjustments"],
                "summary": "Reject a ticket",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/v1/inventory-adjustments/{id}/history": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory Adjustments"],
                "summary": "Audit history of a ticket",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/inventory-adjustments/{id}/comments": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory Adjustments"],
                "summary": "List ticket comments",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory Adjustments"],
                "summary": "Comment on a ticket",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api/v1/inventory-adjustments/{id}/comments/{commentId}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory Adjustments"],
                "summary": "Delete a comment",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "commentId", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/inventory-adjustments/bulk-approve": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory Adjustments"],
                "summary": "Approve many tickets",
                "responses": {"200": {"description": "Per ticket outcome"}}
            }
        },
        "/api/v1/inventory-adjustments/bulk-reject": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory Adjustments"],
                "summary": "Reject many tickets",
                "responses": {"200": {"description": "Per ticket outcome"}}
            }
        },
        "/api/v1/stock-transactions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Stock Transactions"],
                "summary": "List stock ledger entries",
                "parameters": [
                    {"type": "integer", "name": "part_id", "in": "query"},
                    {"type": "string", "name": "reference_number", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8082",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Inventory Reconciliation API",
	Description:      "Physical count sessions, adjustment tickets and the stock ledger of the garage workshop.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
