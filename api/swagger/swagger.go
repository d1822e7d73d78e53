package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Hero Academy API",
        "description": "Role-gated learning management API for classes and contents",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, session and token lifecycle"},
        {"name": "Classes", "description": "Teacher class management and admin approval"},
        {"name": "Contents", "description": "Learning materials inside a class"},
        {"name": "Reports", "description": "Asynchronous CSV/PDF exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Tokens and user info"},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Exchange refresh token",
                "responses": {
                    "200": {"description": "New token pair"},
                    "401": {"description": "Invalid or expired refresh token", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "responses": {
                    "204": {"description": "Logged out"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/auth/session": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current session or null",
                "description": "Always answers 200. Body is the session object for a valid bearer token, otherwise null.",
                "responses": {
                    "200": {"description": "Session or null"}
                }
            }
        },
        "/teacher/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List classes visible to the caller",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "approval_status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Paginated classes"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "post": {
                "tags": ["Classes"],
                "summary": "Create a class",
                "responses": {
                    "201": {"description": "Created class"},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/teacher/classes/{id}": {
            "get": {
                "tags": ["Classes"],
                "summary": "Class detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Class detail"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "put": {
                "tags": ["Classes"],
                "summary": "Update an owned class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Updated class"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/teacher/classes/{id}/archive": {
            "post": {
                "tags": ["Classes"],
                "summary": "Archive or re-activate an owned class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ArchiveClassRequest"}}
                ],
                "responses": {
                    "200": {"description": "Message and updated class"},
                    "400": {"description": "Invalid status", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/admin/classes/{id}/approve": {
            "post": {
                "tags": ["Classes"],
                "summary": "Approve a pending class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Message and approved class"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/admin/classes/{id}/reject": {
            "post": {
                "tags": ["Classes"],
                "summary": "Reject a pending class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Message and rejected class"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/teacher/classes/{id}/contents": {
            "get": {
                "tags": ["Contents"],
                "summary": "List contents of an owned class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Contents"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "post": {
                "tags": ["Contents"],
                "summary": "Add a content, optionally with an attachment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Message and created content"},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/teacher/classes/{id}/contents/{contentId}": {
            "delete": {
                "tags": ["Contents"],
                "summary": "Delete a content from an owned class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "contentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Message"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/teacher/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a report export",
                "responses": {
                    "202": {"description": "Queued job"},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/teacher/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Job status"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/reports/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished report via signed token",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ArchiveClassRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["ACTIVE", "ARCHIVED"]}
            }
        },
        "ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "details": {"type": "object"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
