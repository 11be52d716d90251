package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Beasiswa Status API",
        "description": "Scholarship application tracking: public status lookup and administrative management.",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Public", "description": "Applicant self-service"},
        {"name": "Authentication", "description": "Administrator sessions"},
        {"name": "Applications", "description": "Application management, import and export"}
    ],
    "paths": {
        "/check-status": {
            "post": {
                "tags": ["Public"],
                "summary": "Check application status",
                "description": "Looks up an application by student ID and email. Unknown pairs answer found=false.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StatusCheckRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StatusCheckEnvelope"}},
                    "400": {"description": "Malformed payload", "schema": {"$ref": "#/definitions/Envelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/admin/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate administrator",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LoginEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/admin/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current administrator",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/admin/applications": {
            "get": {
                "tags": ["Applications"],
                "summary": "List applications",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer", "minimum": 1},
                    {"name": "limit", "in": "query", "type": "integer", "minimum": 1, "maximum": 100}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ApplicationListEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "post": {
                "tags": ["Applications"],
                "summary": "Create application",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateApplicationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ApplicationEnvelope"}},
                    "400": {"description": "Validation failure or duplicate student ID", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/admin/applications/{id}": {
            "parameters": [
                {"name": "id", "in": "path", "required": true, "type": "string"}
            ],
            "get": {
                "tags": ["Applications"],
                "summary": "Get application",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ApplicationEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "put": {
                "tags": ["Applications"],
                "summary": "Partially update application",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateApplicationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ApplicationEnvelope"}},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "delete": {
                "tags": ["Applications"],
                "summary": "Delete application",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/admin/applications/export": {
            "get": {
                "tags": ["Applications"],
                "summary": "Export applications",
                "description": "CSV uses the import column layout; PDF is a printable summary.",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/admin/import-csv": {
            "post": {
                "tags": ["Applications"],
                "summary": "Import applications from CSV",
                "description": "Rows are matched on (studentId, email). Matches are merged, new pairs are created and malformed rows are reported.",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "Import report", "schema": {"$ref": "#/definitions/ImportEnvelope"}},
                    "400": {"description": "Missing file, wrong extension or unreadable header", "schema": {"$ref": "#/definitions/Envelope"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalCount": {"type": "integer"},
                "totalPages": {"type": "integer"},
                "hasNext": {"type": "boolean"},
                "hasPrev": {"type": "boolean"}
            }
        },
        "Envelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        },
        "StatusCheckRequest": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "StatusCheckResult": {
            "type": "object",
            "properties": {
                "found": {"type": "boolean"},
                "studentId": {"type": "string"},
                "name": {"type": "string"},
                "status": {"type": "string", "enum": ["Under Review", "Accepted", "Rejected"]},
                "stage": {"type": "string", "enum": ["Administrative", "Interview", "Final"]},
                "note": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "StatusCheckEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/StatusCheckResult"},
                "meta": {"type": "object"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "accessToken": {"type": "string"},
                "tokenType": {"type": "string"},
                "expiresIn": {"type": "integer"}
            }
        },
        "LoginEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/LoginResponse"}
            }
        },
        "Application": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "studentId": {"type": "string"},
                "email": {"type": "string"},
                "fullName": {"type": "string"},
                "phone": {"type": "string"},
                "address": {"type": "string"},
                "gpa": {"type": "number"},
                "familyIncome": {"type": "integer"},
                "essay": {"type": "string"},
                "supportingDocument": {"type": "string"},
                "recommendation": {"type": "string"},
                "status": {"type": "string", "enum": ["Under Review", "Accepted", "Rejected"]},
                "stage": {"type": "string", "enum": ["Administrative", "Interview", "Final"]},
                "note": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "ApplicationEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/Application"}
            }
        },
        "ApplicationListEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/Application"}},
                "pagination": {"$ref": "#/definitions/Pagination"}
            }
        },
        "CreateApplicationRequest": {
            "type": "object",
            "required": ["studentId", "email", "fullName", "phone", "address", "gpa", "familyIncome", "essay"],
            "properties": {
                "studentId": {"type": "string"},
                "email": {"type": "string"},
                "fullName": {"type": "string"},
                "phone": {"type": "string"},
                "address": {"type": "string"},
                "gpa": {"type": "number", "minimum": 0},
                "familyIncome": {"type": "integer", "minimum": 0},
                "essay": {"type": "string"},
                "supportingDocument": {"type": "string"},
                "recommendation": {"type": "string"},
                "note": {"type": "string"}
            }
        },
        "UpdateApplicationRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "fullName": {"type": "string"},
                "phone": {"type": "string"},
                "address": {"type": "string"},
                "gpa": {"type": "number", "minimum": 0},
                "familyIncome": {"type": "integer", "minimum": 0},
                "essay": {"type": "string"},
                "supportingDocument": {"type": "string"},
                "recommendation": {"type": "string"},
                "status": {"type": "string"},
                "stage": {"type": "string"},
                "note": {"type": "string"}
            }
        },
        "ImportRowResult": {
            "type": "object",
            "properties": {
                "row": {"type": "integer"},
                "studentId": {"type": "string"},
                "action": {"type": "string", "enum": ["created", "updated", "failed"]},
                "applicationId": {"type": "string"},
                "error": {"type": "string"},
                "warnings": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ImportReport": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "importedCount": {"type": "integer"},
                "createdCount": {"type": "integer"},
                "updatedCount": {"type": "integer"},
                "failedCount": {"type": "integer"},
                "errors": {"type": "array", "items": {"type": "string"}},
                "warnings": {"type": "array", "items": {"type": "string"}},
                "defaults": {"type": "object"},
                "rows": {"type": "array", "items": {"$ref": "#/definitions/ImportRowResult"}},
                "archivedAs": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "ImportEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/ImportReport"}
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
