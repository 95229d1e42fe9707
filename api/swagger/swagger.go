package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "tags": [
        {"name": "Materials", "description": "Public catalog of approved materials"},
        {"name": "Admin", "description": "Moderation queue and tooling"},
        {"name": "User", "description": "Uploader self-service"},
        {"name": "Uploads", "description": "Material submission"},
        {"name": "Files", "description": "Material file downloads"},
        {"name": "Health", "description": "Liveness"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/test": {
            "get": {
                "tags": ["Health"],
                "summary": "Connectivity check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/materials": {
            "get": {
                "tags": ["Materials"],
                "summary": "List approved materials",
                "description": "Blank or All criteria match everything. Materials missing a filtered attribute still match.",
                "parameters": [
                    {"name": "semester", "in": "query", "type": "string"},
                    {"name": "subject", "in": "query", "type": "string"},
                    {"name": "group", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "string"},
                    {"name": "type", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Material"}}},
                    "503": {"description": "Storage unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/materials/search": {
            "get": {
                "tags": ["Materials"],
                "summary": "Search approved materials",
                "parameters": [
                    {"name": "q", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Material"}}}
                }
            }
        },
        "/legacy/materials": {
            "get": {
                "tags": ["Materials"],
                "summary": "List approved materials in the legacy shape",
                "description": "Materials missing a filtered attribute are excluded.",
                "parameters": [
                    {"name": "semester", "in": "query", "type": "string"},
                    {"name": "subject", "in": "query", "type": "string"},
                    {"name": "group", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "string"},
                    {"name": "type", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LegacyMaterials"}}
                }
            }
        },
        "/admin/pending": {
            "get": {
                "tags": ["Admin"],
                "summary": "List materials awaiting review",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Material"}}}
                }
            }
        },
        "/admin/approved": {
            "get": {
                "tags": ["Admin"],
                "summary": "List approved materials, newest first",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Material"}}}
                }
            }
        },
        "/admin/approve/{id}": {
            "put": {
                "tags": ["Admin"],
                "summary": "Approve a pending material",
                "produces": ["text/plain"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {
                    "200": {"description": "Approved!"},
                    "400": {"description": "Invalid id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/reject/{id}": {
            "delete": {
                "tags": ["Admin"],
                "summary": "Reject a material",
                "produces": ["text/plain"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {
                    "200": {"description": "Deleted!"},
                    "400": {"description": "Invalid id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/delete/{id}": {
            "delete": {
                "tags": ["Admin"],
                "summary": "Delete a material in any state",
                "produces": ["text/plain"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {
                    "200": {"description": "Deleted!"},
                    "400": {"description": "Invalid id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/audit": {
            "get": {
                "tags": ["Admin"],
                "summary": "List moderation audit entries",
                "parameters": [
                    {"name": "materialId", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export the approved catalog",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/materials/{id}/download-url": {
            "get": {
                "tags": ["Admin"],
                "summary": "Issue a signed download link",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/user/uploads": {
            "get": {
                "tags": ["User"],
                "summary": "List uploads by uploader name",
                "parameters": [{"name": "uploaderName", "in": "query", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Material"}}},
                    "400": {"description": "Missing uploader", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/user/status/{id}": {
            "get": {
                "tags": ["User"],
                "summary": "Moderation state of a material",
                "produces": ["text/plain"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {
                    "200": {"description": "pending, approved or not_found"}
                }
            }
        },
        "/uploads": {
            "post": {
                "tags": ["Uploads"],
                "summary": "Submit a material for review",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "title", "in": "formData", "required": true, "type": "string"},
                    {"name": "subject", "in": "formData", "type": "string"},
                    {"name": "description", "in": "formData", "type": "string"},
                    {"name": "semester", "in": "formData", "type": "string"},
                    {"name": "groupName", "in": "formData", "type": "string"},
                    {"name": "uploadYear", "in": "formData", "type": "string"},
                    {"name": "type", "in": "formData", "type": "string"},
                    {"name": "uploaderName", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid upload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Request body too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/files/{id}": {
            "get": {
                "tags": ["Files"],
                "summary": "Download the file of an approved material",
                "produces": ["application/octet-stream"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/files/signed": {
            "get": {
                "tags": ["Files"],
                "summary": "Download through a signed token",
                "produces": ["application/octet-stream"],
                "parameters": [{"name": "token", "in": "query", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Material": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "subject": {"type": "string", "x-nullable": true},
                "description": {"type": "string", "x-nullable": true},
                "semester": {"type": "string", "x-nullable": true},
                "groupName": {"type": "string", "x-nullable": true},
                "uploadYear": {"type": "string", "x-nullable": true},
                "type": {"type": "string", "x-nullable": true},
                "uploaderName": {"type": "string", "x-nullable": true},
                "approved": {"type": "boolean"},
                "fileName": {"type": "string"},
                "mimeType": {"type": "string"},
                "sizeBytes": {"type": "integer"},
                "createdAt": {"type": "string", "format": "date-time"},
                "fileUrl": {"type": "string"}
            }
        },
        "LegacyMaterials": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/Material"}},
                "total": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "Student Resources API",
	Description:      "Upload, moderation and catalog service for shared study materials",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
