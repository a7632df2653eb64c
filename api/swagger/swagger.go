package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Board API",
        "description": "Announcement board for holidays, key information, payment dues and faculty posts",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Board", "description": "Notice board document and posts"},
        {"name": "Export", "description": "CSV and PDF downloads of the board"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Data file missing"}
                }
            }
        },
        "/api/data": {
            "get": {
                "tags": ["Board"],
                "summary": "Get the whole notice board",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Board"}}
                }
            }
        },
        "/api/holidays": {
            "post": {
                "tags": ["Board"],
                "summary": "Add a holiday notice",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePostRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PostResponse"}},
                    "400": {"description": "Text is required", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "500": {"description": "Failed to save data", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/key-info": {
            "post": {
                "tags": ["Board"],
                "summary": "Add a key information notice",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePostRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PostResponse"}},
                    "400": {"description": "Text is required", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "500": {"description": "Failed to save data", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/payment-dues": {
            "post": {
                "tags": ["Board"],
                "summary": "Add a payment due notice for a class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePaymentDueRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PostResponse"}},
                    "400": {"description": "Class code and text are required", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "500": {"description": "Failed to save data", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/faculty-posts": {
            "post": {
                "tags": ["Board"],
                "summary": "Add a homework, assignment or subject post for a class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateFacultyPostRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PostResponse"}},
                    "400": {"description": "All fields are required or Invalid post type", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "500": {"description": "Failed to save data", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/posts/{type}/{id}": {
            "delete": {
                "tags": ["Board"],
                "summary": "Delete a holiday or key information post",
                "parameters": [
                    {"name": "type", "in": "path", "required": true, "type": "string", "enum": ["holiday", "keyinfo"]},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DeleteResponse"}},
                    "500": {"description": "Failed to delete post", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/export/{format}": {
            "get": {
                "tags": ["Export"],
                "summary": "Download every post as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "path", "required": true, "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported export format", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "Post": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "format": "int64"},
                "text": {"type": "string"},
                "date": {"type": "string", "example": "31/10/2024, 10:00:15 am"},
                "faculty": {"type": "string"}
            }
        },
        "FacultyPostSet": {
            "type": "object",
            "properties": {
                "homework": {"type": "array", "items": {"$ref": "#/definitions/Post"}},
                "assignment": {"type": "array", "items": {"$ref": "#/definitions/Post"}},
                "subject": {"type": "array", "items": {"$ref": "#/definitions/Post"}}
            }
        },
        "Board": {
            "type": "object",
            "properties": {
                "holidays": {"type": "array", "items": {"$ref": "#/definitions/Post"}},
                "paymentDues": {
                    "type": "object",
                    "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/Post"}}
                },
                "keyInfo": {"type": "array", "items": {"$ref": "#/definitions/Post"}},
                "facultyPosts": {
                    "type": "object",
                    "additionalProperties": {"$ref": "#/definitions/FacultyPostSet"}
                }
            }
        },
        "CreatePostRequest": {
            "type": "object",
            "required": ["text"],
            "properties": {
                "text": {"type": "string"}
            }
        },
        "CreatePaymentDueRequest": {
            "type": "object",
            "required": ["classCode", "text"],
            "properties": {
                "classCode": {"type": "string"},
                "text": {"type": "string"}
            }
        },
        "CreateFacultyPostRequest": {
            "type": "object",
            "required": ["classCode", "type", "text", "facultyCode"],
            "properties": {
                "classCode": {"type": "string"},
                "type": {"type": "string", "enum": ["homework", "assignment", "subject"]},
                "text": {"type": "string"},
                "facultyCode": {"type": "string"}
            }
        },
        "PostResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "post": {"$ref": "#/definitions/Post"}
            }
        },
        "DeleteResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"}
            }
        },
        "ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
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
