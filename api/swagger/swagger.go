package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "MRU Results API",
        "description": "Remote result synchronisation and academic reporting",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Sync", "description": "Remote acad_results synchronisation runs"},
        {"name": "Academics", "description": "CGPA, honors lists and missing marks"}
    ],
    "paths": {
        "/sync": {
            "get": {
                "tags": ["Sync"],
                "summary": "List recent sync runs",
                "parameters": [
                    {"name": "table_name", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["pending", "processing", "completed", "failed", "paused"]},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Sync"],
                "summary": "Queue a sync run",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StartSyncRequest"}}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error or unsupported table", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sync/statistics": {
            "get": {
                "tags": ["Sync"],
                "summary": "Aggregate sync history",
                "parameters": [
                    {"name": "table_name", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sync/connection": {
            "get": {
                "tags": ["Sync"],
                "summary": "Test the remote database connection",
                "responses": {
                    "200": {"description": "Connected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Unreachable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sync/tables": {
            "get": {
                "tags": ["Sync"],
                "summary": "List remote tables",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Remote unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sync/{id}": {
            "get": {
                "tags": ["Sync"],
                "summary": "Sync run status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sync/{id}/process": {
            "post": {
                "tags": ["Sync"],
                "summary": "Queue a pending, paused or failed run",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already processing or completed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sync/{id}/pause": {
            "post": {
                "tags": ["Sync"],
                "summary": "Pause a pending or processing run",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Paused", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Run cannot be paused", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academics/students/{regno}/snapshot": {
            "get": {
                "tags": ["Academics"],
                "summary": "Student academic snapshot",
                "parameters": [
                    {"name": "regno", "in": "path", "required": true, "type": "string", "description": "URL-encoded registration number"},
                    {"name": "programme_level", "in": "query", "type": "integer"},
                    {"name": "expected_courses", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No results", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academics/summary": {
            "get": {
                "tags": ["Academics"],
                "summary": "Cohort summary report",
                "parameters": [
                    {"name": "acad", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "progid", "in": "query", "type": "string"},
                    {"name": "studyyear", "in": "query", "type": "integer"},
                    {"name": "specialisation", "in": "query", "type": "string"},
                    {"name": "expected_courses", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academics/missing-marks": {
            "get": {
                "tags": ["Academics"],
                "summary": "Students with missing marks",
                "parameters": [
                    {"name": "acad", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "progid", "in": "query", "type": "string"},
                    {"name": "studyyear", "in": "query", "type": "integer"},
                    {"name": "specialisation", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["regno", "name", "specialization", "total_courses", "marks_obtained", "marks_missing_count"]},
                    {"name": "order", "in": "query", "type": "string", "enum": ["asc", "desc"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "StartSyncRequest": {
            "type": "object",
            "properties": {
                "table_name": {"type": "string"},
                "range_limit": {"type": "integer"},
                "start_id": {"type": "integer"},
                "min_academic_year": {"type": "string"},
                "upsert_mode": {"type": "string", "enum": ["native", "check"]},
                "triggered_by": {"type": "string"}
            },
            "required": ["table_name"]
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

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
