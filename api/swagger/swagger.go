package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Consultation Analytics API",
        "description": "Retrieval, statistics and export for tutoring consultation records",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Consultations", "description": "Consultation retrieval and follow-up tracking"},
        {"name": "System", "description": "Operational metrics"}
    ],
    "parameters": {
        "type": {"name": "type", "in": "query", "type": "string", "enum": ["parent", "student"]},
        "studentId": {"name": "studentId", "in": "query", "type": "string"},
        "consultantId": {"name": "consultantId", "in": "query", "type": "string"},
        "category": {"name": "category", "in": "query", "type": "string"},
        "subject": {"name": "subject", "in": "query", "type": "string"},
        "startDate": {"name": "startDate", "in": "query", "type": "string", "format": "date"},
        "endDate": {"name": "endDate", "in": "query", "type": "string", "format": "date"},
        "preset": {"name": "preset", "in": "query", "type": "string", "enum": ["today", "week", "thisWeek", "thisMonth", "lastMonth", "last3Months", "all"]},
        "followUpStatus": {"name": "followUpStatus", "in": "query", "type": "string", "enum": ["all", "needed", "done", "pending"]},
        "search": {"name": "search", "in": "query", "type": "string"},
        "clientSession": {"name": "X-Client-Session", "in": "header", "type": "string"}
    },
    "paths": {
        "/consultations": {
            "get": {
                "tags": ["Consultations"],
                "summary": "List consultations",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/type"},
                    {"$ref": "#/parameters/studentId"},
                    {"$ref": "#/parameters/consultantId"},
                    {"$ref": "#/parameters/category"},
                    {"$ref": "#/parameters/subject"},
                    {"$ref": "#/parameters/startDate"},
                    {"$ref": "#/parameters/endDate"},
                    {"$ref": "#/parameters/preset"},
                    {"$ref": "#/parameters/followUpStatus"},
                    {"$ref": "#/parameters/search"},
                    {"$ref": "#/parameters/clientSession"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Superseded by a newer request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Store unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/consultations/paged": {
            "get": {
                "tags": ["Consultations"],
                "summary": "List consultations one page at a time",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/consultations/stats": {
            "get": {
                "tags": ["Consultations"],
                "summary": "Aggregate consultation statistics",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/preset"},
                    {"$ref": "#/parameters/startDate"},
                    {"$ref": "#/parameters/endDate"},
                    {"name": "refresh", "in": "query", "type": "boolean", "description": "Recompute; admins also clear every cached stats entry"},
                    {"name": "includeLastConsultation", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/consultations/export": {
            "get": {
                "tags": ["Consultations"],
                "summary": "Export consultations as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "required": true, "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/consultations/follow-ups/days-left": {
            "get": {
                "tags": ["Consultations"],
                "summary": "Whole days until a follow-up date",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "format": "date", "required": true},
                    {"name": "today", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/consultations/{id}": {
            "get": {
                "tags": ["Consultations"],
                "summary": "Get a consultation",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/consultations/{id}/urgency": {
            "get": {
                "tags": ["Consultations"],
                "summary": "Follow-up urgency of a consultation",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "today", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/system/metrics": {
            "get": {
                "tags": ["System"],
                "summary": "Instrumentation snapshot",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "has_next": {"type": "boolean"},
                "has_prev": {"type": "boolean"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
