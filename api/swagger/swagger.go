package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "PDF2CSV API",
        "description": "Contact extraction pipeline for scanned PDF documents",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Collections", "description": "Client collection management"},
        {"name": "Jobs", "description": "Scan upload and extraction pipeline"},
        {"name": "Records", "description": "Extracted contact review"},
        {"name": "Duplicates", "description": "Duplicate group review and resolution"},
        {"name": "Exports", "description": "Export generation and download"},
        {"name": "System", "description": "Health and throughput metrics"}
    ],
    "paths": {
        "/collections": {
            "get": {
                "tags": ["Collections"],
                "summary": "List collections",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["active", "archived"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Collections"],
                "summary": "Create collection",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCollectionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/collections/{id}": {
            "get": {
                "tags": ["Collections"],
                "summary": "Get collection",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Collections"],
                "summary": "Update collection",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateCollectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Collections"],
                "summary": "Delete collection and all derived data",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/collections/{id}/archive": {
            "post": {
                "tags": ["Collections"],
                "summary": "Archive collection",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/collections/{id}/unarchive": {
            "post": {
                "tags": ["Collections"],
                "summary": "Restore an archived collection to active",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/collections/{id}/stats": {
            "get": {
                "tags": ["Collections"],
                "summary": "Collection statistics",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/files/upload": {
            "post": {
                "tags": ["Jobs"],
                "summary": "Submit scanned PDFs for contact extraction",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "collection_id", "in": "formData", "required": true, "type": "string"},
                    {"name": "group_size", "in": "formData", "type": "integer"},
                    {"name": "output_format", "in": "formData", "type": "string", "enum": ["csv", "excel"]},
                    {"name": "files", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/files/jobs": {
            "get": {
                "tags": ["Jobs"],
                "summary": "List processing jobs",
                "parameters": [
                    {"name": "collection_id", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/files/jobs/{id}": {
            "get": {
                "tags": ["Jobs"],
                "summary": "Job progress for polling clients",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Jobs"],
                "summary": "Request job cancellation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records": {
            "get": {
                "tags": ["Records"],
                "summary": "List extracted records",
                "parameters": [
                    {"name": "collection_id", "in": "query", "type": "string"},
                    {"name": "job_id", "in": "query", "type": "string"},
                    {"name": "is_valid", "in": "query", "type": "boolean"},
                    {"name": "is_duplicate", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records/{id}": {
            "get": {
                "tags": ["Records"],
                "summary": "Get record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Records"],
                "summary": "Edit a record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateRecordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Records"],
                "summary": "Delete a record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/records/{id}/validate": {
            "post": {
                "tags": ["Records"],
                "summary": "Set validity flag on a single record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ValidateRecordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records/bulk/delete": {
            "delete": {
                "tags": ["Records"],
                "summary": "Delete a set of records",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkRecordIDsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records/bulk/validate": {
            "post": {
                "tags": ["Records"],
                "summary": "Set validity flag on a set of records",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ValidateRecordsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records/stats/summary": {
            "get": {
                "tags": ["Records"],
                "summary": "Record counters for one collection",
                "parameters": [
                    {"name": "collection_id", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records/duplicates/groups": {
            "get": {
                "tags": ["Duplicates"],
                "summary": "List duplicate groups",
                "parameters": [
                    {"name": "collection_id", "in": "query", "required": true, "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records/duplicates/groups/{id}": {
            "get": {
                "tags": ["Duplicates"],
                "summary": "Get duplicate group with members",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records/duplicates/resolve": {
            "post": {
                "tags": ["Duplicates"],
                "summary": "Resolve duplicate group",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResolveDuplicateGroupRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/generate": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue export generation",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/history/list": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export history",
                "parameters": [
                    {"name": "collection_id", "in": "query", "type": "string"},
                    {"name": "export_type", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Exports"],
                "summary": "Delete export job and artifact",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/exports/{id}/download": {
            "get": {
                "tags": ["Exports"],
                "summary": "Redirect to the signed download URL",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "302": {"description": "Found"}
                }
            }
        },
        "/exports/bulk/delete": {
            "post": {
                "tags": ["Exports"],
                "summary": "Delete a set of export jobs",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkExportIDsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download completed export via signed token",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/stats": {
            "get": {
                "tags": ["System"],
                "summary": "System throughput and pipeline counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateCollectionRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "client_name": {"type": "string"},
                "description": {"type": "string"}
            },
            "required": ["name"]
        },
        "UpdateCollectionRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "client_name": {"type": "string"},
                "description": {"type": "string"},
                "status": {"type": "string", "enum": ["active", "archived"]}
            }
        },
        "UpdateRecordRequest": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "mobile": {"type": "string"},
                "landline": {"type": "string"},
                "address": {"type": "string"},
                "email": {"type": "string"},
                "date_of_birth": {"type": "string"},
                "last_seen_date": {"type": "string"},
                "is_valid": {"type": "boolean"},
                "is_reviewed": {"type": "boolean"},
                "reviewer_notes": {"type": "string"},
                "confidence_score": {"type": "number"}
            }
        },
        "BulkRecordIDsRequest": {
            "type": "object",
            "properties": {
                "ids": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["ids"]
        },
        "ValidateRecordsRequest": {
            "type": "object",
            "properties": {
                "ids": {"type": "array", "items": {"type": "string"}},
                "is_valid": {"type": "boolean"}
            },
            "required": ["ids"]
        },
        "ValidateRecordRequest": {
            "type": "object",
            "properties": {
                "is_valid": {"type": "boolean"}
            }
        },
        "ResolveDuplicateGroupRequest": {
            "type": "object",
            "properties": {
                "group_id": {"type": "string"},
                "keep_record_id": {"type": "string"},
                "delete_ids": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["group_id", "keep_record_id"]
        },
        "BulkExportIDsRequest": {
            "type": "object",
            "properties": {
                "ids": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["ids"]
        },
        "CreateExportRequest": {
            "type": "object",
            "properties": {
                "collection_id": {"type": "string"},
                "job_id": {"type": "string"},
                "export_type": {"type": "string", "enum": ["csv", "excel", "zip"]},
                "encoding": {"type": "string", "enum": ["utf-8", "latin-1"]},
                "delimiter": {"type": "string"},
                "include_duplicates": {"type": "boolean"},
                "include_invalid": {"type": "boolean"},
                "group_by": {"type": "string", "enum": ["none", "collection", "job"]}
            },
            "required": ["collection_id", "export_type"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
