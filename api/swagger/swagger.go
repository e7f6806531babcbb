package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Mornoningo API",
        "description": "Study engine: lecture material ingestion, spaced review scheduling and quiz sessions.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Documents", "description": "Lecture material and notes"},
        {"name": "Reviews", "description": "Spaced review schedule"},
        {"name": "Quiz", "description": "Quiz session lifecycle"},
        {"name": "Dashboard", "description": "Home, profile and ranking summaries"},
        {"name": "Exports", "description": "CSV and PDF downloads"},
        {"name": "Events", "description": "Server-sent state-change events"}
    ],
    "paths": {
        "/documents": {
            "get": {
                "tags": ["Documents"],
                "summary": "List study documents",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Documents"],
                "summary": "Upload lecture material",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "415": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/text": {
            "post": {
                "tags": ["Documents"],
                "summary": "Create a document from pasted notes",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTextDocumentRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/documents/{id}": {
            "get": {
                "tags": ["Documents"],
                "summary": "Get a document with its notes and reviews",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Documents"],
                "summary": "Delete a document and its reviews",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/reviews/due": {
            "get": {
                "tags": ["Reviews"],
                "summary": "List reviews due on a date",
                "parameters": [{"name": "date", "in": "query", "type": "string", "format": "date"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/reviews/recommendations": {
            "get": {
                "tags": ["Reviews"],
                "summary": "Suggested review per ladder stage",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/quiz": {
            "get": {
                "tags": ["Quiz"],
                "summary": "Get the current quiz session",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Quiz"],
                "summary": "Abandon the current session",
                "responses": {"204": {"description": "Abandoned"}, "409": {"description": "No session", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/quiz/prepare": {
            "post": {
                "tags": ["Quiz"],
                "summary": "Prepare a question set for a document",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PrepareQuizRequest"}}
                ],
                "responses": {
                    "200": {"description": "Session ready", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Questions cached", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Generation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/quiz/regenerate": {
            "post": {
                "tags": ["Quiz"],
                "summary": "Regenerate questions for the last quizzed document",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/quiz/random": {
            "post": {
                "tags": ["Quiz"],
                "summary": "Start a quick quiz on a random document",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/quiz/open": {
            "post": {
                "tags": ["Quiz"],
                "summary": "Open the prepared question set",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/quiz/answer": {
            "post": {
                "tags": ["Quiz"],
                "summary": "Answer the current question",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AnswerRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/home": {
            "get": {"tags": ["Dashboard"], "summary": "Home summary", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/profile": {
            "get": {"tags": ["Dashboard"], "summary": "Learner profile", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/ranking": {
            "get": {"tags": ["Dashboard"], "summary": "Leaderboard", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/exports/{kind}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export reviews, documents or quiz history",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "kind", "in": "path", "type": "string", "required": true, "enum": ["reviews", "documents", "history"]},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File", "schema": {"type": "file"}}}
            }
        },
        "/events": {
            "get": {
                "tags": ["Events"],
                "summary": "Subscribe to study events",
                "produces": ["text/event-stream"],
                "responses": {"200": {"description": "Event stream"}}
            }
        },
        "/metrics/summary": {
            "get": {"summary": "Study engine counters", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        }
    },
    "definitions": {
        "CreateTextDocumentRequest": {
            "type": "object",
            "required": ["title", "notes"],
            "properties": {
                "title": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "PrepareQuizRequest": {
            "type": "object",
            "required": ["documentId"],
            "properties": {
                "documentId": {"type": "string"},
                "forceRegenerate": {"type": "boolean"},
                "cacheOnly": {"type": "boolean"}
            }
        },
        "AnswerRequest": {
            "type": "object",
            "required": ["optionIndex"],
            "properties": {
                "optionIndex": {"type": "integer"}
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

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
