// Package docs registra la especificación OpenAPI servida en /swagger/*.
// Regenerar con: swag init -g cmd/api/main.go -o docs
package docs

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
    "paths": {
        "/regimens": {
            "get": {
                "description": "Devuelve el catálogo cerrado de regímenes con sus duraciones por fase y medicamentos.",
                "produces": ["application/json"],
                "tags": ["regimens"],
                "summary": "Listar regímenes soportados",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/treatmentplans.regimenResponse"}}
                    }
                }
            }
        },
        "/cases/{caseID}/treatment-plans": {
            "post": {
                "description": "Deriva el plan, lo guarda y dispara los recordatorios de calendario/SMS en segundo plano.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["treatment-plans"],
                "summary": "Crear plan de tratamiento",
                "parameters": [
                    {"type": "string", "description": "ID del caso (expediente externo)", "name": "caseID", "in": "path", "required": true},
                    {"description": "Datos del plan; start_date en formato YYYY-MM-DD", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/treatmentplans.createPlanRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/treatmentplans.PlanResponse"}},
                    "400": {"description": "invalid json / unknown regimen / weight out of range / invalid start date", "schema": {"type": "string"}},
                    "500": {"description": "internal error", "schema": {"type": "string"}}
                }
            }
        },
        "/treatment-plans/preview": {
            "post": {
                "description": "Deriva el plan sin guardarlo ni enviar recordatorios.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["treatment-plans"],
                "summary": "Previsualizar plan de tratamiento",
                "parameters": [
                    {"description": "Régimen, peso y fecha de inicio (YYYY-MM-DD)", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/treatmentplans.previewPlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/treatmentplans.PlanResponse"}},
                    "400": {"description": "invalid json / unknown regimen / weight out of range / invalid start date", "schema": {"type": "string"}}
                }
            }
        },
        "/treatment-plans/{planID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["treatment-plans"],
                "summary": "Obtener plan de tratamiento",
                "parameters": [
                    {"type": "string", "description": "ID del plan", "name": "planID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/treatmentplans.PlanResponse"}},
                    "404": {"description": "treatment plan not found", "schema": {"type": "string"}}
                }
            }
        },
        "/treatment-plans/{planID}/status": {
            "post": {
                "description": "Transiciones válidas: pending→active, pending→discontinued, active→completed, active→discontinued.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["treatment-plans"],
                "summary": "Cambiar estado del plan",
                "parameters": [
                    {"type": "string", "description": "ID del plan", "name": "planID", "in": "path", "required": true},
                    {"description": "Nuevo estado", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/treatmentplans.updateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/treatmentplans.PlanResponse"}},
                    "400": {"description": "invalid json", "schema": {"type": "string"}},
                    "404": {"description": "treatment plan not found", "schema": {"type": "string"}},
                    "409": {"description": "invalid status transition", "schema": {"type": "string"}}
                }
            }
        },
        "/treatment-plans/{planID}/outcome": {
            "post": {
                "description": "cured y treatment_completed exigen estado completed; failed, died y lost_to_follow_up exigen un estado terminal.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["treatment-plans"],
                "summary": "Registrar resultado del tratamiento",
                "parameters": [
                    {"type": "string", "description": "ID del plan", "name": "planID", "in": "path", "required": true},
                    {"description": "Resultado", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/treatmentplans.recordOutcomeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/treatmentplans.PlanResponse"}},
                    "400": {"description": "invalid json", "schema": {"type": "string"}},
                    "404": {"description": "treatment plan not found", "schema": {"type": "string"}},
                    "409": {"description": "invalid outcome", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "dosage.Schedule": {
            "type": "object",
            "additionalProperties": {"type": "integer"}
        },
        "treatmentplans.createPlanRequest": {
            "type": "object",
            "properties": {
                "case_number": {"type": "string"},
                "full_name": {"type": "string"},
                "notify_recipient": {"type": "string"},
                "regimen": {"type": "string", "enum": ["I. 2HRZE/4HR", "Ia. 2HRZE/10HR", "II. 2HRZES/1HRZE/5HRE", "IIa. 2HRZES/1HRZE/9HRE"]},
                "start_date": {"type": "string"},
                "weight_kg": {"type": "number"}
            }
        },
        "treatmentplans.previewPlanRequest": {
            "type": "object",
            "properties": {
                "case_id": {"type": "string"},
                "case_number": {"type": "string"},
                "full_name": {"type": "string"},
                "regimen": {"type": "string"},
                "start_date": {"type": "string"},
                "weight_kg": {"type": "number"}
            }
        },
        "treatmentplans.updateStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["pending", "active", "completed", "discontinued"]}
            }
        },
        "treatmentplans.recordOutcomeRequest": {
            "type": "object",
            "properties": {
                "outcome": {"type": "string", "enum": ["not_evaluated", "cured", "treatment_completed", "failed", "died", "lost_to_follow_up"]}
            }
        },
        "treatmentplans.regimenResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "total_months": {"type": "integer"},
                "intensive_months": {"type": "integer"},
                "continuation_months": {"type": "integer"},
                "medications": {"type": "array", "items": {"type": "string"}}
            }
        },
        "treatmentplans.PlanResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "case_id": {"type": "string"},
                "case_number": {"type": "string"},
                "full_name": {"type": "string"},
                "regimen": {"type": "string"},
                "weight_kg": {"type": "number"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "duration_months": {"type": "integer"},
                "intensive_months": {"type": "integer"},
                "continuation_months": {"type": "integer"},
                "medications": {"type": "array", "items": {"type": "string"}},
                "dosage_intensive": {"$ref": "#/definitions/dosage.Schedule"},
                "dosage_continuation": {"$ref": "#/definitions/dosage.Schedule"},
                "dosage_total": {"$ref": "#/definitions/dosage.Schedule"},
                "follow_up_dates": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string"},
                "outcome": {"type": "string"},
                "notify_recipient": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "TB Treatment Plans API",
	Description:      "Deriva planes de tratamiento de tuberculosis: dosis FDC por banda de peso, fecha de fin y controles quincenales.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
