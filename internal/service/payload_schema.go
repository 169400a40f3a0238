package service

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/leaps-program/leaps-api/internal/models"
)

// Activity-specific submission payload schemas. Evidence file paths are
// opaque strings; this layer never checks that the referenced file exists.
var payloadSchemaSources = map[models.ActivityCode]string{
	models.ActivityLearn: `{
		"type": "object",
		"properties": {
			"course_name": {"type": "string", "minLength": 1},
			"certificate_path": {"type": "string"}
		},
		"required": ["course_name"]
	}`,
	models.ActivityExplore: `{
		"type": "object",
		"properties": {
			"description": {"type": "string", "minLength": 1},
			"evidence_path": {"type": "string"}
		},
		"required": ["description"]
	}`,
	models.ActivityAmplify: `{
		"type": "object",
		"properties": {
			"peers_trained": {"type": "integer", "minimum": 0},
			"students_trained": {"type": "integer", "minimum": 0},
			"session_date": {"type": "string"},
			"evidence_path": {"type": "string"}
		},
		"required": ["peers_trained", "students_trained"]
	}`,
	models.ActivityPresent: `{
		"type": "object",
		"properties": {
			"title": {"type": "string", "minLength": 1},
			"venue": {"type": "string"},
			"evidence_path": {"type": "string"}
		},
		"required": ["title"]
	}`,
	models.ActivityShine: `{
		"type": "object",
		"properties": {
			"summary": {"type": "string", "minLength": 1},
			"evidence_path": {"type": "string"}
		},
		"required": ["summary"]
	}`,
}

// PayloadValidator checks submission payloads against the per-activity schema.
type PayloadValidator struct {
	schemas map[models.ActivityCode]*jsonschema.Schema
}

// NewPayloadValidator compiles the activity payload schemas.
func NewPayloadValidator() (*PayloadValidator, error) {
	schemas := make(map[models.ActivityCode]*jsonschema.Schema, len(payloadSchemaSources))
	for code, source := range payloadSchemaSources {
		schema, err := jsonschema.CompileString(fmt.Sprintf("%s.json", code), source)
		if err != nil {
			return nil, fmt.Errorf("compile payload schema for %s: %w", code, err)
		}
		schemas[code] = schema
	}
	return &PayloadValidator{schemas: schemas}, nil
}

// Validate returns a SchemaValidationError when the payload does not conform.
func (v *PayloadValidator) Validate(code models.ActivityCode, payload map[string]interface{}) error {
	schema, ok := v.schemas[code]
	if !ok {
		return ErrActivityNotFound
	}

	doc := map[string]interface{}(payload)
	if doc == nil {
		doc = map[string]interface{}{}
	}

	if err := schema.Validate(doc); err != nil {
		return &SchemaValidationError{Activity: string(code), Reason: err.Error()}
	}
	return nil
}
