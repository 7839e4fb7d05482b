package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const jobSchemaJSON = `{
  "type": "object",
  "required": ["id", "title", "company", "location"],
  "properties": {
    "id": {"type": "integer"},
    "title": {"type": "string"},
    "company": {"type": "string"},
    "location": {"type": "string"},
    "description": {"type": ["string", "null"]},
    "requirements": {"type": ["string", "null"]},
    "salary": {"type": ["string", "null"]},
    "job_type": {"type": ["string", "null"]},
    "created_at": {"type": ["string", "null"]}
  }
}`

const applicationSchemaJSON = `{
  "type": "object",
  "required": ["id", "email", "status"],
  "anyOf": [{"required": ["full_name"]}, {"required": ["name"]}],
  "properties": {
    "id": {"type": "integer"},
    "full_name": {"type": "string"},
    "name": {"type": "string"},
    "email": {"type": "string"},
    "phone": {"type": ["string", "null"]},
    "resume": {"type": ["string", "null"]},
    "resume_url": {"type": ["string", "null"]},
    "cover_letter": {"type": ["string", "null"]},
    "job_id": {"type": ["integer", "null"]},
    "job": {"type": ["object", "null"]},
    "status": {"type": "string"},
    "created_at": {"type": ["string", "null"]}
  }
}`

const tokenPairSchemaJSON = `{
  "type": "object",
  "required": ["access", "refresh"],
  "properties": {
    "access": {"type": "string", "minLength": 1},
    "refresh": {"type": "string", "minLength": 1}
  }
}`

// listOf accepts a bare array or a paginated {"results": [...]} envelope.
func listOf(item string) string {
	return fmt.Sprintf(`{
  "anyOf": [
    {"type": "array", "items": %[1]s},
    {"type": "object", "required": ["results"], "properties": {"results": {"type": "array", "items": %[1]s}}}
  ]
}`, item)
}

var (
	jobSchema             = mustCompile("job.json", jobSchemaJSON)
	jobListSchema         = mustCompile("jobs.json", listOf(jobSchemaJSON))
	applicationSchema     = mustCompile("application.json", applicationSchemaJSON)
	applicationListSchema = mustCompile("applications.json", listOf(applicationSchemaJSON))
	tokenPairSchema       = mustCompile("token.json", tokenPairSchemaJSON)
)

func mustCompile(name, schema string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(schema)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

// validatePayload checks data against schema before it is decoded.
func validatePayload(schema *jsonschema.Schema, data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedPayload, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedPayload, err)
	}
	return nil
}

// decodeList validates and decodes a list response, unwrapping pagination.
func decodeList[T any](schema *jsonschema.Schema, data []byte) ([]T, error) {
	if err := validatePayload(schema, data); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var page struct {
			Results []T `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedPayload, err)
		}
		return page.Results, nil
	}
	var out []T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedPayload, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func decodeOne[T any](schema *jsonschema.Schema, data []byte) (*T, error) {
	if err := validatePayload(schema, data); err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedPayload, err)
	}
	return &out, nil
}
