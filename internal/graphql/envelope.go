package graphql

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrEmptyBody is returned when there is no payload to decode.
	ErrEmptyBody = errors.New("empty body")

	// ErrInvalidEnvelope is returned when a body is JSON but not a GraphQL request or response envelope.
	ErrInvalidEnvelope = errors.New("invalid graphql envelope")

	// ErrMalformedJSON is returned when a body cannot be decoded as JSON.
	ErrMalformedJSON = errors.New("malformed json")
)

// EnvelopeKind selects which envelope shape a body is expected to have.
type EnvelopeKind string

const (
	OperationEnvelope EnvelopeKind = "operation"
	ResponseEnvelope  EnvelopeKind = "response"
)

// operationSchema accepts a single operation or a batch of operations.
// 'query' is optional to allow persisted queries that only send an extensions hash.
const operationSchema = `{
  "definitions": {
    "operation": {
      "type": "object",
      "properties": {
        "query": {"type": ["string", "null"]},
        "operationName": {"type": ["string", "null"]},
        "variables": {"type": ["object", "null"]},
        "extensions": {"type": ["object", "null"]}
      }
    }
  },
  "oneOf": [
    {"$ref": "#/definitions/operation"},
    {"type": "array", "items": {"$ref": "#/definitions/operation"}}
  ]
}`

// responseSchema accepts a single response or a batch of responses.
const responseSchema = `{
  "definitions": {
    "response": {
      "type": "object",
      "properties": {
        "errors": {"type": ["array", "null"]},
        "extensions": {"type": ["object", "null"]}
      }
    }
  },
  "oneOf": [
    {"$ref": "#/definitions/response"},
    {"type": "array", "items": {"$ref": "#/definitions/response"}}
  ]
}`

// Validator checks raw bodies against the GraphQL envelope shapes.
// NewValidator should be used to create instances of Validator.
type Validator struct {
	schemas map[EnvelopeKind]*gojsonschema.Schema
}

// NewValidator compiles the envelope schemas.
func NewValidator() (*Validator, error) {
	sources := map[EnvelopeKind]string{
		OperationEnvelope: operationSchema,
		ResponseEnvelope:  responseSchema,
	}

	v := &Validator{schemas: make(map[EnvelopeKind]*gojsonschema.Schema, len(sources))}
	for kind, src := range sources {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			return nil, fmt.Errorf("compiling %s envelope schema: %w", kind, err)
		}
		v.schemas[kind] = schema
	}

	return v, nil
}

// Validate returns nil when body is a valid envelope of the given kind.
func (v *Validator) Validate(kind EnvelopeKind, body []byte) error {
	schema, ok := v.schemas[kind]
	if !ok {
		return fmt.Errorf("unknown envelope kind: %s", kind)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return ErrEmptyBody
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedJSON, err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidEnvelope, strings.Join(msgs, "; "))
	}

	return nil
}

// Envelopes decodes body and returns the envelope objects it contains, along with the decoded document.
// A single envelope yields one element, a batch yields one element per entry.
// Changes made to the returned envelopes are reflected in the document.
func Envelopes(body []byte) (any, []map[string]any, error) {
	var doc any
	if err := Unmarshal(body, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedJSON, err)
	}

	switch d := doc.(type) {
	case map[string]any:
		return doc, []map[string]any{d}, nil
	case []any:
		envs := make([]map[string]any, 0, len(d))
		for i, elem := range d {
			env, ok := elem.(map[string]any)
			if !ok {
				return nil, nil, fmt.Errorf("%w: batch entry %d is not an object", ErrInvalidEnvelope, i)
			}
			envs = append(envs, env)
		}
		return doc, envs, nil
	default:
		return nil, nil, fmt.Errorf("%w: expected object or array", ErrInvalidEnvelope)
	}
}
