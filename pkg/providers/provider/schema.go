package provider

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// SchemaFor infers a JSON Schema from the Go type T. Struct fields use their
// json tag names; a jsonschema tag supplies the description.
func SchemaFor[T any]() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, fmt.Errorf("infer schema: %w", err)
	}
	return s, nil
}

// MarshalSchema renders s as a JSON document for the wire.
func MarshalSchema(s *jsonschema.Schema) (json.RawMessage, error) {
	if s == nil {
		return nil, ErrMissingSchema
	}

	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return b, nil
}

// Validate checks raw against the schema.
func Validate(s *jsonschema.Schema, raw json.RawMessage) error {
	if s == nil {
		return ErrMissingSchema
	}

	resolved, err := s.Resolve(nil)
	if err != nil {
		return fmt.Errorf("resolve schema: %w", err)
	}

	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("decode output: %w", err)
	}

	if err := resolved.Validate(instance); err != nil {
		return fmt.Errorf("output does not match schema: %w", err)
	}

	return nil
}

// Decode validates the result output against the schema and unmarshals it
// into T.
func Decode[T any](res Result, s *jsonschema.Schema) (T, error) {
	var out T

	if err := Validate(s, res.Output); err != nil {
		return out, err
	}

	if err := json.Unmarshal(res.Output, &out); err != nil {
		return out, fmt.Errorf("decode output: %w", err)
	}

	return out, nil
}
