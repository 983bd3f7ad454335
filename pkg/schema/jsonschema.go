package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	// Packages
	yaml "gopkg.in/yaml.v3"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// ParameterSchema is the JSON schema of a tool's arguments, held as compact
// JSON text. The catalogue is written in YAML, and the provider receives
// the same keywords in JSON, so nothing is lost by decoding into a schema
// struct.
type ParameterSchema json.RawMessage

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

// NoParameters is the schema of a tool which takes no arguments. Strict
// tools must still declare an object.
var NoParameters = ParameterSchema(`{"type":"object","properties":{},"additionalProperties":false}`)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewParameterSchema returns the schema for the given JSON text, or
// NoParameters when it is empty
func NewParameterSchema(data json.RawMessage) ParameterSchema {
	if len(data) == 0 {
		return NoParameters
	}
	return ParameterSchema(data)
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Bytes returns the schema as JSON
func (s ParameterSchema) Bytes() []byte {
	return []byte(s)
}

// IsEmpty returns true when no schema is set
func (s ParameterSchema) IsEmpty() bool {
	return len(s) == 0
}

////////////////////////////////////////////////////////////////////////////////
// JSON

// MarshalJSON writes NoParameters for an empty schema, since the provider
// rejects a function tool without one
func (s ParameterSchema) MarshalJSON() ([]byte, error) {
	if s.IsEmpty() {
		return NoParameters, nil
	}
	return []byte(s), nil
}

// UnmarshalJSON accepts a JSON object or null
func (s *ParameterSchema) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*s = nil
		return nil
	} else if len(data) == 0 || data[0] != '{' {
		return fmt.Errorf("parameters: expected an object")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	*s = buf.Bytes()
	return nil
}

////////////////////////////////////////////////////////////////////////////////
// YAML

// UnmarshalYAML accepts a mapping, which is converted to JSON
func (s *ParameterSchema) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("parameters: line %d: expected a mapping", node.Line)
	}
	var v map[string]any
	if err := node.Decode(&v); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	*s = data
	return nil
}
