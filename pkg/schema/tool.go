package schema

import (
	"encoding/json"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// ToolDefinition is a client-executed function tool offered to the model.
// The parameters are kept as JSON text so that keywords the provider
// depends on (additionalProperties, required) pass through unchanged.
type ToolDefinition struct {
	Type        string          `json:"type" yaml:"type,omitempty"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description"`
	Parameters  ParameterSchema `json:"parameters" yaml:"parameters"`
	Strict      bool            `json:"strict" yaml:"strict"`
}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const ToolTypeFunction = "function"

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewToolDefinition returns a strict function tool
func NewToolDefinition(name, description string, parameters json.RawMessage) ToolDefinition {
	return ToolDefinition{
		Type:        ToolTypeFunction,
		Name:        name,
		Description: description,
		Parameters:  NewParameterSchema(parameters),
		Strict:      true,
	}
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (t ToolDefinition) String() string {
	return Stringify(t)
}
