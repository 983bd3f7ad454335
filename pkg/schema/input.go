package schema

import (
	"encoding/json"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// InputKind discriminates provider input items
type InputKind int

// InputItem is one element of the provider input: a role-tagged turn, a
// function call made in an earlier turn, or the output of such a call.
type InputItem struct {
	Kind      InputKind
	Role      string // Turn role
	Content   string // Turn text
	ID        string // Function call item identifier
	CallID    string // Function call identifier, shared by call and output
	Name      string // Function name
	Arguments string // Function arguments, JSON text
	Output    string // Function output
}

// ProviderRequest is a provider-agnostic streaming completion request
type ProviderRequest struct {
	Model           string           `json:"model"`
	Instructions    string           `json:"instructions,omitempty"`
	Input           []InputItem      `json:"input"`
	Tools           []ToolDefinition `json:"tools,omitempty"`
	ReasoningEffort string           `json:"reasoning_effort,omitempty"`
}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	InputTurn InputKind = iota
	InputFunctionCall
	InputFunctionCallOutput
)

const (
	inputTypeFunctionCall       = "function_call"
	inputTypeFunctionCallOutput = "function_call_output"
)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewTurn returns a turn input item
func NewTurn(role, content string) InputItem {
	return InputItem{Kind: InputTurn, Role: role, Content: content}
}

// NewFunctionCall returns a function call input item
func NewFunctionCall(id, callId, name, arguments string) InputItem {
	return InputItem{Kind: InputFunctionCall, ID: id, CallID: callId, Name: name, Arguments: arguments}
}

// NewFunctionCallOutput returns a function call output input item
func NewFunctionCallOutput(callId, output string) InputItem {
	return InputItem{Kind: InputFunctionCallOutput, CallID: callId, Output: output}
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (k InputKind) String() string {
	switch k {
	case InputTurn:
		return "turn"
	case InputFunctionCall:
		return inputTypeFunctionCall
	case InputFunctionCallOutput:
		return inputTypeFunctionCallOutput
	default:
		return "unknown"
	}
}

func (i InputItem) String() string {
	return Stringify(i)
}

func (r ProviderRequest) String() string {
	return Stringify(r)
}

////////////////////////////////////////////////////////////////////////////////
// JSON

// MarshalJSON writes the item in the provider input schema. Turns carry no
// type field; calls and outputs always carry their string fields, even when
// empty, since the provider requires them.
func (i InputItem) MarshalJSON() ([]byte, error) {
	switch i.Kind {
	case InputFunctionCall:
		return json.Marshal(struct {
			Type      string `json:"type"`
			ID        string `json:"id,omitempty"`
			CallID    string `json:"call_id"`
			Name      string `json:"name"`
			Arguments string `json:"arguments"`
		}{inputTypeFunctionCall, i.ID, i.CallID, i.Name, i.Arguments})
	case InputFunctionCallOutput:
		return json.Marshal(struct {
			Type   string `json:"type"`
			CallID string `json:"call_id"`
			Output string `json:"output"`
		}{inputTypeFunctionCallOutput, i.CallID, i.Output})
	default:
		return json.Marshal(struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{i.Role, i.Content})
	}
}

func (i *InputItem) UnmarshalJSON(data []byte) error {
	var w struct {
		Type      string `json:"type"`
		Role      string `json:"role"`
		Content   string `json:"content"`
		ID        string `json:"id"`
		CallID    string `json:"call_id"`
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
		Output    string `json:"output"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case inputTypeFunctionCall:
		*i = NewFunctionCall(w.ID, w.CallID, w.Name, w.Arguments)
	case inputTypeFunctionCallOutput:
		*i = NewFunctionCallOutput(w.CallID, w.Output)
	default:
		*i = NewTurn(w.Role, w.Content)
	}
	return nil
}
