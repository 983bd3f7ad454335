package schema

import (
	"bytes"
	"encoding/json"
	"strings"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Message is one conversation turn as produced by the chat front-end.
// Content is optional; when empty the text is carried in the parts.
type Message struct {
	ID      string `json:"id,omitempty"`
	Role    string `json:"role"`              // "user", "assistant", "system"
	Content string `json:"content,omitempty"` // Plain text content
	Parts   []Part `json:"parts,omitempty"`   // Ordered structured parts
}

// Part is one structured piece of a message. Text parts set Text, tool
// parts set ToolCall and/or ToolResult. Parts of any other type keep their
// raw JSON so they survive a round trip, but carry no semantics here.
type Part struct {
	Type       string      `json:"type"`
	Text       *string     `json:"text,omitempty"`
	ToolCall   *ToolCall   `json:"-"`
	ToolResult *ToolResult `json:"-"`
	raw        json.RawMessage
}

// ToolCall is a tool invocation the model asked for in an earlier turn
type ToolCall struct {
	ID    string          `json:"id"`              // Call identifier, stable across events
	Name  string          `json:"name"`            // Tool name
	Input json.RawMessage `json:"input,omitempty"` // Arguments, any JSON value
}

// ToolResult is the client's output for a tool call
type ToolResult struct {
	ID     string          `json:"id"`               // Matches the ToolCall ID
	Output json.RawMessage `json:"output,omitempty"` // Result, any JSON value
}

// ChatRequest is the body of a chat request
type ChatRequest struct {
	Messages []Message `json:"messages"`
}

////////////////////////////////////////////////////////////////////////////////
// CONSTANTS

// Message role constants
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Part type constants
const (
	PartText               = "text"
	PartToolCall           = "tool-call"
	PartToolResult         = "tool-result"
	PartDynamicTool        = "dynamic-tool"
	PartFunctionCall       = "function_call"
	PartFunctionCallOutput = "function_call_output"

	// Prefix of typed tool parts, "tool-<name>"
	PartToolPrefix = "tool-"
)

// Typed tool part states
const (
	ToolStateInputStreaming  = "input-streaming"
	ToolStateInputAvailable  = "input-available"
	ToolStateOutputAvailable = "output-available"
	ToolStateOutputError     = "output-error"
)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewMessage returns a message with plain text content
func NewMessage(role, text string) Message {
	return Message{Role: role, Content: text}
}

// NewTextPart returns a text part
func NewTextPart(text string) Part {
	return Part{Type: PartText, Text: &text}
}

// NewToolCallPart returns a tool call part. The input is encoded as JSON
// unless it is already a json.RawMessage.
func NewToolCallPart(id, name string, input any) Part {
	return Part{Type: PartToolCall, ToolCall: &ToolCall{ID: id, Name: name, Input: rawJSON(input)}}
}

// NewToolResultPart returns a tool result part
func NewToolResultPart(id string, output any) Part {
	return Part{Type: PartToolResult, ToolResult: &ToolResult{ID: id, Output: rawJSON(output)}}
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (m Message) String() string {
	return Stringify(m)
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Text returns the message text: the content when set, otherwise the
// concatenation of all text parts in order.
func (m Message) Text() string {
	if m.Content != "" {
		return m.Content
	}
	var b strings.Builder
	for _, part := range m.Parts {
		if part.Type == PartText && part.Text != nil {
			b.WriteString(*part.Text)
		}
	}
	return b.String()
}

// IsTool returns true if the part type denotes a tool invocation
func (p Part) IsTool() bool {
	switch {
	case p.Type == PartToolCall, p.Type == PartToolResult, p.Type == PartDynamicTool:
		return true
	case p.Type == PartFunctionCall, p.Type == PartFunctionCallOutput:
		return true
	default:
		return strings.HasPrefix(p.Type, PartToolPrefix)
	}
}

////////////////////////////////////////////////////////////////////////////////
// JSON

// wirePart is the union of all fields that tool and text parts carry
type wirePart struct {
	Type       string          `json:"type"`
	Text       *string         `json:"text,omitempty"`
	ToolCallID string          `json:"toolCallId,omitempty"`
	ToolName   string          `json:"toolName,omitempty"`
	Args       json.RawMessage `json:"args,omitempty"`
	Input      json.RawMessage `json:"input,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	Output     json.RawMessage `json:"output,omitempty"`
	State      string          `json:"state,omitempty"`

	// Provider-shaped legacy fields
	CallID    string          `json:"call_id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

func (p *Part) UnmarshalJSON(data []byte) error {
	var w wirePart
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*p = Part{Type: w.Type}
	switch {
	case w.Type == PartText:
		p.Text = w.Text
		if p.Text == nil {
			p.Text = new(string)
		}
	case w.Type == PartToolCall:
		p.ToolCall = &ToolCall{ID: w.ToolCallID, Name: w.ToolName, Input: firstOf(w.Args, w.Input)}
	case w.Type == PartToolResult:
		p.ToolResult = &ToolResult{ID: w.ToolCallID, Output: firstOf(w.Result, w.Output)}
	case w.Type == PartFunctionCall:
		p.ToolCall = &ToolCall{ID: w.CallID, Name: w.Name, Input: w.Arguments}
	case w.Type == PartFunctionCallOutput:
		p.ToolResult = &ToolResult{ID: w.CallID, Output: w.Output}
	case w.Type == PartDynamicTool, strings.HasPrefix(w.Type, PartToolPrefix):
		name := w.ToolName
		if name == "" {
			name = strings.TrimPrefix(w.Type, PartToolPrefix)
		}
		p.ToolCall = &ToolCall{ID: w.ToolCallID, Name: name, Input: firstOf(w.Input, w.Args)}
		if output := firstOf(w.Output, w.Result); output != nil {
			p.ToolResult = &ToolResult{ID: w.ToolCallID, Output: output}
		}
	default:
		p.raw = append(json.RawMessage(nil), data...)
	}

	// Return success
	return nil
}

func (p Part) MarshalJSON() ([]byte, error) {
	if p.raw != nil {
		return p.raw, nil
	}

	w := wirePart{Type: p.Type, Text: p.Text}
	switch {
	case p.Type == PartFunctionCall && p.ToolCall != nil:
		w.CallID, w.Name, w.Arguments = p.ToolCall.ID, p.ToolCall.Name, p.ToolCall.Input
	case p.Type == PartFunctionCallOutput && p.ToolResult != nil:
		w.CallID, w.Output = p.ToolResult.ID, p.ToolResult.Output
	case p.Type == PartToolCall && p.ToolCall != nil:
		w.ToolCallID, w.ToolName, w.Args = p.ToolCall.ID, p.ToolCall.Name, p.ToolCall.Input
	case p.Type == PartToolResult && p.ToolResult != nil:
		w.ToolCallID, w.Result = p.ToolResult.ID, p.ToolResult.Output
	case p.ToolCall != nil:
		w.ToolCallID, w.Input = p.ToolCall.ID, p.ToolCall.Input
		if p.Type == PartDynamicTool {
			w.ToolName = p.ToolCall.Name
		}
		w.State = ToolStateInputAvailable
		if p.ToolResult != nil {
			w.Output = p.ToolResult.Output
			w.State = ToolStateOutputAvailable
		}
	}
	return json.Marshal(w)
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// firstOf returns the first value which is present and not JSON null
func firstOf(values ...json.RawMessage) json.RawMessage {
	for _, v := range values {
		if len(v) > 0 && !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return v
		}
	}
	return nil
}

// rawJSON encodes v as JSON, passing raw messages through unchanged
func rawJSON(v any) json.RawMessage {
	switch v := v.(type) {
	case nil:
		return nil
	case json.RawMessage:
		return v
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
