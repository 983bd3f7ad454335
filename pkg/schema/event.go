package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// EventType is the discriminant of a normalized event
type EventType string

// Event is one normalized, client-facing event. Which fields are set
// depends on the type.
type Event struct {
	Type       EventType       `json:"type"`
	Delta      string          `json:"delta,omitempty"`      // text-delta, tool-input-delta
	ToolCallID string          `json:"toolCallId,omitempty"` // tool-input-*
	ToolName   string          `json:"toolName,omitempty"`   // tool-input-start, tool-input-available
	Input      json.RawMessage `json:"input,omitempty"`      // tool-input-available
	ItemID     string          `json:"itemId,omitempty"`     // tool-input-available
	Error      string          `json:"error,omitempty"`      // error
}

///////////////////////////////////////////////////////////////////////////////
// SSE EVENT NAMES

const (
	EventTextDelta          EventType = "text-delta"
	EventToolInputStart     EventType = "tool-input-start"
	EventToolInputDelta     EventType = "tool-input-delta"
	EventToolInputAvailable EventType = "tool-input-available"
	EventFinishStep         EventType = "finish-step"
	EventFinish             EventType = "finish"
	EventError              EventType = "error"
)

// The metadata key under which the provider item id is reported
const ProviderMetadataKey = "openai"

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func NewTextDelta(delta string) Event {
	return Event{Type: EventTextDelta, Delta: delta}
}

func NewToolInputStart(callId, name string) Event {
	return Event{Type: EventToolInputStart, ToolCallID: callId, ToolName: name}
}

func NewToolInputDelta(callId, delta string) Event {
	return Event{Type: EventToolInputDelta, ToolCallID: callId, Delta: delta}
}

// NewToolInputAvailable returns the event carrying the complete, parsed
// tool input. A nil input is reported as an empty object.
func NewToolInputAvailable(callId, name string, input json.RawMessage, itemId string) Event {
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}
	return Event{Type: EventToolInputAvailable, ToolCallID: callId, ToolName: name, Input: input, ItemID: itemId}
}

func NewFinishStep() Event {
	return Event{Type: EventFinishStep}
}

func NewFinish() Event {
	return Event{Type: EventFinish}
}

func NewError(message string) Event {
	return Event{Type: EventError, Error: message}
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (e Event) String() string {
	data, err := e.MarshalJSON()
	if err != nil {
		return err.Error()
	}
	return string(data)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// IsTerminal returns true for the events after which a session produces
// nothing further
func (e Event) IsTerminal() bool {
	return e.Type == EventFinish || e.Type == EventError
}

///////////////////////////////////////////////////////////////////////////////
// JSON

type eventMetadata struct {
	OpenAI struct {
		ItemID string `json:"itemId"`
	} `json:"openai"`
}

// MarshalJSON writes the wire payload. A text delta is a bare JSON string,
// every other event is an object with a type field.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventTextDelta:
		return json.Marshal(e.Delta)
	case EventToolInputStart:
		return json.Marshal(struct {
			Type       EventType `json:"type"`
			ToolCallID string    `json:"toolCallId"`
			ToolName   string    `json:"toolName"`
		}{e.Type, e.ToolCallID, e.ToolName})
	case EventToolInputDelta:
		return json.Marshal(struct {
			Type           EventType `json:"type"`
			ToolCallID     string    `json:"toolCallId"`
			InputTextDelta string    `json:"inputTextDelta"`
		}{e.Type, e.ToolCallID, e.Delta})
	case EventToolInputAvailable:
		var meta eventMetadata
		meta.OpenAI.ItemID = e.ItemID
		input := e.Input
		if len(input) == 0 {
			input = json.RawMessage("{}")
		}
		return json.Marshal(struct {
			Type             EventType       `json:"type"`
			ToolCallID       string          `json:"toolCallId"`
			ToolName         string          `json:"toolName"`
			Input            json.RawMessage `json:"input"`
			ProviderMetadata eventMetadata   `json:"providerMetadata"`
		}{e.Type, e.ToolCallID, e.ToolName, input, meta})
	case EventFinishStep, EventFinish:
		return json.Marshal(struct {
			Type EventType `json:"type"`
		}{e.Type})
	case EventError:
		return json.Marshal(struct {
			Type  EventType `json:"type"`
			Error string    `json:"error"`
		}{e.Type, e.Error})
	default:
		return nil, fmt.Errorf("unsupported event type: %q", e.Type)
	}
}

// UnmarshalJSON reads a wire payload, which is either a bare string (a text
// delta) or a typed object
func (e *Event) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var delta string
		if err := json.Unmarshal(data, &delta); err != nil {
			return err
		}
		*e = NewTextDelta(delta)
		return nil
	}

	var w struct {
		Type             EventType       `json:"type"`
		ToolCallID       string          `json:"toolCallId"`
		ToolName         string          `json:"toolName"`
		InputTextDelta   string          `json:"inputTextDelta"`
		Delta            string          `json:"delta"`
		Input            json.RawMessage `json:"input"`
		ProviderMetadata *eventMetadata  `json:"providerMetadata"`
		Error            string          `json:"error"`
		ErrorText        string          `json:"errorText"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*e = Event{Type: w.Type, ToolCallID: w.ToolCallID, ToolName: w.ToolName, Input: w.Input}
	switch w.Type {
	case EventTextDelta:
		e.Delta = w.Delta
	case EventToolInputDelta:
		e.Delta = w.InputTextDelta
	case EventToolInputAvailable:
		if w.ProviderMetadata != nil {
			e.ItemID = w.ProviderMetadata.OpenAI.ItemID
		}
	case EventError:
		e.Error = w.Error
		if e.Error == "" {
			e.Error = w.ErrorText
		}
	case EventToolInputStart, EventFinishStep, EventFinish:
		// No payload beyond the common fields
	default:
		return fmt.Errorf("unsupported event type: %q", w.Type)
	}
	return nil
}
