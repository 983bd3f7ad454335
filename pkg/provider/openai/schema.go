package openai

import (
	"encoding/json"

	// Packages
	schema "github.com/ueberdosis/go-aitoolkit/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// responsesRequest is the body of a streaming POST /responses
type responsesRequest struct {
	Model        string                  `json:"model"`
	Instructions string                  `json:"instructions,omitempty"`
	Input        []schema.InputItem      `json:"input"`
	Tools        []schema.ToolDefinition `json:"tools,omitempty"`
	Reasoning    *reasoning              `json:"reasoning,omitempty"`
	Stream       bool                    `json:"stream"`
}

type reasoning struct {
	Effort string `json:"effort,omitempty"`
}

// streamEvent is the union of the streamed event payloads which are read
type streamEvent struct {
	Type        string          `json:"type"`
	OutputIndex int             `json:"output_index"`
	ItemID      string          `json:"item_id,omitempty"`
	Delta       string          `json:"delta,omitempty"`
	Arguments   string          `json:"arguments,omitempty"`
	Item        *outputItem     `json:"item,omitempty"`
	Response    *response       `json:"response,omitempty"`
	Code        json.RawMessage `json:"code,omitempty"`
	Message     string          `json:"message,omitempty"`
	Error       *streamError    `json:"error,omitempty"`
}

type outputItem struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	Status    string `json:"status,omitempty"`
}

type response struct {
	ID                string       `json:"id"`
	Status            string       `json:"status"`
	Error             *streamError `json:"error,omitempty"`
	IncompleteDetails *struct {
		Reason string `json:"reason"`
	} `json:"incomplete_details,omitempty"`
}

type streamError struct {
	Code    json.RawMessage `json:"code,omitempty"`
	Message string          `json:"message"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Streamed event types
const (
	eventOutputTextDelta    = "response.output_text.delta"
	eventOutputItemAdded    = "response.output_item.added"
	eventOutputItemDone     = "response.output_item.done"
	eventArgumentsDelta     = "response.function_call_arguments.delta"
	eventArgumentsDone      = "response.function_call_arguments.done"
	eventResponseCompleted  = "response.completed"
	eventResponseIncomplete = "response.incomplete"
	eventResponseFailed     = "response.failed"
	eventResponseError      = "response.error"
	eventError              = "error"
)

const (
	streamDone = "[DONE]"
)
