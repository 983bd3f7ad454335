// Package normalize converts conversation messages from the chat front-end
// into the ordered input items the completion provider expects.
package normalize

import (
	"bytes"
	"encoding/json"
	"strings"

	// Packages
	schema "github.com/ueberdosis/go-aitoolkit/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	itemPrefix = "fc_"
	emptyArgs  = "{}"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Messages returns the provider input items for a conversation, preserving
// message order. Messages with an unknown role, and parts which lack the
// fields that identify them, are dropped.
func Messages(messages []schema.Message) []schema.InputItem {
	items := make([]schema.InputItem, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case schema.RoleUser, schema.RoleSystem:
			if text := msg.Text(); text != "" {
				items = append(items, schema.NewTurn(msg.Role, text))
			}
		case schema.RoleAssistant:
			items = append(items, assistantItems(msg)...)
		}
	}
	return items
}

// ItemID returns the provider item identifier for a call identifier. The
// prefix is not repeated when the call identifier already carries it.
func ItemID(callId string) string {
	if strings.HasPrefix(callId, itemPrefix) {
		return callId
	}
	return itemPrefix + callId
}

// Stringify returns a JSON value as provider text: strings are returned
// verbatim, other values as compact JSON. An empty or invalid value
// returns the fallback.
func Stringify(value json.RawMessage, fallback string) string {
	value = bytes.TrimSpace(value)
	if len(value) == 0 || bytes.Equal(value, []byte("null")) {
		return fallback
	}
	if value[0] == '"' {
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return fallback
		}
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, value); err != nil {
		return fallback
	}
	return buf.String()
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// assistantItems emits the text turn, then every function call, then every
// function call output, whatever order the parts arrive in. The provider
// rejects an output which precedes its call.
func assistantItems(msg schema.Message) []schema.InputItem {
	var calls, outputs []schema.InputItem
	seenCall := make(map[string]bool)
	seenOutput := make(map[string]bool)

	for _, part := range msg.Parts {
		if call := part.ToolCall; call != nil && call.ID != "" && call.Name != "" && !seenCall[call.ID] {
			seenCall[call.ID] = true
			calls = append(calls, schema.NewFunctionCall(
				ItemID(call.ID), call.ID, call.Name, Stringify(call.Input, emptyArgs),
			))
		}
		// Results with an empty or null output are dropped
		if result := part.ToolResult; result != nil && result.ID != "" && !seenOutput[result.ID] {
			if output := Stringify(result.Output, ""); output != "" {
				seenOutput[result.ID] = true
				outputs = append(outputs, schema.NewFunctionCallOutput(result.ID, output))
			}
		}
	}

	items := make([]schema.InputItem, 0, len(calls)+len(outputs)+1)
	if text := msg.Text(); text != "" {
		items = append(items, schema.NewTurn(schema.RoleAssistant, text))
	}
	items = append(items, calls...)
	return append(items, outputs...)
}
