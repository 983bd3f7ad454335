package schema_test

import (
	"encoding/json"
	"testing"

	// Packages
	assert "github.com/stretchr/testify/assert"
	schema "github.com/ueberdosis/go-aitoolkit/pkg/schema"
)

func Test_event_001(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		event schema.Event
		json  string
	}{
		{schema.NewTextDelta("Hello"), `"Hello"`},
		{schema.NewToolInputStart("call_1", "foo"), `{"type":"tool-input-start","toolCallId":"call_1","toolName":"foo"}`},
		{schema.NewToolInputDelta("call_1", `{"a":`), `{"type":"tool-input-delta","toolCallId":"call_1","inputTextDelta":"{\"a\":"}`},
		{schema.NewToolInputAvailable("call_1", "foo", json.RawMessage(`{"a":1}`), "fc_1"), `{"type":"tool-input-available","toolCallId":"call_1","toolName":"foo","input":{"a":1},"providerMetadata":{"openai":{"itemId":"fc_1"}}}`},
		{schema.NewToolInputAvailable("call_1", "foo", nil, "fc_1"), `{"type":"tool-input-available","toolCallId":"call_1","toolName":"foo","input":{},"providerMetadata":{"openai":{"itemId":"fc_1"}}}`},
		{schema.NewFinishStep(), `{"type":"finish-step"}`},
		{schema.NewFinish(), `{"type":"finish"}`},
		{schema.NewError("AI service error: boom"), `{"type":"error","error":"AI service error: boom"}`},
	}
	for _, test := range tests {
		data, err := json.Marshal(test.event)
		if assert.NoError(err) {
			assert.JSONEq(test.json, string(data))
		}

		// Decoding the wire payload returns the same event
		var event schema.Event
		if assert.NoError(json.Unmarshal(data, &event)) {
			assert.Equal(test.event.Type, event.Type)
			assert.Equal(test.event.ToolCallID, event.ToolCallID)
			assert.Equal(test.event.Delta, event.Delta)
			assert.Equal(test.event.Error, event.Error)
			assert.Equal(test.event.ItemID, event.ItemID)
		}
	}
}

func Test_event_002(t *testing.T) {
	assert := assert.New(t)

	assert.True(schema.NewFinish().IsTerminal())
	assert.True(schema.NewError("x").IsTerminal())
	assert.False(schema.NewFinishStep().IsTerminal())
	assert.False(schema.NewTextDelta("x").IsTerminal())

	_, err := json.Marshal(schema.Event{Type: "bogus"})
	assert.Error(err)

	var event schema.Event
	assert.Error(json.Unmarshal([]byte(`{"type":"bogus"}`), &event))
}

func Test_event_003(t *testing.T) {
	assert := assert.New(t)

	// Provider errors render the message, falling back to the raw payload
	assert.Equal("boom", schema.ProviderError{Code: "x", Message: "boom"}.Error())
	assert.Equal(`{"type":"error"}`, schema.ProviderError{Raw: `{"type":"error"}`}.Error())
	assert.Equal("rate_limit", schema.ProviderError{Code: "rate_limit"}.Error())
}
