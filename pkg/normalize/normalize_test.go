package normalize_test

import (
	"encoding/json"
	"testing"

	// Packages
	assert "github.com/stretchr/testify/assert"
	normalize "github.com/ueberdosis/go-aitoolkit/pkg/normalize"
	schema "github.com/ueberdosis/go-aitoolkit/pkg/schema"
)

func decode(t *testing.T, data string) []schema.Message {
	t.Helper()
	var messages []schema.Message
	if err := json.Unmarshal([]byte(data), &messages); err != nil {
		t.Fatal(err)
	}
	return messages
}

func Test_normalize_001(t *testing.T) {
	assert := assert.New(t)

	// A single user turn
	items := normalize.Messages([]schema.Message{schema.NewMessage("user", "Hi")})
	assert.Equal([]schema.InputItem{schema.NewTurn("user", "Hi")}, items)
}

func Test_normalize_002(t *testing.T) {
	assert := assert.New(t)

	// Call followed by its result
	items := normalize.Messages(decode(t, `[{
		"role": "assistant",
		"parts": [
			{ "type": "tool-call", "toolCallId": "call_1", "toolName": "foo", "args": {} },
			{ "type": "tool-result", "toolCallId": "call_1", "result": "ok" }
		]
	}]`))
	assert.Equal([]schema.InputItem{
		schema.NewFunctionCall("fc_call_1", "call_1", "foo", "{}"),
		schema.NewFunctionCallOutput("call_1", "ok"),
	}, items)
}

func Test_normalize_003(t *testing.T) {
	assert := assert.New(t)

	// Result before call in the source, and text after both: the output
	// order is always text, calls, outputs
	items := normalize.Messages(decode(t, `[{
		"role": "assistant",
		"parts": [
			{ "type": "tool-result", "toolCallId": "call_2", "result": { "ok": true } },
			{ "type": "tool-result", "toolCallId": "call_1", "result": "first" },
			{ "type": "tool-call", "toolCallId": "call_1", "toolName": "foo", "args": { "a": 1 } },
			{ "type": "text", "text": "Done" },
			{ "type": "tool-call", "toolCallId": "call_2", "toolName": "bar", "args": "{\"b\":2}" }
		]
	}]`))
	if assert.Len(items, 5) {
		assert.Equal(schema.NewTurn("assistant", "Done"), items[0])
		assert.Equal(schema.NewFunctionCall("fc_call_1", "call_1", "foo", `{"a":1}`), items[1])
		assert.Equal(schema.NewFunctionCall("fc_call_2", "call_2", "bar", `{"b":2}`), items[2])
		assert.Equal(schema.NewFunctionCallOutput("call_2", `{"ok":true}`), items[3])
		assert.Equal(schema.NewFunctionCallOutput("call_1", "first"), items[4])
	}
}

func Test_normalize_004(t *testing.T) {
	assert := assert.New(t)

	// Every call precedes every output, for each call id
	items := normalize.Messages(decode(t, `[{
		"role": "assistant",
		"parts": [
			{ "type": "function_call_output", "call_id": "call_9", "output": "x" },
			{ "type": "tool-insertContent", "toolCallId": "call_8", "state": "output-available", "input": {}, "output": "y" },
			{ "type": "function_call", "call_id": "call_9", "name": "applyDiff", "arguments": "{}" }
		]
	}]`))
	position := make(map[string]int)
	for i, item := range items {
		position[item.Kind.String()+":"+item.CallID] = i
	}
	for _, id := range []string{"call_8", "call_9"} {
		call, ok1 := position["function_call:"+id]
		output, ok2 := position["function_call_output:"+id]
		if assert.True(ok1) && assert.True(ok2) {
			assert.Less(call, output, id)
		}
	}
}

func Test_normalize_005(t *testing.T) {
	assert := assert.New(t)

	// Parts without identifying fields are dropped, as are empty turns and
	// unknown roles
	items := normalize.Messages(decode(t, `[
		{ "role": "user", "content": "" },
		{ "role": "tool", "content": "ignored" },
		{ "role": "system", "parts": [ { "type": "text", "text": "Be " }, { "type": "text", "text": "brief" } ] },
		{ "role": "assistant", "parts": [
			{ "type": "tool-call", "toolName": "foo", "args": {} },
			{ "type": "tool-call", "toolCallId": "call_1", "args": {} },
			{ "type": "tool-result", "result": "orphan" },
			{ "type": "reasoning", "text": "hmm" }
		] },
		{ "role": "user", "parts": [ { "type": "text", "text": "Go" } ] }
	]`))
	assert.Equal([]schema.InputItem{
		schema.NewTurn("system", "Be brief"),
		schema.NewTurn("user", "Go"),
	}, items)
}

func Test_normalize_006(t *testing.T) {
	assert := assert.New(t)

	// Missing arguments become an empty object, duplicate ids keep the first
	items := normalize.Messages(decode(t, `[{
		"role": "assistant",
		"parts": [
			{ "type": "tool-call", "toolCallId": "call_1", "toolName": "readSelection" },
			{ "type": "tool-call", "toolCallId": "call_1", "toolName": "readSelection", "args": { "x": 1 } },
			{ "type": "tool-result", "toolCallId": "fc_7", "result": "done" }
		]
	}]`))
	assert.Equal([]schema.InputItem{
		schema.NewFunctionCall("fc_call_1", "call_1", "readSelection", "{}"),
		schema.NewFunctionCallOutput("fc_7", "done"),
	}, items)
}

func Test_normalize_007(t *testing.T) {
	assert := assert.New(t)

	// Results with a null, missing or empty output are dropped, and a later
	// result for the same id is still used
	items := normalize.Messages(decode(t, `[{
		"role": "assistant",
		"parts": [
			{ "type": "tool-call", "toolCallId": "call_1", "toolName": "foo", "args": {} },
			{ "type": "tool-result", "toolCallId": "call_1", "result": null },
			{ "type": "tool-result", "toolCallId": "call_2" },
			{ "type": "tool-result", "toolCallId": "call_3", "result": "" },
			{ "type": "tool-result", "toolCallId": "call_1", "result": "ok" }
		]
	}]`))
	assert.Equal([]schema.InputItem{
		schema.NewFunctionCall("fc_call_1", "call_1", "foo", "{}"),
		schema.NewFunctionCallOutput("call_1", "ok"),
	}, items)
}

func Test_normalize_008(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("fc_call_1", normalize.ItemID("call_1"))
	assert.Equal("fc_abc", normalize.ItemID("abc"))
	assert.Equal("fc_abc", normalize.ItemID("fc_abc"))

	assert.Equal("{}", normalize.Stringify(nil, "{}"))
	assert.Equal("{}", normalize.Stringify(json.RawMessage("null"), "{}"))
	assert.Equal("{}", normalize.Stringify(json.RawMessage("{bad"), "{}"))
	assert.Equal("text", normalize.Stringify(json.RawMessage(`"text"`), "{}"))
	assert.Equal(`[1,2]`, normalize.Stringify(json.RawMessage("[ 1, 2 ]"), "{}"))
	assert.Equal("42", normalize.Stringify(json.RawMessage("42"), "{}"))
}
