package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	// Packages
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
	aitoolkit "github.com/ueberdosis/go-aitoolkit"
	schema "github.com/ueberdosis/go-aitoolkit/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// UNIT TESTS

func Test_decodeEvent_001(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		data  string
		event schema.ProviderEvent
	}{
		{
			`{"type":"response.output_text.delta","item_id":"msg_1","output_index":0,"content_index":0,"delta":"Hi"}`,
			schema.ProviderTextDelta{OutputIndex: 0, Delta: "Hi"},
		},
		{
			`{"type":"response.output_item.added","output_index":1,"item":{"type":"function_call","id":"fc_1","call_id":"call_1","name":"readSelection","arguments":"","status":"in_progress"}}`,
			schema.ProviderItemAdded{OutputIndex: 1, Item: schema.ProviderItem{Type: "function_call", ID: "fc_1", CallID: "call_1", Name: "readSelection"}},
		},
		{
			`{"type":"response.function_call_arguments.delta","item_id":"fc_1","output_index":1,"delta":"{\"a\":"}`,
			schema.ProviderArgumentsDelta{OutputIndex: 1, ItemID: "fc_1", Delta: `{"a":`},
		},
		{
			`{"type":"response.function_call_arguments.done","item_id":"fc_1","output_index":1,"arguments":"{\"a\":1}"}`,
			schema.ProviderArgumentsDone{OutputIndex: 1, ItemID: "fc_1", Arguments: `{"a":1}`},
		},
		{
			`{"type":"response.output_item.done","output_index":1,"item":{"type":"function_call","id":"fc_1","call_id":"call_1","name":"readSelection","arguments":"{}"}}`,
			schema.ProviderItemDone{OutputIndex: 1, Item: schema.ProviderItem{Type: "function_call", ID: "fc_1", CallID: "call_1", Name: "readSelection", Arguments: "{}"}},
		},
		{
			`{"type":"response.completed","response":{"id":"resp_1","status":"completed"}}`,
			schema.ProviderCompleted{ResponseID: "resp_1", Status: "completed"},
		},
		{
			`{"type":"response.incomplete","response":{"id":"resp_2","status":"incomplete","incomplete_details":{"reason":"max_output_tokens"}}}`,
			schema.ProviderCompleted{ResponseID: "resp_2", Status: "incomplete"},
		},
		{
			`{"type":"response.created","response":{"id":"resp_1","status":"in_progress"}}`,
			schema.ProviderUnknown{Type: "response.created"},
		},
	}
	for _, test := range tests {
		event, err := decodeEvent([]byte(test.data))
		if assert.NoError(err, test.data) {
			assert.Equal(test.event, event, test.data)
		}
	}
}

func Test_decodeEvent_002(t *testing.T) {
	assert := assert.New(t)

	// Error events carry the nested message
	event, err := decodeEvent([]byte(`{"type":"error","code":"rate_limit_exceeded","message":"Slow down","param":null}`))
	assert.NoError(err)
	if e, ok := event.(schema.ProviderError); assert.True(ok) {
		assert.Equal("rate_limit_exceeded", e.Code)
		assert.Equal("Slow down", e.Error())
	}

	event, err = decodeEvent([]byte(`{"type":"response.error","error":{"message":"Bad things"}}`))
	assert.NoError(err)
	assert.Equal("Bad things", event.(schema.ProviderError).Error())

	event, err = decodeEvent([]byte(`{"type":"response.failed","response":{"id":"r","status":"failed","error":{"code":"server_error","message":"Boom"}}}`))
	assert.NoError(err)
	assert.Equal("Boom", event.(schema.ProviderError).Error())

	// Without a message the event itself is reported
	data := `{"type":"response.error"}`
	event, err = decodeEvent([]byte(data))
	assert.NoError(err)
	assert.Equal(data, event.(schema.ProviderError).Error())

	_, err = decodeEvent([]byte(`{not json`))
	assert.ErrorIs(err, aitoolkit.ErrProvider)
}

func Test_newRequest_001(t *testing.T) {
	assert := assert.New(t)

	body := newRequest(schema.ProviderRequest{
		Model:           "gpt-5-mini",
		Instructions:    "Be brief",
		Input:           []schema.InputItem{schema.NewTurn("user", "Hi")},
		Tools:           []schema.ToolDefinition{schema.NewToolDefinition("readSelection", "Read", json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`))},
		ReasoningEffort: "low",
	})
	data, err := json.Marshal(body)
	assert.NoError(err)
	assert.JSONEq(`{
		"model": "gpt-5-mini",
		"instructions": "Be brief",
		"input": [ { "role": "user", "content": "Hi" } ],
		"tools": [ { "type": "function", "name": "readSelection", "description": "Read", "strict": true,
			"parameters": { "type": "object", "properties": {}, "additionalProperties": false } } ],
		"reasoning": { "effort": "low" },
		"stream": true
	}`, string(data))

	// Input is never null
	data, err = json.Marshal(newRequest(schema.ProviderRequest{Model: "m"}))
	assert.NoError(err)
	assert.JSONEq(`{"model":"m","input":[],"stream":true}`, string(data))
}

///////////////////////////////////////////////////////////////////////////////
// STREAM TESTS

func sseServer(t *testing.T, status int, events ...string) (*httptest.Server, *[]byte) {
	t.Helper()
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/responses" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		body, _ = io.ReadAll(r.Body)
		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			fmt.Fprint(w, `{"error":{"message":"upstream failure","type":"server_error"}}`)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for _, event := range events {
			var ev struct {
				Type string `json:"type"`
			}
			_ = json.Unmarshal([]byte(event), &ev)
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, event)
			w.(http.Flusher).Flush()
		}
	}))
	t.Cleanup(server.Close)
	return server, &body
}

func Test_stream_001(t *testing.T) {
	assert := assert.New(t)
	server, body := sseServer(t, http.StatusOK,
		`{"type":"response.created","response":{"id":"resp_1","status":"in_progress"}}`,
		`{"type":"response.output_text.delta","output_index":0,"delta":"Hel"}`,
		`{"type":"response.output_text.delta","output_index":0,"delta":"lo"}`,
		`{"type":"response.completed","response":{"id":"resp_1","status":"completed"}}`,
		`{"type":"response.output_text.delta","output_index":0,"delta":"never read"}`,
	)
	c, err := New(server.URL, "test-key")
	require.NoError(t, err)
	assert.Equal("openai", c.Name())

	var events []schema.ProviderEvent
	err = c.Stream(context.Background(), schema.ProviderRequest{
		Model: "gpt-5-mini",
		Input: []schema.InputItem{schema.NewTurn("user", "Hi")},
	}, func(event schema.ProviderEvent) error {
		events = append(events, event)
		return nil
	})
	assert.NoError(err)
	assert.Equal([]schema.ProviderEvent{
		schema.ProviderUnknown{Type: "response.created"},
		schema.ProviderTextDelta{Delta: "Hel"},
		schema.ProviderTextDelta{Delta: "lo"},
		schema.ProviderCompleted{ResponseID: "resp_1", Status: "completed"},
	}, events)

	// The request body is a streaming responses request
	var req map[string]any
	require.NoError(t, json.Unmarshal(*body, &req))
	assert.Equal("gpt-5-mini", req["model"])
	assert.Equal(true, req["stream"])
}

func Test_stream_002(t *testing.T) {
	assert := assert.New(t)
	server, _ := sseServer(t, http.StatusOK,
		`{"type":"response.output_text.delta","output_index":0,"delta":"a"}`,
		`{"type":"response.output_text.delta","output_index":0,"delta":"b"}`,
	)
	c, err := New(server.URL, "test-key")
	require.NoError(t, err)

	// An error from the callback stops the stream and is returned
	stop := errors.New("client gone")
	count := 0
	err = c.Stream(context.Background(), schema.ProviderRequest{Model: "m"}, func(schema.ProviderEvent) error {
		count++
		return stop
	})
	assert.ErrorIs(err, stop)
	assert.Equal(1, count)
}

func Test_stream_003(t *testing.T) {
	assert := assert.New(t)
	server, _ := sseServer(t, http.StatusInternalServerError)
	c, err := New(server.URL, "test-key")
	require.NoError(t, err)

	// A failed request is an error, and no events are produced
	err = c.Stream(context.Background(), schema.ProviderRequest{Model: "m"}, func(schema.ProviderEvent) error {
		t.Error("unexpected event")
		return nil
	})
	assert.Error(err)

	// Key is required
	_, err = New(server.URL, "")
	assert.ErrorIs(err, aitoolkit.ErrNotConfigured)
	assert.True(strings.HasPrefix(EndPoint, "https://"))
}
