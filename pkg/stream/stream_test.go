package stream_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	// Packages
	assert "github.com/stretchr/testify/assert"
	schema "github.com/ueberdosis/go-aitoolkit/pkg/schema"
	stream "github.com/ueberdosis/go-aitoolkit/pkg/stream"
)

func Test_stream_001(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	w := stream.NewWriter(&buf)
	assert.NoError(w.Write(schema.NewTextDelta("Hel")))
	assert.NoError(w.Write(schema.NewToolInputStart("call_1", "foo")))
	assert.NoError(w.Write(schema.NewFinishStep()))
	assert.NoError(w.Write(schema.NewFinish()))
	assert.True(w.Closed())

	assert.Equal(strings.Join([]string{
		`data: "Hel"`, ``,
		`data: {"type":"tool-input-start","toolCallId":"call_1","toolName":"foo"}`, ``,
		`data: {"type":"finish-step"}`, ``,
		`data: {"type":"finish"}`, ``,
		`data: [DONE]`, ``, ``,
	}, "\n"), buf.String())

	// Nothing more is written after a terminal event
	assert.Error(w.Write(schema.NewTextDelta("lo")))
	assert.Error(w.Write(schema.NewError("late")))
	assert.True(strings.HasSuffix(buf.String(), "data: [DONE]\n\n"))
}

func Test_stream_002(t *testing.T) {
	assert := assert.New(t)

	// An error is terminal and has no sentinel
	var buf bytes.Buffer
	w := stream.NewWriter(&buf)
	assert.NoError(w.Write(schema.NewError("AI service error: boom")))
	assert.Error(w.Write(schema.NewFinish()))
	assert.Equal("data: {\"type\":\"error\",\"error\":\"AI service error: boom\"}\n\n", buf.String())
}

func Test_stream_003(t *testing.T) {
	assert := assert.New(t)

	// Headers are set and each frame is flushed as it is written
	rec := httptest.NewRecorder()
	w := stream.NewWriter(rec)
	assert.Equal("text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal("no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal("keep-alive", rec.Header().Get("Connection"))

	assert.NoError(w.Write(schema.NewTextDelta("x")))
	assert.True(rec.Flushed)
	assert.Equal("data: \"x\"\n\n", rec.Body.String())
}

func Test_stream_004(t *testing.T) {
	assert := assert.New(t)

	// Round trip through the reader
	var buf bytes.Buffer
	w := stream.NewWriter(&buf)
	events := []schema.Event{
		schema.NewTextDelta("line one\n\nline two"),
		schema.NewToolInputStart("call_1", "foo"),
		schema.NewToolInputDelta("call_1", `{"a":`),
		schema.NewToolInputAvailable("call_1", "foo", json.RawMessage(`{"a":1}`), "fc_call_1"),
		schema.NewFinishStep(),
		schema.NewFinish(),
	}
	for _, event := range events {
		assert.NoError(w.Write(event))
	}

	result, err := stream.ReadAll(&buf)
	assert.NoError(err)
	if assert.Len(result, len(events)) {
		assert.Equal("line one\n\nline two", result[0].Delta)
		assert.Equal(`{"a":`, result[2].Delta)
		assert.JSONEq(`{"a":1}`, string(result[3].Input))
		assert.Equal("fc_call_1", result[3].ItemID)
		assert.Equal(schema.EventFinish, result[5].Type)
	}
}

func Test_stream_005(t *testing.T) {
	assert := assert.New(t)

	// A stream without a terminal signal is reported
	_, err := stream.ReadAll(strings.NewReader("data: \"x\"\n\n"))
	assert.ErrorIs(err, io.ErrUnexpectedEOF)

	// An error frame ends the stream
	result, err := stream.ReadAll(strings.NewReader("data: {\"type\":\"error\",\"error\":\"x\"}\n\ndata: \"ignored\"\n\n"))
	assert.NoError(err)
	assert.Len(result, 1)

	// A malformed frame is an error
	_, err = stream.ReadAll(strings.NewReader("data: {bad\n\n"))
	assert.Error(err)
}
