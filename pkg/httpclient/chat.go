package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	// Packages
	client "github.com/mutablelogic/go-client"
	aitoolkit "github.com/ueberdosis/go-aitoolkit"
	schema "github.com/ueberdosis/go-aitoolkit/pkg/schema"
	stream "github.com/ueberdosis/go-aitoolkit/pkg/stream"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// EventFn receives each event of a chat stream. Returning an error stops
// the stream and the error is returned from Chat.
type EventFn func(schema.Event) error

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Chat posts the conversation and calls fn for every event until the
// stream ends. An error event is returned as ErrProvider, and a stream
// without a terminal event is an error.
func (c *Client) Chat(ctx context.Context, messages []schema.Message, fn EventFn) error {
	if messages == nil {
		messages = []schema.Message{}
	}
	payload, err := client.NewJSONRequest(schema.ChatRequest{Messages: messages})
	if err != nil {
		return err
	}

	var terminal *schema.Event
	var fnErr error
	callback := func(evt client.TextStreamEvent) error {
		if evt.Data == stream.Done {
			return io.EOF
		}
		var event schema.Event
		if err := json.Unmarshal([]byte(evt.Data), &event); err != nil {
			return err
		}
		if fn != nil {
			if err := fn(event); err != nil {
				fnErr = err
				return io.EOF
			}
		}
		if event.IsTerminal() {
			terminal = &event
			if event.Type == schema.EventError {
				return io.EOF
			}
		}
		return nil
	}

	// Pass a non-nil out so the client proceeds to decode the stream
	var discard struct{}
	if err := c.DoWithContext(ctx, payload, &discard,
		client.OptPath("api", "chat"),
		client.OptReqHeader("Accept", stream.ContentType),
		client.OptTextStreamCallback(callback),
		client.OptNoTimeout(),
	); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	switch {
	case fnErr != nil:
		return fnErr
	case terminal == nil:
		return aitoolkit.ErrProvider.With("stream ended before completion")
	case terminal.Type == schema.EventError:
		return aitoolkit.ErrProvider.With(strings.TrimPrefix(terminal.Error, aitoolkit.ErrProvider.Error()+": "))
	default:
		return nil
	}
}
