package openai

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
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Stream sends the request and calls fn for each decoded event, in order,
// on the calling goroutine. The stream is closed after a completion or
// error event, when fn returns an error, or when the context is done.
func (c *Client) Stream(ctx context.Context, req schema.ProviderRequest, fn schema.ProviderEventFn) error {
	if fn == nil {
		return aitoolkit.ErrBadParameter.With("stream callback is required")
	}

	payload, err := client.NewJSONRequest(newRequest(req))
	if err != nil {
		return err
	}

	callback := func(evt client.TextStreamEvent) error {
		data := strings.TrimSpace(evt.Data)
		if data == "" {
			return nil
		} else if data == streamDone {
			return io.EOF
		}

		event, err := decodeEvent([]byte(data))
		if err != nil {
			return err
		}
		if err := fn(event); err != nil {
			return err
		}

		// Nothing follows a terminal event
		switch event.(type) {
		case schema.ProviderCompleted, schema.ProviderError:
			return io.EOF
		}
		return nil
	}

	// Pass a non-nil out so the client reaches the text-stream decoder
	var discard struct{}
	if err := c.DoWithContext(ctx, payload, &discard,
		client.OptPath("responses"),
		client.OptReqHeader("Accept", "text/event-stream"),
		client.OptTextStreamCallback(callback),
		client.OptNoTimeout(),
	); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	// Return success
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func newRequest(req schema.ProviderRequest) responsesRequest {
	body := responsesRequest{
		Model:        req.Model,
		Instructions: req.Instructions,
		Input:        req.Input,
		Tools:        req.Tools,
		Stream:       true,
	}
	if body.Input == nil {
		body.Input = []schema.InputItem{}
	}
	if req.ReasoningEffort != "" {
		body.Reasoning = &reasoning{Effort: req.ReasoningEffort}
	}
	return body
}

// decodeEvent returns the provider event for one streamed payload. Types
// which are not read decode to schema.ProviderUnknown.
func decodeEvent(data []byte) (schema.ProviderEvent, error) {
	var ev streamEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, aitoolkit.ErrProvider.Withf("invalid stream event: %v", err)
	}

	switch ev.Type {
	case eventOutputTextDelta:
		return schema.ProviderTextDelta{OutputIndex: ev.OutputIndex, Delta: ev.Delta}, nil
	case eventOutputItemAdded:
		return schema.ProviderItemAdded{OutputIndex: ev.OutputIndex, Item: ev.Item.providerItem()}, nil
	case eventOutputItemDone:
		return schema.ProviderItemDone{OutputIndex: ev.OutputIndex, Item: ev.Item.providerItem()}, nil
	case eventArgumentsDelta:
		return schema.ProviderArgumentsDelta{OutputIndex: ev.OutputIndex, ItemID: ev.ItemID, Delta: ev.Delta}, nil
	case eventArgumentsDone:
		return schema.ProviderArgumentsDone{OutputIndex: ev.OutputIndex, ItemID: ev.ItemID, Arguments: ev.Arguments}, nil
	case eventResponseCompleted, eventResponseIncomplete:
		completed := schema.ProviderCompleted{}
		if ev.Response != nil {
			completed.ResponseID = ev.Response.ID
			completed.Status = ev.Response.Status
		}
		return completed, nil
	case eventError:
		return schema.ProviderError{Code: code(ev.Code), Message: ev.Message, Raw: string(data)}, nil
	case eventResponseError:
		result := schema.ProviderError{Raw: string(data)}
		if ev.Error != nil {
			result.Code, result.Message = code(ev.Error.Code), ev.Error.Message
		}
		return result, nil
	case eventResponseFailed:
		result := schema.ProviderError{Raw: string(data)}
		if ev.Response != nil && ev.Response.Error != nil {
			result.Code, result.Message = code(ev.Response.Error.Code), ev.Response.Error.Message
		}
		return result, nil
	default:
		return schema.ProviderUnknown{Type: ev.Type}, nil
	}
}

func (item *outputItem) providerItem() schema.ProviderItem {
	if item == nil {
		return schema.ProviderItem{}
	}
	return schema.ProviderItem{
		Type:      item.Type,
		ID:        item.ID,
		CallID:    item.CallID,
		Name:      item.Name,
		Arguments: item.Arguments,
	}
}

// code returns an error code, which may be a string, a number or null
func code(data json.RawMessage) string {
	var s string
	if len(data) == 0 {
		return ""
	} else if err := json.Unmarshal(data, &s); err == nil {
		return s
	} else if string(data) == "null" {
		return ""
	}
	return string(data)
}
