// Package translator turns the multiplexed event stream of a completion
// provider into normalized client events, reassembling tool calls from
// their argument fragments.
package translator

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	// Packages
	aitoolkit "github.com/ueberdosis/go-aitoolkit"
	schema "github.com/ueberdosis/go-aitoolkit/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// State of a translation session
type State int

// Translator holds the state of one streaming session. It is not safe for
// concurrent use; events are processed one at a time, in order.
type Translator struct {
	state  State
	calls  map[int]*PendingCall
	logger *slog.Logger
}

// PendingCall is a tool call being assembled, keyed by output index
type PendingCall struct {
	ItemID    string // Provider item identifier
	CallID    string // Call identifier surfaced to the client
	Name      string // Tool name
	Arguments string // Authoritative arguments, replaced when complete
	Display   string // Concatenated argument deltas, for display only
	Complete  bool
}

// Opt is a functional option for a translator
type Opt func(*Translator) error

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	Streaming State = iota
	Completed
	Failed
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a translator in the streaming state
func New(opts ...Opt) (*Translator, error) {
	t := &Translator{
		calls:  make(map[int]*PendingCall),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// WithLogger sets the logger for dropped and out-of-order events
func WithLogger(logger *slog.Logger) Opt {
	return func(t *Translator) error {
		if logger == nil {
			return aitoolkit.ErrBadParameter.With("logger is required")
		}
		t.logger = logger
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (s State) String() string {
	switch s {
	case Streaming:
		return "streaming"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// State returns the current state
func (t *Translator) State() State {
	return t.state
}

// Done returns true once a terminal event has been produced
func (t *Translator) Done() bool {
	return t.state != Streaming
}

// Pending returns the tool call registered at an output index, or nil
func (t *Translator) Pending(index int) *PendingCall {
	return t.calls[index]
}

// Translate consumes one provider event and returns the normalized events
// it produces, which may be none. Nothing is produced once the session has
// reached a terminal state.
func (t *Translator) Translate(event schema.ProviderEvent) []schema.Event {
	if t.Done() {
		return nil
	}

	switch e := event.(type) {
	case schema.ProviderTextDelta:
		if e.Delta == "" {
			return nil
		}
		return []schema.Event{schema.NewTextDelta(e.Delta)}
	case schema.ProviderItemAdded:
		return t.itemAdded(e)
	case schema.ProviderArgumentsDelta:
		return t.argumentsDelta(e)
	case schema.ProviderArgumentsDone:
		return t.argumentsDone(e)
	case schema.ProviderItemDone:
		// Tool execution belongs to the client
		return nil
	case schema.ProviderCompleted:
		t.state = Completed
		return []schema.Event{schema.NewFinishStep(), schema.NewFinish()}
	case schema.ProviderError:
		t.state = Failed
		return []schema.Event{schema.NewError(e.Error())}
	case schema.ProviderUnknown:
		t.logger.Debug("ignored provider event", "type", e.Type)
		return nil
	default:
		t.logger.Debug("ignored provider event", "event", event)
		return nil
	}
}

// Fail converts a failure outside the event stream (transport, timeout,
// cancellation) into the terminal error event. It returns nothing if the
// session has already ended.
func (t *Translator) Fail(err error) []schema.Event {
	if t.Done() {
		return nil
	}
	if err == nil {
		err = aitoolkit.ErrInternalServerError
	}
	if !errors.Is(err, aitoolkit.ErrProvider) {
		err = aitoolkit.ErrProvider.With(err)
	}
	t.state = Failed
	return []schema.Event{schema.NewError(err.Error())}
}

// Close ends the session. If the provider stream ended without a
// completion or error event, the terminal error event is returned, so that
// every session ends with exactly one terminal signal.
func (t *Translator) Close() []schema.Event {
	if t.Done() {
		return nil
	}
	return t.Fail(aitoolkit.ErrProvider.With("stream ended before completion"))
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (t *Translator) itemAdded(e schema.ProviderItemAdded) []schema.Event {
	if e.Item.Type != schema.ItemTypeFunctionCall {
		return nil
	}

	// An output index is never reused within a session
	if _, exists := t.calls[e.OutputIndex]; exists {
		t.logger.Debug("ignored duplicate item", "output_index", e.OutputIndex, "call_id", e.Item.CallID)
		return nil
	}

	call := &PendingCall{
		ItemID: e.Item.ID,
		CallID: e.Item.CallID,
		Name:   e.Item.Name,
	}
	t.calls[e.OutputIndex] = call
	return []schema.Event{schema.NewToolInputStart(call.CallID, call.Name)}
}

func (t *Translator) argumentsDelta(e schema.ProviderArgumentsDelta) []schema.Event {
	call, exists := t.calls[e.OutputIndex]
	if !exists {
		t.logger.Debug("ignored arguments delta for unregistered index", "output_index", e.OutputIndex)
		return nil
	} else if call.Complete {
		t.logger.Debug("ignored arguments delta for complete call", "output_index", e.OutputIndex, "call_id", call.CallID)
		return nil
	}

	call.Arguments += e.Delta
	call.Display += e.Delta
	return []schema.Event{schema.NewToolInputDelta(call.CallID, e.Delta)}
}

func (t *Translator) argumentsDone(e schema.ProviderArgumentsDone) []schema.Event {
	call, exists := t.calls[e.OutputIndex]
	if !exists {
		t.logger.Debug("ignored arguments done for unregistered index", "output_index", e.OutputIndex)
		return nil
	} else if call.Complete {
		t.logger.Debug("ignored repeated arguments done", "output_index", e.OutputIndex, "call_id", call.CallID)
		return nil
	}

	// The final value replaces whatever the deltas accumulated
	call.Arguments = e.Arguments
	call.Complete = true

	return []schema.Event{schema.NewToolInputAvailable(call.CallID, call.Name, t.parse(call), call.ItemID)}
}

// parse returns the arguments as compact JSON, or an empty object when
// they do not parse
func (t *Translator) parse(call *PendingCall) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(call.Arguments)); err != nil {
		t.logger.Debug("unparseable tool arguments", "call_id", call.CallID, "error", err)
		return json.RawMessage("{}")
	} else if buf.Len() == 0 || buf.String() == "null" {
		return json.RawMessage("{}")
	}
	return buf.Bytes()
}
