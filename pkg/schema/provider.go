package schema

import (
	"fmt"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// ProviderEvent is one event of a provider stream. The set of variants is
// closed; the unexported marker method prevents other implementations.
type ProviderEvent interface {
	providerEvent()
}

// ProviderEventFn receives provider events in stream order
type ProviderEventFn func(ProviderEvent) error

// ProviderItem is an output item, as announced by item-added and item-done
type ProviderItem struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ProviderTextDelta carries a fragment of output text
type ProviderTextDelta struct {
	OutputIndex int
	Delta       string
}

// ProviderItemAdded announces a new output item at an output index
type ProviderItemAdded struct {
	OutputIndex int
	Item        ProviderItem
}

// ProviderArgumentsDelta carries a fragment of function call arguments
type ProviderArgumentsDelta struct {
	OutputIndex int
	ItemID      string
	Delta       string
}

// ProviderArgumentsDone carries the complete, authoritative arguments
type ProviderArgumentsDone struct {
	OutputIndex int
	ItemID      string
	Arguments   string
}

// ProviderItemDone announces that an output item is complete
type ProviderItemDone struct {
	OutputIndex int
	Item        ProviderItem
}

// ProviderCompleted is the completion signal for the stream
type ProviderCompleted struct {
	ResponseID string
	Status     string
}

// ProviderError is an error reported by the provider within the stream
type ProviderError struct {
	Code    string
	Message string
	Raw     string // Raw event data, used when there is no message
}

// ProviderUnknown is any event type which is not handled
type ProviderUnknown struct {
	Type string
}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ItemTypeFunctionCall = "function_call"
	ItemTypeMessage      = "message"
	ItemTypeReasoning    = "reasoning"
)

var (
	_ ProviderEvent = ProviderTextDelta{}
	_ ProviderEvent = ProviderItemAdded{}
	_ ProviderEvent = ProviderArgumentsDelta{}
	_ ProviderEvent = ProviderArgumentsDone{}
	_ ProviderEvent = ProviderItemDone{}
	_ ProviderEvent = ProviderCompleted{}
	_ ProviderEvent = ProviderError{}
	_ ProviderEvent = ProviderUnknown{}
)

////////////////////////////////////////////////////////////////////////////////
// MARKERS

func (ProviderTextDelta) providerEvent()      {}
func (ProviderItemAdded) providerEvent()      {}
func (ProviderArgumentsDelta) providerEvent() {}
func (ProviderArgumentsDone) providerEvent()  {}
func (ProviderItemDone) providerEvent()       {}
func (ProviderCompleted) providerEvent()      {}
func (ProviderError) providerEvent()          {}
func (ProviderUnknown) providerEvent()        {}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Error returns the message for the error, falling back to a rendering of
// the whole event when the provider did not supply one
func (e ProviderError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Raw != "":
		return e.Raw
	case e.Code != "":
		return e.Code
	default:
		return fmt.Sprintf("%+v", struct {
			Code    string
			Message string
		}{e.Code, e.Message})
	}
}
