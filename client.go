package aitoolkit

import (
	"context"
	"time"

	// Packages
	schema "github.com/ueberdosis/go-aitoolkit/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Provider is the interface that wraps a streaming completion provider
type Provider interface {
	// Return the provider name
	Name() string

	// Stream sends the request and calls fn for each provider event, in
	// order, on the calling goroutine. Returning an error from fn stops
	// the stream. The stream handle is released before Stream returns.
	Stream(ctx context.Context, req schema.ProviderRequest, fn schema.ProviderEventFn) error
}

// Limiter is the interface for per-key admission control
type Limiter interface {
	// Admit increments the count for key and returns false if the count
	// exceeds limit within the window. Infrastructure failures admit.
	Admit(ctx context.Context, key string, limit int, window time.Duration) bool
}

// Sink receives normalized events for one session
type Sink interface {
	// Write one event. An error means the client has gone away.
	Write(schema.Event) error
}
