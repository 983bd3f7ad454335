package manager

import (
	"io"
	"log/slog"
	"time"

	// Packages
	aitoolkit "github.com/ueberdosis/go-aitoolkit"
	ratelimit "github.com/ueberdosis/go-aitoolkit/pkg/ratelimit"
	tool "github.com/ueberdosis/go-aitoolkit/pkg/tool"
	trace "go.opentelemetry.io/otel/trace"
	noop "go.opentelemetry.io/otel/trace/noop"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Manager holds everything a chat session needs. It is built once at
// process start and shared by all requests.
type Manager struct {
	provider        aitoolkit.Provider
	limiter         aitoolkit.Limiter
	toolkit         *tool.Toolkit
	model           string
	instructions    string
	reasoningEffort string
	limit           int
	window          time.Duration
	timeout         time.Duration
	tracer          trace.Tracer
	logger          *slog.Logger
	closers         []io.Closer
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultModel        = "gpt-5-mini"
	DefaultInstructions = "You are an assistant that can edit rich text documents."
	tracerName          = "github.com/ueberdosis/go-aitoolkit"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a manager. Without a provider, chat requests fail with
// ErrNotConfigured; without a limiter, every request is admitted.
func New(opts ...Opt) (*Manager, error) {
	m := &Manager{
		model:        DefaultModel,
		instructions: DefaultInstructions,
		limit:        ratelimit.DefaultLimit,
		window:       ratelimit.DefaultWindow,
		tracer:       noop.NewTracerProvider().Tracer(tracerName),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	// The editor tools are offered unless another catalogue was set
	if m.toolkit == nil {
		toolkit, err := tool.Default()
		if err != nil {
			return nil, err
		}
		m.toolkit = toolkit
	}

	// Return success
	return m, nil
}

// Close releases the resources which were passed to the manager
func (m *Manager) Close() error {
	var result error
	for _, closer := range m.closers {
		if err := closer.Close(); err != nil && result == nil {
			result = err
		}
	}
	m.closers = nil
	return result
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Provider returns the provider, or nil if none is configured
func (m *Manager) Provider() aitoolkit.Provider {
	return m.provider
}

// Toolkit returns the tools offered to the model
func (m *Manager) Toolkit() *tool.Toolkit {
	return m.toolkit
}

// Model returns the model name
func (m *Manager) Model() string {
	return m.model
}
