package manager

import (
	"context"
	"errors"
	"log/slog"
	"time"

	// Packages
	uuid "github.com/google/uuid"
	otel "github.com/mutablelogic/go-client/pkg/otel"
	aitoolkit "github.com/ueberdosis/go-aitoolkit"
	normalize "github.com/ueberdosis/go-aitoolkit/pkg/normalize"
	schema "github.com/ueberdosis/go-aitoolkit/pkg/schema"
	translator "github.com/ueberdosis/go-aitoolkit/pkg/translator"
	attribute "go.opentelemetry.io/otel/attribute"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// watchdog cancels a session when no provider event arrives in time
type watchdog struct {
	timer   *time.Timer
	timeout time.Duration
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Ready returns ErrNotConfigured if chat requests cannot be served
func (m *Manager) Ready() error {
	if m.provider == nil {
		return aitoolkit.ErrNotConfigured.With("OpenAI API key is not configured")
	}
	return nil
}

// Admit returns ErrTooManyRequests when the client identified by key has
// exceeded its rate limit
func (m *Manager) Admit(ctx context.Context, key string) error {
	if m.limiter == nil {
		return nil
	}
	if !m.limiter.Admit(ctx, key, m.limit, m.window) {
		m.logger.InfoContext(ctx, "rate limit exceeded", "client", key, "limit", m.limit, "window", m.window)
		return aitoolkit.ErrTooManyRequests.Withf("client %q", key)
	}
	return nil
}

// Chat runs one streaming session: the messages are sent to the provider,
// and the normalized events are written to the sink as they are produced.
// Errors before the stream starts are returned and nothing is written.
// Errors during the stream are written as the terminal error event; an
// error is returned only when the sink fails.
func (m *Manager) Chat(ctx context.Context, messages []schema.Message, sink aitoolkit.Sink) (err error) {
	if err := m.Ready(); err != nil {
		return err
	} else if sink == nil {
		return aitoolkit.ErrBadParameter.With("sink is required")
	}

	// Otel span
	session := uuid.NewString()
	ctx, endSpan := otel.StartSpan(m.tracer, ctx, "Chat",
		attribute.String("session", session),
		attribute.String("model", m.model),
		attribute.Int("messages", len(messages)),
	)
	defer func() { endSpan(err) }()

	logger := m.logger.With("session", session)
	tr, err := translator.New(translator.WithLogger(logger))
	if err != nil {
		return err
	}

	req := schema.ProviderRequest{
		Model:           m.model,
		Instructions:    m.instructions,
		Input:           normalize.Messages(messages),
		Tools:           m.toolkit.Definitions(),
		ReasoningEffort: m.reasoningEffort,
	}
	logger.InfoContext(ctx, "chat started", "provider", m.provider.Name(), "model", m.model, "messages", len(messages), "input", len(req.Input))

	// The session context is cancelled when the provider goes quiet
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	wd := m.newWatchdog(cancel)
	defer wd.Stop()

	// Events are written one at a time, as they are translated
	var sinkErr error
	emit := func(events []schema.Event) error {
		for _, event := range events {
			if err := sink.Write(event); err != nil {
				sinkErr = err
				return err
			}
			m.logEvent(ctx, logger, event)
		}
		return nil
	}

	streamErr := m.provider.Stream(ctx, req, func(event schema.ProviderEvent) error {
		wd.Reset()
		return emit(tr.Translate(event))
	})
	switch {
	case sinkErr != nil:
		logger.DebugContext(ctx, "client went away", "error", sinkErr)
		return sinkErr
	case streamErr != nil:
		if cause := context.Cause(ctx); errors.Is(cause, aitoolkit.ErrTimeout) {
			streamErr = cause
		}
		if !tr.Done() {
			logger.WarnContext(ctx, "provider stream failed", "error", streamErr)
		}
		return emit(tr.Fail(streamErr))
	default:
		return emit(tr.Close())
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (m *Manager) logEvent(ctx context.Context, logger *slog.Logger, event schema.Event) {
	switch event.Type {
	case schema.EventToolInputAvailable:
		logger.InfoContext(ctx, "tool call", "tool", event.ToolName, "call_id", event.ToolCallID)
		if err := m.toolkit.Validate(event.ToolName, event.Input); err != nil {
			logger.WarnContext(ctx, "tool input does not match schema", "tool", event.ToolName, "call_id", event.ToolCallID, "error", err)
		}
	case schema.EventFinish:
		logger.InfoContext(ctx, "chat finished")
	case schema.EventError:
		logger.WarnContext(ctx, "chat failed", "error", event.Error)
	}
}

func (m *Manager) newWatchdog(cancel context.CancelCauseFunc) *watchdog {
	wd := &watchdog{timeout: m.timeout}
	if wd.timeout > 0 {
		wd.timer = time.AfterFunc(wd.timeout, func() {
			cancel(aitoolkit.ErrTimeout.Withf("no provider event for %v", wd.timeout))
		})
	}
	return wd
}

func (wd *watchdog) Reset() {
	if wd.timer != nil {
		wd.timer.Reset(wd.timeout)
	}
}

func (wd *watchdog) Stop() {
	if wd.timer != nil {
		wd.timer.Stop()
	}
}
