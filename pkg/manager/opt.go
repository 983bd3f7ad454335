package manager

import (
	"io"
	"log/slog"
	"strings"
	"time"

	// Packages
	aitoolkit "github.com/ueberdosis/go-aitoolkit"
	tool "github.com/ueberdosis/go-aitoolkit/pkg/tool"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Opt is a functional option for configuring a manager
type Opt func(*Manager) error

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithProvider sets the completion provider. A provider which implements
// io.Closer is closed with the manager.
func WithProvider(provider aitoolkit.Provider) Opt {
	return func(m *Manager) error {
		if provider == nil {
			return aitoolkit.ErrBadParameter.With("provider is required")
		}
		m.provider = provider
		if closer, ok := provider.(io.Closer); ok {
			m.closers = append(m.closers, closer)
		}
		return nil
	}
}

// WithLimiter sets the rate limiter, and the number of requests admitted
// per client within the window. A limiter which implements io.Closer is
// closed with the manager.
func WithLimiter(limiter aitoolkit.Limiter, limit int, window time.Duration) Opt {
	return func(m *Manager) error {
		if limiter == nil {
			return aitoolkit.ErrBadParameter.With("limiter is required")
		} else if limit <= 0 {
			return aitoolkit.ErrBadParameter.Withf("invalid rate limit %d", limit)
		} else if window <= 0 {
			return aitoolkit.ErrBadParameter.Withf("invalid rate limit window %v", window)
		}
		m.limiter, m.limit, m.window = limiter, limit, window
		if closer, ok := limiter.(io.Closer); ok {
			m.closers = append(m.closers, closer)
		}
		return nil
	}
}

// WithToolkit sets the tools offered to the model
func WithToolkit(toolkit *tool.Toolkit) Opt {
	return func(m *Manager) error {
		if toolkit == nil {
			return aitoolkit.ErrBadParameter.With("toolkit is required")
		}
		m.toolkit = toolkit
		return nil
	}
}

// WithModel sets the model name
func WithModel(model string) Opt {
	return func(m *Manager) error {
		if model = strings.TrimSpace(model); model == "" {
			return aitoolkit.ErrBadParameter.With("model is required")
		}
		m.model = model
		return nil
	}
}

// WithInstructions sets the system instructions. Empty instructions keep
// the default.
func WithInstructions(instructions string) Opt {
	return func(m *Manager) error {
		if instructions = strings.TrimSpace(instructions); instructions != "" {
			m.instructions = instructions
		}
		return nil
	}
}

// WithReasoningEffort sets the reasoning effort for reasoning models
func WithReasoningEffort(effort string) Opt {
	return func(m *Manager) error {
		switch effort {
		case "", "minimal", "low", "medium", "high":
			m.reasoningEffort = effort
			return nil
		default:
			return aitoolkit.ErrBadParameter.Withf("invalid reasoning effort %q", effort)
		}
	}
}

// WithSessionTimeout ends a session with an error when no provider event
// arrives within the duration. Zero disables the timeout.
func WithSessionTimeout(timeout time.Duration) Opt {
	return func(m *Manager) error {
		if timeout < 0 {
			return aitoolkit.ErrBadParameter.Withf("invalid session timeout %v", timeout)
		}
		m.timeout = timeout
		return nil
	}
}

// WithTracer sets the tracer for session spans
func WithTracer(tracer trace.Tracer) Opt {
	return func(m *Manager) error {
		if tracer != nil {
			m.tracer = tracer
		}
		return nil
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Opt {
	return func(m *Manager) error {
		if logger == nil {
			return aitoolkit.ErrBadParameter.With("logger is required")
		}
		m.logger = logger
		return nil
	}
}
