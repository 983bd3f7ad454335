package main

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"time"

	// Packages
	httprouter "github.com/mutablelogic/go-server/pkg/httprouter"
	httpserver "github.com/mutablelogic/go-server/pkg/httpserver"
	aitoolkit "github.com/ueberdosis/go-aitoolkit"
	httphandler "github.com/ueberdosis/go-aitoolkit/pkg/httphandler"
	manager "github.com/ueberdosis/go-aitoolkit/pkg/manager"
	openai "github.com/ueberdosis/go-aitoolkit/pkg/provider/openai"
	ratelimit "github.com/ueberdosis/go-aitoolkit/pkg/ratelimit"
	tool "github.com/ueberdosis/go-aitoolkit/pkg/tool"
	version "github.com/ueberdosis/go-aitoolkit/pkg/version"
	errgroup "golang.org/x/sync/errgroup"
)

type ServerCommands struct {
	RunServer RunServer `cmd:"" name:"run" help:"Run server." group:"SERVER"`
}

type RunServer struct {
	// OpenAI
	OpenAI struct {
		APIKey          string `name:"api-key" env:"OPENAI_API_KEY" help:"OpenAI API key"`
		Endpoint        string `name:"endpoint" env:"OPENAI_ENDPOINT" help:"OpenAI API endpoint"`
		Model           string `name:"model" env:"OPENAI_MODEL" default:"${model}" help:"Model name"`
		ReasoningEffort string `name:"reasoning-effort" env:"OPENAI_REASONING_EFFORT" help:"Reasoning effort for reasoning models"`
	} `embed:"" prefix:"openai."`

	// Session
	Instructions   string        `name:"instructions" env:"AITOOLKIT_INSTRUCTIONS" help:"System instructions"`
	Tools          string        `name:"tools" env:"AITOOLKIT_TOOLS" help:"Tool catalogue (YAML or JSON) replacing the editor tools"`
	SessionTimeout time.Duration `name:"session-timeout" env:"AITOOLKIT_SESSION_TIMEOUT" default:"0" help:"End a session when the provider is silent for this long (0 disables)"`

	// Rate limiting
	RateLimit struct {
		Redis  string        `name:"redis" env:"REDIS_URL,UPSTASH_REDIS_REST_URL" help:"Redis URL for shared rate limit counters"`
		Limit  int           `name:"limit" env:"RATELIMIT_LIMIT" default:"15" help:"Requests per client per window (0 disables)"`
		Window time.Duration `name:"window" env:"RATELIMIT_WINDOW" default:"60s" help:"Rate limit window"`
	} `embed:"" prefix:"ratelimit."`

	// TLS server options
	TLS struct {
		ServerName string `name:"name" help:"TLS server name"`
		CertFile   string `name:"cert" help:"TLS certificate file"`
		KeyFile    string `name:"key" help:"TLS key file"`
	} `embed:"" prefix:"tls."`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *RunServer) Run(ctx *Globals) error {
	return cmd.WithManager(ctx, func(manager *manager.Manager, limiter *ratelimit.Limiter) error {
		return cmd.Serve(ctx, manager, limiter, version.Version())
	})
}

// WithManager creates the manager and its collaborators, invokes fn, then
// closes the manager regardless of whether fn returned an error.
func (cmd *RunServer) WithManager(ctx *Globals, fn func(*manager.Manager, *ratelimit.Limiter) error) error {
	opts := []manager.Opt{
		manager.WithLogger(ctx.logger),
		manager.WithModel(cmd.OpenAI.Model),
		manager.WithInstructions(cmd.Instructions),
		manager.WithReasoningEffort(cmd.OpenAI.ReasoningEffort),
		manager.WithSessionTimeout(cmd.SessionTimeout),
	}
	if ctx.tracer != nil {
		opts = append(opts, manager.WithTracer(ctx.tracer))
	}

	// A missing key does not stop the server; chat requests fail instead
	if provider, err := openai.New(cmd.OpenAI.Endpoint, cmd.OpenAI.APIKey, ctx.clientOpts()...); errors.Is(err, aitoolkit.ErrNotConfigured) {
		ctx.logger.Warn("OpenAI API key is not set, chat requests will fail")
	} else if err != nil {
		return fmt.Errorf("failed to create OpenAI client: %w", err)
	} else {
		opts = append(opts, manager.WithProvider(provider))
	}

	// Tool catalogue
	if cmd.Tools != "" {
		toolkit, err := tool.ReadFile(cmd.Tools)
		if err != nil {
			return fmt.Errorf("failed to read tools: %w", err)
		}
		opts = append(opts, manager.WithToolkit(toolkit))
	}

	// Rate limiter
	var limiter *ratelimit.Limiter
	if cmd.RateLimit.Limit > 0 {
		var err error
		limiter, err = ratelimit.New(ratelimit.WithLogger(ctx.logger), ratelimit.WithRedis(cmd.RateLimit.Redis))
		if err != nil {
			return fmt.Errorf("failed to create rate limiter: %w", err)
		}
		opts = append(opts, manager.WithLimiter(limiter, cmd.RateLimit.Limit, cmd.RateLimit.Window))
	}

	// Create the manager
	manager, err := manager.New(opts...)
	if err != nil {
		if limiter != nil {
			limiter.Close()
		}
		return err
	}
	defer manager.Close()

	// Run with the manager
	return fn(manager, limiter)
}

// Serve creates the httpserver instance, and blocks until context
// cancellation (e.g. SIGINT). The rate limiter's pruning runs alongside.
func (cmd *RunServer) Serve(ctx *Globals, manager *manager.Manager, limiter *ratelimit.Limiter, versionTag string) error {
	tlsConfig, err := cmd.tlsConfig()
	if err != nil {
		return err
	}

	// Create the HTTP router
	router, err := httprouter.NewRouter(ctx.ctx, ctx.HTTP.Prefix, ctx.HTTP.Origin, httphandler.ServiceName, versionTag)
	if err != nil {
		return err
	} else if err := httphandler.RegisterHandlers(manager, router, true); err != nil {
		return err
	}

	// Create the server
	httpserver, err := httpserver.New(ctx.HTTP.Addr, router, tlsConfig)
	if err != nil {
		return err
	}

	// Run the server and the limiter until the context is cancelled
	group, groupCtx := errgroup.WithContext(ctx.ctx)
	if limiter != nil {
		group.Go(func() error {
			return limiter.Run(groupCtx)
		})
	}
	group.Go(func() error {
		return httpserver.Run(groupCtx)
	})

	ctx.logger.Info("server started", "name", ctx.execName, "version", versionTag, "addr", ctx.HTTP.Addr, "model", manager.Model(), "tools", manager.Toolkit().Len())
	if err := group.Wait(); err != nil {
		return err
	}

	// Return success
	ctx.logger.Info("server stopped", "name", ctx.execName, "version", versionTag)
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// tlsConfig returns nil unless a certificate or key is set
func (cmd *RunServer) tlsConfig() (*tls.Config, error) {
	if cmd.TLS.CertFile == "" && cmd.TLS.KeyFile == "" {
		return nil, nil
	}
	var pemData [][]byte
	for _, path := range []string{cmd.TLS.CertFile, cmd.TLS.KeyFile} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read TLS file: %w", err)
		}
		pemData = append(pemData, data)
	}
	config, err := httpserver.TLSConfig(cmd.TLS.ServerName, false, pemData...)
	if err != nil {
		return nil, fmt.Errorf("failed to create TLS config: %w", err)
	}
	return config, nil
}
