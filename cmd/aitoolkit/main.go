package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	// Packages
	kong "github.com/alecthomas/kong"
	client "github.com/mutablelogic/go-client"
	manager "github.com/ueberdosis/go-aitoolkit/pkg/manager"
	trace "go.opentelemetry.io/otel/trace"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type Globals struct {
	// Debugging
	Debug   bool `name:"debug" help:"Enable debug output"`
	Verbose bool `name:"verbose" help:"Enable verbose output"`

	// HTTP server and client options
	HTTP struct {
		Addr    string        `name:"addr" env:"AITOOLKIT_ADDR" default:":8000" help:"HTTP listen address"`
		Prefix  string        `name:"prefix" default:"" help:"HTTP path prefix"`
		Origin  string        `name:"origin" env:"AITOOLKIT_ORIGIN" default:"*" help:"Allowed CORS origin"`
		Timeout time.Duration `name:"timeout" default:"0" help:"HTTP client timeout for non-streaming requests"`
	} `embed:"" prefix:"http."`

	// OpenTelemetry
	OTel struct {
		Endpoint string `name:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" help:"OTLP/HTTP trace collector endpoint"`
		Name     string `name:"name" env:"OTEL_SERVICE_NAME" default:"aitoolkit" help:"Service name for traces"`
	} `embed:"" prefix:"otel."`

	// Context
	ctx      context.Context
	logger   *slog.Logger
	tracer   trace.Tracer
	execName string
}

type CLI struct {
	Globals
	ServerCommands
	ClientCommands
	VersionCommands
}

////////////////////////////////////////////////////////////////////////////////
// MAIN

func main() {
	// Create a cli parser
	cli := CLI{}
	cmd := kong.Parse(&cli,
		kong.Name(execName()),
		kong.Description("AI Toolkit chat bridge"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{
			"model": manager.DefaultModel,
		},
	)

	// Create a context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	cli.Globals.ctx = ctx
	cli.Globals.execName = execName()

	// Create a logger
	level := slog.LevelInfo
	if cli.Debug || cli.Verbose {
		level = slog.LevelDebug
	}
	cli.Globals.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Create a tracer
	if cli.OTel.Endpoint != "" {
		provider, err := newTracerProvider(ctx, cli.OTel.Endpoint, cli.OTel.Name)
		cmd.FatalIfErrorf(err)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				cli.Globals.logger.Warn("tracer shutdown", "error", err)
			}
		}()
		cli.Globals.tracer = provider.Tracer(cli.OTel.Name)
	}

	// Run the command
	if err := cmd.Run(&cli.Globals); err != nil {
		cmd.FatalIfErrorf(err)
		return
	}
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func execName() string {
	// The name of the executable
	name, err := os.Executable()
	if err != nil {
		panic(err)
	} else {
		return filepath.Base(name)
	}
}

func (g *Globals) clientOpts() []client.ClientOpt {
	result := []client.ClientOpt{}
	if g.Debug || g.Verbose {
		result = append(result, client.OptTrace(os.Stderr, g.Verbose))
	}
	if g.tracer != nil {
		result = append(result, client.OptTracer(g.tracer))
	}
	if g.HTTP.Timeout > 0 {
		result = append(result, client.OptTimeout(g.HTTP.Timeout))
	}
	return result
}
