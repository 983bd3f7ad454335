package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	// Packages
	httpclient "github.com/ueberdosis/go-aitoolkit/pkg/httpclient"
	schema "github.com/ueberdosis/go-aitoolkit/pkg/schema"
	tool "github.com/ueberdosis/go-aitoolkit/pkg/tool"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type ClientCommands struct {
	Ask   AskCommand   `cmd:"" name:"ask" help:"Send a prompt to a running server and print the stream." group:"CLIENT"`
	Tools ToolsCommand `cmd:"" name:"tools" help:"Print the tool catalogue." group:"CLIENT"`
}

type AskCommand struct {
	Prompt []string `arg:"" name:"prompt" help:"Prompt text"`
	URL    string   `name:"url" env:"AITOOLKIT_URL" default:"http://localhost:8000" help:"Server URL"`
}

type ToolsCommand struct {
	File string `name:"file" env:"AITOOLKIT_TOOLS" help:"Tool catalogue (YAML or JSON); the editor tools when empty"`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *AskCommand) Run(ctx *Globals) error {
	client, err := httpclient.New(cmd.URL, ctx.clientOpts()...)
	if err != nil {
		return err
	}

	// Text goes to stdout, tool calls are summarised on stderr
	messages := []schema.Message{
		schema.NewMessage(schema.RoleUser, strings.Join(cmd.Prompt, " ")),
	}
	err = client.Chat(ctx.ctx, messages, func(event schema.Event) error {
		switch event.Type {
		case schema.EventTextDelta:
			fmt.Print(event.Delta)
		case schema.EventToolInputAvailable:
			fmt.Fprintf(os.Stderr, "\n[tool] %s(%s) id=%s\n", event.ToolName, event.Input, event.ToolCallID)
		case schema.EventFinish:
			fmt.Println()
		}
		return nil
	})
	if err != nil {
		fmt.Println()
	}
	return err
}

func (cmd *ToolsCommand) Run(ctx *Globals) error {
	var toolkit *tool.Toolkit
	var err error
	if cmd.File != "" {
		toolkit, err = tool.ReadFile(cmd.File)
	} else {
		toolkit, err = tool.Default()
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(toolkit.Definitions())
}
