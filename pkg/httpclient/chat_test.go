package httpclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	// Packages
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
	aitoolkit "github.com/ueberdosis/go-aitoolkit"
	httpclient "github.com/ueberdosis/go-aitoolkit/pkg/httpclient"
	httphandler "github.com/ueberdosis/go-aitoolkit/pkg/httphandler"
	manager "github.com/ueberdosis/go-aitoolkit/pkg/manager"
	schema "github.com/ueberdosis/go-aitoolkit/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// MOCK PROVIDER

type mockProvider struct {
	events []schema.ProviderEvent
	input  []schema.InputItem
}

func (p *mockProvider) Name() string { return "mock" }

func (p *mockProvider) Stream(_ context.Context, req schema.ProviderRequest, fn schema.ProviderEventFn) error {
	p.input = req.Input
	for _, event := range p.events {
		if err := fn(event); err != nil {
			return err
		}
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// HELPERS

func newTestServer(t *testing.T, provider *mockProvider) *httpclient.Client {
	t.Helper()
	var opts []manager.Opt
	if provider != nil {
		opts = append(opts, manager.WithProvider(provider))
	}
	m, err := manager.New(opts...)
	require.NoError(t, err)

	t.Cleanup(func() { m.Close() })

	mux := http.NewServeMux()
	path, handler, _ := httphandler.HealthHandler(m)
	mux.HandleFunc(path, handler)
	path, handler, _ = httphandler.ToolListHandler(m)
	mux.HandleFunc(path, handler)
	path, handler, _ = httphandler.ChatHandler(m)
	mux.HandleFunc(path, handler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := httpclient.New(srv.URL)
	require.NoError(t, err)
	return c
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_client_001(t *testing.T) {
	assert := assert.New(t)
	c := newTestServer(t, nil)

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(schema.StatusRunning, health.Status)
	assert.Equal(httphandler.ServiceName, health.Name)

	tools, err := c.ListTools(context.Background())
	require.NoError(t, err)
	assert.EqualValues(len(tools.Body), tools.Count)
	assert.NotZero(tools.Count)
}

func Test_client_002(t *testing.T) {
	assert := assert.New(t)
	provider := &mockProvider{events: []schema.ProviderEvent{
		schema.ProviderTextDelta{Delta: "Hello"},
		schema.ProviderTextDelta{Delta: " there"},
		schema.ProviderItemAdded{OutputIndex: 1, Item: schema.ProviderItem{
			Type: schema.ItemTypeFunctionCall, ID: "fc_call_9", CallID: "call_9", Name: "readSelection",
		}},
		schema.ProviderArgumentsDelta{OutputIndex: 1, Delta: `{}`},
		schema.ProviderArgumentsDone{OutputIndex: 1, Arguments: `{}`},
		schema.ProviderCompleted{},
	}}
	c := newTestServer(t, provider)

	var text strings.Builder
	var calls []schema.Event
	err := c.Chat(context.Background(), []schema.Message{schema.NewMessage(schema.RoleUser, "hi")}, func(event schema.Event) error {
		switch event.Type {
		case schema.EventTextDelta:
			text.WriteString(event.Delta)
		case schema.EventToolInputAvailable:
			calls = append(calls, event)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal("Hello there", text.String())
	require.Len(t, calls, 1)
	assert.Equal("call_9", calls[0].ToolCallID)
	assert.Equal("fc_call_9", calls[0].ItemID)
	assert.Len(provider.input, 1)
}

func Test_client_003(t *testing.T) {
	assert := assert.New(t)
	provider := &mockProvider{events: []schema.ProviderEvent{
		schema.ProviderTextDelta{Delta: "partial"},
		schema.ProviderError{Code: "server_error", Message: "upstream failed"},
	}}
	c := newTestServer(t, provider)

	var events int
	err := c.Chat(context.Background(), nil, func(schema.Event) error {
		events++
		return nil
	})
	assert.ErrorIs(err, aitoolkit.ErrProvider)
	assert.Contains(err.Error(), "upstream failed")
	assert.Equal(2, events)
}

func Test_client_004(t *testing.T) {
	assert := assert.New(t)

	// No provider configured: the bridge answers 500 before streaming
	c := newTestServer(t, nil)
	err := c.Chat(context.Background(), []schema.Message{schema.NewMessage(schema.RoleUser, "hi")}, nil)
	assert.Error(err)
}
