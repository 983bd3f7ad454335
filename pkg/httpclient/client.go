// Package httpclient is a client for a running chat bridge. It posts
// conversations and decodes the event stream the bridge sends back.
package httpclient

import (
	"context"

	// Packages
	client "github.com/mutablelogic/go-client"
	schema "github.com/ueberdosis/go-aitoolkit/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Client is a bridge HTTP client that wraps the base HTTP client
type Client struct {
	*client.Client
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a new client with the given base URL and options, for
// example "http://localhost:8000".
func New(url string, opts ...client.ClientOpt) (*Client, error) {
	c := new(Client)
	if client, err := client.New(append(opts, client.OptEndpoint(url))...); err != nil {
		return nil, err
	} else {
		c.Client = client
	}
	return c, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Health returns the service status
func (c *Client) Health(ctx context.Context) (*schema.HealthResponse, error) {
	var response schema.HealthResponse
	if err := c.DoWithContext(ctx, client.NewRequest(), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// ListTools returns the tools the bridge offers to the model
func (c *Client) ListTools(ctx context.Context) (*schema.ListToolResponse, error) {
	var response schema.ListToolResponse
	if err := c.DoWithContext(ctx, client.NewRequest(), &response, client.OptPath("api", "tools")); err != nil {
		return nil, err
	}
	return &response, nil
}
