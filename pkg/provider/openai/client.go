/*
openai implements a streaming client for the OpenAI Responses API
https://platform.openai.com/docs/api-reference/responses
*/
package openai

import (
	// Packages
	client "github.com/mutablelogic/go-client"
	aitoolkit "github.com/ueberdosis/go-aitoolkit"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Client struct {
	*client.Client
}

var _ aitoolkit.Provider = (*Client)(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	EndPoint    = "https://api.openai.com/v1"
	defaultName = "openai"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a client with the given API key. An empty endpoint selects
// the OpenAI API.
func New(endpoint, apiKey string, opts ...client.ClientOpt) (*Client, error) {
	if apiKey == "" {
		return nil, aitoolkit.ErrNotConfigured.With("OpenAI API key")
	}
	if endpoint == "" {
		endpoint = EndPoint
	}
	opts = append(opts, client.OptEndpoint(endpoint))
	opts = append(opts, client.OptReqToken(client.Token{
		Scheme: client.Bearer,
		Value:  apiKey,
	}))
	c, err := client.New(opts...)
	if err != nil {
		return nil, err
	}

	// Return the client
	return &Client{c}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Name returns the provider name
func (*Client) Name() string {
	return defaultName
}
