package schema

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	StatusRunning = "running"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// HealthResponse is the liveness response
type HealthResponse struct {
	Status  string `json:"status"`
	Name    string `json:"name"`
	Message string `json:"message,omitempty"`
	Version string `json:"version,omitempty"`
}

// ListToolResponse is the tool catalogue
type ListToolResponse struct {
	Count uint             `json:"count"`
	Body  []ToolDefinition `json:"body,omitzero"`
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r HealthResponse) String() string {
	return Stringify(r)
}

func (r ListToolResponse) String() string {
	return Stringify(r)
}
