// Package tool holds the catalogue of client-executed tools offered to the
// model. Tools are only described here; the editor runs them.
package tool

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"io"
	"os"

	// Packages
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	aitoolkit "github.com/ueberdosis/go-aitoolkit"
	schema "github.com/ueberdosis/go-aitoolkit/pkg/schema"
	types "github.com/ueberdosis/go-aitoolkit/pkg/types"
	yaml "gopkg.in/yaml.v3"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Toolkit is an ordered collection of tools with unique names
type Toolkit struct {
	order []string
	tools map[string]*Tool
}

// Tool is a tool definition with its resolved parameter schema
type Tool struct {
	schema.ToolDefinition
	resolved *jsonschema.Resolved
}

// catalogue is the file format
type catalogue struct {
	Tools []schema.ToolDefinition `yaml:"tools"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

//go:embed tools.yaml
var defaultTools []byte

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewToolkit returns a toolkit with the given definitions. Returns an error
// if any name is invalid or duplicated, or any schema does not resolve.
func NewToolkit(defs ...schema.ToolDefinition) (*Toolkit, error) {
	tk := &Toolkit{
		tools: make(map[string]*Tool, len(defs)),
	}
	if err := tk.Register(defs...); err != nil {
		return nil, err
	}
	return tk, nil
}

// Default returns the toolkit of editor tools
func Default() (*Toolkit, error) {
	return Read(bytes.NewReader(defaultTools))
}

// Read returns a toolkit from a YAML or JSON catalogue
func Read(r io.Reader) (*Toolkit, error) {
	var c catalogue
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, aitoolkit.ErrBadParameter.Withf("tool catalogue: %v", err)
	}
	return NewToolkit(c.Tools...)
}

// ReadFile returns a toolkit from a catalogue file
func ReadFile(path string) (*Toolkit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Register adds tools to the toolkit
func (tk *Toolkit) Register(defs ...schema.ToolDefinition) error {
	for _, def := range defs {
		if !types.IsIdentifier(def.Name) {
			return aitoolkit.ErrBadParameter.Withf("invalid tool name: %q", def.Name)
		} else if _, exists := tk.tools[def.Name]; exists {
			return aitoolkit.ErrBadParameter.Withf("duplicate tool name: %q", def.Name)
		}
		if def.Type == "" {
			def.Type = schema.ToolTypeFunction
		} else if def.Type != schema.ToolTypeFunction {
			return aitoolkit.ErrBadParameter.Withf("tool %q: unsupported type %q", def.Name, def.Type)
		}
		if def.Parameters.IsEmpty() {
			def.Parameters = schema.NoParameters
		}

		// Resolve the parameter schema
		var s jsonschema.Schema
		if err := json.Unmarshal(def.Parameters.Bytes(), &s); err != nil {
			return aitoolkit.ErrBadParameter.Withf("tool %q: parameters: %v", def.Name, err)
		}
		resolved, err := s.Resolve(nil)
		if err != nil {
			return aitoolkit.ErrBadParameter.Withf("tool %q: parameters: %v", def.Name, err)
		}

		tk.tools[def.Name] = &Tool{ToolDefinition: def, resolved: resolved}
		tk.order = append(tk.order, def.Name)
	}
	return nil
}

// Lookup returns a tool by name, or nil if not found
func (tk *Toolkit) Lookup(name string) *Tool {
	return tk.tools[name]
}

// Len returns the number of tools
func (tk *Toolkit) Len() int {
	return len(tk.order)
}

// Definitions returns the tool definitions in catalogue order
func (tk *Toolkit) Definitions() []schema.ToolDefinition {
	result := make([]schema.ToolDefinition, 0, len(tk.order))
	for _, name := range tk.order {
		result = append(result, tk.tools[name].ToolDefinition)
	}
	return result
}

// Validate checks tool input against the tool's parameter schema
func (tk *Toolkit) Validate(name string, input json.RawMessage) error {
	t := tk.Lookup(name)
	if t == nil {
		return aitoolkit.ErrNotFound.Withf("tool not found: %q", name)
	}
	return t.Validate(input)
}

// Validate checks input against the parameter schema. Empty input is
// validated as an empty object.
func (t *Tool) Validate(input json.RawMessage) error {
	var instance any = map[string]any{}
	if len(bytes.TrimSpace(input)) > 0 {
		if err := json.Unmarshal(input, &instance); err != nil {
			return aitoolkit.ErrBadParameter.Withf("%s: invalid JSON: %v", t.Name, err)
		}
	}
	if err := t.resolved.Validate(instance); err != nil {
		return aitoolkit.ErrBadParameter.Withf("%s: %v", t.Name, err)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (tk *Toolkit) String() string {
	return schema.Stringify(tk.Definitions())
}
