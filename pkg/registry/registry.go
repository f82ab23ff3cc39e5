// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"music-store-agent/internal/common/validation"
)

//go:embed tools.json
var embedded []byte

// LoadRegistry reads a registry file. An empty path returns the embedded registry.
func LoadRegistry(path string) (*ToolRegistry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Default returns the registry compiled into the binary.
func Default() (*ToolRegistry, error) {
	return Parse(embedded)
}

func Parse(data []byte) (*ToolRegistry, error) {
	var reg ToolRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse tool registry: %w", err)
	}

	seen := make(map[string]bool, len(reg.Tools))
	for _, t := range reg.Tools {
		if t.Name == "" {
			return nil, fmt.Errorf("tool registry: tool without a name")
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("tool registry: duplicate tool %s", t.Name)
		}
		seen[t.Name] = true
	}
	return &reg, nil
}

func (r *ToolRegistry) Lookup(name string) (Tool, bool) {
	for _, t := range r.Tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

func (r *ToolRegistry) Names() []string {
	names := make([]string, len(r.Tools))
	for i, t := range r.Tools {
		names[i] = t.Name
	}
	return names
}

// Schemas compiles the input schema of every tool, keyed by tool name.
func (r *ToolRegistry) Schemas() (map[string]*validation.Schema, error) {
	schemas := make(map[string]*validation.Schema, len(r.Tools))
	for _, t := range r.Tools {
		s, err := validation.Compile(t.Name, t.InputSchema)
		if err != nil {
			return nil, err
		}
		schemas[t.Name] = s
	}
	return schemas, nil
}
