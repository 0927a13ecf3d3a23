package tools

import (
	"fmt"
	"strings"
	"sync"

	"intentrouter/internal/logging"
)

// Registry holds tool definitions in configuration order. It is safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*ToolDef
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*ToolDef)}
}

// NewRegistryFromConfig registers every tool in cfg.
func NewRegistryFromConfig(cfg *Config) (*Registry, error) {
	r := NewRegistry()
	if cfg == nil {
		return r, nil
	}
	for i := range cfg.Tools {
		if err := r.Register(cfg.Tools[i]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool. Names must be unique and non-empty.
func (r *Registry) Register(def ToolDef) error {
	if strings.TrimSpace(def.Name) == "" {
		return ErrToolNameEmpty
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, def.Name)
	}
	r.tools[def.Name] = &def
	r.order = append(r.order, def.Name)

	logging.ToolsDebug("Registered tool: %s (endpoint=%v)", def.Name, def.Endpoint != nil)
	return nil
}

// Get returns a tool by name, or nil.
func (r *Registry) Get(name string) *ToolDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	return r.Get(name) != nil
}

// HasEndpoint reports whether name is registered with an HTTP endpoint.
func (r *Registry) HasEndpoint(name string) bool {
	def := r.Get(name)
	return def != nil && def.Endpoint != nil
}

// All returns the tools in registration order.
func (r *Registry) All() []ToolDef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ToolDef, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.tools[name])
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Describe renders "- name: description" lines for prompts.
func (r *Registry) Describe() string {
	var sb strings.Builder
	for _, def := range r.All() {
		fmt.Fprintf(&sb, "- %s: %s\n", def.Name, def.Description)
	}
	return sb.String()
}
