package tools

import (
	"context"
	"fmt"
	"sync"
)

// Registry maps tool names to implementations. Registration happens once at
// startup; the set is never mutated at runtime.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register inserts a tool when its name is not already in use.
func (r *Registry) Register(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// MustRegister registers a set of tools, panicking on a duplicate name.
// Registration is static startup wiring; a duplicate is a programming error.
func (r *Registry) MustRegister(tools ...Tool) {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Get fetches a tool by exact name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns all tools in registration order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Execute looks the tool up, validates and defaults its arguments, and runs
// the handler. Validation failures return before the handler sees anything.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (*Output, error) {
	tool, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}

	schema := tool.Schema()
	if err := Validate(args, schema); err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %w", name, err)
	}
	args = ApplyDefaults(args, schema)

	return tool.Execute(ctx, args)
}
