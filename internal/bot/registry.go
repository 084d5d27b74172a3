package bot

import (
	"fmt"
	"slices"
	"sync"
)

// Registry holds registered modules in registration order.
// Module names are unique.
type Registry struct {
	mu      sync.RWMutex
	modules []Module
	names   map[string]struct{}
}

// NewRegistry creates a new module registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make([]Module, 0),
		names:   make(map[string]struct{}),
	}
}

// Register adds a module to the registry. It panics when a module with the
// same name is already registered, as two modules would claim the same
// commands.
func (r *Registry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.names[m.Name()]; dup {
		panic(fmt.Sprintf("bot: module %q registered twice", m.Name()))
	}
	r.names[m.Name()] = struct{}{}
	r.modules = append(r.modules, m)
}

// Modules returns a snapshot of all registered modules.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.modules)
}

// Global registry for module self-registration from init().
var globalRegistry = NewRegistry()

// Register adds a module to the global registry.
func Register(m Module) {
	globalRegistry.Register(m)
}

// Modules returns all modules from the global registry.
func Modules() []Module {
	return globalRegistry.Modules()
}

// ResetGlobalRegistry resets the global registry. Tests only.
func ResetGlobalRegistry() {
	globalRegistry = NewRegistry()
}
