package fragment

import (
	"context"
	"sync"
)

// View is the lifecycle contract for section behavior. Init runs after the
// section markup is rendered; Teardown runs before the next section
// replaces it.
type View interface {
	Init(ctx context.Context) error
	Teardown()
}

// ViewFunc adapts a bare init function into a View with a no-op Teardown.
type ViewFunc func(ctx context.Context) error

// Init runs the wrapped function.
func (f ViewFunc) Init(ctx context.Context) error { return f(ctx) }

// Teardown is a no-op.
func (ViewFunc) Teardown() {}

// Registry maps section names to their views. Lookups never derive names
// from the section token; only explicit registrations resolve.
type Registry struct {
	mu    sync.RWMutex
	views map[string]View
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{views: make(map[string]View)}
}

// Register binds a view to a section name, replacing any previous binding.
func (r *Registry) Register(section string, v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[section] = v
}

// Lookup returns the view for a section, if one is registered.
func (r *Registry) Lookup(section string) (View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.views[section]
	return v, ok
}

// Sections returns the registered section names.
func (r *Registry) Sections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.views))
	for name := range r.views {
		names = append(names, name)
	}
	return names
}
