package shell

import (
	"strings"
	"sync"
)

// Registry maps shell names to factories. Names are case-insensitive and
// keep the order in which they were first registered.
type Registry struct {
	mu        sync.RWMutex
	names     []string
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for name. Replacing a factory keeps
// the name's original position.
func (r *Registry) Register(name string, f Factory) {
	name = normalizeName(name)
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[name]; !ok {
		r.names = append(r.names, name)
	}
	r.factories[name] = f
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[normalizeName(name)]
	return f, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// normalizeName folds names so "ReadLine " and "readline" are the same shell.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
