package carrier

import (
	"fmt"
	"sync"
)

// Registry manages registered carrier providers. It is built once at
// startup and read-only afterward.
type Registry struct {
	providers map[string]Provider
	order     []string
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider. Registering the same carrier id twice is a
// configuration error.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := p.Name()
	if _, exists := r.providers[name]; exists {
		return NewError(KindConfiguration, name,
			fmt.Sprintf("carrier %q already registered", name))
	}
	r.providers[name] = p
	r.order = append(r.order, name)
	return nil
}

// Get returns a provider by carrier id.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.providers[name]; ok {
		return p, nil
	}
	return nil, NewError(KindCarrierUnavailable, name,
		fmt.Sprintf("carrier %q is not registered", name))
}

// ProvidersFor returns all providers supporting the given operation, in
// registration order.
func (r *Registry) ProvidersFor(op Operation) []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Provider, 0, len(r.order))
	for _, name := range r.order {
		if p := r.providers[name]; p.Supports(op) {
			result = append(result, p)
		}
	}
	return result
}

// Names returns the ids of all registered carriers in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Count returns the number of registered carriers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
