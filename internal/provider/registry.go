package provider

import (
	"fmt"
	"sync"

	"github.com/seenimoa/tickerscan/pkg/models"
)

// ErrAdapterNotFound is returned when a requested adapter is not registered.
type ErrAdapterNotFound struct {
	ID models.ProviderID
}

func (e *ErrAdapterNotFound) Error() string {
	return fmt.Sprintf("adapter %q not found", e.ID)
}

// Registry is a thread-safe, ordered set of adapters. Iteration follows
// registration order, which is also the order of dispatched results.
type Registry struct {
	mu       sync.RWMutex
	order    []models.ProviderID
	adapters map[models.ProviderID]Adapter
}

// NewRegistry creates a registry holding the given adapters.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	r := &Registry{adapters: make(map[models.ProviderID]Adapter)}
	for _, a := range adapters {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends an adapter. Each provider ID may be registered once.
func (r *Registry) Register(a Adapter) error {
	id := a.ID()
	if id == "" {
		return fmt.Errorf("adapter ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.adapters[id]; ok {
		return fmt.Errorf("adapter %q already registered", id)
	}
	r.adapters[id] = a
	r.order = append(r.order, id)
	return nil
}

// Get returns an adapter by ID.
func (r *Registry) Get(id models.ProviderID) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[id]
	if !ok {
		return nil, &ErrAdapterNotFound{ID: id}
	}
	return a, nil
}

// Adapters returns the registered adapters in registration order.
func (r *Registry) Adapters() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Adapter, len(r.order))
	for i, id := range r.order {
		out[i] = r.adapters[id]
	}
	return out
}

// IDs returns the registered provider IDs in registration order.
func (r *Registry) IDs() []models.ProviderID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ProviderID, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
