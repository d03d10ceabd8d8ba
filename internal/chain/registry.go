package chain

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages the chains known to the client.
//
// Chains are keyed by id; the network name is a secondary key used by the
// command line. Both must be unique.
type Registry struct {
	mu     sync.RWMutex
	chains map[uint64]Chain
}

// NewRegistry creates a new, empty chain registry.
func NewRegistry() *Registry {
	return &Registry{
		chains: make(map[uint64]Chain),
	}
}

// Register adds a chain to the registry.
//
// Returns an error if a chain with the same id or network name is already registered.
func (r *Registry) Register(c Chain) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.chains[c.ID]; exists {
		return fmt.Errorf("chain %d already registered", c.ID)
	}
	for _, existing := range r.chains {
		if existing.Network == c.Network {
			return fmt.Errorf("network %s already registered", c.Network)
		}
	}

	r.chains[c.ID] = c
	return nil
}

// Get returns a chain by id.
//
// Returns an error if no chain with the given id is registered.
func (r *Registry) Get(id uint64) (Chain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.chains[id]
	if !exists {
		return Chain{}, fmt.Errorf("chain %d not found", id)
	}
	return c, nil
}

// Lookup returns a chain by network name.
func (r *Registry) Lookup(network string) (Chain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.chains {
		if c.Network == network {
			return c, nil
		}
	}
	return Chain{}, fmt.Errorf("network %s not found", network)
}

// Available returns all registered chains sorted by id.
func (r *Registry) Available() []Chain {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chains := make([]Chain, 0, len(r.chains))
	for _, c := range r.chains {
		chains = append(chains, c)
	}
	sort.Slice(chains, func(i, j int) bool { return chains[i].ID < chains[j].ID })
	return chains
}

// Unregister removes a chain from the registry.
//
// Returns an error if no chain with the given id is registered.
func (r *Registry) Unregister(id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.chains[id]; !exists {
		return fmt.Errorf("chain %d not found", id)
	}

	delete(r.chains, id)
	return nil
}

// DefaultRegistry holds the two networks spanned by the bridge.
var DefaultRegistry = NewRegistry()

func init() {
	for _, c := range []Chain{Sepolia, Shibuya} {
		if err := DefaultRegistry.Register(c); err != nil {
			panic(fmt.Sprintf("failed to register chain %s: %v", c.Name, err))
		}
	}
}
