package prefill

import (
	"context"
	"sync"

	"github.com/Gobusters/ectologger"
)

// Registry hands out exactly one Store per node id so that concurrent callers
// share the same critical section for a node's mappings.
type Registry struct {
	backend Backend
	logger  ectologger.Logger
	opts    []StoreOption

	mu     sync.Mutex
	stores map[string]*Store
}

func NewRegistry(backend Backend, logger ectologger.Logger, opts ...StoreOption) *Registry {
	return &Registry{
		backend: backend,
		logger:  logger,
		opts:    opts,
		stores:  make(map[string]*Store),
	}
}

// Store returns the store for nodeID. The first call for a node restores it
// from the backend under that store's own lock, so a slow read only holds up
// callers of the same node.
func (r *Registry) Store(ctx context.Context, nodeID string) *Store {
	r.mu.Lock()
	store, ok := r.stores[nodeID]
	if !ok {
		store = newStore(nodeID, r.backend, r.logger, r.opts...)
		r.stores[nodeID] = store
	}
	r.mu.Unlock()

	store.ensureLoaded(ctx)
	return store
}
