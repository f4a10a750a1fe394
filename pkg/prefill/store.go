package prefill

import (
	"context"
	"sync"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Store owns the mapping set of a single node.
//
// None of its operations return errors. A missing or corrupt persisted set
// restores as empty, and a failed write is logged while the in-memory set
// keeps the change. When the backend cannot be read the store starts empty
// and retries the read on every later call; until a read succeeds nothing is
// written back.
type Store struct {
	nodeID   string
	backend  Backend
	notifier ChangeNotifier
	logger   ectologger.Logger

	mu       sync.Mutex
	mappings MappingSet
	initial  MappingSet
	// loaded is false until the persisted set has been read successfully.
	// An unloaded store never writes, so an unreadable record is not replaced.
	loaded bool
}

type StoreOption func(*storeOptions)

type storeOptions struct {
	initial  MappingSet
	notifier ChangeNotifier
}

// WithInitialMappings seeds the store when nothing has been persisted for the node.
func WithInitialMappings(mappings ...PrefillMapping) StoreOption {
	return func(o *storeOptions) {
		o.initial = append(MappingSet{}, mappings...)
	}
}

// WithChangeNotifier reports every persisted mutation to notifier.
func WithChangeNotifier(notifier ChangeNotifier) StoreOption {
	return func(o *storeOptions) {
		o.notifier = notifier
	}
}

// NewStore creates the store for nodeID and restores its persisted mappings.
func NewStore(ctx context.Context, nodeID string, backend Backend, logger ectologger.Logger, opts ...StoreOption) *Store {
	s := newStore(nodeID, backend, logger, opts...)
	s.ensureLoaded(ctx)
	return s
}

func newStore(nodeID string, backend Backend, logger ectologger.Logger, opts ...StoreOption) *Store {
	options := storeOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	return &Store{
		nodeID:   nodeID,
		backend:  backend,
		notifier: options.notifier,
		logger:   logger,
		mappings: MappingSet{},
		initial:  options.initial,
	}
}

// ensureLoaded restores the persisted set unless that already happened.
func (s *Store) ensureLoaded(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load(ctx)
}

// load must be called with the lock held. The read ignores cancellation of
// ctx so that an abandoned request does not leave the store unloaded.
func (s *Store) load(ctx context.Context) {
	if s.loaded {
		return
	}

	ctx, span := tracing.StartSpan(context.WithoutCancel(ctx), "prefill.RestoreMappings")
	defer span.End()

	restored, err := s.restore(ctx)
	if err != nil {
		return
	}
	s.loaded = true

	switch {
	case restored != nil:
		s.mappings = restored
	case len(s.initial) > 0:
		s.mappings = append(MappingSet{}, s.initial...)
		s.persist(ctx)
	}
}

// NodeID returns the id of the node that owns the mappings.
func (s *Store) NodeID() string {
	return s.nodeID
}

// Mappings returns a copy of the current mapping set in order.
func (s *Store) Mappings() MappingSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load(context.Background())
	return append(MappingSet{}, s.mappings...)
}

// GetMapping returns the mapping for targetFieldID and whether it exists.
func (s *Store) GetMapping(targetFieldID string) (PrefillMapping, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load(context.Background())
	i := s.mappings.IndexOf(targetFieldID)
	if i < 0 {
		return PrefillMapping{}, false
	}
	return s.mappings[i], true
}

// AddMapping inserts mapping, replacing any existing mapping for the same
// target field at its current position.
func (s *Store) AddMapping(ctx context.Context, mapping PrefillMapping) {
	ctx, span := tracing.StartSpan(ctx, "prefill.AddMapping")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.load(ctx)
	s.mappings = s.mappings.Upsert(mapping)
	metrics.RecordMappingMutation(string(ChangeActionUpsert))

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"node_id":         s.nodeID,
		"target_field_id": mapping.TargetFieldID,
		"source_node_id":  mapping.SourceNodeID,
		"source_field_id": mapping.SourceFieldID,
	}).Debug("Upserted prefill mapping")

	s.commit(ctx, ChangeActionUpsert, mapping.TargetFieldID)
}

// RemoveMapping deletes the mapping for targetFieldID. Removing a field that
// has no mapping changes nothing.
func (s *Store) RemoveMapping(ctx context.Context, targetFieldID string) {
	ctx, span := tracing.StartSpan(ctx, "prefill.RemoveMapping")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.load(ctx)
	if s.mappings.IndexOf(targetFieldID) < 0 {
		return
	}

	s.mappings = s.mappings.Without(targetFieldID)
	metrics.RecordMappingMutation(string(ChangeActionRemove))

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"node_id":         s.nodeID,
		"target_field_id": targetFieldID,
	}).Debug("Removed prefill mapping")

	s.commit(ctx, ChangeActionRemove, targetFieldID)
}

// ClearMappings empties the mapping set.
func (s *Store) ClearMappings(ctx context.Context) {
	ctx, span := tracing.StartSpan(ctx, "prefill.ClearMappings")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.load(ctx)
	s.mappings = MappingSet{}
	metrics.RecordMappingMutation(string(ChangeActionClear))

	s.logger.WithContext(ctx).WithField("node_id", s.nodeID).Debug("Cleared prefill mappings")

	s.commit(ctx, ChangeActionClear, "")
}

// commit persists the current set and notifies listeners. Must be called with
// the lock held.
func (s *Store) commit(ctx context.Context, action ChangeAction, targetFieldID string) {
	if !s.loaded {
		s.logger.WithContext(ctx).WithField("node_id", s.nodeID).Warn("Stored prefill mappings could not be read, keeping change in memory only")
		return
	}

	if !s.persist(ctx) || s.notifier == nil {
		return
	}

	change := Change{
		NodeID:        s.nodeID,
		Action:        action,
		TargetFieldID: targetFieldID,
		Mappings:      append(MappingSet{}, s.mappings...),
	}
	if err := s.notifier.MappingsChanged(ctx, change); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"node_id": s.nodeID,
			"action":  action,
		}).Warn("Failed to publish prefill mapping change")
	}
}

func (s *Store) persist(ctx context.Context) bool {
	value, err := s.mappings.Encode()
	if err != nil {
		metrics.RecordMappingPersist("error")
		s.logger.WithContext(ctx).WithError(err).WithField("node_id", s.nodeID).Error("Failed to encode prefill mappings")
		return false
	}

	if err := s.backend.Set(ctx, StorageKey(s.nodeID), value); err != nil {
		metrics.RecordMappingPersist("error")
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"node_id": s.nodeID,
			"key":     StorageKey(s.nodeID),
		}).Error("Failed to persist prefill mappings")
		return false
	}

	metrics.RecordMappingPersist("success")
	return true
}

// restore loads the persisted set. A nil set with a nil error means there is
// nothing usable stored; an error means the backend could not be read.
func (s *Store) restore(ctx context.Context) (MappingSet, error) {
	key := StorageKey(s.nodeID)

	value, found, err := s.backend.Get(ctx, key)
	if err != nil {
		metrics.RecordMappingRestore("error")
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"node_id": s.nodeID,
			"key":     key,
		}).Error("Failed to read stored prefill mappings")
		return nil, err
	}

	if !found {
		metrics.RecordMappingRestore("missing")
		return nil, nil
	}

	set, err := DecodeMappingSet(value)
	if err != nil {
		metrics.RecordMappingRestore("corrupt")
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"node_id": s.nodeID,
			"key":     key,
		}).Warn("Stored prefill mappings are corrupt, starting empty")
		return nil, nil
	}

	metrics.RecordMappingRestore("restored")
	return set, nil
}
