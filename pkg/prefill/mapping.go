// Package prefill maintains the field-to-source prefill mappings of a form.
//
// Each form node owns one ordered MappingSet in which a target field appears
// at most once. Adding a mapping for a field that is already mapped replaces
// the existing entry in place; last write wins.
//
// A Store persists the full set after every mutation through a Backend, a
// minimal string key-value contract, under the key "prefill_mappings_<node id>".
package prefill

import (
	"context"
	"encoding/json"
)

// KeyPrefix is prepended to the node id to build the persistence key.
const KeyPrefix = "prefill_mappings_"

// StorageKey returns the persistence key of a node's mapping set.
func StorageKey(nodeID string) string {
	return KeyPrefix + nodeID
}

// PrefillMapping binds a target field to a field of a source node.
type PrefillMapping struct {
	TargetFieldID string `json:"targetFieldId" validate:"required"`
	SourceNodeID  string `json:"sourceNodeId" validate:"required"`
	SourceFieldID string `json:"sourceFieldId" validate:"required"`
}

// MappingSet is the ordered collection of mappings owned by one node.
type MappingSet []PrefillMapping

// IndexOf returns the position of the mapping for targetFieldID, or -1.
func (s MappingSet) IndexOf(targetFieldID string) int {
	for i, mapping := range s {
		if mapping.TargetFieldID == targetFieldID {
			return i
		}
	}
	return -1
}

// Upsert returns a new set with mapping replacing the entry for the same
// target field, or appended when there is none.
func (s MappingSet) Upsert(mapping PrefillMapping) MappingSet {
	updated := append(MappingSet{}, s...)
	if i := updated.IndexOf(mapping.TargetFieldID); i >= 0 {
		updated[i] = mapping
		return updated
	}
	return append(updated, mapping)
}

// Without returns a new set without the mapping for targetFieldID.
func (s MappingSet) Without(targetFieldID string) MappingSet {
	updated := MappingSet{}
	for _, mapping := range s {
		if mapping.TargetFieldID != targetFieldID {
			updated = append(updated, mapping)
		}
	}
	return updated
}

// Encode serializes the set as a JSON array. An empty set encodes as "[]".
func (s MappingSet) Encode() (string, error) {
	if s == nil {
		s = MappingSet{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeMappingSet parses a persisted mapping set. Repeated target fields
// collapse into one entry at the first position, holding the last value.
func DecodeMappingSet(value string) (MappingSet, error) {
	var decoded []PrefillMapping
	if err := json.Unmarshal([]byte(value), &decoded); err != nil {
		return nil, err
	}

	set := MappingSet{}
	for _, mapping := range decoded {
		set = set.Upsert(mapping)
	}
	return set, nil
}

// Backend is the key-value medium mapping sets are persisted to.
type Backend interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// ChangeNotifier is told about every persisted change to a node's mappings.
type ChangeNotifier interface {
	MappingsChanged(ctx context.Context, change Change) error
}

// ChangeAction names the mutation that produced a Change.
type ChangeAction string

const (
	ChangeActionUpsert ChangeAction = "upsert"
	ChangeActionRemove ChangeAction = "remove"
	ChangeActionClear  ChangeAction = "clear"
)

// Change describes a persisted mutation of a node's mapping set.
type Change struct {
	NodeID        string
	Action        ChangeAction
	TargetFieldID string
	Mappings      MappingSet
}
