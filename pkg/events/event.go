package events

import (
	"encoding/json"
	"time"

	"github.com/Ramsey-B/fern/pkg/prefill"
	"github.com/google/uuid"
)

// EventTypeMappingsChanged is sent in the event-type header of every message.
const EventTypeMappingsChanged = "prefill.mappings.changed"

// Header keys
const (
	HeaderEventType   = "event-type"
	HeaderNodeID      = "node-id"
	HeaderTraceParent = "traceparent"
)

// MappingsChangedEvent is published after a node's mapping set was persisted.
// Mappings holds the complete set after the change.
type MappingsChangedEvent struct {
	ID            string             `json:"id"`
	NodeID        string             `json:"node_id"`
	Action        string             `json:"action"`
	TargetFieldID string             `json:"target_field_id,omitempty"`
	Mappings      prefill.MappingSet `json:"mappings"`
	Timestamp     time.Time          `json:"timestamp"`
}

// NewMappingsChangedEvent builds the event for a store change.
func NewMappingsChangedEvent(change prefill.Change) *MappingsChangedEvent {
	mappings := change.Mappings
	if mappings == nil {
		mappings = prefill.MappingSet{}
	}

	return &MappingsChangedEvent{
		ID:            uuid.NewString(),
		NodeID:        change.NodeID,
		Action:        string(change.Action),
		TargetFieldID: change.TargetFieldID,
		Mappings:      mappings,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON serializes the event
func (e *MappingsChangedEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ParseMappingsChangedEvent parses a raw Kafka message value
func ParseMappingsChangedEvent(data []byte) (*MappingsChangedEvent, error) {
	var event MappingsChangedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
