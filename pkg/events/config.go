package events

import (
	"time"
)

// PublisherConfig configures the Kafka writer behind Publisher.
type PublisherConfig struct {
	Brokers []string
	// Topic receives every mapping change, keyed by node id.
	Topic string

	BatchSize    int
	BatchTimeout time.Duration
	// RequiredAcks is 0 (none), 1 (leader) or -1 (all in-sync replicas).
	RequiredAcks int
	// Async makes MappingsChanged return before the broker acknowledges.
	Async        bool
	MaxAttempts  int
	WriteTimeout time.Duration
	// Compression is one of none, gzip, snappy, lz4 or zstd.
	Compression string
}

// DefaultPublisherConfig publishes synchronously, one change per request, to
// a local broker.
func DefaultPublisherConfig() PublisherConfig {
	return PublisherConfig{
		Brokers:      []string{"localhost:9092"},
		Topic:        "prefill-mappings",
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: 1,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		Compression:  "snappy",
	}
}
