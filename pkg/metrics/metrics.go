// Package metrics provides Prometheus metrics for the Fern service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderCallsTotal tracks data source provider calls by status
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "datasource",
			Name:      "provider_calls_total",
			Help:      "Total number of data source provider calls by status",
		},
		[]string{"provider", "status"},
	)

	// ProviderCallDuration tracks provider call duration in seconds
	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "datasource",
			Name:      "provider_call_duration_seconds",
			Help:      "Duration of data source provider calls in seconds",
			Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"provider"},
	)

	// ProviderSourcesReturned tracks how many data sources each provider returns
	ProviderSourcesReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "datasource",
			Name:      "sources_returned",
			Help:      "Number of data sources returned per provider call",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"provider"},
	)

	// MappingMutationsTotal tracks prefill mapping mutations
	MappingMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "prefill",
			Name:      "mutations_total",
			Help:      "Total number of prefill mapping mutations by operation",
		},
		[]string{"operation"},
	)

	// MappingPersistTotal tracks persistence writes of mapping sets
	MappingPersistTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "prefill",
			Name:      "persist_total",
			Help:      "Total number of mapping set persistence writes by status",
		},
		[]string{"status"},
	)

	// MappingRestoreTotal tracks restores of persisted mapping sets
	MappingRestoreTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "prefill",
			Name:      "restore_total",
			Help:      "Total number of mapping set restores by outcome",
		},
		[]string{"outcome"},
	)

	// GraphFetchTotal tracks graph source fetches
	GraphFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "graph",
			Name:      "fetch_total",
			Help:      "Total number of graph fetches by outcome",
		},
		[]string{"outcome"},
	)

	// KafkaMessagesPublished tracks Kafka messages published
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)

	// KafkaPublishDuration tracks Kafka publish duration
	KafkaPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "kafka",
			Name:      "publish_duration_seconds",
			Help:      "Duration of Kafka publish operations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
	)

	// BackendOperationDuration tracks key-value backend operation duration
	BackendOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "backend",
			Name:      "operation_duration_seconds",
			Help:      "Duration of prefill backend operations in seconds",
			Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5},
		},
		[]string{"backend", "operation"},
	)
)

// RecordProviderCall records a data source provider call
func RecordProviderCall(provider, status string, sources int, durationSeconds float64) {
	ProviderCallsTotal.WithLabelValues(provider, status).Inc()
	ProviderCallDuration.WithLabelValues(provider).Observe(durationSeconds)
	ProviderSourcesReturned.WithLabelValues(provider).Observe(float64(sources))
}

// RecordMappingMutation records a mapping store mutation
func RecordMappingMutation(operation string) {
	MappingMutationsTotal.WithLabelValues(operation).Inc()
}

// RecordMappingPersist records a mapping set persistence write
func RecordMappingPersist(status string) {
	MappingPersistTotal.WithLabelValues(status).Inc()
}

// RecordMappingRestore records the outcome of restoring a mapping set
func RecordMappingRestore(outcome string) {
	MappingRestoreTotal.WithLabelValues(outcome).Inc()
}

// RecordGraphFetch records a graph source fetch
func RecordGraphFetch(outcome string) {
	GraphFetchTotal.WithLabelValues(outcome).Inc()
}

// RecordKafkaPublish records a Kafka publish operation
func RecordKafkaPublish(topic, status string, durationSeconds float64) {
	KafkaMessagesPublished.WithLabelValues(topic, status).Inc()
	KafkaPublishDuration.Observe(durationSeconds)
}

// RecordBackendOperation records a key-value backend operation
func RecordBackendOperation(backend, operation string, durationSeconds float64) {
	BackendOperationDuration.WithLabelValues(backend, operation).Observe(durationSeconds)
}
