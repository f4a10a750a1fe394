package events

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/prefill"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher sends mapping change events to Kafka. It implements
// prefill.ChangeNotifier.
type Publisher struct {
	writer MessageWriter
	logger ectologger.Logger
	config PublisherConfig
}

var _ prefill.ChangeNotifier = (*Publisher)(nil)

// NewPublisher creates a publisher backed by a kafka.Writer
func NewPublisher(config PublisherConfig, logger ectologger.Logger) (*Publisher, error) {
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if config.Topic == "" {
		return nil, fmt.Errorf("a topic is required")
	}

	var compression kafka.Compression
	switch config.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "snappy":
		compression = kafka.Snappy
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	default:
		compression = 0
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(config.Brokers...),
		Topic:                  config.Topic,
		Balancer:               &kafka.Hash{}, // all events of a node land on one partition
		BatchSize:              config.BatchSize,
		BatchTimeout:           config.BatchTimeout,
		MaxAttempts:            config.MaxAttempts,
		WriteTimeout:           config.WriteTimeout,
		Async:                  config.Async,
		Compression:            compression,
		RequiredAcks:           kafka.RequiredAcks(config.RequiredAcks),
		AllowAutoTopicCreation: true,
	}

	return NewPublisherWithWriter(writer, config, logger), nil
}

// NewPublisherWithWriter creates a publisher on top of an existing writer
func NewPublisherWithWriter(writer MessageWriter, config PublisherConfig, logger ectologger.Logger) *Publisher {
	return &Publisher{
		writer: writer,
		logger: logger,
		config: config,
	}
}

// MappingsChanged publishes the change keyed by node id.
func (p *Publisher) MappingsChanged(ctx context.Context, change prefill.Change) error {
	ctx, span := tracing.StartSpan(ctx, "events.MappingsChanged")
	defer span.End()

	event := NewMappingsChangedEvent(change)
	msg, err := p.buildMessage(ctx, event)
	if err != nil {
		return err
	}

	start := time.Now()
	err = p.writer.WriteMessages(ctx, msg)
	duration := time.Since(start).Seconds()
	if err != nil {
		metrics.RecordKafkaPublish(p.config.Topic, "error", duration)
		return fmt.Errorf("failed to publish mapping change: %w", err)
	}
	metrics.RecordKafkaPublish(p.config.Topic, "success", duration)

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"event_id": event.ID,
		"node_id":  event.NodeID,
		"action":   event.Action,
		"topic":    p.config.Topic,
	}).Debug("Published prefill mapping change")

	return nil
}

func (p *Publisher) buildMessage(ctx context.Context, event *MappingsChangedEvent) (kafka.Message, error) {
	data, err := event.ToJSON()
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to serialize mapping change: %w", err)
	}

	headers := []kafka.Header{
		{Key: HeaderEventType, Value: []byte(EventTypeMappingsChanged)},
		{Key: HeaderNodeID, Value: []byte(event.NodeID)},
	}
	if traceParent := tracing.TraceParent(ctx); traceParent != "" {
		headers = append(headers, kafka.Header{Key: HeaderTraceParent, Value: []byte(traceParent)})
	}

	return kafka.Message{
		Key:     []byte(event.NodeID),
		Value:   data,
		Headers: headers,
		Time:    event.Timestamp,
	}, nil
}

// GetName implements startup.StartupDependency
func (p *Publisher) GetName() string {
	return "kafka"
}

func (p *Publisher) DependsOn() []string {
	return nil
}

// Start is a no-op; the writer dials brokers lazily on the first write.
func (p *Publisher) Start(ctx context.Context) error {
	p.logger.WithContext(ctx).WithField("topic", p.config.Topic).Info("Kafka publisher ready")
	return nil
}

// Stop flushes pending messages and closes the writer
func (p *Publisher) Stop(ctx context.Context) error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close publisher: %w", err)
	}
	p.logger.WithContext(ctx).Info("Kafka publisher closed")
	return nil
}
