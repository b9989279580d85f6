package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

// Publisher wraps Kafka producer
type Publisher struct {
	producer sarama.SyncProducer
	now      func() time.Time
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Msg("Kafka publisher initialized")

	return NewPublisherWithProducer(producer), nil
}

// NewPublisherWithProducer wraps an existing producer
func NewPublisherWithProducer(producer sarama.SyncProducer) *Publisher {
	return &Publisher{
		producer: producer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AlertCountChanged publishes the unresolved alert count
func (p *Publisher) AlertCountChanged(ctx context.Context, count int64) error {
	event := AlertCountUpdatedEvent{
		EventID:         uuid.NewString(),
		EventType:       EventTypeAlertCountUpdated,
		UnresolvedCount: count,
		Timestamp:       p.now(),
	}
	return p.publish(ctx, TopicAlertCountUpdated, event.EventType, event.EventID, "alerts", event,
		attribute.Int64("alerts.unresolved", count),
	)
}

// StockAdjusted publishes the ledger entries of an approved adjustment
func (p *Publisher) StockAdjusted(ctx context.Context, adj *domain.Adjustment, entries []domain.StockTransaction) error {
	event := StockAdjustedEvent{
		EventID:        uuid.NewString(),
		EventType:      EventTypeStockAdjusted,
		AdjustmentID:   adj.ID,
		AdjustmentCode: adj.Code,
		ApprovedBy:     adj.ApprovedBy,
		Lines:          make([]StockLineEvent, 0, len(entries)),
		Timestamp:      p.now(),
	}
	for _, e := range entries {
		event.Lines = append(event.Lines, StockLineEvent{
			TransactionCode: e.Code,
			PartID:          e.PartID,
			Direction:       string(e.Direction),
			Quantity:        e.Quantity,
			QuantityBefore:  e.QuantityBefore,
			QuantityAfter:   e.QuantityAfter,
		})
	}
	return p.publish(ctx, TopicStockAdjusted, event.EventType, event.EventID, adj.Code, event,
		attribute.Int64("adjustment.id", int64(adj.ID)),
		attribute.String("adjustment.code", adj.Code),
		attribute.Int("ledger.entries", len(entries)),
	)
}

func (p *Publisher) publish(ctx context.Context, topic, eventType, eventID, key string, event any, attrs ...attribute.KeyValue) error {
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish."+eventType,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", topic),
			attribute.String("messaging.destination_kind", "topic"),
			attribute.String("event.type", eventType),
			attribute.String("event.id", eventID),
		),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	eventBytes, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Inject trace context into Kafka headers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(eventType)},
		{Key: []byte("event_id"), Value: []byte(eventID)},
	}
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(eventBytes),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		logger.Error(ctx).
			Err(err).
			Str("topic", topic).
			Str("event_id", eventID).
			Msg("Failed to publish event")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	span.SetStatus(codes.Ok, "Event published successfully")

	logger.Info(ctx).
		Str("event_id", eventID).
		Str("event_type", eventType).
		Str("topic", topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Event published")
	return nil
}

// Close closes the Kafka producer
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// LogBroadcaster stands in for the publisher when Kafka is disabled.
type LogBroadcaster struct{}

func (LogBroadcaster) AlertCountChanged(ctx context.Context, count int64) error {
	logger.Info(ctx).Int64("unresolved_count", count).Msg("Unresolved stock alerts changed")
	return nil
}

func (LogBroadcaster) StockAdjusted(ctx context.Context, adj *domain.Adjustment, entries []domain.StockTransaction) error {
	logger.Info(ctx).Str("code", adj.Code).Int("entries", len(entries)).Msg("Stock adjusted")
	return nil
}
