package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

// AnyEvent registers a handler for every event type without its own handler.
const AnyEvent = "*"

var (
	errNoEventType = errors.New("message without event_type header")
	errNoHandler   = errors.New("no handler registered")
	errInvalidJSON = errors.New("payload is not valid JSON")
)

// EventHandler handles one received event. The payload is still encoded.
type EventHandler func(ctx context.Context, event Envelope) error

// Consumer reads inventory events as a member of a consumer group and
// dispatches them by event_type header.
type Consumer struct {
	group   sarama.ConsumerGroup
	groupID string
	topics  []string

	mu       sync.RWMutex
	handlers map[string]EventHandler
}

// NewConsumer joins groupID on brokers, starting from the newest offsets.
func NewConsumer(brokers []string, groupID string, topics []string) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_6_0_0
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Str("group_id", groupID).
		Strs("topics", topics).
		Msg("Kafka consumer initialized")

	return &Consumer{
		group:    group,
		groupID:  groupID,
		topics:   topics,
		handlers: make(map[string]EventHandler),
	}, nil
}

// RegisterHandler sets the handler for eventType, replacing any previous one.
func (c *Consumer) RegisterHandler(eventType string, handler EventHandler) {
	c.mu.Lock()
	c.handlers[eventType] = handler
	c.mu.Unlock()

	logger.Logger.Debug().Str("event_type", eventType).Msg("Event handler registered")
}

func (c *Consumer) lookup(eventType string) (EventHandler, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if h, ok := c.handlers[eventType]; ok {
		return h, true
	}
	h, ok := c.handlers[AnyEvent]
	return h, ok
}

// Run consumes until ctx is cancelled. Group errors are logged, not returned.
func (c *Consumer) Run(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			logger.Logger.Error().Err(err).Str("group_id", c.groupID).Msg("Consumer error")
		}
	}()

	logger.Logger.Info().
		Strs("topics", c.topics).
		Str("group_id", c.groupID).
		Msg("Kafka consumer started")

	for ctx.Err() == nil {
		// Consume returns on every rebalance and must be called again.
		if err := c.group.Consume(ctx, c.topics, c); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			logger.Logger.Error().Err(err).Msg("Error from consumer")
		}
	}
	return nil
}

// Close leaves the group.
func (c *Consumer) Close() error {
	if c.group == nil {
		return nil
	}
	return c.group.Close()
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error { return nil }
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks every message, including ones that failed to dispatch.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := c.dispatch(session.Context(), message); err != nil {
			logger.Logger.Warn().
				Err(err).
				Str("topic", message.Topic).
				Int64("offset", message.Offset).
				Msg("Event skipped")
		}
		session.MarkMessage(message, "")
	}
	return nil
}

func (c *Consumer) dispatch(ctx context.Context, message *sarama.ConsumerMessage) error {
	headers := make(map[string]string, len(message.Headers))
	for _, h := range message.Headers {
		headers[string(h.Key)] = string(h.Value)
	}

	carrier := propagation.MapCarrier{}
	for _, key := range []string{"traceparent", "tracestate"} {
		if v, ok := headers[key]; ok {
			carrier[key] = v
		}
	}
	ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)

	eventType, eventID := headers["event_type"], headers["event_id"]
	ctx, span := otel.Tracer("kafka-consumer").Start(ctx, "kafka.consume."+message.Topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.source", message.Topic),
			attribute.Int("messaging.kafka.partition", int(message.Partition)),
			attribute.Int64("messaging.kafka.offset", message.Offset),
			attribute.String("event.type", eventType),
			attribute.String("event.id", eventID),
		),
	)
	defer span.End()

	err := c.deliver(ctx, eventType, Envelope{
		EventID:   eventID,
		EventType: eventType,
		Topic:     message.Topic,
		Key:       string(message.Key),
		Payload:   json.RawMessage(message.Value),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("event %s (%s): %w", eventID, eventType, err)
	}

	logger.Debug(ctx).
		Str("event_type", eventType).
		Str("event_id", eventID).
		Msg("Event handled")
	return nil
}

func (c *Consumer) deliver(ctx context.Context, eventType string, event Envelope) error {
	if eventType == "" {
		return errNoEventType
	}
	handler, ok := c.lookup(eventType)
	if !ok {
		return errNoHandler
	}
	if !json.Valid(event.Payload) {
		return errInvalidJSON
	}
	return handler(ctx, event)
}
