package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

func header(msg *sarama.ProducerMessage, key string) string {
	for _, h := range msg.Headers {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublisher_StockAdjusted(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	var sent *sarama.ProducerMessage
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		sent = msg
		return nil
	})
	p := NewPublisherWithProducer(producer)
	defer p.Close()

	adj := &domain.Adjustment{ID: 4, Code: "ADJ-2025-004", ApprovedBy: "Linh"}
	entries := []domain.StockTransaction{{
		Code: "STK-2025-010", PartID: 9, Direction: domain.DirectionOut,
		Quantity: 10, QuantityBefore: 100, QuantityAfter: 90,
	}}
	require.NoError(t, p.StockAdjusted(context.Background(), adj, entries))

	require.NotNil(t, sent)
	assert.Equal(t, TopicStockAdjusted, sent.Topic)
	assert.Equal(t, EventTypeStockAdjusted, header(sent, "event_type"))
	assert.NotEmpty(t, header(sent, "event_id"))

	key, err := sent.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, "ADJ-2025-004", string(key))

	raw, err := sent.Value.Encode()
	require.NoError(t, err)
	var event StockAdjustedEvent
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, uint(4), event.AdjustmentID)
	require.Len(t, event.Lines, 1)
	assert.Equal(t, "out", event.Lines[0].Direction)
	assert.Equal(t, 90, event.Lines[0].QuantityAfter)
}

func TestPublisher_AlertCountChanged(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event AlertCountUpdatedEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.UnresolvedCount != 3 {
			return errors.New("unexpected count")
		}
		return nil
	})
	p := NewPublisherWithProducer(producer)
	defer p.Close()

	assert.NoError(t, p.AlertCountChanged(context.Background(), 3))
}

func TestPublisher_SendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	p := NewPublisherWithProducer(producer)
	defer p.Close()

	err := p.AlertCountChanged(context.Background(), 1)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}

func TestConsumer_DispatchesByEventType(t *testing.T) {
	c := &Consumer{handlers: make(map[string]EventHandler)}
	var got []Envelope
	c.RegisterHandler(EventTypeStockAdjusted, func(_ context.Context, e Envelope) error {
		got = append(got, e)
		return nil
	})

	message := func(eventType, value string) *sarama.ConsumerMessage {
		headers := []*sarama.RecordHeader{{Key: []byte("event_id"), Value: []byte("evt-1")}}
		if eventType != "" {
			headers = append(headers, &sarama.RecordHeader{Key: []byte("event_type"), Value: []byte(eventType)})
		}
		return &sarama.ConsumerMessage{
			Topic:   TopicStockAdjusted,
			Key:     []byte("ADJ-2025-001"),
			Value:   []byte(value),
			Headers: headers,
		}
	}
	ctx := context.Background()

	require.NoError(t, c.dispatch(ctx, message(EventTypeStockAdjusted, `{"adjustment_code":"ADJ-2025-001"}`)))
	assert.ErrorIs(t, c.dispatch(ctx, message(EventTypeStockAdjusted, `not json`)), errInvalidJSON)
	assert.ErrorIs(t, c.dispatch(ctx, message(EventTypeAlertCountUpdated, `{}`)), errNoHandler)
	assert.ErrorIs(t, c.dispatch(ctx, message("", `{}`)), errNoEventType)

	require.Len(t, got, 1)
	assert.Equal(t, "evt-1", got[0].EventID)
	assert.Equal(t, "ADJ-2025-001", got[0].Key)
	var event StockAdjustedEvent
	require.NoError(t, got[0].Decode(&event))
	assert.Equal(t, "ADJ-2025-001", event.AdjustmentCode)

	c.RegisterHandler(AnyEvent, func(_ context.Context, e Envelope) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, c.dispatch(ctx, message(EventTypeAlertCountUpdated, `{}`)))
	assert.Len(t, got, 2)
}

func TestConsumer_HandlerErrorIsReturned(t *testing.T) {
	c := &Consumer{handlers: make(map[string]EventHandler)}
	boom := errors.New("boom")
	c.RegisterHandler(AnyEvent, func(context.Context, Envelope) error { return boom })

	err := c.dispatch(context.Background(), &sarama.ConsumerMessage{
		Topic:   TopicAlertCountUpdated,
		Value:   []byte(`{"count":1}`),
		Headers: []*sarama.RecordHeader{{Key: []byte("event_type"), Value: []byte(EventTypeAlertCountUpdated)}},
	})

	assert.ErrorIs(t, err, boom)
}
