package kafka

import (
	"encoding/json"
	"time"
)

// AlertCountUpdatedEvent carries the number of open stock alerts
type AlertCountUpdatedEvent struct {
	EventID         string    `json:"event_id"`
	EventType       string    `json:"event_type"`
	UnresolvedCount int64     `json:"unresolved_count"`
	Timestamp       time.Time `json:"timestamp"`
}

// StockAdjustedEvent describes one approved adjustment and its ledger entries
type StockAdjustedEvent struct {
	EventID        string           `json:"event_id"`
	EventType      string           `json:"event_type"`
	AdjustmentID   uint             `json:"adjustment_id"`
	AdjustmentCode string           `json:"adjustment_code"`
	ApprovedBy     string           `json:"approved_by"`
	Lines          []StockLineEvent `json:"lines"`
	Timestamp      time.Time        `json:"timestamp"`
}

// StockLineEvent is one ledger entry of a StockAdjustedEvent
type StockLineEvent struct {
	TransactionCode string `json:"transaction_code"`
	PartID          uint   `json:"part_id"`
	Direction       string `json:"direction"`
	Quantity        int    `json:"quantity"`
	QuantityBefore  int    `json:"quantity_before"`
	QuantityAfter   int    `json:"quantity_after"`
}

// Envelope is a received message before it is decoded by type
type Envelope struct {
	EventID   string
	EventType string
	Topic     string
	Key       string
	Payload   json.RawMessage
}

// Event types
const (
	EventTypeAlertCountUpdated = "inventory.alert_count_updated"
	EventTypeStockAdjusted     = "inventory.stock_adjusted"
)

// Kafka topics
const (
	TopicAlertCountUpdated = "inventory.alert_count_updated"
	TopicStockAdjusted     = "inventory.stock_adjusted"
)

// Topics lists every topic this service produces.
var Topics = []string{TopicAlertCountUpdated, TopicStockAdjusted}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}
