package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction of a ledger entry.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// RelatedEntityAdjustment tags ledger entries written by ticket approval.
const RelatedEntityAdjustment = EntityAdjustment

// StockTransaction is an append-only ledger entry explaining one change to
// Part.QuantityInStock.
type StockTransaction struct {
	ID                    uint            `json:"id" gorm:"primaryKey"`
	Code                  string          `json:"code" gorm:"size:50;not null;uniqueIndex"`
	PartID                uint            `json:"part_id" gorm:"not null;index"`
	Direction             Direction       `json:"direction" gorm:"size:8;not null"`
	Quantity              int             `json:"quantity" gorm:"not null"`
	QuantityBefore        int             `json:"quantity_before" gorm:"not null"`
	QuantityAfter         int             `json:"quantity_after" gorm:"not null"`
	UnitCost              decimal.Decimal `json:"unit_cost" gorm:"type:decimal(18,2);not null;default:0"`
	UnitPrice             decimal.Decimal `json:"unit_price" gorm:"type:decimal(18,2);not null;default:0"`
	TotalCost             decimal.Decimal `json:"total_cost" gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount           decimal.Decimal `json:"total_amount" gorm:"type:decimal(18,2);not null;default:0"`
	TransactionDate       time.Time       `json:"transaction_date" gorm:"index"`
	ReferenceNumber       string          `json:"reference_number" gorm:"size:50;index"`
	RelatedEntity         string          `json:"related_entity" gorm:"size:64"`
	RelatedEntityID       uint            `json:"related_entity_id"`
	Notes                 string          `json:"notes,omitempty" gorm:"size:1000"`
	ProcessedByEmployeeID *uint           `json:"processed_by_employee_id,omitempty"`
	Lifecycle
	CreatedAt time.Time `json:"created_at"`
}

func (StockTransaction) TableName() string {
	return "stock_transactions"
}

// SignedQuantity is the change this entry applied to stock.
func (t StockTransaction) SignedQuantity() int {
	if t.Direction == DirectionOut {
		return -t.Quantity
	}
	return t.Quantity
}

// DirectionOf derives the ledger direction from a signed change.
func DirectionOf(change int) Direction {
	if change > 0 {
		return DirectionIn
	}
	return DirectionOut
}
