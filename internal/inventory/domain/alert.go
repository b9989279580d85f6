package domain

import "time"

// AlertType of a stock alert.
type AlertType string

const (
	AlertLowStock   AlertType = "LowStock"
	AlertOutOfStock AlertType = "OutOfStock"
)

// StockAlert flags a part whose stock fell to or below its minimum.
type StockAlert struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	PartID          uint       `json:"part_id" gorm:"not null;index"`
	AlertType       AlertType  `json:"alert_type" gorm:"size:20;not null"`
	Severity        string     `json:"severity" gorm:"size:20;not null"`
	Message         string     `json:"message" gorm:"size:500"`
	CurrentQuantity int        `json:"current_quantity"`
	MinimumQuantity int        `json:"minimum_quantity"`
	AlertDate       time.Time  `json:"alert_date"`
	IsResolved      bool       `json:"is_resolved" gorm:"not null;default:false;index"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
}

func (StockAlert) TableName() string {
	return "inventory_alerts"
}
