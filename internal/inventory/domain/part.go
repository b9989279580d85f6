package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Part is a stocked item. QuantityInStock is the single live source of truth
// and is written only by the ledger applier.
type Part struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	PartNumber      string          `json:"part_number" gorm:"size:64;not null;uniqueIndex"`
	PartName        string          `json:"part_name" gorm:"size:255;not null"`
	CostPrice       decimal.Decimal `json:"cost_price" gorm:"type:decimal(18,2);not null;default:0"`
	SellPrice       decimal.Decimal `json:"sell_price" gorm:"type:decimal(18,2);not null;default:0"`
	QuantityInStock int             `json:"quantity_in_stock" gorm:"not null;default:0"`
	MinimumStock    int             `json:"minimum_stock" gorm:"not null;default:0"`
	IsActive        bool            `json:"is_active" gorm:"not null"`
	Version         int             `json:"version" gorm:"not null;default:0"`
	Lifecycle
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Part) TableName() string {
	return "parts"
}

// Warehouse is the top of the storage hierarchy.
type Warehouse struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Code string `json:"code" gorm:"size:32;not null;uniqueIndex"`
	Name string `json:"name" gorm:"size:255;not null"`
	Lifecycle
	CreatedAt time.Time `json:"created_at"`
}

func (Warehouse) TableName() string {
	return "warehouses"
}

// WarehouseZone belongs to a warehouse.
type WarehouseZone struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	WarehouseID uint   `json:"warehouse_id" gorm:"not null;index"`
	Code        string `json:"code" gorm:"size:32;not null"`
	Name        string `json:"name" gorm:"size:255"`
	Lifecycle
	CreatedAt time.Time `json:"created_at"`
}

func (WarehouseZone) TableName() string {
	return "warehouse_zones"
}

// WarehouseBin belongs to a warehouse and optionally to one of its zones.
type WarehouseBin struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	WarehouseID uint   `json:"warehouse_id" gorm:"not null;index"`
	ZoneID      *uint  `json:"zone_id,omitempty" gorm:"index"`
	Code        string `json:"code" gorm:"size:32;not null"`
	Name        string `json:"name" gorm:"size:255"`
	Lifecycle
	CreatedAt time.Time `json:"created_at"`
}

func (WarehouseBin) TableName() string {
	return "warehouse_bins"
}

// Scope narrows a check or ticket to a place in the warehouse hierarchy.
type Scope struct {
	WarehouseID *uint `json:"warehouse_id,omitempty" gorm:"index"`
	ZoneID      *uint `json:"zone_id,omitempty" gorm:"index"`
	BinID       *uint `json:"bin_id,omitempty" gorm:"index"`
}
