// Package seed loads a demo warehouse hierarchy and parts for local runs.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

// Result counts what one run created.
type Result struct {
	Warehouses int
	Zones      int
	Bins       int
	Parts      int
}

type demoPart struct {
	number  string
	name    string
	cost    string
	sell    string
	qty     int
	minimum int
}

var demoParts = []demoPart{
	{"BRK-PAD-F01", "Front brake pad set", "18.50", "32.00", 40, 10},
	{"OIL-FLT-220", "Oil filter", "3.20", "7.50", 120, 30},
	{"SPK-PLG-IR4", "Iridium spark plug", "6.10", "12.90", 64, 16},
	{"WPR-BLD-600", "Wiper blade 600mm", "4.75", "11.00", 12, 10},
	{"BAT-12V-70A", "Battery 12V 70Ah", "58.00", "95.00", 3, 4},
}

// Run creates the demo data inside one transaction. Rows whose code or part
// number already exist are left untouched, so a second run creates nothing.
func Run(ctx context.Context, db *gorm.DB) (Result, error) {
	var res Result
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		warehouse := domain.Warehouse{Code: "WH-MAIN", Name: "Main workshop store"}
		created, err := firstOrCreate(tx, &warehouse, "code = ?", warehouse.Code)
		if err != nil {
			return err
		}
		if created {
			res.Warehouses++
		}

		zone := domain.WarehouseZone{WarehouseID: warehouse.ID, Code: "Z-A", Name: "Fast movers"}
		if created, err = firstOrCreate(tx, &zone, "warehouse_id = ? AND code = ?", warehouse.ID, zone.Code); err != nil {
			return err
		}
		if created {
			res.Zones++
		}

		for _, code := range []string{"A-01", "A-02"} {
			bin := domain.WarehouseBin{WarehouseID: warehouse.ID, ZoneID: &zone.ID, Code: code, Name: "Shelf " + code}
			if created, err = firstOrCreate(tx, &bin, "warehouse_id = ? AND code = ?", warehouse.ID, code); err != nil {
				return err
			}
			if created {
				res.Bins++
			}
		}

		for _, p := range demoParts {
			part := domain.Part{
				PartNumber:      p.number,
				PartName:        p.name,
				CostPrice:       decimal.RequireFromString(p.cost),
				SellPrice:       decimal.RequireFromString(p.sell),
				QuantityInStock: p.qty,
				MinimumStock:    p.minimum,
				IsActive:        true,
			}
			if created, err = firstOrCreate(tx, &part, "part_number = ?", p.number); err != nil {
				return err
			}
			if created {
				res.Parts++
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("seed demo data: %w", err)
	}

	logger.Info(ctx).
		Int("warehouses", res.Warehouses).
		Int("zones", res.Zones).
		Int("bins", res.Bins).
		Int("parts", res.Parts).
		Msg("Demo data seeded")
	return res, nil
}

// firstOrCreate loads the row matching the condition into dst, or inserts dst.
func firstOrCreate(tx *gorm.DB, dst any, cond string, args ...any) (bool, error) {
	err := tx.Where(cond, args...).First(dst).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := tx.Create(dst).Error; err != nil {
		return false, err
	}
	return true, nil
}
