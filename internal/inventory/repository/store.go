package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

// GormStore binds every repository to one *gorm.DB, which is either the
// pool or an open transaction.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store over db
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates or updates every inventory table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Part{},
		&domain.Warehouse{},
		&domain.WarehouseZone{},
		&domain.WarehouseBin{},
		&domain.Check{},
		&domain.CheckItem{},
		&domain.CheckComment{},
		&domain.Adjustment{},
		&domain.AdjustmentItem{},
		&domain.AdjustmentComment{},
		&domain.StockTransaction{},
		&domain.StockAlert{},
	)
}

func (s *GormStore) Parts() domain.PartRepository {
	return NewGormPartRepositoryWithTracing(s.db)
}

func (s *GormStore) Warehouses() domain.WarehouseRepository {
	return NewGormWarehouseRepository(s.db)
}

func (s *GormStore) Checks() domain.CheckRepository {
	return NewGormCheckRepository(s.db)
}

func (s *GormStore) Adjustments() domain.AdjustmentRepository {
	return NewGormAdjustmentRepository(s.db)
}

func (s *GormStore) Transactions() domain.StockTransactionRepository {
	return NewGormStockTransactionRepositoryWithTracing(s.db)
}

func (s *GormStore) Alerts() domain.AlertRepository {
	return NewGormAlertRepository(s.db)
}

func (s *GormStore) Codes() domain.CodeRepository {
	return NewGormCodeRepository(s.db)
}

// Transaction runs fn in a transaction. On a store that is already
// transactional gorm issues a SAVEPOINT, so a failing fn only rolls back its
// own writes.
func (s *GormStore) Transaction(ctx context.Context, fn func(tx domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
