package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

type GormStockTransactionRepository struct {
	db *gorm.DB
}

func NewGormStockTransactionRepository(db *gorm.DB) *GormStockTransactionRepository {
	return &GormStockTransactionRepository{db: db}
}

func (r *GormStockTransactionRepository) CreateBatch(ctx context.Context, entries []domain.StockTransaction) error {
	if len(entries) == 0 {
		return nil
	}
	for i := range entries {
		entries[i].State = domain.LifecycleActive
	}
	return translate(r.db.WithContext(ctx).CreateInBatches(entries, 100).Error, "append %d stock transactions", len(entries))
}

func (r *GormStockTransactionRepository) List(ctx context.Context, filter domain.StockTransactionFilter) ([]domain.StockTransaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.StockTransaction{}).Scopes(Active)
	if filter.PartID != nil {
		query = query.Where("part_id = ?", *filter.PartID)
	}
	if filter.ReferenceNumber != "" {
		query = query.Where("reference_number = ?", filter.ReferenceNumber)
	}
	if filter.From != nil {
		query = query.Where("transaction_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("transaction_date <= ?", *filter.To)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count stock transactions")
	}

	var entries []domain.StockTransaction
	err := query.
		Order("transaction_date DESC").
		Order("id DESC").
		Scopes(paginate(filter.Page)).
		Find(&entries).Error
	if err != nil {
		return nil, 0, translate(err, "list stock transactions")
	}
	return entries, total, nil
}
