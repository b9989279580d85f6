package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

type GormAlertRepository struct {
	db *gorm.DB
}

func NewGormAlertRepository(db *gorm.DB) *GormAlertRepository {
	return &GormAlertRepository{db: db}
}

func (r *GormAlertRepository) OpenForPart(ctx context.Context, partID uint) ([]domain.StockAlert, error) {
	var alerts []domain.StockAlert
	err := r.db.WithContext(ctx).
		Where("part_id = ? AND is_resolved = ?", partID, false).
		Order("id").
		Find(&alerts).Error
	return alerts, translate(err, "open alerts of part %d", partID)
}

func (r *GormAlertRepository) Create(ctx context.Context, alert *domain.StockAlert) error {
	return translate(r.db.WithContext(ctx).Create(alert).Error, "create %s alert for part %d", alert.AlertType, alert.PartID)
}

func (r *GormAlertRepository) Resolve(ctx context.Context, ids []uint, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&domain.StockAlert{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"is_resolved": true, "resolved_at": at}).Error
	return translate(err, "resolve alerts")
}

func (r *GormAlertRepository) CountUnresolved(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.StockAlert{}).Where("is_resolved = ?", false).Count(&count).Error
	return count, translate(err, "count unresolved alerts")
}
