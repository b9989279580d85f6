package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

type GormWarehouseRepository struct {
	db *gorm.DB
}

func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

func (r *GormWarehouseRepository) FindWarehouse(ctx context.Context, id uint) (*domain.Warehouse, error) {
	var w domain.Warehouse
	if err := r.db.WithContext(ctx).Scopes(Active).First(&w, id).Error; err != nil {
		return nil, translate(err, "warehouse %d", id)
	}
	return &w, nil
}

func (r *GormWarehouseRepository) FindZone(ctx context.Context, id uint) (*domain.WarehouseZone, error) {
	var z domain.WarehouseZone
	if err := r.db.WithContext(ctx).Scopes(Active).First(&z, id).Error; err != nil {
		return nil, translate(err, "warehouse zone %d", id)
	}
	return &z, nil
}

func (r *GormWarehouseRepository) FindBin(ctx context.Context, id uint) (*domain.WarehouseBin, error) {
	var b domain.WarehouseBin
	if err := r.db.WithContext(ctx).Scopes(Active).First(&b, id).Error; err != nil {
		return nil, translate(err, "warehouse bin %d", id)
	}
	return &b, nil
}

func (r *GormWarehouseRepository) CreateWarehouse(ctx context.Context, w *domain.Warehouse) error {
	if w.State == "" {
		w.State = domain.LifecycleActive
	}
	return translate(r.db.WithContext(ctx).Create(w).Error, "create warehouse %s", w.Code)
}

func (r *GormWarehouseRepository) CreateZone(ctx context.Context, z *domain.WarehouseZone) error {
	if z.State == "" {
		z.State = domain.LifecycleActive
	}
	return translate(r.db.WithContext(ctx).Create(z).Error, "create warehouse zone %s", z.Code)
}

func (r *GormWarehouseRepository) CreateBin(ctx context.Context, b *domain.WarehouseBin) error {
	if b.State == "" {
		b.State = domain.LifecycleActive
	}
	return translate(r.db.WithContext(ctx).Create(b).Error, "create warehouse bin %s", b.Code)
}
