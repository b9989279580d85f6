package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

type GormPartRepository struct {
	db *gorm.DB
}

func NewGormPartRepository(db *gorm.DB) *GormPartRepository {
	return &GormPartRepository{db: db}
}

func (r *GormPartRepository) Create(ctx context.Context, part *domain.Part) error {
	if part.State == "" {
		part.State = domain.LifecycleActive
	}
	return translate(r.db.WithContext(ctx).Create(part).Error, "create part %s", part.PartNumber)
}

func (r *GormPartRepository) FindByID(ctx context.Context, id uint) (*domain.Part, error) {
	var part domain.Part
	if err := r.db.WithContext(ctx).Scopes(Active).First(&part, id).Error; err != nil {
		return nil, translate(err, "part %d", id)
	}
	return &part, nil
}

func (r *GormPartRepository) FindForUpdate(ctx context.Context, id uint) (*domain.Part, error) {
	var part domain.Part
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(Active).
		First(&part, id).Error
	if err != nil {
		return nil, translate(err, "part %d", id)
	}
	return &part, nil
}

func (r *GormPartRepository) UpdateQuantity(ctx context.Context, part *domain.Part, quantity int) error {
	res := r.db.WithContext(ctx).Model(&domain.Part{}).
		Where("id = ? AND version = ?", part.ID, part.Version).
		Updates(map[string]any{
			"quantity_in_stock": quantity,
			"version":           gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return translate(res.Error, "update stock of part %d", part.ID)
	}
	if res.RowsAffected == 0 {
		return domain.PersistenceConflictf(nil, "part %s was modified concurrently, retry the request", part.PartNumber)
	}
	part.QuantityInStock = quantity
	part.Version++
	return nil
}

func (r *GormPartRepository) Delete(ctx context.Context, id uint) error {
	return translate(softDelete(r.db.WithContext(ctx), &domain.Part{}, id), "delete part %d", id)
}
