package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

type GormAdjustmentRepository struct {
	db *gorm.DB
}

func NewGormAdjustmentRepository(db *gorm.DB) *GormAdjustmentRepository {
	return &GormAdjustmentRepository{db: db}
}

func (r *GormAdjustmentRepository) Create(ctx context.Context, adjustment *domain.Adjustment) error {
	adjustment.State = domain.LifecycleActive
	return translate(r.db.WithContext(ctx).Create(adjustment).Error, "create inventory adjustment %s", adjustment.Code)
}

func (r *GormAdjustmentRepository) FindByID(ctx context.Context, id uint) (*domain.Adjustment, error) {
	var adjustment domain.Adjustment
	err := r.db.WithContext(ctx).
		Scopes(Active).
		Preload("Items", byID).
		First(&adjustment, id).Error
	if err != nil {
		return nil, translate(err, "inventory adjustment %d", id)
	}
	return &adjustment, nil
}

func (r *GormAdjustmentRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Adjustment, error) {
	var adjustments []domain.Adjustment
	if len(ids) == 0 {
		return adjustments, nil
	}
	err := r.db.WithContext(ctx).
		Scopes(activeByID).
		Preload("Items", byID).
		Where("id IN ?", ids).
		Find(&adjustments).Error
	return adjustments, translate(err, "load inventory adjustments")
}

func (r *GormAdjustmentRepository) List(ctx context.Context, filter domain.AdjustmentFilter) ([]domain.Adjustment, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Adjustment{}).Scopes(Active, inScope(filter.Scope))
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CheckID != nil {
		query = query.Where("check_id = ?", *filter.CheckID)
	}
	if filter.From != nil {
		query = query.Where("adjustment_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("adjustment_date <= ?", *filter.To)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count inventory adjustments")
	}

	var adjustments []domain.Adjustment
	err := query.
		Preload("Items", byID).
		Order("adjustment_date DESC").
		Order("id DESC").
		Scopes(paginate(filter.Page)).
		Find(&adjustments).Error
	if err != nil {
		return nil, 0, translate(err, "list inventory adjustments")
	}
	return adjustments, total, nil
}

func (r *GormAdjustmentRepository) Update(ctx context.Context, adjustment *domain.Adjustment) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(adjustment).Error
	return translate(err, "update inventory adjustment %s", adjustment.Code)
}

func (r *GormAdjustmentRepository) Delete(ctx context.Context, adjustment *domain.Adjustment) error {
	if err := softDelete(r.db.WithContext(ctx), &domain.Adjustment{}, adjustment.ID); err != nil {
		return translate(err, "delete inventory adjustment %s", adjustment.Code)
	}
	adjustment.MarkDeleted(time.Now().UTC())
	return nil
}

func (r *GormAdjustmentRepository) AddComment(ctx context.Context, comment *domain.AdjustmentComment) error {
	comment.State = domain.LifecycleActive
	return translate(r.db.WithContext(ctx).Create(comment).Error, "add comment to inventory adjustment %d", comment.AdjustmentID)
}

func (r *GormAdjustmentRepository) ListComments(ctx context.Context, adjustmentID uint) ([]domain.AdjustmentComment, error) {
	var comments []domain.AdjustmentComment
	err := r.db.WithContext(ctx).
		Scopes(Active).
		Where("adjustment_id = ?", adjustmentID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&comments).Error
	return comments, translate(err, "list comments of inventory adjustment %d", adjustmentID)
}

func (r *GormAdjustmentRepository) FindComment(ctx context.Context, adjustmentID, commentID uint) (*domain.AdjustmentComment, error) {
	var comment domain.AdjustmentComment
	err := r.db.WithContext(ctx).
		Scopes(Active).
		Where("adjustment_id = ?", adjustmentID).
		First(&comment, commentID).Error
	if err != nil {
		return nil, translate(err, "comment %d of inventory adjustment %d", commentID, adjustmentID)
	}
	return &comment, nil
}

func (r *GormAdjustmentRepository) DeleteComment(ctx context.Context, comment *domain.AdjustmentComment) error {
	if err := softDelete(r.db.WithContext(ctx), &domain.AdjustmentComment{}, comment.ID); err != nil {
		return translate(err, "delete comment %d", comment.ID)
	}
	comment.MarkDeleted(time.Now().UTC())
	return nil
}
