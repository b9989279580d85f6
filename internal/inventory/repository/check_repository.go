package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

type GormCheckRepository struct {
	db *gorm.DB
}

func NewGormCheckRepository(db *gorm.DB) *GormCheckRepository {
	return &GormCheckRepository{db: db}
}

func (r *GormCheckRepository) Create(ctx context.Context, check *domain.Check) error {
	check.State = domain.LifecycleActive
	for i := range check.Items {
		check.Items[i].State = domain.LifecycleActive
	}
	return translate(r.db.WithContext(ctx).Create(check).Error, "create inventory check %s", check.Code)
}

func (r *GormCheckRepository) FindByID(ctx context.Context, id uint) (*domain.Check, error) {
	var check domain.Check
	err := r.db.WithContext(ctx).
		Scopes(Active).
		Preload("Items", activeByID).
		First(&check, id).Error
	if err != nil {
		return nil, translate(err, "inventory check %d", id)
	}
	return &check, nil
}

// List orders by check date, newest first. Items are not loaded.
func (r *GormCheckRepository) List(ctx context.Context, filter domain.CheckFilter) ([]domain.Check, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Check{}).Scopes(Active, inScope(filter.Scope))
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("check_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("check_date <= ?", *filter.To)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count inventory checks")
	}

	var checks []domain.Check
	err := query.
		Order("check_date DESC").
		Order("created_at DESC").
		Order("id DESC").
		Scopes(paginate(filter.Page)).
		Find(&checks).Error
	if err != nil {
		return nil, 0, translate(err, "list inventory checks")
	}
	return checks, total, nil
}

func (r *GormCheckRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Check{}).Where("code = ?", code).Count(&count).Error
	return count > 0, translate(err, "look up inventory check code %s", code)
}

func (r *GormCheckRepository) Update(ctx context.Context, check *domain.Check) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(check).Error
	return translate(err, "update inventory check %s", check.Code)
}

func (r *GormCheckRepository) Delete(ctx context.Context, check *domain.Check) error {
	db := r.db.WithContext(ctx)
	now := time.Now().UTC()
	err := db.Model(&domain.CheckItem{}).
		Where("check_id = ? AND state = ?", check.ID, domain.LifecycleActive).
		Updates(map[string]any{"state": domain.LifecycleDeleted, "deleted_at": now}).Error
	if err != nil {
		return translate(err, "delete items of inventory check %s", check.Code)
	}
	if err := softDelete(db, &domain.Check{}, check.ID); err != nil {
		return translate(err, "delete inventory check %s", check.Code)
	}
	check.MarkDeleted(now)
	return nil
}

func (r *GormCheckRepository) HasAdjustedItems(ctx context.Context, checkID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.CheckItem{}).
		Scopes(Active).
		Where("check_id = ? AND is_adjusted = ?", checkID, true).
		Count(&count).Error
	return count > 0, translate(err, "count adjusted items of inventory check %d", checkID)
}

func (r *GormCheckRepository) AddItem(ctx context.Context, item *domain.CheckItem) error {
	item.State = domain.LifecycleActive
	return translate(r.db.WithContext(ctx).Create(item).Error, "add item to inventory check %d", item.CheckID)
}

func (r *GormCheckRepository) FindItem(ctx context.Context, checkID, itemID uint) (*domain.CheckItem, error) {
	var item domain.CheckItem
	err := r.db.WithContext(ctx).
		Scopes(Active).
		Where("check_id = ?", checkID).
		First(&item, itemID).Error
	if err != nil {
		return nil, translate(err, "item %d of inventory check %d", itemID, checkID)
	}
	return &item, nil
}

func (r *GormCheckRepository) FindItemByPart(ctx context.Context, checkID, partID uint) (*domain.CheckItem, error) {
	var item domain.CheckItem
	err := r.db.WithContext(ctx).
		Scopes(Active).
		Where("check_id = ? AND part_id = ?", checkID, partID).
		First(&item).Error
	if err != nil {
		return nil, translate(err, "part %d in inventory check %d", partID, checkID)
	}
	return &item, nil
}

func (r *GormCheckRepository) UpdateItem(ctx context.Context, item *domain.CheckItem) error {
	return translate(r.db.WithContext(ctx).Save(item).Error, "update inventory check item %d", item.ID)
}

func (r *GormCheckRepository) DeleteItem(ctx context.Context, item *domain.CheckItem) error {
	if err := softDelete(r.db.WithContext(ctx), &domain.CheckItem{}, item.ID); err != nil {
		return translate(err, "delete inventory check item %d", item.ID)
	}
	item.MarkDeleted(time.Now().UTC())
	return nil
}

func (r *GormCheckRepository) ProposableItems(ctx context.Context, checkID uint) ([]domain.CheckItem, error) {
	var items []domain.CheckItem
	err := r.db.WithContext(ctx).
		Scopes(activeByID).
		Where("check_id = ? AND is_discrepancy = ? AND is_adjusted = ?", checkID, true, false).
		Find(&items).Error
	return items, translate(err, "select discrepancies of inventory check %d", checkID)
}

func (r *GormCheckRepository) LinkAdjustmentItems(ctx context.Context, links map[uint]uint) error {
	db := r.db.WithContext(ctx)
	for checkItemID, adjustmentItemID := range links {
		res := db.Model(&domain.CheckItem{}).
			Where("id = ? AND is_adjusted = ?", checkItemID, false).
			Updates(map[string]any{"is_adjusted": true, "adjustment_item_id": adjustmentItemID})
		if res.Error != nil {
			return translate(res.Error, "mark inventory check item %d adjusted", checkItemID)
		}
		if res.RowsAffected == 0 {
			return domain.PersistenceConflictf(nil, "inventory check item %d was consumed concurrently", checkItemID)
		}
	}
	return nil
}

func (r *GormCheckRepository) ReleaseAdjustmentItems(ctx context.Context, adjustmentItemIDs []uint) error {
	if len(adjustmentItemIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&domain.CheckItem{}).
		Where("adjustment_item_id IN ?", adjustmentItemIDs).
		Updates(map[string]any{"is_adjusted": false, "adjustment_item_id": nil}).Error
	return translate(err, "release inventory check items")
}

func (r *GormCheckRepository) AddComment(ctx context.Context, comment *domain.CheckComment) error {
	comment.State = domain.LifecycleActive
	return translate(r.db.WithContext(ctx).Create(comment).Error, "add comment to inventory check %d", comment.CheckID)
}

func (r *GormCheckRepository) ListComments(ctx context.Context, checkID uint) ([]domain.CheckComment, error) {
	var comments []domain.CheckComment
	err := r.db.WithContext(ctx).
		Scopes(Active).
		Where("check_id = ?", checkID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&comments).Error
	return comments, translate(err, "list comments of inventory check %d", checkID)
}

func (r *GormCheckRepository) FindComment(ctx context.Context, checkID, commentID uint) (*domain.CheckComment, error) {
	var comment domain.CheckComment
	err := r.db.WithContext(ctx).
		Scopes(Active).
		Where("check_id = ?", checkID).
		First(&comment, commentID).Error
	if err != nil {
		return nil, translate(err, "comment %d of inventory check %d", commentID, checkID)
	}
	return &comment, nil
}

func (r *GormCheckRepository) DeleteComment(ctx context.Context, comment *domain.CheckComment) error {
	if err := softDelete(r.db.WithContext(ctx), &domain.CheckComment{}, comment.ID); err != nil {
		return translate(err, "delete check comment %d", comment.ID)
	}
	comment.MarkDeleted(time.Now().UTC())
	return nil
}
