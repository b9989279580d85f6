package audit

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Target selects rows of one entity type.
type Target struct {
	EntityName string
	IDs        []uint
}

// Filter narrows a history lookup.
type Filter struct {
	Targets []Target
	From    *time.Time
	To      *time.Time
	Action  string
	Limit   int
}

// Reader queries the audit trail.
type Reader struct {
	db *gorm.DB
}

func NewReader(db *gorm.DB) *Reader {
	return &Reader{db: db}
}

// List returns the matching rows, newest first.
func (r *Reader) List(ctx context.Context, filter Filter) ([]Log, error) {
	var logs []Log
	if len(filter.Targets) == 0 {
		return logs, nil
	}

	targets := r.db.Session(&gorm.Session{NewDB: true})
	matched := 0
	for _, t := range filter.Targets {
		if len(t.IDs) == 0 {
			continue
		}
		cond := r.db.Session(&gorm.Session{NewDB: true}).
			Where("entity_name = ? AND entity_id IN ?", t.EntityName, t.IDs)
		if matched == 0 {
			targets = targets.Where(cond)
		} else {
			targets = targets.Or(cond)
		}
		matched++
	}
	if matched == 0 {
		return logs, nil
	}

	query := r.db.WithContext(ctx).Model(&Log{}).Where(targets)
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at <= ?", *filter.To)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if err := query.Order("occurred_at DESC").Order("id DESC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to read audit history: %w", err)
	}
	return logs, nil
}
