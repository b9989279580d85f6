package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

// Active restricts a query to rows that have not been soft deleted.
func Active(db *gorm.DB) *gorm.DB {
	return db.Where("state = ?", domain.LifecycleActive)
}

func byID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func activeByID(db *gorm.DB) *gorm.DB {
	return Active(db).Order("id")
}

// inScope narrows to rows recorded against the given storage location.
func inScope(s domain.Scope) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if s.WarehouseID != nil {
			db = db.Where("warehouse_id = ?", *s.WarehouseID)
		}
		if s.ZoneID != nil {
			db = db.Where("zone_id = ?", *s.ZoneID)
		}
		if s.BinID != nil {
			db = db.Where("bin_id = ?", *s.BinID)
		}
		return db
	}
}

func paginate(p domain.Page) func(db *gorm.DB) *gorm.DB {
	p = p.Normalize()
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.Size)
	}
}

func softDelete(db *gorm.DB, model any, id uint) error {
	now := time.Now().UTC()
	res := db.Model(model).
		Where("id = ? AND state = ?", id, domain.LifecycleActive).
		Updates(map[string]any{"state": domain.LifecycleDeleted, "deleted_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// translate maps driver errors onto the domain taxonomy.
func translate(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	if isUniqueViolation(err) {
		return domain.PersistenceConflictf(err, "%s: duplicate key, retry the request", what)
	}
	if domain.KindOf(err) != "" {
		return err
	}
	return fmt.Errorf("%s: %w", what, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
