package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

var codeModels = map[domain.CodeKind]any{
	domain.CodeCheck:       &domain.Check{},
	domain.CodeAdjustment:  &domain.Adjustment{},
	domain.CodeTransaction: &domain.StockTransaction{},
}

type GormCodeRepository struct {
	db *gorm.DB
}

func NewGormCodeRepository(db *gorm.DB) *GormCodeRepository {
	return &GormCodeRepository{db: db}
}

// LastCode returns the greatest code in generated form. Rows are scanned by
// length and then text, so codes a caller wrote in another shape (extra
// padding, letters) are skipped instead of hiding the real maximum.
func (r *GormCodeRepository) LastCode(ctx context.Context, kind domain.CodeKind, prefix string) (string, error) {
	model, ok := codeModels[kind]
	if !ok {
		return "", fmt.Errorf("unknown code kind %q", kind)
	}
	rows, err := r.db.WithContext(ctx).Model(model).
		Select("code").
		Where("code LIKE ?", prefix+"%").
		Order("LENGTH(code) DESC").
		Order("code DESC").
		Rows()
	if err != nil {
		return "", translate(err, "look up last %s code", kind)
	}
	defer rows.Close()

	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return "", translate(err, "scan %s code", kind)
		}
		if _, ok := domain.ParseCodeCounter(code, prefix); ok {
			return code, nil
		}
	}
	return "", translate(rows.Err(), "look up last %s code", kind)
}
