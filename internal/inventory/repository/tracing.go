package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

var tracer = otel.Tracer("inventory-repository")

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// GormPartRepositoryWithTracing wraps GormPartRepository with tracing
type GormPartRepositoryWithTracing struct {
	*GormPartRepository
}

// NewGormPartRepositoryWithTracing creates a new part repository with tracing
func NewGormPartRepositoryWithTracing(db *gorm.DB) *GormPartRepositoryWithTracing {
	return &GormPartRepositoryWithTracing{
		GormPartRepository: NewGormPartRepository(db),
	}
}

func (r *GormPartRepositoryWithTracing) Create(ctx context.Context, part *domain.Part) (err error) {
	ctx, span := tracer.Start(ctx, "repository.Part.Create",
		trace.WithAttributes(
			attribute.String("part.number", part.PartNumber),
			attribute.Int("part.quantity_in_stock", part.QuantityInStock),
		),
	)
	defer func() { finishSpan(span, err) }()

	if err = r.GormPartRepository.Create(ctx, part); err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("part.id", int(part.ID)))
	return nil
}

func (r *GormPartRepositoryWithTracing) FindByID(ctx context.Context, id uint) (part *domain.Part, err error) {
	ctx, span := tracer.Start(ctx, "repository.Part.FindByID",
		trace.WithAttributes(attribute.Int("part.id", int(id))),
	)
	defer func() { finishSpan(span, err) }()

	part, err = r.GormPartRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("part.quantity_in_stock", part.QuantityInStock))
	return part, nil
}

func (r *GormPartRepositoryWithTracing) FindForUpdate(ctx context.Context, id uint) (part *domain.Part, err error) {
	ctx, span := tracer.Start(ctx, "repository.Part.FindForUpdate",
		trace.WithAttributes(attribute.Int("part.id", int(id))),
	)
	defer func() { finishSpan(span, err) }()

	part, err = r.GormPartRepository.FindForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("part.quantity_in_stock", part.QuantityInStock),
		attribute.Int("part.version", part.Version),
	)
	return part, nil
}

func (r *GormPartRepositoryWithTracing) UpdateQuantity(ctx context.Context, part *domain.Part, quantity int) (err error) {
	ctx, span := tracer.Start(ctx, "repository.Part.UpdateQuantity",
		trace.WithAttributes(
			attribute.Int("part.id", int(part.ID)),
			attribute.Int("part.version", part.Version),
			attribute.Int("part.quantity_before", part.QuantityInStock),
			attribute.Int("part.quantity_after", quantity),
		),
	)
	defer func() { finishSpan(span, err) }()

	return r.GormPartRepository.UpdateQuantity(ctx, part, quantity)
}

func (r *GormPartRepositoryWithTracing) Delete(ctx context.Context, id uint) (err error) {
	ctx, span := tracer.Start(ctx, "repository.Part.Delete",
		trace.WithAttributes(attribute.Int("part.id", int(id))),
	)
	defer func() { finishSpan(span, err) }()

	return r.GormPartRepository.Delete(ctx, id)
}

// GormStockTransactionRepositoryWithTracing wraps the ledger repository with tracing
type GormStockTransactionRepositoryWithTracing struct {
	*GormStockTransactionRepository
}

func NewGormStockTransactionRepositoryWithTracing(db *gorm.DB) *GormStockTransactionRepositoryWithTracing {
	return &GormStockTransactionRepositoryWithTracing{
		GormStockTransactionRepository: NewGormStockTransactionRepository(db),
	}
}

func (r *GormStockTransactionRepositoryWithTracing) CreateBatch(ctx context.Context, entries []domain.StockTransaction) (err error) {
	ctx, span := tracer.Start(ctx, "repository.StockTransaction.CreateBatch",
		trace.WithAttributes(attribute.Int("ledger.entries", len(entries))),
	)
	defer func() { finishSpan(span, err) }()

	return r.GormStockTransactionRepository.CreateBatch(ctx, entries)
}

func (r *GormStockTransactionRepositoryWithTracing) List(ctx context.Context, filter domain.StockTransactionFilter) (entries []domain.StockTransaction, total int64, err error) {
	ctx, span := tracer.Start(ctx, "repository.StockTransaction.List",
		trace.WithAttributes(
			attribute.String("ledger.reference", filter.ReferenceNumber),
			attribute.Int("page.number", filter.Page.Number),
		),
	)
	defer func() { finishSpan(span, err) }()

	entries, total, err = r.GormStockTransactionRepository.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	span.SetAttributes(attribute.Int64("ledger.total", total))
	return entries, total, nil
}
