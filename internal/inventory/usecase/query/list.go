package query

import (
	"context"
	"fmt"
	"time"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

// PageResult is one page of a listing with the total match count.
type PageResult[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

func newPage[T any](items []T, total int64, page domain.Page) *PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PageResult[T]{Items: items, Total: total, Page: page.Number, PageSize: page.Size}
}

func checkRange(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return domain.Validationf("from must not be after to")
	}
	return nil
}

// ListChecksQuery represents the query to list counting sessions
type ListChecksQuery struct {
	Filter domain.CheckFilter
}

// ListChecksHandler handles list checks query
type ListChecksHandler struct {
	repo domain.CheckRepository
}

// NewListChecksHandler creates a new list checks handler
func NewListChecksHandler(store domain.Store) *ListChecksHandler {
	return &ListChecksHandler{repo: store.Checks()}
}

// Handle executes the list checks query, latest check date first. Items are
// not loaded; fetch a single check for those.
func (h *ListChecksHandler) Handle(ctx context.Context, query ListChecksQuery) (*PageResult[domain.Check], error) {
	filter := query.Filter
	filter.Page = filter.Page.Normalize()
	if err := checkRange(filter.From, filter.To); err != nil {
		return nil, err
	}
	switch filter.Status {
	case "", domain.CheckDraft, domain.CheckInProgress, domain.CheckCompleted, domain.CheckCancelled:
	default:
		return nil, domain.Validationf("unknown status %q", filter.Status)
	}

	checks, total, err := h.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory checks: %w", err)
	}
	return newPage(checks, total, filter.Page), nil
}

// ListAdjustmentsQuery represents the query to list tickets
type ListAdjustmentsQuery struct {
	Filter domain.AdjustmentFilter
}

// ListAdjustmentsHandler handles list adjustments query
type ListAdjustmentsHandler struct {
	repo domain.AdjustmentRepository
}

// NewListAdjustmentsHandler creates a new list adjustments handler
func NewListAdjustmentsHandler(store domain.Store) *ListAdjustmentsHandler {
	return &ListAdjustmentsHandler{repo: store.Adjustments()}
}

// Handle executes the list adjustments query, newest first
func (h *ListAdjustmentsHandler) Handle(ctx context.Context, query ListAdjustmentsQuery) (*PageResult[domain.Adjustment], error) {
	filter := query.Filter
	filter.Page = filter.Page.Normalize()
	if err := checkRange(filter.From, filter.To); err != nil {
		return nil, err
	}
	switch filter.Status {
	case "", domain.AdjustmentPending, domain.AdjustmentApproved, domain.AdjustmentRejected:
	default:
		return nil, domain.Validationf("unknown status %q", filter.Status)
	}

	items, total, err := h.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory adjustments: %w", err)
	}
	return newPage(items, total, filter.Page), nil
}

// ListStockTransactionsQuery represents the query to list ledger entries
type ListStockTransactionsQuery struct {
	Filter domain.StockTransactionFilter
}

// ListStockTransactionsHandler handles list stock transactions query
type ListStockTransactionsHandler struct {
	repo domain.StockTransactionRepository
}

// NewListStockTransactionsHandler creates a new list stock transactions handler
func NewListStockTransactionsHandler(store domain.Store) *ListStockTransactionsHandler {
	return &ListStockTransactionsHandler{repo: store.Transactions()}
}

// Handle executes the list stock transactions query, newest first
func (h *ListStockTransactionsHandler) Handle(ctx context.Context, query ListStockTransactionsQuery) (*PageResult[domain.StockTransaction], error) {
	filter := query.Filter
	filter.Page = filter.Page.Normalize()
	if err := checkRange(filter.From, filter.To); err != nil {
		return nil, err
	}

	entries, total, err := h.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock transactions: %w", err)
	}
	return newPage(entries, total, filter.Page), nil
}
