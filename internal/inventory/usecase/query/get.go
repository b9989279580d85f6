package query

import (
	"context"
	"errors"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

// GetCheckQuery represents the query to get a check with its active items
type GetCheckQuery struct {
	ID uint
}

// GetCheckHandler handles get check query
type GetCheckHandler struct {
	repo domain.CheckRepository
}

// NewGetCheckHandler creates a new get check handler
func NewGetCheckHandler(store domain.Store) *GetCheckHandler {
	return &GetCheckHandler{repo: store.Checks()}
}

// Handle executes the get check query
func (h *GetCheckHandler) Handle(ctx context.Context, query GetCheckQuery) (*domain.Check, error) {
	if query.ID == 0 {
		return nil, domain.Validationf("id is required")
	}
	check, err := h.repo.FindByID(ctx, query.ID)
	if err != nil {
		return nil, notFound(err, "inventory check %d not found", query.ID)
	}
	return check, nil
}

// GetAdjustmentQuery represents the query to get a ticket with its items
type GetAdjustmentQuery struct {
	ID uint
}

// GetAdjustmentHandler handles get adjustment query
type GetAdjustmentHandler struct {
	repo domain.AdjustmentRepository
}

// NewGetAdjustmentHandler creates a new get adjustment handler
func NewGetAdjustmentHandler(store domain.Store) *GetAdjustmentHandler {
	return &GetAdjustmentHandler{repo: store.Adjustments()}
}

// Handle executes the get adjustment query
func (h *GetAdjustmentHandler) Handle(ctx context.Context, query GetAdjustmentQuery) (*domain.Adjustment, error) {
	if query.ID == 0 {
		return nil, domain.Validationf("id is required")
	}
	adj, err := h.repo.FindByID(ctx, query.ID)
	if err != nil {
		return nil, notFound(err, "inventory adjustment %d not found", query.ID)
	}
	return adj, nil
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFoundf(format, args...)
	}
	return err
}
