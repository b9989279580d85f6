package query

import (
	"context"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

// ListCommentsQuery represents the query for a ticket's discussion thread
type ListCommentsQuery struct {
	AdjustmentID uint
}

// ListCommentsHandler handles list comments query
type ListCommentsHandler struct {
	repo domain.AdjustmentRepository
}

// NewListCommentsHandler creates a new list comments handler
func NewListCommentsHandler(store domain.Store) *ListCommentsHandler {
	return &ListCommentsHandler{repo: store.Adjustments()}
}

// Handle returns the active comments, newest first
func (h *ListCommentsHandler) Handle(ctx context.Context, query ListCommentsQuery) ([]domain.AdjustmentComment, error) {
	if _, err := h.repo.FindByID(ctx, query.AdjustmentID); err != nil {
		return nil, notFound(err, "inventory adjustment %d not found", query.AdjustmentID)
	}
	comments, err := h.repo.ListComments(ctx, query.AdjustmentID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []domain.AdjustmentComment{}
	}
	return comments, nil
}

// ListCheckCommentsQuery represents the query for a check's discussion thread
type ListCheckCommentsQuery struct {
	CheckID uint
}

type ListCheckCommentsHandler struct {
	repo domain.CheckRepository
}

func NewListCheckCommentsHandler(store domain.Store) *ListCheckCommentsHandler {
	return &ListCheckCommentsHandler{repo: store.Checks()}
}

// Handle returns the active comments, newest first
func (h *ListCheckCommentsHandler) Handle(ctx context.Context, query ListCheckCommentsQuery) ([]domain.CheckComment, error) {
	if _, err := h.repo.FindByID(ctx, query.CheckID); err != nil {
		return nil, notFound(err, "inventory check %d not found", query.CheckID)
	}
	comments, err := h.repo.ListComments(ctx, query.CheckID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []domain.CheckComment{}
	}
	return comments, nil
}
