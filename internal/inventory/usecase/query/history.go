package query

import (
	"context"
	"time"

	"github.com/vegatran/GaraManager-sub003/internal/audit"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

// HistoryReader reads the audit trail.
type HistoryReader interface {
	List(ctx context.Context, filter audit.Filter) ([]audit.Log, error)
}

// GetAdjustmentHistoryQuery represents the query for a ticket's merged trail
type GetAdjustmentHistoryQuery struct {
	AdjustmentID uint
	From         *time.Time
	To           *time.Time
	Action       string
	Limit        int
}

// GetAdjustmentHistoryHandler merges audit rows of a ticket and its items
type GetAdjustmentHistoryHandler struct {
	repo   domain.AdjustmentRepository
	reader HistoryReader
}

// NewGetAdjustmentHistoryHandler creates a new adjustment history handler
func NewGetAdjustmentHistoryHandler(store domain.Store, reader HistoryReader) *GetAdjustmentHistoryHandler {
	return &GetAdjustmentHistoryHandler{repo: store.Adjustments(), reader: reader}
}

// Handle executes the history query, newest first
func (h *GetAdjustmentHistoryHandler) Handle(ctx context.Context, query GetAdjustmentHistoryQuery) ([]audit.Log, error) {
	if err := checkRange(query.From, query.To); err != nil {
		return nil, err
	}
	adj, err := h.repo.FindByID(ctx, query.AdjustmentID)
	if err != nil {
		return nil, notFound(err, "inventory adjustment %d not found", query.AdjustmentID)
	}

	itemIDs := make([]uint, 0, len(adj.Items))
	for _, it := range adj.Items {
		itemIDs = append(itemIDs, it.ID)
	}

	logs, err := h.reader.List(ctx, audit.Filter{
		Targets: []audit.Target{
			{EntityName: domain.EntityAdjustment, IDs: []uint{adj.ID}},
			{EntityName: domain.EntityAdjustmentItem, IDs: itemIDs},
		},
		From:   query.From,
		To:     query.To,
		Action: query.Action,
		Limit:  query.Limit,
	})
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []audit.Log{}
	}
	return logs, nil
}

// GetCheckHistoryQuery represents the query for a check's merged trail
type GetCheckHistoryQuery struct {
	CheckID uint
	From    *time.Time
	To      *time.Time
	Action  string
	Limit   int
}

// GetCheckHistoryHandler merges audit rows of a check and its active items
type GetCheckHistoryHandler struct {
	repo   domain.CheckRepository
	reader HistoryReader
}

func NewGetCheckHistoryHandler(store domain.Store, reader HistoryReader) *GetCheckHistoryHandler {
	return &GetCheckHistoryHandler{repo: store.Checks(), reader: reader}
}

func (h *GetCheckHistoryHandler) Handle(ctx context.Context, query GetCheckHistoryQuery) ([]audit.Log, error) {
	if err := checkRange(query.From, query.To); err != nil {
		return nil, err
	}
	check, err := h.repo.FindByID(ctx, query.CheckID)
	if err != nil {
		return nil, notFound(err, "inventory check %d not found", query.CheckID)
	}

	itemIDs := make([]uint, 0, len(check.Items))
	for _, it := range check.Items {
		itemIDs = append(itemIDs, it.ID)
	}

	logs, err := h.reader.List(ctx, audit.Filter{
		Targets: []audit.Target{
			{EntityName: domain.EntityCheck, IDs: []uint{check.ID}},
			{EntityName: domain.EntityCheckItem, IDs: itemIDs},
		},
		From:   query.From,
		To:     query.To,
		Action: query.Action,
		Limit:  query.Limit,
	})
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []audit.Log{}
	}
	return logs, nil
}
