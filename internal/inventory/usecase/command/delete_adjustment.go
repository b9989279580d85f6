package command

import (
	"context"
	"fmt"

	"github.com/vegatran/GaraManager-sub003/internal/audit"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

// DeleteAdjustmentCommand soft deletes a ticket that is not approved
type DeleteAdjustmentCommand struct {
	AdjustmentID uint
	Actor        domain.Actor
}

// DeleteAdjustmentHandler also releases the check items the ticket consumed
// so their discrepancies can be proposed again.
type DeleteAdjustmentHandler struct {
	store   domain.Store
	auditor Auditor
}

func NewDeleteAdjustmentHandler(store domain.Store, auditor Auditor) *DeleteAdjustmentHandler {
	return &DeleteAdjustmentHandler{store: store, auditor: auditor}
}

func (h *DeleteAdjustmentHandler) Handle(ctx context.Context, cmd DeleteAdjustmentCommand) error {
	var adj *domain.Adjustment
	err := h.store.Transaction(ctx, func(tx domain.Store) error {
		a, err := findAdjustment(ctx, tx.Adjustments(), cmd.AdjustmentID)
		if err != nil {
			return err
		}
		if err := a.EnsureDeletable(); err != nil {
			return err
		}
		if a.CheckID != nil {
			ids := make([]uint, 0, len(a.Items))
			for _, it := range a.Items {
				ids = append(ids, it.ID)
			}
			if err := tx.Checks().ReleaseAdjustmentItems(ctx, ids); err != nil {
				return err
			}
		}
		adj = a
		return tx.Adjustments().Delete(ctx, a)
	})
	if err != nil {
		return err
	}

	h.auditor.Record(ctx, auditEntry(cmd.Actor, domain.EntityAdjustment, adj.ID, "Delete",
		fmt.Sprintf("Deleted %s inventory adjustment %s", adj.Status, adj.Code), audit.SeverityWarning))
	logger.Info(ctx).Str("code", adj.Code).Str("actor", cmd.Actor.DisplayName()).Msg("Inventory adjustment deleted")
	return nil
}
