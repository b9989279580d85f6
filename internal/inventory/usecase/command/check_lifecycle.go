package command

import (
	"context"
	"fmt"

	"github.com/vegatran/GaraManager-sub003/internal/audit"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

// CheckCommand addresses one check.
type CheckCommand struct {
	CheckID uint
	Actor   domain.Actor
}

// StartCheckHandler moves a draft check to in progress
type StartCheckHandler struct {
	store   domain.Store
	auditor Auditor
}

func NewStartCheckHandler(store domain.Store, auditor Auditor) *StartCheckHandler {
	return &StartCheckHandler{store: store, auditor: auditor}
}

func (h *StartCheckHandler) Handle(ctx context.Context, cmd CheckCommand) (*domain.Check, error) {
	var check *domain.Check
	err := h.store.Transaction(ctx, func(tx domain.Store) error {
		c, err := findCheck(ctx, tx.Checks(), cmd.CheckID)
		if err != nil {
			return err
		}
		if err := c.Start(cmd.Actor, now()); err != nil {
			return err
		}
		check = c
		return tx.Checks().Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	h.auditor.Record(ctx, auditEntry(cmd.Actor, domain.EntityCheck, check.ID, "Start",
		fmt.Sprintf("Started inventory check %s", check.Code), audit.SeverityInfo))
	logger.Info(ctx).Str("code", check.Code).Str("actor", cmd.Actor.DisplayName()).Msg("Inventory check started")
	return check, nil
}

// CompleteCheckHandler freezes a check. Every active item's system quantity
// is re-derived from live stock at this moment; items whose part has been
// deleted keep their last snapshot.
type CompleteCheckHandler struct {
	store   domain.Store
	auditor Auditor
}

func NewCompleteCheckHandler(store domain.Store, auditor Auditor) *CompleteCheckHandler {
	return &CompleteCheckHandler{store: store, auditor: auditor}
}

func (h *CompleteCheckHandler) Handle(ctx context.Context, cmd CheckCommand) (*domain.Check, error) {
	var (
		check         *domain.Check
		discrepancies int
	)
	err := h.store.Transaction(ctx, func(tx domain.Store) error {
		c, err := findCheck(ctx, tx.Checks(), cmd.CheckID)
		if err != nil {
			return err
		}
		if err := c.Complete(cmd.Actor, now()); err != nil {
			return err
		}

		discrepancies = 0
		for i := range c.Items {
			item := &c.Items[i]
			part, err := tx.Parts().FindByID(ctx, item.PartID)
			switch {
			case isNotFound(err):
			case err != nil:
				return err
			case part.QuantityInStock != item.SystemQuantity:
				item.Recount(part.QuantityInStock, item.ActualQuantity)
				if err := tx.Checks().UpdateItem(ctx, item); err != nil {
					return err
				}
			}
			if item.IsDiscrepancy {
				discrepancies++
			}
		}

		check = c
		return tx.Checks().Update(ctx, c)
	})
	if err != nil {
		if !domain.IsBusiness(err) {
			logger.Error(ctx).Err(err).Uint("check_id", cmd.CheckID).Msg("Failed to complete inventory check")
		}
		return nil, err
	}

	h.auditor.Record(ctx, auditEntry(cmd.Actor, domain.EntityCheck, check.ID, "Complete",
		fmt.Sprintf("Completed inventory check %s: %d items, %d discrepancies", check.Code, len(check.Items), discrepancies),
		audit.SeverityInfo))
	logger.Info(ctx).
		Str("code", check.Code).
		Int("discrepancies", discrepancies).
		Str("actor", cmd.Actor.DisplayName()).
		Msg("Inventory check completed")
	return check, nil
}

// CancelCheckHandler abandons a check that is not completed
type CancelCheckHandler struct {
	store   domain.Store
	auditor Auditor
}

func NewCancelCheckHandler(store domain.Store, auditor Auditor) *CancelCheckHandler {
	return &CancelCheckHandler{store: store, auditor: auditor}
}

func (h *CancelCheckHandler) Handle(ctx context.Context, cmd CheckCommand) (*domain.Check, error) {
	var check *domain.Check
	err := h.store.Transaction(ctx, func(tx domain.Store) error {
		c, err := findCheck(ctx, tx.Checks(), cmd.CheckID)
		if err != nil {
			return err
		}
		if err := c.Cancel(); err != nil {
			return err
		}
		check = c
		return tx.Checks().Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	h.auditor.Record(ctx, auditEntry(cmd.Actor, domain.EntityCheck, check.ID, "Cancel",
		fmt.Sprintf("Cancelled inventory check %s", check.Code), audit.SeverityWarning))
	logger.Info(ctx).Str("code", check.Code).Str("actor", cmd.Actor.DisplayName()).Msg("Inventory check cancelled")
	return check, nil
}

// DeleteCheckHandler soft deletes a check and its items
type DeleteCheckHandler struct {
	store   domain.Store
	auditor Auditor
}

func NewDeleteCheckHandler(store domain.Store, auditor Auditor) *DeleteCheckHandler {
	return &DeleteCheckHandler{store: store, auditor: auditor}
}

func (h *DeleteCheckHandler) Handle(ctx context.Context, cmd CheckCommand) error {
	var check *domain.Check
	err := h.store.Transaction(ctx, func(tx domain.Store) error {
		c, err := findCheck(ctx, tx.Checks(), cmd.CheckID)
		if err != nil {
			return err
		}
		adjusted, err := tx.Checks().HasAdjustedItems(ctx, c.ID)
		if err != nil {
			return err
		}
		if adjusted {
			return domain.Conflictf("inventory check %s has items consumed by an adjustment and cannot be deleted", c.Code)
		}
		check = c
		return tx.Checks().Delete(ctx, c)
	})
	if err != nil {
		return err
	}

	h.auditor.Record(ctx, auditEntry(cmd.Actor, domain.EntityCheck, check.ID, "Delete",
		fmt.Sprintf("Deleted inventory check %s", check.Code), audit.SeverityWarning))
	logger.Info(ctx).Str("code", check.Code).Str("actor", cmd.Actor.DisplayName()).Msg("Inventory check deleted")
	return nil
}
