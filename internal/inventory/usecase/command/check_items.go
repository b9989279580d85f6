package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/vegatran/GaraManager-sub003/internal/audit"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

// AddCheckItemCommand adds one counted part to an editable check
type AddCheckItemCommand struct {
	CheckID        uint
	PartID         uint
	ActualQuantity int
	Notes          string
	Actor          domain.Actor
}

type AddCheckItemHandler struct {
	store   domain.Store
	auditor Auditor
}

func NewAddCheckItemHandler(store domain.Store, auditor Auditor) *AddCheckItemHandler {
	return &AddCheckItemHandler{store: store, auditor: auditor}
}

func (h *AddCheckItemHandler) Handle(ctx context.Context, cmd AddCheckItemCommand) (*domain.CheckItem, error) {
	if err := validateCheckItems([]CheckItemInput{{PartID: cmd.PartID, ActualQuantity: cmd.ActualQuantity}}); err != nil {
		return nil, err
	}

	var (
		check *domain.Check
		item  *domain.CheckItem
	)
	err := h.store.Transaction(ctx, func(tx domain.Store) error {
		c, err := findCheck(ctx, tx.Checks(), cmd.CheckID)
		if err != nil {
			return err
		}
		if err := c.EnsureEditable(); err != nil {
			return err
		}
		it, err := addCheckItem(ctx, tx, c, CheckItemInput{PartID: cmd.PartID, ActualQuantity: cmd.ActualQuantity, Notes: cmd.Notes})
		if err != nil {
			return err
		}
		check, item = c, it
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.auditor.Record(ctx, auditEntry(cmd.Actor, domain.EntityCheckItem, item.ID, "Create",
		fmt.Sprintf("Added part %d to inventory check %s: system %d, actual %d",
			item.PartID, check.Code, item.SystemQuantity, item.ActualQuantity), audit.SeverityInfo))
	logger.Debug(ctx).Str("code", check.Code).Uint("part_id", item.PartID).Msg("Inventory check item added")
	return item, nil
}

// UpdateCheckItemCommand re-counts an item. PartID zero keeps the current part.
type UpdateCheckItemCommand struct {
	CheckID        uint
	ItemID         uint
	PartID         uint
	ActualQuantity int
	Notes          *string
	Actor          domain.Actor
}

type UpdateCheckItemHandler struct {
	store   domain.Store
	auditor Auditor
}

func NewUpdateCheckItemHandler(store domain.Store, auditor Auditor) *UpdateCheckItemHandler {
	return &UpdateCheckItemHandler{store: store, auditor: auditor}
}

// Handle re-snapshots the system quantity from the live part whether or not
// the part reference changed.
func (h *UpdateCheckItemHandler) Handle(ctx context.Context, cmd UpdateCheckItemCommand) (*domain.CheckItem, error) {
	if cmd.ActualQuantity < 0 {
		return nil, domain.Validationf("actual quantity cannot be negative")
	}

	var (
		check *domain.Check
		item  *domain.CheckItem
	)
	err := h.store.Transaction(ctx, func(tx domain.Store) error {
		c, err := findCheck(ctx, tx.Checks(), cmd.CheckID)
		if err != nil {
			return err
		}
		if err := c.EnsureEditable(); err != nil {
			return err
		}
		it, err := tx.Checks().FindItem(ctx, c.ID, cmd.ItemID)
		if err != nil {
			return lookup(err, "item %d not found in inventory check %s", cmd.ItemID, c.Code)
		}

		system := it.SystemQuantity
		if cmd.PartID != 0 && cmd.PartID != it.PartID {
			part, err := livePart(ctx, tx.Parts(), cmd.PartID)
			if err != nil {
				return err
			}
			if err := ensurePartNotCounted(ctx, tx.Checks(), c, part.ID); err != nil {
				return err
			}
			it.PartID = part.ID
			system = part.QuantityInStock
		} else if system, err = snapshot(ctx, tx.Parts(), it.PartID, system); err != nil {
			return err
		}

		it.Recount(system, cmd.ActualQuantity)
		if cmd.Notes != nil {
			it.Notes = strings.TrimSpace(*cmd.Notes)
		}
		if err := tx.Checks().UpdateItem(ctx, it); err != nil {
			return err
		}
		check, item = c, it
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.auditor.Record(ctx, auditEntry(cmd.Actor, domain.EntityCheckItem, item.ID, "Update",
		fmt.Sprintf("Updated part %d in inventory check %s: system %d, actual %d",
			item.PartID, check.Code, item.SystemQuantity, item.ActualQuantity), audit.SeverityInfo))
	return item, nil
}

// DeleteCheckItemCommand removes an item from an editable check
type DeleteCheckItemCommand struct {
	CheckID uint
	ItemID  uint
	Actor   domain.Actor
}

type DeleteCheckItemHandler struct {
	store   domain.Store
	auditor Auditor
}

func NewDeleteCheckItemHandler(store domain.Store, auditor Auditor) *DeleteCheckItemHandler {
	return &DeleteCheckItemHandler{store: store, auditor: auditor}
}

func (h *DeleteCheckItemHandler) Handle(ctx context.Context, cmd DeleteCheckItemCommand) error {
	var (
		check *domain.Check
		item  *domain.CheckItem
	)
	err := h.store.Transaction(ctx, func(tx domain.Store) error {
		c, err := findCheck(ctx, tx.Checks(), cmd.CheckID)
		if err != nil {
			return err
		}
		if err := c.EnsureEditable(); err != nil {
			return err
		}
		it, err := tx.Checks().FindItem(ctx, c.ID, cmd.ItemID)
		if err != nil {
			return lookup(err, "item %d not found in inventory check %s", cmd.ItemID, c.Code)
		}
		check, item = c, it
		return tx.Checks().DeleteItem(ctx, it)
	})
	if err != nil {
		return err
	}

	h.auditor.Record(ctx, auditEntry(cmd.Actor, domain.EntityCheckItem, item.ID, "Delete",
		fmt.Sprintf("Removed part %d from inventory check %s", item.PartID, check.Code), audit.SeverityInfo))
	return nil
}

// addCheckItem counts one more part in check at its live stock.
func addCheckItem(ctx context.Context, tx domain.Store, check *domain.Check, in CheckItemInput) (*domain.CheckItem, error) {
	part, err := livePart(ctx, tx.Parts(), in.PartID)
	if err != nil {
		return nil, err
	}
	if err := ensurePartNotCounted(ctx, tx.Checks(), check, part.ID); err != nil {
		return nil, err
	}
	item := &domain.CheckItem{CheckID: check.ID, PartID: part.ID, Notes: strings.TrimSpace(in.Notes)}
	item.Recount(part.QuantityInStock, in.ActualQuantity)
	if err := tx.Checks().AddItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// snapshot returns the live stock of a part, or fallback once the part has
// been deleted.
func snapshot(ctx context.Context, parts domain.PartRepository, partID uint, fallback int) (int, error) {
	part, err := parts.FindByID(ctx, partID)
	switch {
	case isNotFound(err):
		return fallback, nil
	case err != nil:
		return 0, err
	}
	return part.QuantityInStock, nil
}

func ensurePartNotCounted(ctx context.Context, checks domain.CheckRepository, check *domain.Check, partID uint) error {
	_, err := checks.FindItemByPart(ctx, check.ID, partID)
	switch {
	case err == nil:
		return domain.Validationf("part %d is already counted in inventory check %s", partID, check.Code)
	case isNotFound(err):
		return nil
	default:
		return err
	}
}
