package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/vegatran/GaraManager-sub003/internal/audit"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

const (
	bulkAddItems    = "add_items"
	bulkUpdateItems = "update_items"
)

// BulkAddCheckItemsCommand counts many parts in one request
type BulkAddCheckItemsCommand struct {
	CheckID uint
	Items   []CheckItemInput
	Actor   domain.Actor
}

// BulkAddCheckItemsHandler adds each item inside its own savepoint. Success
// ids are the new item ids; rejected inputs only carry an error message.
type BulkAddCheckItemsHandler struct {
	store   domain.Store
	auditor Auditor
	limit   BulkLimit
}

func NewBulkAddCheckItemsHandler(store domain.Store, auditor Auditor, limit BulkLimit) *BulkAddCheckItemsHandler {
	return &BulkAddCheckItemsHandler{store: store, auditor: auditor, limit: limit}
}

func (h *BulkAddCheckItemsHandler) Handle(ctx context.Context, cmd BulkAddCheckItemsCommand) (*BulkResult, error) {
	if err := h.limit.check(len(cmd.Items), "item"); err != nil {
		return nil, err
	}

	var (
		result *BulkResult
		check  *domain.Check
		added  []*domain.CheckItem
	)
	err := h.store.Transaction(ctx, func(tx domain.Store) error {
		result, added = newBulkResult(), nil
		c, err := findCheck(ctx, tx.Checks(), cmd.CheckID)
		if err != nil {
			return err
		}
		if err := c.EnsureEditable(); err != nil {
			return err
		}
		check = c

		for _, in := range cmd.Items {
			var item *domain.CheckItem
			err := validateCheckItems([]CheckItemInput{in})
			if err == nil {
				err = tx.Transaction(ctx, func(sp domain.Store) error {
					item, err = addCheckItem(ctx, sp, c, in)
					return err
				})
			}
			if err != nil {
				if !domain.IsBusiness(err) {
					return err
				}
				result.failUnnamed(fmt.Sprintf("Part #%d: %s", in.PartID, err.Error()))
				continue
			}
			result.succeed(item.ID)
			added = append(added, item)
		}
		return nil
	})
	if err != nil {
		if !domain.IsBusiness(err) {
			logger.Error(ctx).Err(err).Uint("check_id", cmd.CheckID).Msg("Bulk item addition rolled back")
		}
		return nil, err
	}

	result.count(bulkAddItems)
	for _, item := range added {
		h.auditor.Record(ctx, auditEntry(cmd.Actor, domain.EntityCheckItem, item.ID, "Create",
			fmt.Sprintf("Added part %d to inventory check %s: system %d, actual %d",
				item.PartID, check.Code, item.SystemQuantity, item.ActualQuantity), audit.SeverityInfo))
	}
	logger.Info(ctx).
		Str("code", check.Code).
		Int("succeeded", result.SuccessCount).
		Int("failed", result.FailureCount).
		Msg("Bulk item addition finished")
	return result, nil
}

// BulkUpdateCheckItemsCommand applies the same count or notes to many items.
// A nil field is left unchanged.
type BulkUpdateCheckItemsCommand struct {
	CheckID        uint
	ItemIDs        []uint
	ActualQuantity *int
	Notes          *string
	Actor          domain.Actor
}

// BulkUpdateCheckItemsHandler re-snapshots every item from live stock, as a
// single update does.
type BulkUpdateCheckItemsHandler struct {
	store   domain.Store
	auditor Auditor
	limit   BulkLimit
}

func NewBulkUpdateCheckItemsHandler(store domain.Store, auditor Auditor, limit BulkLimit) *BulkUpdateCheckItemsHandler {
	return &BulkUpdateCheckItemsHandler{store: store, auditor: auditor, limit: limit}
}

func (h *BulkUpdateCheckItemsHandler) Handle(ctx context.Context, cmd BulkUpdateCheckItemsCommand) (*BulkResult, error) {
	ids, err := bulkIDs(cmd.ItemIDs, h.limit, "item")
	if err != nil {
		return nil, err
	}
	if cmd.ActualQuantity == nil && cmd.Notes == nil {
		return nil, domain.Validationf("actual_quantity or notes is required")
	}
	if cmd.ActualQuantity != nil && *cmd.ActualQuantity < 0 {
		return nil, domain.Validationf("actual quantity cannot be negative")
	}

	var (
		result  *BulkResult
		check   *domain.Check
		updated []*domain.CheckItem
	)
	err = h.store.Transaction(ctx, func(tx domain.Store) error {
		result, updated = newBulkResult(), nil
		c, err := findCheck(ctx, tx.Checks(), cmd.CheckID)
		if err != nil {
			return err
		}
		if err := c.EnsureEditable(); err != nil {
			return err
		}
		check = c

		for _, id := range ids {
			var item *domain.CheckItem
			err := tx.Transaction(ctx, func(sp domain.Store) error {
				it, err := sp.Checks().FindItem(ctx, c.ID, id)
				if err != nil {
					return lookup(err, "not found in inventory check %s", c.Code)
				}
				system, err := snapshot(ctx, sp.Parts(), it.PartID, it.SystemQuantity)
				if err != nil {
					return err
				}
				actual := it.ActualQuantity
				if cmd.ActualQuantity != nil {
					actual = *cmd.ActualQuantity
				}
				it.Recount(system, actual)
				if cmd.Notes != nil {
					it.Notes = strings.TrimSpace(*cmd.Notes)
				}
				item = it
				return sp.Checks().UpdateItem(ctx, it)
			})
			if err != nil {
				if !domain.IsBusiness(err) {
					return err
				}
				result.fail(id, fmt.Sprintf("Item #%d: %s", id, err.Error()))
				continue
			}
			result.succeed(id)
			updated = append(updated, item)
		}
		return nil
	})
	if err != nil {
		if !domain.IsBusiness(err) {
			logger.Error(ctx).Err(err).Uint("check_id", cmd.CheckID).Msg("Bulk item update rolled back")
		}
		return nil, err
	}

	result.count(bulkUpdateItems)
	for _, item := range updated {
		h.auditor.Record(ctx, auditEntry(cmd.Actor, domain.EntityCheckItem, item.ID, "Update",
			fmt.Sprintf("Updated part %d in inventory check %s: system %d, actual %d",
				item.PartID, check.Code, item.SystemQuantity, item.ActualQuantity), audit.SeverityInfo))
	}
	logger.Info(ctx).
		Str("code", check.Code).
		Int("succeeded", result.SuccessCount).
		Int("failed", result.FailureCount).
		Msg("Bulk item update finished")
	return result, nil
}
