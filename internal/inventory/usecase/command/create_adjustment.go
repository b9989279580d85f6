package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vegatran/GaraManager-sub003/internal/audit"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/sequence"
	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

// CreateAdjustmentFromCheckCommand proposes a ticket from a completed check
type CreateAdjustmentFromCheckCommand struct {
	CheckID uint
	Reason  string
	Notes   string
	Actor   domain.Actor
}

// CreateAdjustmentFromCheckHandler turns unconsumed discrepancies into one
// pending ticket and marks the source items adjusted.
type CreateAdjustmentFromCheckHandler struct {
	store   domain.Store
	gen     *sequence.Generator
	auditor Auditor
}

func NewCreateAdjustmentFromCheckHandler(store domain.Store, gen *sequence.Generator, auditor Auditor) *CreateAdjustmentFromCheckHandler {
	return &CreateAdjustmentFromCheckHandler{store: store, gen: gen, auditor: auditor}
}

func (h *CreateAdjustmentFromCheckHandler) Handle(ctx context.Context, cmd CreateAdjustmentFromCheckCommand) (*domain.Adjustment, error) {
	var adj *domain.Adjustment
	err := withCodeRetry(ctx, domain.CodeAdjustment, true, func() error {
		return h.store.Transaction(ctx, func(tx domain.Store) error {
			a, err := h.propose(ctx, tx, cmd)
			if err != nil {
				return err
			}
			adj = a
			return nil
		})
	})
	if err != nil {
		if !domain.IsBusiness(err) {
			logger.Error(ctx).Err(err).Uint("check_id", cmd.CheckID).Msg("Failed to create adjustment from check")
		}
		return nil, err
	}

	recordCreated(ctx, h.auditor, cmd.Actor, adj)
	logger.Info(ctx).
		Str("code", adj.Code).
		Uint("check_id", cmd.CheckID).
		Int("items", len(adj.Items)).
		Str("actor", cmd.Actor.DisplayName()).
		Msg("Inventory adjustment proposed from check")
	return adj, nil
}

func (h *CreateAdjustmentFromCheckHandler) propose(ctx context.Context, tx domain.Store, cmd CreateAdjustmentFromCheckCommand) (*domain.Adjustment, error) {
	check, err := findCheck(ctx, tx.Checks(), cmd.CheckID)
	if err != nil {
		return nil, err
	}
	if check.Status != domain.CheckCompleted {
		return nil, domain.Conflictf("inventory check %s must be completed before adjustments can be created (status %s)", check.Code, check.Status)
	}

	sources, err := tx.Checks().ProposableItems(ctx, check.ID)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, domain.Validationf("inventory check %s has no unadjusted discrepancies", check.Code)
	}

	items := make([]domain.AdjustmentItem, 0, len(sources))
	for _, src := range sources {
		part, err := tx.Parts().FindByID(ctx, src.PartID)
		if err != nil {
			return nil, lookup(err, "part %d of inventory check %s no longer exists", src.PartID, check.Code)
		}
		checkItemID := src.ID
		item := domain.AdjustmentItem{
			PartID:               part.ID,
			CheckItemID:          &checkItemID,
			QuantityChange:       src.DiscrepancyQuantity,
			SystemQuantityBefore: part.QuantityInStock,
			SystemQuantityAfter:  part.QuantityInStock + src.DiscrepancyQuantity,
			Notes:                src.Notes,
		}
		if err := item.Validate(); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	code, err := h.gen.Next(ctx, tx.Codes(), domain.CodeAdjustment)
	if err != nil {
		return nil, fmt.Errorf("failed to generate adjustment code: %w", err)
	}

	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		reason = "Adjustment from inventory check " + check.Code
	}
	checkID := check.ID
	adj := &domain.Adjustment{
		Code:                code,
		CheckID:             &checkID,
		AdjustmentDate:      now(),
		Status:              domain.AdjustmentPending,
		Reason:              reason,
		Notes:               strings.TrimSpace(cmd.Notes),
		Scope:               check.Scope,
		CreatedByEmployeeID: cmd.Actor.EmployeeID,
		Items:               items,
	}
	if err := tx.Adjustments().Create(ctx, adj); err != nil {
		return nil, err
	}

	links := make(map[uint]uint, len(adj.Items))
	for _, it := range adj.Items {
		links[*it.CheckItemID] = it.ID
	}
	if err := tx.Checks().LinkAdjustmentItems(ctx, links); err != nil {
		return nil, err
	}
	return adj, nil
}

// ManualItemInput is one caller-supplied change. Before must match live stock.
type ManualItemInput struct {
	PartID               uint
	QuantityChange       int
	SystemQuantityBefore int
	SystemQuantityAfter  int
	Notes                string
}

// CreateManualAdjustmentCommand proposes a ticket from explicit changes
type CreateManualAdjustmentCommand struct {
	Scope          domain.Scope
	CheckID        *uint
	AdjustmentDate *time.Time
	Reason         string
	Notes          string
	Items          []ManualItemInput
	Actor          domain.Actor
}

type CreateManualAdjustmentHandler struct {
	store   domain.Store
	gen     *sequence.Generator
	auditor Auditor
}

func NewCreateManualAdjustmentHandler(store domain.Store, gen *sequence.Generator, auditor Auditor) *CreateManualAdjustmentHandler {
	return &CreateManualAdjustmentHandler{store: store, gen: gen, auditor: auditor}
}

func (h *CreateManualAdjustmentHandler) Handle(ctx context.Context, cmd CreateManualAdjustmentCommand) (*domain.Adjustment, error) {
	items, err := manualItems(cmd)
	if err != nil {
		return nil, err
	}

	var adj *domain.Adjustment
	err = withCodeRetry(ctx, domain.CodeAdjustment, true, func() error {
		return h.store.Transaction(ctx, func(tx domain.Store) error {
			if err := validateScope(ctx, tx.Warehouses(), cmd.Scope); err != nil {
				return err
			}
			if cmd.CheckID != nil {
				if _, err := findCheck(ctx, tx.Checks(), *cmd.CheckID); err != nil {
					return err
				}
			}
			for _, it := range items {
				part, err := livePart(ctx, tx.Parts(), it.PartID)
				if err != nil {
					return err
				}
				if part.QuantityInStock != it.SystemQuantityBefore {
					return domain.Validationf("part %s: quantity before (%d) does not match current stock (%d)",
						part.PartNumber, it.SystemQuantityBefore, part.QuantityInStock)
				}
			}

			code, err := h.gen.Next(ctx, tx.Codes(), domain.CodeAdjustment)
			if err != nil {
				return fmt.Errorf("failed to generate adjustment code: %w", err)
			}
			date := now()
			if cmd.AdjustmentDate != nil {
				date = cmd.AdjustmentDate.UTC()
			}
			a := &domain.Adjustment{
				Code:                code,
				CheckID:             cmd.CheckID,
				AdjustmentDate:      date,
				Status:              domain.AdjustmentPending,
				Reason:              strings.TrimSpace(cmd.Reason),
				Notes:               strings.TrimSpace(cmd.Notes),
				Scope:               cmd.Scope,
				CreatedByEmployeeID: cmd.Actor.EmployeeID,
				Items:               append([]domain.AdjustmentItem(nil), items...),
			}
			if err := tx.Adjustments().Create(ctx, a); err != nil {
				return err
			}
			adj = a
			return nil
		})
	})
	if err != nil {
		if !domain.IsBusiness(err) {
			logger.Error(ctx).Err(err).Msg("Failed to create manual adjustment")
		}
		return nil, err
	}

	recordCreated(ctx, h.auditor, cmd.Actor, adj)
	logger.Info(ctx).
		Str("code", adj.Code).
		Int("items", len(adj.Items)).
		Str("actor", cmd.Actor.DisplayName()).
		Msg("Manual inventory adjustment created")
	return adj, nil
}

func manualItems(cmd CreateManualAdjustmentCommand) ([]domain.AdjustmentItem, error) {
	if strings.TrimSpace(cmd.Reason) == "" {
		return nil, domain.Validationf("reason is required")
	}
	if len(cmd.Items) == 0 {
		return nil, domain.Validationf("at least one item is required")
	}

	seen := make(map[uint]struct{}, len(cmd.Items))
	items := make([]domain.AdjustmentItem, 0, len(cmd.Items))
	for _, in := range cmd.Items {
		if in.PartID == 0 {
			return nil, domain.Validationf("part_id is required for every item")
		}
		if _, ok := seen[in.PartID]; ok {
			return nil, domain.Validationf("part %d appears more than once", in.PartID)
		}
		seen[in.PartID] = struct{}{}

		item := domain.AdjustmentItem{
			PartID:               in.PartID,
			QuantityChange:       in.QuantityChange,
			SystemQuantityBefore: in.SystemQuantityBefore,
			SystemQuantityAfter:  in.SystemQuantityAfter,
			Notes:                strings.TrimSpace(in.Notes),
		}
		if err := item.Validate(); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func recordCreated(ctx context.Context, auditor Auditor, actor domain.Actor, adj *domain.Adjustment) {
	auditor.Record(ctx, auditEntry(actor, domain.EntityAdjustment, adj.ID, "Create",
		fmt.Sprintf("Created inventory adjustment %s with %d items: %s", adj.Code, len(adj.Items), adj.Reason),
		audit.SeverityInfo))
	for _, it := range adj.Items {
		auditor.Record(ctx, auditEntry(actor, domain.EntityAdjustmentItem, it.ID, "Create",
			fmt.Sprintf("Part %d: %d %+d = %d", it.PartID, it.SystemQuantityBefore, it.QuantityChange, it.SystemQuantityAfter),
			audit.SeverityInfo))
	}
}

func findAdjustment(ctx context.Context, adjustments domain.AdjustmentRepository, id uint) (*domain.Adjustment, error) {
	adj, err := adjustments.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "inventory adjustment %d not found", id)
	}
	return adj, nil
}
