package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/vegatran/GaraManager-sub003/internal/audit"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/ledger"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/sequence"
	"github.com/vegatran/GaraManager-sub003/pkg/lock"
	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

// ApproveAdjustmentCommand approves one pending ticket
type ApproveAdjustmentCommand struct {
	AdjustmentID uint
	Notes        string
	Actor        domain.Actor
}

// ApproveAdjustmentHandler applies a ticket to live stock under the part
// locks of every part it touches.
type ApproveAdjustmentHandler struct {
	store    domain.Store
	gen      *sequence.Generator
	applier  *ledger.Applier
	locker   lock.Locker
	auditor  Auditor
	notifier *Notifier
}

func NewApproveAdjustmentHandler(
	store domain.Store,
	gen *sequence.Generator,
	applier *ledger.Applier,
	locker lock.Locker,
	auditor Auditor,
	notifier *Notifier,
) *ApproveAdjustmentHandler {
	return &ApproveAdjustmentHandler{
		store:    store,
		gen:      gen,
		applier:  applier,
		locker:   locker,
		auditor:  auditor,
		notifier: notifier,
	}
}

func (h *ApproveAdjustmentHandler) Handle(ctx context.Context, cmd ApproveAdjustmentCommand) (*domain.Adjustment, error) {
	current, err := findAdjustment(ctx, h.store.Adjustments(), cmd.AdjustmentID)
	if err != nil {
		return nil, err
	}
	if err := current.EnsurePending(); err != nil {
		return nil, err
	}

	release, err := lockParts(ctx, h.locker, partIDs(current.Items))
	if err != nil {
		return nil, err
	}
	defer release()

	var out *ledger.Outcome
	err = withCodeRetry(ctx, domain.CodeTransaction, true, func() error {
		return h.store.Transaction(ctx, func(tx domain.Store) error {
			adj, err := findAdjustment(ctx, tx.Adjustments(), cmd.AdjustmentID)
			if err != nil {
				return err
			}
			block, err := h.gen.ReserveBlock(ctx, tx.Codes(), domain.CodeTransaction, len(adj.Items))
			if err != nil {
				return fmt.Errorf("failed to reserve ledger codes: %w", err)
			}
			out, err = h.applier.Approve(ctx, tx, adj, cmd.Actor, cmd.Notes, block)
			return err
		})
	})
	if err != nil {
		if !domain.IsBusiness(err) {
			logger.Error(ctx).Err(err).Str("code", current.Code).Msg("Failed to approve inventory adjustment")
		}
		return nil, err
	}

	recordApproved(ctx, h.auditor, cmd.Actor, out)
	h.notifier.Announce(ctx, out)
	logger.Info(ctx).
		Str("code", out.Adjustment.Code).
		Int("entries", len(out.Entries)).
		Str("actor", cmd.Actor.DisplayName()).
		Msg("Inventory adjustment approved")
	return out.Adjustment, nil
}

// RejectAdjustmentCommand rejects one pending ticket
type RejectAdjustmentCommand struct {
	AdjustmentID uint
	Reason       string
	Actor        domain.Actor
}

type RejectAdjustmentHandler struct {
	store   domain.Store
	applier *ledger.Applier
	auditor Auditor
}

func NewRejectAdjustmentHandler(store domain.Store, applier *ledger.Applier, auditor Auditor) *RejectAdjustmentHandler {
	return &RejectAdjustmentHandler{store: store, applier: applier, auditor: auditor}
}

func (h *RejectAdjustmentHandler) Handle(ctx context.Context, cmd RejectAdjustmentCommand) (*domain.Adjustment, error) {
	if strings.TrimSpace(cmd.Reason) == "" {
		return nil, domain.Validationf("rejection reason is required")
	}

	var adj *domain.Adjustment
	err := h.store.Transaction(ctx, func(tx domain.Store) error {
		a, err := findAdjustment(ctx, tx.Adjustments(), cmd.AdjustmentID)
		if err != nil {
			return err
		}
		if err := h.applier.Reject(ctx, tx, a, cmd.Actor, cmd.Reason); err != nil {
			return err
		}
		adj = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordRejected(ctx, h.auditor, cmd.Actor, adj)
	logger.Info(ctx).
		Str("code", adj.Code).
		Str("reason", adj.RejectionReason).
		Str("actor", cmd.Actor.DisplayName()).
		Msg("Inventory adjustment rejected")
	return adj, nil
}

func recordApproved(ctx context.Context, auditor Auditor, actor domain.Actor, out *ledger.Outcome) {
	adj := out.Adjustment
	adjustmentsDecided.WithLabelValues("approved").Inc()
	auditor.Record(ctx, auditEntry(actor, domain.EntityAdjustment, adj.ID, "Approve",
		fmt.Sprintf("Approved inventory adjustment %s: %d stock transactions", adj.Code, len(out.Entries)),
		audit.SeverityInfo))
	for i, entry := range out.Entries {
		ledgerEntries.WithLabelValues(string(entry.Direction)).Inc()
		if i < len(adj.Items) {
			auditor.Record(ctx, auditEntry(actor, domain.EntityAdjustmentItem, adj.Items[i].ID, "Apply",
				fmt.Sprintf("%s: part %d %d -> %d", entry.Code, entry.PartID, entry.QuantityBefore, entry.QuantityAfter),
				audit.SeverityInfo))
		}
	}
}

func recordRejected(ctx context.Context, auditor Auditor, actor domain.Actor, adj *domain.Adjustment) {
	adjustmentsDecided.WithLabelValues("rejected").Inc()
	auditor.Record(ctx, auditEntry(actor, domain.EntityAdjustment, adj.ID, "Reject",
		fmt.Sprintf("Rejected inventory adjustment %s: %s", adj.Code, adj.RejectionReason),
		audit.SeverityWarning))
}
