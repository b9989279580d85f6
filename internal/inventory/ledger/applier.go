// Package ledger applies approved adjustments to live stock and appends the
// matching stock transactions.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/sequence"
)

var tracer = otel.Tracer("inventory-ledger")

// Applier runs the approval gate inside a caller-owned transaction.
type Applier struct {
	now func() time.Time
}

func NewApplier() *Applier {
	return NewApplierWithClock(func() time.Time { return time.Now().UTC() })
}

func NewApplierWithClock(now func() time.Time) *Applier {
	return &Applier{now: now}
}

// Outcome describes what one approval wrote.
type Outcome struct {
	Adjustment *domain.Adjustment
	Entries    []domain.StockTransaction
	Parts      []*domain.Part
}

type partPlan struct {
	partID uint
	items  []domain.AdjustmentItem
	target int
}

// planByPart groups items per part in ticket order. The last item's
// quantity after is the part's target, so each part is written once.
func planByPart(items []domain.AdjustmentItem) ([]*partPlan, error) {
	var plans []*partPlan
	index := make(map[uint]*partPlan)
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
		p, ok := index[item.PartID]
		if !ok {
			p = &partPlan{partID: item.PartID}
			index[item.PartID] = p
			plans = append(plans, p)
		}
		p.items = append(p.items, item)
		p.target = item.SystemQuantityAfter
	}
	return plans, nil
}

// Approve validates every item against live stock and only then writes
// quantities, ledger entries and the ticket decision. Any validation failure
// leaves the transaction untouched.
func (a *Applier) Approve(ctx context.Context, tx domain.Store, adj *domain.Adjustment, actor domain.Actor, notes string, codeBlock *sequence.Block) (out *Outcome, err error) {
	ctx, span := tracer.Start(ctx, "ledger.Approve",
		trace.WithAttributes(
			attribute.Int("adjustment.id", int(adj.ID)),
			attribute.String("adjustment.code", adj.Code),
			attribute.Int("adjustment.items", len(adj.Items)),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := adj.EnsurePending(); err != nil {
		return nil, err
	}
	if len(adj.Items) == 0 {
		return nil, domain.Validationf("inventory adjustment %s has no items", adj.Code)
	}

	plans, err := planByPart(adj.Items)
	if err != nil {
		return nil, err
	}

	parts := make(map[uint]*domain.Part, len(plans))
	for _, p := range plans {
		part, err := tx.Parts().FindForUpdate(ctx, p.partID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Validationf("part %d no longer exists or has been deleted", p.partID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to reload part %d: %w", p.partID, err)
		}
		if !part.IsActive {
			return nil, domain.Validationf("part %s is inactive", part.PartNumber)
		}
		if p.target < 0 {
			return nil, domain.Validationf("part %s: adjustment would leave negative stock (%d)", part.PartNumber, p.target)
		}
		if expected := p.items[0].SystemQuantityBefore; part.QuantityInStock != expected {
			return nil, domain.Validationf("stock of part %s changed since the adjustment was created (expected %d, found %d)",
				part.PartNumber, expected, part.QuantityInStock)
		}
		parts[p.partID] = part
	}

	ledgerCodes, err := codeBlock.Take(ctx, tx.Codes(), len(adj.Items))
	if err != nil {
		return nil, fmt.Errorf("failed to reserve ledger codes: %w", err)
	}

	now := a.now()
	running := make(map[uint]int, len(parts))
	for id, part := range parts {
		running[id] = part.QuantityInStock
	}
	entries := make([]domain.StockTransaction, 0, len(adj.Items))
	for i, item := range adj.Items {
		part := parts[item.PartID]
		before := running[item.PartID]
		entries = append(entries, newEntry(ledgerCodes[i], adj, item, part, before, actor, now))
		running[item.PartID] = item.SystemQuantityAfter
	}

	updated := make([]*domain.Part, 0, len(plans))
	for _, p := range plans {
		part := parts[p.partID]
		if err := tx.Parts().UpdateQuantity(ctx, part, p.target); err != nil {
			return nil, err
		}
		updated = append(updated, part)
	}

	if err := tx.Transactions().CreateBatch(ctx, entries); err != nil {
		return nil, err
	}

	if err := adj.MarkApproved(actor, now, notes); err != nil {
		return nil, err
	}
	if err := tx.Adjustments().Update(ctx, adj); err != nil {
		return nil, err
	}

	for _, part := range updated {
		if err := reconcileAlerts(ctx, tx.Alerts(), part, now); err != nil {
			return nil, err
		}
	}

	span.SetAttributes(attribute.Int("ledger.entries", len(entries)))
	return &Outcome{Adjustment: adj, Entries: entries, Parts: updated}, nil
}

// Reject records the decision; stock and ledger are untouched.
func (a *Applier) Reject(ctx context.Context, tx domain.Store, adj *domain.Adjustment, actor domain.Actor, reason string) error {
	if err := adj.MarkRejected(actor, a.now(), reason); err != nil {
		return err
	}
	return tx.Adjustments().Update(ctx, adj)
}

func newEntry(code string, adj *domain.Adjustment, item domain.AdjustmentItem, part *domain.Part, before int, actor domain.Actor, at time.Time) domain.StockTransaction {
	after := item.SystemQuantityAfter
	change := after - before
	quantity := change
	if quantity < 0 {
		quantity = -quantity
	}
	q := decimal.NewFromInt(int64(quantity))

	note := fmt.Sprintf("Inventory adjustment %s: %+d", adj.Code, change)
	if item.Notes != "" {
		note += " - " + item.Notes
	}

	return domain.StockTransaction{
		Code:                  code,
		PartID:                part.ID,
		Direction:             domain.DirectionOf(change),
		Quantity:              quantity,
		QuantityBefore:        before,
		QuantityAfter:         after,
		UnitCost:              part.CostPrice,
		UnitPrice:             part.SellPrice,
		TotalCost:             q.Mul(part.CostPrice),
		TotalAmount:           q.Mul(part.SellPrice),
		TransactionDate:       at,
		ReferenceNumber:       adj.Code,
		RelatedEntity:         domain.RelatedEntityAdjustment,
		RelatedEntityID:       adj.ID,
		Notes:                 note,
		ProcessedByEmployeeID: actor.EmployeeID,
	}
}
