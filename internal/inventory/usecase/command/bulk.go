package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/ledger"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/sequence"
	"github.com/vegatran/GaraManager-sub003/pkg/lock"
	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

// DefaultBulkMaxItems caps the tickets of one bulk request.
const DefaultBulkMaxItems = 100

const (
	bulkApprove = "approve"
	bulkReject  = "reject"
)

// BulkLimit is the configured maximum entries per bulk call.
type BulkLimit int

// BulkResult reports every ticket of a bulk call individually.
type BulkResult struct {
	SuccessIDs   []uint   `json:"success_ids"`
	FailedIDs    []uint   `json:"failed_ids"`
	Errors       []string `json:"errors"`
	SuccessCount int      `json:"success_count"`
	FailureCount int      `json:"failure_count"`
}

func newBulkResult() *BulkResult {
	return &BulkResult{SuccessIDs: []uint{}, FailedIDs: []uint{}, Errors: []string{}}
}

func (r *BulkResult) succeed(id uint) {
	r.SuccessIDs = append(r.SuccessIDs, id)
	r.SuccessCount++
}

func (r *BulkResult) fail(id uint, msg string) {
	r.FailedIDs = append(r.FailedIDs, id)
	r.Errors = append(r.Errors, msg)
	r.FailureCount++
}

func (r *BulkResult) count(operation string) {
	bulkItems.WithLabelValues(operation, "success").Add(float64(r.SuccessCount))
	bulkItems.WithLabelValues(operation, "failure").Add(float64(r.FailureCount))
}

// failUnnamed records a failure for input that has no id yet.
func (r *BulkResult) failUnnamed(msg string) {
	r.Errors = append(r.Errors, msg)
	r.FailureCount++
}

func (l BulkLimit) check(n int, noun string) error {
	maxItems := int(l)
	if maxItems <= 0 {
		maxItems = DefaultBulkMaxItems
	}
	if n == 0 {
		return domain.Validationf("at least one %s is required", noun)
	}
	if n > maxItems {
		return domain.Validationf("at most %d %ss can be processed at once, got %d", maxItems, noun, n)
	}
	return nil
}

func bulkIDs(ids []uint, limit BulkLimit, noun string) ([]uint, error) {
	ids = dedupeIDs(ids)
	if err := limit.check(len(ids), noun); err != nil {
		return nil, err
	}
	return ids, nil
}

// BulkApproveCommand approves many tickets in one transaction
type BulkApproveCommand struct {
	AdjustmentIDs []uint
	Notes         string
	Actor         domain.Actor
}

// BulkApproveHandler runs the approval gate per ticket inside a savepoint.
// Business failures roll back only their own ticket; any other failure
// rolls back the whole batch.
type BulkApproveHandler struct {
	store    domain.Store
	gen      *sequence.Generator
	applier  *ledger.Applier
	locker   lock.Locker
	auditor  Auditor
	notifier *Notifier
	limit    BulkLimit
}

func NewBulkApproveHandler(
	store domain.Store,
	gen *sequence.Generator,
	applier *ledger.Applier,
	locker lock.Locker,
	auditor Auditor,
	notifier *Notifier,
	limit BulkLimit,
) *BulkApproveHandler {
	return &BulkApproveHandler{
		store:    store,
		gen:      gen,
		applier:  applier,
		locker:   locker,
		auditor:  auditor,
		notifier: notifier,
		limit:    limit,
	}
}

func (h *BulkApproveHandler) Handle(ctx context.Context, cmd BulkApproveCommand) (*BulkResult, error) {
	ids, err := bulkIDs(cmd.AdjustmentIDs, h.limit, "adjustment")
	if err != nil {
		return nil, err
	}

	known, err := h.store.Adjustments().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	var (
		parts      []uint
		totalItems int
	)
	for _, adj := range known {
		if adj.Status == domain.AdjustmentPending {
			parts = append(parts, partIDs(adj.Items)...)
			totalItems += len(adj.Items)
		}
	}

	release, err := lockParts(ctx, h.locker, parts)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		result   *BulkResult
		outcomes []*ledger.Outcome
	)
	err = withCodeRetry(ctx, domain.CodeTransaction, true, func() error {
		result, outcomes = newBulkResult(), nil
		return h.store.Transaction(ctx, func(tx domain.Store) error {
			block, err := h.gen.ReserveBlock(ctx, tx.Codes(), domain.CodeTransaction, totalItems)
			if err != nil {
				return fmt.Errorf("failed to reserve ledger codes: %w", err)
			}
			for _, id := range ids {
				out, err := h.approveOne(ctx, tx, id, cmd, block)
				if err != nil {
					if !domain.IsBusiness(err) {
						return err
					}
					result.fail(id, ticketError(id, out, err))
					continue
				}
				result.succeed(id)
				outcomes = append(outcomes, out)
			}
			return nil
		})
	})
	if err != nil {
		logger.Error(ctx).Err(err).Int("tickets", len(ids)).Msg("Bulk approval rolled back")
		return nil, err
	}

	result.count(bulkApprove)
	for _, out := range outcomes {
		recordApproved(ctx, h.auditor, cmd.Actor, out)
	}
	h.notifier.Announce(ctx, outcomes...)
	logger.Info(ctx).
		Int("succeeded", result.SuccessCount).
		Int("failed", result.FailureCount).
		Str("actor", cmd.Actor.DisplayName()).
		Msg("Bulk approval finished")
	return result, nil
}

// approveOne returns a partial outcome carrying the loaded ticket on
// business failures so the error can name its code.
func (h *BulkApproveHandler) approveOne(ctx context.Context, tx domain.Store, id uint, cmd BulkApproveCommand, block *sequence.Block) (*ledger.Outcome, error) {
	var out *ledger.Outcome
	var loaded *domain.Adjustment
	err := tx.Transaction(ctx, func(sp domain.Store) error {
		adj, err := findAdjustment(ctx, sp.Adjustments(), id)
		if err != nil {
			return err
		}
		loaded = adj
		out, err = h.applier.Approve(ctx, sp, adj, cmd.Actor, cmd.Notes, block)
		return err
	})
	if err != nil {
		if loaded != nil {
			return &ledger.Outcome{Adjustment: loaded}, err
		}
		return nil, err
	}
	return out, nil
}

// BulkRejectCommand rejects many tickets with one reason
type BulkRejectCommand struct {
	AdjustmentIDs []uint
	Reason        string
	Actor         domain.Actor
}

type BulkRejectHandler struct {
	store   domain.Store
	applier *ledger.Applier
	auditor Auditor
	limit   BulkLimit
}

func NewBulkRejectHandler(store domain.Store, applier *ledger.Applier, auditor Auditor, limit BulkLimit) *BulkRejectHandler {
	return &BulkRejectHandler{store: store, applier: applier, auditor: auditor, limit: limit}
}

func (h *BulkRejectHandler) Handle(ctx context.Context, cmd BulkRejectCommand) (*BulkResult, error) {
	ids, err := bulkIDs(cmd.AdjustmentIDs, h.limit, "adjustment")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cmd.Reason) == "" {
		return nil, domain.Validationf("rejection reason is required")
	}

	result := newBulkResult()
	var rejected []*domain.Adjustment
	err = h.store.Transaction(ctx, func(tx domain.Store) error {
		for _, id := range ids {
			var loaded *domain.Adjustment
			err := tx.Transaction(ctx, func(sp domain.Store) error {
				adj, err := findAdjustment(ctx, sp.Adjustments(), id)
				if err != nil {
					return err
				}
				loaded = adj
				return h.applier.Reject(ctx, sp, adj, cmd.Actor, cmd.Reason)
			})
			if err != nil {
				if !domain.IsBusiness(err) {
					return err
				}
				var out *ledger.Outcome
				if loaded != nil {
					out = &ledger.Outcome{Adjustment: loaded}
				}
				result.fail(id, ticketError(id, out, err))
				continue
			}
			result.succeed(id)
			rejected = append(rejected, loaded)
		}
		return nil
	})
	if err != nil {
		logger.Error(ctx).Err(err).Int("tickets", len(ids)).Msg("Bulk rejection rolled back")
		return nil, err
	}

	result.count(bulkReject)
	for _, adj := range rejected {
		recordRejected(ctx, h.auditor, cmd.Actor, adj)
	}
	logger.Info(ctx).
		Int("succeeded", result.SuccessCount).
		Int("failed", result.FailureCount).
		Str("actor", cmd.Actor.DisplayName()).
		Msg("Bulk rejection finished")
	return result, nil
}

func ticketError(id uint, out *ledger.Outcome, err error) string {
	if out == nil || out.Adjustment == nil {
		if isNotFound(err) {
			return fmt.Sprintf("Ticket #%d: not found", id)
		}
		return fmt.Sprintf("Ticket #%d: %s", id, err.Error())
	}
	return fmt.Sprintf("Ticket %s: %s", out.Adjustment.Code, err.Error())
}
