package command

import (
	"context"
	"sync"
	"time"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/ledger"
	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

// Broadcaster is the fire-and-forget notification collaborator.
type Broadcaster interface {
	AlertCountChanged(ctx context.Context, count int64) error
	StockAdjusted(ctx context.Context, adjustment *domain.Adjustment, entries []domain.StockTransaction) error
}

const defaultAnnounceTimeout = 5 * time.Second

// Notifier publishes post-commit signals off the request path. Failures are
// logged and never reach the caller.
type Notifier struct {
	alerts      domain.AlertRepository
	broadcaster Broadcaster
	timeout     time.Duration
	wg          sync.WaitGroup
}

// NewNotifier creates a notifier reading alert counts from store
func NewNotifier(store domain.Store, broadcaster Broadcaster) *Notifier {
	return &Notifier{
		alerts:      store.Alerts(),
		broadcaster: broadcaster,
		timeout:     defaultAnnounceTimeout,
	}
}

// Announce publishes one stock-adjusted event per outcome, then the fresh
// unresolved alert count.
func (n *Notifier) Announce(ctx context.Context, outcomes ...*ledger.Outcome) {
	if len(outcomes) == 0 {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		defer cancel()

		for _, out := range outcomes {
			if err := n.broadcaster.StockAdjusted(ctx, out.Adjustment, out.Entries); err != nil {
				logger.Warn(ctx).Err(err).Str("code", out.Adjustment.Code).Msg("Failed to publish stock adjusted event")
			}
		}

		count, err := n.alerts.CountUnresolved(ctx)
		if err != nil {
			logger.Warn(ctx).Err(err).Msg("Failed to count unresolved alerts")
			return
		}
		unresolvedAlerts.Set(float64(count))
		if err := n.broadcaster.AlertCountChanged(ctx, count); err != nil {
			logger.Warn(ctx).Err(err).Int64("count", count).Msg("Failed to broadcast alert count")
		}
	}()
}

// Wait blocks until in-flight announcements finish.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
