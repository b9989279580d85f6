package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vegatran/GaraManager-sub003/internal/audit"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/pkg/lock"
	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

const (
	codeAttempts = 3
	partLockTTL  = 30 * time.Second
)

// Auditor receives best-effort audit entries after commit.
type Auditor interface {
	Record(ctx context.Context, entry audit.Entry)
}

func auditEntry(actor domain.Actor, entity string, id uint, action, details string, severity audit.Severity) audit.Entry {
	return audit.Entry{
		EntityName: entity,
		EntityID:   id,
		Action:     action,
		UserID:     actor.Identity(),
		UserName:   actor.DisplayName(),
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
		Details:    details,
		Severity:   severity,
	}
}

// withCodeRetry reruns fn when a generated code collided with a concurrent
// writer. User-supplied codes are not retried.
func withCodeRetry(ctx context.Context, kind domain.CodeKind, generated bool, fn func() error) error {
	attempts := 1
	if generated {
		attempts = codeAttempts
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !domain.IsRetryable(err) {
			return err
		}
		sequenceConflicts.WithLabelValues(string(kind)).Inc()
		logger.Warn(ctx).Err(err).Str("kind", string(kind)).Int("attempt", i+1).Msg("Persistence conflict, retrying")
	}
	return err
}

// lookup turns a repository miss into a not-found validation error.
func lookup(err error, format string, args ...any) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFoundf(format, args...)
	}
	return err
}

func livePart(ctx context.Context, parts domain.PartRepository, id uint) (*domain.Part, error) {
	if id == 0 {
		return nil, domain.Validationf("part_id is required")
	}
	part, err := parts.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "part %d not found", id)
	}
	return part, nil
}

// validateScope checks that zone and bin sit inside the stated warehouse.
func validateScope(ctx context.Context, repo domain.WarehouseRepository, s domain.Scope) error {
	if s.WarehouseID == nil {
		if s.ZoneID != nil || s.BinID != nil {
			return domain.Validationf("warehouse_id is required when a zone or bin is given")
		}
		return nil
	}
	if _, err := repo.FindWarehouse(ctx, *s.WarehouseID); err != nil {
		return lookup(err, "warehouse %d not found", *s.WarehouseID)
	}
	if s.ZoneID != nil {
		zone, err := repo.FindZone(ctx, *s.ZoneID)
		if err != nil {
			return lookup(err, "warehouse zone %d not found", *s.ZoneID)
		}
		if zone.WarehouseID != *s.WarehouseID {
			return domain.Validationf("zone %d does not belong to warehouse %d", zone.ID, *s.WarehouseID)
		}
	}
	if s.BinID != nil {
		bin, err := repo.FindBin(ctx, *s.BinID)
		if err != nil {
			return lookup(err, "warehouse bin %d not found", *s.BinID)
		}
		if bin.WarehouseID != *s.WarehouseID {
			return domain.Validationf("bin %d does not belong to warehouse %d", bin.ID, *s.WarehouseID)
		}
		if s.ZoneID != nil && (bin.ZoneID == nil || *bin.ZoneID != *s.ZoneID) {
			return domain.Validationf("bin %d does not belong to zone %d", bin.ID, *s.ZoneID)
		}
	}
	return nil
}

func partIDs(items []domain.AdjustmentItem) []uint {
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.PartID)
	}
	return ids
}

// lockParts takes the per-part locks for every id before a transaction
// writes their stock.
func lockParts(ctx context.Context, locker lock.Locker, ids []uint) (lock.Release, error) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, lock.PartKey(id))
	}
	release, err := locker.Acquire(ctx, keys, partLockTTL)
	if errors.Is(err, lock.ErrNotAcquired) {
		return nil, domain.PersistenceConflictf(err, "parts are being adjusted by another request, retry shortly")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock parts: %w", err)
	}
	return release, nil
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func now() time.Time {
	return time.Now().UTC()
}
