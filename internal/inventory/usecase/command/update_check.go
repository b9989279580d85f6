package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vegatran/GaraManager-sub003/internal/audit"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

// UpdateCheckCommand edits the header of an open check. Nil fields are left
// unchanged; status moves only through start, complete and cancel.
type UpdateCheckCommand struct {
	CheckID     uint
	Code        *string
	Name        *string
	Description *string
	CheckDate   *time.Time
	Scope       *domain.Scope
	Notes       *string
	Actor       domain.Actor
}

type UpdateCheckHandler struct {
	store   domain.Store
	auditor Auditor
}

func NewUpdateCheckHandler(store domain.Store, auditor Auditor) *UpdateCheckHandler {
	return &UpdateCheckHandler{store: store, auditor: auditor}
}

func (h *UpdateCheckHandler) Handle(ctx context.Context, cmd UpdateCheckCommand) (*domain.Check, error) {
	var (
		check   *domain.Check
		changed []string
	)
	err := h.store.Transaction(ctx, func(tx domain.Store) error {
		c, err := findCheck(ctx, tx.Checks(), cmd.CheckID)
		if err != nil {
			return err
		}
		if err := c.EnsureEditable(); err != nil {
			return err
		}
		changed = nil

		if cmd.Code != nil {
			code := strings.TrimSpace(*cmd.Code)
			if code == "" {
				return domain.Validationf("code cannot be empty")
			}
			if code != c.Code {
				if err := ensureCheckCodeFree(ctx, tx.Checks(), code); err != nil {
					return err
				}
				changed = append(changed, fmt.Sprintf("code %s -> %s", c.Code, code))
				c.Code = code
			}
		}
		if cmd.Name != nil {
			name := strings.TrimSpace(*cmd.Name)
			if name == "" {
				return domain.Validationf("name cannot be empty")
			}
			c.Name = name
			changed = append(changed, "name")
		}
		if cmd.Description != nil {
			c.Description = strings.TrimSpace(*cmd.Description)
			changed = append(changed, "description")
		}
		if cmd.CheckDate != nil {
			c.CheckDate = cmd.CheckDate.UTC()
			changed = append(changed, "check date")
		}
		if cmd.Scope != nil {
			if err := validateScope(ctx, tx.Warehouses(), *cmd.Scope); err != nil {
				return err
			}
			c.Scope = *cmd.Scope
			changed = append(changed, "scope")
		}
		if cmd.Notes != nil {
			c.Notes = strings.TrimSpace(*cmd.Notes)
			changed = append(changed, "notes")
		}

		check = c
		return tx.Checks().Update(ctx, c)
	})
	if err != nil {
		if !domain.IsBusiness(err) {
			logger.Error(ctx).Err(err).Uint("check_id", cmd.CheckID).Msg("Failed to update inventory check")
		}
		return nil, err
	}

	details := "no changes"
	if len(changed) > 0 {
		details = strings.Join(changed, ", ")
	}
	h.auditor.Record(ctx, auditEntry(cmd.Actor, domain.EntityCheck, check.ID, "Update",
		fmt.Sprintf("Updated inventory check %s: %s", check.Code, details), audit.SeverityInfo))
	logger.Info(ctx).Str("code", check.Code).Str("actor", cmd.Actor.DisplayName()).Msg("Inventory check updated")
	return check, nil
}
