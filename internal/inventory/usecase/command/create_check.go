package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vegatran/GaraManager-sub003/internal/audit"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/sequence"
	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

// CheckItemInput is one counted part.
type CheckItemInput struct {
	PartID         uint
	ActualQuantity int
	Notes          string
}

// CreateCheckCommand represents the command to open a counting session
type CreateCheckCommand struct {
	Code        string
	Name        string
	Description string
	CheckDate   *time.Time
	Scope       domain.Scope
	Notes       string
	Items       []CheckItemInput
	Actor       domain.Actor
}

// CreateCheckHandler handles check creation
type CreateCheckHandler struct {
	store   domain.Store
	gen     *sequence.Generator
	auditor Auditor
}

// NewCreateCheckHandler creates a new create check handler
func NewCreateCheckHandler(store domain.Store, gen *sequence.Generator, auditor Auditor) *CreateCheckHandler {
	return &CreateCheckHandler{store: store, gen: gen, auditor: auditor}
}

// Handle executes the create check command. Items are created with the
// check or not at all.
func (h *CreateCheckHandler) Handle(ctx context.Context, cmd CreateCheckCommand) (*domain.Check, error) {
	if err := validateCheckItems(cmd.Items); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(cmd.Code)
	generated := code == ""

	var check *domain.Check
	err := withCodeRetry(ctx, domain.CodeCheck, generated, func() error {
		return h.store.Transaction(ctx, func(tx domain.Store) error {
			c, err := h.build(ctx, tx, cmd, code)
			if err != nil {
				return err
			}
			if err := tx.Checks().Create(ctx, c); err != nil {
				return err
			}
			check = c
			return nil
		})
	})
	if err != nil {
		if !domain.IsBusiness(err) {
			logger.Error(ctx).Err(err).Msg("Failed to create inventory check")
		}
		return nil, err
	}

	h.auditor.Record(ctx, auditEntry(cmd.Actor, domain.EntityCheck, check.ID, "Create",
		fmt.Sprintf("Created inventory check %s with %d items", check.Code, len(check.Items)), audit.SeverityInfo))
	logger.Info(ctx).
		Str("code", check.Code).
		Uint("check_id", check.ID).
		Int("items", len(check.Items)).
		Str("actor", cmd.Actor.DisplayName()).
		Msg("Inventory check created")
	return check, nil
}

func (h *CreateCheckHandler) build(ctx context.Context, tx domain.Store, cmd CreateCheckCommand, code string) (*domain.Check, error) {
	if code == "" {
		next, err := h.gen.Next(ctx, tx.Codes(), domain.CodeCheck)
		if err != nil {
			return nil, fmt.Errorf("failed to generate check code: %w", err)
		}
		code = next
	} else if err := ensureCheckCodeFree(ctx, tx.Checks(), code); err != nil {
		return nil, err
	}

	if err := validateScope(ctx, tx.Warehouses(), cmd.Scope); err != nil {
		return nil, err
	}

	items := make([]domain.CheckItem, 0, len(cmd.Items))
	for _, in := range cmd.Items {
		part, err := livePart(ctx, tx.Parts(), in.PartID)
		if err != nil {
			return nil, err
		}
		item := domain.CheckItem{PartID: part.ID, Notes: strings.TrimSpace(in.Notes)}
		item.Recount(part.QuantityInStock, in.ActualQuantity)
		items = append(items, item)
	}

	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		name = "Inventory check " + code
	}
	checkDate := now()
	if cmd.CheckDate != nil {
		checkDate = cmd.CheckDate.UTC()
	}

	return &domain.Check{
		Code:        code,
		Name:        name,
		Description: strings.TrimSpace(cmd.Description),
		CheckDate:   checkDate,
		Status:      domain.CheckDraft,
		Scope:       cmd.Scope,
		Notes:       strings.TrimSpace(cmd.Notes),
		Items:       items,
	}, nil
}

// ensureCheckCodeFree vets a caller-chosen code: it must not imitate the
// generated form and must not be taken, deleted checks included.
func ensureCheckCodeFree(ctx context.Context, checks domain.CheckRepository, code string) error {
	if err := sequence.ValidateManual(domain.CodeCheck, code); err != nil {
		return err
	}
	exists, err := checks.CodeExists(ctx, code)
	if err != nil {
		return err
	}
	if exists {
		return domain.Validationf("inventory check code %s already exists", code)
	}
	return nil
}

func validateCheckItems(items []CheckItemInput) error {
	seen := make(map[uint]struct{}, len(items))
	for _, in := range items {
		if in.PartID == 0 {
			return domain.Validationf("part_id is required for every item")
		}
		if in.ActualQuantity < 0 {
			return domain.Validationf("part %d: actual quantity cannot be negative", in.PartID)
		}
		if _, ok := seen[in.PartID]; ok {
			return domain.Validationf("part %d appears more than once", in.PartID)
		}
		seen[in.PartID] = struct{}{}
	}
	return nil
}

func findCheck(ctx context.Context, checks domain.CheckRepository, id uint) (*domain.Check, error) {
	check, err := checks.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "inventory check %d not found", id)
	}
	return check, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
