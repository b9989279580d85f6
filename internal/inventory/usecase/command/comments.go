package command

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vegatran/GaraManager-sub003/internal/audit"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

// AddCommentCommand appends to a ticket's discussion thread
type AddCommentCommand struct {
	AdjustmentID uint
	Text         string
	Actor        domain.Actor
}

type AddCommentHandler struct {
	store   domain.Store
	auditor Auditor
}

func NewAddCommentHandler(store domain.Store, auditor Auditor) *AddCommentHandler {
	return &AddCommentHandler{store: store, auditor: auditor}
}

func (h *AddCommentHandler) Handle(ctx context.Context, cmd AddCommentCommand) (*domain.AdjustmentComment, error) {
	text, err := commentText(cmd.Text)
	if err != nil {
		return nil, err
	}

	adj, err := findAdjustment(ctx, h.store.Adjustments(), cmd.AdjustmentID)
	if err != nil {
		return nil, err
	}

	comment := &domain.AdjustmentComment{
		AdjustmentID:     adj.ID,
		Text:             text,
		AuthorUserID:     cmd.Actor.UserID,
		AuthorEmployeeID: cmd.Actor.EmployeeID,
		AuthorName:       cmd.Actor.DisplayName(),
	}
	if err := h.store.Adjustments().AddComment(ctx, comment); err != nil {
		return nil, err
	}

	h.auditor.Record(ctx, auditEntry(cmd.Actor, domain.EntityAdjustmentComment, comment.ID, "Create",
		fmt.Sprintf("Commented on inventory adjustment %s", adj.Code), audit.SeverityInfo))
	return comment, nil
}

// DeleteCommentCommand removes a comment of the given ticket
type DeleteCommentCommand struct {
	AdjustmentID uint
	CommentID    uint
	Actor        domain.Actor
}

type DeleteCommentHandler struct {
	store   domain.Store
	auditor Auditor
}

func NewDeleteCommentHandler(store domain.Store, auditor Auditor) *DeleteCommentHandler {
	return &DeleteCommentHandler{store: store, auditor: auditor}
}

func (h *DeleteCommentHandler) Handle(ctx context.Context, cmd DeleteCommentCommand) error {
	comment, err := h.store.Adjustments().FindComment(ctx, cmd.AdjustmentID, cmd.CommentID)
	if err != nil {
		return lookup(err, "comment %d not found on inventory adjustment %d", cmd.CommentID, cmd.AdjustmentID)
	}
	if err := h.store.Adjustments().DeleteComment(ctx, comment); err != nil {
		return err
	}

	h.auditor.Record(ctx, auditEntry(cmd.Actor, domain.EntityAdjustmentComment, comment.ID, "Delete",
		fmt.Sprintf("Deleted comment %d on inventory adjustment %d", comment.ID, cmd.AdjustmentID), audit.SeverityInfo))
	return nil
}

// AddCheckCommentCommand appends to a check's discussion thread
type AddCheckCommentCommand struct {
	CheckID uint
	Text    string
	Actor   domain.Actor
}

type AddCheckCommentHandler struct {
	store   domain.Store
	auditor Auditor
}

func NewAddCheckCommentHandler(store domain.Store, auditor Auditor) *AddCheckCommentHandler {
	return &AddCheckCommentHandler{store: store, auditor: auditor}
}

// Handle accepts comments on checks in any status.
func (h *AddCheckCommentHandler) Handle(ctx context.Context, cmd AddCheckCommentCommand) (*domain.CheckComment, error) {
	text, err := commentText(cmd.Text)
	if err != nil {
		return nil, err
	}

	check, err := findCheck(ctx, h.store.Checks(), cmd.CheckID)
	if err != nil {
		return nil, err
	}

	comment := &domain.CheckComment{
		CheckID:          check.ID,
		Text:             text,
		AuthorUserID:     cmd.Actor.UserID,
		AuthorEmployeeID: cmd.Actor.EmployeeID,
		AuthorName:       cmd.Actor.DisplayName(),
	}
	if err := h.store.Checks().AddComment(ctx, comment); err != nil {
		return nil, err
	}

	h.auditor.Record(ctx, auditEntry(cmd.Actor, domain.EntityCheckComment, comment.ID, "Create",
		fmt.Sprintf("Commented on inventory check %s", check.Code), audit.SeverityInfo))
	return comment, nil
}

// DeleteCheckCommentCommand removes a comment of the given check
type DeleteCheckCommentCommand struct {
	CheckID   uint
	CommentID uint
	Actor     domain.Actor
}

type DeleteCheckCommentHandler struct {
	store   domain.Store
	auditor Auditor
}

func NewDeleteCheckCommentHandler(store domain.Store, auditor Auditor) *DeleteCheckCommentHandler {
	return &DeleteCheckCommentHandler{store: store, auditor: auditor}
}

func (h *DeleteCheckCommentHandler) Handle(ctx context.Context, cmd DeleteCheckCommentCommand) error {
	comment, err := h.store.Checks().FindComment(ctx, cmd.CheckID, cmd.CommentID)
	if err != nil {
		return lookup(err, "comment %d not found on inventory check %d", cmd.CommentID, cmd.CheckID)
	}
	if err := h.store.Checks().DeleteComment(ctx, comment); err != nil {
		return err
	}

	h.auditor.Record(ctx, auditEntry(cmd.Actor, domain.EntityCheckComment, comment.ID, "Delete",
		fmt.Sprintf("Deleted comment %d on inventory check %d", comment.ID, cmd.CheckID), audit.SeverityInfo))
	return nil
}

func commentText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", domain.Validationf("comment text is required")
	}
	if n := utf8.RuneCountInString(text); n > domain.MaxCommentLength {
		return "", domain.Validationf("comment text is %d characters, at most %d are allowed", n, domain.MaxCommentLength)
	}
	return text, nil
}
