package domain

import (
	"strings"
	"time"
)

// AdjustmentStatus is the state of a correction ticket. Both decisions are
// terminal.
type AdjustmentStatus string

const (
	AdjustmentPending  AdjustmentStatus = "Pending"
	AdjustmentApproved AdjustmentStatus = "Approved"
	AdjustmentRejected AdjustmentStatus = "Rejected"
)

// Adjustment is a proposed stock correction gated by approval.
type Adjustment struct {
	ID             uint             `json:"id" gorm:"primaryKey"`
	Code           string           `json:"code" gorm:"size:50;not null;uniqueIndex"`
	CheckID        *uint            `json:"check_id,omitempty" gorm:"index"`
	AdjustmentDate time.Time        `json:"adjustment_date" gorm:"index"`
	Status         AdjustmentStatus `json:"status" gorm:"size:20;not null;index"`
	Reason         string           `json:"reason" gorm:"size:500;not null"`
	Notes          string           `json:"notes,omitempty" gorm:"size:1000"`
	Scope
	CreatedByEmployeeID  *uint            `json:"created_by_employee_id,omitempty"`
	ApprovedByEmployeeID *uint            `json:"approved_by_employee_id,omitempty"`
	ApprovedBy           string           `json:"approved_by,omitempty" gorm:"size:255"`
	ApprovedAt           *time.Time       `json:"approved_at,omitempty"`
	RejectedByEmployeeID *uint            `json:"rejected_by_employee_id,omitempty"`
	RejectedAt           *time.Time       `json:"rejected_at,omitempty"`
	RejectionReason      string           `json:"rejection_reason,omitempty" gorm:"size:500"`
	Items                []AdjustmentItem `json:"items,omitempty" gorm:"foreignKey:AdjustmentID"`
	Lifecycle
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Adjustment) TableName() string {
	return "inventory_adjustments"
}

// EnsurePending guards both decisions.
func (a *Adjustment) EnsurePending() error {
	if a.Status != AdjustmentPending {
		return Conflictf("inventory adjustment %s is %s, only pending adjustments can be decided", a.Code, a.Status)
	}
	return nil
}

// MarkApproved flips the ticket to Approved. Non-blank notes replace the
// ticket notes.
func (a *Adjustment) MarkApproved(actor Actor, at time.Time, notes string) error {
	if err := a.EnsurePending(); err != nil {
		return err
	}
	a.Status = AdjustmentApproved
	a.ApprovedByEmployeeID = actor.EmployeeID
	a.ApprovedBy = actor.DisplayName()
	a.ApprovedAt = &at
	if n := strings.TrimSpace(notes); n != "" {
		a.Notes = n
	}
	return nil
}

// MarkRejected flips the ticket to Rejected.
func (a *Adjustment) MarkRejected(actor Actor, at time.Time, reason string) error {
	if err := a.EnsurePending(); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Validationf("rejection reason is required")
	}
	a.Status = AdjustmentRejected
	a.RejectedByEmployeeID = actor.EmployeeID
	a.RejectedAt = &at
	a.RejectionReason = reason
	return nil
}

// EnsureDeletable forbids removing an applied ticket.
func (a *Adjustment) EnsureDeletable() error {
	if a.Status == AdjustmentApproved {
		return Conflictf("inventory adjustment %s is approved and cannot be deleted", a.Code)
	}
	return nil
}

// AdjustmentItem is one part's proposed change.
type AdjustmentItem struct {
	ID                   uint      `json:"id" gorm:"primaryKey"`
	AdjustmentID         uint      `json:"adjustment_id" gorm:"not null;index"`
	PartID               uint      `json:"part_id" gorm:"not null;index"`
	CheckItemID          *uint     `json:"check_item_id,omitempty" gorm:"index"`
	QuantityChange       int       `json:"quantity_change" gorm:"not null"`
	SystemQuantityBefore int       `json:"system_quantity_before" gorm:"not null"`
	SystemQuantityAfter  int       `json:"system_quantity_after" gorm:"not null"`
	Notes                string    `json:"notes,omitempty" gorm:"size:500"`
	CreatedAt            time.Time `json:"created_at"`
}

func (AdjustmentItem) TableName() string {
	return "inventory_adjustment_items"
}

// Validate enforces before + change == after and after >= 0.
func (i AdjustmentItem) Validate() error {
	if i.SystemQuantityAfter != i.SystemQuantityBefore+i.QuantityChange {
		return Validationf("part %d: quantity after (%d) must equal quantity before (%d) plus change (%d)",
			i.PartID, i.SystemQuantityAfter, i.SystemQuantityBefore, i.QuantityChange)
	}
	if i.SystemQuantityAfter < 0 {
		return Validationf("part %d: adjustment would leave negative stock (%d)", i.PartID, i.SystemQuantityAfter)
	}
	return nil
}

// AdjustmentComment is one message in a ticket's discussion thread.
type AdjustmentComment struct {
	ID               uint   `json:"id" gorm:"primaryKey"`
	AdjustmentID     uint   `json:"adjustment_id" gorm:"not null;index"`
	Text             string `json:"text" gorm:"size:2000;not null"`
	AuthorUserID     uint   `json:"author_user_id"`
	AuthorEmployeeID *uint  `json:"author_employee_id,omitempty"`
	AuthorName       string `json:"author_name" gorm:"size:255"`
	Lifecycle
	CreatedAt time.Time `json:"created_at"`
}

func (AdjustmentComment) TableName() string {
	return "inventory_adjustment_comments"
}

// MaxCommentLength bounds comment text after trimming.
const MaxCommentLength = 2000
