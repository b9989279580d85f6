package domain

import "time"

// CheckStatus is the state of a counting session.
type CheckStatus string

const (
	CheckDraft      CheckStatus = "Draft"
	CheckInProgress CheckStatus = "InProgress"
	CheckCompleted  CheckStatus = "Completed"
	CheckCancelled  CheckStatus = "Cancelled"
)

// Check is a point-in-time count of parts within a scope.
type Check struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	Code        string      `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Name        string      `json:"name" gorm:"size:255;not null"`
	Description string      `json:"description,omitempty" gorm:"size:1000"`
	CheckDate   time.Time   `json:"check_date"`
	Status      CheckStatus `json:"status" gorm:"size:20;not null;index"`
	Scope
	StartedAt             *time.Time  `json:"started_at,omitempty"`
	StartedByEmployeeID   *uint       `json:"started_by_employee_id,omitempty"`
	CompletedAt           *time.Time  `json:"completed_at,omitempty"`
	CompletedByEmployeeID *uint       `json:"completed_by_employee_id,omitempty"`
	Notes                 string      `json:"notes,omitempty" gorm:"size:1000"`
	Items                 []CheckItem `json:"items,omitempty" gorm:"foreignKey:CheckID"`
	Lifecycle
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Check) TableName() string {
	return "inventory_checks"
}

// EnsureEditable rejects item mutations on a closed check.
func (c *Check) EnsureEditable() error {
	switch c.Status {
	case CheckCompleted:
		return Conflictf("inventory check %s is completed and can no longer be edited", c.Code)
	case CheckCancelled:
		return Conflictf("inventory check %s is cancelled and can no longer be edited", c.Code)
	}
	return nil
}

// Start moves a draft check to InProgress.
func (c *Check) Start(actor Actor, at time.Time) error {
	if c.Status != CheckDraft {
		return Conflictf("inventory check %s cannot be started from status %s", c.Code, c.Status)
	}
	c.Status = CheckInProgress
	c.StartedAt = &at
	c.StartedByEmployeeID = actor.EmployeeID
	return nil
}

// Complete closes the check for editing. A second call is a conflict.
func (c *Check) Complete(actor Actor, at time.Time) error {
	switch c.Status {
	case CheckCompleted:
		return Conflictf("inventory check %s is already completed", c.Code)
	case CheckCancelled:
		return Conflictf("inventory check %s is cancelled and cannot be completed", c.Code)
	}
	if c.StartedAt == nil {
		c.StartedAt = &at
		c.StartedByEmployeeID = actor.EmployeeID
	}
	c.Status = CheckCompleted
	c.CompletedAt = &at
	c.CompletedByEmployeeID = actor.EmployeeID
	return nil
}

// Cancel abandons a check that has not been completed.
func (c *Check) Cancel() error {
	switch c.Status {
	case CheckCompleted:
		return Conflictf("inventory check %s is completed and cannot be cancelled", c.Code)
	case CheckCancelled:
		return Conflictf("inventory check %s is already cancelled", c.Code)
	}
	c.Status = CheckCancelled
	return nil
}

// CheckItem is one part's count within a check.
type CheckItem struct {
	ID                  uint   `json:"id" gorm:"primaryKey"`
	CheckID             uint   `json:"check_id" gorm:"not null;index"`
	PartID              uint   `json:"part_id" gorm:"not null;index"`
	SystemQuantity      int    `json:"system_quantity" gorm:"not null"`
	ActualQuantity      int    `json:"actual_quantity" gorm:"not null"`
	DiscrepancyQuantity int    `json:"discrepancy_quantity" gorm:"not null"`
	IsDiscrepancy       bool   `json:"is_discrepancy" gorm:"not null;default:false"`
	IsAdjusted          bool   `json:"is_adjusted" gorm:"not null;default:false"`
	AdjustmentItemID    *uint  `json:"adjustment_item_id,omitempty" gorm:"index"`
	Notes               string `json:"notes,omitempty" gorm:"size:500"`
	Lifecycle
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CheckItem) TableName() string {
	return "inventory_check_items"
}

// Recount stores a new system snapshot and counted quantity and derives the
// discrepancy fields.
func (i *CheckItem) Recount(systemQuantity, actualQuantity int) {
	i.SystemQuantity = systemQuantity
	i.ActualQuantity = actualQuantity
	i.DiscrepancyQuantity = actualQuantity - systemQuantity
	i.IsDiscrepancy = i.DiscrepancyQuantity != 0
}

// Proposable reports whether the item can feed a new adjustment ticket.
func (i *CheckItem) Proposable() bool {
	return i.IsDiscrepancy && !i.IsAdjusted
}

// CheckComment is one message in a check's discussion thread.
type CheckComment struct {
	ID               uint   `json:"id" gorm:"primaryKey"`
	CheckID          uint   `json:"inventory_check_id" gorm:"not null;index"`
	Text             string `json:"text" gorm:"size:2000;not null"`
	AuthorUserID     uint   `json:"author_user_id"`
	AuthorEmployeeID *uint  `json:"author_employee_id,omitempty"`
	AuthorName       string `json:"author_name" gorm:"size:255"`
	Lifecycle
	CreatedAt time.Time `json:"created_at"`
}

func (CheckComment) TableName() string {
	return "inventory_check_comments"
}
