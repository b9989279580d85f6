package domain

import (
	"context"
	"time"
)

// CodeKind selects which table a sequence code belongs to.
type CodeKind string

const (
	CodeCheck       CodeKind = "check"
	CodeAdjustment  CodeKind = "adjustment"
	CodeTransaction CodeKind = "transaction"
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize applies defaults and bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset of the first row of the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// CheckFilter narrows check listings. From and To bound the check date.
type CheckFilter struct {
	Scope
	Status CheckStatus
	From   *time.Time
	To     *time.Time
	Page   Page
}

// AdjustmentFilter narrows ticket listings.
type AdjustmentFilter struct {
	Scope
	Status  AdjustmentStatus
	CheckID *uint
	From    *time.Time
	To      *time.Time
	Page    Page
}

// StockTransactionFilter narrows ledger listings.
type StockTransactionFilter struct {
	PartID          *uint
	ReferenceNumber string
	From            *time.Time
	To              *time.Time
	Page            Page
}

// PartRepository defines the contract for part data access. Lookups only see
// active rows.
type PartRepository interface {
	Create(ctx context.Context, part *Part) error
	FindByID(ctx context.Context, id uint) (*Part, error)
	// FindForUpdate reloads the row under a row lock where the dialect supports it.
	FindForUpdate(ctx context.Context, id uint) (*Part, error)
	// UpdateQuantity writes an absolute quantity guarded by part.Version and
	// bumps the version on success.
	UpdateQuantity(ctx context.Context, part *Part, quantity int) error
	Delete(ctx context.Context, id uint) error
}

// WarehouseRepository exposes the storage hierarchy for validation lookups.
type WarehouseRepository interface {
	FindWarehouse(ctx context.Context, id uint) (*Warehouse, error)
	FindZone(ctx context.Context, id uint) (*WarehouseZone, error)
	FindBin(ctx context.Context, id uint) (*WarehouseBin, error)
	CreateWarehouse(ctx context.Context, w *Warehouse) error
	CreateZone(ctx context.Context, z *WarehouseZone) error
	CreateBin(ctx context.Context, b *WarehouseBin) error
}

// CheckRepository persists counting sessions and their items.
type CheckRepository interface {
	Create(ctx context.Context, check *Check) error
	FindByID(ctx context.Context, id uint) (*Check, error)
	List(ctx context.Context, filter CheckFilter) ([]Check, int64, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Update(ctx context.Context, check *Check) error
	Delete(ctx context.Context, check *Check) error
	HasAdjustedItems(ctx context.Context, checkID uint) (bool, error)

	AddItem(ctx context.Context, item *CheckItem) error
	FindItem(ctx context.Context, checkID, itemID uint) (*CheckItem, error)
	FindItemByPart(ctx context.Context, checkID, partID uint) (*CheckItem, error)
	UpdateItem(ctx context.Context, item *CheckItem) error
	DeleteItem(ctx context.Context, item *CheckItem) error
	ProposableItems(ctx context.Context, checkID uint) ([]CheckItem, error)
	// LinkAdjustmentItems marks check items consumed, keyed by check item id.
	LinkAdjustmentItems(ctx context.Context, links map[uint]uint) error
	// ReleaseAdjustmentItems undoes LinkAdjustmentItems for the given adjustment items.
	ReleaseAdjustmentItems(ctx context.Context, adjustmentItemIDs []uint) error

	AddComment(ctx context.Context, comment *CheckComment) error
	ListComments(ctx context.Context, checkID uint) ([]CheckComment, error)
	FindComment(ctx context.Context, checkID, commentID uint) (*CheckComment, error)
	DeleteComment(ctx context.Context, comment *CheckComment) error
}

// AdjustmentRepository persists tickets, their items and comments.
type AdjustmentRepository interface {
	Create(ctx context.Context, adjustment *Adjustment) error
	FindByID(ctx context.Context, id uint) (*Adjustment, error)
	FindByIDs(ctx context.Context, ids []uint) ([]Adjustment, error)
	List(ctx context.Context, filter AdjustmentFilter) ([]Adjustment, int64, error)
	Update(ctx context.Context, adjustment *Adjustment) error
	Delete(ctx context.Context, adjustment *Adjustment) error

	AddComment(ctx context.Context, comment *AdjustmentComment) error
	ListComments(ctx context.Context, adjustmentID uint) ([]AdjustmentComment, error)
	FindComment(ctx context.Context, adjustmentID, commentID uint) (*AdjustmentComment, error)
	DeleteComment(ctx context.Context, comment *AdjustmentComment) error
}

// StockTransactionRepository is the append-only ledger.
type StockTransactionRepository interface {
	CreateBatch(ctx context.Context, entries []StockTransaction) error
	List(ctx context.Context, filter StockTransactionFilter) ([]StockTransaction, int64, error)
}

// AlertRepository tracks low-stock alerts.
type AlertRepository interface {
	OpenForPart(ctx context.Context, partID uint) ([]StockAlert, error)
	Create(ctx context.Context, alert *StockAlert) error
	Resolve(ctx context.Context, ids []uint, at time.Time) error
	CountUnresolved(ctx context.Context) (int64, error)
}

// CodeRepository looks up the greatest issued code for a prefix, including
// codes on deleted rows.
type CodeRepository interface {
	LastCode(ctx context.Context, kind CodeKind, prefix string) (string, error)
}

// Store groups the repositories of one unit of work. Calling Transaction on
// a store already bound to a transaction opens a savepoint.
type Store interface {
	Parts() PartRepository
	Warehouses() WarehouseRepository
	Checks() CheckRepository
	Adjustments() AdjustmentRepository
	Transactions() StockTransactionRepository
	Alerts() AlertRepository
	Codes() CodeRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
