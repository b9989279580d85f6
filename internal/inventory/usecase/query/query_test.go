package query

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegatran/GaraManager-sub003/internal/audit"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/repository"
	"github.com/vegatran/GaraManager-sub003/internal/testutil"
)

type fixture struct {
	store    *repository.GormStore
	recorder *audit.Recorder
	reader   *audit.Reader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t, repository.AutoMigrate, audit.AutoMigrate)
	rec := audit.NewRecorder(db, 16)
	t.Cleanup(rec.Close)
	return &fixture{store: repository.NewGormStore(db), recorder: rec, reader: audit.NewReader(db)}
}

func (f *fixture) part(t *testing.T, number string) *domain.Part {
	t.Helper()
	p := &domain.Part{PartNumber: number, PartName: number, QuantityInStock: 10, IsActive: true}
	require.NoError(t, f.store.Parts().Create(context.Background(), p))
	return p
}

func (f *fixture) ticket(t *testing.T, code string, status domain.AdjustmentStatus, date time.Time, warehouse *uint, partID uint) *domain.Adjustment {
	t.Helper()
	adj := &domain.Adjustment{
		Code:           code,
		Status:         status,
		Reason:         "count",
		AdjustmentDate: date,
		Scope:          domain.Scope{WarehouseID: warehouse},
		Items: []domain.AdjustmentItem{{
			PartID: partID, QuantityChange: 1, SystemQuantityBefore: 10, SystemQuantityAfter: 11,
		}},
	}
	require.NoError(t, f.store.Adjustments().Create(context.Background(), adj))
	return adj
}

func day(d int) time.Time {
	return time.Date(2025, 5, d, 12, 0, 0, 0, time.UTC)
}

func TestListAdjustments_FiltersAndPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.part(t, "P")
	w := uint(1)

	f.ticket(t, "ADJ-2025-001", domain.AdjustmentPending, day(1), &w, p.ID)
	f.ticket(t, "ADJ-2025-002", domain.AdjustmentApproved, day(2), nil, p.ID)
	f.ticket(t, "ADJ-2025-003", domain.AdjustmentPending, day(3), &w, p.ID)
	deleted := f.ticket(t, "ADJ-2025-004", domain.AdjustmentPending, day(4), &w, p.ID)
	require.NoError(t, f.store.Adjustments().Delete(ctx, deleted))

	h := NewListAdjustmentsHandler(f.store)

	all, err := h.Handle(ctx, ListAdjustmentsQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)
	assert.Equal(t, 1, all.Page)
	assert.Equal(t, domain.DefaultPageSize, all.PageSize)
	require.Len(t, all.Items, 3)
	assert.Equal(t, "ADJ-2025-003", all.Items[0].Code)
	assert.Len(t, all.Items[0].Items, 1)

	pending, err := h.Handle(ctx, ListAdjustmentsQuery{Filter: domain.AdjustmentFilter{
		Scope:  domain.Scope{WarehouseID: &w},
		Status: domain.AdjustmentPending,
	}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, pending.Total)

	from, to := day(2), day(3)
	ranged, err := h.Handle(ctx, ListAdjustmentsQuery{Filter: domain.AdjustmentFilter{From: &from, To: &to}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, ranged.Total)

	page2, err := h.Handle(ctx, ListAdjustmentsQuery{Filter: domain.AdjustmentFilter{Page: domain.Page{Number: 2, Size: 2}}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page2.Total)
	require.Len(t, page2.Items, 1)
	assert.Equal(t, "ADJ-2025-001", page2.Items[0].Code)

	_, err = h.Handle(ctx, ListAdjustmentsQuery{Filter: domain.AdjustmentFilter{From: &to, To: &from}})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = h.Handle(ctx, ListAdjustmentsQuery{Filter: domain.AdjustmentFilter{Status: "Lost"}})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestGetHandlers_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := NewGetCheckHandler(f.store).Handle(ctx, GetCheckQuery{ID: 5})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = NewGetAdjustmentHandler(f.store).Handle(ctx, GetAdjustmentQuery{ID: 5})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = NewGetAdjustmentHandler(f.store).Handle(ctx, GetAdjustmentQuery{})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestGetAdjustmentHistory_MergesTicketAndItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.part(t, "P")
	adj := f.ticket(t, "ADJ-2025-001", domain.AdjustmentPending, day(1), nil, p.ID)
	other := f.ticket(t, "ADJ-2025-002", domain.AdjustmentPending, day(1), nil, p.ID)

	f.recorder.Record(ctx, audit.Entry{EntityName: domain.EntityAdjustment, EntityID: adj.ID, Action: "Create"})
	f.recorder.Record(ctx, audit.Entry{EntityName: domain.EntityAdjustmentItem, EntityID: adj.Items[0].ID, Action: "Create"})
	f.recorder.Record(ctx, audit.Entry{EntityName: domain.EntityAdjustment, EntityID: other.ID, Action: "Create"})
	f.recorder.Record(ctx, audit.Entry{EntityName: domain.EntityAdjustment, EntityID: adj.ID, Action: "Approve"})
	flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, f.recorder.Flush(flushCtx))

	h := NewGetAdjustmentHistoryHandler(f.store, f.reader)
	logs, err := h.Handle(ctx, GetAdjustmentHistoryQuery{AdjustmentID: adj.ID})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "Approve", logs[0].Action)

	approvals, err := h.Handle(ctx, GetAdjustmentHistoryQuery{AdjustmentID: adj.ID, Action: "Approve"})
	require.NoError(t, err)
	assert.Len(t, approvals, 1)

	_, err = h.Handle(ctx, GetAdjustmentHistoryQuery{AdjustmentID: 999})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListStockTransactions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.part(t, "P")
	q := f.part(t, "Q")

	entry := func(code string, partID uint, ref string, at time.Time) domain.StockTransaction {
		return domain.StockTransaction{
			Code: code, PartID: partID, Direction: domain.DirectionIn, Quantity: 1,
			QuantityBefore: 10, QuantityAfter: 11, UnitCost: decimal.NewFromInt(2),
			TransactionDate: at, ReferenceNumber: ref,
		}
	}
	require.NoError(t, f.store.Transactions().CreateBatch(ctx, []domain.StockTransaction{
		entry("STK-2025-001", p.ID, "ADJ-2025-001", day(1)),
		entry("STK-2025-002", q.ID, "ADJ-2025-001", day(1)),
		entry("STK-2025-003", p.ID, "ADJ-2025-002", day(2)),
	}))

	h := NewListStockTransactionsHandler(f.store)
	byPart, err := h.Handle(ctx, ListStockTransactionsQuery{Filter: domain.StockTransactionFilter{PartID: &p.ID}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, byPart.Total)
	assert.Equal(t, "STK-2025-003", byPart.Items[0].Code)

	byRef, err := h.Handle(ctx, ListStockTransactionsQuery{Filter: domain.StockTransactionFilter{ReferenceNumber: "ADJ-2025-001"}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, byRef.Total)

	none, err := h.Handle(ctx, ListStockTransactionsQuery{Filter: domain.StockTransactionFilter{ReferenceNumber: "ADJ-2024-001"}})
	require.NoError(t, err)
	assert.NotNil(t, none.Items)
	assert.Empty(t, none.Items)
}

func TestListComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.part(t, "P")
	adj := f.ticket(t, "ADJ-2025-001", domain.AdjustmentPending, day(1), nil, p.ID)

	h := NewListCommentsHandler(f.store)
	comments, err := h.Handle(ctx, ListCommentsQuery{AdjustmentID: adj.ID})
	require.NoError(t, err)
	assert.Empty(t, comments)

	require.NoError(t, f.store.Adjustments().AddComment(ctx, &domain.AdjustmentComment{AdjustmentID: adj.ID, Text: "first"}))
	require.NoError(t, f.store.Adjustments().AddComment(ctx, &domain.AdjustmentComment{AdjustmentID: adj.ID, Text: "second"}))
	comments, err = h.Handle(ctx, ListCommentsQuery{AdjustmentID: adj.ID})
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Text)

	_, err = h.Handle(ctx, ListCommentsQuery{AdjustmentID: 404})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func (f *fixture) check(t *testing.T, code string, status domain.CheckStatus, date time.Time, warehouse *uint, partID uint) *domain.Check {
	t.Helper()
	c := &domain.Check{
		Code:      code,
		Name:      "Count " + code,
		Status:    status,
		CheckDate: date,
		Scope:     domain.Scope{WarehouseID: warehouse},
		Items: []domain.CheckItem{{
			PartID: partID, SystemQuantity: 10, ActualQuantity: 9, DiscrepancyQuantity: -1, IsDiscrepancy: true,
		}},
	}
	require.NoError(t, f.store.Checks().Create(context.Background(), c))
	return c
}

func TestListChecks_FiltersAndPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.part(t, "P")
	w := uint(1)

	f.check(t, "IK-2025-001", domain.CheckCompleted, day(1), &w, p.ID)
	f.check(t, "IK-2025-002", domain.CheckDraft, day(2), nil, p.ID)
	f.check(t, "IK-2025-003", domain.CheckInProgress, day(3), &w, p.ID)
	deleted := f.check(t, "IK-2025-004", domain.CheckDraft, day(4), &w, p.ID)
	require.NoError(t, f.store.Checks().Delete(ctx, deleted))

	h := NewListChecksHandler(f.store)

	all, err := h.Handle(ctx, ListChecksQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)
	assert.Equal(t, domain.DefaultPageSize, all.PageSize)
	require.Len(t, all.Items, 3)
	assert.Equal(t, "IK-2025-003", all.Items[0].Code)
	assert.Empty(t, all.Items[0].Items)

	scoped, err := h.Handle(ctx, ListChecksQuery{Filter: domain.CheckFilter{Scope: domain.Scope{WarehouseID: &w}}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, scoped.Total)

	drafts, err := h.Handle(ctx, ListChecksQuery{Filter: domain.CheckFilter{Status: domain.CheckDraft}})
	require.NoError(t, err)
	require.Len(t, drafts.Items, 1)
	assert.Equal(t, "IK-2025-002", drafts.Items[0].Code)

	from, to := day(1), day(2)
	ranged, err := h.Handle(ctx, ListChecksQuery{Filter: domain.CheckFilter{From: &from, To: &to}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, ranged.Total)

	page2, err := h.Handle(ctx, ListChecksQuery{Filter: domain.CheckFilter{Page: domain.Page{Number: 2, Size: 2}}})
	require.NoError(t, err)
	require.Len(t, page2.Items, 1)
	assert.Equal(t, "IK-2025-001", page2.Items[0].Code)

	_, err = h.Handle(ctx, ListChecksQuery{Filter: domain.CheckFilter{From: &to, To: &from}})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = h.Handle(ctx, ListChecksQuery{Filter: domain.CheckFilter{Status: "Open"}})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestGetCheckHistory_MergesCheckAndItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.part(t, "P")
	check := f.check(t, "IK-2025-001", domain.CheckDraft, day(1), nil, p.ID)
	other := f.check(t, "IK-2025-002", domain.CheckDraft, day(1), nil, p.ID)

	f.recorder.Record(ctx, audit.Entry{EntityName: domain.EntityCheck, EntityID: check.ID, Action: "Create"})
	f.recorder.Record(ctx, audit.Entry{EntityName: domain.EntityCheckItem, EntityID: check.Items[0].ID, Action: "Update"})
	f.recorder.Record(ctx, audit.Entry{EntityName: domain.EntityCheckItem, EntityID: other.Items[0].ID, Action: "Update"})
	f.recorder.Record(ctx, audit.Entry{EntityName: domain.EntityCheck, EntityID: check.ID, Action: "Start"})
	flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, f.recorder.Flush(flushCtx))

	h := NewGetCheckHistoryHandler(f.store, f.reader)
	logs, err := h.Handle(ctx, GetCheckHistoryQuery{CheckID: check.ID})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "Start", logs[0].Action)

	updates, err := h.Handle(ctx, GetCheckHistoryQuery{CheckID: check.ID, Action: "Update"})
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, domain.EntityCheckItem, updates[0].EntityName)

	_, err = h.Handle(ctx, GetCheckHistoryQuery{CheckID: 999})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListCheckComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.part(t, "P")
	check := f.check(t, "IK-2025-001", domain.CheckCompleted, day(1), nil, p.ID)

	h := NewListCheckCommentsHandler(f.store)
	comments, err := h.Handle(ctx, ListCheckCommentsQuery{CheckID: check.ID})
	require.NoError(t, err)
	assert.Empty(t, comments)

	require.NoError(t, f.store.Checks().AddComment(ctx, &domain.CheckComment{CheckID: check.ID, Text: "first"}))
	require.NoError(t, f.store.Checks().AddComment(ctx, &domain.CheckComment{CheckID: check.ID, Text: "second"}))
	comments, err = h.Handle(ctx, ListCheckCommentsQuery{CheckID: check.ID})
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Text)

	_, err = h.Handle(ctx, ListCheckCommentsQuery{CheckID: 404})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
