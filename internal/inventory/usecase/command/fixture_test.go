package command

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vegatran/GaraManager-sub003/internal/audit"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/ledger"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/repository"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/sequence"
	"github.com/vegatran/GaraManager-sub003/internal/testutil"
	"github.com/vegatran/GaraManager-sub003/pkg/lock"
)

var clock = func() time.Time { return time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC) }

var employeeID = uint(7)

var actor = domain.Actor{UserID: 3, EmployeeID: &employeeID, Name: "Linh", Roles: []string{"Manager"}}

type fakeAuditor struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (a *fakeAuditor) Record(_ context.Context, e audit.Entry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

func (a *fakeAuditor) actions(entity string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, e := range a.entries {
		if e.EntityName == entity {
			out = append(out, e.Action)
		}
	}
	return out
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	counts   []int64
	adjusted []string
}

func (b *fakeBroadcaster) AlertCountChanged(_ context.Context, count int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counts = append(b.counts, count)
	return nil
}

func (b *fakeBroadcaster) StockAdjusted(_ context.Context, adj *domain.Adjustment, _ []domain.StockTransaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.adjusted = append(b.adjusted, adj.Code)
	return nil
}

type fixture struct {
	db          *gorm.DB
	store       *repository.GormStore
	auditor     *fakeAuditor
	broadcaster *fakeBroadcaster
	notifier    *Notifier

	createCheck   *CreateCheckHandler
	startCheck    *StartCheckHandler
	completeCheck *CompleteCheckHandler
	cancelCheck   *CancelCheckHandler
	updateCheck   *UpdateCheckHandler
	deleteCheck   *DeleteCheckHandler
	addItem       *AddCheckItemHandler
	updateItem    *UpdateCheckItemHandler
	deleteItem    *DeleteCheckItemHandler
	bulkAddItems  *BulkAddCheckItemsHandler
	bulkUpdate    *BulkUpdateCheckItemsHandler
	addNote       *AddCheckCommentHandler
	deleteNote    *DeleteCheckCommentHandler
	fromCheck     *CreateAdjustmentFromCheckHandler
	manual        *CreateManualAdjustmentHandler
	approve       *ApproveAdjustmentHandler
	reject        *RejectAdjustmentHandler
	deleteTicket  *DeleteAdjustmentHandler
	bulkApprove   *BulkApproveHandler
	bulkReject    *BulkRejectHandler
	addComment    *AddCommentHandler
	deleteComment *DeleteCommentHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t, repository.AutoMigrate)
	store := repository.NewGormStore(db)
	gen := sequence.NewGeneratorWithClock(clock)
	applier := ledger.NewApplierWithClock(clock)
	locker := lock.NewLocal()
	auditor := &fakeAuditor{}
	broadcaster := &fakeBroadcaster{}
	notifier := NewNotifier(store, broadcaster)
	t.Cleanup(notifier.Wait)

	return &fixture{
		db:          db,
		store:       store,
		auditor:     auditor,
		broadcaster: broadcaster,
		notifier:    notifier,

		createCheck:   NewCreateCheckHandler(store, gen, auditor),
		startCheck:    NewStartCheckHandler(store, auditor),
		completeCheck: NewCompleteCheckHandler(store, auditor),
		cancelCheck:   NewCancelCheckHandler(store, auditor),
		updateCheck:   NewUpdateCheckHandler(store, auditor),
		deleteCheck:   NewDeleteCheckHandler(store, auditor),
		addItem:       NewAddCheckItemHandler(store, auditor),
		updateItem:    NewUpdateCheckItemHandler(store, auditor),
		deleteItem:    NewDeleteCheckItemHandler(store, auditor),
		bulkAddItems:  NewBulkAddCheckItemsHandler(store, auditor, 3),
		bulkUpdate:    NewBulkUpdateCheckItemsHandler(store, auditor, 3),
		addNote:       NewAddCheckCommentHandler(store, auditor),
		deleteNote:    NewDeleteCheckCommentHandler(store, auditor),
		fromCheck:     NewCreateAdjustmentFromCheckHandler(store, gen, auditor),
		manual:        NewCreateManualAdjustmentHandler(store, gen, auditor),
		approve:       NewApproveAdjustmentHandler(store, gen, applier, locker, auditor, notifier),
		reject:        NewRejectAdjustmentHandler(store, applier, auditor),
		deleteTicket:  NewDeleteAdjustmentHandler(store, auditor),
		bulkApprove:   NewBulkApproveHandler(store, gen, applier, locker, auditor, notifier, 3),
		bulkReject:    NewBulkRejectHandler(store, applier, auditor, 3),
		addComment:    NewAddCommentHandler(store, auditor),
		deleteComment: NewDeleteCommentHandler(store, auditor),
	}
}

func (f *fixture) part(t *testing.T, number string, qty, minimum int) *domain.Part {
	t.Helper()
	p := &domain.Part{
		PartNumber:      number,
		PartName:        "Part " + number,
		CostPrice:       decimal.RequireFromString("8.00"),
		SellPrice:       decimal.RequireFromString("15.00"),
		QuantityInStock: qty,
		MinimumStock:    minimum,
		IsActive:        true,
	}
	require.NoError(t, f.store.Parts().Create(context.Background(), p))
	return p
}

// stock reads a part's quantity regardless of its lifecycle state.
func (f *fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	var p domain.Part
	require.NoError(t, f.db.First(&p, id).Error)
	return p.QuantityInStock
}

func (f *fixture) ledger(t *testing.T, partID uint) []domain.StockTransaction {
	t.Helper()
	entries, _, err := f.store.Transactions().List(context.Background(), domain.StockTransactionFilter{
		PartID: &partID,
		Page:   domain.Page{Size: domain.MaxPageSize},
	})
	require.NoError(t, err)
	return entries
}

func (f *fixture) manualTicket(t *testing.T, p *domain.Part, change int) *domain.Adjustment {
	t.Helper()
	adj, err := f.manual.Handle(context.Background(), CreateManualAdjustmentCommand{
		Reason: "cycle count correction",
		Items: []ManualItemInput{{
			PartID:               p.ID,
			QuantityChange:       change,
			SystemQuantityBefore: p.QuantityInStock,
			SystemQuantityAfter:  p.QuantityInStock + change,
		}},
		Actor: actor,
	})
	require.NoError(t, err)
	return adj
}

// completedCheck counts the given actual quantities and completes the check.
func (f *fixture) completedCheck(t *testing.T, counts map[*domain.Part]int) *domain.Check {
	t.Helper()
	ctx := context.Background()
	var items []CheckItemInput
	for p, actual := range counts {
		items = append(items, CheckItemInput{PartID: p.ID, ActualQuantity: actual})
	}
	check, err := f.createCheck.Handle(ctx, CreateCheckCommand{Items: items, Actor: actor})
	require.NoError(t, err)
	check, err = f.completeCheck.Handle(ctx, CheckCommand{CheckID: check.ID, Actor: actor})
	require.NoError(t, err)
	return check
}

func kindOf(t *testing.T, err error) domain.ErrorKind {
	t.Helper()
	require.Error(t, err)
	return domain.KindOf(err)
}

func (f *fixture) reload(t *testing.T, p *domain.Part) *domain.Part {
	t.Helper()
	fresh, err := f.store.Parts().FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	return fresh
}
