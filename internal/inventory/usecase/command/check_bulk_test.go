package command

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

func TestBulkAddCheckItems_IsolatesFailingPart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	filter := f.part(t, "FLT-1", 20, 0)
	wiper := f.part(t, "WPR-2", 6, 0)
	counted := f.part(t, "BAT-3", 2, 0)

	check, err := f.createCheck.Handle(ctx, CreateCheckCommand{
		Items: []CheckItemInput{{PartID: counted.ID, ActualQuantity: 2}},
		Actor: actor,
	})
	require.NoError(t, err)

	result, err := f.bulkAddItems.Handle(ctx, BulkAddCheckItemsCommand{
		CheckID: check.ID,
		Items: []CheckItemInput{
			{PartID: filter.ID, ActualQuantity: 18},
			{PartID: counted.ID, ActualQuantity: 1},
			{PartID: wiper.ID, ActualQuantity: -1},
		},
		Actor: actor,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 2, result.FailureCount)
	assert.Empty(t, result.FailedIDs)
	require.Len(t, result.Errors, 2)
	assert.True(t, strings.HasPrefix(result.Errors[0], "Part #"), result.Errors[0])

	reloaded, err := f.store.Checks().FindByID(ctx, check.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 2)
	added, err := f.store.Checks().FindItem(ctx, check.ID, result.SuccessIDs[0])
	require.NoError(t, err)
	assert.Equal(t, filter.ID, added.PartID)
	assert.Equal(t, 20, added.SystemQuantity)
	assert.Equal(t, -2, added.DiscrepancyQuantity)
	assert.Equal(t, []string{"Create"}, f.auditor.actions(domain.EntityCheckItem))
}

func TestBulkAddCheckItems_RejectsClosedCheckAndLimits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.part(t, "P", 5, 0)
	check := f.completedCheck(t, map[*domain.Part]int{p: 5})

	_, err := f.bulkAddItems.Handle(ctx, BulkAddCheckItemsCommand{Actor: actor, CheckID: check.ID})
	assert.Equal(t, domain.KindValidation, kindOf(t, err))

	_, err = f.bulkAddItems.Handle(ctx, BulkAddCheckItemsCommand{
		CheckID: check.ID,
		Items:   make([]CheckItemInput, 4),
		Actor:   actor,
	})
	assert.Equal(t, domain.KindValidation, kindOf(t, err))

	_, err = f.bulkAddItems.Handle(ctx, BulkAddCheckItemsCommand{
		CheckID: check.ID,
		Items:   []CheckItemInput{{PartID: f.part(t, "Q", 1, 0).ID, ActualQuantity: 1}},
		Actor:   actor,
	})
	assert.Equal(t, domain.KindConflict, kindOf(t, err))

	_, err = f.bulkAddItems.Handle(ctx, BulkAddCheckItemsCommand{
		CheckID: 4242,
		Items:   []CheckItemInput{{PartID: p.ID}},
		Actor:   actor,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBulkUpdateCheckItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.part(t, "A", 10, 0)
	b := f.part(t, "B", 4, 0)

	check, err := f.createCheck.Handle(ctx, CreateCheckCommand{
		Items: []CheckItemInput{{PartID: a.ID, ActualQuantity: 10}, {PartID: b.ID, ActualQuantity: 4}},
		Actor: actor,
	})
	require.NoError(t, err)
	require.Len(t, check.Items, 2)
	ids := []uint{check.Items[0].ID, check.Items[1].ID}

	bump := f.manualTicket(t, a, 2)
	_, err = f.approve.Handle(ctx, ApproveAdjustmentCommand{AdjustmentID: bump.ID, Actor: actor})
	require.NoError(t, err)

	zero := 0
	note := " shelf emptied "
	result, err := f.bulkUpdate.Handle(ctx, BulkUpdateCheckItemsCommand{
		CheckID:        check.ID,
		ItemIDs:        append(ids, 4242),
		ActualQuantity: &zero,
		Notes:          &note,
		Actor:          actor,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, result.SuccessIDs)
	assert.Equal(t, []uint{4242}, result.FailedIDs)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Item #4242")

	reloaded, err := f.store.Checks().FindByID(ctx, check.ID)
	require.NoError(t, err)
	for _, it := range reloaded.Items {
		assert.Zero(t, it.ActualQuantity)
		assert.Equal(t, "shelf emptied", it.Notes)
		assert.True(t, it.IsDiscrepancy)
		if it.PartID == a.ID {
			assert.Equal(t, 12, it.SystemQuantity)
			assert.Equal(t, -12, it.DiscrepancyQuantity)
		}
	}

	notesOnly := "recounted"
	_, err = f.bulkUpdate.Handle(ctx, BulkUpdateCheckItemsCommand{CheckID: check.ID, ItemIDs: ids[:1], Notes: &notesOnly, Actor: actor})
	require.NoError(t, err)
	item, err := f.store.Checks().FindItem(ctx, check.ID, ids[0])
	require.NoError(t, err)
	assert.Zero(t, item.ActualQuantity)
	assert.Equal(t, "recounted", item.Notes)
}

func TestBulkUpdateCheckItems_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.part(t, "P", 3, 0)
	check, err := f.createCheck.Handle(ctx, CreateCheckCommand{
		Items: []CheckItemInput{{PartID: p.ID, ActualQuantity: 3}},
		Actor: actor,
	})
	require.NoError(t, err)
	ids := []uint{check.Items[0].ID}
	negative := -1
	one := 1

	tests := []struct {
		name string
		cmd  BulkUpdateCheckItemsCommand
	}{
		{"no ids", BulkUpdateCheckItemsCommand{CheckID: check.ID, ActualQuantity: &one}},
		{"too many ids", BulkUpdateCheckItemsCommand{CheckID: check.ID, ItemIDs: []uint{1, 2, 3, 4}, ActualQuantity: &one}},
		{"nothing to change", BulkUpdateCheckItemsCommand{CheckID: check.ID, ItemIDs: ids}},
		{"negative count", BulkUpdateCheckItemsCommand{CheckID: check.ID, ItemIDs: ids, ActualQuantity: &negative}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cmd.Actor = actor
			_, err := f.bulkUpdate.Handle(ctx, tt.cmd)
			assert.Equal(t, domain.KindValidation, kindOf(t, err))
		})
	}

	_, err = f.completeCheck.Handle(ctx, CheckCommand{CheckID: check.ID, Actor: actor})
	require.NoError(t, err)
	_, err = f.bulkUpdate.Handle(ctx, BulkUpdateCheckItemsCommand{CheckID: check.ID, ItemIDs: ids, ActualQuantity: &one, Actor: actor})
	assert.Equal(t, domain.KindConflict, kindOf(t, err))
}
