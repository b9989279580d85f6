package command

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

func TestBulkApprove_IsolatesFailingTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.part(t, "A", 10, 0)
	b := f.part(t, "B", 20, 0)
	c := f.part(t, "C", 30, 0)
	t1 := f.manualTicket(t, a, 5)
	t2 := f.manualTicket(t, b, -5)
	t3 := f.manualTicket(t, c, 1)

	require.NoError(t, f.store.Parts().Delete(ctx, b.ID))

	result, err := f.bulkApprove.Handle(ctx, BulkApproveCommand{
		AdjustmentIDs: []uint{t1.ID, t2.ID, t3.ID},
		Notes:         "weekly batch",
		Actor:         actor,
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{t1.ID, t3.ID}, result.SuccessIDs)
	assert.Equal(t, []uint{t2.ID}, result.FailedIDs)
	require.Len(t, result.Errors, 1)
	assert.True(t, strings.HasPrefix(result.Errors[0], "Ticket "+t2.Code+": "), result.Errors[0])
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)

	assert.Equal(t, 15, f.stock(t, a.ID))
	assert.Equal(t, 20, f.stock(t, b.ID))
	assert.Equal(t, 31, f.stock(t, c.ID))
	assert.Len(t, f.ledger(t, a.ID), 1)
	assert.Empty(t, f.ledger(t, b.ID))
	assert.Len(t, f.ledger(t, c.ID), 1)

	failed, err := f.store.Adjustments().FindByID(ctx, t2.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AdjustmentPending, failed.Status)
	approved, err := f.store.Adjustments().FindByID(ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, "weekly batch", approved.Notes)
}

func TestBulkApprove_ReportsUnknownAndDecidedTickets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.part(t, "P", 10, 0)
	q := f.part(t, "Q", 10, 0)
	done := f.manualTicket(t, p, 1)
	_, err := f.approve.Handle(ctx, ApproveAdjustmentCommand{AdjustmentID: done.ID, Actor: actor})
	require.NoError(t, err)
	open := f.manualTicket(t, q, -1)

	result, err := f.bulkApprove.Handle(ctx, BulkApproveCommand{
		AdjustmentIDs: []uint{open.ID, 999, done.ID, open.ID},
		Actor:         actor,
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{open.ID}, result.SuccessIDs)
	assert.Equal(t, []uint{999, done.ID}, result.FailedIDs)
	assert.Equal(t, "Ticket #999: not found", result.Errors[0])
	assert.True(t, strings.HasPrefix(result.Errors[1], "Ticket "+done.Code+": "))
	assert.Equal(t, 9, f.stock(t, q.ID))
}

func TestBulkApprove_InputLimits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.bulkApprove.Handle(ctx, BulkApproveCommand{Actor: actor})
	assert.Equal(t, domain.KindValidation, kindOf(t, err))

	_, err = f.bulkApprove.Handle(ctx, BulkApproveCommand{AdjustmentIDs: []uint{1, 2, 3, 4}, Actor: actor})
	assert.Equal(t, domain.KindValidation, kindOf(t, err))
}

func TestBulkApprove_SamePartAcrossTicketsIsStale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.part(t, "P", 10, 0)
	first := f.manualTicket(t, p, 2)
	second := f.manualTicket(t, p, 3)

	result, err := f.bulkApprove.Handle(ctx, BulkApproveCommand{AdjustmentIDs: []uint{first.ID, second.ID}, Actor: actor})
	require.NoError(t, err)
	assert.Equal(t, []uint{first.ID}, result.SuccessIDs)
	assert.Equal(t, []uint{second.ID}, result.FailedIDs)
	assert.Equal(t, 12, f.stock(t, p.ID))
}

func TestBulkReject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.part(t, "P", 10, 0)
	q := f.part(t, "Q", 10, 0)
	done := f.manualTicket(t, p, 1)
	_, err := f.approve.Handle(ctx, ApproveAdjustmentCommand{AdjustmentID: done.ID, Actor: actor})
	require.NoError(t, err)
	open := f.manualTicket(t, q, 4)

	_, err = f.bulkReject.Handle(ctx, BulkRejectCommand{AdjustmentIDs: []uint{open.ID}, Actor: actor})
	assert.Equal(t, domain.KindValidation, kindOf(t, err))

	result, err := f.bulkReject.Handle(ctx, BulkRejectCommand{
		AdjustmentIDs: []uint{open.ID, done.ID},
		Reason:        "supplier recall",
		Actor:         actor,
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{open.ID}, result.SuccessIDs)
	assert.Equal(t, []uint{done.ID}, result.FailedIDs)

	rejected, err := f.store.Adjustments().FindByID(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AdjustmentRejected, rejected.Status)
	assert.Equal(t, "supplier recall", rejected.RejectionReason)
	assert.Equal(t, 10, f.stock(t, q.ID))
	assert.Contains(t, f.auditor.actions(domain.EntityAdjustment), "Reject")
}
