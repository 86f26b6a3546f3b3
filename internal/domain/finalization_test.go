package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalInventoryStatus(t *testing.T) {
	threshold := MustMoney("100")
	rr := newTestReturn(t, 1)
	l := rr.Lines()[0]

	s, err := FinalInventoryStatus(l, threshold)
	require.NoError(t, err)
	assert.Equal(t, InventoryStatusAvailableRent, s)

	l.setCleaningFee(MustMoney("25"))
	s, _ = FinalInventoryStatus(l, threshold)
	assert.Equal(t, InventoryStatusCleaningRequired, s)

	l.setDamageFee(MustMoney("100"))
	s, _ = FinalInventoryStatus(l, threshold)
	assert.Equal(t, InventoryStatusCleaningRequired, s)

	l.setDamageFee(MustMoney("100.01"))
	s, _ = FinalInventoryStatus(l, threshold)
	assert.Equal(t, InventoryStatusMaintenanceRequired, s)

	l.setReplacementFee(MustMoney("1"))
	s, _ = FinalInventoryStatus(l, threshold)
	assert.Equal(t, InventoryStatusDamaged, s)
}

func TestRentalReturn_Finalize(t *testing.T) {
	threshold := MustMoney("100")

	t.Run("Success", func(t *testing.T) {
		rr := newTestReturn(t, 2, 1)
		require.NoError(t, rr.ReceiveLine(rr.Lines()[0].ID(), 2, nil, "", nil, testNow))
		require.NoError(t, rr.AdvanceAfterReceipt(testNow))

		plan, err := rr.Finalize(false, nil, threshold, testNow)
		require.NoError(t, err)
		assert.True(t, plan.Check.OK())
		require.Len(t, plan.InventoryChanges, 1)
		assert.Equal(t, int32(2), plan.InventoryChanges[0].StockQuantity)
		assert.Equal(t, ReturnStatusCompleted, rr.Status())
		assert.True(t, rr.IsFinalized())

		_, err = rr.Finalize(false, nil, threshold, testNow)
		assert.True(t, errors.Is(err, ErrInvalidState))
		err = rr.ApplyLateFees(LateFeeAssessment{}, nil, testNow)
		assert.True(t, errors.Is(err, ErrInvalidState))
	})

	t.Run("UnprocessedLineBlocks", func(t *testing.T) {
		rr := newTestReturn(t, 1)
		s := rr.State()
		s.Lines[0].ReturnedQuantity = 1
		rr, err := RestoreRentalReturn(s)
		require.NoError(t, err)

		check := ValidateFinalization(rr)
		assert.False(t, check.OK())

		_, err = rr.Finalize(false, nil, threshold, testNow)
		assert.True(t, errors.Is(err, ErrInvalidState))
		assert.False(t, rr.IsFinalized())

		_, err = rr.Finalize(true, nil, threshold, testNow)
		require.NoError(t, err)
		assert.True(t, rr.IsFinalized())
	})

	t.Run("UnapprovedDamageWarns", func(t *testing.T) {
		rr := newTestReturn(t, 1)
		repair := MustMoney("30")
		_, err := rr.AssessDamage(DamageAssessmentInput{
			InspectorID: 4,
			Assessments: []LineAssessment{{LineID: rr.Lines()[0].ID(), EstimatedRepairCost: &repair}},
		}, testNow)
		require.NoError(t, err)
		check := ValidateFinalization(rr)
		assert.True(t, check.OK())
		assert.NotEmpty(t, check.Warnings)
	})

	t.Run("CancelledCannotFinalize", func(t *testing.T) {
		rr := newTestReturn(t, 1)
		require.NoError(t, rr.Cancel("x", nil, testNow))
		_, err := rr.Finalize(true, nil, threshold, testNow)
		assert.True(t, errors.Is(err, ErrInvalidState))
	})
}
