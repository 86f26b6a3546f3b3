package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/service"
)

func TestReturnService_CalculateLateFee(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRental("200.00", map[int32]int32{1: 2})
	rr := f.initiate(t, lateDate, service.ReturnItem{InventoryUnitID: 1, Quantity: 2})
	_, err := f.returns.ProcessPartialReturn(ctx, service.ProcessReturnRequest{
		ReturnID: rr.ID(),
		Updates:  []service.LineUpdate{{LineID: lineFor(t, rr, 1), ReturnedQuantity: 2}},
	})
	require.NoError(t, err)

	req := service.LateFeeRequest{ReturnID: rr.ID(), DailyRateOverride: money("5.00")}
	a, err := f.returns.CalculateLateFee(ctx, req)
	require.NoError(t, err)
	assert.True(t, a.IsLate)
	assert.Equal(t, 5, a.DaysLate)
	assert.Equal(t, "50.00", a.TotalLateFee.String())

	t.Run("Idempotent", func(t *testing.T) {
		_, err := f.returns.CalculateLateFee(ctx, req)
		require.NoError(t, err)
		got, err := f.returns.GetReturn(ctx, rr.ID())
		require.NoError(t, err)
		assert.Equal(t, "50.00", got.TotalLateFee().String())
	})

	t.Run("FallbackRate", func(t *testing.T) {
		a, err := f.returns.CalculateLateFee(ctx, service.LateFeeRequest{ReturnID: rr.ID()})
		require.NoError(t, err)
		assert.Equal(t, "5.00", a.DailyRate.String())
	})

	t.Run("ReferenceRate", func(t *testing.T) {
		a, err := f.returns.CalculateLateFee(ctx, service.LateFeeRequest{ReturnID: rr.ID(), ReferenceRate: money("30.00")})
		require.NoError(t, err)
		assert.Equal(t, "3.00", a.DailyRate.String())
		assert.Equal(t, "30.00", a.TotalLateFee.String())
	})
}

func TestReturnService_ProjectLateFee(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRental("200.00", map[int32]int32{1: 3})
	rr := f.initiate(t, onTimeDate, service.ReturnItem{InventoryUnitID: 1, Quantity: 3})

	a, err := f.returns.ProjectLateFee(ctx, service.LateFeeProjectionRequest{
		ReturnID:            rr.ID(),
		ProjectedReturnDate: expectedDate.AddDate(0, 0, 2),
		DailyRateOverride:   money("4.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "24.00", a.TotalLateFee.String())

	got, err := f.returns.GetReturn(ctx, rr.ID())
	require.NoError(t, err)
	assert.True(t, got.TotalLateFee().IsZero())

	_, err = f.returns.ProjectLateFee(ctx, service.LateFeeProjectionRequest{ReturnID: rr.ID(), ProjectedReturnDate: time.Time{}})
	assert.True(t, errors.Is(err, domain.ErrValidationFailure))
}
