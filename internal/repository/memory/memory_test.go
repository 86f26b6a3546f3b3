package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalreturn-backend/internal/domain"
)

func newReturn(t *testing.T, txID int32, returnDate time.Time) *domain.RentalReturn {
	t.Helper()
	rr, err := domain.NewRentalReturn(domain.NewReturnParams{
		TransactionID: txID,
		ReturnDate:    returnDate,
		Items: []domain.NewReturnItem{
			{InventoryUnitID: 10, Quantity: 2, ConditionGrade: domain.ConditionGradeA},
		},
	}, returnDate)
	require.NoError(t, err)
	return rr
}

func TestRentalReturnRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("CreateAndGet", func(t *testing.T) {
		s := NewStore()
		rr := newReturn(t, 1, now)
		require.NoError(t, s.RentalReturnRepository.Create(ctx, rr))

		got, err := s.RentalReturnRepository.GetByID(ctx, rr.ID())
		require.NoError(t, err)
		assert.Equal(t, rr.ID(), got.ID())
		assert.Equal(t, int32(2), got.TotalOriginalQuantity())
		assert.Equal(t, domain.ReturnStatusInitiated, got.Status())
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := NewStore()
		_, err := s.RentalReturnRepository.GetByID(ctx, uuid.New())
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("UpdateDoesNotLeakUnsavedChanges", func(t *testing.T) {
		s := NewStore()
		rr := newReturn(t, 1, now)
		require.NoError(t, s.RentalReturnRepository.Create(ctx, rr))

		require.NoError(t, rr.Cancel("customer kept item", nil, now))
		got, err := s.RentalReturnRepository.GetByID(ctx, rr.ID())
		require.NoError(t, err)
		assert.Equal(t, domain.ReturnStatusInitiated, got.Status())

		require.NoError(t, s.RentalReturnRepository.Update(ctx, rr))
		got, err = s.RentalReturnRepository.GetByID(ctx, rr.ID())
		require.NoError(t, err)
		assert.Equal(t, domain.ReturnStatusCancelled, got.Status())
	})

	t.Run("SoftDeleteHidesReturn", func(t *testing.T) {
		s := NewStore()
		rr := newReturn(t, 1, now)
		require.NoError(t, s.RentalReturnRepository.Create(ctx, rr))
		require.NoError(t, rr.SoftDelete(nil, now))
		require.NoError(t, s.RentalReturnRepository.SoftDelete(ctx, rr))

		_, err := s.RentalReturnRepository.GetByID(ctx, rr.ID())
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		list, err := s.RentalReturnRepository.ListByTransaction(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, list)

		all, total, err := s.RentalReturnRepository.List(ctx, domain.ReturnFilter{IncludeDeleted: true}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int32(1), total)
		assert.Len(t, all, 1)
	})

	t.Run("ListPagesNewestFirst", func(t *testing.T) {
		s := NewStore()
		for i := 0; i < 5; i++ {
			require.NoError(t, s.RentalReturnRepository.Create(ctx, newReturn(t, 7, now.AddDate(0, 0, i))))
		}
		require.NoError(t, s.RentalReturnRepository.Create(ctx, newReturn(t, 8, now)))

		txID := int32(7)
		page, total, err := s.RentalReturnRepository.List(ctx, domain.ReturnFilter{TransactionID: &txID}, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, int32(5), total)
		require.Len(t, page, 2)
		assert.Equal(t, now.AddDate(0, 0, 4), page[0].ReturnDate())

		page, _, err = s.RentalReturnRepository.List(ctx, domain.ReturnFilter{TransactionID: &txID}, 3, 2)
		require.NoError(t, err)
		assert.Len(t, page, 1)

		page, _, err = s.RentalReturnRepository.List(ctx, domain.ReturnFilter{TransactionID: &txID}, 9, 2)
		require.NoError(t, err)
		assert.Empty(t, page)
	})
}

func TestStockLevelRepository_Receive(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.SeedStockLevel(domain.StockLevel{ItemID: 3, LocationID: 1, QuantityOnHand: 4, QuantityAvailable: 1})

	require.NoError(t, s.StockLevelRepository.Receive(ctx, 3, 1, 2))
	lvl, err := s.StockLevelRepository.Get(ctx, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(6), lvl.QuantityOnHand)
	assert.Equal(t, int32(3), lvl.QuantityAvailable)

	err = s.StockLevelRepository.Receive(ctx, 3, 1, 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))

	require.NoError(t, s.StockLevelRepository.Receive(ctx, 9, 2, 1))
	lvl, err = s.StockLevelRepository.Get(ctx, 9, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(1), lvl.QuantityOnHand)
}

func TestTransactor(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("RollsBackOnError", func(t *testing.T) {
		s := NewStore()
		s.SeedTransaction(domain.Transaction{ID: 1, Status: domain.TransactionStatusInProgress})
		s.SeedInventoryUnit(domain.InventoryUnit{ID: 10, ItemID: 3, Status: domain.InventoryStatusRented})
		rr := newReturn(t, 1, now)
		boom := errors.New("boom")

		err := s.WithinTransaction(ctx, 1, func(ctx context.Context) error {
			require.NoError(t, s.RentalReturnRepository.Create(ctx, rr))
			require.NoError(t, s.TransactionRepository.UpdateStatus(ctx, 1, domain.TransactionStatusCompleted))
			require.NoError(t, s.InventoryUnitRepository.UpdateStatus(ctx, 10, domain.InventoryStatusAvailableRent))
			require.NoError(t, s.StockLevelRepository.Receive(ctx, 3, 1, 1))
			return boom
		})
		assert.Equal(t, boom, err)

		_, err = s.RentalReturnRepository.GetByID(ctx, rr.ID())
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		tx, err := s.TransactionRepository.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.TransactionStatusInProgress, tx.Status)
		unit, err := s.InventoryUnitRepository.GetByID(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, domain.InventoryStatusRented, unit.Status)
		_, err = s.StockLevelRepository.Get(ctx, 3, 1)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("CommitsOnSuccess", func(t *testing.T) {
		s := NewStore()
		rr := newReturn(t, 1, now)
		err := s.WithinTransaction(ctx, 1, func(ctx context.Context) error {
			return s.RentalReturnRepository.Create(ctx, rr)
		})
		require.NoError(t, err)
		_, err = s.RentalReturnRepository.GetByID(ctx, rr.ID())
		assert.NoError(t, err)
	})

	t.Run("SerializesSameTransaction", func(t *testing.T) {
		s := NewStore()
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			inside  int
			maxSeen int
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = s.WithinTransaction(ctx, 42, func(ctx context.Context) error {
					mu.Lock()
					inside++
					if inside > maxSeen {
						maxSeen = inside
					}
					mu.Unlock()
					time.Sleep(time.Millisecond)
					mu.Lock()
					inside--
					mu.Unlock()
					return nil
				})
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, maxSeen)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		s := NewStore()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		called := false
		err := s.WithinTransaction(cctx, 1, func(ctx context.Context) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})
}

func TestDepositRepository(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	returnID := uuid.New()

	_, err := s.DepositRepository.GetLatestRelease(ctx, returnID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	rel := &domain.DepositRelease{ReturnID: returnID, Calculation: domain.DepositCalculation{ReleaseAmount: domain.MustMoney("10.00")}}
	require.NoError(t, s.DepositRepository.CreateRelease(ctx, rel))
	assert.NotEqual(t, uuid.Nil, rel.ID)

	got, err := s.DepositRepository.GetLatestRelease(ctx, returnID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", got.Calculation.ReleaseAmount.String())

	entry := domain.NewDepositAuditEntry(returnID, domain.DepositAuditRelease, domain.MustMoney("10.00"), "", "ref-1", nil, time.Now())
	require.NoError(t, s.DepositRepository.CreateAuditEntry(ctx, &entry))
	entries, err := s.DepositRepository.ListAuditEntries(ctx, returnID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.DepositAuditRelease, entries[0].Action)
}
