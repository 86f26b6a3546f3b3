package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/repository"
	"rentalreturn-backend/internal/repository/memory"
	"rentalreturn-backend/internal/service"
	"rentalreturn-backend/internal/storage"
)

var (
	expectedDate = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	onTimeDate   = time.Date(2024, 1, 9, 15, 0, 0, 0, time.UTC)
	lateDate     = time.Date(2024, 1, 15, 11, 30, 0, 0, time.UTC)
)

const (
	rentalID   = int32(100)
	customerID = int32(7)
	clerkID    = int32(42)
	storeID    = int32(1)
)

type fixture struct {
	store       *memory.Store
	photos      *storage.LocalPhotoStore
	returns     service.ReturnService
	inspections service.InspectionService
	deposits    service.DepositService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	photos, err := storage.NewLocalPhotoStore("http://localhost:8080", t.TempDir(), "test-secret")
	require.NoError(t, err)
	return newFixtureWith(s, s.StockLevelRepository, photos)
}

func newFixtureWith(s *memory.Store, stock repository.StockLevelRepository, photos *storage.LocalPhotoStore) *fixture {
	fees := service.DefaultFeeSettings()
	fees.MaintenanceDamageThreshold = domain.MustMoney("100.00")
	return &fixture{
		store:       s,
		photos:      photos,
		returns:     service.NewReturnService(s.TransactionRepository, s.InventoryUnitRepository, stock, s.RentalReturnRepository, s.Transactor, fees),
		inspections: service.NewInspectionService(s.RentalReturnRepository, s.InspectionRepository, s.Transactor, photos, 15*time.Minute, fees),
		deposits:    service.NewDepositService(s.TransactionRepository, s.RentalReturnRepository, s.DepositRepository, s.Transactor, service.NewSimulatedPaymentGateway()),
	}
}

// seedRental rents one of each unit at the given quantities; unit n belongs
// to item n+1000 and lives at storeID.
func (f *fixture) seedRental(deposit string, quantities map[int32]int32) {
	end := expectedDate
	lines := make([]domain.TransactionLine, 0, len(quantities))
	for unit, q := range quantities {
		lines = append(lines, domain.TransactionLine{InventoryUnitID: unit, Quantity: q})
		f.store.SeedInventoryUnit(domain.InventoryUnit{
			ID:             unit,
			ItemID:         unit + 1000,
			LocationID:     storeID,
			ConditionGrade: domain.ConditionGradeA,
			Status:         domain.InventoryStatusRented,
		})
	}
	f.store.SeedTransaction(domain.Transaction{
		ID:            rentalID,
		Type:          domain.TransactionTypeRental,
		Status:        domain.TransactionStatusInProgress,
		CustomerID:    customerID,
		DepositAmount: domain.MustMoney(deposit),
		RentalEndDate: &end,
	}, lines...)
}

func (f *fixture) initiate(t *testing.T, returnDate time.Time, items ...service.ReturnItem) *domain.RentalReturn {
	t.Helper()
	by := clerkID
	rr, err := f.returns.InitiateReturn(context.Background(), service.InitiateReturnRequest{
		TransactionID: rentalID,
		ReturnDate:    returnDate,
		ProcessedBy:   &by,
		Items:         items,
	})
	require.NoError(t, err)
	return rr
}

func lineFor(t *testing.T, rr *domain.RentalReturn, unitID int32) uuid.UUID {
	t.Helper()
	for _, l := range rr.Lines() {
		if l.InventoryUnitID() == unitID {
			return l.ID()
		}
	}
	t.Fatalf("no line for unit %d", unitID)
	return uuid.Nil
}

func grade(g domain.ConditionGrade) *domain.ConditionGrade { return &g }

func money(s string) *domain.Money {
	m := domain.MustMoney(s)
	return &m
}
