package memory

import (
	"sync"

	"github.com/google/uuid"

	"rentalreturn-backend/internal/domain"
)

type stockKey struct {
	itemID     int32
	locationID int32
}

type dataSet struct {
	mu           sync.RWMutex
	transactions map[int32]domain.Transaction
	lines        map[int32][]domain.TransactionLine
	units        map[int32]domain.InventoryUnit
	stock        map[stockKey]domain.StockLevel
	returns      map[uuid.UUID]domain.RentalReturnState
	returnOrder  []uuid.UUID
	releases     map[uuid.UUID][]domain.DepositRelease
	audit        map[uuid.UUID][]domain.DepositAuditEntry
}

func newDataSet() *dataSet {
	return &dataSet{
		transactions: make(map[int32]domain.Transaction),
		lines:        make(map[int32][]domain.TransactionLine),
		units:        make(map[int32]domain.InventoryUnit),
		stock:        make(map[stockKey]domain.StockLevel),
		returns:      make(map[uuid.UUID]domain.RentalReturnState),
		releases:     make(map[uuid.UUID][]domain.DepositRelease),
		audit:        make(map[uuid.UUID][]domain.DepositAuditEntry),
	}
}

// SeedTransaction loads a rental header and its lines.
func (s *Store) SeedTransaction(tx domain.Transaction, lines ...domain.TransactionLine) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	s.data.transactions[tx.ID] = tx
	for i := range lines {
		lines[i].TransactionID = tx.ID
	}
	s.data.lines[tx.ID] = append([]domain.TransactionLine(nil), lines...)
}

func (s *Store) SeedInventoryUnit(u domain.InventoryUnit) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	s.data.units[u.ID] = u
}

func (s *Store) SeedStockLevel(l domain.StockLevel) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	s.data.stock[stockKey{l.ItemID, l.LocationID}] = l
}
