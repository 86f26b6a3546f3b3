package memory

import (
	"context"
	"sync"

	"rentalreturn-backend/internal/repository"
)

// Store keeps every repository in process memory. It backs local runs and
// the service tests; all repositories share one data set and one lock.
type Store struct {
	data *dataSet

	repository.TransactionRepository
	repository.InventoryUnitRepository
	repository.StockLevelRepository
	repository.RentalReturnRepository
	repository.InspectionRepository
	repository.DepositRepository
	repository.Transactor
}

func NewStore() *Store {
	d := newDataSet()
	return &Store{
		data:                    d,
		TransactionRepository:   &transactionRepository{d: d},
		InventoryUnitRepository: &inventoryUnitRepository{d: d},
		StockLevelRepository:    &stockLevelRepository{d: d},
		RentalReturnRepository:  &rentalReturnRepository{d: d},
		InspectionRepository:    &inspectionRepository{d: d},
		DepositRepository:       &depositRepository{d: d},
		Transactor:              newTransactor(),
	}
}

// unitOfWork collects undo steps for writes made inside WithinTransaction.
type unitOfWork struct {
	undo []func()
}

type uowKey struct{}

// recordUndo registers fn to run if the surrounding unit of work fails.
// Outside a unit of work writes are final and fn is dropped.
func recordUndo(ctx context.Context, fn func()) {
	if u, ok := ctx.Value(uowKey{}).(*unitOfWork); ok {
		u.undo = append(u.undo, fn)
	}
}

// transactor hands out one mutex per rental transaction id.
type transactor struct {
	mu    sync.Mutex
	locks map[int32]*sync.Mutex
}

func newTransactor() *transactor {
	return &transactor{locks: make(map[int32]*sync.Mutex)}
}

func (t *transactor) lockFor(id int32) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[id]
	if !ok {
		l = &sync.Mutex{}
		t.locks[id] = l
	}
	return l
}

func (t *transactor) WithinTransaction(ctx context.Context, transactionID int32, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l := t.lockFor(transactionID)
	l.Lock()
	defer l.Unlock()

	u := &unitOfWork{}
	if err := fn(context.WithValue(ctx, uowKey{}, u)); err != nil {
		for i := len(u.undo) - 1; i >= 0; i-- {
			u.undo[i]()
		}
		return err
	}
	return nil
}
