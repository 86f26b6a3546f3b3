package memory

import (
	"context"

	"rentalreturn-backend/internal/domain"
)

type transactionRepository struct {
	d *dataSet
}

func (r *transactionRepository) GetByID(ctx context.Context, id int32) (*domain.Transaction, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	tx, ok := r.d.transactions[id]
	if !ok {
		return nil, domain.NewNotFoundError("transaction %d not found", id)
	}
	return &tx, nil
}

func (r *transactionRepository) ListLines(ctx context.Context, transactionID int32) ([]domain.TransactionLine, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	if _, ok := r.d.transactions[transactionID]; !ok {
		return nil, domain.NewNotFoundError("transaction %d not found", transactionID)
	}
	return append([]domain.TransactionLine(nil), r.d.lines[transactionID]...), nil
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, id int32, status domain.TransactionStatus) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	tx, ok := r.d.transactions[id]
	if !ok {
		return domain.NewNotFoundError("transaction %d not found", id)
	}
	prev := tx.Status
	tx.Status = status
	r.d.transactions[id] = tx
	recordUndo(ctx, func() {
		r.d.mu.Lock()
		defer r.d.mu.Unlock()
		t := r.d.transactions[id]
		t.Status = prev
		r.d.transactions[id] = t
	})
	return nil
}

type inventoryUnitRepository struct {
	d *dataSet
}

func (r *inventoryUnitRepository) GetByID(ctx context.Context, id int32) (*domain.InventoryUnit, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	u, ok := r.d.units[id]
	if !ok {
		return nil, domain.NewNotFoundError("inventory unit %d not found", id)
	}
	return &u, nil
}

func (r *inventoryUnitRepository) UpdateStatus(ctx context.Context, id int32, status domain.InventoryStatus) error {
	return r.update(ctx, id, func(u *domain.InventoryUnit) { u.Status = status })
}

func (r *inventoryUnitRepository) UpdateCondition(ctx context.Context, id int32, grade domain.ConditionGrade) error {
	return r.update(ctx, id, func(u *domain.InventoryUnit) { u.ConditionGrade = grade })
}

func (r *inventoryUnitRepository) update(ctx context.Context, id int32, apply func(*domain.InventoryUnit)) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	u, ok := r.d.units[id]
	if !ok {
		return domain.NewNotFoundError("inventory unit %d not found", id)
	}
	prev := u
	apply(&u)
	r.d.units[id] = u
	recordUndo(ctx, func() {
		r.d.mu.Lock()
		defer r.d.mu.Unlock()
		r.d.units[id] = prev
	})
	return nil
}

type stockLevelRepository struct {
	d *dataSet
}

func (r *stockLevelRepository) Get(ctx context.Context, itemID, locationID int32) (*domain.StockLevel, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	l, ok := r.d.stock[stockKey{itemID, locationID}]
	if !ok {
		return nil, domain.NewNotFoundError("no stock level for item %d at location %d", itemID, locationID)
	}
	return &l, nil
}

// Receive adds quantity to on-hand and available stock, creating the level
// if the item was never stocked at the location.
func (r *stockLevelRepository) Receive(ctx context.Context, itemID, locationID, quantity int32) error {
	if quantity <= 0 {
		return domain.NewInvalidQuantityError("receive quantity must be positive, got %d", quantity)
	}
	key := stockKey{itemID, locationID}
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	prev, existed := r.d.stock[key]
	l := prev
	l.ItemID, l.LocationID = itemID, locationID
	l.QuantityOnHand += quantity
	l.QuantityAvailable += quantity
	r.d.stock[key] = l
	recordUndo(ctx, func() {
		r.d.mu.Lock()
		defer r.d.mu.Unlock()
		if existed {
			r.d.stock[key] = prev
		} else {
			delete(r.d.stock, key)
		}
	})
	return nil
}
