package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/repository"
)

// Verify interface compliance
var (
	_ repository.TransactionRepository   = (*transactionRepository)(nil)
	_ repository.InventoryUnitRepository = (*inventoryUnitRepository)(nil)
	_ repository.StockLevelRepository    = (*stockLevelRepository)(nil)
	_ repository.RentalReturnRepository  = (*rentalReturnRepository)(nil)
	_ repository.InspectionRepository    = (*inspectionRepository)(nil)
	_ repository.DepositRepository       = (*depositRepository)(nil)
	_ repository.Transactor              = (*transactor)(nil)
)

// rentalReturnRepository keeps each aggregate as a state snapshot so callers
// never share pointers with the stored copy.
type rentalReturnRepository struct {
	d *dataSet
}

func (r *rentalReturnRepository) Create(ctx context.Context, rr *domain.RentalReturn) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.returns[rr.ID()]; ok {
		return domain.NewValidationError("return %s already exists", rr.ID())
	}
	id := rr.ID()
	r.d.returns[id] = rr.State()
	r.d.returnOrder = append(r.d.returnOrder, id)
	recordUndo(ctx, func() {
		r.d.mu.Lock()
		defer r.d.mu.Unlock()
		delete(r.d.returns, id)
		for i, o := range r.d.returnOrder {
			if o == id {
				r.d.returnOrder = append(r.d.returnOrder[:i], r.d.returnOrder[i+1:]...)
				break
			}
		}
	})
	return nil
}

func (r *rentalReturnRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RentalReturn, error) {
	r.d.mu.RLock()
	s, ok := r.d.returns[id]
	r.d.mu.RUnlock()
	if !ok || s.DeletedOn != nil {
		return nil, domain.NewNotFoundError("return %s not found", id)
	}
	return domain.RestoreRentalReturn(s)
}

func (r *rentalReturnRepository) ListByTransaction(ctx context.Context, transactionID int32) ([]*domain.RentalReturn, error) {
	return r.collect(func(s domain.RentalReturnState) bool {
		return s.RentalTransactionID == transactionID && s.DeletedOn == nil
	})
}

func (r *rentalReturnRepository) Update(ctx context.Context, rr *domain.RentalReturn) error {
	return r.replace(ctx, rr)
}

func (r *rentalReturnRepository) SoftDelete(ctx context.Context, rr *domain.RentalReturn) error {
	if !rr.IsDeleted() {
		return domain.NewInvalidStateError("return %s is not marked deleted", rr.ID())
	}
	return r.replace(ctx, rr)
}

func (r *rentalReturnRepository) replace(ctx context.Context, rr *domain.RentalReturn) error {
	id := rr.ID()
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	prev, ok := r.d.returns[id]
	if !ok || prev.DeletedOn != nil {
		return domain.NewNotFoundError("return %s not found", id)
	}
	r.d.returns[id] = rr.State()
	recordUndo(ctx, func() {
		r.d.mu.Lock()
		defer r.d.mu.Unlock()
		r.d.returns[id] = prev
	})
	return nil
}

// List returns one page of matching returns, newest return date first, and
// the total match count.
func (r *rentalReturnRepository) List(ctx context.Context, filter domain.ReturnFilter, page, pageSize int32) ([]*domain.RentalReturn, int32, error) {
	all, err := r.collect(func(domain.RentalReturnState) bool { return true })
	if err != nil {
		return nil, 0, err
	}
	var matched []*domain.RentalReturn
	for _, rr := range all {
		if filter.Matches(rr) {
			matched = append(matched, rr)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].ReturnDate().After(matched[j].ReturnDate())
	})

	total := int32(len(matched))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []*domain.RentalReturn{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *rentalReturnRepository) collect(keep func(domain.RentalReturnState) bool) ([]*domain.RentalReturn, error) {
	r.d.mu.RLock()
	states := make([]domain.RentalReturnState, 0, len(r.d.returnOrder))
	for _, id := range r.d.returnOrder {
		if s := r.d.returns[id]; keep(s) {
			states = append(states, s)
		}
	}
	r.d.mu.RUnlock()

	out := make([]*domain.RentalReturn, 0, len(states))
	for _, s := range states {
		rr, err := domain.RestoreRentalReturn(s)
		if err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, nil
}

type inspectionRepository struct {
	d *dataSet
}

func (r *inspectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.InspectionReport, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	for _, s := range r.d.returns {
		if s.DeletedOn != nil {
			continue
		}
		for _, is := range s.Inspections {
			if is.ID == id {
				return domain.RestoreInspectionReport(is)
			}
		}
	}
	return nil, domain.NewNotFoundError("inspection %s not found", id)
}

func (r *inspectionRepository) ListByReturn(ctx context.Context, returnID uuid.UUID) ([]*domain.InspectionReport, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	s, ok := r.d.returns[returnID]
	if !ok || s.DeletedOn != nil {
		return nil, domain.NewNotFoundError("return %s not found", returnID)
	}
	out := make([]*domain.InspectionReport, 0, len(s.Inspections))
	for _, is := range s.Inspections {
		rep, err := domain.RestoreInspectionReport(is)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, nil
}
