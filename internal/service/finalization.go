package service

import (
	"context"

	"github.com/google/uuid"

	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/logger"
)

// FinalizeReturn locks fees and status in one unit of work, then applies
// the planned inventory changes one unit at a time. An inventory failure is
// reported in the outcome list and never undoes the finalization.
func (s *returnService) FinalizeReturn(ctx context.Context, req FinalizeReturnRequest) (*FinalizeReturnResult, error) {
	logger.EnterMethod("returnService.FinalizeReturn", "returnID", req.ReturnID, "force", req.Force)

	result := &FinalizeReturnResult{InventoryOutcomes: []InventoryOutcome{}}
	rr, err := mutateReturn(ctx, s.returnRepo, s.tx, req.ReturnID, func(ctx context.Context, rr *domain.RentalReturn) error {
		plan, err := rr.Finalize(req.Force, req.FinalizedBy, s.fees.MaintenanceDamageThreshold, now())
		if err != nil {
			return err
		}
		result.Plan = plan

		completed, err := s.rentalFullyReturned(ctx, rr)
		if err != nil {
			return err
		}
		if completed {
			if err := s.txRepo.UpdateStatus(ctx, rr.TransactionID(), domain.TransactionStatusCompleted); err != nil {
				return err
			}
			result.TransactionCompleted = true
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("returnService.FinalizeReturn", err, "returnID", req.ReturnID)
		return nil, err
	}
	if req.Force && !result.Plan.Check.OK() {
		logger.Warn("Return force-finalized with validation errors", "return_id", rr.ID(), "errors", result.Plan.Check.Errors)
	}

	stocked := make(map[uuid.UUID]int32)
	for _, change := range result.Plan.InventoryChanges {
		outcome := s.applyInventoryChange(ctx, rr, change)
		if outcome.Succeeded && outcome.StockQuantity > 0 {
			stocked[change.LineID] = outcome.StockQuantity
		}
		result.InventoryOutcomes = append(result.InventoryOutcomes, outcome)
	}
	if len(stocked) > 0 {
		if saved, err := s.recordStockReceived(ctx, rr.ID(), stocked); err != nil {
			logger.Warn("Failed to record stock received after finalization", "return_id", rr.ID(), "error", err)
		} else {
			rr = saved
		}
	}

	result.Return = rr
	logger.Info("Return finalized", "return_id", rr.ID(), "total_fees", result.Plan.Totals.Total, "transaction_completed", result.TransactionCompleted)
	logger.ExitMethod("returnService.FinalizeReturn", "returnID", rr.ID())
	return result, nil
}

// rentalFullyReturned reports whether, counting rr, every rented unit of the
// transaction has been returned by a live return.
func (s *returnService) rentalFullyReturned(ctx context.Context, rr *domain.RentalReturn) (bool, error) {
	lines, err := s.txRepo.ListLines(ctx, rr.TransactionID())
	if err != nil {
		return false, err
	}
	all, err := s.returnRepo.ListByTransaction(ctx, rr.TransactionID())
	if err != nil {
		return false, err
	}
	returned := rr.ReturnedQuantities()
	for _, other := range all {
		if other.ID() == rr.ID() {
			continue
		}
		for unit, q := range other.ReturnedQuantities() {
			returned[unit] += q
		}
	}
	rented := domain.RentedQuantities(lines)
	if len(rented) == 0 {
		return false, nil
	}
	for unit, q := range rented {
		if returned[unit] < q {
			return false, nil
		}
	}
	return true, nil
}

func (s *returnService) applyInventoryChange(ctx context.Context, rr *domain.RentalReturn, change domain.InventoryChange) InventoryOutcome {
	outcome := InventoryOutcome{
		LineID:          change.LineID,
		InventoryUnitID: change.InventoryUnitID,
		Status:          change.Status,
		StockQuantity:   change.StockQuantity,
	}
	fail := func(err error) InventoryOutcome {
		logger.Warn("Inventory update skipped", "return_id", rr.ID(), "unit_id", change.InventoryUnitID, "error", err)
		outcome.Error = err.Error()
		return outcome
	}

	unit, err := s.unitRepo.GetByID(ctx, change.InventoryUnitID)
	if err != nil {
		return fail(err)
	}
	if err := s.unitRepo.UpdateCondition(ctx, unit.ID, change.ConditionGrade); err != nil {
		return fail(err)
	}
	if err := s.unitRepo.UpdateStatus(ctx, unit.ID, change.Status); err != nil {
		return fail(err)
	}
	if change.StockQuantity > 0 {
		if err := s.stockRepo.Receive(ctx, unit.ItemID, stockLocation(rr, unit), change.StockQuantity); err != nil {
			return fail(err)
		}
	}
	outcome.Succeeded = true
	return outcome
}

func (s *returnService) recordStockReceived(ctx context.Context, id uuid.UUID, stocked map[uuid.UUID]int32) (*domain.RentalReturn, error) {
	return mutateReturn(ctx, s.returnRepo, s.tx, id, func(ctx context.Context, rr *domain.RentalReturn) error {
		for lineID, q := range stocked {
			if err := rr.MarkStockReceived(lineID, q); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *returnService) PreviewFinalization(ctx context.Context, returnID uuid.UUID) (*domain.FinalizationPlan, error) {
	rr, err := s.returnRepo.GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	plan, err := domain.PlanFinalization(rr, s.fees.MaintenanceDamageThreshold)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
