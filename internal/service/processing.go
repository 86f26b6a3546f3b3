package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/logger"
)

func (s *returnService) ProcessPartialReturn(ctx context.Context, req ProcessReturnRequest) (*ProcessReturnResult, error) {
	logger.EnterMethod("returnService.ProcessPartialReturn", "returnID", req.ReturnID, "updates", len(req.Updates))

	if err := checkUpdates(req.Updates); err != nil {
		logger.ExitMethodWithError("returnService.ProcessPartialReturn", err, "returnID", req.ReturnID)
		return nil, err
	}

	result := &ProcessReturnResult{InventoryChanges: []InventoryOutcome{}}
	rr, err := mutateReturn(ctx, s.returnRepo, s.tx, req.ReturnID, func(ctx context.Context, rr *domain.RentalReturn) error {
		t := now()
		for _, u := range req.Updates {
			if err := rr.ReceiveLine(u.LineID, u.ReturnedQuantity, u.ConditionGrade, u.Notes, req.ProcessedBy, t); err != nil {
				return err
			}
		}
		if err := rr.AdvanceAfterReceipt(t); err != nil {
			return err
		}
		if !req.ProcessInventory {
			return nil
		}
		for _, u := range req.Updates {
			line, err := rr.Line(u.LineID)
			if err != nil {
				return err
			}
			if line.ReturnedQuantity() == 0 {
				continue
			}
			outcome, err := s.receiveIntoInventory(ctx, rr, line)
			if err != nil {
				return err
			}
			result.InventoryChanges = append(result.InventoryChanges, outcome)
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("returnService.ProcessPartialReturn", err, "returnID", req.ReturnID)
		return nil, err
	}

	result.Return = rr
	result.CompletionPercentage = rr.CompletionPercentage()
	logger.Info("Return processed", "return_id", rr.ID(), "status", rr.Status(), "completion", result.CompletionPercentage)
	logger.ExitMethod("returnService.ProcessPartialReturn", "returnID", rr.ID())
	return result, nil
}

// receiveIntoInventory sets the unit's grade and status from the line and
// puts the line's not-yet-stocked quantity back on the shelf.
func (s *returnService) receiveIntoInventory(ctx context.Context, rr *domain.RentalReturn, line *domain.ReturnLine) (InventoryOutcome, error) {
	status, err := line.ConditionGrade().InventoryStatus()
	if err != nil {
		return InventoryOutcome{}, err
	}
	outcome := InventoryOutcome{
		LineID:          line.ID(),
		InventoryUnitID: line.InventoryUnitID(),
		Status:          status,
		StockQuantity:   line.PendingStockQuantity(),
	}
	unit, err := s.unitRepo.GetByID(ctx, line.InventoryUnitID())
	if err != nil {
		return outcome, err
	}
	if err := s.unitRepo.UpdateCondition(ctx, unit.ID, line.ConditionGrade()); err != nil {
		return outcome, err
	}
	if err := s.unitRepo.UpdateStatus(ctx, unit.ID, status); err != nil {
		return outcome, err
	}
	if outcome.StockQuantity > 0 {
		if err := s.stockRepo.Receive(ctx, unit.ItemID, stockLocation(rr, unit), outcome.StockQuantity); err != nil {
			return outcome, err
		}
		if err := rr.MarkStockReceived(line.ID(), outcome.StockQuantity); err != nil {
			return outcome, err
		}
	}
	outcome.Succeeded = true
	return outcome, nil
}

// stockLocation is where returned units are shelved: the return's drop-off
// location when recorded, otherwise the unit's home location.
func stockLocation(rr *domain.RentalReturn, unit *domain.InventoryUnit) int32 {
	if loc := rr.LocationID(); loc != nil {
		return *loc
	}
	return unit.LocationID
}

func checkUpdates(updates []LineUpdate) error {
	if len(updates) == 0 {
		return domain.NewValidationError("at least one line update is required")
	}
	seen := make(map[uuid.UUID]bool, len(updates))
	for _, u := range updates {
		if seen[u.LineID] {
			return domain.NewValidationError("line %s appears more than once", u.LineID)
		}
		seen[u.LineID] = true
		if u.ConditionGrade != nil && !u.ConditionGrade.IsValid() {
			return domain.NewValidationError("unknown condition grade %q for line %s", string(*u.ConditionGrade), u.LineID)
		}
	}
	return nil
}

func (s *returnService) ValidatePartialReturn(ctx context.Context, returnID uuid.UUID, updates []LineUpdate) (*PartialReturnValidation, error) {
	rr, err := s.returnRepo.GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}

	v := &PartialReturnValidation{
		Errors:          []string{},
		Lines:           []LineValidation{},
		ResultingStatus: rr.Status(),
	}
	switch {
	case rr.Status() == domain.ReturnStatusCancelled:
		v.Errors = append(v.Errors, "return is cancelled")
	case rr.IsFinalized():
		v.Errors = append(v.Errors, "return is finalized")
	case rr.Status() == domain.ReturnStatusCompleted:
		v.Errors = append(v.Errors, "return is already completed")
	}
	if err := checkUpdates(updates); err != nil {
		v.Errors = append(v.Errors, err.Error())
	}

	proposed := make(map[uuid.UUID]int32, len(updates))
	for _, u := range updates {
		lv := LineValidation{LineID: u.LineID, ProposedQuantity: u.ReturnedQuantity, Errors: []string{}, Warnings: []string{}}
		line, err := rr.Line(u.LineID)
		if err != nil {
			lv.Errors = append(lv.Errors, err.Error())
			v.Lines = append(v.Lines, lv)
			continue
		}
		lv.InventoryUnitID = line.InventoryUnitID()
		lv.OriginalQuantity = line.OriginalQuantity()
		if err := line.ValidateReturnedQuantity(u.ReturnedQuantity); err != nil {
			lv.Errors = append(lv.Errors, err.Error())
		} else {
			proposed[u.LineID] = u.ReturnedQuantity
		}
		switch {
		case u.ReturnedQuantity == 0:
			lv.Warnings = append(lv.Warnings, "nothing returned for this line")
		case u.ReturnedQuantity < line.OriginalQuantity():
			lv.Warnings = append(lv.Warnings, fmt.Sprintf("partial: %d of %d units", u.ReturnedQuantity, line.OriginalQuantity()))
		}
		grade := line.ConditionGrade()
		if u.ConditionGrade != nil {
			grade = *u.ConditionGrade
		}
		switch grade {
		case domain.ConditionGradeC:
			lv.Warnings = append(lv.Warnings, "grade C units go to inspection")
		case domain.ConditionGradeD:
			lv.Warnings = append(lv.Warnings, "grade D units go to maintenance")
		}
		v.Lines = append(v.Lines, lv)
	}

	for _, l := range rr.Lines() {
		v.TotalOriginal += l.OriginalQuantity()
		if q, ok := proposed[l.ID()]; ok {
			v.TotalReturned += q
		} else {
			v.TotalReturned += l.ReturnedQuantity()
		}
	}
	if v.TotalOriginal > 0 {
		v.CompletionPercentage = float64(v.TotalReturned) * 100 / float64(v.TotalOriginal)
	}

	v.Valid = len(v.Errors) == 0
	for _, lv := range v.Lines {
		if len(lv.Errors) > 0 {
			v.Valid = false
		}
	}
	if v.Valid {
		switch {
		case v.TotalReturned == 0:
		case v.TotalReturned == v.TotalOriginal:
			v.ResultingStatus = domain.ReturnStatusCompleted
		default:
			v.ResultingStatus = domain.ReturnStatusPartiallyCompleted
		}
	}
	return v, nil
}
