package service

import (
	"context"

	"github.com/google/uuid"

	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/logger"
	"rentalreturn-backend/internal/repository"
)

type returnService struct {
	txRepo     repository.TransactionRepository
	unitRepo   repository.InventoryUnitRepository
	stockRepo  repository.StockLevelRepository
	returnRepo repository.RentalReturnRepository
	tx         repository.Transactor
	fees       FeeSettings
}

func NewReturnService(
	txRepo repository.TransactionRepository,
	unitRepo repository.InventoryUnitRepository,
	stockRepo repository.StockLevelRepository,
	returnRepo repository.RentalReturnRepository,
	tx repository.Transactor,
	fees FeeSettings,
) ReturnService {
	return &returnService{
		txRepo:     txRepo,
		unitRepo:   unitRepo,
		stockRepo:  stockRepo,
		returnRepo: returnRepo,
		tx:         tx,
		fees:       fees,
	}
}

func (s *returnService) InitiateReturn(ctx context.Context, req InitiateReturnRequest) (*domain.RentalReturn, error) {
	logger.EnterMethod("returnService.InitiateReturn", "transactionID", req.TransactionID, "items", len(req.Items))

	if len(req.Items) == 0 {
		err := domain.NewValidationError("at least one item is required")
		logger.ExitMethodWithError("returnService.InitiateReturn", err)
		return nil, err
	}

	var created *domain.RentalReturn
	err := s.tx.WithinTransaction(ctx, req.TransactionID, func(ctx context.Context) error {
		txn, err := s.txRepo.GetByID(ctx, req.TransactionID)
		if err != nil {
			return err
		}
		if !txn.IsActiveRental() {
			return domain.NewInvalidStateError("transaction %d is a %s in status %s, returns need an active rental", txn.ID, txn.Type, txn.Status)
		}

		lines, err := s.txRepo.ListLines(ctx, txn.ID)
		if err != nil {
			return err
		}
		rented := domain.RentedQuantities(lines)

		prior, err := s.returnRepo.ListByTransaction(ctx, txn.ID)
		if err != nil {
			return err
		}
		committed := make(map[int32]int32)
		for _, p := range prior {
			for unit, q := range p.CommittedQuantities() {
				committed[unit] += q
			}
		}

		items := make([]domain.NewReturnItem, 0, len(req.Items))
		for _, item := range req.Items {
			if item.Quantity <= 0 {
				return domain.NewInvalidQuantityError("quantity for unit %d must be positive, got %d", item.InventoryUnitID, item.Quantity)
			}
			rentedQty, ok := rented[item.InventoryUnitID]
			if !ok {
				return domain.NewValidationError("inventory unit %d was not rented on transaction %d", item.InventoryUnitID, txn.ID)
			}
			outstanding := rentedQty - committed[item.InventoryUnitID]
			if item.Quantity > outstanding {
				return domain.NewQuantityExceededError("unit %d: requested %d but only %d outstanding of %d rented",
					item.InventoryUnitID, item.Quantity, outstanding, rentedQty)
			}
			unit, err := s.unitRepo.GetByID(ctx, item.InventoryUnitID)
			if err != nil {
				return err
			}
			items = append(items, domain.NewReturnItem{
				InventoryUnitID: item.InventoryUnitID,
				Quantity:        item.Quantity,
				ConditionGrade:  unit.ConditionGrade,
				Notes:           item.Notes,
			})
		}

		expected := req.ExpectedReturnDate
		if expected == nil {
			expected = txn.RentalEndDate
		}
		rr, err := domain.NewRentalReturn(domain.NewReturnParams{
			TransactionID:      txn.ID,
			ReturnDate:         req.ReturnDate,
			ExpectedReturnDate: expected,
			ReturnType:         req.ReturnType,
			LocationID:         req.LocationID,
			ProcessedBy:        req.ProcessedBy,
			Notes:              req.Notes,
			Items:              items,
		}, now())
		if err != nil {
			return err
		}

		// The caller's type is only a hint; FULL means this return brings
		// the rental's total back to everything that was rented.
		var totalRented, toDate int32
		for _, q := range rented {
			totalRented += q
		}
		for _, q := range committed {
			toDate += q
		}
		toDate += rr.TotalOriginalQuantity()
		returnType := domain.ReturnTypePartial
		if toDate == totalRented {
			returnType = domain.ReturnTypeFull
		}
		if err := rr.SetReturnType(returnType); err != nil {
			return err
		}

		if err := s.returnRepo.Create(ctx, rr); err != nil {
			return err
		}
		created = rr
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("returnService.InitiateReturn", err, "transactionID", req.TransactionID)
		return nil, err
	}

	logger.Info("Return initiated", "return_id", created.ID(), "transaction_id", req.TransactionID, "return_type", created.ReturnType())
	logger.ExitMethod("returnService.InitiateReturn", "returnID", created.ID())
	return created, nil
}

func (s *returnService) GetReturn(ctx context.Context, id uuid.UUID) (*domain.RentalReturn, error) {
	return s.returnRepo.GetByID(ctx, id)
}

func (s *returnService) ListReturns(ctx context.Context, filter domain.ReturnFilter, page, pageSize int32) ([]*domain.RentalReturn, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return s.returnRepo.List(ctx, filter, page, pageSize)
}

func (s *returnService) CancelReturn(ctx context.Context, id uuid.UUID, reason string, cancelledBy *int32) (*domain.RentalReturn, error) {
	logger.EnterMethod("returnService.CancelReturn", "returnID", id)
	rr, err := mutateReturn(ctx, s.returnRepo, s.tx, id, func(ctx context.Context, rr *domain.RentalReturn) error {
		return rr.Cancel(reason, cancelledBy, now())
	})
	if err != nil {
		logger.ExitMethodWithError("returnService.CancelReturn", err, "returnID", id)
		return nil, err
	}
	logger.Info("Return cancelled", "return_id", id, "reason", reason)
	logger.ExitMethod("returnService.CancelReturn", "returnID", id)
	return rr, nil
}

func (s *returnService) DeleteReturn(ctx context.Context, id uuid.UUID, deletedBy *int32) error {
	logger.EnterMethod("returnService.DeleteReturn", "returnID", id)
	rr, err := s.returnRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("returnService.DeleteReturn", err, "returnID", id)
		return err
	}
	err = s.tx.WithinTransaction(ctx, rr.TransactionID(), func(ctx context.Context) error {
		locked, err := s.returnRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := locked.SoftDelete(deletedBy, now()); err != nil {
			return err
		}
		return s.returnRepo.SoftDelete(ctx, locked)
	})
	if err != nil {
		logger.ExitMethodWithError("returnService.DeleteReturn", err, "returnID", id)
		return err
	}
	logger.Info("Return deleted", "return_id", id)
	logger.ExitMethod("returnService.DeleteReturn", "returnID", id)
	return nil
}
