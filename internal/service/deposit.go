package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/logger"
	"rentalreturn-backend/internal/repository"
)

type depositService struct {
	txRepo      repository.TransactionRepository
	returnRepo  repository.RentalReturnRepository
	depositRepo repository.DepositRepository
	tx          repository.Transactor
	gateway     PaymentGateway
}

func NewDepositService(
	txRepo repository.TransactionRepository,
	returnRepo repository.RentalReturnRepository,
	depositRepo repository.DepositRepository,
	tx repository.Transactor,
	gateway PaymentGateway,
) DepositService {
	return &depositService{
		txRepo:      txRepo,
		returnRepo:  returnRepo,
		depositRepo: depositRepo,
		tx:          tx,
		gateway:     gateway,
	}
}

func (s *depositService) CalculateDeposit(ctx context.Context, returnID uuid.UUID, override *domain.Money) (*domain.DepositCalculation, error) {
	rr, err := s.returnRepo.GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	txn, err := s.txRepo.GetByID(ctx, rr.TransactionID())
	if err != nil {
		return nil, err
	}
	calc, err := domain.CalculateDepositRelease(txn.DepositAmount, rr.TotalFees(), override)
	if err != nil {
		return nil, err
	}
	return &calc, nil
}

func (s *depositService) ReleaseDeposit(ctx context.Context, req ReleaseDepositRequest) (*domain.DepositRelease, error) {
	logger.EnterMethod("depositService.ReleaseDeposit", "returnID", req.ReturnID)

	var release *domain.DepositRelease
	_, err := mutateReturn(ctx, s.returnRepo, s.tx, req.ReturnID, func(ctx context.Context, rr *domain.RentalReturn) error {
		if err := rr.CanReleaseDeposit(); err != nil {
			return err
		}
		txn, err := s.txRepo.GetByID(ctx, rr.TransactionID())
		if err != nil {
			return err
		}
		calc, err := domain.CalculateDepositRelease(txn.DepositAmount, rr.TotalFees(), req.OverrideAmount)
		if err != nil {
			return err
		}

		payment, err := s.gateway.RefundDeposit(ctx, txn.CustomerID, calc.ReleaseAmount, fmt.Sprintf("deposit-%s", rr.ID()))
		if err != nil {
			return fmt.Errorf("refund deposit for return %s: %w", rr.ID(), err)
		}
		if payment.Status != domain.PaymentStatusSucceeded {
			return fmt.Errorf("refund deposit for return %s: gateway reported %s: %s", rr.ID(), payment.Status, payment.Message)
		}

		at := now()
		if err := rr.RecordDepositRelease(calc.ReleaseAmount, req.ReleasedBy, at); err != nil {
			return err
		}
		release = &domain.DepositRelease{
			ID:            uuid.New(),
			ReturnID:      rr.ID(),
			TransactionID: txn.ID,
			CustomerID:    txn.CustomerID,
			Calculation:   calc,
			Payment:       payment,
			ReleasedBy:    req.ReleasedBy,
			ReleasedAt:    at,
			Notes:         req.Notes,
		}
		if err := s.depositRepo.CreateRelease(ctx, release); err != nil {
			return err
		}
		entry := domain.NewDepositAuditEntry(rr.ID(), domain.DepositAuditRelease, calc.ReleaseAmount, req.Notes, payment.Reference, req.ReleasedBy, at)
		return s.depositRepo.CreateAuditEntry(ctx, &entry)
	})
	if err != nil {
		logger.ExitMethodWithError("depositService.ReleaseDeposit", err, "returnID", req.ReturnID)
		return nil, err
	}

	logger.Info("Deposit released", "return_id", req.ReturnID, "amount", release.Calculation.ReleaseAmount,
		"withheld", release.Calculation.WithheldAmount, "reference", release.Payment.Reference)
	logger.ExitMethod("depositService.ReleaseDeposit", "returnID", req.ReturnID)
	return release, nil
}

func (s *depositService) ReverseDepositRelease(ctx context.Context, req ReverseDepositRequest) (*domain.DepositAuditEntry, error) {
	logger.EnterMethod("depositService.ReverseDepositRelease", "returnID", req.ReturnID)

	var entry domain.DepositAuditEntry
	_, err := mutateReturn(ctx, s.returnRepo, s.tx, req.ReturnID, func(ctx context.Context, rr *domain.RentalReturn) error {
		at := now()
		amount, err := rr.ReverseDepositRelease(req.Reason, req.ReversedBy, at)
		if err != nil {
			return err
		}
		var reference string
		latest, err := s.depositRepo.GetLatestRelease(ctx, rr.ID())
		switch {
		case err == nil:
			reference = latest.Payment.Reference
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}
		entry = domain.NewDepositAuditEntry(rr.ID(), domain.DepositAuditReversal, amount, req.Reason, reference, req.ReversedBy, at)
		return s.depositRepo.CreateAuditEntry(ctx, &entry)
	})
	if err != nil {
		logger.ExitMethodWithError("depositService.ReverseDepositRelease", err, "returnID", req.ReturnID)
		return nil, err
	}

	logger.Warn("Deposit release reversed", "return_id", req.ReturnID, "amount", entry.Amount, "reason", req.Reason)
	logger.ExitMethod("depositService.ReverseDepositRelease", "returnID", req.ReturnID)
	return &entry, nil
}

func (s *depositService) ListDepositAudit(ctx context.Context, returnID uuid.UUID) ([]domain.DepositAuditEntry, error) {
	if _, err := s.returnRepo.GetByID(ctx, returnID); err != nil {
		return nil, err
	}
	return s.depositRepo.ListAuditEntries(ctx, returnID)
}
