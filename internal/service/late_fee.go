package service

import (
	"context"

	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/logger"
)

func (s *returnService) CalculateLateFee(ctx context.Context, req LateFeeRequest) (*domain.LateFeeAssessment, error) {
	logger.EnterMethod("returnService.CalculateLateFee", "returnID", req.ReturnID)
	policy := s.fees.lateFeePolicy(req.DailyRateOverride, req.ReferenceRate)

	var assessment domain.LateFeeAssessment
	_, err := mutateReturn(ctx, s.returnRepo, s.tx, req.ReturnID, func(ctx context.Context, rr *domain.RentalReturn) error {
		assessment = domain.CalculateLateFees(rr, rr.ReturnDate(), policy)
		return rr.ApplyLateFees(assessment, req.CalculatedBy, now())
	})
	if err != nil {
		logger.ExitMethodWithError("returnService.CalculateLateFee", err, "returnID", req.ReturnID)
		return nil, err
	}

	if assessment.IsLate {
		logger.Info("Late fee assessed", "return_id", req.ReturnID, "days_late", assessment.DaysLate, "total", assessment.TotalLateFee)
	}
	logger.ExitMethod("returnService.CalculateLateFee", "returnID", req.ReturnID, "total", assessment.TotalLateFee)
	return &assessment, nil
}

func (s *returnService) ProjectLateFee(ctx context.Context, req LateFeeProjectionRequest) (*domain.LateFeeAssessment, error) {
	if req.ProjectedReturnDate.IsZero() {
		return nil, domain.NewValidationError("projected return date is required")
	}
	rr, err := s.returnRepo.GetByID(ctx, req.ReturnID)
	if err != nil {
		return nil, err
	}
	a := domain.ProjectLateFees(rr, req.ProjectedReturnDate, s.fees.lateFeePolicy(req.DailyRateOverride, req.ReferenceRate))
	return &a, nil
}
