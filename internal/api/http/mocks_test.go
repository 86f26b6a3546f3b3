package http_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/service"
)

type MockReturnService struct {
	mock.Mock
}

func (m *MockReturnService) InitiateReturn(ctx context.Context, req service.InitiateReturnRequest) (*domain.RentalReturn, error) {
	args := m.Called(ctx, req)
	rr, _ := args.Get(0).(*domain.RentalReturn)
	return rr, args.Error(1)
}

func (m *MockReturnService) GetReturn(ctx context.Context, id uuid.UUID) (*domain.RentalReturn, error) {
	args := m.Called(ctx, id)
	rr, _ := args.Get(0).(*domain.RentalReturn)
	return rr, args.Error(1)
}

func (m *MockReturnService) ListReturns(ctx context.Context, filter domain.ReturnFilter, page, pageSize int32) ([]*domain.RentalReturn, int32, error) {
	args := m.Called(ctx, filter, page, pageSize)
	list, _ := args.Get(0).([]*domain.RentalReturn)
	return list, args.Get(1).(int32), args.Error(2)
}

func (m *MockReturnService) CancelReturn(ctx context.Context, id uuid.UUID, reason string, cancelledBy *int32) (*domain.RentalReturn, error) {
	args := m.Called(ctx, id, reason, cancelledBy)
	rr, _ := args.Get(0).(*domain.RentalReturn)
	return rr, args.Error(1)
}

func (m *MockReturnService) DeleteReturn(ctx context.Context, id uuid.UUID, deletedBy *int32) error {
	args := m.Called(ctx, id, deletedBy)
	return args.Error(0)
}

func (m *MockReturnService) ProcessPartialReturn(ctx context.Context, req service.ProcessReturnRequest) (*service.ProcessReturnResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*service.ProcessReturnResult)
	return res, args.Error(1)
}

func (m *MockReturnService) ValidatePartialReturn(ctx context.Context, returnID uuid.UUID, updates []service.LineUpdate) (*service.PartialReturnValidation, error) {
	args := m.Called(ctx, returnID, updates)
	v, _ := args.Get(0).(*service.PartialReturnValidation)
	return v, args.Error(1)
}

func (m *MockReturnService) CalculateLateFee(ctx context.Context, req service.LateFeeRequest) (*domain.LateFeeAssessment, error) {
	args := m.Called(ctx, req)
	a, _ := args.Get(0).(*domain.LateFeeAssessment)
	return a, args.Error(1)
}

func (m *MockReturnService) ProjectLateFee(ctx context.Context, req service.LateFeeProjectionRequest) (*domain.LateFeeAssessment, error) {
	args := m.Called(ctx, req)
	a, _ := args.Get(0).(*domain.LateFeeAssessment)
	return a, args.Error(1)
}

func (m *MockReturnService) FinalizeReturn(ctx context.Context, req service.FinalizeReturnRequest) (*service.FinalizeReturnResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*service.FinalizeReturnResult)
	return res, args.Error(1)
}

func (m *MockReturnService) PreviewFinalization(ctx context.Context, returnID uuid.UUID) (*domain.FinalizationPlan, error) {
	args := m.Called(ctx, returnID)
	p, _ := args.Get(0).(*domain.FinalizationPlan)
	return p, args.Error(1)
}

type MockInspectionService struct {
	mock.Mock
}

func (m *MockInspectionService) AssessDamage(ctx context.Context, req service.AssessDamageRequest) (*domain.InspectionReport, error) {
	args := m.Called(ctx, req)
	rep, _ := args.Get(0).(*domain.InspectionReport)
	return rep, args.Error(1)
}

func (m *MockInspectionService) CompleteInspection(ctx context.Context, req service.CompleteInspectionRequest) (*domain.InspectionReport, error) {
	args := m.Called(ctx, req)
	rep, _ := args.Get(0).(*domain.InspectionReport)
	return rep, args.Error(1)
}

func (m *MockInspectionService) AppendInspectionNote(ctx context.Context, reportID uuid.UUID, note string, by *int32) (*domain.InspectionReport, error) {
	args := m.Called(ctx, reportID, note, by)
	rep, _ := args.Get(0).(*domain.InspectionReport)
	return rep, args.Error(1)
}

func (m *MockInspectionService) GetInspection(ctx context.Context, reportID uuid.UUID) (*domain.InspectionReport, error) {
	args := m.Called(ctx, reportID)
	rep, _ := args.Get(0).(*domain.InspectionReport)
	return rep, args.Error(1)
}

func (m *MockInspectionService) ListInspections(ctx context.Context, returnID uuid.UUID) ([]*domain.InspectionReport, error) {
	args := m.Called(ctx, returnID)
	list, _ := args.Get(0).([]*domain.InspectionReport)
	return list, args.Error(1)
}

func (m *MockInspectionService) RequestPhotoUpload(ctx context.Context, returnID uuid.UUID, filename, contentType string) (*service.PhotoUpload, error) {
	args := m.Called(ctx, returnID, filename, contentType)
	up, _ := args.Get(0).(*service.PhotoUpload)
	return up, args.Error(1)
}

type MockDepositService struct {
	mock.Mock
}

func (m *MockDepositService) CalculateDeposit(ctx context.Context, returnID uuid.UUID, override *domain.Money) (*domain.DepositCalculation, error) {
	args := m.Called(ctx, returnID, override)
	c, _ := args.Get(0).(*domain.DepositCalculation)
	return c, args.Error(1)
}

func (m *MockDepositService) ReleaseDeposit(ctx context.Context, req service.ReleaseDepositRequest) (*domain.DepositRelease, error) {
	args := m.Called(ctx, req)
	rel, _ := args.Get(0).(*domain.DepositRelease)
	return rel, args.Error(1)
}

func (m *MockDepositService) ReverseDepositRelease(ctx context.Context, req service.ReverseDepositRequest) (*domain.DepositAuditEntry, error) {
	args := m.Called(ctx, req)
	e, _ := args.Get(0).(*domain.DepositAuditEntry)
	return e, args.Error(1)
}

func (m *MockDepositService) ListDepositAudit(ctx context.Context, returnID uuid.UUID) ([]domain.DepositAuditEntry, error) {
	args := m.Called(ctx, returnID)
	list, _ := args.Get(0).([]domain.DepositAuditEntry)
	return list, args.Error(1)
}
