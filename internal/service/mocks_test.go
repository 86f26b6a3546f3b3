package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rentalreturn-backend/internal/domain"
)

// MockPaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) RefundDeposit(ctx context.Context, customerID int32, amount domain.Money, reference string) (domain.PaymentResult, error) {
	args := m.Called(ctx, customerID, amount, reference)
	return args.Get(0).(domain.PaymentResult), args.Error(1)
}
