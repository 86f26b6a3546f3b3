package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/logger"
)

// simulatedGateway approves every refund and hands back a fresh reference.
// It stands in until a real processor is integrated.
type simulatedGateway struct{}

func NewSimulatedPaymentGateway() PaymentGateway {
	return &simulatedGateway{}
}

func (g *simulatedGateway) RefundDeposit(ctx context.Context, customerID int32, amount domain.Money, reference string) (domain.PaymentResult, error) {
	logger.ExternalServiceCall("payment-gateway", "RefundDeposit", "customerID", customerID, "amount", amount, "reference", reference)
	if err := ctx.Err(); err != nil {
		logger.ExternalServiceResult("payment-gateway", "RefundDeposit", err)
		return domain.PaymentResult{}, err
	}
	result := domain.PaymentResult{
		Reference:   fmt.Sprintf("REF-%s", strings.ToUpper(uuid.NewString()[:8])),
		Status:      domain.PaymentStatusSucceeded,
		ProcessedAt: now(),
	}
	logger.ExternalServiceResult("payment-gateway", "RefundDeposit", nil, "reference", result.Reference)
	return result, nil
}
