package jobs

import (
	"context"

	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/logger"
	"rentalreturn-backend/internal/service"
	"rentalreturn-backend/internal/utils"
)

const overduePageSize = 100

// OverdueSummary is what one projection run found.
type OverdueSummary struct {
	Scanned        int
	Overdue        int
	Failed         int
	TotalProjected domain.Money
}

// ProjectOverdueReturns logs the late fee every open return past its
// expected date would owe if it came back today. Nothing is persisted.
func (jr *JobRunner) ProjectOverdueReturns() {
	jr.runWithRecovery("ProjectOverdueReturns", func() {
		summary, err := jr.projectOverdueReturns(context.Background())
		if err != nil {
			logger.Error("Failed to project overdue returns", "error", err)
			return
		}
		logger.Info("Projected overdue returns",
			"scanned", summary.Scanned,
			"overdue", summary.Overdue,
			"failed", summary.Failed,
			"total_projected", summary.TotalProjected)
	})
}

func (jr *JobRunner) projectOverdueReturns(ctx context.Context) (OverdueSummary, error) {
	var summary OverdueSummary
	today := utils.DateOnly(jr.now())
	filter := domain.ReturnFilter{
		Statuses: []domain.ReturnStatus{
			domain.ReturnStatusInitiated,
			domain.ReturnStatusInInspection,
			domain.ReturnStatusPartiallyCompleted,
		},
	}

	for page := int32(1); ; page++ {
		list, total, err := jr.returns.ListReturns(ctx, filter, page, overduePageSize)
		if err != nil {
			return summary, err
		}
		for _, rr := range list {
			summary.Scanned++
			expected := rr.ExpectedReturnDate()
			if rr.IsFinalized() || expected == nil || !utils.DateOnly(*expected).Before(today) {
				continue
			}
			a, err := jr.returns.ProjectLateFee(ctx, service.LateFeeProjectionRequest{
				ReturnID:            rr.ID(),
				ProjectedReturnDate: today,
			})
			if err != nil {
				summary.Failed++
				logger.Warn("Failed to project late fee", "return_id", rr.ID(), "error", err)
				continue
			}
			if !a.IsLate {
				continue
			}
			summary.Overdue++
			summary.TotalProjected = summary.TotalProjected.Add(a.TotalLateFee)
			logger.Debug("Return overdue",
				"return_id", rr.ID(),
				"rental_transaction_id", rr.TransactionID(),
				"expected_return_date", utils.FormatDate(*expected),
				"days_late", a.DaysLate,
				"projected_fee", a.TotalLateFee)
		}
		if len(list) < overduePageSize || page*overduePageSize >= total {
			break
		}
	}
	return summary, nil
}
