package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rentalreturn-backend/internal/utils"
)

// LateFeePolicy supplies the daily rate. The engine does not own pricing:
// an explicit override wins, then a percentage of the caller's reference
// rental rate, then the configured fallback.
type LateFeePolicy struct {
	DailyRateOverride  *Money
	ReferenceRate      *Money
	DefaultRatePercent decimal.Decimal
	FallbackDailyRate  Money
}

func (p LateFeePolicy) DailyRate() Money {
	var override, reference *decimal.Decimal
	if p.DailyRateOverride != nil {
		d := p.DailyRateOverride.Decimal()
		override = &d
	}
	if p.ReferenceRate != nil {
		d := p.ReferenceRate.Decimal()
		reference = &d
	}
	return MoneyFromDecimal(utils.ResolveDailyRate(override, reference, p.DefaultRatePercent, p.FallbackDailyRate.Decimal()))
}

type LineLateFee struct {
	LineID           uuid.UUID `json:"line_id"`
	InventoryUnitID  int32     `json:"inventory_unit_id"`
	ReturnedQuantity int32     `json:"returned_quantity"`
	Fee              Money     `json:"late_fee"`
}

// LateFeeAssessment is the result of one late-fee computation.
type LateFeeAssessment struct {
	ReturnDate         time.Time     `json:"return_date"`
	ExpectedReturnDate *time.Time    `json:"expected_return_date,omitempty"`
	IsLate             bool          `json:"is_late"`
	DaysLate           int           `json:"days_late"`
	DailyRate          Money         `json:"daily_rate"`
	Lines              []LineLateFee `json:"lines"`
	TotalLateFee       Money         `json:"total_late_fee"`
}

// CalculateLateFees computes fee = returned × daily rate × days late for
// every line with a positive returned quantity. It reads r and never
// changes it.
func CalculateLateFees(r *RentalReturn, returnDate time.Time, policy LateFeePolicy) LateFeeAssessment {
	return lateFees(r, returnDate, policy, func(l *ReturnLine) int32 { return l.returnedQuantity })
}

// ProjectLateFees prices a hypothetical return of every unit on r at
// returnDate, counting lines not yet received at their full quantity.
func ProjectLateFees(r *RentalReturn, returnDate time.Time, policy LateFeePolicy) LateFeeAssessment {
	return lateFees(r, returnDate, policy, func(l *ReturnLine) int32 {
		if l.returnedQuantity > 0 {
			return l.returnedQuantity
		}
		return l.originalQuantity
	})
}

func lateFees(r *RentalReturn, returnDate time.Time, policy LateFeePolicy, quantity func(*ReturnLine) int32) LateFeeAssessment {
	a := LateFeeAssessment{
		ReturnDate:         returnDate,
		ExpectedReturnDate: r.expectedReturnDate,
		Lines:              []LineLateFee{},
	}
	if r.expectedReturnDate == nil {
		return a
	}
	days := utils.DaysBetween(*r.expectedReturnDate, returnDate)
	if days <= 0 {
		return a
	}
	a.IsLate = true
	a.DaysLate = days
	a.DailyRate = policy.DailyRate()
	for _, l := range r.lines {
		q := quantity(l)
		if q <= 0 {
			continue
		}
		fee := a.DailyRate.MulInt(int64(q) * int64(days))
		a.Lines = append(a.Lines, LineLateFee{
			LineID:           l.id,
			InventoryUnitID:  l.inventoryUnitID,
			ReturnedQuantity: q,
			Fee:              fee,
		})
		a.TotalLateFee = a.TotalLateFee.Add(fee)
	}
	return a
}

// ApplyLateFees writes an assessment onto the lines. Lines missing from the
// assessment are reset to zero, so applying the same assessment twice
// yields the same totals.
func (r *RentalReturn) ApplyLateFees(a LateFeeAssessment, by *int32, now time.Time) error {
	if err := r.ensureOpen(); err != nil {
		return err
	}
	fees := make(map[uuid.UUID]Money, len(a.Lines))
	for _, lf := range a.Lines {
		if _, err := r.Line(lf.LineID); err != nil {
			return err
		}
		fees[lf.LineID] = lf.Fee
	}
	for _, l := range r.lines {
		l.setLateFee(fees[l.id])
	}
	r.RecalculateTotals()
	r.meta.touch(by, now)
	return nil
}
