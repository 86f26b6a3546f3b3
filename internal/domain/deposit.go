package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DepositCalculation splits the original deposit into the part refunded to
// the customer and the part withheld against fees. Release + Withheld
// always equals Original.
type DepositCalculation struct {
	OriginalDeposit Money `json:"original_deposit"`
	TotalFees       Money `json:"total_fees"`
	ReleaseAmount   Money `json:"release_amount"`
	WithheldAmount  Money `json:"withheld_amount"`
	Overridden      bool  `json:"overridden"`
}

// CalculateDepositRelease applies release = max(0, deposit - fees) unless an
// override is given, in which case the override must lie in [0, deposit].
func CalculateDepositRelease(original, fees Money, override *Money) (DepositCalculation, error) {
	c := DepositCalculation{OriginalDeposit: original, TotalFees: fees}
	if override != nil {
		if override.GreaterThan(original) {
			return DepositCalculation{}, NewInvalidAmountError("release amount %s exceeds deposit %s", override, original)
		}
		c.ReleaseAmount = *override
		c.Overridden = true
	} else {
		c.ReleaseAmount = original.Sub(fees)
	}
	c.WithheldAmount = original.Sub(c.ReleaseAmount)
	return c, nil
}

type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "SUCCEEDED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// PaymentResult is what the (simulated) gateway reports for a refund.
type PaymentResult struct {
	Reference   string        `json:"reference"`
	Status      PaymentStatus `json:"status"`
	ProcessedAt time.Time     `json:"processed_at"`
	Message     string        `json:"message,omitempty"`
}

// DepositRelease is the persisted record of one deposit refund.
type DepositRelease struct {
	ID            uuid.UUID          `json:"id"`
	ReturnID      uuid.UUID          `json:"return_id"`
	TransactionID int32              `json:"rental_transaction_id"`
	CustomerID    int32              `json:"customer_id"`
	Calculation   DepositCalculation `json:"calculation"`
	Payment       PaymentResult      `json:"payment"`
	ReleasedBy    *int32             `json:"released_by,omitempty"`
	ReleasedAt    time.Time          `json:"released_at"`
	Notes         string             `json:"notes,omitempty"`
}

type DepositAuditAction string

const (
	DepositAuditRelease  DepositAuditAction = "RELEASE"
	DepositAuditReversal DepositAuditAction = "REVERSAL"
)

type DepositAuditEntry struct {
	ID          uuid.UUID          `json:"id"`
	ReturnID    uuid.UUID          `json:"return_id"`
	Action      DepositAuditAction `json:"action"`
	Amount      Money              `json:"amount"`
	Reason      string             `json:"reason,omitempty"`
	Reference   string             `json:"reference,omitempty"`
	PerformedBy *int32             `json:"performed_by,omitempty"`
	CreatedOn   time.Time          `json:"created_on"`
}

func NewDepositAuditEntry(returnID uuid.UUID, action DepositAuditAction, amount Money, reason, reference string, by *int32, now time.Time) DepositAuditEntry {
	return DepositAuditEntry{
		ID:          uuid.New(),
		ReturnID:    returnID,
		Action:      action,
		Amount:      amount,
		Reason:      reason,
		Reference:   reference,
		PerformedBy: by,
		CreatedOn:   now,
	}
}

// CanReleaseDeposit checks the preconditions of a release.
func (r *RentalReturn) CanReleaseDeposit() error {
	switch {
	case r.IsDeleted():
		return NewInvalidStateError("return %s was deleted", r.id)
	case r.status != ReturnStatusCompleted:
		return NewInvalidStateError("return %s is %s, deposit can only be released once %s", r.id, r.status, ReturnStatusCompleted)
	case !r.IsFinalized():
		return NewInvalidStateError("return %s must be finalized before its deposit is released", r.id)
	case r.depositReleased:
		return NewInvalidStateError("deposit for return %s was already released", r.id)
	}
	return nil
}

// RecordDepositRelease stores the release metadata on the return.
func (r *RentalReturn) RecordDepositRelease(amount Money, by *int32, now time.Time) error {
	if err := r.CanReleaseDeposit(); err != nil {
		return err
	}
	r.depositReleased = true
	r.depositAmount = &amount
	r.depositReleaseDate = &now
	r.meta.touch(by, now)
	return nil
}

// ReverseDepositRelease clears the release state and returns the amount
// that had been released.
func (r *RentalReturn) ReverseDepositRelease(reason string, by *int32, now time.Time) (Money, error) {
	if !r.depositReleased {
		return Money{}, NewInvalidStateError("deposit for return %s was never released", r.id)
	}
	if strings.TrimSpace(reason) == "" {
		return Money{}, NewValidationError("a reason is required to reverse a deposit release")
	}
	var amount Money
	if r.depositAmount != nil {
		amount = *r.depositAmount
	}
	r.depositReleased = false
	r.depositAmount = nil
	r.depositReleaseDate = nil
	r.meta.touch(by, now)
	return amount, nil
}
