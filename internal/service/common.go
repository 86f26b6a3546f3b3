package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/repository"
)

// FeeSettings are the configured fallbacks used when callers supply no
// pricing of their own.
type FeeSettings struct {
	LateFeeRatePercent         decimal.Decimal
	FallbackDailyRate          domain.Money
	DefaultCleaningFee         domain.Money
	MaintenanceDamageThreshold domain.Money
}

func DefaultFeeSettings() FeeSettings {
	return FeeSettings{
		LateFeeRatePercent: decimal.NewFromInt(10),
		FallbackDailyRate:  domain.MustMoney("5.00"),
		DefaultCleaningFee: domain.MustMoney("25.00"),
	}
}

func (f FeeSettings) lateFeePolicy(override, reference *domain.Money) domain.LateFeePolicy {
	return domain.LateFeePolicy{
		DailyRateOverride:  override,
		ReferenceRate:      reference,
		DefaultRatePercent: f.LateFeeRatePercent,
		FallbackDailyRate:  f.FallbackDailyRate,
	}
}

// now is the service clock; tests replace it.
var now = func() time.Time { return time.Now().UTC() }

// mutateReturn loads a return, locks its rental transaction, reloads the
// return under the lock and hands it to fn. The return is saved when fn
// returns nil; nothing is saved otherwise.
func mutateReturn(
	ctx context.Context,
	returns repository.RentalReturnRepository,
	tx repository.Transactor,
	id uuid.UUID,
	fn func(ctx context.Context, rr *domain.RentalReturn) error,
) (*domain.RentalReturn, error) {
	rr, err := returns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var saved *domain.RentalReturn
	err = tx.WithinTransaction(ctx, rr.TransactionID(), func(ctx context.Context) error {
		locked, err := returns.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(ctx, locked); err != nil {
			return err
		}
		if err := returns.Update(ctx, locked); err != nil {
			return err
		}
		saved = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}
