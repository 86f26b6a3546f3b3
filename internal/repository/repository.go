package repository

import (
	"context"

	"github.com/google/uuid"

	"rentalreturn-backend/internal/domain"
)

// TransactionRepository reads rental headers owned by the order system.
type TransactionRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Transaction, error)
	ListLines(ctx context.Context, transactionID int32) ([]domain.TransactionLine, error)
	UpdateStatus(ctx context.Context, id int32, status domain.TransactionStatus) error
}

type InventoryUnitRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.InventoryUnit, error)
	UpdateStatus(ctx context.Context, id int32, status domain.InventoryStatus) error
	UpdateCondition(ctx context.Context, id int32, grade domain.ConditionGrade) error
}

type StockLevelRepository interface {
	Get(ctx context.Context, itemID, locationID int32) (*domain.StockLevel, error)
	Receive(ctx context.Context, itemID, locationID, quantity int32) error
}

// RentalReturnRepository persists the return aggregate: header, lines and
// inspection reports are written and read together.
type RentalReturnRepository interface {
	Create(ctx context.Context, rr *domain.RentalReturn) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RentalReturn, error)
	ListByTransaction(ctx context.Context, transactionID int32) ([]*domain.RentalReturn, error)
	Update(ctx context.Context, rr *domain.RentalReturn) error
	SoftDelete(ctx context.Context, rr *domain.RentalReturn) error
	List(ctx context.Context, filter domain.ReturnFilter, page, pageSize int32) ([]*domain.RentalReturn, int32, error)
}

// InspectionRepository is the read side for inspection reports; reports are
// written through RentalReturnRepository.
type InspectionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.InspectionReport, error)
	ListByReturn(ctx context.Context, returnID uuid.UUID) ([]*domain.InspectionReport, error)
}

type DepositRepository interface {
	CreateRelease(ctx context.Context, rel *domain.DepositRelease) error
	GetLatestRelease(ctx context.Context, returnID uuid.UUID) (*domain.DepositRelease, error)
	CreateAuditEntry(ctx context.Context, entry *domain.DepositAuditEntry) error
	ListAuditEntries(ctx context.Context, returnID uuid.UUID) ([]domain.DepositAuditEntry, error)
}

// Transactor serializes mutations per rental transaction. fn runs with
// exclusive access to transactionID; every repository call made with the
// ctx passed to fn joins the same unit of work, which commits only if fn
// returns nil.
type Transactor interface {
	WithinTransaction(ctx context.Context, transactionID int32, fn func(ctx context.Context) error) error
}
