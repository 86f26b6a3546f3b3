package postgres

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/lib/pq"

	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/logger"
	"rentalreturn-backend/internal/repository"
)

// DBTX is the query surface shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// conn picks the open transaction carried by ctx, falling back to the pool.
func conn(ctx context.Context, db *sql.DB) DBTX {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

type Store struct {
	db *sql.DB
	repository.TransactionRepository
	repository.InventoryUnitRepository
	repository.StockLevelRepository
	repository.RentalReturnRepository
	repository.InspectionRepository
	repository.DepositRepository
	repository.Transactor
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                      db,
		TransactionRepository:   NewTransactionRepository(db),
		InventoryUnitRepository: NewInventoryUnitRepository(db),
		StockLevelRepository:    NewStockLevelRepository(db),
		RentalReturnRepository:  NewRentalReturnRepository(db),
		InspectionRepository:    NewInspectionRepository(db),
		DepositRepository:       NewDepositRepository(db),
		Transactor:              NewTransactor(db),
	}
}

type transactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) repository.Transactor {
	return &transactor{db: db}
}

const lockTransactionQuery = `SELECT id FROM rental_transactions WHERE id = $1 FOR UPDATE`

// WithinTransaction opens a database transaction, locks the rental
// transaction row and runs fn. A ctx that already carries a transaction is
// reused so nested calls join the outer unit of work.
func (t *transactor) WithinTransaction(ctx context.Context, transactionID int32, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		if err := lockTransaction(ctx, tx, transactionID); err != nil {
			return err
		}
		return fn(ctx)
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := lockTransaction(ctx, tx, transactionID); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func lockTransaction(ctx context.Context, tx *sql.Tx, transactionID int32) error {
	logger.DatabaseCall("lock", lockTransactionQuery, "transaction_id", transactionID)
	var id int32
	err := tx.QueryRowContext(ctx, lockTransactionQuery, transactionID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		err = domain.NewNotFoundError("transaction %d not found", transactionID)
	}
	logger.DatabaseResult("lock", 1, err, "transaction_id", transactionID)
	return err
}

// notFound maps sql.ErrNoRows to a NotFound domain error.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError(format, args...)
	}
	return err
}
