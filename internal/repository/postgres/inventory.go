package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/repository"
)

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) GetByID(ctx context.Context, id int32) (*domain.Transaction, error) {
	tx := &domain.Transaction{}
	query := `SELECT id, transaction_type, status, customer_id, deposit_amount, rental_end_date FROM rental_transactions WHERE id = $1`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&tx.ID, &tx.Type, &tx.Status, &tx.CustomerID, &tx.DepositAmount, &tx.RentalEndDate)
	if err != nil {
		return nil, notFound(err, "transaction %d not found", id)
	}
	return tx, nil
}

func (r *transactionRepository) ListLines(ctx context.Context, transactionID int32) ([]domain.TransactionLine, error) {
	query := `SELECT transaction_id, inventory_unit_id, quantity FROM rental_transaction_lines WHERE transaction_id = $1 ORDER BY inventory_unit_id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.TransactionLine
	for rows.Next() {
		var l domain.TransactionLine
		if err := rows.Scan(&l.TransactionID, &l.InventoryUnitID, &l.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, id int32, status domain.TransactionStatus) error {
	query := `UPDATE rental_transactions SET status = $1, updated_on = $2 WHERE id = $3`
	return execOne(ctx, conn(ctx, r.db), query, "transaction %d not found", []any{id}, status, time.Now(), id)
}

type inventoryUnitRepository struct {
	db *sql.DB
}

func NewInventoryUnitRepository(db *sql.DB) repository.InventoryUnitRepository {
	return &inventoryUnitRepository{db: db}
}

func (r *inventoryUnitRepository) GetByID(ctx context.Context, id int32) (*domain.InventoryUnit, error) {
	u := &domain.InventoryUnit{}
	query := `SELECT id, item_id, location_id, condition_grade, status FROM inventory_units WHERE id = $1`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&u.ID, &u.ItemID, &u.LocationID, &u.ConditionGrade, &u.Status)
	if err != nil {
		return nil, notFound(err, "inventory unit %d not found", id)
	}
	return u, nil
}

func (r *inventoryUnitRepository) UpdateStatus(ctx context.Context, id int32, status domain.InventoryStatus) error {
	query := `UPDATE inventory_units SET status = $1, updated_on = $2 WHERE id = $3`
	return execOne(ctx, conn(ctx, r.db), query, "inventory unit %d not found", []any{id}, status, time.Now(), id)
}

func (r *inventoryUnitRepository) UpdateCondition(ctx context.Context, id int32, grade domain.ConditionGrade) error {
	query := `UPDATE inventory_units SET condition_grade = $1, updated_on = $2 WHERE id = $3`
	return execOne(ctx, conn(ctx, r.db), query, "inventory unit %d not found", []any{id}, grade, time.Now(), id)
}

type stockLevelRepository struct {
	db *sql.DB
}

func NewStockLevelRepository(db *sql.DB) repository.StockLevelRepository {
	return &stockLevelRepository{db: db}
}

func (r *stockLevelRepository) Get(ctx context.Context, itemID, locationID int32) (*domain.StockLevel, error) {
	l := &domain.StockLevel{}
	query := `SELECT item_id, location_id, quantity_on_hand, quantity_available FROM stock_levels WHERE item_id = $1 AND location_id = $2`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, itemID, locationID).Scan(&l.ItemID, &l.LocationID, &l.QuantityOnHand, &l.QuantityAvailable)
	if err != nil {
		return nil, notFound(err, "no stock level for item %d at location %d", itemID, locationID)
	}
	return l, nil
}

func (r *stockLevelRepository) Receive(ctx context.Context, itemID, locationID, quantity int32) error {
	if quantity <= 0 {
		return domain.NewInvalidQuantityError("receive quantity must be positive, got %d", quantity)
	}
	query := `INSERT INTO stock_levels (item_id, location_id, quantity_on_hand, quantity_available, updated_on)
	          VALUES ($1, $2, $3, $3, $4)
	          ON CONFLICT (item_id, location_id) DO UPDATE
	          SET quantity_on_hand = stock_levels.quantity_on_hand + EXCLUDED.quantity_on_hand,
	              quantity_available = stock_levels.quantity_available + EXCLUDED.quantity_available,
	              updated_on = EXCLUDED.updated_on`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, itemID, locationID, quantity, time.Now())
	return err
}

// execOne runs an update that must touch exactly one row.
func execOne(ctx context.Context, q DBTX, query, missing string, missingArgs []any, args ...any) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewNotFoundError(missing, missingArgs...)
	}
	return nil
}
