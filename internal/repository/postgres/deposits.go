package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/repository"
)

type depositRepository struct {
	db *sql.DB
}

func NewDepositRepository(db *sql.DB) repository.DepositRepository {
	return &depositRepository{db: db}
}

func (r *depositRepository) CreateRelease(ctx context.Context, rel *domain.DepositRelease) error {
	if rel.ID == uuid.Nil {
		rel.ID = uuid.New()
	}
	c := rel.Calculation
	query := `INSERT INTO deposit_releases (id, return_id, rental_transaction_id, customer_id, original_deposit, total_fees, release_amount, withheld_amount,
	          overridden, payment_reference, payment_status, payment_processed_at, payment_message, released_by, released_at, notes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		rel.ID, rel.ReturnID, rel.TransactionID, rel.CustomerID, c.OriginalDeposit, c.TotalFees, c.ReleaseAmount, c.WithheldAmount,
		c.Overridden, rel.Payment.Reference, rel.Payment.Status, rel.Payment.ProcessedAt, rel.Payment.Message, rel.ReleasedBy, rel.ReleasedAt, rel.Notes)
	return err
}

func (r *depositRepository) GetLatestRelease(ctx context.Context, returnID uuid.UUID) (*domain.DepositRelease, error) {
	rel := &domain.DepositRelease{}
	c := &rel.Calculation
	query := `SELECT id, return_id, rental_transaction_id, customer_id, original_deposit, total_fees, release_amount, withheld_amount,
	          overridden, payment_reference, payment_status, payment_processed_at, payment_message, released_by, released_at, notes
	          FROM deposit_releases WHERE return_id = $1 ORDER BY released_at DESC LIMIT 1`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, returnID).Scan(
		&rel.ID, &rel.ReturnID, &rel.TransactionID, &rel.CustomerID, &c.OriginalDeposit, &c.TotalFees, &c.ReleaseAmount, &c.WithheldAmount,
		&c.Overridden, &rel.Payment.Reference, &rel.Payment.Status, &rel.Payment.ProcessedAt, &rel.Payment.Message, &rel.ReleasedBy, &rel.ReleasedAt, &rel.Notes)
	if err != nil {
		return nil, notFound(err, "no deposit release for return %s", returnID)
	}
	return rel, nil
}

func (r *depositRepository) CreateAuditEntry(ctx context.Context, entry *domain.DepositAuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	query := `INSERT INTO deposit_audit_log (id, return_id, action, amount, reason, reference, performed_by, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		entry.ID, entry.ReturnID, entry.Action, entry.Amount, entry.Reason, entry.Reference, entry.PerformedBy, entry.CreatedOn)
	return err
}

func (r *depositRepository) ListAuditEntries(ctx context.Context, returnID uuid.UUID) ([]domain.DepositAuditEntry, error) {
	query := `SELECT id, return_id, action, amount, reason, reference, performed_by, created_on
	          FROM deposit_audit_log WHERE return_id = $1 ORDER BY created_on`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, returnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.DepositAuditEntry
	for rows.Next() {
		var e domain.DepositAuditEntry
		if err := rows.Scan(&e.ID, &e.ReturnID, &e.Action, &e.Amount, &e.Reason, &e.Reference, &e.PerformedBy, &e.CreatedOn); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
