package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/logger"
	"rentalreturn-backend/internal/repository"
)

const returnColumns = `id, rental_transaction_id, return_date, expected_return_date, return_type, return_status, return_location_id, processed_by, notes,
	total_late_fee, total_damage_fee, total_cleaning_fee, total_replacement_fee,
	deposit_released, deposit_release_amount, deposit_release_date, finalized_at, finalized_by, cancellation_reason,
	created_on, updated_on, created_by, updated_by, deleted_on, deleted_by`

const lineColumns = `id, return_id, inventory_unit_id, original_quantity, returned_quantity, stock_received_quantity, condition_grade, damage_level,
	late_fee, damage_fee, cleaning_fee, replacement_fee, is_processed, processed_at, processed_by, notes,
	created_on, updated_on, created_by, updated_by, deleted_on, deleted_by`

const inspectionColumns = `id, return_id, inventory_unit_id, inspector_id, inspection_date, pre_condition_grade, post_condition_grade, damage_level,
	damage_found, damage_description, repair_estimate, photo_urls, findings, inspection_status,
	approved_by, approved_at, rejected_by, rejected_at, rejection_notes, notes,
	created_on, updated_on, created_by, updated_by, deleted_on, deleted_by`

type rentalReturnRepository struct {
	db *sql.DB
}

func NewRentalReturnRepository(db *sql.DB) repository.RentalReturnRepository {
	return &rentalReturnRepository{db: db}
}

func (r *rentalReturnRepository) Create(ctx context.Context, rr *domain.RentalReturn) error {
	s := rr.State()
	q := conn(ctx, r.db)
	query := `INSERT INTO rental_returns (` + returnColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`
	logger.DatabaseCall("insert", "rental_returns", "return_id", s.ID)
	_, err := q.ExecContext(ctx, query,
		s.ID, s.RentalTransactionID, s.ReturnDate, s.ExpectedReturnDate, s.ReturnType, s.ReturnStatus, s.ReturnLocationID, s.ProcessedBy, s.Notes,
		s.TotalLateFee, s.TotalDamageFee, s.TotalCleaningFee, s.TotalReplacementFee,
		s.DepositReleased, s.DepositReleaseAmount, s.DepositReleaseDate, s.FinalizedAt, s.FinalizedBy, s.CancellationReason,
		s.CreatedOn, s.UpdatedOn, s.CreatedBy, s.UpdatedBy, s.DeletedOn, s.DeletedBy)
	logger.DatabaseResult("insert", 1, err, "return_id", s.ID)
	if err != nil {
		return err
	}
	return saveChildren(ctx, q, s)
}

func (r *rentalReturnRepository) Update(ctx context.Context, rr *domain.RentalReturn) error {
	s := rr.State()
	q := conn(ctx, r.db)
	query := `UPDATE rental_returns SET return_type = $1, return_status = $2, return_location_id = $3, processed_by = $4, notes = $5,
	          total_late_fee = $6, total_damage_fee = $7, total_cleaning_fee = $8, total_replacement_fee = $9,
	          deposit_released = $10, deposit_release_amount = $11, deposit_release_date = $12, finalized_at = $13, finalized_by = $14,
	          cancellation_reason = $15, updated_on = $16, updated_by = $17, deleted_on = $18, deleted_by = $19
	          WHERE id = $20 AND deleted_on IS NULL`
	logger.DatabaseCall("update", "rental_returns", "return_id", s.ID)
	err := execOne(ctx, q, query, "return %s not found", []any{s.ID},
		s.ReturnType, s.ReturnStatus, s.ReturnLocationID, s.ProcessedBy, s.Notes,
		s.TotalLateFee, s.TotalDamageFee, s.TotalCleaningFee, s.TotalReplacementFee,
		s.DepositReleased, s.DepositReleaseAmount, s.DepositReleaseDate, s.FinalizedAt, s.FinalizedBy,
		s.CancellationReason, s.UpdatedOn, s.UpdatedBy, s.DeletedOn, s.DeletedBy, s.ID)
	logger.DatabaseResult("update", 1, err, "return_id", s.ID)
	if err != nil {
		return err
	}
	return saveChildren(ctx, q, s)
}

// SoftDelete writes the deletion marks set by RentalReturn.SoftDelete.
func (r *rentalReturnRepository) SoftDelete(ctx context.Context, rr *domain.RentalReturn) error {
	if !rr.IsDeleted() {
		return domain.NewInvalidStateError("return %s is not marked deleted", rr.ID())
	}
	return r.Update(ctx, rr)
}

func saveChildren(ctx context.Context, q DBTX, s domain.RentalReturnState) error {
	for _, l := range s.Lines {
		if err := upsertLine(ctx, q, l); err != nil {
			return err
		}
	}
	for _, rep := range s.Inspections {
		if err := upsertInspection(ctx, q, rep); err != nil {
			return err
		}
	}
	return nil
}

func upsertLine(ctx context.Context, q DBTX, l domain.ReturnLineState) error {
	query := `INSERT INTO rental_return_lines (` + lineColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	          ON CONFLICT (id) DO UPDATE SET
	              returned_quantity = EXCLUDED.returned_quantity, stock_received_quantity = EXCLUDED.stock_received_quantity,
	              condition_grade = EXCLUDED.condition_grade, damage_level = EXCLUDED.damage_level,
	              late_fee = EXCLUDED.late_fee, damage_fee = EXCLUDED.damage_fee, cleaning_fee = EXCLUDED.cleaning_fee, replacement_fee = EXCLUDED.replacement_fee,
	              is_processed = EXCLUDED.is_processed, processed_at = EXCLUDED.processed_at, processed_by = EXCLUDED.processed_by, notes = EXCLUDED.notes,
	              updated_on = EXCLUDED.updated_on, updated_by = EXCLUDED.updated_by, deleted_on = EXCLUDED.deleted_on, deleted_by = EXCLUDED.deleted_by`
	_, err := q.ExecContext(ctx, query,
		l.ID, l.ReturnID, l.InventoryUnitID, l.OriginalQuantity, l.ReturnedQuantity, l.StockReceived, l.ConditionGrade, l.DamageLevel,
		l.LateFee, l.DamageFee, l.CleaningFee, l.ReplacementFee, l.IsProcessed, l.ProcessedAt, l.ProcessedBy, l.Notes,
		l.CreatedOn, l.UpdatedOn, l.CreatedBy, l.UpdatedBy, l.DeletedOn, l.DeletedBy)
	return err
}

func upsertInspection(ctx context.Context, q DBTX, rep domain.InspectionReportState) error {
	findings, err := json.Marshal(rep.Findings)
	if err != nil {
		return fmt.Errorf("encode findings: %w", err)
	}
	query := `INSERT INTO inspection_reports (` + inspectionColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
	          ON CONFLICT (id) DO UPDATE SET
	              inspection_status = EXCLUDED.inspection_status,
	              approved_by = EXCLUDED.approved_by, approved_at = EXCLUDED.approved_at,
	              rejected_by = EXCLUDED.rejected_by, rejected_at = EXCLUDED.rejected_at, rejection_notes = EXCLUDED.rejection_notes,
	              notes = EXCLUDED.notes, updated_on = EXCLUDED.updated_on, updated_by = EXCLUDED.updated_by,
	              deleted_on = EXCLUDED.deleted_on, deleted_by = EXCLUDED.deleted_by`
	_, err = q.ExecContext(ctx, query,
		rep.ID, rep.ReturnID, rep.InventoryUnitID, rep.InspectorID, rep.InspectionDate, rep.PreConditionGrade, rep.PostConditionGrade, rep.DamageLevel,
		rep.DamageFound, rep.DamageDescription, rep.RepairEstimate, pq.Array(rep.PhotoURLs), string(findings), rep.Status,
		rep.ApprovedBy, rep.ApprovedAt, rep.RejectedBy, rep.RejectedAt, rep.RejectionNotes, pq.Array(rep.Notes),
		rep.CreatedOn, rep.UpdatedOn, rep.CreatedBy, rep.UpdatedBy, rep.DeletedOn, rep.DeletedBy)
	return err
}

func (r *rentalReturnRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RentalReturn, error) {
	q := conn(ctx, r.db)
	query := `SELECT ` + returnColumns + ` FROM rental_returns WHERE id = $1 AND deleted_on IS NULL`
	s, err := scanReturn(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "return %s not found", id)
	}
	return loadAggregate(ctx, q, s)
}

func (r *rentalReturnRepository) ListByTransaction(ctx context.Context, transactionID int32) ([]*domain.RentalReturn, error) {
	q := conn(ctx, r.db)
	query := `SELECT ` + returnColumns + ` FROM rental_returns WHERE rental_transaction_id = $1 AND deleted_on IS NULL ORDER BY created_on`
	return queryReturns(ctx, q, query, transactionID)
}

func (r *rentalReturnRepository) List(ctx context.Context, filter domain.ReturnFilter, page, pageSize int32) ([]*domain.RentalReturn, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	q := conn(ctx, r.db)

	where := ` FROM rental_returns WHERE 1=1`
	var args []any
	add := func(clause string, v any) {
		args = append(args, v)
		where += fmt.Sprintf(clause, len(args))
	}
	if !filter.IncludeDeleted {
		where += ` AND deleted_on IS NULL`
	}
	if filter.TransactionID != nil {
		add(` AND rental_transaction_id = $%d`, *filter.TransactionID)
	}
	if filter.Status != nil {
		add(` AND return_status = $%d`, string(*filter.Status))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		add(` AND return_status = ANY($%d)`, pq.Array(statuses))
	}
	if filter.ReturnType != nil {
		add(` AND return_type = $%d`, string(*filter.ReturnType))
	}
	if filter.LocationID != nil {
		add(` AND return_location_id = $%d`, *filter.LocationID)
	}
	if filter.ReturnedFrom != nil {
		add(` AND return_date >= $%d`, *filter.ReturnedFrom)
	}
	if filter.ReturnedTo != nil {
		add(` AND return_date <= $%d`, *filter.ReturnedTo)
	}

	var count int32
	if err := q.QueryRowContext(ctx, `SELECT count(*)`+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + returnColumns + where +
		fmt.Sprintf(` ORDER BY return_date DESC, created_on DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)
	returns, err := queryReturns(ctx, q, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return returns, count, nil
}

func queryReturns(ctx context.Context, q DBTX, query string, args ...any) ([]*domain.RentalReturn, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var states []domain.RentalReturnState
	for rows.Next() {
		s, err := scanReturn(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		states = append(states, s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	returns := make([]*domain.RentalReturn, 0, len(states))
	for _, s := range states {
		rr, err := loadAggregate(ctx, q, s)
		if err != nil {
			return nil, err
		}
		returns = append(returns, rr)
	}
	return returns, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReturn(row scanner) (domain.RentalReturnState, error) {
	var s domain.RentalReturnState
	err := row.Scan(&s.ID, &s.RentalTransactionID, &s.ReturnDate, &s.ExpectedReturnDate, &s.ReturnType, &s.ReturnStatus, &s.ReturnLocationID, &s.ProcessedBy, &s.Notes,
		&s.TotalLateFee, &s.TotalDamageFee, &s.TotalCleaningFee, &s.TotalReplacementFee,
		&s.DepositReleased, &s.DepositReleaseAmount, &s.DepositReleaseDate, &s.FinalizedAt, &s.FinalizedBy, &s.CancellationReason,
		&s.CreatedOn, &s.UpdatedOn, &s.CreatedBy, &s.UpdatedBy, &s.DeletedOn, &s.DeletedBy)
	return s, err
}

// loadAggregate reads lines and reports for a header and rebuilds the
// aggregate.
func loadAggregate(ctx context.Context, q DBTX, s domain.RentalReturnState) (*domain.RentalReturn, error) {
	lines, err := listLines(ctx, q, s.ID)
	if err != nil {
		return nil, err
	}
	reports, err := listInspections(ctx, q, s.ID)
	if err != nil {
		return nil, err
	}
	s.Lines = lines
	s.Inspections = reports
	return domain.RestoreRentalReturn(s)
}

func listLines(ctx context.Context, q DBTX, returnID uuid.UUID) ([]domain.ReturnLineState, error) {
	query := `SELECT ` + lineColumns + ` FROM rental_return_lines WHERE return_id = $1 ORDER BY created_on, id`
	rows, err := q.QueryContext(ctx, query, returnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.ReturnLineState
	for rows.Next() {
		var l domain.ReturnLineState
		if err := rows.Scan(&l.ID, &l.ReturnID, &l.InventoryUnitID, &l.OriginalQuantity, &l.ReturnedQuantity, &l.StockReceived, &l.ConditionGrade, &l.DamageLevel,
			&l.LateFee, &l.DamageFee, &l.CleaningFee, &l.ReplacementFee, &l.IsProcessed, &l.ProcessedAt, &l.ProcessedBy, &l.Notes,
			&l.CreatedOn, &l.UpdatedOn, &l.CreatedBy, &l.UpdatedBy, &l.DeletedOn, &l.DeletedBy); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func listInspections(ctx context.Context, q DBTX, returnID uuid.UUID) ([]domain.InspectionReportState, error) {
	query := `SELECT ` + inspectionColumns + ` FROM inspection_reports WHERE return_id = $1 ORDER BY created_on, id`
	rows, err := q.QueryContext(ctx, query, returnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []domain.InspectionReportState
	for rows.Next() {
		rep, err := scanInspection(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func scanInspection(row scanner) (domain.InspectionReportState, error) {
	var (
		rep      domain.InspectionReportState
		findings []byte
	)
	err := row.Scan(&rep.ID, &rep.ReturnID, &rep.InventoryUnitID, &rep.InspectorID, &rep.InspectionDate, &rep.PreConditionGrade, &rep.PostConditionGrade, &rep.DamageLevel,
		&rep.DamageFound, &rep.DamageDescription, &rep.RepairEstimate, pq.Array(&rep.PhotoURLs), &findings, &rep.Status,
		&rep.ApprovedBy, &rep.ApprovedAt, &rep.RejectedBy, &rep.RejectedAt, &rep.RejectionNotes, pq.Array(&rep.Notes),
		&rep.CreatedOn, &rep.UpdatedOn, &rep.CreatedBy, &rep.UpdatedBy, &rep.DeletedOn, &rep.DeletedBy)
	if err != nil {
		return rep, err
	}
	if len(findings) > 0 {
		if err := json.Unmarshal(findings, &rep.Findings); err != nil {
			return rep, fmt.Errorf("decode findings for report %s: %w", rep.ID, err)
		}
	}
	return rep, nil
}

type inspectionRepository struct {
	db *sql.DB
}

func NewInspectionRepository(db *sql.DB) repository.InspectionRepository {
	return &inspectionRepository{db: db}
}

func (r *inspectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.InspectionReport, error) {
	query := `SELECT ` + inspectionColumns + ` FROM inspection_reports WHERE id = $1 AND deleted_on IS NULL`
	rep, err := scanInspection(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "inspection %s not found", id)
	}
	return domain.RestoreInspectionReport(rep)
}

func (r *inspectionRepository) ListByReturn(ctx context.Context, returnID uuid.UUID) ([]*domain.InspectionReport, error) {
	states, err := listInspections(ctx, conn(ctx, r.db), returnID)
	if err != nil {
		return nil, err
	}
	reports := make([]*domain.InspectionReport, 0, len(states))
	for _, s := range states {
		if s.DeletedOn != nil {
			continue
		}
		rep, err := domain.RestoreInspectionReport(s)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}
