package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rentalreturn-backend/internal/domain"
)

// ReturnService drives a rental return from initiation to finalization.
type ReturnService interface {
	InitiateReturn(ctx context.Context, req InitiateReturnRequest) (*domain.RentalReturn, error)
	GetReturn(ctx context.Context, id uuid.UUID) (*domain.RentalReturn, error)
	ListReturns(ctx context.Context, filter domain.ReturnFilter, page, pageSize int32) ([]*domain.RentalReturn, int32, error)
	CancelReturn(ctx context.Context, id uuid.UUID, reason string, cancelledBy *int32) (*domain.RentalReturn, error)
	DeleteReturn(ctx context.Context, id uuid.UUID, deletedBy *int32) error

	ProcessPartialReturn(ctx context.Context, req ProcessReturnRequest) (*ProcessReturnResult, error)
	// ValidatePartialReturn previews ProcessPartialReturn without changing anything.
	ValidatePartialReturn(ctx context.Context, returnID uuid.UUID, updates []LineUpdate) (*PartialReturnValidation, error)

	CalculateLateFee(ctx context.Context, req LateFeeRequest) (*domain.LateFeeAssessment, error)
	ProjectLateFee(ctx context.Context, req LateFeeProjectionRequest) (*domain.LateFeeAssessment, error)

	FinalizeReturn(ctx context.Context, req FinalizeReturnRequest) (*FinalizeReturnResult, error)
	PreviewFinalization(ctx context.Context, returnID uuid.UUID) (*domain.FinalizationPlan, error)
}

// InspectionService records damage assessments and their approval.
type InspectionService interface {
	AssessDamage(ctx context.Context, req AssessDamageRequest) (*domain.InspectionReport, error)
	CompleteInspection(ctx context.Context, req CompleteInspectionRequest) (*domain.InspectionReport, error)
	AppendInspectionNote(ctx context.Context, reportID uuid.UUID, note string, by *int32) (*domain.InspectionReport, error)
	GetInspection(ctx context.Context, reportID uuid.UUID) (*domain.InspectionReport, error)
	ListInspections(ctx context.Context, returnID uuid.UUID) ([]*domain.InspectionReport, error)
	RequestPhotoUpload(ctx context.Context, returnID uuid.UUID, filename, contentType string) (*PhotoUpload, error)
}

// DepositService reconciles the security deposit against return fees.
type DepositService interface {
	CalculateDeposit(ctx context.Context, returnID uuid.UUID, override *domain.Money) (*domain.DepositCalculation, error)
	ReleaseDeposit(ctx context.Context, req ReleaseDepositRequest) (*domain.DepositRelease, error)
	ReverseDepositRelease(ctx context.Context, req ReverseDepositRequest) (*domain.DepositAuditEntry, error)
	ListDepositAudit(ctx context.Context, returnID uuid.UUID) ([]domain.DepositAuditEntry, error)
}

// PaymentGateway refunds deposits to customers.
type PaymentGateway interface {
	RefundDeposit(ctx context.Context, customerID int32, amount domain.Money, reference string) (domain.PaymentResult, error)
}

type ReturnItem struct {
	InventoryUnitID int32  `json:"inventory_unit_id"`
	Quantity        int32  `json:"quantity"`
	Notes           string `json:"notes,omitempty"`
}

type InitiateReturnRequest struct {
	TransactionID int32     `json:"rental_transaction_id"`
	ReturnDate    time.Time `json:"return_date"`
	// ExpectedReturnDate defaults to the rental's agreed end date.
	ExpectedReturnDate *time.Time        `json:"expected_return_date,omitempty"`
	ReturnType         domain.ReturnType `json:"return_type,omitempty"`
	LocationID         *int32            `json:"return_location_id,omitempty"`
	ProcessedBy        *int32            `json:"processed_by,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	Items              []ReturnItem      `json:"items"`
}

type LineUpdate struct {
	LineID           uuid.UUID              `json:"line_id"`
	ReturnedQuantity int32                  `json:"returned_quantity"`
	ConditionGrade   *domain.ConditionGrade `json:"condition_grade,omitempty"`
	Notes            string                 `json:"notes,omitempty"`
}

type ProcessReturnRequest struct {
	ReturnID         uuid.UUID    `json:"return_id"`
	Updates          []LineUpdate `json:"updates"`
	ProcessInventory bool         `json:"process_inventory"`
	ProcessedBy      *int32       `json:"processed_by,omitempty"`
}

type ProcessReturnResult struct {
	Return               *domain.RentalReturn `json:"-"`
	CompletionPercentage float64              `json:"completion_percentage"`
	InventoryChanges     []InventoryOutcome   `json:"inventory_changes"`
}

// LineValidation is the dry-run verdict for one proposed line update.
type LineValidation struct {
	LineID           uuid.UUID `json:"line_id"`
	InventoryUnitID  int32     `json:"inventory_unit_id"`
	OriginalQuantity int32     `json:"original_quantity"`
	ProposedQuantity int32     `json:"proposed_quantity"`
	Errors           []string  `json:"errors"`
	Warnings         []string  `json:"warnings"`
}

type PartialReturnValidation struct {
	Valid                bool                `json:"valid"`
	Errors               []string            `json:"errors"`
	Lines                []LineValidation    `json:"lines"`
	TotalOriginal        int32               `json:"total_original_quantity"`
	TotalReturned        int32               `json:"total_returned_quantity"`
	CompletionPercentage float64             `json:"completion_percentage"`
	ResultingStatus      domain.ReturnStatus `json:"resulting_status"`
}

type LateFeeRequest struct {
	ReturnID          uuid.UUID     `json:"return_id"`
	DailyRateOverride *domain.Money `json:"daily_rate,omitempty"`
	ReferenceRate     *domain.Money `json:"reference_rate,omitempty"`
	CalculatedBy      *int32        `json:"calculated_by,omitempty"`
}

type LateFeeProjectionRequest struct {
	ReturnID            uuid.UUID     `json:"return_id"`
	ProjectedReturnDate time.Time     `json:"projected_return_date"`
	DailyRateOverride   *domain.Money `json:"daily_rate,omitempty"`
	ReferenceRate       *domain.Money `json:"reference_rate,omitempty"`
}

type FinalizeReturnRequest struct {
	ReturnID    uuid.UUID `json:"return_id"`
	Force       bool      `json:"force_finalize"`
	FinalizedBy *int32    `json:"finalized_by,omitempty"`
}

// InventoryOutcome reports one best-effort inventory update.
type InventoryOutcome struct {
	LineID          uuid.UUID              `json:"line_id"`
	InventoryUnitID int32                  `json:"inventory_unit_id"`
	Status          domain.InventoryStatus `json:"status"`
	StockQuantity   int32                  `json:"stock_quantity"`
	Succeeded       bool                   `json:"succeeded"`
	Error           string                 `json:"error,omitempty"`
}

type FinalizeReturnResult struct {
	Return               *domain.RentalReturn    `json:"-"`
	Plan                 domain.FinalizationPlan `json:"plan"`
	InventoryOutcomes    []InventoryOutcome      `json:"inventory_outcomes"`
	TransactionCompleted bool                    `json:"transaction_completed"`
}

type LineAssessmentRequest struct {
	LineID            uuid.UUID              `json:"line_id"`
	ConditionGrade    *domain.ConditionGrade `json:"condition_grade,omitempty"`
	DamageDescription string                 `json:"damage_description,omitempty"`
	// Photos are storage keys from RequestPhotoUpload or absolute URLs.
	Photos              []string      `json:"photos,omitempty"`
	EstimatedRepairCost *domain.Money `json:"estimated_repair_cost,omitempty"`
	CleaningRequired    bool          `json:"cleaning_required"`
	CleaningFee         *domain.Money `json:"cleaning_fee,omitempty"`
	ReplacementRequired bool          `json:"replacement_required"`
	ReplacementFee      *domain.Money `json:"replacement_fee,omitempty"`
}

type AssessDamageRequest struct {
	ReturnID       uuid.UUID               `json:"return_id"`
	InspectorID    int32                   `json:"inspector_id"`
	InspectionDate *time.Time              `json:"inspection_date,omitempty"`
	Assessments    []LineAssessmentRequest `json:"assessments"`
}

type CompleteInspectionRequest struct {
	ReportID uuid.UUID `json:"report_id"`
	Approve  bool      `json:"approve"`
	By       int32     `json:"completed_by"`
	Notes    string    `json:"notes,omitempty"`
}

type PhotoUpload struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ReleaseDepositRequest struct {
	ReturnID       uuid.UUID     `json:"return_id"`
	OverrideAmount *domain.Money `json:"release_amount,omitempty"`
	ReleasedBy     *int32        `json:"released_by,omitempty"`
	Notes          string        `json:"notes,omitempty"`
}

type ReverseDepositRequest struct {
	ReturnID   uuid.UUID `json:"return_id"`
	Reason     string    `json:"reason"`
	ReversedBy *int32    `json:"reversed_by,omitempty"`
}
