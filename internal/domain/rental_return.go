package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ReturnStatus string

const (
	ReturnStatusInitiated          ReturnStatus = "INITIATED"
	ReturnStatusInInspection       ReturnStatus = "IN_INSPECTION"
	ReturnStatusPartiallyCompleted ReturnStatus = "PARTIALLY_COMPLETED"
	ReturnStatusCompleted          ReturnStatus = "COMPLETED"
	ReturnStatusCancelled          ReturnStatus = "CANCELLED"
)

func ParseReturnStatus(s string) (ReturnStatus, error) {
	st := ReturnStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case ReturnStatusInitiated, ReturnStatusInInspection, ReturnStatusPartiallyCompleted,
		ReturnStatusCompleted, ReturnStatusCancelled:
		return st, nil
	}
	return "", NewValidationError("unknown return status %q", s)
}

// AllowedTransitions lists the statuses reachable from s.
func (s ReturnStatus) AllowedTransitions() []ReturnStatus {
	switch s {
	case ReturnStatusInitiated:
		return []ReturnStatus{ReturnStatusInInspection, ReturnStatusCancelled}
	case ReturnStatusInInspection:
		return []ReturnStatus{ReturnStatusPartiallyCompleted, ReturnStatusCompleted, ReturnStatusCancelled}
	case ReturnStatusPartiallyCompleted:
		return []ReturnStatus{ReturnStatusInInspection, ReturnStatusCompleted, ReturnStatusCancelled}
	case ReturnStatusCompleted, ReturnStatusCancelled:
		return nil
	}
	return nil
}

func (s ReturnStatus) CanTransitionTo(target ReturnStatus) bool {
	for _, t := range s.AllowedTransitions() {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s ReturnStatus) IsTerminal() bool {
	return s == ReturnStatusCompleted || s == ReturnStatusCancelled
}

type ReturnType string

const (
	ReturnTypeFull    ReturnType = "FULL"
	ReturnTypePartial ReturnType = "PARTIAL"
)

func ParseReturnType(s string) (ReturnType, error) {
	t := ReturnType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case ReturnTypeFull, ReturnTypePartial:
		return t, nil
	}
	return "", NewValidationError("unknown return type %q", s)
}

// RentalReturn is the aggregate root of one return event against a rental
// transaction. It owns its lines and inspection reports.
type RentalReturn struct {
	id                  uuid.UUID
	transactionID       int32
	returnDate          time.Time
	expectedReturnDate  *time.Time
	returnType          ReturnType
	status              ReturnStatus
	locationID          *int32
	processedBy         *int32
	notes               string
	totalLateFee        Money
	totalDamageFee      Money
	totalCleaningFee    Money
	totalReplacementFee Money
	depositReleased     bool
	depositAmount       *Money
	depositReleaseDate  *time.Time
	finalizedAt         *time.Time
	finalizedBy         *int32
	cancellationReason  string
	lines               []*ReturnLine
	inspections         []*InspectionReport
	meta                RecordMetadata
}

type RentalReturnState struct {
	ID                   uuid.UUID               `json:"id"`
	RentalTransactionID  int32                   `json:"rental_transaction_id"`
	ReturnDate           time.Time               `json:"return_date"`
	ExpectedReturnDate   *time.Time              `json:"expected_return_date,omitempty"`
	ReturnType           ReturnType              `json:"return_type"`
	ReturnStatus         ReturnStatus            `json:"return_status"`
	ReturnLocationID     *int32                  `json:"return_location_id,omitempty"`
	ProcessedBy          *int32                  `json:"processed_by,omitempty"`
	Notes                string                  `json:"notes,omitempty"`
	TotalLateFee         Money                   `json:"total_late_fee"`
	TotalDamageFee       Money                   `json:"total_damage_fee"`
	TotalCleaningFee     Money                   `json:"total_cleaning_fee"`
	TotalReplacementFee  Money                   `json:"total_replacement_fee"`
	DepositReleased      bool                    `json:"deposit_released"`
	DepositReleaseAmount *Money                  `json:"deposit_release_amount,omitempty"`
	DepositReleaseDate   *time.Time              `json:"deposit_release_date,omitempty"`
	FinalizedAt          *time.Time              `json:"finalized_at,omitempty"`
	FinalizedBy          *int32                  `json:"finalized_by,omitempty"`
	CancellationReason   string                  `json:"cancellation_reason,omitempty"`
	Lines                []ReturnLineState       `json:"lines"`
	Inspections          []InspectionReportState `json:"inspections"`
	RecordMetadata
}

// NewReturnItem is one requested unit of a new return.
type NewReturnItem struct {
	InventoryUnitID int32
	Quantity        int32
	ConditionGrade  ConditionGrade
	Notes           string
}

type NewReturnParams struct {
	TransactionID      int32
	ReturnDate         time.Time
	ExpectedReturnDate *time.Time
	ReturnType         ReturnType
	LocationID         *int32
	ProcessedBy        *int32
	Notes              string
	Items              []NewReturnItem
}

// NewRentalReturn builds an INITIATED return with one line per item.
func NewRentalReturn(p NewReturnParams, now time.Time) (*RentalReturn, error) {
	if p.TransactionID <= 0 {
		return nil, NewValidationError("rental transaction id is required")
	}
	if p.ReturnDate.IsZero() {
		return nil, NewValidationError("return date is required")
	}
	if len(p.Items) == 0 {
		return nil, NewValidationError("at least one item is required")
	}
	rt := p.ReturnType
	if rt == "" {
		rt = ReturnTypePartial
	}
	if rt != ReturnTypeFull && rt != ReturnTypePartial {
		return nil, NewValidationError("unknown return type %q", string(rt))
	}

	r := &RentalReturn{
		id:                 uuid.New(),
		transactionID:      p.TransactionID,
		returnDate:         p.ReturnDate,
		expectedReturnDate: p.ExpectedReturnDate,
		returnType:         rt,
		status:             ReturnStatusInitiated,
		locationID:         p.LocationID,
		processedBy:        p.ProcessedBy,
		notes:              p.Notes,
		meta:               newRecordMetadata(p.ProcessedBy, now),
	}
	seen := make(map[int32]bool, len(p.Items))
	for _, item := range p.Items {
		if seen[item.InventoryUnitID] {
			return nil, NewValidationError("inventory unit %d listed more than once", item.InventoryUnitID)
		}
		seen[item.InventoryUnitID] = true
		line, err := newReturnLine(r.id, item.InventoryUnitID, item.Quantity, item.ConditionGrade, item.Notes, p.ProcessedBy, now)
		if err != nil {
			return nil, err
		}
		r.lines = append(r.lines, line)
	}
	return r, nil
}

// RestoreRentalReturn rebuilds an aggregate from storage.
func RestoreRentalReturn(s RentalReturnState) (*RentalReturn, error) {
	if _, err := ParseReturnStatus(string(s.ReturnStatus)); err != nil {
		return nil, err
	}
	if _, err := ParseReturnType(string(s.ReturnType)); err != nil {
		return nil, err
	}
	r := &RentalReturn{
		id:                  s.ID,
		transactionID:       s.RentalTransactionID,
		returnDate:          s.ReturnDate,
		expectedReturnDate:  s.ExpectedReturnDate,
		returnType:          s.ReturnType,
		status:              s.ReturnStatus,
		locationID:          s.ReturnLocationID,
		processedBy:         s.ProcessedBy,
		notes:               s.Notes,
		totalLateFee:        s.TotalLateFee,
		totalDamageFee:      s.TotalDamageFee,
		totalCleaningFee:    s.TotalCleaningFee,
		totalReplacementFee: s.TotalReplacementFee,
		depositReleased:     s.DepositReleased,
		depositAmount:       s.DepositReleaseAmount,
		depositReleaseDate:  s.DepositReleaseDate,
		finalizedAt:         s.FinalizedAt,
		finalizedBy:         s.FinalizedBy,
		cancellationReason:  s.CancellationReason,
		meta:                s.RecordMetadata,
	}
	for _, ls := range s.Lines {
		line, err := RestoreReturnLine(ls)
		if err != nil {
			return nil, err
		}
		r.lines = append(r.lines, line)
	}
	for _, is := range s.Inspections {
		rep, err := RestoreInspectionReport(is)
		if err != nil {
			return nil, err
		}
		r.inspections = append(r.inspections, rep)
	}
	return r, nil
}

func (r *RentalReturn) State() RentalReturnState {
	s := RentalReturnState{
		ID:                   r.id,
		RentalTransactionID:  r.transactionID,
		ReturnDate:           r.returnDate,
		ExpectedReturnDate:   r.expectedReturnDate,
		ReturnType:           r.returnType,
		ReturnStatus:         r.status,
		ReturnLocationID:     r.locationID,
		ProcessedBy:          r.processedBy,
		Notes:                r.notes,
		TotalLateFee:         r.totalLateFee,
		TotalDamageFee:       r.totalDamageFee,
		TotalCleaningFee:     r.totalCleaningFee,
		TotalReplacementFee:  r.totalReplacementFee,
		DepositReleased:      r.depositReleased,
		DepositReleaseAmount: r.depositAmount,
		DepositReleaseDate:   r.depositReleaseDate,
		FinalizedAt:          r.finalizedAt,
		FinalizedBy:          r.finalizedBy,
		CancellationReason:   r.cancellationReason,
		Lines:                make([]ReturnLineState, 0, len(r.lines)),
		Inspections:          make([]InspectionReportState, 0, len(r.inspections)),
		RecordMetadata:       r.meta,
	}
	for _, l := range r.lines {
		s.Lines = append(s.Lines, l.State())
	}
	for _, rep := range r.inspections {
		s.Inspections = append(s.Inspections, rep.State())
	}
	return s
}

func (r *RentalReturn) ID() uuid.UUID                  { return r.id }
func (r *RentalReturn) TransactionID() int32           { return r.transactionID }
func (r *RentalReturn) ReturnDate() time.Time          { return r.returnDate }
func (r *RentalReturn) ExpectedReturnDate() *time.Time { return r.expectedReturnDate }
func (r *RentalReturn) ReturnType() ReturnType         { return r.returnType }
func (r *RentalReturn) Status() ReturnStatus           { return r.status }
func (r *RentalReturn) LocationID() *int32             { return r.locationID }
func (r *RentalReturn) ProcessedBy() *int32            { return r.processedBy }
func (r *RentalReturn) Notes() string                  { return r.notes }
func (r *RentalReturn) TotalLateFee() Money            { return r.totalLateFee }
func (r *RentalReturn) TotalDamageFee() Money          { return r.totalDamageFee }
func (r *RentalReturn) TotalCleaningFee() Money        { return r.totalCleaningFee }
func (r *RentalReturn) TotalReplacementFee() Money     { return r.totalReplacementFee }
func (r *RentalReturn) DepositReleased() bool          { return r.depositReleased }
func (r *RentalReturn) DepositReleaseAmount() *Money   { return r.depositAmount }
func (r *RentalReturn) DepositReleaseDate() *time.Time { return r.depositReleaseDate }
func (r *RentalReturn) FinalizedAt() *time.Time        { return r.finalizedAt }
func (r *RentalReturn) IsFinalized() bool              { return r.finalizedAt != nil }
func (r *RentalReturn) IsDeleted() bool                { return r.meta.IsDeleted() }
func (r *RentalReturn) CancellationReason() string     { return r.cancellationReason }
func (r *RentalReturn) Metadata() RecordMetadata       { return r.meta }

// Lines returns the lines in creation order. Callers read them; changes go
// through the aggregate.
func (r *RentalReturn) Lines() []*ReturnLine {
	return append([]*ReturnLine(nil), r.lines...)
}

func (r *RentalReturn) Inspections() []*InspectionReport {
	return append([]*InspectionReport(nil), r.inspections...)
}

func (r *RentalReturn) Line(id uuid.UUID) (*ReturnLine, error) {
	for _, l := range r.lines {
		if l.id == id {
			return l, nil
		}
	}
	return nil, NewNotFoundError("line %s does not belong to return %s", id, r.id)
}

func (r *RentalReturn) Inspection(id uuid.UUID) (*InspectionReport, error) {
	for _, rep := range r.inspections {
		if rep.id == id {
			return rep, nil
		}
	}
	return nil, NewNotFoundError("inspection %s does not belong to return %s", id, r.id)
}

// TotalFees sums the four fee totals.
func (r *RentalReturn) TotalFees() Money {
	return r.totalLateFee.Add(r.totalDamageFee).Add(r.totalCleaningFee).Add(r.totalReplacementFee)
}

func (r *RentalReturn) TotalOriginalQuantity() int32 {
	var n int32
	for _, l := range r.lines {
		n += l.originalQuantity
	}
	return n
}

func (r *RentalReturn) TotalReturnedQuantity() int32 {
	var n int32
	for _, l := range r.lines {
		n += l.returnedQuantity
	}
	return n
}

// CommittedQuantities is how much of each unit this return holds against
// the rental: nothing once cancelled or deleted, the returned quantity once
// finalized, and the full requested quantity while still open.
func (r *RentalReturn) CommittedQuantities() map[int32]int32 {
	out := make(map[int32]int32, len(r.lines))
	if r.status == ReturnStatusCancelled || r.IsDeleted() {
		return out
	}
	for _, l := range r.lines {
		if r.IsFinalized() {
			out[l.inventoryUnitID] += l.returnedQuantity
		} else {
			out[l.inventoryUnitID] += l.originalQuantity
		}
	}
	return out
}

// ReturnedQuantities sums returned quantity per unit, ignoring cancelled
// and deleted returns.
func (r *RentalReturn) ReturnedQuantities() map[int32]int32 {
	out := make(map[int32]int32, len(r.lines))
	if r.status == ReturnStatusCancelled || r.IsDeleted() {
		return out
	}
	for _, l := range r.lines {
		out[l.inventoryUnitID] += l.returnedQuantity
	}
	return out
}

// UpdateStatus applies one state-machine transition.
func (r *RentalReturn) UpdateStatus(target ReturnStatus, now time.Time) error {
	if !r.status.CanTransitionTo(target) {
		return NewInvalidStateError("cannot move return %s from %s to %s", r.id, r.status, target)
	}
	r.status = target
	r.meta.touch(nil, now)
	return nil
}

// moveTo walks to target through IN_INSPECTION when the direct move is not
// in the table; a return already at target is left alone.
func (r *RentalReturn) moveTo(target ReturnStatus, now time.Time) error {
	if r.status == target {
		return nil
	}
	if r.status == ReturnStatusInitiated && target != ReturnStatusCancelled && target != ReturnStatusInInspection {
		if err := r.UpdateStatus(ReturnStatusInInspection, now); err != nil {
			return err
		}
	}
	return r.UpdateStatus(target, now)
}

// SetReturnType overrides the type recorded at creation.
func (r *RentalReturn) SetReturnType(t ReturnType) error {
	if t != ReturnTypeFull && t != ReturnTypePartial {
		return NewValidationError("unknown return type %q", string(t))
	}
	r.returnType = t
	return nil
}

// ensureOpen rejects changes to a return that is closed or whose deposit
// went back to the customer.
func (r *RentalReturn) ensureOpen() error {
	switch {
	case r.IsDeleted():
		return NewInvalidStateError("return %s was deleted", r.id)
	case r.status == ReturnStatusCancelled:
		return NewInvalidStateError("return %s is cancelled", r.id)
	case r.IsFinalized():
		return NewInvalidStateError("return %s is finalized", r.id)
	case r.depositReleased:
		return NewInvalidStateError("deposit for return %s was already released", r.id)
	}
	return nil
}

// ReceiveLine records the returned quantity for one line.
func (r *RentalReturn) ReceiveLine(lineID uuid.UUID, qty int32, grade *ConditionGrade, notes string, by *int32, now time.Time) error {
	if err := r.ensureOpen(); err != nil {
		return err
	}
	if r.status == ReturnStatusCompleted {
		return NewInvalidStateError("return %s is already completed", r.id)
	}
	line, err := r.Line(lineID)
	if err != nil {
		return err
	}
	if err := line.receive(qty, grade, notes, by, now); err != nil {
		return err
	}
	r.meta.touch(by, now)
	return nil
}

// MarkStockReceived records that qty units of a line went back into stock.
func (r *RentalReturn) MarkStockReceived(lineID uuid.UUID, qty int32) error {
	line, err := r.Line(lineID)
	if err != nil {
		return err
	}
	return line.markStockReceived(qty)
}

// CompletionPercentage is returned over requested quantity, 0–100.
func (r *RentalReturn) CompletionPercentage() float64 {
	total := r.TotalOriginalQuantity()
	if total == 0 {
		return 0
	}
	return float64(r.TotalReturnedQuantity()) * 100 / float64(total)
}

// AdvanceAfterReceipt derives the status from returned quantities:
// COMPLETED when everything requested is back, PARTIALLY_COMPLETED when
// something is, unchanged otherwise.
func (r *RentalReturn) AdvanceAfterReceipt(now time.Time) error {
	returned := r.TotalReturnedQuantity()
	switch {
	case returned == 0:
		return nil
	case returned == r.TotalOriginalQuantity():
		return r.moveTo(ReturnStatusCompleted, now)
	default:
		return r.moveTo(ReturnStatusPartiallyCompleted, now)
	}
}

// RecalculateTotals rebuilds the four fee totals from the lines.
func (r *RentalReturn) RecalculateTotals() {
	var late, damage, cleaning, replacement Money
	for _, l := range r.lines {
		late = late.Add(l.lateFee)
		damage = damage.Add(l.damageFee)
		cleaning = cleaning.Add(l.cleaningFee)
		replacement = replacement.Add(l.replacementFee)
	}
	r.totalLateFee = late
	r.totalDamageFee = damage
	r.totalCleaningFee = cleaning
	r.totalReplacementFee = replacement
}

// HasApprovedInspection reports whether any report on the return is approved.
func (r *RentalReturn) HasApprovedInspection() bool {
	for _, rep := range r.inspections {
		if rep.IsApproved() {
			return true
		}
	}
	return false
}

// CompleteInspection approves or rejects one of the return's reports.
func (r *RentalReturn) CompleteInspection(reportID uuid.UUID, approve bool, by int32, notes string, now time.Time) (*InspectionReport, error) {
	if r.IsDeleted() {
		return nil, NewInvalidStateError("return %s was deleted", r.id)
	}
	rep, err := r.Inspection(reportID)
	if err != nil {
		return nil, err
	}
	if err := rep.complete(approve, by, notes, now); err != nil {
		return nil, err
	}
	r.meta.touch(&by, now)
	return rep, nil
}

// Cancel moves the return to CANCELLED.
func (r *RentalReturn) Cancel(reason string, by *int32, now time.Time) error {
	if err := r.ensureOpen(); err != nil {
		return err
	}
	if strings.TrimSpace(reason) == "" {
		return NewValidationError("cancellation reason is required")
	}
	for _, l := range r.lines {
		if l.stockReceived > 0 {
			return NewInvalidStateError("return %s already put %d of unit %d back into stock", r.id, l.stockReceived, l.inventoryUnitID)
		}
	}
	if err := r.UpdateStatus(ReturnStatusCancelled, now); err != nil {
		return err
	}
	r.cancellationReason = reason
	r.meta.touch(by, now)
	return nil
}

// SoftDelete flags the return deleted. Only cancelled returns, or
// initiated ones with nothing received, may be deleted.
func (r *RentalReturn) SoftDelete(by *int32, now time.Time) error {
	if r.IsDeleted() {
		return NewNotFoundError("return %s not found", r.id)
	}
	deletable := r.status == ReturnStatusCancelled ||
		(r.status == ReturnStatusInitiated && r.TotalReturnedQuantity() == 0)
	if !deletable {
		return NewInvalidStateError("return %s in status %s cannot be deleted", r.id, r.status)
	}
	r.meta.markDeleted(by, now)
	for _, l := range r.lines {
		l.meta.markDeleted(by, now)
	}
	for _, rep := range r.inspections {
		rep.meta.markDeleted(by, now)
	}
	return nil
}
