package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReturnLine is one inventory unit's portion of a rental return. Fields are
// only changed through methods so quantity and fee bounds always hold.
type ReturnLine struct {
	id               uuid.UUID
	returnID         uuid.UUID
	inventoryUnitID  int32
	originalQuantity int32
	returnedQuantity int32
	stockReceived    int32
	conditionGrade   ConditionGrade
	damageLevel      DamageLevel
	lateFee          Money
	damageFee        Money
	cleaningFee      Money
	replacementFee   Money
	processed        bool
	processedAt      *time.Time
	processedBy      *int32
	notes            string
	meta             RecordMetadata
}

// ReturnLineState is the flat form of a ReturnLine used by storage and APIs.
type ReturnLineState struct {
	ID               uuid.UUID      `json:"id"`
	ReturnID         uuid.UUID      `json:"return_id"`
	InventoryUnitID  int32          `json:"inventory_unit_id"`
	OriginalQuantity int32          `json:"original_quantity"`
	ReturnedQuantity int32          `json:"returned_quantity"`
	StockReceived    int32          `json:"stock_received_quantity"`
	ConditionGrade   ConditionGrade `json:"condition_grade"`
	DamageLevel      DamageLevel    `json:"damage_level"`
	LateFee          Money          `json:"late_fee"`
	DamageFee        Money          `json:"damage_fee"`
	CleaningFee      Money          `json:"cleaning_fee"`
	ReplacementFee   Money          `json:"replacement_fee"`
	IsProcessed      bool           `json:"is_processed"`
	ProcessedAt      *time.Time     `json:"processed_at,omitempty"`
	ProcessedBy      *int32         `json:"processed_by,omitempty"`
	Notes            string         `json:"notes,omitempty"`
	RecordMetadata
}

func newReturnLine(returnID uuid.UUID, unitID, originalQuantity int32, grade ConditionGrade, notes string, by *int32, now time.Time) (*ReturnLine, error) {
	if originalQuantity <= 0 {
		return nil, NewInvalidQuantityError("quantity for unit %d must be positive, got %d", unitID, originalQuantity)
	}
	if !grade.IsValid() {
		return nil, NewValidationError("unknown condition grade %q for unit %d", string(grade), unitID)
	}
	return &ReturnLine{
		id:               uuid.New(),
		returnID:         returnID,
		inventoryUnitID:  unitID,
		originalQuantity: originalQuantity,
		conditionGrade:   grade,
		damageLevel:      DamageLevelNone,
		notes:            notes,
		meta:             newRecordMetadata(by, now),
	}, nil
}

// RestoreReturnLine rebuilds a line from storage, re-checking its invariants.
func RestoreReturnLine(s ReturnLineState) (*ReturnLine, error) {
	if s.OriginalQuantity <= 0 {
		return nil, NewInvalidQuantityError("line %s: original quantity must be positive", s.ID)
	}
	if s.ReturnedQuantity < 0 || s.ReturnedQuantity > s.OriginalQuantity {
		return nil, NewInvalidQuantityError("line %s: returned quantity %d outside [0, %d]", s.ID, s.ReturnedQuantity, s.OriginalQuantity)
	}
	if !s.ConditionGrade.IsValid() {
		return nil, NewValidationError("line %s: unknown condition grade %q", s.ID, string(s.ConditionGrade))
	}
	if !s.DamageLevel.IsValid() {
		return nil, NewValidationError("line %s: unknown damage level %q", s.ID, string(s.DamageLevel))
	}
	return &ReturnLine{
		id:               s.ID,
		returnID:         s.ReturnID,
		inventoryUnitID:  s.InventoryUnitID,
		originalQuantity: s.OriginalQuantity,
		returnedQuantity: s.ReturnedQuantity,
		stockReceived:    s.StockReceived,
		conditionGrade:   s.ConditionGrade,
		damageLevel:      s.DamageLevel,
		lateFee:          s.LateFee,
		damageFee:        s.DamageFee,
		cleaningFee:      s.CleaningFee,
		replacementFee:   s.ReplacementFee,
		processed:        s.IsProcessed,
		processedAt:      s.ProcessedAt,
		processedBy:      s.ProcessedBy,
		notes:            s.Notes,
		meta:             s.RecordMetadata,
	}, nil
}

func (l *ReturnLine) State() ReturnLineState {
	return ReturnLineState{
		ID:               l.id,
		ReturnID:         l.returnID,
		InventoryUnitID:  l.inventoryUnitID,
		OriginalQuantity: l.originalQuantity,
		ReturnedQuantity: l.returnedQuantity,
		StockReceived:    l.stockReceived,
		ConditionGrade:   l.conditionGrade,
		DamageLevel:      l.damageLevel,
		LateFee:          l.lateFee,
		DamageFee:        l.damageFee,
		CleaningFee:      l.cleaningFee,
		ReplacementFee:   l.replacementFee,
		IsProcessed:      l.processed,
		ProcessedAt:      l.processedAt,
		ProcessedBy:      l.processedBy,
		Notes:            l.notes,
		RecordMetadata:   l.meta,
	}
}

func (l *ReturnLine) ID() uuid.UUID                  { return l.id }
func (l *ReturnLine) ReturnID() uuid.UUID            { return l.returnID }
func (l *ReturnLine) InventoryUnitID() int32         { return l.inventoryUnitID }
func (l *ReturnLine) OriginalQuantity() int32        { return l.originalQuantity }
func (l *ReturnLine) ReturnedQuantity() int32        { return l.returnedQuantity }
func (l *ReturnLine) OutstandingQuantity() int32     { return l.originalQuantity - l.returnedQuantity }
func (l *ReturnLine) ConditionGrade() ConditionGrade { return l.conditionGrade }
func (l *ReturnLine) DamageLevel() DamageLevel       { return l.damageLevel }
func (l *ReturnLine) LateFee() Money                 { return l.lateFee }
func (l *ReturnLine) DamageFee() Money               { return l.damageFee }
func (l *ReturnLine) CleaningFee() Money             { return l.cleaningFee }
func (l *ReturnLine) ReplacementFee() Money          { return l.replacementFee }
func (l *ReturnLine) IsProcessed() bool              { return l.processed }
func (l *ReturnLine) ProcessedAt() *time.Time        { return l.processedAt }
func (l *ReturnLine) Notes() string                  { return l.notes }

// PendingStockQuantity is the returned quantity not yet received into stock.
func (l *ReturnLine) PendingStockQuantity() int32 {
	return l.returnedQuantity - l.stockReceived
}

// TotalFees is the sum of the four fee fields.
func (l *ReturnLine) TotalFees() Money {
	return l.lateFee.Add(l.damageFee).Add(l.cleaningFee).Add(l.replacementFee)
}

// HasDamage reports whether inspection flagged the line as damaged.
func (l *ReturnLine) HasDamage() bool {
	return l.damageLevel != DamageLevelNone
}

// ValidateReturnedQuantity checks a proposed quantity without applying it.
func (l *ReturnLine) ValidateReturnedQuantity(q int32) error {
	if l.processed {
		return NewLineAlreadyProcessedError("line %s was already processed", l.id)
	}
	if q < 0 || q > l.originalQuantity {
		return NewInvalidQuantityError("returned quantity %d for line %s outside [0, %d]", q, l.id, l.originalQuantity)
	}
	return nil
}

// receive records the returned quantity and, optionally, a new grade. The
// line becomes processed once its returned quantity is positive; after that
// it no longer accepts receive updates.
func (l *ReturnLine) receive(q int32, grade *ConditionGrade, notes string, by *int32, now time.Time) error {
	if err := l.ValidateReturnedQuantity(q); err != nil {
		return err
	}
	if grade != nil && !grade.IsValid() {
		return NewValidationError("unknown condition grade %q", string(*grade))
	}
	l.returnedQuantity = q
	if grade != nil {
		l.conditionGrade = *grade
	}
	if notes != "" {
		l.notes = notes
	}
	if q > 0 {
		l.processed = true
		l.processedAt = &now
		l.processedBy = by
	}
	l.meta.touch(by, now)
	return nil
}

// setGrade sets the condition grade found at inspection.
func (l *ReturnLine) setGrade(grade ConditionGrade, by *int32, now time.Time) error {
	if !grade.IsValid() {
		return NewValidationError("unknown condition grade %q", string(grade))
	}
	l.conditionGrade = grade
	l.meta.touch(by, now)
	return nil
}

// markDamage raises the line's damage level; it never lowers it.
func (l *ReturnLine) markDamage(level DamageLevel) error {
	if !level.IsValid() {
		return NewValidationError("unknown damage level %q", string(level))
	}
	if damageRank(level) > damageRank(l.damageLevel) {
		l.damageLevel = level
	}
	return nil
}

func damageRank(l DamageLevel) int {
	switch l {
	case DamageLevelNone:
		return 0
	case DamageLevelMinor:
		return 1
	case DamageLevelModerate:
		return 2
	case DamageLevelMajor:
		return 3
	case DamageLevelTotalLoss:
		return 4
	}
	return -1
}

func (l *ReturnLine) setLateFee(m Money)        { l.lateFee = m }
func (l *ReturnLine) setDamageFee(m Money)      { l.damageFee = m }
func (l *ReturnLine) setCleaningFee(m Money)    { l.cleaningFee = m }
func (l *ReturnLine) setReplacementFee(m Money) { l.replacementFee = m }

// markStockReceived records that qty more units went back into stock.
func (l *ReturnLine) markStockReceived(qty int32) error {
	if qty < 0 || l.stockReceived+qty > l.returnedQuantity {
		return NewInvalidQuantityError("cannot receive %d more units into stock for line %s", qty, l.id)
	}
	l.stockReceived += qty
	return nil
}
