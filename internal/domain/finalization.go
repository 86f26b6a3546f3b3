package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FinalizationCheck lists blocking errors and non-blocking warnings.
type FinalizationCheck struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (c FinalizationCheck) OK() bool { return len(c.Errors) == 0 }

// ValidateFinalization inspects r without changing it.
func ValidateFinalization(r *RentalReturn) FinalizationCheck {
	c := FinalizationCheck{Errors: []string{}, Warnings: []string{}}
	switch {
	case r.IsDeleted():
		c.Errors = append(c.Errors, "return was deleted")
	case r.status == ReturnStatusCancelled:
		c.Errors = append(c.Errors, "return is cancelled")
	case r.IsFinalized():
		c.Errors = append(c.Errors, "return is already finalized")
	}
	for _, l := range r.lines {
		if l.returnedQuantity > 0 && !l.processed {
			c.Errors = append(c.Errors, fmt.Sprintf("line %s (unit %d) has %d returned but is not processed", l.id, l.inventoryUnitID, l.returnedQuantity))
		}
		if l.returnedQuantity > 0 && !l.conditionGrade.IsValid() {
			c.Warnings = append(c.Warnings, fmt.Sprintf("line %s (unit %d) has no condition grade", l.id, l.inventoryUnitID))
		}
	}
	var damage Money
	for _, l := range r.lines {
		damage = damage.Add(l.damageFee)
	}
	if damage.IsPositive() && !r.HasApprovedInspection() {
		c.Warnings = append(c.Warnings, fmt.Sprintf("damage fees of %s have no approved inspection", damage))
	}
	if r.TotalReturnedQuantity() == 0 {
		c.Warnings = append(c.Warnings, "no units have been returned")
	}
	return c
}

// FinalInventoryStatus picks a returned unit's disposition. Fees take
// priority over the condition grade: replacement, then damage above the
// threshold, then cleaning.
func FinalInventoryStatus(l *ReturnLine, damageThreshold Money) (InventoryStatus, error) {
	switch {
	case l.replacementFee.IsPositive():
		return InventoryStatusDamaged, nil
	case l.damageFee.GreaterThan(damageThreshold):
		return InventoryStatusMaintenanceRequired, nil
	case l.cleaningFee.IsPositive():
		return InventoryStatusCleaningRequired, nil
	}
	return l.conditionGrade.InventoryStatus()
}

// InventoryChange is the disposition planned for one returned line.
type InventoryChange struct {
	LineID           uuid.UUID       `json:"line_id"`
	InventoryUnitID  int32           `json:"inventory_unit_id"`
	ReturnedQuantity int32           `json:"returned_quantity"`
	StockQuantity    int32           `json:"stock_quantity"`
	ConditionGrade   ConditionGrade  `json:"condition_grade"`
	Status           InventoryStatus `json:"status"`
}

type FeeTotals struct {
	LateFee        Money `json:"total_late_fee"`
	DamageFee      Money `json:"total_damage_fee"`
	CleaningFee    Money `json:"total_cleaning_fee"`
	ReplacementFee Money `json:"total_replacement_fee"`
	Total          Money `json:"total_fees"`
}

type FinalizationPlan struct {
	Check            FinalizationCheck `json:"validation"`
	Totals           FeeTotals         `json:"totals"`
	InventoryChanges []InventoryChange `json:"inventory_changes"`
}

// PlanFinalization computes what finalizing r would do, without doing it.
func PlanFinalization(r *RentalReturn, damageThreshold Money) (FinalizationPlan, error) {
	plan := FinalizationPlan{
		Check:            ValidateFinalization(r),
		InventoryChanges: []InventoryChange{},
	}
	for _, l := range r.lines {
		plan.Totals.LateFee = plan.Totals.LateFee.Add(l.lateFee)
		plan.Totals.DamageFee = plan.Totals.DamageFee.Add(l.damageFee)
		plan.Totals.CleaningFee = plan.Totals.CleaningFee.Add(l.cleaningFee)
		plan.Totals.ReplacementFee = plan.Totals.ReplacementFee.Add(l.replacementFee)
		if l.returnedQuantity <= 0 {
			continue
		}
		status, err := FinalInventoryStatus(l, damageThreshold)
		if err != nil {
			return FinalizationPlan{}, err
		}
		plan.InventoryChanges = append(plan.InventoryChanges, InventoryChange{
			LineID:           l.id,
			InventoryUnitID:  l.inventoryUnitID,
			ReturnedQuantity: l.returnedQuantity,
			StockQuantity:    l.PendingStockQuantity(),
			ConditionGrade:   l.conditionGrade,
			Status:           status,
		})
	}
	plan.Totals.Total = plan.Totals.LateFee.Add(plan.Totals.DamageFee).
		Add(plan.Totals.CleaningFee).Add(plan.Totals.ReplacementFee)
	return plan, nil
}

// Finalize locks the fee totals and moves the return to COMPLETED. Unless
// force is set, any blocking validation error fails the call.
func (r *RentalReturn) Finalize(force bool, by *int32, damageThreshold Money, now time.Time) (FinalizationPlan, error) {
	if err := r.ensureOpen(); err != nil {
		return FinalizationPlan{}, err
	}
	plan, err := PlanFinalization(r, damageThreshold)
	if err != nil {
		return FinalizationPlan{}, err
	}
	if !force && !plan.Check.OK() {
		return plan, NewInvalidStateError("return %s cannot be finalized: %s", r.id, strings.Join(plan.Check.Errors, "; "))
	}
	r.RecalculateTotals()
	if err := r.moveTo(ReturnStatusCompleted, now); err != nil {
		return plan, err
	}
	r.finalizedAt = &now
	r.finalizedBy = by
	r.meta.touch(by, now)
	return plan, nil
}
