package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ConditionGrade is the quality classification assigned at inspection.
type ConditionGrade string

const (
	ConditionGradeA ConditionGrade = "A"
	ConditionGradeB ConditionGrade = "B"
	ConditionGradeC ConditionGrade = "C"
	ConditionGradeD ConditionGrade = "D"
)

// ParseConditionGrade accepts upper or lower case letters.
func ParseConditionGrade(s string) (ConditionGrade, error) {
	g := ConditionGrade(strings.ToUpper(strings.TrimSpace(s)))
	if !g.IsValid() {
		return "", NewValidationError("unknown condition grade %q", s)
	}
	return g, nil
}

func (g ConditionGrade) IsValid() bool {
	switch g {
	case ConditionGradeA, ConditionGradeB, ConditionGradeC, ConditionGradeD:
		return true
	}
	return false
}

// InventoryStatus maps a grade to the status a returned unit goes to.
func (g ConditionGrade) InventoryStatus() (InventoryStatus, error) {
	switch g {
	case ConditionGradeA, ConditionGradeB:
		return InventoryStatusAvailableRent, nil
	case ConditionGradeC:
		return InventoryStatusInspectionPending, nil
	case ConditionGradeD:
		return InventoryStatusMaintenanceRequired, nil
	}
	return "", NewValidationError("unknown condition grade %q", string(g))
}

// DamageLevel is the severity of damage found on a unit.
type DamageLevel string

const (
	DamageLevelNone      DamageLevel = "NONE"
	DamageLevelMinor     DamageLevel = "MINOR"
	DamageLevelModerate  DamageLevel = "MODERATE"
	DamageLevelMajor     DamageLevel = "MAJOR"
	DamageLevelTotalLoss DamageLevel = "TOTAL_LOSS"
)

func ParseDamageLevel(s string) (DamageLevel, error) {
	l := DamageLevel(strings.ToUpper(strings.TrimSpace(s)))
	if !l.IsValid() {
		return "", NewValidationError("unknown damage level %q", s)
	}
	return l, nil
}

func (l DamageLevel) IsValid() bool {
	switch l {
	case DamageLevelNone, DamageLevelMinor, DamageLevelModerate, DamageLevelMajor, DamageLevelTotalLoss:
		return true
	}
	return false
}

var (
	majorDamageThreshold    = decimal.NewFromInt(100)
	moderateDamageThreshold = decimal.NewFromInt(50)
)

// ClassifyDamage grades a repair cost: above 100 is MAJOR, above 50 is
// MODERATE, any other positive cost is MINOR and zero is NONE.
func ClassifyDamage(cost Money) DamageLevel {
	d := cost.Decimal()
	switch {
	case d.GreaterThan(majorDamageThreshold):
		return DamageLevelMajor
	case d.GreaterThan(moderateDamageThreshold):
		return DamageLevelModerate
	case d.IsPositive():
		return DamageLevelMinor
	default:
		return DamageLevelNone
	}
}
