package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LineAssessment is the inspector's input for one line.
type LineAssessment struct {
	LineID              uuid.UUID
	ConditionGrade      *ConditionGrade
	DamageDescription   string
	PhotoURLs           []string
	EstimatedRepairCost *Money
	CleaningRequired    bool
	CleaningFee         *Money
	ReplacementRequired bool
	ReplacementFee      *Money
}

type DamageAssessmentInput struct {
	InspectorID    int32
	InspectionDate *time.Time
	Assessments    []LineAssessment
	// DefaultCleaningFee is charged when cleaning is required but no fee given.
	DefaultCleaningFee Money
}

// AssessDamage grades lines, assigns damage, cleaning and replacement fees
// and records one IN_PROGRESS inspection report for the call. Every
// assessment is validated before any line is touched.
func (r *RentalReturn) AssessDamage(in DamageAssessmentInput, now time.Time) (*InspectionReport, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}
	switch r.status {
	case ReturnStatusInitiated, ReturnStatusInInspection, ReturnStatusPartiallyCompleted:
	default:
		return nil, NewInvalidStateError("return %s in status %s cannot be inspected", r.id, r.status)
	}
	if in.InspectorID <= 0 {
		return nil, NewValidationError("inspector id is required")
	}
	if len(in.Assessments) == 0 {
		return nil, NewValidationError("at least one assessment is required")
	}

	lines := make([]*ReturnLine, 0, len(in.Assessments))
	for _, a := range in.Assessments {
		line, err := r.Line(a.LineID)
		if err != nil {
			return nil, err
		}
		if a.ConditionGrade != nil && !a.ConditionGrade.IsValid() {
			return nil, NewValidationError("unknown condition grade %q for line %s", string(*a.ConditionGrade), a.LineID)
		}
		lines = append(lines, line)
	}

	inspectionDate := now
	if in.InspectionDate != nil {
		inspectionDate = *in.InspectionDate
	}
	inspector := in.InspectorID

	var (
		repairTotal   Money
		aggregateCost Money
		descriptions  []string
		photos        []string
		findings      = make([]InspectionFinding, 0, len(lines))
	)
	for i, a := range in.Assessments {
		line := lines[i]
		pre := line.conditionGrade
		if a.ConditionGrade != nil {
			if err := line.setGrade(*a.ConditionGrade, &inspector, now); err != nil {
				return nil, err
			}
		}

		finding := InspectionFinding{
			LineID:          line.id,
			InventoryUnitID: line.inventoryUnitID,
			PreGrade:        pre,
			PostGrade:       line.conditionGrade,
			DamageLevel:     DamageLevelNone,
		}
		if a.EstimatedRepairCost != nil && a.EstimatedRepairCost.IsPositive() {
			cost := *a.EstimatedRepairCost
			line.setDamageFee(cost)
			level := ClassifyDamage(cost)
			if err := line.markDamage(level); err != nil {
				return nil, err
			}
			finding.RepairCost = cost
			finding.DamageLevel = level
			repairTotal = repairTotal.Add(cost)
			aggregateCost = aggregateCost.Add(cost)
		}
		if a.CleaningRequired {
			fee := in.DefaultCleaningFee
			if a.CleaningFee != nil {
				fee = *a.CleaningFee
			}
			line.setCleaningFee(fee)
			finding.CleaningFee = fee
		}
		if a.ReplacementRequired && a.ReplacementFee != nil && a.ReplacementFee.IsPositive() {
			line.setReplacementFee(*a.ReplacementFee)
			if err := line.markDamage(DamageLevelTotalLoss); err != nil {
				return nil, err
			}
			finding.ReplacementFee = *a.ReplacementFee
			finding.DamageLevel = DamageLevelTotalLoss
			aggregateCost = aggregateCost.Add(*a.ReplacementFee)
		}
		if d := strings.TrimSpace(a.DamageDescription); d != "" {
			descriptions = append(descriptions, d)
		}
		photos = append(photos, a.PhotoURLs...)
		line.meta.touch(&inspector, now)
		findings = append(findings, finding)
	}

	first := findings[0]
	report := &InspectionReport{
		id:                uuid.New(),
		returnID:          r.id,
		inventoryUnitID:   first.InventoryUnitID,
		inspectorID:       inspector,
		inspectionDate:    inspectionDate,
		preGrade:          first.PreGrade,
		postGrade:         first.PostGrade,
		damageLevel:       ClassifyDamage(aggregateCost),
		damageFound:       aggregateCost.IsPositive(),
		damageDescription: strings.Join(descriptions, "; "),
		photoURLs:         photos,
		findings:          findings,
		status:            InspectionStatusInProgress,
		meta:              newRecordMetadata(&inspector, now),
	}
	if repairTotal.IsPositive() {
		est := repairTotal
		report.repairEstimate = &est
	}
	if !report.damageFound {
		report.notes = append(report.notes, "no damage found")
	}

	r.inspections = append(r.inspections, report)
	r.RecalculateTotals()
	if r.status != ReturnStatusInInspection {
		if err := r.UpdateStatus(ReturnStatusInInspection, now); err != nil {
			return nil, err
		}
	}
	r.meta.touch(&inspector, now)
	return report, nil
}
