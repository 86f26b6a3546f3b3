package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type InspectionStatus string

const (
	InspectionStatusPending    InspectionStatus = "PENDING"
	InspectionStatusInProgress InspectionStatus = "IN_PROGRESS"
	InspectionStatusCompleted  InspectionStatus = "COMPLETED"
	InspectionStatusFailed     InspectionStatus = "FAILED"
)

// InspectionFinding is the per-line outcome recorded on a report.
type InspectionFinding struct {
	LineID          uuid.UUID      `json:"line_id"`
	InventoryUnitID int32          `json:"inventory_unit_id"`
	PreGrade        ConditionGrade `json:"pre_condition_grade"`
	PostGrade       ConditionGrade `json:"post_condition_grade"`
	DamageLevel     DamageLevel    `json:"damage_level"`
	RepairCost      Money          `json:"repair_cost"`
	CleaningFee     Money          `json:"cleaning_fee"`
	ReplacementFee  Money          `json:"replacement_fee"`
}

// InspectionReport records one damage assessment. Once approved or rejected
// only notes may be appended.
type InspectionReport struct {
	id                uuid.UUID
	returnID          uuid.UUID
	inventoryUnitID   int32
	inspectorID       int32
	inspectionDate    time.Time
	preGrade          ConditionGrade
	postGrade         ConditionGrade
	damageLevel       DamageLevel
	damageFound       bool
	damageDescription string
	repairEstimate    *Money
	photoURLs         []string
	findings          []InspectionFinding
	status            InspectionStatus
	approvedBy        *int32
	approvedAt        *time.Time
	rejectedBy        *int32
	rejectedAt        *time.Time
	rejectionNotes    string
	notes             []string
	meta              RecordMetadata
}

type InspectionReportState struct {
	ID                 uuid.UUID           `json:"id"`
	ReturnID           uuid.UUID           `json:"return_id"`
	InventoryUnitID    int32               `json:"inventory_unit_id"`
	InspectorID        int32               `json:"inspector_id"`
	InspectionDate     time.Time           `json:"inspection_date"`
	PreConditionGrade  ConditionGrade      `json:"pre_condition_grade"`
	PostConditionGrade ConditionGrade      `json:"post_condition_grade"`
	DamageLevel        DamageLevel         `json:"damage_level"`
	DamageFound        bool                `json:"damage_found"`
	DamageDescription  string              `json:"damage_description,omitempty"`
	RepairEstimate     *Money              `json:"repair_estimate,omitempty"`
	PhotoURLs          []string            `json:"photo_urls"`
	Findings           []InspectionFinding `json:"findings"`
	Status             InspectionStatus    `json:"inspection_status"`
	ApprovedBy         *int32              `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time          `json:"approved_at,omitempty"`
	RejectedBy         *int32              `json:"rejected_by,omitempty"`
	RejectedAt         *time.Time          `json:"rejected_at,omitempty"`
	RejectionNotes     string              `json:"rejection_notes,omitempty"`
	Notes              []string            `json:"notes,omitempty"`
	RecordMetadata
}

func RestoreInspectionReport(s InspectionReportState) (*InspectionReport, error) {
	switch s.Status {
	case InspectionStatusPending, InspectionStatusInProgress, InspectionStatusCompleted, InspectionStatusFailed:
	default:
		return nil, NewValidationError("report %s: unknown inspection status %q", s.ID, string(s.Status))
	}
	if !s.DamageLevel.IsValid() {
		return nil, NewValidationError("report %s: unknown damage level %q", s.ID, string(s.DamageLevel))
	}
	return &InspectionReport{
		id:                s.ID,
		returnID:          s.ReturnID,
		inventoryUnitID:   s.InventoryUnitID,
		inspectorID:       s.InspectorID,
		inspectionDate:    s.InspectionDate,
		preGrade:          s.PreConditionGrade,
		postGrade:         s.PostConditionGrade,
		damageLevel:       s.DamageLevel,
		damageFound:       s.DamageFound,
		damageDescription: s.DamageDescription,
		repairEstimate:    s.RepairEstimate,
		photoURLs:         append([]string(nil), s.PhotoURLs...),
		findings:          append([]InspectionFinding(nil), s.Findings...),
		status:            s.Status,
		approvedBy:        s.ApprovedBy,
		approvedAt:        s.ApprovedAt,
		rejectedBy:        s.RejectedBy,
		rejectedAt:        s.RejectedAt,
		rejectionNotes:    s.RejectionNotes,
		notes:             append([]string(nil), s.Notes...),
		meta:              s.RecordMetadata,
	}, nil
}

func (r *InspectionReport) State() InspectionReportState {
	return InspectionReportState{
		ID:                 r.id,
		ReturnID:           r.returnID,
		InventoryUnitID:    r.inventoryUnitID,
		InspectorID:        r.inspectorID,
		InspectionDate:     r.inspectionDate,
		PreConditionGrade:  r.preGrade,
		PostConditionGrade: r.postGrade,
		DamageLevel:        r.damageLevel,
		DamageFound:        r.damageFound,
		DamageDescription:  r.damageDescription,
		RepairEstimate:     r.repairEstimate,
		PhotoURLs:          append([]string(nil), r.photoURLs...),
		Findings:           append([]InspectionFinding(nil), r.findings...),
		Status:             r.status,
		ApprovedBy:         r.approvedBy,
		ApprovedAt:         r.approvedAt,
		RejectedBy:         r.rejectedBy,
		RejectedAt:         r.rejectedAt,
		RejectionNotes:     r.rejectionNotes,
		Notes:              append([]string(nil), r.notes...),
		RecordMetadata:     r.meta,
	}
}

func (r *InspectionReport) ID() uuid.UUID            { return r.id }
func (r *InspectionReport) ReturnID() uuid.UUID      { return r.returnID }
func (r *InspectionReport) InventoryUnitID() int32   { return r.inventoryUnitID }
func (r *InspectionReport) InspectorID() int32       { return r.inspectorID }
func (r *InspectionReport) Status() InspectionStatus { return r.status }
func (r *InspectionReport) DamageLevel() DamageLevel { return r.damageLevel }
func (r *InspectionReport) DamageFound() bool        { return r.damageFound }
func (r *InspectionReport) PhotoURLs() []string      { return append([]string(nil), r.photoURLs...) }
func (r *InspectionReport) ApprovedBy() *int32       { return r.approvedBy }
func (r *InspectionReport) ApprovedAt() *time.Time   { return r.approvedAt }
func (r *InspectionReport) RejectionNotes() string   { return r.rejectionNotes }
func (r *InspectionReport) Notes() []string          { return append([]string(nil), r.notes...) }
func (r *InspectionReport) Findings() []InspectionFinding {
	return append([]InspectionFinding(nil), r.findings...)
}

func (r *InspectionReport) IsApproved() bool { return r.approvedAt != nil }

func (r *InspectionReport) IsRejected() bool { return r.rejectedAt != nil }

// IsDecided reports whether the report was approved or rejected.
func (r *InspectionReport) IsDecided() bool { return r.IsApproved() || r.IsRejected() }

// complete closes an IN_PROGRESS report with an approval or a rejection.
func (r *InspectionReport) complete(approve bool, by int32, notes string, now time.Time) error {
	if r.status != InspectionStatusInProgress {
		return NewInvalidStateError("inspection %s is %s, expected %s", r.id, r.status, InspectionStatusInProgress)
	}
	if approve {
		r.approvedBy = &by
		r.approvedAt = &now
		if strings.TrimSpace(notes) != "" {
			r.notes = append(r.notes, notes)
		}
	} else {
		if strings.TrimSpace(notes) == "" {
			return NewValidationError("rejecting inspection %s requires notes", r.id)
		}
		r.rejectedBy = &by
		r.rejectedAt = &now
		r.rejectionNotes = notes
	}
	r.status = InspectionStatusCompleted
	r.meta.touch(&by, now)
	return nil
}

// AppendNote is the one change allowed at any point of a report's life.
func (r *InspectionReport) AppendNote(note string, by *int32, now time.Time) error {
	if strings.TrimSpace(note) == "" {
		return NewValidationError("note cannot be empty")
	}
	r.notes = append(r.notes, note)
	r.meta.touch(by, now)
	return nil
}
