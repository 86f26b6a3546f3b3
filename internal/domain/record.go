package domain

import "time"

// RecordMetadata carries the audit columns shared by every persisted entity.
type RecordMetadata struct {
	CreatedOn time.Time  `json:"created_on"`
	UpdatedOn time.Time  `json:"updated_on"`
	CreatedBy *int32     `json:"created_by,omitempty"`
	UpdatedBy *int32     `json:"updated_by,omitempty"`
	DeletedOn *time.Time `json:"deleted_on,omitempty"`
	DeletedBy *int32     `json:"deleted_by,omitempty"`
}

func newRecordMetadata(by *int32, now time.Time) RecordMetadata {
	return RecordMetadata{
		CreatedOn: now,
		UpdatedOn: now,
		CreatedBy: by,
		UpdatedBy: by,
	}
}

func (m *RecordMetadata) touch(by *int32, now time.Time) {
	m.UpdatedOn = now
	if by != nil {
		m.UpdatedBy = by
	}
}

func (m *RecordMetadata) markDeleted(by *int32, now time.Time) {
	m.DeletedOn = &now
	m.DeletedBy = by
	m.touch(by, now)
}

// IsDeleted reports whether the record was soft-deleted.
func (m RecordMetadata) IsDeleted() bool {
	return m.DeletedOn != nil
}
