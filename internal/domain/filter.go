package domain

import "time"

// ReturnFilter narrows a return listing; zero fields are ignored.
type ReturnFilter struct {
	TransactionID *int32
	Status        *ReturnStatus
	ReturnType    *ReturnType
	LocationID    *int32
	ReturnedFrom  *time.Time
	ReturnedTo    *time.Time
	// Statuses, when set, matches any of the listed statuses.
	Statuses       []ReturnStatus
	IncludeDeleted bool
}

// Matches applies the filter to an in-memory return.
func (f ReturnFilter) Matches(r *RentalReturn) bool {
	if r.IsDeleted() && !f.IncludeDeleted {
		return false
	}
	if f.TransactionID != nil && r.transactionID != *f.TransactionID {
		return false
	}
	if f.Status != nil && r.status != *f.Status {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if s == r.status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.ReturnType != nil && r.returnType != *f.ReturnType {
		return false
	}
	if f.LocationID != nil && (r.locationID == nil || *r.locationID != *f.LocationID) {
		return false
	}
	if f.ReturnedFrom != nil && r.returnDate.Before(*f.ReturnedFrom) {
		return false
	}
	if f.ReturnedTo != nil && r.returnDate.After(*f.ReturnedTo) {
		return false
	}
	return true
}
