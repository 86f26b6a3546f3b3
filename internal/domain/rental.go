package domain

import "time"

type TransactionType string

const (
	TransactionTypeRental   TransactionType = "RENTAL"
	TransactionTypeSale     TransactionType = "SALE"
	TransactionTypePurchase TransactionType = "PURCHASE"
)

type TransactionStatus string

const (
	TransactionStatusDraft      TransactionStatus = "DRAFT"
	TransactionStatusConfirmed  TransactionStatus = "CONFIRMED"
	TransactionStatusInProgress TransactionStatus = "IN_PROGRESS"
	TransactionStatusCompleted  TransactionStatus = "COMPLETED"
	TransactionStatusCancelled  TransactionStatus = "CANCELLED"
)

// Transaction is the rental header a return is raised against.
type Transaction struct {
	ID            int32             `json:"id"`
	Type          TransactionType   `json:"type"`
	Status        TransactionStatus `json:"status"`
	CustomerID    int32             `json:"customer_id"`
	DepositAmount Money             `json:"deposit_amount"`
	// RentalEndDate is the agreed return date; nil for open-ended rentals.
	RentalEndDate *time.Time `json:"rental_end_date,omitempty"`
}

// IsActiveRental reports whether items may still be returned against t.
func (t *Transaction) IsActiveRental() bool {
	if t.Type != TransactionTypeRental {
		return false
	}
	return t.Status == TransactionStatusInProgress || t.Status == TransactionStatusConfirmed
}

type TransactionLine struct {
	TransactionID   int32 `json:"transaction_id"`
	InventoryUnitID int32 `json:"inventory_unit_id"`
	Quantity        int32 `json:"quantity"`
}

// RentedQuantities sums line quantities per inventory unit.
func RentedQuantities(lines []TransactionLine) map[int32]int32 {
	out := make(map[int32]int32, len(lines))
	for _, l := range lines {
		out[l.InventoryUnitID] += l.Quantity
	}
	return out
}
