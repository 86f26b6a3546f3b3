package domain

// InventoryStatus is the disposition of a physical inventory unit.
type InventoryStatus string

const (
	InventoryStatusAvailableRent       InventoryStatus = "AVAILABLE_RENT"
	InventoryStatusRented              InventoryStatus = "RENTED"
	InventoryStatusInspectionPending   InventoryStatus = "INSPECTION_PENDING"
	InventoryStatusCleaningRequired    InventoryStatus = "CLEANING_REQUIRED"
	InventoryStatusMaintenanceRequired InventoryStatus = "MAINTENANCE_REQUIRED"
	InventoryStatusDamaged             InventoryStatus = "DAMAGED"
)

type InventoryUnit struct {
	ID             int32           `json:"id"`
	ItemID         int32           `json:"item_id"`
	LocationID     int32           `json:"location_id"`
	ConditionGrade ConditionGrade  `json:"condition_grade"`
	Status         InventoryStatus `json:"status"`
}

type StockLevel struct {
	ItemID            int32 `json:"item_id"`
	LocationID        int32 `json:"location_id"`
	QuantityOnHand    int32 `json:"quantity_on_hand"`
	QuantityAvailable int32 `json:"quantity_available"`
}
