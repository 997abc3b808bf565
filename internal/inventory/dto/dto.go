package dto

type InventoryFilters struct {
	OwnerID    string
	ProductID  string
	LocationID string
	LowStock   bool // available quantity at or below reorder_point
	Page       int
	PageSize   int
}

type MovementFilters struct {
	OwnerID      string
	ProductID    string
	LocationID   string
	InventoryID  string
	MovementType string
	Page         int
	PageSize     int
}
