package dto

import "github.com/stocklane/inventory-service/internal/model"

type InitializeStockInput struct {
	ProductID       string
	LocationID      string
	InitialQuantity int64
	Notes           string
}

type InitializeStockResult struct {
	InventoryID string `json:"inventory_id"`
	MovementID  string `json:"movement_id"`
}

type AdjustStockInput struct {
	InventoryID string
	NewQuantity int64
	Reason      string
	Notes       string
}

type ApplyMovementInput struct {
	InventoryID    string
	VariantSKU     string // required when the record tracks variations
	QuantityChange int64
	Reason         string
	Notes          string
	Type           model.MovementType // defaults to ADJUSTMENT
}

type TransferStockInput struct {
	ProductID      string
	FromLocationID string
	ToLocationID   string
	VariantSKU     string // required for variation products
	Amount         int64
	Notes          string
	ReferenceID    string // generated when empty
}

type TransferStockResult struct {
	TransferOutMovementID string `json:"transfer_out_movement_id"`
	TransferInMovementID  string `json:"transfer_in_movement_id"`
	ReferenceID           string `json:"reference_id"`
}

type SetStockInput struct {
	ProductID   string
	LocationID  string
	VariantSKU  string
	NewQuantity int64
	Reason      string
	Notes       string
}

type StockOperationInput struct {
	ProductID   string
	LocationID  string
	VariantSKU  string
	Type        model.MovementType // ADD, REMOVE or ADJUSTMENT
	Amount      int64
	Reason      string
	Notes       string
	ReferenceID string // optional correlation id, e.g. an order id
}

type StockOperationResult struct {
	Inventory  *model.InventoryRecord `json:"inventory"`
	MovementID string                 `json:"movement_id"`
}
