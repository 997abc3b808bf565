package inventory

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stocklane/inventory-service/internal/inventory/dto"
	"github.com/stocklane/inventory-service/internal/model"
)

// ErrStockGuard is returned when a guarded write would drive a quantity
// below zero. Nothing is written.
var ErrStockGuard = errors.New("stock guard rejected update")

// ErrVersionConflict is returned when a compare-and-swap write loses the
// race against a concurrent update. Nothing is written.
var ErrVersionConflict = errors.New("inventory version conflict")

// ErrDuplicateRecord is returned when an insert loses a create race on
// the (product_id, location_id) uniqueness constraint.
var ErrDuplicateRecord = errors.New("inventory record already exists")

// DeltaChange is a guarded atomic increment against one record. When
// VariantSKU is set the variation row moves by VariantDelta in the same
// transaction as the total.
type DeltaChange struct {
	InventoryID  string
	TotalDelta   int64
	VariantSKU   *string
	VariantDelta int64
}

// TransferApply commits one transfer: both ledger entries and both
// record updates in a single transaction, each update checked against
// the version read by the engine.
type TransferApply struct {
	OutMovement   *model.StockMovement
	InMovement    *model.StockMovement
	SourceID      string
	SourceVersion int64
	DestID        string
	DestVersion   int64
	VariantSKU    *string
	Amount        int64
}

type Repository interface {
	// Inventory store
	GetByID(ctx context.Context, id string) (*model.InventoryRecord, error)
	GetByProductLocation(ctx context.Context, productID, locationID string) (*model.InventoryRecord, error)
	Create(ctx context.Context, rec *model.InventoryRecord) error
	FindAll(ctx context.Context, filters *dto.InventoryFilters) ([]model.InventoryRecord, int, error)

	// ApplyDeltaWithMovement moves quantities by the guarded atomic
	// increment and appends the ledger entry in the same transaction.
	// The movement's QuantityBefore/QuantityAfter are filled in from the
	// values actually stored.
	ApplyDeltaWithMovement(ctx context.Context, d *DeltaChange, m *model.StockMovement) error

	// SetTotal sets the record's total quantity iff its version still
	// matches expectedVersion.
	SetTotal(ctx context.Context, inventoryID string, newTotal, expectedVersion int64) error

	// SetVariation sets one variation's quantity to newQuantity and
	// moves the total by totalDelta, under the same version check.
	SetVariation(ctx context.Context, inventoryID, sku string, newQuantity, totalDelta, expectedVersion int64) error

	ApplyTransfer(ctx context.Context, t *TransferApply) error

	// Movement ledger
	LogMovement(ctx context.Context, m *model.StockMovement) error
	// DeleteMovement is the compensating delete for a ledger entry whose
	// paired store update did not land. Not part of any other flow.
	DeleteMovement(ctx context.Context, id string) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.MovementWithNames, int, error)
	MovementsForInventory(ctx context.Context, inventoryID string) ([]model.MovementWithNames, error)
	LatestMovementsForProduct(ctx context.Context, ownerID, productID string, limit int) ([]model.MovementWithNames, error)

	// Aggregates
	TotalForProduct(ctx context.Context, ownerID, productID string) (int64, error)
	StockValue(ctx context.Context, ownerID string) (float64, error)
	StockForSKU(ctx context.Context, productID, sku string, simple bool) (int64, error)
}
