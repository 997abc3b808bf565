package inventory

import (
	"context"

	"github.com/stocklane/inventory-service/internal/auth"
	"github.com/stocklane/inventory-service/internal/inventory/dto"
	"github.com/stocklane/inventory-service/internal/model"
)

type UseCase interface {
	// Stock operations
	InitializeStock(ctx context.Context, scope auth.Scope, input *dto.InitializeStockInput) (*dto.InitializeStockResult, error)
	AdjustStock(ctx context.Context, scope auth.Scope, input *dto.AdjustStockInput) (*dto.StockOperationResult, error)
	ApplyMovement(ctx context.Context, scope auth.Scope, input *dto.ApplyMovementInput) (*dto.StockOperationResult, error)
	TransferStock(ctx context.Context, scope auth.Scope, input *dto.TransferStockInput) (*dto.TransferStockResult, error)
	SetProductStock(ctx context.Context, scope auth.Scope, input *dto.SetStockInput) (*dto.StockOperationResult, error)
	ProductStockOperation(ctx context.Context, scope auth.Scope, input *dto.StockOperationInput) (*dto.StockOperationResult, error)

	// Read views
	GetInventoryLevels(ctx context.Context, scope auth.Scope, filters *dto.InventoryFilters) ([]model.InventoryRecord, int, error)
	ListLowStock(ctx context.Context, scope auth.Scope, page, pageSize int) ([]model.InventoryRecord, int, error)
	GetMovements(ctx context.Context, scope auth.Scope, filters *dto.MovementFilters) ([]model.MovementWithNames, int, error)
	GetLatestMovementsForProduct(ctx context.Context, scope auth.Scope, productID string, limit int) ([]model.MovementWithNames, error)
	GetMovementHistory(ctx context.Context, scope auth.Scope, inventoryID string) ([]model.MovementWithNames, error)
	GetProductStockTotal(ctx context.Context, scope auth.Scope, productID string) (int64, error)
	GetStockForSKU(ctx context.Context, productID, sku string) (int64, error)
	GetStockValue(ctx context.Context, scope auth.Scope) (float64, error)
}
