package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklane/inventory-service/internal/apperr"
	"github.com/stocklane/inventory-service/internal/auth"
	"github.com/stocklane/inventory-service/internal/inventory/dto"
	"github.com/stocklane/inventory-service/internal/model"
)

func TestGetInventoryLevelsScoped(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()
	env.initialize(t, productSimple, locMain, 10)
	env.initialize(t, productSimple, locBackup, 5)

	levels, total, err := env.uc.GetInventoryLevels(ctx, auth.Scope{OwnerID: ownerAcme}, &dto.InventoryFilters{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, levels, 2)

	// Another tenant's scope sees nothing.
	levels, total, err = env.uc.GetInventoryLevels(ctx, auth.Scope{OwnerID: ownerOther}, &dto.InventoryFilters{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, levels)

	// Location filter narrows within the scope.
	levels, _, err = env.uc.GetInventoryLevels(ctx, auth.Scope{OwnerID: ownerAcme}, &dto.InventoryFilters{LocationID: locBackup})
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, int64(5), levels[0].Quantity)
}

func TestGetProductStockTotal(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()
	env.initialize(t, productSimple, locMain, 10)
	env.initialize(t, productSimple, locBackup, 5)

	total, err := env.uc.GetProductStockTotal(ctx, auth.Scope{OwnerID: ownerAcme}, productSimple)
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)

	total, err = env.uc.GetProductStockTotal(ctx, auth.Scope{OwnerID: ownerOther}, productSimple)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGetStockForSKU(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()
	scope := auth.Scope{OwnerID: ownerAcme}
	env.initialize(t, productSimple, locMain, 10)

	// A simple product answers its own sku and the empty sku.
	qty, err := env.uc.GetStockForSKU(ctx, productSimple, "WIDGET-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), qty)

	qty, err = env.uc.GetStockForSKU(ctx, productSimple, "")
	require.NoError(t, err)
	assert.Equal(t, int64(10), qty)

	_, err = env.uc.GetStockForSKU(ctx, productSimple, "WIDGET-2")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = env.uc.GetStockForSKU(ctx, "prod-missing", "X")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	// A variation product answers per variant, summed over locations.
	for _, loc := range []string{locMain, locBackup} {
		_, err = env.uc.ProductStockOperation(ctx, scope, &dto.StockOperationInput{
			ProductID: productVariable, LocationID: loc, VariantSKU: "SHIRT-RED",
			Type: model.MovementAdd, Amount: 3, Reason: "restock",
		})
		require.NoError(t, err)
	}
	qty, err = env.uc.GetStockForSKU(ctx, productVariable, "SHIRT-RED")
	require.NoError(t, err)
	assert.Equal(t, int64(6), qty)

	qty, err = env.uc.GetStockForSKU(ctx, productVariable, "SHIRT-BLUE")
	require.NoError(t, err)
	assert.Zero(t, qty)
}

func TestGetMovementHistory(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()
	scope := auth.Scope{OwnerID: ownerAcme}
	id := env.initialize(t, productSimple, locMain, 10)

	_, err := env.uc.ProductStockOperation(ctx, scope, &dto.StockOperationInput{
		ProductID: productSimple, LocationID: locMain,
		Type: model.MovementRemove, Amount: 4, Reason: "damaged goods",
	})
	require.NoError(t, err)

	history, err := env.uc.GetMovementHistory(ctx, scope, id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.MovementInitial, history[0].Type)
	assert.Equal(t, model.MovementRemove, history[1].Type)

	// Each entry's after matches the next entry's before.
	assert.Equal(t, history[0].QuantityAfter, history[1].QuantityBefore)

	_, err = env.uc.GetMovementHistory(ctx, scope, "inv-missing")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestGetLatestMovementsForProduct(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()
	scope := auth.Scope{OwnerID: ownerAcme}
	env.initialize(t, productSimple, locMain, 10)

	for i := 0; i < 3; i++ {
		_, err := env.uc.ProductStockOperation(ctx, scope, &dto.StockOperationInput{
			ProductID: productSimple, LocationID: locMain,
			Type: model.MovementAdd, Amount: 1, Reason: "restock",
		})
		require.NoError(t, err)
	}

	latest, err := env.uc.GetLatestMovementsForProduct(ctx, scope, productSimple, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, model.MovementAdd, latest[0].Type)

	// An out-of-range limit falls back to the default.
	latest, err = env.uc.GetLatestMovementsForProduct(ctx, scope, productSimple, -5)
	require.NoError(t, err)
	assert.Len(t, latest, 4)
}

func TestListLowStock(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()
	scope := auth.Scope{OwnerID: ownerAcme}
	id := env.initialize(t, productSimple, locMain, 10)
	env.initialize(t, productSimple, locBackup, 100)

	// Push the main record under its reorder point.
	env.repo.records[id].ReorderPoint = 20

	low, total, err := env.uc.ListLowStock(ctx, scope, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, low, 1)
	assert.Equal(t, id, low[0].ID)
}

func TestGetMovementsFilteredByType(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()
	scope := auth.Scope{OwnerID: ownerAcme}
	env.initialize(t, productSimple, locMain, 10)

	_, err := env.uc.TransferStock(ctx, scope, &dto.TransferStockInput{
		ProductID:      productSimple,
		FromLocationID: locMain,
		ToLocationID:   locBackup,
		Amount:         2,
	})
	require.NoError(t, err)

	movements, total, err := env.uc.GetMovements(ctx, scope, &dto.MovementFilters{
		MovementType: string(model.MovementTransferOut),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementTransferOut, movements[0].Type)
}
