package usecase

import (
	"context"

	"github.com/stocklane/inventory-service/internal/apperr"
	"github.com/stocklane/inventory-service/internal/auth"
	"github.com/stocklane/inventory-service/internal/inventory"
	"github.com/stocklane/inventory-service/internal/inventory/dto"
	"github.com/stocklane/inventory-service/internal/location"
	"github.com/stocklane/inventory-service/internal/model"
	"github.com/stocklane/inventory-service/internal/product"
	"github.com/stocklane/inventory-service/pkg/cache"
	"github.com/stocklane/inventory-service/pkg/logger"
	"github.com/stocklane/inventory-service/pkg/metrics"
	"github.com/stocklane/inventory-service/pkg/search"
)

type inventoryUseCase struct {
	repo      inventory.Repository
	products  product.Repository
	locations location.Repository
	cache     *cache.RedisClient
	es        *search.Client
	metrics   *metrics.Metrics
	logger    logger.ZapLogger
}

func NewInventoryUseCase(
	repo inventory.Repository,
	products product.Repository,
	locations location.Repository,
	cache *cache.RedisClient,
	es *search.Client,
	m *metrics.Metrics,
	log logger.ZapLogger,
) inventory.UseCase {
	return &inventoryUseCase{
		repo:      repo,
		products:  products,
		locations: locations,
		cache:     cache,
		es:        es,
		metrics:   m,
		logger:    log,
	}
}

func (uc *inventoryUseCase) GetInventoryLevels(ctx context.Context, scope auth.Scope, filters *dto.InventoryFilters) ([]model.InventoryRecord, int, error) {
	// The scope is a query predicate on list views, not a per-row check.
	filters.OwnerID = scope.OwnerID
	return uc.repo.FindAll(ctx, filters)
}

func (uc *inventoryUseCase) ListLowStock(ctx context.Context, scope auth.Scope, page, pageSize int) ([]model.InventoryRecord, int, error) {
	return uc.repo.FindAll(ctx, &dto.InventoryFilters{
		OwnerID:  scope.OwnerID,
		LowStock: true,
		Page:     page,
		PageSize: pageSize,
	})
}

func (uc *inventoryUseCase) GetMovements(ctx context.Context, scope auth.Scope, filters *dto.MovementFilters) ([]model.MovementWithNames, int, error) {
	filters.OwnerID = scope.OwnerID
	return uc.repo.ListMovements(ctx, filters)
}

func (uc *inventoryUseCase) GetLatestMovementsForProduct(ctx context.Context, scope auth.Scope, productID string, limit int) ([]model.MovementWithNames, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return uc.repo.LatestMovementsForProduct(ctx, scope.OwnerID, productID, limit)
}

func (uc *inventoryUseCase) GetMovementHistory(ctx context.Context, scope auth.Scope, inventoryID string) ([]model.MovementWithNames, error) {
	rec, err := uc.repo.GetByID(ctx, inventoryID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load inventory record")
	}
	if rec == nil {
		return nil, apperr.New(apperr.KindNotFound, "inventory record not found")
	}
	if err := scope.Authorize(rec.OwnerID); err != nil {
		return nil, err
	}
	return uc.repo.MovementsForInventory(ctx, inventoryID)
}

func (uc *inventoryUseCase) GetProductStockTotal(ctx context.Context, scope auth.Scope, productID string) (int64, error) {
	return uc.repo.TotalForProduct(ctx, scope.OwnerID, productID)
}

func (uc *inventoryUseCase) GetStockForSKU(ctx context.Context, productID, sku string) (int64, error) {
	p, err := uc.products.FindByID(ctx, productID)
	if err != nil {
		return 0, apperr.Internal(err, "failed to load product")
	}
	if p == nil {
		return 0, apperr.New(apperr.KindNotFound, "product not found")
	}

	if !p.HasVariants() {
		// A simple product has one implicit SKU; it must match.
		if sku != "" && sku != p.SKU {
			return 0, apperr.Newf(apperr.KindNotFound, "sku %q not found for product", sku)
		}
		return uc.repo.StockForSKU(ctx, productID, sku, true)
	}
	return uc.repo.StockForSKU(ctx, productID, sku, false)
}

func (uc *inventoryUseCase) GetStockValue(ctx context.Context, scope auth.Scope) (float64, error) {
	return uc.repo.StockValue(ctx, scope.OwnerID)
}
