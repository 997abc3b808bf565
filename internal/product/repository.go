package product

import (
	"context"

	"github.com/stocklane/inventory-service/internal/model"
)

// Repository is the read-only slice of the catalog this service needs.
// Product writes belong to the catalog service.
type Repository interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
	HasVariantSKU(ctx context.Context, productID, sku string) (bool, error)
}
