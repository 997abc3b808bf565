package location

import (
	"context"

	"github.com/stocklane/inventory-service/internal/location/dto"
	"github.com/stocklane/inventory-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, loc *model.Location) error
	FindByID(ctx context.Context, id string) (*model.Location, error)
	FindByName(ctx context.Context, ownerID, name string) (*model.Location, error)
	FindAll(ctx context.Context, filters *dto.LocationFilters) ([]model.Location, int, error)
	Delete(ctx context.Context, id string) error

	// HasInventory reports whether any inventory record references the
	// location; such locations must not be deleted.
	HasInventory(ctx context.Context, locationID string) (bool, error)

	// FindAllWithTotals joins each location with the sum of its stock.
	FindAllWithTotals(ctx context.Context, ownerID string) ([]model.LocationTotals, error)
}
