package location

import (
	"context"

	"github.com/stocklane/inventory-service/internal/auth"
	"github.com/stocklane/inventory-service/internal/location/dto"
	"github.com/stocklane/inventory-service/internal/model"
)

type UseCase interface {
	CreateLocation(ctx context.Context, scope auth.Scope, input *dto.CreateLocationInput) (*model.Location, error)
	GetLocation(ctx context.Context, scope auth.Scope, id string) (*model.Location, error)
	ListLocations(ctx context.Context, scope auth.Scope, page, pageSize int) ([]model.Location, int, error)
	DeleteLocation(ctx context.Context, scope auth.Scope, id string) error
	GetLocationsWithTotals(ctx context.Context, scope auth.Scope) ([]model.LocationTotals, error)
}
