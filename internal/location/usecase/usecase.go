package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stocklane/inventory-service/internal/apperr"
	"github.com/stocklane/inventory-service/internal/auth"
	"github.com/stocklane/inventory-service/internal/location"
	"github.com/stocklane/inventory-service/internal/location/dto"
	"github.com/stocklane/inventory-service/internal/model"
	"github.com/stocklane/inventory-service/pkg/logger"
	"go.uber.org/zap"
)

type locationUseCase struct {
	repo   location.Repository
	logger logger.ZapLogger
}

func NewLocationUseCase(repo location.Repository, log logger.ZapLogger) location.UseCase {
	return &locationUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *locationUseCase) CreateLocation(ctx context.Context, scope auth.Scope, input *dto.CreateLocationInput) (*model.Location, error) {
	ownerID := input.OwnerID
	if !scope.Admin() {
		// Scoped callers always create under their own owner.
		ownerID = scope.OwnerID
	}
	if ownerID == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "owner id is required")
	}
	if input.Name == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "location name is required")
	}

	existing, err := uc.repo.FindByName(ctx, ownerID, input.Name)
	if err != nil {
		return nil, apperr.Internal(err, "failed to check location name")
	}
	if existing != nil {
		return nil, apperr.Newf(apperr.KindConflict, "location %q already exists", input.Name)
	}

	now := time.Now()
	loc := &model.Location{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OwnerID:   ownerID,
		Name:      input.Name,
	}

	if err := uc.repo.Create(ctx, loc); err != nil {
		return nil, apperr.Internal(err, "failed to create location")
	}

	uc.logger.Info("location created", zap.String("location_id", loc.ID), zap.String("owner_id", ownerID))
	return loc, nil
}

func (uc *locationUseCase) GetLocation(ctx context.Context, scope auth.Scope, id string) (*model.Location, error) {
	loc, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load location")
	}
	if loc == nil {
		return nil, apperr.New(apperr.KindNotFound, "location not found")
	}
	if err := scope.Authorize(loc.OwnerID); err != nil {
		return nil, err
	}
	return loc, nil
}

func (uc *locationUseCase) ListLocations(ctx context.Context, scope auth.Scope, page, pageSize int) ([]model.Location, int, error) {
	return uc.repo.FindAll(ctx, &dto.LocationFilters{
		OwnerID:  scope.OwnerID,
		Page:     page,
		PageSize: pageSize,
	})
}

func (uc *locationUseCase) DeleteLocation(ctx context.Context, scope auth.Scope, id string) error {
	loc, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return apperr.Internal(err, "failed to load location")
	}
	if loc == nil {
		return apperr.New(apperr.KindNotFound, "location not found")
	}
	if err := scope.Authorize(loc.OwnerID); err != nil {
		return err
	}

	inUse, err := uc.repo.HasInventory(ctx, id)
	if err != nil {
		return apperr.Internal(err, "failed to check location inventory")
	}
	if inUse {
		return apperr.New(apperr.KindConflict, "location still has inventory records")
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return apperr.Internal(err, "failed to delete location")
	}

	uc.logger.Info("location deleted", zap.String("location_id", id))
	return nil
}

func (uc *locationUseCase) GetLocationsWithTotals(ctx context.Context, scope auth.Scope) ([]model.LocationTotals, error) {
	totals, err := uc.repo.FindAllWithTotals(ctx, scope.OwnerID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load location totals")
	}
	return totals, nil
}
