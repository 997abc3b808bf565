package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stocklane/inventory-service/internal/apperr"
	"github.com/stocklane/inventory-service/internal/auth"
	"github.com/stocklane/inventory-service/internal/inventory"
	"github.com/stocklane/inventory-service/internal/inventory/dto"
	"github.com/stocklane/inventory-service/internal/model"
	"go.uber.org/zap"
)

const (
	lockTTL      = 5 * time.Second
	lockAttempts = 3
	casAttempts  = 3
)

func (uc *inventoryUseCase) InitializeStock(ctx context.Context, scope auth.Scope, input *dto.InitializeStockInput) (*dto.InitializeStockResult, error) {
	if input.InitialQuantity < 0 {
		return nil, uc.observe("initialize", apperr.New(apperr.KindInvalidInput, "initial quantity must not be negative"))
	}

	p, loc, err := uc.resolveTarget(ctx, scope, input.ProductID, input.LocationID)
	if err != nil {
		return nil, uc.observe("initialize", err)
	}
	if p.HasVariants() && input.InitialQuantity > 0 {
		// A total-only seed would never reconcile with the variation sum.
		return nil, uc.observe("initialize", apperr.New(apperr.KindVariantRequired, "variation products must be stocked per variant sku"))
	}

	existing, err := uc.repo.GetByProductLocation(ctx, p.ID, loc.ID)
	if err != nil {
		return nil, uc.observe("initialize", apperr.Internal(err, "failed to load inventory record"))
	}
	if existing != nil {
		return nil, uc.observe("initialize", apperr.New(apperr.KindAlreadyInitialized, "stock already initialized for this product and location"))
	}

	rec, err := uc.createRecord(ctx, p, loc)
	if err != nil {
		return nil, uc.observe("initialize", err)
	}

	m := uc.newMovement(ctx, rec, model.MovementInitial, nil, input.InitialQuantity, "initial stock", input.Notes, nil)
	delta := &inventory.DeltaChange{InventoryID: rec.ID, TotalDelta: input.InitialQuantity}
	if err := uc.applyDelta(ctx, delta, m); err != nil {
		return nil, uc.observe("initialize", err)
	}

	uc.afterMovement(m)
	uc.logger.Info("stock initialized",
		zap.String("inventory_id", rec.ID),
		zap.String("product_id", p.ID),
		zap.Int64("quantity", input.InitialQuantity),
	)
	_ = uc.observe("initialize", nil)
	return &dto.InitializeStockResult{InventoryID: rec.ID, MovementID: m.ID}, nil
}

func (uc *inventoryUseCase) AdjustStock(ctx context.Context, scope auth.Scope, input *dto.AdjustStockInput) (*dto.StockOperationResult, error) {
	if input.NewQuantity < 0 {
		return nil, uc.observe("adjust", apperr.New(apperr.KindInvalidInput, "quantity must not be negative"))
	}
	if input.Reason == "" {
		return nil, uc.observe("adjust", apperr.New(apperr.KindInvalidInput, "reason is required"))
	}

	rec, err := uc.loadRecord(ctx, scope, input.InventoryID)
	if err != nil {
		return nil, uc.observe("adjust", err)
	}

	p, err := uc.products.FindByID(ctx, rec.ProductID)
	if err != nil {
		return nil, uc.observe("adjust", apperr.Internal(err, "failed to load product"))
	}
	if p != nil && p.HasVariants() {
		// A record-total adjustment would desync the variation sum.
		return nil, uc.observe("adjust", apperr.New(apperr.KindVariantRequired, "variation products must be adjusted per variant sku"))
	}

	release, err := uc.lockInventory(ctx, rec.OwnerID, rec.ProductID, rec.LocationID)
	if err != nil {
		return nil, uc.observe("adjust", err)
	}
	defer release()

	for attempt := 0; attempt < casAttempts; attempt++ {
		m := uc.newMovement(ctx, rec, model.MovementAdjustment, nil, input.NewQuantity-rec.Quantity, input.Reason, input.Notes, nil)
		m.QuantityBefore = rec.Quantity
		m.QuantityAfter = input.NewQuantity

		// Ledger first, then the store; a CAS miss compensates the
		// entry and retries against fresh state.
		if err := uc.repo.LogMovement(ctx, m); err != nil {
			return nil, uc.observe("adjust", apperr.Internal(err, "failed to append ledger entry"))
		}

		err = uc.repo.SetTotal(ctx, rec.ID, input.NewQuantity, rec.Version)
		if err == nil {
			uc.afterMovement(m)
			_ = uc.observe("adjust", nil)
			return uc.operationResult(ctx, rec.ID, m.ID)
		}
		if compErr := uc.compensate(ctx, m.ID, err); compErr != nil {
			return nil, uc.observe("adjust", compErr)
		}
		if !errors.Is(err, inventory.ErrVersionConflict) {
			return nil, uc.observe("adjust", apperr.Internal(err, "failed to update inventory record"))
		}

		if rec, err = uc.loadRecord(ctx, scope, input.InventoryID); err != nil {
			return nil, uc.observe("adjust", err)
		}
	}

	return nil, uc.observe("adjust", apperr.New(apperr.KindConflict, "inventory record is being updated concurrently"))
}

func (uc *inventoryUseCase) ApplyMovement(ctx context.Context, scope auth.Scope, input *dto.ApplyMovementInput) (*dto.StockOperationResult, error) {
	movementType := input.Type
	if movementType == "" {
		movementType = model.MovementAdjustment
	}
	switch movementType {
	case model.MovementAdjustment, model.MovementAdd, model.MovementRemove:
	default:
		return nil, uc.observe("apply_movement", apperr.Newf(apperr.KindInvalidInput, "movement type %q not allowed here", movementType))
	}
	if input.Reason == "" {
		return nil, uc.observe("apply_movement", apperr.New(apperr.KindInvalidInput, "reason is required"))
	}
	if movementType == model.MovementAdd && input.QuantityChange <= 0 {
		return nil, uc.observe("apply_movement", apperr.New(apperr.KindInvalidInput, "ADD requires a positive quantity change"))
	}
	if movementType == model.MovementRemove && input.QuantityChange >= 0 {
		return nil, uc.observe("apply_movement", apperr.New(apperr.KindInvalidInput, "REMOVE requires a negative quantity change"))
	}

	rec, err := uc.loadRecord(ctx, scope, input.InventoryID)
	if err != nil {
		return nil, uc.observe("apply_movement", err)
	}

	p, err := uc.products.FindByID(ctx, rec.ProductID)
	if err != nil {
		return nil, uc.observe("apply_movement", apperr.Internal(err, "failed to load product"))
	}

	variantSKU, err := uc.checkVariantRules(ctx, p, input.VariantSKU)
	if err != nil {
		return nil, uc.observe("apply_movement", err)
	}
	if variantSKU != nil && input.QuantityChange < 0 {
		if _, stocked := rec.VariationQuantity(*variantSKU); !stocked {
			return nil, uc.observe("apply_movement", apperr.Newf(apperr.KindVariantNotFound, "variant %q has never been stocked here", *variantSKU))
		}
	}

	m := uc.newMovement(ctx, rec, movementType, variantSKU, input.QuantityChange, input.Reason, input.Notes, nil)
	delta := &inventory.DeltaChange{
		InventoryID:  rec.ID,
		TotalDelta:   input.QuantityChange,
		VariantSKU:   variantSKU,
		VariantDelta: input.QuantityChange,
	}
	if err := uc.applyDelta(ctx, delta, m); err != nil {
		return nil, uc.observe("apply_movement", err)
	}

	uc.afterMovement(m)
	_ = uc.observe("apply_movement", nil)
	return uc.operationResult(ctx, rec.ID, m.ID)
}

func (uc *inventoryUseCase) ProductStockOperation(ctx context.Context, scope auth.Scope, input *dto.StockOperationInput) (*dto.StockOperationResult, error) {
	switch input.Type {
	case model.MovementAdd, model.MovementRemove:
	case model.MovementAdjustment:
		// Adjustment through the product surface is a set-to-value.
		return uc.SetProductStock(ctx, scope, &dto.SetStockInput{
			ProductID:   input.ProductID,
			LocationID:  input.LocationID,
			VariantSKU:  input.VariantSKU,
			NewQuantity: input.Amount,
			Reason:      input.Reason,
			Notes:       input.Notes,
		})
	default:
		return nil, uc.observe("stock_operation", apperr.Newf(apperr.KindInvalidInput, "unsupported stock operation type %q", input.Type))
	}

	if input.Amount <= 0 {
		return nil, uc.observe("stock_operation", apperr.New(apperr.KindInvalidInput, "amount must be positive"))
	}
	if input.Reason == "" {
		return nil, uc.observe("stock_operation", apperr.New(apperr.KindInvalidInput, "reason is required"))
	}

	p, loc, err := uc.resolveTarget(ctx, scope, input.ProductID, input.LocationID)
	if err != nil {
		return nil, uc.observe("stock_operation", err)
	}

	variantSKU, err := uc.checkVariantRules(ctx, p, input.VariantSKU)
	if err != nil {
		return nil, uc.observe("stock_operation", err)
	}

	rec, _, err := uc.getOrCreateRecord(ctx, p, loc)
	if err != nil {
		return nil, uc.observe("stock_operation", err)
	}

	change := input.Amount
	if input.Type == model.MovementRemove {
		change = -input.Amount
		if variantSKU != nil {
			if _, stocked := rec.VariationQuantity(*variantSKU); !stocked {
				return nil, uc.observe("stock_operation", apperr.Newf(apperr.KindVariantNotFound, "variant %q has never been stocked here", *variantSKU))
			}
		}
	}

	var referenceID *string
	if input.ReferenceID != "" {
		referenceID = &input.ReferenceID
	}

	m := uc.newMovement(ctx, rec, input.Type, variantSKU, change, input.Reason, input.Notes, referenceID)
	delta := &inventory.DeltaChange{
		InventoryID:  rec.ID,
		TotalDelta:   change,
		VariantSKU:   variantSKU,
		VariantDelta: change,
	}
	if err := uc.applyDelta(ctx, delta, m); err != nil {
		return nil, uc.observe("stock_operation", err)
	}

	uc.afterMovement(m)
	_ = uc.observe("stock_operation", nil)
	return uc.operationResult(ctx, rec.ID, m.ID)
}

func (uc *inventoryUseCase) SetProductStock(ctx context.Context, scope auth.Scope, input *dto.SetStockInput) (*dto.StockOperationResult, error) {
	if input.NewQuantity < 0 {
		return nil, uc.observe("set_stock", apperr.New(apperr.KindInvalidInput, "quantity must not be negative"))
	}
	if input.Reason == "" {
		return nil, uc.observe("set_stock", apperr.New(apperr.KindInvalidInput, "reason is required"))
	}

	p, loc, err := uc.resolveTarget(ctx, scope, input.ProductID, input.LocationID)
	if err != nil {
		return nil, uc.observe("set_stock", err)
	}

	variantSKU, err := uc.checkVariantRules(ctx, p, input.VariantSKU)
	if err != nil {
		return nil, uc.observe("set_stock", err)
	}

	rec, created, err := uc.getOrCreateRecord(ctx, p, loc)
	if err != nil {
		return nil, uc.observe("set_stock", err)
	}

	movementType := model.MovementAdjustment
	if created {
		movementType = model.MovementInitialSet
	}

	release, err := uc.lockInventory(ctx, rec.OwnerID, rec.ProductID, rec.LocationID, input.VariantSKU)
	if err != nil {
		return nil, uc.observe("set_stock", err)
	}
	defer release()

	for attempt := 0; attempt < casAttempts; attempt++ {
		var before int64
		if variantSKU != nil {
			before, _ = rec.VariationQuantity(*variantSKU)
		} else {
			before = rec.Quantity
		}

		m := uc.newMovement(ctx, rec, movementType, variantSKU, input.NewQuantity-before, input.Reason, input.Notes, nil)
		m.QuantityBefore = before
		m.QuantityAfter = input.NewQuantity

		if err := uc.repo.LogMovement(ctx, m); err != nil {
			return nil, uc.observe("set_stock", apperr.Internal(err, "failed to append ledger entry"))
		}

		if variantSKU != nil {
			err = uc.repo.SetVariation(ctx, rec.ID, *variantSKU, input.NewQuantity, input.NewQuantity-before, rec.Version)
		} else {
			err = uc.repo.SetTotal(ctx, rec.ID, input.NewQuantity, rec.Version)
		}
		if err == nil {
			uc.afterMovement(m)
			_ = uc.observe("set_stock", nil)
			return uc.operationResult(ctx, rec.ID, m.ID)
		}
		if compErr := uc.compensate(ctx, m.ID, err); compErr != nil {
			return nil, uc.observe("set_stock", compErr)
		}
		if !errors.Is(err, inventory.ErrVersionConflict) {
			return nil, uc.observe("set_stock", apperr.Internal(err, "failed to update inventory record"))
		}

		if rec, err = uc.loadRecord(ctx, scope, rec.ID); err != nil {
			return nil, uc.observe("set_stock", err)
		}
	}

	return nil, uc.observe("set_stock", apperr.New(apperr.KindConflict, "inventory record is being updated concurrently"))
}

func (uc *inventoryUseCase) TransferStock(ctx context.Context, scope auth.Scope, input *dto.TransferStockInput) (*dto.TransferStockResult, error) {
	if input.Amount <= 0 {
		return nil, uc.observe("transfer", apperr.New(apperr.KindInvalidInput, "amount must be positive"))
	}
	if input.FromLocationID == input.ToLocationID {
		return nil, uc.observe("transfer", apperr.New(apperr.KindSameLocation, "source and destination locations are the same"))
	}

	p, src, err := uc.resolveTarget(ctx, scope, input.ProductID, input.FromLocationID)
	if err != nil {
		return nil, uc.observe("transfer", err)
	}

	dst, err := uc.locations.FindByID(ctx, input.ToLocationID)
	if err != nil {
		return nil, uc.observe("transfer", apperr.Internal(err, "failed to load location"))
	}
	if dst == nil {
		return nil, uc.observe("transfer", apperr.New(apperr.KindNotFound, "destination location not found"))
	}
	// Both sides must belong to the same owner; a cross-owner transfer
	// is rejected even in administrative scope.
	if err := scope.Authorize(dst.OwnerID); err != nil {
		return nil, uc.observe("transfer", err)
	}
	if dst.OwnerID != src.OwnerID {
		return nil, uc.observe("transfer", apperr.New(apperr.KindPermissionDenied, "locations belong to different owners"))
	}

	variantSKU, err := uc.checkVariantRules(ctx, p, input.VariantSKU)
	if err != nil {
		return nil, uc.observe("transfer", err)
	}

	srcRec, err := uc.repo.GetByProductLocation(ctx, p.ID, src.ID)
	if err != nil {
		return nil, uc.observe("transfer", apperr.Internal(err, "failed to load source inventory"))
	}
	if srcRec == nil {
		return nil, uc.observe("transfer", apperr.New(apperr.KindNotFound, "no inventory at source location"))
	}

	// Check availability before touching the destination so a rejected
	// transfer does not leave a lazily created record behind.
	available := srcRec.Quantity
	if variantSKU != nil {
		available, _ = srcRec.VariationQuantity(*variantSKU)
	}
	if available < input.Amount {
		return nil, uc.observe("transfer", apperr.Newf(apperr.KindInsufficientStock, "only %d units available at source", available))
	}

	dstRec, _, err := uc.getOrCreateRecord(ctx, p, dst)
	if err != nil {
		return nil, uc.observe("transfer", err)
	}

	referenceID := input.ReferenceID
	if referenceID == "" {
		referenceID = uuid.New().String()
	}

	release, err := uc.lockInventory(ctx, src.OwnerID, p.ID, input.VariantSKU)
	if err != nil {
		return nil, uc.observe("transfer", err)
	}
	defer release()

	for attempt := 0; attempt < casAttempts; attempt++ {
		var srcBefore, dstBefore int64
		if variantSKU != nil {
			srcBefore, _ = srcRec.VariationQuantity(*variantSKU)
			dstBefore, _ = dstRec.VariationQuantity(*variantSKU)
		} else {
			srcBefore = srcRec.Quantity
			dstBefore = dstRec.Quantity
		}
		if srcBefore < input.Amount {
			return nil, uc.observe("transfer", apperr.Newf(apperr.KindInsufficientStock, "only %d units available at source", srcBefore))
		}

		out := uc.newMovement(ctx, srcRec, model.MovementTransferOut, variantSKU, -input.Amount, "stock transfer", input.Notes, &referenceID)
		out.QuantityBefore = srcBefore
		out.QuantityAfter = srcBefore - input.Amount

		in := uc.newMovement(ctx, dstRec, model.MovementTransferIn, variantSKU, input.Amount, "stock transfer", input.Notes, &referenceID)
		in.QuantityBefore = dstBefore
		in.QuantityAfter = dstBefore + input.Amount

		err = uc.repo.ApplyTransfer(ctx, &inventory.TransferApply{
			OutMovement:   out,
			InMovement:    in,
			SourceID:      srcRec.ID,
			SourceVersion: srcRec.Version,
			DestID:        dstRec.ID,
			DestVersion:   dstRec.Version,
			VariantSKU:    variantSKU,
			Amount:        input.Amount,
		})
		if err == nil {
			uc.afterMovement(out)
			uc.afterMovement(in)
			uc.logger.Info("stock transferred",
				zap.String("product_id", p.ID),
				zap.String("from", src.ID),
				zap.String("to", dst.ID),
				zap.Int64("amount", input.Amount),
				zap.String("reference_id", referenceID),
			)
			_ = uc.observe("transfer", nil)
			return &dto.TransferStockResult{
				TransferOutMovementID: out.ID,
				TransferInMovementID:  in.ID,
				ReferenceID:           referenceID,
			}, nil
		}
		if errors.Is(err, inventory.ErrStockGuard) {
			return nil, uc.observe("transfer", apperr.New(apperr.KindInsufficientStock, "insufficient stock at source location"))
		}
		if !errors.Is(err, inventory.ErrVersionConflict) {
			return nil, uc.observe("transfer", apperr.Internal(err, "failed to apply transfer"))
		}

		if srcRec, err = uc.repo.GetByProductLocation(ctx, p.ID, src.ID); err != nil || srcRec == nil {
			return nil, uc.observe("transfer", apperr.Internal(err, "failed to reload source inventory"))
		}
		if dstRec, err = uc.repo.GetByProductLocation(ctx, p.ID, dst.ID); err != nil || dstRec == nil {
			return nil, uc.observe("transfer", apperr.Internal(err, "failed to reload destination inventory"))
		}
	}

	return nil, uc.observe("transfer", apperr.New(apperr.KindConflict, "inventory is being updated concurrently"))
}

// --- helpers ---

// resolveTarget loads the product and location and runs the scope guard
// against the location's owner (and the product's, which denormalizes
// the same owner).
func (uc *inventoryUseCase) resolveTarget(ctx context.Context, scope auth.Scope, productID, locationID string) (*model.Product, *model.Location, error) {
	p, err := uc.products.FindByID(ctx, productID)
	if err != nil {
		return nil, nil, apperr.Internal(err, "failed to load product")
	}
	if p == nil {
		return nil, nil, apperr.New(apperr.KindNotFound, "product not found")
	}

	loc, err := uc.locations.FindByID(ctx, locationID)
	if err != nil {
		return nil, nil, apperr.Internal(err, "failed to load location")
	}
	if loc == nil {
		return nil, nil, apperr.New(apperr.KindNotFound, "location not found")
	}

	if err := scope.Authorize(loc.OwnerID); err != nil {
		return nil, nil, err
	}
	if err := scope.Authorize(p.OwnerID); err != nil {
		return nil, nil, err
	}
	return p, loc, nil
}

func (uc *inventoryUseCase) loadRecord(ctx context.Context, scope auth.Scope, inventoryID string) (*model.InventoryRecord, error) {
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
	return rec, nil
}

// checkVariantRules enforces the variable-product rule: variation
// products need a SKU from their catalog, simple products take none.
func (uc *inventoryUseCase) checkVariantRules(ctx context.Context, p *model.Product, sku string) (*string, error) {
	if p == nil {
		return nil, apperr.New(apperr.KindNotFound, "product not found")
	}
	if !p.HasVariants() {
		if sku != "" {
			return nil, apperr.New(apperr.KindInvalidInput, "variant sku not allowed for a simple product")
		}
		return nil, nil
	}

	if sku == "" {
		return nil, apperr.New(apperr.KindVariantRequired, "variant sku is required for a variation product")
	}
	known, err := uc.products.HasVariantSKU(ctx, p.ID, sku)
	if err != nil {
		return nil, apperr.Internal(err, "failed to check variant sku")
	}
	if !known {
		return nil, apperr.Newf(apperr.KindInvalidInput, "unknown variant sku %q", sku)
	}
	return &sku, nil
}

func (uc *inventoryUseCase) createRecord(ctx context.Context, p *model.Product, loc *model.Location) (*model.InventoryRecord, error) {
	now := time.Now()
	rec := &model.InventoryRecord{
		BaseModel:  model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OwnerID:    loc.OwnerID,
		ProductID:  p.ID,
		LocationID: loc.ID,
		Quantity:   0,
		Version:    0,
	}
	if err := uc.repo.Create(ctx, rec); err != nil {
		if errors.Is(err, inventory.ErrDuplicateRecord) {
			return nil, apperr.New(apperr.KindAlreadyInitialized, "stock already initialized for this product and location")
		}
		return nil, apperr.Internal(err, "failed to create inventory record")
	}
	return rec, nil
}

// getOrCreateRecord returns the record for (product, location), lazily
// creating it with quantity zero.
func (uc *inventoryUseCase) getOrCreateRecord(ctx context.Context, p *model.Product, loc *model.Location) (*model.InventoryRecord, bool, error) {
	rec, err := uc.repo.GetByProductLocation(ctx, p.ID, loc.ID)
	if err != nil {
		return nil, false, apperr.Internal(err, "failed to load inventory record")
	}
	if rec != nil {
		return rec, false, nil
	}

	rec, err = uc.createRecord(ctx, p, loc)
	if err != nil {
		if apperr.IsKind(err, apperr.KindAlreadyInitialized) {
			// Lost a create race; the winner's record serves.
			rec, err = uc.repo.GetByProductLocation(ctx, p.ID, loc.ID)
			if err != nil || rec == nil {
				return nil, false, apperr.Internal(err, "failed to reload inventory record")
			}
			return rec, false, nil
		}
		return nil, false, err
	}
	return rec, true, nil
}

func (uc *inventoryUseCase) newMovement(ctx context.Context, rec *model.InventoryRecord, t model.MovementType, sku *string, change int64, reason, notes string, referenceID *string) *model.StockMovement {
	var createdBy *string
	if actor := auth.GetActorID(ctx); actor != "" {
		createdBy = &actor
	}

	return &model.StockMovement{
		ID:             uuid.New().String(),
		OwnerID:        rec.OwnerID,
		ProductID:      rec.ProductID,
		LocationID:     rec.LocationID,
		InventoryID:    rec.ID,
		VariantSKU:     sku,
		Type:           t,
		QuantityChange: change,
		Reason:         reason,
		Notes:          notes,
		ReferenceID:    referenceID,
		CreatedBy:      createdBy,
		CreatedAt:      time.Now(),
	}
}

// applyDelta runs a guarded atomic increment and maps its failures onto
// the error taxonomy.
func (uc *inventoryUseCase) applyDelta(ctx context.Context, d *inventory.DeltaChange, m *model.StockMovement) error {
	err := uc.repo.ApplyDeltaWithMovement(ctx, d, m)
	if err == nil {
		return nil
	}
	if errors.Is(err, inventory.ErrStockGuard) {
		return apperr.New(apperr.KindNegativeStock, "operation would drive stock below zero")
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.KindNotFound, "inventory record not found")
	}
	return apperr.Internal(err, "failed to apply stock change")
}

// compensate removes a ledger entry whose paired store update failed.
// When the delete itself fails the divergence is surfaced, not
// swallowed.
func (uc *inventoryUseCase) compensate(ctx context.Context, movementID string, applyErr error) error {
	if uc.metrics != nil {
		uc.metrics.Compensations.Inc()
	}
	if delErr := uc.repo.DeleteMovement(ctx, movementID); delErr != nil {
		uc.logger.Error("ledger and store diverged: compensating delete failed",
			zap.String("movement_id", movementID),
			zap.NamedError("apply_error", applyErr),
			zap.NamedError("compensation_error", delErr),
		)
		return apperr.Internal(
			fmt.Errorf("store update failed: %v; ledger compensation failed: %v", applyErr, delErr),
			"inventory update failed and the ledger entry could not be removed",
		)
	}
	return nil
}

func (uc *inventoryUseCase) operationResult(ctx context.Context, inventoryID, movementID string) (*dto.StockOperationResult, error) {
	rec, err := uc.repo.GetByID(ctx, inventoryID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to reload inventory record")
	}
	return &dto.StockOperationResult{Inventory: rec, MovementID: movementID}, nil
}

// lockInventory serializes read-modify-write sequences on one stock
// line through a redis lock. Runs unlocked when no redis is configured.
func (uc *inventoryUseCase) lockInventory(ctx context.Context, parts ...string) (func(), error) {
	if uc.cache == nil {
		return func() {}, nil
	}

	keyParts := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			keyParts = append(keyParts, part)
		}
	}
	key := "lock:inventory:" + strings.Join(keyParts, ":")
	value := uuid.New().String()

	for i := 0; i < lockAttempts; i++ {
		ok, err := uc.cache.AcquireLock(ctx, key, value, lockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire inventory lock", zap.Error(err))
		}
		if ok {
			return func() {
				_ = uc.cache.ReleaseLock(context.Background(), key, value)
			}, nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	return nil, apperr.New(apperr.KindConflict, "inventory busy, please try again later")
}

// observe counts the operation outcome and passes the error through so
// call sites can return it directly.
func (uc *inventoryUseCase) observe(operation string, err error) error {
	if uc.metrics != nil {
		status := "ok"
		if err != nil {
			status = string(apperr.KindOf(err))
		}
		uc.metrics.StockOperations.WithLabelValues(operation, status).Inc()
	}
	return err
}

const movementIndexMapping = `{
    "mappings": {
        "properties": {
            "owner_id": { "type": "keyword" },
            "product_id": { "type": "keyword" },
            "location_id": { "type": "keyword" },
            "inventory_id": { "type": "keyword" },
            "variant_sku": { "type": "keyword" },
            "movement_type": { "type": "keyword" },
            "quantity_change": { "type": "long" },
            "quantity_after": { "type": "long" },
            "reason": { "type": "text" },
            "notes": { "type": "text" },
            "created_at": { "type": "date" }
        }
    }
}`

// afterMovement fans the committed ledger entry out to metrics and the
// search index. Indexing is best-effort; the ledger in postgres stays
// the source of truth.
func (uc *inventoryUseCase) afterMovement(m *model.StockMovement) {
	if uc.metrics != nil {
		uc.metrics.LedgerEntries.WithLabelValues(string(m.Type)).Inc()
	}
	if uc.es == nil {
		return
	}

	entry := *m
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		const indexName = "stock_movements"
		_ = uc.es.CreateIndex(ctx, indexName, movementIndexMapping)
		if err := uc.es.Index(ctx, indexName, entry.ID, entry); err != nil {
			uc.logger.Error("failed to index movement", zap.String("movement_id", entry.ID), zap.Error(err))
		}
	}()
}
