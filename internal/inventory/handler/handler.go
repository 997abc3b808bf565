package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stocklane/inventory-service/internal/apperr"
	"github.com/stocklane/inventory-service/internal/auth"
	"github.com/stocklane/inventory-service/internal/inventory"
	"github.com/stocklane/inventory-service/internal/inventory/dto"
	"github.com/stocklane/inventory-service/internal/model"
	"github.com/stocklane/inventory-service/pkg/logger"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{uc: uc, logger: log}
}

func (h *InventoryHandler) Register(r *gin.RouterGroup) {
	r.POST("/inventory/initialize", h.InitializeStock)
	r.GET("/inventory", h.GetLevels)
	r.GET("/inventory/low-stock", h.ListLowStock)
	r.POST("/inventory/transfer", h.TransferStock)
	r.POST("/inventory/:id/adjust", h.AdjustStock)
	r.POST("/inventory/:id/movements", h.ApplyMovement)
	r.GET("/inventory/:id/movements", h.GetMovementHistory)

	r.GET("/movements", h.GetMovements)

	r.PUT("/products/:id/stock", h.SetProductStock)
	r.POST("/products/:id/stock-operations", h.ProductStockOperation)
	r.GET("/products/:id/stock-total", h.GetProductStockTotal)
	r.GET("/products/:id/stock/:sku", h.GetStockForSKU)
	r.GET("/products/:id/movements/latest", h.GetLatestMovements)

	r.GET("/reports/stock-value", h.GetStockValue)
}

type initializeStockRequest struct {
	ProductID       string `json:"product_id" binding:"required"`
	LocationID      string `json:"location_id" binding:"required"`
	InitialQuantity int64  `json:"initial_quantity" binding:"gte=0"`
	Notes           string `json:"notes"`
}

func (h *InventoryHandler) InitializeStock(c *gin.Context) {
	var req initializeStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Wrap(err, apperr.KindInvalidInput, "invalid request body"))
		return
	}

	ctx := c.Request.Context()
	result, err := h.uc.InitializeStock(ctx, auth.ScopeFromContext(ctx), &dto.InitializeStockInput{
		ProductID:       req.ProductID,
		LocationID:      req.LocationID,
		InitialQuantity: req.InitialQuantity,
		Notes:           req.Notes,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type adjustStockRequest struct {
	NewQuantity int64  `json:"new_quantity" binding:"gte=0"`
	Reason      string `json:"reason" binding:"required"`
	Notes       string `json:"notes"`
}

func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Wrap(err, apperr.KindInvalidInput, "invalid request body"))
		return
	}

	ctx := c.Request.Context()
	result, err := h.uc.AdjustStock(ctx, auth.ScopeFromContext(ctx), &dto.AdjustStockInput{
		InventoryID: c.Param("id"),
		NewQuantity: req.NewQuantity,
		Reason:      req.Reason,
		Notes:       req.Notes,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type applyMovementRequest struct {
	VariantSKU     string `json:"variant_sku"`
	QuantityChange int64  `json:"quantity_change"`
	Reason         string `json:"reason" binding:"required"`
	Notes          string `json:"notes"`
	Type           string `json:"type"`
}

func (h *InventoryHandler) ApplyMovement(c *gin.Context) {
	var req applyMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Wrap(err, apperr.KindInvalidInput, "invalid request body"))
		return
	}

	ctx := c.Request.Context()
	result, err := h.uc.ApplyMovement(ctx, auth.ScopeFromContext(ctx), &dto.ApplyMovementInput{
		InventoryID:    c.Param("id"),
		VariantSKU:     req.VariantSKU,
		QuantityChange: req.QuantityChange,
		Reason:         req.Reason,
		Notes:          req.Notes,
		Type:           model.MovementType(req.Type),
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type transferStockRequest struct {
	ProductID      string `json:"product_id" binding:"required"`
	FromLocationID string `json:"from_location_id" binding:"required"`
	ToLocationID   string `json:"to_location_id" binding:"required"`
	VariantSKU     string `json:"variant_sku"`
	Amount         int64  `json:"amount" binding:"required,gt=0"`
	Notes          string `json:"notes"`
	ReferenceID    string `json:"reference_id"`
}

func (h *InventoryHandler) TransferStock(c *gin.Context) {
	var req transferStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Wrap(err, apperr.KindInvalidInput, "invalid request body"))
		return
	}

	ctx := c.Request.Context()
	result, err := h.uc.TransferStock(ctx, auth.ScopeFromContext(ctx), &dto.TransferStockInput{
		ProductID:      req.ProductID,
		FromLocationID: req.FromLocationID,
		ToLocationID:   req.ToLocationID,
		VariantSKU:     req.VariantSKU,
		Amount:         req.Amount,
		Notes:          req.Notes,
		ReferenceID:    req.ReferenceID,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type setStockRequest struct {
	LocationID  string `json:"location_id" binding:"required"`
	VariantSKU  string `json:"variant_sku"`
	NewQuantity int64  `json:"new_quantity" binding:"gte=0"`
	Reason      string `json:"reason" binding:"required"`
	Notes       string `json:"notes"`
}

func (h *InventoryHandler) SetProductStock(c *gin.Context) {
	var req setStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Wrap(err, apperr.KindInvalidInput, "invalid request body"))
		return
	}

	ctx := c.Request.Context()
	result, err := h.uc.SetProductStock(ctx, auth.ScopeFromContext(ctx), &dto.SetStockInput{
		ProductID:   c.Param("id"),
		LocationID:  req.LocationID,
		VariantSKU:  req.VariantSKU,
		NewQuantity: req.NewQuantity,
		Reason:      req.Reason,
		Notes:       req.Notes,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type stockOperationRequest struct {
	LocationID  string `json:"location_id" binding:"required"`
	VariantSKU  string `json:"variant_sku"`
	Type        string `json:"type" binding:"required"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Reason      string `json:"reason" binding:"required"`
	Notes       string `json:"notes"`
	ReferenceID string `json:"reference_id"`
}

func (h *InventoryHandler) ProductStockOperation(c *gin.Context) {
	var req stockOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Wrap(err, apperr.KindInvalidInput, "invalid request body"))
		return
	}

	ctx := c.Request.Context()
	result, err := h.uc.ProductStockOperation(ctx, auth.ScopeFromContext(ctx), &dto.StockOperationInput{
		ProductID:   c.Param("id"),
		LocationID:  req.LocationID,
		VariantSKU:  req.VariantSKU,
		Type:        model.MovementType(req.Type),
		Amount:      req.Amount,
		Reason:      req.Reason,
		Notes:       req.Notes,
		ReferenceID: req.ReferenceID,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *InventoryHandler) GetLevels(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := pagination(c)

	items, total, err := h.uc.GetInventoryLevels(ctx, auth.ScopeFromContext(ctx), &dto.InventoryFilters{
		ProductID:  c.Query("product_id"),
		LocationID: c.Query("location_id"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := pagination(c)

	items, total, err := h.uc.ListLowStock(ctx, auth.ScopeFromContext(ctx), page, pageSize)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *InventoryHandler) GetMovements(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := pagination(c)

	items, total, err := h.uc.GetMovements(ctx, auth.ScopeFromContext(ctx), &dto.MovementFilters{
		ProductID:    c.Query("product_id"),
		LocationID:   c.Query("location_id"),
		MovementType: c.Query("type"),
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *InventoryHandler) GetMovementHistory(c *gin.Context) {
	ctx := c.Request.Context()
	items, err := h.uc.GetMovementHistory(ctx, auth.ScopeFromContext(ctx), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *InventoryHandler) GetLatestMovements(c *gin.Context) {
	ctx := c.Request.Context()
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	items, err := h.uc.GetLatestMovementsForProduct(ctx, auth.ScopeFromContext(ctx), c.Param("id"), limit)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *InventoryHandler) GetProductStockTotal(c *gin.Context) {
	ctx := c.Request.Context()
	total, err := h.uc.GetProductStockTotal(ctx, auth.ScopeFromContext(ctx), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": c.Param("id"), "total_quantity": total})
}

func (h *InventoryHandler) GetStockForSKU(c *gin.Context) {
	ctx := c.Request.Context()
	total, err := h.uc.GetStockForSKU(ctx, c.Param("id"), c.Param("sku"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": c.Param("id"), "sku": c.Param("sku"), "quantity": total})
}

func (h *InventoryHandler) GetStockValue(c *gin.Context) {
	ctx := c.Request.Context()
	value, err := h.uc.GetStockValue(ctx, auth.ScopeFromContext(ctx))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_value": value})
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}
	return page, pageSize
}
