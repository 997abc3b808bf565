package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stocklane/inventory-service/internal/apperr"
	"github.com/stocklane/inventory-service/internal/auth"
	"github.com/stocklane/inventory-service/internal/location"
	"github.com/stocklane/inventory-service/internal/location/dto"
	"github.com/stocklane/inventory-service/pkg/logger"
)

type LocationHandler struct {
	uc     location.UseCase
	logger logger.ZapLogger
}

func NewLocationHandler(uc location.UseCase, log logger.ZapLogger) *LocationHandler {
	return &LocationHandler{uc: uc, logger: log}
}

func (h *LocationHandler) Register(r *gin.RouterGroup) {
	r.POST("/locations", h.Create)
	r.GET("/locations", h.List)
	r.GET("/locations/totals", h.ListWithTotals)
	r.GET("/locations/:id", h.Get)
	r.DELETE("/locations/:id", h.Delete)
}

type createLocationRequest struct {
	OwnerID string `json:"owner_id"`
	Name    string `json:"name" binding:"required"`
}

func (h *LocationHandler) Create(c *gin.Context) {
	var req createLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Wrap(err, apperr.KindInvalidInput, "invalid request body"))
		return
	}

	ctx := c.Request.Context()
	loc, err := h.uc.CreateLocation(ctx, auth.ScopeFromContext(ctx), &dto.CreateLocationInput{
		OwnerID: req.OwnerID,
		Name:    req.Name,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, loc)
}

func (h *LocationHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	loc, err := h.uc.GetLocation(ctx, auth.ScopeFromContext(ctx), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

func (h *LocationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := pagination(c)

	locations, total, err := h.uc.ListLocations(ctx, auth.ScopeFromContext(ctx), page, pageSize)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": locations, "total": total})
}

func (h *LocationHandler) ListWithTotals(c *gin.Context) {
	ctx := c.Request.Context()
	totals, err := h.uc.GetLocationsWithTotals(ctx, auth.ScopeFromContext(ctx))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": totals})
}

func (h *LocationHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.uc.DeleteLocation(ctx, auth.ScopeFromContext(ctx), c.Param("id")); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
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
