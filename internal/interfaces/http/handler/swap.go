package handler

import (
	"github.com/gin-gonic/gin"
	appswap "github.com/phoneshop/backend/internal/application/swap"
	"go.uber.org/zap"
)

// SwapHandler handles swap API endpoints
type SwapHandler struct {
	BaseHandler
	swaps SwapOperations
}

// NewSwapHandler creates a new SwapHandler
func NewSwapHandler(swaps SwapOperations, logger *zap.Logger) *SwapHandler {
	return &SwapHandler{
		BaseHandler: BaseHandler{logger: logger},
		swaps:       swaps,
	}
}

// RegisterRoutes mounts the swap routes on rg
func (h *SwapHandler) RegisterRoutes(rg *gin.RouterGroup) {
	swaps := rg.Group("/swaps")
	swaps.POST("", h.Create)
	swaps.GET("", h.List)
	swaps.GET("/code/:code", h.GetByCode)
	swaps.GET("/:id", h.GetByID)
}

// Create godoc
// @Summary      Record a device swap
// @Description  Takes the company item out of stock, records the trade-in and opens the profit settlement in one transaction
// @Tags         swaps
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        request body appswap.CreateSwapRequest true "Swap request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /swaps [post]
func (h *SwapHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req appswap.CreateSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.swaps.CreateSwap(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// List godoc
// @Summary      List swaps
// @Tags         swaps
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        status query string false "Swap status"
// @Param        customer_id query string false "Customer ID"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response
// @Router       /swaps [get]
func (h *SwapHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter appswap.SwapListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	items, total, err := h.swaps.ListSwaps(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get a swap with its trade-in item and settlement
// @Tags         swaps
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Swap ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /swaps/{id} [get]
func (h *SwapHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.swaps.GetSwap(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// GetByCode godoc
// @Summary      Get a swap by transaction code
// @Tags         swaps
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        code path string true "Transaction code, e.g. SWP-20260314-7KQ2MX"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /swaps/code/{code} [get]
func (h *SwapHandler) GetByCode(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	detail, err := h.swaps.GetSwapByCode(c.Request.Context(), tenantID, c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}
