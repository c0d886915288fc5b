package handler

import (
	"github.com/gin-gonic/gin"
	appswap "github.com/phoneshop/backend/internal/application/swap"
	"go.uber.org/zap"
)

// TradeInHandler handles trade-in item endpoints
type TradeInHandler struct {
	BaseHandler
	tradeIns TradeInOperations
}

// NewTradeInHandler creates a new TradeInHandler
func NewTradeInHandler(tradeIns TradeInOperations, logger *zap.Logger) *TradeInHandler {
	return &TradeInHandler{
		BaseHandler: BaseHandler{logger: logger},
		tradeIns:    tradeIns,
	}
}

// RegisterRoutes mounts the trade-in routes on rg
func (h *TradeInHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/swaps/:id/trade-in", h.GetBySwap)

	items := rg.Group("/trade-ins")
	items.GET("/available", h.ListAvailable)
	items.GET("/:id", h.GetByID)
	items.POST("/:id/sell", h.MarkSold)
}

// GetBySwap returns the trade-in item received in a swap
func (h *TradeInHandler) GetBySwap(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	swapID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	item, err := h.tradeIns.GetBySwap(c.Request.Context(), tenantID, swapID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// GetByID returns a trade-in item
func (h *TradeInHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	item, err := h.tradeIns.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// ListAvailable lists trade-in items still in stock
func (h *TradeInHandler) ListAvailable(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter appswap.TradeInListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	items, total, err := h.tradeIns.ListAvailableForResale(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// MarkSold godoc
// @Summary      Record the resale of a trade-in item
// @Description  Marks the item sold and links the sale as the trade-in leg of the settlement. Replaying the same sale is a no-op.
// @Tags         trade-ins
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Trade-in item ID"
// @Param        request body appswap.MarkSoldRequest true "Resale"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /trade-ins/{id}/sell [post]
func (h *TradeInHandler) MarkSold(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req appswap.MarkSoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.tradeIns.MarkSold(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
