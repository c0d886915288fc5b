package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appswap "github.com/phoneshop/backend/internal/application/swap"
	"go.uber.org/zap"
)

// SettlementHandler handles profit settlement endpoints
type SettlementHandler struct {
	BaseHandler
	settlements SettlementOperations
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(settlements SettlementOperations, logger *zap.Logger) *SettlementHandler {
	return &SettlementHandler{
		BaseHandler: BaseHandler{logger: logger},
		settlements: settlements,
	}
}

// RegisterRoutes mounts the settlement routes on rg
func (h *SettlementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/swaps/:id/settlement", h.GetBySwap)
	rg.POST("/swaps/:id/settlement/company-leg", h.LinkCompanyLeg)
	rg.POST("/swaps/:id/settlement/trade-in-leg", h.LinkTradeInLeg)
	rg.GET("/settlements/stats", h.Stats)
}

// GetBySwap returns the settlement opened by a swap
func (h *SettlementHandler) GetBySwap(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	swapID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	settlement, err := h.settlements.GetBySwap(c.Request.Context(), tenantID, swapID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settlement)
}

// LinkCompanyLeg godoc
// @Summary      Link the sale of the company item
// @Description  Links a completed POS sale as the company leg; finalizes the settlement when the trade-in leg is already linked
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Swap ID"
// @Param        request body appswap.LinkLegRequest true "Sale"
// @Success      200 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /swaps/{id}/settlement/company-leg [post]
func (h *SettlementHandler) LinkCompanyLeg(c *gin.Context) {
	h.linkLeg(c, h.settlements.LinkCompanySaleLeg)
}

// LinkTradeInLeg links the resale of the trade-in item
func (h *SettlementHandler) LinkTradeInLeg(c *gin.Context) {
	h.linkLeg(c, h.settlements.LinkTradeInSaleLeg)
}

type linkFunc func(ctx context.Context, tenantID, swapID, saleID uuid.UUID) (*appswap.LinkLegResult, error)

func (h *SettlementHandler) linkLeg(c *gin.Context, link linkFunc) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	swapID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req appswap.LinkLegRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := link(c.Request.Context(), tenantID, swapID, req.SaleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Stats returns aggregate settlement figures for the tenant
func (h *SettlementHandler) Stats(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	stats, err := h.settlements.GetStats(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
