package swap

import (
	"context"

	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/phoneshop/backend/internal/domain/swap"
	"go.uber.org/zap"
)

// TradeInRelistHandler lists a freshly traded-in device in the catalog so it
// can be resold at the POS. Relisting is best effort: failures are logged and
// never surface to the swap that triggered it.
type TradeInRelistHandler struct {
	tradeInRepo swap.TradeInItemRepository
	catalog     swap.CatalogGateway
	logger      *zap.Logger
}

// NewTradeInRelistHandler creates a new TradeInRelistHandler
func NewTradeInRelistHandler(tradeInRepo swap.TradeInItemRepository, catalog swap.CatalogGateway, logger *zap.Logger) *TradeInRelistHandler {
	return &TradeInRelistHandler{
		tradeInRepo: tradeInRepo,
		catalog:     catalog,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *TradeInRelistHandler) EventTypes() []string {
	return []string{swap.EventTypeSwapCreated}
}

// Handle relists the trade-in item of a created swap
func (h *TradeInRelistHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	created, ok := event.(*swap.SwapCreatedEvent)
	if !ok {
		h.logger.Warn("Unexpected event type", zap.String("event_type", event.EventType()))
		return nil
	}
	log := h.logger.With(
		zap.String("tenant_id", created.TenantID().String()),
		zap.String("swap_id", created.SwapID.String()),
		zap.String("trade_in_item_id", created.TradeInItemID.String()),
	)

	item, err := h.tradeInRepo.FindByIDForTenant(ctx, created.TenantID(), created.TradeInItemID)
	if err != nil {
		log.Warn("Relist skipped, trade-in item unavailable", zap.Error(err))
		return nil
	}
	if item.LinkedInventoryID != nil || item.IsSold() {
		return nil
	}

	inventoryID, err := h.catalog.InsertFromTradeIn(ctx, item.RelistAttrs())
	if err != nil {
		log.Warn("Failed to relist trade-in item", zap.Error(err))
		return nil
	}
	linked, err := h.tradeInRepo.LinkInventory(ctx, item.TenantID, item.ID, inventoryID)
	if err != nil {
		log.Warn("Failed to link relisted inventory", zap.String("inventory_id", inventoryID.String()), zap.Error(err))
		return nil
	}
	if linked {
		log.Info("Trade-in item relisted", zap.String("inventory_id", inventoryID.String()))
	}
	return nil
}

var _ shared.EventHandler = (*TradeInRelistHandler)(nil)
