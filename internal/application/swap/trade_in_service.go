package swap

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/phoneshop/backend/internal/domain/swap"
	"github.com/phoneshop/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// TradeInSaleLinker attaches the resale of a trade-in item to its settlement
type TradeInSaleLinker interface {
	LinkTradeInSaleLeg(ctx context.Context, tenantID, swapID, saleID uuid.UUID) (*LinkLegResult, error)
}

// TradeInService manages trade-in items after the swap that created them
type TradeInService struct {
	tradeInRepo    swap.TradeInItemRepository
	swapRepo       swap.SwapRepository
	settlements    TradeInSaleLinker
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewTradeInService creates a new TradeInService
func NewTradeInService(
	tradeInRepo swap.TradeInItemRepository,
	swapRepo swap.SwapRepository,
	settlements TradeInSaleLinker,
	logger *zap.Logger,
) *TradeInService {
	return &TradeInService{
		tradeInRepo: tradeInRepo,
		swapRepo:    swapRepo,
		settlements: settlements,
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher
func (s *TradeInService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the time source
func (s *TradeInService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// GetBySwap returns the trade-in item of a swap
func (s *TradeInService) GetBySwap(ctx context.Context, tenantID, swapID uuid.UUID) (*TradeInItemResponse, error) {
	item, err := s.tradeInRepo.FindBySwapID(ctx, tenantID, swapID)
	if err != nil {
		return nil, notFoundOr(err, "Trade-in item", "read trade-in item")
	}
	resp := ToTradeInItemResponse(item)
	return &resp, nil
}

// GetByID returns a trade-in item
func (s *TradeInService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*TradeInItemResponse, error) {
	item, err := s.tradeInRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, notFoundOr(err, "Trade-in item", "read trade-in item")
	}
	resp := ToTradeInItemResponse(item)
	return &resp, nil
}

// ListAvailableForResale lists in-stock trade-in items
func (s *TradeInService) ListAvailableForResale(ctx context.Context, tenantID uuid.UUID, filter TradeInListFilter) ([]TradeInItemResponse, int64, error) {
	items, err := s.tradeInRepo.FindAvailableForResale(ctx, tenantID, filter.toShared())
	if err != nil {
		return nil, 0, shared.NewTransactionFailure("list trade-in items", err)
	}
	total, err := s.tradeInRepo.CountAvailableForResale(ctx, tenantID)
	if err != nil {
		return nil, 0, shared.NewTransactionFailure("count trade-in items", err)
	}
	resp := make([]TradeInItemResponse, len(items))
	for i := range items {
		resp[i] = ToTradeInItemResponse(&items[i])
	}
	return resp, total, nil
}

// MarkSold records the resale of a trade-in item and links it as the
// trade-in leg of the settlement. Replaying the same sale returns the
// current state without publishing again; a different sale is rejected.
func (s *TradeInService) MarkSold(ctx context.Context, tenantID, itemID uuid.UUID, req MarkSoldRequest) (*MarkSoldResult, error) {
	log := logger.FromContext(ctx, s.logger).With(
		zap.String("tenant_id", tenantID.String()),
		zap.String("trade_in_item_id", itemID.String()),
		zap.String("sale_id", req.SaleID.String()),
	)

	item, err := s.tradeInRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, notFoundOr(err, "Trade-in item", "read trade-in item")
	}

	changed, err := item.MarkSold(req.SaleID, req.ActualResalePrice, s.now())
	if err != nil {
		return nil, err
	}
	if changed {
		persisted, err := s.tradeInRepo.MarkSold(ctx, item)
		if err != nil {
			return nil, shared.NewTransactionFailure("mark trade-in item sold", err)
		}
		if !persisted {
			// Lost a race with another sale of the same item
			item, err = s.tradeInRepo.FindByIDForTenant(ctx, tenantID, itemID)
			if err != nil {
				return nil, notFoundOr(err, "Trade-in item", "read trade-in item")
			}
			if item.SaleID == nil || *item.SaleID != req.SaleID {
				return nil, shared.ErrAlreadySold
			}
			changed = false
		}
	}

	// The follow-up steps are idempotent, so a replay also repairs a leg that
	// was not linked when the first call was interrupted.
	if _, err := s.swapRepo.MarkResold(ctx, tenantID, item.SwapID); err != nil {
		log.Warn("Failed to mark swap resold", zap.String("swap_id", item.SwapID.String()), zap.Error(err))
	}
	link, err := s.settlements.LinkTradeInSaleLeg(ctx, tenantID, item.SwapID, req.SaleID)
	if err != nil {
		if isSettlementConflict(err) {
			log.Warn("Trade-in sale conflicts with settlement leg", zap.Error(err))
		}
		return nil, err
	}

	if changed {
		log.Info("Trade-in item sold", zap.String("resale_price", item.ResellPrice.String()))
		if s.eventPublisher != nil {
			if err := s.eventPublisher.Publish(ctx, swap.NewTradeInSoldEvent(item)); err != nil {
				log.Warn("Failed to publish trade-in sold event", zap.Error(err))
			}
		}
	}

	return &MarkSoldResult{
		Item:            ToTradeInItemResponse(item),
		AlreadyRecorded: !changed,
		Settlement:      link,
	}, nil
}
