package swap

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/phoneshop/backend/internal/domain/swap"
	"github.com/phoneshop/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// DefaultMaxResolutionAttempts bounds automatic retries of sale resolution
const DefaultMaxResolutionAttempts = 20

// SettlementService attaches POS sales to settlement legs and computes
// realized profit once both legs are known
type SettlementService struct {
	settlementRepo swap.SettlementRepository
	sales          swap.SalesLedger
	eventPublisher shared.EventPublisher
	metrics        Metrics
	logger         *zap.Logger
	maxAttempts    int
	now            func() time.Time
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	settlementRepo swap.SettlementRepository,
	sales swap.SalesLedger,
	maxResolutionAttempts int,
	logger *zap.Logger,
) *SettlementService {
	if maxResolutionAttempts < 1 {
		maxResolutionAttempts = DefaultMaxResolutionAttempts
	}
	return &SettlementService{
		settlementRepo: settlementRepo,
		sales:          sales,
		metrics:        NoopMetrics{},
		logger:         logger,
		maxAttempts:    maxResolutionAttempts,
		now:            time.Now,
	}
}

// SetEventPublisher sets the event publisher
func (s *SettlementService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics sink
func (s *SettlementService) SetMetrics(metrics Metrics) {
	if metrics != nil {
		s.metrics = metrics
	}
}

// SetClock overrides the time source
func (s *SettlementService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// LinkCompanySaleLeg attaches the sale of the company item
func (s *SettlementService) LinkCompanySaleLeg(ctx context.Context, tenantID, swapID, saleID uuid.UUID) (*LinkLegResult, error) {
	return s.linkLeg(ctx, tenantID, swapID, swap.LegCompanySale, saleID)
}

// LinkTradeInSaleLeg attaches the resale of the trade-in item
func (s *SettlementService) LinkTradeInSaleLeg(ctx context.Context, tenantID, swapID, saleID uuid.UUID) (*LinkLegResult, error) {
	return s.linkLeg(ctx, tenantID, swapID, swap.LegTradeInSale, saleID)
}

// linkLeg records the leg first and reads the settlement afterwards. Of two
// callers racing to close the last leg, at least the later one observes both.
func (s *SettlementService) linkLeg(ctx context.Context, tenantID, swapID uuid.UUID, leg swap.SettlementLeg, saleID uuid.UUID) (*LinkLegResult, error) {
	if saleID == uuid.Nil {
		return nil, shared.NewValidationError("Sale ID is required")
	}
	log := logger.FromContext(ctx, s.logger).With(
		zap.String("swap_id", swapID.String()),
		zap.String("leg", string(leg)),
		zap.String("sale_id", saleID.String()),
	)

	linked, err := s.settlementRepo.LinkLeg(ctx, tenantID, swapID, leg, saleID)
	if err != nil {
		return nil, shared.NewTransactionFailure("link settlement leg", err)
	}
	settlement, err := s.settlementRepo.FindBySwapID(ctx, tenantID, swapID)
	if err != nil {
		return nil, notFoundOr(err, "Settlement", "read settlement")
	}

	if !linked {
		current := settlement.SaleFor(leg)
		if current == nil {
			return nil, shared.ErrConcurrentModification
		}
		// Same sale is a replay; a different one is a conflict
		if _, err := settlement.LinkLeg(leg, saleID); err != nil {
			log.Warn("Settlement leg conflict", zap.String("linked_sale_id", current.String()))
			return nil, err
		}
	} else {
		log.Info("Settlement leg linked")
		s.publish(ctx, log, swap.NewSettlementLegLinkedEvent(settlement, leg, saleID))
	}

	result, err := s.tryFinalize(ctx, settlement, log)
	if err != nil {
		return nil, err
	}
	result.Linked = linked
	return result, nil
}

// tryFinalize finalizes a pending settlement with both legs. Sale resolution
// failures are recorded on the settlement and reported in the result.
func (s *SettlementService) tryFinalize(ctx context.Context, settlement *swap.ProfitSettlement, log *zap.Logger) (*LinkLegResult, error) {
	if settlement.IsFinalized() || !settlement.HasBothLegs() {
		return newLinkLegResult(settlement, ""), nil
	}

	companySale, err := s.sales.GetSale(ctx, settlement.TenantID, *settlement.CompanySaleID)
	if err != nil {
		return s.resolutionFailed(ctx, settlement, swap.LegCompanySale, err, log), nil
	}
	tradeInSale, err := s.sales.GetSale(ctx, settlement.TenantID, *settlement.TradeInSaleID)
	if err != nil {
		return s.resolutionFailed(ctx, settlement, swap.LegTradeInSale, err, log), nil
	}

	if err := settlement.Finalize(companySale.FinalPrice, tradeInSale.FinalPrice, s.now()); err != nil {
		return nil, err
	}
	won, err := s.settlementRepo.Finalize(ctx, settlement)
	if err != nil {
		return nil, shared.NewTransactionFailure("finalize settlement", err)
	}
	if !won {
		// Another caller finalized first
		current, err := s.settlementRepo.FindBySwapID(ctx, settlement.TenantID, settlement.SwapID)
		if err != nil {
			return nil, notFoundOr(err, "Settlement", "read settlement")
		}
		return newLinkLegResult(current, ""), nil
	}

	s.metrics.SettlementFinalized(ctx, settlement.TenantID, settlement.CostDegraded)
	log.Info("Settlement finalized",
		zap.String("settlement_id", settlement.ID.String()),
		zap.String("final_profit", settlement.FinalProfit.String()),
		zap.String("profit_estimate", settlement.ProfitEstimate.String()),
		zap.Bool("cost_degraded", settlement.CostDegraded),
	)
	s.publish(ctx, log, swap.NewSettlementFinalizedEvent(settlement))
	return newLinkLegResult(settlement, ""), nil
}

func (s *SettlementService) resolutionFailed(ctx context.Context, settlement *swap.ProfitSettlement, leg swap.SettlementLeg, cause error, log *zap.Logger) *LinkLegResult {
	failure := shared.WrapDomainError(shared.CodeSettlementResolutionFailed,
		"Cannot resolve "+string(leg)+" price", cause)
	settlement.RecordResolutionFailure(failure)
	if err := s.settlementRepo.RecordResolutionFailure(ctx, settlement.ID, failure.Error()); err != nil {
		log.Error("Failed to record settlement resolution failure", zap.Error(err))
	}
	s.metrics.SettlementResolutionFailed(ctx, settlement.TenantID)
	if settlement.ResolutionAttempts >= s.maxAttempts {
		// Out of the retry sweep; relinking either leg with its sale retries once more
		log.Error("Settlement resolution attempts exhausted",
			zap.String("settlement_id", settlement.ID.String()),
			zap.Int("attempts", settlement.ResolutionAttempts),
			zap.Int("max_attempts", s.maxAttempts),
			zap.Error(cause),
		)
		return newLinkLegResult(settlement, failure.Error())
	}
	log.Warn("Settlement left pending, sale could not be resolved",
		zap.String("settlement_id", settlement.ID.String()),
		zap.Int("attempts", settlement.ResolutionAttempts),
		zap.Error(cause),
	)
	return newLinkLegResult(settlement, failure.Error())
}

// GetBySwap returns the settlement of a swap
func (s *SettlementService) GetBySwap(ctx context.Context, tenantID, swapID uuid.UUID) (*SettlementResponse, error) {
	settlement, err := s.settlementRepo.FindBySwapID(ctx, tenantID, swapID)
	if err != nil {
		return nil, notFoundOr(err, "Settlement", "read settlement")
	}
	resp := ToSettlementResponse(settlement)
	return &resp, nil
}

// GetStats aggregates settlements of a tenant
func (s *SettlementService) GetStats(ctx context.Context, tenantID uuid.UUID) (*SettlementStatsResponse, error) {
	stats, err := s.settlementRepo.GetStats(ctx, tenantID, s.maxAttempts)
	if err != nil {
		return nil, shared.NewTransactionFailure("settlement stats", err)
	}
	return &SettlementStatsResponse{
		TotalCount:              stats.TotalCount,
		PendingCount:            stats.PendingCount,
		FinalizedCount:          stats.FinalizedCount,
		AwaitingCompanyLeg:      stats.AwaitingCompanyLeg,
		AwaitingTradeInLeg:      stats.AwaitingTradeInLeg,
		AwaitingResolution:      stats.AwaitingResolution,
		ResolutionExhausted:     stats.ResolutionExhausted,
		DegradedCostCount:       stats.DegradedCostCount,
		PendingProfitEstimate:   stats.PendingProfitEstimate,
		FinalizedProfit:         stats.FinalizedProfit,
		FinalizedDegradedProfit: stats.FinalizedDegradedProfit,
	}, nil
}

// RetryPendingResolutions retries finalization of settlements whose legs are
// both linked but whose sales could not be resolved earlier
func (s *SettlementService) RetryPendingResolutions(ctx context.Context, batchSize int) (RetrySummary, error) {
	var summary RetrySummary
	pending, err := s.settlementRepo.FindAwaitingResolution(ctx, s.maxAttempts, batchSize)
	if err != nil {
		return summary, shared.NewTransactionFailure("scan pending settlements", err)
	}

	for i := range pending {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		settlement := &pending[i]
		summary.Scanned++
		log := s.logger.With(
			zap.String("tenant_id", settlement.TenantID.String()),
			zap.String("swap_id", settlement.SwapID.String()),
		)
		result, err := s.tryFinalize(ctx, settlement, log)
		switch {
		case err != nil:
			summary.Failed++
			log.Error("Settlement retry failed", zap.Error(err))
		case result.Finalized:
			summary.Finalized++
		case result.ResolutionError != "":
			summary.Failed++
		}
	}
	return summary, nil
}

func (s *SettlementService) publish(ctx context.Context, log *zap.Logger, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		log.Warn("Failed to publish settlement event", zap.String("event_type", event.EventType()), zap.Error(err))
	}
}

func newLinkLegResult(settlement *swap.ProfitSettlement, resolutionErr string) *LinkLegResult {
	result := &LinkLegResult{
		Settlement:      ToSettlementResponse(settlement),
		Finalized:       settlement.IsFinalized(),
		ResolutionError: resolutionErr,
	}
	for _, leg := range settlement.MissingLegs() {
		result.AwaitingLegs = append(result.AwaitingLegs, string(leg))
	}
	return result
}

// isSettlementConflict reports whether err means the leg already holds another sale
func isSettlementConflict(err error) bool {
	return errors.Is(err, shared.ErrSettlementLegConflict)
}
