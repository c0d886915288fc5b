package swap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/phoneshop/backend/internal/domain/swap"
	"github.com/phoneshop/backend/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Default swap creation settings
const (
	DefaultCodeMaxAttempts = 5
)

// SwapServiceConfig holds tunables for swap creation
type SwapServiceConfig struct {
	// CostFallbackRatio prices the company item cost when no stored cost exists
	CostFallbackRatio decimal.Decimal
	// CodeMaxAttempts bounds transaction code regeneration on collisions
	CodeMaxAttempts int
}

// DefaultSwapServiceConfig returns the default swap settings
func DefaultSwapServiceConfig() SwapServiceConfig {
	return SwapServiceConfig{
		CostFallbackRatio: swap.DefaultCostFallbackRatio,
		CodeMaxAttempts:   DefaultCodeMaxAttempts,
	}
}

// SwapService orchestrates trade-in swaps
type SwapService struct {
	swapRepo       swap.SwapRepository
	tradeInRepo    swap.TradeInItemRepository
	settlementRepo swap.SettlementRepository
	customers      swap.CustomerRegistry
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	metrics        Metrics
	logger         *zap.Logger
	config         SwapServiceConfig
	generateCode   swap.CodeGenerator
	now            func() time.Time
}

// NewSwapService creates a new SwapService
func NewSwapService(
	swapRepo swap.SwapRepository,
	tradeInRepo swap.TradeInItemRepository,
	settlementRepo swap.SettlementRepository,
	customers swap.CustomerRegistry,
	txScope TransactionScope,
	config SwapServiceConfig,
	logger *zap.Logger,
) *SwapService {
	if config.CodeMaxAttempts < 1 {
		config.CodeMaxAttempts = DefaultCodeMaxAttempts
	}
	if !config.CostFallbackRatio.IsPositive() {
		config.CostFallbackRatio = swap.DefaultCostFallbackRatio
	}
	return &SwapService{
		swapRepo:       swapRepo,
		tradeInRepo:    tradeInRepo,
		settlementRepo: settlementRepo,
		customers:      customers,
		txScope:        txScope,
		metrics:        NoopMetrics{},
		logger:         logger,
		config:         config,
		generateCode:   swap.GenerateTransactionCode,
		now:            time.Now,
	}
}

// SetEventPublisher sets the event publisher for post-commit domain events
func (s *SwapService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics sink
func (s *SwapService) SetMetrics(metrics Metrics) {
	if metrics != nil {
		s.metrics = metrics
	}
}

// SetCodeGenerator overrides transaction code generation
func (s *SwapService) SetCodeGenerator(gen swap.CodeGenerator) {
	if gen != nil {
		s.generateCode = gen
	}
}

// SetClock overrides the time source
func (s *SwapService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateSwap exchanges a customer's device (plus or minus cash) for a company item.
// The trade-in item, the swap, the pending settlement and the stock decrement
// are committed together or not at all.
func (s *SwapService) CreateSwap(ctx context.Context, tenantID uuid.UUID, req CreateSwapRequest) (*CreateSwapResult, error) {
	log := logger.FromContext(ctx, s.logger).With(
		zap.String("tenant_id", tenantID.String()),
		zap.String("company_item_id", req.CompanyItemID.String()),
	)

	details := req.TradeIn.details()
	if err := s.validateCreate(tenantID, req, &details); err != nil {
		s.metrics.SwapRejected(ctx, tenantID, shared.CodeValidation)
		return nil, err
	}

	exists, err := s.customers.Exists(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, shared.NewTransactionFailure("customer lookup", err)
	}
	if !exists {
		s.metrics.SwapRejected(ctx, tenantID, shared.CodeNotFound)
		return nil, shared.NewNotFoundError("Customer")
	}

	var (
		created    *swap.Swap
		tradeIn    *swap.TradeInItem
		settlement *swap.ProfitSettlement
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.Catalog().GetItem(ctx, tenantID, req.CompanyItemID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError("Company item")
			}
			return shared.NewTransactionFailure("read company item", err)
		}
		if !item.InStock() {
			return insufficientStock(item.ID)
		}
		cost := swap.ResolveCost(*item, s.config.CostFallbackRatio)

		now := s.now()
		created, err = swap.NewSwap(tenantID, req.CustomerID, item.ID, uuid.New(), req.HandledBy,
			req.CashAdded, item.Price, s.generateCode(now))
		if err != nil {
			return err
		}
		created.Notes = strings.TrimSpace(req.Notes)
		if err := s.insertSwap(ctx, repos.SwapRepo(), created, log); err != nil {
			return err
		}

		tradeIn, err = swap.NewTradeInItem(tenantID, created.ID, details)
		if err != nil {
			return err
		}
		tradeIn.ID = created.TradeInItemID
		if err := repos.TradeInRepo().Create(ctx, tradeIn); err != nil {
			return shared.NewTransactionFailure("insert trade-in item", err)
		}

		settlement, err = swap.NewProfitSettlement(tenantID, created.ID, cost,
			details.EstimatedValue, req.CashAdded, details.ResellEstimate())
		if err != nil {
			return err
		}
		if err := repos.SettlementRepo().Create(ctx, settlement); err != nil {
			return shared.NewTransactionFailure("insert profit settlement", err)
		}

		decremented, err := repos.Catalog().DecrementQuantity(ctx, tenantID, item.ID, 1)
		if err != nil {
			return shared.NewTransactionFailure("decrement stock", err)
		}
		if !decremented {
			return insufficientStock(item.ID)
		}
		return nil
	})
	if err != nil {
		var domainErr *shared.DomainError
		if !errors.As(err, &domainErr) {
			err = shared.NewTransactionFailure("commit", err)
		}
		s.metrics.SwapRejected(ctx, tenantID, codeOf(err))
		if shared.HasCode(err, shared.CodeTransactionFailed) {
			log.Error("Swap transaction rolled back", zap.Error(err))
		} else {
			log.Info("Swap rejected", zap.Error(err))
		}
		return nil, err
	}

	created.RecordCreated(tradeIn)
	s.publishEvents(ctx, created.GetDomainEvents(), log)
	created.ClearDomainEvents()
	s.metrics.SwapCreated(ctx, tenantID, settlement.CostDegraded)

	log.Info("Swap created",
		zap.String("swap_id", created.ID.String()),
		zap.String("transaction_code", created.TransactionCode),
		zap.String("profit_estimate", settlement.ProfitEstimate.String()),
		zap.String("cost_source", string(settlement.CostSource)),
	)
	if settlement.CostDegraded {
		log.Warn("Company item cost unavailable, settlement uses price fallback",
			zap.String("swap_id", created.ID.String()),
			zap.String("fallback_ratio", s.config.CostFallbackRatio.String()),
		)
	}

	return &CreateSwapResult{
		SwapID:          created.ID,
		TransactionCode: created.TransactionCode,
		TradeInItemID:   tradeIn.ID,
		SettlementID:    settlement.ID,
		TotalValue:      created.TotalValue,
		ProfitEstimate:  settlement.ProfitEstimate,
		CostSource:      settlement.CostSource,
		CostDegraded:    settlement.CostDegraded,
		Status:          created.Status,
		CreatedAt:       created.CreatedAt,
	}, nil
}

func (s *SwapService) validateCreate(tenantID uuid.UUID, req CreateSwapRequest, details *swap.TradeInDetails) error {
	if tenantID == uuid.Nil {
		return shared.NewValidationError("Tenant ID is required")
	}
	if req.CustomerID == uuid.Nil {
		return shared.NewValidationError("Customer ID is required")
	}
	if req.CompanyItemID == uuid.Nil {
		return shared.NewValidationError("Company item ID is required")
	}
	if req.HandledBy == uuid.Nil {
		return shared.NewValidationError("Handling employee is required")
	}
	return details.Validate()
}

// insertSwap inserts the swap, drawing a fresh transaction code whenever the
// store reports a collision
func (s *SwapService) insertSwap(ctx context.Context, repo swap.SwapRepository, sw *swap.Swap, log *zap.Logger) error {
	for attempt := 1; ; attempt++ {
		err := repo.Create(ctx, sw)
		if err == nil {
			return nil
		}
		if !errors.Is(err, shared.ErrDuplicateKey) {
			return shared.NewTransactionFailure("insert swap", err)
		}
		if attempt >= s.config.CodeMaxAttempts {
			return shared.NewTransactionFailure("generate transaction code",
				fmt.Errorf("%d codes collided: %w", attempt, err))
		}
		log.Debug("Transaction code collision, regenerating",
			zap.String("transaction_code", sw.TransactionCode),
			zap.Int("attempt", attempt),
		)
		if err := sw.AssignTransactionCode(s.generateCode(s.now())); err != nil {
			return err
		}
	}
}

// GetSwap returns a swap with its trade-in item and settlement
func (s *SwapService) GetSwap(ctx context.Context, tenantID, id uuid.UUID) (*SwapDetailResponse, error) {
	sw, err := s.swapRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, notFoundOr(err, "Swap", "read swap")
	}
	return s.detail(ctx, sw)
}

// GetSwapByCode returns a swap by its transaction code
func (s *SwapService) GetSwapByCode(ctx context.Context, tenantID uuid.UUID, code string) (*SwapDetailResponse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewValidationError("Transaction code is required")
	}
	sw, err := s.swapRepo.FindByTransactionCode(ctx, tenantID, code)
	if err != nil {
		return nil, notFoundOr(err, "Swap", "read swap")
	}
	return s.detail(ctx, sw)
}

func (s *SwapService) detail(ctx context.Context, sw *swap.Swap) (*SwapDetailResponse, error) {
	resp := &SwapDetailResponse{Swap: ToSwapResponse(sw)}

	tradeIn, err := s.tradeInRepo.FindBySwapID(ctx, sw.TenantID, sw.ID)
	switch {
	case err == nil:
		r := ToTradeInItemResponse(tradeIn)
		resp.TradeIn = &r
	case !errors.Is(err, shared.ErrNotFound):
		return nil, shared.NewTransactionFailure("read trade-in item", err)
	}

	settlement, err := s.settlementRepo.FindBySwapID(ctx, sw.TenantID, sw.ID)
	switch {
	case err == nil:
		r := ToSettlementResponse(settlement)
		resp.Settlement = &r
	case !errors.Is(err, shared.ErrNotFound):
		return nil, shared.NewTransactionFailure("read settlement", err)
	}
	return resp, nil
}

// ListSwaps lists swaps of a tenant
func (s *SwapService) ListSwaps(ctx context.Context, tenantID uuid.UUID, filter SwapListFilter) ([]SwapResponse, int64, error) {
	f := filter.toShared()
	swaps, err := s.swapRepo.FindAllForTenant(ctx, tenantID, f)
	if err != nil {
		return nil, 0, shared.NewTransactionFailure("list swaps", err)
	}
	total, err := s.swapRepo.CountForTenant(ctx, tenantID, f)
	if err != nil {
		return nil, 0, shared.NewTransactionFailure("count swaps", err)
	}

	items := make([]SwapResponse, len(swaps))
	for i := range swaps {
		items[i] = ToSwapResponse(&swaps[i])
	}
	return items, total, nil
}

func (s *SwapService) publishEvents(ctx context.Context, events []shared.DomainEvent, log *zap.Logger) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		log.Warn("Failed to publish swap events", zap.Error(err))
	}
}

func insufficientStock(itemID uuid.UUID) error {
	return shared.NewDomainError(shared.CodeInsufficientStock,
		fmt.Sprintf("Company item %s has no stock left", itemID))
}

// notFoundOr maps a repository lookup error to NOT_FOUND or a transaction failure
func notFoundOr(err error, resource, step string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError(resource)
	}
	return shared.NewTransactionFailure(step, err)
}

func codeOf(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "UNKNOWN"
}
