package handler

import (
	"context"

	"github.com/google/uuid"
	appswap "github.com/phoneshop/backend/internal/application/swap"
)

// SwapOperations is the swap orchestrator used by SwapHandler
type SwapOperations interface {
	CreateSwap(ctx context.Context, tenantID uuid.UUID, req appswap.CreateSwapRequest) (*appswap.CreateSwapResult, error)
	GetSwap(ctx context.Context, tenantID, id uuid.UUID) (*appswap.SwapDetailResponse, error)
	GetSwapByCode(ctx context.Context, tenantID uuid.UUID, code string) (*appswap.SwapDetailResponse, error)
	ListSwaps(ctx context.Context, tenantID uuid.UUID, filter appswap.SwapListFilter) ([]appswap.SwapResponse, int64, error)
}

// TradeInOperations is the trade-in item store used by TradeInHandler
type TradeInOperations interface {
	GetBySwap(ctx context.Context, tenantID, swapID uuid.UUID) (*appswap.TradeInItemResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*appswap.TradeInItemResponse, error)
	ListAvailableForResale(ctx context.Context, tenantID uuid.UUID, filter appswap.TradeInListFilter) ([]appswap.TradeInItemResponse, int64, error)
	MarkSold(ctx context.Context, tenantID, itemID uuid.UUID, req appswap.MarkSoldRequest) (*appswap.MarkSoldResult, error)
}

// SettlementOperations is the profit settlement ledger used by SettlementHandler
type SettlementOperations interface {
	LinkCompanySaleLeg(ctx context.Context, tenantID, swapID, saleID uuid.UUID) (*appswap.LinkLegResult, error)
	LinkTradeInSaleLeg(ctx context.Context, tenantID, swapID, saleID uuid.UUID) (*appswap.LinkLegResult, error)
	GetBySwap(ctx context.Context, tenantID, swapID uuid.UUID) (*appswap.SettlementResponse, error)
	GetStats(ctx context.Context, tenantID uuid.UUID) (*appswap.SettlementStatsResponse, error)
}

var (
	_ SwapOperations       = (*appswap.SwapService)(nil)
	_ TradeInOperations    = (*appswap.TradeInService)(nil)
	_ SettlementOperations = (*appswap.SettlementService)(nil)
)
