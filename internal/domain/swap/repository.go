package swap

import (
	"context"

	"github.com/google/uuid"
	"github.com/phoneshop/backend/internal/domain/shared"
)

// SwapRepository defines the interface for swap persistence
type SwapRepository interface {
	// FindByIDForTenant finds a swap by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Swap, error)

	// FindByTransactionCode finds a swap by its human-readable code
	FindByTransactionCode(ctx context.Context, tenantID uuid.UUID, code string) (*Swap, error)

	// FindAllForTenant lists swaps of a tenant; Filters may carry "status" and "customer_id"
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Swap, error)

	// CountForTenant counts swaps matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// Create inserts a swap. Returns shared.ErrDuplicateKey when the transaction code is taken.
	Create(ctx context.Context, s *Swap) error

	// MarkResold moves a completed swap to resold; returns false if it was not completed
	MarkResold(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
}

// TradeInItemRepository defines the interface for trade-in item persistence
type TradeInItemRepository interface {
	// Create inserts a trade-in item
	Create(ctx context.Context, item *TradeInItem) error

	// FindByIDForTenant finds a trade-in item by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*TradeInItem, error)

	// FindBySwapID finds the trade-in item of a swap
	FindBySwapID(ctx context.Context, tenantID, swapID uuid.UUID) (*TradeInItem, error)

	// FindAvailableForResale lists in-stock trade-in items
	FindAvailableForResale(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]TradeInItem, error)

	// CountAvailableForResale counts in-stock trade-in items
	CountAvailableForResale(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// MarkSold persists a sale only while the item is still in stock; returns false otherwise
	MarkSold(ctx context.Context, item *TradeInItem) (bool, error)

	// LinkInventory sets the relisted catalog item once; returns false if already linked
	LinkInventory(ctx context.Context, tenantID, id, inventoryID uuid.UUID) (bool, error)
}

// SettlementRepository defines the interface for profit settlement persistence
type SettlementRepository interface {
	// Create inserts a pending settlement
	Create(ctx context.Context, s *ProfitSettlement) error

	// FindBySwapID finds the settlement of a swap
	FindBySwapID(ctx context.Context, tenantID, swapID uuid.UUID) (*ProfitSettlement, error)

	// LinkLeg sets the leg's sale only if the leg is empty; returns false if it was already set
	LinkLeg(ctx context.Context, tenantID, swapID uuid.UUID, leg SettlementLeg, saleID uuid.UUID) (bool, error)

	// Finalize stores realized profit only while pending with both legs linked; returns false otherwise
	Finalize(ctx context.Context, s *ProfitSettlement) (bool, error)

	// RecordResolutionFailure increments the attempt counter of a pending settlement
	RecordResolutionFailure(ctx context.Context, id uuid.UUID, message string) error

	// FindAwaitingResolution lists pending settlements across tenants with both legs
	// linked and fewer than maxAttempts failed resolutions, oldest first
	FindAwaitingResolution(ctx context.Context, maxAttempts, limit int) ([]ProfitSettlement, error)

	// GetStats aggregates settlements of a tenant; settlements with at least
	// maxAttempts failed resolutions count as exhausted
	GetStats(ctx context.Context, tenantID uuid.UUID, maxAttempts int) (*SettlementStats, error)
}
