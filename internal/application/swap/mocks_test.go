package swap

import (
	"context"

	"github.com/google/uuid"
	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/phoneshop/backend/internal/domain/swap"
	"github.com/stretchr/testify/mock"
)

// MockSwapRepository is a mock implementation of swap.SwapRepository
type MockSwapRepository struct {
	mock.Mock
}

func (m *MockSwapRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*swap.Swap, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*swap.Swap), args.Error(1)
}

func (m *MockSwapRepository) FindByTransactionCode(ctx context.Context, tenantID uuid.UUID, code string) (*swap.Swap, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*swap.Swap), args.Error(1)
}

func (m *MockSwapRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]swap.Swap, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]swap.Swap), args.Error(1)
}

func (m *MockSwapRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSwapRepository) Create(ctx context.Context, s *swap.Swap) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSwapRepository) MarkResold(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Bool(0), args.Error(1)
}

// MockTradeInItemRepository is a mock implementation of swap.TradeInItemRepository
type MockTradeInItemRepository struct {
	mock.Mock
}

func (m *MockTradeInItemRepository) Create(ctx context.Context, item *swap.TradeInItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockTradeInItemRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*swap.TradeInItem, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*swap.TradeInItem), args.Error(1)
}

func (m *MockTradeInItemRepository) FindBySwapID(ctx context.Context, tenantID, swapID uuid.UUID) (*swap.TradeInItem, error) {
	args := m.Called(ctx, tenantID, swapID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*swap.TradeInItem), args.Error(1)
}

func (m *MockTradeInItemRepository) FindAvailableForResale(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]swap.TradeInItem, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]swap.TradeInItem), args.Error(1)
}

func (m *MockTradeInItemRepository) CountAvailableForResale(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTradeInItemRepository) MarkSold(ctx context.Context, item *swap.TradeInItem) (bool, error) {
	args := m.Called(ctx, item)
	return args.Bool(0), args.Error(1)
}

func (m *MockTradeInItemRepository) LinkInventory(ctx context.Context, tenantID, id, inventoryID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, id, inventoryID)
	return args.Bool(0), args.Error(1)
}

// MockSettlementRepository is a mock implementation of swap.SettlementRepository
type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) Create(ctx context.Context, s *swap.ProfitSettlement) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSettlementRepository) FindBySwapID(ctx context.Context, tenantID, swapID uuid.UUID) (*swap.ProfitSettlement, error) {
	args := m.Called(ctx, tenantID, swapID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*swap.ProfitSettlement), args.Error(1)
}

func (m *MockSettlementRepository) LinkLeg(ctx context.Context, tenantID, swapID uuid.UUID, leg swap.SettlementLeg, saleID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, swapID, leg, saleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettlementRepository) Finalize(ctx context.Context, s *swap.ProfitSettlement) (bool, error) {
	args := m.Called(ctx, s)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettlementRepository) RecordResolutionFailure(ctx context.Context, id uuid.UUID, message string) error {
	args := m.Called(ctx, id, message)
	return args.Error(0)
}

func (m *MockSettlementRepository) FindAwaitingResolution(ctx context.Context, maxAttempts, limit int) ([]swap.ProfitSettlement, error) {
	args := m.Called(ctx, maxAttempts, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]swap.ProfitSettlement), args.Error(1)
}

func (m *MockSettlementRepository) GetStats(ctx context.Context, tenantID uuid.UUID, maxAttempts int) (*swap.SettlementStats, error) {
	args := m.Called(ctx, tenantID, maxAttempts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*swap.SettlementStats), args.Error(1)
}

// MockCatalogGateway is a mock implementation of swap.CatalogGateway
type MockCatalogGateway struct {
	mock.Mock
}

func (m *MockCatalogGateway) GetItem(ctx context.Context, tenantID, itemID uuid.UUID) (*swap.CatalogItem, error) {
	args := m.Called(ctx, tenantID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*swap.CatalogItem), args.Error(1)
}

func (m *MockCatalogGateway) DecrementQuantity(ctx context.Context, tenantID, itemID uuid.UUID, n int) (bool, error) {
	args := m.Called(ctx, tenantID, itemID, n)
	return args.Bool(0), args.Error(1)
}

func (m *MockCatalogGateway) InsertFromTradeIn(ctx context.Context, attrs swap.RelistAttrs) (uuid.UUID, error) {
	args := m.Called(ctx, attrs)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockSalesLedger is a mock implementation of swap.SalesLedger
type MockSalesLedger struct {
	mock.Mock
}

func (m *MockSalesLedger) GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*swap.SaleRecord, error) {
	args := m.Called(ctx, tenantID, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*swap.SaleRecord), args.Error(1)
}

// MockCustomerRegistry is a mock implementation of swap.CustomerRegistry
type MockCustomerRegistry struct {
	mock.Mock
}

func (m *MockCustomerRegistry) Exists(ctx context.Context, tenantID, customerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockTradeInSaleLinker is a mock implementation of TradeInSaleLinker
type MockTradeInSaleLinker struct {
	mock.Mock
}

func (m *MockTradeInSaleLinker) LinkTradeInSaleLeg(ctx context.Context, tenantID, swapID, saleID uuid.UUID) (*LinkLegResult, error) {
	args := m.Called(ctx, tenantID, swapID, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*LinkLegResult), args.Error(1)
}
