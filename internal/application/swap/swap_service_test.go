package swap

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/phoneshop/backend/internal/domain/swap"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type swapFixture struct {
	swaps       *MockSwapRepository
	tradeIns    *MockTradeInItemRepository
	settlements *MockSettlementRepository
	catalog     *MockCatalogGateway
	customers   *MockCustomerRegistry
	publisher   *MockEventPublisher
	service     *SwapService

	tenantID uuid.UUID
	item     *swap.CatalogItem
}

func newSwapFixture(t *testing.T) *swapFixture {
	t.Helper()
	f := &swapFixture{
		swaps:       new(MockSwapRepository),
		tradeIns:    new(MockTradeInItemRepository),
		settlements: new(MockSettlementRepository),
		catalog:     new(MockCatalogGateway),
		customers:   new(MockCustomerRegistry),
		publisher:   new(MockEventPublisher),
		tenantID:    uuid.New(),
	}
	cost := decimal.NewFromInt(2000)
	f.item = &swap.CatalogItem{
		ID:        uuid.New(),
		TenantID:  f.tenantID,
		Name:      "Pixel 9",
		CostPrice: &cost,
		Price:     decimal.NewFromInt(2800),
		Quantity:  3,
	}

	scope := NewNoOpTransactionScope(f.swaps, f.tradeIns, f.settlements, f.catalog)
	f.service = NewSwapService(f.swaps, f.tradeIns, f.settlements, f.customers, scope, DefaultSwapServiceConfig(), zap.NewNop())
	f.service.SetEventPublisher(f.publisher)
	f.service.SetClock(func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) })
	return f
}

func (f *swapFixture) request() CreateSwapRequest {
	return CreateSwapRequest{
		CustomerID:    uuid.New(),
		CompanyItemID: f.item.ID,
		TradeIn: TradeInInput{
			Brand:          "Apple",
			Model:          "iPhone 13",
			EstimatedValue: decimal.NewFromInt(1200),
		},
		CashAdded: decimal.NewFromInt(400),
		HandledBy: uuid.New(),
	}
}

func (f *swapFixture) expectHappyPath() {
	f.customers.On("Exists", mock.Anything, f.tenantID, mock.Anything).Return(true, nil)
	f.catalog.On("GetItem", mock.Anything, f.tenantID, f.item.ID).Return(f.item, nil)
	f.swaps.On("Create", mock.Anything, mock.AnythingOfType("*swap.Swap")).Return(nil)
	f.tradeIns.On("Create", mock.Anything, mock.AnythingOfType("*swap.TradeInItem")).Return(nil)
	f.settlements.On("Create", mock.Anything, mock.AnythingOfType("*swap.ProfitSettlement")).Return(nil)
	f.catalog.On("DecrementQuantity", mock.Anything, f.tenantID, f.item.ID, 1).Return(true, nil)
}

func TestSwapService_CreateSwap(t *testing.T) {
	t.Run("creates the swap triple and publishes", func(t *testing.T) {
		f := newSwapFixture(t)
		f.expectHappyPath()
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		result, err := f.service.CreateSwap(context.Background(), f.tenantID, f.request())
		require.NoError(t, err)

		assert.Regexp(t, `^SWP-20260314-[2-9A-HJ-NP-Z]{6}$`, result.TransactionCode)
		assert.True(t, result.TotalValue.Equal(decimal.NewFromInt(2800)))
		// (1200 + 400) - (2000 + 1200)
		assert.True(t, result.ProfitEstimate.Equal(decimal.NewFromInt(-1600)), result.ProfitEstimate.String())
		assert.Equal(t, swap.CostSourceCostPrice, result.CostSource)
		assert.False(t, result.CostDegraded)
		assert.Equal(t, swap.SwapStatusCompleted, result.Status)

		created := f.swaps.Calls[0].Arguments.Get(1).(*swap.Swap)
		tradeIn := f.tradeIns.Calls[0].Arguments.Get(1).(*swap.TradeInItem)
		settlement := f.settlements.Calls[0].Arguments.Get(1).(*swap.ProfitSettlement)
		assert.Equal(t, created.TradeInItemID, tradeIn.ID)
		assert.Equal(t, created.ID, tradeIn.SwapID)
		assert.Equal(t, created.ID, settlement.SwapID)
		assert.Nil(t, settlement.CompanySaleID)
		assert.Nil(t, settlement.TradeInSaleID)

		events := f.publisher.Calls[0].Arguments.Get(1).([]shared.DomainEvent)
		require.Len(t, events, 1)
		assert.Equal(t, swap.EventTypeSwapCreated, events[0].EventType())
	})

	t.Run("validation fails before the transaction", func(t *testing.T) {
		f := newSwapFixture(t)
		req := f.request()
		req.TradeIn.Brand = "   "

		_, err := f.service.CreateSwap(context.Background(), f.tenantID, req)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
		f.customers.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything)
		f.catalog.AssertNotCalled(t, "GetItem", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("negative estimated value is rejected", func(t *testing.T) {
		f := newSwapFixture(t)
		req := f.request()
		req.TradeIn.EstimatedValue = decimal.NewFromInt(-1)

		_, err := f.service.CreateSwap(context.Background(), f.tenantID, req)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})

	t.Run("unknown customer", func(t *testing.T) {
		f := newSwapFixture(t)
		f.customers.On("Exists", mock.Anything, f.tenantID, mock.Anything).Return(false, nil)

		_, err := f.service.CreateSwap(context.Background(), f.tenantID, f.request())
		assert.True(t, shared.HasCode(err, shared.CodeNotFound))
		f.catalog.AssertNotCalled(t, "GetItem", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing company item", func(t *testing.T) {
		f := newSwapFixture(t)
		f.customers.On("Exists", mock.Anything, f.tenantID, mock.Anything).Return(true, nil)
		f.catalog.On("GetItem", mock.Anything, f.tenantID, f.item.ID).Return(nil, shared.ErrNotFound)

		_, err := f.service.CreateSwap(context.Background(), f.tenantID, f.request())
		assert.True(t, shared.HasCode(err, shared.CodeNotFound))
		f.swaps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("out of stock item", func(t *testing.T) {
		f := newSwapFixture(t)
		f.item.Quantity = 0
		f.customers.On("Exists", mock.Anything, f.tenantID, mock.Anything).Return(true, nil)
		f.catalog.On("GetItem", mock.Anything, f.tenantID, f.item.ID).Return(f.item, nil)

		_, err := f.service.CreateSwap(context.Background(), f.tenantID, f.request())
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		f.swaps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("guarded decrement rejects the last unit", func(t *testing.T) {
		f := newSwapFixture(t)
		f.customers.On("Exists", mock.Anything, f.tenantID, mock.Anything).Return(true, nil)
		f.catalog.On("GetItem", mock.Anything, f.tenantID, f.item.ID).Return(f.item, nil)
		f.swaps.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.tradeIns.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.settlements.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.catalog.On("DecrementQuantity", mock.Anything, f.tenantID, f.item.ID, 1).Return(false, nil)

		_, err := f.service.CreateSwap(context.Background(), f.tenantID, f.request())
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("write failure maps to transaction failure", func(t *testing.T) {
		f := newSwapFixture(t)
		f.customers.On("Exists", mock.Anything, f.tenantID, mock.Anything).Return(true, nil)
		f.catalog.On("GetItem", mock.Anything, f.tenantID, f.item.ID).Return(f.item, nil)
		f.swaps.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.tradeIns.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

		_, err := f.service.CreateSwap(context.Background(), f.tenantID, f.request())
		assert.ErrorIs(t, err, shared.ErrTransactionFailed)
		assert.Contains(t, err.Error(), "insert trade-in item")
	})

	t.Run("degraded cost is flagged", func(t *testing.T) {
		f := newSwapFixture(t)
		f.item.CostPrice = nil
		f.expectHappyPath()
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		result, err := f.service.CreateSwap(context.Background(), f.tenantID, f.request())
		require.NoError(t, err)
		assert.True(t, result.CostDegraded)
		assert.Equal(t, swap.CostSourcePriceFallback, result.CostSource)

		settlement := f.settlements.Calls[0].Arguments.Get(1).(*swap.ProfitSettlement)
		assert.True(t, settlement.CompanyItemCost.Equal(decimal.NewFromInt(1960)))
	})
}

func TestSwapService_CreateSwap_CodeCollision(t *testing.T) {
	t.Run("regenerates the code after a collision", func(t *testing.T) {
		f := newSwapFixture(t)
		codes := []string{"SWP-20260314-AAAAAA", "SWP-20260314-BBBBBB"}
		next := 0
		f.service.SetCodeGenerator(func(time.Time) string {
			code := codes[next]
			next++
			return code
		})

		f.customers.On("Exists", mock.Anything, f.tenantID, mock.Anything).Return(true, nil)
		f.catalog.On("GetItem", mock.Anything, f.tenantID, f.item.ID).Return(f.item, nil)
		f.swaps.On("Create", mock.Anything, mock.MatchedBy(func(s *swap.Swap) bool {
			return s.TransactionCode == codes[0]
		})).Return(shared.ErrDuplicateKey).Once()
		f.swaps.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		f.tradeIns.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.settlements.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.catalog.On("DecrementQuantity", mock.Anything, f.tenantID, f.item.ID, 1).Return(true, nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		result, err := f.service.CreateSwap(context.Background(), f.tenantID, f.request())
		require.NoError(t, err)
		assert.Equal(t, codes[1], result.TransactionCode)
		f.swaps.AssertNumberOfCalls(t, "Create", 2)
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		f := newSwapFixture(t)
		f.service.SetCodeGenerator(func(time.Time) string { return "SWP-20260314-SAMEEE" })
		f.customers.On("Exists", mock.Anything, f.tenantID, mock.Anything).Return(true, nil)
		f.catalog.On("GetItem", mock.Anything, f.tenantID, f.item.ID).Return(f.item, nil)
		f.swaps.On("Create", mock.Anything, mock.Anything).Return(shared.ErrDuplicateKey)

		_, err := f.service.CreateSwap(context.Background(), f.tenantID, f.request())
		assert.ErrorIs(t, err, shared.ErrTransactionFailed)
		f.swaps.AssertNumberOfCalls(t, "Create", DefaultCodeMaxAttempts)
		f.tradeIns.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestSwapService_GetSwap(t *testing.T) {
	f := newSwapFixture(t)
	sw, err := swap.NewSwap(f.tenantID, uuid.New(), f.item.ID, uuid.New(), uuid.New(),
		decimal.Zero, decimal.NewFromInt(2800), "SWP-20260314-ABCDEF")
	require.NoError(t, err)

	f.swaps.On("FindByIDForTenant", mock.Anything, f.tenantID, sw.ID).Return(sw, nil)
	f.swaps.On("FindByTransactionCode", mock.Anything, f.tenantID, "SWP-20260314-ABCDEF").Return(sw, nil)
	f.tradeIns.On("FindBySwapID", mock.Anything, f.tenantID, sw.ID).Return(nil, shared.ErrNotFound)
	f.settlements.On("FindBySwapID", mock.Anything, f.tenantID, sw.ID).Return(nil, shared.ErrNotFound)

	detail, err := f.service.GetSwap(context.Background(), f.tenantID, sw.ID)
	require.NoError(t, err)
	assert.Equal(t, sw.ID, detail.Swap.ID)
	assert.Nil(t, detail.TradeIn)

	byCode, err := f.service.GetSwapByCode(context.Background(), f.tenantID, " swp-20260314-abcdef ")
	require.NoError(t, err)
	assert.Equal(t, sw.ID, byCode.Swap.ID)

	missing := uuid.New()
	f.swaps.On("FindByIDForTenant", mock.Anything, f.tenantID, missing).Return(nil, shared.ErrNotFound)
	_, err = f.service.GetSwap(context.Background(), f.tenantID, missing)
	assert.True(t, shared.HasCode(err, shared.CodeNotFound))
}

func TestSwapService_ListSwaps(t *testing.T) {
	f := newSwapFixture(t)
	customerID := uuid.New()
	filter := SwapListFilter{Status: "completed", CustomerID: customerID.String(), Page: 2, PageSize: 10}

	f.swaps.On("FindAllForTenant", mock.Anything, f.tenantID, mock.MatchedBy(func(sf shared.Filter) bool {
		return sf.Filters["status"] == "completed" && sf.Filters["customer_id"] == customerID && sf.Offset() == 10
	})).Return([]swap.Swap{{TransactionCode: "SWP-1"}}, nil)
	f.swaps.On("CountForTenant", mock.Anything, f.tenantID, mock.Anything).Return(int64(11), nil)

	items, total, err := f.service.ListSwaps(context.Background(), f.tenantID, filter)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(11), total)

	f2 := newSwapFixture(t)
	f2.swaps.On("FindAllForTenant", mock.Anything, f2.tenantID, mock.Anything).Return(nil, fmt.Errorf("timeout"))
	_, _, err = f2.service.ListSwaps(context.Background(), f2.tenantID, SwapListFilter{})
	assert.ErrorIs(t, err, shared.ErrTransactionFailed)
}

func TestNewSwapService_CostFallbackRatio(t *testing.T) {
	assert.True(t, DefaultSwapServiceConfig().CostFallbackRatio.Equal(swap.DefaultCostFallbackRatio))

	unset := NewSwapService(nil, nil, nil, nil, nil, SwapServiceConfig{}, zap.NewNop())
	assert.True(t, unset.config.CostFallbackRatio.Equal(decimal.RequireFromString("0.7")))
	assert.Equal(t, DefaultCodeMaxAttempts, unset.config.CodeMaxAttempts)

	custom := NewSwapService(nil, nil, nil, nil, nil, SwapServiceConfig{CostFallbackRatio: decimal.RequireFromString("0.55")}, zap.NewNop())
	assert.True(t, custom.config.CostFallbackRatio.Equal(decimal.RequireFromString("0.55")))
}
