package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/phoneshop/backend/internal/domain/swap"
	"github.com/phoneshop/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type swapFixture struct {
	swap       *swap.Swap
	tradeIn    *swap.TradeInItem
	settlement *swap.ProfitSettlement
}

func seedSwap(t *testing.T, db *gorm.DB, tenantID uuid.UUID, code string) swapFixture {
	t.Helper()
	ctx := context.Background()

	s, err := swap.NewSwap(tenantID, uuid.New(), uuid.New(), uuid.New(), uuid.New(),
		testutil.Dec("0"), testutil.Dec("2800"), code)
	require.NoError(t, err)
	require.NoError(t, NewGormSwapRepository(db).Create(ctx, s))

	item, err := swap.NewTradeInItem(tenantID, s.ID, swap.TradeInDetails{
		Brand:               "Apple",
		Model:               "iPhone 13",
		EstimatedValue:      testutil.Dec("1200"),
		ResellPriceEstimate: testutil.DecPtr("1700"),
	})
	require.NoError(t, err)
	item.ID = s.TradeInItemID
	require.NoError(t, NewGormTradeInItemRepository(db).Create(ctx, item))

	settlement, err := swap.NewProfitSettlement(tenantID, s.ID,
		swap.CostBasis{Amount: testutil.Dec("2000"), Source: swap.CostSourceCostPrice},
		testutil.Dec("1200"), testutil.Dec("0"), testutil.Dec("1700"))
	require.NoError(t, err)
	require.NoError(t, NewGormSettlementRepository(db).Create(ctx, settlement))

	return swapFixture{swap: s, tradeIn: item, settlement: settlement}
}

func TestGormSwapRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormSwapRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	f := seedSwap(t, db, tenantID, "SWP-20260101-ABCDEF")

	t.Run("find by id and code", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, f.swap.ID)
		require.NoError(t, err)
		assert.Equal(t, f.swap.TransactionCode, found.TransactionCode)
		assert.True(t, found.TotalValue.Equal(testutil.Dec("2800")))

		byCode, err := repo.FindByTransactionCode(ctx, tenantID, "SWP-20260101-ABCDEF")
		require.NoError(t, err)
		assert.Equal(t, f.swap.ID, byCode.ID)
	})

	t.Run("other tenant sees nothing", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), f.swap.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("duplicate transaction code", func(t *testing.T) {
		dup, err := swap.NewSwap(tenantID, uuid.New(), uuid.New(), uuid.New(), uuid.New(),
			testutil.Dec("0"), testutil.Dec("100"), "SWP-20260101-ABCDEF")
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrDuplicateKey)
	})

	t.Run("mark resold once", func(t *testing.T) {
		moved, err := repo.MarkResold(ctx, tenantID, f.swap.ID)
		require.NoError(t, err)
		assert.True(t, moved)

		moved, err = repo.MarkResold(ctx, tenantID, f.swap.ID)
		require.NoError(t, err)
		assert.False(t, moved)

		found, err := repo.FindByIDForTenant(ctx, tenantID, f.swap.ID)
		require.NoError(t, err)
		assert.Equal(t, swap.SwapStatusResold, found.Status)
	})

	t.Run("list with status filter", func(t *testing.T) {
		seedSwap(t, db, tenantID, "SWP-20260101-GHJKLM")
		filter := shared.DefaultFilter()
		filter.Filters["status"] = string(swap.SwapStatusCompleted)

		swaps, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		require.Len(t, swaps, 1)
		assert.Equal(t, "SWP-20260101-GHJKLM", swaps[0].TransactionCode)

		total, err := repo.CountForTenant(ctx, tenantID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})
}

func TestGormTradeInItemRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormTradeInItemRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	f := seedSwap(t, db, tenantID, "SWP-20260101-TRADE1")

	found, err := repo.FindBySwapID(ctx, tenantID, f.swap.ID)
	require.NoError(t, err)
	assert.Equal(t, f.tradeIn.ID, found.ID)
	assert.True(t, found.ResellPrice.Equal(testutil.Dec("1700")))

	available, err := repo.FindAvailableForResale(ctx, tenantID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, available, 1)

	t.Run("link inventory once", func(t *testing.T) {
		first := uuid.New()
		linked, err := repo.LinkInventory(ctx, tenantID, f.tradeIn.ID, first)
		require.NoError(t, err)
		assert.True(t, linked)

		linked, err = repo.LinkInventory(ctx, tenantID, f.tradeIn.ID, uuid.New())
		require.NoError(t, err)
		assert.False(t, linked)

		found, err := repo.FindByIDForTenant(ctx, tenantID, f.tradeIn.ID)
		require.NoError(t, err)
		require.NotNil(t, found.LinkedInventoryID)
		assert.Equal(t, first, *found.LinkedInventoryID)
	})

	t.Run("mark sold only while in stock", func(t *testing.T) {
		item, err := repo.FindByIDForTenant(ctx, tenantID, f.tradeIn.ID)
		require.NoError(t, err)
		_, err = item.MarkSold(uuid.New(), testutil.Dec("1650"), time.Now())
		require.NoError(t, err)

		persisted, err := repo.MarkSold(ctx, item)
		require.NoError(t, err)
		assert.True(t, persisted)

		rival, err := repo.FindByIDForTenant(ctx, tenantID, f.tradeIn.ID)
		require.NoError(t, err)
		assert.Equal(t, swap.TradeInStatusSold, rival.Status)
		assert.True(t, rival.ResellPrice.Equal(testutil.Dec("1650")))

		// a stale copy still believing the item is in stock loses
		stale := *f.tradeIn
		_, err = stale.MarkSold(uuid.New(), testutil.Dec("1700"), time.Now())
		require.NoError(t, err)
		persisted, err = repo.MarkSold(ctx, &stale)
		require.NoError(t, err)
		assert.False(t, persisted)

		count, err := repo.CountAvailableForResale(ctx, tenantID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestGormSettlementRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormSettlementRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	f := seedSwap(t, db, tenantID, "SWP-20260101-SETTLE")
	companySale, tradeInSale := uuid.New(), uuid.New()

	t.Run("link leg only while empty", func(t *testing.T) {
		linked, err := repo.LinkLeg(ctx, tenantID, f.swap.ID, swap.LegCompanySale, companySale)
		require.NoError(t, err)
		assert.True(t, linked)

		linked, err = repo.LinkLeg(ctx, tenantID, f.swap.ID, swap.LegCompanySale, uuid.New())
		require.NoError(t, err)
		assert.False(t, linked)

		_, err = repo.LinkLeg(ctx, tenantID, f.swap.ID, swap.SettlementLeg("refund"), uuid.New())
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})

	t.Run("finalize requires both legs", func(t *testing.T) {
		_, err := repo.Finalize(ctx, f.settlement)
		assert.ErrorIs(t, err, shared.ErrSettlementNotReady)
	})

	t.Run("resolution failures are counted", func(t *testing.T) {
		_, err := repo.LinkLeg(ctx, tenantID, f.swap.ID, swap.LegTradeInSale, tradeInSale)
		require.NoError(t, err)
		require.NoError(t, repo.RecordResolutionFailure(ctx, f.settlement.ID, "sale not found"))

		awaiting, err := repo.FindAwaitingResolution(ctx, 5, 10)
		require.NoError(t, err)
		require.Len(t, awaiting, 1)
		assert.Equal(t, 1, awaiting[0].ResolutionAttempts)
		assert.Equal(t, "sale not found", awaiting[0].LastResolutionError)

		exhausted, err := repo.FindAwaitingResolution(ctx, 1, 10)
		require.NoError(t, err)
		assert.Empty(t, exhausted)

		stats, err := repo.GetStats(ctx, tenantID, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.AwaitingResolution)
		assert.Equal(t, int64(1), stats.ResolutionExhausted)

		stats, err = repo.GetStats(ctx, tenantID, 5)
		require.NoError(t, err)
		assert.Zero(t, stats.ResolutionExhausted)
	})

	t.Run("finalize once against the linked sales", func(t *testing.T) {
		current, err := repo.FindBySwapID(ctx, tenantID, f.swap.ID)
		require.NoError(t, err)
		require.NoError(t, current.Finalize(testutil.Dec("2800"), testutil.Dec("1700"), time.Now()))

		won, err := repo.Finalize(ctx, current)
		require.NoError(t, err)
		assert.True(t, won)

		won, err = repo.Finalize(ctx, current)
		require.NoError(t, err)
		assert.False(t, won)

		stored, err := repo.FindBySwapID(ctx, tenantID, f.swap.ID)
		require.NoError(t, err)
		assert.Equal(t, swap.SettlementStatusFinalized, stored.Status)
		assert.True(t, stored.FinalProfit.Equal(testutil.Dec("1300")))
		assert.Empty(t, stored.LastResolutionError)
	})

	t.Run("stats split estimate and realized profit", func(t *testing.T) {
		seedSwap(t, db, tenantID, "SWP-20260101-SETTL2")

		stats, err := repo.GetStats(ctx, tenantID, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.TotalCount)
		assert.Equal(t, int64(1), stats.PendingCount)
		assert.Equal(t, int64(1), stats.FinalizedCount)
		assert.Equal(t, int64(1), stats.AwaitingCompanyLeg)
		assert.Equal(t, int64(1), stats.AwaitingTradeInLeg)
		assert.True(t, stats.FinalizedProfit.Equal(testutil.Dec("1300")))
		// 0 + 1700 - 2000 - 1200
		assert.True(t, stats.PendingProfitEstimate.Equal(testutil.Dec("-1500")), "got %s", stats.PendingProfitEstimate)

		empty, err := repo.GetStats(ctx, uuid.New(), 5)
		require.NoError(t, err)
		assert.Zero(t, empty.TotalCount)
		assert.True(t, empty.FinalizedProfit.IsZero())
	})
}

func TestGormCatalogGateway(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	gateway := NewGormCatalogGateway(db)
	ctx := context.Background()
	tenantID := uuid.New()

	itemID := testutil.SeedCatalogItem(t, db, tenantID, testutil.CatalogItem{
		Price:         testutil.Dec("1000"),
		PurchasePrice: testutil.DecPtr("650"),
		Quantity:      2,
	})

	item, err := gateway.GetItem(ctx, tenantID, itemID)
	require.NoError(t, err)
	assert.Nil(t, item.CostPrice)
	require.NotNil(t, item.PurchasePrice)
	assert.True(t, item.PurchasePrice.Equal(testutil.Dec("650")))

	_, err = gateway.GetItem(ctx, uuid.New(), itemID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	t.Run("decrement never goes below zero", func(t *testing.T) {
		ok, err := gateway.DecrementQuantity(ctx, tenantID, itemID, 3)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = gateway.DecrementQuantity(ctx, tenantID, itemID, 2)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 0, testutil.CatalogQuantity(t, db, itemID))

		ok, err = gateway.DecrementQuantity(ctx, tenantID, itemID, 1)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = gateway.DecrementQuantity(ctx, tenantID, itemID, 0)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})

	t.Run("relist is keyed by trade-in", func(t *testing.T) {
		attrs := swap.RelistAttrs{
			TenantID:      tenantID,
			TradeInItemID: uuid.New(),
			Name:          "Apple iPhone 13",
			Brand:         "Apple",
			Model:         "iPhone 13",
			Price:         testutil.Dec("1700"),
			Cost:          testutil.Dec("1200"),
		}
		first, err := gateway.InsertFromTradeIn(ctx, attrs)
		require.NoError(t, err)
		second, err := gateway.InsertFromTradeIn(ctx, attrs)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, testutil.CatalogQuantity(t, db, first))
	})
}

func TestGormSalesLedgerAndCustomers(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	tenantID := uuid.New()

	saleID := testutil.SeedSale(t, db, tenantID, testutil.Dec("2799.99"))
	sale, err := NewGormSalesLedger(db).GetSale(ctx, tenantID, saleID)
	require.NoError(t, err)
	assert.True(t, sale.FinalPrice.Equal(testutil.Dec("2799.99")))

	_, err = NewGormSalesLedger(db).GetSale(ctx, tenantID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	customerID := testutil.SeedCustomer(t, db, tenantID)
	customers := NewGormCustomerRegistry(db)
	exists, err := customers.Exists(ctx, tenantID, customerID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = customers.Exists(ctx, uuid.New(), customerID)
	require.NoError(t, err)
	assert.False(t, exists)
}
