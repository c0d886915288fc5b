package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phoneshop/backend/internal/domain/swap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockGormDB opens gorm on sqlmock with the postgres dialect
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestDecrementQuantity_GuardedUpdate(t *testing.T) {
	tenantID, itemID := uuid.New(), uuid.New()

	t.Run("row updated", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "catalog_items" SET .*"quantity"=quantity - \$1.* WHERE tenant_id = \$3 AND id = \$4 AND quantity >= \$5`).
			WithArgs(1, sqlmock.AnyArg(), tenantID, itemID, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := NewGormCatalogGateway(db).DecrementQuantity(context.Background(), tenantID, itemID, 1)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("guard rejects", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "catalog_items" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := NewGormCatalogGateway(db).DecrementQuantity(context.Background(), tenantID, itemID, 1)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "catalog_items" SET`).
			WillReturnError(errors.New("connection reset"))

		_, err := NewGormCatalogGateway(db).DecrementQuantity(context.Background(), tenantID, itemID, 1)
		assert.EqualError(t, err, "connection reset")
	})
}

func TestLinkLeg_OnlyEmptyColumn(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	tenantID, swapID, saleID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectExec(`UPDATE "profit_settlements" SET .*"trade_in_sale_id"=.* WHERE tenant_id = \$\d AND swap_id = \$\d AND trade_in_sale_id IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	linked, err := NewGormSettlementRepository(db).LinkLeg(context.Background(), tenantID, swapID, swap.LegTradeInSale, saleID)
	require.NoError(t, err)
	assert.False(t, linked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkSold_OnlyInStock(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	item := &swap.TradeInItem{TenantID: uuid.New()}
	item.ID = uuid.New()
	sale := uuid.New()
	item.SaleID = &sale

	mock.ExpectExec(`UPDATE "trade_in_items" SET .* WHERE tenant_id = \$\d+ AND id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := NewGormTradeInItemRepository(db).MarkSold(context.Background(), item)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"translated", gorm.ErrDuplicatedKey, true},
		{"postgres", errors.New(`duplicate key value violates unique constraint "idx_swaps_transaction_code" (SQLSTATE 23505)`), true},
		{"sqlite", errors.New("UNIQUE constraint failed: swaps.transaction_code"), true},
		{"other", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}
