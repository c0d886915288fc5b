package persistence

import (
	"context"

	appswap "github.com/phoneshop/backend/internal/application/swap"
	"github.com/phoneshop/backend/internal/domain/swap"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction. Any error returned by fn
// rolls the whole transaction back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appswap.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) SwapRepo() swap.SwapRepository {
	return NewGormSwapRepository(r.tx)
}

func (r *gormTransactionalRepositories) TradeInRepo() swap.TradeInItemRepository {
	return NewGormTradeInItemRepository(r.tx)
}

func (r *gormTransactionalRepositories) SettlementRepo() swap.SettlementRepository {
	return NewGormSettlementRepository(r.tx)
}

func (r *gormTransactionalRepositories) Catalog() swap.CatalogGateway {
	return NewGormCatalogGateway(r.tx)
}

var (
	_ appswap.TransactionScope          = (*GormTransactionScope)(nil)
	_ appswap.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
