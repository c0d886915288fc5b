package swap

import (
	"context"

	"github.com/phoneshop/backend/internal/domain/swap"
)

// TransactionScope runs the swap creation unit atomically.
// If fn returns an error, every write made through repos is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories bound to one transaction.
// The catalog gateway is included so the stock decrement commits or rolls
// back together with the swap, trade-in item and settlement rows.
type TransactionalRepositories interface {
	SwapRepo() swap.SwapRepository
	TradeInRepo() swap.TradeInItemRepository
	SettlementRepo() swap.SettlementRepository
	Catalog() swap.CatalogGateway
}

// NoOpTransactionScope hands out plain repositories without a transaction.
// Used with in-memory fakes in unit tests.
type NoOpTransactionScope struct {
	swapRepo       swap.SwapRepository
	tradeInRepo    swap.TradeInItemRepository
	settlementRepo swap.SettlementRepository
	catalog        swap.CatalogGateway
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	swapRepo swap.SwapRepository,
	tradeInRepo swap.TradeInItemRepository,
	settlementRepo swap.SettlementRepository,
	catalog swap.CatalogGateway,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		swapRepo:       swapRepo,
		tradeInRepo:    tradeInRepo,
		settlementRepo: settlementRepo,
		catalog:        catalog,
	}
}

// Execute runs fn directly.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) SwapRepo() swap.SwapRepository             { return s.swapRepo }
func (s *NoOpTransactionScope) TradeInRepo() swap.TradeInItemRepository   { return s.tradeInRepo }
func (s *NoOpTransactionScope) SettlementRepo() swap.SettlementRepository { return s.settlementRepo }
func (s *NoOpTransactionScope) Catalog() swap.CatalogGateway              { return s.catalog }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
