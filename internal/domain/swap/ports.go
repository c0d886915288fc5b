package swap

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogItem is the Inventory Catalog view of a sellable item
type CatalogItem struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	Name          string
	Brand         string
	Model         string
	CostPrice     *decimal.Decimal
	Cost          *decimal.Decimal
	PurchasePrice *decimal.Decimal
	Price         decimal.Decimal
	Quantity      int
}

// InStock reports whether at least one unit is available
func (c CatalogItem) InStock() bool {
	return c.Quantity > 0
}

// RelistAttrs describes a sellable catalog item derived from a trade-in
type RelistAttrs struct {
	TenantID      uuid.UUID
	TradeInItemID uuid.UUID
	Name          string
	Brand         string
	Model         string
	IMEI          string
	Price         decimal.Decimal
	Cost          decimal.Decimal
}

// CatalogGateway is the Inventory Catalog as consumed by swaps
type CatalogGateway interface {
	// GetItem returns a tenant-owned catalog item or shared.ErrNotFound
	GetItem(ctx context.Context, tenantID, itemID uuid.UUID) (*CatalogItem, error)

	// DecrementQuantity decrements quantity by n only if at least n units remain.
	// Returns false when the guard rejected the update.
	DecrementQuantity(ctx context.Context, tenantID, itemID uuid.UUID, n int) (bool, error)

	// InsertFromTradeIn inserts a sellable item with origin trade-in and returns its ID
	InsertFromTradeIn(ctx context.Context, attrs RelistAttrs) (uuid.UUID, error)
}

// SaleRecord is a completed Point-of-Sale sale
type SaleRecord struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	SaleNumber  string
	FinalPrice  decimal.Decimal
	CompletedAt time.Time
}

// SalesLedger is the Point-of-Sale Ledger as consumed by settlement
type SalesLedger interface {
	// GetSale returns a completed sale or shared.ErrNotFound
	GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleRecord, error)
}

// CustomerRegistry resolves opaque customer references
type CustomerRegistry interface {
	Exists(ctx context.Context, tenantID, customerID uuid.UUID) (bool, error)
}
