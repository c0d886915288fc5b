package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phoneshop/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// CatalogItem describes a seeded stock item. Nil costs leave the column NULL.
type CatalogItem struct {
	Name          string
	Price         decimal.Decimal
	CostPrice     *decimal.Decimal
	Cost          *decimal.Decimal
	PurchasePrice *decimal.Decimal
	Quantity      int
}

// Dec parses a decimal literal, panicking on malformed input
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DecPtr is Dec returning a pointer
func DecPtr(s string) *decimal.Decimal {
	d := Dec(s)
	return &d
}

// SeedCustomer inserts a customer for the tenant and returns its ID
func SeedCustomer(t testing.TB, db *gorm.DB, tenantID uuid.UUID) uuid.UUID {
	t.Helper()
	m := &models.CustomerModel{
		BaseModel: newBase(),
		TenantID:  tenantID,
		Name:      "Walk-in customer",
	}
	require.NoError(t, db.Create(m).Error)
	return m.ID
}

// SeedCatalogItem inserts a stock item for the tenant and returns its ID
func SeedCatalogItem(t testing.TB, db *gorm.DB, tenantID uuid.UUID, item CatalogItem) uuid.UUID {
	t.Helper()
	if item.Name == "" {
		item.Name = "Samsung Galaxy S24"
	}
	m := &models.CatalogItemModel{
		BaseModel:     newBase(),
		TenantID:      tenantID,
		Name:          item.Name,
		CostPrice:     nullable(item.CostPrice),
		Cost:          nullable(item.Cost),
		PurchasePrice: nullable(item.PurchasePrice),
		Price:         item.Price,
		Quantity:      item.Quantity,
		Origin:        models.CatalogOriginStock,
	}
	// Quantity 0 would otherwise fall back to the column default.
	require.NoError(t, db.Select("*").Create(m).Error)
	return m.ID
}

// SeedSale records a completed point-of-sale sale and returns its ID
func SeedSale(t testing.TB, db *gorm.DB, tenantID uuid.UUID, finalPrice decimal.Decimal) uuid.UUID {
	t.Helper()
	return SeedSaleWithID(t, db, tenantID, uuid.New(), finalPrice)
}

// SeedSaleWithID records a sale under a known ID, e.g. one a settlement
// already references
func SeedSaleWithID(t testing.TB, db *gorm.DB, tenantID, saleID uuid.UUID, finalPrice decimal.Decimal) uuid.UUID {
	t.Helper()
	base := newBase()
	base.ID = saleID
	m := &models.PosSaleModel{
		BaseModel:   base,
		TenantID:    tenantID,
		SaleNumber:  "POS-" + uuid.NewString()[:8],
		FinalPrice:  finalPrice,
		CompletedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(m).Error)
	return m.ID
}

// CatalogQuantity returns the current quantity of a catalog item
func CatalogQuantity(t testing.TB, db *gorm.DB, itemID uuid.UUID) int {
	t.Helper()
	var m models.CatalogItemModel
	require.NoError(t, db.Where("id = ?", itemID).First(&m).Error)
	return m.Quantity
}

func newBase() models.BaseModel {
	now := time.Now().UTC()
	return models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

func nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
