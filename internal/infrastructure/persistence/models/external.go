package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/phoneshop/backend/internal/domain/swap"
	"github.com/shopspring/decimal"
)

// Catalog item origins
const (
	CatalogOriginStock   = "stock"
	CatalogOriginTradeIn = "trade_in"
)

// CatalogItemModel is a sellable item of the inventory catalog.
// Cost columns are nullable; older rows carry only some of them.
type CatalogItemModel struct {
	BaseModel
	TenantID        uuid.UUID           `gorm:"type:uuid;not null;index"`
	Name            string              `gorm:"type:varchar(200);not null"`
	Brand           string              `gorm:"type:varchar(100)"`
	Model           string              `gorm:"type:varchar(200)"`
	IMEI            string              `gorm:"column:imei;type:varchar(32)"`
	CostPrice       decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	Cost            decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	PurchasePrice   decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	Price           decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Quantity        int                 `gorm:"not null;default:0;check:chk_catalog_items_quantity,quantity >= 0"`
	Origin          string              `gorm:"type:varchar(20);not null;default:'stock'"`
	SourceTradeInID *uuid.UUID          `gorm:"type:uuid;uniqueIndex:idx_catalog_source_trade_in"`
}

// TableName returns the table name for GORM
func (CatalogItemModel) TableName() string {
	return "catalog_items"
}

// ToDomain converts the model to the swap context's catalog view
func (m *CatalogItemModel) ToDomain() *swap.CatalogItem {
	return &swap.CatalogItem{
		ID:            m.ID,
		TenantID:      m.TenantID,
		Name:          m.Name,
		Brand:         m.Brand,
		Model:         m.Model,
		CostPrice:     fromNullDecimal(m.CostPrice),
		Cost:          fromNullDecimal(m.Cost),
		PurchasePrice: fromNullDecimal(m.PurchasePrice),
		Price:         m.Price,
		Quantity:      m.Quantity,
	}
}

// CatalogItemModelFromRelist builds a quantity-one trade-in listing
func CatalogItemModelFromRelist(attrs swap.RelistAttrs) *CatalogItemModel {
	now := time.Now().UTC()
	source := attrs.TradeInItemID
	return &CatalogItemModel{
		BaseModel:       BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:        attrs.TenantID,
		Name:            attrs.Name,
		Brand:           attrs.Brand,
		Model:           attrs.Model,
		IMEI:            attrs.IMEI,
		CostPrice:       decimal.NewNullDecimal(attrs.Cost),
		Price:           attrs.Price,
		Quantity:        1,
		Origin:          CatalogOriginTradeIn,
		SourceTradeInID: &source,
	}
}

// PosSaleModel is a completed sale recorded by the point-of-sale ledger
type PosSaleModel struct {
	BaseModel
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleNumber  string          `gorm:"type:varchar(50);not null"`
	FinalPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CompletedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PosSaleModel) TableName() string {
	return "pos_sales"
}

// ToDomain converts the model to a sale record
func (m *PosSaleModel) ToDomain() *swap.SaleRecord {
	return &swap.SaleRecord{
		ID:          m.ID,
		TenantID:    m.TenantID,
		SaleNumber:  m.SaleNumber,
		FinalPrice:  m.FinalPrice,
		CompletedAt: m.CompletedAt,
	}
}

// CustomerModel is the customer registry row; swaps only reference its ID
type CustomerModel struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"type:varchar(200);not null"`
	Phone    string    `gorm:"type:varchar(30)"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}
