package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/phoneshop/backend/internal/domain/swap"
	"github.com/shopspring/decimal"
)

// SwapModel is the persistence model for the Swap aggregate root.
type SwapModel struct {
	TenantAggregateModel
	TransactionCode string          `gorm:"type:varchar(32);not null;uniqueIndex:idx_swaps_transaction_code"`
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CompanyItemID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	TradeInItemID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_swaps_trade_in_item"`
	CashAdded       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalValue      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status          swap.SwapStatus `gorm:"type:varchar(20);not null;default:'completed';index"`
	HandledBy       uuid.UUID       `gorm:"type:uuid;not null"`
	Notes           string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SwapModel) TableName() string {
	return "swaps"
}

// ToDomain converts the persistence model to a domain Swap.
func (m *SwapModel) ToDomain() *swap.Swap {
	return &swap.Swap{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		TransactionCode:     m.TransactionCode,
		CustomerID:          m.CustomerID,
		CompanyItemID:       m.CompanyItemID,
		TradeInItemID:       m.TradeInItemID,
		CashAdded:           m.CashAdded,
		TotalValue:          m.TotalValue,
		Status:              m.Status,
		HandledBy:           m.HandledBy,
		Notes:               m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Swap.
func (m *SwapModel) FromDomain(s *swap.Swap) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.TransactionCode = s.TransactionCode
	m.CustomerID = s.CustomerID
	m.CompanyItemID = s.CompanyItemID
	m.TradeInItemID = s.TradeInItemID
	m.CashAdded = s.CashAdded
	m.TotalValue = s.TotalValue
	m.Status = s.Status
	m.HandledBy = s.HandledBy
	m.Notes = s.Notes
}

// SwapModelFromDomain creates a new persistence model from a domain Swap.
func SwapModelFromDomain(s *swap.Swap) *SwapModel {
	m := &SwapModel{}
	m.FromDomain(s)
	return m
}

// TradeInItemModel is the persistence model for TradeInItem.
type TradeInItemModel struct {
	BaseModel
	TenantID          uuid.UUID            `gorm:"type:uuid;not null;index:idx_trade_in_tenant_status,priority:1"`
	SwapID            uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_trade_in_swap"`
	Brand             string               `gorm:"type:varchar(100);not null"`
	Model             string               `gorm:"type:varchar(200);not null"`
	IMEI              string               `gorm:"column:imei;type:varchar(32)"`
	Condition         swap.DeviceCondition `gorm:"type:varchar(20);not null;default:'good'"`
	EstimatedValue    decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	ResellPrice       decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Status            swap.TradeInStatus   `gorm:"type:varchar(20);not null;default:'in_stock';index:idx_trade_in_tenant_status,priority:2"`
	SaleID            *uuid.UUID           `gorm:"type:uuid"`
	ResoldAt          *time.Time
	LinkedInventoryID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (TradeInItemModel) TableName() string {
	return "trade_in_items"
}

// ToDomain converts the persistence model to a domain TradeInItem.
func (m *TradeInItemModel) ToDomain() *swap.TradeInItem {
	return &swap.TradeInItem{
		BaseEntity:        m.BaseModel.ToDomain(),
		TenantID:          m.TenantID,
		SwapID:            m.SwapID,
		Brand:             m.Brand,
		Model:             m.Model,
		IMEI:              m.IMEI,
		Condition:         m.Condition,
		EstimatedValue:    m.EstimatedValue,
		ResellPrice:       m.ResellPrice,
		Status:            m.Status,
		SaleID:            m.SaleID,
		ResoldAt:          m.ResoldAt,
		LinkedInventoryID: m.LinkedInventoryID,
	}
}

// FromDomain populates the persistence model from a domain TradeInItem.
func (m *TradeInItemModel) FromDomain(t *swap.TradeInItem) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.TenantID = t.TenantID
	m.SwapID = t.SwapID
	m.Brand = t.Brand
	m.Model = t.Model
	m.IMEI = t.IMEI
	m.Condition = t.Condition
	m.EstimatedValue = t.EstimatedValue
	m.ResellPrice = t.ResellPrice
	m.Status = t.Status
	m.SaleID = t.SaleID
	m.ResoldAt = t.ResoldAt
	m.LinkedInventoryID = t.LinkedInventoryID
}

// TradeInItemModelFromDomain creates a new persistence model from a domain TradeInItem.
func TradeInItemModelFromDomain(t *swap.TradeInItem) *TradeInItemModel {
	m := &TradeInItemModel{}
	m.FromDomain(t)
	return m
}

// ProfitSettlementModel is the persistence model for ProfitSettlement.
type ProfitSettlementModel struct {
	BaseModel
	TenantID            uuid.UUID             `gorm:"type:uuid;not null;index"`
	SwapID              uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_settlement_swap"`
	CompanyItemCost     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TradeInValue        decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	CashAdded           decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	ProfitEstimate      decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	CostSource          swap.CostSource       `gorm:"type:varchar(20);not null"`
	CostDegraded        bool                  `gorm:"not null;default:false"`
	CompanySaleID       *uuid.UUID            `gorm:"type:uuid"`
	TradeInSaleID       *uuid.UUID            `gorm:"type:uuid"`
	CompanySalePrice    decimal.NullDecimal   `gorm:"type:decimal(18,4)"`
	TradeInSalePrice    decimal.NullDecimal   `gorm:"type:decimal(18,4)"`
	CompanyLegProfit    decimal.NullDecimal   `gorm:"type:decimal(18,4)"`
	ResaleLegProfit     decimal.NullDecimal   `gorm:"type:decimal(18,4)"`
	FinalProfit         decimal.NullDecimal   `gorm:"type:decimal(18,4)"`
	Status              swap.SettlementStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	ResolutionAttempts  int                   `gorm:"not null;default:0"`
	LastResolutionError string                `gorm:"type:text"`
	FinalizedAt         *time.Time
}

// TableName returns the table name for GORM
func (ProfitSettlementModel) TableName() string {
	return "profit_settlements"
}

// ToDomain converts the persistence model to a domain ProfitSettlement.
func (m *ProfitSettlementModel) ToDomain() *swap.ProfitSettlement {
	return &swap.ProfitSettlement{
		BaseEntity:          m.BaseModel.ToDomain(),
		TenantID:            m.TenantID,
		SwapID:              m.SwapID,
		CompanyItemCost:     m.CompanyItemCost,
		TradeInValue:        m.TradeInValue,
		CashAdded:           m.CashAdded,
		ProfitEstimate:      m.ProfitEstimate,
		CostSource:          m.CostSource,
		CostDegraded:        m.CostDegraded,
		CompanySaleID:       m.CompanySaleID,
		TradeInSaleID:       m.TradeInSaleID,
		CompanySalePrice:    fromNullDecimal(m.CompanySalePrice),
		TradeInSalePrice:    fromNullDecimal(m.TradeInSalePrice),
		CompanyLegProfit:    fromNullDecimal(m.CompanyLegProfit),
		ResaleLegProfit:     fromNullDecimal(m.ResaleLegProfit),
		FinalProfit:         fromNullDecimal(m.FinalProfit),
		Status:              m.Status,
		ResolutionAttempts:  m.ResolutionAttempts,
		LastResolutionError: m.LastResolutionError,
		FinalizedAt:         m.FinalizedAt,
	}
}

// FromDomain populates the persistence model from a domain ProfitSettlement.
func (m *ProfitSettlementModel) FromDomain(s *swap.ProfitSettlement) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.TenantID = s.TenantID
	m.SwapID = s.SwapID
	m.CompanyItemCost = s.CompanyItemCost
	m.TradeInValue = s.TradeInValue
	m.CashAdded = s.CashAdded
	m.ProfitEstimate = s.ProfitEstimate
	m.CostSource = s.CostSource
	m.CostDegraded = s.CostDegraded
	m.CompanySaleID = s.CompanySaleID
	m.TradeInSaleID = s.TradeInSaleID
	m.CompanySalePrice = toNullDecimal(s.CompanySalePrice)
	m.TradeInSalePrice = toNullDecimal(s.TradeInSalePrice)
	m.CompanyLegProfit = toNullDecimal(s.CompanyLegProfit)
	m.ResaleLegProfit = toNullDecimal(s.ResaleLegProfit)
	m.FinalProfit = toNullDecimal(s.FinalProfit)
	m.Status = s.Status
	m.ResolutionAttempts = s.ResolutionAttempts
	m.LastResolutionError = s.LastResolutionError
	m.FinalizedAt = s.FinalizedAt
}

// ProfitSettlementModelFromDomain creates a new persistence model from a domain ProfitSettlement.
func ProfitSettlementModelFromDomain(s *swap.ProfitSettlement) *ProfitSettlementModel {
	m := &ProfitSettlementModel{}
	m.FromDomain(s)
	return m
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func fromNullDecimal(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}
