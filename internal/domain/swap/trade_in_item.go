package swap

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TradeInStatus represents the resale lifecycle of a traded-in device
type TradeInStatus string

const (
	TradeInStatusInStock TradeInStatus = "in_stock"
	TradeInStatusSold    TradeInStatus = "sold"
)

// IsValid checks if the status is a valid TradeInStatus
func (s TradeInStatus) IsValid() bool {
	return s == TradeInStatusInStock || s == TradeInStatusSold
}

// DeviceCondition grades the physical condition of a traded-in device
type DeviceCondition string

const (
	ConditionNew     DeviceCondition = "new"
	ConditionLikeNew DeviceCondition = "like_new"
	ConditionGood    DeviceCondition = "good"
	ConditionFair    DeviceCondition = "fair"
	ConditionPoor    DeviceCondition = "poor"
)

// IsValid checks if the condition is a known grade
func (c DeviceCondition) IsValid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

const maxIMEILength = 32

// TradeInDetails is the customer device description captured at the counter
type TradeInDetails struct {
	Brand               string
	Model               string
	IMEI                string
	Condition           DeviceCondition
	EstimatedValue      decimal.Decimal
	ResellPriceEstimate *decimal.Decimal
}

// Validate checks the details and fills the default condition
func (d *TradeInDetails) Validate() error {
	d.Brand = strings.TrimSpace(d.Brand)
	d.Model = strings.TrimSpace(d.Model)
	d.IMEI = strings.TrimSpace(d.IMEI)

	if d.Brand == "" {
		return shared.NewValidationError("Trade-in brand cannot be empty")
	}
	if d.Model == "" {
		return shared.NewValidationError("Trade-in model cannot be empty")
	}
	if len(d.IMEI) > maxIMEILength {
		return shared.NewValidationError(fmt.Sprintf("IMEI cannot exceed %d characters", maxIMEILength))
	}
	if d.Condition == "" {
		d.Condition = ConditionGood
	}
	if !d.Condition.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Unknown device condition %q", d.Condition))
	}
	if d.EstimatedValue.IsNegative() {
		return shared.NewValidationError("Estimated value cannot be negative")
	}
	if d.ResellPriceEstimate != nil && d.ResellPriceEstimate.IsNegative() {
		return shared.NewValidationError("Resell price estimate cannot be negative")
	}
	return nil
}

// ResellEstimate returns the assumed resale price, defaulting to the trade-in credit
func (d TradeInDetails) ResellEstimate() decimal.Decimal {
	if d.ResellPriceEstimate != nil {
		return *d.ResellPriceEstimate
	}
	return d.EstimatedValue
}

// TradeInItem is the device surrendered by the customer during a swap
type TradeInItem struct {
	shared.BaseEntity
	TenantID          uuid.UUID
	SwapID            uuid.UUID
	Brand             string
	Model             string
	IMEI              string
	Condition         DeviceCondition
	EstimatedValue    decimal.Decimal // trade-in credit, immutable
	ResellPrice       decimal.Decimal // asking price, updated on sale
	Status            TradeInStatus
	SaleID            *uuid.UUID
	ResoldAt          *time.Time
	LinkedInventoryID *uuid.UUID
}

// NewTradeInItem creates an in-stock trade-in item for a swap
func NewTradeInItem(tenantID, swapID uuid.UUID, details TradeInDetails) (*TradeInItem, error) {
	if err := details.Validate(); err != nil {
		return nil, err
	}
	if swapID == uuid.Nil {
		return nil, shared.NewValidationError("Swap ID is required")
	}
	return &TradeInItem{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       tenantID,
		SwapID:         swapID,
		Brand:          details.Brand,
		Model:          details.Model,
		IMEI:           details.IMEI,
		Condition:      details.Condition,
		EstimatedValue: details.EstimatedValue,
		ResellPrice:    details.ResellEstimate(),
		Status:         TradeInStatusInStock,
	}, nil
}

// DisplayName is the catalog name used when relisting
func (t *TradeInItem) DisplayName() string {
	return fmt.Sprintf("%s %s (trade-in, %s)", t.Brand, t.Model, t.Condition)
}

// IsSold returns true once the item has been resold
func (t *TradeInItem) IsSold() bool {
	return t.Status == TradeInStatusSold
}

// MarkSold records the resale. A repeat call with the same sale is a no-op
// and returns false; a different sale is rejected with ErrAlreadySold.
func (t *TradeInItem) MarkSold(saleID uuid.UUID, actualPrice decimal.Decimal, at time.Time) (bool, error) {
	if saleID == uuid.Nil {
		return false, shared.NewValidationError("Sale ID is required")
	}
	if actualPrice.IsNegative() {
		return false, shared.NewValidationError("Resale price cannot be negative")
	}
	if t.IsSold() {
		if t.SaleID != nil && *t.SaleID == saleID {
			return false, nil
		}
		return false, shared.ErrAlreadySold
	}

	if !actualPrice.Equal(t.ResellPrice) {
		t.ResellPrice = actualPrice
	}
	soldAt := at.UTC()
	t.Status = TradeInStatusSold
	t.SaleID = &saleID
	t.ResoldAt = &soldAt
	t.UpdatedAt = soldAt
	return true, nil
}

// RelistAttrs builds the catalog attributes for relisting this item
func (t *TradeInItem) RelistAttrs() RelistAttrs {
	return RelistAttrs{
		TenantID:      t.TenantID,
		TradeInItemID: t.ID,
		Name:          t.DisplayName(),
		Brand:         t.Brand,
		Model:         t.Model,
		IMEI:          t.IMEI,
		Price:         t.ResellPrice,
		Cost:          t.EstimatedValue,
	}
}
