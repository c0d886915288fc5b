package swap

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/phoneshop/backend/internal/domain/swap"
	"github.com/shopspring/decimal"
)

// TradeInInput describes the device handed over by the customer
type TradeInInput struct {
	Brand               string           `json:"brand" binding:"required,max=100"`
	Model               string           `json:"model" binding:"required,max=100"`
	IMEI                string           `json:"imei" binding:"omitempty,max=32"`
	Condition           string           `json:"condition" binding:"omitempty,swap_condition"`
	EstimatedValue      decimal.Decimal  `json:"estimated_value" binding:"decimal_gte0"`
	ResellPriceEstimate *decimal.Decimal `json:"resell_price_estimate" binding:"omitempty,decimal_gte0"`
}

func (in TradeInInput) details() swap.TradeInDetails {
	return swap.TradeInDetails{
		Brand:               in.Brand,
		Model:               in.Model,
		IMEI:                in.IMEI,
		Condition:           swap.DeviceCondition(strings.ToLower(strings.TrimSpace(in.Condition))),
		EstimatedValue:      in.EstimatedValue,
		ResellPriceEstimate: in.ResellPriceEstimate,
	}
}

// CreateSwapRequest is the input of CreateSwap
type CreateSwapRequest struct {
	CustomerID    uuid.UUID       `json:"customer_id" binding:"required"`
	CompanyItemID uuid.UUID       `json:"company_item_id" binding:"required"`
	TradeIn       TradeInInput    `json:"trade_in"`
	CashAdded     decimal.Decimal `json:"cash_added"`
	HandledBy     uuid.UUID       `json:"handled_by" binding:"required"`
	Notes         string          `json:"notes" binding:"max=500"`
}

// CreateSwapResult is returned once the swap unit committed
type CreateSwapResult struct {
	SwapID          uuid.UUID       `json:"swap_id"`
	TransactionCode string          `json:"transaction_code"`
	TradeInItemID   uuid.UUID       `json:"trade_in_item_id"`
	SettlementID    uuid.UUID       `json:"settlement_id"`
	TotalValue      decimal.Decimal `json:"total_value"`
	ProfitEstimate  decimal.Decimal `json:"profit_estimate"`
	CostSource      swap.CostSource `json:"cost_source"`
	CostDegraded    bool            `json:"cost_degraded"`
	Status          swap.SwapStatus `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// SwapListFilter represents filter options for the swap list
type SwapListFilter struct {
	Status        string `form:"status" binding:"omitempty,oneof=pending completed resold cancelled"`
	CustomerID    string `form:"customer_id" binding:"omitempty,uuid"`
	CompanyItemID string `form:"company_item_id" binding:"omitempty,uuid"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string `form:"order_by"`
	OrderDir      string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f SwapListFilter) toShared() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Filters:  map[string]interface{}{},
	}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	if id, err := uuid.Parse(f.CustomerID); err == nil {
		filter.Filters["customer_id"] = id
	}
	if id, err := uuid.Parse(f.CompanyItemID); err == nil {
		filter.Filters["company_item_id"] = id
	}
	return filter
}

// TradeInListFilter represents filter options for resale listings
type TradeInListFilter struct {
	Brand    string `form:"brand"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f TradeInListFilter) toShared() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Filters:  map[string]interface{}{},
	}
	if f.Brand != "" {
		filter.Filters["brand"] = f.Brand
	}
	return filter
}

// LinkLegRequest attaches a completed POS sale to a settlement leg
type LinkLegRequest struct {
	SaleID uuid.UUID `json:"sale_id" binding:"required"`
}

// MarkSoldRequest records the resale of a trade-in item
type MarkSoldRequest struct {
	SaleID            uuid.UUID       `json:"sale_id" binding:"required"`
	ActualResalePrice decimal.Decimal `json:"actual_resale_price" binding:"decimal_gte0"`
}

// SwapResponse represents a swap in API responses
type SwapResponse struct {
	ID              uuid.UUID       `json:"id"`
	TransactionCode string          `json:"transaction_code"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	CompanyItemID   uuid.UUID       `json:"company_item_id"`
	TradeInItemID   uuid.UUID       `json:"trade_in_item_id"`
	CashAdded       decimal.Decimal `json:"cash_added"`
	TotalValue      decimal.Decimal `json:"total_value"`
	Status          swap.SwapStatus `json:"status"`
	HandledBy       uuid.UUID       `json:"handled_by"`
	Notes           string          `json:"notes,omitempty"`
	Version         int             `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToSwapResponse converts a swap to its response form
func ToSwapResponse(s *swap.Swap) SwapResponse {
	return SwapResponse{
		ID:              s.ID,
		TransactionCode: s.TransactionCode,
		CustomerID:      s.CustomerID,
		CompanyItemID:   s.CompanyItemID,
		TradeInItemID:   s.TradeInItemID,
		CashAdded:       s.CashAdded,
		TotalValue:      s.TotalValue,
		Status:          s.Status,
		HandledBy:       s.HandledBy,
		Notes:           s.Notes,
		Version:         s.Version,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// TradeInItemResponse represents a trade-in item in API responses
type TradeInItemResponse struct {
	ID                uuid.UUID            `json:"id"`
	SwapID            uuid.UUID            `json:"swap_id"`
	Brand             string               `json:"brand"`
	Model             string               `json:"model"`
	IMEI              string               `json:"imei,omitempty"`
	Condition         swap.DeviceCondition `json:"condition"`
	EstimatedValue    decimal.Decimal      `json:"estimated_value"`
	ResellPrice       decimal.Decimal      `json:"resell_price"`
	Status            swap.TradeInStatus   `json:"status"`
	SaleID            *uuid.UUID           `json:"sale_id,omitempty"`
	ResoldAt          *time.Time           `json:"resold_at,omitempty"`
	LinkedInventoryID *uuid.UUID           `json:"linked_inventory_id,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// ToTradeInItemResponse converts a trade-in item to its response form
func ToTradeInItemResponse(t *swap.TradeInItem) TradeInItemResponse {
	return TradeInItemResponse{
		ID:                t.ID,
		SwapID:            t.SwapID,
		Brand:             t.Brand,
		Model:             t.Model,
		IMEI:              t.IMEI,
		Condition:         t.Condition,
		EstimatedValue:    t.EstimatedValue,
		ResellPrice:       t.ResellPrice,
		Status:            t.Status,
		SaleID:            t.SaleID,
		ResoldAt:          t.ResoldAt,
		LinkedInventoryID: t.LinkedInventoryID,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

// SettlementResponse represents a profit settlement in API responses
type SettlementResponse struct {
	ID                  uuid.UUID             `json:"id"`
	SwapID              uuid.UUID             `json:"swap_id"`
	Status              swap.SettlementStatus `json:"status"`
	CompanyItemCost     decimal.Decimal       `json:"company_item_cost"`
	TradeInValue        decimal.Decimal       `json:"trade_in_value"`
	CashAdded           decimal.Decimal       `json:"cash_added"`
	ProfitEstimate      decimal.Decimal       `json:"profit_estimate"`
	CostSource          swap.CostSource       `json:"cost_source"`
	CostDegraded        bool                  `json:"cost_degraded"`
	CompanySaleID       *uuid.UUID            `json:"company_sale_id"`
	TradeInSaleID       *uuid.UUID            `json:"trade_in_sale_id"`
	CompanySalePrice    *decimal.Decimal      `json:"company_sale_price,omitempty"`
	TradeInSalePrice    *decimal.Decimal      `json:"trade_in_sale_price,omitempty"`
	CompanyLegProfit    *decimal.Decimal      `json:"company_leg_profit,omitempty"`
	ResaleLegProfit     *decimal.Decimal      `json:"resale_leg_profit,omitempty"`
	FinalProfit         *decimal.Decimal      `json:"final_profit"`
	ResolutionAttempts  int                   `json:"resolution_attempts"`
	LastResolutionError string                `json:"last_resolution_error,omitempty"`
	FinalizedAt         *time.Time            `json:"finalized_at,omitempty"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// ToSettlementResponse converts a settlement to its response form
func ToSettlementResponse(s *swap.ProfitSettlement) SettlementResponse {
	return SettlementResponse{
		ID:                  s.ID,
		SwapID:              s.SwapID,
		Status:              s.Status,
		CompanyItemCost:     s.CompanyItemCost,
		TradeInValue:        s.TradeInValue,
		CashAdded:           s.CashAdded,
		ProfitEstimate:      s.ProfitEstimate,
		CostSource:          s.CostSource,
		CostDegraded:        s.CostDegraded,
		CompanySaleID:       s.CompanySaleID,
		TradeInSaleID:       s.TradeInSaleID,
		CompanySalePrice:    s.CompanySalePrice,
		TradeInSalePrice:    s.TradeInSalePrice,
		CompanyLegProfit:    s.CompanyLegProfit,
		ResaleLegProfit:     s.ResaleLegProfit,
		FinalProfit:         s.FinalProfit,
		ResolutionAttempts:  s.ResolutionAttempts,
		LastResolutionError: s.LastResolutionError,
		FinalizedAt:         s.FinalizedAt,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

// SwapDetailResponse is a swap together with its trade-in item and settlement
type SwapDetailResponse struct {
	Swap       SwapResponse         `json:"swap"`
	TradeIn    *TradeInItemResponse `json:"trade_in,omitempty"`
	Settlement *SettlementResponse  `json:"settlement,omitempty"`
}

// LinkLegResult reports the settlement state after a leg was linked.
// A missing leg or an unresolvable sale is not an error: the settlement stays
// pending and the reason is carried here.
type LinkLegResult struct {
	Settlement      SettlementResponse `json:"settlement"`
	Linked          bool               `json:"linked"`
	Finalized       bool               `json:"finalized"`
	AwaitingLegs    []string           `json:"awaiting_legs,omitempty"`
	ResolutionError string             `json:"resolution_error,omitempty"`
}

// MarkSoldResult reports the trade-in item after a sale and the settlement outcome
type MarkSoldResult struct {
	Item            TradeInItemResponse `json:"item"`
	AlreadyRecorded bool                `json:"already_recorded"`
	Settlement      *LinkLegResult      `json:"settlement,omitempty"`
}

// SettlementStatsResponse aggregates settlements of a tenant.
// Estimated and realized profit are reported separately.
type SettlementStatsResponse struct {
	TotalCount              int64           `json:"total_count"`
	PendingCount            int64           `json:"pending_count"`
	FinalizedCount          int64           `json:"finalized_count"`
	AwaitingCompanyLeg      int64           `json:"awaiting_company_leg"`
	AwaitingTradeInLeg      int64           `json:"awaiting_trade_in_leg"`
	AwaitingResolution      int64           `json:"awaiting_resolution"`
	ResolutionExhausted     int64           `json:"resolution_exhausted"`
	DegradedCostCount       int64           `json:"degraded_cost_count"`
	PendingProfitEstimate   decimal.Decimal `json:"pending_profit_estimate"`
	FinalizedProfit         decimal.Decimal `json:"finalized_profit"`
	FinalizedDegradedProfit decimal.Decimal `json:"finalized_degraded_profit"`
}

// RetrySummary reports one sweep over settlements awaiting resolution
type RetrySummary struct {
	Scanned   int
	Finalized int
	Failed    int
}
