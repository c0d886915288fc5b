package swap

import (
	"github.com/google/uuid"
	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeSwap        = "Swap"
	AggregateTypeTradeInItem = "TradeInItem"
	AggregateTypeSettlement  = "ProfitSettlement"
)

// Event type constants
const (
	EventTypeSwapCreated         = "swap.created"
	EventTypeTradeInSold         = "tradein.sold"
	EventTypeSettlementLegLinked = "settlement.leg_linked"
	EventTypeSettlementFinalized = "settlement.finalized"
)

// SwapCreatedEvent is published after a swap transaction commits
type SwapCreatedEvent struct {
	shared.BaseDomainEvent
	SwapID          uuid.UUID       `json:"swap_id"`
	TransactionCode string          `json:"transaction_code"`
	CompanyItemID   uuid.UUID       `json:"company_item_id"`
	TradeInItemID   uuid.UUID       `json:"trade_in_item_id"`
	TotalValue      decimal.Decimal `json:"total_value"`
	CashAdded       decimal.Decimal `json:"cash_added"`
	ResellPrice     decimal.Decimal `json:"resell_price"`
}

// NewSwapCreatedEvent creates a new SwapCreatedEvent
func NewSwapCreatedEvent(s *Swap, tradeIn *TradeInItem) *SwapCreatedEvent {
	e := &SwapCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSwapCreated, AggregateTypeSwap, s.ID, s.TenantID),
		SwapID:          s.ID,
		TransactionCode: s.TransactionCode,
		CompanyItemID:   s.CompanyItemID,
		TradeInItemID:   s.TradeInItemID,
		TotalValue:      s.TotalValue,
		CashAdded:       s.CashAdded,
	}
	if tradeIn != nil {
		e.ResellPrice = tradeIn.ResellPrice
	}
	return e
}

// TradeInSoldEvent is published when a trade-in item is resold
type TradeInSoldEvent struct {
	shared.BaseDomainEvent
	TradeInItemID uuid.UUID       `json:"trade_in_item_id"`
	SwapID        uuid.UUID       `json:"swap_id"`
	SaleID        uuid.UUID       `json:"sale_id"`
	ResalePrice   decimal.Decimal `json:"resale_price"`
}

// NewTradeInSoldEvent creates a new TradeInSoldEvent
func NewTradeInSoldEvent(item *TradeInItem) *TradeInSoldEvent {
	e := &TradeInSoldEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTradeInSold, AggregateTypeTradeInItem, item.ID, item.TenantID),
		TradeInItemID:   item.ID,
		SwapID:          item.SwapID,
		ResalePrice:     item.ResellPrice,
	}
	if item.SaleID != nil {
		e.SaleID = *item.SaleID
	}
	return e
}

// SettlementLegLinkedEvent is published when a sale is attached to a settlement leg
type SettlementLegLinkedEvent struct {
	shared.BaseDomainEvent
	SwapID uuid.UUID     `json:"swap_id"`
	Leg    SettlementLeg `json:"leg"`
	SaleID uuid.UUID     `json:"sale_id"`
}

// NewSettlementLegLinkedEvent creates a new SettlementLegLinkedEvent
func NewSettlementLegLinkedEvent(s *ProfitSettlement, leg SettlementLeg, saleID uuid.UUID) *SettlementLegLinkedEvent {
	return &SettlementLegLinkedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettlementLegLinked, AggregateTypeSettlement, s.ID, s.TenantID),
		SwapID:          s.SwapID,
		Leg:             leg,
		SaleID:          saleID,
	}
}

// SettlementFinalizedEvent is published exactly once per settlement
type SettlementFinalizedEvent struct {
	shared.BaseDomainEvent
	SwapID           uuid.UUID       `json:"swap_id"`
	CompanyLegProfit decimal.Decimal `json:"company_leg_profit"`
	ResaleLegProfit  decimal.Decimal `json:"resale_leg_profit"`
	FinalProfit      decimal.Decimal `json:"final_profit"`
	CostDegraded     bool            `json:"cost_degraded"`
}

// NewSettlementFinalizedEvent creates a new SettlementFinalizedEvent
func NewSettlementFinalizedEvent(s *ProfitSettlement) *SettlementFinalizedEvent {
	e := &SettlementFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettlementFinalized, AggregateTypeSettlement, s.ID, s.TenantID),
		SwapID:          s.SwapID,
		CostDegraded:    s.CostDegraded,
	}
	if s.CompanyLegProfit != nil {
		e.CompanyLegProfit = *s.CompanyLegProfit
	}
	if s.ResaleLegProfit != nil {
		e.ResaleLegProfit = *s.ResaleLegProfit
	}
	if s.FinalProfit != nil {
		e.FinalProfit = *s.FinalProfit
	}
	return e
}
