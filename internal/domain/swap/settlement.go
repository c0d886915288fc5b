package swap

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SettlementStatus represents the state of a profit settlement
type SettlementStatus string

const (
	SettlementStatusPending   SettlementStatus = "pending"
	SettlementStatusFinalized SettlementStatus = "finalized"
)

// IsValid checks if the status is a valid SettlementStatus
func (s SettlementStatus) IsValid() bool {
	return s == SettlementStatusPending || s == SettlementStatusFinalized
}

// SettlementLeg identifies one of the two sales that close a settlement
type SettlementLeg string

const (
	LegCompanySale SettlementLeg = "company_sale"
	LegTradeInSale SettlementLeg = "trade_in_sale"
)

// IsValid checks if the leg is known
func (l SettlementLeg) IsValid() bool {
	return l == LegCompanySale || l == LegTradeInSale
}

// ProfitSettlement tracks the deferred, two-leg profit reconciliation of a swap
type ProfitSettlement struct {
	shared.BaseEntity
	TenantID        uuid.UUID
	SwapID          uuid.UUID
	CompanyItemCost decimal.Decimal
	TradeInValue    decimal.Decimal
	CashAdded       decimal.Decimal
	ProfitEstimate  decimal.Decimal
	CostSource      CostSource
	CostDegraded    bool

	CompanySaleID    *uuid.UUID
	TradeInSaleID    *uuid.UUID
	CompanySalePrice *decimal.Decimal
	TradeInSalePrice *decimal.Decimal
	CompanyLegProfit *decimal.Decimal
	ResaleLegProfit  *decimal.Decimal
	FinalProfit      *decimal.Decimal

	Status              SettlementStatus
	ResolutionAttempts  int
	LastResolutionError string
	FinalizedAt         *time.Time
}

// NewProfitSettlement opens a pending settlement with the estimate computed at swap time
func NewProfitSettlement(
	tenantID, swapID uuid.UUID,
	cost CostBasis,
	tradeInValue, cashAdded, resellEstimate decimal.Decimal,
) (*ProfitSettlement, error) {
	if swapID == uuid.Nil {
		return nil, shared.NewValidationError("Swap ID is required")
	}
	if !cost.Source.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown cost source %q", cost.Source))
	}
	return &ProfitSettlement{
		BaseEntity:      shared.NewBaseEntity(),
		TenantID:        tenantID,
		SwapID:          swapID,
		CompanyItemCost: cost.Amount,
		TradeInValue:    tradeInValue,
		CashAdded:       cashAdded,
		ProfitEstimate:  EstimateProfit(resellEstimate, cashAdded, cost.Amount, tradeInValue),
		CostSource:      cost.Source,
		CostDegraded:    cost.Degraded(),
		Status:          SettlementStatusPending,
	}, nil
}

// SaleFor returns the sale linked to the given leg, if any
func (s *ProfitSettlement) SaleFor(leg SettlementLeg) *uuid.UUID {
	if leg == LegCompanySale {
		return s.CompanySaleID
	}
	return s.TradeInSaleID
}

// LinkLeg attaches a sale to a leg. Linking the same sale again returns false;
// a different sale on an already linked leg is a conflict.
func (s *ProfitSettlement) LinkLeg(leg SettlementLeg, saleID uuid.UUID) (bool, error) {
	if !leg.IsValid() {
		return false, shared.NewValidationError(fmt.Sprintf("Unknown settlement leg %q", leg))
	}
	if saleID == uuid.Nil {
		return false, shared.NewValidationError("Sale ID is required")
	}
	if current := s.SaleFor(leg); current != nil {
		if *current == saleID {
			return false, nil
		}
		return false, shared.NewDomainError(shared.CodeSettlementLegConflict,
			fmt.Sprintf("Settlement %s leg is already linked to sale %s", leg, current.String()))
	}
	id := saleID
	if leg == LegCompanySale {
		s.CompanySaleID = &id
	} else {
		s.TradeInSaleID = &id
	}
	s.Touch()
	return true, nil
}

// HasBothLegs reports whether both sales are linked
func (s *ProfitSettlement) HasBothLegs() bool {
	return s.CompanySaleID != nil && s.TradeInSaleID != nil
}

// MissingLegs lists the legs still waiting for a sale
func (s *ProfitSettlement) MissingLegs() []SettlementLeg {
	missing := make([]SettlementLeg, 0, 2)
	if s.CompanySaleID == nil {
		missing = append(missing, LegCompanySale)
	}
	if s.TradeInSaleID == nil {
		missing = append(missing, LegTradeInSale)
	}
	return missing
}

// IsFinalized returns true once realized profit is computed
func (s *ProfitSettlement) IsFinalized() bool {
	return s.Status == SettlementStatusFinalized
}

// Finalize computes realized profit from both sale prices
func (s *ProfitSettlement) Finalize(companySalePrice, tradeInSalePrice decimal.Decimal, at time.Time) error {
	if s.IsFinalized() {
		return shared.NewDomainError(shared.CodeInvalidState, "Settlement is already finalized")
	}
	if !s.HasBothLegs() {
		return shared.ErrSettlementNotReady
	}

	profits := ComputeLegProfits(companySalePrice, tradeInSalePrice, s.CompanyItemCost, s.TradeInValue)
	finalizedAt := at.UTC()
	s.CompanySalePrice = &companySalePrice
	s.TradeInSalePrice = &tradeInSalePrice
	s.CompanyLegProfit = &profits.CompanyLeg
	s.ResaleLegProfit = &profits.ResaleLeg
	s.FinalProfit = &profits.Final
	s.Status = SettlementStatusFinalized
	s.FinalizedAt = &finalizedAt
	s.LastResolutionError = ""
	s.UpdatedAt = finalizedAt
	return nil
}

// RecordResolutionFailure notes a failed attempt to resolve sale prices
func (s *ProfitSettlement) RecordResolutionFailure(cause error) {
	s.ResolutionAttempts++
	if cause != nil {
		s.LastResolutionError = cause.Error()
	}
	s.Touch()
}

// SettlementStats aggregates settlements of a tenant. Estimated and realized
// profit are kept in separate fields and never summed together.
type SettlementStats struct {
	TotalCount              int64
	PendingCount            int64
	FinalizedCount          int64
	AwaitingCompanyLeg      int64
	AwaitingTradeInLeg      int64
	AwaitingResolution      int64
	ResolutionExhausted     int64 // awaiting resolution, no longer retried automatically
	DegradedCostCount       int64
	PendingProfitEstimate   decimal.Decimal
	FinalizedProfit         decimal.Decimal
	FinalizedDegradedProfit decimal.Decimal
}
