package swap

import (
	"github.com/shopspring/decimal"
)

// CostSource records where the company item cost used for a swap came from
type CostSource string

const (
	CostSourceCostPrice     CostSource = "cost_price"
	CostSourceCost          CostSource = "cost"
	CostSourcePurchasePrice CostSource = "purchase_price"
	CostSourcePriceFallback CostSource = "price_fallback"
)

// IsValid checks if the cost source is a known value
func (s CostSource) IsValid() bool {
	switch s {
	case CostSourceCostPrice, CostSourceCost, CostSourcePurchasePrice, CostSourcePriceFallback:
		return true
	}
	return false
}

// IsDegraded reports whether the cost was derived from the selling price instead of a stored cost
func (s CostSource) IsDegraded() bool {
	return s == CostSourcePriceFallback
}

// DefaultCostFallbackRatio is the share of the selling price assumed as cost when no cost is stored
var DefaultCostFallbackRatio = decimal.RequireFromString("0.70")

// CostBasis is a resolved company item cost together with its provenance
type CostBasis struct {
	Amount decimal.Decimal
	Source CostSource
}

// Degraded reports whether the amount is an estimate rather than a recorded cost
func (c CostBasis) Degraded() bool {
	return c.Source.IsDegraded()
}

// ResolveCost picks the company item cost: explicit cost price, then generic cost,
// then purchase price, and finally fallbackRatio of the selling price.
// Missing or non-positive stored costs are skipped.
func ResolveCost(item CatalogItem, fallbackRatio decimal.Decimal) CostBasis {
	candidates := []struct {
		value  *decimal.Decimal
		source CostSource
	}{
		{item.CostPrice, CostSourceCostPrice},
		{item.Cost, CostSourceCost},
		{item.PurchasePrice, CostSourcePurchasePrice},
	}
	for _, c := range candidates {
		if c.value != nil && c.value.IsPositive() {
			return CostBasis{Amount: *c.value, Source: c.source}
		}
	}
	if !fallbackRatio.IsPositive() {
		fallbackRatio = DefaultCostFallbackRatio
	}
	return CostBasis{
		Amount: item.Price.Mul(fallbackRatio).Round(4),
		Source: CostSourcePriceFallback,
	}
}

// Profit is the single formula shared by estimated and final swap profit:
// (companyRevenue + tradeInRevenue) - (companyItemCost + tradeInValue)
func Profit(companyRevenue, tradeInRevenue, companyItemCost, tradeInValue decimal.Decimal) decimal.Decimal {
	return companyRevenue.Add(tradeInRevenue).Sub(companyItemCost.Add(tradeInValue))
}

// EstimateProfit computes the profit expected at swap time from the assumed resale price
func EstimateProfit(resellEstimate, cashAdded, companyItemCost, tradeInValue decimal.Decimal) decimal.Decimal {
	return Profit(cashAdded, resellEstimate, companyItemCost, tradeInValue)
}

// LegProfits is the realized profit split per settlement leg
type LegProfits struct {
	CompanyLeg decimal.Decimal
	ResaleLeg  decimal.Decimal
	Final      decimal.Decimal
}

// ComputeLegProfits computes the realized profit once both sale prices are known
func ComputeLegProfits(companySalePrice, tradeInResalePrice, companyItemCost, tradeInValue decimal.Decimal) LegProfits {
	return LegProfits{
		CompanyLeg: companySalePrice.Sub(companyItemCost),
		ResaleLeg:  tradeInResalePrice.Sub(tradeInValue),
		Final:      Profit(companySalePrice, tradeInResalePrice, companyItemCost, tradeInValue),
	}
}
