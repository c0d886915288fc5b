package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// SwapSortFields contains allowed sort fields for swaps
var SwapSortFields = map[string]bool{
	"created_at":       true,
	"updated_at":       true,
	"transaction_code": true,
	"total_value":      true,
	"cash_added":       true,
	"status":           true,
}

// TradeInSortFields contains allowed sort fields for trade-in items
var TradeInSortFields = map[string]bool{
	"created_at":      true,
	"updated_at":      true,
	"brand":           true,
	"model":           true,
	"estimated_value": true,
	"resell_price":    true,
}
