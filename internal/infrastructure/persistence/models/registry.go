package models

// All returns every persistence model, in dependency order.
// The versioned SQL migrations own the production schema; this list feeds
// gorm AutoMigrate for SQLite-backed tests.
func All() []any {
	return []any{
		&CustomerModel{},
		&CatalogItemModel{},
		&PosSaleModel{},
		&SwapModel{},
		&TradeInItemModel{},
		&ProfitSettlementModel{},
	}
}
