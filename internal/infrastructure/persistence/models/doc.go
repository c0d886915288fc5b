// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of GORM tags; each model converts to and from its
// domain type with ToDomain and FromDomain.
//
// Files:
//   - base.go: shared id, timestamp and tenant columns
//   - swap.go: swaps, trade_in_items and profit_settlements
//   - external.go: catalog_items, pos_sales and customers, owned by the
//     inventory, point-of-sale and customer contexts
//   - registry.go: the model list used for test schemas
package models
