package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/phoneshop/backend/internal/domain/swap"
	"github.com/phoneshop/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCatalogGateway reads and updates the inventory catalog tables
type GormCatalogGateway struct {
	db *gorm.DB
}

// NewGormCatalogGateway creates a new GormCatalogGateway
func NewGormCatalogGateway(db *gorm.DB) *GormCatalogGateway {
	return &GormCatalogGateway{db: db}
}

// GetItem returns a tenant-owned catalog item
func (g *GormCatalogGateway) GetItem(ctx context.Context, tenantID, itemID uuid.UUID) (*swap.CatalogItem, error) {
	var model models.CatalogItemModel
	if err := g.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, itemID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// DecrementQuantity subtracts n units in a single guarded UPDATE.
// Concurrent callers serialize on the row; the loser sees zero affected rows.
func (g *GormCatalogGateway) DecrementQuantity(ctx context.Context, tenantID, itemID uuid.UUID, n int) (bool, error) {
	if n <= 0 {
		return false, shared.NewValidationError("Decrement quantity must be positive")
	}
	result := g.db.WithContext(ctx).
		Model(&models.CatalogItemModel{}).
		Where("tenant_id = ? AND id = ? AND quantity >= ?", tenantID, itemID, n).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", n),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// InsertFromTradeIn adds a quantity-one listing for a traded-in device.
// A second insert for the same trade-in hits the unique source index and
// returns the existing listing.
func (g *GormCatalogGateway) InsertFromTradeIn(ctx context.Context, attrs swap.RelistAttrs) (uuid.UUID, error) {
	model := models.CatalogItemModelFromRelist(attrs)
	err := g.db.WithContext(ctx).Create(model).Error
	if err == nil {
		return model.ID, nil
	}
	if !isUniqueViolation(err) {
		return uuid.Nil, err
	}

	var existing models.CatalogItemModel
	if err := g.db.WithContext(ctx).
		Select("id").
		Where("tenant_id = ? AND source_trade_in_id = ?", attrs.TenantID, attrs.TradeInItemID).
		First(&existing).Error; err != nil {
		return uuid.Nil, err
	}
	return existing.ID, nil
}

// GormSalesLedger looks up completed point-of-sale sales
type GormSalesLedger struct {
	db *gorm.DB
}

// NewGormSalesLedger creates a new GormSalesLedger
func NewGormSalesLedger(db *gorm.DB) *GormSalesLedger {
	return &GormSalesLedger{db: db}
}

// GetSale returns a completed sale of a tenant
func (l *GormSalesLedger) GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*swap.SaleRecord, error) {
	var model models.PosSaleModel
	if err := l.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, saleID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Sale " + saleID.String())
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GormCustomerRegistry checks customer references
type GormCustomerRegistry struct {
	db *gorm.DB
}

// NewGormCustomerRegistry creates a new GormCustomerRegistry
func NewGormCustomerRegistry(db *gorm.DB) *GormCustomerRegistry {
	return &GormCustomerRegistry{db: db}
}

// Exists reports whether the customer belongs to the tenant
func (c *GormCustomerRegistry) Exists(ctx context.Context, tenantID, customerID uuid.UUID) (bool, error) {
	var count int64
	if err := c.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, customerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var (
	_ swap.CatalogGateway   = (*GormCatalogGateway)(nil)
	_ swap.SalesLedger      = (*GormSalesLedger)(nil)
	_ swap.CustomerRegistry = (*GormCustomerRegistry)(nil)
)
