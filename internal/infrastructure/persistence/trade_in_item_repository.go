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

// GormTradeInItemRepository implements TradeInItemRepository using GORM
type GormTradeInItemRepository struct {
	db *gorm.DB
}

// NewGormTradeInItemRepository creates a new GormTradeInItemRepository
func NewGormTradeInItemRepository(db *gorm.DB) *GormTradeInItemRepository {
	return &GormTradeInItemRepository{db: db}
}

// Create inserts a trade-in item
func (r *GormTradeInItemRepository) Create(ctx context.Context, item *swap.TradeInItem) error {
	return r.db.WithContext(ctx).Create(models.TradeInItemModelFromDomain(item)).Error
}

// FindByIDForTenant finds a trade-in item by ID within a tenant
func (r *GormTradeInItemRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*swap.TradeInItem, error) {
	return r.findOne(ctx, "tenant_id = ? AND id = ?", tenantID, id)
}

// FindBySwapID finds the trade-in item of a swap
func (r *GormTradeInItemRepository) FindBySwapID(ctx context.Context, tenantID, swapID uuid.UUID) (*swap.TradeInItem, error) {
	return r.findOne(ctx, "tenant_id = ? AND swap_id = ?", tenantID, swapID)
}

func (r *GormTradeInItemRepository) findOne(ctx context.Context, where string, args ...interface{}) (*swap.TradeInItem, error) {
	var model models.TradeInItemModel
	if err := r.db.WithContext(ctx).Where(where, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAvailableForResale lists in-stock trade-in items of a tenant
func (r *GormTradeInItemRepository) FindAvailableForResale(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]swap.TradeInItem, error) {
	var rows []models.TradeInItemModel
	orderBy := ValidateSortField(filter.OrderBy, TradeInSortFields, "created_at")
	query := r.available(ctx, tenantID).
		Order(orderBy + " " + ValidateSortOrder(filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit())
	if brand, ok := filter.Filters["brand"]; ok {
		query = query.Where("brand = ?", brand)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]swap.TradeInItem, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, nil
}

// CountAvailableForResale counts in-stock trade-in items of a tenant
func (r *GormTradeInItemRepository) CountAvailableForResale(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.available(ctx, tenantID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormTradeInItemRepository) available(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.TradeInItemModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, swap.TradeInStatusInStock)
}

// MarkSold persists the sale fields only while the item is still in stock
func (r *GormTradeInItemRepository) MarkSold(ctx context.Context, item *swap.TradeInItem) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.TradeInItemModel{}).
		Where("tenant_id = ? AND id = ? AND status = ?", item.TenantID, item.ID, swap.TradeInStatusInStock).
		Updates(map[string]interface{}{
			"status":       swap.TradeInStatusSold,
			"sale_id":      item.SaleID,
			"resold_at":    item.ResoldAt,
			"resell_price": item.ResellPrice,
			"updated_at":   item.UpdatedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// LinkInventory records the relisted catalog item once
func (r *GormTradeInItemRepository) LinkInventory(ctx context.Context, tenantID, id, inventoryID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.TradeInItemModel{}).
		Where("tenant_id = ? AND id = ? AND linked_inventory_id IS NULL", tenantID, id).
		Updates(map[string]interface{}{
			"linked_inventory_id": inventoryID,
			"updated_at":          time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Ensure GormTradeInItemRepository implements TradeInItemRepository
var _ swap.TradeInItemRepository = (*GormTradeInItemRepository)(nil)
