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

// GormSwapRepository implements SwapRepository using GORM
type GormSwapRepository struct {
	db *gorm.DB
}

// NewGormSwapRepository creates a new GormSwapRepository
func NewGormSwapRepository(db *gorm.DB) *GormSwapRepository {
	return &GormSwapRepository{db: db}
}

// FindByIDForTenant finds a swap by ID within a tenant
func (r *GormSwapRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*swap.Swap, error) {
	var model models.SwapModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTransactionCode finds a swap by its transaction code within a tenant
func (r *GormSwapRepository) FindByTransactionCode(ctx context.Context, tenantID uuid.UUID, code string) (*swap.Swap, error) {
	var model models.SwapModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND transaction_code = ?", tenantID, code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists swaps of a tenant with filtering and pagination
func (r *GormSwapRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]swap.Swap, error) {
	var rows []models.SwapModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SwapModel{}).Where("tenant_id = ?", tenantID), filter)

	orderBy := ValidateSortField(filter.OrderBy, SwapSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit())

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	swaps := make([]swap.Swap, len(rows))
	for i := range rows {
		swaps[i] = *rows[i].ToDomain()
	}
	return swaps, nil
}

// CountForTenant counts swaps matching the filter
func (r *GormSwapRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SwapModel{}).Where("tenant_id = ?", tenantID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a swap inside a savepoint so that a transaction code
// collision leaves the surrounding transaction usable for a retry.
func (r *GormSwapRepository) Create(ctx context.Context, s *swap.Swap) error {
	model := models.SwapModelFromDomain(s)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if isUniqueViolation(err) {
		return shared.ErrDuplicateKey
	}
	return err
}

// MarkResold moves a completed swap to resold
func (r *GormSwapRepository) MarkResold(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SwapModel{}).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, swap.SwapStatusCompleted).
		Updates(map[string]interface{}{
			"status":     swap.SwapStatusResold,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *GormSwapRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "company_item_id":
			query = query.Where("company_item_id = ?", value)
		}
	}
	return query
}

// Ensure GormSwapRepository implements SwapRepository
var _ swap.SwapRepository = (*GormSwapRepository)(nil)
