package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/phoneshop/backend/internal/domain/swap"
	"github.com/phoneshop/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSettlementRepository implements SettlementRepository using GORM.
// All state changes are conditional updates; callers inspect the returned
// bool instead of reading first.
type GormSettlementRepository struct {
	db *gorm.DB
}

// NewGormSettlementRepository creates a new GormSettlementRepository
func NewGormSettlementRepository(db *gorm.DB) *GormSettlementRepository {
	return &GormSettlementRepository{db: db}
}

// Create inserts a pending settlement
func (r *GormSettlementRepository) Create(ctx context.Context, s *swap.ProfitSettlement) error {
	return r.db.WithContext(ctx).Create(models.ProfitSettlementModelFromDomain(s)).Error
}

// FindBySwapID finds the settlement of a swap
func (r *GormSettlementRepository) FindBySwapID(ctx context.Context, tenantID, swapID uuid.UUID) (*swap.ProfitSettlement, error) {
	var model models.ProfitSettlementModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND swap_id = ?", tenantID, swapID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func legColumn(leg swap.SettlementLeg) (string, error) {
	switch leg {
	case swap.LegCompanySale:
		return "company_sale_id", nil
	case swap.LegTradeInSale:
		return "trade_in_sale_id", nil
	}
	return "", shared.NewValidationError(fmt.Sprintf("Unknown settlement leg %q", leg))
}

// LinkLeg sets the leg's sale only while the leg is empty
func (r *GormSettlementRepository) LinkLeg(ctx context.Context, tenantID, swapID uuid.UUID, leg swap.SettlementLeg, saleID uuid.UUID) (bool, error) {
	column, err := legColumn(leg)
	if err != nil {
		return false, err
	}
	result := r.db.WithContext(ctx).
		Model(&models.ProfitSettlementModel{}).
		Where("tenant_id = ? AND swap_id = ? AND "+column+" IS NULL", tenantID, swapID).
		Updates(map[string]interface{}{
			column:       saleID,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Finalize stores realized profit only if the row is still pending and linked
// to exactly the sales that were priced
func (r *GormSettlementRepository) Finalize(ctx context.Context, s *swap.ProfitSettlement) (bool, error) {
	if !s.IsFinalized() || !s.HasBothLegs() || s.FinalProfit == nil {
		return false, shared.ErrSettlementNotReady
	}
	result := r.db.WithContext(ctx).
		Model(&models.ProfitSettlementModel{}).
		Where("id = ? AND status = ? AND company_sale_id = ? AND trade_in_sale_id = ?",
			s.ID, swap.SettlementStatusPending, *s.CompanySaleID, *s.TradeInSaleID).
		Updates(map[string]interface{}{
			"status":                swap.SettlementStatusFinalized,
			"company_sale_price":    *s.CompanySalePrice,
			"trade_in_sale_price":   *s.TradeInSalePrice,
			"company_leg_profit":    *s.CompanyLegProfit,
			"resale_leg_profit":     *s.ResaleLegProfit,
			"final_profit":          *s.FinalProfit,
			"finalized_at":          s.FinalizedAt,
			"last_resolution_error": "",
			"updated_at":            s.UpdatedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// RecordResolutionFailure increments the attempt counter of a pending settlement
func (r *GormSettlementRepository) RecordResolutionFailure(ctx context.Context, id uuid.UUID, message string) error {
	return r.db.WithContext(ctx).
		Model(&models.ProfitSettlementModel{}).
		Where("id = ? AND status = ?", id, swap.SettlementStatusPending).
		Updates(map[string]interface{}{
			"resolution_attempts":   gorm.Expr("resolution_attempts + 1"),
			"last_resolution_error": message,
			"updated_at":            time.Now().UTC(),
		}).Error
}

// FindAwaitingResolution lists pending settlements with both legs linked
func (r *GormSettlementRepository) FindAwaitingResolution(ctx context.Context, maxAttempts, limit int) ([]swap.ProfitSettlement, error) {
	var rows []models.ProfitSettlementModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND company_sale_id IS NOT NULL AND trade_in_sale_id IS NOT NULL AND resolution_attempts < ?",
			swap.SettlementStatusPending, maxAttempts).
		Order("updated_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	settlements := make([]swap.ProfitSettlement, len(rows))
	for i := range rows {
		settlements[i] = *rows[i].ToDomain()
	}
	return settlements, nil
}

type settlementStatsRow struct {
	TotalCount              int64
	PendingCount            int64
	FinalizedCount          int64
	AwaitingCompanyLeg      int64
	AwaitingTradeInLeg      int64
	AwaitingResolution      int64
	ResolutionExhausted     int64
	DegradedCostCount       int64
	PendingProfitEstimate   decimal.Decimal
	FinalizedProfit         decimal.Decimal
	FinalizedDegradedProfit decimal.Decimal
}

const settlementStatsQuery = `
SELECT
	COUNT(*) AS total_count,
	COALESCE(SUM(CASE WHEN status = @pending THEN 1 ELSE 0 END), 0) AS pending_count,
	COALESCE(SUM(CASE WHEN status = @finalized THEN 1 ELSE 0 END), 0) AS finalized_count,
	COALESCE(SUM(CASE WHEN status = @pending AND company_sale_id IS NULL THEN 1 ELSE 0 END), 0) AS awaiting_company_leg,
	COALESCE(SUM(CASE WHEN status = @pending AND trade_in_sale_id IS NULL THEN 1 ELSE 0 END), 0) AS awaiting_trade_in_leg,
	COALESCE(SUM(CASE WHEN status = @pending AND company_sale_id IS NOT NULL AND trade_in_sale_id IS NOT NULL THEN 1 ELSE 0 END), 0) AS awaiting_resolution,
	COALESCE(SUM(CASE WHEN status = @pending AND company_sale_id IS NOT NULL AND trade_in_sale_id IS NOT NULL AND resolution_attempts >= @max_attempts THEN 1 ELSE 0 END), 0) AS resolution_exhausted,
	COALESCE(SUM(CASE WHEN cost_degraded = @degraded THEN 1 ELSE 0 END), 0) AS degraded_cost_count,
	COALESCE(SUM(CASE WHEN status = @pending THEN profit_estimate ELSE 0 END), 0) AS pending_profit_estimate,
	COALESCE(SUM(CASE WHEN status = @finalized THEN final_profit ELSE 0 END), 0) AS finalized_profit,
	COALESCE(SUM(CASE WHEN status = @finalized AND cost_degraded = @degraded THEN final_profit ELSE 0 END), 0) AS finalized_degraded_profit
FROM profit_settlements
WHERE tenant_id = @tenant`

// GetStats aggregates settlements of a tenant in a single query
func (r *GormSettlementRepository) GetStats(ctx context.Context, tenantID uuid.UUID, maxAttempts int) (*swap.SettlementStats, error) {
	var row settlementStatsRow
	if err := r.db.WithContext(ctx).Raw(settlementStatsQuery, map[string]interface{}{
		"pending":      swap.SettlementStatusPending,
		"finalized":    swap.SettlementStatusFinalized,
		"degraded":     true,
		"tenant":       tenantID,
		"max_attempts": maxAttempts,
	}).Scan(&row).Error; err != nil {
		return nil, err
	}
	return &swap.SettlementStats{
		TotalCount:              row.TotalCount,
		PendingCount:            row.PendingCount,
		FinalizedCount:          row.FinalizedCount,
		AwaitingCompanyLeg:      row.AwaitingCompanyLeg,
		AwaitingTradeInLeg:      row.AwaitingTradeInLeg,
		AwaitingResolution:      row.AwaitingResolution,
		ResolutionExhausted:     row.ResolutionExhausted,
		DegradedCostCount:       row.DegradedCostCount,
		PendingProfitEstimate:   row.PendingProfitEstimate,
		FinalizedProfit:         row.FinalizedProfit,
		FinalizedDegradedProfit: row.FinalizedDegradedProfit,
	}, nil
}

// Ensure GormSettlementRepository implements SettlementRepository
var _ swap.SettlementRepository = (*GormSettlementRepository)(nil)
