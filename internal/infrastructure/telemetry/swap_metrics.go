package telemetry

import (
	"context"
	"errors"

	"github.com/google/uuid"
	appswap "github.com/phoneshop/backend/internal/application/swap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names exported by SwapMetrics.
const (
	MetricSwapCreated                = "shop_swap_created_total"
	MetricSwapRejected               = "shop_swap_rejected_total"
	MetricSettlementFinalized        = "shop_settlement_finalized_total"
	MetricSettlementResolutionFailed = "shop_settlement_resolution_failed_total"
)

// ErrMeterNil is returned when SwapMetrics is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// SwapMetrics records swap and settlement counters.
type SwapMetrics struct {
	swapCreated       *Counter
	swapRejected      *Counter
	settlementFinal   *Counter
	resolutionFailure *Counter
}

var _ appswap.Metrics = (*SwapMetrics)(nil)

// NewSwapMetrics registers the swap counters on meter.
func NewSwapMetrics(meter metric.Meter) (*SwapMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &SwapMetrics{}
	var err error

	if m.swapCreated, err = NewCounter(meter, MetricSwapCreated,
		"Total number of committed swaps", "{swaps}"); err != nil {
		return nil, err
	}
	if m.swapRejected, err = NewCounter(meter, MetricSwapRejected,
		"Total number of swaps rejected before commit", "{swaps}"); err != nil {
		return nil, err
	}
	if m.settlementFinal, err = NewCounter(meter, MetricSettlementFinalized,
		"Total number of finalized profit settlements", "{settlements}"); err != nil {
		return nil, err
	}
	if m.resolutionFailure, err = NewCounter(meter, MetricSettlementResolutionFailed,
		"Total number of settlement price resolution failures", "{attempts}"); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *SwapMetrics) SwapCreated(ctx context.Context, tenantID uuid.UUID, costDegraded bool) {
	m.swapCreated.Inc(ctx, tenantAttrs(tenantID, AttrCostDegraded.Bool(costDegraded))...)
}

func (m *SwapMetrics) SwapRejected(ctx context.Context, tenantID uuid.UUID, reason string) {
	m.swapRejected.Inc(ctx, tenantAttrs(tenantID, AttrReason.String(reason))...)
}

func (m *SwapMetrics) SettlementFinalized(ctx context.Context, tenantID uuid.UUID, costDegraded bool) {
	m.settlementFinal.Inc(ctx, tenantAttrs(tenantID, AttrCostDegraded.Bool(costDegraded))...)
}

func (m *SwapMetrics) SettlementResolutionFailed(ctx context.Context, tenantID uuid.UUID) {
	m.resolutionFailure.Inc(ctx, tenantAttrs(tenantID)...)
}

func tenantAttrs(tenantID uuid.UUID, extra ...attribute.KeyValue) []attribute.KeyValue {
	return append([]attribute.KeyValue{AttrTenantID.String(tenantID.String())}, extra...)
}
