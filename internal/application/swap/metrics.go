package swap

import (
	"context"

	"github.com/google/uuid"
)

// Metrics receives business counters from the swap services
type Metrics interface {
	SwapCreated(ctx context.Context, tenantID uuid.UUID, costDegraded bool)
	SwapRejected(ctx context.Context, tenantID uuid.UUID, reason string)
	SettlementFinalized(ctx context.Context, tenantID uuid.UUID, costDegraded bool)
	SettlementResolutionFailed(ctx context.Context, tenantID uuid.UUID)
}

// NoopMetrics discards all measurements
type NoopMetrics struct{}

func (NoopMetrics) SwapCreated(context.Context, uuid.UUID, bool)          {}
func (NoopMetrics) SwapRejected(context.Context, uuid.UUID, string)       {}
func (NoopMetrics) SettlementFinalized(context.Context, uuid.UUID, bool)  {}
func (NoopMetrics) SettlementResolutionFailed(context.Context, uuid.UUID) {}

var _ Metrics = NoopMetrics{}
