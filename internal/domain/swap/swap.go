package swap

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SwapStatus represents the status of a swap
type SwapStatus string

const (
	SwapStatusPending   SwapStatus = "pending"
	SwapStatusCompleted SwapStatus = "completed"
	SwapStatusResold    SwapStatus = "resold"
	SwapStatusCancelled SwapStatus = "cancelled"
)

// IsValid checks if the status is a valid SwapStatus
func (s SwapStatus) IsValid() bool {
	switch s {
	case SwapStatusPending, SwapStatusCompleted, SwapStatusResold, SwapStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of SwapStatus
func (s SwapStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s SwapStatus) CanTransitionTo(target SwapStatus) bool {
	switch s {
	case SwapStatusPending:
		return target == SwapStatusCompleted || target == SwapStatusCancelled
	case SwapStatusCompleted:
		return target == SwapStatusResold
	default:
		return false
	}
}

// Swap is the aggregate root of a trade-in exchange: the customer hands over a
// used device plus or minus cash and receives a company-owned device.
type Swap struct {
	shared.TenantAggregateRoot
	TransactionCode string
	CustomerID      uuid.UUID
	CompanyItemID   uuid.UUID
	TradeInItemID   uuid.UUID
	CashAdded       decimal.Decimal // signed, negative when the shop pays the customer
	TotalValue      decimal.Decimal // company item price captured at swap time
	Status          SwapStatus
	HandledBy       uuid.UUID
	Notes           string
}

// NewSwap creates a completed swap. The exchange happens in a single atomic
// unit, so a persisted swap never sits in pending.
func NewSwap(
	tenantID, customerID, companyItemID, tradeInItemID, handledBy uuid.UUID,
	cashAdded, totalValue decimal.Decimal,
	transactionCode string,
) (*Swap, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("Tenant ID is required")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("Customer ID is required")
	}
	if companyItemID == uuid.Nil {
		return nil, shared.NewValidationError("Company item ID is required")
	}
	if tradeInItemID == uuid.Nil {
		return nil, shared.NewValidationError("Trade-in item ID is required")
	}
	if handledBy == uuid.Nil {
		return nil, shared.NewValidationError("Handling employee is required")
	}
	if totalValue.IsNegative() {
		return nil, shared.NewValidationError("Total value cannot be negative")
	}
	if strings.TrimSpace(transactionCode) == "" {
		return nil, shared.NewValidationError("Transaction code cannot be empty")
	}

	s := &Swap{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		TransactionCode:     transactionCode,
		CustomerID:          customerID,
		CompanyItemID:       companyItemID,
		TradeInItemID:       tradeInItemID,
		CashAdded:           cashAdded,
		TotalValue:          totalValue,
		Status:              SwapStatusCompleted,
		HandledBy:           handledBy,
	}
	return s, nil
}

// AssignTransactionCode replaces the code after a uniqueness collision
func (s *Swap) AssignTransactionCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return shared.NewValidationError("Transaction code cannot be empty")
	}
	s.TransactionCode = code
	return nil
}

// RecordCreated queues the creation event; called once the swap is persisted
func (s *Swap) RecordCreated(tradeIn *TradeInItem) {
	s.AddDomainEvent(NewSwapCreatedEvent(s, tradeIn))
}

// MarkResold transitions the swap after its trade-in item was resold
func (s *Swap) MarkResold() error {
	if !s.Status.CanTransitionTo(SwapStatusResold) {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot mark swap resold in %s status", s.Status))
	}
	s.Status = SwapStatusResold
	s.Touch()
	return nil
}

// IsTerminal returns true if the swap can no longer change status
func (s *Swap) IsTerminal() bool {
	return s.Status == SwapStatusResold || s.Status == SwapStatusCancelled
}

// codeAlphabet omits 0/O and 1/I to keep codes readable over the counter
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// CodeGenerator produces a candidate transaction code for the given time
type CodeGenerator func(now time.Time) string

// GenerateTransactionCode returns a code of the form SWP-YYYYMMDD-XXXXXX.
// Uniqueness is enforced by the store, not here.
func GenerateTransactionCode(now time.Time) string {
	var buf [6]byte
	if _, err := rand.Read(buf[:]); err != nil {
		id := uuid.New()
		copy(buf[:], id[:len(buf)])
	}
	suffix := make([]byte, len(buf))
	for i, b := range buf {
		suffix[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return fmt.Sprintf("SWP-%s-%s", now.UTC().Format("20060102"), suffix)
}
