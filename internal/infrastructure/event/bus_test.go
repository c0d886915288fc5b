package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/phoneshop/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Swap", uuid.New(), uuid.New())}
}

// MockEventHandler is a mock implementation of shared.EventHandler
type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventHandler) EventTypes() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

type panickingHandler struct{}

func (panickingHandler) Handle(context.Context, shared.DomainEvent) error { panic("boom") }
func (panickingHandler) EventTypes() []string                            { return []string{"swap.created"} }

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	assert.True(t, bus.IsRunning())

	created := new(MockEventHandler)
	created.On("EventTypes").Return([]string{"swap.created"})
	created.On("Handle", mock.Anything, mock.Anything).Return(errors.New("relist failed"))

	all := new(MockEventHandler)
	all.On("Handle", mock.Anything, mock.Anything).Return(nil)

	bus.Subscribe(panickingHandler{})
	bus.Subscribe(created)
	bus.registry.Register(all)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("swap.created"), newTestEvent("tradein.sold")))

	created.AssertNumberOfCalls(t, "Handle", 1)
	all.AssertNumberOfCalls(t, "Handle", 2)

	bus.Unsubscribe(created)
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("swap.created")))
	created.AssertNumberOfCalls(t, "Handle", 1)

	require.NoError(t, bus.Stop(context.Background()))
	assert.False(t, bus.IsRunning())
}

func TestHandlerRegistry(t *testing.T) {
	r := NewHandlerRegistry()
	h := new(MockEventHandler)
	r.Register(h, "a", "b")

	assert.Len(t, r.HandlersFor("a"), 1)
	assert.Len(t, r.HandlersFor("c"), 0)

	r.Unregister(h)
	assert.Empty(t, r.HandlersFor("a"))
	assert.Empty(t, r.handlers)
}

func TestIdempotentHandler(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()

	inner := new(MockEventHandler)
	inner.On("EventTypes").Return([]string{"swap.created"})
	inner.On("Handle", mock.Anything, mock.Anything).Return(nil)

	h := NewIdempotentHandler(inner, store, shared.DefaultIdempotencyConfig(), zap.NewNop())
	assert.Equal(t, []string{"swap.created"}, h.EventTypes())

	event := newTestEvent("swap.created")
	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), newTestEvent("swap.created")))

	inner.AssertNumberOfCalls(t, "Handle", 2)
	assert.Equal(t, IdempotencyStats{Processed: 2, Duplicates: 1}, h.Stats())
}

// failingStore reports the store as unavailable
type failingStore struct{}

func (failingStore) MarkProcessed(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}
func (failingStore) IsProcessed(context.Context, string) (bool, error) { return false, nil }
func (failingStore) Close() error                                      { return nil }

func TestIdempotentHandler_StoreUnavailable(t *testing.T) {
	inner := new(MockEventHandler)
	inner.On("Handle", mock.Anything, mock.Anything).Return(errors.New("catalog down")).Once()
	inner.On("Handle", mock.Anything, mock.Anything).Return(nil)

	h := NewIdempotentHandler(inner, failingStore{}, shared.DefaultIdempotencyConfig(), zap.NewNop())
	event := newTestEvent("swap.created")

	assert.Error(t, h.Handle(context.Background(), event))
	assert.NoError(t, h.Handle(context.Background(), event))
	assert.Equal(t, IdempotencyStats{Processed: 1, Failed: 1}, h.Stats())
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	inner := new(MockEventHandler)
	inner.On("Handle", mock.Anything, mock.Anything).Return(nil)

	h := NewIdempotentHandler(inner, failingStore{}, shared.IdempotencyConfig{Enabled: false}, zap.NewNop())
	event := newTestEvent("swap.created")
	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))
	inner.AssertNumberOfCalls(t, "Handle", 2)
}
