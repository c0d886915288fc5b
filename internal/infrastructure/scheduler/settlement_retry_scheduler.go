package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	appswap "github.com/phoneshop/backend/internal/application/swap"
	"go.uber.org/zap"
)

// SettlementRetrier sweeps settlements whose legs are linked but unresolved
type SettlementRetrier interface {
	RetryPendingResolutions(ctx context.Context, batchSize int) (appswap.RetrySummary, error)
}

// SettlementRetryConfig holds configuration for the settlement retry loop
type SettlementRetryConfig struct {
	// Interval between sweeps while sweeps make progress
	Interval time.Duration
	// MaxInterval caps the backoff applied after sweeps that make no progress
	MaxInterval time.Duration
	// BatchSize is the number of settlements examined per sweep
	BatchSize int
}

// DefaultSettlementRetryConfig returns default retry configuration
func DefaultSettlementRetryConfig() SettlementRetryConfig {
	return SettlementRetryConfig{
		Interval:    time.Minute,
		MaxInterval: 30 * time.Minute,
		BatchSize:   50,
	}
}

// Validate checks the configuration
func (c SettlementRetryConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.MaxInterval < c.Interval {
		return fmt.Errorf("%w: max interval must be >= interval", ErrInvalidConfig)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("%w: batch size must be positive", ErrInvalidConfig)
	}
	return nil
}

// SettlementRetryScheduler periodically retries price resolution for
// settlements that have both legs linked but are still pending
type SettlementRetryScheduler struct {
	config  SettlementRetryConfig
	retrier SettlementRetrier
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	sweeps    int
}

// NewSettlementRetryScheduler creates a new retry scheduler
func NewSettlementRetryScheduler(
	config SettlementRetryConfig,
	retrier SettlementRetrier,
	logger *zap.Logger,
) (*SettlementRetryScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &SettlementRetryScheduler{
		config:  config,
		retrier: retrier,
		logger:  logger,
	}, nil
}

// Start starts the retry loop
func (s *SettlementRetryScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Settlement retry scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("max_interval", s.config.MaxInterval),
		zap.Int("batch_size", s.config.BatchSize),
	)
	return nil
}

// Stop stops the retry loop and waits for an in-flight sweep to return
func (s *SettlementRetryScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Settlement retry scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (s *SettlementRetryScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Sweeps returns the number of sweeps executed so far
func (s *SettlementRetryScheduler) Sweeps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweeps
}

func (s *SettlementRetryScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	delay := s.config.Interval
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			delay = s.nextDelay(delay, s.sweep(ctx))
			timer.Reset(delay)
		}
	}
}

// sweep runs one retry pass and reports whether it made progress
func (s *SettlementRetryScheduler) sweep(ctx context.Context) bool {
	s.mu.Lock()
	s.sweeps++
	s.mu.Unlock()

	summary, err := s.retrier.RetryPendingResolutions(ctx, s.config.BatchSize)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		s.logger.Error("Settlement retry sweep failed", zap.Error(err))
		return false
	}

	if summary.Scanned > 0 {
		s.logger.Info("Settlement retry sweep completed",
			zap.Int("scanned", summary.Scanned),
			zap.Int("finalized", summary.Finalized),
			zap.Int("failed", summary.Failed),
		)
	}
	// an empty sweep is idle, not stuck
	return summary.Scanned == 0 || summary.Finalized > 0
}

func (s *SettlementRetryScheduler) nextDelay(current time.Duration, progressed bool) time.Duration {
	if progressed {
		return s.config.Interval
	}
	next := current * 2
	if next > s.config.MaxInterval {
		next = s.config.MaxInterval
	}
	return next
}
