// Package timeout moves stale presentations to the timed out stage.
package timeout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/metrics"
)

// PresentationStore exposes what the sweeper needs from presentation persistence.
type PresentationStore interface {
	LoadIncompletePresentationsOlderThan(ctx context.Context, cutoff time.Time) ([]domain.Presentation, error)
	StorePresentation(ctx context.Context, p domain.Presentation) error
}

// Sweeper periodically times out presentations older than maxAge.
type Sweeper struct {
	store    PresentationStore
	maxAge   time.Duration
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures Sweeper.
type Option func(*Sweeper)

// WithInterval overrides the sweep interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(s *Sweeper) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger overrides slog.Default(). A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records sweep results on m. Without it no metrics are recorded.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

// New constructs a Sweeper.
func New(store PresentationStore, maxAge time.Duration, opts ...Option) (*Sweeper, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if maxAge <= 0 {
		return nil, fmt.Errorf("max age must be positive")
	}
	s := &Sweeper{
		store:    store,
		maxAge:   maxAge,
		interval: time.Minute,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Start runs a sweep every interval until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.ErrorContext(ctx, "timeout sweep failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce times out every incomplete presentation older than now - maxAge and returns the
// ids it stored. Presentations whose transition or store fails are skipped, not retried.
func (s *Sweeper) RunOnce(ctx context.Context) ([]domain.TransactionID, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveTimeoutSweepDuration(time.Since(start).Seconds())
	}()

	now := s.now()
	stale, err := s.store.LoadIncompletePresentationsOlderThan(ctx, now.Add(-s.maxAge))
	if err != nil {
		return nil, fmt.Errorf("load incomplete presentations: %w", err)
	}

	var timedOut []domain.TransactionID
	for _, p := range stale {
		id := p.Common().ID

		t, err := domain.TimeOut(p, now)
		if err != nil {
			s.logger.DebugContext(ctx, "skipping presentation",
				slog.String("transaction_id", id.String()),
				slog.String("error", err.Error()))
			continue
		}
		if err := s.store.StorePresentation(ctx, t); err != nil {
			s.logger.DebugContext(ctx, "skipping presentation",
				slog.String("transaction_id", id.String()),
				slog.String("error", err.Error()))
			continue
		}
		timedOut = append(timedOut, id)
	}

	if len(timedOut) > 0 {
		s.metrics.AddPresentationsTimedOut(len(timedOut))
		s.logger.InfoContext(ctx, "presentations timed out", slog.Int("count", len(timedOut)))
	}
	return timedOut, nil
}
