package nonce

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultRetention     = 12 * time.Hour
	DefaultSweepInterval = time.Hour
)

// Sweeper periodically removes consumed nonce records older than the
// retention window. It sweeps once immediately, then on every tick. A failed
// sweep is logged and the loop carries on.
type Sweeper struct {
	store     Store
	interval  time.Duration
	retention time.Duration
	logger    *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(store Store, interval, retention time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{store: store, interval: interval, retention: retention, logger: logger}
}

// Run sweeps until ctx is cancelled. It returns nil on cancellation.
func (s *Sweeper) Run(ctx context.Context) error {
	s.SweepOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.SweepOnce(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

// Start runs the loop on its own goroutine. Calling Start twice is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		_ = s.Run(ctx)
	}(s.done)
}

// Stop cancels the loop and waits for it to exit.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// SweepOnce performs a single sweep and reports how many records went.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	removed, err := s.store.Sweep(ctx, s.retention)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 0
		}
		s.logger.ErrorContext(ctx, "nonce sweep failed", "error", err)
		return 0
	}
	s.logger.InfoContext(ctx, "nonce sweep completed",
		"removed", removed,
		"retention", s.retention.String(),
	)
	return removed
}
