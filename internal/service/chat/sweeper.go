package chat

import (
	"context"
	"log"
	"sync"
	"time"
)

// SweeperConfig controls the retention loop.
type SweeperConfig struct {
	Interval time.Duration
	MaxAge   time.Duration
}

// Sweeper periodically evicts sessions idle for longer than MaxAge.
type Sweeper struct {
	store *Store
	cfg   SweeperConfig

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper creates a sweeper with hourly ticks and a 24h threshold unless
// cfg overrides them.
func NewSweeper(store *Store, cfg SweeperConfig) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 24 * time.Hour
	}
	return &Sweeper{store: store, cfg: cfg}
}

// Start launches the background loop. It runs until ctx is done or Stop is
// called. Calling Start on a running sweeper is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
}

// Stop halts the loop and waits for it to exit.
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

// SweepOnce runs a single eviction pass.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	removed := s.store.EvictOlderThan(ctx, s.cfg.MaxAge)
	if removed > 0 {
		log.Printf("[sweeper] evicted %d idle sessions, %d remaining", removed, s.store.Len())
	}
	return removed
}

func (s *Sweeper) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}
