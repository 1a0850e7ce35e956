/*
sweeper.go - Background stale-lock sweeper

PURPOSE:
  A crashed rebuild can leave its window lock row behind, blocking every
  later rebuild of that window until an operator intervenes. The sweeper
  periodically deletes lock rows older than the TTL so the system heals
  itself.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - AcquireLock applies the same TTL check inline, so the sweeper is a
    backstop, not a correctness requirement

USAGE:
  sweeper := NewLockSweeper(store, log, ttl)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - store/sqlite: SweepExpiredLocks
  - handlers.go: ClearLock endpoint (manual release)
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/dispatch-engine/metrics"
	"github.com/warp/dispatch-engine/store/sqlite"
)

// LockSweeper removes abandoned planning locks in the background.
type LockSweeper struct {
	Store         *sqlite.Store
	Log           zerolog.Logger
	TTL           time.Duration
	CheckInterval time.Duration

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewLockSweeper creates a sweeper checking every five minutes.
func NewLockSweeper(store *sqlite.Store, log zerolog.Logger, ttl time.Duration) *LockSweeper {
	return &LockSweeper{
		Store:         store,
		Log:           log,
		TTL:           ttl,
		CheckInterval: 5 * time.Minute,
		stop:          make(chan bool),
	}
}

// Start begins the sweeper.
func (ls *LockSweeper) Start() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.TTL <= 0 {
		ls.Log.Info().Msg("lock sweeper disabled, TTL is zero")
		return
	}

	ls.ticker = time.NewTicker(ls.CheckInterval)
	ls.wg.Add(1)

	go ls.run()

	ls.Log.Info().
		Dur("ttl", ls.TTL).
		Dur("interval", ls.CheckInterval).
		Msg("lock sweeper started")
}

// Stop stops the sweeper.
func (ls *LockSweeper) Stop() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.ticker != nil {
		ls.ticker.Stop()
		close(ls.stop)
		ls.wg.Wait()
		ls.Log.Info().Msg("lock sweeper stopped")
	}
}

func (ls *LockSweeper) run() {
	defer ls.wg.Done()

	for {
		select {
		case <-ls.ticker.C:
			ls.sweep()
		case <-ls.stop:
			return
		}
	}
}

func (ls *LockSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := ls.Store.SweepExpiredLocks(ctx, ls.TTL)
	if err != nil {
		ls.Log.Error().Err(err).Msg("lock sweep failed")
		return
	}
	if n > 0 {
		metrics.StaleLocksSweptTotal.Add(float64(n))
		ls.Log.Warn().Int("swept", n).Msg("removed stale planning locks")
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (ls *LockSweeper) RunNow() {
	ls.sweep()
}
