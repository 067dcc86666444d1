/*
scheduler.go - Background pollers for rollover and native refresh

PURPOSE:
  The engine has no guaranteed background wake across platforms, so two
  tickers keep day-scoped state honest while the process is foregrounded:

  - Rollover tick (default 60s): stale-date check. Resets the daily usage
    map, the streak-shown flag, and lazily expires the streak when the
    calendar day changed while running.
  - Native tick (default 5s): re-reads the native earned/spent-today
    counters and reconciles the balance mirror against the authority.
    Skipped entirely when no authority is present.

  Both ticks only read or reset-if-stale; neither adds or subtracts
  against the balance, so they cannot lose a concurrent earn/spend.

USAGE:
  poller := NewPoller(engine, hasAuthority)
  poller.Start()
  // ... later
  poller.Stop()

SEE ALSO:
  - wallet/engine.go: CheckDayRollover, RefreshNativeCounters,
    ReconcileBalance
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/screenward/timewallet/wallet"
)

// Poller drives the periodic rollover and native-refresh checks.
type Poller struct {
	Engine          *wallet.Engine
	RolloverEvery   time.Duration
	NativeEvery     time.Duration
	NativeAvailable bool
	Log             zerolog.Logger

	stop chan struct{}
	wg   sync.WaitGroup
	mu   sync.Mutex
}

// NewPoller creates a poller with the default intervals.
func NewPoller(engine *wallet.Engine, nativeAvailable bool) *Poller {
	return &Poller{
		Engine:          engine,
		RolloverEvery:   60 * time.Second,
		NativeEvery:     5 * time.Second,
		NativeAvailable: nativeAvailable,
		Log:             zerolog.Nop(),
		stop:            make(chan struct{}),
	}
}

// Start launches the background ticks.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.wg.Add(1)
	go p.runRollover()
	if p.NativeAvailable {
		p.wg.Add(1)
		go p.runNative()
	}
	p.Log.Info().Dur("rollover", p.RolloverEvery).Dur("native", p.NativeEvery).
		Bool("nativeAvailable", p.NativeAvailable).Msg("poller started")
}

// Stop halts the ticks and waits for them to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	close(p.stop)
	p.wg.Wait()
	p.Log.Info().Msg("poller stopped")
}

func (p *Poller) runRollover() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.RolloverEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.Engine.CheckDayRollover(context.Background())
		case <-p.stop:
			return
		}
	}
}

func (p *Poller) runNative() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.NativeEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx := context.Background()
			p.Engine.RefreshNativeCounters(ctx)
			p.Engine.ReconcileBalance(ctx)
		case <-p.stop:
			return
		}
	}
}
