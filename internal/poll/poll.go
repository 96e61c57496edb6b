// Package poll runs a function on a fixed interval with at most one run in
// flight at a time.
package poll

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Ticker delivers ticks on C until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker returns a Ticker backed by time.Ticker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Poller calls fn on every tick. A tick that arrives while a previous run is
// still in flight is skipped. Errors from ticks are logged and dropped.
type Poller struct {
	name      string
	interval  time.Duration
	fn        func(context.Context) error
	newTicker func(time.Duration) Ticker

	running sync.Mutex
	skipped atomic.Int64

	mu       sync.Mutex
	started  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New returns a stopped poller. name labels its log lines. Call Start to
// begin ticking.
func New(name string, interval time.Duration, fn func(context.Context) error) *Poller {
	return &Poller{name: name, interval: interval, fn: fn, newTicker: NewTimeTicker}
}

// WithTicker replaces the ticker constructor. It must be called before Start.
func (p *Poller) WithTicker(newTicker func(time.Duration) Ticker) *Poller {
	p.newTicker = newTicker
	return p
}

// Start begins ticking until ctx is done or Stop is called. Calling Start
// more than once, or after Stop, has no effect.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)
	ticker := p.newTicker(p.interval)
	p.wg.Add(1)
	go p.loop(ctx, ticker)
}

func (p *Poller) loop(ctx context.Context, ticker Ticker) {
	defer p.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if !p.running.TryLock() {
				p.skipped.Add(1)
				slog.Debug("poll tick skipped, previous run in flight", "poller", p.name)
				continue
			}
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				defer p.running.Unlock()
				if err := p.fn(ctx); err != nil && ctx.Err() == nil {
					slog.Warn("poll failed", "poller", p.name, "error", err)
				}
			}()
		}
	}
}

// RunNow calls fn immediately, waiting for any in-flight run to finish
// first, and returns its error.
func (p *Poller) RunNow(ctx context.Context) error {
	p.running.Lock()
	defer p.running.Unlock()
	return p.fn(ctx)
}

// Stop cancels the poller's context, stops the ticker and waits for the loop
// and any in-flight run to return. It is safe to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.started = true
		cancel := p.cancel
		p.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		p.wg.Wait()
	})
}

// Skipped returns how many ticks were dropped because a run was in flight.
func (p *Poller) Skipped() int64 {
	return p.skipped.Load()
}
