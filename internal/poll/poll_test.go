package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeTicker struct {
	ch    chan time.Time
	stops atomic.Int32
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time)}
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { f.stops.Add(1) }

func (f *fakeTicker) factory(time.Duration) Ticker { return f }

// waitFor polls cond until it holds or the test times out.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTicksCallFunction(t *testing.T) {
	ticker := newFakeTicker()
	var calls atomic.Int32
	p := New("test", time.Second, func(context.Context) error {
		calls.Add(1)
		return nil
	}).WithTicker(ticker.factory)
	p.Start(context.Background())
	defer p.Stop()

	for i := 1; i <= 3; i++ {
		ticker.ch <- time.Now()
		want := int32(i)
		waitFor(t, func() bool { return calls.Load() == want })
	}
}

func TestTickSkippedWhileInFlight(t *testing.T) {
	ticker := newFakeTicker()
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var calls atomic.Int32

	p := New("test", time.Second, func(context.Context) error {
		calls.Add(1)
		started <- struct{}{}
		<-release
		return nil
	}).WithTicker(ticker.factory)
	p.Start(context.Background())
	defer p.Stop()

	ticker.ch <- time.Now()
	<-started

	ticker.ch <- time.Now()
	waitFor(t, func() bool { return p.Skipped() == 1 })

	close(release)
	if calls.Load() != 1 {
		t.Errorf("expected 1 call while in flight, got %d", calls.Load())
	}
}

func TestRunNowWaitsForInFlight(t *testing.T) {
	ticker := newFakeTicker()
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	var calls atomic.Int32

	p := New("test", time.Second, func(context.Context) error {
		n := calls.Add(1)
		started <- struct{}{}
		if n == 1 {
			<-release
		}
		return nil
	}).WithTicker(ticker.factory)
	p.Start(context.Background())
	defer p.Stop()

	ticker.ch <- time.Now()
	<-started

	done := make(chan struct{})
	go func() {
		if err := p.RunNow(context.Background()); err != nil {
			t.Errorf("RunNow: %v", err)
		}
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("RunNow ran while a tick was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-done
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestStopStopsTickerExactlyOnce(t *testing.T) {
	ticker := newFakeTicker()
	p := New("test", time.Second, func(context.Context) error { return nil }).WithTicker(ticker.factory)
	p.Start(context.Background())

	p.Stop()
	p.Stop()
	p.Stop()

	if got := ticker.stops.Load(); got != 1 {
		t.Errorf("expected ticker stopped once, got %d", got)
	}
}

func TestStopCancelsInFlightRun(t *testing.T) {
	ticker := newFakeTicker()
	started := make(chan struct{})
	var cancelled atomic.Bool

	p := New("test", time.Second, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}).WithTicker(ticker.factory)
	p.Start(context.Background())

	ticker.ch <- time.Now()
	<-started
	p.Stop()

	if !cancelled.Load() {
		t.Error("expected in-flight run to observe cancellation before Stop returns")
	}
}

func TestStartAfterStopIsNoop(t *testing.T) {
	var created atomic.Int32
	p := New("test", time.Second, func(context.Context) error { return nil }).WithTicker(func(time.Duration) Ticker {
		created.Add(1)
		return newFakeTicker()
	})

	p.Stop()
	p.Start(context.Background())
	p.Stop()

	if created.Load() != 0 {
		t.Errorf("expected no ticker after Stop, got %d", created.Load())
	}
}

func TestRunNowReturnsError(t *testing.T) {
	boom := errors.New("boom")
	p := New("test", time.Second, func(context.Context) error { return boom })
	if err := p.RunNow(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}
