package monitor

import (
	"sync"
	"time"
)

// fakeClock drives the controller's timers deterministically in tests.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
	timers  []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{
		clock:    c,
		ch:       make(chan time.Time, 1),
		interval: d,
		next:     c.now.Add(d),
	}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{
		clock:    c,
		deadline: c.now.Add(d),
		f:        f,
	}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward, firing every due ticker and timer in
// chronological order. Ticker sends are non-blocking, matching
// time.Ticker's coalescing behavior.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)

	for {
		var (
			earliest time.Time
			ticker   *fakeTicker
			timer    *fakeTimer
		)

		for _, t := range c.tickers {
			if t.stopped {
				continue
			}
			if !t.next.After(target) && (earliest.IsZero() || t.next.Before(earliest)) {
				earliest = t.next
				ticker = t
				timer = nil
			}
		}
		for _, t := range c.timers {
			if t.stopped || t.fired {
				continue
			}
			if !t.deadline.After(target) && (earliest.IsZero() || t.deadline.Before(earliest)) {
				earliest = t.deadline
				ticker = nil
				timer = t
			}
		}

		if ticker == nil && timer == nil {
			break
		}

		c.now = earliest
		if ticker != nil {
			select {
			case ticker.ch <- c.now:
			default:
			}
			ticker.next = ticker.next.Add(ticker.interval)
			continue
		}

		timer.fired = true
		f := timer.f
		c.mu.Unlock()
		f()
		c.mu.Lock()
	}

	c.now = target
	c.mu.Unlock()
}

type fakeTicker struct {
	clock    *fakeClock
	ch       chan time.Time
	interval time.Duration
	next     time.Time
	stopped  bool
}

func (t *fakeTicker) C() <-chan time.Time {
	return t.ch
}

func (t *fakeTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.stopped = true
}

type fakeTimer struct {
	clock    *fakeClock
	deadline time.Time
	f        func()
	fired    bool
	stopped  bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}
