package watcher

import (
	"sync"
	"time"
)

type fakeWaiter struct {
	deadline time.Time
	interval time.Duration
	ch       chan time.Time
	stopped  bool
	fired    bool
}

// fakeClock only moves on Advance or Jump.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*fakeWaiter
	changed *sync.Cond
}

func newFakeClock(start time.Time) *fakeClock {
	c := &fakeClock{now: start}
	c.changed = sync.NewCond(&c.mu)
	return c
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) add(d, interval time.Duration) *fakeWaiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := &fakeWaiter{deadline: c.now.Add(d), interval: interval, ch: make(chan time.Time, 1)}
	c.waiters = append(c.waiters, w)
	c.changed.Broadcast()
	return w
}

func (c *fakeClock) NewTimer(d time.Duration) *Timer {
	w := c.add(d, 0)
	return &Timer{C: w.ch, stopFunc: func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		active := !w.stopped && !w.fired
		w.stopped = true
		return active
	}}
}

func (c *fakeClock) NewTicker(d time.Duration) *Ticker {
	w := c.add(d, d)
	return &Ticker{C: w.ch, stopFunc: func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		w.stopped = true
	}}
}

// Advance moves time forward and fires everything that came due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	for _, w := range c.waiters {
		for !w.stopped && !w.fired && !w.deadline.After(c.now) {
			select {
			case w.ch <- c.now:
			default:
			}
			if w.interval == 0 {
				w.fired = true
				break
			}
			w.deadline = w.deadline.Add(w.interval)
		}
	}
}

// Jump moves time forward without firing anything, like a suspended process.
func (c *fakeClock) Jump(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// WaitForTimers blocks until n timers or tickers are registered.
func (c *fakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.waiters) < n {
		c.changed.Wait()
	}
}
