package client

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Handle is a pending scheduled callback.
type Handle interface {
	// Cancel prevents the callback from running. It reports whether the
	// callback was still pending.
	Cancel() bool
}

// Scheduler runs callbacks after a delay. Implementations must run every
// callback on a single goroutine, one at a time, so animation state needs
// no locking.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Handle
	Now() time.Time
}

// VirtualClock is a manually advanced Scheduler. Callbacks run inside
// Advance, on the caller's goroutine, in due-time order.
type VirtualClock struct {
	now    time.Time
	seq    uint64
	timers []*virtualTimer
}

type virtualTimer struct {
	clock *VirtualClock
	at    time.Time
	seq   uint64
	fn    func()
}

// NewVirtualClock returns a clock starting at a fixed instant.
func NewVirtualClock() *VirtualClock {
	return &VirtualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the virtual time.
func (c *VirtualClock) Now() time.Time { return c.now }

// Schedule queues fn to run once the clock has advanced by delay.
// Negative delays are treated as zero.
func (c *VirtualClock) Schedule(delay time.Duration, fn func()) Handle {
	if delay < 0 {
		delay = 0
	}
	c.seq++
	t := &virtualTimer{clock: c, at: c.now.Add(delay), seq: c.seq, fn: fn}
	i := sort.Search(len(c.timers), func(i int) bool {
		o := c.timers[i]
		return o.at.After(t.at) || (o.at.Equal(t.at) && o.seq > t.seq)
	})
	c.timers = append(c.timers, nil)
	copy(c.timers[i+1:], c.timers[i:])
	c.timers[i] = t
	return t
}

func (t *virtualTimer) Cancel() bool {
	return t.clock.remove(t)
}

func (c *VirtualClock) remove(t *virtualTimer) bool {
	for i, o := range c.timers {
		if o == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}
	return false
}

// Advance moves the clock forward by d, running every callback that falls
// due on the way, including ones scheduled by earlier callbacks.
func (c *VirtualClock) Advance(d time.Duration) {
	end := c.now.Add(d)
	for len(c.timers) > 0 && !c.timers[0].at.After(end) {
		t := c.timers[0]
		c.timers = c.timers[1:]
		c.now = t.at
		t.fn()
	}
	c.now = end
}

// RunUntilIdle runs callbacks until none are pending or max callbacks have
// run, and returns how many ran.
func (c *VirtualClock) RunUntilIdle(max int) int {
	n := 0
	for n < max && len(c.timers) > 0 {
		t := c.timers[0]
		c.timers = c.timers[1:]
		c.now = t.at
		t.fn()
		n++
	}
	return n
}

// Pending returns the number of callbacks waiting to run.
func (c *VirtualClock) Pending() int { return len(c.timers) }

// Loop is a Scheduler backed by real timers. All callbacks, and functions
// passed to Do, run on one goroutine owned by the loop, the way a browser
// event loop serializes timer callbacks.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	timers map[*loopTimer]struct{}
	closed bool

	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

type loopTimer struct {
	loop      *Loop
	timer     *time.Timer
	cancelled atomic.Bool
}

// NewLoop starts a loop goroutine. Close must be called to stop it.
func NewLoop() *Loop {
	l := &Loop{
		timers:  make(map[*loopTimer]struct{}),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.stopped)
	for {
		select {
		case <-l.done:
			return
		case <-l.wake:
		}
		for {
			l.mu.Lock()
			if l.closed || len(l.queue) == 0 {
				l.mu.Unlock()
				break
			}
			fn := l.queue[0]
			l.queue = l.queue[1:]
			l.mu.Unlock()
			fn()
		}
	}
}

// Now returns the wall clock time.
func (l *Loop) Now() time.Time { return time.Now() }

// Do queues fn to run on the loop goroutine. It reports false if the loop
// is closed. Do never blocks, so callbacks may call it.
func (l *Loop) Do(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Call runs fn on the loop goroutine and waits for it to return. It reports
// false if the loop closed before fn ran. Calling it from a loop callback
// deadlocks.
func (l *Loop) Call(fn func()) bool {
	ran := make(chan struct{})
	if !l.Do(func() {
		fn()
		close(ran)
	}) {
		return false
	}
	select {
	case <-ran:
		return true
	case <-l.stopped:
		return false
	}
}

// Schedule runs fn on the loop goroutine after delay.
func (l *Loop) Schedule(delay time.Duration, fn func()) Handle {
	t := &loopTimer{loop: l}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		t.cancelled.Store(true)
		return t
	}
	l.timers[t] = struct{}{}
	t.timer = time.AfterFunc(delay, func() {
		l.Do(func() {
			l.forget(t)
			if t.cancelled.Load() {
				return
			}
			fn()
		})
	})
	return t
}

func (l *Loop) forget(t *loopTimer) {
	l.mu.Lock()
	delete(l.timers, t)
	l.mu.Unlock()
}

func (t *loopTimer) Cancel() bool {
	if t.cancelled.Swap(true) {
		return false
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.loop.forget(t)
	return true
}

// Pending returns the number of timers not yet fired or cancelled.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timers)
}

// Close stops all timers, drops queued callbacks and waits for the loop
// goroutine to exit. It is safe to call more than once.
func (l *Loop) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		for t := range l.timers {
			t.cancelled.Store(true)
			t.timer.Stop()
		}
		l.timers = nil
		l.queue = nil
		l.mu.Unlock()
		close(l.done)
	})
	<-l.stopped
}
