// Package countdown drives the exam timer. A Countdown is an owned handle:
// whoever starts it must Stop it on every exit path.
package countdown

import (
	"context"
	"sync"
	"time"
)

// State is the lifecycle state of a Countdown.
type State int32

const (
	StateNotStarted State = iota
	StateRunning
	StateExpired
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateRunning:
		return "running"
	case StateExpired:
		return "expired"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Ticker abstracts time.Ticker so tests can drive ticks by hand.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// Option configures a Countdown.
type Option func(*Countdown)

// WithTicker replaces the one-second wall-clock ticker.
func WithTicker(t Ticker) Option {
	return func(c *Countdown) { c.ticker = t }
}

// OnTick registers fn to receive the remaining time after every tick.
func OnTick(fn func(remaining time.Duration)) Option {
	return func(c *Countdown) { c.onTick = fn }
}

// OnExpire registers fn to run once when the remaining time reaches zero.
func OnExpire(fn func()) Option {
	return func(c *Countdown) { c.onExpire = fn }
}

// Countdown decrements a local counter once per tick. It is seeded once and
// never resynchronized with the wall clock.
type Countdown struct {
	mu        sync.Mutex
	remaining int64 // seconds
	state     State

	ticker   Ticker
	onTick   func(time.Duration)
	onExpire func()

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func newCountdown(remaining time.Duration, opts ...Option) *Countdown {
	if remaining < 0 {
		remaining = 0
	}
	c := &Countdown{
		remaining: int64(remaining / time.Second),
		state:     StateNotStarted,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start seeds a countdown with remaining and starts ticking. The countdown
// also stops when ctx is cancelled.
func Start(ctx context.Context, remaining time.Duration, opts ...Option) *Countdown {
	c := newCountdown(remaining, opts...)
	c.run(ctx)
	return c
}

// FromMinutes converts a fractional minute count into a duration.
func FromMinutes(minutes float64) time.Duration {
	return time.Duration(minutes * float64(time.Minute))
}

func (c *Countdown) run(ctx context.Context) {
	if c.ticker == nil {
		c.ticker = realTicker{t: time.NewTicker(time.Second)}
	}

	c.mu.Lock()
	c.state = StateRunning
	c.mu.Unlock()

	go func() {
		defer close(c.done)
		defer c.ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				c.markStopped()
				return
			case <-c.stop:
				c.markStopped()
				return
			case <-c.ticker.C():
				select {
				case <-c.stop:
					c.markStopped()
					return
				default:
				}
				if expired := c.tick(); expired {
					if c.onExpire != nil {
						c.onExpire()
					}
					c.markStopped()
					return
				}
			}
		}
	}()
}

// tick applies one second. It reports true exactly once: on the tick that
// reaches zero, or on the first tick when the countdown was seeded at zero.
func (c *Countdown) tick() bool {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return false
	}
	if c.remaining > 0 {
		c.remaining--
	}
	remaining := c.remaining
	expired := remaining == 0
	if expired {
		c.state = StateExpired
	}
	c.mu.Unlock()

	if c.onTick != nil {
		c.onTick(time.Duration(remaining) * time.Second)
	}
	return expired
}

func (c *Countdown) markStopped() {
	c.mu.Lock()
	c.state = StateStopped
	c.mu.Unlock()
}

// Stop stops ticking. It is safe to call more than once, from any exit
// path and from inside the callbacks. It does not block; use Wait for that.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Wait blocks until the ticking goroutine exits.
func (c *Countdown) Wait() {
	<-c.done
}

// Done is closed once the countdown has stopped ticking.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

// Remaining returns the time left on the counter.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Duration(c.remaining) * time.Second
}

// RemainingMinutes returns the time left in fractional minutes.
func (c *Countdown) RemainingMinutes() float64 {
	return c.Remaining().Minutes()
}

// State returns the current lifecycle state.
func (c *Countdown) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
