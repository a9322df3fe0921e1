package quiz

import "time"

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock is the time source of the engine.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) NewTicker(d time.Duration) Ticker {
	return &systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s *systemTicker) C() <-chan time.Time { return s.t.C }
func (s *systemTicker) Stop()               { s.t.Stop() }

// Countdown is the per-session timer state. It is not safe for concurrent
// use; Session serialises access.
type Countdown struct {
	total int
	left  int
}

// NewCountdown starts a countdown at totalSeconds.
func NewCountdown(totalSeconds int) *Countdown {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	return &Countdown{total: totalSeconds, left: totalSeconds}
}

// Tick consumes one second and reports whether the countdown is exhausted.
func (c *Countdown) Tick() bool {
	if c.left > 0 {
		c.left--
	}
	return c.left == 0
}

// Left returns the remaining seconds.
func (c *Countdown) Left() int { return c.left }

// Total returns the initial budget in seconds.
func (c *Countdown) Total() int { return c.total }

// Elapsed returns consumed seconds, clamped to [0, Total].
func (c *Countdown) Elapsed() int {
	return clamp(c.total-c.left, 0, c.total)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
