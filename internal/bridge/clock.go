package bridge

import (
	"sync"
	"time"
)

// Clock is the time source of the frame pump.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }

// StepClock is a virtual clock that jumps forward instead of sleeping.
// After advances the clock by d and returns an already fired channel, so a
// pump driven by it runs as fast as the core allows while still seeing
// exact tick intervals. Advance simulates time spent inside the core.
type StepClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewStepClock creates a StepClock starting at start.
func NewStepClock(start time.Time) *StepClock {
	return &StepClock{now: start}
}

// Now returns the current virtual time.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After advances the virtual time by d and fires immediately.
func (c *StepClock) After(d time.Duration) <-chan time.Time {
	now := c.Advance(d)
	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

// Advance moves the virtual time forward by d and returns the new time.
// Negative durations are ignored.
func (c *StepClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.now = c.now.Add(d)
	}
	return c.now
}
