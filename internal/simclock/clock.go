// Package simclock provides the virtual clock that drives the simulation.
package simclock

import (
	"sync"
	"time"

	"github.com/Rus1K7/Airport/internal/simerr"
)

const (
	MinStep = time.Second
	MaxStep = 3600 * time.Second
)

// Listener is invoked after every successful advance with the new instant.
type Listener func(now time.Time)

// Clock holds the simulated "now". Advances are serialized: a second
// caller waits until the first advance and all of its listeners return.
// Reads never wait on listeners.
type Clock struct {
	advanceMu sync.Mutex

	mu        sync.RWMutex
	now       time.Time
	step      time.Duration
	listeners []Listener
}

// New creates a clock starting at start that moves by step on every Tick.
func New(start time.Time, step time.Duration) (*Clock, error) {
	if step < MinStep || step > MaxStep {
		return nil, simerr.New(simerr.ErrInvalidSpeed, "step %s out of range", step)
	}
	return &Clock{now: start, step: step}, nil
}

// Now returns the current simulated instant.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Step returns the simulated increment applied by Tick.
func (c *Clock) Step() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.step
}

// SetStep changes the advancement policy.
func (c *Clock) SetStep(step time.Duration) error {
	if step < MinStep || step > MaxStep {
		return simerr.New(simerr.ErrInvalidSpeed, "step %s out of range", step)
	}
	c.mu.Lock()
	c.step = step
	c.mu.Unlock()
	return nil
}

// OnAdvance registers fn to run after each advance. Listeners run on the
// advancing goroutine and must not advance the clock themselves.
func (c *Clock) OnAdvance(fn Listener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Tick advances the clock by the current step.
func (c *Clock) Tick() (time.Time, error) {
	return c.Advance(c.Step())
}

// Advance moves the clock forward by delta and notifies listeners.
func (c *Clock) Advance(delta time.Duration) (time.Time, error) {
	if delta <= 0 {
		return time.Time{}, simerr.New(simerr.ErrInvalidAdvance, "advance by %s rejected: delta must be positive", delta)
	}

	c.advanceMu.Lock()
	defer c.advanceMu.Unlock()
	return c.advanceLocked(delta), nil
}

// AdvanceTo moves the clock forward to t.
func (c *Clock) AdvanceTo(t time.Time) (time.Time, error) {
	c.advanceMu.Lock()
	defer c.advanceMu.Unlock()

	delta := t.Sub(c.Now())
	if delta <= 0 {
		return time.Time{}, simerr.New(simerr.ErrInvalidAdvance, "cannot move time back to %s", t.Format(time.RFC3339))
	}
	return c.advanceLocked(delta), nil
}

func (c *Clock) advanceLocked(delta time.Duration) time.Time {
	c.mu.Lock()
	c.now = c.now.Add(delta)
	now := c.now
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(now)
	}
	return now
}
